package commands

import (
	"errors"

	"github.com/attorneyonline/tsugo/pkg/game"
)

// Handler is the signature for OOC command implementations. arg is the
// remainder of the message after the command token, capped by the
// caller.
type Handler func(s *game.Server, c *game.Client, arg string) error

// ErrUnknown is returned by Invoke for names not in the registry.
var ErrUnknown = errors.New("unknown command")

// Registry maps command names to handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds the static command table.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}

	register := func(name string, h Handler) { r.handlers[name] = h }

	register("area", cmdArea)
	register("getarea", cmdGetArea)
	register("pos", cmdPos)
	register("motd", cmdMOTD)
	register("roll", cmdRoll)
	register("coinflip", cmdCoinFlip)
	register("login", cmdLogin)
	register("kick", cmdKick)
	register("ban", cmdBan)
	register("unban", cmdUnban)
	register("afk", cmdAFK)

	return r
}

// Has reports whether a command name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Invoke runs a command by name. It returns ErrUnknown for absent
// names; any other error comes from the handler itself.
func (r *Registry) Invoke(name string, s *game.Server, c *game.Client, arg string) error {
	h, ok := r.handlers[name]
	if !ok {
		return ErrUnknown
	}
	return h(s, c, arg)
}
