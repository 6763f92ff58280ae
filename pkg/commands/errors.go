// Package commands implements the registry of OOC slash commands. The
// registry is a static name-to-handler table resolved once at startup;
// unknown names are a normal, checked condition for the caller.
package commands

import "fmt"

// Kind tags a domain error so the protocol boundary can choose notice
// text without matching on concrete error types.
type Kind int

const (
	KindClient Kind = iota // client state or permission problem
	KindArea               // area state or lookup problem
	KindArgument           // malformed command argument
	KindServer             // server-side domain failure
)

// Error is a domain error raised by a command handler. Its message is
// shown to the sender verbatim; anything that is not an *Error is
// treated as an internal fault, logged, and masked with a generic
// notice.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// ClientErrorf builds a client-kind domain error.
func ClientErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindClient, Message: fmt.Sprintf(format, args...)}
}

// AreaErrorf builds an area-kind domain error.
func AreaErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindArea, Message: fmt.Sprintf(format, args...)}
}

// ArgumentErrorf builds an argument-kind domain error.
func ArgumentErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindArgument, Message: fmt.Sprintf(format, args...)}
}

// ServerErrorf builds a server-kind domain error.
func ServerErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindServer, Message: fmt.Sprintf(format, args...)}
}
