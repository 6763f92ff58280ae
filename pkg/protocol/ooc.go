package protocol

import (
	"errors"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/attorneyonline/tsugo/pkg/commands"
	"github.com/attorneyonline/tsugo/pkg/game"
)

// cmdOOC handles out-of-character chat: name adoption, the slash
// command gateway, and plain broadcast.
func (c *Conn) cmdOOC(args []string) {
	cl := c.client
	g := c.engine.Game
	if !cl.Checked() {
		return
	}
	if cl.OOCMuted {
		cl.SendOOC("You are muted by a moderator.")
		return
	}
	if !c.validate(args, false, ArgStr, ArgStr) {
		return
	}
	name, text := args[0], args[1]

	// A new name only sticks when no other client holds it; otherwise
	// it is remembered as a fake name so the rejection is not repeated
	// every message.
	if cl.Name() != name && cl.FakeName() != name {
		if g.Clients.IsValidName(name, cl) {
			cl.SetName(name)
			cl.SetFakeName(name)
		} else {
			cl.SetFakeName(name)
		}
	}
	if cl.Name() == "" {
		cl.SendOOC("You must insert a name with at least one letter!")
		return
	}
	if utf8.RuneCountInString(cl.Name()) > 30 {
		cl.SendOOC("Your OOC name is too long! Limit it to 30 characters.")
		return
	}
	for _, r := range cl.Name() {
		if unicode.Is(unicode.Cf, r) {
			cl.SendOOC("You cannot use format characters in your name!")
			return
		}
	}
	if strings.HasPrefix(cl.Name(), g.Config.Hostname) ||
		strings.HasPrefix(cl.Name(), "<dollar>G") ||
		strings.HasPrefix(cl.Name(), "<dollar>M") {
		cl.SendOOC("That name is reserved!")
		return
	}

	if utf8.RuneCountInString(text) > g.Config.MaxChars {
		return
	}
	if strings.HasPrefix(text, " /") {
		cl.SendOOC("Your message was not sent for safety reasons: you left a space before that slash.")
		return
	}
	if strings.HasPrefix(text, "/") {
		cmd, arg, _ := strings.Cut(text[1:], " ")
		cmd = strings.ToLower(cmd)
		if r := []rune(arg); len(r) > 256 {
			arg = string(r[:256])
		}
		c.invokeCommand(cmd, arg)
		return
	}

	text = c.engine.dezalgo(text)
	if cl.Shaken {
		text = game.ShakeMessage(text)
	}
	if cl.Disemvowel {
		text = game.DisemvowelMessage(text)
	}
	area := cl.Area()
	if area == nil {
		return
	}
	area.SendCommand("CT", cl.Name(), text)
	area.SendOwnerCommand("CT", "["+area.Abbreviation+"]"+cl.Name(), text)
	if g.Audit != nil {
		g.Audit.LogRoom("ooc", cl.IPID, area.Name, cl.CharName(), text)
	}
}

// invokeCommand runs one OOC command. A failing or even panicking
// command must never take the connection down with it.
func (c *Conn) invokeCommand(cmd, arg string) {
	cl := c.client
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[%d] command %q panicked: %v", cl.ID, cmd, r)
			cl.SendOOC("An internal error occurred. Please inform the moderation team.")
		}
	}()

	err := c.engine.Commands.Invoke(cmd, c.engine.Game, cl, arg)
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrUnknown):
		cl.SendOOC("Invalid command.")
	default:
		var cmdErr *commands.Error
		if errors.As(err, &cmdErr) {
			cl.SendOOC(cmdErr.Message)
			return
		}
		log.Printf("[%d] command %q failed: %v", cl.ID, cmd, err)
		cl.SendOOC("An internal error occurred. Please inform the moderation team.")
	}
}

// cmdOpKick is the client kick button; it runs the /kick command under
// a fixed OOC name.
func (c *Conn) cmdOpKick(args []string) {
	if len(args) < 1 {
		return
	}
	c.cmdOOC([]string{"opkick", "/kick " + args[0]})
}

// cmdOpBan is the client ban button.
func (c *Conn) cmdOpBan(args []string) {
	if len(args) < 1 {
		return
	}
	c.cmdOOC([]string{"opban", "/ban " + args[0]})
}
