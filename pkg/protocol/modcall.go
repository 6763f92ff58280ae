package protocol

import (
	"fmt"
	"time"

	"github.com/attorneyonline/tsugo/pkg/game"
)

// cmdModCall rings every moderator on the server. The reason, when
// given, is filtered and truncated before broadcast.
func (c *Conn) cmdModCall(args []string) {
	cl := c.client
	g := c.engine.Game
	if !cl.Checked() {
		return
	}
	if cl.Muted {
		cl.SendOOC("You are muted by a moderator.")
		return
	}
	if cl.CharID() == -1 {
		cl.SendOOC("You cannot call a moderator while spectating.")
		return
	}
	if !cl.CanCallMod() {
		cl.SendOOC("You must wait 30 seconds between mod calls.")
		return
	}

	reason := ""
	if len(args) > 0 && args[0] != "" {
		reason = c.engine.dezalgo(args[0])
		if r := []rune(reason); len(r) > 100 {
			reason = string(r[:100])
		}
	}

	name := cl.Area().Name
	stamp := time.Now().Format("15:04")
	var msg string
	if reason == "" {
		msg = fmt.Sprintf("[%s] %s (%s) in %s without reason (using an old client?)",
			stamp, cl.CharName(), cl.IPID, name)
	} else {
		msg = fmt.Sprintf("[%s] %s (%s) in %s with reason: %s",
			stamp, cl.CharName(), cl.IPID, name, reason)
	}
	g.SendAllCommandPred(func(target *game.Client) bool { return target.IsMod }, "ZZ", msg)

	cl.SetModCallDelay()
	if g.Audit != nil {
		g.Audit.LogRoom("modcall", cl.IPID, name, cl.CharName(), reason)
	}
}
