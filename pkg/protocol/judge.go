package protocol

import (
	"fmt"
	"strings"

	"github.com/attorneyonline/tsugo/pkg/game"
)

// wtceSigns maps the RT signal names to judge log shorthands.
var wtceSigns = map[string]string{
	"testimony1":  "WT",
	"testimony2":  "CE",
	"judgeruling": "JR",
}

// cmdWTCE relays the witness testimony / cross examination / ruling
// banners.
func (c *Conn) cmdWTCE(args []string) {
	cl := c.client
	g := c.engine.Game
	if !cl.Checked() {
		return
	}
	area := cl.Area()
	if area == nil {
		return
	}
	area.Lock()
	defer area.Unlock()

	if !area.ShoutsAllowed {
		cl.SendOOC("You cannot use the testimony buttons within this area.")
		return
	}
	if cl.Muted {
		cl.SendOOC("You are muted by a moderator.")
		return
	}
	if cl.WTCEBlocked {
		cl.SendOOC("You were blocked from using judge signs by a moderator.")
		return
	}
	if area.CannotICInteract(cl) {
		cl.SendOOC("You are not on the invite list of this area!")
		return
	}
	if !c.validate(args, true, ArgStr) && !c.validate(args, true, ArgStr, ArgInt) {
		return
	}
	sign, ok := wtceSigns[args[0]]
	if !ok {
		return
	}
	if rem := cl.WTCECooldown(); rem > 0 {
		cl.SendOOC(fmt.Sprintf("You used witness testimony/cross examination signs too many times. Please try again after %d seconds.", int(rem.Seconds())+1))
		return
	}
	area.SendCommand("RT", args...)
	area.AddToJudgeLog(cl, "used "+sign)
	if g.Audit != nil {
		g.Audit.LogRoom("wtce", cl.IPID, area.Name, cl.CharName(), sign)
	}
}

// cmdPenalty moves one of the penalty bars.
func (c *Conn) cmdPenalty(args []string) {
	cl := c.client
	g := c.engine.Game
	if !cl.Checked() {
		return
	}
	if cl.Muted {
		cl.SendOOC("You are muted by a moderator.")
		return
	}
	area := cl.Area()
	if area == nil {
		return
	}
	area.Lock()
	defer area.Unlock()

	if area.CannotICInteract(cl) {
		cl.SendOOC("You are not on the invite list of this area!")
		return
	}
	if !c.validate(args, true, ArgInt, ArgInt) {
		return
	}
	if err := area.ChangeHP(atoi(args[0]), atoi(args[1])); err != nil {
		return
	}
	area.AddToJudgeLog(cl, "changed the penalties")
	if g.Audit != nil {
		g.Audit.LogRoom("hp", cl.IPID, area.Name, cl.CharName(), "")
	}
}

// cmdSetCase stores the client's case alert preferences.
func (c *Conn) cmdSetCase(args []string) {
	cl := c.client
	if !cl.Checked() || len(args) < 7 {
		return
	}
	cl.CasingCases = args[0]
	cl.CasingCM = args[1] == "1"
	cl.CasingDef = args[2] == "1"
	cl.CasingPro = args[3] == "1"
	cl.CasingJud = args[4] == "1"
	cl.CasingJur = args[5] == "1"
	cl.CasingSteno = args[6] == "1"
}

// casingRoles pairs the CASEA flag positions with their display names.
var casingRoles = []string{"defense", "prosecutor", "judge", "juror", "stenographer"}

// cmdCaseAnnounce broadcasts a case announcement to moderators and to
// clients whose alert preferences match one of the requested roles.
func (c *Conn) cmdCaseAnnounce(args []string) {
	cl := c.client
	g := c.engine.Game
	if !cl.Checked() || len(args) < 6 {
		return
	}
	area := cl.Area()
	if area == nil {
		return
	}
	if !area.IsOwner(cl) {
		cl.SendOOC("You cannot announce a case in an area where you are not a CM!")
		return
	}
	if !cl.CanCallCase() {
		cl.SendOOC("Please wait 60 seconds between case announcements!")
		return
	}

	var lookingFor []string
	for i, role := range casingRoles {
		if args[i+1] == "1" {
			lookingFor = append(lookingFor, role)
		}
	}
	if len(lookingFor) == 0 {
		cl.SendOOC("You should probably announce the case to at least one person.")
		return
	}

	host := cl.Showname()
	if host == "" {
		host = cl.CharName()
	}
	msg := fmt.Sprintf("=== Case Announcement ===\r\n%s [%d] is hosting %s, looking for %s.",
		host, cl.ID, args[0], strings.Join(lookingFor, ", "))

	needDef, needPro := args[1] == "1", args[2] == "1"
	needJud, needJur, needSteno := args[3] == "1", args[4] == "1", args[5] == "1"
	g.SendAllCommandPred(func(target *game.Client) bool {
		if target.IsMod {
			return true
		}
		return needDef && target.CasingDef ||
			needPro && target.CasingPro ||
			needJud && target.CasingJud ||
			needJur && target.CasingJur ||
			needSteno && target.CasingSteno
	}, "CASEA", msg, args[1], args[2], args[3], args[4], args[5], "1")

	cl.SetCaseCallDelay()
	if g.Audit != nil {
		g.Audit.LogRoom("case", cl.IPID, area.Name, cl.CharName(), args[0])
	}
}
