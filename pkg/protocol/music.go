package protocol

import (
	"errors"
	"fmt"

	"github.com/attorneyonline/tsugo/pkg/commands"
	"github.com/attorneyonline/tsugo/pkg/game"
)

// MC music selection shapes, oldest client first.
var musicShapes = [][]ArgType{
	{ArgStr, ArgInt},
	{ArgStr, ArgInt, ArgStrOrEmpty},
	{ArgStr, ArgInt, ArgStrOrEmpty, ArgInt},
	{ArgStr, ArgInt, ArgStrOrEmpty, ArgInt, ArgInt},
}

// cmdMusic handles the music list double duty: area names sit at the
// head of the list, so a selection is first tried as an area move and
// only then as a song.
func (c *Conn) cmdMusic(args []string) {
	cl := c.client
	g := c.engine.Game
	if !cl.Checked() || len(args) < 1 {
		return
	}

	err := c.engine.Commands.Invoke("area", g, cl, args[0])
	if err == nil {
		return
	}
	var cmdErr *commands.Error
	if !errors.As(err, &cmdErr) {
		cl.SendOOC("An internal error occurred. Please inform the moderation team.")
		return
	}
	switch cmdErr.Kind {
	case commands.KindArea:
		// Not an area name, fall through to music selection.
	default:
		cl.SendOOC(cmdErr.Message)
		return
	}

	if cl.Muted {
		cl.SendOOC("You are muted by a moderator.")
		return
	}
	if cl.DJBlocked {
		cl.SendOOC("You were blocked from changing the music by a moderator.")
		return
	}

	valid := false
	for _, shape := range musicShapes {
		if c.validate(args, true, shape...) {
			valid = true
			break
		}
	}
	if !valid {
		return
	}
	if atoi(args[1]) != cl.CharID() {
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

	// The flood guard is waived for a client alone in the area.
	if rem := cl.MusicCooldown(); rem > 0 && len(g.Clients.InArea(cl.AreaID())) != 1 {
		cl.SendOOC(fmt.Sprintf("You changed song too many times. Please try again after %d seconds.", int(rem.Seconds())+1))
		return
	}

	name := args[0]
	length := 0
	if name != game.StopSong && !g.Music.IsCategory(name) {
		var err error
		length, err = g.Music.SongData(name)
		if err != nil {
			cl.SendOOC(fmt.Sprintf("Error: song %s isn't recognized by the server!", name))
			return
		}
	}

	showname := ""
	if len(args) > 2 {
		showname = args[2]
		if showname != "" && !area.ShownameAllowed {
			cl.SendOOC("Shownames are not allowed in this area!")
			return
		}
	}
	effects := "0"
	if len(args) > 3 {
		effects = args[3]
	}

	if area.Jukebox {
		area.AddJukeboxVote(cl, name, length, showname)
		if g.Audit != nil {
			g.Audit.LogRoom("jukebox.vote", cl.IPID, area.Name, cl.CharName(), name)
		}
		return
	}
	area.PlayMusic(name, cl.CharID(), showname, effects)
	if g.Audit != nil {
		g.Audit.LogRoom("music", cl.IPID, area.Name, cl.CharName(), name)
	}
}
