package commands

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/attorneyonline/tsugo/pkg/game"
)

// cmdArea moves the client to another area by id or name; with no
// argument it lists all areas.
func cmdArea(s *game.Server, c *game.Client, arg string) error {
	if arg == "" {
		for _, a := range s.Areas.All() {
			c.SendOOC(fmt.Sprintf("Area %d: %s (users: %d)", a.ID, a.Name, len(a.Clients())))
		}
		return nil
	}

	var target *game.Area
	if id, err := strconv.Atoi(arg); err == nil {
		target = s.Areas.Get(id)
	} else {
		target = s.Areas.ByName(arg)
	}
	if target == nil {
		return AreaErrorf("Area %s not found.", arg)
	}
	if target.ID == c.AreaID() {
		return ClientErrorf("You are already in %s.", target.Name)
	}

	old := c.Area()
	c.SetAreaID(target.ID)
	if old != nil {
		old.SendCommand("CT", s.Config.Hostname,
			fmt.Sprintf("%s has left the area.", c.CharName()), "1")
	}
	c.SendOOC(fmt.Sprintf("Changed area to %s.", target.Name))
	c.SendCommand("BN", target.Background)

	target.Lock()
	defer target.Unlock()
	target.BroadcastEvidenceList()
	if song, _ := target.CurrentMusic(); song != "" {
		c.SendCommand("MC", song, "-1", "", "1", "0", "0")
	}
	return nil
}

// cmdGetArea lists the clients in the sender's area.
func cmdGetArea(s *game.Server, c *game.Client, arg string) error {
	a := c.Area()
	if a == nil {
		return AreaErrorf("You are not in an area.")
	}
	c.SendOOC(fmt.Sprintf("=== %s ===", a.Name))
	for _, member := range a.Clients() {
		line := fmt.Sprintf("[%d] %s", member.ID, member.CharName())
		if name := member.Showname(); name != "" {
			line += fmt.Sprintf(" (%s)", name)
		}
		c.SendOOC(line)
	}
	return nil
}

var validPositions = map[string]bool{
	"def": true, "pro": true, "jud": true,
	"wit": true, "hld": true, "hlp": true,
}

// cmdPos changes the client's courtroom position.
func cmdPos(s *game.Server, c *game.Client, arg string) error {
	pos := strings.ToLower(strings.TrimSpace(arg))
	if !validPositions[pos] {
		return ArgumentErrorf("Invalid position. Use def, pro, jud, wit, hld or hlp.")
	}
	c.SetPos(pos)
	c.SendOOC(fmt.Sprintf("Position changed to %s.", pos))
	return nil
}

// cmdMOTD shows the message of the day.
func cmdMOTD(s *game.Server, c *game.Client, arg string) error {
	c.SendOOC(s.MOTD())
	return nil
}

// cmdRoll rolls dice ("XdY", default 1d6) and announces the result to
// the area.
func cmdRoll(s *game.Server, c *game.Client, arg string) error {
	count, sides := 1, 6
	if arg != "" {
		parts := strings.SplitN(strings.ToLower(arg), "d", 2)
		var err error
		if len(parts) == 2 {
			if count, err = strconv.Atoi(parts[0]); err != nil {
				return ArgumentErrorf("That does not look like a dice roll.")
			}
			if sides, err = strconv.Atoi(parts[1]); err != nil {
				return ArgumentErrorf("That does not look like a dice roll.")
			}
		} else if sides, err = strconv.Atoi(parts[0]); err != nil {
			return ArgumentErrorf("That does not look like a dice roll.")
		}
	}
	if count < 1 || count > 20 || sides < 2 || sides > 11037 {
		return ArgumentErrorf("Roll up to 20 dice with 2 to 11037 sides.")
	}

	rolls := make([]string, count)
	total := 0
	for i := range rolls {
		n := rand.Intn(sides) + 1
		total += n
		rolls[i] = strconv.Itoa(n)
	}
	a := c.Area()
	if a == nil {
		return AreaErrorf("You are not in an area.")
	}
	a.SendCommand("CT", s.Config.Hostname,
		fmt.Sprintf("%s rolled %dd%d: %s (total %d)", c.CharName(), count, sides,
			strings.Join(rolls, ", "), total), "1")
	return nil
}

// cmdCoinFlip flips a coin and announces the result to the area.
func cmdCoinFlip(s *game.Server, c *game.Client, arg string) error {
	result := "heads"
	if rand.Intn(2) == 1 {
		result = "tails"
	}
	a := c.Area()
	if a == nil {
		return AreaErrorf("You are not in an area.")
	}
	a.SendCommand("CT", s.Config.Hostname,
		fmt.Sprintf("%s flipped a coin and got %s.", c.CharName(), result), "1")
	return nil
}

// cmdLogin authenticates the client as a moderator against the
// configured bcrypt modpass hash.
func cmdLogin(s *game.Server, c *game.Client, arg string) error {
	if s.Config.Modpass == "" {
		return ServerErrorf("Moderator login is not configured.")
	}
	if arg == "" {
		return ArgumentErrorf("Usage: /login <password>")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.Config.Modpass), []byte(arg)); err != nil {
		if s.Audit != nil {
			s.Audit.LogRoom("login.fail", c.IPID, areaName(c), c.CharName(), "")
		}
		return ClientErrorf("Invalid password.")
	}
	c.IsMod = true
	c.SendOOC("Logged in as a moderator.")
	if s.Audit != nil {
		s.Audit.LogRoom("login", c.IPID, areaName(c), c.CharName(), "")
	}
	return nil
}

// cmdKick disconnects a client by id. Moderator only.
func cmdKick(s *game.Server, c *game.Client, arg string) error {
	if !c.IsMod {
		return ClientErrorf("You must be authorized to do that.")
	}
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return ArgumentErrorf("Usage: /kick <client id>")
	}
	target := s.Clients.Get(id)
	if target == nil {
		return ArgumentErrorf("No client with id %d.", id)
	}
	target.SendOOC("You were kicked from the server.")
	target.Disconnect()
	c.SendOOC(fmt.Sprintf("Kicked client %d.", id))
	if s.Audit != nil {
		s.Audit.LogRoom("kick", c.IPID, areaName(c), c.CharName(), target.IPID)
	}
	return nil
}

// cmdBan bans a network identity (and the device ids seen from it) and
// kicks every matching client. Moderator only.
func cmdBan(s *game.Server, c *game.Client, arg string) error {
	if !c.IsMod {
		return ClientErrorf("You must be authorized to do that.")
	}
	if s.Bans == nil {
		return ServerErrorf("The ban list is not available.")
	}
	fields := strings.SplitN(strings.TrimSpace(arg), " ", 2)
	if fields[0] == "" {
		return ArgumentErrorf("Usage: /ban <ipid> [reason]")
	}
	ipid := fields[0]
	reason := "N/A"
	if len(fields) == 2 {
		reason = fields[1]
	}

	hdid := ""
	for _, target := range s.Clients.All() {
		if target.IPID == ipid {
			hdid = target.HDID()
			break
		}
	}
	id, err := s.Bans.AddBan(ipid, hdid, reason, c.Name(), nil)
	if err != nil {
		return ServerErrorf("Could not store the ban.")
	}
	for _, target := range s.Clients.All() {
		if target.IPID == ipid {
			target.SendCommand("KB", reason)
			target.Disconnect()
		}
	}
	c.SendOOC(fmt.Sprintf("Banned %s (ban id %d).", ipid, id))
	if s.Audit != nil {
		s.Audit.LogRoom("ban", c.IPID, areaName(c), c.CharName(), ipid+": "+reason)
	}
	return nil
}

// cmdUnban lifts a ban by id. Moderator only.
func cmdUnban(s *game.Server, c *game.Client, arg string) error {
	if !c.IsMod {
		return ClientErrorf("You must be authorized to do that.")
	}
	if s.Bans == nil {
		return ServerErrorf("The ban list is not available.")
	}
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return ArgumentErrorf("Usage: /unban <ban id>")
	}
	if err := s.Bans.RemoveBan(id); err != nil {
		return ServerErrorf("Could not remove ban %d.", id)
	}
	c.SendOOC(fmt.Sprintf("Removed ban %d.", id))
	return nil
}

// cmdAFK marks the client away-from-keyboard; sending an IC message
// clears it.
func cmdAFK(s *game.Server, c *game.Client, arg string) error {
	s.Clients.ToggleAFK(c)
	if c.AFK() {
		c.SendOOC("You are now AFK.")
	} else {
		c.SendOOC("You are no longer AFK.")
	}
	return nil
}

func areaName(c *game.Client) string {
	if a := c.Area(); a != nil {
		return a.Name
	}
	return ""
}
