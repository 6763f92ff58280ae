package protocol

import (
	"fmt"
	"log"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/attorneyonline/tsugo/pkg/game"
)

// featureFlags advertises the 2.x client features the server supports.
var featureFlags = []string{
	"yellowtext", "customobjections", "flipping", "fastloading",
	"noencryption", "deskmod", "evidence", "modcall_reason",
	"cccc_ic_support", "arup", "casing_alerts", "prezoom",
	"looping_sfx", "additive", "effects", "y_offset",
	"expanded_desk_mods",
}

// charsPerPage is the AO1 character select page size.
const charsPerPage = 10

// cmdHI authenticates the connection. The hardware id is recorded
// against the client's IPID, the ban list is consulted, and on success
// the client learns its id and the player count.
func (c *Conn) cmdHI(args []string) {
	cl := c.client
	if cl.Checked() {
		// A second handshake on a live connection is never legitimate.
		cl.Disconnect()
		return
	}
	if !c.validate(args, false, ArgStr) {
		return
	}
	g := c.engine.Game
	hdid := args[0]
	cl.SetHDID(hdid)

	if g.Bans != nil {
		if err := g.Bans.AddHDID(cl.IPID, hdid); err != nil {
			log.Printf("[%d] recording hdid: %v", cl.ID, err)
		}
		ban, err := g.Bans.FindBan(cl.IPID, hdid)
		if err != nil {
			log.Printf("[%d] ban lookup: %v", cl.ID, err)
		}
		if ban != nil {
			until := "N/A"
			if ban.Until != nil {
				until = humanize.Time(*ban.Until)
			}
			if g.Audit != nil {
				g.Audit.LogConnect(cl.IPID, hdid, true)
			}
			log.Printf("[%d] rejected banned client %s (ban %d)", cl.ID, cl.IPID, ban.ID)
			cl.SendCommand("BD", fmt.Sprintf("%s\r\nID: %d\r\nUntil: %s", ban.Reason, ban.ID, until))
			cl.Disconnect()
			return
		}
	}

	cl.SetChecked(true)
	if g.Audit != nil {
		g.Audit.LogConnect(cl.IPID, hdid, false)
	}
	log.Printf("[%d] connected from %s", cl.ID, cl.IPID)
	cl.SendCommand("ID", itoa(cl.ID), g.Config.Software, game.Version)
	cl.SendCommand("PN", itoa(g.PlayerCount()), itoa(g.Config.PlayerLimit))
}

// cmdID records the client software version and advertises the
// server's feature set.
func (c *Conn) cmdID(args []string) {
	if len(args) >= 2 {
		parts := strings.Split(args[1], ".")
		release, major, minor := parts[0], "", ""
		if len(parts) >= 2 {
			major = parts[1]
		}
		if len(parts) >= 3 {
			minor = parts[2]
		}
		c.client.SetVersion(release, major, minor)
	}
	c.client.SendCommand("FL", featureFlags...)
}

// cmdCH answers the client keepalive and rearms the drop timer. A
// client that stops sending CH is evicted when the timer fires, no
// matter what else it sends.
func (c *Conn) cmdCH(args []string) {
	c.refreshPing()
	c.client.SendCommand("CHECK")
}

// cmdAskCounts reports the catalog sizes so the client can size its
// loading bar.
func (c *Conn) cmdAskCounts(args []string) {
	if !c.client.Checked() {
		return
	}
	g := c.engine.Game
	songs := len(g.Areas.Names()) + len(g.Music.Names())
	c.client.SendCommand("SI", itoa(len(g.Characters)), "0", itoa(songs))
}

// cmdAskChars starts AO1 paged character loading.
func (c *Conn) cmdAskChars(args []string) {
	if !c.client.Checked() {
		return
	}
	c.sendCharPage(0)
}

// cmdNextPage advances AO1 paged loading: the next character page if
// one exists, else the first music page.
func (c *Conn) cmdNextPage(args []string) {
	if !c.client.Checked() || !c.validate(args, false, ArgInt) {
		return
	}
	if page := atoi(args[0]); page >= 0 && page < len(c.charPages()) {
		c.sendCharPage(page)
		return
	}
	c.sendMusicPage(0)
}

// cmdEvidencePage is part of the AO1 loading sequence but carries no
// server-side evidence catalog, so it is acknowledged by doing nothing.
func (c *Conn) cmdEvidencePage(args []string) {}

// cmdMusicPage advances AO1 music loading and finishes the loading
// sequence when the pages run out.
func (c *Conn) cmdMusicPage(args []string) {
	if !c.client.Checked() || !c.validate(args, false, ArgInt) {
		return
	}
	if page := atoi(args[0]); page >= 0 && page < len(c.musicPages()) {
		c.sendMusicPage(page)
		return
	}
	c.sendDone()
}

// cmdCharList sends the full character catalog (2.x fast loading).
func (c *Conn) cmdCharList(args []string) {
	if !c.client.Checked() {
		return
	}
	c.client.SendCommand("SC", c.engine.Game.Characters...)
}

// cmdMusicList sends the area list followed by the music catalog; 2.x
// clients render the areas as the head of the music list.
func (c *Conn) cmdMusicList(args []string) {
	if !c.client.Checked() {
		return
	}
	g := c.engine.Game
	c.client.SendCommand("SM", append(g.Areas.Names(), g.Music.Names()...)...)
}

// cmdDone finishes 2.x fast loading.
func (c *Conn) cmdDone(args []string) {
	if !c.client.Checked() {
		return
	}
	c.sendDone()
}

// cmdChooseChar claims a character slot.
func (c *Conn) cmdChooseChar(args []string) {
	cl := c.client
	if !cl.Checked() || !c.validate(args, false, ArgInt, ArgInt, ArgStr) {
		return
	}
	charID := atoi(args[1])
	if err := cl.ChangeCharacter(charID); err != nil {
		return
	}
	g := c.engine.Game
	if g.Audit != nil {
		g.Audit.LogRoom("char.change", cl.IPID, areaName(c), cl.CharName(), "")
	}
}

func (c *Conn) charPages() [][]string {
	g := c.engine.Game
	entries := make([]string, len(g.Characters))
	for i, name := range g.Characters {
		entries[i] = fmt.Sprintf("%d#%s&&0&&&0&", i, name)
	}
	return game.Pages(entries, charsPerPage)
}

func (c *Conn) musicPages() [][]string {
	g := c.engine.Game
	names := append(g.Areas.Names(), g.Music.Names()...)
	entries := make([]string, len(names))
	for i, name := range names {
		entries[i] = fmt.Sprintf("%d#%s", i, name)
	}
	return game.Pages(entries, charsPerPage)
}

func (c *Conn) sendCharPage(page int) {
	pages := c.charPages()
	if page < 0 || page >= len(pages) {
		return
	}
	c.client.SendCommand("CI", pages[page]...)
}

func (c *Conn) sendMusicPage(page int) {
	pages := c.musicPages()
	if page < 0 || page >= len(pages) {
		return
	}
	c.client.SendCommand("EM", pages[page]...)
}

// sendDone pushes the current scene to a client that finished loading:
// slot availability, penalty bars, background, its evidence view, and
// the message of the day.
func (c *Conn) sendDone() {
	cl := c.client
	g := c.engine.Game
	area := cl.Area()
	if area == nil {
		return
	}

	taken := map[int]bool{}
	for _, other := range g.Clients.InArea(cl.AreaID()) {
		if id := other.CharID(); id != -1 {
			taken[id] = true
		}
	}
	avail := make([]string, len(g.Characters))
	for i := range g.Characters {
		if taken[i] {
			avail[i] = "-1"
		} else {
			avail[i] = "0"
		}
	}
	cl.SendCommand("CharsCheck", avail...)

	area.Lock()
	def, pro := area.HP()
	cl.SendCommand("HP", "1", itoa(def))
	cl.SendCommand("HP", "2", itoa(pro))
	cl.SendCommand("BN", area.Background)
	area.SendEvidenceList(cl)
	area.Unlock()

	cl.SendCommand("MM", "1")
	cl.SendCommand("DONE")
	cl.SendOOC(g.MOTD())
}

func areaName(c *Conn) string {
	if a := c.client.Area(); a != nil {
		return a.Name
	}
	return ""
}
