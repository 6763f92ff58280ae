package protocol

import "github.com/attorneyonline/tsugo/pkg/game"

// Evidence commands address items by position in the client's own
// filtered view, so every index is resolved through the client's
// personal mapping before touching the area list.

// cmdAddEvidence adds an item to the area's evidence.
func (c *Conn) cmdAddEvidence(args []string) {
	cl := c.client
	if !cl.Checked() {
		return
	}
	if !c.validate(args, false, ArgStrOrEmpty, ArgStrOrEmpty, ArgStrOrEmpty) {
		return
	}
	area := cl.Area()
	if area == nil {
		return
	}
	area.Lock()
	defer area.Unlock()

	area.Evidence().Add(args[0], args[1], args[2], "all")
	c.auditEvidence("evidence.add", area, args[0])
	area.BroadcastEvidenceList()
}

// cmdDelEvidence removes an item by the client's view index.
func (c *Conn) cmdDelEvidence(args []string) {
	cl := c.client
	if !cl.Checked() {
		return
	}
	if !c.validate(args, false, ArgInt) {
		return
	}
	area := cl.Area()
	if area == nil {
		return
	}
	area.Lock()
	defer area.Unlock()

	global := cl.ResolveEvidence(atoi(args[0]) + 1)
	if global == 0 {
		return
	}
	name := area.Evidence().Evidences[global-1].Name
	area.Evidence().Delete(global - 1)
	c.auditEvidence("evidence.del", area, name)
	area.BroadcastEvidenceList()
}

// cmdEditEvidence replaces an item by the client's view index.
func (c *Conn) cmdEditEvidence(args []string) {
	cl := c.client
	if !cl.Checked() {
		return
	}
	if !c.validate(args, false, ArgInt, ArgStrOrEmpty, ArgStrOrEmpty, ArgStrOrEmpty) {
		return
	}
	area := cl.Area()
	if area == nil {
		return
	}
	area.Lock()
	defer area.Unlock()

	global := cl.ResolveEvidence(atoi(args[0]) + 1)
	if global == 0 {
		return
	}
	area.Evidence().Edit(global-1, game.Evidence{
		Name:  args[1],
		Desc:  args[2],
		Image: args[3],
		Pos:   "all",
	})
	c.auditEvidence("evidence.edit", area, args[1])
	area.BroadcastEvidenceList()
}

func (c *Conn) auditEvidence(event string, area *game.Area, name string) {
	if g := c.engine.Game; g.Audit != nil {
		g.Audit.LogRoom(event, c.client.IPID, area.Name, c.client.CharName(), name)
	}
}
