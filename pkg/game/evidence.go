package game

import "strings"

// Evidence is one item in an area's evidence list. Pos "all" makes the
// item globally visible; any other value restricts it to CMs and mods.
type Evidence struct {
	Name  string
	Desc  string
	Image string
	Pos   string
}

func (e *Evidence) encode() string {
	return strings.Join([]string{e.Name, e.Desc, e.Image}, "&")
}

// EvidenceList holds an area's evidence.
type EvidenceList struct {
	Evidences []*Evidence
}

// Add appends a new item.
func (el *EvidenceList) Add(name, desc, image, pos string) {
	el.Evidences = append(el.Evidences, &Evidence{Name: name, Desc: desc, Image: image, Pos: pos})
}

// Edit replaces the item at a zero-based index; out-of-range indices
// are ignored.
func (el *EvidenceList) Edit(idx int, ev Evidence) {
	if idx < 0 || idx >= len(el.Evidences) {
		return
	}
	el.Evidences[idx] = &ev
}

// Delete removes the item at a zero-based index; out-of-range indices
// are ignored.
func (el *EvidenceList) Delete(idx int) {
	if idx < 0 || idx >= len(el.Evidences) {
		return
	}
	el.Evidences = append(el.Evidences[:idx], el.Evidences[idx+1:]...)
}

// Evidence returns the area's evidence list. Caller holds the area lock.
func (a *Area) Evidence() *EvidenceList { return a.evidence }

// visibleTo reports whether an item is in a client's view.
func (a *Area) visibleTo(ev *Evidence, c *Client) bool {
	return ev.Pos == "all" || c.IsMod || a.IsOwner(c)
}

// BroadcastEvidenceList sends each member their view of the evidence
// list and rebuilds their personal index mapping (1-based personal
// index to 1-based global id; 0 stays reserved for "no evidence").
// Caller holds the area lock.
func (a *Area) BroadcastEvidenceList() {
	for _, c := range a.Clients() {
		a.SendEvidenceList(c)
	}
}

// SendEvidenceList sends one member their view of the evidence list and
// rebuilds their personal index mapping. Caller holds the area lock.
func (a *Area) SendEvidenceList(c *Client) {
	var fields []string
	index := map[int]int{}
	personal := 1
	for i, ev := range a.evidence.Evidences {
		if !a.visibleTo(ev, c) {
			continue
		}
		fields = append(fields, ev.encode())
		index[personal] = i + 1
		personal++
	}
	c.SetEvidenceIndex(index)
	c.SendCommand("LE", fields...)
}
