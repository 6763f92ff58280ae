package game

import (
	"fmt"
	"sync"
	"time"
)

// Transport is the outbound half of a connection. Descriptors in the
// transport layer implement it; tests use a recording fake.
type Transport interface {
	SendCommand(name string, args ...string)
	Close()
}

// Client is one connected player. Fields mutated during message handling
// and read by other connections (pairing scans, broadcasts) are guarded
// by mu; moderation flags are only written from the owning connection or
// a moderator command and are read without locking.
type Client struct {
	ID     int
	IPID   string
	server *Server

	transport Transport

	// Moderation flags.
	Muted       bool // IC mute
	OOCMuted    bool
	DJBlocked   bool
	WTCEBlocked bool
	IsMod       bool

	// Text-mangling effects.
	Shaken     bool
	Disemvowel bool

	// Charcurse restricts the client to its own asset folder when non-empty.
	Charcurse []int

	// Casing preferences (SETCASE).
	CasingCases string
	CasingCM    bool
	CasingDef   bool
	CasingPro   bool
	CasingJud   bool
	CasingJur   bool
	CasingSteno bool

	mu            sync.Mutex
	checked       bool
	hdid          string
	charID        int
	areaID        int
	pos           string
	name          string
	fakeName      string
	showname      string
	pairedCharID  int
	offsetPair    string
	lastSprite    string
	flip          int
	claimedFolder string
	afk           bool
	evidenceIndex map[int]int

	lastMusicChange time.Time
	lastWTCE        time.Time
	lastModCall     time.Time
	lastCaseCall    time.Time

	release      string
	majorVersion string
	minorVersion string
}

func newClient(id int, ipid string, transport Transport, server *Server) *Client {
	return &Client{
		ID:            id,
		IPID:          ipid,
		server:        server,
		transport:     transport,
		charID:        -1,
		pairedCharID:  -1,
		pos:           "wit",
		evidenceIndex: map[int]int{},
	}
}

// SendCommand sends one framed command to the client.
func (c *Client) SendCommand(name string, args ...string) {
	c.transport.SendCommand(name, args...)
}

// SendOOC sends a private server notice over the OOC channel.
func (c *Client) SendOOC(msg string) {
	c.SendCommand("CT", c.server.Config.Hostname, msg, "1")
}

// Disconnect tears down the client's transport. Removal from the client
// table happens when the read loop observes the closed connection.
func (c *Client) Disconnect() {
	c.transport.Close()
}

// Checked reports whether the client passed the handshake ban check.
func (c *Client) Checked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked
}

// SetChecked marks the client as authenticated.
func (c *Client) SetChecked(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = v
}

// HDID returns the device identifier submitted in the handshake.
func (c *Client) HDID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hdid
}

// SetHDID records the device identifier.
func (c *Client) SetHDID(hdid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hdid = hdid
}

// CharID returns the selected character id, -1 for spectators.
func (c *Client) CharID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.charID
}

// CharName returns the catalog name of the selected character.
func (c *Client) CharName() string {
	return c.server.CharName(c.CharID())
}

// ChangeCharacter selects a character by id. The id must be a valid
// catalog index not claimed by another client in the same area.
func (c *Client) ChangeCharacter(charID int) error {
	if charID < -1 || charID >= len(c.server.Characters) {
		return fmt.Errorf("invalid character id %d", charID)
	}
	if charID != -1 {
		for _, other := range c.server.Clients.InArea(c.AreaID()) {
			if other.ID != c.ID && other.CharID() == charID {
				return fmt.Errorf("character %d is taken", charID)
			}
		}
	}
	c.mu.Lock()
	c.charID = charID
	c.mu.Unlock()
	c.SendCommand("PV", itoa(c.ID), "CID", itoa(charID))
	return nil
}

// AreaID returns the id of the client's current area.
func (c *Client) AreaID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.areaID
}

// Area returns the client's current area.
func (c *Client) Area() *Area {
	return c.server.Areas.Get(c.AreaID())
}

// SetAreaID moves the client to another area.
func (c *Client) SetAreaID(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.areaID = id
}

// Pos returns the client's courtroom position.
func (c *Client) Pos() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// SetPos sets the courtroom position.
func (c *Client) SetPos(pos string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = pos
}

// Name returns the validated OOC display name.
func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// FakeName returns the last submitted OOC name, validated or not.
func (c *Client) FakeName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fakeName
}

// SetName records a name that passed the validity policy as both the
// real and the fake name.
func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	c.fakeName = name
}

// SetFakeName records a rejected name submission without adopting it.
func (c *Client) SetFakeName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fakeName = name
}

// Showname returns the per-room display name override.
func (c *Client) Showname() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showname
}

// SetShowname sets the per-room display name override.
func (c *Client) SetShowname(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showname = s
}

// PairInfo is the snapshot of a client's pairing state read during
// another client's pairing scan.
type PairInfo struct {
	PairedCharID  int
	OffsetPair    string
	LastSprite    string
	Flip          int
	ClaimedFolder string
}

// PairInfo returns the client's current pairing snapshot.
func (c *Client) PairInfo() PairInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PairInfo{
		PairedCharID:  c.pairedCharID,
		OffsetPair:    c.offsetPair,
		LastSprite:    c.lastSprite,
		Flip:          c.flip,
		ClaimedFolder: c.claimedFolder,
	}
}

// UpdatePairInfo stores the pairing fields of an outgoing IC message.
// The sprite is kept only when keepSprite is set, so non-talking
// animation types do not clobber the last talking sprite.
func (c *Client) UpdatePairInfo(pairedCharID int, offsetPair, sprite string, keepSprite bool, flip int, folder string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairedCharID = pairedCharID
	c.offsetPair = offsetPair
	if keepSprite {
		c.lastSprite = sprite
	}
	c.flip = flip
	c.claimedFolder = folder
}

// AFK reports whether the client is marked away-from-keyboard.
func (c *Client) AFK() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.afk
}

// SetAFK sets or clears the away-from-keyboard mark.
func (c *Client) SetAFK(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afk = v
}

// ResolveEvidence maps a personal evidence index through the client's
// view of the area's evidence list. Index 0 and unknown indices mean
// "no evidence".
func (c *Client) ResolveEvidence(idx int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx == 0 {
		return 0
	}
	return c.evidenceIndex[idx]
}

// HasEvidence reports whether a personal index resolves for this client.
func (c *Client) HasEvidence(idx int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.evidenceIndex[idx]
	return ok
}

// SetEvidenceIndex replaces the personal index mapping; it is rebuilt on
// every evidence-list broadcast.
func (c *Client) SetEvidenceIndex(m map[int]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evidenceIndex = m
}

// MusicCooldown checks the music flood guard. It returns zero and arms
// the guard when a change is allowed, or the remaining wait otherwise.
func (c *Client) MusicCooldown() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	guard := time.Duration(c.server.Config.MusicFloodguard) * time.Second
	if rem := guard - time.Since(c.lastMusicChange); rem > 0 {
		return rem
	}
	c.lastMusicChange = time.Now()
	return 0
}

// WTCECooldown checks the judge-signal flood guard, arming it on success.
func (c *Client) WTCECooldown() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	guard := time.Duration(c.server.Config.WTCEFloodguard) * time.Second
	if rem := guard - time.Since(c.lastWTCE); rem > 0 {
		return rem
	}
	c.lastWTCE = time.Now()
	return 0
}

const (
	modCallDelay  = 30 * time.Second
	caseCallDelay = 60 * time.Second
)

// CanCallMod reports whether the mod-call delay has elapsed.
func (c *Client) CanCallMod() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastModCall) >= modCallDelay
}

// SetModCallDelay arms the mod-call delay.
func (c *Client) SetModCallDelay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastModCall = time.Now()
}

// CanCallCase reports whether the case-announcement delay has elapsed.
func (c *Client) CanCallCase() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastCaseCall) >= caseCallDelay
}

// SetCaseCallDelay arms the case-announcement delay.
func (c *Client) SetCaseCallDelay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCaseCall = time.Now()
}

// SetVersion records the negotiated client version triple. Missing
// components are left empty.
func (c *Client) SetVersion(release, major, minor string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release = release
	c.majorVersion = major
	c.minorVersion = minor
}

// Version returns the recorded client version triple.
func (c *Client) Version() (release, major, minor string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.release, c.majorVersion, c.minorVersion
}
