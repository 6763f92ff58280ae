package game

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Area is one room: a shared scene with membership, ownership, display
// policy and testimony state. Membership is derived from each client's
// area id, so the arena holds no back-pointers into client objects.
//
// All mutable state below mu is accessed under the area lock. Handlers
// acquire it once at entry (Lock/Unlock) and hold it for their whole
// read-modify-write sequence, which restores the atomicity the original
// cooperative scheduler provided implicitly.
type Area struct {
	server *Server

	ID           int
	Name         string
	Abbreviation string
	Background   string

	mu sync.Mutex

	// Policy flags.
	ShoutsAllowed       bool
	IniswapAllowed      bool
	BlankpostingAllowed bool
	NonIntPresOnly      bool
	ShownameAllowed     bool
	Jukebox             bool
	Locked              bool

	inviteList map[int]bool

	// Owners have their own lock so ownership checks work both with and
	// without the area lock held (the IC sub-language checks ownership
	// of other areas mid-handler).
	ownersMu sync.RWMutex
	owners   map[int]bool

	evidence *EvidenceList

	lastICMessage   []string
	nextMessageTime time.Time

	testimony        Testimony
	testifying       bool
	examining        bool
	recording        bool
	examineIndex     int
	recordedMessages [][]string

	judgeLog []string

	defHP int
	proHP int

	currentMusic       string
	currentMusicPlayer string
	jukeboxVotes       []JukeboxVote
}

// Lock acquires the area lock for the duration of a handler invocation.
func (a *Area) Lock() { a.mu.Lock() }

// Unlock releases the area lock.
func (a *Area) Unlock() { a.mu.Unlock() }

// Clients returns a snapshot of the clients currently in the area.
func (a *Area) Clients() []*Client {
	return a.server.Clients.InArea(a.ID)
}

// SendCommand sends a command to every client in the area.
func (a *Area) SendCommand(name string, args ...string) {
	for _, c := range a.Clients() {
		c.SendCommand(name, args...)
	}
}

// SendOwnerCommand sends a command to every owner who is not currently
// in the area, so CMs can monitor their rooms remotely.
func (a *Area) SendOwnerCommand(name string, args ...string) {
	for id := range a.ownersSnapshot() {
		c := a.server.Clients.Get(id)
		if c == nil || c.AreaID() == a.ID {
			continue
		}
		c.SendCommand(name, args...)
	}
}

func (a *Area) ownersSnapshot() map[int]bool {
	a.ownersMu.RLock()
	defer a.ownersMu.RUnlock()
	out := make(map[int]bool, len(a.owners))
	for id := range a.owners {
		out[id] = true
	}
	return out
}

// AddOwner grants a client CM rights over the area.
func (a *Area) AddOwner(c *Client) {
	a.ownersMu.Lock()
	defer a.ownersMu.Unlock()
	a.owners[c.ID] = true
}

// RemoveOwner revokes a client's CM rights.
func (a *Area) RemoveOwner(c *Client) {
	a.ownersMu.Lock()
	defer a.ownersMu.Unlock()
	delete(a.owners, c.ID)
}

// IsOwner reports whether a client is a CM of the area.
func (a *Area) IsOwner(c *Client) bool {
	a.ownersMu.RLock()
	defer a.ownersMu.RUnlock()
	return a.owners[c.ID]
}

// Invite adds a client id to the invite list of a locked area.
// Caller holds the area lock.
func (a *Area) Invite(id int) {
	a.inviteList[id] = true
}

// Uninvite removes a client id from the invite list.
// Caller holds the area lock.
func (a *Area) Uninvite(id int) {
	delete(a.inviteList, id)
}

// CannotICInteract reports whether a locked area's invite policy bars
// the client from acting. Caller holds the area lock.
func (a *Area) CannotICInteract(c *Client) bool {
	return a.Locked && !c.IsMod && !a.IsOwner(c) && !a.inviteList[c.ID]
}

// CanSendMessage reports whether the pacing delay since the last IC
// message has elapsed. Caller holds the area lock.
func (a *Area) CanSendMessage() bool {
	return !time.Now().Before(a.nextMessageTime)
}

// SetNextMsgDelay arms the pacing delay proportionally to the message
// length. Caller holds the area lock.
func (a *Area) SetNextMsgDelay(msgLen int) {
	delay := 100 + 60*msgLen
	if delay > 3000 {
		delay = 3000
	}
	a.nextMessageTime = time.Now().Add(time.Duration(delay) * time.Millisecond)
}

// LastICMessage returns the last broadcast IC field set, or nil.
// Caller holds the area lock.
func (a *Area) LastICMessage() []string {
	return a.lastICMessage
}

// SetLastICMessage records the spam-dedup fingerprint.
// Caller holds the area lock.
func (a *Area) SetLastICMessage(args []string) {
	a.lastICMessage = args
}

// ClientCanAdditive reports whether the client may use additive text:
// only the sender of the area's previous IC message can continue it.
// Caller holds the area lock.
func (a *Area) ClientCanAdditive(c *Client) bool {
	if len(a.lastICMessage) <= icFieldCharID {
		return false
	}
	return a.lastICMessage[icFieldCharID] == itoa(c.CharID())
}

// IsIniswap reports whether a message uses swapped character assets in
// an area that forbids them.
func (a *Area) IsIniswap(c *Client, folder string) bool {
	if a.IniswapAllowed || folder == "" {
		return false
	}
	return folder != c.CharName()
}

// Field offsets into the outbound IC field set used for the spam
// fingerprint and additive policy.
const (
	icFieldText   = 4
	icFieldCharID = 8
)

// Recording reports whether the transcript recorder is active.
// Caller holds the area lock.
func (a *Area) Recording() bool { return a.recording }

// SetRecording toggles the transcript recorder.
// Caller holds the area lock.
func (a *Area) SetRecording(v bool) { a.recording = v }

// RecordMessage appends raw pre-transform IC arguments to the
// transcript. Caller holds the area lock.
func (a *Area) RecordMessage(args []string) {
	a.recordedMessages = append(a.recordedMessages, args)
}

// RecordedMessages returns the transcript. Caller holds the area lock.
func (a *Area) RecordedMessages() [][]string { return a.recordedMessages }

// AddToJudgeLog appends an action to the rolling judge log.
// Caller holds the area lock.
func (a *Area) AddToJudgeLog(c *Client, action string) {
	entry := fmt.Sprintf("[%s] %s (%s) %s",
		time.Now().Format("15:04"), c.CharName(), c.IPID, action)
	a.judgeLog = append(a.judgeLog, entry)
	if len(a.judgeLog) > 10 {
		a.judgeLog = a.judgeLog[len(a.judgeLog)-10:]
	}
}

// JudgeLog returns the rolling judge log. Caller holds the area lock.
func (a *Area) JudgeLog() []string { return a.judgeLog }

// ChangeHP sets a penalty bar. Side 1 is the defense bar, side 2 the
// prosecution bar; values run 0 through 10. Caller holds the area lock.
func (a *Area) ChangeHP(side, val int) error {
	if val < 0 || val > 10 {
		return fmt.Errorf("invalid penalty value %d", val)
	}
	switch side {
	case 1:
		a.defHP = val
	case 2:
		a.proHP = val
	default:
		return fmt.Errorf("invalid penalty side %d", side)
	}
	a.SendCommand("HP", itoa(side), itoa(val))
	return nil
}

// HP returns the current penalty bars. Caller holds the area lock.
func (a *Area) HP() (def, pro int) { return a.defHP, a.proHP }

// JukeboxVote is one client's pending song request.
type JukeboxVote struct {
	ClientID int
	Name     string
	Length   int
	Showname string
}

// AddJukeboxVote records a song vote, replacing the client's previous
// one. Caller holds the area lock.
func (a *Area) AddJukeboxVote(c *Client, name string, length int, showname string) {
	for i := range a.jukeboxVotes {
		if a.jukeboxVotes[i].ClientID == c.ID {
			a.jukeboxVotes[i] = JukeboxVote{c.ID, name, length, showname}
			return
		}
	}
	a.jukeboxVotes = append(a.jukeboxVotes, JukeboxVote{c.ID, name, length, showname})
}

// JukeboxVotes returns the pending votes. Caller holds the area lock.
func (a *Area) JukeboxVotes() []JukeboxVote { return a.jukeboxVotes }

// PlayMusic starts playback of a song for the whole area.
// Caller holds the area lock.
func (a *Area) PlayMusic(name string, charID int, showname, effects string) {
	a.currentMusic = name
	if showname != "" {
		a.currentMusicPlayer = showname
	} else {
		a.currentMusicPlayer = a.server.CharName(charID)
	}
	a.SendCommand("MC", name, itoa(charID), showname, "1", "0", effects)
}

// CurrentMusic returns the playing song and the display name of whoever
// started it. Caller holds the area lock.
func (a *Area) CurrentMusic() (song, player string) {
	return a.currentMusic, a.currentMusicPlayer
}

// abbreviate derives a short tag from an area name: initials for
// multi-word names, a truncated uppercase prefix otherwise.
func abbreviate(name string) string {
	words := strings.Fields(name)
	if len(words) >= 2 {
		var b strings.Builder
		for _, w := range words {
			b.WriteString(strings.ToUpper(w[:1]))
		}
		abbr := b.String()
		if len(abbr) > 4 {
			abbr = abbr[:4]
		}
		return abbr
	}
	upper := strings.ToUpper(name)
	if len(upper) > 3 {
		upper = upper[:3]
	}
	return upper
}
