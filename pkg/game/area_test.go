package game

import (
	"testing"
	"time"
)

func TestAbbreviate(t *testing.T) {
	cases := []struct{ name, want string }{
		{"Basement", "BAS"},
		{"Courtroom 1", "C1"},
		{"Old Town Hall West", "OTHW"},
		{"The Grand Courtroom Of The Realm", "TGCO"},
		{"HQ", "HQ"},
	}
	for _, tc := range cases {
		if got := abbreviate(tc.name); got != tc.want {
			t.Errorf("abbreviate(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestMessagePacing(t *testing.T) {
	s := newTestServer(t)
	a := s.Areas.Default()

	a.Lock()
	defer a.Unlock()
	if !a.CanSendMessage() {
		t.Fatal("fresh area blocked the first message")
	}
	a.SetNextMsgDelay(0)
	if a.CanSendMessage() {
		t.Fatal("message allowed inside the pacing window")
	}
	a.Unlock()
	time.Sleep(150 * time.Millisecond)
	a.Lock()
	if !a.CanSendMessage() {
		t.Fatal("message still blocked after the window elapsed")
	}
}

func TestChangeHPValidation(t *testing.T) {
	s := newTestServer(t)
	a := s.Areas.Default()

	a.Lock()
	defer a.Unlock()
	if err := a.ChangeHP(1, 3); err != nil {
		t.Fatal(err)
	}
	if err := a.ChangeHP(3, 5); err == nil {
		t.Fatal("accepted invalid side")
	}
	if err := a.ChangeHP(2, 11); err == nil {
		t.Fatal("accepted out-of-range value")
	}
	def, pro := a.HP()
	if def != 3 || pro != 10 {
		t.Fatalf("bars = %d/%d", def, pro)
	}
}

func TestAdditivePermission(t *testing.T) {
	s := newTestServer(t)
	c1, _ := addClient(t, s, 0)
	c2, _ := addClient(t, s, 1)
	a := s.Areas.Default()

	a.Lock()
	defer a.Unlock()
	if a.ClientCanAdditive(c1) {
		t.Fatal("additive allowed with no previous message")
	}
	last := make([]string, 30)
	last[icFieldCharID] = "0"
	a.SetLastICMessage(last)
	if !a.ClientCanAdditive(c1) {
		t.Fatal("additive denied to the last speaker")
	}
	if a.ClientCanAdditive(c2) {
		t.Fatal("additive allowed to a different speaker")
	}
}

func TestLockedAreaInteraction(t *testing.T) {
	s := newTestServer(t)
	stranger, _ := addClient(t, s, 0)
	invitee, _ := addClient(t, s, 1)
	owner, _ := addClient(t, s, 2)
	mod, _ := addClient(t, s, -1)
	mod.IsMod = true
	a := s.Areas.Default()
	a.AddOwner(owner)

	a.Lock()
	defer a.Unlock()
	a.Locked = true
	a.Invite(invitee.ID)

	if !a.CannotICInteract(stranger) {
		t.Fatal("stranger allowed in a locked area")
	}
	for _, c := range []*Client{invitee, owner, mod} {
		if a.CannotICInteract(c) {
			t.Fatalf("client %d barred from a locked area", c.ID)
		}
	}

	a.Uninvite(invitee.ID)
	if !a.CannotICInteract(invitee) {
		t.Fatal("uninvited client still allowed")
	}
}

func TestJukeboxVoteReplacement(t *testing.T) {
	s := newTestServer(t)
	c1, _ := addClient(t, s, 0)
	c2, _ := addClient(t, s, 1)
	a := s.Areas.Default()

	a.Lock()
	defer a.Unlock()
	a.AddJukeboxVote(c1, "First.opus", 100, "")
	a.AddJukeboxVote(c2, "Other.opus", 100, "")
	a.AddJukeboxVote(c1, "Second.opus", 100, "")

	votes := a.JukeboxVotes()
	if len(votes) != 2 {
		t.Fatalf("vote count = %d, want 2", len(votes))
	}
	if votes[0].Name != "Second.opus" {
		t.Fatalf("replaced vote = %q", votes[0].Name)
	}
}

func TestJudgeLogCap(t *testing.T) {
	s := newTestServer(t)
	c, _ := addClient(t, s, 0)
	a := s.Areas.Default()

	a.Lock()
	defer a.Unlock()
	for i := 0; i < 15; i++ {
		a.AddToJudgeLog(c, "used WT")
	}
	if got := len(a.JudgeLog()); got != 10 {
		t.Fatalf("judge log length = %d, want 10", got)
	}
}

func TestEvidenceVisibility(t *testing.T) {
	s := newTestServer(t)
	plain, plainTr := addClient(t, s, 0)
	mod, modTr := addClient(t, s, 1)
	mod.IsMod = true
	a := s.Areas.Default()

	a.Lock()
	defer a.Unlock()
	a.Evidence().Add("Public", "d", "i", "all")
	a.Evidence().Add("Hidden", "d", "i", "hid")
	a.BroadcastEvidenceList()

	if le := plainTr.find("LE"); le == nil || len(le)-1 != 1 {
		t.Fatalf("plain view = %v", le)
	}
	if le := modTr.find("LE"); le == nil || len(le)-1 != 2 {
		t.Fatalf("mod view = %v", le)
	}
	// The plain client's index still points at the right global item.
	if got := plain.ResolveEvidence(1); got != 1 {
		t.Fatalf("resolve = %d, want 1", got)
	}
	if got := mod.ResolveEvidence(2); got != 2 {
		t.Fatalf("mod resolve = %d, want 2", got)
	}
}
