package game

import "testing"

func TestClientLimit(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 5; i++ {
		addClient(t, s, -1)
	}
	if _, ok := s.Clients.New("ip6", &fakeTransport{}, s); ok {
		t.Fatal("client admitted over the player limit")
	}
	if got := s.Clients.Count(); got != 5 {
		t.Fatalf("count = %d, want 5", got)
	}
}

func TestClientIDsMonotonic(t *testing.T) {
	s := newTestServer(t)
	c0, _ := addClient(t, s, -1)
	c1, _ := addClient(t, s, -1)
	if c0.ID != 0 || c1.ID != 1 {
		t.Fatalf("ids = %d, %d", c0.ID, c1.ID)
	}
	s.Clients.Remove(c0.ID)
	c2, _ := addClient(t, s, -1)
	if c2.ID != 2 {
		t.Fatalf("id after removal = %d, want 2", c2.ID)
	}
	if s.Clients.Get(c0.ID) != nil {
		t.Fatal("removed client still registered")
	}
}

func TestInArea(t *testing.T) {
	s := newTestServer(t)
	c0, _ := addClient(t, s, -1)
	c1, _ := addClient(t, s, -1)
	c1.SetAreaID(1)

	basement := s.Clients.InArea(0)
	if len(basement) != 1 || basement[0].ID != c0.ID {
		t.Fatalf("area 0 members = %v", basement)
	}
	court := s.Clients.InArea(1)
	if len(court) != 1 || court[0].ID != c1.ID {
		t.Fatalf("area 1 members = %v", court)
	}
}

func TestIsValidName(t *testing.T) {
	s := newTestServer(t)
	c0, _ := addClient(t, s, -1)
	c1, _ := addClient(t, s, -1)
	c0.SetName("Maya")

	if s.Clients.IsValidName("", c1) {
		t.Fatal("empty name accepted")
	}
	if s.Clients.IsValidName("Maya", c1) {
		t.Fatal("claimed name accepted for another client")
	}
	if !s.Clients.IsValidName("Maya", c0) {
		t.Fatal("client barred from its own name")
	}
	if !s.Clients.IsValidName("Pearl", c1) {
		t.Fatal("free name rejected")
	}
}

func TestToggleAFK(t *testing.T) {
	s := newTestServer(t)
	c, _ := addClient(t, s, -1)
	s.Clients.ToggleAFK(c)
	if !c.AFK() {
		t.Fatal("toggle did not mark the client away")
	}
	s.Clients.ToggleAFK(c)
	if c.AFK() {
		t.Fatal("toggle did not clear the mark")
	}
}

func TestCharacterTaken(t *testing.T) {
	s := newTestServer(t)
	addClient(t, s, 0)
	c, _ := addClient(t, s, -1)
	if err := c.ChangeCharacter(0); err == nil {
		t.Fatal("duplicate character assignment accepted")
	}
	if err := c.ChangeCharacter(1); err != nil {
		t.Fatal(err)
	}
	if got := c.CharName(); got != "Edgeworth" {
		t.Fatalf("char = %q", got)
	}
}
