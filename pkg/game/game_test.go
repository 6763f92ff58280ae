package game

import (
	"sync"
	"testing"

	"github.com/attorneyonline/tsugo/pkg/config"
)

// fakeTransport records outgoing commands.
type fakeTransport struct {
	mu     sync.Mutex
	cmds   [][]string
	closed bool
}

func (f *fakeTransport) SendCommand(name string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, append([]string{name}, args...))
}

func (f *fakeTransport) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeTransport) find(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cmds {
		if c[0] == name {
			return c
		}
	}
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.PlayerLimit = 5
	s := NewServer(cfg)
	s.Characters = []string{"Phoenix", "Edgeworth", "Gumshoe"}
	s.Areas.AddArea("Basement")
	s.Areas.AddArea("Courtroom 1")
	return s
}

func addClient(t *testing.T, s *Server, charID int) (*Client, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	c, ok := s.Clients.New("ip", tr, s)
	if !ok {
		t.Fatal("client limit reached in test setup")
	}
	c.SetChecked(true)
	if charID != -1 {
		if err := c.ChangeCharacter(charID); err != nil {
			t.Fatal(err)
		}
	}
	return c, tr
}
