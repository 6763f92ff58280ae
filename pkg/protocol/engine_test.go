package protocol

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/attorneyonline/tsugo/pkg/commands"
	"github.com/attorneyonline/tsugo/pkg/config"
	"github.com/attorneyonline/tsugo/pkg/game"
)

// fakeTransport records outgoing commands instead of writing a socket.
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

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// find returns the first recorded command with the given name.
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

// last returns the most recent recorded command with the given name.
func (f *fakeTransport) last(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.cmds) - 1; i >= 0; i-- {
		if f.cmds[i][0] == name {
			return f.cmds[i]
		}
	}
	return nil
}

func (f *fakeTransport) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.cmds {
		if c[0] == name {
			n++
		}
	}
	return n
}

// notices returns every OOC server notice sent to the transport.
func (f *fakeTransport) notices() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.cmds {
		if c[0] == "CT" && len(c) == 4 && c[3] == "1" {
			out = append(out, c[2])
		}
	}
	return out
}

func (f *fakeTransport) hasNotice(substr string) bool {
	for _, n := range f.notices() {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = nil
}

type testEnv struct {
	t      *testing.T
	g      *game.Server
	e      *Engine
	nextIP int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.PlayerLimit = 10
	g := game.NewServer(cfg)
	g.Characters = []string{"Phoenix", "Edgeworth", "Gumshoe"}
	g.Music = &game.MusicList{Categories: []game.MusicCategory{{
		Category: "== Trial ==",
		Songs: []game.Song{
			{Name: "Objection.opus", Length: 120},
			{Name: "Trial.opus", Length: -1},
		},
	}}}
	g.Areas.AddArea("Basement")
	g.Areas.AddArea("Courtroom 1")
	return &testEnv{t: t, g: g, e: NewEngine(g, commands.NewRegistry())}
}

// connect adds a raw, un-handshaken client.
func (env *testEnv) connect() (*Conn, *game.Client, *fakeTransport) {
	env.t.Helper()
	tr := &fakeTransport{}
	env.nextIP++
	cl, ok := env.g.Clients.New(fmt.Sprintf("ip%d", env.nextIP), tr, env.g)
	if !ok {
		env.t.Fatal("client limit reached in test setup")
	}
	conn := NewConn(env.e, cl)
	env.t.Cleanup(conn.Close)
	return conn, cl, tr
}

// player adds a handshaken client with a character selected.
func (env *testEnv) player(charID int) (*Conn, *game.Client, *fakeTransport) {
	env.t.Helper()
	conn, cl, tr := env.connect()
	cl.SetChecked(true)
	if err := cl.ChangeCharacter(charID); err != nil {
		env.t.Fatalf("selecting character %d: %v", charID, err)
	}
	tr.reset()
	return conn, cl, tr
}

func feed(t *testing.T, c *Conn, data string) {
	t.Helper()
	if err := c.Feed([]byte(data)); err != nil {
		t.Fatalf("Feed(%q): %v", data, err)
	}
}

func TestFramesSplitAcrossReads(t *testing.T) {
	env := newTestEnv(t)
	conn, cl, tr := env.connect()
	cl.SetChecked(true)

	feed(t, conn, "CH#0")
	if tr.count("CHECK") != 0 {
		t.Fatal("dispatched an incomplete frame")
	}
	feed(t, conn, "#%CH#0#%")
	if got := tr.count("CHECK"); got != 2 {
		t.Fatalf("CHECK count = %d, want 2", got)
	}
}

func TestHeaderWithoutDelimiterDisconnects(t *testing.T) {
	env := newTestEnv(t)
	conn, _, _ := env.connect()

	err := conn.Feed([]byte(strings.Repeat("A", 24)))
	if err != ErrProtocol {
		t.Fatalf("Feed = %v, want ErrProtocol", err)
	}
}

func TestOversizeBufferDisconnects(t *testing.T) {
	env := newTestEnv(t)
	conn, _, _ := env.connect()

	err := conn.Feed([]byte("CH#" + strings.Repeat("a", 9000)))
	if err != ErrProtocol {
		t.Fatalf("Feed = %v, want ErrProtocol", err)
	}
}

func TestNullBytesStripped(t *testing.T) {
	env := newTestEnv(t)
	conn, cl, tr := env.connect()
	cl.SetChecked(true)

	feed(t, conn, "C\x00H#0#%")
	if tr.count("CHECK") != 1 {
		t.Fatal("null byte broke frame parsing")
	}
}

func TestUnknownCommandBeforeHandshakeDisconnects(t *testing.T) {
	env := newTestEnv(t)
	conn, _, _ := env.connect()

	if err := conn.Feed([]byte("BOGUS#1#%")); err != ErrProtocol {
		t.Fatalf("Feed = %v, want ErrProtocol", err)
	}
}

func TestUnknownCommandAfterHandshakeIgnored(t *testing.T) {
	env := newTestEnv(t)
	conn, cl, tr := env.connect()
	cl.SetChecked(true)

	feed(t, conn, "BOGUS#1#%CH#0#%")
	if tr.isClosed() {
		t.Fatal("connection dropped for an unknown command after handshake")
	}
	if tr.count("CHECK") != 1 {
		t.Fatal("frames after the unknown command were not processed")
	}
}

func TestLegacyEncryptedCommandName(t *testing.T) {
	env := newTestEnv(t)
	conn, cl, tr := env.connect()

	feed(t, conn, FantaEncrypt("HI")+"#hdid123#%")
	if !cl.Checked() {
		t.Fatal("encrypted HI did not complete the handshake")
	}
	if tr.find("ID") == nil {
		t.Fatal("no ID reply to encrypted HI")
	}
}

func TestDecryptorKeyAdvertised(t *testing.T) {
	env := newTestEnv(t)
	_, _, tr := env.connect()

	time.Sleep(400 * time.Millisecond)
	if got := tr.find("decryptor"); got == nil || got[1] != DecryptKey {
		t.Fatalf("decryptor advertisement = %v", got)
	}
}

func TestKeepaliveIgnoresOtherTraffic(t *testing.T) {
	env := newTestEnv(t)
	env.g.Config.Timeout = 1
	conn, _, tr := env.player(0)

	// A steady stream of non-CH commands must not keep the client alive.
	for i := 0; i < 3; i++ {
		time.Sleep(400 * time.Millisecond)
		feed(t, conn, "RC#%")
	}
	time.Sleep(200 * time.Millisecond)
	if !tr.isClosed() {
		t.Fatal("client without keepalives was not evicted")
	}
}

func TestKeepaliveCHRearmsDeadline(t *testing.T) {
	env := newTestEnv(t)
	env.g.Config.Timeout = 1
	conn, _, tr := env.player(0)

	time.Sleep(600 * time.Millisecond)
	feed(t, conn, "CH#0#%")
	time.Sleep(700 * time.Millisecond)
	if tr.isClosed() {
		t.Fatal("client evicted despite a keepalive inside the deadline")
	}
}
