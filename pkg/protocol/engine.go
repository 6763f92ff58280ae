// Package protocol implements the AO network protocol: frame
// extraction, the legacy fantacrypt handshake, argument validation and
// the handler for every network command.
package protocol

import (
	"errors"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/attorneyonline/tsugo/pkg/commands"
	"github.com/attorneyonline/tsugo/pkg/game"
)

// ErrProtocol is returned by Feed when the peer violates framing rules.
// The transport layer drops the connection on it.
var ErrProtocol = errors.New("protocol violation")

const (
	// maxBuffer caps the unframed receive buffer.
	maxBuffer = 8192
	// headerProbe is how far into the buffer a field delimiter must
	// appear before the peer is written off as not speaking AO.
	headerProbe = 24
	// decryptorDelay is how long after connect the legacy key
	// advertisement goes out.
	decryptorDelay = 250 * time.Millisecond
)

// Engine holds the per-server pieces shared by every connection: the
// game state, the OOC command registry and the compiled zalgo filter.
type Engine struct {
	Game     *game.Server
	Commands *commands.Registry

	// OnCommand, when set, is called once per dispatched command.
	OnCommand func(name string)

	dezalgoRe *regexp.Regexp
}

// NewEngine wires an engine to loaded game state.
func NewEngine(g *game.Server, reg *commands.Registry) *Engine {
	return &Engine{
		Game:      g,
		Commands:  reg,
		dezalgoRe: dezalgoPattern(g.Config.ZalgoTolerance),
	}
}

// Conn is the protocol state of one connection: the receive buffer and
// the keepalive and handshake timers. The transport layer feeds it raw
// bytes and closes it when the socket goes away.
type Conn struct {
	engine *Engine
	client *game.Client

	buf string

	mu        sync.Mutex
	closed    bool
	pingTimer *time.Timer
	seedTimer *time.Timer
}

// NewConn starts protocol handling for a freshly accepted client: the
// legacy decryptor key is advertised shortly after connect and a
// keepalive deadline is armed.
func NewConn(e *Engine, cl *game.Client) *Conn {
	c := &Conn{engine: e, client: cl}
	c.seedTimer = time.AfterFunc(decryptorDelay, func() {
		cl.SendCommand("decryptor", DecryptKey)
	})
	timeout := time.Duration(e.Game.Config.Timeout) * time.Second
	c.pingTimer = time.AfterFunc(timeout, func() {
		log.Printf("[%d] keepalive deadline expired", cl.ID)
		cl.Disconnect()
	})
	return c
}

// Close cancels the connection's timers. Safe to call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.pingTimer.Stop()
	c.seedTimer.Stop()
}

// refreshPing rearms the drop timer. Only the CH keepalive calls it:
// other traffic, valid or not, does not keep an idle client alive.
func (c *Conn) refreshPing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.pingTimer.Reset(time.Duration(c.engine.Game.Config.Timeout) * time.Second)
}

// Feed appends raw bytes to the receive buffer and dispatches every
// complete frame found in it. A non-nil error means the peer broke the
// framing rules and must be disconnected.
func (c *Conn) Feed(data []byte) error {
	buf := c.buf + string(data)
	buf = strings.ToValidUTF8(buf, "")
	buf = strings.ReplaceAll(buf, "\x00", "")
	if len(buf) > maxBuffer {
		return ErrProtocol
	}
	if len(buf) >= headerProbe && !strings.Contains(buf[:headerProbe], "#") {
		return ErrProtocol
	}
	for {
		frame, rest, found := strings.Cut(buf, "#%")
		if !found {
			break
		}
		buf = rest
		if err := c.handleFrame(frame); err != nil {
			c.buf = buf
			return err
		}
	}
	c.buf = buf
	return nil
}

// handleFrame decodes one frame and dispatches it. Frames from clients
// that predate the plaintext handshake carry a fantacrypt-encrypted
// command name, marked by a leading '#' or by starting with the hex of
// the fixed key.
func (c *Conn) handleFrame(frame string) error {
	if len(frame) < 2 {
		return nil
	}
	if frame[0] == '#' || frame[0] == '3' || frame[0] == '4' {
		if frame[0] == '#' {
			frame = frame[1:]
		}
		head, rest, found := strings.Cut(frame, "#")
		if found {
			frame = FantaDecrypt(head) + "#" + rest
		} else {
			frame = FantaDecrypt(head)
		}
	}

	fields := strings.Split(frame, "#")
	name, args := fields[0], fields[1:]
	handler, ok := netHandlers[name]
	if !ok {
		if c.client.Checked() {
			log.Printf("[%d] unknown command %q", c.client.ID, name)
			return nil
		}
		return ErrProtocol
	}
	if c.engine.OnCommand != nil {
		c.engine.OnCommand(name)
	}
	handler(c, args)
	return nil
}
