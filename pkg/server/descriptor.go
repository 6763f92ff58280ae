// Package server is the transport layer: TCP and WebSocket listeners
// that feed raw bytes into the protocol engine and carry its outgoing
// frames back to the client.
package server

import (
	"net"
	"sync"
	"time"

	"github.com/attorneyonline/tsugo/pkg/protocol"
)

const writeDeadline = 5 * time.Second

// Descriptor is one TCP client connection. It implements the outbound
// transport interface the game layer sends through.
type Descriptor struct {
	ID   int
	Conn net.Conn
	Addr string

	mu        sync.Mutex
	closed    bool
	bytesSent int
}

// NewDescriptor wraps an accepted net.Conn.
func NewDescriptor(id int, conn net.Conn) *Descriptor {
	return &Descriptor{
		ID:   id,
		Conn: conn,
		Addr: conn.RemoteAddr().String(),
	}
}

// SendCommand frames and writes one command. Writes from different
// goroutines are serialized so frames never interleave.
func (d *Descriptor) SendCommand(name string, args ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	n, _ := d.Conn.Write([]byte(protocol.JoinCommand(name, args...)))
	d.bytesSent += n
}

// Close shuts the socket down, unblocking the read loop.
func (d *Descriptor) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.Conn.Close()
}

// BytesSent reports the total bytes written to this connection.
func (d *Descriptor) BytesSent() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bytesSent
}
