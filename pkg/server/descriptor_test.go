package server

import (
	"bufio"
	"net"
	"strings"
	"testing"
)

func newPipeDescriptor(t *testing.T) (*Descriptor, net.Conn) {
	t.Helper()
	client, srv := net.Pipe()
	d := NewDescriptor(0, srv)
	t.Cleanup(func() {
		d.Close()
		client.Close()
	})
	return d, client
}

// readFrame pulls one #%-terminated frame off the client side.
func readFrame(t *testing.T, conn net.Conn) string {
	t.Helper()
	r := bufio.NewReader(conn)
	var b strings.Builder
	for {
		ch, err := r.ReadByte()
		if err != nil {
			t.Fatal(err)
		}
		b.WriteByte(ch)
		if strings.HasSuffix(b.String(), "#%") {
			return b.String()
		}
	}
}

func TestDescriptorFraming(t *testing.T) {
	d, client := newPipeDescriptor(t)

	go d.SendCommand("CT", "server", "hello", "1")
	if got := readFrame(t, client); got != "CT#server#hello#1#%" {
		t.Fatalf("frame = %q", got)
	}
	if d.BytesSent() == 0 {
		t.Fatal("bytes sent not counted")
	}
}

func TestDescriptorClosedWriteDropped(t *testing.T) {
	d, _ := newPipeDescriptor(t)
	d.Close()
	// Must not block or panic with no reader on the other side.
	d.SendCommand("CT", "server", "late", "1")
	if d.BytesSent() != 0 {
		t.Fatal("write counted after close")
	}
}

func TestIPIDStable(t *testing.T) {
	a := IPID("203.0.113.7")
	b := IPID("203.0.113.7")
	c := IPID("203.0.113.8")
	if a != b {
		t.Fatalf("same host hashed differently: %q vs %q", a, b)
	}
	if a == c {
		t.Fatal("different hosts collided")
	}
}
