package game

import (
	"sort"
	"strconv"
	"sync"
)

// ClientManager tracks all connected clients by id.
type ClientManager struct {
	mu      sync.RWMutex
	clients map[int]*Client
	nextID  int
	limit   int
}

// NewClientManager creates a client manager with a connection cap.
func NewClientManager(limit int) *ClientManager {
	return &ClientManager{
		clients: make(map[int]*Client),
		limit:   limit,
	}
}

// New registers a client for a fresh connection. ok is false when the
// global connection cap has been reached; the caller sends the capacity
// notice and drops the connection.
func (cm *ClientManager) New(ipid string, transport Transport, server *Server) (c *Client, ok bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.limit > 0 && len(cm.clients) >= cm.limit {
		return nil, false
	}
	id := cm.nextID
	cm.nextID++
	c = newClient(id, ipid, transport, server)
	cm.clients[id] = c
	return c, true
}

// Remove unregisters a client.
func (cm *ClientManager) Remove(id int) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.clients, id)
}

// Get returns a client by id, or nil.
func (cm *ClientManager) Get(id int) *Client {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.clients[id]
}

// Count returns the number of registered clients.
func (cm *ClientManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// All returns a snapshot of every client, ordered by id so broadcast
// order is deterministic.
func (cm *ClientManager) All() []*Client {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	out := make([]*Client, 0, len(cm.clients))
	for _, c := range cm.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InArea returns a snapshot of the clients currently in an area,
// ordered by id.
func (cm *ClientManager) InArea(areaID int) []*Client {
	var out []*Client
	for _, c := range cm.All() {
		if c.AreaID() == areaID {
			out = append(out, c)
		}
	}
	return out
}

// IsValidName reports whether an OOC name is acceptable: non-empty and
// not already claimed by another client.
func (cm *ClientManager) IsValidName(name string, self *Client) bool {
	if name == "" {
		return false
	}
	for _, c := range cm.All() {
		if c.ID != self.ID && c.Name() == name {
			return false
		}
	}
	return true
}

// ToggleAFK flips a client's away-from-keyboard mark.
func (cm *ClientManager) ToggleAFK(c *Client) {
	c.SetAFK(!c.AFK())
}

func itoa(n int) string { return strconv.Itoa(n) }
