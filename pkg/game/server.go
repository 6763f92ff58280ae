// Package game holds the shared state of the server: the arena of areas
// and clients (addressed by stable integer ids), the character and music
// catalogs, and the policy operations the protocol engine invokes on them.
package game

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/attorneyonline/tsugo/pkg/auditlog"
	"github.com/attorneyonline/tsugo/pkg/banlist"
	"github.com/attorneyonline/tsugo/pkg/config"
)

// Version is the protocol-visible server version.
const Version = "tsugo 1.0"

// Server is the aggregate game state shared by every connection.
type Server struct {
	Config     *config.Config
	Characters []string
	Music      *MusicList
	Areas      *AreaManager
	Clients    *ClientManager
	Bans       *banlist.Store
	Audit      *auditlog.Logger

	mu   sync.RWMutex
	motd string
}

// NewServer builds the game state from configuration. Bans and Audit may
// be nil in tests; handlers treat them as optional collaborators.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		Config:  cfg,
		Music:   &MusicList{},
		Clients: NewClientManager(cfg.PlayerLimit),
		motd:    cfg.MOTD,
	}
	s.Areas = NewAreaManager(s)
	return s
}

// LoadContent reads the character, music and area catalogs from disk.
func (s *Server) LoadContent() error {
	chars, err := loadCharacters(s.Config.CharactersFile)
	if err != nil {
		return err
	}
	s.Characters = chars

	music, err := LoadMusicList(s.Config.MusicFile)
	if err != nil {
		return err
	}
	s.Music = music

	if err := s.Areas.Load(s.Config.AreasFile); err != nil {
		return err
	}
	return nil
}

// MOTD returns the current message of the day.
func (s *Server) MOTD() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.motd
}

// SetMOTD replaces the message of the day (config watcher hook).
func (s *Server) SetMOTD(motd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motd = motd
}

// PlayerCount returns the number of authenticated clients.
func (s *Server) PlayerCount() int {
	n := 0
	for _, c := range s.Clients.All() {
		if c.Checked() {
			n++
		}
	}
	return n
}

// CharName resolves a character id to its catalog name.
// Spectators (id -1) and out-of-range ids resolve to a placeholder.
func (s *Server) CharName(charID int) string {
	if charID < 0 || charID >= len(s.Characters) {
		return "Spectator"
	}
	return s.Characters[charID]
}

// SendAllCommandPred sends a command to every client satisfying pred.
func (s *Server) SendAllCommandPred(pred func(*Client) bool, name string, args ...string) {
	for _, c := range s.Clients.All() {
		if pred(c) {
			c.SendCommand(name, args...)
		}
	}
}

// loadCharacters reads the playable character list from a YAML file.
func loadCharacters(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading characters %s: %w", path, err)
	}
	var chars []string
	if err := yaml.Unmarshal(data, &chars); err != nil {
		return nil, fmt.Errorf("parsing characters %s: %w", path, err)
	}
	return chars, nil
}

// Pages splits a list into fixed-size pages for the legacy paged
// list commands.
func Pages(items []string, perPage int) [][]string {
	if perPage <= 0 {
		perPage = 10
	}
	var pages [][]string
	for i := 0; i < len(items); i += perPage {
		end := i + perPage
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, items[i:end])
	}
	if pages == nil {
		pages = [][]string{{}}
	}
	return pages
}
