package game

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// AreaManager owns the arena of areas, addressed by id.
type AreaManager struct {
	server *Server
	mu     sync.RWMutex
	areas  []*Area
}

// NewAreaManager creates an empty area manager.
func NewAreaManager(server *Server) *AreaManager {
	return &AreaManager{server: server}
}

// areaDef is one entry of the areas YAML file. Pointer booleans
// distinguish "absent" from "explicitly false".
type areaDef struct {
	Area                string `yaml:"area"`
	Background          string `yaml:"background"`
	ShoutsAllowed       *bool  `yaml:"shouts_allowed"`
	IniswapAllowed      *bool  `yaml:"iniswap_allowed"`
	BlankpostingAllowed *bool  `yaml:"blankposting_allowed"`
	NonIntPresOnly      *bool  `yaml:"non_int_pres_only"`
	ShownameAllowed     *bool  `yaml:"showname_changes_allowed"`
	Jukebox             *bool  `yaml:"jukebox"`
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Load reads area definitions from a YAML file. At least one area is
// required; the first becomes the default area for new connections.
func (am *AreaManager) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading areas %s: %w", path, err)
	}
	var defs []areaDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("parsing areas %s: %w", path, err)
	}
	if len(defs) == 0 {
		return fmt.Errorf("areas %s: no areas defined", path)
	}

	am.mu.Lock()
	defer am.mu.Unlock()
	am.areas = nil
	for i, def := range defs {
		am.areas = append(am.areas, newArea(am.server, i, def))
	}
	return nil
}

// AddArea appends an area built from raw settings; used by tests and
// by the default single-area fallback.
func (am *AreaManager) AddArea(name string) *Area {
	am.mu.Lock()
	defer am.mu.Unlock()
	a := newArea(am.server, len(am.areas), areaDef{Area: name})
	am.areas = append(am.areas, a)
	return a
}

func newArea(server *Server, id int, def areaDef) *Area {
	return &Area{
		server:              server,
		ID:                  id,
		Name:                def.Area,
		Abbreviation:        abbreviate(def.Area),
		Background:          def.Background,
		ShoutsAllowed:       boolOr(def.ShoutsAllowed, true),
		IniswapAllowed:      boolOr(def.IniswapAllowed, true),
		BlankpostingAllowed: boolOr(def.BlankpostingAllowed, true),
		NonIntPresOnly:      boolOr(def.NonIntPresOnly, false),
		ShownameAllowed:     boolOr(def.ShownameAllowed, false),
		Jukebox:             boolOr(def.Jukebox, false),
		inviteList:          map[int]bool{},
		owners:              map[int]bool{},
		evidence:            &EvidenceList{},
		testimony:           Testimony{Limit: maxStatements},
		defHP:               10,
		proHP:               10,
	}
}

// Get returns an area by id, or nil.
func (am *AreaManager) Get(id int) *Area {
	am.mu.RLock()
	defer am.mu.RUnlock()
	if id < 0 || id >= len(am.areas) {
		return nil
	}
	return am.areas[id]
}

// Default returns the area new connections start in.
func (am *AreaManager) Default() *Area {
	return am.Get(0)
}

// All returns every area in id order.
func (am *AreaManager) All() []*Area {
	am.mu.RLock()
	defer am.mu.RUnlock()
	out := make([]*Area, len(am.areas))
	copy(out, am.areas)
	return out
}

// Names returns every area name in id order.
func (am *AreaManager) Names() []string {
	var names []string
	for _, a := range am.All() {
		names = append(names, a.Name)
	}
	return names
}

// ByName returns the area with the given name, or nil.
func (am *AreaManager) ByName(name string) *Area {
	for _, a := range am.All() {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// SendRemoteCommand sends a command to a set of areas by id.
func (am *AreaManager) SendRemoteCommand(areaIDs []int, name string, args ...string) {
	for _, id := range areaIDs {
		if a := am.Get(id); a != nil {
			a.SendCommand(name, args...)
		}
	}
}
