package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration. Key names follow the legacy
// config.yaml layout so existing deployments carry over unchanged.
type Config struct {
	// --- Identity ---
	Hostname   string `yaml:"hostname"`    // OOC banner name, also a reserved name prefix
	ServerName string `yaml:"server_name"` // advertised server name
	Software   string `yaml:"software"`    // software identifier sent in the ID reply
	MOTD       string `yaml:"motd"`        // message of the day (inline or via motd_file)
	MOTDFile   string `yaml:"motd_file"`   // optional path; reloaded on change when watched

	// --- Network ---
	Port        int    `yaml:"port"`
	WSPort      int    `yaml:"ws_port"`      // WebSocket port for WebAO, 0 = disabled
	WSDomain    string `yaml:"ws_domain"`    // Let's Encrypt domain for WSS (empty = plain WS)
	CertDir     string `yaml:"cert_dir"`     // autocert cache directory
	MetricsAddr string `yaml:"metrics_addr"` // Prometheus listen address, empty = disabled

	// --- Limits ---
	Timeout        int `yaml:"timeout"`         // keepalive deadline in seconds
	PlayerLimit    int `yaml:"playerlimit"`     // maximum simultaneous clients
	MaxChars       int `yaml:"max_chars"`       // maximum message length
	ZalgoTolerance int `yaml:"zalgo_tolerance"` // combining-mark run threshold

	// --- Flood guards (seconds) ---
	MusicFloodguard int `yaml:"music_change_floodguard"`
	WTCEFloodguard  int `yaml:"wtce_floodguard"`

	// --- Moderation ---
	Modpass string `yaml:"modpass"` // bcrypt hash of the moderator password

	// --- Content ---
	CharactersFile string `yaml:"characters"` // YAML list of playable characters
	MusicFile      string `yaml:"music"`      // YAML music catalog
	AreasFile      string `yaml:"areas"`      // YAML area definitions

	// --- Storage ---
	BanDB   string `yaml:"ban_db"`   // bbolt ban database path
	AuditDB string `yaml:"audit_db"` // sqlite audit log path
}

// Default returns a Config with tsuserver-compatible defaults.
func Default() *Config {
	return &Config{
		Hostname:        "$H",
		ServerName:      "An Unnamed Server",
		Software:        "tsugo",
		MOTD:            "Welcome!",
		Port:            27016,
		Timeout:         250,
		PlayerLimit:     100,
		MaxChars:        256,
		ZalgoTolerance:  3,
		MusicFloodguard: 10,
		WTCEFloodguard:  5,
		CharactersFile:  "config/characters.yaml",
		MusicFile:       "config/music.yaml",
		AreasFile:       "config/areas.yaml",
		BanDB:           "storage/banlist.db",
		AuditDB:         "storage/audit.db",
	}
}

// Load reads a YAML config file, applying defaults for absent keys.
// Relative content paths are resolved against the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	for _, p := range []*string{&cfg.CharactersFile, &cfg.MusicFile, &cfg.AreasFile, &cfg.MOTDFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}

	if cfg.MOTDFile != "" {
		if motd, err := os.ReadFile(cfg.MOTDFile); err == nil {
			cfg.MOTD = strings.TrimRight(string(motd), "\r\n")
		}
	}

	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 256
	}
	if cfg.ZalgoTolerance < 1 {
		cfg.ZalgoTolerance = 1
	}

	return cfg, nil
}
