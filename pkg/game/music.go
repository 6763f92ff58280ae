package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StopSong is the reserved track name that stops playback.
const StopSong = "~stop.mp3"

// Song is one catalog entry; Length is the track duration in seconds
// (-1 means unknown, no loop scheduling).
type Song struct {
	Name   string `yaml:"name"`
	Length int    `yaml:"length"`
}

// MusicCategory is one catalog section.
type MusicCategory struct {
	Category string `yaml:"category"`
	Songs    []Song `yaml:"songs"`
}

// MusicList is the music catalog.
type MusicList struct {
	Categories []MusicCategory
}

// LoadMusicList reads the music catalog from a YAML file.
func LoadMusicList(path string) (*MusicList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading music %s: %w", path, err)
	}
	var cats []MusicCategory
	if err := yaml.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("parsing music %s: %w", path, err)
	}
	return &MusicList{Categories: cats}, nil
}

// IsCategory reports whether a name is a category header rather than a
// playable track.
func (ml *MusicList) IsCategory(name string) bool {
	for _, cat := range ml.Categories {
		if cat.Category == name {
			return true
		}
	}
	return false
}

// SongData resolves a track name to its length.
func (ml *MusicList) SongData(name string) (int, error) {
	for _, cat := range ml.Categories {
		for _, s := range cat.Songs {
			if s.Name == name {
				return s.Length, nil
			}
		}
	}
	return 0, fmt.Errorf("song %s is not in the catalog", name)
}

// Names returns all category headers and track names in catalog order,
// the flat shape the client music list expects.
func (ml *MusicList) Names() []string {
	var out []string
	for _, cat := range ml.Categories {
		out = append(out, cat.Category)
		for _, s := range cat.Songs {
			out = append(out, s.Name)
		}
	}
	return out
}
