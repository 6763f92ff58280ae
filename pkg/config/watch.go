package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// WatchMOTD starts an fsnotify watcher on the MOTD file and invokes
// onChange with the new text whenever it is rewritten on disk.
// Returns a stop function; a no-op stop is returned when no file is set.
func (c *Config) WatchMOTD(onChange func(motd string)) func() {
	if c.MOTDFile == "" {
		return func() {}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WARNING: could not start MOTD watcher: %v", err)
		return func() {}
	}

	var once sync.Once
	stop := func() { once.Do(func() { watcher.Close() }) }

	target := filepath.Base(c.MOTDFile)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				data, err := os.ReadFile(c.MOTDFile)
				if err != nil {
					log.Printf("WARNING: could not reload MOTD: %v", err)
					continue
				}
				motd := strings.TrimRight(string(data), "\r\n")
				log.Printf("MOTD reloaded from %s", c.MOTDFile)
				onChange(motd)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("MOTD watcher error: %v", err)
			}
		}
	}()

	// Watch the directory so editors that replace the file are caught.
	if err := watcher.Add(filepath.Dir(c.MOTDFile)); err != nil {
		log.Printf("WARNING: could not watch %s: %v", c.MOTDFile, err)
		stop()
		return func() {}
	}
	return stop
}
