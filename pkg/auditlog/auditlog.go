// Package auditlog persists an audit trail of connection and room events
// in a SQLite database.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS connect_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at TEXT NOT NULL,
	ipid TEXT NOT NULL,
	hdid TEXT NOT NULL,
	failed INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ic_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at TEXT NOT NULL,
	ipid TEXT NOT NULL,
	area TEXT NOT NULL,
	char_name TEXT NOT NULL,
	showname TEXT NOT NULL,
	message TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS room_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at TEXT NOT NULL,
	event TEXT NOT NULL,
	ipid TEXT NOT NULL,
	area TEXT NOT NULL,
	char_name TEXT NOT NULL,
	message TEXT NOT NULL
);
`

// Logger writes audit events to SQLite.
type Logger struct {
	mu      sync.Mutex
	db      *sql.DB
	timeout time.Duration
}

// Open opens the audit database, sets WAL mode and creates tables.
func Open(path string) (*Logger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("auditlog: opening sqlite %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("auditlog: setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("auditlog: setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("auditlog: creating tables: %w", err)
	}
	return &Logger{db: db, timeout: 5 * time.Second}, nil
}

// Close closes the underlying database.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

func (l *Logger) exec(query string, args ...any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return fmt.Errorf("auditlog: closed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	_, err := l.db.ExecContext(ctx, query, args...)
	return err
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// LogConnect records a handshake attempt. failed marks banned identities.
func (l *Logger) LogConnect(ipid, hdid string, failed bool) error {
	f := 0
	if failed {
		f = 1
	}
	return l.exec("INSERT INTO connect_log (at, ipid, hdid, failed) VALUES (?, ?, ?, ?)",
		now(), ipid, hdid, f)
}

// LogIC records a delivered in-character message.
func (l *Logger) LogIC(ipid, area, charName, showname, message string) error {
	return l.exec("INSERT INTO ic_log (at, ipid, area, char_name, showname, message) VALUES (?, ?, ?, ?, ?, ?)",
		now(), ipid, area, charName, showname, message)
}

// LogRoom records a room-scoped event such as ooc, music, wtce, modcall,
// evidence.add, case or hp.
func (l *Logger) LogRoom(event, ipid, area, charName, message string) error {
	return l.exec("INSERT INTO room_log (at, event, ipid, area, char_name, message) VALUES (?, ?, ?, ?, ?, ?)",
		now(), event, ipid, area, charName, message)
}
