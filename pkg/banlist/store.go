// Package banlist persists ban records and hardware-id history in a
// bbolt database, keyed by network identity (IPID) and device identity
// (HDID). A ban matching either key blocks the handshake.
package banlist

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"
)

// Bucket name constants for bbolt storage.
var (
	bucketMeta     = []byte("meta")
	bucketBans     = []byte("bans")
	bucketBanIPID  = []byte("ban_ipid")
	bucketBanHDID  = []byte("ban_hdid")
	bucketHDIDs    = []byte("hdids")
)

var keyNextBanID = []byte("nextbanid")

// Ban is one ban record. A nil Until means the ban is indefinite.
type Ban struct {
	ID       int
	Reason   string
	BannedBy string
	Until    *time.Time
}

// Expired reports whether the ban has a past expiry instant.
func (b *Ban) Expired(now time.Time) bool {
	return b.Until != nil && b.Until.Before(now)
}

// Store wraps a bbolt database holding bans and HDID history.
type Store struct {
	bolt *bbolt.DB
}

// Open opens or creates a ban database file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("banlist: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketBans, bucketBanIPID, bucketBanHDID, bucketHDIDs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("banlist: create buckets: %w", err)
	}

	return &Store{bolt: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// AddHDID records that a device identifier was seen from a network identity.
func (s *Store) AddHDID(ipid, hdid string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketHDIDs)
		key := []byte(ipid + "\x00" + hdid)
		return b.Put(key, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// HDIDsFor returns all device identifiers recorded for a network identity.
func (s *Store) HDIDsFor(ipid string) ([]string, error) {
	var out []string
	prefix := []byte(ipid + "\x00")
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketHDIDs).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			out = append(out, string(k[len(prefix):]))
		}
		return nil
	})
	return out, err
}

// AddBan stores a new ban against a network identity and/or a device
// identifier and returns the assigned ban id. Either key may be empty.
func (s *Store) AddBan(ipid, hdid, reason, bannedBy string, until *time.Time) (int, error) {
	var id int
	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		id = 1
		if v := meta.Get(keyNextBanID); v != nil {
			id = int(binary.BigEndian.Uint64(v))
		}
		next := make([]byte, 8)
		binary.BigEndian.PutUint64(next, uint64(id+1))
		if err := meta.Put(keyNextBanID, next); err != nil {
			return err
		}

		ban := &Ban{ID: id, Reason: reason, BannedBy: bannedBy, Until: until}
		data, err := encodeBan(ban)
		if err != nil {
			return fmt.Errorf("banlist: encode ban %d: %w", id, err)
		}
		if err := tx.Bucket(bucketBans).Put(intToKey(id), data); err != nil {
			return err
		}
		if ipid != "" {
			if err := tx.Bucket(bucketBanIPID).Put([]byte(ipid), intToKey(id)); err != nil {
				return err
			}
		}
		if hdid != "" {
			if err := tx.Bucket(bucketBanHDID).Put([]byte(hdid), intToKey(id)); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

// FindBan looks up an active ban by network identity or device identifier.
// Expired bans are ignored. Returns nil when no active ban matches.
func (s *Store) FindBan(ipid, hdid string) (*Ban, error) {
	var ban *Ban
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		bans := tx.Bucket(bucketBans)
		for _, probe := range []struct {
			bucket []byte
			key    string
		}{
			{bucketBanIPID, ipid},
			{bucketBanHDID, hdid},
		} {
			if probe.key == "" {
				continue
			}
			ref := tx.Bucket(probe.bucket).Get([]byte(probe.key))
			if ref == nil {
				continue
			}
			data := bans.Get(ref)
			if data == nil {
				continue
			}
			b, err := decodeBan(data)
			if err != nil {
				return fmt.Errorf("banlist: decode ban: %w", err)
			}
			if b.Expired(time.Now()) {
				continue
			}
			ban = b
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ban, nil
}

// RemoveBan deletes a ban record and its identity index entries.
func (s *Store) RemoveBan(id int) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketBans).Delete(intToKey(id)); err != nil {
			return err
		}
		for _, name := range [][]byte{bucketBanIPID, bucketBanHDID} {
			b := tx.Bucket(name)
			c := b.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				if bytes.Equal(v, intToKey(id)) {
					if err := b.Delete(k); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// intToKey converts an int to an 8-byte big-endian key.
func intToKey(n int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}

// encodeBan serializes a Ban to bytes using gob.
func encodeBan(b *Ban) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeBan deserializes bytes back into a Ban.
func decodeBan(data []byte) (*Ban, error) {
	var b Ban
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}
