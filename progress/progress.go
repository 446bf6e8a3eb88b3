// Package progress provides privacy-first reader progress tracking.
// Visitors are identified by a salted hash of their IP and user agent;
// the raw values are never stored.
package progress

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// salt holds the per-installation random salt for visitor hashing,
// protected by sync.Once.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads or generates a persistent salt for visitor hashing.
// Must be called once at startup before any requests are served.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("read hash salt: %w", err)
			return
		}
		if s == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				initErr = fmt.Errorf("generate salt: %w", err)
				return
			}
			s = hex.EncodeToString(b)
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

// getSalt returns the initialized salt value.
func getSalt() string {
	return salt.value
}

// Valid event kinds.
const (
	EventView     = "view"
	EventComplete = "complete"
)

// Event is a single reader-progress record for one lesson.
type Event struct {
	ID        int64     `json:"-"`
	VisitorID string    `json:"visitor_id"` // Anonymous fingerprint hash
	SessionID string    `json:"session_id"` // Client-generated session identifier
	LessonID  string    `json:"lesson_id"`
	Kind      string    `json:"event"` // "view" or "complete"
	Screen    string    `json:"screen,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LessonStats summarizes progress for one lesson.
type LessonStats struct {
	LessonID  string `json:"lesson_id"`
	Views     int    `json:"views"`
	Completes int    `json:"completes"`
	Readers   int    `json:"readers"` // distinct visitors
}

// VisitorID derives the anonymous visitor hash from request attributes.
func VisitorID(ip, userAgent string) string {
	h := sha256.Sum256([]byte(getSalt() + "|" + ip + "|" + userAgent))
	return hex.EncodeToString(h[:16])
}
