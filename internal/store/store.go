// Package store persists per-session editor preferences in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
	session  TEXT NOT NULL,
	key      TEXT NOT NULL,
	value    TEXT NOT NULL,
	updated  INTEGER NOT NULL,
	PRIMARY KEY (session, key)
);

CREATE INDEX IF NOT EXISTS idx_prefs_updated ON prefs(updated);
`

const (
	keyReplaceVisible = "search.replace_visible"
	keyQueryPattern   = "search.pattern"
	keyQueryFlags     = "search.flags"
)

// DefaultTTL is how long untouched session preferences are kept.
const DefaultTTL = 30 * 24 * time.Hour

// Prefs is a SQLite-backed preference store keyed by editor session id.
type Prefs struct {
	mu  sync.Mutex
	db  *sql.DB
	ttl time.Duration
}

// SearchPrefs is the remembered search query of a session.
type SearchPrefs struct {
	Pattern       string
	CaseSensitive bool
	WholeWord     bool
	Regex         bool
}

// Open creates or opens a preference database at the given path.
// Preferences untouched for longer than ttl are purged on open.
func Open(dbPath string, ttl time.Duration) (*Prefs, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	p := &Prefs{db: db, ttl: ttl}
	p.purgeStale()
	return p, nil
}

// Close closes the database.
func (p *Prefs) Close() error {
	if p == nil {
		return nil
	}
	return p.db.Close()
}

// GetReplaceVisible returns the stored replace-row visibility of a session.
// Safe to call on a nil receiver (returns miss).
func (p *Prefs) GetReplaceVisible(session string) (visible, ok bool) {
	v, ok := p.get(session, keyReplaceVisible)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// SetReplaceVisible stores the replace-row visibility. No-op on nil receiver.
func (p *Prefs) SetReplaceVisible(session string, visible bool) {
	p.set(session, keyReplaceVisible, strconv.FormatBool(visible))
}

// GetSearch returns the remembered query of a session.
// Safe to call on a nil receiver (returns miss).
func (p *Prefs) GetSearch(session string) (SearchPrefs, bool) {
	pattern, ok := p.get(session, keyQueryPattern)
	if !ok {
		return SearchPrefs{}, false
	}
	flags, _ := p.get(session, keyQueryFlags)
	n, _ := strconv.Atoi(flags)
	return SearchPrefs{
		Pattern:       pattern,
		CaseSensitive: n&1 != 0,
		WholeWord:     n&2 != 0,
		Regex:         n&4 != 0,
	}, true
}

// SetSearch remembers a query. No-op on nil receiver.
func (p *Prefs) SetSearch(session string, s SearchPrefs) {
	n := 0
	if s.CaseSensitive {
		n |= 1
	}
	if s.WholeWord {
		n |= 2
	}
	if s.Regex {
		n |= 4
	}
	p.set(session, keyQueryPattern, s.Pattern)
	p.set(session, keyQueryFlags, strconv.Itoa(n))
}

// Forget removes every preference of a session.
func (p *Prefs) Forget(session string) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.db.Exec("DELETE FROM prefs WHERE session = ?", session); err != nil {
		return fmt.Errorf("forget session %q: %w", session, err)
	}
	return nil
}

func (p *Prefs) get(session, key string) (string, bool) {
	if p == nil || session == "" {
		return "", false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var v string
	err := p.db.QueryRow(
		"SELECT value FROM prefs WHERE session = ? AND key = ?",
		session, key,
	).Scan(&v)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn().Err(err).Str("session", session).Str("key", key).Msg("failed to read preference")
		}
		return "", false
	}
	return v, true
}

func (p *Prefs) set(session, key, value string) {
	if p == nil || session == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.db.Exec(
		"INSERT OR REPLACE INTO prefs (session, key, value, updated) VALUES (?, ?, ?, ?)",
		session, key, value, time.Now().Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("session", session).Str("key", key).Msg("failed to store preference")
	}
}

// purgeStale removes preferences older than the TTL.
func (p *Prefs) purgeStale() {
	cutoff := time.Now().Add(-p.ttl).Unix()
	res, err := p.db.Exec("DELETE FROM prefs WHERE updated <= ?", cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("failed to purge stale preferences")
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("deleted", n).Msg("purged stale preferences")
	}
}
