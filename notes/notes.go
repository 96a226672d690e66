// Package notes implements a local store for named texdown documents.
//
// A note is saved under a name, optionally protected by a key. Once a note
// exists, it can only be overwritten or deleted with the same key. Keys are
// stored as bcrypt hashes of their SHA-256 digest.
//
package notes

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/db47h/texdown/internal/logging"
	"github.com/db47h/texdown/internal/logging/logfields"
)

// Limits enforced by Save.
const (
	MaxNameLen = 99    // in characters
	MaxKeyLen  = 99    // in characters
	MaxBodyLen = 10000 // in bytes
)

// Errors returned by Store methods.
var (
	ErrInvalidName  = errors.New("note name length must be between 1 and 99 characters")
	ErrKeyTooLong   = errors.New("note key length must be under 100 characters")
	ErrNoteTooLarge = errors.New("note length must be under 10K characters")
	ErrKeyMismatch  = errors.New("note already saved with a different key")
	ErrNotFound     = errors.New("note not found")
)

// Note is a stored document.
//
type Note struct {
	Name   string
	Body   string
	Author string
	Date   time.Time
}

// Info describes a note without its body.
//
type Info struct {
	Name   string
	Author string
	Date   time.Time
	Size   int
}

const schema = `
CREATE TABLE IF NOT EXISTS notes (
    name TEXT PRIMARY KEY,
    body TEXT NOT NULL,
    key_hash BLOB NOT NULL,
    author TEXT NOT NULL DEFAULT '',
    date INTEGER NOT NULL
);
`

// Store is a sqlite backed note store. It is safe for concurrent use.
//
type Store struct {
	db   *sql.DB
	log  logrus.FieldLogger
	cost int
	now  func() time.Time
}

// An Option configures a Store.
//
type Option func(*Store)

// WithHashCost sets the bcrypt cost used to hash keys.
//
func WithHashCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

// WithLogger sets the logger.
//
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the function returning the current time.
//
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens or creates the note database at path.
//
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err = db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	s := &Store{
		db:   db,
		log:  logging.DefaultLogger.WithField(logfields.LogSubsys, "notes"),
		cost: bcrypt.DefaultCost,
		now:  time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close closes the database.
//
func (s *Store) Close() error {
	return s.db.Close()
}

func checkLimits(name, body, key string) error {
	if n := utf8.RuneCountInString(name); n < 1 || n > MaxNameLen {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(key) > MaxKeyLen {
		return ErrKeyTooLong
	}
	if len(body) > MaxBodyLen {
		return ErrNoteTooLarge
	}
	return nil
}

// keyDigest maps keys of any length to a fixed size input for bcrypt, which
// rejects passwords longer than 72 bytes.
func keyDigest(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return []byte(hex.EncodeToString(sum[:]))
}

// checkKey returns ErrKeyMismatch if a note exists with a key other than key.
// A missing note passes.
func checkKey(ctx context.Context, tx *sql.Tx, name, key string) (exists bool, err error) {
	var hash []byte
	err = tx.QueryRowContext(ctx, "SELECT key_hash FROM notes WHERE name = ?", name).Scan(&hash)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup note: %w", err)
	}
	if err = bcrypt.CompareHashAndPassword(hash, keyDigest(key)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return true, ErrKeyMismatch
		}
		return true, fmt.Errorf("check key: %w", err)
	}
	return true, nil
}

// Save creates or replaces the note with the given name. An existing note
// can only be replaced with the key it was saved with.
//
func (s *Store) Save(ctx context.Context, name, body, key, author string) error {
	if err := checkLimits(name, body, key); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword(keyDigest(key), s.cost)
	if err != nil {
		return fmt.Errorf("hash key: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = checkKey(ctx, tx, name, key); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO notes (name, body, key_hash, author, date) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, key_hash = excluded.key_hash,
			author = excluded.author, date = excluded.date`,
		name, body, hash, author, s.now().Unix())
	if err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.WithField(logfields.Note, name).Debug("Note saved")
	return nil
}

// Get returns the note with the given name, or ErrNotFound.
//
func (s *Store) Get(ctx context.Context, name string) (*Note, error) {
	var (
		n    = Note{Name: name}
		date int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT body, author, date FROM notes WHERE name = ?", name).Scan(&n.Body, &n.Author, &date)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	n.Date = time.Unix(date, 0)
	return &n, nil
}

// Delete deletes the note with the given name. It returns ErrKeyMismatch if
// key does not match the note's key. Deleting a missing note is not an
// error.
//
func (s *Store) Delete(ctx context.Context, name, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := checkKey(ctx, tx, name, key)
	if err != nil || !exists {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM notes WHERE name = ?", name); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.WithField(logfields.Note, name).Debug("Note deleted")
	return nil
}

// List returns all notes, most recent first.
//
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, author, date, length(CAST(body AS BLOB)) FROM notes ORDER BY date DESC, name")
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var res []Info
	for rows.Next() {
		var (
			i    Info
			date int64
		)
		if err = rows.Scan(&i.Name, &i.Author, &date, &i.Size); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		i.Date = time.Unix(date, 0)
		res = append(res, i)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return res, nil
}

// Count returns the number of stored notes.
//
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return n, nil
}
