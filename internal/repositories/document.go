package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// ErrDocumentMissing is returned by [Document.Read] when nothing has been written yet.
var ErrDocumentMissing = errors.New("document does not exist")

var documentsBucket = []byte("documents")

// Document is a named blob that a [Store] serializes into.
type Document interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Location() string
}

// FileDocument stores a document as a file on disk.
type FileDocument struct {
	path string
}

// NewFileDocument creates a [FileDocument] at path.
func NewFileDocument(path string) *FileDocument {
	return &FileDocument{path: path}
}

func (d *FileDocument) Read() ([]byte, error) {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrDocumentMissing
	}
	return data, err
}

// Write replaces the file through a temp file and rename so a crash never leaves a half-written document.
func (d *FileDocument) Write(data []byte) error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	return os.Rename(tmp.Name(), d.path)
}

func (d *FileDocument) Location() string { return d.path }

// SQLiteDocument stores a document as a row of the documents table.
type SQLiteDocument struct {
	db   *sql.DB
	name string
}

// NewSQLiteDocument creates a [SQLiteDocument]. The documents table must already exist (see shared.RunMigrations).
func NewSQLiteDocument(db *sql.DB, name string) *SQLiteDocument {
	return &SQLiteDocument{db: db, name: name}
}

func (d *SQLiteDocument) Read() ([]byte, error) {
	var body []byte
	err := d.db.QueryRow("SELECT body FROM documents WHERE name = ?", d.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", d.name, err)
	}
	return body, nil
}

func (d *SQLiteDocument) Write(data []byte) error {
	query := `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`
	if _, err := d.db.Exec(query, d.name, data); err != nil {
		return fmt.Errorf("failed to write document %s: %w", d.name, err)
	}
	return nil
}

func (d *SQLiteDocument) Location() string { return "sqlite:documents/" + d.name }

// BoltDocument stores a document under a key of the documents bucket.
type BoltDocument struct {
	db   *bolt.DB
	name string
}

// NewBoltDocument creates a [BoltDocument].
func NewBoltDocument(db *bolt.DB, name string) *BoltDocument {
	return &BoltDocument{db: db, name: name}
}

func (d *BoltDocument) Read() ([]byte, error) {
	var data []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(documentsBucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(d.name)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", d.name, err)
	}
	if data == nil {
		return nil, ErrDocumentMissing
	}
	return data, nil
}

func (d *BoltDocument) Write(data []byte) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(documentsBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(d.name), data)
	})
}

func (d *BoltDocument) Location() string { return "bolt:documents/" + d.name }
