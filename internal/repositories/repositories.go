package repositories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blendify/internal/shared"
)

// Store keeps a value of shape T in memory and mirrors it into a [Document].
//
// Mutations go through update, which saves before returning, so the document always matches memory.
type Store[T any] struct {
	doc        Document
	logger     *log.Logger
	empty      func() T
	beforeSave func(*T)
	data       T
}

// NewStore creates a [Store]. empty builds the value used for a missing or unreadable document.
func NewStore[T any](doc Document, empty func() T, logger *log.Logger) *Store[T] {
	return &Store[T]{doc: doc, logger: logger, empty: empty, data: empty()}
}

// Load reads the document into memory.
//
// A missing, unreadable or malformed document is replaced by the empty value, which is written back immediately.
// A valid document is passed through beforeSave and rewritten if that changed it.
// The only errors returned are failures to persist.
func (s *Store[T]) Load() error {
	raw, err := s.doc.Read()
	if err == nil {
		var v T
		if v, err = s.decode(raw); err == nil {
			s.data = v
			return s.normalize()
		}
	}

	if !errors.Is(err, ErrDocumentMissing) {
		s.logger.Warn("resetting unreadable store", "location", s.doc.Location(), "error", err)
	} else {
		s.logger.Debug("creating store", "location", s.doc.Location())
	}

	s.data = s.empty()
	return s.Save()
}

func (s *Store[T]) decode(raw []byte) (T, error) {
	v := s.empty()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return v, fmt.Errorf("empty document")
	}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return v, err
	}
	return v, nil
}

// Save writes the whole in-memory value to the document.
func (s *Store[T]) Save() error {
	if s.beforeSave != nil {
		s.beforeSave(&s.data)
	}

	data, err := shared.MarshalJSON(s.data, true)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", shared.ErrStorage, s.doc.Location(), err)
	}

	if err := s.doc.Write(data); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return nil
}

// Location reports where the store is persisted.
func (s *Store[T]) Location() string { return s.doc.Location() }

// normalize applies beforeSave to a freshly loaded value and persists it if that changed anything.
func (s *Store[T]) normalize() error {
	if s.beforeSave == nil {
		return nil
	}

	before, err := shared.MarshalJSON(s.data, true)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", shared.ErrStorage, s.doc.Location(), err)
	}
	s.beforeSave(&s.data)
	after, err := shared.MarshalJSON(s.data, true)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", shared.ErrStorage, s.doc.Location(), err)
	}
	if bytes.Equal(before, after) {
		return nil
	}

	s.logger.Debug("normalizing loaded store", "location", s.doc.Location())
	return s.Save()
}

// update applies fn to the in-memory value and saves it.
//
// If the save fails the previous value is restored, so memory never runs ahead of the document.
func (s *Store[T]) update(fn func(*T)) error {
	snapshot, err := shared.MarshalJSON(s.data, false)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", shared.ErrStorage, s.doc.Location(), err)
	}

	fn(&s.data)
	if err := s.Save(); err != nil {
		if prev, decodeErr := s.decode(snapshot); decodeErr == nil {
			s.data = prev
		} else {
			s.logger.Error("failed to restore store after write failure", "location", s.doc.Location(), "error", decodeErr)
		}
		return err
	}
	return nil
}
