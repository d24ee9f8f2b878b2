package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blendify/internal/shared"
	bolt "go.etcd.io/bbolt"
)

// Stores holds the four loaded stores and whatever database handle backs them.
type Stores struct {
	Themes    *ThemeCache
	Tracks    *TrackCache
	Requests  *RequestHistory
	Playlists *PlaylistHistory

	location string
	sqlDB    *sql.DB
	boltDB   *bolt.DB
}

// OpenStores opens the backend selected by storage.driver and loads every store.
func OpenStores(cfg *shared.Config, logger *log.Logger) (*Stores, error) {
	s := &Stores{location: cfg.Database.Path}
	var newDoc func(name string) Document

	switch cfg.Storage.Driver {
	case shared.DriverJSON, "":
		s.location = cfg.Storage.Dir
		newDoc = func(name string) Document { return NewFileDocument(cfg.Storage.StorePath(name)) }
	case shared.DriverSQLite:
		db, err := shared.NewDatabase(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		s.sqlDB = db
		newDoc = func(name string) Document { return NewSQLiteDocument(db, name) }
	case shared.DriverBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		db, err := bolt.Open(cfg.Database.Path, 0600, &bolt.Options{Timeout: 1 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open bolt db: %v", shared.ErrStorage, err)
		}
		s.boltDB = db
		newDoc = func(name string) Document { return NewBoltDocument(db, name) }
	default:
		return nil, fmt.Errorf("%w: storage.driver %q", shared.ErrInvalidConfig, cfg.Storage.Driver)
	}

	s.Themes = NewThemeCache(newDoc(cfg.Storage.Themes), logger)
	s.Tracks = NewTrackCache(newDoc(cfg.Storage.Songs), logger)
	s.Requests = NewRequestHistory(newDoc(cfg.Storage.Requests), logger)
	s.Playlists = NewPlaylistHistory(newDoc(cfg.Storage.Playlists), logger)

	if err := s.Load(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Load loads all four stores, creating any that are missing.
func (s *Stores) Load() error {
	for _, load := range []func() error{s.Themes.Load, s.Tracks.Load, s.Requests.Load, s.Playlists.Load} {
		if err := load(); err != nil {
			return err
		}
	}
	return nil
}

// Location returns the directory (json) or database file (sqlite, bolt) holding the stores.
func (s *Stores) Location() string { return s.location }

// Close releases the backing database, if any.
func (s *Stores) Close() error {
	var errs []error
	if s.sqlDB != nil {
		errs = append(errs, s.sqlDB.Close())
	}
	if s.boltDB != nil {
		errs = append(errs, s.boltDB.Close())
	}
	return errors.Join(errs...)
}
