package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"familyassets/internal/core"
	"familyassets/internal/log"
	"familyassets/internal/storage"
)

// DefaultKey is the storage key holding the serialized collection.
const DefaultKey = "familyAssets"

// Notifier is told about every persisted change.
type Notifier interface {
	AssetChanged(ctx context.Context, ev Event, revision int64) error
}

type Options struct {
	Key      string
	Seed     bool
	Env      Env
	Notifier Notifier
	Logger   *log.Logger
}

// Store serializes commands against the owned state and persists the
// collection after every change.
type Store struct {
	mu       sync.RWMutex
	kv       storage.KV
	key      string
	env      Env
	state    State
	notifier Notifier
	logger   *log.Logger
	events   *log.StructuredLogger
}

// Open loads the collection from kv. A missing key is seeded with the sample
// records (when opts.Seed is set) and written back. A stored value that does
// not decode yields an empty collection and is left as is.
func Open(ctx context.Context, kv storage.KV, opts Options) (*Store, error) {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if err := storage.ValidateKey(opts.Key); err != nil {
		return nil, err
	}
	if opts.Env.Now == nil || opts.Env.NewID == nil {
		def := DefaultEnv()
		if opts.Env.Now == nil {
			opts.Env.Now = def.Now
		}
		if opts.Env.NewID == nil {
			opts.Env.NewID = def.NewID
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	s := &Store{
		kv:       kv,
		key:      opts.Key,
		env:      opts.Env,
		notifier: opts.Notifier,
		logger:   logger.WithComponent(log.ComponentStore),
		state:    State{Filter: FilterAll},
	}
	s.events = log.NewStructuredLogger(s.logger)

	assets, err := s.load(ctx, opts.Seed)
	if err != nil {
		return nil, err
	}
	s.state.Assets = assets
	s.logger.Info("Asset store loaded",
		log.FieldStorageKey, s.key,
		log.FieldCount, len(assets),
		log.FieldOperation, log.OpLoad)
	return s, nil
}

func (s *Store) load(ctx context.Context, seed bool) ([]core.Asset, error) {
	b, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if !seed {
			return []core.Asset{}, nil
		}
		assets := SampleAssets()
		if err := s.persist(ctx, assets); err != nil {
			return nil, fmt.Errorf("seed sample assets: %w", err)
		}
		s.logger.Info("Seeded sample assets",
			log.FieldCount, len(assets),
			log.FieldOperation, log.OpSeed)
		return assets, nil
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}

	assets, err := Decode(b)
	if err != nil {
		s.logger.Warn("Stored assets are malformed, starting empty",
			log.FieldStorageKey, s.key,
			log.FieldError, err.Error())
		return []core.Asset{}, nil
	}
	return assets, nil
}

func (s *Store) persist(ctx context.Context, assets []core.Asset) error {
	b, err := Encode(assets)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, s.key, b); err != nil {
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	return nil
}

// Dispatch applies cmd. When the collection changes it is persisted first;
// on a persistence error the in-memory state is left untouched.
func (s *Store) Dispatch(ctx context.Context, cmd Command) (Event, error) {
	s.mu.Lock()
	next, ev := Apply(s.state, cmd, s.env)
	if ev.Mutated() {
		if err := s.persist(ctx, next.Assets); err != nil {
			s.mu.Unlock()
			fields := log.NewFields().WithAsset(ev.Asset.ID, ev.Asset.Name, string(ev.Asset.Type), ev.Asset.Amount.String())
			fields[log.FieldEvent] = string(ev.Kind)
			s.events.LogError(ctx, "Failed to persist assets", err, log.OpPersist, fields)
			return ev, err
		}
	}
	s.state = next
	rev := next.Revision
	s.mu.Unlock()

	if ev.Mutated() {
		s.events.LogAssetEvent(ctx, string(ev.Kind), ev.Asset.ID, ev.Asset.Name,
			string(ev.Asset.Type), ev.Asset.Amount.String(), rev)
		if s.notifier != nil {
			if err := s.notifier.AssetChanged(ctx, ev, rev); err != nil {
				s.logger.WarnContext(ctx, "Failed to publish asset change",
					log.FieldAssetID, ev.Asset.ID,
					log.FieldError, err.Error(),
					log.FieldOperation, log.OpPublish)
			}
		}
	}
	return ev, nil
}

// Reload re-reads the collection from storage to pick up a write made by
// another process. A missing or malformed value yields an empty collection.
// The revision moves only when the collection differs; the filter is kept
// and the notifier is not called.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var assets []core.Asset
	b, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		assets = []core.Asset{}
	case err != nil:
		return false, fmt.Errorf("reload %s: %w", s.key, err)
	default:
		if assets, err = Decode(b); err != nil {
			s.logger.WarnContext(ctx, "Stored assets are malformed, reloading empty",
				log.FieldStorageKey, s.key,
				log.FieldError, err.Error())
			assets = []core.Asset{}
		}
	}

	if sameCollection(s.state.Assets, assets) {
		return false, nil
	}
	s.state.Assets = assets
	s.state.Revision++
	s.logger.InfoContext(ctx, "Asset store reloaded",
		log.FieldCount, len(assets),
		log.FieldRevision, s.state.Revision,
		log.FieldOperation, log.OpReload)
	return true, nil
}

func sameCollection(a, b []core.Asset) bool {
	x, err := Encode(a)
	if err != nil {
		return false
	}
	y, err := Encode(b)
	if err != nil {
		return false
	}
	return bytes.Equal(x, y)
}

// Add stores a new asset and returns it with its generated id.
func (s *Store) Add(ctx context.Context, f Fields) (core.Asset, error) {
	ev, err := s.Dispatch(ctx, AddAsset{Fields: f})
	return ev.Asset, err
}

// Update replaces the editable fields of id. It reports false when no asset
// has that id.
func (s *Store) Update(ctx context.Context, id string, f Fields) (bool, error) {
	ev, err := s.Dispatch(ctx, UpdateAsset{ID: id, Fields: f})
	if err != nil {
		return false, err
	}
	return ev.Kind == EventUpdated, nil
}

func (s *Store) Remove(ctx context.Context, id string, confirmed bool) (Event, error) {
	return s.Dispatch(ctx, RemoveAsset{ID: id, Confirmed: confirmed})
}

func (s *Store) SetFilter(ctx context.Context, f Filter) error {
	_, err := s.Dispatch(ctx, SetFilter{Filter: f})
	return err
}

// Snapshot returns the current state. The Assets slice must not be modified.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) List(f Filter) []core.Asset {
	return s.Snapshot().List(f)
}

func (s *Store) Get(id string) (core.Asset, bool) {
	return s.Snapshot().Find(id)
}

func (s *Store) Revision() int64 {
	return s.Snapshot().Revision
}

// Now is the store's clock.
func (s *Store) Now() time.Time {
	return s.env.now()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}
