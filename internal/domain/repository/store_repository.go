package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"
)

// StoreKey namespaces the persisted document inside the blob backend.
const StoreKey = "papergen.store"

// StoreRepository reads and writes the whole persisted Store.
//
// A missing or corrupt blob loads as an empty store. Load reports backend
// failures so callers about to write can stop; Read also swallows those and
// is only safe for read-only paths.
type StoreRepository interface {
	Load(ctx context.Context) (*model.Store, error)
	Read(ctx context.Context) *model.Store
	Write(ctx context.Context, store *model.Store) error
}

// PersistenceParseError reports a persisted blob that is not a valid Store.
type PersistenceParseError struct {
	Err error
}

func (e *PersistenceParseError) Error() string {
	return "persisted store is corrupt: " + e.Err.Error()
}

func (e *PersistenceParseError) Unwrap() error { return e.Err }

// ParseStore decodes a persisted blob, filling any missing maps.
func ParseStore(data []byte) (*model.Store, error) {
	store := &model.Store{}
	if err := json.Unmarshal(data, store); err != nil {
		return nil, &PersistenceParseError{Err: err}
	}
	store.Normalize()
	return store, nil
}

type blobStoreRepository struct {
	blobs BlobStore
	log   *logger.Logger
}

func NewStoreRepository(blobs BlobStore, log *logger.Logger) StoreRepository {
	return &blobStoreRepository{blobs: blobs, log: log}
}

func (r *blobStoreRepository) Load(ctx context.Context) (*model.Store, error) {
	data, ok, err := r.blobs.Get(ctx, StoreKey)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if !ok || len(data) == 0 {
		return model.NewStore(), nil
	}
	store, err := ParseStore(data)
	if err != nil {
		r.log.Warn("store blob could not be parsed, using empty store", "key", StoreKey, "error", err)
		return model.NewStore(), nil
	}
	return store, nil
}

func (r *blobStoreRepository) Read(ctx context.Context) *model.Store {
	store, err := r.Load(ctx)
	if err != nil {
		r.log.Error("store read failed, using empty store", "key", StoreKey, "error", err)
		return model.NewStore()
	}
	return store
}

func (r *blobStoreRepository) Write(ctx context.Context, store *model.Store) error {
	if store == nil {
		store = model.NewStore()
	}
	data, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := r.blobs.Put(ctx, StoreKey, data); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}
