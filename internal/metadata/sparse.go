package metadata

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fleapit/fleapit/internal/model"
)

// SparseStore is the persistence surface the sparse variant needs. List must
// return rows in ascending row-id order so folds are deterministic. Delete is
// idempotent: removing an absent key is not an error.
type SparseStore interface {
	List(ctx context.Context, ownerID int64) ([]*model.MetadataRow, error)
	Upsert(ctx context.Context, ownerID int64, key, value string) error
	Create(ctx context.Context, ownerID int64, key, value string) error
	Delete(ctx context.Context, ownerID int64, key string) error
	DeleteAll(ctx context.Context, ownerID int64) error
}

// Sparse implements the sparse-form metadata protocol: one row per
// (owner, key) pair.
type Sparse struct {
	store SparseStore
}

// NewSparse returns a Sparse over the given store.
func NewSparse(store SparseStore) *Sparse {
	return &Sparse{store: store}
}

// Fetch folds all rows for ownerID into a flat key/value map. Rows are folded
// in ascending row-id order, so on a duplicate key the later row wins;
// duplicates should not occur given the (owner, key) uniqueness constraint,
// but fold order stays deterministic regardless.
func (s *Sparse) Fetch(ctx context.Context, ownerID int64) (map[string]string, error) {
	rows, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// Update applies bag to the stored rows: a null value deletes the key's row
// if present, any other value upserts it. Per-key operations run
// concurrently; all of them are allowed to finish before the first failure,
// if any, is returned.
func (s *Sparse) Update(ctx context.Context, ownerID int64, bag map[string]any) error {
	values, err := stringValues(bag)
	if err != nil {
		return err
	}

	var g errgroup.Group
	for key, value := range values {
		g.Go(func() error {
			if value == nil {
				return s.store.Delete(ctx, ownerID, key)
			}
			return s.store.Upsert(ctx, ownerID, key, *value)
		})
	}
	return g.Wait()
}

// Replace deletes every stored row for ownerID and creates one row per
// non-null key in bag. Null-valued keys are skipped entirely.
func (s *Sparse) Replace(ctx context.Context, ownerID int64, bag map[string]any) error {
	values, err := stringValues(bag)
	if err != nil {
		return err
	}

	if err := s.store.DeleteAll(ctx, ownerID); err != nil {
		return err
	}

	var g errgroup.Group
	for key, value := range values {
		if value == nil {
			continue
		}
		g.Go(func() error {
			return s.store.Create(ctx, ownerID, key, *value)
		})
	}
	return g.Wait()
}

// stringValues validates and renders the whole bag up front so a bad value
// rejects the request before any row is touched. Null values map to nil.
func stringValues(bag map[string]any) (map[string]*string, error) {
	out := make(map[string]*string, len(bag))
	for key, v := range bag {
		if v == nil {
			out[key] = nil
			continue
		}
		str, err := scalarString(key, v)
		if err != nil {
			return nil, err
		}
		out[key] = &str
	}
	return out, nil
}
