package metadata

import "context"

// BlobStore is the persistence surface the blob variant needs. Get returns
// (nil, nil) when the owner has no stored object.
type BlobStore interface {
	Get(ctx context.Context, ownerID int64) (map[string]any, error)
	Set(ctx context.Context, ownerID int64, obj map[string]any) error
	Count(ctx context.Context, ownerID int64) (int, error)
}

// Blob implements the blob-form metadata protocol: one JSON object per owner.
type Blob struct {
	store BlobStore
}

// NewBlob returns a Blob over the given store.
func NewBlob(store BlobStore) *Blob {
	return &Blob{store: store}
}

// Find returns the stored object for ownerID, or an empty object if none
// exists. Absence is not an error.
func (b *Blob) Find(ctx context.Context, ownerID int64) (map[string]any, error) {
	obj, err := b.store.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return map[string]any{}, nil
	}
	return obj, nil
}

// Upsert replaces the stored object for ownerID with obj, creating a row if
// none exists. The returned flag reports whether a row was created, decided
// by comparing row counts before and after the write so it works whether or
// not the underlying store reports creation itself. Under concurrent writers
// to the same owner the comparison is racy; a single writer per entity is
// assumed.
func (b *Blob) Upsert(ctx context.Context, ownerID int64, obj map[string]any) (bool, error) {
	before, err := b.store.Count(ctx, ownerID)
	if err != nil {
		return false, err
	}
	if err := b.store.Set(ctx, ownerID, obj); err != nil {
		return false, err
	}
	after, err := b.store.Count(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return after > before, nil
}

// Patch shallow-merges obj over the stored object and writes the result back.
// Incoming keys overwrite; keys absent from obj are preserved; nested objects
// are replaced wholesale, not merged.
func (b *Blob) Patch(ctx context.Context, ownerID int64, obj map[string]any) error {
	existing, err := b.Find(ctx, ownerID)
	if err != nil {
		return err
	}
	for k, v := range obj {
		existing[k] = v
	}
	_, err = b.Upsert(ctx, ownerID, existing)
	return err
}
