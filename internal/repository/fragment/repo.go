// Package fragment persists fragments as Redis hashes.
package fragment

import (
	"context"
	"fmt"
	"sort"

	"github.com/ragfuse/ragfuse"
	"github.com/ragfuse/ragfuse/internal/db"
	"github.com/ragfuse/ragfuse/internal/domain"
)

const keyPrefix = "ragfuse:fragment:"

// store is the consumer interface for fragment persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/index.Repository.
type Repo struct {
	store store
}

// New creates a fragment repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert creates or replaces a fragment. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, f *ragfuse.Fragment) (bool, error) {
	key := fragmentKey(f.ID)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	// Replace, not merge: delete first so stale metadata fields do not survive.
	if exists {
		if err := r.store.Del(ctx, key); err != nil {
			return false, fmt.Errorf("clear %s: %w", key, err)
		}
	}
	if err := r.store.HSet(ctx, key, buildHashFields(f)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}

// Get returns a fragment by ID.
func (r *Repo) Get(ctx context.Context, id string) (ragfuse.Fragment, error) {
	key := fragmentKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return ragfuse.Fragment{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return ragfuse.Fragment{}, domain.ErrFragmentNotFound
	}
	return parseHashFields(id, m), nil
}

// Delete removes a fragment by ID.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := fragmentKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrFragmentNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// List returns every stored fragment sorted by ID. Used to rebuild the
// in-memory corpus on startup.
func (r *Repo) List(ctx context.Context) ([]ragfuse.Fragment, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan fragments: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch fragments: %w", err)
	}

	fragments := make([]ragfuse.Fragment, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			// Deleted between SCAN and HGETALL.
			continue
		}
		fragments = append(fragments, parseHashFields(idFromKey(keys[i]), m))
	}
	return fragments, nil
}

// Compile-time check against the db facade.
var _ store = (db.Store)(nil)
