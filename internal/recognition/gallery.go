package recognition

import (
	"context"
	"sort"
	"sync"
)

// ProfileRecord is one gallery entry as loaded for a scan.
// Err is set when the entry could not be loaded; Profile is then meaningless.
type ProfileRecord struct {
	Key     string
	Profile Profile
	Err     error
}

// Gallery persists identity profiles.
// Put replaces a profile as a single unit; implementations must never expose a
// partially written profile to Scan.
type Gallery interface {
	Scan(ctx context.Context) ([]ProfileRecord, error)
	Put(ctx context.Context, key string, profile Profile) error
	Delete(ctx context.Context, key string) error
}

// MemoryGallery is an in-process Gallery.
type MemoryGallery struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryGallery creates an empty in-memory gallery
func NewMemoryGallery() *MemoryGallery {
	return &MemoryGallery{profiles: make(map[string]Profile)}
}

// Scan returns every profile ordered by key.
func (g *MemoryGallery) Scan(ctx context.Context) ([]ProfileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	records := make([]ProfileRecord, 0, len(g.profiles))
	for key, p := range g.profiles {
		records = append(records, ProfileRecord{Key: key, Profile: p})
	}
	g.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})
	return records, nil
}

// Put stores a copy of the profile under key, replacing any previous one.
func (g *MemoryGallery) Put(ctx context.Context, key string, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := profile.clone()

	g.mu.Lock()
	g.profiles[key] = stored
	g.mu.Unlock()
	return nil
}

// Delete removes the profile stored under key. Missing keys are not an error.
func (g *MemoryGallery) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	delete(g.profiles, key)
	g.mu.Unlock()
	return nil
}

// Len returns the number of stored profiles.
func (g *MemoryGallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.profiles)
}

var _ Gallery = (*MemoryGallery)(nil)
