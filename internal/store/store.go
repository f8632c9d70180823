// Package store is the local entity store used in offline/demo mode. Each
// collection is a JSON array of records persisted as one blob under the
// collection's name.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"tumatch/client/internal/blob"
)

// Collection names.
const (
	Events            = "Event"
	Moments           = "Moment"
	Friendships       = "Friendship"
	Users             = "User"
	EventParticipants = "EventParticipant"
)

// TimeLayout is the fixed-width UTC layout of created_at and updated_at, so
// timestamps sort correctly as strings.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrNotFound is returned by Update when no record has the requested id.
var ErrNotFound = errors.New("entity not found")

// Record is one stored entity. Values follow encoding/json decoding rules
// (numbers are float64, nested objects are map[string]any).
type Record map[string]any

// ID returns the record's id field, or "" when missing.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Store is the entity store. All collections share one blob backend.
// Operations are serialized so a read-modify-write of a collection is never interleaved.
type Store struct {
	mu    sync.Mutex
	blobs blob.Store
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store over blobs.
func New(blobs blob.Store, opts ...Option) *Store {
	s := &Store{blobs: blobs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) load(ctx context.Context, collection string) ([]Record, error) {
	raw, ok, err := s.blobs.Get(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	if !ok || len(raw) == 0 {
		return []Record{}, nil
	}
	var items []Record
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return items, nil
}

func (s *Store) save(ctx context.Context, collection string, items []Record) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := s.blobs.Set(ctx, collection, raw); err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

// List returns all records of collection. sortKey sorts by that field,
// descending when prefixed with "-"; limit > 0 truncates the result.
func (s *Store) List(ctx context.Context, collection, sortKey string, limit int) ([]Record, error) {
	s.mu.Lock()
	items, err := s.load(ctx, collection)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if sortKey != "" {
		desc := strings.HasPrefix(sortKey, "-")
		key := strings.TrimPrefix(sortKey, "-")
		sort.SliceStable(items, func(i, j int) bool {
			if desc {
				return greater(items[i][key], items[j][key])
			}
			return greater(items[j][key], items[i][key])
		})
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// greater is a raw > comparison. Values of different or unordered types never compare greater.
func greater(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av > bv
	case float64:
		bv, ok := b.(float64)
		return ok && av > bv
	case bool:
		bv, ok := b.(bool)
		return ok && av && !bv
	default:
		return false
	}
}

// Filter returns the records whose fields equal every pair in fields.
func (s *Store) Filter(ctx context.Context, collection string, fields map[string]any) ([]Record, error) {
	s.mu.Lock()
	items, err := s.load(ctx, collection)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	want := normalize(fields)
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if matches(item, want) {
			out = append(out, item)
		}
	}
	return out, nil
}

func matches(item Record, fields map[string]any) bool {
	for k, want := range fields {
		got, ok := item[k]
		if !ok || !equal(got, want) {
			return false
		}
	}
	return true
}

// normalize maps Go values onto what json decoding produces so that
// Filter(..., {"max": 5}) matches a stored 5 and typed strings match plain ones.
func normalize(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			out[k] = v
			continue
		}
		var n any
		if err := json.Unmarshal(b, &n); err != nil {
			out[k] = v
			continue
		}
		out[k] = n
	}
	return out
}

func equal(a, b any) bool {
	switch av := a.(type) {
	case string, float64, bool, nil:
		return a == b
	default:
		// nested values: compare their JSON encoding
		ab, errA := json.Marshal(av)
		bb, errB := json.Marshal(b)
		return errA == nil && errB == nil && string(ab) == string(bb)
	}
}

// Create appends data as a new record. The id is "<collection>_<unix millis>",
// bumped until it is unique in the collection, and created_at is set.
// Any id in data is overwritten.
func (s *Store) Create(ctx context.Context, collection string, data Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, collection)
	if err != nil {
		return nil, err
	}

	now := s.now()
	taken := make(map[string]struct{}, len(items))
	for _, item := range items {
		taken[item.ID()] = struct{}{}
	}
	stamp := now.UnixMilli()
	id := collection + "_" + strconv.FormatInt(stamp, 10)
	for {
		if _, dup := taken[id]; !dup {
			break
		}
		stamp++
		id = collection + "_" + strconv.FormatInt(stamp, 10)
	}

	item := make(Record, len(data)+2)
	for k, v := range data {
		item[k] = v
	}
	item["id"] = id
	item["created_at"] = now.UTC().Format(TimeLayout)

	items = append(items, item)
	if err := s.save(ctx, collection, items); err != nil {
		return nil, err
	}
	// round-trip so the returned value looks exactly like a later Get
	return roundTrip(item)
}

// Update merges patch into the record with id and sets updated_at.
// The id field itself cannot be changed.
func (s *Store) Update(ctx context.Context, collection, id string, patch Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, collection)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range items {
		if item.ID() == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
	}

	for k, v := range patch {
		if k == "id" {
			continue
		}
		items[idx][k] = v
	}
	items[idx]["updated_at"] = s.now().UTC().Format(TimeLayout)

	if err := s.save(ctx, collection, items); err != nil {
		return nil, err
	}
	return roundTrip(items[idx])
}

// Delete removes the record with id. Deleting a missing record is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, collection)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID() != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return s.save(ctx, collection, kept)
}

// Get returns the record with id, or nil when there is none.
func (s *Store) Get(ctx context.Context, collection, id string) (Record, error) {
	s.mu.Lock()
	items, err := s.load(ctx, collection)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID() == id {
			return item, nil
		}
	}
	return nil, nil
}

// Init seeds every collection in seed that is currently empty. Collections
// that already hold records are left untouched.
func (s *Store) Init(ctx context.Context, seed map[string][]Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for collection, records := range seed {
		items, err := s.load(ctx, collection)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			continue
		}
		if err := s.save(ctx, collection, records); err != nil {
			return err
		}
	}
	return nil
}

// Reset removes the given collections entirely.
func (s *Store) Reset(ctx context.Context, collections ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range collections {
		if err := s.blobs.Delete(ctx, c); err != nil {
			return fmt.Errorf("reset %s: %w", c, err)
		}
	}
	return nil
}

func roundTrip(r Record) (Record, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out Record
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
