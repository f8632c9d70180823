package store

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"tumatch/client/internal/blob"
	"tumatch/client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func newTestStore(t *testing.T) (*Store, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	return New(blob.NewMemory(), WithClock(clock.now)), clock
}

// =============================================================================
// Create / Get
// =============================================================================

func TestCreate_AssignsIDAndTimestamp(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, Events, Record{"title": "Study", "id": "ignored"})
	require.NoError(t, err)

	assert.Equal(t, "Event_"+itoa(clock.t.UnixMilli()), rec.ID())
	assert.Equal(t, "Study", rec["title"])
	assert.Equal(t, "2025-05-01T12:00:00.000Z", rec["created_at"])

	got, err := s.Get(ctx, Events, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestCreate_SameMillisecondGetsDistinctIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, Moments, Record{"caption": "a"})
	require.NoError(t, err)
	b, err := s.Create(ctx, Moments, Record{"caption": "b"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestGet_Missing(t *testing.T) {
	s, _ := newTestStore(t)
	rec, err := s.Get(context.Background(), Events, "nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

// =============================================================================
// List
// =============================================================================

func seedTitles(t *testing.T, s *Store, clock *fixedClock, titles ...string) {
	t.Helper()
	for _, title := range titles {
		_, err := s.Create(context.Background(), Events, Record{"title": title, "max_participants": len(title)})
		require.NoError(t, err)
		clock.t = clock.t.Add(time.Second)
	}
}

func titlesOf(items []Record) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it["title"].(string))
	}
	return out
}

func TestList_InsertionOrder(t *testing.T) {
	s, clock := newTestStore(t)
	seedTitles(t, s, clock, "b", "c", "a")

	items, err := s.List(context.Background(), Events, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, titlesOf(items))
}

func TestList_SortAndLimit(t *testing.T) {
	s, clock := newTestStore(t)
	seedTitles(t, s, clock, "b", "c", "a")
	ctx := context.Background()

	asc, err := s.List(ctx, Events, "title", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, titlesOf(asc))

	desc, err := s.List(ctx, Events, "-title", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, titlesOf(desc))

	newest, err := s.List(ctx, Events, "-created_at", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, titlesOf(newest))
}

func TestList_NumericFieldComparesNumerically(t *testing.T) {
	s, clock := newTestStore(t)
	seedTitles(t, s, clock, "ccc", "a", "bb")

	items, err := s.List(context.Background(), Events, "max_participants", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bb", "ccc"}, titlesOf(items))
}

func TestList_EmptyCollection(t *testing.T) {
	s, _ := newTestStore(t)
	items, err := s.List(context.Background(), Friendships, "-created_at", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

// =============================================================================
// Filter
// =============================================================================

func TestFilter_ExactMatchAcrossAllFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, f := range []models.Friendship{
		{UserID: "u1", FriendID: "u2", Status: models.StatusPending},
		{UserID: "u1", FriendID: "u3", Status: models.StatusAccepted},
		{UserID: "u2", FriendID: "u3", Status: models.StatusAccepted},
	} {
		rec, err := Encode(f)
		require.NoError(t, err)
		_, err = s.Create(ctx, Friendships, rec)
		require.NoError(t, err)
	}

	got, err := s.Filter(ctx, Friendships, map[string]any{"user_id": "u1", "status": models.StatusAccepted})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u3", got[0]["friend_id"])

	none, err := s.Filter(ctx, Friendships, map[string]any{"user_id": "U1"})
	require.NoError(t, err)
	assert.Empty(t, none, "equality is case-sensitive")

	all, err := s.Filter(ctx, Friendships, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFilter_NumbersMatchStoredFloats(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, Events, Record{"max_participants": 30})
	require.NoError(t, err)

	got, err := s.Filter(ctx, Events, map[string]any{"max_participants": 30})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// =============================================================================
// Update / Delete
// =============================================================================

func TestUpdate_MergesPatch(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	rec, err := s.Create(ctx, Friendships, Record{"status": "pending", "user_id": "u1"})
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour)
	updated, err := s.Update(ctx, Friendships, rec.ID(), Record{"status": "accepted", "id": "hijack"})
	require.NoError(t, err)

	assert.Equal(t, rec.ID(), updated.ID())
	assert.Equal(t, "accepted", updated["status"])
	assert.Equal(t, "u1", updated["user_id"])
	assert.Equal(t, "2025-05-01T13:00:00Z", updated["updated_at"])
}

func TestUpdate_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Update(context.Background(), Events, "missing", Record{"title": "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDelete_ThenGetIsAbsentAndIdempotent(t *testing.T) {
	for _, collection := range []string{Events, Moments, Friendships} {
		t.Run(collection, func(t *testing.T) {
			s, _ := newTestStore(t)
			ctx := context.Background()
			rec, err := s.Create(ctx, collection, Record{"x": 1})
			require.NoError(t, err)

			require.NoError(t, s.Delete(ctx, collection, rec.ID()))
			got, err := s.Get(ctx, collection, rec.ID())
			require.NoError(t, err)
			assert.Nil(t, got)

			require.NoError(t, s.Delete(ctx, collection, rec.ID()))
			require.NoError(t, s.Delete(ctx, collection, "never-existed"))
		})
	}
}

// =============================================================================
// Init / Reset
// =============================================================================

func TestInit_SeedsOnlyEmptyCollections(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, Moments, Record{"caption": "mine"})
	require.NoError(t, err)

	seed := map[string][]Record{
		Events:  {{"id": "event_1", "title": "ML Workshop"}},
		Moments: {{"id": "moment_1", "caption": "seeded"}},
	}
	require.NoError(t, s.Init(ctx, seed))
	require.NoError(t, s.Init(ctx, seed))

	events, err := s.List(ctx, Events, "", 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	moments, err := s.List(ctx, Moments, "", 0)
	require.NoError(t, err)
	require.Len(t, moments, 1)
	assert.Equal(t, "mine", moments[0]["caption"])
}

func TestReset(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, Events, Record{"title": "x"})
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx, Events, Moments))
	items, err := s.List(ctx, Events, "", 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecode(t *testing.T) {
	rec := Record{"id": "e1", "title": "Hackathon", "start_time": "2025-05-02T10:00:00Z", "max_participants": float64(100)}
	ev, err := Decode[models.Event](rec)
	require.NoError(t, err)

	assert.Equal(t, "Hackathon", ev.Title)
	require.NotNil(t, ev.MaxParticipants)
	assert.Equal(t, 100, *ev.MaxParticipants)
	assert.Equal(t, 2025, ev.StartTime.Year())
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
