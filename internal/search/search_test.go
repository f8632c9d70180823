package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_EmptyQueryKeepsEverything(t *testing.T) {
	c := SampleCatalog()
	got := Filter(c, "")
	assert.Equal(t, c, got)
}

func TestFilter_CaseInsensitive(t *testing.T) {
	got := Filter(SampleCatalog(), "LIBRARY")

	require.Len(t, got.Events, 1)
	assert.Equal(t, "Study at the Library", got.Events[0].Title)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "LIV Library", got.Locations[0].Name)
	assert.Empty(t, got.People)
}

func TestFilter_MatchesLocationAndDepartment(t *testing.T) {
	got := Filter(SampleCatalog(), "bmds")
	assert.Empty(t, got.Events)
	names := make([]string, 0, len(got.People))
	for _, p := range got.People {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Omar Azlan", "Sarah Jahan", "Danila Zhukov"}, names)

	got = Filter(SampleCatalog(), "eck")
	require.Len(t, got.Events, 1, "events match on location")
	assert.Equal(t, "Grab a Doner", got.Events[0].Title)
}

func TestFilter_PreservesOrder(t *testing.T) {
	got := Filter(SampleCatalog(), "in")
	for i := 1; i < len(got.Events); i++ {
		assert.Less(t, got.Events[i-1].ID, got.Events[i].ID)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	for _, q := range []string{"", "a", "Lounge", "bie", "zzz", "Mensa, Bild"} {
		once := Filter(SampleCatalog(), q)
		twice := Filter(once, q)
		assert.Equal(t, once, twice, q)
	}
}

func TestCount(t *testing.T) {
	c := SampleCatalog()
	assert.Equal(t, 8, c.Count(TabEvents))
	assert.Equal(t, 8, c.Count(TabLocations))
	assert.Equal(t, 6, c.Count(TabPeople))
	assert.Zero(t, c.Count("ai"))
}

func TestStubAssistant(t *testing.T) {
	a := StubAssistant{Delay: time.Millisecond}

	tab, err := a.Ask(context.Background(), "workshops tomorrow")
	require.NoError(t, err)
	assert.Equal(t, TabEvents, tab)

	_, err = a.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = StubAssistant{Delay: time.Hour}.Ask(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
