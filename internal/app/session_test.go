package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tumatch/client/internal/api"
	"tumatch/client/internal/blob"
	"tumatch/client/internal/eventform"
	"tumatch/client/internal/membership"
	"tumatch/client/internal/mockapi"
	"tumatch/client/internal/models"
	"tumatch/client/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sarah   = "00000000-0000-0000-0000-000000000003"
	rahul   = "00000000-0000-0000-0000-000000000004"
	lunchID = "10000000-0000-0000-0000-000000000006"
	studyID = "10000000-0000-0000-0000-000000000008"
)

var testNow = time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

// countingTransport counts requests that reach the backend.
type countingTransport struct {
	next *mockapi.Transport
	hits int32
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&t.hits, 1)
	return t.next.RoundTrip(req)
}

func newSession(t *testing.T, userID string) (*Session, *countingTransport) {
	t.Helper()
	s := store.New(blob.NewMemory(), store.WithClock(func() time.Time { return testNow }))
	router, err := mockapi.Open(context.Background(), s, mockapi.Options{Now: func() time.Time { return testNow }})
	require.NoError(t, err)

	tr := &countingTransport{next: &mockapi.Transport{Handler: router}}
	client := api.New(api.Config{BaseURL: "http://tumatch.local/api", Transport: tr})
	sess, err := NewSession(userID, client, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return sess, tr
}

func TestFeed_SyncsMembershipAndCaches(t *testing.T) {
	sess, tr := newSession(t, mockapi.CurrentUserID)
	ctx := context.Background()

	events, err := sess.Feed(ctx, "")
	require.NoError(t, err)
	assert.Len(t, events, 8)
	assert.True(t, sess.Tracker().IsJoined(lunchID))
	assert.False(t, sess.Tracker().IsJoined(studyID))

	before := atomic.LoadInt32(&tr.hits)
	_, err = sess.Feed(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, before, atomic.LoadInt32(&tr.hits), "second read is served from cache")
}

func TestJoin_InvalidatesAndRefreshes(t *testing.T) {
	sess, _ := newSession(t, mockapi.CurrentUserID)
	ctx := context.Background()

	d, err := sess.EventDetail(ctx, studyID)
	require.NoError(t, err)
	assert.False(t, d.IsJoined)
	assert.Zero(t, d.ParticipantCount)
	assert.True(t, d.IsCreator)

	require.NoError(t, sess.Join(ctx, studyID))

	d, err = sess.EventDetail(ctx, studyID)
	require.NoError(t, err)
	assert.True(t, d.IsJoined)
	assert.Equal(t, 1, d.ParticipantCount)
	assert.Equal(t, d.ParticipantCount, d.Event.ParticipantCount)

	require.NoError(t, sess.Leave(ctx, studyID))
	d, err = sess.EventDetail(ctx, studyID)
	require.NoError(t, err)
	assert.False(t, d.IsJoined)
	assert.Zero(t, d.ParticipantCount)
}

func TestJoin_DuplicateDoesNotRollBack(t *testing.T) {
	sess, _ := newSession(t, mockapi.CurrentUserID)
	ctx := context.Background()

	require.NoError(t, sess.Join(ctx, studyID))
	require.NoError(t, sess.Join(ctx, studyID))
	assert.True(t, sess.Tracker().IsJoined(studyID))
	assert.Equal(t, membership.Joined, sess.Tracker().State(studyID))
}

func TestJoin_FullEventRollsBack(t *testing.T) {
	sess, _ := newSession(t, rahul)
	ctx := context.Background()

	err := sess.Join(ctx, lunchID)
	var intentErr *membership.IntentError
	require.ErrorAs(t, err, &intentErr)
	assert.Equal(t, "Event is full", api.Message(intentErr.Err))
	assert.False(t, sess.Tracker().IsJoined(lunchID))
}

func TestCreateEvent_FromForm(t *testing.T) {
	sess, _ := newSession(t, mockapi.CurrentUserID)
	ctx := context.Background()

	before, err := sess.Feed(ctx, "")
	require.NoError(t, err)

	ev, err := sess.CreateEvent(ctx, eventform.Form{Title: "Study", Location: "Lib", StartTime: "14:00"})
	require.NoError(t, err)
	assert.True(t, ev.StartTime.Equal(time.Date(2024, 6, 4, 14, 0, 0, 0, time.UTC)))
	require.NotNil(t, ev.EndTime)
	assert.True(t, ev.EndTime.Equal(ev.StartTime.Add(2*time.Hour)))

	after, err := sess.Feed(ctx, "")
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1, "event lists are invalidated")

	_, err = sess.CreateEvent(ctx, eventform.Form{Title: "no place", StartTime: "14:00"})
	var vErr *api.ValidationError
	assert.ErrorAs(t, err, &vErr)

	require.NoError(t, sess.DeleteEvent(ctx, ev.ID))
	_, err = sess.EventDetail(ctx, ev.ID)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestMyEvents(t *testing.T) {
	sess, _ := newSession(t, mockapi.CurrentUserID)
	created, joined, err := sess.MyEvents(context.Background())
	require.NoError(t, err)

	assert.Len(t, created, 2)
	ids := make([]string, 0, len(joined))
	for _, e := range joined {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{"10000000-0000-0000-0000-000000000002", lunchID}, ids)
}

func TestFriends(t *testing.T) {
	sess, _ := newSession(t, mockapi.CurrentUserID)
	ctx := context.Background()

	friends, err := sess.Friends(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(friends))
	for _, f := range friends {
		names = append(names, f.FullName)
	}
	assert.ElementsMatch(t, []string{"Sarah Jahan", "Danila Zhukov"}, names)

	ok, err := sess.IsFriend(ctx, sarah)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sess.IsFriend(ctx, rahul)
	require.NoError(t, err)
	assert.False(t, ok)

	f, err := sess.AddFriend(ctx, rahul)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, f.Status)

	pending, err := sess.FriendshipWith(ctx, rahul)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, f.ID, pending.ID)

	require.NoError(t, sess.RemoveFriend(ctx, sarah))
	ok, err = sess.IsFriend(ctx, sarah)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, sess.RemoveFriend(ctx, sarah), ErrNotFriends)
}

func TestAcceptFriend(t *testing.T) {
	sess, _ := newSession(t, mockapi.CurrentUserID)
	ctx := context.Background()

	f, err := sess.FriendshipWith(ctx, "00000000-0000-0000-0000-000000000002")
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, models.StatusPending, f.Status)

	_, err = sess.AcceptFriend(ctx, f.ID)
	require.NoError(t, err)
	ok, err := sess.IsFriend(ctx, f.Other(mockapi.CurrentUserID))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddMoment(t *testing.T) {
	sess, _ := newSession(t, mockapi.CurrentUserID)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o600))

	m, err := sess.AddMoment(ctx, lunchID, path, "lunch!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(m.PhotoURL, "data:image/png;base64,"))

	moments, err := sess.Moments(ctx)
	require.NoError(t, err)
	require.Len(t, moments, 1)
	assert.Equal(t, "lunch!", moments[0].Caption)
}

type failingUploader struct{}

func (failingUploader) UploadFile(context.Context, string) (string, error) {
	return "", errors.New("disk on fire")
}

func TestAddMoment_UploadFailure(t *testing.T) {
	sess, _ := newSession(t, mockapi.CurrentUserID)
	WithUploader(failingUploader{})(sess)

	_, err := sess.AddMoment(context.Background(), lunchID, "whatever.png", "")
	assert.ErrorContains(t, err, "disk on fire")
}
