package mockapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tumatch/client/internal/api"
	"tumatch/client/internal/blob"
	"tumatch/client/internal/models"
	"tumatch/client/internal/store"
	"tumatch/client/pkg/jwt"

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

var testNow = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newBackend(t *testing.T, opts Options) (*api.Client, *store.Store) {
	t.Helper()
	s := store.New(blob.NewMemory(), store.WithClock(func() time.Time { return testNow }))
	opts.Now = func() time.Time { return testNow }
	router, err := Open(context.Background(), s, opts)
	require.NoError(t, err)

	c := api.New(api.Config{BaseURL: "http://tumatch.local/api", Transport: &Transport{Handler: router}})
	return c, s
}

func TestHealth(t *testing.T) {
	router := NewRouter(store.New(blob.NewMemory()), Options{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestCurrentUser(t *testing.T) {
	c, _ := newBackend(t, Options{})
	me, err := c.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CurrentUserID, me.ID)
	assert.Equal(t, "Omar Azlan", me.FullName)
}

func TestCurrentUser_FromToken(t *testing.T) {
	s := store.New(blob.NewMemory())
	router, err := Open(context.Background(), s, Options{JWTSecret: "secret"})
	require.NoError(t, err)

	token, err := jwt.GenerateToken("secret", sarah, 0)
	require.NoError(t, err)
	c := api.New(api.Config{BaseURL: "http://x/api", BearerToken: token, Transport: &Transport{Handler: router}})

	me, err := c.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sarah Jahan", me.FullName)
}

func TestGetEvents_Annotations(t *testing.T) {
	c, _ := newBackend(t, Options{})
	events, err := c.GetEvents(context.Background(), api.EventFilters{CurrentUserID: CurrentUserID})
	require.NoError(t, err)
	require.Len(t, events, 8)

	byID := map[string]models.Event{}
	for _, e := range events {
		byID[e.ID] = e
		assert.Equal(t, e.CreatorID, e.OrganizerID)
		assert.NotEmpty(t, e.OrganizerName)
		assert.LessOrEqual(t, len(e.Participants), 3)
	}

	lunch := byID[lunchID]
	assert.True(t, lunch.CurrentUserJoined)
	assert.Equal(t, 2, lunch.ParticipantCount)
	assert.True(t, lunch.IsFull())
	assert.False(t, byID[studyID].CurrentUserJoined)
}

func TestGetEvents_Filters(t *testing.T) {
	c, _ := newBackend(t, Options{})
	ctx := context.Background()

	sports, err := c.GetEvents(ctx, api.EventFilters{Category: "Sports"})
	require.NoError(t, err)
	assert.Len(t, sports, 3)

	found, err := c.GetEvents(ctx, api.EventFilters{Search: "library"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, studyID, found[0].ID)

	mine, err := c.GetEvents(ctx, api.EventFilters{CreatorID: CurrentUserID, Category: "Study"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestJoinLeaveRules(t *testing.T) {
	c, _ := newBackend(t, Options{})
	ctx := context.Background()

	p, err := c.JoinEvent(ctx, studyID, rahul)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantStatusJoined, p.Status)

	_, err = c.JoinEvent(ctx, studyID, rahul)
	require.Error(t, err)
	assert.True(t, api.IsAlreadyJoined(err))

	_, err = c.JoinEvent(ctx, lunchID, rahul)
	require.Error(t, err)
	assert.Equal(t, "Event is full", api.Message(err))

	_, err = c.JoinEvent(ctx, "missing", rahul)
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, "Event not found", api.Message(err))

	_, err = c.JoinEvent(ctx, studyID, "ghost")
	assert.Equal(t, "User not found", api.Message(err))

	require.NoError(t, c.LeaveEvent(ctx, studyID, rahul))
	err = c.LeaveEvent(ctx, studyID, rahul)
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, "Participant not found", api.Message(err))
}

func TestParticipantCountFollowsRoster(t *testing.T) {
	c, _ := newBackend(t, Options{})
	ctx := context.Background()

	for _, uid := range []string{CurrentUserID, sarah, rahul} {
		_, err := c.JoinEvent(ctx, studyID, uid)
		require.NoError(t, err)
	}
	require.NoError(t, c.LeaveEvent(ctx, studyID, sarah))

	ev, err := c.GetEvent(ctx, studyID)
	require.NoError(t, err)
	roster, err := c.GetEventParticipants(ctx, studyID)
	require.NoError(t, err)

	assert.Len(t, roster, 2)
	assert.Equal(t, len(roster), ev.ParticipantCount)
	assert.Len(t, ev.Participants, 2)
}

func TestCreateAndDeleteEvent(t *testing.T) {
	c, _ := newBackend(t, Options{})
	ctx := context.Background()
	capacity := 5

	ev, err := c.CreateEvent(ctx, api.CreateEventInput{
		Title:           "Study",
		Category:        "Study",
		Location:        "Lib",
		StartTime:       testNow.Add(time.Hour),
		MaxParticipants: &capacity,
		CreatorID:       CurrentUserID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, models.EventStatusActive, ev.Status)

	_, err = c.JoinEvent(ctx, ev.ID, sarah)
	require.NoError(t, err)

	require.NoError(t, c.DeleteEvent(ctx, ev.ID))
	_, err = c.GetEvent(ctx, ev.ID)
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.ErrorIs(t, c.DeleteEvent(ctx, ev.ID), api.ErrNotFound)

	_, err = c.CreateEvent(ctx, api.CreateEventInput{
		Title: "x", Category: "Social", Location: "y", StartTime: testNow, CreatorID: "ghost",
	})
	assert.Equal(t, "Creator not found", api.Message(err))
}

func TestDeleteEvent_CreatorOnly(t *testing.T) {
	s := store.New(blob.NewMemory())
	router, err := Open(context.Background(), s, Options{JWTSecret: "secret"})
	require.NoError(t, err)

	token, err := jwt.GenerateToken("secret", rahul, 0)
	require.NoError(t, err)
	c := api.New(api.Config{BaseURL: "http://x/api", BearerToken: token, Transport: &Transport{Handler: router}})

	err = c.DeleteEvent(context.Background(), studyID)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestFriendships(t *testing.T) {
	c, _ := newBackend(t, Options{})
	ctx := context.Background()

	f, err := c.CreateFriendship(ctx, rahul, CurrentUserID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, f.Status)

	_, err = c.CreateFriendship(ctx, CurrentUserID, rahul)
	assert.Equal(t, "Friendship already exists", api.Message(err), "either ordering is a duplicate")

	all, err := c.GetFriendships(ctx, CurrentUserID, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	accepted, err := c.GetFriendships(ctx, CurrentUserID, models.StatusAccepted)
	require.NoError(t, err)
	assert.Len(t, accepted, 2)

	updated, err := c.UpdateFriendshipStatus(ctx, f.ID, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)

	_, err = c.UpdateFriendshipStatus(ctx, f.ID, "bogus")
	assert.Equal(t, "Invalid status", api.Message(err))

	require.NoError(t, c.DeleteFriendship(ctx, f.ID))
	assert.ErrorIs(t, c.DeleteFriendship(ctx, f.ID), api.ErrNotFound)

	_, err = c.GetFriendships(ctx, "ghost", "")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestMoments_NewestFirst(t *testing.T) {
	c, s := newBackend(t, Options{})
	ctx := context.Background()

	first, err := c.CreateMoment(ctx, api.CreateMomentInput{UserID: CurrentUserID, EventID: lunchID, PhotoURL: "a.jpg"})
	require.NoError(t, err)
	// backdate the first moment so the second is newer
	_, err = s.Update(ctx, store.Moments, first.ID, store.Record{"created_at": testNow.Add(-time.Hour).UTC().Format(store.TimeLayout)})
	require.NoError(t, err)
	second, err := c.CreateMoment(ctx, api.CreateMomentInput{UserID: CurrentUserID, EventID: studyID, PhotoURL: "b.jpg", Caption: "exam prep"})
	require.NoError(t, err)

	moments, err := c.GetMoments(ctx, api.MomentFilters{UserID: CurrentUserID})
	require.NoError(t, err)
	require.Len(t, moments, 2)
	assert.Equal(t, second.ID, moments[0].ID)
	assert.Equal(t, first.ID, moments[1].ID)

	byEvent, err := c.GetMoments(ctx, api.MomentFilters{EventID: studyID})
	require.NoError(t, err)
	require.Len(t, byEvent, 1)
	assert.Equal(t, "exam prep", byEvent[0].Caption)

	_, err = c.CreateMoment(ctx, api.CreateMomentInput{UserID: CurrentUserID, EventID: "missing", PhotoURL: "x"})
	assert.Equal(t, "Event not found", api.Message(err))

	require.NoError(t, c.DeleteMoment(ctx, first.ID))
	assert.ErrorIs(t, c.DeleteMoment(ctx, first.ID), api.ErrNotFound)
}

func TestUsers(t *testing.T) {
	c, _ := newBackend(t, Options{})
	ctx := context.Background()

	users, err := c.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 6)

	u, err := c.GetUser(ctx, rahul)
	require.NoError(t, err)
	assert.Equal(t, "Physics", u.Department)

	_, err = c.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestPagination(t *testing.T) {
	s := store.New(blob.NewMemory())
	router, err := Open(context.Background(), s, Options{})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users?skip=4&limit=10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Timo Robrecht")
	assert.NotContains(t, w.Body.String(), "Omar Azlan")
}

func TestTransport_ContextCanceled(t *testing.T) {
	c, _ := newBackend(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetUsers(ctx)
	require.Error(t, err)
	assert.True(t, api.IsNetwork(err))
}

// trackedBody records whether it was closed.
type trackedBody struct {
	*strings.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

func TestTransport_ClosesRequestBody(t *testing.T) {
	tr := &Transport{Handler: gin.New()}

	body := &trackedBody{Reader: strings.NewReader(`{}`)}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, "http://tumatch.local/api/events", body)
	require.NoError(t, err)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.True(t, body.closed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	body = &trackedBody{Reader: strings.NewReader(`{}`)}
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, "http://tumatch.local/api/events", body)
	require.NoError(t, err)
	_, err = tr.RoundTrip(req)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, body.closed, "closed on the canceled path too")
}
