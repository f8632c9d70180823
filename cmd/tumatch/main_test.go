package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"tumatch/client/internal/config"
	"tumatch/client/internal/logging"
	"tumatch/client/internal/mockapi"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	volleyballID = "10000000-0000-0000-0000-000000000002"
	lunchID      = "10000000-0000-0000-0000-000000000006"
	studyID      = "10000000-0000-0000-0000-000000000008"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func offlineConfig() *config.Config {
	return &config.Config{
		APIBaseURL:    "http://tumatch.local/api",
		Offline:       true,
		HTTPTimeout:   5 * time.Second,
		CurrentUserID: mockapi.CurrentUserID,
		StoreBackend:  config.BackendMemory,
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), offlineConfig(), logging.Discard(), args, &out)
	return out.String(), err
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	out, err := runCLI(t)
	assert.True(t, errors.Is(err, errUsage))
	assert.Contains(t, out, "Usage: tumatch")
}

func TestRun_UnknownCommand(t *testing.T) {
	_, err := runCLI(t, "dance")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUsage))
}

func TestFeed(t *testing.T) {
	out, err := runCLI(t, "feed")
	require.NoError(t, err)
	assert.Contains(t, out, "Lunch at Mensa")
	assert.Contains(t, out, "2/2")
	assert.Contains(t, out, "joined")
}

func TestFeed_Category(t *testing.T) {
	out, err := runCLI(t, "feed", "-category", "Study")
	require.NoError(t, err)
	assert.Contains(t, out, "Study at the Library")
	assert.NotContains(t, out, "Lunch at Mensa")
}

func TestEvent(t *testing.T) {
	out, err := runCLI(t, "event", volleyballID)
	require.NoError(t, err)
	assert.Contains(t, out, "Volleyball at iLive")
	assert.Contains(t, out, "Participants (2)")
	assert.Contains(t, out, "You're going.")
}

func TestEvent_Host(t *testing.T) {
	out, err := runCLI(t, "event", lunchID)
	require.NoError(t, err)
	assert.Contains(t, out, "You are hosting this event.")
}

func TestEvent_MissingID(t *testing.T) {
	_, err := runCLI(t, "event")
	assert.True(t, errors.Is(err, errUsage))
}

func TestJoin(t *testing.T) {
	out, err := runCLI(t, "join", studyID)
	require.NoError(t, err)
	assert.Contains(t, out, "Joined "+studyID)
}

func TestLeave_NotMember(t *testing.T) {
	_, err := runCLI(t, "leave", studyID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to leave event. Please try again.")
	assert.Contains(t, err.Error(), "Participant not found")
}

func TestCreate_Validation(t *testing.T) {
	_, err := runCLI(t, "create", "-title", "Chess")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location")
}

func TestCreate(t *testing.T) {
	out, err := runCLI(t, "create", "-title", "Chess", "-location", "MI Magistrale", "-time", "18:30")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Chess")
}

func TestSearch(t *testing.T) {
	out, err := runCLI(t, "search", "mensa")
	require.NoError(t, err)
	assert.Contains(t, out, "EVENTS (1)")
	assert.Contains(t, out, "Lunch at Mensa @ Mensa, Bildungscampus")
	assert.Contains(t, out, "LOCATIONS (1)")
	assert.Contains(t, out, "PEOPLE (0)")
}

func TestSearch_AssistantNeedsQuestion(t *testing.T) {
	_, err := runCLI(t, "search", "-ai")
	require.Error(t, err)
}

func TestFriends(t *testing.T) {
	out, err := runCLI(t, "friends")
	require.NoError(t, err)
	assert.Contains(t, out, "Friends (2)")
	assert.Contains(t, out, "Sarah Jahan")
}

func TestReset(t *testing.T) {
	out, err := runCLI(t, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared the memory store")
}
