// Package app is the session facade presentation layers talk to. It ties the
// gateway client, the query cache and the membership tracker together for one
// user.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tumatch/client/internal/api"
	"tumatch/client/internal/eventform"
	"tumatch/client/internal/logging"
	"tumatch/client/internal/membership"
	"tumatch/client/internal/models"
	"tumatch/client/internal/query"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Cache key families owned by the session.
const (
	friendshipsPrefix = "friendships"
	momentsPrefix     = "moments"
	usersKey          = "users"
)

// ErrNotFriends is returned by RemoveFriend when no friendship exists.
var ErrNotFriends = errors.New("not friends")

// Session serves one user.
type Session struct {
	userID   string
	client   *api.Client
	cache    *query.Cache
	tracker  *membership.Tracker
	uploader api.Uploader
	log      logrus.FieldLogger
	now      func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.log = log }
}

// WithUploader replaces the data URL uploader.
func WithUploader(u api.Uploader) Option {
	return func(s *Session) { s.uploader = u }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithCache replaces the default cache.
func WithCache(c *query.Cache) Option {
	return func(s *Session) { s.cache = c }
}

// NewSession creates a session for userID over client.
func NewSession(userID string, client *api.Client, opts ...Option) (*Session, error) {
	s := &Session{
		userID:   userID,
		client:   client,
		uploader: api.DataURLUploader{},
		log:      logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		cache, err := query.New(query.DefaultSize)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		s.cache = cache
	}
	s.tracker = membership.NewTracker(userID, client,
		membership.WithCache(s.cache),
		membership.WithLogger(s.log),
	)
	return s, nil
}

// UserID returns the session user.
func (s *Session) UserID() string {
	return s.userID
}

// Tracker exposes the membership state for rendering join buttons.
func (s *Session) Tracker() *membership.Tracker {
	return s.tracker
}

// CurrentUser returns the session user's profile.
func (s *Session) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.User(ctx, s.userID)
}

// User returns any user's profile.
func (s *Session) User(ctx context.Context, userID string) (*models.User, error) {
	return query.Fetch(ctx, s.cache, "user/"+userID, func(ctx context.Context) (*models.User, error) {
		return s.client.GetUser(ctx, userID)
	})
}

// Feed lists events, optionally of one category, annotated for the session
// user. Membership is re-synced from the result.
func (s *Session) Feed(ctx context.Context, category string) ([]models.Event, error) {
	events, err := query.Fetch(ctx, s.cache, query.EventsKey("feed", category), func(ctx context.Context) ([]models.Event, error) {
		return s.client.GetEvents(ctx, api.EventFilters{Category: category, CurrentUserID: s.userID})
	})
	if err != nil {
		return nil, err
	}
	s.tracker.Sync(events)
	return events, nil
}

// Detail is an event page: the event, its authoritative roster and derived flags.
type Detail struct {
	Event        models.Event
	Participants []models.EventParticipant
	// ParticipantCount comes from the roster, never from Event.Participants.
	ParticipantCount int
	IsJoined         bool
	IsCreator        bool
}

// EventDetail fetches the event and its roster concurrently.
func (s *Session) EventDetail(ctx context.Context, eventID string) (*Detail, error) {
	var (
		event  *models.Event
		roster []models.EventParticipant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = query.Fetch(gctx, s.cache, query.EventKey(eventID), func(ctx context.Context) (*models.Event, error) {
			return s.client.GetEvent(ctx, eventID)
		})
		return err
	})
	g.Go(func() error {
		var err error
		roster, err = query.Fetch(gctx, s.cache, query.ParticipantsKey(eventID), func(ctx context.Context) ([]models.EventParticipant, error) {
			return s.client.GetEventParticipants(ctx, eventID)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.tracker.SyncRoster(eventID, roster)
	return &Detail{
		Event:            *event,
		Participants:     roster,
		ParticipantCount: len(roster),
		IsJoined:         s.tracker.IsJoined(eventID),
		IsCreator:        event.CreatorID == s.userID,
	}, nil
}

// Join joins an event optimistically.
func (s *Session) Join(ctx context.Context, eventID string) error {
	return s.tracker.Join(ctx, eventID)
}

// Leave leaves an event optimistically.
func (s *Session) Leave(ctx context.Context, eventID string) error {
	return s.tracker.Leave(ctx, eventID)
}

// CreateEvent validates the form, creates the event as the session user and
// invalidates every event list.
func (s *Session) CreateEvent(ctx context.Context, form eventform.Form) (*models.Event, error) {
	in, err := eventform.Resolve(form, s.userID, s.now())
	if err != nil {
		return nil, err
	}
	event, err := s.client.CreateEvent(ctx, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(query.EventsPrefix)
	s.log.WithFields(logrus.Fields{"event_id": event.ID, "start_time": event.StartTime}).Info("event created")
	return event, nil
}

// DeleteEvent deletes an event the session user created.
func (s *Session) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.client.DeleteEvent(ctx, eventID); err != nil {
		return err
	}
	s.cache.Invalidate(query.EventKey(eventID), query.ParticipantsKey(eventID), query.EventsPrefix)
	return nil
}

// MyEvents returns the events the session user created and the ones they joined.
func (s *Session) MyEvents(ctx context.Context) (created, joined []models.Event, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		created, err = query.Fetch(gctx, s.cache, query.EventsKey("creator", s.userID), func(ctx context.Context) ([]models.Event, error) {
			return s.client.GetEvents(ctx, api.EventFilters{CreatorID: s.userID, CurrentUserID: s.userID})
		})
		return err
	})
	g.Go(func() error {
		all, err := s.Feed(gctx, "")
		if err != nil {
			return err
		}
		for _, e := range all {
			if e.CurrentUserJoined {
				joined = append(joined, e)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return created, joined, nil
}

func (s *Session) friendships(ctx context.Context) ([]models.Friendship, error) {
	return query.Fetch(ctx, s.cache, friendshipsPrefix+"/"+s.userID, func(ctx context.Context) ([]models.Friendship, error) {
		return s.client.GetFriendships(ctx, s.userID, "")
	})
}

func (s *Session) users(ctx context.Context) (map[string]models.User, error) {
	return query.Fetch(ctx, s.cache, usersKey, func(ctx context.Context) (map[string]models.User, error) {
		users, err := s.client.GetUsers(ctx)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]models.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}
		return byID, nil
	})
}

// Friends returns the users the session user has an accepted friendship
// with, in either direction.
func (s *Session) Friends(ctx context.Context) ([]models.User, error) {
	var (
		friendships []models.Friendship
		users       map[string]models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		friendships, err = s.friendships(gctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.users(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var friends []models.User
	for _, f := range friendships {
		if f.Status != models.StatusAccepted {
			continue
		}
		if u, ok := users[f.Other(s.userID)]; ok {
			friends = append(friends, u)
		}
	}
	return friends, nil
}

// FriendshipWith returns the friendship between the session user and
// otherID in either direction, or nil.
func (s *Session) FriendshipWith(ctx context.Context, otherID string) (*models.Friendship, error) {
	friendships, err := s.friendships(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range friendships {
		if f.Involves(s.userID, otherID) {
			f := f
			return &f, nil
		}
	}
	return nil, nil
}

// IsFriend reports whether an accepted friendship with otherID exists.
func (s *Session) IsFriend(ctx context.Context, otherID string) (bool, error) {
	f, err := s.FriendshipWith(ctx, otherID)
	if err != nil {
		return false, err
	}
	return f != nil && f.Status == models.StatusAccepted, nil
}

// AddFriend sends a friend request to otherID.
func (s *Session) AddFriend(ctx context.Context, otherID string) (*models.Friendship, error) {
	f, err := s.client.CreateFriendship(ctx, s.userID, otherID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(friendshipsPrefix)
	return f, nil
}

// AcceptFriend accepts a pending request.
func (s *Session) AcceptFriend(ctx context.Context, friendshipID string) (*models.Friendship, error) {
	f, err := s.client.UpdateFriendshipStatus(ctx, friendshipID, models.StatusAccepted)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(friendshipsPrefix)
	return f, nil
}

// RemoveFriend deletes the friendship with otherID whatever its direction.
func (s *Session) RemoveFriend(ctx context.Context, otherID string) error {
	f, err := s.FriendshipWith(ctx, otherID)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrNotFriends
	}
	if err := s.client.DeleteFriendship(ctx, f.ID); err != nil {
		return err
	}
	s.cache.Invalidate(friendshipsPrefix)
	return nil
}

// Moments lists the session user's moments, newest first.
func (s *Session) Moments(ctx context.Context) ([]models.Moment, error) {
	return query.Fetch(ctx, s.cache, momentsPrefix+"/"+s.userID, func(ctx context.Context) ([]models.Moment, error) {
		return s.client.GetMoments(ctx, api.MomentFilters{UserID: s.userID})
	})
}

// AddMoment uploads the photo at path and records it for eventID.
func (s *Session) AddMoment(ctx context.Context, eventID, path, caption string) (*models.Moment, error) {
	photoURL, err := s.uploader.UploadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	m, err := s.client.CreateMoment(ctx, api.CreateMomentInput{
		UserID:   s.userID,
		EventID:  eventID,
		PhotoURL: photoURL,
		Caption:  caption,
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(momentsPrefix)
	return m, nil
}

// Refresh drops every cached read.
func (s *Session) Refresh() {
	s.cache.Purge()
}
