package mockapi

import (
	"fmt"
	"time"

	"tumatch/client/internal/store"
)

// CurrentUserID is the demo user every session acts as by default.
const CurrentUserID = "00000000-0000-0000-0000-000000000001"

type seedUser struct {
	id, name, email, department, photo, bio string
}

var seedUsers = []seedUser{
	{CurrentUserID, "Omar Azlan", "current@tum.de", "BMDS", "/pfpics/omar.jpg", "This is the current logged-in user"},
	{"00000000-0000-0000-0000-000000000002", "Assem El Dlebshany", "assem@tum.de", "BIE", "/pfpics/assem.png", ""},
	{"00000000-0000-0000-0000-000000000003", "Sarah Jahan", "sarah@tum.de", "BMDS", "/pfpics/sarah.JPG", ""},
	{"00000000-0000-0000-0000-000000000004", "Rahul Chanani", "rahul@tum.de", "Physics", "/pfpics/rahul.jpeg", ""},
	{"00000000-0000-0000-0000-000000000005", "Timo Robrecht", "timo@tum.de", "BIE", "/pfpics/timo.PNG", ""},
	{"00000000-0000-0000-0000-000000000006", "Danila Zhukov", "danila@tum.de", "BMDS", "/pfpics/danila.jpeg", ""},
}

type seedEvent struct {
	title, description, category, location, image string
	in                                            time.Duration
	max                                           int
	creator                                       int
	members                                       []int
}

var seedEvents = []seedEvent{
	{"TOMfoolery Hackathon", "48-hour hackathon focused on AI and sustainability solutions.", "Workshop", "Open Space", "/event_images/hackathon.jpg", 7 * 24 * time.Hour, 100, 1, []int{2, 3}},
	{"Volleyball at iLive", "Casual beach volleyball, all levels welcome.", "Sports", "iLive Campus", "/event_images/volleyball.jpg", 26 * time.Hour, 12, 4, []int{0, 5}},
	{"Grab a Doner", "Quick lunch break with whoever is around.", "Social", "Doner Eck", "/event_images/doner.jpg", 45 * time.Minute, 6, 2, []int{4}},
	{"Football Training", "Weekly training session, bring boots.", "Sports", "Sportplatze Wertwiesen", "/event_images/football.jpg", 3 * time.Hour, 22, 3, nil},
	{"Bouldering", "Beginner friendly bouldering evening.", "Sports", "KletterArena", "/event_images/bouldering.jpg", 5*time.Hour + 30*time.Minute, 8, 5, []int{1, 3, 4}},
	{"Lunch at Mensa", "Meet new people over lunch.", "Social", "Mensa, Bildungscampus", "/event_images/mensa.jpg", 20 * time.Minute, 2, 0, []int{0, 2}},
	{"Poker Night", "Friendly low-stakes poker.", "Social", "W27 Lounge", "/event_images/poker.jpeg", 30 * time.Hour, 10, 5, []int{1}},
	{"Study at the Library", "Silent study group for the exam season.", "Study", "LIV Library", "/event_images/library.jpg", 2 * time.Hour, 15, 0, nil},
}

// Seed returns the demo data set with start times relative to now.
func Seed(now time.Time) map[string][]store.Record {
	stamp := now.UTC().Format(store.TimeLayout)

	users := make([]store.Record, 0, len(seedUsers))
	for _, u := range seedUsers {
		users = append(users, store.Record{
			"id":            u.id,
			"email":         u.email,
			"full_name":     u.name,
			"profile_photo": u.photo,
			"department":    u.department,
			"bio":           u.bio,
			"created_at":    stamp,
		})
	}

	var events, participants []store.Record
	for i, e := range seedEvents {
		id := fmt.Sprintf("10000000-0000-0000-0000-%012d", i+1)
		start := now.Add(e.in).UTC()
		end := start.Add(2 * time.Hour)
		events = append(events, store.Record{
			"id":               id,
			"title":            e.title,
			"description":      e.description,
			"category":         e.category,
			"location":         e.location,
			"image_url":        e.image,
			"start_time":       start.Format(time.RFC3339),
			"end_time":         end.Format(time.RFC3339),
			"max_participants": float64(e.max),
			"status":           "active",
			"creator_id":       seedUsers[e.creator].id,
			"created_at":       stamp,
		})
		for j, m := range e.members {
			participants = append(participants, store.Record{
				"id":         fmt.Sprintf("EventParticipant_seed_%d_%d", i+1, j+1),
				"event_id":   id,
				"user_id":    seedUsers[m].id,
				"joined_at":  stamp,
				"status":     "joined",
				"created_at": stamp,
			})
		}
	}

	friendships := []store.Record{
		{"id": "Friendship_seed_1", "user_id": CurrentUserID, "friend_id": seedUsers[2].id, "status": "accepted", "created_at": stamp},
		{"id": "Friendship_seed_2", "user_id": seedUsers[5].id, "friend_id": CurrentUserID, "status": "accepted", "created_at": stamp},
		{"id": "Friendship_seed_3", "user_id": seedUsers[1].id, "friend_id": CurrentUserID, "status": "pending", "created_at": stamp},
	}

	return map[string][]store.Record{
		store.Users:             users,
		store.Events:            events,
		store.EventParticipants: participants,
		store.Friendships:       friendships,
	}
}
