package search

// SampleCatalog returns the built-in catalog shown before the backend is wired.
func SampleCatalog() Catalog {
	return Catalog{
		Events: []EventResult{
			{ID: "10000000-0000-0000-0000-000000000001", Title: "TOMfoolery Hackathon", Location: "Open Space", Time: "Soon", Image: "/event_images/hackathon.jpg"},
			{ID: "10000000-0000-0000-0000-000000000002", Title: "Volleyball at iLive", Location: "iLive Campus", Time: "Soon", Image: "/event_images/volleyball.jpg"},
			{ID: "10000000-0000-0000-0000-000000000003", Title: "Grab a Doner", Location: "Doner Eck", Time: "Soon", Image: "/event_images/doner.jpg"},
			{ID: "10000000-0000-0000-0000-000000000004", Title: "Football Training", Location: "Sportplatze Wertwiesen", Time: "Soon", Image: "/event_images/football.jpg"},
			{ID: "10000000-0000-0000-0000-000000000005", Title: "Bouldering", Location: "KletterArena", Time: "Soon", Image: "/event_images/bouldering.jpg"},
			{ID: "10000000-0000-0000-0000-000000000006", Title: "Lunch at Mensa", Location: "Mensa, Bildungscampus", Time: "Soon", Image: "/event_images/mensa.jpg"},
			{ID: "10000000-0000-0000-0000-000000000007", Title: "Poker Night", Location: "W27 Lounge", Time: "Soon", Image: "/event_images/poker.jpeg"},
			{ID: "10000000-0000-0000-0000-000000000008", Title: "Study at the Library", Location: "LIV Library", Time: "Soon", Image: "/event_images/library.jpg"},
		},
		Locations: []LocationResult{
			{ID: "loc-open-space", Name: "Open Space", Type: "Hall", Events: 1},
			{ID: "loc-ilive", Name: "iLive Campus", Type: "Sports", Events: 1},
			{ID: "loc-doner", Name: "Doner Eck", Type: "Restaurant", Events: 1},
			{ID: "loc-sportplatz", Name: "Sportplatze Wertwiesen", Type: "Sports Field", Events: 1},
			{ID: "loc-kletter", Name: "KletterArena", Type: "Climbing Wall", Events: 1},
			{ID: "loc-mensa", Name: "Mensa, Bildungscampus", Type: "Cafeteria", Events: 1},
			{ID: "loc-w27", Name: "W27 Lounge", Type: "Lounge", Events: 1},
			{ID: "loc-library", Name: "LIV Library", Type: "Library", Events: 1},
		},
		People: []PersonResult{
			{ID: "00000000-0000-0000-0000-000000000001", Name: "Omar Azlan", Department: "BMDS", Avatar: "/pfpics/omar.jpg"},
			{ID: "00000000-0000-0000-0000-000000000002", Name: "Assem El Dlebshany", Department: "BIE", Avatar: "/pfpics/assem.png"},
			{ID: "00000000-0000-0000-0000-000000000003", Name: "Sarah Jahan", Department: "BMDS", Avatar: "/pfpics/sarah.JPG"},
			{ID: "00000000-0000-0000-0000-000000000004", Name: "Rahul Chanani", Department: "Physics", Avatar: "/pfpics/rahul.jpeg"},
			{ID: "00000000-0000-0000-0000-000000000005", Name: "Timo Robrecht", Department: "BIE", Avatar: "/pfpics/timo.PNG"},
			{ID: "00000000-0000-0000-0000-000000000006", Name: "Danila Zhukov", Department: "BMDS", Avatar: "/pfpics/danila.jpeg"},
		},
	}
}
