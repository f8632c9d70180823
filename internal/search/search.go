// Package search filters the three result lists of the search sheet.
package search

import "strings"

// EventResult is an event row of the search sheet.
type EventResult struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Time     string `json:"time"`
	Image    string `json:"image"`
}

// LocationResult is a venue row.
type LocationResult struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Events int    `json:"events"`
}

// PersonResult is a people row.
type PersonResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Avatar     string `json:"avatar"`
}

// Catalog holds the three result lists.
type Catalog struct {
	Events    []EventResult    `json:"events"`
	Locations []LocationResult `json:"locations"`
	People    []PersonResult   `json:"people"`
}

// Tab names a result list.
type Tab string

const (
	TabEvents    Tab = "events"
	TabLocations Tab = "locations"
	TabPeople    Tab = "people"
)

// Filter keeps the rows containing query, case-insensitively: events by
// title or location, locations by name, people by name or department.
// Order is preserved and an empty query keeps every row.
func Filter(c Catalog, query string) Catalog {
	q := strings.ToLower(query)
	has := func(fields ...string) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}

	out := Catalog{
		Events:    make([]EventResult, 0, len(c.Events)),
		Locations: make([]LocationResult, 0, len(c.Locations)),
		People:    make([]PersonResult, 0, len(c.People)),
	}
	for _, e := range c.Events {
		if has(e.Title, e.Location) {
			out.Events = append(out.Events, e)
		}
	}
	for _, l := range c.Locations {
		if has(l.Name) {
			out.Locations = append(out.Locations, l)
		}
	}
	for _, p := range c.People {
		if has(p.Name, p.Department) {
			out.People = append(out.People, p)
		}
	}
	return out
}

// Count returns the number of rows in tab.
func (c Catalog) Count(tab Tab) int {
	switch tab {
	case TabEvents:
		return len(c.Events)
	case TabLocations:
		return len(c.Locations)
	case TabPeople:
		return len(c.People)
	}
	return 0
}
