// Package eventform validates the create-event form and turns it into a
// gateway request.
package eventform

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"tumatch/client/internal/api"

	"github.com/go-playground/validator/v10"
)

// Defaults applied by Resolve.
const (
	DefaultImageURL        = "https://images.unsplash.com/photo-1523580494863-6f3031224c94?w=800"
	DefaultMaxParticipants = 50
	DefaultCategory        = "Social"
	DefaultDuration        = 2 * time.Hour
)

// Categories lists the selectable categories, value then label.
var Categories = []struct{ Value, Label string }{
	{"Study", "Study Group"},
	{"Social", "Social"},
	{"Workshop", "Workshop"},
	{"Sports", "Sports"},
	{"Networking", "Networking"},
}

// Form is what the user typed. StartTime is a wall-clock time "HH:MM"
// within the next 24 hours.
type Form struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	Category        string `json:"category" validate:"omitempty,oneof=Study Social Workshop Sports Networking"`
	Location        string `json:"location" validate:"required"`
	StartTime       string `json:"start_time" validate:"required,datetime=15:04"`
	ImageURL        string `json:"image_url"`
	MaxParticipants int    `json:"max_participants" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports the invalid fields of f as an *api.ValidationError.
func (f Form) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &api.ValidationError{Op: "create event", Fields: fields}
}

// Resolve validates f and builds the create request for creatorID. The start
// is today at StartTime in now's location, or tomorrow when that moment is
// not after now. The event lasts DefaultDuration.
func Resolve(f Form, creatorID string, now time.Time) (api.CreateEventInput, error) {
	if err := f.Validate(); err != nil {
		return api.CreateEventInput{}, err
	}

	start, err := NextOccurrence(f.StartTime, now)
	if err != nil {
		return api.CreateEventInput{}, err
	}
	end := start.Add(DefaultDuration)

	image := f.ImageURL
	if image == "" {
		image = DefaultImageURL
	}
	category := f.Category
	if category == "" {
		category = DefaultCategory
	}
	limit := f.MaxParticipants
	if limit == 0 {
		limit = DefaultMaxParticipants
	}

	return api.CreateEventInput{
		Title:           strings.TrimSpace(f.Title),
		Description:     f.Description,
		Category:        category,
		Location:        strings.TrimSpace(f.Location),
		ImageURL:        image,
		StartTime:       start,
		EndTime:         &end,
		MaxParticipants: &limit,
		CreatorID:       creatorID,
	}, nil
}

// NextOccurrence returns the first moment after now whose wall clock reads hhmm.
func NextOccurrence(hhmm string, now time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, &api.ValidationError{Op: "create event", Fields: []string{"start_time"}}
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !at.After(now) {
		at = time.Date(now.Year(), now.Month(), now.Day()+1, t.Hour(), t.Minute(), 0, 0, now.Location())
	}
	return at, nil
}
