package search

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrEmptyQuery is returned when an assistant is asked nothing.
var ErrEmptyQuery = errors.New("empty query")

// Assistant answers free-text questions ("workshops tomorrow with < 10
// people") with the tab whose results should be shown.
type Assistant interface {
	Ask(ctx context.Context, question string) (Tab, error)
}

// StubAssistant pretends to think for Delay and always answers TabEvents.
type StubAssistant struct {
	Delay time.Duration
}

// DefaultAssistantDelay is the thinking time of a zero StubAssistant.
const DefaultAssistantDelay = 1500 * time.Millisecond

var _ Assistant = StubAssistant{}

func (s StubAssistant) Ask(ctx context.Context, question string) (Tab, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuery
	}
	delay := s.Delay
	if delay == 0 {
		delay = DefaultAssistantDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return TabEvents, nil
	}
}
