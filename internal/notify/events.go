package notify

import (
	"fmt"
	"strings"

	"github.com/backline/backline/internal/shared"
)

// EventKind identifies a notification event type.
type EventKind string

const (
	EventArtistRegistered EventKind = "artist_registered"
	EventDemoReviewed     EventKind = "demo_reviewed"
	EventAnnouncement     EventKind = "announcement"
)

// DemoStatus enumerates demo review outcomes.
type DemoStatus string

const (
	DemoApproved         DemoStatus = "approved"
	DemoRejected         DemoStatus = "rejected"
	DemoNeedsImprovement DemoStatus = "needs_improvement"
)

// Event is a notification payload as posted to the dispatch endpoint.
// Which fields are required depends on Kind; Validate enforces the schema.
type Event struct {
	Kind        EventKind  `json:"event"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	TrackName   string     `json:"track_name,omitempty"`
	Status      DemoStatus `json:"status,omitempty"`
	Feedback    string     `json:"feedback,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	Body        string     `json:"body,omitempty"`
}

// Validate checks the event against its schema. Malformed payloads return
// an error wrapping [shared.ErrInvalidInput] that names every offending field.
func (e *Event) Validate() error {
	var missing []string

	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	switch e.Kind {
	case EventArtistRegistered:
		require("email", e.Email)
		require("display_name", e.DisplayName)
	case EventDemoReviewed:
		require("email", e.Email)
		require("display_name", e.DisplayName)
		require("track_name", e.TrackName)
		switch e.Status {
		case DemoApproved, DemoRejected, DemoNeedsImprovement:
		case "":
			missing = append(missing, "status")
		default:
			return fmt.Errorf("%w: status must be one of approved, rejected, needs_improvement", shared.ErrInvalidInput)
		}
	case EventAnnouncement:
		require("subject", e.Subject)
		require("body", e.Body)
	case "":
		return fmt.Errorf("%w: missing event", shared.ErrInvalidInput)
	default:
		return fmt.Errorf("%w: unknown event %q", shared.ErrInvalidInput, e.Kind)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", shared.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// statusMeta drives the subject line and visual accent of demo review mail.
type statusMeta struct {
	Subject string
	Color   string
	Icon    string
}

var statusLookup = map[DemoStatus]statusMeta{
	DemoApproved:         {Subject: "Your demo was approved", Color: "#16a34a", Icon: "✓"},
	DemoRejected:         {Subject: "Your demo was not selected", Color: "#dc2626", Icon: "✗"},
	DemoNeedsImprovement: {Subject: "Your demo needs another pass", Color: "#d97706", Icon: "⚠"},
}
