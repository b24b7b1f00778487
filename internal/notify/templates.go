package notify

import (
	"fmt"
	"html/template"
	"strings"
)

// emailTemplate is the shared shell for all outgoing mail. The accent color
// and icon come from the status lookup for review mail and are neutral
// otherwise.
var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Helvetica, Arial, sans-serif; background: #f4f4f5; padding: 24px;">
    <div style="max-width: 560px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
      <h1 style="font-size: 18px; color: {{.Color}};">{{.Icon}} {{.Heading}}</h1>
      {{if .Greeting}}<p>{{.Greeting}}</p>{{end}}
      <p>{{.Body}}</p>
      {{if .Feedback}}<blockquote style="border-left: 3px solid {{.Color}}; margin: 16px 0; padding: 4px 12px; color: #52525b;">{{.Feedback}}</blockquote>{{end}}
      <p style="color: #a1a1aa; font-size: 12px; margin-top: 32px;">Backline &middot; artist portal</p>
    </div>
  </body>
</html>`))

type emailData struct {
	Color    string
	Icon     string
	Heading  string
	Greeting string
	Body     string
	Feedback string
}

const neutralAccent = "#3f3f46"

// render produces the subject and HTML body for an event.
func render(event *Event) (subject, html string, err error) {
	var data emailData

	switch event.Kind {
	case EventArtistRegistered:
		subject = fmt.Sprintf("New artist registration: %s", event.DisplayName)
		data = emailData{
			Color:   neutralAccent,
			Icon:    "♪",
			Heading: "New artist registration",
			Body:    fmt.Sprintf("%s (%s) just registered on the portal and is waiting for review.", event.DisplayName, event.Email),
		}
	case EventDemoReviewed:
		meta := statusLookup[event.Status]
		subject = meta.Subject
		data = emailData{
			Color:    meta.Color,
			Icon:     meta.Icon,
			Heading:  meta.Subject,
			Greeting: fmt.Sprintf("Hi %s,", event.DisplayName),
			Body:     fmt.Sprintf("Your demo %q has been reviewed.", event.TrackName),
			Feedback: event.Feedback,
		}
	case EventAnnouncement:
		subject = event.Subject
		data = emailData{
			Color:   neutralAccent,
			Icon:    "♪",
			Heading: event.Subject,
			Body:    event.Body,
		}
	default:
		return "", "", fmt.Errorf("no template for event %q", event.Kind)
	}

	var buf strings.Builder
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render email: %w", err)
	}
	return subject, buf.String(), nil
}
