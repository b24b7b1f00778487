package notify

import (
	"context"
	"fmt"

	"github.com/backline/backline/internal/shared"
	"github.com/charmbracelet/log"
)

// AdminStore resolves the email addresses of admin-role profiles.
// Implemented by repositories.ProfileRepository.
type AdminStore interface {
	AdminEmails() ([]string, error)
}

// Dispatcher validates events, resolves recipients, and hands rendered
// mail to the configured mailer.
type Dispatcher struct {
	mailer   Mailer
	admins   AdminStore
	from     string
	operator string
	logger   *log.Logger
}

// NewDispatcher wires a dispatcher over the given mailer and admin lookup.
func NewDispatcher(mailer Mailer, admins AdminStore, cfg shared.MailConfig, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Dispatcher{
		mailer:   mailer,
		admins:   admins,
		from:     cfg.From,
		operator: cfg.OperatorEmail,
		logger:   logger,
	}
}

// Dispatch validates and sends one event, returning the provider message id.
//
// Validation failures wrap [shared.ErrInvalidInput] and happen before any
// provider or store call. Delivery failures wrap [shared.ErrMailDelivery].
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) (string, error) {
	if err := event.Validate(); err != nil {
		return "", err
	}

	recipients, err := d.recipients(event)
	if err != nil {
		return "", err
	}

	subject, html, err := render(event)
	if err != nil {
		return "", err
	}

	id, err := d.mailer.Send(ctx, Message{
		From:    d.from,
		To:      recipients,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return "", err
	}

	d.logger.Info("notification sent", "event", event.Kind, "recipients", len(recipients), "email_id", id)
	return id, nil
}

// recipients picks the event's target address, or the admin list with the
// operator address as fallback when no admins exist.
func (d *Dispatcher) recipients(event *Event) ([]string, error) {
	switch event.Kind {
	case EventDemoReviewed:
		return []string{event.Email}, nil
	case EventAnnouncement:
		if event.Email != "" {
			return []string{event.Email}, nil
		}
	}

	admins, err := d.admins.AdminEmails()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve admin recipients: %w", err)
	}
	if len(admins) == 0 {
		if d.operator == "" {
			return nil, fmt.Errorf("%w: mail.operator_email", shared.ErrMissingConfig)
		}
		d.logger.Warn("no admin profiles found, falling back to operator address")
		return []string{d.operator}, nil
	}
	return admins, nil
}
