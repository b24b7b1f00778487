package main

import (
	"context"
	"fmt"

	"github.com/backline/backline/internal/notify"
	"github.com/backline/backline/internal/repositories"
	"github.com/urfave/cli/v3"
)

// NotifyTest sends a test announcement through the configured mailer.
func (r *Runner) NotifyTest(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.ValidateMail(); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	mailer := notify.NewMailer(r.config.Mail, r.httpClient)
	profiles := repositories.NewProfileRepository(db)
	dispatcher := notify.NewDispatcher(mailer, profiles, r.config.Mail, r.logger)

	event := &notify.Event{
		Kind:    notify.EventAnnouncement,
		Email:   cmd.String("to"),
		Subject: "Backline notification test",
		Body:    "The notification pipeline is configured correctly.",
	}

	id, err := dispatcher.Dispatch(ctx, event)
	if err != nil {
		return fmt.Errorf("test notification failed: %w", err)
	}

	r.writePlain("✓ Test notification sent, provider id: %s\n", id)
	return nil
}
