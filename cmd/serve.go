package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/backline/backline/internal/notify"
	"github.com/backline/backline/internal/repositories"
	"github.com/backline/backline/internal/server"
	"github.com/backline/backline/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve starts the portal HTTP service: OAuth callbacks, sync endpoints,
// notification dispatch, and the health check.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	connections := repositories.NewConnectionRepository(db)
	analytics := repositories.NewAnalyticsRepository(db)
	profiles := repositories.NewProfileRepository(db)

	engine := tasks.NewSyncEngine(r.platforms, connections, analytics, r.logger)
	mailer := notify.NewMailer(r.config.Mail, r.httpClient)
	dispatcher := notify.NewDispatcher(mailer, profiles, r.config.Mail, r.logger)

	router := server.NewBasicRouter()
	router.Use(server.CORS(), server.RequestLogger(r.logger))
	router.Handler(server.NewCallbackHandler(r.platforms, connections, r.logger))
	router.Handler(server.NewSyncHandler(engine, r.logger))
	router.Handler(server.NewNotifyHandler(dispatcher, r.logger))
	router.Handler(server.NewHealthHandler(db))

	httpServer := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	r.logger.Info("listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
