// Package server provides HTTP routing, middleware, and the portal's
// integration endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with
// method filtering.
//
// # Endpoints
//
// [CallbackHandler] completes the OAuth authorization-code flow for one
// streaming platform and upserts the resulting connection record.
//
// [SyncHandler] refreshes credentials when needed and pulls read-only
// analytics from a platform through the sync engine.
//
// [NotifyHandler] accepts event payloads and hands them to the notification
// dispatcher.
//
// [HealthHandler] reports whether the store answers a ping.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib
// handler interface and adds routes, allowing handlers to register multiple
// routes to encapsulate route definitions within the implementation.
package server
