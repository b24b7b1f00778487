// Package notify renders and delivers transactional email for portal
// events: artist registrations, demo review outcomes, and announcements.
//
// Events are validated against an explicit schema before any provider
// call. Delivery goes through a [Mailer]; the default implementation
// posts to a Resend-compatible HTTP API, and sends fail with a
// configuration error when no API key is configured. Delivery is
// fire-and-forget relative to the business event that triggered it.
package notify
