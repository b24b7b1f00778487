// Package web implements the label's marketing site and artist portal frontend.
//
// # Implementation Plan
//
// # Architecture
//
// The site is server-rendered with html/template, with the portal's dynamic
// pieces talking to the JSON endpoints in internal/server. Public pages and
// the authenticated portal share one layout:
//
//  1. Public pages: home, about, artists, releases, videos, news
//  2. Artist dashboard: connected platforms, top-songs ranking, sync trigger
//  3. Admin screens: artist roster, demo review queue, announcements
//
// Core Components
//
//   - HTTP Server: net/http server with html/template rendering
//   - Endpoint Integration: reuses the handlers in internal/server for
//     callbacks, syncs, and notification dispatch
//   - Session Management: cookie-based sessions carrying the portal user id
//
// Routes
//
//	GET  /                       → Home page
//	GET  /artists                → Artist roster
//	GET  /portal                 → Artist dashboard (requires auth)
//	GET  /portal/connect/{p}     → OAuth initiation for platform p
//	GET  /callback/{p}           → OAuth completion (internal/server)
//	POST /sync/{p}               → Analytics refresh (internal/server)
//	GET  /admin/demos            → Demo review queue
//	POST /notify                 → Review outcome mail (internal/server)
//
// Templates
//
//   - base.html: layout with navigation and auth status
//   - dashboard.html: connection cards plus the top-songs table
//   - demos.html: review queue with approve/reject/needs-improvement actions
//
// # State Management
//
//   - Session cookies: portal user id and role
//   - platform_connections rows: OAuth state across requests
//   - analytics_tracks rows: rendered top-songs ranking
//
// Authentication Flow
//
//  1. User signs in, session stores the user id
//  2. Connect buttons redirect to the platform authorization URL with the
//     user id as the state parameter
//  3. The callback endpoint upserts the connection and redirects back to
//     the dashboard
//  4. Expired connections surface a reconnect banner after a failed sync
//
// Implementation Tasks
//
//  1. HTTP server setup with route registration
//  2. Template structure for public pages and the portal
//  3. Session middleware carrying user id and role
//  4. Dashboard handler joining connections and analytics rows
//  5. Demo review handlers posting to the notification endpoint
//  6. Error handling and validation
//
// # Testing Strategy
//
// Use httptest:
//   - Mock the sync engine and dispatcher interfaces from internal/server
//   - Validate rendered templates and redirects
package web
