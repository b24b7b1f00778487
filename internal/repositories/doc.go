// Package repositories provides the persistence layer over the SQLite store.
//
//   - [ConnectionRepository] : platform connections, upserted on (user, platform)
//   - [AnalyticsRepository] : normalized track stats, upserted on (user, platform, track)
//   - [ProfileRepository] : portal profiles and the admin-role recipient lookup
//
// Connection and analytics writes are last-write-wins; concurrent syncs or
// callbacks for the same (user, platform) pair are not serialized beyond the
// upsert itself.
package repositories
