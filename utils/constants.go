// File: utils/constants.go
package utils

// SessionKeyPrefix is the prefix used for Redis booking session snapshots.
const SessionKeyPrefix = "bookingSession:"

// SessionLockPrefix is the prefix used for per-session write locks.
const SessionLockPrefix = "bookingLock:"

// SessionEventsSuffix is appended to a session key to form its pub/sub channel.
const SessionEventsSuffix = ":events"

// UserIDKey is the gin context key holding the authenticated user.
const UserIDKey = "userID"
