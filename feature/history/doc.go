// Package history serves the store's past count sessions from the
// back-office session archive. Read-only: the archive is written by the
// back office after sign-off, not by this service.
package history
