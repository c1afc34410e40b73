// Package store defines the persistence contract for cards.
// Implementations live under internal/platform (postgres and sqlite) and
// must scope every read and write to the owner passed in.
package store
