// Package ports defines the interfaces the application layer depends on.
package ports

import (
	"context"
	"errors"

	"users-backend/domain/users"
)

// ErrConditionalCheckFailed is returned by a repository when a conditional
// write guard does not hold at write time. The service layer maps it to a
// domain error for the operation in flight.
var ErrConditionalCheckFailed = errors.New("conditional check failed")

// UserRepository is the single-table user store.
type UserRepository interface {
	// GetByID returns the record with the given id, or nil when absent.
	GetByID(ctx context.Context, id string) (*users.Record, error)

	// List performs an unordered full-table read, optionally capped.
	// A limit of 0 means uncapped.
	List(ctx context.Context, limit int32) (*users.RecordPage, error)

	// FindByEmail scans for an exact lower-cased email match and returns
	// the first record found, or nil. O(table size).
	FindByEmail(ctx context.Context, email string) (*users.Record, error)

	// Create writes a new record guarded on the id not already existing.
	Create(ctx context.Context, rec *users.Record) error

	// Update applies the supplied field changes guarded on the id existing,
	// and returns the record as written.
	Update(ctx context.Context, id string, changes map[string]interface{}) (*users.Record, error)

	// Delete removes the record guarded on the id existing, and returns the
	// record as it was just before deletion.
	Delete(ctx context.Context, id string) (*users.Record, error)

	// Ping performs a minimal read against the table.
	Ping(ctx context.Context) error

	// TableName returns the backing table name.
	TableName() string
}

// AccessTokenValidator resolves a raw access token to a verified claim set.
type AccessTokenValidator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (map[string]string, error)
}
