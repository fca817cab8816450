package store

import "errors"

// Generic sentinels used by the entity layer.
var (
	// ErrNotFound is returned when an entity cannot be found.
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when creating an entity whose key is taken.
	ErrAlreadyExists = errors.New("resource already exists")
)

// Per-entity sentinels.
var (
	// ErrGameNotFound is returned when a game cannot be found by ID.
	// Cancelled games are deleted outright, so a cancelled game's ID yields this too.
	ErrGameNotFound = errors.New("game not found")
	// ErrUserNotFound is returned when a user cannot be found by ID or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when attempting to create a user with an existing ID.
	ErrUserExists = errors.New("user already exists")
	// ErrEmailExists is returned when attempting to create a user with an email that's already in use.
	ErrEmailExists = errors.New("email already in use")
	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session expired")
	// ErrOptionNotFound is returned when a game option has not been configured.
	ErrOptionNotFound = errors.New("game option not found")
)
