package lookup

import "errors"

var (
	// ErrNilRegistry is returned when a wrapper is given no inner registry.
	ErrNilRegistry = errors.New("inner registry cannot be nil")

	// ErrNilRedisClient is returned when the cache is given no Redis client.
	ErrNilRedisClient = errors.New("redis client cannot be nil")

	// ErrFailedToParseDBConfig is returned when the connection string cannot
	// be parsed.
	ErrFailedToParseDBConfig = errors.New("failed to parse db config")

	// ErrFailedToOpenDBConnection is returned when the database stays
	// unreachable through all retry attempts.
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")

	// ErrFailedToApplyMigrations is returned when the embedded migrations
	// cannot be applied.
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")

	// ErrLookupFailed wraps query errors from the backing store.
	ErrLookupFailed = errors.New("registry lookup failed")
)
