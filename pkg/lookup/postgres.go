package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/govform/licensekit/pkg/eligibility"
)

// Config configures the PostgreSQL-backed registry connection.
type Config struct {
	ConnectionString string        `env:"LICENSEKIT_DB_URL,required"`                      // ConnectionString is the connection string to the registry database.
	MaxOpenConns     int32         `env:"LICENSEKIT_DB_MAX_OPEN_CONNS" envDefault:"10"`    // MaxOpenConns is the maximum number of open connections.
	RetryAttempts    int           `env:"LICENSEKIT_DB_RETRY_ATTEMPTS" envDefault:"3"`     // RetryAttempts is the number of retry attempts to connect.
	RetryInterval    time.Duration `env:"LICENSEKIT_DB_RETRY_INTERVAL" envDefault:"5s"`    // RetryInterval is the interval between retry attempts.
	ConnectTimeout   time.Duration `env:"LICENSEKIT_DB_CONNECT_TIMEOUT" envDefault:"30s"`  // ConnectTimeout bounds the whole connect-with-retries sequence.
}

// Connect establishes a pgx connection pool with retry logic. Attempt n
// waits n times the retry interval so restarting replicas do not hammer the
// database.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	connConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	connConfig.MaxConns = cfg.MaxOpenConns

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	for i := 0; i < cfg.RetryAttempts; i++ {
		pool, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err == nil {
			if err := pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, ErrFailedToOpenDBConnection
}

// Store is the PostgreSQL-backed registry.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreClock overrides the time source, mainly for tests.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a registry over an existing connection pool. The caller
// owns the pool's lifecycle.
func NewStore(pool *pgxpool.Pool, opts ...StoreOption) *Store {
	s := &Store{pool: pool, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check implements eligibility.Registry.
func (s *Store) Check(ctx context.Context, personID uuid.UUID) (eligibility.ExistingLicenseCheck, error) {
	licenses, err := s.heldLicenses(ctx, personID)
	if err != nil {
		return eligibility.ExistingLicenseCheck{}, errors.Join(ErrLookupFailed, err)
	}
	permit, err := s.latestPermit(ctx, personID)
	if err != nil {
		return eligibility.ExistingLicenseCheck{}, errors.Join(ErrLookupFailed, err)
	}
	return buildCheck(licenses, permit, s.now()), nil
}

func (s *Store) heldLicenses(ctx context.Context, personID uuid.UUID) ([]eligibility.HeldLicense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, number, issued_at, expires_at
		 FROM driver_licenses
		 WHERE person_id = $1
		 ORDER BY category`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []eligibility.HeldLicense
	for rows.Next() {
		var lic eligibility.HeldLicense
		var category string
		if err := rows.Scan(&category, &lic.Number, &lic.IssuedAt, &lic.ExpiresAt); err != nil {
			return nil, err
		}
		lic.Category = eligibility.Category(category)
		licenses = append(licenses, lic)
	}
	return licenses, rows.Err()
}

// latestPermit returns the most recently expiring permit, or nil when the
// person has none on record.
func (s *Store) latestPermit(ctx context.Context, personID uuid.UUID) (*eligibility.HeldPermit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT number, categories, issued_at, expires_at
		 FROM learner_permits
		 WHERE person_id = $1
		 ORDER BY expires_at DESC
		 LIMIT 1`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var permit eligibility.HeldPermit
	var categories []string
	if err := rows.Scan(&permit.Number, &categories, &permit.IssuedAt, &permit.ExpiresAt); err != nil {
		return nil, err
	}
	for _, c := range categories {
		permit.Categories = append(permit.Categories, eligibility.Category(c))
	}
	return &permit, nil
}
