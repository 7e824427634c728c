package driver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dracory/querybase/shared/constants"
	"github.com/dracory/querybase/shared/types"
)

// Registry maps enabled backend kinds to their drivers.
type Registry struct {
	drivers map[string]Driver
}

// Option configures the built-in drivers of a Registry.
type Option func(*options)

type options struct {
	maxRows int
}

// WithMaxRows caps the number of rows a session returns. Zero means no cap.
func WithMaxRows(n int) Option {
	return func(o *options) { o.maxRows = n }
}

// AllKinds lists every backend kind with a built-in driver.
func AllKinds() []string {
	return []string{
		constants.DriverMySQL,
		constants.DriverPostgres,
		constants.DriverSQLite,
		constants.DriverSQLServer,
		constants.DriverOracle,
	}
}

// DefaultKinds lists the backends enabled when none are configured. sqlite
// is opt-in: a local file path would let a profile read the store itself.
func DefaultKinds() []string {
	return []string{
		constants.DriverMySQL,
		constants.DriverPostgres,
		constants.DriverSQLServer,
		constants.DriverOracle,
	}
}

// NewRegistry registers the built-in drivers for the enabled kinds.
// Unknown names are ignored.
func NewRegistry(enabled []string, opts ...Option) *Registry {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{drivers: make(map[string]Driver, len(enabled))}
	for _, name := range enabled {
		if d := builtin(Normalize(name), o); d != nil {
			r.Register(d)
		}
	}
	return r
}

func builtin(kind string, o options) Driver {
	switch kind {
	case constants.DriverMySQL:
		return &gormDriver{kind: kind, dialector: mysqlDialector, maxRows: o.maxRows}
	case constants.DriverPostgres:
		return &gormDriver{kind: kind, dialector: postgresDialector, maxRows: o.maxRows}
	case constants.DriverSQLite:
		return &gormDriver{kind: kind, dialector: sqliteDialector, maxRows: o.maxRows}
	case constants.DriverSQLServer:
		return &gormDriver{kind: kind, dialector: sqlserverDialector, maxRows: o.maxRows}
	case constants.DriverOracle:
		return &oracleDriver{maxRows: o.maxRows}
	default:
		return nil
	}
}

// Register adds or replaces the driver for its kind.
func (r *Registry) Register(d Driver) {
	r.drivers[Normalize(d.Kind())] = d
}

// IsEnabled returns true if the kind has a registered driver.
func (r *Registry) IsEnabled(name string) bool {
	_, ok := r.drivers[Normalize(name)]
	return ok
}

// List returns a sorted list of enabled kinds.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.drivers))
	for n := range r.drivers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Validate checks that name is a non-empty, enabled kind.
func (r *Registry) Validate(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: kind is required", ErrUnsupportedBackend)
	}
	if !r.IsEnabled(name) {
		return fmt.Errorf("%w: %s", ErrUnsupportedBackend, name)
	}
	return nil
}

// Open dispatches to the driver registered for the profile's kind.
func (r *Registry) Open(ctx context.Context, profile types.ConnectionProfile) (Session, error) {
	d, ok := r.drivers[Normalize(profile.Kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, profile.Kind)
	}
	return d.Open(ctx, profile)
}

// Normalize maps common aliases to canonical kind names.
func Normalize(kind string) string {
	switch k := strings.ToLower(strings.TrimSpace(kind)); k {
	case "pg", "postgresql":
		return constants.DriverPostgres
	case "mariadb":
		return constants.DriverMySQL
	case "sqlite3":
		return constants.DriverSQLite
	case "mssql":
		return constants.DriverSQLServer
	case "ora":
		return constants.DriverOracle
	default:
		return k
	}
}
