// Package driver opens sessions against the database named by a
// connection profile. There is one Driver per backend kind.
package driver

import (
	"context"
	"errors"

	"github.com/dracory/querybase/shared/types"
)

var (
	// ErrUnsupportedBackend is returned for unknown or disabled kinds.
	ErrUnsupportedBackend = errors.New("unsupported backend")
	// ErrConnect wraps network and authentication failures.
	ErrConnect = errors.New("connect")
	// ErrQuery wraps statement execution failures.
	ErrQuery = errors.New("query")
)

// Session is an open connection to one target database.
type Session interface {
	// Query runs the statement and returns one map per row.
	Query(ctx context.Context, sql string) ([]map[string]any, error)
	Close() error
}

// Driver opens sessions for one backend kind.
type Driver interface {
	Kind() string
	Open(ctx context.Context, profile types.ConnectionProfile) (Session, error)
}

// Opener is satisfied by *Registry.
type Opener interface {
	Open(ctx context.Context, profile types.ConnectionProfile) (Session, error)
}

// With opens a session, runs fn and always closes the session afterwards.
func With(ctx context.Context, opener Opener, profile types.ConnectionProfile, fn func(Session) error) error {
	sess, err := opener.Open(ctx, profile)
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(sess)
}
