// Package store persists connection profiles, parameters, query templates
// and execution results with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dracory/querybase/shared/constants"
	"github.com/dracory/querybase/shared/types"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is returned when a record fails validation.
	ErrInvalid = errors.New("invalid")
)

// Store is the gorm-backed repository.
type Store struct {
	db *gorm.DB
}

// Open opens the store's own database. Supported drivers: sqlite, postgres, mysql.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	switch strings.ToLower(driver) {
	case "postgres", "pg", "postgresql":
		return gorm.Open(postgres.Open(dsn), cfg)
	case "mysql", "mariadb":
		return gorm.Open(mysql.Open(dsn), cfg)
	case "sqlite", "sqlite3":
		return gorm.Open(sqlite.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}

// New wraps db and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(
		&types.ConnectionProfile{},
		&types.Parameter{},
		&types.QueryTemplate{},
		&types.ExecutionResult{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

// SaveConnection inserts a new profile or updates an existing one.
func (s *Store) SaveConnection(ctx context.Context, p *types.ConnectionProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: connection name is required", ErrInvalid)
	}
	if p.Timeout <= 0 {
		p.Timeout = constants.DefaultConnectionTimeout
	}
	return s.db.WithContext(ctx).Save(p).Error
}

// ListConnections returns all profiles ordered by name.
func (s *Store) ListConnections(ctx context.Context) ([]types.ConnectionProfile, error) {
	var out []types.ConnectionProfile
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// GetConnection returns one profile.
func (s *Store) GetConnection(ctx context.Context, id uint) (*types.ConnectionProfile, error) {
	var p types.ConnectionProfile
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "connection", id)
	}
	return &p, nil
}

// SaveParameter inserts a new parameter or updates an existing one.
func (s *Store) SaveParameter(ctx context.Context, p *types.Parameter) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Expression) == "" {
		return fmt.Errorf("%w: parameter name and expression are required", ErrInvalid)
	}
	return s.db.WithContext(ctx).Save(p).Error
}

// ListParameters returns all parameters ordered by name.
func (s *Store) ListParameters(ctx context.Context) ([]types.Parameter, error) {
	var out []types.Parameter
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// GetParameter returns one parameter.
func (s *Store) GetParameter(ctx context.Context, id uint) (*types.Parameter, error) {
	var p types.Parameter
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "parameter", id)
	}
	return &p, nil
}

// SaveQuery stores the template and replaces its parameter bindings.
func (s *Store) SaveQuery(ctx context.Context, q *types.QueryTemplate, parameterIDs []uint) error {
	if strings.TrimSpace(q.Name) == "" || strings.TrimSpace(q.SQLTemplate) == "" {
		return fmt.Errorf("%w: query name and sql template are required", ErrInvalid)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conn types.ConnectionProfile
		if err := tx.First(&conn, q.ConnectionID).Error; err != nil {
			return notFound(err, "connection", q.ConnectionID)
		}

		var params []types.Parameter
		if len(parameterIDs) > 0 {
			if err := tx.Find(&params, parameterIDs).Error; err != nil {
				return err
			}
			if len(params) != len(parameterIDs) {
				return fmt.Errorf("parameter ids %v: %w", parameterIDs, ErrNotFound)
			}
		}

		q.Parameters = nil
		if err := tx.Omit("Connection", "Parameters").Save(q).Error; err != nil {
			return err
		}
		if err := tx.Model(q).Association("Parameters").Replace(params); err != nil {
			return err
		}
		q.Parameters = params
		q.Connection = conn
		return nil
	})
}

// ListQueries returns all templates with their parameters.
func (s *Store) ListQueries(ctx context.Context) ([]types.QueryTemplate, error) {
	var out []types.QueryTemplate
	err := s.db.WithContext(ctx).Preload("Parameters").Order("name").Find(&out).Error
	return out, err
}

// GetQuery returns one template with its connection and parameters loaded.
func (s *Store) GetQuery(ctx context.Context, id uint) (*types.QueryTemplate, error) {
	var q types.QueryTemplate
	err := s.db.WithContext(ctx).
		Preload("Connection").
		Preload("Parameters").
		First(&q, id).Error
	if err != nil {
		return nil, notFound(err, "query", id)
	}
	return &q, nil
}
