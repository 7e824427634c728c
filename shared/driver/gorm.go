package driver

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dracory/querybase/shared/types"
)

func mysqlDialector(dsn string) gorm.Dialector     { return mysql.Open(dsn) }
func postgresDialector(dsn string) gorm.Dialector  { return postgres.Open(dsn) }
func sqliteDialector(dsn string) gorm.Dialector    { return sqlite.Open(dsn) }
func sqlserverDialector(dsn string) gorm.Dialector { return sqlserver.Open(dsn) }

// gormDriver serves the backends gorm has a dialector for.
type gormDriver struct {
	kind      string
	dialector func(dsn string) gorm.Dialector
	maxRows   int
}

func (d *gormDriver) Kind() string { return d.kind }

func (d *gormDriver) Open(ctx context.Context, p types.ConnectionProfile) (Session, error) {
	dsn, err := DSN(p)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d.dialector(dsn), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, d.kind, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, d.kind, err)
	}
	sqlDB.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(p))
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, d.kind, err)
	}

	return &gormSession{db: db, maxRows: d.maxRows}, nil
}

type gormSession struct {
	db      *gorm.DB
	maxRows int
}

func (s *gormSession) Query(ctx context.Context, sql string) ([]map[string]any, error) {
	rows, err := s.db.WithContext(ctx).Raw(sql).Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	out, err := scanRows(rows, s.maxRows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return out, nil
}

func (s *gormSession) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
