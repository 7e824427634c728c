package driver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dracory/querybase/shared/constants"
	"github.com/dracory/querybase/shared/types"
)

// oracleDriver goes through database/sql because gorm has no maintained
// Oracle dialector.
type oracleDriver struct {
	maxRows int
}

func (d *oracleDriver) Kind() string { return constants.DriverOracle }

func (d *oracleDriver) Open(ctx context.Context, p types.ConnectionProfile) (Session, error) {
	db, err := sql.Open("oracle", OracleDSN(p))
	if err != nil {
		return nil, fmt.Errorf("%w: oracle: %w", ErrConnect, err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(p))
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: oracle: %w", ErrConnect, err)
	}
	return &sqlSession{db: db, maxRows: d.maxRows}, nil
}

type sqlSession struct {
	db      *sql.DB
	maxRows int
}

func (s *sqlSession) Query(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
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

func (s *sqlSession) Close() error { return s.db.Close() }
