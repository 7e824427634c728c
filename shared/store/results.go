package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dracory/querybase/shared/constants"
	"github.com/dracory/querybase/shared/types"
)

// ResultFilter narrows ListResults. Zero values mean "any".
type ResultFilter struct {
	QueryID  uint
	Status   string
	Search   string // matched against the query name and error message
	Page     int    // 1-based
	PageSize int
}

// Normalized applies the paging defaults and caps.
func (f ResultFilter) Normalized() ResultFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = constants.DefaultPageSize
	}
	if f.PageSize > constants.MaxPageSize {
		f.PageSize = constants.MaxPageSize
	}
	return f
}

// CreateResult inserts an execution result. Results are never updated.
func (s *Store) CreateResult(ctx context.Context, r *types.ExecutionResult) error {
	if r.ID != 0 {
		return fmt.Errorf("%w: execution results are immutable", ErrInvalid)
	}
	if r.Status != constants.StatusSuccess && r.Status != constants.StatusFailed {
		return fmt.Errorf("%w: status %q", ErrInvalid, r.Status)
	}
	return s.db.WithContext(ctx).Create(r).Error
}

// GetResult returns one result.
func (s *Store) GetResult(ctx context.Context, id uint) (*types.ExecutionResult, error) {
	var r types.ExecutionResult
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, notFound(err, "result", id)
	}
	return &r, nil
}

// ListResults returns a page of results, newest first, and the total count.
func (s *Store) ListResults(ctx context.Context, f ResultFilter) ([]types.ExecutionResult, int64, error) {
	f = f.Normalized()

	q := s.db.WithContext(ctx).Model(&types.ExecutionResult{})
	if f.QueryID != 0 {
		q = q.Where("query_template_id = ?", f.QueryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("query_name LIKE ? OR error_message LIKE ?", like, like)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []types.ExecutionResult
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// LatestResults returns the newest result of every query template that has one.
func (s *Store) LatestResults(ctx context.Context) ([]types.ExecutionResult, error) {
	latest := s.db.WithContext(ctx).
		Model(&types.ExecutionResult{}).
		Select("MAX(id)").
		Group("query_template_id")

	var out []types.ExecutionResult
	err := s.db.WithContext(ctx).
		Where("id IN (?)", latest).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}
