package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dracory/querybase/shared/constants"
	"github.com/dracory/querybase/shared/driver"
	"github.com/dracory/querybase/shared/notify"
	"github.com/dracory/querybase/shared/render"
	"github.com/dracory/querybase/shared/store"
	"github.com/dracory/querybase/shared/types"
)

const (
	stagePending    = "pending"
	stageRendering  = "rendering"
	stageConnecting = "connecting"
	stageExecuting  = "executing"
)

// Execute performs a single attempt synchronously. Every attempt that finds
// its query persists exactly one result, successful or not.
//
// The returned error is nil on success. ErrQueryNotFound means nothing was
// recorded.
func (e *Executor) Execute(ctx context.Context, queryID uint, attempt int) (Summary, error) {
	log := e.logger.With(
		slog.Uint64("query_id", uint64(queryID)),
		slog.Int("attempt", attempt),
	)
	log.Debug("execution stage", slog.String("stage", stagePending))

	q, err := e.store.GetQuery(ctx, queryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = fmt.Errorf("%w: %d", ErrQueryNotFound, queryID)
		}
		log.Error("cannot load query", slog.String("error", err.Error()))
		return Summary{QueryID: queryID, Status: constants.StatusFailed, Error: err.Error()}, err
	}
	log = log.With(slog.String("query_name", q.Name))

	started := e.now()

	log.Debug("execution stage", slog.String("stage", stageRendering))
	sql := render.Render(q.SQLTemplate, render.Resolve(q.Parameters, e.eval))
	log.Debug("rendered sql", slog.String("sql", sql))

	log.Debug("execution stage", slog.String("stage", stageConnecting), slog.String("kind", q.Connection.Kind))
	var rows []map[string]any
	err = driver.With(ctx, e.drivers, q.Connection, func(sess driver.Session) error {
		log.Debug("execution stage", slog.String("stage", stageExecuting))
		var qerr error
		rows, qerr = sess.Query(ctx, sql)
		return qerr
	})

	var data string
	if err == nil {
		data, err = encodeRows(rows)
	}

	result := &types.ExecutionResult{
		QueryTemplateID: q.ID,
		QueryName:       q.Name,
		RenderedSQL:     sql,
		ExecutionTime:   e.now().Sub(started).Seconds(),
		Attempt:         attempt,
	}
	if err != nil {
		result.Status = constants.StatusFailed
		result.ErrorMessage = err.Error()
	} else {
		result.Status = constants.StatusSuccess
		result.ResultData = &data
	}

	if serr := e.store.CreateResult(ctx, result); serr != nil {
		serr = fmt.Errorf("%w: %w", ErrResultNotRecorded, serr)
		log.Error("cannot record result", slog.String("error", serr.Error()))
		if err == nil {
			err = serr
		} else {
			err = errors.Join(err, serr)
		}
	}

	summary := Summary{
		ResultID:      result.ID,
		QueryID:       q.ID,
		QueryName:     q.Name,
		Status:        result.Status,
		ExecutionTime: result.ExecutionTime,
		ResultCount:   len(rows),
		Error:         result.ErrorMessage,
		CreatedAt:     result.CreatedAt,
	}

	if err != nil {
		log.Warn("execution stage",
			slog.String("stage", constants.StatusFailed),
			slog.Float64("execution_time", summary.ExecutionTime),
			slog.String("error", err.Error()),
		)
		return summary, err
	}

	log.Info("execution stage",
		slog.String("stage", constants.StatusSuccess),
		slog.Float64("execution_time", summary.ExecutionTime),
		slog.Int("result_count", summary.ResultCount),
	)
	e.notify(ctx, summary)
	return summary, nil
}

// notify is best-effort: delivery errors are logged and dropped.
func (e *Executor) notify(ctx context.Context, s Summary) {
	if e.notifier == nil {
		return
	}
	event := notify.Event{
		QueryID:       s.QueryID,
		QueryName:     s.QueryName,
		Status:        s.Status,
		ExecutionTime: s.ExecutionTime,
		ResultCount:   s.ResultCount,
		ErrorMessage:  s.Error,
		CreatedAt:     s.CreatedAt,
	}
	if err := e.notifier.Notify(ctx, event); err != nil {
		e.logger.Warn("notification failed",
			slog.Uint64("query_id", uint64(s.QueryID)),
			slog.String("error", err.Error()),
		)
	}
}
