// Package notify delivers execution outcomes to operators.
package notify

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/dracory/querybase/shared/constants"
)

// Event describes one finished execution attempt.
type Event struct {
	QueryID       uint      `json:"query_id"`
	QueryName     string    `json:"query_name"`
	Status        string    `json:"status"`
	ExecutionTime float64   `json:"duration"`
	ResultCount   int       `json:"result_count"`
	ErrorMessage  string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"execution_time"`
}

// Succeeded reports whether the event is a success.
func (e Event) Succeeded() bool { return e.Status == constants.StatusSuccess }

// Notifier sends an event somewhere.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Multi fans an event out to every notifier and collects all errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var result *multierror.Error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Trigger forwards events to Notifier depending on their status.
type Trigger struct {
	Notifier  Notifier
	OnSuccess bool
	OnFailure bool
}

func (t Trigger) Notify(ctx context.Context, event Event) error {
	if event.Succeeded() && !t.OnSuccess {
		return nil
	}
	if !event.Succeeded() && !t.OnFailure {
		return nil
	}
	return t.Notifier.Notify(ctx, event)
}
