package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/mfateev/autodev-temporal-go/internal/models"
	"github.com/mfateev/autodev-temporal-go/internal/workflow"
)

// PollResult is one delivered poll cycle. Exactly one of the three
// shapes arrives: events+status, Completed, or a fatal Err; transient
// query failures never leave the poller.
type PollResult struct {
	Events []models.RunEvent
	Status workflow.RunStatus
	// Completed is set when the workflow is no longer queryable
	// because it finished (or was never found).
	Completed bool
	Err       error
}

// Poller follows one run by querying its event log and status.
type Poller struct {
	client     client.Client
	workflowID string
	interval   time.Duration
}

// NewPoller creates a poller for the given workflow.
func NewPoller(c client.Client, workflowID string, interval time.Duration) *Poller {
	return &Poller{client: c, workflowID: workflowID, interval: interval}
}

// Poll performs a single poll cycle. The second return is false when
// the cycle hit a transient condition and produced nothing to deliver.
func (p *Poller) Poll(ctx context.Context) (PollResult, bool) {
	var result PollResult

	if err := p.query(ctx, workflow.QueryGetRunEvents, &result.Events); err != nil {
		return p.resolve(err)
	}
	if err := p.query(ctx, workflow.QueryGetRunStatus, &result.Status); err != nil {
		return p.resolve(err)
	}
	return result, true
}

// query runs one workflow query and decodes the answer into out.
func (p *Poller) query(ctx context.Context, name string, out interface{}) error {
	resp, err := p.client.QueryWorkflow(ctx, p.workflowID, "", name)
	if err != nil {
		return err
	}
	return resp.Get(out)
}

// resolve turns a query error into a poll result: completion when the
// workflow is gone, nothing when the condition is transient, a fatal
// result otherwise.
func (p *Poller) resolve(err error) (PollResult, bool) {
	switch {
	case isWorkflowGone(err):
		return PollResult{Completed: true}, true
	case isTransientQueryError(err):
		return PollResult{}, false
	default:
		return PollResult{Err: err}, true
	}
}

// isWorkflowGone reports whether the workflow finished or never
// existed, both of which end polling.
func isWorkflowGone(err error) bool {
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	return strings.Contains(err.Error(), "workflow execution already completed")
}

// isTransientQueryError reports conditions worth retrying on the next
// tick, like querying before the first workflow task completed.
func isTransientQueryError(err error) bool {
	var notReady *serviceerror.WorkflowNotReady
	var queryFailed *serviceerror.QueryFailed
	return errors.As(err, &notReady) || errors.As(err, &queryFailed)
}

// RunPolling polls in a loop, delivering results to the channel.
// Stops when the context is cancelled.
func (p *Poller) RunPolling(ctx context.Context, ch chan<- PollResult) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, ok := p.Poll(ctx)
			if !ok {
				continue
			}
			select {
			case ch <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}
