// Package report delivers non-fatal failures (a data source that could not
// be read, an audit write that failed) to the log and, when configured, to
// Rollbar.
package report

import (
	"context"
	"log"

	"github.com/rollbar/rollbar-go"
)

// Reporter receives failures that must not interrupt the caller.
type Reporter interface {
	Report(ctx context.Context, component string, err error)
}

// Log writes failures to a standard logger.
type Log struct {
	Logger *log.Logger
}

// Report implements Reporter.
func (l Log) Report(ctx context.Context, component string, err error) {
	if l.Logger == nil {
		log.Printf("[%s] %v", component, err)
		return
	}
	l.Logger.Printf("[%s] %v", component, err)
}

// Rollbar forwards failures to Rollbar.
type Rollbar struct {
	client *rollbar.Client
}

// NewRollbar creates a Rollbar reporter for the given access token.
func NewRollbar(token, environment, codeVersion, serverHost string) *Rollbar {
	c := rollbar.New(token, environment, codeVersion, serverHost, "")
	return &Rollbar{client: c}
}

// Report implements Reporter.
func (r *Rollbar) Report(ctx context.Context, component string, err error) {
	extras := map[string]interface{}{"component": component}
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		extras["request_id"] = id
	}
	r.client.ErrorWithExtras(rollbar.ERR, err, extras)
}

// Close flushes queued items.
func (r *Rollbar) Close() {
	r.client.Wait()
}

// Multi fans a failure out to several reporters.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(ctx context.Context, component string, err error) {
	for _, r := range m {
		r.Report(ctx, component, err)
	}
}

type ctxKey string

// RequestIDKey carries the request ID into reported failures.
const RequestIDKey ctxKey = "request_id"
