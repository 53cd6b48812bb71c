// Package notify publishes run summaries so downstream systems (cache purgers, deploy
// hooks) can react to a finished revision run.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
	"git.home.luguber.info/inful/assetrev/internal/logfields"
	"git.home.luguber.info/inful/assetrev/internal/revision"
)

// Run statuses carried by RunSummary.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// RunSummary is the event published after every run.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	Reason       string    `json:"reason,omitempty"`
	Status       string    `json:"status"`
	Root         string    `json:"root,omitempty"`
	Assets       int       `json:"assets"`
	Ignored      int       `json:"ignored"`
	Unresolved   int       `json:"unresolved_references"`
	CyclesBroken int       `json:"cycles_broken"`
	DurationMS   int64     `json:"duration_ms"`
	ManifestHash string    `json:"manifest_hash,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Summarize builds the summary of one run. res may be nil when the run failed.
func Summarize(runID, reason string, res *revision.Result, elapsed time.Duration, runErr error) *RunSummary {
	s := &RunSummary{
		RunID:      runID,
		Timestamp:  time.Now().UTC(),
		Reason:     reason,
		Status:     StatusSuccess,
		DurationMS: elapsed.Milliseconds(),
	}
	if runErr != nil {
		s.Status = StatusFailed
		s.Error = runErr.Error()
	}
	if res != nil {
		s.Root = res.Root
		s.Unresolved = res.Unresolved
		s.CyclesBroken = res.CyclesBroken
		for _, out := range res.Outputs {
			s.Assets++
			if out.Ignored {
				s.Ignored++
			}
		}
	}
	return s
}

// Publisher delivers run summaries.
type Publisher interface {
	Publish(ctx context.Context, summary *RunSummary) error
	Close() error
}

// NopPublisher drops every summary; used when notifications are not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *RunSummary) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// NATSPublisher publishes summaries as JSON on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
}

// NewNATSPublisher connects to url. Publish waits up to timeout for the server to
// acknowledge the flush.
func NewNATSPublisher(url, subject string, timeout time.Duration) (*NATSPublisher, error) {
	if subject == "" {
		return nil, errors.ValidationError("notification subject is required").Build()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	conn, err := nats.Connect(url, nats.Name("assetrev"), nats.Timeout(timeout))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).
			Retryable().
			Build()
	}
	slog.Info("NATS notifications enabled", slog.String("url", url), logfields.Subject(subject))
	return &NATSPublisher{conn: conn, subject: subject, timeout: timeout}, nil
}

// Publish sends one summary and flushes the connection.
func (p *NATSPublisher) Publish(ctx context.Context, summary *RunSummary) error {
	data, err := Encode(summary)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to publish run summary").
			WithContext("subject", p.subject).
			Retryable().
			Build()
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to flush run summary").
			WithContext("subject", p.subject).
			Retryable().
			Build()
	}
	slog.Debug("Published run summary", logfields.RunID(summary.RunID), logfields.Subject(p.subject))
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

// Encode serializes a summary as JSON.
func Encode(summary *RunSummary) ([]byte, error) {
	if summary.Timestamp.IsZero() {
		summary.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to marshal run summary").Build()
	}
	return data, nil
}
