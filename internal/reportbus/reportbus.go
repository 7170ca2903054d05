// Package reportbus publishes the result of a print run to NATS JetStream so other
// services can follow what was printed.
package reportbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/events"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/book-expert/docprint/internal/printdoc"
)

// ErrNoSubject is returned when a Publisher is created without a subject.
var ErrNoSubject = errors.New("report subject is empty")

// StreamPublisher is the part of jetstream.JetStream used to publish reports.
type StreamPublisher interface {
	Publish(
		ctx context.Context,
		subject string,
		payload []byte,
		opts ...jetstream.PublishOpt,
	) (*jetstream.PubAck, error)
}

// Settings identify where and on whose behalf reports are published.
type Settings struct {
	Subject  string
	UserID   string
	TenantID string
}

// OutcomeRecord is the wire form of one printed path.
type OutcomeRecord struct {
	Path        string `json:"path"`
	JobID       string `json:"jobId"`
	Format      string `json:"format"`
	Orientation string `json:"orientation"`
	Stage       string `json:"stage"`
	ErrorKind   string `json:"errorKind,omitempty"`
	Error       string `json:"error,omitempty"`
	ConfigError string `json:"configError,omitempty"`
}

// RunCompletedEvent is published once at the end of every run.
type RunCompletedEvent struct {
	Header    events.EventHeader `json:"header"`
	Aborted   string             `json:"aborted,omitempty"`
	Succeeded []string           `json:"succeeded"`
	Failed    []string           `json:"failed"`
	Outcomes  []OutcomeRecord    `json:"outcomes"`
}

// Publisher sends RunCompletedEvents to a JetStream subject.
type Publisher struct {
	stream   StreamPublisher
	settings Settings
}

// NewPublisher creates a Publisher writing to settings.Subject.
func NewPublisher(stream StreamPublisher, settings Settings) (*Publisher, error) {
	if settings.Subject == "" {
		return nil, ErrNoSubject
	}

	return &Publisher{stream: stream, settings: settings}, nil
}

// NewRunCompletedEvent builds the event describing report.
func NewRunCompletedEvent(report *printdoc.Report, settings Settings) RunCompletedEvent {
	records := make([]OutcomeRecord, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		records = append(records, newOutcomeRecord(outcome))
	}

	aborted := ""
	if report.Aborted != nil {
		aborted = report.Aborted.Error()
	}

	return RunCompletedEvent{
		Header: events.EventHeader{
			WorkflowID: report.RunID,
			UserID:     settings.UserID,
			TenantID:   settings.TenantID,
			EventID:    uuid.New().String(),
			Timestamp:  time.Now(),
		},
		Aborted:   aborted,
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
		Outcomes:  records,
	}
}

func newOutcomeRecord(outcome printdoc.Outcome) OutcomeRecord {
	record := OutcomeRecord{
		Path:        outcome.Path,
		JobID:       outcome.JobID,
		Format:      outcome.Format.String(),
		Orientation: outcome.Orientation.String(),
		Stage:       outcome.Stage.String(),
		ErrorKind:   string(printdoc.KindOf(outcome.Err)),
		Error:       "",
		ConfigError: "",
	}

	if outcome.Err != nil {
		record.Error = outcome.Err.Error()
	}

	if outcome.ConfigErr != nil {
		record.ConfigError = outcome.ConfigErr.Error()
	}

	return record
}

// PublishReport marshals report into a RunCompletedEvent and publishes it.
func (p *Publisher) PublishReport(ctx context.Context, report *printdoc.Report) error {
	event := NewRunCompletedEvent(report, p.settings)

	eventJSON, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal RunCompletedEvent: %w", marshalErr)
	}

	_, pubErr := p.stream.Publish(ctx, p.settings.Subject, eventJSON)
	if pubErr != nil {
		return fmt.Errorf("failed to publish RunCompletedEvent: %w", pubErr)
	}

	return nil
}

// Connection is an open NATS connection with its JetStream context.
type Connection struct {
	conn      *nats.Conn
	JetStream jetstream.JetStream
}

// Connect dials url and creates a JetStream context on the connection.
func Connect(url string, timeout time.Duration) (*Connection, error) {
	conn, connErr := nats.Connect(url, nats.Name("docprint"), nats.Timeout(timeout))
	if connErr != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", connErr)
	}

	jetStream, jsErr := jetstream.New(conn)
	if jsErr != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", jsErr)
	}

	return &Connection{conn: conn, JetStream: jetStream}, nil
}

// ConnectedURL returns the server the connection is attached to.
func (c *Connection) ConnectedURL() string { return c.conn.ConnectedUrl() }

// Close drains pending publishes and closes the connection.
func (c *Connection) Close() error {
	if drainErr := c.conn.Drain(); drainErr != nil {
		c.conn.Close()

		return fmt.Errorf("failed to drain NATS connection: %w", drainErr)
	}

	return nil
}

// StreamCreator is the part of jetstream.JetStream used to declare the report stream.
type StreamCreator interface {
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// EnsureStream declares the stream holding run reports. An existing stream is kept.
func EnsureStream(ctx context.Context, creator StreamCreator, name, subject string) error {
	_, streamErr := creator.CreateStream(ctx, *newStreamConfig(name, subject))
	if streamErr != nil && !errors.Is(streamErr, jetstream.ErrStreamNameAlreadyInUse) {
		return fmt.Errorf("failed to create report stream %q: %w", name, streamErr)
	}

	return nil
}

func newStreamConfig(name, subject string) *jetstream.StreamConfig {
	return &jetstream.StreamConfig{
		Name:                   name,
		Description:            "docprint run reports",
		Subjects:               []string{subject},
		Retention:              jetstream.LimitsPolicy,
		MaxConsumers:           -1,
		MaxMsgs:                -1,
		MaxBytes:               -1,
		Discard:                jetstream.DiscardOld,
		DiscardNewPerSubject:   false,
		MaxAge:                 reportRetention,
		MaxMsgsPerSubject:      -1,
		MaxMsgSize:             -1,
		Storage:                jetstream.FileStorage,
		Replicas:               1,
		NoAck:                  false,
		Duplicates:             0,
		Placement:              nil,
		Mirror:                 nil,
		Sources:                nil,
		Sealed:                 false,
		DenyDelete:             false,
		DenyPurge:              false,
		AllowRollup:            false,
		Compression:            jetstream.NoCompression,
		FirstSeq:               0,
		SubjectTransform:       nil,
		RePublish:              nil,
		AllowDirect:            false,
		MirrorDirect:           false,
		ConsumerLimits:         jetstream.StreamConsumerLimits{},
		Metadata:               nil,
		Template:               "",
		AllowMsgTTL:            false,
		SubjectDeleteMarkerTTL: 0,
	}
}

const reportRetention = 30 * 24 * time.Hour
