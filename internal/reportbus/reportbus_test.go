package reportbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/docprint/internal/printdoc"
	"github.com/book-expert/docprint/internal/reportbus"
)

type fakeStream struct {
	err      error
	subjects []string
	payloads [][]byte
}

func (s *fakeStream) Publish(
	_ context.Context,
	subject string,
	payload []byte,
	_ ...jetstream.PublishOpt,
) (*jetstream.PubAck, error) {
	if s.err != nil {
		return nil, s.err
	}

	s.subjects = append(s.subjects, subject)
	s.payloads = append(s.payloads, payload)

	return &jetstream.PubAck{Stream: "DOCPRINT_RUNS", Sequence: uint64(len(s.payloads))}, nil
}

type fakeCreator struct {
	err    error
	config jetstream.StreamConfig
}

func (c *fakeCreator) CreateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	c.config = cfg

	return nil, c.err
}

func sampleReport() *printdoc.Report {
	return &printdoc.Report{
		Aborted: nil,
		RunID:   "run-42",
		Outcomes: []printdoc.Outcome{
			{
				Err:       nil,
				ConfigErr: &printdoc.PrintError{
					Cause: errors.New("denied"),
					Kind:  printdoc.KindPrinterConfigFailed,
					Path:  "a.pdf",
					Stage: printdoc.StageOrientationDetermined,
				},
				Path:        "a.pdf",
				JobID:       "job-a",
				Format:      printdoc.FormatPDF,
				Orientation: printdoc.Landscape,
				Stage:       printdoc.StageClosed,
			},
			{
				Err: &printdoc.PrintError{
					Cause: nil,
					Kind:  printdoc.KindFileNotFound,
					Path:  "b.docx",
					Stage: printdoc.StageNone,
				},
				ConfigErr:   nil,
				Path:        "b.docx",
				JobID:       "job-b",
				Format:      printdoc.FormatWord,
				Orientation: printdoc.OrientationUnknown,
				Stage:       printdoc.StageNone,
			},
		},
	}
}

func TestNewPublisher_RequiresSubject(t *testing.T) {
	t.Parallel()

	_, err := reportbus.NewPublisher(&fakeStream{err: nil, subjects: nil, payloads: nil}, reportbus.Settings{
		Subject:  "",
		UserID:   "",
		TenantID: "",
	})
	require.ErrorIs(t, err, reportbus.ErrNoSubject)
}

func TestPublishReport(t *testing.T) {
	t.Parallel()

	stream := &fakeStream{err: nil, subjects: nil, payloads: nil}
	publisher, err := reportbus.NewPublisher(stream, reportbus.Settings{
		Subject:  "docprint.run.completed",
		UserID:   "front-desk",
		TenantID: "branch-7",
	})
	require.NoError(t, err)

	require.NoError(t, publisher.PublishReport(context.Background(), sampleReport()))
	require.Equal(t, []string{"docprint.run.completed"}, stream.subjects)

	var event reportbus.RunCompletedEvent
	require.NoError(t, json.Unmarshal(stream.payloads[0], &event))

	assert.Equal(t, "run-42", event.Header.WorkflowID)
	assert.Empty(t, event.Aborted)
	assert.Equal(t, "front-desk", event.Header.UserID)
	assert.Equal(t, "branch-7", event.Header.TenantID)
	assert.NotEmpty(t, event.Header.EventID)
	assert.False(t, event.Header.Timestamp.IsZero())
	assert.Equal(t, []string{"a.pdf"}, event.Succeeded)
	assert.Equal(t, []string{"b.docx"}, event.Failed)
	require.Len(t, event.Outcomes, 2)

	assert.Equal(t, "landscape", event.Outcomes[0].Orientation)
	assert.Equal(t, "closed", event.Outcomes[0].Stage)
	assert.Empty(t, event.Outcomes[0].ErrorKind)
	assert.Contains(t, event.Outcomes[0].ConfigError, "denied")

	assert.Equal(t, "FILE_NOT_FOUND", event.Outcomes[1].ErrorKind)
	assert.Equal(t, "word", event.Outcomes[1].Format)
	assert.Equal(t, "b.docx: file not found", event.Outcomes[1].Error)
}

func TestPublishReport_PublishFailure(t *testing.T) {
	t.Parallel()

	natsErr := errors.New("no responders available for request")
	publisher, err := reportbus.NewPublisher(
		&fakeStream{err: natsErr, subjects: nil, payloads: nil},
		reportbus.Settings{Subject: "docprint.run.completed", UserID: "", TenantID: ""},
	)
	require.NoError(t, err)

	publishErr := publisher.PublishReport(context.Background(), sampleReport())
	require.ErrorIs(t, publishErr, natsErr)
}

func TestEnsureStream(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		createErr error
		name      string
		wantErr   bool
	}{
		{name: "Created", createErr: nil, wantErr: false},
		{name: "Already exists", createErr: jetstream.ErrStreamNameAlreadyInUse, wantErr: false},
		{name: "Server error", createErr: errors.New("insufficient resources"), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			creator := &fakeCreator{err: tc.createErr, config: jetstream.StreamConfig{}}
			ensureErr := reportbus.EnsureStream(context.Background(), creator, "DOCPRINT_RUNS", "docprint.run.completed")

			if tc.wantErr {
				require.Error(t, ensureErr)
			} else {
				require.NoError(t, ensureErr)
			}

			assert.Equal(t, "DOCPRINT_RUNS", creator.config.Name)
			assert.Equal(t, []string{"docprint.run.completed"}, creator.config.Subjects)
			assert.Equal(t, jetstream.LimitsPolicy, creator.config.Retention)
		})
	}
}
