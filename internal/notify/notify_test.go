package notify

import (
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
	"git.home.luguber.info/inful/assetrev/internal/revision"
)

func TestSummarize(t *testing.T) {
	res := &revision.Result{
		Root:         "/site",
		Unresolved:   2,
		CyclesBroken: 1,
		Outputs: []revision.Output{
			{OriginalPath: "index.html", Ignored: true},
			{OriginalPath: "css/a.css"},
		},
	}
	s := Summarize("run-1", "change", res, 1250*time.Millisecond, nil)
	assert.Equal(t, StatusSuccess, s.Status)
	assert.Equal(t, 2, s.Assets)
	assert.Equal(t, 1, s.Ignored)
	assert.Equal(t, 2, s.Unresolved)
	assert.Equal(t, int64(1250), s.DurationMS)
	assert.Empty(t, s.Error)

	failed := Summarize("run-2", "initial", nil, time.Second, stderrors.New("disk full"))
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "disk full", failed.Error)
	assert.Zero(t, failed.Assets)
}

func TestEncode(t *testing.T) {
	data, err := Encode(&RunSummary{RunID: "run-1", Status: StatusSuccess, Assets: 3})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.InDelta(t, 3, decoded["assets"], 0)
	assert.NotEmpty(t, decoded["timestamp"])
	assert.NotContains(t, decoded, "error")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	require.NoError(t, p.Publish(t.Context(), &RunSummary{}))
	require.NoError(t, p.Close())
}

func TestNATSPublisherValidation(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:4222", "", time.Second)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestNATSPublisherUnreachable(t *testing.T) {
	// Port 1 is reserved and refuses connections.
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "assetrev.runs", 200*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNetwork))
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.True(t, classified.CanRetry())
}
