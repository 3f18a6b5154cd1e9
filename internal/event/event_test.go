package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "TransferStarted", typ: TransferStarted},
		{want: "WorkerStarted", typ: WorkerStarted},
		{want: "WorkerCompleted", typ: WorkerCompleted},
		{want: "WorkerFailed", typ: WorkerFailed},
		{want: "VerifyStarted", typ: VerifyStarted},
		{want: "VerifyOK", typ: VerifyOK},
		{want: "VerifyFailed", typ: VerifyFailed},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(999).String())
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(-1).String())
}

func TestEventZeroValue(t *testing.T) {
	var e Event
	assert.Equal(t, Type(0), e.Type)
	assert.True(t, e.Timestamp.IsZero())
	assert.Zero(t, e.Worker)
	assert.Zero(t, e.Size)
	assert.Zero(t, e.Total)
	require.NoError(t, e.Error)
}

func TestEventFields(t *testing.T) {
	now := time.Now()
	e := Event{
		Type:      WorkerCompleted,
		Timestamp: now,
		Worker:    3,
		SrcOffset: 12288,
		DstOffset: 4096,
		Size:      4096,
	}
	assert.Equal(t, WorkerCompleted, e.Type)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, 3, e.Worker)
	assert.Equal(t, int64(12288), e.SrcOffset)
	assert.Equal(t, int64(4096), e.DstOffset)
	assert.Equal(t, int64(4096), e.Size)
}
