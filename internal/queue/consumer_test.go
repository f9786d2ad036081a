package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PunchClock/internal/model"
	"PunchClock/internal/store"
	"PunchClock/pkg/logger"
	"PunchClock/pkg/snowflake"
)

func TestMain(m *testing.M) {
	logger.Init()
	if err := snowflake.Init(2, 1); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestAppendAuditEvent(t *testing.T) {
	audit := store.NewMemoryAuditStore()
	SetAuditStore(audit)
	defer SetAuditStore(nil)

	msg := &model.PunchEventMessage{
		MessageID:  "punch_evt_1",
		EventKey:   model.EventKeyPunchRecorded,
		PunchID:    42,
		Identity:   "alice",
		Kind:       model.PunchKindIn,
		OccurredAt: "2024-03-01T10:00:00Z",
	}

	require.NoError(t, appendAuditEvent(context.Background(), msg))

	events := audit.Events()
	require.Len(t, events, 1)
	assert.NotZero(t, events[0].ID)
	assert.Equal(t, model.EventKeyPunchRecorded, events[0].EventKey)
	assert.Equal(t, int64(42), events[0].PunchID)
	assert.Equal(t, "alice", events[0].Identity)
	assert.True(t, events[0].OccurredAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.False(t, events[0].RecordedAt.IsZero())
}

func TestAppendAuditEventFallsBackToNowOnBadTimestamp(t *testing.T) {
	audit := store.NewMemoryAuditStore()
	SetAuditStore(audit)
	defer SetAuditStore(nil)

	msg := &model.PunchEventMessage{
		MessageID:  "punch_evt_2",
		EventKey:   model.EventKeyPunchStale,
		PunchID:    7,
		Kind:       model.PunchKindIn,
		OccurredAt: "yesterday-ish",
	}

	before := time.Now().UTC()
	require.NoError(t, appendAuditEvent(context.Background(), msg))

	events := audit.Events()
	require.Len(t, events, 1)
	assert.False(t, events[0].OccurredAt.Before(before))
}

func TestAppendAuditEventWithoutStore(t *testing.T) {
	SetAuditStore(nil)

	err := appendAuditEvent(context.Background(), &model.PunchEventMessage{
		MessageID: "punch_evt_3",
		EventKey:  model.EventKeyPunchClosed,
	})
	assert.Error(t, err)
}
