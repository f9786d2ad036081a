package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PunchClock/internal/model"
)

func newOpenPunch(id int64, identity string, recordedAt time.Time) *model.PunchRecord {
	return &model.PunchRecord{
		ID:         id,
		Kind:       model.PunchKindIn,
		OccurredAt: recordedAt,
		RecordedAt: recordedAt,
		Identity:   identity,
	}
}

func TestMemoryStoreFindMostRecentOpen(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, newOpenPunch(1, "alice", base)))
	require.NoError(t, s.Insert(ctx, newOpenPunch(2, "alice", base.Add(5*time.Minute))))
	require.NoError(t, s.Insert(ctx, newOpenPunch(3, "bob", base.Add(10*time.Minute))))

	got, err := s.FindMostRecentOpen(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)

	// 不限 identity 时取全局最近的一条
	got, err = s.FindMostRecentOpen(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)

	_, err = s.FindMostRecentOpen(ctx, "carol")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreFindMostRecentOpenBreaksTiesByID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Insert(ctx, newOpenPunch(7, "", at)))
	require.NoError(t, s.Insert(ctx, newOpenPunch(9, "", at)))
	require.NoError(t, s.Insert(ctx, newOpenPunch(8, "", at)))

	got, err := s.FindMostRecentOpen(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)
}

func TestMemoryStoreReplaceClosesOpenRecordOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec := newOpenPunch(1, "alice", time.Now().UTC())
	require.NoError(t, s.Insert(ctx, rec))

	outID := int64(2)
	closedAt := time.Now().UTC()
	closed := *rec
	closed.ClosedBy = &outID
	closed.ClosedAt = &closedAt

	require.NoError(t, s.Replace(ctx, rec.ID, &closed))

	// 已关闭的记录不能再次关闭
	otherID := int64(3)
	again := *rec
	again.ClosedBy = &otherID
	assert.ErrorIs(t, s.Replace(ctx, rec.ID, &again), ErrConflict)

	// 关闭后不再被视为 open
	_, err := s.FindMostRecentOpen(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreReplaceUnknownID(t *testing.T) {
	s := NewMemoryStore()
	err := s.Replace(context.Background(), 42, &model.PunchRecord{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStoreListRecentOrdersByRecordedAtDesc(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// 写入顺序与记录时间无关，列表只看 recorded_at
	require.NoError(t, s.Insert(ctx, newOpenPunch(1, "", base)))
	require.NoError(t, s.Insert(ctx, newOpenPunch(2, "", base.Add(5*time.Minute))))
	require.NoError(t, s.Insert(ctx, newOpenPunch(3, "", base.Add(2*time.Minute))))

	got, err := s.ListRecent(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Equal(t, int64(1), got[2].ID)
}

func TestMemoryStoreListRecentAppliesLimitAndFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 5; i++ {
		identity := "alice"
		if i%2 == 0 {
			identity = "bob"
		}
		require.NoError(t, s.Insert(ctx, newOpenPunch(i, identity, base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := s.ListRecent(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, int64(4), got[1].ID)

	got, err = s.ListRecent(ctx, 10, "bob")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(4), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestMemoryStoreListOpenBefore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	stale := newOpenPunch(1, "alice", base)
	fresh := newOpenPunch(2, "alice", base.Add(20*time.Hour))
	require.NoError(t, s.Insert(ctx, stale))
	require.NoError(t, s.Insert(ctx, fresh))

	// 已关闭的不算遗留
	closedID := int64(3)
	closed := newOpenPunch(4, "bob", base)
	closed.ClosedBy = &closedID
	require.NoError(t, s.Insert(ctx, closed))

	got, err := s.ListOpenBefore(ctx, base.Add(16*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}
