package recordqueue

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wxpipe/rapio/internal/record"
	"github.com/wxpipe/rapio/pkg/rtime"
)

type captureDispatcher struct {
	times []int64
}

func (c *captureDispatcher) HandleRecordEvent(r *record.Record) {
	c.times = append(c.times, r.Time.Sec)
}

func rec(sec int64, idx int) *record.Record {
	return record.New(rtime.FromUnix(sec, 0), []string{"netcdf", "/x"}, []string{"t", "Reflectivity"}, idx)
}

func TestQueuePopsInTimeOrder(t *testing.T) {
	d := &captureDispatcher{}
	q := New(d)

	q.Push(rec(110, 0))
	q.Push(rec(100, 0))
	q.Push(rec(105, 0))
	q.Push(rec(108, 0))

	q.Action()

	require.Equal(t, []int64{100, 105, 108, 110}, d.times)
	require.Equal(t, int64(4), q.PushedRecords())
	require.Equal(t, int64(4), q.PoppedRecords())
}

func TestQueueMergesTwoIndexesByTime(t *testing.T) {
	// Scenario A: two indexes, A at 100,105,110 and B at 102,108,111.
	d := &captureDispatcher{}
	q := New(d)

	for _, sec := range []int64{100, 105, 110} {
		q.Push(rec(sec, 0))
	}
	for _, sec := range []int64{102, 108, 111} {
		q.Push(rec(sec, 1))
	}

	q.Action()

	require.Equal(t, []int64{100, 102, 105, 108, 110, 111}, d.times)
}

func TestQueueMaxItemsPerTick(t *testing.T) {
	d := &captureDispatcher{}
	q := New(d)
	q.MaxItemsPerTick = 2

	q.Push(rec(1, 0))
	q.Push(rec(2, 0))
	q.Push(rec(3, 0))

	remaining := q.Action()
	require.True(t, remaining)
	require.Len(t, d.times, 2)

	remaining = q.Action()
	require.False(t, remaining)
	require.Len(t, d.times, 3)
}
