package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cashplan/internal/model"
)

func TestHorizons(t *testing.T) {
	day, month := Horizons(time.Date(2026, 10, 17, 15, 30, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), month)
}

func TestCompare(t *testing.T) {
	curr := model.Snapshot{Assets: d("50000"), Liabilities: d("10000"), Net: d("40000"), ForeignAvailable: d("100")}
	yesterday := model.Snapshot{
		At:     time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC),
		Assets: d("48000"), Liabilities: d("12000"), Net: d("36000"), ForeignAvailable: d("150"),
	}

	c := Compare(curr, &yesterday, nil)
	require.NotNil(t, c.PrevDay)
	assert.Nil(t, c.PrevMonth)
	assert.False(t, c.Empty())
	assert.Equal(t, yesterday.At, c.PrevDay.Since)
	assert.True(t, c.PrevDay.Assets.Equal(d("2000")))
	assert.True(t, c.PrevDay.Liabilities.Equal(d("-2000")))
	assert.True(t, c.PrevDay.Net.Equal(d("4000")))
	assert.True(t, c.PrevDay.ForeignAvailable.Equal(d("-50")))

	assert.True(t, Compare(curr, nil, nil).Empty())
}

func TestSnapshotOf(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	s := SnapshotOf("run-1", at, model.CushionPlan{Assets: d("1"), Liabilities: d("2"), Net: d("-1"), ForeignAvailable: d("3")})
	assert.Equal(t, "run-1", s.ID)
	assert.Equal(t, at, s.At)
	assert.True(t, s.Net.Equal(d("-1")))
}
