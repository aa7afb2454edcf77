package leaderboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncFinalsKeepsEnteredStats(t *testing.T) {
	prev := []FinalsRow{
		{OrigIdx: 4, Stats: NewRow("Old Name").With(FieldKills, 9)},
		{OrigIdx: 7, Stats: NewRow("Gone").With(FieldKills, 3)},
	}
	qs := []Qualifier{
		{Team: "New Name", Group: "A", OrigIdx: 4},
		{Team: "Fresh", Group: "B", OrigIdx: 2},
	}

	rows := SyncFinals(prev, qs)
	require.Len(t, rows, 2)
	assert.Equal(t, "New Name", rows[0].Stats.Team)
	assert.Equal(t, 9, rows[0].Stats.Total)
	assert.Equal(t, "A", rows[0].Group)
	assert.Equal(t, 2, rows[1].OrigIdx)
	assert.Zero(t, rows[1].Stats.Total)
}

func TestFinalsStandings(t *testing.T) {
	rows := []FinalsRow{
		{OrigIdx: 0, Stats: NewRow("a").With(FieldPlacement, 2)},
		{OrigIdx: 1, Stats: NewRow("b").With(FieldPlacement, 8)},
		{OrigIdx: 2, Stats: NewRow("c").With(FieldPlacement, 2)},
	}
	out := FinalsStandings(rows)
	assert.Equal(t, []int{1, 0, 2}, []int{out[0].OrigIdx, out[1].OrigIdx, out[2].OrigIdx})

	rows, err := SetFinalsStat(rows, 2, FieldKills, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, rows[2].Stats.Total)

	_, err = SetFinalsStat(rows, 42, FieldKills, 1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestFinalsRowJSON(t *testing.T) {
	row := FinalsRow{OrigIdx: 3, Stats: NewRow("Z").With(FieldKills, 2)}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"origIdx":3,"team":"Z","wwcd":0,"placement":0,"kills":2,"total":2}`, string(data))

	var back FinalsRow
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, row, back)

	require.NoError(t, json.Unmarshal([]byte(`{"team":"no index"}`), &back))
	assert.Equal(t, -1, back.OrigIdx)
}

func TestNormalizeFinals(t *testing.T) {
	rows := []FinalsRow{{OrigIdx: -1}, {OrigIdx: 0}, {OrigIdx: 1}, {OrigIdx: 2}}
	out := NormalizeFinals(rows, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "Team 1", out[0].Stats.Team)
	assert.Equal(t, 1, out[1].OrigIdx)

	dup := []FinalsRow{
		{OrigIdx: 3, Stats: StatRow{Team: "Alpha", Kills: 5, Total: 5}},
		{OrigIdx: 3, Stats: StatRow{Team: "Alpha", Kills: 7, Total: 7}},
		{OrigIdx: 4, Stats: StatRow{Team: "Bravo"}},
	}
	out = NormalizeFinals(dup, 16)
	require.Len(t, out, 2)
	assert.Equal(t, 5, out[0].Stats.Kills)
	assert.Equal(t, 4, out[1].OrigIdx)

	standings := FinalsStandings(out)
	require.Len(t, standings, 2)
	assert.Equal(t, 3, standings[0].OrigIdx)
}
