package leaderboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankPoints(t *testing.T) {
	rows := []PointsRow{
		{Team: "Team A2", Points: 100, GamesWon: 2, OriginalIndex: 1},
		{Team: "Team A1", Points: 100, GamesWon: 2, OriginalIndex: 0},
		{Team: "Team A3", Points: 300, GamesWon: 1, OriginalIndex: 2},
		{Team: "Team A4", Points: 150, GamesWon: 2, OriginalIndex: 3},
	}
	ranked := RankPoints(rows)

	var teams []string
	for _, r := range ranked {
		teams = append(teams, r.Team)
	}
	assert.Equal(t, []string{"Team A4", "Team A1", "Team A2", "Team A3"}, teams)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "Team A2", rows[0].Team)
}

func TestPointsRowDerivesMissingGames(t *testing.T) {
	var r PointsRow
	require.NoError(t, json.Unmarshal([]byte(`{"team":"X","points":"260"}`), &r))
	assert.Equal(t, 5, r.GamesPlayed)
	assert.Equal(t, 3, r.GamesWon)
	assert.Equal(t, -1, r.OriginalIndex)

	require.NoError(t, json.Unmarshal([]byte(`{"team":"X","points":260,"gamesPlayed":2,"gamesWon":0,"originalIndex":3}`), &r))
	assert.Equal(t, 2, r.GamesPlayed)
	assert.Equal(t, 0, r.GamesWon)
	assert.Equal(t, 3, r.OriginalIndex)
}

func TestPadPointsGroup(t *testing.T) {
	rows := PadPointsGroup("B", []PointsRow{{Team: "Echo", OriginalIndex: -1}}, 3)
	require.Len(t, rows, 3)
	assert.Equal(t, 0, rows[0].OriginalIndex)
	assert.Equal(t, "Team B2", rows[1].Team)
	assert.Equal(t, 2, rows[2].OriginalIndex)

	long := PadPointsGroup("B", NewPointsGroup("B", 5), 3)
	assert.Len(t, long, 5)
}

func TestQualifyPointsInterleave(t *testing.T) {
	groups := map[string][]PointsRow{}
	for _, l := range []string{"A", "B"} {
		groups[l] = NewPointsGroup(l, 3)
	}
	var err error
	groups["A"], err = SetPoints(groups["A"], 2, PointsGamesWon, 3)
	require.NoError(t, err)
	groups["B"], err = SetPoints(groups["B"], 1, PointsGamesWon, "2")
	require.NoError(t, err)

	qs := QualifyPoints(groups, []string{"A", "B"}, 2, OrderInterleave)
	assert.Equal(t, []string{"Team A3", "Team B2", "Team A1", "Team B1"}, Names(qs))

	_, err = SetPoints(groups["A"], 9, PointsTotal, 1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
