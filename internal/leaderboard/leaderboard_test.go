package leaderboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout(groups Groups, keys ...string) Layout {
	return Layout{Name: "round1", MatchKeys: keys, Groups: groups}
}

func withTotals(t *testing.T, s Stage, key string, totals []int) Stage {
	t.Helper()
	for i, total := range totals {
		var err error
		s, err = s.SetStat(key, i, FieldPlacement, total)
		require.NoError(t, err)
	}
	return s
}

func TestStatRowWith(t *testing.T) {
	testCases := []struct {
		name     string
		field    Field
		value    any
		expected StatRow
	}{
		{name: "placement", field: FieldPlacement, value: 10, expected: StatRow{Team: "T", Placement: 10, Kills: 4, Total: 14}},
		{name: "kills from string", field: FieldKills, value: "7", expected: StatRow{Team: "T", Kills: 7, Total: 7}},
		{name: "garbage is zero", field: FieldKills, value: "lots", expected: StatRow{Team: "T", Total: 0}},
		{name: "wwcd does not count", field: FieldWWCD, value: 1, expected: StatRow{Team: "T", WWCD: 1, Kills: 4, Total: 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			base := StatRow{Team: "T"}
			if tc.field != FieldKills {
				base = base.With(FieldKills, 4)
			}
			got := base.With(tc.field, tc.value)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, got.Placement+got.Kills, got.Total)
		})
	}
}

func TestParseField(t *testing.T) {
	f, err := ParseField("Booyah")
	require.NoError(t, err)
	assert.Equal(t, FieldWWCD, f)

	_, err = ParseField("damage")
	assert.Error(t, err)
}

func TestStatRowUnmarshalRecomputesTotal(t *testing.T) {
	var r StatRow
	require.NoError(t, json.Unmarshal([]byte(`{"team":"X","booyah":"1","placement":"12","kills":3,"total":999}`), &r))
	assert.Equal(t, StatRow{Team: "X", WWCD: 1, Placement: 12, Kills: 3, Total: 15}, r)

	require.NoError(t, json.Unmarshal([]byte(`{"team":7,"placement":null}`), &r))
	assert.Equal(t, StatRow{}, r)
}

func TestAggregateOrdersByTotal(t *testing.T) {
	s := NewStage(testLayout(EvenGroups([]string{"A"}, 4), "m1"), nil)
	s = withTotals(t, s, "m1", []int{10, 10, 5, 20})

	rows, err := s.GroupStandings("A")
	require.NoError(t, err)

	var order, ranks []int
	for _, r := range rows {
		order = append(order, r.OrigIdx)
		ranks = append(ranks, r.Rank)
	}
	assert.Equal(t, []int{3, 0, 1, 2}, order)
	assert.Equal(t, []int{1, 2, 3, 4}, ranks)
	assert.Equal(t, "Team 4", rows[0].Team)
}

func TestAggregateTiesKeepInputOrder(t *testing.T) {
	s := NewStage(testLayout(EvenGroups([]string{"A"}, 5), "m1", "m2"), nil)
	rows := Aggregate(s, []int{4, 2, 0, 1, 3})

	var order []int
	for _, r := range rows {
		order = append(order, r.OrigIdx)
		assert.Zero(t, r.Total)
	}
	assert.Equal(t, []int{4, 2, 0, 1, 3}, order)
}

func TestAggregateIsAdditive(t *testing.T) {
	groups := EvenGroups([]string{"A"}, 3)
	both := NewStage(testLayout(groups, "m1", "m2"), nil)
	both = withTotals(t, both, "m1", []int{3, 1, 4})
	both = withTotals(t, both, "m2", []int{1, 5, 9})
	both, err := both.SetStat("m2", 0, FieldKills, 6)
	require.NoError(t, err)

	first := both.Clone()
	first.Layout.MatchKeys = []string{"m1"}
	second := both.Clone()
	second.Layout.MatchKeys = []string{"m2"}

	sum := map[int]int{}
	for _, r := range Aggregate(first, []int{0, 1, 2}) {
		sum[r.OrigIdx] += r.Total
	}
	for _, r := range Aggregate(second, []int{0, 1, 2}) {
		sum[r.OrigIdx] += r.Total
	}
	for _, r := range Aggregate(both, []int{0, 1, 2}) {
		assert.Equal(t, sum[r.OrigIdx], r.Total, "team %d", r.OrigIdx)
	}
}

func TestAggregateMissingRowsCountAsZero(t *testing.T) {
	s := NewStage(testLayout(EvenGroups([]string{"A"}, 2), "m1", "m2"), nil)
	s = withTotals(t, s, "m1", []int{4, 2})
	s.Matches["m2"] = s.Matches["m2"][:1]

	rows := Aggregate(s, []int{0, 1, 5})
	require.Len(t, rows, 3)
	assert.Equal(t, 4, rows[0].Total)
	assert.Equal(t, 2, rows[1].Total)
	assert.Equal(t, "Team 6", rows[2].Team)
	assert.Zero(t, rows[2].Total)
}

func TestGroupsValidate(t *testing.T) {
	testCases := []struct {
		name    string
		groups  Groups
		roster  int
		wantErr bool
	}{
		{name: "even", groups: EvenGroups([]string{"A", "B"}, 3), roster: 6},
		{name: "uneven", groups: Groups{{"A", 0, 11}, {"B", 12, 22}}, roster: 23},
		{name: "overlap", groups: Groups{{"A", 0, 5}, {"B", 5, 9}}, roster: 10, wantErr: true},
		{name: "gap", groups: Groups{{"A", 0, 3}, {"B", 5, 9}}, roster: 10, wantErr: true},
		{name: "short", groups: EvenGroups([]string{"A"}, 4), roster: 5, wantErr: true},
		{name: "duplicate letter", groups: Groups{{"A", 0, 1}, {"A", 2, 3}}, roster: 4, wantErr: true},
		{name: "empty", groups: nil, roster: 0, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.groups.Validate(tc.roster)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLetterFor(t *testing.T) {
	g := EvenGroups([]string{"A", "B", "C", "D"}, 18)
	letter, ok := g.LetterFor(40)
	assert.True(t, ok)
	assert.Equal(t, "C", letter)

	_, ok = g.LetterFor(72)
	assert.False(t, ok)
}

func TestQualify(t *testing.T) {
	s := NewStage(testLayout(Groups{{"A", 0, 2}, {"B", 3, 5}, {"C", 6, 6}}, "m1"), nil)
	s = withTotals(t, s, "m1", []int{1, 9, 5, 7, 2, 8, 3})

	testCases := []struct {
		name     string
		order    Order
		expected []int
	}{
		{name: "group order", order: OrderGroup, expected: []int{1, 2, 5, 3, 6}},
		{name: "interleave", order: OrderInterleave, expected: []int{1, 5, 6, 2, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			qs := Qualify(s, 2, tc.order)
			var got []int
			for _, q := range qs {
				got = append(got, q.OrigIdx)
			}
			assert.Equal(t, tc.expected, got)
		})
	}

	qs := Qualify(s, 2, OrderGroup)
	assert.Equal(t, "A", qs[0].Group)
	assert.Equal(t, "C", qs[4].Group)
	assert.Equal(t, []string{"Team 2", "Team 3", "Team 6", "Team 4", "Team 7"}, Names(qs))
}

func TestQualifyOverall(t *testing.T) {
	s := NewStage(testLayout(EvenGroups([]string{"A", "B"}, 2), "m1"), nil)
	s = withTotals(t, s, "m1", []int{1, 2, 4, 3})

	qs := QualifyOverall(s, 2)
	require.Len(t, qs, 2)
	assert.Equal(t, 2, qs[0].OrigIdx)
	assert.Equal(t, "B", qs[0].Group)
	assert.Equal(t, 3, qs[1].OrigIdx)
}

func TestQualifyNegativeTopSelectsNobody(t *testing.T) {
	s := NewStage(testLayout(EvenGroups([]string{"A", "B"}, 2), "m1"), nil)
	s = withTotals(t, s, "m1", []int{1, 2, 4, 3})

	assert.Empty(t, QualifyOverall(s, -1))
	assert.Empty(t, Qualify(s, -1, OrderGroup))
	assert.Empty(t, Qualify(s, -1, OrderInterleave))
}

func TestReseedKeepsStatsAndIsIdempotent(t *testing.T) {
	layout := testLayout(EvenGroups([]string{"A", "B"}, 2), "m1")
	layout.TeamName = "Qualified Team %d"
	s := NewStage(layout, nil)
	assert.Equal(t, "Qualified Team 3", s.TeamName(2))

	s, err := s.SetStat("m1", 1, FieldKills, 6)
	require.NoError(t, err)

	names := []string{"Alpha", "Bravo", "Charlie"}
	once := s.Reseed(names)
	twice := once.Reseed(names)
	assert.Equal(t, once, twice)

	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie", "Qualified Team 4"}, once.Names())
	row, ok := once.Row("m1", 1)
	require.True(t, ok)
	assert.Equal(t, 6, row.Total)

	// The original is untouched.
	assert.Equal(t, "Qualified Team 1", s.TeamName(0))
}

func TestRenameTeam(t *testing.T) {
	s := NewStage(testLayout(EvenGroups([]string{"A"}, 3), "m1", "m2"), nil)
	s, err := s.RenameTeam(1, "  Soul  ")
	require.NoError(t, err)
	for _, key := range s.MatchKeys {
		row, _ := s.Row(key, 1)
		assert.Equal(t, "Soul", row.Team)
	}

	_, err = s.RenameTeam(3, "x")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSetStatErrors(t *testing.T) {
	s := NewStage(testLayout(EvenGroups([]string{"A"}, 2), "m1"), nil)

	_, err := s.SetStat("m9", 0, FieldKills, 1)
	assert.ErrorIs(t, err, ErrUnknownMatchKey)

	_, err = s.SetStat("m1", -1, FieldKills, 1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.GroupStandings("Z")
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestLobbyIndices(t *testing.T) {
	layout := testLayout(EvenGroups([]string{"A", "B", "C", "D"}, 2), "match1", "match2")
	layout.Lobbies = map[string][]string{"match1": {"A", "C"}}
	s := NewStage(layout, nil)

	idx, err := s.LobbyIndices("match1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4, 5}, idx)

	idx, err = s.LobbyIndices("match2")
	require.NoError(t, err)
	assert.Len(t, idx, 8)
}
