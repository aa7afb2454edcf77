package leaderboard

import "fmt"

type Order string

const (
	// all of group A's qualifiers, then group B's, ...
	OrderGroup Order = "group"
	// first place of every group, then second place of every group, ...
	OrderInterleave Order = "interleave"
)

func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case "", OrderGroup:
		return OrderGroup, nil
	case OrderInterleave:
		return o, nil
	}
	return "", fmt.Errorf("unknown qualification order %q", s)
}

type Qualifier struct {
	Team      string `json:"team"`
	Group     string `json:"group"`
	GroupRank int    `json:"groupRank"`
	OrigIdx   int    `json:"origIdx"`
	Total     int    `json:"total"`
}

// Qualify takes the top N of every group of the stage, in group order. A
// group with fewer than N teams sends all of them.
func Qualify(s Stage, top int, order Order) []Qualifier {
	ranked := make([][]Qualifier, 0, len(s.Groups))
	for _, g := range s.Groups {
		rows := Aggregate(s, g.Indices())
		qs := make([]Qualifier, len(rows))
		for i, r := range rows {
			qs[i] = Qualifier{Team: r.Team, Group: g.Letter, GroupRank: r.Rank, OrigIdx: r.OrigIdx, Total: r.Total}
		}
		ranked = append(ranked, qs)
	}
	return pick(ranked, top, order)
}

// QualifyOverall takes the top N of the whole stage regardless of group.
func QualifyOverall(s Stage, top int) []Qualifier {
	rows := s.Overall()
	top = max(top, 0)
	if top < len(rows) {
		rows = rows[:top]
	}
	out := make([]Qualifier, len(rows))
	for i, r := range rows {
		letter, _ := s.Groups.LetterFor(r.OrigIdx)
		out[i] = Qualifier{Team: r.Team, Group: letter, GroupRank: r.Rank, OrigIdx: r.OrigIdx, Total: r.Total}
	}
	return out
}

func pick(ranked [][]Qualifier, top int, order Order) []Qualifier {
	var out []Qualifier
	top = max(top, 0)
	if order == OrderInterleave {
		for place := 0; place < top; place++ {
			for _, group := range ranked {
				if place < len(group) {
					out = append(out, group[place])
				}
			}
		}
		return out
	}
	for _, group := range ranked {
		n := min(top, len(group))
		out = append(out, group[:n]...)
	}
	return out
}

func Names(qs []Qualifier) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Team
	}
	return out
}
