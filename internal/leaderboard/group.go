package leaderboard

import (
	"fmt"
	"sort"
)

// GroupRange is an inclusive range of original indices.
type GroupRange struct {
	Letter string `json:"letter" yaml:"letter"`
	Start  int    `json:"start" yaml:"start"`
	End    int    `json:"end" yaml:"end"`
}

func (g GroupRange) Size() int {
	return g.End - g.Start + 1
}

func (g GroupRange) Contains(idx int) bool {
	return idx >= g.Start && idx <= g.End
}

func (g GroupRange) Indices() []int {
	out := make([]int, 0, g.Size())
	for i := g.Start; i <= g.End; i++ {
		out = append(out, i)
	}
	return out
}

type Groups []GroupRange

// EvenGroups splits letters.len * size teams into consecutive groups.
func EvenGroups(letters []string, size int) Groups {
	groups := make(Groups, len(letters))
	for i, l := range letters {
		groups[i] = GroupRange{Letter: l, Start: i * size, End: (i+1)*size - 1}
	}
	return groups
}

// Validate checks the ranges are well formed, disjoint and cover 0..roster-1.
func (g Groups) Validate(roster int) error {
	if len(g) == 0 {
		return fmt.Errorf("no groups defined")
	}
	seen := make(map[string]bool)
	sorted := make(Groups, len(g))
	copy(sorted, g)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	next := 0
	for _, r := range sorted {
		if r.Letter == "" {
			return fmt.Errorf("group starting at %d has no letter", r.Start)
		}
		if seen[r.Letter] {
			return fmt.Errorf("group %s defined twice", r.Letter)
		}
		seen[r.Letter] = true
		if r.End < r.Start {
			return fmt.Errorf("group %s ends before it starts", r.Letter)
		}
		if r.Start != next {
			return fmt.Errorf("group %s starts at %d, expected %d", r.Letter, r.Start, next)
		}
		next = r.End + 1
	}
	if next != roster {
		return fmt.Errorf("groups cover %d teams, roster has %d", next, roster)
	}
	return nil
}

func (g Groups) Len() int {
	total := 0
	for _, r := range g {
		total += r.Size()
	}
	return total
}

func (g Groups) Find(letter string) (GroupRange, bool) {
	for _, r := range g {
		if r.Letter == letter {
			return r, true
		}
	}
	return GroupRange{}, false
}

func (g Groups) LetterFor(idx int) (string, bool) {
	for _, r := range g {
		if r.Contains(idx) {
			return r.Letter, true
		}
	}
	return "", false
}

func (g Groups) Letters() []string {
	out := make([]string, len(g))
	for i, r := range g {
		out[i] = r.Letter
	}
	return out
}
