package bracket

import (
	"fmt"
	"math"
)

type Pairing string

const (
	// 0v1, 2v3, ...
	PairSequential Pairing = "sequential"
	// 0v7, 1v6, ... best seed meets worst
	PairFold Pairing = "fold"
	// power of two seeding that keeps the top seeds apart until the last rounds
	PairStandard Pairing = "standard"
)

func ParsePairing(s string) (Pairing, error) {
	switch p := Pairing(s); p {
	case "", PairSequential:
		return PairSequential, nil
	case PairFold, PairStandard:
		return p, nil
	}
	return "", fmt.Errorf("unknown pairing %q", s)
}

// Pairs returns the seed indices that meet in each first round match of a
// bracket with the given number of slots.
func Pairs(p Pairing, slots int) [][2]int {
	switch p {
	case PairFold:
		pairs := make([][2]int, 0, slots/2)
		for i := 0; i < slots/2; i++ {
			pairs = append(pairs, [2]int{i, slots - 1 - i})
		}
		return pairs
	case PairStandard:
		return generateRound1Pairs(calcBracketSize(slots))
	default:
		pairs := make([][2]int, 0, slots/2)
		for i := 0; i+1 < slots; i += 2 {
			pairs = append(pairs, [2]int{i, i + 1})
		}
		return pairs
	}
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

func generateRound1Pairs(bracketSize int) [][2]int {
	if bracketSize == 0 {
		return [][2]int{}
	}

	rounds := []int{0}
	for len(rounds) < bracketSize {
		var nextRound []int
		currentCount := len(rounds) * 2

		for _, seed := range rounds {
			nextRound = append(nextRound, seed)
			nextRound = append(nextRound, (currentCount-1)-seed)
		}
		rounds = nextRound
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(rounds); i += 2 {
		pairs = append(pairs, [2]int{rounds[i], rounds[i+1]})
	}

	return pairs
}

// Seed writes teams into the first column of a fresh board. Seeds without a
// team stay unresolved. The result depends only on the template, the team
// list and the pairing.
func Seed(template Board, teams []string, p Pairing) Board {
	out := template.Clone()
	if len(out.Bracket.Columns) == 0 {
		return out
	}
	first := out.Bracket.Columns[0].Matches
	pairs := Pairs(p, len(first)*2)

	for i := range first {
		if i >= len(pairs) {
			break
		}
		first[i].TeamA = seedSlot(teams, pairs[i][0])
		first[i].TeamB = seedSlot(teams, pairs[i][1])
	}
	return out
}

func seedSlot(teams []string, i int) Slot {
	if i < len(teams) {
		return Team(teams[i])
	}
	return Unresolved("")
}
