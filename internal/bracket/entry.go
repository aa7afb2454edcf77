package bracket

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Unassigned is how an empty slot is written to snapshots.
const Unassigned = "TBD"

// Stored placeholders such as "Winner UB3" or "Loser LB1" name a feeder match
// rather than a team.
var feederLabel = regexp.MustCompile(`^(Winner|Loser) (UB|LB|GF)\d+$`)

// Slot is one side of a match. It either holds a team name or is unresolved,
// in which case it may carry a hint describing where the team will come from.
type Slot struct {
	team string
	hint string
}

func Team(name string) Slot {
	name = strings.TrimSpace(name)
	if name == "" || isPlaceholder(name) {
		return Unresolved(hintFor(name))
	}
	return Slot{team: name}
}

func Unresolved(hint string) Slot {
	return Slot{hint: hint}
}

func (s Slot) Resolved() bool {
	return s.team != ""
}

func (s Slot) Name() string {
	return s.team
}

func (s Slot) Hint() string {
	return s.hint
}

func (s Slot) String() string {
	if s.team != "" {
		return s.team
	}
	if s.hint != "" {
		return s.hint
	}
	return Unassigned
}

func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Anything that is not a plain team name decodes as unresolved.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		*s = Unresolved("")
		return nil
	}
	*s = Team(name)
	return nil
}

func isPlaceholder(name string) bool {
	switch name {
	case Unassigned, "—", "-":
		return true
	}
	return feederLabel.MatchString(name)
}

func hintFor(name string) string {
	if feederLabel.MatchString(name) {
		return name
	}
	return ""
}
