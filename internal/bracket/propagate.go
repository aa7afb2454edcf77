package bracket

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"
)

var ErrUnknownMatch = errors.New("unknown match")

// Propagator owns the dependency graph of a wiring. Vertices are matches and
// an edge runs from a match to every match that takes one of its outcomes.
// The graph never changes after construction, so one Propagator can be
// shared between boards of the same format.
type Propagator struct {
	wiring Wiring
	g      graph.Graph[string, MatchRef]
	order  []string
	routes map[string][]Route
}

func refHash(r MatchRef) string {
	return r.String()
}

func NewPropagator(w Wiring) (*Propagator, error) {
	p := &Propagator{
		wiring: w,
		g:      graph.New(refHash, graph.Directed(), graph.PreventCycles()),
		routes: make(map[string][]Route),
	}

	template := w.Template()
	for _, ref := range template.Refs() {
		if err := p.g.AddVertex(ref); err != nil {
			return nil, fmt.Errorf("add match %s: %w", ref, err)
		}
	}

	fed := make(map[Target]MatchRef)
	champions := 0
	for _, r := range w.Routes {
		if _, ok := template.Match(r.From); !ok {
			return nil, fmt.Errorf("route from %s: %w", r.From, ErrUnknownMatch)
		}
		p.routes[r.From.String()] = append(p.routes[r.From.String()], r)

		if r.Champion {
			champions++
			if champions > 1 {
				return nil, fmt.Errorf("route from %s: more than one champion route", r.From)
			}
			continue
		}
		if _, ok := template.Match(r.To.Ref); !ok {
			return nil, fmt.Errorf("route to %s: %w", r.To.Ref, ErrUnknownMatch)
		}
		if prev, taken := fed[r.To]; taken {
			return nil, fmt.Errorf("slot %s.%s is fed by both %s and %s", r.To.Ref, r.To.Side, prev, r.From)
		}
		fed[r.To] = r.From

		err := p.g.AddEdge(r.From.String(), r.To.Ref.String())
		if errors.Is(err, graph.ErrEdgeAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("route %s -> %s: %w", r.From, r.To.Ref, err)
		}
	}

	order, err := graph.StableTopologicalSort(p.g, func(a, b string) bool {
		ra, _ := p.g.Vertex(a)
		rb, _ := p.g.Vertex(b)
		return ra.less(rb)
	})
	if err != nil {
		return nil, fmt.Errorf("order matches: %w", err)
	}
	p.order = order
	return p, nil
}

func (p *Propagator) Wiring() Wiring {
	return p.wiring
}

func (p *Propagator) Template() Board {
	return p.wiring.Template()
}

// Propagate re-derives every slot that depends, directly or transitively, on
// the match at from. Scores are never touched, only team slots and the
// champion. The input board is not modified.
func (p *Propagator) Propagate(board Board, from MatchRef) (Board, error) {
	out := board.Clone()
	if _, ok := out.Match(from); !ok {
		return board, fmt.Errorf("%s: %w", from, ErrUnknownMatch)
	}

	affected := make(map[string]bool)
	err := graph.BFS(p.g, from.String(), func(k string) bool {
		affected[k] = true
		return false
	})
	if err != nil {
		return board, fmt.Errorf("walk from %s: %w", from, err)
	}

	for _, k := range p.order {
		if affected[k] {
			p.apply(&out, k)
		}
	}
	return out, nil
}

// PropagateAll re-derives the whole board from its scores.
func (p *Propagator) PropagateAll(board Board) Board {
	out := board.Clone()
	for _, k := range p.order {
		p.apply(&out, k)
	}
	return out
}

// SetScore records a result and propagates it.
func (p *Propagator) SetScore(board Board, ref MatchRef, scoreA, scoreB int) (Board, error) {
	out := board.Clone()
	m, ok := out.Match(ref)
	if !ok {
		return board, fmt.Errorf("%s: %w", ref, ErrUnknownMatch)
	}
	m.SetScores(scoreA, scoreB)
	return p.Propagate(out, ref)
}

func (p *Propagator) apply(board *Board, key string) {
	ref, err := p.g.Vertex(key)
	if err != nil {
		return
	}
	m, ok := board.Match(ref)
	if !ok {
		return
	}
	winner, loser := m.Outcome()

	for _, r := range p.routes[key] {
		s := winner
		if r.Outcome == Loser {
			s = loser
		}
		if !s.Resolved() {
			s = Unresolved(r.Hint)
		}

		if r.Champion {
			board.Bracket.Winner = s
			continue
		}
		target, ok := board.Match(r.To.Ref)
		if !ok {
			continue
		}
		*target.slot(r.To.Side) = s
	}
}
