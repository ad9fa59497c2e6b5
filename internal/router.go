package internal

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrInvalidRule = errors.New("invalid rule")
	ErrDiverged    = errors.New("rules did not settle")
)

// Rule recomputes its Out fields whenever one of its In fields changes.
type Rule struct {
	Name string
	In   []string
	Out  []string
	Exec func(*Flush) error

	// longest chain of producer rules feeding this one
	depth int
}

func (r *Rule) Depth() int { return r.depth }

// Router is the route table: it maps changed fields to pending rules and
// drains them producers first.
type Router struct {
	rules   []*Rule
	byInput map[string][]*Rule

	heap *RuleHeap
}

func NewRouter(rules []Rule) (*Router, error) {
	r := &Router{
		rules:   make([]*Rule, 0, len(rules)),
		byInput: make(map[string][]*Rule),
	}

	for i, rule := range rules {
		if rule.Exec == nil {
			return nil, fmt.Errorf("%w: rule %d has no exec function", ErrInvalidRule, i)
		}
		if len(rule.In) == 0 {
			return nil, fmt.Errorf("%w: rule %d has no inputs", ErrInvalidRule, i)
		}
		if rule.Name == "" {
			rule.Name = fmt.Sprintf("rule#%d", i)
		}

		c := &Rule{
			Name:  rule.Name,
			In:    slices.Clone(rule.In),
			Out:   slices.Clone(rule.Out),
			Exec:  rule.Exec,
			depth: -1,
		}
		r.rules = append(r.rules, c)

		for _, in := range c.In {
			if !slices.Contains(r.byInput[in], c) {
				r.byInput[in] = append(r.byInput[in], c)
			}
		}
	}

	maxDepth := 0
	for _, rule := range r.rules {
		maxDepth = max(maxDepth, r.depthOf(rule, map[*Rule]bool{}))
	}
	r.heap = NewHeap(maxDepth)

	return r, nil
}

func (r *Router) Rules() []*Rule { return slices.Clone(r.rules) }

// depthOf computes 1 + the depth of the deepest producer of any input, 0 without producers.
// Producers already on the visiting path are cycle back edges and are skipped.
func (r *Router) depthOf(rule *Rule, visiting map[*Rule]bool) int {
	if rule.depth >= 0 {
		return rule.depth
	}

	visiting[rule] = true
	depth := 0
	for _, in := range rule.In {
		for _, producer := range r.producers(in) {
			if producer == rule || visiting[producer] {
				continue
			}
			depth = max(depth, r.depthOf(producer, visiting)+1)
		}
	}
	delete(visiting, rule)

	rule.depth = depth
	return depth
}

func (r *Router) producers(name string) []*Rule {
	var out []*Rule
	for _, rule := range r.rules {
		if slices.ContainsFunc(rule.Out, func(o string) bool { return overlaps(o, name) }) {
			out = append(out, rule)
		}
	}
	return out
}

// overlaps reports whether a and b name the same field or one is nested in the other.
func overlaps(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+".") || strings.HasPrefix(b, a+".")
}

// Collect queues every rule reading one of the changed fields.
func (r *Router) Collect(changed []string) {
	for _, name := range changed {
		for _, rule := range r.byInput[name] {
			r.heap.Insert(rule)
		}
	}
}

func (r *Router) Pending() int { return r.heap.Len() }

// Reset drops the pending batch.
func (r *Router) Reset() { r.heap.Clear() }

// Drain executes pending rules until none is left. More than limit executions
// (limit > 0) fail with ErrDiverged. An exec error aborts the drain and clears the batch.
func (r *Router) Drain(limit int, exec func(*Rule) error) (int, error) {
	runs := 0
	for rule := r.heap.Pop(); rule != nil; rule = r.heap.Pop() {
		if limit > 0 && runs >= limit {
			r.heap.Clear()
			return runs, fmt.Errorf("%w after %d executions, last rule %q", ErrDiverged, runs, rule.Name)
		}
		runs++

		if err := exec(rule); err != nil {
			r.heap.Clear()
			return runs, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
	}

	return runs, nil
}
