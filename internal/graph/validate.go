package graph

import (
	"fmt"
	"sort"
)

// Severity classifies a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one structural problem discovered by Validate.
type Finding struct {
	Severity Severity
	Code     string
	NodeID   string
	Message  string
}

// Report aggregates validation findings over a whole graph.
type Report struct {
	Findings []Finding
}

func (r Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

func (r Report) Warnings() int {
	return len(r.Findings) - r.Errors()
}

// OK reports whether the graph passed validation with no errors. Warnings do
// not fail validation.
func (r Report) OK() bool { return r.Errors() == 0 }

// Validate checks graph-wide structural integrity: edges must reference
// existing nodes (error), duplicate edges must not exist (error), and nodes
// with no edges at all are flagged as orphans (warning). Findings come back
// sorted by node ID so reports are stable across runs.
func Validate(g *Graph) Report {
	var findings []Finding

	seen := make(map[string]bool)
	for _, e := range g.Edges() {
		if !g.ContainsNode(e.From) {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Code:     "dangling_reference",
				NodeID:   e.From,
				Message:  fmt.Sprintf("edge %s references unknown node %q", e, e.From),
			})
		}
		if !g.ContainsNode(e.To) {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Code:     "dangling_reference",
				NodeID:   e.To,
				Message:  fmt.Sprintf("edge %s references unknown node %q", e, e.To),
			})
		}
		if seen[e.Key()] {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Code:     "duplicate_edge",
				NodeID:   e.From,
				Message:  fmt.Sprintf("duplicate edge %s", e),
			})
		}
		seen[e.Key()] = true
	}

	for _, id := range g.NodeIDs() {
		in, out := g.Degree(id)
		if in == 0 && out == 0 {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Code:     "orphan_node",
				NodeID:   id,
				Message:  fmt.Sprintf("node %q has no edges", id),
			})
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].NodeID == findings[j].NodeID {
			return findings[i].Code < findings[j].Code
		}
		return findings[i].NodeID < findings[j].NodeID
	})
	return Report{Findings: findings}
}
