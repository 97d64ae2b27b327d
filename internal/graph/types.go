package graph

import "strings"

// Relationship is the typed semantics of a directed edge. Well-known
// relationships are first-class constants; domain-specific ones are carried
// verbatim as custom values so algorithms and persistence never need a type
// parameter per domain.
type Relationship struct {
	name string
}

var (
	Prerequisite    = Relationship{"prerequisite"}
	LeadsTo         = Relationship{"leads_to"}
	RelatesTo       = Relationship{"relates_to"}
	Extends         = Relationship{"extends"}
	Introduces      = Relationship{"introduces"}
	Covers          = Relationship{"covers"}
	VariantOf       = Relationship{"variant_of"}
	ContrastsWith   = Relationship{"contrasts_with"}
	AnswersQuestion = Relationship{"answers_question"}
)

var wellKnown = map[string]Relationship{
	"prerequisite":      Prerequisite,
	"prereq":            Prerequisite,
	"leads_to":          LeadsTo,
	"leadsto":           LeadsTo,
	"relates_to":        RelatesTo,
	"relatesto":         RelatesTo,
	"related":           RelatesTo,
	"extends":           Extends,
	"introduces":        Introduces,
	"covers":            Covers,
	"variant_of":        VariantOf,
	"variantof":         VariantOf,
	"contrasts_with":    ContrastsWith,
	"contrastswith":     ContrastsWith,
	"answers_question":  AnswersQuestion,
	"answersquestion":   AnswersQuestion,
	"answers_questions": AnswersQuestion,
}

// Custom returns a domain-specific relationship not covered by the
// well-known set.
func Custom(name string) Relationship {
	return Relationship{name: strings.ToLower(strings.TrimSpace(name))}
}

// ParseRelationship maps a frontmatter/manual-edge string onto a well-known
// relationship, falling back to a custom one. Accepts the common aliases.
func ParseRelationship(s string) Relationship {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if rel, ok := wellKnown[normalized]; ok {
		return rel
	}
	return Relationship{name: normalized}
}

func (r Relationship) Name() string {
	if r.name == "" {
		return RelatesTo.name
	}
	return r.name
}

func (r Relationship) String() string { return r.Name() }

// IsCustom reports whether the relationship is outside the well-known set.
func (r Relationship) IsCustom() bool {
	_, ok := wellKnown[r.Name()]
	return !ok
}

// DefaultWeight is the edge weight used when the extractor does not supply
// one. It is a pure function of the relationship kind.
func (r Relationship) DefaultWeight() float64 {
	switch r.Name() {
	case Prerequisite.name, LeadsTo.name:
		return 1.0
	case Extends.name, VariantOf.name:
		return 0.9
	case Introduces.name, Covers.name:
		return 0.8
	case RelatesTo.name, ContrastsWith.name:
		return 0.7
	case AnswersQuestion.name:
		return 0.6
	default:
		return 0.5
	}
}

// Origin records where an edge came from, for diagnostics and debugging.
type Origin string

const (
	OriginFrontmatter Origin = "frontmatter"
	OriginContentBody Origin = "content_body"
	OriginManual      Origin = "manual"
	OriginInferred    Origin = "inferred"
)

// NodeKind distinguishes durable domain content from transient user-query
// context attached at runtime.
type NodeKind string

const (
	KindDomain    NodeKind = "domain"
	KindUserQuery NodeKind = "user_query"
)

// KindCustom tags a domain-specific node kind.
func KindCustom(name string) NodeKind {
	return NodeKind(strings.ToLower(strings.TrimSpace(name)))
}

// Node is a vertex in the knowledge graph. Metadata is an opaque payload the
// engine stores and returns but never interprets.
type Node struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Category string                 `json:"category,omitempty"`
	Kind     NodeKind               `json:"kind"`
	Source   string                 `json:"source,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Edge is a directed, typed relationship between two nodes, addressed by
// stable node IDs rather than pointers so serialization stays trivial.
type Edge struct {
	From         string       `json:"from"`
	To           string       `json:"to"`
	Relationship Relationship `json:"relationship"`
	Weight       float64      `json:"weight"`
	Origin       Origin       `json:"origin"`
}

// NewEdge creates an edge with the relationship's default weight and
// frontmatter origin.
func NewEdge(from, to string, rel Relationship) Edge {
	return Edge{
		From:         from,
		To:           to,
		Relationship: rel,
		Weight:       rel.DefaultWeight(),
		Origin:       OriginFrontmatter,
	}
}

// Key identifies an edge for deduplication: no two edges may share the same
// (from, to, relationship) triple.
func (e Edge) Key() string {
	return e.From + "\x00" + e.To + "\x00" + e.Relationship.Name()
}

func (e Edge) String() string {
	return e.From + " -[" + e.Relationship.Name() + "]-> " + e.To
}

// MarshalText serializes the relationship as its name, keeping the cache
// format human readable.
func (r Relationship) MarshalText() ([]byte, error) {
	return []byte(r.Name()), nil
}

func (r *Relationship) UnmarshalText(data []byte) error {
	*r = ParseRelationship(string(data))
	return nil
}
