// Package query is the read/write surface over a published graph snapshot.
// Results are plain structs so transports and UIs never touch graph
// internals.
package query

// NodeView is the external shape of a graph node.
type NodeView struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Category string                 `json:"category,omitempty"`
	Kind     string                 `json:"kind"`
	Source   string                 `json:"source,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// EdgeView is the external shape of a graph edge.
type EdgeView struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	Relationship string  `json:"relationship"`
	Weight       float64 `json:"weight"`
	Origin       string  `json:"origin"`
}

type NeighborhoodView struct {
	Center    NodeView       `json:"center"`
	Nodes     []NodeView     `json:"nodes"`
	Edges     []EdgeView     `json:"edges"`
	Distances map[string]int `json:"distances"`
}

// RelatedView pairs a node one hop away with the edge connecting it.
type RelatedView struct {
	Node NodeView `json:"node"`
	Edge EdgeView `json:"edge"`
}

type PathView struct {
	Found       bool       `json:"found"`
	Nodes       []NodeView `json:"nodes"`
	Edges       []EdgeView `json:"edges"`
	TotalWeight float64    `json:"total_weight"`
}

type PrerequisitesView struct {
	Target  NodeView   `json:"target"`
	Ordered []NodeView `json:"ordered"`
}

type CentralityView struct {
	Node  NodeView `json:"node"`
	In    int      `json:"in"`
	Out   int      `json:"out"`
	Score float64  `json:"score"`
}

type BridgeView struct {
	Node      NodeView `json:"node"`
	LinksA    int      `json:"links_a"`
	LinksB    int      `json:"links_b"`
	Neighbors []string `json:"neighbors"`
}

type FindingView struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	NodeID   string `json:"node_id"`
	Message  string `json:"message"`
}

type ReportView struct {
	OK       bool          `json:"ok"`
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Findings []FindingView `json:"findings"`
}

type StatsView struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}
