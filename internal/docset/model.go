// Package docset defines the document-set domain model for Lore.
//
// It holds the records produced by the reasoning stages of a documentation
// run: the abstractions identified in a codebase, the relationships between
// them, and the architectural insights derived from structural analysis.
// Stages reference abstractions positionally, so the index of an entry in
// the abstractions slice is its stable identity for the lifetime of a run.
package docset

// Abstraction is one core concept identified in the analyzed codebase.
// It becomes a chapter in the generated document set.
type Abstraction struct {
	// Name is the concept's display name (e.g. "Request Router").
	Name string `yaml:"name" json:"name"`

	// Responsibility describes what the component is in charge of.
	Responsibility string `yaml:"primary_responsibility" json:"primary_responsibility"`

	// Approach describes how the implementation realizes the responsibility.
	Approach string `yaml:"implementation_approach" json:"implementation_approach"`

	// KeyInterfaces lists the surfaces other code uses to reach it.
	KeyInterfaces string `yaml:"key_interfaces" json:"key_interfaces"`

	// TechnicalDetails captures notable implementation specifics.
	TechnicalDetails string `yaml:"technical_details" json:"technical_details"`

	// Dependencies names the other components or externals it relies on.
	Dependencies string `yaml:"dependencies" json:"dependencies"`

	// UsageContext describes when and how other components use it.
	UsageContext string `yaml:"usage_context" json:"usage_context"`

	// FileIndices are positions into the run's file slice that contribute
	// to this abstraction. Every index must be in range for the run.
	FileIndices []int `yaml:"files" json:"files"`
}

// Relationship is a directed edge between two abstractions, identified by
// their positions in the run's abstraction slice.
type Relationship struct {
	FromIndex       int    `yaml:"from" json:"from"`
	ToIndex         int    `yaml:"to" json:"to"`
	Kind            string `yaml:"relationship_type" json:"relationship_type"`
	Description     string `yaml:"description" json:"description"`
	InterfaceDetail string `yaml:"interface_details" json:"interface_details"`
}

// DataFlow describes one path data takes through several abstractions.
type DataFlow struct {
	Name             string `yaml:"flow_name" json:"flow_name"`
	Description      string `yaml:"description" json:"description"`
	ComponentIndices []int  `yaml:"components" json:"components"`
	Details          string `yaml:"details" json:"details"`
}

// InterfaceDoc documents a public surface one abstraction exposes.
type InterfaceDoc struct {
	ComponentIndex int      `yaml:"component" json:"component"`
	Name           string   `yaml:"interface_name" json:"interface_name"`
	Methods        []string `yaml:"methods" json:"methods"`
	Description    string   `yaml:"description" json:"description"`
}

// RelationshipSet is the full relationship analysis for one run.
type RelationshipSet struct {
	// Summary is a short prose description of how the system fits together.
	Summary string `yaml:"summary" json:"summary"`

	// ArchitectureOverview is a longer architectural narrative.
	ArchitectureOverview string `yaml:"architecture_overview" json:"architecture_overview"`

	Relationships []Relationship `yaml:"component_relationships" json:"component_relationships"`
	DataFlows     []DataFlow     `yaml:"data_flow" json:"data_flow"`
	Interfaces    []InterfaceDoc `yaml:"api_interfaces" json:"api_interfaces"`
}

// Architecture summarizes the overall architectural style of a codebase.
type Architecture struct {
	Type        string `yaml:"type" json:"type"`
	Pattern     string `yaml:"pattern" json:"pattern"`
	Description string `yaml:"description" json:"description"`
}

// KeyDirectory is one directory the reasoning pass flagged as significant.
type KeyDirectory struct {
	Name       string `yaml:"name" json:"name"`
	Importance string `yaml:"importance" json:"importance"`
	Purpose    string `yaml:"purpose" json:"purpose"`
}

// CoreArea groups related files under a named functional area.
type CoreArea struct {
	Name        string   `yaml:"name" json:"name"`
	Files       []string `yaml:"files" json:"files"`
	Description string   `yaml:"description" json:"description"`
}

// ArchInsights is the reasoning-derived architectural read of a codebase,
// produced alongside the purely structural report.
type ArchInsights struct {
	Architecture    Architecture   `yaml:"architecture" json:"architecture"`
	KeyDirectories  []KeyDirectory `yaml:"key_directories" json:"key_directories"`
	TechnologyStack []string       `yaml:"technology_stack" json:"technology_stack"`
	EntryPoints     []string       `yaml:"entry_points" json:"entry_points"`
	CoreAreas       []CoreArea     `yaml:"core_areas" json:"core_areas"`
}

// IdentityOrder returns the identity chapter order for n abstractions.
// It is the fallback when a proposed order is not a valid permutation.
func IdentityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// IsPermutation reports whether order is a complete permutation of 0..n-1.
func IsPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}
