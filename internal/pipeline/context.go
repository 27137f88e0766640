// Package pipeline runs the staged documentation pipeline: a fixed
// sequence of stages threading a shared run context from fetched source
// files to a rendered document set.
//
// The engine enforces each stage's context contract (required keys
// checked before it runs, promised keys after), applies the stage's
// bounded retry policy with a fixed inter-attempt delay, and annotates
// every attempt's context so the response cache can distinguish first
// tries from retries.
package pipeline

import (
	"github.com/lorekeep/lore/internal/analyzer"
	"github.com/lorekeep/lore/internal/docset"
	"github.com/lorekeep/lore/internal/render"
	"github.com/lorekeep/lore/internal/source"
)

// Key identifies one slot of the run context for contract checks.
type Key string

const (
	KeyProjectName   Key = "project_name"
	KeyFiles         Key = "files"
	KeyStructure     Key = "structure"
	KeyInsights      Key = "insights"
	KeyCoreFiles     Key = "core_files"
	KeyAbstractions  Key = "abstractions"
	KeyRelationships Key = "relationships"
	KeyChapterOrder  Key = "chapter_order"
	KeyOverview      Key = "overview"
	KeyChapters      Key = "chapters"
	KeyManifest      Key = "manifest"
)

// Context is the mutable state threaded through one documentation run.
// Only the currently running stage mutates it; it is never shared
// between concurrent runs.
type Context struct {
	// ProjectName is the derived or user-supplied project name.
	ProjectName string

	// Source describes where the files came from (URL or directory).
	Source string

	// OutputDir is the root directory document sets are written under.
	OutputDir string

	Files         []source.File
	Structure     *analyzer.Report
	Insights      *docset.ArchInsights
	CoreFiles     []int
	Abstractions  []docset.Abstraction
	Relationships *docset.RelationshipSet
	ChapterOrder  []int
	Overview      string
	Chapters      []string
	Manifest      *render.Manifest
}

// Has reports whether the context slot for key has been populated.
func (c *Context) Has(key Key) bool {
	switch key {
	case KeyProjectName:
		return c.ProjectName != ""
	case KeyFiles:
		return len(c.Files) > 0
	case KeyStructure:
		return c.Structure != nil
	case KeyInsights:
		return c.Insights != nil
	case KeyCoreFiles:
		return len(c.CoreFiles) > 0
	case KeyAbstractions:
		return len(c.Abstractions) > 0
	case KeyRelationships:
		return c.Relationships != nil
	case KeyChapterOrder:
		return c.ChapterOrder != nil
	case KeyOverview:
		return c.Overview != ""
	case KeyChapters:
		return c.Chapters != nil
	case KeyManifest:
		return c.Manifest != nil
	}
	return false
}
