// Package render assembles a generated document set on disk: the project
// overview, a cross-referenced index with component diagrams, and one
// chapter per abstraction in presentation order.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lorekeep/lore/internal/docset"
)

const footer = "\n\n---\n\nGenerated by [lore](https://github.com/lorekeep/lore)"

// Manifest records what one run wrote, for the final report and the
// serving layer.
type Manifest struct {
	// Dir is the document set's directory.
	Dir string `json:"dir"`

	// Documents lists the written files relative to Dir, in write order.
	Documents []string `json:"documents"`
}

// Input carries everything the renderer needs for one document set.
type Input struct {
	ProjectName   string
	Source        string
	OutputRoot    string
	Overview      string
	Abstractions  []docset.Abstraction
	Relationships *docset.RelationshipSet
	ChapterOrder  []int
	Chapters      []string
}

// Write renders the document set under OutputRoot/<sanitized name>,
// replacing any previous set for the same project.
func Write(in Input) (*Manifest, error) {
	if len(in.Chapters) != len(in.ChapterOrder) {
		return nil, fmt.Errorf("have %d chapters for %d ordered components", len(in.Chapters), len(in.ChapterOrder))
	}
	for _, idx := range in.ChapterOrder {
		if idx < 0 || idx >= len(in.Abstractions) {
			return nil, fmt.Errorf("chapter order references component %d of %d", idx, len(in.Abstractions))
		}
	}

	dir := filepath.Join(in.OutputRoot, SanitizeName(in.ProjectName))
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear output dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	manifest := &Manifest{Dir: dir}

	overview := fmt.Sprintf("# %s - Development Overview\n\n%s%s", in.ProjectName, in.Overview, footer)
	if err := writeDoc(manifest, "project_overview.md", overview); err != nil {
		return nil, err
	}
	if err := writeDoc(manifest, "index.md", indexDocument(in)); err != nil {
		return nil, err
	}
	for pos, absIdx := range in.ChapterOrder {
		name := ChapterFilename(pos, in.Abstractions[absIdx].Name)
		if err := writeDoc(manifest, name, in.Chapters[pos]+footer); err != nil {
			return nil, err
		}
	}
	return manifest, nil
}

func writeDoc(manifest *Manifest, name, content string) error {
	if err := os.WriteFile(filepath.Join(manifest.Dir, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	manifest.Documents = append(manifest.Documents, name)
	return nil
}

// indexDocument builds the cross-referenced index: summary, architecture
// narrative, component diagram, data flows, interfaces, and the ordered
// chapter links.
func indexDocument(in Input) string {
	var b strings.Builder
	rels := in.Relationships

	fmt.Fprintf(&b, "# %s - Technical Documentation\n\n", in.ProjectName)
	if in.Source != "" {
		fmt.Fprintf(&b, "Source: `%s`\n\n", in.Source)
	}

	if rels.Summary != "" {
		b.WriteString("## Technical Overview\n\n")
		b.WriteString(rels.Summary)
		b.WriteString("\n\n")
	}
	if rels.ArchitectureOverview != "" {
		b.WriteString("## Architecture Overview\n\n")
		b.WriteString(rels.ArchitectureOverview)
		b.WriteString("\n\n")
	}

	b.WriteString("## Component Architecture\n\n")
	b.WriteString(componentDiagram(in.Abstractions, rels.Relationships))
	b.WriteString("\n")

	if len(rels.DataFlows) > 0 {
		b.WriteString("## Data Flow\n\n")
		for _, flow := range rels.DataFlows {
			if flow.Name != "" {
				fmt.Fprintf(&b, "### %s\n\n", flow.Name)
			}
			if flow.Description != "" {
				b.WriteString(flow.Description)
				b.WriteString("\n\n")
			}
			if diagram := flowDiagram(flow, len(in.Abstractions)); diagram != "" {
				b.WriteString(diagram)
				b.WriteString("\n")
			}
		}
	}

	if len(rels.Interfaces) > 0 {
		b.WriteString("## Key Interfaces\n\n")
		for _, iface := range rels.Interfaces {
			if iface.ComponentIndex < 0 || iface.ComponentIndex >= len(in.Abstractions) {
				continue
			}
			owner := in.Abstractions[iface.ComponentIndex].Name
			fmt.Fprintf(&b, "- **%s** (%s): %s", iface.Name, owner, iface.Description)
			if len(iface.Methods) > 0 {
				fmt.Fprintf(&b, " Methods: `%s`", strings.Join(iface.Methods, "`, `"))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Component Documentation\n\n")
	for pos, absIdx := range in.ChapterOrder {
		a := in.Abstractions[absIdx]
		fmt.Fprintf(&b, "%d. **[%s](%s)** - %s\n", pos+1, a.Name, ChapterFilename(pos, a.Name), a.Responsibility)
	}

	b.WriteString(footer)
	return b.String()
}

// SanitizeName keeps letters, digits, '-' and '_'; every other rune
// becomes '_'.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ChapterFilename names a chapter by its 1-based position and the
// component name. The numeric prefix keeps filenames unique even when
// sanitized names collide.
func ChapterFilename(pos int, name string) string {
	return fmt.Sprintf("%02d_%s.md", pos+1, SanitizeName(strings.ToLower(name)))
}
