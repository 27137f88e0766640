package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lorekeep/lore/internal/analyzer"
	"github.com/lorekeep/lore/internal/docset"
	"github.com/lorekeep/lore/internal/render"
	"github.com/lorekeep/lore/internal/source"
)

const fence = "```"

// maxExcerpt caps how much of a single file is inlined into a prompt.
// Oversized files are cut at a rune boundary with a truncation marker
// so one generated megafile cannot crowd out the rest of the context.
const maxExcerpt = 8000

func structurePrompt(projectName string, rep *analyzer.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the structure of the codebase '%s':\n\n", projectName)
	b.WriteString(rep.Summarize())
	b.WriteString(`
Based on this structural analysis, provide insights about:
1. The overall architecture and organization
2. Key architectural patterns detected
3. Most important directories/modules
4. Entry points and core components
5. Technology stack and framework usage

Format as YAML:

`)
	b.WriteString(fence + "yaml\n")
	b.WriteString(`architecture:
  type: "framework/library/application/etc"
  pattern: "mvc/layered/microservices/etc"
  description: "Brief architectural description"
key_directories:
  - name: "directory_name"
    importance: "high/medium/low"
    purpose: "what this directory contains"
technology_stack:
  - "primary language/framework"
  - "additional technologies"
entry_points:
  - "file paths that serve as entry points"
core_areas:
  - name: "area name"
    files: ["key file paths"]
    description: "what this area handles"
`)
	b.WriteString(fence)
	return b.String()
}

func coreSelectPrompt(projectName string, maxCore int, files []source.File, rep *analyzer.Report, ins *docset.ArchInsights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the structural analysis of '%s', identify the %d most important files that best represent the core abstractions and functionality of this codebase.\n\n", projectName, maxCore)

	b.WriteString("All Files (with indices):\n")
	for i, f := range files {
		fmt.Fprintf(&b, "%d: %s (%d bytes, %d lines)\n", i, f.Path, f.Size, f.Lines)
	}

	b.WriteString("\nEntry Points:\n")
	for _, ep := range rep.EntryPoints {
		fmt.Fprintf(&b, "- %s\n", ep)
	}

	b.WriteString("\nMost Imported Files:\n")
	for _, cm := range rep.CoreModules {
		fmt.Fprintf(&b, "- %s (imported by %d files)\n", cm.Path, cm.Dependents)
	}

	b.WriteString("\nArchitectural Insights:\n")
	desc := "No architectural description available"
	if ins != nil && ins.Architecture.Description != "" {
		desc = ins.Architecture.Description
	}
	b.WriteString(desc + "\n")

	if ins != nil && len(ins.CoreAreas) > 0 {
		b.WriteString("\nKey Areas:\n")
		for _, area := range ins.CoreAreas {
			fmt.Fprintf(&b, "- %s: %s\n", area.Name, area.Description)
		}
	}

	b.WriteString(`
Consider these factors:
1. Entry points and main files
2. Files that are heavily imported by others (high dependency centrality)
3. Files that define key classes, interfaces, or core functionality
4. Files that represent different architectural layers or components
5. Configuration and setup files that define system behavior

Select files that together give the best overview of how this system works.

Format as YAML:

`)
	b.WriteString(fence + "yaml\n")
	b.WriteString(`core_files:
  - index: 0  # Index in the files list
    path: "path/to/file"
    importance: "high/medium"
    reason: "why this file is core"
`)
	fmt.Fprintf(&b, "# ... up to %d files\n", maxCore)
	b.WriteString(fence)
	return b.String()
}

func abstractionsPrompt(projectName, structure, coreContent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following core files from the %s project and identify 5-10 key technical abstractions/components.\n", projectName)
	b.WriteString(`
For each abstraction, provide:
1. **Name**: Clear, technical component name
2. **Primary Responsibility**: What this component is responsible for in the system
3. **Implementation Approach**: How it's implemented (patterns, techniques, architecture)
4. **Key Interfaces**: Important methods, APIs, or interfaces it exposes
5. **Technical Details**: Architecture patterns, data structures, algorithms used
6. **Dependencies**: What other components it depends on
7. **Usage Context**: When and how other components interact with it

Focus on technical depth suitable for AI development agents who need to understand implementation details.

Project Structure Context:
`)
	b.WriteString(structure)
	b.WriteString("\nCore Files:\n")
	b.WriteString(coreContent)
	b.WriteString("\n\nReturn your analysis in YAML format:\n")
	b.WriteString(fence + "yaml\n")
	b.WriteString(`abstractions:
  - name: "ComponentName"
    primary_responsibility: "What this component does"
    implementation_approach: "How it's implemented"
    key_interfaces: "Important APIs/methods"
    technical_details: "Architecture patterns, data structures"
    dependencies: "Dependencies on other components"
    usage_context: "How other components use this"
    files: [0, 1, 2]  # indices of relevant files
`)
	b.WriteString(fence)
	return b.String()
}

func relationshipsPrompt(projectName string, abstractions []docset.Abstraction, structure string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the relationships between these technical components from %s and provide comprehensive architectural analysis.\n\n", projectName)
	b.WriteString("Components:\n")
	b.WriteString(componentDigest(abstractions))
	b.WriteString("\nStructural Analysis:\n")
	b.WriteString(structure)
	b.WriteString(`
Provide:
1. **Technical Project Summary**: Overall architecture and technical approach
2. **Architecture Overview**: Design patterns, architectural decisions, and technical philosophy
3. **Component Relationships**: How components interact technically (dependencies, data flow, communication patterns)
4. **Data Flow Patterns**: How data moves through the system
5. **API Interfaces**: Key interfaces and contracts between components

Return in YAML format:
`)
	b.WriteString(fence + "yaml\n")
	b.WriteString(`summary: "Comprehensive technical project summary"
architecture_overview: "Architectural patterns and design decisions"
component_relationships:
  - from: 0  # component index
    to: 1    # component index
    relationship_type: "depends_on/uses/inherits/implements/calls"
    description: "Technical description of the relationship"
    interface_details: "API/interface details"
data_flow:
  - flow_name: "DataProcessingFlow"
    description: "How data flows through components"
    components: [0, 1, 2]
    details: "Technical implementation details"
api_interfaces:
  - component: 0
    interface_name: "PublicAPI"
    methods: ["method1", "method2"]
    description: "Interface description and usage"
`)
	b.WriteString(fence)
	return b.String()
}

func orderPrompt(abstractions []docset.Abstraction, rels *docset.RelationshipSet) string {
	var b strings.Builder
	b.WriteString("Order these technical components for logical presentation in AI agent development documentation.\n")
	b.WriteString("Consider architectural layers, dependency hierarchy, and logical learning progression.\n\n")
	b.WriteString("Components:\n")
	b.WriteString(componentDigest(abstractions))
	b.WriteString("\nRelationships:\n")
	b.WriteString(relationshipLines(abstractions, rels))

	b.WriteString("\nArchitecture Overview:\n")
	overview := "No architecture description available"
	if rels != nil && rels.ArchitectureOverview != "" {
		overview = rels.ArchitectureOverview
	}
	b.WriteString(overview + "\n")

	b.WriteString(`
Provide the optimal order for technical documentation, considering:
1. Foundational components first (low-level, widely depended upon)
2. Core business logic and main abstractions
3. Higher-level orchestration and integration components
4. Specialized or auxiliary components

Return the order as a YAML list of indices:

`)
	b.WriteString(fence + "yaml\n")
	b.WriteString(`chapter_order: [2, 0, 1, 4, 3]  # Example order using component indices
reasoning: "Brief explanation of the ordering logic"
`)
	b.WriteString(fence)
	return b.String()
}

func overviewPrompt(projectName, structure string, abstractions []docset.Abstraction, rels *docset.RelationshipSet, files []source.File) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a comprehensive project overview document for %s specifically designed for AI development agents. This will be included in AI agent system prompts to provide complete project context.\n\n", projectName)

	b.WriteString("Project Structure:\n")
	b.WriteString(structure)

	b.WriteString("\nCore Components:\n")
	for _, a := range abstractions {
		fmt.Fprintf(&b, "- **%s**: %s\n", a.Name, a.Responsibility)
	}

	b.WriteString("\nRelationships Analysis:\n")
	if rels != nil {
		fmt.Fprintf(&b, "Summary: %s\n", rels.Summary)
		fmt.Fprintf(&b, "Architecture: %s\n", rels.ArchitectureOverview)
		b.WriteString(relationshipLines(abstractions, rels))
	}

	fmt.Fprintf(&b, "\nFile Types: %s\n", strings.Join(fileExtensions(files), ", "))

	b.WriteString(`
Create a comprehensive overview covering:

1. **Project Purpose & Scope**: What the project does and its technical objectives
2. **Architecture Overview**: High-level architecture, design patterns, and technical approach
3. **Core Components**: Summary of main components and their roles
4. **Technology Stack**: Languages, frameworks, libraries, and tools used
5. **Development Patterns**: Coding patterns, conventions, and architectural decisions
6. **Component Interactions**: How components work together technically
7. **Key Interfaces & APIs**: Important interfaces for development
8. **Development Guidelines**: Technical guidelines for implementing new features
9. **Navigation Guide**: How AI agents should navigate the codebase for different tasks
10. **Extension Points**: Where and how new features should be added

Format as a comprehensive technical document suitable for AI agent system prompts. Use clear technical language and provide specific guidance for development tasks.`)
	return b.String()
}

// chapterPrompt builds the prompt for one component's chapter. position
// is the chapter's 0-based slot in the reading order; the listing of
// all chapters with their filenames lets the model emit working
// cross-reference links.
func chapterPrompt(a docset.Abstraction, abstractions []docset.Abstraction, rels *docset.RelationshipSet, files []source.File, absIndex, position int, order []int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write comprehensive technical documentation for the '%s' component. This documentation is for AI development agents who need to understand implementation details for feature development.\n\n", a.Name)

	b.WriteString("Component Information:\n")
	fmt.Fprintf(&b, "- **Name**: %s\n", a.Name)
	fmt.Fprintf(&b, "- **Primary Responsibility**: %s\n", a.Responsibility)
	fmt.Fprintf(&b, "- **Implementation Approach**: %s\n", a.Approach)
	fmt.Fprintf(&b, "- **Key Interfaces**: %s\n", a.KeyInterfaces)
	fmt.Fprintf(&b, "- **Technical Details**: %s\n", a.TechnicalDetails)
	fmt.Fprintf(&b, "- **Dependencies**: %s\n", a.Dependencies)
	fmt.Fprintf(&b, "- **Usage Context**: %s\n", a.UsageContext)

	b.WriteString("\nRelated Components:\n")
	b.WriteString(relatedComponents(absIndex, abstractions, rels))

	b.WriteString("\nSource Code:\n")
	b.WriteString(componentSources(a, files))

	b.WriteString("\n\nDocumentation Set Context:\n")
	fmt.Fprintf(&b, "This is chapter %d of %d. The full reading order is:\n", position+1, len(order))
	for pos, idx := range order {
		if idx < 0 || idx >= len(abstractions) {
			continue
		}
		name := abstractions[idx].Name
		fmt.Fprintf(&b, "%d. %s (%s)\n", pos+1, name, render.ChapterFilename(pos, name))
	}
	if position > 0 {
		prev := abstractions[order[position-1]].Name
		fmt.Fprintf(&b, "The previous chapter covered %s (%s).\n", prev, render.ChapterFilename(position-1, prev))
	}
	if position < len(order)-1 {
		next := abstractions[order[position+1]].Name
		fmt.Fprintf(&b, "The next chapter covers %s (%s).\n", next, render.ChapterFilename(position+1, next))
	}
	b.WriteString("When referring to another component, link to its chapter file by relative filename.\n")

	b.WriteString(`
Generate comprehensive documentation including:

1. **Component Overview**: Technical summary and architectural role
2. **Implementation Details**: How it's implemented, patterns used, data structures
3. **API Reference**: Key methods, functions, interfaces with usage examples
4. **Architecture Integration**: How it fits into the overall system architecture
5. **Data Structures**: Important data types, models, schemas used
6. **Usage Patterns**: Common usage patterns and examples
7. **Dependencies & Relationships**: Technical dependencies and interaction patterns
8. **Extension Points**: How to extend or modify this component
9. **Performance Considerations**: Performance characteristics and optimization notes
10. **Development Guidelines**: Best practices for working with this component

Use technical language appropriate for AI development agents. Include code examples where relevant. Focus on implementation details that would be needed for feature development.

Format as markdown with clear headings and technical depth.`)
	return b.String()
}

// componentDigest renders one "index: Name - Responsibility" line per
// abstraction, the shorthand every later prompt uses to refer to them.
func componentDigest(abstractions []docset.Abstraction) string {
	var b strings.Builder
	for i, a := range abstractions {
		fmt.Fprintf(&b, "%d: %s - %s\n", i, a.Name, a.Responsibility)
	}
	return b.String()
}

func relationshipLines(abstractions []docset.Abstraction, rels *docset.RelationshipSet) string {
	if rels == nil {
		return ""
	}
	var b strings.Builder
	for _, rel := range rels.Relationships {
		if rel.FromIndex < 0 || rel.FromIndex >= len(abstractions) {
			continue
		}
		if rel.ToIndex < 0 || rel.ToIndex >= len(abstractions) {
			continue
		}
		kind := rel.Kind
		if kind == "" {
			kind = "relates_to"
		}
		fmt.Fprintf(&b, "%s -> %s (%s)\n", abstractions[rel.FromIndex].Name, abstractions[rel.ToIndex].Name, kind)
	}
	return b.String()
}

func relatedComponents(absIndex int, abstractions []docset.Abstraction, rels *docset.RelationshipSet) string {
	var lines []string
	if rels != nil {
		for _, rel := range rels.Relationships {
			var otherIdx int
			switch absIndex {
			case rel.FromIndex:
				otherIdx = rel.ToIndex
			case rel.ToIndex:
				otherIdx = rel.FromIndex
			default:
				continue
			}
			if otherIdx < 0 || otherIdx >= len(abstractions) {
				continue
			}
			desc := rel.Description
			if desc == "" {
				desc = "No description"
			}
			lines = append(lines, fmt.Sprintf("- **%s**: %s", abstractions[otherIdx].Name, desc))
		}
	}
	if len(lines) == 0 {
		return "No direct relationships identified.\n"
	}
	return strings.Join(lines, "\n") + "\n"
}

func componentSources(a docset.Abstraction, files []source.File) string {
	var parts []string
	for _, idx := range a.FileIndices {
		if idx < 0 || idx >= len(files) {
			continue
		}
		f := files[idx]
		parts = append(parts, fmt.Sprintf("### %s\n%s\n%s\n%s", f.Path, fence, excerpt(f.Content, maxExcerpt), fence))
	}
	if len(parts) == 0 {
		return "No specific files identified for this component."
	}
	return strings.Join(parts, "\n\n")
}

// coreContent joins the selected core files into the abstraction
// prompt's source section.
func coreContent(coreFiles []int, files []source.File) string {
	var parts []string
	for _, idx := range coreFiles {
		if idx < 0 || idx >= len(files) {
			continue
		}
		f := files[idx]
		parts = append(parts, fmt.Sprintf("File: %s\n%s", f.Path, excerpt(f.Content, maxExcerpt)))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// structureDigest is the textual form of the structural analysis shared
// by the prompts that need project-wide context.
func structureDigest(rep *analyzer.Report, ins *docset.ArchInsights) string {
	var b strings.Builder
	b.WriteString(rep.Summarize())
	if ins == nil {
		return b.String()
	}
	if ins.Architecture.Type != "" || ins.Architecture.Description != "" {
		fmt.Fprintf(&b, "\nArchitecture: %s (%s): %s\n", ins.Architecture.Type, ins.Architecture.Pattern, ins.Architecture.Description)
	}
	if len(ins.KeyDirectories) > 0 {
		b.WriteString("Key directories:\n")
		for _, d := range ins.KeyDirectories {
			fmt.Fprintf(&b, "- %s (%s): %s\n", d.Name, d.Importance, d.Purpose)
		}
	}
	if len(ins.TechnologyStack) > 0 {
		fmt.Fprintf(&b, "Technology stack: %s\n", strings.Join(ins.TechnologyStack, ", "))
	}
	if len(ins.CoreAreas) > 0 {
		b.WriteString("Core areas:\n")
		for _, area := range ins.CoreAreas {
			fmt.Fprintf(&b, "- %s: %s\n", area.Name, area.Description)
		}
	}
	return b.String()
}

func fileExtensions(files []source.File) []string {
	seen := make(map[string]bool)
	for _, f := range files {
		base := f.Path
		if i := strings.LastIndexByte(base, '/'); i >= 0 {
			base = base[i+1:]
		}
		if i := strings.LastIndexByte(base, '.'); i >= 0 && i < len(base)-1 {
			seen[strings.ToLower(base[i+1:])] = true
		}
	}
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// excerpt cuts s at limit bytes, stepping back to a rune boundary, and
// marks the cut.
func excerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n... (truncated)"
}
