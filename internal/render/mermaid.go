package render

import (
	"fmt"
	"strings"

	"github.com/lorekeep/lore/internal/docset"
)

const labelLimit = 50

// componentDiagram renders the component relationship graph. Edges with
// out-of-range endpoints are dropped rather than breaking the diagram.
func componentDiagram(abstractions []docset.Abstraction, rels []docset.Relationship) string {
	var b strings.Builder
	b.WriteString("```mermaid\nflowchart TD\n")

	for i, a := range abstractions {
		fmt.Fprintf(&b, "    A%d[\"%s<br/>%s\"]\n",
			i, mermaidLabel(a.Name), truncateLabel(mermaidLabel(a.Responsibility)))
	}
	for _, rel := range rels {
		if rel.FromIndex < 0 || rel.FromIndex >= len(abstractions) ||
			rel.ToIndex < 0 || rel.ToIndex >= len(abstractions) {
			continue
		}
		kind := rel.Kind
		if kind == "" {
			kind = "relates_to"
		}
		fmt.Fprintf(&b, "    A%d -->|\"%s\"| A%d\n",
			rel.FromIndex, truncateLabel(mermaidLabel(kind)), rel.ToIndex)
	}

	b.WriteString("```\n")
	return b.String()
}

// flowDiagram renders one data flow as a left-to-right chain through its
// components. Flows with fewer than two valid steps render nothing.
func flowDiagram(flow docset.DataFlow, componentCount int) string {
	var steps []int
	for _, idx := range flow.ComponentIndices {
		if idx >= 0 && idx < componentCount {
			steps = append(steps, idx)
		}
	}
	if len(steps) < 2 {
		return ""
	}

	var b strings.Builder
	b.WriteString("```mermaid\nflowchart LR\n")
	for i := 0; i < len(steps)-1; i++ {
		fmt.Fprintf(&b, "    A%d --> A%d\n", steps[i], steps[i+1])
	}
	b.WriteString("```\n")
	return b.String()
}

// mermaidLabel strips characters that terminate mermaid node or edge
// labels.
func mermaidLabel(s string) string {
	replacer := strings.NewReplacer(
		`"`, "'",
		"\n", " ",
		"[", "(",
		"]", ")",
		"|", "/",
	)
	return replacer.Replace(s)
}

// truncateLabel caps a label at labelLimit runes with an ellipsis.
func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= labelLimit {
		return s
	}
	return string(runes[:labelLimit]) + "..."
}
