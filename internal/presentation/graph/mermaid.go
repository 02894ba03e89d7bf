// Package graph exports the decision graph as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// GraphOverlay contains session data to highlight on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
	ResultID     string
}

// GenerateMermaid produces a Mermaid flowchart of g labelled in lang.
// Shapes:
//   - catalog entry node: ([Stadium])
//   - question: [/Parallelogram/]
//   - result: [Rectangle], prefixed with "r_" so ids never clash with node keys
//
// Urgent results get the urgent class, and overlay styles are applied when overlay is set.
func GenerateMermaid(g *domain.Graph, lang domain.Language, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entries := make(map[string]bool)
	for _, it := range g.Symptoms() {
		entries[it.Key] = true
	}

	for _, key := range g.NodeKeys() {
		node := g.Nodes[key]
		opener, closer := "[/", "/]"
		label := key
		if entries[key] {
			opener, closer = "([", "])"
			if it, ok := g.Symptom(key); ok {
				label = it.Label.Get(lang)
			}
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(key), opener, escape(label), closer)

		for _, o := range node.Options {
			target := nodeID(o.Next)
			if o.Terminal() {
				target = resultID(o.Result)
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", nodeID(key), escape(o.Text.Get(lang)), target)
		}
	}

	var urgent []string
	for _, id := range g.ResultIDs() {
		r := g.Results[id]
		fmt.Fprintf(&sb, "    %s[\"%s<br/>%s\"]\n", resultID(id), escape(r.Title.Get(lang)), escape(g.DepartmentName(r, lang)))
		if r.Urgent {
			urgent = append(urgent, resultID(id))
		}
	}

	if len(urgent) > 0 {
		sb.WriteString("\n    classDef urgent fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s urgent;\n", strings.Join(urgent, ","))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, key := range overlay.VisitedNodes {
			id := nodeID(key)
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		switch {
		case overlay.ResultID != "":
			fmt.Fprintf(&sb, "    class %s current;\n", resultID(overlay.ResultID))
		case overlay.CurrentNode != "":
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

// OverlayFor builds the overlay of a session state.
func OverlayFor(s *domain.State) *GraphOverlay {
	if s == nil {
		return nil
	}
	return &GraphOverlay{
		VisitedNodes: s.History,
		CurrentNode:  s.CurrentKey,
		ResultID:     s.ResultID,
	}
}

func nodeID(key string) string {
	return sanitizeMermaidID(key)
}

func resultID(id string) string {
	return "r_" + sanitizeMermaidID(id)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
