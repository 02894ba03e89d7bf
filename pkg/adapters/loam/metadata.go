package loam

import "github.com/luminex/symptomcheck/internal/dto"

// Document kinds. A document without an explicit kind takes it from its
// top-level directory (nodes/, results/, branches/, categories/, messages/).
const (
	KindNode     = "node"
	KindResult   = "result"
	KindBranch   = "branch"
	KindCategory = "category"
	KindMessages = "messages"
	KindFallback = "fallback"
	KindGraph    = "graph"
)

var dirKinds = map[string]string{
	"nodes":      KindNode,
	"results":    KindResult,
	"branches":   KindBranch,
	"categories": KindCategory,
	"messages":   KindMessages,
}

// DocumentMetadata is the frontmatter of one graph document.
// Only the fields of its kind are read.
type DocumentMetadata struct {
	Kind string `json:"kind" mapstructure:"kind"`
	ID   string `json:"id" mapstructure:"id"`

	// node
	Question dto.LocalizedText    `json:"question" mapstructure:"question"`
	Options  []dto.OptionDocument `json:"options" mapstructure:"options"`

	// result, fallback
	Title      dto.LocalizedText `json:"title" mapstructure:"title"`
	Desc       dto.LocalizedText `json:"desc" mapstructure:"desc"`
	Department dto.LocalizedText `json:"department" mapstructure:"department"`
	Branch     string            `json:"branch" mapstructure:"branch"`
	Urgent     bool              `json:"urgent" mapstructure:"urgent"`

	// branch
	Name dto.LocalizedText `json:"name" mapstructure:"name"`

	// category
	Label dto.LocalizedText  `json:"label" mapstructure:"label"`
	Items []dto.ItemDocument `json:"items" mapstructure:"items"`

	// messages
	Messages map[string]dto.LocalizedText `json:"messages" mapstructure:"messages"`

	// graph
	Version string `json:"version" mapstructure:"version"`
}

func (m DocumentMetadata) result() dto.ResultDocument {
	return dto.ResultDocument{
		Title:      m.Title,
		Desc:       m.Desc,
		Department: m.Department,
		Branch:     m.Branch,
		Urgent:     m.Urgent,
	}
}
