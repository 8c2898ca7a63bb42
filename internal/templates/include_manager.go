package templates

import (
	"sort"
	"strings"
)

// IncludeManager collects the #include targets of a header. System includes
// are emitted first, sorted; project includes keep the order they were added.
type IncludeManager struct {
	system  map[string]bool
	project []string
}

// NewIncludeManager creates an empty include manager
func NewIncludeManager() *IncludeManager {
	return &IncludeManager{system: make(map[string]bool)}
}

// Add adds include targets. Bare paths are spelled with quotes.
func (im *IncludeManager) Add(includes ...string) {
	for _, inc := range includes {
		inc = spellInclude(inc)
		switch {
		case inc == `""`:
		case strings.HasPrefix(inc, "<"):
			im.system[inc] = true
		case !im.containsProject(inc):
			im.project = append(im.project, inc)
		}
	}
}

func (im *IncludeManager) containsProject(inc string) bool {
	for _, existing := range im.project {
		if existing == inc {
			return true
		}
	}
	return false
}

// Includes returns every target in emission order
func (im *IncludeManager) Includes() []string {
	out := make([]string, 0, len(im.system)+len(im.project))
	for inc := range im.system {
		out = append(out, inc)
	}
	sort.Strings(out)
	return append(out, im.project...)
}

// Merge adds every include of other
func (im *IncludeManager) Merge(other *IncludeManager) {
	for inc := range other.system {
		im.system[inc] = true
	}
	im.Add(other.project...)
}

func spellInclude(inc string) string {
	inc = strings.TrimSpace(inc)
	if strings.HasPrefix(inc, "<") || strings.HasPrefix(inc, `"`) {
		return inc
	}
	return `"` + inc + `"`
}
