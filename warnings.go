package blocktree

import (
	"strings"

	"github.com/tsawler/blocktree/model"
)

// Warning is a non-fatal issue met while building a document, such as a
// page whose assembly failed part way through or a table that could not be
// resolved.
type Warning = model.Warning

// FormatWarnings joins warnings into one line each
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, 0, len(warnings))
	for _, w := range warnings {
		lines = append(lines, w.String())
	}
	return strings.Join(lines, "\n")
}
