package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/vanderheijden86/treetable/pkg/tree"
)

// WritePlain prints the visible rows of v without styling, one per line,
// indented by depth. Used when stdout is not a terminal.
func WritePlain[T any, ID comparable](w io.Writer, v *tree.View[T, ID], label func(T) string, indent int) error {
	if indent < 0 {
		indent = 0
	}
	for _, row := range v.Visible() {
		state := v.State(row)
		line := strings.Repeat(" ", state.Depth*indent) + expandIndicator(state) + " " + label(row.Item)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
