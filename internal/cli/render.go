package cli

import (
	"fmt"
	"io"
	"strings"

	"familytree/internal/domain/models"
	"familytree/internal/familytree"
)

// Render prints the title line, the breadcrumb to the view root and the visible
// part of the tree. Children are listed only under expanded nodes.
func Render(w io.Writer, ctrl *familytree.Controller) error {
	state := ctrl.State()
	fmt.Fprintf(w, "%s  (zoom %d%%, font %s)\n", state.TreeName, int(state.Zoom*100+0.5), state.TitleFont)

	node, path := ctrl.ViewRoot()
	if node == nil {
		_, err := fmt.Fprintln(w, "(empty tree)")
		return err
	}

	if len(path) > 1 {
		names := make([]string, 0, len(path))
		for _, id := range path {
			if m, ok := ctrl.Member(id); ok {
				names = append(names, m.Name)
			}
		}
		fmt.Fprintln(w, strings.Join(names, " › "))
	}

	var b strings.Builder
	renderNode(&b, node, state, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func renderNode(b *strings.Builder, node *models.TreeNode, state familytree.State, depth int) {
	marker := "•"
	expanded := state.IsExpanded(node.ID)
	if node.HasChildren() {
		marker = "▸"
		if expanded {
			marker = "▾"
		}
	}
	fmt.Fprintf(b, "%s%s %s [%s]\n", strings.Repeat("  ", depth), marker, node.Name, node.ID)

	if !expanded {
		return
	}
	for _, child := range node.Children {
		renderNode(b, child, state, depth+1)
	}
}
