package tll

import (
	"fmt"
	"io"
	"strings"
)

// Explore walks the graph reachable from root depth first and returns the
// links of every visited node. Links to IDs not in the arena are reported
// but not followed.
func (a *Arena) Explore(root ID) map[ID]Links {
	out := make(map[ID]Links)
	a.walk(root, func(id ID, n Node, _ int) {
		out[id] = n.Links()
	})
	return out
}

// walk visits each node reachable from root once in preorder, following a,
// then b, then c. depth is 0 for root.
func (a *Arena) walk(root ID, fn func(ID, Node, int)) {
	type frame struct {
		id    ID
		depth int
	}

	visited := make(map[ID]struct{})
	stack := []frame{{id: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[f.id]; seen {
			continue
		}
		n, ok := a.Get(f.id)
		if !ok {
			continue
		}
		visited[f.id] = struct{}{}
		fn(f.id, n, f.depth)

		for _, child := range [...]ID{n.C, n.B, n.A} {
			if child == Nil {
				continue
			}
			if _, seen := visited[child]; !seen {
				stack = append(stack, frame{id: child, depth: f.depth + 1})
			}
		}
	}
}

// Print writes an indented dump of the graph reachable from root. Each node
// is printed once, its unvisited children one level deeper.
func (a *Arena) Print(w io.Writer, root ID) error {
	var err error
	a.walk(root, func(id ID, n Node, depth int) {
		if err != nil {
			return
		}
		err = printNode(w, id, n, depth)
	})
	return err
}

func printNode(w io.Writer, id ID, n Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	field := indent + "  "

	var b strings.Builder
	fmt.Fprintf(&b, "%sTLL %s {\n", indent, id)
	fmt.Fprintf(&b, "%sa: %s\n", field, n.A)
	fmt.Fprintf(&b, "%sb: %s\n", field, n.B)
	fmt.Fprintf(&b, "%sc: %s\n", field, n.C)
	fmt.Fprintf(&b, "%send: %t\n", field, n.End)
	fmt.Fprintf(&b, "%sflag: %t\n", field, n.Flag)
	fmt.Fprintf(&b, "%spadding_1ah: %d\n", field, n.Padding1Ah)
	fmt.Fprintf(&b, "%sindex: %d\n", field, n.Index)
	fmt.Fprintf(&b, "%sstring: %s\n", field, quoteString(n))
	fmt.Fprintf(&b, "%sunknown_40h: %d\n", field, n.Unknown40h)
	fmt.Fprintf(&b, "%spadding_44h: %d\n", field, n.Padding44h)
	fmt.Fprintf(&b, "%sdata1: %#x\n", field, uint64(n.Data1))
	fmt.Fprintf(&b, "%sdata2: %#x\n", field, uint64(n.Data2))
	fmt.Fprintf(&b, "%sdata3: %#x\n", field, uint64(n.Data3))
	fmt.Fprintf(&b, "%s}\n", indent)

	_, err := io.WriteString(w, b.String())
	return err
}

func quoteString(n Node) string {
	s, err := n.String.Get()
	if err != nil {
		return fmt.Sprintf("<invalid: %x>", n.String.Bytes())
	}
	return fmt.Sprintf("%q", s)
}
