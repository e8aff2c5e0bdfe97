package compiler

// measureDepth returns the longest chain of nested operator nodes below
// root. It walks an explicit worklist so that a pathologically deep tree is
// measured without recursing.
func measureDepth(root *Expression) int {
	type entry struct {
		expr  *Expression
		depth int
	}

	deepest := 0
	worklist := make([]entry, 0, len(root.Exprs))
	for _, e := range root.Exprs {
		worklist = append(worklist, entry{e, 1})
	}

	for len(worklist) > 0 {
		curr := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if curr.expr == nil || curr.expr.Op == Num || curr.expr.Op == End {
			continue
		}
		if curr.depth > deepest {
			deepest = curr.depth
		}
		for _, child := range curr.expr.Exprs {
			worklist = append(worklist, entry{child, curr.depth + 1})
		}
	}

	return deepest
}
