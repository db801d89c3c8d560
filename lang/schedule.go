package lang

import "github.com/edwingeng/deque"

// schedule partitions the statements of root and every nested block into
// priority and sequential statements. Blocks are visited breadth first, so
// each block is scheduled before the blocks it contains.
func schedule(root *Block) {
	queue := deque.NewDeque()
	queue.PushBack(root)

	for !queue.Empty() {
		b, _ := queue.Front().(*Block)
		queue.PopFront()

		b.Priority, b.Sequence = nil, nil

		for _, tok := range b.Statements {
			if tok.Proto.Priority {
				b.Priority = append(b.Priority, tok)
			} else {
				b.Sequence = append(b.Sequence, tok)
			}

			for _, nested := range blocks(tok) {
				queue.PushBack(nested)
			}
		}
	}
}

// blocks returns the code blocks captured by tok and by the tokens nested in
// its groups, outermost first. It does not descend into the blocks found.
func blocks(tok *Token) []*Block {
	var out []*Block

	var visit func(g *Group)

	visit = func(g *Group) {
		if g.Block != nil {
			out = append(out, g.Block)

			return
		}

		for _, t := range g.Tokens {
			out = append(out, blocks(t)...)
		}

		for _, c := range g.Groups {
			visit(c)
		}
	}

	for _, g := range tok.Groups {
		visit(g)
	}

	return out
}
