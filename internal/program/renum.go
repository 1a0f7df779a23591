package program

import (
	"encoding/binary"

	"github.com/google/btree"

	"gwbasic/internal/berrors"
	"gwbasic/internal/tokens"
)

// Renumber gives the lines from old upwards the numbers start,
// start+inc and so on, and rewrites the line references of the whole
// program to match. A reference to a line that does not exist is left
// as it is and handed to undefined with the new number of the line
// holding it.
func (p *Program) Renumber(start, old, inc int, undefined func(target, num int)) error {

	if inc <= 0 || start < 0 || start > tokens.MaxLineNumber {
		return berrors.New(berrors.IllegalFunctionCall)
	}
	if p.tree.Len() == 0 {
		return nil
	}

	//
	// Phase 1: walk the lines in order, recording each number from old
	// on with its replacement. The new numbers have to stay above the
	// lines that keep theirs and must not run past the largest line
	// number
	//

	var lines []*line
	renumber := make(map[int]int)
	next := start
	below := -1
	modified := false

	p.tree.Ascend(func(item btree.Item) bool {
		l := item.(*line)
		lines = append(lines, l)
		if l.num < old {
			below = l.num
			return true
		}
		renumber[l.num] = next
		if next != l.num {
			modified = true
		}
		next += inc
		return true
	})

	if len(renumber) == 0 || start <= below || next-inc > tokens.MaxLineNumber {
		return berrors.New(berrors.IllegalFunctionCall)
	}

	//
	// Phase 2: rewrite the references in copies of every line. Line 0
	// is never reported: ON ERROR GOTO 0 and RESUME 0 name no line
	//

	renumbered := make([]*line, 0, len(lines))
	for _, l := range lines {
		num, ok := renumber[l.num]
		if !ok {
			num = l.num
		}

		toks := append([]byte(nil), l.toks...)
		references(toks, func(target int) int {
			if n, ok := renumber[target]; ok {
				if n != target {
					modified = true
				}
				return n
			}
			if _, ok := p.index[target]; !ok && target != 0 && undefined != nil {
				undefined(target, num)
			}
			return target
		})
		renumbered = append(renumbered, &line{num: num, toks: toks})
	}

	if !modified {
		return nil
	}

	//
	// Phase 3: rebuild the tree from the renumbered lines. References
	// keep their two byte width, so the image size does not change
	//

	tree := btree.New(4)
	for _, l := range renumbered {
		tree.ReplaceOrInsert(l)
	}
	p.tree = tree
	p.rebuild()

	return nil
}

// references calls fn for each line number in toks and stores the
// number it returns in place. Strings, DATA text and comments hold no
// references.
func references(toks []byte, fn func(target int) int) {

	c := tokens.NewCursor(toks, 0)
	for {
		switch b := c.Peek(); {
		default:
			c.SkipItem()
		case b == tokens.EOL:
			return
		case tokens.Token(b) == tokens.Rem:
			return
		case tokens.Token(b) == tokens.Data:
			c.ReadToken()
			c.SkipData()
		case b == tokens.LineNum:
			pos := c.Pos()
			n, ok := c.ReadLineNumber()
			if !ok {
				return
			}
			binary.LittleEndian.PutUint16(toks[pos+1:], uint16(fn(n)))
		}
	}
}
