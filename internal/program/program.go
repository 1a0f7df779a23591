// Package program holds the stored BASIC program: an ordered set of
// tokenised lines kept in a btree, and the flat byte image the
// interpreter executes from.
package program

import (
	"encoding/binary"
	"sort"
	"strconv"

	"github.com/google/btree"
	"github.com/pkg/errors"

	"gwbasic/internal/berrors"
	"gwbasic/internal/tokens"
)

//
// Image layout: a single NUL, then one record per line
//
//	next:u16 line:u16 tokens... NUL
//
// where next is the offset of the record's own terminating NUL, which
// doubles as the leading NUL of the following record. The image ends
// with a record whose next and line are both zero.
//

const header = 4

// MaxImage is the largest image 16 bit offsets can address.
const MaxImage = 0xffff

type line struct {
	num  int
	toks []byte
}

func (l *line) Less(than btree.Item) bool {
	return l.num < than.(*line).num
}

// Program is the ordered line store. Every edit rebuilds the image, so
// offsets into an old image are invalid after Store, Delete or Clear.
type Program struct {
	tree   *btree.BTree
	image  []byte
	starts []int // offset of each record's leading NUL
	nums   []int
	index  map[int]int
}

func New() *Program {

	p := &Program{tree: btree.New(4)}
	p.rebuild()

	return p
}

// Store inserts or replaces a line. toks excludes the terminating NUL.
func (p *Program) Store(num int, toks []byte) error {

	if num < 0 || num > tokens.MaxLineNumber {
		return berrors.New(berrors.SyntaxError)
	}

	l := &line{num: num, toks: append([]byte(nil), toks...)}
	old := p.tree.ReplaceOrInsert(l)
	if p.size() > MaxImage {
		if old != nil {
			p.tree.ReplaceOrInsert(old)
		} else {
			p.tree.Delete(l)
		}
		return berrors.New(berrors.OutOfMemory)
	}

	p.rebuild()

	return nil
}

// Delete removes one line, failing if it does not exist.
func (p *Program) Delete(num int) error {

	if p.tree.Delete(&line{num: num}) == nil {
		return berrors.New(berrors.UndefinedLineNumber)
	}
	p.rebuild()

	return nil
}

// DeleteRange removes the lines from..to inclusive. An empty range is
// an error.
func (p *Program) DeleteRange(from, to int) error {

	var doomed []btree.Item
	p.tree.AscendGreaterOrEqual(&line{num: from}, func(item btree.Item) bool {
		if item.(*line).num > to {
			return false
		}
		doomed = append(doomed, item)
		return true
	})
	if len(doomed) == 0 {
		return berrors.New(berrors.IllegalFunctionCall)
	}

	for _, item := range doomed {
		p.tree.Delete(item)
	}
	p.rebuild()

	return nil
}

func (p *Program) Clear() {

	p.tree.Clear(false)
	p.rebuild()
}

func (p *Program) Len() int {
	return p.tree.Len()
}

// Lines calls fn for each line from..to in order until fn returns false.
func (p *Program) Lines(from, to int, fn func(num int, toks []byte) bool) {

	p.tree.AscendGreaterOrEqual(&line{num: from}, func(item btree.Item) bool {
		l := item.(*line)
		if l.num > to {
			return false
		}
		return fn(l.num, l.toks)
	})
}

// Image returns the executable image. The caller must not modify it.
func (p *Program) Image() []byte {
	return p.image
}

// Bytes returns a copy of the image.
func (p *Program) Bytes() []byte {
	return append([]byte(nil), p.image...)
}

func (p *Program) size() int {

	n := 1 + header
	p.tree.Ascend(func(item btree.Item) bool {
		n += header + len(item.(*line).toks) + 1
		return true
	})

	return n
}

func (p *Program) rebuild() {

	img := make([]byte, 1, p.size())
	p.starts = p.starts[:0]
	p.nums = p.nums[:0]
	p.index = make(map[int]int, p.tree.Len())

	p.tree.Ascend(func(item btree.Item) bool {
		l := item.(*line)
		lead := len(img) - 1
		next := len(img) + header + len(l.toks)
		img = binary.LittleEndian.AppendUint16(img, uint16(next))
		img = binary.LittleEndian.AppendUint16(img, uint16(l.num))
		img = append(img, l.toks...)
		img = append(img, tokens.EOL)

		p.starts = append(p.starts, lead)
		p.nums = append(p.nums, l.num)
		p.index[l.num] = lead
		return true
	})

	p.image = append(img, 0, 0, 0, 0)
}

// Load replaces the program with the lines of image, checking that the
// chain of next offsets is intact.
func (p *Program) Load(image []byte) error {

	if len(image) < 1+header || image[0] != tokens.EOL {
		return errors.New("program image has no leading NUL")
	}

	tree := btree.New(4)
	pos := 0
	last := -1
	for {
		if pos+1+header > len(image) {
			return errors.Errorf("program image truncated at %d", pos)
		}
		next := int(binary.LittleEndian.Uint16(image[pos+1:]))
		num := int(binary.LittleEndian.Uint16(image[pos+3:]))
		if next == 0 {
			break
		}
		body := pos + 1 + header
		if next < body || next >= len(image) || image[next] != tokens.EOL {
			return errors.Errorf("line %d: bad link %d", num, next)
		}
		if num <= last || num > tokens.MaxLineNumber {
			return errors.Errorf("line %d out of order", num)
		}
		tree.ReplaceOrInsert(&line{num: num, toks: append([]byte(nil), image[body:next]...)})
		last = num
		pos = next
	}

	p.tree = tree
	p.rebuild()

	return nil
}

// Offset returns the offset of the leading NUL of a line's record.
func (p *Program) Offset(num int) (int, bool) {

	off, ok := p.index[num]

	return off, ok
}

// First returns the offset of the first record's leading NUL.
func (p *Program) First() int {
	return 0
}

// Header reads the record whose leading NUL is at off. ok is false at
// the end of the program or if off is not a record boundary.
func (p *Program) Header(off int) (num, body int, ok bool) {

	if off < 0 || off+1+header > len(p.image) || p.image[off] != tokens.EOL {
		return 0, 0, false
	}
	if binary.LittleEndian.Uint16(p.image[off+1:]) == 0 {
		return 0, 0, false
	}

	return int(binary.LittleEndian.Uint16(p.image[off+3:])), off + 1 + header, true
}

// LineAt returns the number of the line containing offset off, or -1.
// A line owns its header, its tokens and its terminating NUL.
func (p *Program) LineAt(off int) int {

	i := sort.Search(len(p.starts), func(i int) bool {
		return p.starts[i] >= off
	})
	if i == 0 || off > len(p.image)-1-header {
		return -1
	}

	return p.nums[i-1]
}

// Following returns the first line numbered above num, if any.
func (p *Program) Following(num int) (int, bool) {

	i := sort.SearchInts(p.nums, num+1)
	if i == len(p.nums) {
		return 0, false
	}

	return p.nums[i], true
}

// Text lists one line as "num tokens".
func Text(num int, toks []byte) string {
	return strconv.Itoa(num) + " " + tokens.Detokenise(toks)
}
