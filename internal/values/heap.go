package values

import (
	"gwbasic/internal/berrors"
)

// MaxHeap is the largest string space a 16 bit offset can address.
const MaxHeap = 0xffff

// Heap is an arena of string bodies addressed by 16 bit offsets. Store
// only ever appends; space is reclaimed by Compact, which copies the
// live strings to the front and rewrites their handles.
type Heap struct {
	buf []byte
	top int
}

// NewHeap returns a heap of size bytes, capped at MaxHeap.
func NewHeap(size int) *Heap {

	if size <= 0 || size > MaxHeap {
		size = MaxHeap
	}

	return &Heap{buf: make([]byte, size)}
}

func (h *Heap) Copy(ref StringRef) []byte {

	if ref.Len == 0 {
		return []byte{}
	}

	b := make([]byte, ref.Len)
	copy(b, h.buf[ref.Offset:])

	return b
}

func (h *Heap) Store(b []byte) (StringRef, error) {

	if len(b) > 255 {
		return StringRef{}, berrors.New(berrors.StringTooLong)
	}
	if len(b) == 0 {
		return StringRef{}, nil
	}
	if h.top+len(b) > len(h.buf) {
		return StringRef{}, berrors.New(berrors.OutOfStringSpace)
	}

	ref := StringRef{Len: uint8(len(b)), Offset: uint16(h.top)}
	copy(h.buf[h.top:], b)
	h.top += len(b)

	return ref, nil
}

// Free returns the bytes left before the arena is exhausted.
func (h *Heap) Free() int {
	return len(h.buf) - h.top
}

func (h *Heap) Size() int {
	return len(h.buf)
}

// Reset discards every string.
func (h *Heap) Reset() {
	h.top = 0
}

// Compact keeps only the strings referenced by roots, rewriting each
// handle in place. Handles not listed become invalid, so the caller must
// pass every live reference. Shared handles are copied once.
func (h *Heap) Compact(roots []*StringRef) {

	nbuf := make([]byte, len(h.buf))
	top := 0
	moved := make(map[StringRef]uint16)

	for _, r := range roots {
		if r.Len == 0 {
			*r = StringRef{}
			continue
		}
		if off, ok := moved[*r]; ok {
			r.Offset = off
			continue
		}
		off := uint16(top)
		copy(nbuf[top:], h.buf[r.Offset:int(r.Offset)+int(r.Len)])
		top += int(r.Len)
		moved[*r] = off
		r.Offset = off
	}

	h.buf = nbuf
	h.top = top
}
