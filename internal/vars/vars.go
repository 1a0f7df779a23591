// Package vars is the variable store: scalars and arrays keyed by name
// with sigil, DEFtype defaults and OPTION BASE.
package vars

import (
	"gwbasic/internal/berrors"
	"gwbasic/internal/values"
)

//
// Scalars and arrays may share a name, so they live in separate maps,
// so X and X(1) are distinct variables
//

// implicit is the upper bound of an array used before any DIM.
const implicit = 10

// maxBytes caps the storage of a single array.
const maxBytes = 0xffff

type array struct {
	bounds []int // upper bound per dimension
	data   []values.Value
}

// Store is the default variable store.
type Store struct {
	scalars map[string]*values.Value
	arrays  map[string]*array
	deftype [26]values.Kind
	base    int
	based   bool // OPTION BASE seen

	// Trace, when set, is told about every assignment.
	Trace func(name string, idx []int, old, val values.Value)
}

func New() *Store {

	s := &Store{}
	s.Clear()

	return s
}

// Clear drops every variable and resets DEFtype and OPTION BASE.
func (s *Store) Clear() {

	s.scalars = make(map[string]*values.Value)
	s.arrays = make(map[string]*array)
	for i := range s.deftype {
		s.deftype[i] = values.Single
	}
	s.base = 0
	s.based = false
}

// DefType sets the default kind of names starting with the letters
// from..to.
func (s *Store) DefType(k values.Kind, from, to byte) error {

	if from < 'A' || to > 'Z' || from > to {
		return berrors.New(berrors.SyntaxError)
	}
	for c := from; c <= to; c++ {
		s.deftype[c-'A'] = k
	}

	return nil
}

// Canonical returns name with its sigil, supplying the DEFtype default
// when it has none.
func (s *Store) Canonical(name string) string {

	if name == "" || values.IsKind(name[len(name)-1]) {
		return name
	}
	if c := name[0]; c < 'A' || c > 'Z' {
		return name + string(rune(values.Single))
	}

	return name + string(rune(s.deftype[name[0]-'A']))
}

// KindOf returns the kind of a canonical name.
func KindOf(name string) values.Kind {
	return values.Kind(name[len(name)-1])
}

// Base sets OPTION BASE. It must come before any array exists and may
// only be given once.
func (s *Store) Base(n int) error {

	if n != 0 && n != 1 {
		return berrors.New(berrors.SyntaxError)
	}
	if s.based && n != s.base || len(s.arrays) > 0 {
		return berrors.New(berrors.DuplicateDefinition)
	}
	s.base = n
	s.based = true

	return nil
}

// Get returns a scalar when idx is empty, otherwise an array element.
// Unknown scalars read as zero; unknown arrays are dimensioned to ten.
func (s *Store) Get(name string, idx []int) (values.Value, error) {

	name = s.Canonical(name)
	if len(idx) == 0 {
		if p, ok := s.scalars[name]; ok {
			return *p, nil
		}
		return values.Zero(KindOf(name)), nil
	}

	p, err := s.element(name, idx)
	if err != nil {
		return values.Value{}, err
	}

	return *p, nil
}

// Set assigns v, converted to the kind of the name.
func (s *Store) Set(name string, idx []int, v values.Value) error {

	name = s.Canonical(name)
	v, err := values.Coerce(v, KindOf(name))
	if err != nil {
		return err
	}

	var p *values.Value
	if len(idx) == 0 {
		p = s.scalars[name]
		if p == nil {
			z := values.Zero(KindOf(name))
			p = &z
			s.scalars[name] = p
		}
	} else if p, err = s.element(name, idx); err != nil {
		return err
	}

	if s.Trace != nil {
		s.Trace(name, idx, *p, v)
	}
	*p = v

	return nil
}

// Bind gives a scalar a temporary value, as for DEF FN parameters, and
// returns the function that puts the old state back.
func (s *Store) Bind(name string, v values.Value) (func(), error) {

	name = s.Canonical(name)
	v, err := values.Coerce(v, KindOf(name))
	if err != nil {
		return nil, err
	}

	old, had := s.scalars[name]
	s.scalars[name] = &v

	return func() {
		if had {
			s.scalars[name] = old
		} else {
			delete(s.scalars, name)
		}
	}, nil
}

// Swap exchanges two variables of the same kind.
func (s *Store) Swap(a string, ai []int, b string, bi []int) error {

	a, b = s.Canonical(a), s.Canonical(b)
	if KindOf(a) != KindOf(b) {
		return berrors.New(berrors.TypeMismatch)
	}

	va, err := s.Get(a, ai)
	if err != nil {
		return err
	}
	vb, err := s.Get(b, bi)
	if err != nil {
		return err
	}
	if err := s.Set(a, ai, vb); err != nil {
		return err
	}

	return s.Set(b, bi, va)
}

// Dim creates an array with the given upper bounds.
func (s *Store) Dim(name string, bounds []int) error {

	name = s.Canonical(name)
	if _, ok := s.arrays[name]; ok {
		return berrors.New(berrors.DuplicateDefinition)
	}

	a, err := s.create(KindOf(name), bounds)
	if err != nil {
		return err
	}
	s.arrays[name] = a

	return nil
}

// Erase removes arrays so they may be dimensioned again.
func (s *Store) Erase(name string) error {

	name = s.Canonical(name)
	if _, ok := s.arrays[name]; !ok {
		return berrors.New(berrors.IllegalFunctionCall)
	}
	delete(s.arrays, name)

	return nil
}

func (s *Store) create(k values.Kind, bounds []int) (*array, error) {

	if len(bounds) == 0 || len(bounds) > 255 {
		return nil, berrors.New(berrors.SyntaxError)
	}

	n := 1
	for _, b := range bounds {
		if b < s.base || b > 32767 {
			return nil, berrors.New(berrors.SubscriptOutOfRange)
		}
		n *= b - s.base + 1
		if n*k.Size() > maxBytes {
			return nil, berrors.New(berrors.OutOfMemory)
		}
	}

	a := &array{bounds: append([]int(nil), bounds...), data: make([]values.Value, n)}
	for i := range a.data {
		a.data[i] = values.Zero(k)
	}

	return a, nil
}

func (s *Store) element(name string, idx []int) (*values.Value, error) {

	a, ok := s.arrays[name]
	if !ok {
		bounds := make([]int, len(idx))
		for i := range bounds {
			bounds[i] = implicit
		}
		var err error
		if a, err = s.create(KindOf(name), bounds); err != nil {
			return nil, err
		}
		s.arrays[name] = a
	}

	if len(idx) != len(a.bounds) {
		return nil, berrors.New(berrors.SubscriptOutOfRange)
	}

	off := 0
	for i, x := range idx {
		if x < s.base || x > a.bounds[i] {
			return nil, berrors.New(berrors.SubscriptOutOfRange)
		}
		off = off*(a.bounds[i]-s.base+1) + x - s.base
	}

	return &a.data[off], nil
}

// Refs returns every string handle held in a variable, for heap
// compaction.
func (s *Store) Refs() []*values.StringRef {

	var refs []*values.StringRef
	for _, p := range s.scalars {
		if r := p.RefPtr(); r != nil {
			refs = append(refs, r)
		}
	}
	for _, a := range s.arrays {
		for i := range a.data {
			if r := a.data[i].RefPtr(); r != nil {
				refs = append(refs, r)
			}
		}
	}

	return refs
}
