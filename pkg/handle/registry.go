package handle

import (
	"sync"

	"emperror.dev/errors"
)

var (
	ErrNoObject  = errors.New("no object for handle")
	ErrWrongKind = errors.New("handle kind mismatch")
	ErrNilObject = errors.New("cannot register nil object")
)

// Handle is an opaque, reference counted, typed identifier for a live
// object. The zero value is never a valid handle.
//
// Layout: kind (8 bit) | generation (32 bit) | slot index (24 bit). The
// generation counter detects stale handles referring to recycled slots.
type Handle uint64

const (
	indexBits = 24
	genBits   = 32
	indexMask = 1<<indexBits - 1
	genMask   = 1<<genBits - 1
)

func makeHandle(kind Kind, gen uint32, index int) Handle {
	return Handle(uint64(kind)<<(genBits+indexBits) | uint64(gen)<<indexBits | uint64(index)&indexMask)
}

func (h Handle) index() int {
	return int(uint64(h) & indexMask)
}

func (h Handle) generation() uint32 {
	return uint32(uint64(h) >> indexBits & genMask)
}

// Kind returns the object kind the handle was minted for.
func (h Handle) Kind() Kind {
	return Kind(uint64(h) >> (genBits + indexBits))
}

// FreeFunc releases the object stored under a handle. It runs when the
// reference count of the handle returns to zero.
type FreeFunc func(obj any) error

type slot struct {
	used   bool
	kind   Kind
	gen    uint32
	obj    any
	refs   int
	freeFn FreeFunc
}

// Registry maps handles to arbitrary typed objects with reference
// counting. Slots are recycled, generations keep recycled slots from
// resolving stale handles.
type Registry struct {
	mu       sync.Mutex
	slots    []slot
	freelist []int
}

func NewRegistry() (*Registry, error) {
	reg := &Registry{
		slots:    []slot{},
		freelist: []int{},
	}
	return reg, nil
}

// Register mints a new handle of the given kind for obj with a reference
// count of one. freeFn may be nil if the object needs no teardown.
func (reg *Registry) Register(kind Kind, obj any, freeFn FreeFunc) (Handle, error) {
	if obj == nil {
		return 0, errors.WithStack(ErrNilObject)
	}
	if kind == KindInvalid {
		return 0, errors.Errorf("cannot register object of kind '%s'", kind)
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var index int
	if len(reg.freelist) > 0 {
		index = reg.freelist[len(reg.freelist)-1]
		reg.freelist = reg.freelist[:len(reg.freelist)-1]
	} else {
		if len(reg.slots) > indexMask {
			return 0, errors.Errorf("handle registry full (%d slots)", len(reg.slots))
		}
		index = len(reg.slots)
		reg.slots = append(reg.slots, slot{})
	}
	s := &reg.slots[index]
	s.used = true
	s.kind = kind
	s.obj = obj
	s.refs = 1
	s.freeFn = freeFn
	return makeHandle(kind, s.gen, index), nil
}

func (reg *Registry) lookup(h Handle) (*slot, error) {
	index := h.index()
	if index < 0 || index >= len(reg.slots) {
		return nil, errors.Wrapf(ErrNoObject, "handle %d out of range", h)
	}
	s := &reg.slots[index]
	if !s.used || s.gen != h.generation() {
		return nil, errors.Wrapf(ErrNoObject, "stale handle %d", h)
	}
	return s, nil
}

// Resolve returns the object stored under h regardless of kind.
func (reg *Registry) Resolve(h Handle) (any, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, err := reg.lookup(h)
	if err != nil {
		return nil, err
	}
	return s.obj, nil
}

// ResolveVerified returns the object stored under h after checking that
// the handle was minted for the expected kind. A live handle of another
// kind fails with ErrWrongKind, never with ErrNoObject.
func (reg *Registry) ResolveVerified(h Handle, kind Kind) (any, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, err := reg.lookup(h)
	if err != nil {
		return nil, err
	}
	if s.kind != kind {
		return nil, errors.Wrapf(ErrWrongKind, "handle %d is '%s', not '%s'", h, s.kind, kind)
	}
	return s.obj, nil
}

// KindOf returns the kind stored in the slot of a live handle.
func (reg *Registry) KindOf(h Handle) (Kind, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, err := reg.lookup(h)
	if err != nil {
		return KindInvalid, err
	}
	return s.kind, nil
}

// IncRef adds one reference to h and returns the new count.
func (reg *Registry) IncRef(h Handle) (int, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, err := reg.lookup(h)
	if err != nil {
		return 0, err
	}
	s.refs++
	return s.refs, nil
}

// RefCount returns the current reference count of h.
func (reg *Registry) RefCount(h Handle) (int, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, err := reg.lookup(h)
	if err != nil {
		return 0, err
	}
	return s.refs, nil
}

// DecRef drops one reference from h and returns the new count. At zero
// the slot is recycled and the free callback runs. A failing free
// callback never keeps the slot alive: the handle is gone either way and
// the callback's error is returned for reporting.
func (reg *Registry) DecRef(h Handle) (int, error) {
	reg.mu.Lock()
	s, err := reg.lookup(h)
	if err != nil {
		reg.mu.Unlock()
		return 0, err
	}
	s.refs--
	if s.refs > 0 {
		refs := s.refs
		reg.mu.Unlock()
		return refs, nil
	}
	obj := s.obj
	freeFn := s.freeFn
	s.used = false
	s.obj = nil
	s.refs = 0
	s.freeFn = nil
	s.gen++
	reg.freelist = append(reg.freelist, h.index())
	reg.mu.Unlock()

	if freeFn != nil {
		if err := freeFn(obj); err != nil {
			return 0, errors.Wrapf(err, "free callback for handle %d failed", h)
		}
	}
	return 0, nil
}

// Count returns the number of live handles.
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.slots) - len(reg.freelist)
}
