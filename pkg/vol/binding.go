package vol

import (
	"github.com/google/uuid"
)

// Binding is the live association between an open container and the
// connector class serving it. Every wrapper descended from the same
// container shares one binding; its reference count is the number of
// open objects depending on the container's class. While that count is
// above zero the binding holds one reference on the class handle, so
// the class outlives any unregister until the last object closes.
type Binding struct {
	id       uuid.UUID
	cls      *Class
	refs     int
	released bool
}

// NewBinding associates a freshly created/opened container with its
// class. The count starts at zero; wrapping the container's objects
// references it.
func NewBinding(cls *Class) *Binding {
	return &Binding{
		id:  uuid.New(),
		cls: cls,
	}
}

func (bnd *Binding) ID() uuid.UUID { return bnd.id }
func (bnd *Binding) Class() *Class { return bnd.cls }
func (bnd *Binding) RefCount() int { return bnd.refs }

// Released reports whether the binding's count returned to zero.
func (bnd *Binding) Released() bool { return bnd.released }

func (bnd *Binding) incRef() int {
	bnd.released = false
	bnd.refs++
	return bnd.refs
}

func (bnd *Binding) decRef() int {
	if bnd.refs > 0 {
		bnd.refs--
	}
	if bnd.refs == 0 {
		bnd.released = true
	}
	return bnd.refs
}
