package vol

import (
	"emperror.dev/errors"

	"github.com/voltree-archive/voltree/pkg/handle"
)

// Wrapper pairs a connector private object with the binding of the
// container it descends from. It is the only thing ever stored under a
// handle for container objects. The private object is owned by the
// connector that produced it; the core never looks inside.
type Wrapper struct {
	obj     any
	binding *Binding
}

func (w *Wrapper) Object() any       { return w.obj }
func (w *Wrapper) Binding() *Binding { return w.binding }

// free drops the wrapper's reference on its binding. It does not close
// the private object; the handle free callback has already done that
// when free runs.
func (w *Wrapper) free() error {
	if w.binding == nil {
		return errors.Errorf("wrapper already freed")
	}
	w.binding.decRef()
	w.binding = nil
	w.obj = nil
	return nil
}

// closeDispatch returns the close trampoline for an openable kind.
func closeDispatch(kind handle.Kind) (func(obj any, cls *Class) error, error) {
	switch kind {
	case handle.KindFile:
		return func(obj any, cls *Class) error { return FileClose(obj, cls, nil) }, nil
	case handle.KindGroup:
		return func(obj any, cls *Class) error { return GroupClose(obj, cls, nil) }, nil
	case handle.KindDataset:
		return func(obj any, cls *Class) error { return DatasetClose(obj, cls, nil) }, nil
	case handle.KindDatatype:
		return func(obj any, cls *Class) error { return DatatypeClose(obj, cls, nil) }, nil
	case handle.KindAttribute:
		return func(obj any, cls *Class) error { return AttrClose(obj, cls, nil) }, nil
	default:
		return nil, errors.Wrapf(ErrInvalidArgument, "kind '%s' is not wrappable", kind)
	}
}

// WrapAndRegister wraps a connector private object and mints a handle
// for it. The handle's free callback closes the object through the
// owning connector first and releases the wrapper afterwards, so a
// failing close can be reported while the handle slot is reclaimed
// regardless.
//
// The binding's first reference pins the class handle: an unregister
// while objects are open drops the caller's reference but the class
// stays in the table until the binding releases.
func WrapAndRegister(hreg *handle.Registry, kind handle.Kind, obj any, binding *Binding) (handle.Handle, error) {
	if obj == nil {
		return 0, errors.Wrap(ErrInvalidArgument, "no object to wrap")
	}
	if binding == nil {
		return 0, errors.Wrap(ErrInvalidArgument, "no binding")
	}
	closeFn, err := closeDispatch(kind)
	if err != nil {
		return 0, err
	}
	cls := binding.Class()
	w := &Wrapper{obj: obj, binding: binding}
	if binding.incRef() == 1 {
		if _, err := hreg.IncRef(cls.Handle()); err != nil {
			binding.decRef()
			return 0, errors.Wrapf(err, "cannot reference class '%s'", cls.Name())
		}
	}
	h, err := hreg.Register(kind, w, func(o any) error {
		wrapper, ok := o.(*Wrapper)
		if !ok {
			return errors.Errorf("handle holds %T, not a wrapper", o)
		}
		bnd := wrapper.binding
		closeErr := closeFn(wrapper.obj, bnd.Class())
		freeErr := wrapper.free()
		var classErr error
		if bnd.Released() {
			_, classErr = hreg.DecRef(bnd.Class().Handle())
		}
		return errors.Combine(closeErr, freeErr, classErr)
	})
	if err != nil {
		if binding.decRef() == 0 {
			_, _ = hreg.DecRef(cls.Handle())
		}
		return 0, errors.Wrapf(err, "cannot register %s wrapper", kind)
	}
	return h, nil
}

// Unwrap returns the connector private object under a handle, verifying
// the handle kind. A live handle of another kind fails with the kind
// mismatch error, a stale one with the no-object error.
func Unwrap(hreg *handle.Registry, h handle.Handle, kind handle.Kind) (any, error) {
	w, err := resolveWrapper(hreg, h, kind)
	if err != nil {
		return nil, err
	}
	return w.obj, nil
}

// ResolveWrapper returns the wrapper under a handle of any wrappable
// kind. Used where the parent of an operation may be a file or a group.
func ResolveWrapper(hreg *handle.Registry, h handle.Handle) (*Wrapper, error) {
	obj, err := hreg.Resolve(h)
	if err != nil {
		return nil, err
	}
	w, ok := obj.(*Wrapper)
	if !ok {
		return nil, errors.Wrapf(handle.ErrWrongKind, "handle %d holds %T, not a wrapper", h, obj)
	}
	return w, nil
}

func resolveWrapper(hreg *handle.Registry, h handle.Handle, kind handle.Kind) (*Wrapper, error) {
	obj, err := hreg.ResolveVerified(h, kind)
	if err != nil {
		return nil, err
	}
	w, ok := obj.(*Wrapper)
	if !ok {
		return nil, errors.Wrapf(handle.ErrWrongKind, "handle %d holds %T, not a wrapper", h, obj)
	}
	return w, nil
}
