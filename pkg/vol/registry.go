package vol

import (
	"emperror.dev/errors"
	"github.com/rs/zerolog"

	"github.com/voltree-archive/voltree/pkg/handle"
)

// Registry is the single source of truth for which connector classes
// exist. It owns nothing but the class table; handles and their
// reference counts live in the handle registry, so a class handle
// behaves like any other handle.
//
// Calls are expected to be serialized by the embedding application, the
// registry performs no locking of its own.
type Registry struct {
	handles *handle.Registry
	classes []*Class
	loader  PluginLoader
	logger  *zerolog.Logger
}

// NewRegistry creates an empty class table. loader may be nil if dynamic
// connector loading is not wanted; RegisterByName then only finds classes
// registered beforehand.
func NewRegistry(handles *handle.Registry, loader PluginLoader, logger *zerolog.Logger) (*Registry, error) {
	if handles == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no handle registry")
	}
	reg := &Registry{
		handles: handles,
		classes: []*Class{},
		loader:  loader,
		logger:  logger,
	}
	return reg, nil
}

// Handles exposes the handle registry the class table mints from.
func (reg *Registry) Handles() *handle.Registry {
	return reg.handles
}

// LookupByName scans the table for a registered class. The class count
// is always small, a linear scan is fine.
func (reg *Registry) LookupByName(name string) (*Class, bool) {
	for _, cls := range reg.classes {
		if cls.name == name {
			return cls, true
		}
	}
	return nil, false
}

// IsRegistered reports whether a class with the given name exists.
func (reg *Registry) IsRegistered(name string) bool {
	_, ok := reg.LookupByName(name)
	return ok
}

// Register copies the descriptor into the table and mints a handle for
// the new class. User registrations must stay outside the reserved
// built-in value range; use RegisterBuiltin for shipped connectors.
func (reg *Registry) Register(desc *ClassDescriptor) (handle.Handle, error) {
	if desc != nil && desc.Value < ReservedValues {
		return 0, errors.Wrapf(ErrReservedValue, "class value %d below %d", desc.Value, ReservedValues)
	}
	return reg.register(desc)
}

// RegisterBuiltin registers one of the shipped connectors. Built-in
// classes can never be unregistered.
func (reg *Registry) RegisterBuiltin(desc *ClassDescriptor) (handle.Handle, error) {
	if desc != nil && desc.Value >= ReservedValues {
		return 0, errors.Wrapf(ErrReservedValue, "class value %d is not a built-in value", desc.Value)
	}
	return reg.register(desc)
}

func (reg *Registry) register(desc *ClassDescriptor) (handle.Handle, error) {
	if err := validateDescriptor(desc); err != nil {
		return 0, err
	}
	if _, ok := reg.LookupByName(desc.Name); ok {
		return 0, errors.Wrapf(ErrDuplicateClass, "class '%s'", desc.Name)
	}
	cls := newClass(desc)
	if lc, ok := cls.connector.(LifecycleConnector); ok {
		if err := lc.Initialize(nil); err != nil {
			return 0, errors.Wrapf(err, "cannot initialize class '%s'", desc.Name)
		}
	}
	h, err := reg.handles.Register(handle.KindConnector, cls, reg.freeClass)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot register handle for class '%s'", desc.Name)
	}
	cls.h = h
	reg.classes = append(reg.classes, cls)
	if reg.logger != nil {
		reg.logger.Debug().Str("class", cls.name).Uint("value", uint(cls.value)).Msg("connector class registered")
	}
	return h, nil
}

// freeClass runs when the last reference to a class handle is released:
// terminate the connector and drop the class from the table.
func (reg *Registry) freeClass(obj any) error {
	cls, ok := obj.(*Class)
	if !ok {
		return errors.Errorf("connector handle holds %T, not a class", obj)
	}
	for i, entry := range reg.classes {
		if entry == cls {
			reg.classes = append(reg.classes[:i], reg.classes[i+1:]...)
			break
		}
	}
	if reg.logger != nil {
		reg.logger.Debug().Str("class", cls.name).Msg("connector class released")
	}
	if lc, ok := cls.connector.(LifecycleConnector); ok {
		if err := lc.Terminate(nil); err != nil {
			return errors.Wrapf(err, "cannot terminate class '%s'", cls.name)
		}
	}
	return nil
}

// RegisterByName returns a handle for the named class, loading it
// dynamically if necessary. A repeated call yields the same underlying
// class with one more reference on its handle.
func (reg *Registry) RegisterByName(name string) (handle.Handle, error) {
	if name == "" {
		return 0, errors.Wrap(ErrInvalidArgument, "empty class name")
	}
	if cls, ok := reg.LookupByName(name); ok {
		if _, err := reg.handles.IncRef(cls.h); err != nil {
			return 0, errors.Wrapf(err, "cannot reference class '%s'", name)
		}
		return cls.h, nil
	}
	if reg.loader == nil {
		return 0, errors.Wrapf(ErrPluginNotFound, "class '%s' not registered and no plugin loader configured", name)
	}
	desc, err := reg.loader.Load(name)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot load connector plugin '%s'", name)
	}
	if desc.Name != name {
		return 0, errors.Errorf("plugin '%s' exports class '%s'", name, desc.Name)
	}
	return reg.Register(desc)
}

// GetClassHandle is RegisterByName without the load fallback: it
// references an already registered class.
func (reg *Registry) GetClassHandle(name string) (handle.Handle, error) {
	cls, ok := reg.LookupByName(name)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownClass, "class '%s'", name)
	}
	if _, err := reg.handles.IncRef(cls.h); err != nil {
		return 0, errors.Wrapf(err, "cannot reference class '%s'", name)
	}
	return cls.h, nil
}

// ResolveClass turns a class handle into its class without touching the
// reference count.
func (reg *Registry) ResolveClass(h handle.Handle) (*Class, error) {
	obj, err := reg.handles.ResolveVerified(h, handle.KindConnector)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownClass, "handle %d: %v", h, err)
	}
	cls, ok := obj.(*Class)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownClass, "handle %d holds %T", h, obj)
	}
	return cls, nil
}

// Unregister drops one reference from a class handle. Open containers
// served by the class keep functioning until individually closed;
// built-ins are never unregisterable.
func (reg *Registry) Unregister(h handle.Handle) error {
	cls, err := reg.ResolveClass(h)
	if err != nil {
		return err
	}
	if cls.IsBuiltin() {
		return errors.Wrapf(ErrReservedValue, "built-in class '%s' cannot be unregistered", cls.name)
	}
	if _, err := reg.handles.DecRef(h); err != nil {
		return errors.Wrapf(err, "cannot release class '%s'", cls.name)
	}
	return nil
}

// Initialize triggers the lifecycle initialization of a class explicitly,
// independent of registration.
func (reg *Registry) Initialize(h handle.Handle, cfg *Config) error {
	cls, err := reg.ResolveClass(h)
	if err != nil {
		return err
	}
	lc, ok := cls.connector.(LifecycleConnector)
	if !ok {
		return nil
	}
	if err := lc.Initialize(cfg); err != nil {
		return errors.Wrapf(err, "cannot initialize class '%s'", cls.name)
	}
	return nil
}

// Terminate triggers the lifecycle teardown of a class explicitly.
func (reg *Registry) Terminate(h handle.Handle, cfg *Config) error {
	cls, err := reg.ResolveClass(h)
	if err != nil {
		return err
	}
	lc, ok := cls.connector.(LifecycleConnector)
	if !ok {
		return nil
	}
	if err := lc.Terminate(cfg); err != nil {
		return errors.Wrapf(err, "cannot terminate class '%s'", cls.name)
	}
	return nil
}

// Classes returns a snapshot of the registered classes for diagnostics.
func (reg *Registry) Classes() []*Class {
	result := make([]*Class, len(reg.classes))
	copy(result, reg.classes)
	return result
}
