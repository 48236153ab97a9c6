package vol

import (
	"testing"

	"emperror.dev/errors"

	"github.com/voltree-archive/voltree/pkg/handle"
)

type plainConnector struct {
	name        string
	initialized int
	terminated  int
}

func (pc *plainConnector) ConnectorName() string { return pc.name }

func (pc *plainConnector) Initialize(cfg *Config) error {
	pc.initialized++
	return nil
}

func (pc *plainConnector) Terminate(cfg *Config) error {
	pc.terminated++
	return nil
}

var _ Connector = &plainConnector{}
var _ LifecycleConnector = &plainConnector{}

func newTestRegistry(t *testing.T, descs ...*ClassDescriptor) *Registry {
	t.Helper()
	handles, err := handle.NewRegistry()
	if err != nil {
		t.Fatalf("cannot create handle registry - %v", err)
	}
	var loader PluginLoader
	if len(descs) > 0 {
		loader, err = NewStaticLoader(descs...)
		if err != nil {
			t.Fatalf("cannot create loader - %v", err)
		}
	}
	reg, err := NewRegistry(handles, loader, nil)
	if err != nil {
		t.Fatalf("cannot create registry - %v", err)
	}
	return reg
}

func descriptor(name string, value ClassValue) *ClassDescriptor {
	return &ClassDescriptor{
		Version:   DescriptorVersion,
		Value:     value,
		Name:      name,
		Connector: &plainConnector{name: name},
	}
}

func TestRegisterUnique(t *testing.T) {
	reg := newTestRegistry(t)
	h, err := reg.Register(descriptor("fancy", 300))
	if err != nil {
		t.Fatalf("cannot register class - %v", err)
	}
	if h.Kind() != handle.KindConnector {
		t.Errorf("class handle kind %s != %s", h.Kind(), handle.KindConnector)
	}
	// same name again must fail without mutating the table
	if _, err := reg.Register(descriptor("fancy", 301)); !errors.Is(err, ErrDuplicateClass) {
		t.Errorf("duplicate name should fail with ErrDuplicateClass, got %v", err)
	}
	if len(reg.Classes()) != 1 {
		t.Errorf("%d classes registered, expected 1", len(reg.Classes()))
	}
}

func TestRegisterInvalid(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := reg.Register(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil descriptor should fail with ErrInvalidArgument, got %v", err)
	}
	if _, err := reg.Register(descriptor("", 300)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty name should fail with ErrInvalidArgument, got %v", err)
	}
	if _, err := reg.Register(descriptor("low", 5)); !errors.Is(err, ErrReservedValue) {
		t.Errorf("reserved value should fail with ErrReservedValue, got %v", err)
	}
	desc := descriptor("unversioned", 300)
	desc.Version = 0
	if _, err := reg.Register(desc); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("descriptor version 0 should fail with ErrInvalidArgument, got %v", err)
	}
}

func TestBuiltinNeverUnregisterable(t *testing.T) {
	reg := newTestRegistry(t)
	h, err := reg.RegisterBuiltin(descriptor("native", ValueNative))
	if err != nil {
		t.Fatalf("cannot register built-in - %v", err)
	}
	if err := reg.Unregister(h); !errors.Is(err, ErrReservedValue) {
		t.Errorf("unregistering a built-in should fail with ErrReservedValue, got %v", err)
	}
	if !reg.IsRegistered("native") {
		t.Errorf("built-in vanished after failed unregister")
	}
}

func TestRegisterByNameReferenceSymmetry(t *testing.T) {
	reg := newTestRegistry(t, descriptor("dynamic", 400))

	h1, err := reg.RegisterByName("dynamic")
	if err != nil {
		t.Fatalf("cannot register by name - %v", err)
	}
	h2, err := reg.RegisterByName("dynamic")
	if err != nil {
		t.Fatalf("cannot register by name twice - %v", err)
	}
	if h1 != h2 {
		t.Errorf("two handles %d, %d for one class", h1, h2)
	}
	cls1, _ := reg.ResolveClass(h1)
	cls2, _ := reg.ResolveClass(h2)
	if cls1 != cls2 {
		t.Errorf("two registry entries for one name")
	}
	if refs, _ := reg.Handles().RefCount(h1); refs != 2 {
		t.Errorf("refcount %d != 2", refs)
	}

	conn := cls1.Connector().(*plainConnector)
	if err := reg.Unregister(h1); err != nil {
		t.Errorf("cannot unregister first reference - %v", err)
	}
	if conn.terminated != 0 {
		t.Errorf("terminate ran with a live reference")
	}
	if err := reg.Unregister(h2); err != nil {
		t.Errorf("cannot unregister second reference - %v", err)
	}
	if conn.terminated != 1 {
		t.Errorf("terminate ran %d times, expected 1", conn.terminated)
	}
	if reg.IsRegistered("dynamic") {
		t.Errorf("class survived its last unregister")
	}
}

func TestRegisterByNameLoads(t *testing.T) {
	reg := newTestRegistry(t, descriptor("loadable", 500))
	if reg.IsRegistered("loadable") {
		t.Fatalf("class registered before load")
	}
	h, err := reg.RegisterByName("loadable")
	if err != nil {
		t.Fatalf("cannot load class - %v", err)
	}
	cls, err := reg.ResolveClass(h)
	if err != nil {
		t.Fatalf("cannot resolve loaded class - %v", err)
	}
	if cls.Name() != "loadable" {
		t.Errorf("loaded class name '%s'", cls.Name())
	}
	conn := cls.Connector().(*plainConnector)
	if conn.initialized != 1 {
		t.Errorf("initialize ran %d times, expected 1", conn.initialized)
	}
}

func TestRegisterByNameNotFound(t *testing.T) {
	reg := newTestRegistry(t, descriptor("other", 400))
	if _, err := reg.RegisterByName("missing"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("missing plugin should fail with ErrPluginNotFound, got %v", err)
	}
	// without a loader the registry must fail the same way
	noLoader := newTestRegistry(t)
	if _, err := noLoader.RegisterByName("missing"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("missing plugin without loader should fail with ErrPluginNotFound, got %v", err)
	}
}

func TestGetClassHandle(t *testing.T) {
	reg := newTestRegistry(t)
	h, err := reg.Register(descriptor("queryable", 400))
	if err != nil {
		t.Fatalf("cannot register class - %v", err)
	}
	h2, err := reg.GetClassHandle("queryable")
	if err != nil {
		t.Fatalf("cannot get class handle - %v", err)
	}
	if h2 != h {
		t.Errorf("get class handle returned %d, expected %d", h2, h)
	}
	if refs, _ := reg.Handles().RefCount(h); refs != 2 {
		t.Errorf("refcount %d != 2 after get", refs)
	}
	if _, err := reg.GetClassHandle("absent"); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("unknown class should fail with ErrUnknownClass, got %v", err)
	}
}

func TestExplicitLifecycle(t *testing.T) {
	reg := newTestRegistry(t)
	h, err := reg.Register(descriptor("managed", 400))
	if err != nil {
		t.Fatalf("cannot register class - %v", err)
	}
	cls, _ := reg.ResolveClass(h)
	conn := cls.Connector().(*plainConnector)
	if err := reg.Initialize(h, nil); err != nil {
		t.Errorf("cannot initialize - %v", err)
	}
	if err := reg.Terminate(h, nil); err != nil {
		t.Errorf("cannot terminate - %v", err)
	}
	// one init from registration, one explicit
	if conn.initialized != 2 || conn.terminated != 1 {
		t.Errorf("lifecycle counts init=%d term=%d", conn.initialized, conn.terminated)
	}
}
