package vol

import (
	"testing"

	"emperror.dev/errors"

	"github.com/voltree-archive/voltree/pkg/handle"
)

// limited connector: file, group and dataset capability, no attributes.

type limitedObj struct {
	name   string
	closed bool
}

type limitedConnector struct {
	name       string
	calls      []string
	closeFail  bool
	terminated int
}

func (lc *limitedConnector) ConnectorName() string { return lc.name }

func (lc *limitedConnector) Initialize(cfg *Config) error { return nil }

func (lc *limitedConnector) Terminate(cfg *Config) error {
	lc.terminated++
	return nil
}

func (lc *limitedConnector) record(call string) {
	lc.calls = append(lc.calls, call)
}

func (lc *limitedConnector) FileCreate(name string, flags FileFlags, ccfg, acfg *Config, req *Request) (any, error) {
	lc.record("file_create")
	return &limitedObj{name: name}, nil
}

func (lc *limitedConnector) FileOpen(name string, flags FileFlags, acfg *Config, req *Request) (any, error) {
	lc.record("file_open")
	return &limitedObj{name: name}, nil
}

func (lc *limitedConnector) FileGet(obj any, args *FileGetArgs, req *Request) error {
	lc.record("file_get")
	if args.What == FileGetName {
		*args.Name = obj.(*limitedObj).name
	}
	return nil
}

func (lc *limitedConnector) FileSpecific(obj any, args *FileSpecificArgs, req *Request) error {
	lc.record("file_specific")
	if args.What == FileIsAccessible {
		*args.Accessible = args.Name != ""
	}
	return nil
}

func (lc *limitedConnector) FileOptional(obj any, args *OptionalArgs, req *Request) error {
	lc.record("file_optional")
	return nil
}

func (lc *limitedConnector) FileClose(obj any, req *Request) error {
	lc.record("file_close")
	obj.(*limitedObj).closed = true
	if lc.closeFail {
		return errors.New("close failed")
	}
	return nil
}

func (lc *limitedConnector) GroupCreate(parent any, loc *Loc, name string, ccfg, acfg *Config, req *Request) (any, error) {
	lc.record("group_create")
	return &limitedObj{name: name}, nil
}

func (lc *limitedConnector) GroupOpen(parent any, loc *Loc, name string, acfg *Config, req *Request) (any, error) {
	lc.record("group_open")
	return &limitedObj{name: name}, nil
}

func (lc *limitedConnector) GroupGet(obj any, args *GroupGetArgs, req *Request) error {
	lc.record("group_get")
	return nil
}

func (lc *limitedConnector) GroupSpecific(obj any, args *GroupSpecificArgs, req *Request) error {
	lc.record("group_specific")
	return nil
}

func (lc *limitedConnector) GroupOptional(obj any, args *OptionalArgs, req *Request) error {
	lc.record("group_optional")
	return nil
}

func (lc *limitedConnector) GroupClose(obj any, req *Request) error {
	lc.record("group_close")
	obj.(*limitedObj).closed = true
	return nil
}

func (lc *limitedConnector) DatasetCreate(parent any, loc *Loc, name string, dtype *Datatype, space *Dataspace, ccfg, acfg *Config, req *Request) (any, error) {
	lc.record("dataset_create")
	return &limitedObj{name: name}, nil
}

func (lc *limitedConnector) DatasetOpen(parent any, loc *Loc, name string, acfg *Config, req *Request) (any, error) {
	lc.record("dataset_open")
	return &limitedObj{name: name}, nil
}

func (lc *limitedConnector) DatasetRead(obj any, memType *Datatype, memSel, fileSel *Selection, cfg *Config, buf []byte, req *Request) error {
	lc.record("dataset_read")
	return nil
}

func (lc *limitedConnector) DatasetWrite(obj any, memType *Datatype, memSel, fileSel *Selection, cfg *Config, buf []byte, req *Request) error {
	lc.record("dataset_write")
	return nil
}

func (lc *limitedConnector) DatasetGet(obj any, args *DatasetGetArgs, req *Request) error {
	lc.record("dataset_get")
	return nil
}

func (lc *limitedConnector) DatasetSpecific(obj any, args *DatasetSpecificArgs, req *Request) error {
	lc.record("dataset_specific")
	return nil
}

func (lc *limitedConnector) DatasetOptional(obj any, args *OptionalArgs, req *Request) error {
	lc.record("dataset_optional")
	return nil
}

func (lc *limitedConnector) DatasetClose(obj any, req *Request) error {
	lc.record("dataset_close")
	obj.(*limitedObj).closed = true
	return nil
}

var _ FileConnector = &limitedConnector{}
var _ GroupConnector = &limitedConnector{}
var _ DatasetConnector = &limitedConnector{}
var _ LifecycleConnector = &limitedConnector{}

func limitedClass(t *testing.T, reg *Registry) *Class {
	t.Helper()
	h, err := reg.Register(&ClassDescriptor{
		Version:   DescriptorVersion,
		Value:     300,
		Name:      "limited",
		Connector: &limitedConnector{name: "limited"},
	})
	if err != nil {
		t.Fatalf("cannot register class - %v", err)
	}
	cls, err := reg.ResolveClass(h)
	if err != nil {
		t.Fatalf("cannot resolve class - %v", err)
	}
	return cls
}

func TestCapabilityAbsence(t *testing.T) {
	reg := newTestRegistry(t)
	cls := limitedClass(t, reg)
	conn := cls.Connector().(*limitedConnector)

	parent := &limitedObj{name: "parent"}
	_, err := AttrCreate(parent, SelfLoc(handle.KindGroup), cls, "attr", &Datatype{Class: TypeInteger, Size: 4}, &Dataspace{}, nil, nil, nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("missing attribute capability should fail with ErrUnsupported, got %v", err)
	}
	if len(conn.calls) != 0 {
		t.Errorf("connector callbacks ran despite missing capability: %v", conn.calls)
	}
	// reading through the missing capability must fail the same way
	if err := AttrRead(parent, cls, nil, []byte{0}, nil, nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("attr read should fail with ErrUnsupported, got %v", err)
	}
}

func TestDispatchArgumentValidation(t *testing.T) {
	reg := newTestRegistry(t)
	cls := limitedClass(t, reg)
	conn := cls.Connector().(*limitedConnector)

	if _, err := FileCreate(nil, "f", 0, nil, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil class should fail with ErrInvalidArgument, got %v", err)
	}
	if _, err := FileCreate(cls, "", 0, nil, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty name should fail with ErrInvalidArgument, got %v", err)
	}
	if _, err := GroupCreate(nil, SelfLoc(handle.KindFile), cls, "g", nil, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil parent should fail with ErrInvalidArgument, got %v", err)
	}
	if err := DatasetRead(&limitedObj{}, cls, nil, nil, nil, nil, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil buffer should fail with ErrInvalidArgument, got %v", err)
	}
	if err := FileGet(&limitedObj{}, cls, &FileGetArgs{What: 200}, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("out of range get tag should fail with ErrInvalidArgument, got %v", err)
	}
	if len(conn.calls) != 0 {
		t.Errorf("connector callbacks ran despite invalid arguments: %v", conn.calls)
	}
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	reg := newTestRegistry(t)
	cls := limitedClass(t, reg)
	binding := NewBinding(cls)

	obj, err := FileCreate(cls, "container", FlagTruncate, nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create file - %v", err)
	}
	h, err := WrapAndRegister(reg.Handles(), handle.KindFile, obj, binding)
	if err != nil {
		t.Fatalf("cannot wrap file - %v", err)
	}
	got, err := Unwrap(reg.Handles(), h, handle.KindFile)
	if err != nil {
		t.Fatalf("cannot unwrap - %v", err)
	}
	if got != obj {
		t.Errorf("unwrap returned %v, expected %v", got, obj)
	}
	// mismatched kind must fail without returning the object
	if _, err := Unwrap(reg.Handles(), h, handle.KindDataset); !errors.Is(err, handle.ErrWrongKind) {
		t.Errorf("kind mismatch should fail with ErrWrongKind, got %v", err)
	}
}

func TestBindingLifetime(t *testing.T) {
	reg := newTestRegistry(t)
	cls := limitedClass(t, reg)
	binding := NewBinding(cls)

	fileObj, _ := FileCreate(cls, "c", FlagTruncate, nil, nil, nil)
	fileH, err := WrapAndRegister(reg.Handles(), handle.KindFile, fileObj, binding)
	if err != nil {
		t.Fatalf("cannot wrap file - %v", err)
	}
	var groupHandles []handle.Handle
	for i := 0; i < 3; i++ {
		groupObj, err := GroupCreate(fileObj, SelfLoc(handle.KindFile), cls, "grp", nil, nil, nil)
		if err != nil {
			t.Fatalf("cannot create group - %v", err)
		}
		gh, err := WrapAndRegister(reg.Handles(), handle.KindGroup, groupObj, binding)
		if err != nil {
			t.Fatalf("cannot wrap group - %v", err)
		}
		groupHandles = append(groupHandles, gh)
	}
	if binding.RefCount() != 4 {
		t.Errorf("binding refcount %d != 4", binding.RefCount())
	}
	for _, gh := range groupHandles {
		if _, err := reg.Handles().DecRef(gh); err != nil {
			t.Errorf("cannot close group - %v", err)
		}
	}
	if binding.RefCount() != 1 {
		t.Errorf("binding refcount %d != 1 with container still open", binding.RefCount())
	}
	if binding.Released() {
		t.Errorf("binding released with container still open")
	}
	if _, err := reg.Handles().DecRef(fileH); err != nil {
		t.Errorf("cannot close file - %v", err)
	}
	if !binding.Released() || binding.RefCount() != 0 {
		t.Errorf("binding not released after last close (refs=%d)", binding.RefCount())
	}
}

func TestUnregisterWithOpenContainer(t *testing.T) {
	reg := newTestRegistry(t)
	cls := limitedClass(t, reg)
	conn := cls.Connector().(*limitedConnector)
	binding := NewBinding(cls)

	fileObj, _ := FileCreate(cls, "c", FlagTruncate, nil, nil, nil)
	fileH, err := WrapAndRegister(reg.Handles(), handle.KindFile, fileObj, binding)
	if err != nil {
		t.Fatalf("cannot wrap file - %v", err)
	}

	// the caller drops its registration reference while the container is
	// still open: the class must stay in the table, untouched
	if err := reg.Unregister(cls.Handle()); err != nil {
		t.Fatalf("cannot unregister - %v", err)
	}
	if !reg.IsRegistered("limited") {
		t.Errorf("class left the table with an open container")
	}
	if conn.terminated != 0 {
		t.Errorf("terminate ran %d times with an open container", conn.terminated)
	}
	var name string
	if err := FileGet(fileObj, cls, &FileGetArgs{What: FileGetName, Name: &name}, nil); err != nil {
		t.Errorf("dispatch failed after unregister - %v", err)
	}

	// the last close releases the binding and with it the class
	if _, err := reg.Handles().DecRef(fileH); err != nil {
		t.Errorf("cannot close file - %v", err)
	}
	if reg.IsRegistered("limited") {
		t.Errorf("class survived the last close")
	}
	if conn.terminated != 1 {
		t.Errorf("terminate ran %d times, expected 1", conn.terminated)
	}
	if reg.Handles().Count() != 0 {
		t.Errorf("%d live handles after teardown", reg.Handles().Count())
	}
}

func TestTeardownSurvivesCloseFailure(t *testing.T) {
	reg := newTestRegistry(t)
	cls := limitedClass(t, reg)
	cls.Connector().(*limitedConnector).closeFail = true
	binding := NewBinding(cls)

	fileObj, _ := FileCreate(cls, "c", FlagTruncate, nil, nil, nil)
	h, err := WrapAndRegister(reg.Handles(), handle.KindFile, fileObj, binding)
	if err != nil {
		t.Fatalf("cannot wrap file - %v", err)
	}
	if _, err := reg.Handles().DecRef(h); err == nil {
		t.Errorf("failing connector close not surfaced")
	}
	// handle gone, binding released, close ran exactly once
	if _, err := reg.Handles().Resolve(h); !errors.Is(err, handle.ErrNoObject) {
		t.Errorf("handle survived failing close")
	}
	if !binding.Released() {
		t.Errorf("binding survived failing close")
	}
	if !fileObj.(*limitedObj).closed {
		t.Errorf("connector close never ran")
	}
	if reg.Handles().Count() != 1 { // only the class handle remains
		t.Errorf("%d live handles after teardown", reg.Handles().Count())
	}
}

func TestFileIsAccessibleCarveOut(t *testing.T) {
	reg := newTestRegistry(t)
	limitedClass(t, reg)

	// no open object anywhere: the class comes from the access config
	accessible, err := reg.FileIsAccessible("somewhere", &Config{Connector: "limited"}, nil)
	if err != nil {
		t.Fatalf("cannot query accessibility - %v", err)
	}
	if !accessible {
		t.Errorf("container reported inaccessible")
	}
	if _, err := reg.FileIsAccessible("somewhere", &Config{Connector: "nosuch"}, nil); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("unknown class should fail with ErrUnknownClass, got %v", err)
	}
	if _, err := reg.FileIsAccessible("somewhere", nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing access config should fail with ErrInvalidArgument, got %v", err)
	}
}

func TestFileSpecificRejectsCarveOutTags(t *testing.T) {
	reg := newTestRegistry(t)
	cls := limitedClass(t, reg)
	obj := &limitedObj{}
	err := FileSpecific(obj, cls, &FileSpecificArgs{What: FileIsAccessible, Name: "x"}, nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("carve-out tag through ambient dispatch should fail, got %v", err)
	}
}
