package api

import (
	"testing"

	"emperror.dev/errors"
	"github.com/go-test/deep"
	"github.com/rs/zerolog"

	"github.com/voltree-archive/voltree/pkg/backend/mem"
	"github.com/voltree-archive/voltree/pkg/handle"
	"github.com/voltree-archive/voltree/pkg/vol"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := New(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("cannot create library - %v", err)
	}
	return lib
}

func registerMemory(t *testing.T, lib *Library) handle.Handle {
	t.Helper()
	h, err := lib.RegisterBuiltin(mem.Descriptor())
	if err != nil {
		t.Fatalf("cannot register memory connector - %v", err)
	}
	return h
}

func memCfg() *vol.Config {
	return &vol.Config{Connector: "memory"}
}

func selfLoc() *vol.Loc {
	return &vol.Loc{Type: vol.LocSelf}
}

func nameLoc(name string) *vol.Loc {
	return &vol.Loc{Type: vol.LocName, Name: name}
}

// noAttrConnector carries file and group capabilities only.
type noAttrConnector struct {
	vol.FileConnector
	vol.GroupConnector
}

func (nc *noAttrConnector) ConnectorName() string { return "limited" }

func TestEndToEnd(t *testing.T) {
	lib := newTestLibrary(t)

	inner := mem.NewConnector()
	desc := &vol.ClassDescriptor{
		Version:   vol.DescriptorVersion,
		Value:     300,
		Name:      "limited",
		Connector: &noAttrConnector{FileConnector: inner, GroupConnector: inner},
	}
	clsH, err := lib.RegisterConnector(desc)
	if err != nil {
		t.Fatalf("cannot register class - %v", err)
	}

	acfg := &vol.Config{Connector: "limited"}
	fileH, err := lib.FileCreate("scratch", vol.FlagTruncate, nil, acfg, nil)
	if err != nil {
		t.Fatalf("cannot create container - %v", err)
	}
	grpH, err := lib.GroupCreate(fileH, selfLoc(), "run", nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create group - %v", err)
	}

	// the class carries no attribute capability: the distinct error, no
	// connector callback involved
	dtype := vol.Datatype{Class: vol.TypeInteger, Size: 8, Signed: true}
	scalar := &vol.Dataspace{}
	if _, err := lib.AttrCreate(grpH, selfLoc(), "version", &dtype, scalar, nil, nil, nil); !errors.Is(err, vol.ErrUnsupported) {
		t.Errorf("absent attribute capability should fail with ErrUnsupported, got %v", err)
	}

	// group still works after the failed attribute call
	if _, err := lib.GroupGetInfo(grpH, selfLoc(), nil); err != nil {
		t.Errorf("group broken after unsupported operation - %v", err)
	}

	if err := lib.Close(grpH); err != nil {
		t.Errorf("cannot close group - %v", err)
	}
	if err := lib.Close(fileH); err != nil {
		t.Errorf("cannot close container - %v", err)
	}

	// all object handles are gone, unregistration must succeed
	if err := lib.UnregisterConnector(clsH); err != nil {
		t.Errorf("cannot unregister class - %v", err)
	}
	if lib.Classes().IsRegistered("limited") {
		t.Errorf("class survived unregistration")
	}
	if lib.Handles().Count() != 0 {
		t.Errorf("%d handles leaked", lib.Handles().Count())
	}
}

func TestDatasetThroughHandles(t *testing.T) {
	lib := newTestLibrary(t)
	registerMemory(t, lib)

	fileH, err := lib.FileCreate("data", vol.FlagTruncate, nil, memCfg(), nil)
	if err != nil {
		t.Fatalf("cannot create container - %v", err)
	}
	dtype := vol.Datatype{Class: vol.TypeFloat, Size: 4}
	space := &vol.Dataspace{Dims: []uint64{4}}
	dsetH, err := lib.DatasetCreate(fileH, selfLoc(), "values", &dtype, space, nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create dataset - %v", err)
	}

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	if err := lib.DatasetWrite(dsetH, &dtype, nil, nil, nil, payload, nil); err != nil {
		t.Fatalf("cannot write dataset - %v", err)
	}
	readback := make([]byte, 16)
	if err := lib.DatasetRead(dsetH, &dtype, nil, nil, nil, readback, nil); err != nil {
		t.Fatalf("cannot read dataset - %v", err)
	}
	if diff := deep.Equal(payload, readback); diff != nil {
		t.Errorf("dataset round trip differs: %v", diff)
	}

	gotSpace, err := lib.DatasetGetSpace(dsetH, nil)
	if err != nil {
		t.Fatalf("cannot get dataspace - %v", err)
	}
	if diff := deep.Equal([]uint64{4}, gotSpace.Dims); diff != nil {
		t.Errorf("dataspace differs: %v", diff)
	}

	if err := lib.DatasetSetExtent(dsetH, []uint64{8}, nil); err != nil {
		t.Fatalf("cannot grow dataset - %v", err)
	}
	size, err := lib.DatasetGetStorageSize(dsetH, nil)
	if err != nil {
		t.Fatalf("cannot get storage size - %v", err)
	}
	if size != 32 {
		t.Errorf("storage size %d != 32 after grow", size)
	}

	if err := lib.Close(dsetH); err != nil {
		t.Errorf("cannot close dataset - %v", err)
	}
	if err := lib.Close(fileH); err != nil {
		t.Errorf("cannot close container - %v", err)
	}
}

func TestHandleKindMismatch(t *testing.T) {
	lib := newTestLibrary(t)
	registerMemory(t, lib)

	fileH, err := lib.FileCreate("kinds", vol.FlagTruncate, nil, memCfg(), nil)
	if err != nil {
		t.Fatalf("cannot create container - %v", err)
	}
	grpH, err := lib.GroupCreate(fileH, selfLoc(), "run", nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create group - %v", err)
	}

	dtype := vol.Datatype{Class: vol.TypeInteger, Size: 4}
	if err := lib.DatasetRead(grpH, &dtype, nil, nil, nil, make([]byte, 4), nil); !errors.Is(err, handle.ErrWrongKind) {
		t.Errorf("dataset read on a group handle should fail with ErrWrongKind, got %v", err)
	}

	// a closed handle is stale, not of the wrong kind
	if err := lib.Close(grpH); err != nil {
		t.Fatalf("cannot close group - %v", err)
	}
	if _, err := lib.GroupGetInfo(grpH, selfLoc(), nil); !errors.Is(err, handle.ErrNoObject) {
		t.Errorf("closed handle should fail with ErrNoObject, got %v", err)
	}
}

func TestObjectOpenDerivesKind(t *testing.T) {
	lib := newTestLibrary(t)
	registerMemory(t, lib)

	fileH, err := lib.FileCreate("typed", vol.FlagTruncate, nil, memCfg(), nil)
	if err != nil {
		t.Fatalf("cannot create container - %v", err)
	}
	grpH, err := lib.GroupCreate(fileH, selfLoc(), "run", nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create group - %v", err)
	}
	if err := lib.Close(grpH); err != nil {
		t.Fatalf("cannot close group - %v", err)
	}

	objH, objType, err := lib.ObjectOpen(fileH, nameLoc("run"), nil)
	if err != nil {
		t.Fatalf("cannot open object - %v", err)
	}
	if objType != vol.ObjectTypeGroup {
		t.Errorf("object type %s != group", objType)
	}
	if objH.Kind() != handle.KindGroup {
		t.Errorf("handle kind %s != group", objH.Kind())
	}
	if _, err := lib.GroupGetInfo(objH, selfLoc(), nil); err != nil {
		t.Errorf("object handle unusable as group - %v", err)
	}
}

func TestLinksAndAttributesThroughHandles(t *testing.T) {
	lib := newTestLibrary(t)
	registerMemory(t, lib)

	fileH, err := lib.FileCreate("linked", vol.FlagTruncate, nil, memCfg(), nil)
	if err != nil {
		t.Fatalf("cannot create container - %v", err)
	}
	grpH, err := lib.GroupCreate(fileH, selfLoc(), "data", nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create group - %v", err)
	}

	if err := lib.LinkCreateSoft("/data", fileH, nameLoc("alias"), nil, nil, nil); err != nil {
		t.Fatalf("cannot create soft link - %v", err)
	}
	value, err := lib.LinkGetValue(fileH, nameLoc("alias"), nil)
	if err != nil {
		t.Fatalf("cannot get link value - %v", err)
	}
	if value != "/data" {
		t.Errorf("link value '%s'", value)
	}

	var names []string
	visit := func(name string, info *vol.LinkInfo) error {
		names = append(names, name)
		return nil
	}
	if err := lib.LinkIterate(fileH, selfLoc(), vol.IndexName, vol.OrderIncreasing, visit, nil); err != nil {
		t.Fatalf("cannot iterate links - %v", err)
	}
	if diff := deep.Equal([]string{"alias", "data"}, names); diff != nil {
		t.Errorf("iterated names differ: %v", diff)
	}

	dtype := vol.Datatype{Class: vol.TypeInteger, Size: 8, Signed: true}
	scalar := &vol.Dataspace{}
	attrH, err := lib.AttrCreate(grpH, selfLoc(), "version", &dtype, scalar, nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create attribute - %v", err)
	}
	if err := lib.AttrWrite(attrH, &dtype, []byte{1, 0, 0, 0, 0, 0, 0, 0}, nil, nil); err != nil {
		t.Fatalf("cannot write attribute - %v", err)
	}
	exists, err := lib.AttrExists(grpH, selfLoc(), "version", nil)
	if err != nil {
		t.Fatalf("cannot probe attribute - %v", err)
	}
	if !exists {
		t.Errorf("existing attribute reported missing")
	}
	if err := lib.Close(attrH); err != nil {
		t.Errorf("cannot close attribute - %v", err)
	}
	if err := lib.AttrDelete(grpH, selfLoc(), "version", nil); err != nil {
		t.Errorf("cannot delete attribute - %v", err)
	}

	if err := lib.LinkDelete(fileH, nameLoc("alias"), nil); err != nil {
		t.Errorf("cannot delete link - %v", err)
	}
	exists, err = lib.LinkExists(fileH, nameLoc("alias"), nil)
	if err != nil {
		t.Errorf("cannot probe link - %v", err)
	}
	if exists {
		t.Errorf("deleted link still exists")
	}
}

func TestFileCarveOuts(t *testing.T) {
	lib := newTestLibrary(t)
	registerMemory(t, lib)

	fileH, err := lib.FileCreate("probe", vol.FlagTruncate, nil, memCfg(), nil)
	if err != nil {
		t.Fatalf("cannot create container - %v", err)
	}
	if err := lib.Close(fileH); err != nil {
		t.Fatalf("cannot close container - %v", err)
	}

	accessible, err := lib.FileIsAccessible("probe", memCfg(), nil)
	if err != nil {
		t.Fatalf("cannot probe container - %v", err)
	}
	if !accessible {
		t.Errorf("existing container reported inaccessible")
	}

	// config naming no class
	if _, err := lib.FileIsAccessible("probe", &vol.Config{Connector: "nope"}, nil); !errors.Is(err, vol.ErrUnknownClass) {
		t.Errorf("unknown class should fail with ErrUnknownClass, got %v", err)
	}

	if err := lib.FileDelete("probe", memCfg(), nil); err != nil {
		t.Fatalf("cannot delete container - %v", err)
	}
	accessible, err = lib.FileIsAccessible("probe", memCfg(), nil)
	if err != nil {
		t.Fatalf("cannot probe container - %v", err)
	}
	if accessible {
		t.Errorf("deleted container reported accessible")
	}
}

func TestRetainKeepsObjectAlive(t *testing.T) {
	lib := newTestLibrary(t)
	registerMemory(t, lib)

	fileH, err := lib.FileCreate("retained", vol.FlagTruncate, nil, memCfg(), nil)
	if err != nil {
		t.Fatalf("cannot create container - %v", err)
	}
	if err := lib.Retain(fileH); err != nil {
		t.Fatalf("cannot retain handle - %v", err)
	}
	if err := lib.Close(fileH); err != nil {
		t.Fatalf("cannot drop first reference - %v", err)
	}
	// one reference left, the handle still resolves
	if _, err := lib.FileGetName(fileH, nil); err != nil {
		t.Errorf("retained handle unusable - %v", err)
	}
	if err := lib.Close(fileH); err != nil {
		t.Fatalf("cannot drop last reference - %v", err)
	}
	if _, err := lib.FileGetName(fileH, nil); !errors.Is(err, handle.ErrNoObject) {
		t.Errorf("fully closed handle should be stale, got %v", err)
	}
}

func TestAsyncThroughFacade(t *testing.T) {
	lib := newTestLibrary(t)
	registerMemory(t, lib)

	req := &vol.Request{}
	fileH, err := lib.FileCreate("async", vol.FlagTruncate, nil, memCfg(), req)
	if err != nil {
		t.Fatalf("cannot create container - %v", err)
	}
	if !req.Pending() {
		t.Fatalf("memory connector produced no async token")
	}
	status, err := vol.RequestWait(req, 0)
	if err != nil {
		t.Fatalf("cannot wait on request - %v", err)
	}
	if status != vol.RequestSucceeded {
		t.Errorf("request status %s", status)
	}
	if err := vol.RequestFree(req); err != nil {
		t.Errorf("cannot free request - %v", err)
	}
	if err := lib.Close(fileH); err != nil {
		t.Errorf("cannot close container - %v", err)
	}
}
