package mem

import (
	"testing"

	"emperror.dev/errors"
	"github.com/go-test/deep"

	"github.com/voltree-archive/voltree/pkg/vol"
)

var (
	i64 = vol.Datatype{Class: vol.TypeInteger, Size: 8, Signed: true}
	f32 = vol.Datatype{Class: vol.TypeFloat, Size: 4}
)

func newTestFile(t *testing.T, conn *Connector, name string) any {
	t.Helper()
	file, err := conn.FileCreate(name, vol.FlagTruncate, nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create container '%s' - %v", name, err)
	}
	return file
}

func selfLoc() *vol.Loc {
	return &vol.Loc{Type: vol.LocSelf}
}

func nameLoc(name string) *vol.Loc {
	return &vol.Loc{Type: vol.LocName, Name: name}
}

func TestFileLifecycle(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "scratch")

	if _, err := conn.FileCreate("scratch", vol.FlagExclusive, nil, nil, nil); !errors.Is(err, ErrExists) {
		t.Errorf("exclusive create over existing container should fail, got %v", err)
	}
	if _, err := conn.FileCreate("scratch", 0, nil, nil, nil); !errors.Is(err, ErrExists) {
		t.Errorf("plain create over existing container should fail, got %v", err)
	}

	var name string
	if err := conn.FileGet(file, &vol.FileGetArgs{What: vol.FileGetName, Name: &name}, nil); err != nil {
		t.Errorf("cannot get file name - %v", err)
	}
	if name != "scratch" {
		t.Errorf("file name '%s'", name)
	}

	var accessible bool
	args := &vol.FileSpecificArgs{What: vol.FileIsAccessible, Name: "scratch", Accessible: &accessible}
	if err := conn.FileSpecific(nil, args, nil); err != nil {
		t.Errorf("cannot probe container - %v", err)
	}
	if !accessible {
		t.Errorf("existing container reported inaccessible")
	}

	if err := conn.FileClose(file, nil); err != nil {
		t.Errorf("cannot close container - %v", err)
	}
	reopened, err := conn.FileOpen("scratch", vol.FlagReadWrite, nil, nil)
	if err != nil {
		t.Fatalf("cannot reopen container - %v", err)
	}
	if reopened != file {
		t.Errorf("reopen returned a different container")
	}

	if err := conn.FileSpecific(nil, &vol.FileSpecificArgs{What: vol.FileDelete, Name: "scratch"}, nil); err != nil {
		t.Errorf("cannot delete container - %v", err)
	}
	if err := conn.FileSpecific(nil, args, nil); err != nil {
		t.Errorf("cannot probe container - %v", err)
	}
	if accessible {
		t.Errorf("deleted container reported accessible")
	}
}

func TestGroupHierarchy(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "tree")

	run, err := conn.GroupCreate(file, selfLoc(), "run", nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create group - %v", err)
	}
	if _, err := conn.GroupCreate(file, selfLoc(), "run/raw", nil, nil, nil); err != nil {
		t.Fatalf("cannot create nested group - %v", err)
	}
	if _, err := conn.GroupCreate(file, selfLoc(), "run", nil, nil, nil); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate group should fail, got %v", err)
	}

	opened, err := conn.GroupOpen(file, selfLoc(), "run/raw", nil, nil)
	if err != nil {
		t.Fatalf("cannot open nested group - %v", err)
	}
	if _, err := conn.GroupOpen(file, selfLoc(), "run/missing", nil, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("opening a missing group should fail, got %v", err)
	}

	info := &vol.GroupInfo{}
	if err := conn.GroupGet(run, &vol.GroupGetArgs{What: vol.GroupGetInfo, Loc: selfLoc(), Info: info}, nil); err != nil {
		t.Errorf("cannot get group info - %v", err)
	}
	if info.LinkCount != 1 {
		t.Errorf("link count %d != 1", info.LinkCount)
	}

	if err := conn.GroupClose(opened, nil); err != nil {
		t.Errorf("cannot close group - %v", err)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "data")

	space := &vol.Dataspace{Dims: []uint64{8}}
	dset, err := conn.DatasetCreate(file, selfLoc(), "values", &i64, space, nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create dataset - %v", err)
	}

	payload := make([]byte, 64)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := conn.DatasetWrite(dset, &i64, nil, nil, nil, payload, nil); err != nil {
		t.Fatalf("cannot write dataset - %v", err)
	}

	readback := make([]byte, 64)
	if err := conn.DatasetRead(dset, &i64, nil, nil, nil, readback, nil); err != nil {
		t.Fatalf("cannot read dataset - %v", err)
	}
	if diff := deep.Equal(payload, readback); diff != nil {
		t.Errorf("dataset round trip differs: %v", diff)
	}

	// partial one dimensional read
	part := make([]byte, 16)
	sel := &vol.Selection{Offset: []uint64{2}, Count: []uint64{2}}
	if err := conn.DatasetRead(dset, &i64, nil, sel, nil, part, nil); err != nil {
		t.Fatalf("cannot read selection - %v", err)
	}
	if diff := deep.Equal(payload[16:32], part); diff != nil {
		t.Errorf("selection read differs: %v", diff)
	}

	// out of bounds selection
	bad := &vol.Selection{Offset: []uint64{7}, Count: []uint64{2}}
	if err := conn.DatasetRead(dset, &i64, nil, bad, nil, part, nil); err == nil {
		t.Errorf("selection beyond the extent read back")
	}

	// an offset that would wrap a signed conversion must fail cleanly
	wrap := &vol.Selection{Offset: []uint64{1 << 62}, Count: []uint64{1}}
	if err := conn.DatasetRead(dset, &i64, nil, wrap, nil, part, nil); err == nil {
		t.Errorf("wrapping selection offset read back")
	}

	var size uint64
	if err := conn.DatasetGet(dset, &vol.DatasetGetArgs{What: vol.DatasetGetStorageSize, StorageSize: &size}, nil); err != nil {
		t.Errorf("cannot get storage size - %v", err)
	}
	if size != 64 {
		t.Errorf("storage size %d != 64", size)
	}
}

func TestDatasetSetExtent(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "grow")

	space := &vol.Dataspace{Dims: []uint64{2}, MaxDims: []uint64{16}}
	dset, err := conn.DatasetCreate(file, selfLoc(), "log", &f32, space, nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create dataset - %v", err)
	}
	if err := conn.DatasetWrite(dset, &f32, nil, nil, nil, []byte{1, 2, 3, 4, 5, 6, 7, 8}, nil); err != nil {
		t.Fatalf("cannot write dataset - %v", err)
	}

	args := &vol.DatasetSpecificArgs{What: vol.DatasetSetExtent, Dims: []uint64{4}}
	if err := conn.DatasetSpecific(dset, args, nil); err != nil {
		t.Fatalf("cannot grow dataset - %v", err)
	}

	got := &vol.Dataspace{}
	if err := conn.DatasetGet(dset, &vol.DatasetGetArgs{What: vol.DatasetGetSpace, Space: got}, nil); err != nil {
		t.Fatalf("cannot get dataspace - %v", err)
	}
	if diff := deep.Equal([]uint64{4}, got.Dims); diff != nil {
		t.Errorf("extent differs after grow: %v", diff)
	}

	// old data survives, new region reads as zero
	readback := make([]byte, 16)
	if err := conn.DatasetRead(dset, &f32, nil, nil, nil, readback, nil); err != nil {
		t.Fatalf("cannot read grown dataset - %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 0, 0, 0, 0, 0}
	if diff := deep.Equal(want, readback); diff != nil {
		t.Errorf("grown dataset content differs: %v", diff)
	}
}

func TestNamedDatatype(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "types")

	if _, err := conn.DatatypeCommit(file, selfLoc(), "timestamp", &i64, nil, nil, nil); err != nil {
		t.Fatalf("cannot commit datatype - %v", err)
	}
	nt, err := conn.DatatypeOpen(file, selfLoc(), "timestamp", nil, nil)
	if err != nil {
		t.Fatalf("cannot open committed datatype - %v", err)
	}
	var got vol.Datatype
	if err := conn.DatatypeGet(nt, &vol.DatatypeGetArgs{What: vol.DatatypeGetDescriptor, Descriptor: &got}, nil); err != nil {
		t.Fatalf("cannot get datatype descriptor - %v", err)
	}
	if diff := deep.Equal(i64, got); diff != nil {
		t.Errorf("committed datatype differs: %v", diff)
	}
}

func TestAttributes(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "meta")
	grp, err := conn.GroupCreate(file, selfLoc(), "run", nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create group - %v", err)
	}

	scalar := &vol.Dataspace{}
	attr, err := conn.AttrCreate(grp, selfLoc(), "version", &i64, scalar, nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create attribute - %v", err)
	}
	if _, err := conn.AttrCreate(grp, selfLoc(), "version", &i64, scalar, nil, nil, nil); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate attribute should fail, got %v", err)
	}

	payload := []byte{42, 0, 0, 0, 0, 0, 0, 0}
	if err := conn.AttrWrite(attr, &i64, payload, nil, nil); err != nil {
		t.Fatalf("cannot write attribute - %v", err)
	}
	readback := make([]byte, 8)
	if err := conn.AttrRead(attr, &i64, readback, nil, nil); err != nil {
		t.Fatalf("cannot read attribute - %v", err)
	}
	if diff := deep.Equal(payload, readback); diff != nil {
		t.Errorf("attribute round trip differs: %v", diff)
	}

	// attributes on the container land on its root group
	if _, err := conn.AttrCreate(file, selfLoc(), "created", &i64, scalar, nil, nil, nil); err != nil {
		t.Fatalf("cannot create attribute on container - %v", err)
	}

	var exists bool
	probe := &vol.AttrSpecificArgs{What: vol.AttrExists, Name: "version", Exists: &exists}
	if err := conn.AttrSpecific(grp, selfLoc(), probe, nil); err != nil {
		t.Errorf("cannot probe attribute - %v", err)
	}
	if !exists {
		t.Errorf("existing attribute reported missing")
	}

	rename := &vol.AttrSpecificArgs{What: vol.AttrRename, Name: "version", NewName: "revision"}
	if err := conn.AttrSpecific(grp, selfLoc(), rename, nil); err != nil {
		t.Errorf("cannot rename attribute - %v", err)
	}
	if _, err := conn.AttrOpen(grp, selfLoc(), "revision", nil, nil); err != nil {
		t.Errorf("cannot open renamed attribute - %v", err)
	}

	del := &vol.AttrSpecificArgs{What: vol.AttrDelete, Name: "revision"}
	if err := conn.AttrSpecific(grp, selfLoc(), del, nil); err != nil {
		t.Errorf("cannot delete attribute - %v", err)
	}
	if _, err := conn.AttrOpen(grp, selfLoc(), "revision", nil, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted attribute still opens, got %v", err)
	}
}

func TestLinks(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "links")
	if _, err := conn.GroupCreate(file, selfLoc(), "b-group", nil, nil, nil); err != nil {
		t.Fatalf("cannot create group - %v", err)
	}
	if _, err := conn.GroupCreate(file, selfLoc(), "a-group", nil, nil, nil); err != nil {
		t.Fatalf("cannot create group - %v", err)
	}

	// soft link to a path that exists
	soft := &vol.LinkCreateArgs{What: vol.LinkCreateSoft, Target: "/a-group"}
	if err := conn.LinkCreate(soft, file, nameLoc("alias"), nil, nil, nil); err != nil {
		t.Fatalf("cannot create soft link - %v", err)
	}
	if _, err := conn.GroupOpen(file, selfLoc(), "alias", nil, nil); err != nil {
		t.Errorf("cannot open through soft link - %v", err)
	}

	var value string
	get := &vol.LinkGetArgs{What: vol.LinkGetValue, Value: &value}
	if err := conn.LinkGet(file, nameLoc("alias"), get, nil); err != nil {
		t.Errorf("cannot get link value - %v", err)
	}
	if value != "/a-group" {
		t.Errorf("link value '%s'", value)
	}

	// iteration by name, increasing
	var names []string
	iter := &vol.LinkSpecificArgs{
		What:    vol.LinkIterate,
		IdxKind: vol.IndexName,
		Order:   vol.OrderIncreasing,
		Visit: func(name string, info *vol.LinkInfo) error {
			names = append(names, name)
			return nil
		},
	}
	if err := conn.LinkSpecific(file, selfLoc(), iter, nil); err != nil {
		t.Fatalf("cannot iterate links - %v", err)
	}
	if diff := deep.Equal([]string{"a-group", "alias", "b-group"}, names); diff != nil {
		t.Errorf("iteration by name differs: %v", diff)
	}

	// iteration by creation order, decreasing
	names = nil
	iter.IdxKind = vol.IndexCreationOrder
	iter.Order = vol.OrderDecreasing
	if err := conn.LinkSpecific(file, selfLoc(), iter, nil); err != nil {
		t.Fatalf("cannot iterate links - %v", err)
	}
	if diff := deep.Equal([]string{"alias", "a-group", "b-group"}, names); diff != nil {
		t.Errorf("iteration by creation order differs: %v", diff)
	}

	// move then delete
	if err := conn.LinkMove(file, nameLoc("alias"), file, nameLoc("a-group/alias"), nil, nil, nil); err != nil {
		t.Fatalf("cannot move link - %v", err)
	}
	var exists bool
	probe := &vol.LinkSpecificArgs{What: vol.LinkExists, Exists: &exists}
	if err := conn.LinkSpecific(file, nameLoc("alias"), probe, nil); err != nil {
		t.Errorf("cannot probe link - %v", err)
	}
	if exists {
		t.Errorf("moved link still at the old name")
	}
	if err := conn.LinkSpecific(file, nameLoc("a-group/alias"), &vol.LinkSpecificArgs{What: vol.LinkDelete}, nil); err != nil {
		t.Errorf("cannot delete link - %v", err)
	}
}

func TestHardLinks(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "hard")
	grp, err := conn.GroupCreate(file, selfLoc(), "data", nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create group - %v", err)
	}
	space := &vol.Dataspace{Dims: []uint64{2}}
	dset, err := conn.DatasetCreate(grp, selfLoc(), "values", &f32, space, nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create dataset - %v", err)
	}
	if err := conn.DatasetWrite(dset, &f32, nil, nil, nil, []byte{1, 2, 3, 4, 5, 6, 7, 8}, nil); err != nil {
		t.Fatalf("cannot write dataset - %v", err)
	}

	hard := &vol.LinkCreateArgs{What: vol.LinkCreateHard, TargetObj: grp}
	if err := conn.LinkCreate(hard, file, nameLoc("alias"), nil, nil, nil); err != nil {
		t.Fatalf("cannot create hard link - %v", err)
	}
	aliased, err := conn.GroupOpen(file, selfLoc(), "alias", nil, nil)
	if err != nil {
		t.Fatalf("cannot open through hard link - %v", err)
	}
	if aliased != grp {
		t.Errorf("hard link resolved to a different group")
	}

	// a hard link back to the root makes the hierarchy cyclic
	up := &vol.LinkCreateArgs{What: vol.LinkCreateHard, TargetObj: file}
	if err := conn.LinkCreate(up, grp, nameLoc("up"), nil, nil, nil); err != nil {
		t.Fatalf("cannot create cyclic link - %v", err)
	}

	// aliases and the cycle count once: root, data, values
	info := &vol.FileInfo{}
	if err := conn.FileGet(file, &vol.FileGetArgs{What: vol.FileGetInfo, Info: info}, nil); err != nil {
		t.Fatalf("cannot get file info - %v", err)
	}
	if info.ObjectCount != 3 {
		t.Errorf("object count %d != 3", info.ObjectCount)
	}

	// copying the cyclic group terminates, the copy stays readable
	if err := conn.ObjectCopy(file, selfLoc(), "data", file, selfLoc(), "copy", nil, nil, nil); err != nil {
		t.Fatalf("cannot copy cyclic group - %v", err)
	}
	if _, err := conn.DatasetOpen(file, selfLoc(), "copy/values", nil, nil); err != nil {
		t.Errorf("cannot open copied dataset - %v", err)
	}
}

func TestIndexLocation(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "indexed")
	for _, name := range []string{"zeta", "alpha", "mu"} {
		if _, err := conn.GroupCreate(file, selfLoc(), name, nil, nil, nil); err != nil {
			t.Fatalf("cannot create group '%s' - %v", name, err)
		}
	}

	// second link by name order is "mu"
	loc := &vol.Loc{Type: vol.LocIndex, IdxKind: vol.IndexName, Order: vol.OrderIncreasing, Position: 1}
	obj, objType, err := conn.ObjectOpen(file, loc, nil)
	if err != nil {
		t.Fatalf("cannot open by index - %v", err)
	}
	if objType != vol.ObjectTypeGroup {
		t.Errorf("object type %s != group", objType)
	}
	mu, err := conn.GroupOpen(file, selfLoc(), "mu", nil, nil)
	if err != nil {
		t.Fatalf("cannot open group - %v", err)
	}
	if obj != mu {
		t.Errorf("index location resolved to the wrong group")
	}

	loc.Position = 99
	if _, _, err := conn.ObjectOpen(file, loc, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("out of range index should fail, got %v", err)
	}
}

func TestReferenceLocation(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "refs")
	if _, err := conn.GroupCreate(file, selfLoc(), "deep/down", nil, nil, nil); err != nil {
		t.Fatalf("cannot create nested group - %v", err)
	}
	ref := &vol.Reference{Type: vol.RefObject, Path: "/deep/down"}
	encoded, err := ref.Encode()
	if err != nil {
		t.Fatalf("cannot encode reference - %v", err)
	}
	loc := &vol.Loc{Type: vol.LocRef, RefType: vol.RefObject, Ref: encoded}
	obj, objType, err := conn.ObjectOpen(file, loc, nil)
	if err != nil {
		t.Fatalf("cannot dereference - %v", err)
	}
	if objType != vol.ObjectTypeGroup || obj == nil {
		t.Errorf("dereference came back wrong: %T, %s", obj, objType)
	}
}

func TestObjectCopy(t *testing.T) {
	conn := NewConnector()
	file := newTestFile(t, conn, "copy")
	grp, err := conn.GroupCreate(file, selfLoc(), "src", nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create group - %v", err)
	}
	space := &vol.Dataspace{Dims: []uint64{2}}
	dset, err := conn.DatasetCreate(grp, selfLoc(), "values", &f32, space, nil, nil, nil)
	if err != nil {
		t.Fatalf("cannot create dataset - %v", err)
	}
	if err := conn.DatasetWrite(dset, &f32, nil, nil, nil, []byte{1, 2, 3, 4, 5, 6, 7, 8}, nil); err != nil {
		t.Fatalf("cannot write dataset - %v", err)
	}

	if err := conn.ObjectCopy(file, selfLoc(), "src", file, selfLoc(), "dst", nil, nil, nil); err != nil {
		t.Fatalf("cannot copy object - %v", err)
	}

	// the copy is deep: mutating the source leaves the copy untouched
	if err := conn.DatasetWrite(dset, &f32, nil, nil, nil, []byte{9, 9, 9, 9, 9, 9, 9, 9}, nil); err != nil {
		t.Fatalf("cannot overwrite source - %v", err)
	}
	clone, err := conn.DatasetOpen(file, selfLoc(), "dst/values", nil, nil)
	if err != nil {
		t.Fatalf("cannot open copied dataset - %v", err)
	}
	readback := make([]byte, 8)
	if err := conn.DatasetRead(clone, &f32, nil, nil, nil, readback, nil); err != nil {
		t.Fatalf("cannot read copied dataset - %v", err)
	}
	if diff := deep.Equal([]byte{1, 2, 3, 4, 5, 6, 7, 8}, readback); diff != nil {
		t.Errorf("copied dataset differs: %v", diff)
	}
}

func TestReadOnlyContainer(t *testing.T) {
	conn := NewConnector()
	newTestFile(t, conn, "frozen")
	file, err := conn.FileOpen("frozen", vol.FlagReadOnly, nil, nil)
	if err != nil {
		t.Fatalf("cannot reopen read only - %v", err)
	}
	if _, err := conn.GroupCreate(file, selfLoc(), "nope", nil, nil, nil); !errors.Is(err, ErrReadOnly) {
		t.Errorf("group create on read only container should fail, got %v", err)
	}
	space := &vol.Dataspace{Dims: []uint64{1}}
	if _, err := conn.DatasetCreate(file, selfLoc(), "nope", &i64, space, nil, nil, nil); !errors.Is(err, ErrReadOnly) {
		t.Errorf("dataset create on read only container should fail, got %v", err)
	}
}

func TestAsyncTokens(t *testing.T) {
	conn := NewConnector()
	req := &vol.Request{}
	if _, err := conn.FileCreate("async", vol.FlagTruncate, nil, nil, req); err != nil {
		t.Fatalf("cannot create container - %v", err)
	}
	if req.Token == nil {
		t.Fatalf("no async token produced")
	}
	status, err := conn.RequestWait(req.Token, 0)
	if err != nil {
		t.Fatalf("cannot wait on request - %v", err)
	}
	if status != vol.RequestSucceeded {
		t.Errorf("request status %s", status)
	}
	if _, err := conn.RequestCancel(req.Token); err != nil {
		t.Errorf("cannot cancel request - %v", err)
	}
	if err := conn.RequestFree(req.Token); err != nil {
		t.Errorf("cannot free request - %v", err)
	}
	if _, err := conn.RequestWait("bogus", 0); err == nil {
		t.Errorf("foreign token accepted")
	}
}
