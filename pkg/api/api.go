// Package api is the handle based surface of the dispatch core.
// Applications hold opaque handles; every operation resolves the handle
// to its wrapped connector object, dispatches through the owning class
// and wraps fresh objects into new handles. Closing a handle drops one
// reference; the object is closed and its container binding released
// when the last reference goes.
package api

import (
	"emperror.dev/errors"
	"github.com/rs/zerolog"

	"github.com/voltree-archive/voltree/pkg/handle"
	"github.com/voltree-archive/voltree/pkg/vol"
)

// Library owns one handle registry and one class table.
type Library struct {
	handles *handle.Registry
	classes *vol.Registry
	logger  zerolog.Logger
}

// New creates an empty library. loader may be nil, connector classes
// then have to be registered explicitly.
func New(loader vol.PluginLoader, logger zerolog.Logger) (*Library, error) {
	handles, err := handle.NewRegistry()
	if err != nil {
		return nil, err
	}
	classes, err := vol.NewRegistry(handles, loader, &logger)
	if err != nil {
		return nil, err
	}
	return &Library{
		handles: handles,
		classes: classes,
		logger:  logger,
	}, nil
}

// Handles exposes the handle registry.
func (lib *Library) Handles() *handle.Registry { return lib.handles }

// Classes exposes the class table.
func (lib *Library) Classes() *vol.Registry { return lib.classes }

// Close releases one reference of any handle: objects are closed, class
// registrations terminated when their last reference goes.
func (lib *Library) Close(h handle.Handle) error {
	_, err := lib.handles.DecRef(h)
	return err
}

// Retain adds a reference to any handle.
func (lib *Library) Retain(h handle.Handle) error {
	_, err := lib.handles.IncRef(h)
	return err
}

// ---------------------------------------------------------------------------
// connector classes

func (lib *Library) RegisterConnector(desc *vol.ClassDescriptor) (handle.Handle, error) {
	return lib.classes.Register(desc)
}

func (lib *Library) RegisterBuiltin(desc *vol.ClassDescriptor) (handle.Handle, error) {
	return lib.classes.RegisterBuiltin(desc)
}

func (lib *Library) RegisterConnectorByName(name string) (handle.Handle, error) {
	return lib.classes.RegisterByName(name)
}

func (lib *Library) UnregisterConnector(h handle.Handle) error {
	return lib.classes.Unregister(h)
}

// wrapper resolves a handle of a specific kind to its object wrapper.
func (lib *Library) wrapper(h handle.Handle, kind handle.Kind) (*vol.Wrapper, error) {
	obj, err := lib.handles.ResolveVerified(h, kind)
	if err != nil {
		return nil, err
	}
	w, ok := obj.(*vol.Wrapper)
	if !ok {
		return nil, errors.Wrapf(handle.ErrWrongKind, "handle %d holds %T, not a wrapper", h, obj)
	}
	return w, nil
}

// parent resolves a handle that may be of any object kind, for
// operations whose parent can be a file as well as a group.
func (lib *Library) parent(h handle.Handle) (*vol.Wrapper, error) {
	return vol.ResolveWrapper(lib.handles, h)
}

// ---------------------------------------------------------------------------
// file

func (lib *Library) classFor(acfg *vol.Config) (*vol.Class, error) {
	if acfg == nil || acfg.Connector == "" {
		return nil, errors.Wrap(vol.ErrInvalidArgument, "access configuration names no connector")
	}
	cls, ok := lib.classes.LookupByName(acfg.Connector)
	if !ok {
		return nil, errors.Wrapf(vol.ErrUnknownClass, "class '%s'", acfg.Connector)
	}
	return cls, nil
}

func (lib *Library) FileCreate(name string, flags vol.FileFlags, ccfg, acfg *vol.Config, req *vol.Request) (handle.Handle, error) {
	cls, err := lib.classFor(acfg)
	if err != nil {
		return 0, err
	}
	obj, err := vol.FileCreate(cls, name, flags, ccfg, acfg, req)
	if err != nil {
		return 0, err
	}
	return vol.WrapAndRegister(lib.handles, handle.KindFile, obj, vol.NewBinding(cls))
}

func (lib *Library) FileOpen(name string, flags vol.FileFlags, acfg *vol.Config, req *vol.Request) (handle.Handle, error) {
	cls, err := lib.classFor(acfg)
	if err != nil {
		return 0, err
	}
	obj, err := vol.FileOpen(cls, name, flags, acfg, req)
	if err != nil {
		return 0, err
	}
	return vol.WrapAndRegister(lib.handles, handle.KindFile, obj, vol.NewBinding(cls))
}

func (lib *Library) FileGetName(h handle.Handle, req *vol.Request) (string, error) {
	w, err := lib.wrapper(h, handle.KindFile)
	if err != nil {
		return "", err
	}
	var name string
	args := &vol.FileGetArgs{What: vol.FileGetName, Name: &name}
	if err := vol.FileGet(w.Object(), w.Binding().Class(), args, req); err != nil {
		return "", err
	}
	return name, nil
}

func (lib *Library) FileGetInfo(h handle.Handle, req *vol.Request) (*vol.FileInfo, error) {
	w, err := lib.wrapper(h, handle.KindFile)
	if err != nil {
		return nil, err
	}
	info := &vol.FileInfo{}
	args := &vol.FileGetArgs{What: vol.FileGetInfo, Info: info}
	if err := vol.FileGet(w.Object(), w.Binding().Class(), args, req); err != nil {
		return nil, err
	}
	return info, nil
}

func (lib *Library) FileFlush(h handle.Handle, req *vol.Request) error {
	w, err := lib.wrapper(h, handle.KindFile)
	if err != nil {
		return err
	}
	args := &vol.FileSpecificArgs{What: vol.FileFlush}
	return vol.FileSpecific(w.Object(), w.Binding().Class(), args, req)
}

// FileIsAccessible probes a container without opening it; the class
// comes from the access configuration.
func (lib *Library) FileIsAccessible(name string, acfg *vol.Config, req *vol.Request) (bool, error) {
	return lib.classes.FileIsAccessible(name, acfg, req)
}

// FileDelete removes a container that is not open.
func (lib *Library) FileDelete(name string, acfg *vol.Config, req *vol.Request) error {
	return lib.classes.FileDelete(name, acfg, req)
}

// ---------------------------------------------------------------------------
// group

func (lib *Library) GroupCreate(parent handle.Handle, loc *vol.Loc, name string, ccfg, acfg *vol.Config, req *vol.Request) (handle.Handle, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return 0, err
	}
	obj, err := vol.GroupCreate(pw.Object(), loc, pw.Binding().Class(), name, ccfg, acfg, req)
	if err != nil {
		return 0, err
	}
	return vol.WrapAndRegister(lib.handles, handle.KindGroup, obj, pw.Binding())
}

func (lib *Library) GroupOpen(parent handle.Handle, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (handle.Handle, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return 0, err
	}
	obj, err := vol.GroupOpen(pw.Object(), loc, pw.Binding().Class(), name, acfg, req)
	if err != nil {
		return 0, err
	}
	return vol.WrapAndRegister(lib.handles, handle.KindGroup, obj, pw.Binding())
}

func (lib *Library) GroupGetInfo(h handle.Handle, loc *vol.Loc, req *vol.Request) (*vol.GroupInfo, error) {
	w, err := lib.wrapper(h, handle.KindGroup)
	if err != nil {
		return nil, err
	}
	info := &vol.GroupInfo{}
	args := &vol.GroupGetArgs{What: vol.GroupGetInfo, Loc: loc, Info: info}
	if err := vol.GroupGet(w.Object(), w.Binding().Class(), args, req); err != nil {
		return nil, err
	}
	return info, nil
}

func (lib *Library) GroupFlush(h handle.Handle, req *vol.Request) error {
	w, err := lib.wrapper(h, handle.KindGroup)
	if err != nil {
		return err
	}
	args := &vol.GroupSpecificArgs{What: vol.GroupFlush}
	return vol.GroupSpecific(w.Object(), w.Binding().Class(), args, req)
}

// ---------------------------------------------------------------------------
// dataset

func (lib *Library) DatasetCreate(parent handle.Handle, loc *vol.Loc, name string, dtype *vol.Datatype, space *vol.Dataspace, ccfg, acfg *vol.Config, req *vol.Request) (handle.Handle, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return 0, err
	}
	obj, err := vol.DatasetCreate(pw.Object(), loc, pw.Binding().Class(), name, dtype, space, ccfg, acfg, req)
	if err != nil {
		return 0, err
	}
	return vol.WrapAndRegister(lib.handles, handle.KindDataset, obj, pw.Binding())
}

func (lib *Library) DatasetOpen(parent handle.Handle, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (handle.Handle, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return 0, err
	}
	obj, err := vol.DatasetOpen(pw.Object(), loc, pw.Binding().Class(), name, acfg, req)
	if err != nil {
		return 0, err
	}
	return vol.WrapAndRegister(lib.handles, handle.KindDataset, obj, pw.Binding())
}

func (lib *Library) DatasetRead(h handle.Handle, memType *vol.Datatype, memSel, fileSel *vol.Selection, cfg *vol.Config, buf []byte, req *vol.Request) error {
	w, err := lib.wrapper(h, handle.KindDataset)
	if err != nil {
		return err
	}
	return vol.DatasetRead(w.Object(), w.Binding().Class(), memType, memSel, fileSel, cfg, buf, req)
}

func (lib *Library) DatasetWrite(h handle.Handle, memType *vol.Datatype, memSel, fileSel *vol.Selection, cfg *vol.Config, buf []byte, req *vol.Request) error {
	w, err := lib.wrapper(h, handle.KindDataset)
	if err != nil {
		return err
	}
	return vol.DatasetWrite(w.Object(), w.Binding().Class(), memType, memSel, fileSel, cfg, buf, req)
}

func (lib *Library) DatasetGetType(h handle.Handle, req *vol.Request) (*vol.Datatype, error) {
	w, err := lib.wrapper(h, handle.KindDataset)
	if err != nil {
		return nil, err
	}
	dtype := &vol.Datatype{}
	args := &vol.DatasetGetArgs{What: vol.DatasetGetType, Type: dtype}
	if err := vol.DatasetGet(w.Object(), w.Binding().Class(), args, req); err != nil {
		return nil, err
	}
	return dtype, nil
}

func (lib *Library) DatasetGetSpace(h handle.Handle, req *vol.Request) (*vol.Dataspace, error) {
	w, err := lib.wrapper(h, handle.KindDataset)
	if err != nil {
		return nil, err
	}
	space := &vol.Dataspace{}
	args := &vol.DatasetGetArgs{What: vol.DatasetGetSpace, Space: space}
	if err := vol.DatasetGet(w.Object(), w.Binding().Class(), args, req); err != nil {
		return nil, err
	}
	return space, nil
}

func (lib *Library) DatasetGetStorageSize(h handle.Handle, req *vol.Request) (uint64, error) {
	w, err := lib.wrapper(h, handle.KindDataset)
	if err != nil {
		return 0, err
	}
	var size uint64
	args := &vol.DatasetGetArgs{What: vol.DatasetGetStorageSize, StorageSize: &size}
	if err := vol.DatasetGet(w.Object(), w.Binding().Class(), args, req); err != nil {
		return 0, err
	}
	return size, nil
}

func (lib *Library) DatasetSetExtent(h handle.Handle, dims []uint64, req *vol.Request) error {
	w, err := lib.wrapper(h, handle.KindDataset)
	if err != nil {
		return err
	}
	args := &vol.DatasetSpecificArgs{What: vol.DatasetSetExtent, Dims: dims}
	return vol.DatasetSpecific(w.Object(), w.Binding().Class(), args, req)
}

func (lib *Library) DatasetFlush(h handle.Handle, req *vol.Request) error {
	w, err := lib.wrapper(h, handle.KindDataset)
	if err != nil {
		return err
	}
	args := &vol.DatasetSpecificArgs{What: vol.DatasetFlush}
	return vol.DatasetSpecific(w.Object(), w.Binding().Class(), args, req)
}

// ---------------------------------------------------------------------------
// datatype

func (lib *Library) DatatypeCommit(parent handle.Handle, loc *vol.Loc, name string, dtype *vol.Datatype, ccfg, acfg *vol.Config, req *vol.Request) (handle.Handle, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return 0, err
	}
	obj, err := vol.DatatypeCommit(pw.Object(), loc, pw.Binding().Class(), name, dtype, ccfg, acfg, req)
	if err != nil {
		return 0, err
	}
	return vol.WrapAndRegister(lib.handles, handle.KindDatatype, obj, pw.Binding())
}

func (lib *Library) DatatypeOpen(parent handle.Handle, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (handle.Handle, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return 0, err
	}
	obj, err := vol.DatatypeOpen(pw.Object(), loc, pw.Binding().Class(), name, acfg, req)
	if err != nil {
		return 0, err
	}
	return vol.WrapAndRegister(lib.handles, handle.KindDatatype, obj, pw.Binding())
}

func (lib *Library) DatatypeGetDescriptor(h handle.Handle, req *vol.Request) (*vol.Datatype, error) {
	w, err := lib.wrapper(h, handle.KindDatatype)
	if err != nil {
		return nil, err
	}
	dtype := &vol.Datatype{}
	args := &vol.DatatypeGetArgs{What: vol.DatatypeGetDescriptor, Descriptor: dtype}
	if err := vol.DatatypeGet(w.Object(), w.Binding().Class(), args, req); err != nil {
		return nil, err
	}
	return dtype, nil
}

// ---------------------------------------------------------------------------
// attribute

func (lib *Library) AttrCreate(parent handle.Handle, loc *vol.Loc, name string, dtype *vol.Datatype, space *vol.Dataspace, ccfg, acfg *vol.Config, req *vol.Request) (handle.Handle, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return 0, err
	}
	obj, err := vol.AttrCreate(pw.Object(), loc, pw.Binding().Class(), name, dtype, space, ccfg, acfg, req)
	if err != nil {
		return 0, err
	}
	return vol.WrapAndRegister(lib.handles, handle.KindAttribute, obj, pw.Binding())
}

func (lib *Library) AttrOpen(parent handle.Handle, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (handle.Handle, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return 0, err
	}
	obj, err := vol.AttrOpen(pw.Object(), loc, pw.Binding().Class(), name, acfg, req)
	if err != nil {
		return 0, err
	}
	return vol.WrapAndRegister(lib.handles, handle.KindAttribute, obj, pw.Binding())
}

func (lib *Library) AttrRead(h handle.Handle, memType *vol.Datatype, buf []byte, cfg *vol.Config, req *vol.Request) error {
	w, err := lib.wrapper(h, handle.KindAttribute)
	if err != nil {
		return err
	}
	return vol.AttrRead(w.Object(), w.Binding().Class(), memType, buf, cfg, req)
}

func (lib *Library) AttrWrite(h handle.Handle, memType *vol.Datatype, buf []byte, cfg *vol.Config, req *vol.Request) error {
	w, err := lib.wrapper(h, handle.KindAttribute)
	if err != nil {
		return err
	}
	return vol.AttrWrite(w.Object(), w.Binding().Class(), memType, buf, cfg, req)
}

func (lib *Library) AttrGetInfo(h handle.Handle, req *vol.Request) (*vol.AttrInfo, error) {
	w, err := lib.wrapper(h, handle.KindAttribute)
	if err != nil {
		return nil, err
	}
	info := &vol.AttrInfo{}
	args := &vol.AttrGetArgs{What: vol.AttrGetInfo, Info: info}
	if err := vol.AttrGet(w.Object(), w.Binding().Class(), args, req); err != nil {
		return nil, err
	}
	return info, nil
}

func (lib *Library) AttrExists(parent handle.Handle, loc *vol.Loc, name string, req *vol.Request) (bool, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return false, err
	}
	var exists bool
	args := &vol.AttrSpecificArgs{What: vol.AttrExists, Name: name, Exists: &exists}
	if err := vol.AttrSpecific(pw.Object(), loc, pw.Binding().Class(), args, req); err != nil {
		return false, err
	}
	return exists, nil
}

func (lib *Library) AttrDelete(parent handle.Handle, loc *vol.Loc, name string, req *vol.Request) error {
	pw, err := lib.parent(parent)
	if err != nil {
		return err
	}
	args := &vol.AttrSpecificArgs{What: vol.AttrDelete, Name: name}
	return vol.AttrSpecific(pw.Object(), loc, pw.Binding().Class(), args, req)
}

func (lib *Library) AttrRename(parent handle.Handle, loc *vol.Loc, name, newName string, req *vol.Request) error {
	pw, err := lib.parent(parent)
	if err != nil {
		return err
	}
	args := &vol.AttrSpecificArgs{What: vol.AttrRename, Name: name, NewName: newName}
	return vol.AttrSpecific(pw.Object(), loc, pw.Binding().Class(), args, req)
}

// ---------------------------------------------------------------------------
// link

func (lib *Library) LinkCreateSoft(target string, parent handle.Handle, loc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	pw, err := lib.parent(parent)
	if err != nil {
		return err
	}
	args := &vol.LinkCreateArgs{What: vol.LinkCreateSoft, Target: target}
	return vol.LinkCreate(args, pw.Object(), loc, pw.Binding().Class(), ccfg, acfg, req)
}

func (lib *Library) LinkCreateHard(target handle.Handle, targetLoc *vol.Loc, parent handle.Handle, loc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	tw, err := lib.parent(target)
	if err != nil {
		return err
	}
	pw, err := lib.parent(parent)
	if err != nil {
		return err
	}
	if tw.Binding().Class() != pw.Binding().Class() {
		return errors.Wrap(vol.ErrInvalidArgument, "hard link target belongs to another connector")
	}
	args := &vol.LinkCreateArgs{What: vol.LinkCreateHard, TargetObj: tw.Object(), TargetLoc: targetLoc}
	return vol.LinkCreate(args, pw.Object(), loc, pw.Binding().Class(), ccfg, acfg, req)
}

func (lib *Library) LinkCopy(srcParent handle.Handle, srcLoc *vol.Loc, dstParent handle.Handle, dstLoc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	return lib.linkTransfer(srcParent, srcLoc, dstParent, dstLoc, ccfg, acfg, req, false)
}

func (lib *Library) LinkMove(srcParent handle.Handle, srcLoc *vol.Loc, dstParent handle.Handle, dstLoc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	return lib.linkTransfer(srcParent, srcLoc, dstParent, dstLoc, ccfg, acfg, req, true)
}

func (lib *Library) linkTransfer(srcParent handle.Handle, srcLoc *vol.Loc, dstParent handle.Handle, dstLoc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request, move bool) error {
	sw, err := lib.parent(srcParent)
	if err != nil {
		return err
	}
	dw, err := lib.parent(dstParent)
	if err != nil {
		return err
	}
	if sw.Binding().Class() != dw.Binding().Class() {
		return errors.Wrap(vol.ErrInvalidArgument, "link transfer across connectors")
	}
	if move {
		return vol.LinkMove(sw.Object(), srcLoc, dw.Object(), dstLoc, sw.Binding().Class(), ccfg, acfg, req)
	}
	return vol.LinkCopy(sw.Object(), srcLoc, dw.Object(), dstLoc, sw.Binding().Class(), ccfg, acfg, req)
}

func (lib *Library) LinkGetInfo(parent handle.Handle, loc *vol.Loc, req *vol.Request) (*vol.LinkInfo, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return nil, err
	}
	info := &vol.LinkInfo{}
	args := &vol.LinkGetArgs{What: vol.LinkGetInfo, Info: info}
	if err := vol.LinkGet(pw.Object(), loc, pw.Binding().Class(), args, req); err != nil {
		return nil, err
	}
	return info, nil
}

func (lib *Library) LinkGetValue(parent handle.Handle, loc *vol.Loc, req *vol.Request) (string, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return "", err
	}
	var value string
	args := &vol.LinkGetArgs{What: vol.LinkGetValue, Value: &value}
	if err := vol.LinkGet(pw.Object(), loc, pw.Binding().Class(), args, req); err != nil {
		return "", err
	}
	return value, nil
}

func (lib *Library) LinkExists(parent handle.Handle, loc *vol.Loc, req *vol.Request) (bool, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return false, err
	}
	var exists bool
	args := &vol.LinkSpecificArgs{What: vol.LinkExists, Exists: &exists}
	if err := vol.LinkSpecific(pw.Object(), loc, pw.Binding().Class(), args, req); err != nil {
		return false, err
	}
	return exists, nil
}

func (lib *Library) LinkDelete(parent handle.Handle, loc *vol.Loc, req *vol.Request) error {
	pw, err := lib.parent(parent)
	if err != nil {
		return err
	}
	args := &vol.LinkSpecificArgs{What: vol.LinkDelete}
	return vol.LinkSpecific(pw.Object(), loc, pw.Binding().Class(), args, req)
}

func (lib *Library) LinkIterate(parent handle.Handle, loc *vol.Loc, idx vol.IndexKind, order vol.IterOrder, visit vol.LinkIterFunc, req *vol.Request) error {
	pw, err := lib.parent(parent)
	if err != nil {
		return err
	}
	args := &vol.LinkSpecificArgs{What: vol.LinkIterate, IdxKind: idx, Order: order, Visit: visit}
	return vol.LinkSpecific(pw.Object(), loc, pw.Binding().Class(), args, req)
}

// ---------------------------------------------------------------------------
// object

// ObjectOpen opens whatever the location resolves to and mints a handle
// of the discovered kind.
func (lib *Library) ObjectOpen(parent handle.Handle, loc *vol.Loc, req *vol.Request) (handle.Handle, vol.ObjectType, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return 0, vol.ObjectTypeUnknown, err
	}
	obj, objType, err := vol.ObjectOpen(pw.Object(), loc, pw.Binding().Class(), req)
	if err != nil {
		return 0, objType, err
	}
	kind, err := vol.ObjectTypeToKind(objType)
	if err != nil {
		return 0, objType, err
	}
	h, err := vol.WrapAndRegister(lib.handles, kind, obj, pw.Binding())
	if err != nil {
		return 0, objType, err
	}
	return h, objType, nil
}

func (lib *Library) ObjectCopy(srcParent handle.Handle, srcLoc *vol.Loc, srcName string, dstParent handle.Handle, dstLoc *vol.Loc, dstName string, ccfg, acfg *vol.Config, req *vol.Request) error {
	sw, err := lib.parent(srcParent)
	if err != nil {
		return err
	}
	dw, err := lib.parent(dstParent)
	if err != nil {
		return err
	}
	if sw.Binding().Class() != dw.Binding().Class() {
		return errors.Wrap(vol.ErrInvalidArgument, "object copy across connectors")
	}
	return vol.ObjectCopy(sw.Object(), srcLoc, srcName, dw.Object(), dstLoc, dstName, sw.Binding().Class(), ccfg, acfg, req)
}

func (lib *Library) ObjectExists(parent handle.Handle, loc *vol.Loc, req *vol.Request) (bool, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return false, err
	}
	var exists bool
	args := &vol.ObjectSpecificArgs{What: vol.ObjectExists, Exists: &exists}
	if err := vol.ObjectSpecific(pw.Object(), loc, pw.Binding().Class(), args, req); err != nil {
		return false, err
	}
	return exists, nil
}

func (lib *Library) ObjectGetInfo(parent handle.Handle, loc *vol.Loc, req *vol.Request) (*vol.ObjectInfo, error) {
	pw, err := lib.parent(parent)
	if err != nil {
		return nil, err
	}
	info := &vol.ObjectInfo{}
	args := &vol.ObjectGetArgs{What: vol.ObjectGetInfo, Info: info}
	if err := vol.ObjectGet(pw.Object(), loc, pw.Binding().Class(), args, req); err != nil {
		return nil, err
	}
	return info, nil
}
