package mem

import (
	"time"

	"emperror.dev/errors"

	"github.com/voltree-archive/voltree/pkg/vol"
)

// Connector implements every capability interface of the dispatch core.
// Containers are kept by name so a later FileOpen finds them.
type Connector struct {
	containers map[string]*File
}

func NewConnector() *Connector {
	return &Connector{containers: map[string]*File{}}
}

// Descriptor returns the built-in class descriptor for the memory
// connector.
func Descriptor() *vol.ClassDescriptor {
	return &vol.ClassDescriptor{
		Version:   vol.DescriptorVersion,
		Value:     vol.ValueMemory,
		Name:      "memory",
		Connector: NewConnector(),
	}
}

func (conn *Connector) ConnectorName() string { return "memory" }

var _ vol.Connector = &Connector{}
var _ vol.FileConnector = &Connector{}
var _ vol.GroupConnector = &Connector{}
var _ vol.DatasetConnector = &Connector{}
var _ vol.DatatypeConnector = &Connector{}
var _ vol.AttributeConnector = &Connector{}
var _ vol.LinkConnector = &Connector{}
var _ vol.ObjectConnector = &Connector{}
var _ vol.RequestConnector = &Connector{}

// async tokens complete immediately: the memory connector does all work
// synchronously but still produces pollable requests so callers can
// exercise the async path.
type request struct {
	status vol.RequestStatus
}

func (conn *Connector) complete(req *vol.Request) {
	if req != nil && req.Token == nil {
		req.Token = &request{status: vol.RequestSucceeded}
	}
}

func (conn *Connector) RequestWait(token any, timeout time.Duration) (vol.RequestStatus, error) {
	treq, ok := token.(*request)
	if !ok {
		return vol.RequestFailed, errors.Errorf("token %T is not a memory request", token)
	}
	return treq.status, nil
}

func (conn *Connector) RequestCancel(token any) (vol.RequestStatus, error) {
	treq, ok := token.(*request)
	if !ok {
		return vol.RequestFailed, errors.Errorf("token %T is not a memory request", token)
	}
	// already complete, cancellation cannot take effect
	return treq.status, nil
}

func (conn *Connector) RequestFree(token any) error {
	if _, ok := token.(*request); !ok {
		return errors.Errorf("token %T is not a memory request", token)
	}
	return nil
}

// ---------------------------------------------------------------------------
// file

func (conn *Connector) FileCreate(name string, flags vol.FileFlags, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	if _, ok := conn.containers[name]; ok {
		if flags&vol.FlagExclusive != 0 {
			return nil, errors.Wrapf(ErrExists, "container '%s'", name)
		}
		if flags&vol.FlagTruncate == 0 {
			return nil, errors.Wrapf(ErrExists, "container '%s' (no truncate flag)", name)
		}
	}
	file := &File{name: name}
	file.root = newGroup(file)
	conn.containers[name] = file
	conn.complete(req)
	return file, nil
}

func (conn *Connector) FileOpen(name string, flags vol.FileFlags, acfg *vol.Config, req *vol.Request) (any, error) {
	file, ok := conn.containers[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "container '%s'", name)
	}
	file.readonly = flags&vol.FlagReadWrite == 0
	conn.complete(req)
	return file, nil
}

func (conn *Connector) FileGet(obj any, args *vol.FileGetArgs, req *vol.Request) error {
	file, ok := obj.(*File)
	if !ok {
		return errors.Errorf("object %T is not a container", obj)
	}
	switch args.What {
	case vol.FileGetName:
		if args.Name != nil {
			*args.Name = file.name
		}
	case vol.FileGetInfo:
		if args.Info != nil {
			args.Info.Name = file.name
			args.Info.ObjectCount = countObjects(file.root, map[any]bool{})
		}
	case vol.FileGetConfig:
		if args.Config != nil {
			args.Config.Connector = "memory"
		}
	}
	conn.complete(req)
	return nil
}

// countObjects counts each object once, hard link aliases and cycles
// included.
func countObjects(grp *Group, seen map[any]bool) uint64 {
	if seen[grp] {
		return 0
	}
	seen[grp] = true
	var count uint64 = 1
	for _, lnk := range grp.links {
		if lnk.typ != vol.LinkTypeHard {
			continue
		}
		if sub, ok := lnk.obj.(*Group); ok {
			count += countObjects(sub, seen)
		} else if !seen[lnk.obj] {
			seen[lnk.obj] = true
			count++
		}
	}
	return count
}

func (conn *Connector) FileSpecific(obj any, args *vol.FileSpecificArgs, req *vol.Request) error {
	switch args.What {
	case vol.FileFlush:
		// nothing to flush, memory is the backing store
	case vol.FileIsAccessible:
		_, ok := conn.containers[args.Name]
		if args.Accessible != nil {
			*args.Accessible = ok
		}
	case vol.FileDelete:
		if _, ok := conn.containers[args.Name]; !ok {
			return errors.Wrapf(ErrNotFound, "container '%s'", args.Name)
		}
		delete(conn.containers, args.Name)
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) FileOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "memory connector has no optional file operation %d", args.Op)
}

func (conn *Connector) FileClose(obj any, req *vol.Request) error {
	if _, ok := obj.(*File); !ok {
		return errors.Errorf("object %T is not a container", obj)
	}
	// the container stays in the table for reopening
	conn.complete(req)
	return nil
}

// ---------------------------------------------------------------------------
// group

func (conn *Connector) GroupCreate(parent any, loc *vol.Loc, name string, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	base, err := locate(parent, loc)
	if err != nil {
		return nil, err
	}
	grp, err := asGroup(base)
	if err != nil {
		return nil, err
	}
	if grp.file.readonly {
		return nil, errors.WithStack(ErrReadOnly)
	}
	parts := splitPath(name)
	if len(parts) == 0 {
		return nil, errors.Errorf("empty group name '%s'", name)
	}
	for _, part := range parts[:len(parts)-1] {
		next, err := walk(grp, part)
		if err != nil {
			return nil, err
		}
		if grp, err = asGroup(next); err != nil {
			return nil, err
		}
	}
	leaf := parts[len(parts)-1]
	if _, ok := grp.links[leaf]; ok {
		return nil, errors.Wrapf(ErrExists, "'%s'", name)
	}
	sub := newGroup(grp.file)
	grp.insert(leaf, &Link{typ: vol.LinkTypeHard, obj: sub})
	conn.complete(req)
	return sub, nil
}

func (grp *Group) insert(name string, lnk *Link) {
	lnk.order = grp.nextOrder
	grp.nextOrder++
	grp.links[name] = lnk
	grp.order = append(grp.order, name)
}

func (grp *Group) unlink(name string) error {
	if _, ok := grp.links[name]; !ok {
		return errors.Wrapf(ErrNotFound, "'%s'", name)
	}
	delete(grp.links, name)
	for i, entry := range grp.order {
		if entry == name {
			grp.order = append(grp.order[:i], grp.order[i+1:]...)
			break
		}
	}
	return nil
}

func (conn *Connector) GroupOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	base, err := locate(parent, loc)
	if err != nil {
		return nil, err
	}
	grp, err := asGroup(base)
	if err != nil {
		return nil, err
	}
	obj, err := walk(grp, name)
	if err != nil {
		return nil, err
	}
	result, err := asGroup(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "'%s' is no group", name)
	}
	conn.complete(req)
	return result, nil
}

func (conn *Connector) GroupGet(obj any, args *vol.GroupGetArgs, req *vol.Request) error {
	base, err := locate(obj, args.Loc)
	if err != nil {
		return err
	}
	grp, err := asGroup(base)
	if err != nil {
		return err
	}
	if args.What == vol.GroupGetInfo && args.Info != nil {
		args.Info.LinkCount = uint64(len(grp.links))
		args.Info.MaxCreationOrder = grp.nextOrder
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) GroupSpecific(obj any, args *vol.GroupSpecificArgs, req *vol.Request) error {
	if _, err := asGroup(obj); err != nil {
		return err
	}
	// flush and refresh are no-ops in memory
	conn.complete(req)
	return nil
}

func (conn *Connector) GroupOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "memory connector has no optional group operation %d", args.Op)
}

func (conn *Connector) GroupClose(obj any, req *vol.Request) error {
	if _, err := asGroup(obj); err != nil {
		return err
	}
	conn.complete(req)
	return nil
}

// ---------------------------------------------------------------------------
// dataset

func (conn *Connector) DatasetCreate(parent any, loc *vol.Loc, name string, dtype *vol.Datatype, space *vol.Dataspace, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	base, err := locate(parent, loc)
	if err != nil {
		return nil, err
	}
	grp, err := asGroup(base)
	if err != nil {
		return nil, err
	}
	if grp.file.readonly {
		return nil, errors.WithStack(ErrReadOnly)
	}
	if _, ok := grp.links[name]; ok {
		return nil, errors.Wrapf(ErrExists, "'%s'", name)
	}
	dset := &Dataset{
		file:  grp.file,
		dtype: *dtype,
		space: *space,
		data:  make([]byte, dtype.NumBytes(space.NumElements())),
		attrs: newAttrSet(),
	}
	grp.insert(name, &Link{typ: vol.LinkTypeHard, obj: dset})
	conn.complete(req)
	return dset, nil
}

func (conn *Connector) DatasetOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	base, err := locate(parent, loc)
	if err != nil {
		return nil, err
	}
	grp, err := asGroup(base)
	if err != nil {
		return nil, err
	}
	obj, err := walk(grp, name)
	if err != nil {
		return nil, err
	}
	dset, ok := obj.(*Dataset)
	if !ok {
		return nil, errors.Errorf("'%s' is a %T, not a dataset", name, obj)
	}
	conn.complete(req)
	return dset, nil
}

// ioRange maps a selection to a byte range of the flat element buffer.
// Only full and one dimensional selections are supported. The bounds
// check stays in uint64; converting to int first would let huge
// offsets wrap negative and slip past it.
func (dset *Dataset) ioRange(sel *vol.Selection) (int, int, error) {
	if sel.IsAll() {
		return 0, len(dset.data), nil
	}
	if len(sel.Offset) != 1 || len(sel.Count) != 1 {
		return 0, 0, errors.Errorf("only one dimensional selections are supported, got %d dims", len(sel.Count))
	}
	elemSize := uint64(dset.dtype.Size)
	total := uint64(len(dset.data))
	offset := sel.Offset[0] * elemSize
	length := sel.Count[0] * elemSize
	if elemSize != 0 && (offset/elemSize != sel.Offset[0] || length/elemSize != sel.Count[0]) {
		return 0, 0, errors.Errorf("selection [%d+%d] overflows", sel.Offset[0], sel.Count[0])
	}
	if offset > total || length > total-offset {
		return 0, 0, errors.Errorf("selection [%d:%d] beyond extent %d", offset, offset+length, total)
	}
	return int(offset), int(length), nil
}

func (conn *Connector) DatasetRead(obj any, memType *vol.Datatype, memSel, fileSel *vol.Selection, cfg *vol.Config, buf []byte, req *vol.Request) error {
	dset, ok := obj.(*Dataset)
	if !ok {
		return errors.Errorf("object %T is not a dataset", obj)
	}
	offset, length, err := dset.ioRange(fileSel)
	if err != nil {
		return err
	}
	if len(buf) < length {
		return errors.Errorf("buffer of %d bytes too small for %d", len(buf), length)
	}
	copy(buf, dset.data[offset:offset+length])
	conn.complete(req)
	return nil
}

func (conn *Connector) DatasetWrite(obj any, memType *vol.Datatype, memSel, fileSel *vol.Selection, cfg *vol.Config, buf []byte, req *vol.Request) error {
	dset, ok := obj.(*Dataset)
	if !ok {
		return errors.Errorf("object %T is not a dataset", obj)
	}
	if dset.file.readonly {
		return errors.WithStack(ErrReadOnly)
	}
	offset, length, err := dset.ioRange(fileSel)
	if err != nil {
		return err
	}
	if len(buf) < length {
		return errors.Errorf("buffer of %d bytes too small for %d", len(buf), length)
	}
	copy(dset.data[offset:offset+length], buf[:length])
	conn.complete(req)
	return nil
}

func (conn *Connector) DatasetGet(obj any, args *vol.DatasetGetArgs, req *vol.Request) error {
	dset, ok := obj.(*Dataset)
	if !ok {
		return errors.Errorf("object %T is not a dataset", obj)
	}
	switch args.What {
	case vol.DatasetGetType:
		if args.Type != nil {
			*args.Type = dset.dtype
		}
	case vol.DatasetGetSpace:
		if args.Space != nil {
			*args.Space = dset.space
		}
	case vol.DatasetGetStorageSize:
		if args.StorageSize != nil {
			*args.StorageSize = uint64(len(dset.data))
		}
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) DatasetSpecific(obj any, args *vol.DatasetSpecificArgs, req *vol.Request) error {
	dset, ok := obj.(*Dataset)
	if !ok {
		return errors.Errorf("object %T is not a dataset", obj)
	}
	switch args.What {
	case vol.DatasetSetExtent:
		if dset.file.readonly {
			return errors.WithStack(ErrReadOnly)
		}
		newSpace := vol.Dataspace{Dims: args.Dims, MaxDims: dset.space.MaxDims}
		newData := make([]byte, dset.dtype.NumBytes(newSpace.NumElements()))
		copy(newData, dset.data)
		dset.space = newSpace
		dset.data = newData
	case vol.DatasetFlush, vol.DatasetRefresh:
		// no-ops in memory
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) DatasetOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "memory connector has no optional dataset operation %d", args.Op)
}

func (conn *Connector) DatasetClose(obj any, req *vol.Request) error {
	if _, ok := obj.(*Dataset); !ok {
		return errors.Errorf("object %T is not a dataset", obj)
	}
	conn.complete(req)
	return nil
}

// ---------------------------------------------------------------------------
// datatype

func (conn *Connector) DatatypeCommit(parent any, loc *vol.Loc, name string, dtype *vol.Datatype, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	base, err := locate(parent, loc)
	if err != nil {
		return nil, err
	}
	grp, err := asGroup(base)
	if err != nil {
		return nil, err
	}
	if grp.file.readonly {
		return nil, errors.WithStack(ErrReadOnly)
	}
	if _, ok := grp.links[name]; ok {
		return nil, errors.Wrapf(ErrExists, "'%s'", name)
	}
	nt := &NamedType{file: grp.file, dtype: *dtype, attrs: newAttrSet()}
	grp.insert(name, &Link{typ: vol.LinkTypeHard, obj: nt})
	conn.complete(req)
	return nt, nil
}

func (conn *Connector) DatatypeOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	base, err := locate(parent, loc)
	if err != nil {
		return nil, err
	}
	grp, err := asGroup(base)
	if err != nil {
		return nil, err
	}
	obj, err := walk(grp, name)
	if err != nil {
		return nil, err
	}
	nt, ok := obj.(*NamedType)
	if !ok {
		return nil, errors.Errorf("'%s' is a %T, not a named datatype", name, obj)
	}
	conn.complete(req)
	return nt, nil
}

func (conn *Connector) DatatypeGet(obj any, args *vol.DatatypeGetArgs, req *vol.Request) error {
	nt, ok := obj.(*NamedType)
	if !ok {
		return errors.Errorf("object %T is not a named datatype", obj)
	}
	if args.What == vol.DatatypeGetDescriptor && args.Descriptor != nil {
		*args.Descriptor = nt.dtype
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) DatatypeSpecific(obj any, args *vol.DatatypeSpecificArgs, req *vol.Request) error {
	if _, ok := obj.(*NamedType); !ok {
		return errors.Errorf("object %T is not a named datatype", obj)
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) DatatypeOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "memory connector has no optional datatype operation %d", args.Op)
}

func (conn *Connector) DatatypeClose(obj any, req *vol.Request) error {
	if _, ok := obj.(*NamedType); !ok {
		return errors.Errorf("object %T is not a named datatype", obj)
	}
	conn.complete(req)
	return nil
}

// ---------------------------------------------------------------------------
// attribute

func (conn *Connector) AttrCreate(parent any, loc *vol.Loc, name string, dtype *vol.Datatype, space *vol.Dataspace, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	target, err := locate(parent, loc)
	if err != nil {
		return nil, err
	}
	holder, err := asAttrHolder(target)
	if err != nil {
		return nil, err
	}
	if holder.container().readonly {
		return nil, errors.WithStack(ErrReadOnly)
	}
	attr := &Attr{
		file:  holder.container(),
		name:  name,
		dtype: *dtype,
		space: *space,
		data:  make([]byte, dtype.NumBytes(space.NumElements())),
	}
	if err := holder.attrSet().add(attr); err != nil {
		return nil, err
	}
	conn.complete(req)
	return attr, nil
}

func asAttrHolder(obj any) (attrHolder, error) {
	if file, ok := obj.(*File); ok {
		return file.root, nil
	}
	holder, ok := obj.(attrHolder)
	if !ok {
		return nil, errors.Errorf("object %T carries no attributes", obj)
	}
	return holder, nil
}

func (conn *Connector) AttrOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	target, err := locate(parent, loc)
	if err != nil {
		return nil, err
	}
	holder, err := asAttrHolder(target)
	if err != nil {
		return nil, err
	}
	attr, ok := holder.attrSet().attrs[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "attribute '%s'", name)
	}
	conn.complete(req)
	return attr, nil
}

func (conn *Connector) AttrRead(obj any, memType *vol.Datatype, buf []byte, cfg *vol.Config, req *vol.Request) error {
	attr, ok := obj.(*Attr)
	if !ok {
		return errors.Errorf("object %T is not an attribute", obj)
	}
	if len(buf) < len(attr.data) {
		return errors.Errorf("buffer of %d bytes too small for %d", len(buf), len(attr.data))
	}
	copy(buf, attr.data)
	conn.complete(req)
	return nil
}

func (conn *Connector) AttrWrite(obj any, memType *vol.Datatype, buf []byte, cfg *vol.Config, req *vol.Request) error {
	attr, ok := obj.(*Attr)
	if !ok {
		return errors.Errorf("object %T is not an attribute", obj)
	}
	if attr.file.readonly {
		return errors.WithStack(ErrReadOnly)
	}
	if len(buf) < len(attr.data) {
		return errors.Errorf("buffer of %d bytes too small for %d", len(buf), len(attr.data))
	}
	copy(attr.data, buf[:len(attr.data)])
	conn.complete(req)
	return nil
}

func (conn *Connector) AttrGet(obj any, args *vol.AttrGetArgs, req *vol.Request) error {
	attr, ok := obj.(*Attr)
	if !ok {
		return errors.Errorf("object %T is not an attribute", obj)
	}
	switch args.What {
	case vol.AttrGetName:
		if args.Name != nil {
			*args.Name = attr.name
		}
	case vol.AttrGetInfo:
		if args.Info != nil {
			args.Info.Name = attr.name
			args.Info.DataSize = uint64(len(attr.data))
		}
	case vol.AttrGetType:
		if args.Type != nil {
			*args.Type = attr.dtype
		}
	case vol.AttrGetSpace:
		if args.Space != nil {
			*args.Space = attr.space
		}
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) AttrSpecific(parent any, loc *vol.Loc, args *vol.AttrSpecificArgs, req *vol.Request) error {
	target, err := locate(parent, loc)
	if err != nil {
		return err
	}
	holder, err := asAttrHolder(target)
	if err != nil {
		return err
	}
	switch args.What {
	case vol.AttrDelete:
		if holder.container().readonly {
			return errors.WithStack(ErrReadOnly)
		}
		if err := holder.attrSet().remove(args.Name); err != nil {
			return err
		}
	case vol.AttrExists:
		_, ok := holder.attrSet().attrs[args.Name]
		if args.Exists != nil {
			*args.Exists = ok
		}
	case vol.AttrRename:
		if holder.container().readonly {
			return errors.WithStack(ErrReadOnly)
		}
		if err := holder.attrSet().rename(args.Name, args.NewName); err != nil {
			return err
		}
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) AttrOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "memory connector has no optional attribute operation %d", args.Op)
}

func (conn *Connector) AttrClose(obj any, req *vol.Request) error {
	if _, ok := obj.(*Attr); !ok {
		return errors.Errorf("object %T is not an attribute", obj)
	}
	conn.complete(req)
	return nil
}

// ---------------------------------------------------------------------------
// link

func (conn *Connector) LinkCreate(args *vol.LinkCreateArgs, parent any, loc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	// the location names the link to create, so only its prefix may be
	// resolved
	grp, leaf, err := linkOf(parent, loc)
	if err != nil {
		return err
	}
	if grp.file.readonly {
		return errors.WithStack(ErrReadOnly)
	}
	if _, ok := grp.links[leaf]; ok {
		return errors.Wrapf(ErrExists, "link '%s'", leaf)
	}
	switch args.What {
	case vol.LinkCreateHard:
		target := args.TargetObj
		if args.TargetLoc != nil && args.TargetLoc.Type != vol.LocSelf {
			if target, err = locate(args.TargetObj, args.TargetLoc); err != nil {
				return err
			}
		}
		if _, ok := target.(*File); ok {
			target, _ = asGroup(target)
		}
		grp.insert(leaf, &Link{typ: vol.LinkTypeHard, obj: target})
	case vol.LinkCreateSoft:
		grp.insert(leaf, &Link{typ: vol.LinkTypeSoft, target: args.Target})
	}
	conn.complete(req)
	return nil
}

func joinPath(parts []string) string {
	result := ""
	for i, part := range parts {
		if i > 0 {
			result += "/"
		}
		result += part
	}
	return result
}

// linkOf resolves a location to the group owning the addressed link and
// the link's name.
func linkOf(parent any, loc *vol.Loc) (*Group, string, error) {
	grp, err := asGroup(parent)
	if err != nil {
		return nil, "", err
	}
	switch loc.Type {
	case vol.LocName:
		parts := splitPath(loc.Name)
		if len(parts) == 0 {
			return nil, "", errors.Errorf("location names no link")
		}
		if len(parts) > 1 {
			base, err := walk(grp, joinPath(parts[:len(parts)-1]))
			if err != nil {
				return nil, "", err
			}
			if grp, err = asGroup(base); err != nil {
				return nil, "", err
			}
		}
		return grp, parts[len(parts)-1], nil
	case vol.LocIndex:
		if loc.IdxName != "" {
			base, err := walk(grp, loc.IdxName)
			if err != nil {
				return nil, "", err
			}
			if grp, err = asGroup(base); err != nil {
				return nil, "", err
			}
		}
		name, _, err := grp.linkAt(loc)
		if err != nil {
			return nil, "", err
		}
		return grp, name, nil
	default:
		return nil, "", errors.Errorf("location type '%s' does not address a link", loc.Type)
	}
}

func (conn *Connector) LinkCopy(srcParent any, srcLoc *vol.Loc, dstParent any, dstLoc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	return conn.linkTransfer(srcParent, srcLoc, dstParent, dstLoc, false, req)
}

func (conn *Connector) LinkMove(srcParent any, srcLoc *vol.Loc, dstParent any, dstLoc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	return conn.linkTransfer(srcParent, srcLoc, dstParent, dstLoc, true, req)
}

func (conn *Connector) linkTransfer(srcParent any, srcLoc *vol.Loc, dstParent any, dstLoc *vol.Loc, move bool, req *vol.Request) error {
	srcGrp, srcName, err := linkOf(srcParent, srcLoc)
	if err != nil {
		return err
	}
	dstGrp, dstName, err := linkOf(dstParent, dstLoc)
	if err != nil {
		return err
	}
	if dstGrp.file.readonly {
		return errors.WithStack(ErrReadOnly)
	}
	lnk, ok := srcGrp.links[srcName]
	if !ok {
		return errors.Wrapf(ErrNotFound, "link '%s'", srcName)
	}
	if _, ok := dstGrp.links[dstName]; ok {
		return errors.Wrapf(ErrExists, "link '%s'", dstName)
	}
	dstGrp.insert(dstName, &Link{typ: lnk.typ, target: lnk.target, obj: lnk.obj})
	if move {
		if err := srcGrp.unlink(srcName); err != nil {
			return err
		}
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) LinkGet(parent any, loc *vol.Loc, args *vol.LinkGetArgs, req *vol.Request) error {
	grp, name, err := linkOf(parent, loc)
	if err != nil {
		return err
	}
	lnk, ok := grp.links[name]
	if !ok {
		return errors.Wrapf(ErrNotFound, "link '%s'", name)
	}
	switch args.What {
	case vol.LinkGetInfo:
		if args.Info != nil {
			args.Info.Type = lnk.typ
			args.Info.Target = lnk.target
			args.Info.CreationOrder = lnk.order
		}
	case vol.LinkGetValue:
		if lnk.typ != vol.LinkTypeSoft {
			return errors.Errorf("link '%s' is hard, it has no value", name)
		}
		if args.Value != nil {
			*args.Value = lnk.target
		}
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) LinkSpecific(parent any, loc *vol.Loc, args *vol.LinkSpecificArgs, req *vol.Request) error {
	switch args.What {
	case vol.LinkDelete:
		grp, name, err := linkOf(parent, loc)
		if err != nil {
			return err
		}
		if grp.file.readonly {
			return errors.WithStack(ErrReadOnly)
		}
		if err := grp.unlink(name); err != nil {
			return err
		}
	case vol.LinkExists:
		grp, name, err := linkOf(parent, loc)
		if err != nil {
			return err
		}
		_, ok := grp.links[name]
		if args.Exists != nil {
			*args.Exists = ok
		}
	case vol.LinkIterate:
		base, err := locate(parent, loc)
		if err != nil {
			return err
		}
		grp, err := asGroup(base)
		if err != nil {
			return err
		}
		for _, name := range grp.orderedNames(args.IdxKind, args.Order) {
			lnk := grp.links[name]
			info := &vol.LinkInfo{Type: lnk.typ, Target: lnk.target, CreationOrder: lnk.order}
			if err := args.Visit(name, info); err != nil {
				return err
			}
		}
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) LinkOptional(parent any, loc *vol.Loc, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "memory connector has no optional link operation %d", args.Op)
}

// ---------------------------------------------------------------------------
// object

func (conn *Connector) ObjectOpen(parent any, loc *vol.Loc, req *vol.Request) (any, vol.ObjectType, error) {
	obj, err := locate(parent, loc)
	if err != nil {
		return nil, vol.ObjectTypeUnknown, err
	}
	if file, ok := obj.(*File); ok {
		obj = file.root
	}
	objType := typeOf(obj)
	if objType == vol.ObjectTypeUnknown {
		return nil, objType, errors.Errorf("location resolves to %T, not an object", obj)
	}
	conn.complete(req)
	return obj, objType, nil
}

func (conn *Connector) ObjectCopy(srcParent any, srcLoc *vol.Loc, srcName string, dstParent any, dstLoc *vol.Loc, dstName string, ccfg, acfg *vol.Config, req *vol.Request) error {
	srcBase, err := locate(srcParent, srcLoc)
	if err != nil {
		return err
	}
	srcGrp, err := asGroup(srcBase)
	if err != nil {
		return err
	}
	src, err := walk(srcGrp, srcName)
	if err != nil {
		return err
	}
	dstBase, err := locate(dstParent, dstLoc)
	if err != nil {
		return err
	}
	dstGrp, err := asGroup(dstBase)
	if err != nil {
		return err
	}
	if dstGrp.file.readonly {
		return errors.WithStack(ErrReadOnly)
	}
	if _, ok := dstGrp.links[dstName]; ok {
		return errors.Wrapf(ErrExists, "'%s'", dstName)
	}
	clone, err := deepCopy(src, dstGrp.file)
	if err != nil {
		return err
	}
	dstGrp.insert(dstName, &Link{typ: vol.LinkTypeHard, obj: clone})
	conn.complete(req)
	return nil
}

func deepCopy(obj any, file *File) (any, error) {
	return copyObject(obj, file, map[any]any{})
}

// seen maps source to copied objects, so aliased hard links stay
// aliased in the copy and cycles terminate.
func copyObject(obj any, file *File, seen map[any]any) (any, error) {
	if clone, ok := seen[obj]; ok {
		return clone, nil
	}
	switch o := obj.(type) {
	case *Group:
		clone := newGroup(file)
		seen[obj] = clone
		clone.nextOrder = o.nextOrder
		for _, name := range o.order {
			lnk := o.links[name]
			entry := &Link{typ: lnk.typ, target: lnk.target, order: lnk.order}
			if lnk.typ == vol.LinkTypeHard {
				sub, err := copyObject(lnk.obj, file, seen)
				if err != nil {
					return nil, err
				}
				entry.obj = sub
			}
			clone.links[name] = entry
			clone.order = append(clone.order, name)
		}
		clone.attrs = o.attrs.clone(file)
		return clone, nil
	case *Dataset:
		clone := &Dataset{file: file, dtype: o.dtype, space: o.space, attrs: o.attrs.clone(file)}
		clone.data = append([]byte{}, o.data...)
		seen[obj] = clone
		return clone, nil
	case *NamedType:
		clone := &NamedType{file: file, dtype: o.dtype, attrs: o.attrs.clone(file)}
		seen[obj] = clone
		return clone, nil
	default:
		return nil, errors.Errorf("cannot copy %T", obj)
	}
}

func (as *attrSet) clone(file *File) *attrSet {
	result := newAttrSet()
	for _, name := range as.order {
		attr := as.attrs[name]
		clone := &Attr{file: file, name: attr.name, dtype: attr.dtype, space: attr.space}
		clone.data = append([]byte{}, attr.data...)
		result.attrs[name] = clone
		result.order = append(result.order, name)
	}
	return result
}

func (conn *Connector) ObjectGet(obj any, loc *vol.Loc, args *vol.ObjectGetArgs, req *vol.Request) error {
	target, err := locate(obj, loc)
	if err != nil {
		return err
	}
	if file, ok := target.(*File); ok {
		target = file.root
	}
	if args.What == vol.ObjectGetInfo && args.Info != nil {
		args.Info.Type = typeOf(target)
		if holder, err := asAttrHolder(target); err == nil {
			args.Info.AttrCount = uint64(len(holder.attrSet().attrs))
		}
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) ObjectSpecific(obj any, loc *vol.Loc, args *vol.ObjectSpecificArgs, req *vol.Request) error {
	switch args.What {
	case vol.ObjectExists:
		_, err := locate(obj, loc)
		if args.Exists != nil {
			*args.Exists = err == nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	case vol.ObjectFlush, vol.ObjectRefresh:
		// no-ops in memory
	}
	conn.complete(req)
	return nil
}

func (conn *Connector) ObjectOptional(obj any, loc *vol.Loc, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "memory connector has no optional object operation %d", args.Op)
}
