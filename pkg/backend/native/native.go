// Package native is the default disk connector. A container is a cbor
// superblock, a cbor catalog holding the object hierarchy and content
// addressed payload blobs for dataset bytes, all kept on a flat blob
// store. The default store is a local directory; remote connectors can
// reuse the whole format by supplying their own BlobStore. Catalog and
// payloads are replaced atomically, payload reads verify their sha256
// digest.
package native

import (
	"strings"

	"emperror.dev/errors"
	"github.com/rs/zerolog"

	"github.com/voltree-archive/voltree/pkg/vol"
)

var (
	ErrNotFound = errors.New("object not found")
	ErrExists   = errors.New("object already exists")
	ErrReadOnly = errors.New("container is read only")
	ErrCorrupt  = errors.New("payload digest mismatch")
)

// Connector implements all object capabilities over a blob store. It is
// synchronous: no request capability, async callers fall back to
// blocking completion.
type Connector struct {
	name   string
	open   StoreOpener
	logger zerolog.Logger
}

// NewConnector returns the local disk flavour, containers are
// directories.
func NewConnector(logger zerolog.Logger) *Connector {
	return NewConnectorWithStore("native", openDirStore, logger)
}

// NewConnectorWithStore runs the container format on a caller supplied
// blob store, registered under its own connector name.
func NewConnectorWithStore(name string, open StoreOpener, logger zerolog.Logger) *Connector {
	return &Connector{name: name, open: open, logger: logger}
}

// Descriptor returns the built-in class descriptor for the native
// connector.
func Descriptor(logger zerolog.Logger) *vol.ClassDescriptor {
	return &vol.ClassDescriptor{
		Version:   vol.DescriptorVersion,
		Value:     vol.ValueNative,
		Name:      "native",
		Connector: NewConnector(logger),
	}
}

func (conn *Connector) ConnectorName() string { return conn.name }

var _ vol.Connector = &Connector{}
var _ vol.FileConnector = &Connector{}
var _ vol.GroupConnector = &Connector{}
var _ vol.DatasetConnector = &Connector{}
var _ vol.DatatypeConnector = &Connector{}
var _ vol.AttributeConnector = &Connector{}
var _ vol.LinkConnector = &Connector{}
var _ vol.ObjectConnector = &Connector{}

// ---------------------------------------------------------------------------
// tree navigation

func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

func asGroup(obj any) (*node, error) {
	switch o := obj.(type) {
	case *file:
		return o.root, nil
	case *node:
		if o.Kind == kindGroup {
			return o, nil
		}
		return nil, errors.Errorf("object is a %s, not a group", kindName(o.Kind))
	default:
		return nil, errors.Errorf("object %T is not a group", obj)
	}
}

func kindName(kind uint8) string {
	switch kind {
	case kindGroup:
		return "group"
	case kindDataset:
		return "dataset"
	case kindDatatype:
		return "named datatype"
	}
	return "unknown"
}

func fileOf(obj any) (*file, error) {
	switch o := obj.(type) {
	case *file:
		return o, nil
	case *node:
		return o.file, nil
	case *openAttr:
		return o.owner.file, nil
	default:
		return nil, errors.Errorf("object %T belongs to no container", obj)
	}
}

func walk(base *node, path string) (*node, error) {
	current := base
	for _, part := range splitPath(path) {
		if current.Kind != kindGroup {
			return nil, errors.Errorf("cannot traverse '%s', parent is a %s", part, kindName(current.Kind))
		}
		lnk, ok := current.Links[part]
		if !ok {
			return nil, errors.Wrapf(ErrNotFound, "'%s'", part)
		}
		next, err := lnk.resolve(current.file)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func (lnk *link) resolve(f *file) (*node, error) {
	switch lnk.Type {
	case vol.LinkTypeHard:
		return lnk.Node, nil
	case vol.LinkTypeSoft:
		return walk(f.root, lnk.Target)
	default:
		return nil, errors.Errorf("unknown link type %d", lnk.Type)
	}
}

func (nd *node) insert(name string, lnk *link) {
	lnk.Order = nd.NextOrder
	nd.NextOrder++
	nd.Links[name] = lnk
	nd.Order = append(nd.Order, name)
	nd.file.dirty = true
}

func (nd *node) unlink(name string) error {
	if _, ok := nd.Links[name]; !ok {
		return errors.Wrapf(ErrNotFound, "'%s'", name)
	}
	delete(nd.Links, name)
	for i, entry := range nd.Order {
		if entry == name {
			nd.Order = append(nd.Order[:i], nd.Order[i+1:]...)
			break
		}
	}
	nd.file.dirty = true
	return nil
}

func (nd *node) orderedNames(idx vol.IndexKind, order vol.IterOrder) []string {
	var names []string
	switch idx {
	case vol.IndexCreationOrder:
		names = append(names, nd.Order...)
	default: // IndexName
		names = append(names, nd.Order...)
		for i := 1; i < len(names); i++ {
			for j := i; j > 0 && names[j] < names[j-1]; j-- {
				names[j], names[j-1] = names[j-1], names[j]
			}
		}
	}
	if order == vol.OrderDecreasing {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}
	return names
}

func (nd *node) linkAt(loc *vol.Loc) (string, *link, error) {
	names := nd.orderedNames(loc.IdxKind, loc.Order)
	if loc.Position >= uint64(len(names)) {
		return "", nil, errors.Wrapf(ErrNotFound, "index %d out of %d links", loc.Position, len(names))
	}
	name := names[loc.Position]
	return name, nd.Links[name], nil
}

func locate(parent any, loc *vol.Loc) (any, error) {
	if loc == nil {
		return parent, nil
	}
	switch loc.Type {
	case vol.LocSelf:
		return parent, nil
	case vol.LocName:
		grp, err := asGroup(parent)
		if err != nil {
			return nil, err
		}
		return walk(grp, loc.Name)
	case vol.LocIndex:
		grp, err := asGroup(parent)
		if err != nil {
			return nil, err
		}
		if loc.IdxName != "" {
			if grp, err = walk(grp, loc.IdxName); err != nil {
				return nil, err
			}
			if grp.Kind != kindGroup {
				return nil, errors.Errorf("'%s' is a %s, not a group", loc.IdxName, kindName(grp.Kind))
			}
		}
		_, lnk, err := grp.linkAt(loc)
		if err != nil {
			return nil, err
		}
		return lnk.resolve(grp.file)
	case vol.LocRef:
		ref, err := vol.DecodeReference(loc.Ref)
		if err != nil {
			return nil, err
		}
		f, err := fileOf(parent)
		if err != nil {
			return nil, err
		}
		return walk(f.root, ref.Path)
	default:
		return nil, errors.Errorf("unknown location type %d", loc.Type)
	}
}

func locateGroup(parent any, loc *vol.Loc) (*node, error) {
	base, err := locate(parent, loc)
	if err != nil {
		return nil, err
	}
	return asGroup(base)
}

// linkOf resolves a location to the group owning the addressed link plus
// the link's name. The link itself may not exist yet.
func linkOf(parent any, loc *vol.Loc) (*node, string, error) {
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
		for _, part := range parts[:len(parts)-1] {
			if grp, err = walk(grp, part); err != nil {
				return nil, "", err
			}
			if grp.Kind != kindGroup {
				return nil, "", errors.Errorf("'%s' is a %s, not a group", part, kindName(grp.Kind))
			}
		}
		return grp, parts[len(parts)-1], nil
	case vol.LocIndex:
		if loc.IdxName != "" {
			if grp, err = walk(grp, loc.IdxName); err != nil {
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

// ---------------------------------------------------------------------------
// attributes

// openAttr is the connector private object of an open attribute; the
// attribute value itself lives inline on the owning node.
type openAttr struct {
	owner *node
	item  *attr
}

func (nd *node) findAttr(name string) (*attr, bool) {
	for _, item := range nd.Attrs {
		if item.Name == name {
			return item, true
		}
	}
	return nil, false
}

func (nd *node) addAttr(item *attr) error {
	if _, ok := nd.findAttr(item.Name); ok {
		return errors.Wrapf(ErrExists, "attribute '%s'", item.Name)
	}
	nd.Attrs = append(nd.Attrs, item)
	nd.file.dirty = true
	return nil
}

func (nd *node) removeAttr(name string) error {
	for i, item := range nd.Attrs {
		if item.Name == name {
			nd.Attrs = append(nd.Attrs[:i], nd.Attrs[i+1:]...)
			nd.file.dirty = true
			return nil
		}
	}
	return errors.Wrapf(ErrNotFound, "attribute '%s'", name)
}

func attrTarget(parent any, loc *vol.Loc) (*node, error) {
	target, err := locate(parent, loc)
	if err != nil {
		return nil, err
	}
	if f, ok := target.(*file); ok {
		return f.root, nil
	}
	nd, ok := target.(*node)
	if !ok {
		return nil, errors.Errorf("object %T carries no attributes", target)
	}
	return nd, nil
}

// ---------------------------------------------------------------------------
// file

func (conn *Connector) FileCreate(name string, flags vol.FileFlags, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	blobs, err := conn.open(name)
	if err != nil {
		return nil, err
	}
	if _, err := readSuper(blobs); err == nil {
		if flags&vol.FlagTruncate == 0 || flags&vol.FlagExclusive != 0 {
			return nil, errors.Wrapf(ErrExists, "container '%s'", name)
		}
		if err := blobs.DeleteAll(); err != nil {
			return nil, errors.Wrapf(err, "cannot truncate container '%s'", name)
		}
	}
	f := &file{
		name:  name,
		super: newSuperblock(),
		blobs: blobs,
		dirty: true,
	}
	f.root = newGroupNode(f)
	if err := f.writeSuper(); err != nil {
		return nil, err
	}
	if err := f.flush(); err != nil {
		return nil, err
	}
	conn.logger.Debug().Str("container", name).Str("id", f.super.ID).Msg("container created")
	return f, nil
}

func (conn *Connector) FileOpen(name string, flags vol.FileFlags, acfg *vol.Config, req *vol.Request) (any, error) {
	blobs, err := conn.open(name)
	if err != nil {
		return nil, err
	}
	super, err := readSuper(blobs)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "container '%s'", name)
	}
	f := &file{
		name:     name,
		readonly: flags&vol.FlagReadWrite == 0,
		super:    super,
		blobs:    blobs,
	}
	if err := f.readCatalog(); err != nil {
		return nil, err
	}
	conn.logger.Debug().Str("container", name).Bool("readonly", f.readonly).Msg("container opened")
	return f, nil
}

func (conn *Connector) FileGet(obj any, args *vol.FileGetArgs, req *vol.Request) error {
	f, ok := obj.(*file)
	if !ok {
		return errors.Errorf("object %T is not a container", obj)
	}
	switch args.What {
	case vol.FileGetName:
		if args.Name != nil {
			*args.Name = f.name
		}
	case vol.FileGetInfo:
		if args.Info != nil {
			args.Info.Name = f.name
			args.Info.ObjectCount = countObjects(f.root, map[*node]bool{})
		}
	case vol.FileGetConfig:
		if args.Config != nil {
			args.Config.Connector = conn.name
		}
	}
	return nil
}

// countObjects counts each node once, hard link aliases and cycles
// included.
func countObjects(nd *node, seen map[*node]bool) uint64 {
	if seen[nd] {
		return 0
	}
	seen[nd] = true
	var count uint64 = 1
	for _, lnk := range nd.Links {
		if lnk.Type == vol.LinkTypeHard && lnk.Node != nil {
			count += countObjects(lnk.Node, seen)
		}
	}
	return count
}

func (conn *Connector) FileSpecific(obj any, args *vol.FileSpecificArgs, req *vol.Request) error {
	switch args.What {
	case vol.FileFlush:
		f, ok := obj.(*file)
		if !ok {
			return errors.Errorf("object %T is not a container", obj)
		}
		return f.flush()
	case vol.FileIsAccessible:
		blobs, err := conn.open(args.Name)
		if err != nil {
			return err
		}
		_, err = readSuper(blobs)
		if args.Accessible != nil {
			*args.Accessible = err == nil
		}
	case vol.FileDelete:
		blobs, err := conn.open(args.Name)
		if err != nil {
			return err
		}
		if _, err := readSuper(blobs); err != nil {
			return errors.Wrapf(ErrNotFound, "container '%s'", args.Name)
		}
		if err := blobs.DeleteAll(); err != nil {
			return errors.Wrapf(err, "cannot delete container '%s'", args.Name)
		}
		conn.logger.Debug().Str("container", args.Name).Msg("container deleted")
	}
	return nil
}

func (conn *Connector) FileOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "native connector has no optional file operation %d", args.Op)
}

func (conn *Connector) FileClose(obj any, req *vol.Request) error {
	f, ok := obj.(*file)
	if !ok {
		return errors.Errorf("object %T is not a container", obj)
	}
	return f.flush()
}

// ---------------------------------------------------------------------------
// group

func (conn *Connector) GroupCreate(parent any, loc *vol.Loc, name string, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	grp, err := locateGroup(parent, loc)
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
		if grp, err = walk(grp, part); err != nil {
			return nil, err
		}
		if grp.Kind != kindGroup {
			return nil, errors.Errorf("'%s' is a %s, not a group", part, kindName(grp.Kind))
		}
	}
	leaf := parts[len(parts)-1]
	if _, ok := grp.Links[leaf]; ok {
		return nil, errors.Wrapf(ErrExists, "'%s'", name)
	}
	sub := newGroupNode(grp.file)
	grp.insert(leaf, &link{Type: vol.LinkTypeHard, Node: sub})
	return sub, nil
}

func (conn *Connector) GroupOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	grp, err := locateGroup(parent, loc)
	if err != nil {
		return nil, err
	}
	nd, err := walk(grp, name)
	if err != nil {
		return nil, err
	}
	if nd.Kind != kindGroup {
		return nil, errors.Errorf("'%s' is a %s, not a group", name, kindName(nd.Kind))
	}
	return nd, nil
}

func (conn *Connector) GroupGet(obj any, args *vol.GroupGetArgs, req *vol.Request) error {
	grp, err := locateGroup(obj, args.Loc)
	if err != nil {
		return err
	}
	if args.What == vol.GroupGetInfo && args.Info != nil {
		args.Info.LinkCount = uint64(len(grp.Links))
		args.Info.MaxCreationOrder = grp.NextOrder
	}
	return nil
}

func (conn *Connector) GroupSpecific(obj any, args *vol.GroupSpecificArgs, req *vol.Request) error {
	grp, err := asGroup(obj)
	if err != nil {
		return err
	}
	switch args.What {
	case vol.GroupFlush:
		return grp.file.flush()
	case vol.GroupRefresh:
		// the in-memory tree is authoritative while the container is open
	}
	return nil
}

func (conn *Connector) GroupOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "native connector has no optional group operation %d", args.Op)
}

func (conn *Connector) GroupClose(obj any, req *vol.Request) error {
	if _, err := asGroup(obj); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// dataset

func (conn *Connector) DatasetCreate(parent any, loc *vol.Loc, name string, dtype *vol.Datatype, space *vol.Dataspace, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	grp, err := locateGroup(parent, loc)
	if err != nil {
		return nil, err
	}
	if grp.file.readonly {
		return nil, errors.WithStack(ErrReadOnly)
	}
	if _, ok := grp.Links[name]; ok {
		return nil, errors.Wrapf(ErrExists, "'%s'", name)
	}
	dt, sp := *dtype, *space
	dset := &node{
		Kind:  kindDataset,
		Dtype: &dt,
		Space: &sp,
		file:  grp.file,
		data:  make([]byte, dtype.NumBytes(space.NumElements())),
		dirty: true,
	}
	grp.insert(name, &link{Type: vol.LinkTypeHard, Node: dset})
	return dset, nil
}

func (conn *Connector) DatasetOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	grp, err := locateGroup(parent, loc)
	if err != nil {
		return nil, err
	}
	nd, err := walk(grp, name)
	if err != nil {
		return nil, err
	}
	if nd.Kind != kindDataset {
		return nil, errors.Errorf("'%s' is a %s, not a dataset", name, kindName(nd.Kind))
	}
	return nd, nil
}

func asDataset(obj any) (*node, error) {
	nd, ok := obj.(*node)
	if !ok || nd.Kind != kindDataset {
		return nil, errors.Errorf("object %T is not a dataset", obj)
	}
	return nd, nil
}

// ioRange maps a selection to a byte range of the flat element buffer.
// Only full and one dimensional selections are supported. The bounds
// check stays in uint64; converting to int first would let huge
// offsets wrap negative and slip past it.
func ioRange(nd *node, sel *vol.Selection, total int) (int, int, error) {
	if sel.IsAll() {
		return 0, total, nil
	}
	if len(sel.Offset) != 1 || len(sel.Count) != 1 {
		return 0, 0, errors.Errorf("only one dimensional selections are supported, got %d dims", len(sel.Count))
	}
	elemSize := uint64(nd.Dtype.Size)
	offset := sel.Offset[0] * elemSize
	length := sel.Count[0] * elemSize
	if elemSize != 0 && (offset/elemSize != sel.Offset[0] || length/elemSize != sel.Count[0]) {
		return 0, 0, errors.Errorf("selection [%d+%d] overflows", sel.Offset[0], sel.Count[0])
	}
	if offset > uint64(total) || length > uint64(total)-offset {
		return 0, 0, errors.Errorf("selection [%d:%d] beyond extent %d", offset, offset+length, total)
	}
	return int(offset), int(length), nil
}

func (conn *Connector) DatasetRead(obj any, memType *vol.Datatype, memSel, fileSel *vol.Selection, cfg *vol.Config, buf []byte, req *vol.Request) error {
	dset, err := asDataset(obj)
	if err != nil {
		return err
	}
	data, err := dset.payload()
	if err != nil {
		return err
	}
	offset, length, err := ioRange(dset, fileSel, len(data))
	if err != nil {
		return err
	}
	if len(buf) < length {
		return errors.Errorf("buffer of %d bytes too small for %d", len(buf), length)
	}
	copy(buf, data[offset:offset+length])
	return nil
}

func (conn *Connector) DatasetWrite(obj any, memType *vol.Datatype, memSel, fileSel *vol.Selection, cfg *vol.Config, buf []byte, req *vol.Request) error {
	dset, err := asDataset(obj)
	if err != nil {
		return err
	}
	if dset.file.readonly {
		return errors.WithStack(ErrReadOnly)
	}
	data, err := dset.payload()
	if err != nil {
		return err
	}
	offset, length, err := ioRange(dset, fileSel, len(data))
	if err != nil {
		return err
	}
	if len(buf) < length {
		return errors.Errorf("buffer of %d bytes too small for %d", len(buf), length)
	}
	copy(data[offset:offset+length], buf[:length])
	dset.dirty = true
	return nil
}

func (conn *Connector) DatasetGet(obj any, args *vol.DatasetGetArgs, req *vol.Request) error {
	dset, err := asDataset(obj)
	if err != nil {
		return err
	}
	switch args.What {
	case vol.DatasetGetType:
		if args.Type != nil {
			*args.Type = *dset.Dtype
		}
	case vol.DatasetGetSpace:
		if args.Space != nil {
			*args.Space = *dset.Space
		}
	case vol.DatasetGetStorageSize:
		if args.StorageSize != nil {
			*args.StorageSize = dset.Dtype.NumBytes(dset.Space.NumElements())
		}
	}
	return nil
}

func (conn *Connector) DatasetSpecific(obj any, args *vol.DatasetSpecificArgs, req *vol.Request) error {
	dset, err := asDataset(obj)
	if err != nil {
		return err
	}
	switch args.What {
	case vol.DatasetSetExtent:
		if dset.file.readonly {
			return errors.WithStack(ErrReadOnly)
		}
		old, err := dset.payload()
		if err != nil {
			return err
		}
		newSpace := vol.Dataspace{Dims: args.Dims, MaxDims: dset.Space.MaxDims}
		newData := make([]byte, dset.Dtype.NumBytes(newSpace.NumElements()))
		copy(newData, old)
		dset.Space = &newSpace
		dset.data = newData
		dset.dirty = true
		dset.file.dirty = true
	case vol.DatasetFlush:
		return dset.file.flush()
	case vol.DatasetRefresh:
		// in-memory tree is authoritative
	}
	return nil
}

func (conn *Connector) DatasetOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "native connector has no optional dataset operation %d", args.Op)
}

func (conn *Connector) DatasetClose(obj any, req *vol.Request) error {
	dset, err := asDataset(obj)
	if err != nil {
		return err
	}
	// persist eagerly so a container left open does not lose data
	return dset.file.flush()
}

// ---------------------------------------------------------------------------
// datatype

func (conn *Connector) DatatypeCommit(parent any, loc *vol.Loc, name string, dtype *vol.Datatype, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	grp, err := locateGroup(parent, loc)
	if err != nil {
		return nil, err
	}
	if grp.file.readonly {
		return nil, errors.WithStack(ErrReadOnly)
	}
	if _, ok := grp.Links[name]; ok {
		return nil, errors.Wrapf(ErrExists, "'%s'", name)
	}
	dt := *dtype
	nt := &node{Kind: kindDatatype, Dtype: &dt, file: grp.file}
	grp.insert(name, &link{Type: vol.LinkTypeHard, Node: nt})
	return nt, nil
}

func (conn *Connector) DatatypeOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	grp, err := locateGroup(parent, loc)
	if err != nil {
		return nil, err
	}
	nd, err := walk(grp, name)
	if err != nil {
		return nil, err
	}
	if nd.Kind != kindDatatype {
		return nil, errors.Errorf("'%s' is a %s, not a named datatype", name, kindName(nd.Kind))
	}
	return nd, nil
}

func (conn *Connector) DatatypeGet(obj any, args *vol.DatatypeGetArgs, req *vol.Request) error {
	nd, ok := obj.(*node)
	if !ok || nd.Kind != kindDatatype {
		return errors.Errorf("object %T is not a named datatype", obj)
	}
	if args.What == vol.DatatypeGetDescriptor && args.Descriptor != nil {
		*args.Descriptor = *nd.Dtype
	}
	return nil
}

func (conn *Connector) DatatypeSpecific(obj any, args *vol.DatatypeSpecificArgs, req *vol.Request) error {
	nd, ok := obj.(*node)
	if !ok || nd.Kind != kindDatatype {
		return errors.Errorf("object %T is not a named datatype", obj)
	}
	if args.What == vol.DatatypeFlush {
		return nd.file.flush()
	}
	return nil
}

func (conn *Connector) DatatypeOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "native connector has no optional datatype operation %d", args.Op)
}

func (conn *Connector) DatatypeClose(obj any, req *vol.Request) error {
	if nd, ok := obj.(*node); !ok || nd.Kind != kindDatatype {
		return errors.Errorf("object %T is not a named datatype", obj)
	}
	return nil
}

// ---------------------------------------------------------------------------
// attribute

func (conn *Connector) AttrCreate(parent any, loc *vol.Loc, name string, dtype *vol.Datatype, space *vol.Dataspace, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	nd, err := attrTarget(parent, loc)
	if err != nil {
		return nil, err
	}
	if nd.file.readonly {
		return nil, errors.WithStack(ErrReadOnly)
	}
	item := &attr{
		Name:  name,
		Dtype: *dtype,
		Space: *space,
		Data:  make([]byte, dtype.NumBytes(space.NumElements())),
	}
	if err := nd.addAttr(item); err != nil {
		return nil, err
	}
	return &openAttr{owner: nd, item: item}, nil
}

func (conn *Connector) AttrOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	nd, err := attrTarget(parent, loc)
	if err != nil {
		return nil, err
	}
	item, ok := nd.findAttr(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "attribute '%s'", name)
	}
	return &openAttr{owner: nd, item: item}, nil
}

func (conn *Connector) AttrRead(obj any, memType *vol.Datatype, buf []byte, cfg *vol.Config, req *vol.Request) error {
	oa, ok := obj.(*openAttr)
	if !ok {
		return errors.Errorf("object %T is not an attribute", obj)
	}
	if len(buf) < len(oa.item.Data) {
		return errors.Errorf("buffer of %d bytes too small for %d", len(buf), len(oa.item.Data))
	}
	copy(buf, oa.item.Data)
	return nil
}

func (conn *Connector) AttrWrite(obj any, memType *vol.Datatype, buf []byte, cfg *vol.Config, req *vol.Request) error {
	oa, ok := obj.(*openAttr)
	if !ok {
		return errors.Errorf("object %T is not an attribute", obj)
	}
	if oa.owner.file.readonly {
		return errors.WithStack(ErrReadOnly)
	}
	if len(buf) < len(oa.item.Data) {
		return errors.Errorf("buffer of %d bytes too small for %d", len(buf), len(oa.item.Data))
	}
	copy(oa.item.Data, buf[:len(oa.item.Data)])
	oa.owner.file.dirty = true
	return nil
}

func (conn *Connector) AttrGet(obj any, args *vol.AttrGetArgs, req *vol.Request) error {
	oa, ok := obj.(*openAttr)
	if !ok {
		return errors.Errorf("object %T is not an attribute", obj)
	}
	switch args.What {
	case vol.AttrGetName:
		if args.Name != nil {
			*args.Name = oa.item.Name
		}
	case vol.AttrGetInfo:
		if args.Info != nil {
			args.Info.Name = oa.item.Name
			args.Info.DataSize = uint64(len(oa.item.Data))
		}
	case vol.AttrGetType:
		if args.Type != nil {
			*args.Type = oa.item.Dtype
		}
	case vol.AttrGetSpace:
		if args.Space != nil {
			*args.Space = oa.item.Space
		}
	}
	return nil
}

func (conn *Connector) AttrSpecific(parent any, loc *vol.Loc, args *vol.AttrSpecificArgs, req *vol.Request) error {
	nd, err := attrTarget(parent, loc)
	if err != nil {
		return err
	}
	switch args.What {
	case vol.AttrDelete:
		if nd.file.readonly {
			return errors.WithStack(ErrReadOnly)
		}
		return nd.removeAttr(args.Name)
	case vol.AttrExists:
		_, ok := nd.findAttr(args.Name)
		if args.Exists != nil {
			*args.Exists = ok
		}
	case vol.AttrRename:
		if nd.file.readonly {
			return errors.WithStack(ErrReadOnly)
		}
		item, ok := nd.findAttr(args.Name)
		if !ok {
			return errors.Wrapf(ErrNotFound, "attribute '%s'", args.Name)
		}
		if _, ok := nd.findAttr(args.NewName); ok {
			return errors.Wrapf(ErrExists, "attribute '%s'", args.NewName)
		}
		item.Name = args.NewName
		nd.file.dirty = true
	}
	return nil
}

func (conn *Connector) AttrOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "native connector has no optional attribute operation %d", args.Op)
}

func (conn *Connector) AttrClose(obj any, req *vol.Request) error {
	if _, ok := obj.(*openAttr); !ok {
		return errors.Errorf("object %T is not an attribute", obj)
	}
	return nil
}

// ---------------------------------------------------------------------------
// link

func (conn *Connector) LinkCreate(args *vol.LinkCreateArgs, parent any, loc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	grp, leaf, err := linkOf(parent, loc)
	if err != nil {
		return err
	}
	if grp.file.readonly {
		return errors.WithStack(ErrReadOnly)
	}
	if _, ok := grp.Links[leaf]; ok {
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
		if f, ok := target.(*file); ok {
			target = f.root
		}
		nd, ok := target.(*node)
		if !ok {
			return errors.Errorf("hard link target %T is not an object", target)
		}
		grp.insert(leaf, &link{Type: vol.LinkTypeHard, Node: nd})
	case vol.LinkCreateSoft:
		grp.insert(leaf, &link{Type: vol.LinkTypeSoft, Target: args.Target})
	}
	return nil
}

func (conn *Connector) LinkCopy(srcParent any, srcLoc *vol.Loc, dstParent any, dstLoc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	return linkTransfer(srcParent, srcLoc, dstParent, dstLoc, false)
}

func (conn *Connector) LinkMove(srcParent any, srcLoc *vol.Loc, dstParent any, dstLoc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	return linkTransfer(srcParent, srcLoc, dstParent, dstLoc, true)
}

func linkTransfer(srcParent any, srcLoc *vol.Loc, dstParent any, dstLoc *vol.Loc, move bool) error {
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
	lnk, ok := srcGrp.Links[srcName]
	if !ok {
		return errors.Wrapf(ErrNotFound, "link '%s'", srcName)
	}
	if _, ok := dstGrp.Links[dstName]; ok {
		return errors.Wrapf(ErrExists, "link '%s'", dstName)
	}
	dstGrp.insert(dstName, &link{Type: lnk.Type, Target: lnk.Target, Node: lnk.Node})
	if move {
		return srcGrp.unlink(srcName)
	}
	return nil
}

func (conn *Connector) LinkGet(parent any, loc *vol.Loc, args *vol.LinkGetArgs, req *vol.Request) error {
	grp, name, err := linkOf(parent, loc)
	if err != nil {
		return err
	}
	lnk, ok := grp.Links[name]
	if !ok {
		return errors.Wrapf(ErrNotFound, "link '%s'", name)
	}
	switch args.What {
	case vol.LinkGetInfo:
		if args.Info != nil {
			args.Info.Type = lnk.Type
			args.Info.Target = lnk.Target
			args.Info.CreationOrder = lnk.Order
		}
	case vol.LinkGetValue:
		if lnk.Type != vol.LinkTypeSoft {
			return errors.Errorf("link '%s' is hard, it has no value", name)
		}
		if args.Value != nil {
			*args.Value = lnk.Target
		}
	}
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
		return grp.unlink(name)
	case vol.LinkExists:
		grp, name, err := linkOf(parent, loc)
		if err != nil {
			return err
		}
		_, ok := grp.Links[name]
		if args.Exists != nil {
			*args.Exists = ok
		}
	case vol.LinkIterate:
		grp, err := locateGroup(parent, loc)
		if err != nil {
			return err
		}
		for _, name := range grp.orderedNames(args.IdxKind, args.Order) {
			lnk := grp.Links[name]
			info := &vol.LinkInfo{Type: lnk.Type, Target: lnk.Target, CreationOrder: lnk.Order}
			if err := args.Visit(name, info); err != nil {
				return err
			}
		}
	}
	return nil
}

func (conn *Connector) LinkOptional(parent any, loc *vol.Loc, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "native connector has no optional link operation %d", args.Op)
}

// ---------------------------------------------------------------------------
// object

func (conn *Connector) ObjectOpen(parent any, loc *vol.Loc, req *vol.Request) (any, vol.ObjectType, error) {
	target, err := locate(parent, loc)
	if err != nil {
		return nil, vol.ObjectTypeUnknown, err
	}
	if f, ok := target.(*file); ok {
		target = f.root
	}
	nd, ok := target.(*node)
	if !ok {
		return nil, vol.ObjectTypeUnknown, errors.Errorf("location resolves to %T, not an object", target)
	}
	return nd, objectType(nd), nil
}

func objectType(nd *node) vol.ObjectType {
	switch nd.Kind {
	case kindGroup:
		return vol.ObjectTypeGroup
	case kindDataset:
		return vol.ObjectTypeDataset
	case kindDatatype:
		return vol.ObjectTypeDatatype
	}
	return vol.ObjectTypeUnknown
}

func (conn *Connector) ObjectCopy(srcParent any, srcLoc *vol.Loc, srcName string, dstParent any, dstLoc *vol.Loc, dstName string, ccfg, acfg *vol.Config, req *vol.Request) error {
	srcGrp, err := locateGroup(srcParent, srcLoc)
	if err != nil {
		return err
	}
	src, err := walk(srcGrp, srcName)
	if err != nil {
		return err
	}
	dstGrp, err := locateGroup(dstParent, dstLoc)
	if err != nil {
		return err
	}
	if dstGrp.file.readonly {
		return errors.WithStack(ErrReadOnly)
	}
	if _, ok := dstGrp.Links[dstName]; ok {
		return errors.Wrapf(ErrExists, "'%s'", dstName)
	}
	clone, err := deepCopy(src, dstGrp.file)
	if err != nil {
		return err
	}
	dstGrp.insert(dstName, &link{Type: vol.LinkTypeHard, Node: clone})
	return nil
}

func deepCopy(src *node, f *file) (*node, error) {
	return copyNode(src, f, map[*node]*node{})
}

// seen maps source to copied nodes, so aliased hard links stay aliased
// in the copy and cycles terminate.
func copyNode(src *node, f *file, seen map[*node]*node) (*node, error) {
	if clone, ok := seen[src]; ok {
		return clone, nil
	}
	clone := &node{
		Kind:      src.Kind,
		NextOrder: src.NextOrder,
		file:      f,
	}
	seen[src] = clone
	if src.Dtype != nil {
		dt := *src.Dtype
		clone.Dtype = &dt
	}
	if src.Space != nil {
		sp := *src.Space
		clone.Space = &sp
	}
	if src.Kind == kindDataset {
		data, err := src.payload()
		if err != nil {
			return nil, err
		}
		clone.data = append([]byte{}, data...)
		clone.dirty = true
	}
	if src.Kind == kindGroup {
		clone.Links = map[string]*link{}
		for _, name := range src.Order {
			lnk := src.Links[name]
			entry := &link{Type: lnk.Type, Target: lnk.Target, Order: lnk.Order}
			if lnk.Type == vol.LinkTypeHard {
				sub, err := copyNode(lnk.Node, f, seen)
				if err != nil {
					return nil, err
				}
				entry.Node = sub
			}
			clone.Links[name] = entry
			clone.Order = append(clone.Order, name)
		}
	}
	for _, item := range src.Attrs {
		copied := &attr{Name: item.Name, Dtype: item.Dtype, Space: item.Space}
		copied.Data = append([]byte{}, item.Data...)
		clone.Attrs = append(clone.Attrs, copied)
	}
	return clone, nil
}

func (conn *Connector) ObjectGet(obj any, loc *vol.Loc, args *vol.ObjectGetArgs, req *vol.Request) error {
	target, err := locate(obj, loc)
	if err != nil {
		return err
	}
	if f, ok := target.(*file); ok {
		target = f.root
	}
	nd, ok := target.(*node)
	if !ok {
		return errors.Errorf("location resolves to %T, not an object", target)
	}
	if args.What == vol.ObjectGetInfo && args.Info != nil {
		args.Info.Type = objectType(nd)
		args.Info.AttrCount = uint64(len(nd.Attrs))
	}
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
	case vol.ObjectFlush:
		f, err := fileOf(obj)
		if err != nil {
			return err
		}
		return f.flush()
	case vol.ObjectRefresh:
		// in-memory tree is authoritative
	}
	return nil
}

func (conn *Connector) ObjectOptional(obj any, loc *vol.Loc, args *vol.OptionalArgs, req *vol.Request) error {
	return errors.Wrapf(vol.ErrUnsupported, "native connector has no optional object operation %d", args.Op)
}
