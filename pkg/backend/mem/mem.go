// Package mem is an in-memory connector: the whole object hierarchy
// lives on the heap. It implements every capability of the dispatch
// core, which makes it the reference back-end for tests and a scratch
// container for applications.
package mem

import (
	"strings"

	"emperror.dev/errors"

	"github.com/voltree-archive/voltree/pkg/vol"
)

var (
	ErrNotFound = errors.New("object not found")
	ErrExists   = errors.New("object already exists")
	ErrReadOnly = errors.New("container is read only")
)

// File is a container. The root group carries the hierarchy.
type File struct {
	name     string
	root     *Group
	readonly bool
}

// Group holds named links in creation order plus attributes.
type Group struct {
	file      *File
	links     map[string]*Link
	order     []string
	attrs     *attrSet
	nextOrder int64
}

func newGroup(file *File) *Group {
	return &Group{
		file:  file,
		links: map[string]*Link{},
		order: []string{},
		attrs: newAttrSet(),
	}
}

// Link connects a name to an object (hard) or to a path (soft).
type Link struct {
	typ    vol.LinkType
	target string // soft only
	obj    any    // hard only: *Group, *Dataset or *NamedType
	order  int64
}

// Dataset stores its elements as one flat byte slice.
type Dataset struct {
	file  *File
	dtype vol.Datatype
	space vol.Dataspace
	data  []byte
	attrs *attrSet
}

// NamedType is a committed datatype.
type NamedType struct {
	file  *File
	dtype vol.Datatype
	attrs *attrSet
}

// Attr is a named, typed value attached to a group, dataset or named
// datatype.
type Attr struct {
	file  *File
	name  string
	dtype vol.Datatype
	space vol.Dataspace
	data  []byte
}

type attrSet struct {
	attrs map[string]*Attr
	order []string
}

func newAttrSet() *attrSet {
	return &attrSet{attrs: map[string]*Attr{}, order: []string{}}
}

func (as *attrSet) add(attr *Attr) error {
	if _, ok := as.attrs[attr.name]; ok {
		return errors.Wrapf(ErrExists, "attribute '%s'", attr.name)
	}
	as.attrs[attr.name] = attr
	as.order = append(as.order, attr.name)
	return nil
}

func (as *attrSet) remove(name string) error {
	if _, ok := as.attrs[name]; !ok {
		return errors.Wrapf(ErrNotFound, "attribute '%s'", name)
	}
	delete(as.attrs, name)
	for i, entry := range as.order {
		if entry == name {
			as.order = append(as.order[:i], as.order[i+1:]...)
			break
		}
	}
	return nil
}

func (as *attrSet) rename(oldName, newName string) error {
	attr, ok := as.attrs[oldName]
	if !ok {
		return errors.Wrapf(ErrNotFound, "attribute '%s'", oldName)
	}
	if _, ok := as.attrs[newName]; ok {
		return errors.Wrapf(ErrExists, "attribute '%s'", newName)
	}
	delete(as.attrs, oldName)
	attr.name = newName
	as.attrs[newName] = attr
	for i, entry := range as.order {
		if entry == oldName {
			as.order[i] = newName
			break
		}
	}
	return nil
}

// attrHolder is implemented by every object kind attributes can hang on.
type attrHolder interface {
	attrSet() *attrSet
	container() *File
}

func (grp *Group) attrSet() *attrSet    { return grp.attrs }
func (grp *Group) container() *File     { return grp.file }
func (dset *Dataset) attrSet() *attrSet { return dset.attrs }
func (dset *Dataset) container() *File  { return dset.file }
func (nt *NamedType) attrSet() *attrSet { return nt.attrs }
func (nt *NamedType) container() *File  { return nt.file }

func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

// asGroup normalizes a connector private object to the group it stands
// for: a container is its root group.
func asGroup(obj any) (*Group, error) {
	switch o := obj.(type) {
	case *File:
		return o.root, nil
	case *Group:
		return o, nil
	default:
		return nil, errors.Errorf("object %T is not a group", obj)
	}
}

func fileOf(obj any) (*File, error) {
	switch o := obj.(type) {
	case *File:
		return o, nil
	case *Group:
		return o.file, nil
	case *Dataset:
		return o.file, nil
	case *NamedType:
		return o.file, nil
	case *Attr:
		return o.file, nil
	default:
		return nil, errors.Errorf("object %T belongs to no container", obj)
	}
}

// walk resolves a slash separated path from base, following soft links
// relative to the container root.
func walk(base *Group, path string) (any, error) {
	var current any = base
	for _, part := range splitPath(path) {
		grp, err := asGroup(current)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot traverse '%s'", part)
		}
		lnk, ok := grp.links[part]
		if !ok {
			return nil, errors.Wrapf(ErrNotFound, "'%s'", part)
		}
		current, err = lnk.resolve(grp.file)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

func (lnk *Link) resolve(file *File) (any, error) {
	switch lnk.typ {
	case vol.LinkTypeHard:
		return lnk.obj, nil
	case vol.LinkTypeSoft:
		return walk(file.root, lnk.target)
	default:
		return nil, errors.Errorf("unknown link type %d", lnk.typ)
	}
}

// linkAt returns the n-th link of a group according to the index kind
// and order of an index location.
func (grp *Group) linkAt(loc *vol.Loc) (string, *Link, error) {
	names := grp.orderedNames(loc.IdxKind, loc.Order)
	if loc.Position >= uint64(len(names)) {
		return "", nil, errors.Wrapf(ErrNotFound, "index %d out of %d links", loc.Position, len(names))
	}
	name := names[loc.Position]
	return name, grp.links[name], nil
}

func (grp *Group) orderedNames(idx vol.IndexKind, order vol.IterOrder) []string {
	var names []string
	switch idx {
	case vol.IndexCreationOrder:
		names = append(names, grp.order...)
	default: // IndexName
		names = append(names, grp.order...)
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

// locate resolves location parameters relative to a parent object. The
// dispatch core transports the Loc untouched; interpreting it is this
// connector's half of the contract.
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
			base, err := walk(grp, loc.IdxName)
			if err != nil {
				return nil, err
			}
			if grp, err = asGroup(base); err != nil {
				return nil, err
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
		file, err := fileOf(parent)
		if err != nil {
			return nil, err
		}
		return walk(file.root, ref.Path)
	default:
		return nil, errors.Errorf("unknown location type %d", loc.Type)
	}
}

func typeOf(obj any) vol.ObjectType {
	switch obj.(type) {
	case *File, *Group:
		return vol.ObjectTypeGroup
	case *Dataset:
		return vol.ObjectTypeDataset
	case *NamedType:
		return vol.ObjectTypeDatatype
	default:
		return vol.ObjectTypeUnknown
	}
}
