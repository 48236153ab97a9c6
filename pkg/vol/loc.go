package vol

import (
	"emperror.dev/errors"

	"github.com/voltree-archive/voltree/pkg/handle"
)

// LocType selects the active variant of a Loc.
type LocType uint8

const (
	LocSelf LocType = iota
	LocName
	LocIndex
	LocRef
)

var locTypeString = map[LocType]string{
	LocSelf:  "self",
	LocName:  "name",
	LocIndex: "index",
	LocRef:   "reference",
}

func (lt LocType) String() string {
	if str, ok := locTypeString[lt]; ok {
		return str
	}
	return "unknown"
}

// IndexKind selects the index a by-index location walks.
type IndexKind uint8

const (
	IndexName IndexKind = iota
	IndexCreationOrder
)

// IterOrder is the traversal order of an index walk.
type IterOrder uint8

const (
	OrderIncreasing IterOrder = iota
	OrderDecreasing
	OrderNative
)

// Loc describes where an operation applies relative to a parent object.
// Exactly one variant is active; ObjType is always set to the handle kind
// of the object the location is resolved against. The dispatch core never
// interprets a Loc, connectors do.
type Loc struct {
	Type    LocType
	ObjType handle.Kind

	// LocName
	Name      string
	AccessCfg *Config

	// LocIndex
	IdxName  string
	IdxKind  IndexKind
	Order    IterOrder
	Position uint64

	// LocRef
	RefType RefType
	Ref     []byte
}

// SelfLoc addresses the parent object itself.
func SelfLoc(objType handle.Kind) *Loc {
	return &Loc{Type: LocSelf, ObjType: objType}
}

// NameLoc addresses an object by path name relative to the parent.
func NameLoc(objType handle.Kind, name string, acfg *Config) *Loc {
	return &Loc{Type: LocName, ObjType: objType, Name: name, AccessCfg: acfg}
}

// IndexLoc addresses the n-th link of a group, ordered by the given index.
func IndexLoc(objType handle.Kind, name string, idx IndexKind, order IterOrder, pos uint64, acfg *Config) *Loc {
	return &Loc{Type: LocIndex, ObjType: objType, IdxName: name, IdxKind: idx, Order: order, Position: pos, AccessCfg: acfg}
}

// RefLoc addresses an object through a serialized reference.
func RefLoc(objType handle.Kind, refType RefType, ref []byte, acfg *Config) *Loc {
	return &Loc{Type: LocRef, ObjType: objType, RefType: refType, Ref: ref, AccessCfg: acfg}
}

// Validate checks the invariants of the active variant.
func (loc *Loc) Validate() error {
	if loc == nil {
		return errors.Wrap(ErrInvalidArgument, "no location parameters")
	}
	switch loc.Type {
	case LocSelf:
	case LocName:
		// empty name is legal, it addresses the parent like LocSelf does
	case LocIndex:
		if loc.IdxKind > IndexCreationOrder {
			return errors.Wrapf(ErrInvalidArgument, "invalid index kind %d", loc.IdxKind)
		}
		if loc.Order > OrderNative {
			return errors.Wrapf(ErrInvalidArgument, "invalid iteration order %d", loc.Order)
		}
	case LocRef:
		if len(loc.Ref) == 0 {
			return errors.Wrap(ErrInvalidArgument, "empty reference")
		}
	default:
		return errors.Wrapf(ErrInvalidArgument, "invalid location type %d", loc.Type)
	}
	return nil
}
