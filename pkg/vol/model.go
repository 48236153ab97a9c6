package vol

import (
	"emperror.dev/errors"
	"github.com/fxamacker/cbor/v2"
)

// TypeClass is the coarse classification of an element datatype.
type TypeClass uint8

const (
	TypeInvalid TypeClass = iota
	TypeInteger
	TypeFloat
	TypeString
	TypeOpaque
)

var typeClassString = map[TypeClass]string{
	TypeInvalid: "invalid",
	TypeInteger: "integer",
	TypeFloat:   "float",
	TypeString:  "string",
	TypeOpaque:  "opaque",
}

func (tc TypeClass) String() string {
	if str, ok := typeClassString[tc]; ok {
		return str
	}
	return "unknown"
}

// Datatype describes the element type of a dataset or attribute. It is
// deliberately small: full type encoding is the concern of the connectors
// and of higher layers, the dispatch core only transports it.
type Datatype struct {
	Class  TypeClass `json:"class" cbor:"1,keyasint"`
	Size   uint32    `json:"size" cbor:"2,keyasint"`
	Signed bool      `json:"signed,omitempty" cbor:"3,keyasint,omitempty"`
}

// NumBytes returns the storage size of count elements.
func (dt *Datatype) NumBytes(count uint64) uint64 {
	return count * uint64(dt.Size)
}

// Dataspace describes the extent of a dataset or attribute.
type Dataspace struct {
	Dims    []uint64 `json:"dims" cbor:"1,keyasint"`
	MaxDims []uint64 `json:"maxdims,omitempty" cbor:"2,keyasint,omitempty"`
}

// NumElements returns the number of elements in the current extent.
func (ds *Dataspace) NumElements() uint64 {
	if len(ds.Dims) == 0 {
		return 1 // scalar
	}
	var count uint64 = 1
	for _, dim := range ds.Dims {
		count *= dim
	}
	return count
}

// Selection restricts a read or write to part of a dataspace. The zero
// value selects everything.
type Selection struct {
	Offset []uint64 `json:"offset,omitempty" cbor:"1,keyasint,omitempty"`
	Count  []uint64 `json:"count,omitempty" cbor:"2,keyasint,omitempty"`
}

// IsAll reports whether the selection covers the whole dataspace.
func (sel *Selection) IsAll() bool {
	return sel == nil || len(sel.Count) == 0
}

// ObjectType is the discovered type of an object opened through the
// type-agnostic object open entry.
type ObjectType uint8

const (
	ObjectTypeUnknown ObjectType = iota
	ObjectTypeGroup
	ObjectTypeDataset
	ObjectTypeDatatype
)

var objectTypeString = map[ObjectType]string{
	ObjectTypeUnknown:  "unknown",
	ObjectTypeGroup:    "group",
	ObjectTypeDataset:  "dataset",
	ObjectTypeDatatype: "named datatype",
}

func (ot ObjectType) String() string {
	if str, ok := objectTypeString[ot]; ok {
		return str
	}
	return "unknown"
}

// LinkType distinguishes hard links (owning) from soft links (by path).
type LinkType uint8

const (
	LinkTypeHard LinkType = iota
	LinkTypeSoft
)

// FileInfo is the payload of the file info query.
type FileInfo struct {
	Name        string
	ObjectCount uint64
}

// GroupInfo is the payload of the group info query.
type GroupInfo struct {
	LinkCount        uint64
	MaxCreationOrder int64
}

// AttrInfo is the payload of the attribute info query.
type AttrInfo struct {
	Name     string
	DataSize uint64
}

// LinkInfo is the payload of the link info query.
type LinkInfo struct {
	Type          LinkType
	Target        string // soft link value, empty for hard links
	CreationOrder int64
}

// ObjectInfo is the payload of the object info query.
type ObjectInfo struct {
	Type      ObjectType
	AttrCount uint64
}

// RefType tags the flavour of a serialized reference.
type RefType uint8

const (
	RefObject RefType = iota
	RefRegion
)

// Reference is the shared serialized reference format. Connectors resolve
// the path relative to their own container; the dispatch core only
// transports the encoded bytes.
type Reference struct {
	Type RefType   `cbor:"1,keyasint"`
	Path string    `cbor:"2,keyasint"`
	Sel  Selection `cbor:"3,keyasint,omitempty"`
}

// Encode serializes the reference into its interchange form.
func (ref *Reference) Encode() ([]byte, error) {
	data, err := cbor.Marshal(ref)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot encode reference to '%s'", ref.Path)
	}
	return data, nil
}

// DecodeReference parses serialized reference bytes.
func DecodeReference(data []byte) (*Reference, error) {
	var ref = &Reference{}
	if err := cbor.Unmarshal(data, ref); err != nil {
		return nil, errors.Wrap(err, "cannot decode reference")
	}
	return ref, nil
}
