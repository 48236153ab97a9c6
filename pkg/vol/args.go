package vol

// Tagged argument payloads for the get / specific / optional entry points.
// Each kind enumerates its legitimate sub-operations; the tag decides
// which fields are read and which out-pointers are filled. New query
// kinds extend the enumeration instead of growing the dispatch surface.

// ---------------------------------------------------------------------------
// file

type FileGetKind uint8

const (
	FileGetName FileGetKind = iota
	FileGetInfo
	FileGetConfig
)

type FileGetArgs struct {
	What FileGetKind

	Name   *string   // FileGetName
	Info   *FileInfo // FileGetInfo
	Config *Config   // FileGetConfig (filled with the config the file was opened with)
}

type FileSpecificKind uint8

const (
	FileFlush FileSpecificKind = iota
	// FileIsAccessible and FileDelete operate before any object exists;
	// their class is resolved from AccessCfg, not from an open file. See
	// Registry.FileIsAccessible / Registry.FileDelete.
	FileIsAccessible
	FileDelete
)

type FileSpecificArgs struct {
	What FileSpecificKind

	// FileIsAccessible / FileDelete
	Name       string
	AccessCfg  *Config
	Accessible *bool // out, FileIsAccessible
}

// ---------------------------------------------------------------------------
// group

type GroupGetKind uint8

const (
	GroupGetInfo GroupGetKind = iota
)

type GroupGetArgs struct {
	What GroupGetKind

	Loc  *Loc       // GroupGetInfo: which group, relative to the dispatched one
	Info *GroupInfo // out
}

type GroupSpecificKind uint8

const (
	GroupFlush GroupSpecificKind = iota
	GroupRefresh
)

type GroupSpecificArgs struct {
	What GroupSpecificKind
}

// ---------------------------------------------------------------------------
// dataset

type DatasetGetKind uint8

const (
	DatasetGetType DatasetGetKind = iota
	DatasetGetSpace
	DatasetGetStorageSize
)

type DatasetGetArgs struct {
	What DatasetGetKind

	Type        *Datatype  // out, DatasetGetType
	Space       *Dataspace // out, DatasetGetSpace
	StorageSize *uint64    // out, DatasetGetStorageSize
}

type DatasetSpecificKind uint8

const (
	DatasetSetExtent DatasetSpecificKind = iota
	DatasetFlush
	DatasetRefresh
)

type DatasetSpecificArgs struct {
	What DatasetSpecificKind

	Dims []uint64 // DatasetSetExtent
}

// ---------------------------------------------------------------------------
// datatype

type DatatypeGetKind uint8

const (
	DatatypeGetDescriptor DatatypeGetKind = iota
)

type DatatypeGetArgs struct {
	What DatatypeGetKind

	Descriptor *Datatype // out
}

type DatatypeSpecificKind uint8

const (
	DatatypeFlush DatatypeSpecificKind = iota
	DatatypeRefresh
)

type DatatypeSpecificArgs struct {
	What DatatypeSpecificKind
}

// ---------------------------------------------------------------------------
// attribute

type AttrGetKind uint8

const (
	AttrGetName AttrGetKind = iota
	AttrGetInfo
	AttrGetType
	AttrGetSpace
)

type AttrGetArgs struct {
	What AttrGetKind

	Name  *string    // out, AttrGetName
	Info  *AttrInfo  // out, AttrGetInfo
	Type  *Datatype  // out, AttrGetType
	Space *Dataspace // out, AttrGetSpace
}

type AttrSpecificKind uint8

const (
	AttrDelete AttrSpecificKind = iota
	AttrExists
	AttrRename
)

type AttrSpecificArgs struct {
	What AttrSpecificKind

	Name    string // AttrDelete / AttrExists / AttrRename (old name)
	NewName string // AttrRename
	Exists  *bool  // out, AttrExists
}

// ---------------------------------------------------------------------------
// link

type LinkCreateKind uint8

const (
	LinkCreateHard LinkCreateKind = iota
	LinkCreateSoft
)

type LinkCreateArgs struct {
	What LinkCreateKind

	// LinkCreateHard: the object the new link points to
	TargetObj any
	TargetLoc *Loc

	// LinkCreateSoft: the path the new link stores
	Target string
}

type LinkGetKind uint8

const (
	LinkGetInfo LinkGetKind = iota
	LinkGetValue
)

type LinkGetArgs struct {
	What LinkGetKind

	Info  *LinkInfo // out, LinkGetInfo
	Value *string   // out, LinkGetValue (soft link target)
}

type LinkSpecificKind uint8

const (
	LinkDelete LinkSpecificKind = iota
	LinkExists
	LinkIterate
)

// LinkIterFunc visits one link during iteration. Returning an error stops
// the walk and propagates.
type LinkIterFunc func(name string, info *LinkInfo) error

type LinkSpecificArgs struct {
	What LinkSpecificKind

	Exists *bool // out, LinkExists

	// LinkIterate
	IdxKind IndexKind
	Order   IterOrder
	Visit   LinkIterFunc
}

// ---------------------------------------------------------------------------
// object

type ObjectGetKind uint8

const (
	ObjectGetInfo ObjectGetKind = iota
)

type ObjectGetArgs struct {
	What ObjectGetKind

	Info *ObjectInfo // out
}

type ObjectSpecificKind uint8

const (
	ObjectExists ObjectSpecificKind = iota
	ObjectFlush
	ObjectRefresh
)

type ObjectSpecificArgs struct {
	What ObjectSpecificKind

	Exists *bool // out, ObjectExists
}

// ---------------------------------------------------------------------------
// optional

// OptionalArgs is the untyped escape hatch for connector private
// extensions. The dispatch core forwards the payload uninterpreted.
// Version lets a connector evolve its private operations compatibly.
type OptionalArgs struct {
	Version uint
	Op      int
	Payload any
}
