package vol

import (
	"time"
)

// FileFlags modify file create/open behaviour.
type FileFlags uint32

const (
	FlagReadOnly  FileFlags = 1 << iota // open: no modifications
	FlagReadWrite                       // open: allow modifications
	FlagTruncate                        // create: overwrite an existing container
	FlagExclusive                       // create: fail if the container exists
)

// Connector is the minimal contract of a storage back-end implementation.
// Everything beyond the name is a capability: a connector implements the
// per-kind interfaces below for the object kinds it supports. The dispatch
// core discovers capabilities by type assertion; a missing interface is
// reported as ErrUnsupported without any callback running.
//
// All object parameters typed `any` are connector private. The dispatch
// core never interprets them, it only passes them back to the same
// connector.
type Connector interface {
	ConnectorName() string
}

// LifecycleConnector is implemented by connectors that need explicit
// setup/teardown around registration.
type LifecycleConnector interface {
	Initialize(cfg *Config) error
	Terminate(cfg *Config) error
}

// FileConnector handles container level operations. FileCreate/FileOpen
// have no parent: the container is the root of the object hierarchy.
type FileConnector interface {
	FileCreate(name string, flags FileFlags, ccfg, acfg *Config, req *Request) (any, error)
	FileOpen(name string, flags FileFlags, acfg *Config, req *Request) (any, error)
	FileGet(obj any, args *FileGetArgs, req *Request) error
	FileSpecific(obj any, args *FileSpecificArgs, req *Request) error
	FileOptional(obj any, args *OptionalArgs, req *Request) error
	FileClose(obj any, req *Request) error
}

type GroupConnector interface {
	GroupCreate(parent any, loc *Loc, name string, ccfg, acfg *Config, req *Request) (any, error)
	GroupOpen(parent any, loc *Loc, name string, acfg *Config, req *Request) (any, error)
	GroupGet(obj any, args *GroupGetArgs, req *Request) error
	GroupSpecific(obj any, args *GroupSpecificArgs, req *Request) error
	GroupOptional(obj any, args *OptionalArgs, req *Request) error
	GroupClose(obj any, req *Request) error
}

type DatasetConnector interface {
	DatasetCreate(parent any, loc *Loc, name string, dtype *Datatype, space *Dataspace, ccfg, acfg *Config, req *Request) (any, error)
	DatasetOpen(parent any, loc *Loc, name string, acfg *Config, req *Request) (any, error)
	DatasetRead(obj any, memType *Datatype, memSel, fileSel *Selection, cfg *Config, buf []byte, req *Request) error
	DatasetWrite(obj any, memType *Datatype, memSel, fileSel *Selection, cfg *Config, buf []byte, req *Request) error
	DatasetGet(obj any, args *DatasetGetArgs, req *Request) error
	DatasetSpecific(obj any, args *DatasetSpecificArgs, req *Request) error
	DatasetOptional(obj any, args *OptionalArgs, req *Request) error
	DatasetClose(obj any, req *Request) error
}

type DatatypeConnector interface {
	DatatypeCommit(parent any, loc *Loc, name string, dtype *Datatype, ccfg, acfg *Config, req *Request) (any, error)
	DatatypeOpen(parent any, loc *Loc, name string, acfg *Config, req *Request) (any, error)
	DatatypeGet(obj any, args *DatatypeGetArgs, req *Request) error
	DatatypeSpecific(obj any, args *DatatypeSpecificArgs, req *Request) error
	DatatypeOptional(obj any, args *OptionalArgs, req *Request) error
	DatatypeClose(obj any, req *Request) error
}

type AttributeConnector interface {
	AttrCreate(parent any, loc *Loc, name string, dtype *Datatype, space *Dataspace, ccfg, acfg *Config, req *Request) (any, error)
	AttrOpen(parent any, loc *Loc, name string, acfg *Config, req *Request) (any, error)
	AttrRead(obj any, memType *Datatype, buf []byte, cfg *Config, req *Request) error
	AttrWrite(obj any, memType *Datatype, buf []byte, cfg *Config, req *Request) error
	AttrGet(obj any, args *AttrGetArgs, req *Request) error
	AttrSpecific(parent any, loc *Loc, args *AttrSpecificArgs, req *Request) error
	AttrOptional(obj any, args *OptionalArgs, req *Request) error
	AttrClose(obj any, req *Request) error
}

// LinkConnector handles link manipulation. Links are not objects: there
// is no open/close, every operation addresses links through a parent
// object and location parameters.
type LinkConnector interface {
	LinkCreate(args *LinkCreateArgs, parent any, loc *Loc, ccfg, acfg *Config, req *Request) error
	LinkCopy(srcParent any, srcLoc *Loc, dstParent any, dstLoc *Loc, ccfg, acfg *Config, req *Request) error
	LinkMove(srcParent any, srcLoc *Loc, dstParent any, dstLoc *Loc, ccfg, acfg *Config, req *Request) error
	LinkGet(parent any, loc *Loc, args *LinkGetArgs, req *Request) error
	LinkSpecific(parent any, loc *Loc, args *LinkSpecificArgs, req *Request) error
	LinkOptional(parent any, loc *Loc, args *OptionalArgs, req *Request) error
}

// ObjectConnector handles type-agnostic object operations. ObjectOpen
// reports the discovered type so the caller can mint a handle of the
// right kind.
type ObjectConnector interface {
	ObjectOpen(parent any, loc *Loc, req *Request) (any, ObjectType, error)
	ObjectCopy(srcParent any, srcLoc *Loc, srcName string, dstParent any, dstLoc *Loc, dstName string, ccfg, acfg *Config, req *Request) error
	ObjectGet(obj any, loc *Loc, args *ObjectGetArgs, req *Request) error
	ObjectSpecific(obj any, loc *Loc, args *ObjectSpecificArgs, req *Request) error
	ObjectOptional(obj any, loc *Loc, args *OptionalArgs, req *Request) error
}

// RequestConnector is implemented by connectors supporting asynchronous
// completion. Tokens are produced by the connector through the Request
// out slot of any operation; polling, cancelling and freeing them is the
// caller's business, the core only forwards.
type RequestConnector interface {
	RequestWait(token any, timeout time.Duration) (RequestStatus, error)
	RequestCancel(token any) (RequestStatus, error)
	RequestFree(token any) error
}
