// Package passthru is a transparent forwarding connector. Every call is
// logged and handed to an inner connector; capabilities the inner
// connector lacks stay absent, the forwarder never fakes them. Stacking
// it over a real back-end gives call tracing without touching the
// back-end itself.
package passthru

import (
	"time"

	"emperror.dev/errors"
	"github.com/rs/zerolog"

	"github.com/voltree-archive/voltree/pkg/vol"
)

// Connector wraps an inner connector. It implements every capability
// interface so the dispatch core always reaches it, but forwards only
// what the inner connector actually implements.
type Connector struct {
	inner  vol.Connector
	logger zerolog.Logger
}

func NewConnector(inner vol.Connector, logger zerolog.Logger) (*Connector, error) {
	if inner == nil {
		return nil, errors.Wrap(vol.ErrInvalidArgument, "passthru needs an inner connector")
	}
	return &Connector{
		inner:  inner,
		logger: logger.With().Str("inner", inner.ConnectorName()).Logger(),
	}, nil
}

// Descriptor returns the built-in class descriptor for a passthru stack
// over the given inner connector.
func Descriptor(inner vol.Connector, logger zerolog.Logger) (*vol.ClassDescriptor, error) {
	conn, err := NewConnector(inner, logger)
	if err != nil {
		return nil, err
	}
	return &vol.ClassDescriptor{
		Version:   vol.DescriptorVersion,
		Value:     vol.ValuePassthru,
		Name:      "passthru",
		Connector: conn,
	}, nil
}

func (conn *Connector) ConnectorName() string { return "passthru" }

// Inner exposes the wrapped connector.
func (conn *Connector) Inner() vol.Connector { return conn.inner }

func (conn *Connector) trace(op string) {
	conn.logger.Trace().Str("op", op).Msg("forwarding")
}

func (conn *Connector) Initialize(cfg *vol.Config) error {
	conn.trace("initialize")
	if lc, ok := conn.inner.(vol.LifecycleConnector); ok {
		return lc.Initialize(cfg)
	}
	return nil
}

func (conn *Connector) Terminate(cfg *vol.Config) error {
	conn.trace("terminate")
	if lc, ok := conn.inner.(vol.LifecycleConnector); ok {
		return lc.Terminate(cfg)
	}
	return nil
}

var _ vol.Connector = &Connector{}
var _ vol.LifecycleConnector = &Connector{}
var _ vol.FileConnector = &Connector{}
var _ vol.GroupConnector = &Connector{}
var _ vol.DatasetConnector = &Connector{}
var _ vol.DatatypeConnector = &Connector{}
var _ vol.AttributeConnector = &Connector{}
var _ vol.LinkConnector = &Connector{}
var _ vol.ObjectConnector = &Connector{}
var _ vol.RequestConnector = &Connector{}

func (conn *Connector) file() (vol.FileConnector, error) {
	if inner, ok := conn.inner.(vol.FileConnector); ok {
		return inner, nil
	}
	return nil, errors.Wrapf(vol.ErrUnsupported, "inner connector '%s' has no file capability", conn.inner.ConnectorName())
}

func (conn *Connector) group() (vol.GroupConnector, error) {
	if inner, ok := conn.inner.(vol.GroupConnector); ok {
		return inner, nil
	}
	return nil, errors.Wrapf(vol.ErrUnsupported, "inner connector '%s' has no group capability", conn.inner.ConnectorName())
}

func (conn *Connector) dataset() (vol.DatasetConnector, error) {
	if inner, ok := conn.inner.(vol.DatasetConnector); ok {
		return inner, nil
	}
	return nil, errors.Wrapf(vol.ErrUnsupported, "inner connector '%s' has no dataset capability", conn.inner.ConnectorName())
}

func (conn *Connector) datatype() (vol.DatatypeConnector, error) {
	if inner, ok := conn.inner.(vol.DatatypeConnector); ok {
		return inner, nil
	}
	return nil, errors.Wrapf(vol.ErrUnsupported, "inner connector '%s' has no datatype capability", conn.inner.ConnectorName())
}

func (conn *Connector) attribute() (vol.AttributeConnector, error) {
	if inner, ok := conn.inner.(vol.AttributeConnector); ok {
		return inner, nil
	}
	return nil, errors.Wrapf(vol.ErrUnsupported, "inner connector '%s' has no attribute capability", conn.inner.ConnectorName())
}

func (conn *Connector) link() (vol.LinkConnector, error) {
	if inner, ok := conn.inner.(vol.LinkConnector); ok {
		return inner, nil
	}
	return nil, errors.Wrapf(vol.ErrUnsupported, "inner connector '%s' has no link capability", conn.inner.ConnectorName())
}

func (conn *Connector) object() (vol.ObjectConnector, error) {
	if inner, ok := conn.inner.(vol.ObjectConnector); ok {
		return inner, nil
	}
	return nil, errors.Wrapf(vol.ErrUnsupported, "inner connector '%s' has no object capability", conn.inner.ConnectorName())
}

func (conn *Connector) request() (vol.RequestConnector, error) {
	if inner, ok := conn.inner.(vol.RequestConnector); ok {
		return inner, nil
	}
	return nil, errors.Wrapf(vol.ErrUnsupported, "inner connector '%s' has no async capability", conn.inner.ConnectorName())
}

// ---------------------------------------------------------------------------
// file

func (conn *Connector) FileCreate(name string, flags vol.FileFlags, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	inner, err := conn.file()
	if err != nil {
		return nil, err
	}
	conn.trace("file create")
	return inner.FileCreate(name, flags, ccfg, acfg, req)
}

func (conn *Connector) FileOpen(name string, flags vol.FileFlags, acfg *vol.Config, req *vol.Request) (any, error) {
	inner, err := conn.file()
	if err != nil {
		return nil, err
	}
	conn.trace("file open")
	return inner.FileOpen(name, flags, acfg, req)
}

func (conn *Connector) FileGet(obj any, args *vol.FileGetArgs, req *vol.Request) error {
	inner, err := conn.file()
	if err != nil {
		return err
	}
	conn.trace("file get")
	return inner.FileGet(obj, args, req)
}

func (conn *Connector) FileSpecific(obj any, args *vol.FileSpecificArgs, req *vol.Request) error {
	inner, err := conn.file()
	if err != nil {
		return err
	}
	conn.trace("file specific")
	return inner.FileSpecific(obj, args, req)
}

func (conn *Connector) FileOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	inner, err := conn.file()
	if err != nil {
		return err
	}
	conn.trace("file optional")
	return inner.FileOptional(obj, args, req)
}

func (conn *Connector) FileClose(obj any, req *vol.Request) error {
	inner, err := conn.file()
	if err != nil {
		return err
	}
	conn.trace("file close")
	return inner.FileClose(obj, req)
}

// ---------------------------------------------------------------------------
// group

func (conn *Connector) GroupCreate(parent any, loc *vol.Loc, name string, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	inner, err := conn.group()
	if err != nil {
		return nil, err
	}
	conn.trace("group create")
	return inner.GroupCreate(parent, loc, name, ccfg, acfg, req)
}

func (conn *Connector) GroupOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	inner, err := conn.group()
	if err != nil {
		return nil, err
	}
	conn.trace("group open")
	return inner.GroupOpen(parent, loc, name, acfg, req)
}

func (conn *Connector) GroupGet(obj any, args *vol.GroupGetArgs, req *vol.Request) error {
	inner, err := conn.group()
	if err != nil {
		return err
	}
	conn.trace("group get")
	return inner.GroupGet(obj, args, req)
}

func (conn *Connector) GroupSpecific(obj any, args *vol.GroupSpecificArgs, req *vol.Request) error {
	inner, err := conn.group()
	if err != nil {
		return err
	}
	conn.trace("group specific")
	return inner.GroupSpecific(obj, args, req)
}

func (conn *Connector) GroupOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	inner, err := conn.group()
	if err != nil {
		return err
	}
	conn.trace("group optional")
	return inner.GroupOptional(obj, args, req)
}

func (conn *Connector) GroupClose(obj any, req *vol.Request) error {
	inner, err := conn.group()
	if err != nil {
		return err
	}
	conn.trace("group close")
	return inner.GroupClose(obj, req)
}

// ---------------------------------------------------------------------------
// dataset

func (conn *Connector) DatasetCreate(parent any, loc *vol.Loc, name string, dtype *vol.Datatype, space *vol.Dataspace, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	inner, err := conn.dataset()
	if err != nil {
		return nil, err
	}
	conn.trace("dataset create")
	return inner.DatasetCreate(parent, loc, name, dtype, space, ccfg, acfg, req)
}

func (conn *Connector) DatasetOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	inner, err := conn.dataset()
	if err != nil {
		return nil, err
	}
	conn.trace("dataset open")
	return inner.DatasetOpen(parent, loc, name, acfg, req)
}

func (conn *Connector) DatasetRead(obj any, memType *vol.Datatype, memSel, fileSel *vol.Selection, cfg *vol.Config, buf []byte, req *vol.Request) error {
	inner, err := conn.dataset()
	if err != nil {
		return err
	}
	conn.trace("dataset read")
	return inner.DatasetRead(obj, memType, memSel, fileSel, cfg, buf, req)
}

func (conn *Connector) DatasetWrite(obj any, memType *vol.Datatype, memSel, fileSel *vol.Selection, cfg *vol.Config, buf []byte, req *vol.Request) error {
	inner, err := conn.dataset()
	if err != nil {
		return err
	}
	conn.trace("dataset write")
	return inner.DatasetWrite(obj, memType, memSel, fileSel, cfg, buf, req)
}

func (conn *Connector) DatasetGet(obj any, args *vol.DatasetGetArgs, req *vol.Request) error {
	inner, err := conn.dataset()
	if err != nil {
		return err
	}
	conn.trace("dataset get")
	return inner.DatasetGet(obj, args, req)
}

func (conn *Connector) DatasetSpecific(obj any, args *vol.DatasetSpecificArgs, req *vol.Request) error {
	inner, err := conn.dataset()
	if err != nil {
		return err
	}
	conn.trace("dataset specific")
	return inner.DatasetSpecific(obj, args, req)
}

func (conn *Connector) DatasetOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	inner, err := conn.dataset()
	if err != nil {
		return err
	}
	conn.trace("dataset optional")
	return inner.DatasetOptional(obj, args, req)
}

func (conn *Connector) DatasetClose(obj any, req *vol.Request) error {
	inner, err := conn.dataset()
	if err != nil {
		return err
	}
	conn.trace("dataset close")
	return inner.DatasetClose(obj, req)
}

// ---------------------------------------------------------------------------
// datatype

func (conn *Connector) DatatypeCommit(parent any, loc *vol.Loc, name string, dtype *vol.Datatype, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	inner, err := conn.datatype()
	if err != nil {
		return nil, err
	}
	conn.trace("datatype commit")
	return inner.DatatypeCommit(parent, loc, name, dtype, ccfg, acfg, req)
}

func (conn *Connector) DatatypeOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	inner, err := conn.datatype()
	if err != nil {
		return nil, err
	}
	conn.trace("datatype open")
	return inner.DatatypeOpen(parent, loc, name, acfg, req)
}

func (conn *Connector) DatatypeGet(obj any, args *vol.DatatypeGetArgs, req *vol.Request) error {
	inner, err := conn.datatype()
	if err != nil {
		return err
	}
	conn.trace("datatype get")
	return inner.DatatypeGet(obj, args, req)
}

func (conn *Connector) DatatypeSpecific(obj any, args *vol.DatatypeSpecificArgs, req *vol.Request) error {
	inner, err := conn.datatype()
	if err != nil {
		return err
	}
	conn.trace("datatype specific")
	return inner.DatatypeSpecific(obj, args, req)
}

func (conn *Connector) DatatypeOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	inner, err := conn.datatype()
	if err != nil {
		return err
	}
	conn.trace("datatype optional")
	return inner.DatatypeOptional(obj, args, req)
}

func (conn *Connector) DatatypeClose(obj any, req *vol.Request) error {
	inner, err := conn.datatype()
	if err != nil {
		return err
	}
	conn.trace("datatype close")
	return inner.DatatypeClose(obj, req)
}

// ---------------------------------------------------------------------------
// attribute

func (conn *Connector) AttrCreate(parent any, loc *vol.Loc, name string, dtype *vol.Datatype, space *vol.Dataspace, ccfg, acfg *vol.Config, req *vol.Request) (any, error) {
	inner, err := conn.attribute()
	if err != nil {
		return nil, err
	}
	conn.trace("attr create")
	return inner.AttrCreate(parent, loc, name, dtype, space, ccfg, acfg, req)
}

func (conn *Connector) AttrOpen(parent any, loc *vol.Loc, name string, acfg *vol.Config, req *vol.Request) (any, error) {
	inner, err := conn.attribute()
	if err != nil {
		return nil, err
	}
	conn.trace("attr open")
	return inner.AttrOpen(parent, loc, name, acfg, req)
}

func (conn *Connector) AttrRead(obj any, memType *vol.Datatype, buf []byte, cfg *vol.Config, req *vol.Request) error {
	inner, err := conn.attribute()
	if err != nil {
		return err
	}
	conn.trace("attr read")
	return inner.AttrRead(obj, memType, buf, cfg, req)
}

func (conn *Connector) AttrWrite(obj any, memType *vol.Datatype, buf []byte, cfg *vol.Config, req *vol.Request) error {
	inner, err := conn.attribute()
	if err != nil {
		return err
	}
	conn.trace("attr write")
	return inner.AttrWrite(obj, memType, buf, cfg, req)
}

func (conn *Connector) AttrGet(obj any, args *vol.AttrGetArgs, req *vol.Request) error {
	inner, err := conn.attribute()
	if err != nil {
		return err
	}
	conn.trace("attr get")
	return inner.AttrGet(obj, args, req)
}

func (conn *Connector) AttrSpecific(parent any, loc *vol.Loc, args *vol.AttrSpecificArgs, req *vol.Request) error {
	inner, err := conn.attribute()
	if err != nil {
		return err
	}
	conn.trace("attr specific")
	return inner.AttrSpecific(parent, loc, args, req)
}

func (conn *Connector) AttrOptional(obj any, args *vol.OptionalArgs, req *vol.Request) error {
	inner, err := conn.attribute()
	if err != nil {
		return err
	}
	conn.trace("attr optional")
	return inner.AttrOptional(obj, args, req)
}

func (conn *Connector) AttrClose(obj any, req *vol.Request) error {
	inner, err := conn.attribute()
	if err != nil {
		return err
	}
	conn.trace("attr close")
	return inner.AttrClose(obj, req)
}

// ---------------------------------------------------------------------------
// link

func (conn *Connector) LinkCreate(args *vol.LinkCreateArgs, parent any, loc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	inner, err := conn.link()
	if err != nil {
		return err
	}
	conn.trace("link create")
	return inner.LinkCreate(args, parent, loc, ccfg, acfg, req)
}

func (conn *Connector) LinkCopy(srcParent any, srcLoc *vol.Loc, dstParent any, dstLoc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	inner, err := conn.link()
	if err != nil {
		return err
	}
	conn.trace("link copy")
	return inner.LinkCopy(srcParent, srcLoc, dstParent, dstLoc, ccfg, acfg, req)
}

func (conn *Connector) LinkMove(srcParent any, srcLoc *vol.Loc, dstParent any, dstLoc *vol.Loc, ccfg, acfg *vol.Config, req *vol.Request) error {
	inner, err := conn.link()
	if err != nil {
		return err
	}
	conn.trace("link move")
	return inner.LinkMove(srcParent, srcLoc, dstParent, dstLoc, ccfg, acfg, req)
}

func (conn *Connector) LinkGet(parent any, loc *vol.Loc, args *vol.LinkGetArgs, req *vol.Request) error {
	inner, err := conn.link()
	if err != nil {
		return err
	}
	conn.trace("link get")
	return inner.LinkGet(parent, loc, args, req)
}

func (conn *Connector) LinkSpecific(parent any, loc *vol.Loc, args *vol.LinkSpecificArgs, req *vol.Request) error {
	inner, err := conn.link()
	if err != nil {
		return err
	}
	conn.trace("link specific")
	return inner.LinkSpecific(parent, loc, args, req)
}

func (conn *Connector) LinkOptional(parent any, loc *vol.Loc, args *vol.OptionalArgs, req *vol.Request) error {
	inner, err := conn.link()
	if err != nil {
		return err
	}
	conn.trace("link optional")
	return inner.LinkOptional(parent, loc, args, req)
}

// ---------------------------------------------------------------------------
// object

func (conn *Connector) ObjectOpen(parent any, loc *vol.Loc, req *vol.Request) (any, vol.ObjectType, error) {
	inner, err := conn.object()
	if err != nil {
		return nil, vol.ObjectTypeUnknown, err
	}
	conn.trace("object open")
	return inner.ObjectOpen(parent, loc, req)
}

func (conn *Connector) ObjectCopy(srcParent any, srcLoc *vol.Loc, srcName string, dstParent any, dstLoc *vol.Loc, dstName string, ccfg, acfg *vol.Config, req *vol.Request) error {
	inner, err := conn.object()
	if err != nil {
		return err
	}
	conn.trace("object copy")
	return inner.ObjectCopy(srcParent, srcLoc, srcName, dstParent, dstLoc, dstName, ccfg, acfg, req)
}

func (conn *Connector) ObjectGet(obj any, loc *vol.Loc, args *vol.ObjectGetArgs, req *vol.Request) error {
	inner, err := conn.object()
	if err != nil {
		return err
	}
	conn.trace("object get")
	return inner.ObjectGet(obj, loc, args, req)
}

func (conn *Connector) ObjectSpecific(obj any, loc *vol.Loc, args *vol.ObjectSpecificArgs, req *vol.Request) error {
	inner, err := conn.object()
	if err != nil {
		return err
	}
	conn.trace("object specific")
	return inner.ObjectSpecific(obj, loc, args, req)
}

func (conn *Connector) ObjectOptional(obj any, loc *vol.Loc, args *vol.OptionalArgs, req *vol.Request) error {
	inner, err := conn.object()
	if err != nil {
		return err
	}
	conn.trace("object optional")
	return inner.ObjectOptional(obj, loc, args, req)
}

// ---------------------------------------------------------------------------
// request

func (conn *Connector) RequestWait(token any, timeout time.Duration) (vol.RequestStatus, error) {
	inner, err := conn.request()
	if err != nil {
		return vol.RequestFailed, err
	}
	conn.trace("request wait")
	return inner.RequestWait(token, timeout)
}

func (conn *Connector) RequestCancel(token any) (vol.RequestStatus, error) {
	inner, err := conn.request()
	if err != nil {
		return vol.RequestFailed, err
	}
	conn.trace("request cancel")
	return inner.RequestCancel(token)
}

func (conn *Connector) RequestFree(token any) error {
	inner, err := conn.request()
	if err != nil {
		return err
	}
	conn.trace("request free")
	return inner.RequestFree(token)
}
