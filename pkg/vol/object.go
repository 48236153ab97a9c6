package vol

import (
	"emperror.dev/errors"

	"github.com/voltree-archive/voltree/pkg/handle"
)

// Type-agnostic object dispatch.

// ObjectOpen opens whatever a location resolves to. The connector
// reports the discovered type; the caller must derive the handle kind
// from it before wrapping. ObjectTypeToKind does that mapping.
func ObjectOpen(parent any, loc *Loc, cls *Class, req *Request) (any, ObjectType, error) {
	if parent == nil {
		return nil, ObjectTypeUnknown, errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return nil, ObjectTypeUnknown, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if err := loc.Validate(); err != nil {
		return nil, ObjectTypeUnknown, err
	}
	conn, err := cls.object()
	if err != nil {
		return nil, ObjectTypeUnknown, err
	}
	obj, objType, err := conn.ObjectOpen(parent, loc, req)
	if err != nil {
		return nil, ObjectTypeUnknown, err
	}
	req.adopt(cls)
	return obj, objType, nil
}

// ObjectTypeToKind maps a discovered object type to the handle kind it
// must be wrapped as.
func ObjectTypeToKind(objType ObjectType) (handle.Kind, error) {
	switch objType {
	case ObjectTypeGroup:
		return handle.KindGroup, nil
	case ObjectTypeDataset:
		return handle.KindDataset, nil
	case ObjectTypeDatatype:
		return handle.KindDatatype, nil
	default:
		return handle.KindInvalid, errors.Wrapf(ErrInvalidArgument, "object type '%s' has no handle kind", objType)
	}
}

func ObjectCopy(srcParent any, srcLoc *Loc, srcName string, dstParent any, dstLoc *Loc, dstName string, cls *Class, ccfg, acfg *Config, req *Request) error {
	if srcParent == nil || dstParent == nil {
		return errors.Wrap(ErrInvalidArgument, "no source or destination object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if dstName == "" {
		return errors.Wrap(ErrInvalidArgument, "empty destination name")
	}
	if err := srcLoc.Validate(); err != nil {
		return err
	}
	if err := dstLoc.Validate(); err != nil {
		return err
	}
	conn, err := cls.object()
	if err != nil {
		return err
	}
	if err := conn.ObjectCopy(srcParent, srcLoc, srcName, dstParent, dstLoc, dstName, ccfg, acfg, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func ObjectGet(obj any, loc *Loc, cls *Class, args *ObjectGetArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > ObjectGetInfo {
		return errors.Wrap(ErrInvalidArgument, "invalid object get arguments")
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	conn, err := cls.object()
	if err != nil {
		return err
	}
	if err := conn.ObjectGet(obj, loc, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func ObjectSpecific(obj any, loc *Loc, cls *Class, args *ObjectSpecificArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > ObjectRefresh {
		return errors.Wrap(ErrInvalidArgument, "invalid object specific arguments")
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	conn, err := cls.object()
	if err != nil {
		return err
	}
	if err := conn.ObjectSpecific(obj, loc, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func ObjectOptional(obj any, loc *Loc, cls *Class, args *OptionalArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil {
		return errors.Wrap(ErrInvalidArgument, "no optional arguments")
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	conn, err := cls.object()
	if err != nil {
		return err
	}
	if err := conn.ObjectOptional(obj, loc, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}
