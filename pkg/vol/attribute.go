package vol

import (
	"emperror.dev/errors"
)

// Attribute dispatch.

func AttrCreate(parent any, loc *Loc, cls *Class, name string, dtype *Datatype, space *Dataspace, ccfg, acfg *Config, req *Request) (any, error) {
	if parent == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if name == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "empty attribute name")
	}
	if dtype == nil || space == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "attribute needs datatype and dataspace")
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	conn, err := cls.attribute()
	if err != nil {
		return nil, err
	}
	obj, err := conn.AttrCreate(parent, loc, name, dtype, space, ccfg, acfg, req)
	if err != nil {
		return nil, err
	}
	req.adopt(cls)
	return obj, nil
}

func AttrOpen(parent any, loc *Loc, cls *Class, name string, acfg *Config, req *Request) (any, error) {
	if parent == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if name == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "empty attribute name")
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	conn, err := cls.attribute()
	if err != nil {
		return nil, err
	}
	obj, err := conn.AttrOpen(parent, loc, name, acfg, req)
	if err != nil {
		return nil, err
	}
	req.adopt(cls)
	return obj, nil
}

func AttrRead(obj any, cls *Class, memType *Datatype, buf []byte, cfg *Config, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no attribute object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if buf == nil {
		return errors.Wrap(ErrInvalidArgument, "no read buffer")
	}
	conn, err := cls.attribute()
	if err != nil {
		return err
	}
	if err := conn.AttrRead(obj, memType, buf, cfg, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func AttrWrite(obj any, cls *Class, memType *Datatype, buf []byte, cfg *Config, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no attribute object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if buf == nil {
		return errors.Wrap(ErrInvalidArgument, "no write buffer")
	}
	conn, err := cls.attribute()
	if err != nil {
		return err
	}
	if err := conn.AttrWrite(obj, memType, buf, cfg, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func AttrGet(obj any, cls *Class, args *AttrGetArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no attribute object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > AttrGetSpace {
		return errors.Wrap(ErrInvalidArgument, "invalid attribute get arguments")
	}
	conn, err := cls.attribute()
	if err != nil {
		return err
	}
	if err := conn.AttrGet(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

// AttrSpecific operates on the object carrying the attributes, not on an
// open attribute.
func AttrSpecific(parent any, loc *Loc, cls *Class, args *AttrSpecificArgs, req *Request) error {
	if parent == nil {
		return errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > AttrRename {
		return errors.Wrap(ErrInvalidArgument, "invalid attribute specific arguments")
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	conn, err := cls.attribute()
	if err != nil {
		return err
	}
	if err := conn.AttrSpecific(parent, loc, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func AttrOptional(obj any, cls *Class, args *OptionalArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no attribute object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil {
		return errors.Wrap(ErrInvalidArgument, "no optional arguments")
	}
	conn, err := cls.attribute()
	if err != nil {
		return err
	}
	if err := conn.AttrOptional(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func AttrClose(obj any, cls *Class, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no attribute object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	conn, err := cls.attribute()
	if err != nil {
		return err
	}
	if err := conn.AttrClose(obj, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}
