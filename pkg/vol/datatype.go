package vol

import (
	"emperror.dev/errors"
)

// Named datatype dispatch.

func DatatypeCommit(parent any, loc *Loc, cls *Class, name string, dtype *Datatype, ccfg, acfg *Config, req *Request) (any, error) {
	if parent == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if name == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "empty datatype name")
	}
	if dtype == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no datatype descriptor")
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	conn, err := cls.datatype()
	if err != nil {
		return nil, err
	}
	obj, err := conn.DatatypeCommit(parent, loc, name, dtype, ccfg, acfg, req)
	if err != nil {
		return nil, err
	}
	req.adopt(cls)
	return obj, nil
}

func DatatypeOpen(parent any, loc *Loc, cls *Class, name string, acfg *Config, req *Request) (any, error) {
	if parent == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	conn, err := cls.datatype()
	if err != nil {
		return nil, err
	}
	obj, err := conn.DatatypeOpen(parent, loc, name, acfg, req)
	if err != nil {
		return nil, err
	}
	req.adopt(cls)
	return obj, nil
}

func DatatypeGet(obj any, cls *Class, args *DatatypeGetArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no datatype object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > DatatypeGetDescriptor {
		return errors.Wrap(ErrInvalidArgument, "invalid datatype get arguments")
	}
	conn, err := cls.datatype()
	if err != nil {
		return err
	}
	if err := conn.DatatypeGet(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func DatatypeSpecific(obj any, cls *Class, args *DatatypeSpecificArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no datatype object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > DatatypeRefresh {
		return errors.Wrap(ErrInvalidArgument, "invalid datatype specific arguments")
	}
	conn, err := cls.datatype()
	if err != nil {
		return err
	}
	if err := conn.DatatypeSpecific(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func DatatypeOptional(obj any, cls *Class, args *OptionalArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no datatype object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil {
		return errors.Wrap(ErrInvalidArgument, "no optional arguments")
	}
	conn, err := cls.datatype()
	if err != nil {
		return err
	}
	if err := conn.DatatypeOptional(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func DatatypeClose(obj any, cls *Class, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no datatype object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	conn, err := cls.datatype()
	if err != nil {
		return err
	}
	if err := conn.DatatypeClose(obj, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}
