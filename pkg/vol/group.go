package vol

import (
	"emperror.dev/errors"
)

// Group dispatch.

func GroupCreate(parent any, loc *Loc, cls *Class, name string, ccfg, acfg *Config, req *Request) (any, error) {
	if parent == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if name == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "empty group name")
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	conn, err := cls.group()
	if err != nil {
		return nil, err
	}
	obj, err := conn.GroupCreate(parent, loc, name, ccfg, acfg, req)
	if err != nil {
		return nil, err
	}
	req.adopt(cls)
	return obj, nil
}

func GroupOpen(parent any, loc *Loc, cls *Class, name string, acfg *Config, req *Request) (any, error) {
	if parent == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	conn, err := cls.group()
	if err != nil {
		return nil, err
	}
	obj, err := conn.GroupOpen(parent, loc, name, acfg, req)
	if err != nil {
		return nil, err
	}
	req.adopt(cls)
	return obj, nil
}

func GroupGet(obj any, cls *Class, args *GroupGetArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no group object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > GroupGetInfo {
		return errors.Wrap(ErrInvalidArgument, "invalid group get arguments")
	}
	conn, err := cls.group()
	if err != nil {
		return err
	}
	if err := conn.GroupGet(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func GroupSpecific(obj any, cls *Class, args *GroupSpecificArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no group object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > GroupRefresh {
		return errors.Wrap(ErrInvalidArgument, "invalid group specific arguments")
	}
	conn, err := cls.group()
	if err != nil {
		return err
	}
	if err := conn.GroupSpecific(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func GroupOptional(obj any, cls *Class, args *OptionalArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no group object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil {
		return errors.Wrap(ErrInvalidArgument, "no optional arguments")
	}
	conn, err := cls.group()
	if err != nil {
		return err
	}
	if err := conn.GroupOptional(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func GroupClose(obj any, cls *Class, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no group object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	conn, err := cls.group()
	if err != nil {
		return err
	}
	if err := conn.GroupClose(obj, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}
