package vol

import (
	"emperror.dev/errors"
)

// Dataset dispatch.

func DatasetCreate(parent any, loc *Loc, cls *Class, name string, dtype *Datatype, space *Dataspace, ccfg, acfg *Config, req *Request) (any, error) {
	if parent == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if name == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "empty dataset name")
	}
	if dtype == nil || space == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "dataset needs datatype and dataspace")
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	conn, err := cls.dataset()
	if err != nil {
		return nil, err
	}
	obj, err := conn.DatasetCreate(parent, loc, name, dtype, space, ccfg, acfg, req)
	if err != nil {
		return nil, err
	}
	req.adopt(cls)
	return obj, nil
}

func DatasetOpen(parent any, loc *Loc, cls *Class, name string, acfg *Config, req *Request) (any, error) {
	if parent == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	conn, err := cls.dataset()
	if err != nil {
		return nil, err
	}
	obj, err := conn.DatasetOpen(parent, loc, name, acfg, req)
	if err != nil {
		return nil, err
	}
	req.adopt(cls)
	return obj, nil
}

func DatasetRead(obj any, cls *Class, memType *Datatype, memSel, fileSel *Selection, cfg *Config, buf []byte, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no dataset object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if buf == nil {
		return errors.Wrap(ErrInvalidArgument, "no read buffer")
	}
	conn, err := cls.dataset()
	if err != nil {
		return err
	}
	if err := conn.DatasetRead(obj, memType, memSel, fileSel, cfg, buf, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func DatasetWrite(obj any, cls *Class, memType *Datatype, memSel, fileSel *Selection, cfg *Config, buf []byte, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no dataset object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if buf == nil {
		return errors.Wrap(ErrInvalidArgument, "no write buffer")
	}
	conn, err := cls.dataset()
	if err != nil {
		return err
	}
	if err := conn.DatasetWrite(obj, memType, memSel, fileSel, cfg, buf, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func DatasetGet(obj any, cls *Class, args *DatasetGetArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no dataset object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > DatasetGetStorageSize {
		return errors.Wrap(ErrInvalidArgument, "invalid dataset get arguments")
	}
	conn, err := cls.dataset()
	if err != nil {
		return err
	}
	if err := conn.DatasetGet(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func DatasetSpecific(obj any, cls *Class, args *DatasetSpecificArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no dataset object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > DatasetRefresh {
		return errors.Wrap(ErrInvalidArgument, "invalid dataset specific arguments")
	}
	conn, err := cls.dataset()
	if err != nil {
		return err
	}
	if err := conn.DatasetSpecific(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func DatasetOptional(obj any, cls *Class, args *OptionalArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no dataset object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil {
		return errors.Wrap(ErrInvalidArgument, "no optional arguments")
	}
	conn, err := cls.dataset()
	if err != nil {
		return err
	}
	if err := conn.DatasetOptional(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func DatasetClose(obj any, cls *Class, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no dataset object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	conn, err := cls.dataset()
	if err != nil {
		return err
	}
	if err := conn.DatasetClose(obj, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}
