package vol

import (
	"emperror.dev/errors"
)

// Link dispatch. Links are addressed, never opened.

func LinkCreate(args *LinkCreateArgs, parent any, loc *Loc, cls *Class, ccfg, acfg *Config, req *Request) error {
	if parent == nil {
		return errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > LinkCreateSoft {
		return errors.Wrap(ErrInvalidArgument, "invalid link create arguments")
	}
	if args.What == LinkCreateSoft && args.Target == "" {
		return errors.Wrap(ErrInvalidArgument, "soft link needs a target path")
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	conn, err := cls.link()
	if err != nil {
		return err
	}
	if err := conn.LinkCreate(args, parent, loc, ccfg, acfg, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func LinkCopy(srcParent any, srcLoc *Loc, dstParent any, dstLoc *Loc, cls *Class, ccfg, acfg *Config, req *Request) error {
	if srcParent == nil || dstParent == nil {
		return errors.Wrap(ErrInvalidArgument, "no source or destination object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if err := srcLoc.Validate(); err != nil {
		return err
	}
	if err := dstLoc.Validate(); err != nil {
		return err
	}
	conn, err := cls.link()
	if err != nil {
		return err
	}
	if err := conn.LinkCopy(srcParent, srcLoc, dstParent, dstLoc, ccfg, acfg, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func LinkMove(srcParent any, srcLoc *Loc, dstParent any, dstLoc *Loc, cls *Class, ccfg, acfg *Config, req *Request) error {
	if srcParent == nil || dstParent == nil {
		return errors.Wrap(ErrInvalidArgument, "no source or destination object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if err := srcLoc.Validate(); err != nil {
		return err
	}
	if err := dstLoc.Validate(); err != nil {
		return err
	}
	conn, err := cls.link()
	if err != nil {
		return err
	}
	if err := conn.LinkMove(srcParent, srcLoc, dstParent, dstLoc, ccfg, acfg, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func LinkGet(parent any, loc *Loc, cls *Class, args *LinkGetArgs, req *Request) error {
	if parent == nil {
		return errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > LinkGetValue {
		return errors.Wrap(ErrInvalidArgument, "invalid link get arguments")
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	conn, err := cls.link()
	if err != nil {
		return err
	}
	if err := conn.LinkGet(parent, loc, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func LinkSpecific(parent any, loc *Loc, cls *Class, args *LinkSpecificArgs, req *Request) error {
	if parent == nil {
		return errors.Wrap(ErrInvalidArgument, "no parent object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > LinkIterate {
		return errors.Wrap(ErrInvalidArgument, "invalid link specific arguments")
	}
	if args.What == LinkIterate && args.Visit == nil {
		return errors.Wrap(ErrInvalidArgument, "link iteration needs a visit callback")
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	conn, err := cls.link()
	if err != nil {
		return err
	}
	if err := conn.LinkSpecific(parent, loc, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

func LinkOptional(parent any, loc *Loc, cls *Class, args *OptionalArgs, req *Request) error {
	if parent == nil {
		return errors.Wrap(ErrInvalidArgument, "no parent object")
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
	conn, err := cls.link()
	if err != nil {
		return err
	}
	if err := conn.LinkOptional(parent, loc, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}
