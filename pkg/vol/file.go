package vol

import (
	"emperror.dev/errors"
)

// File dispatch. Containers have no parent object; the class is resolved
// by the caller from the access configuration and passed in, so the
// three failure causes stay distinguishable: nil/unknown class, missing
// file capability, connector failure.

func FileCreate(cls *Class, name string, flags FileFlags, ccfg, acfg *Config, req *Request) (any, error) {
	if cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if name == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "empty container name")
	}
	conn, err := cls.file()
	if err != nil {
		return nil, err
	}
	obj, err := conn.FileCreate(name, flags, ccfg, acfg, req)
	if err != nil {
		return nil, err
	}
	req.adopt(cls)
	return obj, nil
}

func FileOpen(cls *Class, name string, flags FileFlags, acfg *Config, req *Request) (any, error) {
	if cls == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if name == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "empty container name")
	}
	conn, err := cls.file()
	if err != nil {
		return nil, err
	}
	obj, err := conn.FileOpen(name, flags, acfg, req)
	if err != nil {
		return nil, err
	}
	req.adopt(cls)
	return obj, nil
}

func FileGet(obj any, cls *Class, args *FileGetArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no file object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > FileGetConfig {
		return errors.Wrap(ErrInvalidArgument, "invalid file get arguments")
	}
	conn, err := cls.file()
	if err != nil {
		return err
	}
	if err := conn.FileGet(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

// FileSpecific dispatches state changing file operations on an open
// container. The is-accessible and delete variants do not belong here:
// they run before any object exists and resolve their class from the
// access configuration instead (see FileIsAccessible / FileDelete).
func FileSpecific(obj any, cls *Class, args *FileSpecificArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no file object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil || args.What > FileDelete {
		return errors.Wrap(ErrInvalidArgument, "invalid file specific arguments")
	}
	if args.What == FileIsAccessible || args.What == FileDelete {
		return errors.Wrapf(ErrInvalidArgument, "'%d' resolves its own class, dispatch it through the registry entry", args.What)
	}
	conn, err := cls.file()
	if err != nil {
		return err
	}
	if err := conn.FileSpecific(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

// FileIsAccessible is the deliberate carve-out: no file object exists
// yet, so the class comes from the access configuration. The asymmetry
// with FileSpecific is intentional and kept explicit.
func (reg *Registry) FileIsAccessible(name string, acfg *Config, req *Request) (bool, error) {
	if name == "" {
		return false, errors.Wrap(ErrInvalidArgument, "empty container name")
	}
	cls, err := reg.classFromConfig(acfg)
	if err != nil {
		return false, err
	}
	conn, err := cls.file()
	if err != nil {
		return false, err
	}
	var accessible bool
	args := &FileSpecificArgs{
		What:       FileIsAccessible,
		Name:       name,
		AccessCfg:  acfg,
		Accessible: &accessible,
	}
	if err := conn.FileSpecific(nil, args, req); err != nil {
		return false, err
	}
	req.adopt(cls)
	return accessible, nil
}

// FileDelete removes a container that is not open; class resolution
// follows the same carve-out as FileIsAccessible.
func (reg *Registry) FileDelete(name string, acfg *Config, req *Request) error {
	if name == "" {
		return errors.Wrap(ErrInvalidArgument, "empty container name")
	}
	cls, err := reg.classFromConfig(acfg)
	if err != nil {
		return err
	}
	conn, err := cls.file()
	if err != nil {
		return err
	}
	args := &FileSpecificArgs{
		What:      FileDelete,
		Name:      name,
		AccessCfg: acfg,
	}
	if err := conn.FileSpecific(nil, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

// classFromConfig resolves the connector class named in an access
// configuration, for the dispatch entries that run without an open
// object.
func (reg *Registry) classFromConfig(acfg *Config) (*Class, error) {
	if acfg == nil || acfg.Connector == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "access configuration names no connector")
	}
	cls, ok := reg.LookupByName(acfg.Connector)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownClass, "class '%s'", acfg.Connector)
	}
	return cls, nil
}

func FileOptional(obj any, cls *Class, args *OptionalArgs, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no file object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	if args == nil {
		return errors.Wrap(ErrInvalidArgument, "no optional arguments")
	}
	conn, err := cls.file()
	if err != nil {
		return err
	}
	// the payload shape is connector private, nothing to validate here
	if err := conn.FileOptional(obj, args, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}

// FileClose forwards container teardown. Safe to call while the handle
// still exists: the wrapper free callback invokes it before teardown.
func FileClose(obj any, cls *Class, req *Request) error {
	if obj == nil {
		return errors.Wrap(ErrInvalidArgument, "no file object")
	}
	if cls == nil {
		return errors.Wrap(ErrInvalidArgument, "no connector class")
	}
	conn, err := cls.file()
	if err != nil {
		return err
	}
	if err := conn.FileClose(obj, req); err != nil {
		return err
	}
	req.adopt(cls)
	return nil
}
