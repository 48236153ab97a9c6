package vol

import (
	"emperror.dev/errors"

	"github.com/voltree-archive/voltree/pkg/handle"
)

// ClassValue is the numeric identity of a connector class. Values below
// ReservedValues are built-ins, never unregisterable and never available
// to user registrations.
type ClassValue uint

const ReservedValues ClassValue = 256

// Built-in connector class values.
const (
	ValueNative ClassValue = iota + 1
	ValueMemory
	ValuePassthru
	ValueS3
)

// DescriptorVersion is the connector descriptor shape this core speaks.
// New capability interfaces append, existing ones never change, so
// binary loaded connectors stay compatible.
const DescriptorVersion uint = 1

// ClassDescriptor is the fixed shape every back-end hands to the class
// table on registration. The registry copies it, callers keep ownership
// of the original.
type ClassDescriptor struct {
	Version    uint
	Value      ClassValue
	Name       string
	ConfigSize uint // opaque connector private bytes carried per binding
	Connector  Connector
}

// Class is one registered connector class. It is immutable after
// registration; external reference counting lives on its handle.
type Class struct {
	version    uint
	value      ClassValue
	name       string
	configSize uint
	connector  Connector
	h          handle.Handle
}

func newClass(desc *ClassDescriptor) *Class {
	return &Class{
		version:    desc.Version,
		value:      desc.Value,
		name:       desc.Name,
		configSize: desc.ConfigSize,
		connector:  desc.Connector,
	}
}

func (cls *Class) Name() string          { return cls.name }
func (cls *Class) Value() ClassValue     { return cls.value }
func (cls *Class) Version() uint         { return cls.version }
func (cls *Class) ConfigSize() uint      { return cls.configSize }
func (cls *Class) Connector() Connector  { return cls.connector }
func (cls *Class) Handle() handle.Handle { return cls.h }

// IsBuiltin reports whether the class value lies in the reserved range.
func (cls *Class) IsBuiltin() bool { return cls.value < ReservedValues }

// capability resolution; each returns ErrUnsupported if the connector
// does not implement the kind's interface, without touching the connector.

func (cls *Class) file() (FileConnector, error) {
	if conn, ok := cls.connector.(FileConnector); ok {
		return conn, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "connector '%s' has no file capability", cls.name)
}

func (cls *Class) group() (GroupConnector, error) {
	if conn, ok := cls.connector.(GroupConnector); ok {
		return conn, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "connector '%s' has no group capability", cls.name)
}

func (cls *Class) dataset() (DatasetConnector, error) {
	if conn, ok := cls.connector.(DatasetConnector); ok {
		return conn, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "connector '%s' has no dataset capability", cls.name)
}

func (cls *Class) datatype() (DatatypeConnector, error) {
	if conn, ok := cls.connector.(DatatypeConnector); ok {
		return conn, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "connector '%s' has no datatype capability", cls.name)
}

func (cls *Class) attribute() (AttributeConnector, error) {
	if conn, ok := cls.connector.(AttributeConnector); ok {
		return conn, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "connector '%s' has no attribute capability", cls.name)
}

func (cls *Class) link() (LinkConnector, error) {
	if conn, ok := cls.connector.(LinkConnector); ok {
		return conn, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "connector '%s' has no link capability", cls.name)
}

func (cls *Class) object() (ObjectConnector, error) {
	if conn, ok := cls.connector.(ObjectConnector); ok {
		return conn, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "connector '%s' has no object capability", cls.name)
}

func (cls *Class) request() (RequestConnector, error) {
	if conn, ok := cls.connector.(RequestConnector); ok {
		return conn, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "connector '%s' has no async capability", cls.name)
}

func validateDescriptor(desc *ClassDescriptor) error {
	if desc == nil {
		return errors.Wrap(ErrInvalidArgument, "no class descriptor")
	}
	if desc.Name == "" {
		return errors.Wrap(ErrInvalidArgument, "empty class name")
	}
	if desc.Connector == nil {
		return errors.Wrapf(ErrInvalidArgument, "class '%s' has no connector", desc.Name)
	}
	if desc.Version == 0 || desc.Version > DescriptorVersion {
		return errors.Wrapf(ErrInvalidArgument, "class '%s' has unsupported descriptor version %d", desc.Name, desc.Version)
	}
	return nil
}
