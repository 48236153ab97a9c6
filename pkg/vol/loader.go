package vol

import (
	"path/filepath"
	"plugin"

	"emperror.dev/errors"
)

// ConnectorSymbol is the symbol a shared library connector must export:
// a *ClassDescriptor built with -buildmode=plugin.
const ConnectorSymbol = "VoltreeConnector"

// PluginLoader resolves a connector name to a class descriptor. The
// registry asks a loader only after an in-table lookup failed; search
// paths and library handling are the loader's concern.
type PluginLoader interface {
	Load(name string) (*ClassDescriptor, error)
}

// SharedLibraryLoader loads connector plugins from shared objects named
// '<name>.so' in a single directory.
type SharedLibraryLoader struct {
	dir string
}

func NewSharedLibraryLoader(dir string) (*SharedLibraryLoader, error) {
	if dir == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "empty plugin directory")
	}
	return &SharedLibraryLoader{dir: dir}, nil
}

func (ldr *SharedLibraryLoader) Load(name string) (*ClassDescriptor, error) {
	path := filepath.Join(ldr.dir, name+".so")
	plug, err := plugin.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrPluginNotFound, "cannot open plugin '%s': %v", path, err)
	}
	sym, err := plug.Lookup(ConnectorSymbol)
	if err != nil {
		return nil, errors.Wrapf(ErrPluginNotFound, "plugin '%s' exports no symbol '%s'", path, ConnectorSymbol)
	}
	desc, ok := sym.(**ClassDescriptor)
	if !ok {
		return nil, errors.Errorf("plugin '%s' symbol '%s' is %T, not **ClassDescriptor", path, ConnectorSymbol, sym)
	}
	if *desc == nil {
		return nil, errors.Errorf("plugin '%s' symbol '%s' is nil", path, ConnectorSymbol)
	}
	return *desc, nil
}

var _ PluginLoader = &SharedLibraryLoader{}

// StaticLoader serves descriptors from a fixed map. Used in tests and by
// applications that compile their connectors in but still want the
// register-by-name path.
type StaticLoader struct {
	descriptors map[string]*ClassDescriptor
}

func NewStaticLoader(descs ...*ClassDescriptor) (*StaticLoader, error) {
	ldr := &StaticLoader{descriptors: map[string]*ClassDescriptor{}}
	for _, desc := range descs {
		if err := validateDescriptor(desc); err != nil {
			return nil, err
		}
		ldr.descriptors[desc.Name] = desc
	}
	return ldr, nil
}

func (ldr *StaticLoader) Load(name string) (*ClassDescriptor, error) {
	desc, ok := ldr.descriptors[name]
	if !ok {
		return nil, errors.Wrapf(ErrPluginNotFound, "no static descriptor '%s'", name)
	}
	return desc, nil
}

var _ PluginLoader = &StaticLoader{}
