package native

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"emperror.dev/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/voltree-archive/voltree/pkg/vol"
)

const (
	superKey     = "super.cbor"
	catalogKey   = "catalog.cbor"
	payloadDir   = "payload"
	formatNumber = 1
)

// superblock identifies a blob store prefix as a container and pins its
// format.
type superblock struct {
	Format  uint      `cbor:"1,keyasint"`
	ID      string    `cbor:"2,keyasint"`
	Created time.Time `cbor:"3,keyasint"`
}

func newSuperblock() *superblock {
	return &superblock{
		Format:  formatNumber,
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
	}
}

// node kinds in the catalog.
const (
	kindGroup uint8 = iota
	kindDataset
	kindDatatype
)

// node is one object of the catalog tree. Groups carry links, datasets
// carry type, extent and a payload digest, named datatypes carry a type.
// Attributes are inlined: they are small by contract, only dataset
// payloads live outside the catalog.
type node struct {
	Kind      uint8            `cbor:"1,keyasint"`
	Links     map[string]*link `cbor:"2,keyasint,omitempty"`
	Order     []string         `cbor:"3,keyasint,omitempty"`
	NextOrder int64            `cbor:"4,keyasint,omitempty"`
	Dtype     *vol.Datatype    `cbor:"5,keyasint,omitempty"`
	Space     *vol.Dataspace   `cbor:"6,keyasint,omitempty"`
	Digest    string           `cbor:"7,keyasint,omitempty"`
	Attrs     []*attr          `cbor:"8,keyasint,omitempty"`

	file  *file  // rehydrated after load, never serialized
	data  []byte // dataset payload, loaded lazily
	dirty bool
}

func newGroupNode(f *file) *node {
	return &node{Kind: kindGroup, Links: map[string]*link{}, file: f}
}

// link stores a hard target as a node ID, never inline. Aliased and
// cyclic hard links therefore survive the round trip: every node is
// serialized exactly once.
type link struct {
	Type   vol.LinkType `cbor:"1,keyasint"`
	Target string       `cbor:"2,keyasint,omitempty"`
	NodeID uint64       `cbor:"3,keyasint,omitempty"`
	Order  int64        `cbor:"4,keyasint,omitempty"`

	Node *node `cbor:"-"` // resolved from NodeID after load
}

type attr struct {
	Name  string        `cbor:"1,keyasint"`
	Dtype vol.Datatype  `cbor:"2,keyasint"`
	Space vol.Dataspace `cbor:"3,keyasint"`
	Data  []byte        `cbor:"4,keyasint,omitempty"`
}

// catalog is the serialized hierarchy of one container: all reachable
// nodes keyed by ID, links referencing them by ID.
type catalog struct {
	Root  uint64           `cbor:"1,keyasint"`
	Nodes map[uint64]*node `cbor:"2,keyasint"`
}

// file is one open container on a blob store: superblock, catalog and
// content addressed payloads.
type file struct {
	name     string
	readonly bool
	super    *superblock
	root     *node
	blobs    BlobStore
	dirty    bool
}

func (f *file) writeSuper() error {
	data, err := cbor.Marshal(f.super)
	if err != nil {
		return errors.Wrap(err, "cannot encode superblock")
	}
	return f.blobs.Put(superKey, data)
}

func readSuper(blobs BlobStore) (*superblock, error) {
	data, err := blobs.Get(superKey)
	if err != nil {
		return nil, err
	}
	super := &superblock{}
	if err := cbor.Unmarshal(data, super); err != nil {
		return nil, errors.Wrap(err, "cannot decode superblock")
	}
	if super.Format != formatNumber {
		return nil, errors.Errorf("container has format %d, want %d", super.Format, formatNumber)
	}
	return super, nil
}

// flush persists dirty dataset payloads and the catalog. The catalog
// blob is replaced atomically so a crash leaves the previous consistent
// state.
func (f *file) flush() error {
	if f.readonly {
		return nil
	}
	if err := f.flushPayloads(f.root, map[*node]bool{}); err != nil {
		return err
	}
	if !f.dirty {
		return nil
	}
	data, err := cbor.Marshal(f.buildCatalog())
	if err != nil {
		return errors.Wrapf(err, "cannot encode catalog of '%s'", f.name)
	}
	if err := f.blobs.Put(catalogKey, data); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// seen guards against hard link cycles and keeps aliased nodes from
// being visited twice.
func (f *file) flushPayloads(nd *node, seen map[*node]bool) error {
	if seen[nd] {
		return nil
	}
	seen[nd] = true
	if nd.Kind == kindDataset && nd.dirty {
		digest, err := f.writePayload(nd.data)
		if err != nil {
			return err
		}
		if nd.Digest != "" && nd.Digest != digest {
			// previous content is unreferenced now, losing it only wastes space
			_ = f.blobs.Delete(payloadKey(nd.Digest))
		}
		nd.Digest = digest
		nd.dirty = false
		f.dirty = true
	}
	for _, lnk := range nd.Links {
		if lnk.Node == nil {
			continue
		}
		if err := f.flushPayloads(lnk.Node, seen); err != nil {
			return err
		}
	}
	return nil
}

// buildCatalog numbers every reachable node once, starting at 1, and
// rewrites hard links to carry the target's ID.
func (f *file) buildCatalog() *catalog {
	ids := map[*node]uint64{}
	var nodes []*node
	var collect func(nd *node)
	collect = func(nd *node) {
		if _, ok := ids[nd]; ok {
			return
		}
		ids[nd] = uint64(len(nodes) + 1)
		nodes = append(nodes, nd)
		for _, lnk := range nd.Links {
			if lnk.Node != nil {
				collect(lnk.Node)
			}
		}
	}
	collect(f.root)
	cat := &catalog{Root: ids[f.root], Nodes: make(map[uint64]*node, len(nodes))}
	for _, nd := range nodes {
		for _, lnk := range nd.Links {
			if lnk.Node != nil {
				lnk.NodeID = ids[lnk.Node]
			}
		}
		cat.Nodes[ids[nd]] = nd
	}
	return cat
}

func (f *file) readCatalog() error {
	data, err := f.blobs.Get(catalogKey)
	if err != nil {
		return errors.Wrapf(err, "cannot read catalog of '%s'", f.name)
	}
	cat := &catalog{}
	if err := cbor.Unmarshal(data, cat); err != nil {
		return errors.Wrapf(err, "cannot decode catalog of '%s'", f.name)
	}
	root, ok := cat.Nodes[cat.Root]
	if !ok {
		return errors.Errorf("catalog of '%s' has no root group", f.name)
	}
	for _, nd := range cat.Nodes {
		nd.file = f
		for name, lnk := range nd.Links {
			if lnk.Type != vol.LinkTypeHard {
				continue
			}
			target, ok := cat.Nodes[lnk.NodeID]
			if !ok {
				return errors.Errorf("catalog of '%s': link '%s' references missing node %d", f.name, name, lnk.NodeID)
			}
			lnk.Node = target
		}
	}
	f.root = root
	return nil
}

// payloadKey shards content addressed payloads by the first two hex
// characters of their digest.
func payloadKey(digest string) string {
	return payloadDir + "/" + digest[:2] + "/" + digest[2:]
}

func (f *file) writePayload(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	key := payloadKey(digest)
	if ok, err := f.blobs.Exists(key); err != nil {
		return "", err
	} else if ok {
		return digest, nil // identical content already stored
	}
	if err := f.blobs.Put(key, data); err != nil {
		return "", err
	}
	return digest, nil
}

func (f *file) readPayload(digest string) ([]byte, error) {
	data, err := f.blobs.Get(payloadKey(digest))
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != digest {
		return nil, errors.Wrapf(ErrCorrupt, "payload %s", digest)
	}
	return data, nil
}

// payload retrieves a dataset's bytes, loading and verifying them on
// first access.
func (nd *node) payload() ([]byte, error) {
	if nd.data != nil {
		return nd.data, nil
	}
	size := int(nd.Dtype.NumBytes(nd.Space.NumElements()))
	if nd.Digest == "" {
		// never written: allocate zeroes
		nd.data = make([]byte, size)
		return nd.data, nil
	}
	data, err := nd.file.readPayload(nd.Digest)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, errors.Errorf("payload %s holds %d bytes, extent needs %d", nd.Digest, len(data), size)
	}
	nd.data = data
	return nd.data, nil
}
