package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"

	"github.com/partmesh/dimm/dderr"
	"github.com/partmesh/dimm/dtype"
	"github.com/partmesh/dimm/transport"
)

// Mode selects how a Store is opened, per §3's "Stores are opened with a
// mode (read-only or read-write)".
type Mode int

const (
	// ReadOnly opens an existing store for reading only; writes return an error.
	ReadOnly Mode = iota
	// ReadWrite opens an existing store for reading and in-place rewrite
	// (the mode SFCReorder needs).
	ReadWrite
	// Create makes a new store directory, failing if one already exists.
	Create
)

// Attributes holds the scalar root attributes of §6: NumCells,
// FaceAdjncySize, NumInternalFaces, IntegerT (the index-type descriptor
// tag), and the bounding-box Min/Max. NumNodes and NumFaces are carried
// alongside them for convenience even though §6 derives them from dataset
// length in the source container.
type Attributes struct {
	NumNodes         int            `json:"NumNodes"`
	NumFaces         int            `json:"NumFaces"`
	NumCells         int            `json:"NumCells"`
	FaceAdjncySize   int            `json:"FaceAdjncySize"`
	NumInternalFaces int            `json:"NumInternalFaces"`
	IntegerT         byte           `json:"IntegerT"`
	Min              [3]float64     `json:"Min"`
	Max              [3]float64     `json:"Max"`
	Extra            map[string]any `json:"Extra,omitempty"`
}

// IndexType decodes Attributes.IntegerT into the dtype.Descriptor it
// tags, resolving §9's "template specialisation over numeric/index types"
// design note: one descriptor at the store boundary, not a template
// parameter threaded through every layer.
func (a Attributes) IndexType() dtype.Descriptor { return dtype.FromTag(a.IntegerT) }

// Store is the TypedBlockStore adapter of §4.G: a directory of
// fixed-size binary record files plus this YAML attribute sidecar. When
// group is non-nil, Open/Create/Close run the way §4.G specifies
// "parallel-independent" transfer: every rank performs the same file I/O
// against its own byte range independently, with no collective required
// for data movement (only for metadata agreement, which the caller drives
// explicitly via group before touching the store).
type Store struct {
	path  string
	mode  Mode
	group transport.Group
	attrs Attributes
	dirty bool

	patchOrder []string
}

// Open opens the store directory at path in the given mode. Create makes
// a fresh, empty store (attributes zeroed, no datasets); ReadOnly and
// ReadWrite load an existing attributes.yaml.
func Open(path string, mode Mode, group transport.Group) (*Store, error) {
	s := &Store{path: path, mode: mode, group: group}

	if mode == Create {
		if _, err := os.Stat(path); err == nil {
			return nil, dderr.StoreIO("open", fmt.Errorf("store %q already exists", path))
		}
		for _, dir := range []string{path, filepath.Join(path, "patches"), filepath.Join(path, "cache")} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, dderr.StoreIO("open: mkdir", err)
			}
		}
		s.patchOrder = nil
		if err := s.writeAttributes(); err != nil {
			return nil, err
		}
		if err := s.writePatchIndex(); err != nil {
			return nil, err
		}
		return s, nil
	}

	raw, err := os.ReadFile(filepath.Join(path, attributesFile))
	if err != nil {
		return nil, dderr.StoreIO("open: read attributes", err)
	}
	if err := yaml.Unmarshal(raw, &s.attrs); err != nil {
		return nil, dderr.StoreIO("open: parse attributes", err)
	}
	if err := s.readPatchIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the store. Any attribute or patch-index mutation is
// flushed to disk before returning; §3 requires this to happen
// deterministically and before outstanding transfers are considered
// complete (data writes in this adapter are synchronous, so there is
// nothing else to drain).
func (s *Store) Close() error {
	if s.mode == ReadOnly {
		return nil
	}
	if s.dirty {
		if err := s.writeAttributes(); err != nil {
			return err
		}
		s.dirty = false
	}
	return nil
}

func (s *Store) checkWritable(op string) error {
	if s.mode == ReadOnly {
		return dderr.StoreIO(op, fmt.Errorf("store %q opened read-only", s.path))
	}
	return nil
}

func (s *Store) writeAttributes() error {
	raw, err := yaml.Marshal(&s.attrs)
	if err != nil {
		return dderr.StoreIO("write attributes: marshal", err)
	}
	if err := os.WriteFile(filepath.Join(s.path, attributesFile), raw, 0o644); err != nil {
		return dderr.StoreIO("write attributes", err)
	}
	return nil
}

// NNode, NFace, NCell, and NInternalFace expose the §4.G sizing accessors.
func (s *Store) NNode() int         { return s.attrs.NumNodes }
func (s *Store) NFace() int         { return s.attrs.NumFaces }
func (s *Store) NCell() int         { return s.attrs.NumCells }
func (s *Store) NInternalFace() int { return s.attrs.NumInternalFaces }

// Attrs returns a copy of the store's root attributes.
func (s *Store) Attrs() Attributes { return s.attrs }

// SetCounts sets NumNodes/NumFaces/NumCells/NumInternalFaces/
// FaceAdjncySize and marks the store dirty so Close persists them. Called
// once by the importer after writing the node/face/cell datasets, or by
// ToolDriver after a migrate changes a count.
func (s *Store) SetCounts(nNode, nFace, nCell, nInternalFace, faceAdjncySize int) error {
	if err := s.checkWritable("SetCounts"); err != nil {
		return err
	}
	s.attrs.NumNodes = nNode
	s.attrs.NumFaces = nFace
	s.attrs.NumCells = nCell
	s.attrs.NumInternalFaces = nInternalFace
	s.attrs.FaceAdjncySize = faceAdjncySize
	s.dirty = true
	return nil
}

// SetIndexType records the index-type descriptor tag (IntegerT).
func (s *Store) SetIndexType(d dtype.Descriptor) error {
	if err := s.checkWritable("SetIndexType"); err != nil {
		return err
	}
	s.attrs.IntegerT = d.Tag()
	s.dirty = true
	return nil
}

// SetBoundingBox records the Min/Max root attributes.
func (s *Store) SetBoundingBox(min, max [3]float64) error {
	if err := s.checkWritable("SetBoundingBox"); err != nil {
		return err
	}
	s.attrs.Min, s.attrs.Max = min, max
	s.dirty = true
	return nil
}

// ReadAttribute reads a named extra scalar attribute (beyond the fixed
// root set above) from the sidecar table.
func ReadAttribute[T any](s *Store, name string) (T, error) {
	var zero T
	if s.attrs.Extra == nil {
		return zero, dderr.StoreIO("ReadAttribute", fmt.Errorf("attribute %q not present", name))
	}
	raw, ok := s.attrs.Extra[name]
	if !ok {
		return zero, dderr.StoreIO("ReadAttribute", fmt.Errorf("attribute %q not present", name))
	}
	v, ok := raw.(T)
	if !ok {
		return zero, dderr.StoreIO("ReadAttribute", fmt.Errorf("attribute %q has wrong type", name))
	}
	return v, nil
}

// WriteAttribute writes a named extra scalar attribute to the sidecar
// table.
func WriteAttribute[T any](s *Store, name string, value T) error {
	if err := s.checkWritable("WriteAttribute"); err != nil {
		return err
	}
	if s.attrs.Extra == nil {
		s.attrs.Extra = make(map[string]any)
	}
	s.attrs.Extra[name] = value
	s.dirty = true
	return nil
}
