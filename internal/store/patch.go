package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"

	"github.com/partmesh/dimm/dderr"
	"github.com/partmesh/dimm/meshtypes"
)

// PatchNames returns the ordered list of patch names, preserving
// insertion order — matching original_source/hum/types/patch.hpp's
// patchBCMap "do not change the ordering" contract for boundary ranges.
func (s *Store) PatchNames() []string {
	out := make([]string, len(s.patchOrder))
	copy(out, s.patchOrder)
	return out
}

func (s *Store) readPatchIndex() error {
	raw, err := os.ReadFile(filepath.Join(s.path, patchIndexFile))
	if os.IsNotExist(err) {
		s.patchOrder = nil
		return nil
	}
	if err != nil {
		return dderr.StoreIO("readPatchIndex", err)
	}
	var names []string
	if err := yaml.Unmarshal(raw, &names); err != nil {
		return dderr.StoreIO("readPatchIndex: parse", err)
	}
	s.patchOrder = names
	return nil
}

func (s *Store) writePatchIndex() error {
	raw, err := yaml.Marshal(s.patchOrder)
	if err != nil {
		return dderr.StoreIO("writePatchIndex: marshal", err)
	}
	if err := os.WriteFile(filepath.Join(s.path, patchIndexFile), raw, 0o644); err != nil {
		return dderr.StoreIO("writePatchIndex", err)
	}
	return nil
}

// ReadPatch reads the named patch's descriptor record.
func (s *Store) ReadPatch(name string) (meshtypes.PatchDescriptor, error) {
	var d meshtypes.PatchDescriptor
	f, err := os.Open(filepath.Join(s.path, fmt.Sprintf(patchInfoFmt, name)))
	if err != nil {
		return d, dderr.StoreIO("ReadPatch: open", err)
	}
	defer f.Close()
	if err := binary.Read(f, binary.LittleEndian, &d); err != nil {
		return d, dderr.StoreIO("ReadPatch: decode", err)
	}
	return d, nil
}

// WritePatch writes (or overwrites) the named patch's descriptor record
// and appends it to the ordered patch index if it is new.
func (s *Store) WritePatch(name string, d meshtypes.PatchDescriptor) error {
	if err := s.checkWritable("WritePatch"); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.path, fmt.Sprintf(patchInfoFmt, name)))
	if err != nil {
		return dderr.StoreIO("WritePatch: create", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, d); err != nil {
		return dderr.StoreIO("WritePatch: encode", err)
	}

	for _, n := range s.patchOrder {
		if n == name {
			return nil
		}
	}
	s.patchOrder = append(s.patchOrder, name)
	return s.writePatchIndex()
}

// Patches reads every patch descriptor in index order.
func (s *Store) Patches() ([]meshtypes.PatchDescriptor, error) {
	out := make([]meshtypes.PatchDescriptor, 0, len(s.patchOrder))
	for _, name := range s.patchOrder {
		d, err := s.ReadPatch(name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
