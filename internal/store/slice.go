package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/partmesh/dimm/dderr"
)

// recordSize returns the on-disk size in bytes of a fixed-layout record
// type T. Every type this package moves (meshtypes.Node/Face/FaceLR/
// Cell/PatchDescriptor) consists only of fixed-width numeric fields and
// arrays, so binary.Size never returns -1 for them.
func recordSize[T any]() int {
	var zero T
	n := binary.Size(zero)
	if n < 0 {
		panic(fmt.Sprintf("store: %T is not a fixed-size record", zero))
	}
	return n
}

func (s *Store) linkPath(link Link) (string, error) {
	f, ok := linkFile(link)
	if !ok {
		return "", dderr.StoreIO("link", fmt.Errorf("unknown link %q", link))
	}
	return filepath.Join(s.path, f), nil
}

// ReadSlice implements §4.G's readSlice<T>: read count records of type T
// from link, starting at record offset and spaced stride records apart
// (stride=1 for a contiguous run), into out. len(out) must be >= count.
func ReadSlice[T any](s *Store, link Link, out []T, offset, stride, count int) error {
	if count == 0 {
		return nil
	}
	if len(out) < count {
		return dderr.Invariant("ReadSlice: out has length %d, need >= %d", len(out), count)
	}
	path, err := s.linkPath(link)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return dderr.StoreIO("ReadSlice: open", err)
	}
	defer f.Close()

	sz := recordSize[T]()
	if stride <= 0 {
		stride = 1
	}
	for i := 0; i < count; i++ {
		recIdx := offset + i*stride
		if _, err := f.Seek(int64(recIdx)*int64(sz), io.SeekStart); err != nil {
			return dderr.StoreIO("ReadSlice: seek", err)
		}
		if err := binary.Read(f, binary.LittleEndian, &out[i]); err != nil {
			return dderr.StoreIO("ReadSlice: decode", err)
		}
	}
	return nil
}

// ReadByList implements §4.G's readByList<T>: gather the records named by
// idList (global record indices, not necessarily contiguous or sorted)
// from link into out, in the order idList enumerates them.
func ReadByList[T any](s *Store, link Link, out []T, idList []int) error {
	if len(idList) == 0 {
		return nil
	}
	if len(out) < len(idList) {
		return dderr.Invariant("ReadByList: out has length %d, need >= %d", len(out), len(idList))
	}
	path, err := s.linkPath(link)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return dderr.StoreIO("ReadByList: open", err)
	}
	defer f.Close()

	sz := recordSize[T]()
	for i, id := range idList {
		if _, err := f.Seek(int64(id)*int64(sz), io.SeekStart); err != nil {
			return dderr.StoreIO("ReadByList: seek", err)
		}
		if err := binary.Read(f, binary.LittleEndian, &out[i]); err != nil {
			return dderr.StoreIO("ReadByList: decode", err)
		}
	}
	return nil
}

// WriteSlice implements §4.G's writeSlice<T>: write memCount records from
// in, starting at record offset and spaced stride records apart, growing
// the file to hold fileCount records if it is currently shorter — the
// memory-dataspace/file-dataspace distinction of a real hyperslab write,
// realized here as "how many records fit in the buffer" vs "how many
// records the file must be able to hold".
func WriteSlice[T any](s *Store, link Link, in []T, offset, stride, memCount, fileCount int) error {
	if err := s.checkWritable("WriteSlice"); err != nil {
		return err
	}
	if len(in) < memCount {
		return dderr.Invariant("WriteSlice: in has length %d, need >= %d", len(in), memCount)
	}
	path, err := s.linkPath(link)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return dderr.StoreIO("WriteSlice: open", err)
	}
	defer f.Close()

	sz := recordSize[T]()
	need := int64(fileCount) * int64(sz)
	if info, err := f.Stat(); err == nil && info.Size() < need {
		if err := f.Truncate(need); err != nil {
			return dderr.StoreIO("WriteSlice: truncate", err)
		}
	}
	if stride <= 0 {
		stride = 1
	}
	for i := 0; i < memCount; i++ {
		recIdx := offset + i*stride
		if _, err := f.Seek(int64(recIdx)*int64(sz), io.SeekStart); err != nil {
			return dderr.StoreIO("WriteSlice: seek", err)
		}
		if err := binary.Write(f, binary.LittleEndian, in[i]); err != nil {
			return dderr.StoreIO("WriteSlice: encode", err)
		}
	}
	return nil
}
