package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/partmesh/dimm/dderr"
)

// Cursor is the iterator protocol §9 substitutes for the source's
// friend-accessed streamers: current/advance/eof, plus flush when opened
// read-write. A Cursor owns one open file handle onto a single link and
// streams its records sequentially without loading the whole dataset
// into memory.
type Cursor[T any] struct {
	f      *os.File
	sz     int
	idx, n int
	mode   Mode
	cur    T
}

// NewCursor opens a streaming cursor over link for n records, in mode
// (ReadOnly to stream in; ReadWrite to stream in and optionally rewrite
// records in place via Set).
func NewCursor[T any](s *Store, link Link, n int, mode Mode) (*Cursor[T], error) {
	path, err := s.linkPath(link)
	if err != nil {
		return nil, err
	}
	flag := os.O_RDONLY
	if mode == ReadWrite {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, dderr.StoreIO("NewCursor: open", err)
	}
	return &Cursor[T]{f: f, sz: recordSize[T](), n: n, mode: mode}, nil
}

// Eof reports whether the cursor has consumed every record.
func (c *Cursor[T]) Eof() bool { return c.idx >= c.n }

// Advance reads the next record into Current and moves the cursor
// forward. Must not be called once Eof is true.
func (c *Cursor[T]) Advance() error {
	if c.Eof() {
		return dderr.Invariant("Cursor.Advance: past end of stream (n=%d)", c.n)
	}
	if err := binary.Read(c.f, binary.LittleEndian, &c.cur); err != nil {
		return dderr.StoreIO("Cursor.Advance: decode", err)
	}
	c.idx++
	return nil
}

// Current returns the record most recently loaded by Advance.
func (c *Cursor[T]) Current() T { return c.cur }

// Set overwrites the record at the cursor's current position (the one
// Current last returned) for a read-write cursor, then restores the
// cursor's file position so the next Advance reads the following record.
func (c *Cursor[T]) Set(v T) error {
	if c.mode != ReadWrite {
		return dderr.StoreIO("Cursor.Set", fmt.Errorf("cursor opened read-only"))
	}
	c.cur = v
	if _, err := c.f.Seek(int64(c.idx-1)*int64(c.sz), io.SeekStart); err != nil {
		return dderr.StoreIO("Cursor.Set: seek", err)
	}
	if err := binary.Write(c.f, binary.LittleEndian, v); err != nil {
		return dderr.StoreIO("Cursor.Set: encode", err)
	}
	if _, err := c.f.Seek(int64(c.idx)*int64(c.sz), io.SeekStart); err != nil {
		return dderr.StoreIO("Cursor.Set: reseek", err)
	}
	return nil
}

// Flush syncs outstanding writes to disk; a no-op on a read-only cursor.
func (c *Cursor[T]) Flush() error {
	if c.mode != ReadWrite {
		return nil
	}
	if err := c.f.Sync(); err != nil {
		return dderr.StoreIO("Cursor.Flush", err)
	}
	return nil
}

// Close flushes (if writable) and closes the underlying file handle.
func (c *Cursor[T]) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	return c.f.Close()
}
