// This file is part of Patchtab project, available at https://github.com/dbgkit/patchtab
// Copyright (c) 2026 Anton Kovalev. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at https://www.apache.org/licenses/LICENSE-2.0
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pefile opens PE images for raw byte editing and translates
// virtual addresses of the loaded module into on-disk file offsets
// through the section table.
package pefile

import (
	"debug/pe"
	"errors"
	"fmt"
	"os"
)

type section struct {
	va      uint64 // RVA of the section when loaded
	vsize   uint64
	rawOff  uint64 // PointerToRawData
	rawSize uint64 // SizeOfRawData
}

// Image is a PE file mapped read-write, backed by mmap on linux/darwin
// and by an in-memory buffer written back on Close elsewhere.
type Image struct {
	f        *os.File
	data     []byte
	hdrSize  uint64
	sections []section
}

// Map opens the PE file at path for editing. The caller must Close the
// returned image to flush written bytes and release the mapping.
func Map(path string) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("empty file: %s", path)
	}

	pf, err := pe.NewFile(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("parse PE headers: %w", err)
	}

	var hdrSize uint64
	switch oh := pf.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		hdrSize = uint64(oh.SizeOfHeaders)
	case *pe.OptionalHeader64:
		hdrSize = uint64(oh.SizeOfHeaders)
	default:
		f.Close()
		return nil, errors.New("image has no optional header")
	}

	secs := make([]section, 0, len(pf.Sections))
	for _, s := range pf.Sections {
		secs = append(secs, section{
			va:      uint64(s.VirtualAddress),
			vsize:   uint64(s.VirtualSize),
			rawOff:  uint64(s.Offset),
			rawSize: uint64(s.Size),
		})
	}

	data, err := mapFile(f, st.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Image{f: f, data: data, hdrSize: hdrSize, sections: secs}, nil
}

// VAToFileOffset translates an absolute virtual address of the module
// loaded at base into an offset in the file. The header range maps 1:1,
// section ranges map through PointerToRawData. It reports false for an
// address outside the image or inside a section's virtual tail that has
// no backing file data.
func (img *Image) VAToFileOffset(base, va uint64) (int64, bool) {
	if va < base {
		return 0, false
	}
	rva := va - base
	if rva < img.hdrSize {
		return int64(rva), true
	}
	for _, s := range img.sections {
		size := s.vsize
		if size == 0 { // object files leave VirtualSize zero
			size = s.rawSize
		}
		if rva < s.va || rva >= s.va+size {
			continue
		}
		off := rva - s.va
		if off >= s.rawSize {
			return 0, false // virtual-only, nothing to patch on disk
		}
		off += s.rawOff
		if off >= uint64(len(img.data)) {
			return 0, false
		}
		return int64(off), true
	}
	return 0, false
}

// SetByte writes one byte at the given file offset. It reports false when
// the offset lies outside the mapped file.
func (img *Image) SetByte(off int64, b byte) bool {
	if off < 0 || off >= int64(len(img.data)) {
		return false
	}
	img.data[off] = b
	return true
}

// Size returns the size of the mapped file in bytes.
func (img *Image) Size() int64 { return int64(len(img.data)) }
