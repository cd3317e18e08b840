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

package patchtab

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dbgkit/patchtab/pefile"
)

// Image is a module image mapped for raw editing. VAToFileOffset
// translates an absolute virtual address of the loaded module (with base
// as its load base) into an offset in the file; it reports false for
// addresses with no backing file data. Close flushes written bytes and
// releases the mapping.
type Image interface {
	VAToFileOffset(base, va uint64) (int64, bool)
	SetByte(off int64, b byte) bool
	Close() error
}

// ImageMapper opens a file for raw editing.
type ImageMapper interface {
	MapForEdit(path string) (Image, error)
}

type peMapper struct{}

func (peMapper) MapForEdit(path string) (Image, error) {
	return pefile.Map(path)
}

// ApplyToFile bakes the given patches into a copy of their module's
// on-disk image, written to dest. All patches must belong to one module
// (compared case-insensitively), the module must currently be loaded and
// its image path resolvable. Patch addresses are absolute, as returned by
// [Table.Get] and [Table.Patches].
//
// A patch whose address has no corresponding raw file offset, e.g. one in
// a section region not backed by file data, is silently skipped. The
// returned count is the number of bytes actually written, which may be
// less than len(patches).
//
// ApplyToFile performs blocking file I/O and does not hold the table lock.
func (t *Table) ApplyToFile(patches []Patch, dest string) (int, error) {
	if len(patches) == 0 {
		return 0, ErrNoPatches
	}

	name := patches[0].Module
	for _, p := range patches[1:] {
		if !strings.EqualFold(p.Module, name) {
			return 0, fmt.Errorf("%w: %q vs %q", ErrModuleMismatch, name, p.Module)
		}
	}

	base := t.mod.BaseByName(name)
	if base == 0 {
		return 0, fmt.Errorf("%w: %s", ErrModuleNotLoaded, name)
	}
	src := t.mod.PathByName(name)
	if src == "" {
		return 0, fmt.Errorf("%w: %s", ErrSourceUnresolvable, name)
	}

	if err := copyFile(src, dest); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileCopy, err)
	}

	img, err := t.img.MapForEdit(dest)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileMap, err)
	}

	patched := 0
	for _, p := range patches {
		off, ok := img.VAToFileOffset(base, p.Addr)
		if !ok {
			continue // no raw data behind this address
		}
		if img.SetByte(off, p.Current) {
			patched++
		}
	}

	if err := img.Close(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileUnmap, err)
	}
	return patched, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
