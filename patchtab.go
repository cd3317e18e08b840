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
	"cmp"
	"slices"
	"strings"
	"sync"
)

// Session is the debuggee access surface the table depends on. Active
// reports whether a debug session is running, Readable whether a single
// byte at addr can be read from the debuggee, and WriteByte writes one
// byte into live memory. WriteByte is used only when restoring original
// bytes; its failure is deliberately not surfaced by the table.
type Session interface {
	Active() bool
	Readable(addr uint64) bool
	WriteByte(addr uint64, b byte) bool
}

// Modules resolves loaded modules of the debuggee. BaseOf and NameOf
// identify the module containing an address (zero/empty when the address
// belongs to no module), BaseByName and PathByName look a module up by its
// case-insensitive name. KeyOf derives the reload-stable identity of the
// byte at addr: it must depend on the containing module's identity and the
// module-relative offset, never on the current load base.
type Modules interface {
	BaseOf(addr uint64) uint64
	BaseByName(name string) uint64
	NameOf(addr uint64) string
	KeyOf(addr uint64) uint64
	PathByName(name string) string
}

// Patch is one recorded byte patch. Original is the byte value observed
// before the first patch of the chain was applied, Current the value the
// byte is patched to. Addr is absolute, rehydrated with the module's
// current load base at the time the Patch was handed out.
type Patch struct {
	Addr     uint64
	Module   string
	Original byte
	Current  byte
}

// Table is the patch ledger of one debugging session. Records are keyed by
// the module-identity hash from [Modules.KeyOf], so a patch set before a
// module reload is still found after the module comes back at a different
// base. All methods serialize on an internal mutex; see [Table.ApplyToFile]
// for the one operation that runs unlocked.
//
// Inside the table a record's Addr field holds the module-relative offset;
// every Patch leaving the table carries an absolute address.
type Table struct {
	mu   sync.Mutex
	recs map[uint64]Patch
	ses  Session
	mod  Modules
	img  ImageMapper
}

// New creates an empty patch table operating on the given debug session
// and module resolver. File export maps images with the pefile subpackage.
func New(ses Session, mod Modules) *Table {
	return &Table{
		recs: make(map[uint64]Patch),
		ses:  ses,
		mod:  mod,
		img:  peMapper{},
	}
}

// Set records the intent to patch the byte at addr from oldByte to
// newByte. It does not write into live memory. Setting a byte to itself
// is a no-op, setting a patched byte back to its recorded original removes
// the record, and re-patching an already patched byte keeps the original
// byte of the existing record, so the true pre-patch value survives any
// number of overwrites.
func (t *Table) Set(addr uint64, oldByte, newByte byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ses.Active() {
		return ErrNoSession
	}
	if !t.ses.Readable(addr) {
		return ErrUnreadable
	}
	if oldByte == newByte {
		return nil // nothing to patch
	}

	cand := Patch{
		Addr:     addr - t.mod.BaseOf(addr),
		Module:   t.mod.NameOf(addr),
		Original: oldByte,
		Current:  newByte,
	}
	key := t.mod.KeyOf(addr)
	if rec, ok := t.recs[key]; ok {
		if rec.Original == newByte { // patch is undone
			delete(t.recs, key)
			return nil
		}
		cand.Original = rec.Original // keep the original byte from the previous patch
	}
	t.recs[key] = cand
	return nil
}

// Get returns the patch recorded for addr, with its address rehydrated
// using the module's current base, which may differ from the base at the
// time the patch was set. It returns [ErrNotFound] when no patch is
// recorded at addr.
func (t *Table) Get(addr uint64) (Patch, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ses.Active() {
		return Patch{}, ErrNoSession
	}
	rec, ok := t.recs[t.mod.KeyOf(addr)]
	if !ok {
		return Patch{}, ErrNotFound
	}
	rec.Addr += t.mod.BaseOf(addr)
	return rec, nil
}

// Has reports whether an effective patch is recorded for addr, that is a
// record whose current byte differs from its original. Set never stores a
// record with equal bytes, so the extra comparison only guards against a
// degenerate record.
func (t *Table) Has(addr uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ses.Active() {
		return false
	}
	rec, ok := t.recs[t.mod.KeyOf(addr)]
	return ok && rec.Original != rec.Current
}

// Count returns the number of recorded patches.
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.recs)
}

// Patches returns a copy of every recorded patch, each rehydrated to an
// absolute address with the current base of its module, looked up by name.
// The result is sorted by module name, then address.
func (t *Table) Patches() ([]Patch, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ses.Active() {
		return nil, ErrNoSession
	}
	list := make([]Patch, 0, len(t.recs))
	for _, rec := range t.recs {
		rec.Addr += t.mod.BaseByName(rec.Module)
		list = append(list, rec)
	}
	slices.SortFunc(list, func(a, b Patch) int {
		if c := strings.Compare(strings.ToLower(a.Module), strings.ToLower(b.Module)); c != 0 {
			return c
		}
		return cmp.Compare(a.Addr, b.Addr)
	})
	return list, nil
}
