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

import "strings"

// Delete removes the patch recorded for addr. With restore the original
// byte is first written back into the debuggee; a failing write is ignored
// and the record is removed regardless. It returns [ErrNotFound] when no
// patch is recorded at addr.
func (t *Table) Delete(addr uint64, restore bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ses.Active() {
		return ErrNoSession
	}
	key := t.mod.KeyOf(addr)
	rec, ok := t.recs[key]
	if !ok {
		return ErrNotFound
	}
	if restore {
		t.ses.WriteByte(rec.Addr+t.mod.BaseOf(addr), rec.Original)
	}
	delete(t.recs, key)
	return nil
}

// DeleteRange removes every patch whose address falls in [start, end).
// The special range (0, ^uint64(0)) removes every patch regardless of
// module. Any other range must lie within a single module; a range whose
// ends resolve to different modules (or to none) is a silent no-op. With
// restore each removed patch's original byte is written back first, using
// the module's current base.
func (t *Table) DeleteRange(start, end uint64, restore bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.ses.Active() {
		return ErrNoSession
	}

	all := start == 0 && end == ^uint64(0)
	base := t.mod.BaseOf(start)
	name := t.mod.NameOf(start)
	if !all {
		if base == 0 || base != t.mod.BaseOf(end) {
			return nil // range spans modules, deliberately not an error
		}
		start -= base
		end -= base
	}

	// collect first, then erase, so removal never races the iteration
	var doomed []uint64
	for key, rec := range t.recs {
		if !all {
			if !strings.EqualFold(rec.Module, name) {
				continue
			}
			if rec.Addr < start || rec.Addr >= end {
				continue
			}
		}
		if restore {
			b := base
			if all {
				b = t.mod.BaseByName(rec.Module)
			}
			if b != 0 {
				t.ses.WriteByte(rec.Addr+b, rec.Original)
			}
		}
		doomed = append(doomed, key)
	}
	for _, key := range doomed {
		delete(t.recs, key)
	}
	return nil
}

// Clear drops records without touching the debuggee. An empty module name
// wipes the whole table, and works with no session active so the debugger
// can reset the table on session teardown. A non-empty name drops only the
// records of that module, compared case-insensitively.
func (t *Table) Clear(module string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if module == "" {
		clear(t.recs)
		return
	}
	for key, rec := range t.recs {
		if strings.EqualFold(rec.Module, module) {
			delete(t.recs, key)
		}
	}
}
