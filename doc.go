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

/*
Package patchtab keeps the book of single-byte patches a debugger applies to
a debugged process. It records patch intent, consolidates repeated patches of
the same byte so the true pre-patch value is never lost, restores original
bytes on demand, and can bake all patches for one module into a copy of the
module's on-disk PE image.

# Addressing

Every patched byte lives in three addressing domains at once:

  - the absolute runtime address in the debuggee,
  - the module-relative offset (address minus the module's load base), which
    survives a module being unloaded and reloaded at a different base,
  - the raw offset in the module's on-disk image, reached from the virtual
    address through the PE section table.

The table stores module-relative offsets keyed by a reload-stable identity
supplied by the module resolver, so the same logical patch is recognized
across address-space layout changes. Addresses returned to the caller are
always rehydrated with the module's current base.

# Collaborators

The table itself never touches the debuggee. It asks a [Session] whether
debugging is active and whether an address is readable, writes restored
bytes through the same interface, and resolves modules through [Modules].
The procmem subpackage provides a process-memory backend, the pefile
subpackage the PE image mapper used by the file export path.

# Typical use

	tab := patchtab.New(ses, mods)

	// record intent; the actual write into live memory is done elsewhere
	err := tab.Set(0x401000, 0x74, 0xEB)
	...
	// undo, writing the original byte back into the debuggee
	err = tab.Delete(0x401000, true)

	// bake everything recorded for one module into a patched copy
	patches, _ := tab.Patches()
	n, err := tab.ApplyToFile(patches, `C:\out\app_patched.exe`)

The table is not safe for unsynchronized concurrent use; it serializes its
own bookkeeping with an internal mutex, but callers racing Set against
Delete still observe arbitrary interleaving of live-memory writes.
[Table.ApplyToFile] performs blocking file I/O and takes no table lock.
*/
package patchtab
