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

package procmem

import "golang.org/x/sys/windows"

// Process accesses the address space of a live process through
// ReadProcessMemory and WriteProcessMemory.
type Process struct {
	h   windows.Handle
	pid int
}

// Open obtains a handle to the process with the given pid, with the
// rights needed for memory reads and writes.
func Open(pid int) (*Process, error) {
	h, err := windows.OpenProcess(
		windows.PROCESS_VM_READ|windows.PROCESS_VM_WRITE|windows.PROCESS_VM_OPERATION|windows.PROCESS_QUERY_INFORMATION,
		false,
		uint32(pid),
	)
	if err != nil {
		return nil, err
	}
	return &Process{h: h, pid: pid}, nil
}

func (p *Process) Pid() int { return p.pid }

// Active reports whether the process has not exited and the handle is
// still open.
func (p *Process) Active() bool {
	if p == nil || p.h == 0 {
		return false
	}
	var code uint32
	if err := windows.GetExitCodeProcess(p.h, &code); err != nil {
		return false
	}
	return code == windows.STILL_ACTIVE
}

// ReadByte reads one byte at addr.
func (p *Process) ReadByte(addr uint64) (byte, bool) {
	if p.h == 0 {
		return 0, false
	}
	var b [1]byte
	var n uintptr
	err := windows.ReadProcessMemory(p.h, uintptr(addr), &b[0], 1, &n)
	return b[0], err == nil && n == 1
}

// Readable reports whether one byte at addr can be read.
func (p *Process) Readable(addr uint64) bool {
	_, ok := p.ReadByte(addr)
	return ok
}

// WriteByte writes one byte at addr.
func (p *Process) WriteByte(addr uint64, v byte) bool {
	if p.h == 0 {
		return false
	}
	b := [1]byte{v}
	var n uintptr
	err := windows.WriteProcessMemory(p.h, uintptr(addr), &b[0], 1, &n)
	return err == nil && n == 1
}

func (p *Process) Close() error {
	if p.h == 0 {
		return nil
	}
	err := windows.CloseHandle(p.h)
	p.h = 0
	return err
}
