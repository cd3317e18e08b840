// Package procmem reads and writes single bytes in another process's
// address space. It provides the memory half of the patchtab.Session
// surface: Readable probes, and WriteByte for restoring original bytes.
//
// Backends are platform-specific: process_vm_readv/writev on linux,
// Read/WriteProcessMemory on windows. Other platforms get a stub whose
// Open fails with [ErrNotSupported].
package procmem

import "errors"

// ErrNotSupported is returned by Open on platforms without a wired
// process-memory backend.
var ErrNotSupported = errors.New("process memory access is not supported on this platform")
