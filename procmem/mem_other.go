//go:build !linux && !windows

package procmem

// Process is a stub for platforms without a wired process-memory backend.
type Process struct{}

func Open(pid int) (*Process, error) { return nil, ErrNotSupported }

func (p *Process) Pid() int { return 0 }

func (p *Process) Active() bool { return false }

func (p *Process) ReadByte(addr uint64) (byte, bool) { return 0, false }

func (p *Process) Readable(addr uint64) bool { return false }

func (p *Process) WriteByte(addr uint64, v byte) bool { return false }

func (p *Process) Close() error { return nil }
