package procmem

import "golang.org/x/sys/unix"

// Process accesses the address space of a live process through
// process_vm_readv(2) and process_vm_writev(2). It needs the same
// permissions as ptrace attach, which a debugger holding the target
// already has.
type Process struct {
	pid    int
	closed bool
}

// Open prepares access to the process with the given pid. It fails when
// no such process exists.
func Open(pid int) (*Process, error) {
	// signal 0 probes existence without delivering anything
	if err := unix.Kill(pid, 0); err != nil {
		return nil, err
	}
	return &Process{pid: pid}, nil
}

func (p *Process) Pid() int { return p.pid }

// Active reports whether the process is still around and the handle has
// not been closed.
func (p *Process) Active() bool {
	return p != nil && !p.closed && unix.Kill(p.pid, 0) == nil
}

// ReadByte reads one byte at addr.
func (p *Process) ReadByte(addr uint64) (byte, bool) {
	if p.closed {
		return 0, false
	}
	var b [1]byte
	local := []unix.Iovec{{Base: &b[0], Len: 1}}
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: 1}}
	n, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
	return b[0], err == nil && n == 1
}

// Readable reports whether one byte at addr can be read.
func (p *Process) Readable(addr uint64) bool {
	_, ok := p.ReadByte(addr)
	return ok
}

// WriteByte writes one byte at addr.
func (p *Process) WriteByte(addr uint64, v byte) bool {
	if p.closed {
		return false
	}
	b := [1]byte{v}
	local := []unix.Iovec{{Base: &b[0], Len: 1}}
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: 1}}
	n, err := unix.ProcessVMWritev(p.pid, local, remote, 0)
	return err == nil && n == 1
}

func (p *Process) Close() error {
	p.closed = true
	return nil
}
