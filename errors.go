package patchtab

import "errors"

// Ledger failures.
var (
	ErrNoSession  = errors.New("no active debug session")
	ErrUnreadable = errors.New("address is not readable in the debuggee")
	ErrNotFound   = errors.New("no patch recorded at this address")
)

// File export failures.
var (
	ErrNoPatches          = errors.New("no patches to apply")
	ErrModuleMismatch     = errors.New("patches span more than one module")
	ErrModuleNotLoaded    = errors.New("module is not loaded")
	ErrSourceUnresolvable = errors.New("cannot resolve on-disk path of module")
	ErrFileCopy           = errors.New("cannot copy module image")
	ErrFileMap            = errors.New("cannot map file for editing")
	ErrFileUnmap          = errors.New("cannot flush and unmap file")
)
