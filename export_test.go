package patchtab

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeImage pretends the whole module maps 1:1 into the file, except
// addresses listed in virtualOnly which have no raw backing.
type fakeImage struct {
	writes      map[int64]byte
	virtualOnly map[uint64]bool
	closeErr    error
	closed      bool
}

func (f *fakeImage) VAToFileOffset(base, va uint64) (int64, bool) {
	if va < base || f.virtualOnly[va] {
		return 0, false
	}
	return int64(va - base), true
}

func (f *fakeImage) SetByte(off int64, b byte) bool {
	f.writes[off] = b
	return true
}

func (f *fakeImage) Close() error {
	f.closed = true
	return f.closeErr
}

type fakeMapper struct {
	img    *fakeImage
	mapErr error
	mapped string
}

func (f *fakeMapper) MapForEdit(path string) (Image, error) {
	f.mapped = path
	if f.mapErr != nil {
		return nil, f.mapErr
	}
	return f.img, nil
}

func newExportTable(t *testing.T) (*Table, *fakeMapper, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "app.exe")
	require.NoError(t, os.WriteFile(src, make([]byte, 0x100), 0644))

	tab, _, mods := newTestTable()
	mods.mods[0].path = src

	mapper := &fakeMapper{img: &fakeImage{
		writes:      make(map[int64]byte),
		virtualOnly: make(map[uint64]bool),
	}}
	tab.img = mapper
	return tab, mapper, dir
}

func TestApplyToFilePatchesBytes(t *testing.T) {
	tab, mapper, dir := newExportTable(t)
	dest := filepath.Join(dir, "app_patched.exe")

	patches := []Patch{
		{Addr: appBase + 0x10, Module: "app.exe", Original: 0x90, Current: 0xCC},
		{Addr: appBase + 0x20, Module: "APP.EXE", Original: 0x90, Current: 0xE9},
	}
	n, err := tab.ApplyToFile(patches, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, dest, mapper.mapped)
	assert.True(t, mapper.img.closed)
	assert.Equal(t, byte(0xCC), mapper.img.writes[0x10])
	assert.Equal(t, byte(0xE9), mapper.img.writes[0x20])

	// the copy itself was made
	_, err = os.Stat(dest)
	assert.NoError(t, err)
}

func TestApplyToFileSkipsUntranslatable(t *testing.T) {
	tab, mapper, dir := newExportTable(t)
	mapper.img.virtualOnly[appBase+0x20] = true

	patches := []Patch{
		{Addr: appBase + 0x10, Module: "app.exe", Current: 0xCC},
		{Addr: appBase + 0x20, Module: "app.exe", Current: 0xCC}, // no raw offset
		{Addr: appBase + 0x30, Module: "app.exe", Current: 0xCC},
	}
	n, err := tab.ApplyToFile(patches, filepath.Join(dir, "out.exe"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotContains(t, mapper.img.writes, int64(0x20))
}

func TestApplyToFileNoPatches(t *testing.T) {
	tab, _, dir := newExportTable(t)

	_, err := tab.ApplyToFile(nil, filepath.Join(dir, "out.exe"))
	assert.ErrorIs(t, err, ErrNoPatches)
}

func TestApplyToFileModuleMismatch(t *testing.T) {
	tab, _, dir := newExportTable(t)
	dest := filepath.Join(dir, "out.exe")

	patches := []Patch{
		{Addr: appBase + 0x10, Module: "app.exe", Current: 0xCC},
		{Addr: 0x7ff800002000, Module: "helper.dll", Current: 0xCC},
	}
	_, err := tab.ApplyToFile(patches, dest)
	assert.ErrorIs(t, err, ErrModuleMismatch)

	// failed before any file work
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestApplyToFileModuleNotLoaded(t *testing.T) {
	tab, _, dir := newExportTable(t)

	patches := []Patch{{Addr: 0x10, Module: "gone.dll", Current: 0xCC}}
	_, err := tab.ApplyToFile(patches, filepath.Join(dir, "out.exe"))
	assert.ErrorIs(t, err, ErrModuleNotLoaded)
}

func TestApplyToFileSourceUnresolvable(t *testing.T) {
	tab, _, dir := newExportTable(t)

	// helper.dll is loaded but has no on-disk path in the fake resolver
	patches := []Patch{{Addr: 0x7ff800002000, Module: "helper.dll", Current: 0xCC}}
	_, err := tab.ApplyToFile(patches, filepath.Join(dir, "out.exe"))
	assert.ErrorIs(t, err, ErrSourceUnresolvable)
}

func TestApplyToFileCopyFailure(t *testing.T) {
	tab, _, dir := newExportTable(t)

	patches := []Patch{{Addr: appBase + 0x10, Module: "app.exe", Current: 0xCC}}
	_, err := tab.ApplyToFile(patches, dir) // destination is a directory
	assert.ErrorIs(t, err, ErrFileCopy)
}

func TestApplyToFileMapFailure(t *testing.T) {
	tab, mapper, dir := newExportTable(t)
	mapper.mapErr = errors.New("mapping failed")

	patches := []Patch{{Addr: appBase + 0x10, Module: "app.exe", Current: 0xCC}}
	_, err := tab.ApplyToFile(patches, filepath.Join(dir, "out.exe"))
	assert.ErrorIs(t, err, ErrFileMap)
}

func TestApplyToFileUnmapFailure(t *testing.T) {
	tab, mapper, dir := newExportTable(t)
	mapper.img.closeErr = errors.New("flush failed")

	patches := []Patch{{Addr: appBase + 0x10, Module: "app.exe", Current: 0xCC}}
	_, err := tab.ApplyToFile(patches, filepath.Join(dir, "out.exe"))
	assert.ErrorIs(t, err, ErrFileUnmap)
	// the byte write itself happened before the failing flush
	assert.Equal(t, byte(0xCC), mapper.img.writes[0x10])
}
