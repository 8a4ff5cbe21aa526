package linker_test

import (
	"os"
	"path/filepath"
	"testing"

	"bepinstall/internal/domain"
	"bepinstall/internal/linker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		method domain.LinkMethod
		want   domain.LinkMethod
	}{
		{domain.LinkCopy, domain.LinkCopy},
		{domain.LinkHardlink, domain.LinkHardlink},
		{domain.LinkMethod(42), domain.LinkCopy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, linker.New(tt.method).Method())
	}
}

func TestCopier_Place(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dll")
	dst := filepath.Join(dir, "game", "BepInEx", "plugins", "dst.dll")
	require.NoError(t, os.WriteFile(src, []byte{0x4d, 0x5a, 0x00, 0xff}, 0600))

	c := linker.NewCopier()
	require.NoError(t, c.Place(src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4d, 0x5a, 0x00, 0xff}, content)

	// A shorter source truncates the old copy
	require.NoError(t, os.WriteFile(src, []byte{0x01}, 0600))
	require.NoError(t, c.Place(src, dst))
	content, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, content)
}

func TestCopier_PlaceMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := linker.NewCopier().Place(filepath.Join(dir, "nope"), filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemove_Idempotent(t *testing.T) {
	for _, l := range []linker.Linker{linker.NewCopier(), linker.NewHardLinker()} {
		dst := filepath.Join(t.TempDir(), "a.txt")
		require.NoError(t, os.WriteFile(dst, []byte("x"), 0644))

		require.NoError(t, l.Remove(dst))
		assert.NoFileExists(t, dst)
		require.NoError(t, l.Remove(dst), "missing file is not an error")
	}
}

func TestHardLinker_Place(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "out", "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0644))

	require.NoError(t, linker.NewHardLinker().Place(src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))

	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, os.SameFile(srcInfo, dstInfo))
}

func TestPruneEmptyDirs(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "BepInEx", "plugins", "Mod", "sub")
	require.NoError(t, os.MkdirAll(deep, 0755))
	keep := filepath.Join(root, "BepInEx", "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0644))

	linker.PruneEmptyDirs(filepath.Join(deep, "gone.dll"), root)

	assert.NoDirExists(t, filepath.Join(root, "BepInEx", "plugins"))
	assert.FileExists(t, keep)
	assert.DirExists(t, root)
}
