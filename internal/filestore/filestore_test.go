package filestore

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestStoreWritesImage(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	name, err := fs.Store(makeFileHeader(t, "latte.png", []byte("png-bytes")), "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_image.png"), "got %s", name)

	data, err := os.ReadFile(filepath.Join(fs.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestStoreRejectsNonImage(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Store(makeFileHeader(t, "menu.pdf", []byte("%PDF")), "")
	assert.ErrorIs(t, err, ErrInvalidExtension)
	assert.Equal(t, "Only image files (jpg, jpeg, png) are allowed", err.Error())
}

func TestStoreNormalizesExtensionCase(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	name, err := fs.Store(makeFileHeader(t, "LATTE.JPG", []byte("jpg")), "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_image.jpg"), "got %s", name)
}

func TestStoreReplacesExisting(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	first, err := fs.Store(makeFileHeader(t, "a.jpg", []byte("one")), "")
	require.NoError(t, err)
	second, err := fs.Store(makeFileHeader(t, "b.jpg", []byte("two")), first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = os.Stat(filepath.Join(fs.Dir(), first))
	assert.True(t, os.IsNotExist(err), "old image should be gone")
	_, err = os.Stat(filepath.Join(fs.Dir(), second))
	assert.NoError(t, err)
}

func TestStoreNilFileKeepsExisting(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	name, err := fs.Store(nil, "keep_image.png")
	require.NoError(t, err)
	assert.Equal(t, "keep_image.png", name)
}

func TestRemoveIgnoresMissing(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)
	fs.Remove("never_stored.png")
	fs.Remove("")
}
