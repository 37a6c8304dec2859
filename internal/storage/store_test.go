package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/apperr"
)

// fileHeaders builds real multipart file headers the way an HTTP
// request would deliver them.
func fileHeaders(t *testing.T, files ...[2]string) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		name, contentType := f[0], f[1]
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="documents"; filename=%q`, name))
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 test payload"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["documents"]
}

func TestStoreSave(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	t.Run("accepts an allowed file", func(t *testing.T) {
		fh := fileHeaders(t, [2]string{"report.pdf", "application/pdf"})[0]
		doc, err := store.Save(fh)
		require.NoError(t, err)

		assert.Equal(t, "report.pdf", doc.OriginalName)
		assert.Equal(t, "application/pdf", doc.ContentType)
		assert.NotEqual(t, "report.pdf", doc.Filename)
		assert.FileExists(t, doc.Path)
		assert.Equal(t, int64(len("%PDF-1.4 test payload")), doc.Size)
	})

	t.Run("rejects a disallowed type", func(t *testing.T) {
		fh := fileHeaders(t, [2]string{"shell.sh", "application/x-sh"})[0]
		_, err := store.Save(fh)
		assert.ErrorIs(t, err, apperr.ErrUpload)
	})

	t.Run("rejects a mismatched extension", func(t *testing.T) {
		fh := fileHeaders(t, [2]string{"report.exe", "application/pdf"})[0]
		_, err := store.Save(fh)
		assert.ErrorIs(t, err, apperr.ErrUpload)
	})

	t.Run("custom allow-list", func(t *testing.T) {
		custom, err := NewStore(t.TempDir(), map[string]string{"text/plain": ".txt"})
		require.NoError(t, err)

		fh := fileHeaders(t, [2]string{"notes.txt", "text/plain"})[0]
		_, err = custom.Save(fh)
		assert.NoError(t, err)

		fh = fileHeaders(t, [2]string{"report.pdf", "application/pdf"})[0]
		_, err = custom.Save(fh)
		assert.ErrorIs(t, err, apperr.ErrUpload)
	})
}

func TestStoreOpenAndRemove(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	fh := fileHeaders(t, [2]string{"report.pdf", "application/pdf"})[0]
	doc, err := store.Save(fh)
	require.NoError(t, err)

	t.Run("open returns the stored path", func(t *testing.T) {
		path, err := store.Open(doc.Filename)
		require.NoError(t, err)
		assert.Equal(t, doc.Path, path)
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		_, err := store.Open("../../../etc/passwd")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("missing file reports not found", func(t *testing.T) {
		_, err := store.Open("nope.pdf")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("remove deletes the file", func(t *testing.T) {
		require.NoError(t, store.Remove(doc.Filename))
		assert.NoFileExists(t, doc.Path)
		assert.Error(t, store.Remove(doc.Filename))
	})
}

type staticLister map[string]bool

func (s staticLister) ReferencedFilenames(_ context.Context) (map[string]bool, error) {
	return s, nil
}

func TestSweeper(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	require.NoError(t, err)

	writeFile := func(name string, age time.Duration) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		old := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(path, old, old))
	}

	writeFile("referenced.pdf", 2*time.Hour)
	writeFile("orphan.pdf", 2*time.Hour)
	writeFile("fresh-orphan.pdf", time.Minute)

	sweeper := NewSweeper(store, staticLister{"referenced.pdf": true})
	removed, err := sweeper.Sweep(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.FileExists(t, filepath.Join(dir, "referenced.pdf"))
	assert.NoFileExists(t, filepath.Join(dir, "orphan.pdf"))
	// Too young to be judged an orphan yet.
	assert.FileExists(t, filepath.Join(dir, "fresh-orphan.pdf"))
}
