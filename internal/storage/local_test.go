package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSaveOpenRemove(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")
	l, err := NewLocal(dir)
	require.NoError(t, err)

	require.NoError(t, l.Save(ctx, "1700000000000-cv.pdf", []byte("%PDF-1.4 data"), "application/pdf"))
	_, err = os.Stat(filepath.Join(dir, "1700000000000-cv.pdf.tmp"))
	assert.True(t, os.IsNotExist(err))

	obj, err := l.Open(ctx, "1700000000000-cv.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, obj.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 data", string(body))
	assert.EqualValues(t, len(body), obj.Size)
	assert.Equal(t, "application/pdf", obj.ContentType)

	require.NoError(t, l.Remove(ctx, "1700000000000-cv.pdf"))
	assert.ErrorIs(t, l.Remove(ctx, "1700000000000-cv.pdf"), ErrNotFound)
	_, err = l.Open(ctx, "1700000000000-cv.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, l.Save(ctx, "../evil.pdf", []byte("x"), ""))
	_, err = l.Open(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, l.Remove(ctx, ".."), ErrNotFound)
}

func TestS3Key(t *testing.T) {
	assert.Equal(t, "cv.pdf", (&S3{}).key("cv.pdf"))
	assert.Equal(t, "resumes/cv.pdf", (&S3{prefix: "resumes"}).key("cv.pdf"))
}
