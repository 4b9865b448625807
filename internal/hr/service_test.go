package hr

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumehub/internal/apperr"
	"resumehub/internal/model"
	"resumehub/internal/storage"
	"resumehub/internal/store/memstore"
)

func setup(t *testing.T) (*Service, *memstore.Resumes, *storage.Local) {
	t.Helper()
	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	st := memstore.NewResumes()
	return NewService(st, files, slog.New(slog.NewTextHandler(io.Discard, nil))), st, files
}

func seed(t *testing.T, st *memstore.Resumes, files *storage.Local, name string) model.Resume {
	t.Helper()
	ctx := context.Background()
	rec := model.Resume{FileName: name, StoredName: "1-" + name, UploadedBy: model.UploaderAdmin}
	require.NoError(t, files.Save(ctx, rec.StoredName, []byte("content of "+name), "application/pdf"))
	require.NoError(t, st.Insert(ctx, &rec))
	return rec
}

func TestSelectionLatestCallWins(t *testing.T) {
	ctx := context.Background()
	svc, st, files := setup(t)
	rec := seed(t, st, files, "a.pdf")
	seed(t, st, files, "b.pdf")

	_, err := svc.SetSelection(ctx, rec.ID, "hr-1", true)
	require.NoError(t, err)
	got, err := svc.SetSelection(ctx, rec.ID, "hr-1", false)
	require.NoError(t, err)
	assert.Equal(t, []model.Selection{{HRID: "hr-1", Selected: false}}, got.SelectedBy)

	got, err = svc.SetSelection(ctx, rec.ID, "hr-1", true)
	require.NoError(t, err)
	assert.Len(t, got.SelectedBy, 1)

	_, err = svc.SetSelection(ctx, rec.ID, "hr-2", false)
	require.NoError(t, err)

	sel, err := svc.ListSelected(ctx, "hr-1")
	require.NoError(t, err)
	require.Len(t, sel, 1)
	assert.Equal(t, rec.ID, sel[0].ID)

	sel, err = svc.ListSelected(ctx, "hr-2")
	require.NoError(t, err)
	assert.Empty(t, sel)

	all, err := svc.ListAllAnnotated(ctx, "hr-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, r := range all {
		assert.Equal(t, r.ID == rec.ID, r.SelectedByHR)
	}

	_, err = svc.SetSelection(ctx, "missing", "hr-1", true)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestMarkViewedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, st, files := setup(t)
	rec := seed(t, st, files, "a.pdf")

	_, err := svc.MarkViewed(ctx, rec.ID, "hr-1")
	require.NoError(t, err)
	got, err := svc.MarkViewed(ctx, rec.ID, "hr-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"hr-1"}, got.ViewedBy)
	assert.True(t, got.Viewed)

	_, err = svc.MarkViewed(ctx, rec.ID, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.MarkViewed(ctx, "missing", "hr-1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDownload(t *testing.T) {
	ctx := context.Background()
	svc, st, files := setup(t)
	rec := seed(t, st, files, "a.pdf")

	f, err := svc.Download(ctx, rec.ID)
	require.NoError(t, err)
	body, _ := io.ReadAll(f.Body)
	f.Body.Close()
	assert.Equal(t, "content of a.pdf", string(body))
	assert.Equal(t, "a.pdf", f.FileName)
	assert.EqualValues(t, len(body), f.Size)

	require.NoError(t, files.Remove(ctx, rec.StoredName))
	_, err = svc.Download(ctx, rec.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = st.Delete(ctx, rec.ID)
	require.NoError(t, err)
	_, err = svc.Download(ctx, rec.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	n, err := svc.TotalResumes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
