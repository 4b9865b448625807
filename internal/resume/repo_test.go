package resume

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumehub/internal/model"
	"resumehub/internal/store/storetest"
)

func TestRepositoryLifecycle(t *testing.T) {
	db := storetest.NewDB(t)
	ctx := context.Background()
	repo := NewRepository(db.Pool)

	college := "col-1"
	rec := &model.Resume{
		FileName: "cv.pdf", StoredName: "1-cv.pdf", FileURL: "/uploads/resumes/1-cv.pdf",
		UploadedBy: model.UploaderCollege, CollegeID: &college, Department: "CSE",
		Content: "Senior Go Engineer (Postgres)",
	}
	require.NoError(t, repo.Insert(ctx, rec))
	require.NoError(t, repo.Insert(ctx, &model.Resume{FileName: "b.pdf", StoredName: "2-b.pdf", FileURL: "/u/2", UploadedBy: model.UploaderAdmin}))

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{}, got.ViewedBy)
	assert.Equal(t, []model.Selection{}, got.SelectedBy)
	assert.Equal(t, "col-1", *got.CollegeID)
	assert.Nil(t, got.CollegeName)

	hits, err := repo.Search(ctx, "go engineer (postgres", "")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	hits, err = repo.Search(ctx, "%", "")
	require.NoError(t, err)
	assert.Empty(t, hits)
	hits, err = repo.Search(ctx, "engineer", "col-2")
	require.NoError(t, err)
	assert.Empty(t, hits)

	n, err := repo.CountByUploader(ctx, model.UploaderAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = repo.CountByCollege(ctx, college)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.UpsertSelection(ctx, rec.ID, "hr-1", i%2 == 0)
			assert.NoError(t, err)
			_, err = repo.AddViewer(ctx, rec.ID, "hr-1")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	ok, err := repo.UpsertSelection(ctx, rec.ID, "hr-1", true)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Selection{{HRID: "hr-1", Selected: true}}, got.SelectedBy)
	assert.Equal(t, []string{"hr-1"}, got.ViewedBy)
	assert.True(t, got.Viewed)

	selected, err := repo.ListSelectedBy(ctx, "hr-1")
	require.NoError(t, err)
	require.Len(t, selected, 1)

	ok, err = repo.AddViewer(ctx, "missing", "hr-1")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.UpsertSelection(ctx, "missing", "hr-1", true)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
