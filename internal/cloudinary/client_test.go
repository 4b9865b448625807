package cloudinary

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumehub/internal/storage"
)

var _ storage.Backend = (*Client)(nil)

func TestSignMatchesDocumentedExample(t *testing.T) {
	c := New("demo", "key", "abcd", "")
	params := map[string]string{"timestamp": "1315060510", "public_id": "sample_image", "api_key": "key", "file": "x"}
	want := fmt.Sprintf("%x", sha1.Sum([]byte("public_id=sample_image&timestamp=1315060510abcd")))
	assert.Equal(t, want, c.sign(params))
}

func newFakeCloudinary(t *testing.T) (*Client, map[string][]byte) {
	t.Helper()
	var mu sync.Mutex
	assets := map[string][]byte{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1_1/demo/raw/upload", func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.NotEmpty(t, r.FormValue("signature"))
		f, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(f)
		id := r.FormValue("folder") + "/" + r.FormValue("public_id")
		mu.Lock()
		assets[id] = data
		mu.Unlock()
		fmt.Fprintf(w, `{"public_id":%q,"secure_url":"https://cdn/%s","bytes":%d}`, id, id, len(data))
	})
	mux.HandleFunc("/v1_1/demo/raw/destroy", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		id := r.FormValue("public_id")
		mu.Lock()
		defer mu.Unlock()
		if _, ok := assets[id]; !ok {
			fmt.Fprint(w, `{"result":"not found"}`)
			return
		}
		delete(assets, id)
		fmt.Fprint(w, `{"result":"ok"}`)
	})
	mux.HandleFunc("/demo/raw/upload/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/demo/raw/upload/"):]
		mu.Lock()
		data, ok := assets[id]
		mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(data)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New("demo", "key", "secret", "/resumes/")
	c.APIBase = srv.URL + "/v1_1"
	c.DeliveryBase = srv.URL
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c, assets
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, assets := newFakeCloudinary(t)

	require.NoError(t, c.Save(ctx, "1-cv.pdf", []byte("pdf-bytes"), "application/pdf"))
	assert.Contains(t, assets, "resumes/1-cv.pdf")

	obj, err := c.Open(ctx, "1-cv.pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(obj.Body)
	obj.Body.Close()
	assert.Equal(t, "pdf-bytes", string(body))

	require.NoError(t, c.Remove(ctx, "1-cv.pdf"))
	assert.ErrorIs(t, c.Remove(ctx, "1-cv.pdf"), storage.ErrNotFound)
	_, err = c.Open(ctx, "1-cv.pdf")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
