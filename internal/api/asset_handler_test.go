package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/storage"
)

type fakeStorage struct {
	uploaded map[string][]byte
	deleted  []string
	objects  []storage.ObjectMeta
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	b, _ := io.ReadAll(reader)
	s.uploaded[objectName] = b
	return nil
}

func (s *fakeStorage) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://example.invalid/" + objectKey, nil
}

func (s *fakeStorage) ListObjects(_ context.Context, prefix string, limit int) ([]storage.ObjectMeta, error) {
	var out []storage.ObjectMeta
	for _, o := range s.objects {
		if strings.HasPrefix(o.Key, prefix) && len(out) < limit {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

func newMultipartUpload(t *testing.T, category, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("category", category); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, h *AssetHandler, category, filename string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := newMultipartUpload(t, category, filename, []byte("\x89PNG\r\n\x1a\n"))
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/assets", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	h.UploadAsset(c)
	return w
}

func TestUploadAsset_StoresUnderCategoryPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := newFakeStorage()
	h := NewAssetHandler(fake, "")

	w := uploadRequest(t, h, "projects", "cover.PNG")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	if len(fake.uploaded) != 1 {
		t.Fatalf("expected one upload, got %d", len(fake.uploaded))
	}
	for key, data := range fake.uploaded {
		if !strings.HasPrefix(key, "portfolio-assets/projects/") || !strings.HasSuffix(key, ".png") {
			t.Fatalf("unexpected object key %q", key)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Fatalf("unexpected stored bytes %q", data)
		}
		if !strings.Contains(w.Body.String(), key) {
			t.Fatalf("response should echo key, body=%s", w.Body.String())
		}
	}
}

func TestUploadAsset_RejectsUnsupportedType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := newFakeStorage()
	h := NewAssetHandler(fake, "")

	w := uploadRequest(t, h, "projects", "payload.svg")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	if len(fake.uploaded) != 0 {
		t.Fatalf("nothing should be uploaded")
	}
}

func TestUploadAsset_RejectsUnknownCategory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAssetHandler(newFakeStorage(), "")

	w := uploadRequest(t, h, "resume", "cover.png")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestAssetHandler_StorageNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAssetHandler(nil, "")

	w := uploadRequest(t, h, "projects", "cover.png")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "5031") {
		t.Fatalf("expected storage error code, body=%s", w.Body.String())
	}
}

func TestListAssets_FiltersByCategory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := newFakeStorage()
	now := time.Now()
	fake.objects = []storage.ObjectMeta{
		{Key: "portfolio-assets/projects/a.png", LastModified: now.Add(-time.Hour)},
		{Key: "portfolio-assets/activities/b.png", LastModified: now},
		{Key: "portfolio-assets/projects/c.png", LastModified: now},
	}
	h := NewAssetHandler(fake, "")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/admin/assets?category=projects", nil)
	h.ListAssets(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if strings.Contains(body, "activities/b.png") {
		t.Fatalf("other category leaked into listing: %s", body)
	}
	if strings.Index(body, "c.png") > strings.Index(body, "a.png") {
		t.Fatalf("expected newest first: %s", body)
	}
}

func TestDeleteAsset_ValidatesKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := newFakeStorage()
	h := NewAssetHandler(fake, "")

	cases := []struct {
		key  string
		want int
	}{
		{key: "portfolio-assets/projects/a.png", want: http.StatusNoContent},
		{key: "portfolio-assets/../secrets.png", want: http.StatusBadRequest},
		{key: "user-assets/1/a.png", want: http.StatusBadRequest},
		{key: "portfolio-assets/projects/a.exe", want: http.StatusBadRequest},
		{key: "", want: http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/v1/admin/assets?key="+tc.key, nil)
		h.DeleteAsset(c)
		if w.Code != tc.want {
			t.Fatalf("key %q: expected %d got %d", tc.key, tc.want, w.Code)
		}
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "portfolio-assets/projects/a.png" {
		t.Fatalf("unexpected deletes: %v", fake.deleted)
	}
}
