package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/content"
	"phPortfolio/internal/drafts"
	"phPortfolio/internal/resolver"
)

type fakeResolver struct {
	langs []content.Language
}

func (r *fakeResolver) Resolve(_ context.Context, lang content.Language) resolver.Resolution {
	r.langs = append(r.langs, lang)
	return resolver.Resolution{
		View:     &content.View{Language: lang},
		Fallback: []content.Category{content.CategorySkill},
	}
}

type fakeDrafts struct {
	state    drafts.AppState
	writeErr error
	written  map[string]string
	overlaid int
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{written: map[string]string{}}
}

func (f *fakeDrafts) Read(_ context.Context, _ string, c content.Category, lang content.Language) drafts.Draft {
	return drafts.Draft{Category: c, Language: lang, Source: drafts.SourceFallback, Value: json.RawMessage("{}")}
}

func (f *fakeDrafts) Write(_ context.Context, owner string, c content.Category, lang content.Language, value any) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	raw, _ := value.(json.RawMessage)
	f.written[fmt.Sprintf("%s/%s/%s", owner, c, lang)] = string(raw)
	return nil
}

func (f *fakeDrafts) Clear(_ context.Context, owner string, c content.Category, lang content.Language) error {
	delete(f.written, fmt.Sprintf("%s/%s/%s", owner, c, lang))
	return nil
}

func (f *fakeDrafts) Overlay(_ context.Context, _ string, _ *content.View) []content.Category {
	f.overlaid++
	return []content.Category{content.CategoryPersonalInfo}
}

func (f *fakeDrafts) LoadState(_ context.Context, _ string) drafts.AppState { return f.state }

func (f *fakeDrafts) SaveState(_ context.Context, _ string, state drafts.AppState) error {
	f.state = state
	return nil
}

func newContentRouter(h *ContentHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/content", h.GetContent)
	r.PUT("/v1/state", h.PutState)
	r.GET("/v1/drafts/:category", h.GetDraft)
	r.PUT("/v1/drafts/:category", h.PutDraft)
	r.DELETE("/v1/drafts/:category", h.DeleteDraft)
	return r
}

func TestGetContent_UsesSavedLanguage(t *testing.T) {
	res := &fakeResolver{}
	store := newFakeDrafts()
	store.state = drafts.AppState{Language: content.LanguageChinese}
	r := newContentRouter(NewContentHandler(res, store))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/content", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if len(res.langs) != 1 || res.langs[0] != content.LanguageChinese {
		t.Fatalf("expected saved language zh, got %v", res.langs)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/content?lang=en-US", nil))
	if res.langs[1] != content.LanguageEnglish {
		t.Fatalf("query lang should win, got %v", res.langs[1])
	}
}

func TestGetContent_OverlaysDraftsOnlyInAdminMode(t *testing.T) {
	store := newFakeDrafts()
	r := newContentRouter(NewContentHandler(&fakeResolver{}, store))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/content", nil))
	var resp contentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if store.overlaid != 0 || len(resp.Drafts) != 0 {
		t.Fatalf("drafts must not apply outside admin mode")
	}
	if len(resp.Fallback) != 1 || resp.Fallback[0] != content.CategorySkill {
		t.Fatalf("unexpected fallback %v", resp.Fallback)
	}
	if resp.Remote == nil {
		t.Fatalf("remote should encode as empty list")
	}

	store.state.AdminMode = true
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/content", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if store.overlaid != 1 || len(resp.Drafts) != 1 {
		t.Fatalf("expected overlay in admin mode, got %v", resp.Drafts)
	}
}

func TestPutState_Saves(t *testing.T) {
	store := newFakeDrafts()
	r := newContentRouter(NewContentHandler(&fakeResolver{}, store))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/state", strings.NewReader(`{"language":"zh","adminMode":true}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if store.state.Language != content.LanguageChinese || !store.state.AdminMode {
		t.Fatalf("state not saved: %+v", store.state)
	}
}

func TestPutDraft(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		body     string
		writeErr error
		want     int
		code     string
	}{
		{name: "saved", path: "/v1/drafts/personal-info?lang=zh", body: `{"name":"张三"}`, want: http.StatusNoContent},
		{name: "bad category", path: "/v1/drafts/resume?lang=zh", body: `{}`, want: http.StatusBadRequest},
		{name: "bad lang", path: "/v1/drafts/skills?lang=fr", body: `[]`, want: http.StatusBadRequest},
		{name: "invalid json", path: "/v1/drafts/skills?lang=en", body: `{`, want: http.StatusBadRequest},
		{name: "quota", path: "/v1/drafts/skills?lang=en", body: `[]`, writeErr: drafts.ErrQuotaExceeded,
			want: http.StatusRequestEntityTooLarge, code: "4130"},
		{name: "save failed", path: "/v1/drafts/skills?lang=en", body: `[]`,
			writeErr: fmt.Errorf("%w: boom", drafts.ErrSaveFailed), want: http.StatusInternalServerError, code: "5001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeDrafts()
			store.writeErr = tc.writeErr
			r := newContentRouter(NewContentHandler(&fakeResolver{}, store))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, tc.path, strings.NewReader(tc.body))
			req.Header.Set("X-Client-ID", "browser-1")
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("expected %d got %d body=%s", tc.want, w.Code, w.Body.String())
			}
			if tc.code != "" && !strings.Contains(w.Body.String(), tc.code) {
				t.Fatalf("expected code %s, body=%s", tc.code, w.Body.String())
			}
			if tc.want == http.StatusNoContent {
				if got := store.written["browser-1/personalInfo/zh"]; got != tc.body {
					t.Fatalf("unexpected stored draft %q", got)
				}
			}
		})
	}
}

func TestDeleteDraft(t *testing.T) {
	store := newFakeDrafts()
	store.written["browser-1/skills/en"] = "[]"
	r := newContentRouter(NewContentHandler(&fakeResolver{}, store))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/drafts/skills?lang=en", nil)
	req.Header.Set("X-Client-ID", "browser-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
	if len(store.written) != 0 {
		t.Fatalf("draft not cleared: %v", store.written)
	}
}

func TestRespondError_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		want int
	}{
		{err: &content.ValidationError{Category: content.CategorySkill, Field: "subject"}, want: http.StatusUnprocessableEntity},
		{err: drafts.ErrInvalidDraft, want: http.StatusBadRequest},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tc.err)
		if w.Code != tc.want {
			t.Fatalf("%v: expected %d got %d", tc.err, tc.want, w.Code)
		}
	}
}
