package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phPortfolio/internal/content"
	"phPortfolio/internal/store"
)

type fakeSource struct {
	entries    map[content.Category][]content.Entry
	singletons map[content.Category]content.Singleton
	failing    map[content.Category]error
	panicking  map[content.Category]bool
	calls      atomic.Int32
}

func (f *fakeSource) ListEntries(_ context.Context, c content.Category, _ content.Language) ([]content.Entry, error) {
	f.calls.Add(1)
	if f.panicking[c] {
		panic("driver exploded")
	}
	if err := f.failing[c]; err != nil {
		return nil, err
	}
	return f.entries[c], nil
}

func (f *fakeSource) GetSingleton(_ context.Context, c content.Category, _ content.Language) (content.Singleton, error) {
	f.calls.Add(1)
	if f.panicking[c] {
		panic("driver exploded")
	}
	if err := f.failing[c]; err != nil {
		return nil, err
	}
	if v, ok := f.singletons[c]; ok {
		return v, nil
	}
	return nil, store.ErrNotFound
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func allFailing(err error) map[content.Category]error {
	out := make(map[content.Category]error)
	for _, c := range content.AllCategories() {
		out[c] = err
	}
	return out
}

func TestResolve_TotalFailureEqualsBundle(t *testing.T) {
	bundle := content.DefaultBundle()
	for _, lang := range content.Languages {
		src := &fakeSource{failing: allFailing(errors.New("connection refused"))}
		res := New(src, bundle, quietLogger()).Resolve(context.Background(), lang)

		if diff := cmp.Diff(bundle.View(lang), res.View); diff != "" {
			t.Fatalf("%s view mismatch (-want +got):\n%s", lang, diff)
		}
		assert.Empty(t, res.Remote)
		assert.Len(t, res.Fallback, len(content.AllCategories()))
		assert.EqualValues(t, len(content.AllCategories()), src.calls.Load())
	}
}

func TestResolve_NotConfiguredEqualsBundle(t *testing.T) {
	bundle := content.DefaultBundle()
	src := &fakeSource{failing: allFailing(store.ErrNotConfigured)}

	res := New(src, bundle, quietLogger()).Resolve(context.Background(), content.LanguageEnglish)

	require.Len(t, res.View.Experience, 5)
	assert.Equal(t, "Assistant to Chairman", res.View.Experience[0].Role)
}

func TestResolve_NilSourceUsesBundle(t *testing.T) {
	bundle := content.DefaultBundle()
	res := New(nil, bundle, quietLogger()).Resolve(context.Background(), content.LanguageChinese)

	if diff := cmp.Diff(bundle.View(content.LanguageChinese), res.View); diff != "" {
		t.Fatalf("view mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_MergesPerCategory(t *testing.T) {
	bundle := content.DefaultBundle()
	remoteExperience := []content.Entry{
		&content.Experience{EntryBase: content.EntryBase{ID: "e1", DisplayOrder: 0}, Role: "Remote Role", Company: "Remote Co"},
	}
	src := &fakeSource{
		entries: map[content.Category][]content.Entry{
			content.CategoryExperience: remoteExperience,
			content.CategoryProject:    {},
		},
		singletons: map[content.Category]content.Singleton{
			content.CategoryPersonalInfo: &content.PersonalInfo{Name: "Remote Name"},
		},
		failing: map[content.Category]error{
			content.CategorySkill: errors.New("timeout"),
		},
		panicking: map[content.Category]bool{
			content.CategorySocial: true,
		},
	}

	res := New(src, bundle, quietLogger()).Resolve(context.Background(), content.LanguageEnglish)
	want := bundle.View(content.LanguageEnglish)

	require.Len(t, res.View.Experience, 1)
	assert.Equal(t, "Remote Role", res.View.Experience[0].Role)
	assert.Equal(t, "Remote Name", res.View.PersonalInfo.Name)
	assert.Equal(t, want.Skills, res.View.Skills, "failed category falls back")
	assert.Equal(t, want.Projects, res.View.Projects, "empty category falls back")
	assert.Equal(t, want.Socials, res.View.Socials, "panicking category falls back")
	assert.Equal(t, want.Navigation, res.View.Navigation)

	assert.ElementsMatch(t, []content.Category{content.CategoryPersonalInfo, content.CategoryExperience}, res.Remote)
	assert.Contains(t, res.Fallback, content.CategorySkill)
	assert.Contains(t, res.Fallback, content.CategorySocial)
	assert.Len(t, res.Fallback, len(content.AllCategories())-2)
}

func TestResolve_DoesNotMutateBundle(t *testing.T) {
	bundle := content.DefaultBundle()
	src := &fakeSource{failing: allFailing(errors.New("down"))}
	r := New(src, bundle, quietLogger())

	first := r.Resolve(context.Background(), content.LanguageEnglish)
	first.View.Experience[0].Role = "mutated"

	second := r.Resolve(context.Background(), content.LanguageEnglish)
	assert.Equal(t, "Assistant to Chairman", second.View.Experience[0].Role)
}

func TestResolve_UnknownLanguageUsesDefault(t *testing.T) {
	res := New(nil, content.DefaultBundle(), quietLogger()).Resolve(context.Background(), content.Language("fr"))
	assert.Equal(t, content.LanguageEnglish, res.View.Language)
}
