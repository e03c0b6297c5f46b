package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBundle_EnglishExperience(t *testing.T) {
	view := DefaultBundle().View(LanguageEnglish)

	require.Len(t, view.Experience, 5)
	assert.Equal(t, "Assistant to Chairman", view.Experience[0].Role)
	assert.Equal(t, LanguageEnglish, view.Language)
	for i, e := range view.Experience {
		assert.Equal(t, i, e.DisplayOrder)
	}
}

func TestDefaultBundle_LanguagesShareDisplayOrders(t *testing.T) {
	b := DefaultBundle()
	en := b.View(LanguageEnglish)
	zh := b.View(LanguageChinese)

	for _, c := range EntryCategories {
		enEntries := en.Entries(c)
		zhEntries := zh.Entries(c)
		require.Lenf(t, zhEntries, len(enEntries), "category %s", c)
		require.NotEmptyf(t, enEntries, "category %s", c)
		for i := range enEntries {
			assert.Equal(t, enEntries[i].Base().DisplayOrder, zhEntries[i].Base().DisplayOrder)
		}
	}
	for _, c := range SingletonCategories {
		require.NoErrorf(t, en.Singleton(c).Validate(), "en %s", c)
		require.NoErrorf(t, zh.Singleton(c).Validate(), "zh %s", c)
	}
}

func TestBundle_ViewReturnsCopy(t *testing.T) {
	b := DefaultBundle()
	first := b.View(LanguageChinese)
	first.Experience[0].Role = "changed"
	first.Experience[0].Achievements[0] = "changed"
	first.Headers["about"] = SectionHeader{Title: "changed"}

	second := b.View(LanguageChinese)
	assert.Equal(t, "董事长助理", second.Experience[0].Role)
	assert.NotEqual(t, "changed", second.Experience[0].Achievements[0])
	assert.Equal(t, "关于我", second.Headers["about"].Title)
}

func TestBundle_UnknownLanguageFallsBackToDefault(t *testing.T) {
	view := DefaultBundle().View(Language("fr"))
	assert.Equal(t, LanguageEnglish, view.Language)
}

func TestParseLanguage(t *testing.T) {
	cases := map[string]Language{
		"en":    LanguageEnglish,
		"EN":    LanguageEnglish,
		"en-US": LanguageEnglish,
		"zh":    LanguageChinese,
		"zh_CN": LanguageChinese,
		" zh ":  LanguageChinese,
	}
	for raw, want := range cases {
		got, err := ParseLanguage(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseLanguage("fr")
	assert.Error(t, err)
	assert.Equal(t, DefaultLanguage, NormalizeLanguage(""))
}

func TestParseCategory(t *testing.T) {
	for _, raw := range []string{"personalInfo", "personal-info", "personal_info", "PERSONALINFO"} {
		c, err := ParseCategory(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, CategoryPersonalInfo, c)
	}
	c, err := ParseCategory("experience")
	require.NoError(t, err)
	assert.False(t, c.IsSingleton())

	_, err = ParseCategory("unknown")
	assert.Error(t, err)
	assert.Len(t, AllCategories(), 13)
}

func TestView_SetRaw(t *testing.T) {
	view := DefaultBundle().View(LanguageEnglish)

	raw, err := json.Marshal([]Skill{{Subject: "Go", Score: 80, FullMark: 100}})
	require.NoError(t, err)
	require.NoError(t, view.SetRaw(CategorySkill, raw))
	require.Len(t, view.Skills, 1)
	assert.Equal(t, "Go", view.Skills[0].Subject)

	err = view.SetRaw(CategoryExperience, json.RawMessage(`{not json`))
	require.Error(t, err)
	assert.Len(t, view.Experience, 5)

	require.NoError(t, view.SetRaw(CategoryPersonalInfo, json.RawMessage(`{"name":"Draft"}`)))
	assert.Equal(t, "Draft", view.PersonalInfo.Name)
}

func TestBlankText_KeepsVerbatimFields(t *testing.T) {
	p := &Project{
		EntryBase: EntryBase{ID: "p1", PairID: "pair", DisplayOrder: 3},
		Title:     "标题",
		TechStack: []string{"Go"},
		Tags:      []string{"标签"},
		Link:      "https://example.com",
		Date:      "2024-01",
	}
	blank := p.Clone()
	BlankText(blank)

	got := blank.(*Project)
	assert.Empty(t, got.Title)
	assert.Empty(t, got.Tags)
	assert.Equal(t, []string{"Go"}, got.TechStack)
	assert.Equal(t, "https://example.com", got.Link)
	assert.Equal(t, 3, got.DisplayOrder)
	assert.Equal(t, "标题", p.Title, "clone must not alias the source")
}

func TestEntryValidate(t *testing.T) {
	err := (&Experience{Role: "产品经理"}).Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "company", verr.Field)

	assert.NoError(t, (&Experience{Role: "产品经理", Company: "测试公司"}).Validate())
}
