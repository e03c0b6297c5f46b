package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"phPortfolio/internal/content"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := New(db)
	require.NoError(t, s.AutoMigrate(context.Background()))
	return s
}

func TestStore_NotConfigured(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	assert.False(t, s.Configured())

	_, err := s.ListEntries(ctx, content.CategoryExperience, content.LanguageEnglish)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, _, err = s.GetEntry(ctx, content.CategoryExperience, "id")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = s.GetSingleton(ctx, content.CategoryPersonalInfo, content.LanguageChinese)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, s.CreateEntry(ctx, content.LanguageChinese, &content.Skill{Subject: "Go"}), ErrNotConfigured)
	assert.ErrorIs(t, s.UpdateEntry(ctx, content.LanguageChinese, &content.Skill{}), ErrNotConfigured)
	assert.ErrorIs(t, s.DeleteEntry(ctx, content.CategorySkill, "id"), ErrNotConfigured)
	assert.ErrorIs(t, s.UpsertSingleton(ctx, content.LanguageChinese, &content.PersonalInfo{}), ErrNotConfigured)
	assert.ErrorIs(t, s.Transaction(ctx, func(*Store) error { return nil }), ErrNotConfigured)
	_, err = s.Seed(ctx, content.DefaultBundle())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStore_EntryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	exp := &content.Experience{
		EntryBase:    content.EntryBase{PairID: "pair-1", DisplayOrder: 2},
		Role:         "产品经理",
		Company:      "测试公司",
		Period:       "2020 - 2022",
		Achievements: []string{"上线新产品"},
	}
	require.NoError(t, s.CreateEntry(ctx, content.LanguageChinese, exp))
	require.NotEmpty(t, exp.ID, "create assigns an id")

	got, lang, err := s.GetEntry(ctx, content.CategoryExperience, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, content.LanguageChinese, lang)
	assert.Equal(t, exp, got)

	exp.Company = "新公司"
	exp.Achievements = nil
	require.NoError(t, s.UpdateEntry(ctx, content.LanguageChinese, exp))

	list, err := s.ListEntries(ctx, content.CategoryExperience, content.LanguageChinese)
	require.NoError(t, err)
	require.Len(t, list, 1)
	updated := list[0].(*content.Experience)
	assert.Equal(t, "新公司", updated.Company)
	assert.Equal(t, []string{}, updated.Achievements)

	english, err := s.ListEntries(ctx, content.CategoryExperience, content.LanguageEnglish)
	require.NoError(t, err)
	assert.Empty(t, english)

	require.NoError(t, s.DeleteEntry(ctx, content.CategoryExperience, exp.ID))
	_, _, err = s.GetEntry(ctx, content.CategoryExperience, exp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteEntry(ctx, content.CategoryExperience, exp.ID), ErrNotFound)
}

func TestStore_UpdateMissingRow(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateEntry(context.Background(), content.LanguageEnglish, &content.Social{
		EntryBase: content.EntryBase{ID: uuid.NewString()},
		Platform:  "GitHub",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SkillColumnMapping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateEntry(ctx, content.LanguageEnglish, &content.Skill{Subject: "Go", Score: 85, FullMark: 100}))

	var row struct {
		Score    int
		FullMark int
	}
	require.NoError(t, s.db.Table("skills").Select("score, full_mark").Take(&row).Error)
	assert.Equal(t, 85, row.Score)
	assert.Equal(t, 100, row.FullMark)

	list, err := s.ListEntries(ctx, content.CategorySkill, content.LanguageEnglish)
	require.NoError(t, err)
	require.Len(t, list, 1)
	skill := list[0].(*content.Skill)
	assert.Equal(t, 85, skill.Score)
	assert.Equal(t, 100, skill.FullMark)
}

func TestStore_ListOrdersByDisplayOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, order := range []int{2, 0, 1} {
		require.NoError(t, s.CreateEntry(ctx, content.LanguageEnglish, &content.Project{
			EntryBase: content.EntryBase{DisplayOrder: order},
			Title:     fmt.Sprintf("project %d", order),
		}))
	}

	list, err := s.ListEntries(ctx, content.CategoryProject, content.LanguageEnglish)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, e := range list {
		assert.Equal(t, i, e.Base().DisplayOrder)
	}

	next, err := s.NextDisplayOrder(ctx, content.CategoryProject)
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	empty, err := s.NextDisplayOrder(ctx, content.CategoryThought)
	require.NoError(t, err)
	assert.Equal(t, 0, empty)
}

func TestStore_FindCounterpart(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	zh := &content.Education{EntryBase: content.EntryBase{PairID: "p1", DisplayOrder: 0}, School: "清华大学", Degree: "学士"}
	en := &content.Education{EntryBase: content.EntryBase{PairID: "p1", DisplayOrder: 5}, School: "Tsinghua", Degree: "BSc"}
	other := &content.Education{EntryBase: content.EntryBase{PairID: "p2", DisplayOrder: 0}, School: "Other", Degree: "MSc"}
	for _, e := range []struct {
		lang  content.Language
		entry content.Entry
	}{{content.LanguageChinese, zh}, {content.LanguageEnglish, en}, {content.LanguageEnglish, other}} {
		require.NoError(t, s.CreateEntry(ctx, e.lang, e.entry))
	}

	found, err := s.FindCounterpart(ctx, zh, content.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, en.ID, found.Base().ID, "pair id wins over display order")

	legacyZh := &content.Education{EntryBase: content.EntryBase{DisplayOrder: 7}, School: "北京大学", Degree: "硕士"}
	legacyEn := &content.Education{EntryBase: content.EntryBase{DisplayOrder: 7}, School: "Peking University", Degree: "MA"}
	require.NoError(t, s.CreateEntry(ctx, content.LanguageChinese, legacyZh))
	require.NoError(t, s.CreateEntry(ctx, content.LanguageEnglish, legacyEn))

	found, err = s.FindCounterpart(ctx, legacyZh, content.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, legacyEn.ID, found.Base().ID)

	lonely := &content.Education{EntryBase: content.EntryBase{PairID: "p9", DisplayOrder: 0}, School: "独立", Degree: "学士"}
	_, err = s.FindCounterpart(ctx, lonely, content.LanguageEnglish)
	assert.ErrorIs(t, err, ErrNotFound, "paired rows are never matched by display order")
}

func TestStore_UpsertSingleton(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetSingleton(ctx, content.CategoryHeaders, content.LanguageChinese)
	assert.ErrorIs(t, err, ErrNotFound)

	headers := content.Headers{"about": {Title: "关于我", Subtitle: "简介"}}
	require.NoError(t, s.UpsertSingleton(ctx, content.LanguageChinese, &headers))
	headers["about"] = content.SectionHeader{Title: "关于"}
	require.NoError(t, s.UpsertSingleton(ctx, content.LanguageChinese, &headers))

	var count int64
	require.NoError(t, s.db.Table("headers").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := s.GetSingleton(ctx, content.CategoryHeaders, content.LanguageChinese)
	require.NoError(t, err)
	assert.Equal(t, "关于", (*got.(*content.Headers))["about"].Title)

	info := &content.PersonalInfo{Name: "Qingyu Lin", ResumeURL: "https://example.com/cv.pdf"}
	require.NoError(t, s.UpsertSingleton(ctx, content.LanguageEnglish, info))
	gotInfo, err := s.GetSingleton(ctx, content.CategoryPersonalInfo, content.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, info, gotInfo)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.CreateEntry(ctx, content.LanguageChinese, &content.Social{Platform: "微信", URL: "weixin://x"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := s.ListEntries(ctx, content.CategorySocial, content.LanguageChinese)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_SeedFillsEmptyCategoriesOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	bundle := content.DefaultBundle()

	report, err := s.Seed(ctx, bundle)
	require.NoError(t, err)
	assert.Len(t, report.Seeded, len(content.AllCategories())*len(content.Languages))

	en, err := s.ListEntries(ctx, content.CategoryExperience, content.LanguageEnglish)
	require.NoError(t, err)
	zh, err := s.ListEntries(ctx, content.CategoryExperience, content.LanguageChinese)
	require.NoError(t, err)
	require.Len(t, en, 5)
	require.Len(t, zh, 5)
	assert.Equal(t, "Assistant to Chairman", en[0].(*content.Experience).Role)
	for i := range en {
		assert.NotEmpty(t, en[i].Base().PairID)
		assert.Equal(t, en[i].Base().PairID, zh[i].Base().PairID)
	}

	again, err := s.Seed(ctx, bundle)
	require.NoError(t, err)
	assert.Empty(t, again.Seeded)
}

func TestStore_SeedReusesExistingPairIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	existing := &content.Social{EntryBase: content.EntryBase{PairID: "keep-me", DisplayOrder: 0}, Platform: "GitHub", URL: "https://github.com"}
	require.NoError(t, s.CreateEntry(ctx, content.LanguageEnglish, existing))

	report, err := s.Seed(ctx, content.DefaultBundle())
	require.NoError(t, err)
	assert.Contains(t, report.Seeded, "socials/zh")
	assert.NotContains(t, report.Seeded, "socials/en")

	en, err := s.ListEntries(ctx, content.CategorySocial, content.LanguageEnglish)
	require.NoError(t, err)
	assert.Len(t, en, 1)

	zh, err := s.ListEntries(ctx, content.CategorySocial, content.LanguageChinese)
	require.NoError(t, err)
	require.NotEmpty(t, zh)
	assert.Equal(t, "keep-me", zh[0].Base().PairID)
}
