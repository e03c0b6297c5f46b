package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"phPortfolio/internal/content"
	"phPortfolio/internal/store"
)

// SingletonPair 是单行分类的中英两份值。
type SingletonPair struct {
	Category content.Category  `json:"category"`
	Chinese  content.Singleton `json:"zh"`
	English  content.Singleton `json:"en"`
}

// LoadSingletons 读取单行分类 c 的两种语言；某一语言尚无数据时返回空值。
func (s *Session) LoadSingletons(ctx context.Context, c content.Category) (SingletonPair, error) {
	pair := SingletonPair{Category: c}
	for _, lang := range content.Languages {
		value, err := s.store.GetSingleton(ctx, c, lang)
		if errors.Is(err, store.ErrNotFound) {
			value, err = content.NewSingleton(c)
		}
		if err != nil {
			return SingletonPair{}, err
		}
		if lang == content.LanguageChinese {
			pair.Chinese = value
		} else {
			pair.English = value
		}
	}
	return pair, nil
}

// SaveSingletons 校验后在同一事务中按语言 upsert 两份值。
func (s *Session) SaveSingletons(ctx context.Context, pair SingletonPair) error {
	values := map[content.Language]content.Singleton{
		content.LanguageChinese: pair.Chinese,
		content.LanguageEnglish: pair.English,
	}
	for lang, v := range values {
		if v == nil || v.Category() != pair.Category {
			return fmt.Errorf("%w: %s value for %s", store.ErrCategoryMismatch, lang, pair.Category)
		}
		if err := v.Validate(); err != nil {
			return err
		}
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		for _, lang := range content.Languages {
			if err := tx.UpsertSingleton(ctx, lang, values[lang]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("save singleton failed",
			slog.String("category", pair.Category.String()),
			slog.Any("error", err),
		)
		return err
	}

	s.logger.Info("singleton saved", slog.String("category", pair.Category.String()))
	s.publish(ctx, pair.Category, "updated")
	return nil
}
