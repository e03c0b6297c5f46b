package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"phPortfolio/internal/content"
)

// SeedReport 列出本次写入的分类与语言。
type SeedReport struct {
	Seeded []string `json:"seeded"`
}

// Seed 用静态内容填充仍为空的（分类, 语言）。已有数据不会被覆盖；
// 同一 display_order 的中英两行共享 pair id，若另一语言已有数据则沿用其 pair id。
func (s *Store) Seed(ctx context.Context, b *content.Bundle) (SeedReport, error) {
	var report SeedReport
	views := make(map[content.Language]*content.View, len(content.Languages))
	for _, lang := range content.Languages {
		views[lang] = b.View(lang)
	}

	err := s.Transaction(ctx, func(tx *Store) error {
		report = SeedReport{}
		db, err := tx.conn(ctx)
		if err != nil {
			return err
		}

		for _, c := range content.SingletonCategories {
			t, err := singletonTableFor(c)
			if err != nil {
				return err
			}
			for _, lang := range content.Languages {
				exists, err := t.exists(db, lang)
				if err != nil {
					return fmt.Errorf("check %s/%s: %w", c, lang, err)
				}
				if exists {
					continue
				}
				if err := tx.UpsertSingleton(ctx, lang, views[lang].Singleton(c)); err != nil {
					return err
				}
				report.Seeded = append(report.Seeded, fmt.Sprintf("%s/%s", c, lang))
			}
		}

		for _, c := range content.EntryCategories {
			pairs := make(map[int]string)
			var pending []content.Language
			for _, lang := range content.Languages {
				existing, err := tx.ListEntries(ctx, c, lang)
				if err != nil {
					return err
				}
				if len(existing) == 0 {
					pending = append(pending, lang)
					continue
				}
				for _, e := range existing {
					base := e.Base()
					if base.PairID != "" && pairs[base.DisplayOrder] == "" {
						pairs[base.DisplayOrder] = base.PairID
					}
				}
			}

			for _, lang := range pending {
				for _, e := range views[lang].Entries(c) {
					base := e.Base()
					if pairs[base.DisplayOrder] == "" {
						pairs[base.DisplayOrder] = uuid.NewString()
					}
					base.ID = ""
					base.PairID = pairs[base.DisplayOrder]
					if err := tx.CreateEntry(ctx, lang, e); err != nil {
						return err
					}
				}
				report.Seeded = append(report.Seeded, fmt.Sprintf("%s/%s", c, lang))
			}
		}
		return nil
	})
	if err != nil {
		return SeedReport{}, fmt.Errorf("seed content: %w", err)
	}
	return report, nil
}
