package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"phPortfolio/internal/content"
	"phPortfolio/internal/metrics"
	"phPortfolio/internal/store"
)

// Source 是远程内容的只读视图，*store.Store 满足该接口。
type Source interface {
	ListEntries(ctx context.Context, c content.Category, lang content.Language) ([]content.Entry, error)
	GetSingleton(ctx context.Context, c content.Category, lang content.Language) (content.Singleton, error)
}

// Resolution 是一次解析的结果以及每个分类的数据来源。
type Resolution struct {
	View     *content.View
	Remote   []content.Category
	Fallback []content.Category
}

// Resolver 并行读取全部分类，远程不可用的分类逐个退回静态内容。
type Resolver struct {
	source Source
	bundle *content.Bundle
	logger *slog.Logger
}

// New 创建 Resolver；source 为 nil 时始终返回静态内容。
func New(source Source, bundle *content.Bundle, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, bundle: bundle, logger: logger}
}

type fetchResult struct {
	entries   []content.Entry
	singleton content.Singleton
	ok        bool
	err       error
}

// Resolve 返回 lang 下合并后的内容，永不失败：任一分类读取出错、
// 超时或为空时，该分类使用静态内容，其余分类不受影响。
func (r *Resolver) Resolve(ctx context.Context, lang content.Language) Resolution {
	if !lang.Valid() {
		lang = content.DefaultLanguage
	}
	categories := content.AllCategories()
	results := make([]fetchResult, len(categories))

	if r.source != nil {
		g, gctx := errgroup.WithContext(ctx)
		for i, c := range categories {
			g.Go(func() error {
				results[i] = r.fetch(gctx, c, lang)
				return nil
			})
		}
		_ = g.Wait()
	}

	res := Resolution{View: r.bundle.View(lang)}
	for i, c := range categories {
		result := results[i]
		metrics.ObserveResolved(c.String(), result.ok)
		if !result.ok {
			res.Fallback = append(res.Fallback, c)
			if result.err != nil && !quiet(result.err) {
				r.logger.Warn("remote content unavailable, using fallback",
					slog.String("category", c.String()),
					slog.String("lang", lang.String()),
					slog.Any("error", result.err),
				)
			}
			continue
		}
		if c.IsSingleton() {
			res.View.SetSingleton(result.singleton)
		} else {
			res.View.SetEntries(c, result.entries)
		}
		res.Remote = append(res.Remote, c)
	}

	r.logger.Debug("content resolved",
		slog.String("lang", lang.String()),
		slog.Int("remote", len(res.Remote)),
		slog.Int("fallback", len(res.Fallback)),
	)
	return res
}

func (r *Resolver) fetch(ctx context.Context, c content.Category, lang content.Language) (result fetchResult) {
	defer func() {
		if p := recover(); p != nil {
			result = fetchResult{err: fmt.Errorf("fetch %s panicked: %v", c, p)}
		}
	}()

	if c.IsSingleton() {
		value, err := r.source.GetSingleton(ctx, c, lang)
		if err != nil {
			return fetchResult{err: err}
		}
		return fetchResult{singleton: value, ok: value != nil && value.Category() == c}
	}

	entries, err := r.source.ListEntries(ctx, c, lang)
	if err != nil {
		return fetchResult{err: err}
	}
	return fetchResult{entries: entries, ok: len(entries) > 0}
}

// 未配置与无数据是预期状态，不需要告警。
func quiet(err error) bool {
	return errors.Is(err, store.ErrNotConfigured) || errors.Is(err, store.ErrNotFound)
}
