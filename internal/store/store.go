package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"phPortfolio/internal/content"
	"phPortfolio/internal/database"
)

var (
	// ErrNotConfigured 表示未提供数据库凭据，所有远程操作均不可用。
	ErrNotConfigured = errors.New("remote content store not configured")
	// ErrNotFound 表示目标行不存在。
	ErrNotFound = errors.New("content row not found")
	// ErrCategoryMismatch 表示传入的内容对象与分类不符。
	ErrCategoryMismatch = errors.New("content category mismatch")
)

// Store 是远程内容库，每个分类一张表，行按 lang 与 display_order 组织。
// db 为 nil 时视为未配置。
type Store struct {
	db *gorm.DB
}

// New 创建 Store；db 可以为 nil。
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Configured reports whether the store has a database behind it.
func (s *Store) Configured() bool {
	return s != nil && s.db != nil
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	return s.db.WithContext(ctx), nil
}

func entryTableFor(c content.Category) (entryTable, error) {
	t, ok := entryTables[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a multi-row category", ErrCategoryMismatch, c)
	}
	return t, nil
}

func singletonTableFor(c content.Category) (singletonTable, error) {
	t, ok := singletonTables[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a singleton category", ErrCategoryMismatch, c)
	}
	return t, nil
}

// ListEntries 返回某分类某语言的全部行，按 display_order 升序。
func (s *Store) ListEntries(ctx context.Context, c content.Category, lang content.Language) ([]content.Entry, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	t, err := entryTableFor(c)
	if err != nil {
		return nil, err
	}
	entries, err := t.list(db, lang)
	if err != nil {
		return nil, fmt.Errorf("list %s/%s: %w", c, lang, err)
	}
	return entries, nil
}

// GetEntry 按 id 读取一行，同时返回该行的语言。
func (s *Store) GetEntry(ctx context.Context, c content.Category, id string) (content.Entry, content.Language, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, "", err
	}
	t, err := entryTableFor(c)
	if err != nil {
		return nil, "", err
	}
	entry, lang, err := t.get(db, id)
	if err != nil {
		return nil, "", fmt.Errorf("get %s %s: %w", c, id, err)
	}
	return entry, lang, nil
}

// FindCounterpart 查找 e 在 lang 语言下的对应行：优先 pair id，
// 找不到时退回到 display_order 相同且尚未配对的第一行。
func (s *Store) FindCounterpart(ctx context.Context, e content.Entry, lang content.Language) (content.Entry, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	t, err := entryTableFor(e.Category())
	if err != nil {
		return nil, err
	}
	base := e.Base()
	if base.PairID != "" {
		found, err := t.byPair(db, base.PairID, lang)
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("find %s counterpart: %w", e.Category(), err)
		}
	}
	found, err := t.byOrder(db, base.DisplayOrder, lang)
	if err != nil {
		return nil, fmt.Errorf("find %s counterpart: %w", e.Category(), err)
	}
	return found, nil
}

// NextDisplayOrder 返回两种语言中尚未使用的下一个 display_order。
func (s *Store) NextDisplayOrder(ctx context.Context, c content.Category) (int, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	t, err := entryTableFor(c)
	if err != nil {
		return 0, err
	}
	highest, err := t.maxOrder(db)
	if err != nil {
		return 0, fmt.Errorf("max display order %s: %w", c, err)
	}
	return highest + 1, nil
}

// CreateEntry 插入一行；未指定 id 时生成新的 UUID 并回写到 e。
func (s *Store) CreateEntry(ctx context.Context, lang content.Language, e content.Entry) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	t, err := entryTableFor(e.Category())
	if err != nil {
		return err
	}
	base := e.Base()
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	if err := t.create(db, lang, e); err != nil {
		return fmt.Errorf("create %s/%s: %w", e.Category(), lang, err)
	}
	return nil
}

// UpdateEntry 按 id 覆盖一行的全部字段（最后写入者生效）。
func (s *Store) UpdateEntry(ctx context.Context, lang content.Language, e content.Entry) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	t, err := entryTableFor(e.Category())
	if err != nil {
		return err
	}
	if e.Base().ID == "" {
		return fmt.Errorf("update %s: %w", e.Category(), ErrNotFound)
	}
	if err := t.update(db, lang, e); err != nil {
		return fmt.Errorf("update %s %s: %w", e.Category(), e.Base().ID, err)
	}
	return nil
}

// DeleteEntry 按 id 删除一行。
func (s *Store) DeleteEntry(ctx context.Context, c content.Category, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	t, err := entryTableFor(c)
	if err != nil {
		return err
	}
	if err := t.remove(db, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", c, id, err)
	}
	return nil
}

// GetSingleton 读取单行分类在 lang 下的值。
func (s *Store) GetSingleton(ctx context.Context, c content.Category, lang content.Language) (content.Singleton, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	t, err := singletonTableFor(c)
	if err != nil {
		return nil, err
	}
	value, err := t.get(db, lang)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", c, lang, err)
	}
	return value, nil
}

// UpsertSingleton 按 lang 插入或覆盖单行分类。
func (s *Store) UpsertSingleton(ctx context.Context, lang content.Language, v content.Singleton) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	t, err := singletonTableFor(v.Category())
	if err != nil {
		return err
	}
	if err := t.upsert(db, lang, v); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", v.Category(), lang, err)
	}
	return nil
}

// Transaction 在同一事务中执行 fn，fn 返回错误时整体回滚。
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// AutoMigrate 创建或更新全部内容表。
func (s *Store) AutoMigrate(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return database.Migrate(db)
}
