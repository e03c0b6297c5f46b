package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"phPortfolio/internal/content"
	"phPortfolio/internal/database"
)

type entryTable interface {
	list(db *gorm.DB, lang content.Language) ([]content.Entry, error)
	get(db *gorm.DB, id string) (content.Entry, content.Language, error)
	byPair(db *gorm.DB, pairID string, lang content.Language) (content.Entry, error)
	byOrder(db *gorm.DB, order int, lang content.Language) (content.Entry, error)
	maxOrder(db *gorm.DB) (int, error)
	create(db *gorm.DB, lang content.Language, e content.Entry) error
	update(db *gorm.DB, lang content.Language, e content.Entry) error
	remove(db *gorm.DB, id string) error
}

type singletonTable interface {
	get(db *gorm.DB, lang content.Language) (content.Singleton, error)
	upsert(db *gorm.DB, lang content.Language, v content.Singleton) error
	exists(db *gorm.DB, lang content.Language) (bool, error)
}

var entryTables = map[content.Category]entryTable{
	content.CategorySkill:          newEntryTable(skillFromRow, skillToRow),
	content.CategoryExperience:     newEntryTable(experienceFromRow, experienceToRow),
	content.CategoryEducation:      newEntryTable(educationFromRow, educationToRow),
	content.CategoryProject:        newEntryTable(projectFromRow, projectToRow),
	content.CategoryThought:        newEntryTable(thoughtFromRow, thoughtToRow),
	content.CategoryActivity:       newEntryTable(activityFromRow, activityToRow),
	content.CategorySocial:         newEntryTable(socialFromRow, socialToRow),
	content.CategoryRecommendation: newEntryTable(recommendationFromRow, recommendationToRow),
}

var singletonTables = map[content.Category]singletonTable{
	content.CategoryPersonalInfo:   newSingletonTable(personalInfoFromRow, personalInfoToRow),
	content.CategoryNavigation:     newSingletonTable(navigationFromRow, navigationToRow),
	content.CategoryHeaders:        newSingletonTable(headersFromRow, headersToRow),
	content.CategoryConsultation:   newSingletonTable(consultationFromRow, consultationToRow),
	content.CategoryPersonalTraits: newSingletonTable(personalTraitsFromRow, personalTraitsToRow),
}

type entryRow[R any] interface {
	*R
	Columns() *database.EntryColumns
}

type entryValue[E any] interface {
	*E
	content.Entry
}

// gormEntryTable 负责一张多行分类表的读写，R 为行模型，E 为内容对象。
type gormEntryTable[R, E any, PR entryRow[R], PE entryValue[E]] struct {
	fromRow func(*R) E
	toRow   func(*E, *R)
}

func newEntryTable[R, E any, PR entryRow[R], PE entryValue[E]](fromRow func(*R) E, toRow func(*E, *R)) *gormEntryTable[R, E, PR, PE] {
	return &gormEntryTable[R, E, PR, PE]{fromRow: fromRow, toRow: toRow}
}

func (t *gormEntryTable[R, E, PR, PE]) decode(row *R) content.Entry {
	entry := t.fromRow(row)
	cols := PR(row).Columns()
	*PE(&entry).Base() = content.EntryBase{
		ID:           cols.ID,
		PairID:       cols.PairID,
		DisplayOrder: cols.DisplayOrder,
	}
	return PE(&entry)
}

func (t *gormEntryTable[R, E, PR, PE]) encode(lang content.Language, e content.Entry) (*R, error) {
	typed, ok := e.(PE)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrCategoryMismatch, e)
	}
	var row R
	t.toRow((*E)(typed), &row)
	base := e.Base()
	*PR(&row).Columns() = database.EntryColumns{
		ID:           base.ID,
		PairID:       base.PairID,
		Lang:         lang.String(),
		DisplayOrder: base.DisplayOrder,
	}
	return &row, nil
}

func (t *gormEntryTable[R, E, PR, PE]) list(db *gorm.DB, lang content.Language) ([]content.Entry, error) {
	var rows []R
	if err := db.Where("lang = ?", lang.String()).Order("display_order ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]content.Entry, 0, len(rows))
	for i := range rows {
		out = append(out, t.decode(&rows[i]))
	}
	return out, nil
}

func (t *gormEntryTable[R, E, PR, PE]) get(db *gorm.DB, id string) (content.Entry, content.Language, error) {
	var row R
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, "", notFound(err)
	}
	return t.decode(&row), content.Language(PR(&row).Columns().Lang), nil
}

func (t *gormEntryTable[R, E, PR, PE]) byPair(db *gorm.DB, pairID string, lang content.Language) (content.Entry, error) {
	var row R
	err := db.Where("pair_id = ? AND lang = ?", pairID, lang.String()).
		Order("display_order ASC").
		Take(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return t.decode(&row), nil
}

// byOrder 只匹配尚未配对的旧数据行。
func (t *gormEntryTable[R, E, PR, PE]) byOrder(db *gorm.DB, order int, lang content.Language) (content.Entry, error) {
	var row R
	err := db.Where("display_order = ? AND lang = ? AND (pair_id = '' OR pair_id IS NULL)", order, lang.String()).
		Order("created_at ASC").
		Take(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return t.decode(&row), nil
}

func (t *gormEntryTable[R, E, PR, PE]) maxOrder(db *gorm.DB) (int, error) {
	var highest int
	row := db.Model(new(R)).Select("COALESCE(MAX(display_order), -1)").Row()
	if err := row.Scan(&highest); err != nil {
		return 0, err
	}
	return highest, nil
}

func (t *gormEntryTable[R, E, PR, PE]) create(db *gorm.DB, lang content.Language, e content.Entry) error {
	row, err := t.encode(lang, e)
	if err != nil {
		return err
	}
	return db.Create(row).Error
}

func (t *gormEntryTable[R, E, PR, PE]) update(db *gorm.DB, lang content.Language, e content.Entry) error {
	row, err := t.encode(lang, e)
	if err != nil {
		return err
	}
	PR(row).Columns().UpdatedAt = time.Now()
	res := db.Model(row).Select("*").Omit("id", "created_at").Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormEntryTable[R, E, PR, PE]) remove(db *gorm.DB, id string) error {
	res := db.Where("id = ?", id).Delete(new(R))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type singletonRow[R any] interface {
	*R
	Columns() *database.SingletonColumns
}

type singletonValue[S any] interface {
	*S
	content.Singleton
}

// gormSingletonTable 负责一张单行分类表，按 lang 唯一。
type gormSingletonTable[R, S any, PR singletonRow[R], PS singletonValue[S]] struct {
	fromRow func(*R) (S, error)
	toRow   func(*S, *R) error
}

func newSingletonTable[R, S any, PR singletonRow[R], PS singletonValue[S]](fromRow func(*R) (S, error), toRow func(*S, *R) error) *gormSingletonTable[R, S, PR, PS] {
	return &gormSingletonTable[R, S, PR, PS]{fromRow: fromRow, toRow: toRow}
}

func (t *gormSingletonTable[R, S, PR, PS]) get(db *gorm.DB, lang content.Language) (content.Singleton, error) {
	var row R
	if err := db.Where("lang = ?", lang.String()).Take(&row).Error; err != nil {
		return nil, notFound(err)
	}
	value, err := t.fromRow(&row)
	if err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return PS(&value), nil
}

func (t *gormSingletonTable[R, S, PR, PS]) upsert(db *gorm.DB, lang content.Language, v content.Singleton) error {
	typed, ok := v.(PS)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrCategoryMismatch, v)
	}
	var row R
	if err := t.toRow((*S)(typed), &row); err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	PR(&row).Columns().Lang = lang.String()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lang"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (t *gormSingletonTable[R, S, PR, PS]) exists(db *gorm.DB, lang content.Language) (bool, error) {
	var count int64
	if err := db.Model(new(R)).Where("lang = ?", lang.String()).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
