package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"phPortfolio/internal/content"
	"phPortfolio/internal/notify"
	"phPortfolio/internal/store"
	"phPortfolio/internal/translate"
)

var (
	// ErrConfirmationRequired 表示删除操作尚未得到确认。
	ErrConfirmationRequired = errors.New("delete requires confirmation")
	// ErrNotChinese 表示传入的 id 不是中文行；编辑总是以中文行为主。
	ErrNotChinese = errors.New("entry is not a chinese row")
)

// Translator 是编辑会话依赖的翻译接口，*translate.Helper 满足该接口。
type Translator interface {
	TranslateAll(ctx context.Context, texts []string) []translate.Result
}

// Notifier 在内容变更后广播事件。
type Notifier interface {
	Publish(ctx context.Context, event notify.Event) error
}

// Pair 是同一条逻辑内容的中英两行。Matched 为 false 表示英文行尚未入库。
type Pair struct {
	Category content.Category `json:"category"`
	Chinese  content.Entry    `json:"zh"`
	English  content.Entry    `json:"en"`
	Matched  bool             `json:"matched"`
}

// Listing 是某分类两种语言的全部行。
type Listing struct {
	Chinese []content.Entry `json:"zh"`
	English []content.Entry `json:"en"`
}

// SaveResult 是保存后的配对以及刷新后的列表。
type SaveResult struct {
	Pair    Pair     `json:"pair"`
	Listing *Listing `json:"listing,omitempty"`
}

// TranslateReport 描述一次翻译动作的结果，失败不影响手动编辑。
type TranslateReport struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Failed  int    `json:"failed"`
}

// Session 驱动以中文为主、英文为辅的多行分类编辑流程。
type Session struct {
	store      *store.Store
	translator Translator
	notifier   Notifier
	logger     *slog.Logger
}

// NewSession 创建编辑会话；notifier 可以为 nil。
func NewSession(st *store.Store, translator Translator, notifier Notifier, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{store: st, translator: translator, notifier: notifier, logger: logger}
}

// Load 并行读取分类 c 的中英两组行。
func (s *Session) Load(ctx context.Context, c content.Category) (Listing, error) {
	var listing Listing
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.store.ListEntries(gctx, c, content.LanguageChinese)
		listing.Chinese = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.store.ListEntries(gctx, c, content.LanguageEnglish)
		listing.English = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return Listing{}, err
	}
	return listing, nil
}

// Open 读取中文行 zhID 及其英文对应行。找不到英文行时，返回一个
// 只保留中文行结构字段与原样字段、文本字段为空的英文表单。
func (s *Session) Open(ctx context.Context, c content.Category, zhID string) (Pair, error) {
	zh, lang, err := s.store.GetEntry(ctx, c, zhID)
	if err != nil {
		return Pair{}, err
	}
	if lang != content.LanguageChinese {
		return Pair{}, fmt.Errorf("%w: %s is %s", ErrNotChinese, zhID, lang)
	}

	en, err := s.store.FindCounterpart(ctx, zh, content.LanguageEnglish)
	switch {
	case err == nil:
		return Pair{Category: c, Chinese: zh, English: en, Matched: true}, nil
	case errors.Is(err, store.ErrNotFound):
		return Pair{Category: c, Chinese: zh, English: blankCounterpart(zh), Matched: false}, nil
	default:
		return Pair{}, err
	}
}

// NewPair 返回一组空表单，display order 取两种语言中下一个未使用的值。
func (s *Session) NewPair(ctx context.Context, c content.Category) (Pair, error) {
	order, err := s.store.NextDisplayOrder(ctx, c)
	if err != nil {
		return Pair{}, err
	}
	zh, err := content.NewEntry(c)
	if err != nil {
		return Pair{}, err
	}
	zh.Base().DisplayOrder = order
	return Pair{Category: c, Chinese: zh, English: blankCounterpart(zh)}, nil
}

func blankCounterpart(zh content.Entry) content.Entry {
	en := zh.Clone()
	content.BlankText(en)
	en.Base().ID = ""
	return en
}

// Translate 把中文行的可翻译字段逐一翻译到英文行，原样字段直接复制，英文行 id 保留。
// 单个字段翻译失败时该字段保留中文原文，报告中给出失败原因。
func (s *Session) Translate(ctx context.Context, pair Pair) (Pair, TranslateReport) {
	if pair.Chinese == nil {
		return pair, TranslateReport{Message: "nothing to translate"}
	}

	en := pair.Chinese.Clone()
	if pair.English != nil {
		base := en.Base()
		base.ID = pair.English.Base().ID
		if base.PairID == "" {
			base.PairID = pair.English.Base().PairID
		}
	}

	var texts []string
	for _, f := range pair.Chinese.TextFields() {
		texts = append(texts, *f)
	}
	for _, l := range pair.Chinese.TextLists() {
		texts = append(texts, *l...)
	}

	results := s.translator.TranslateAll(ctx, texts)
	if len(results) != len(texts) {
		return pair, TranslateReport{Message: fmt.Sprintf("translation failed: expected %d results, got %d", len(texts), len(results))}
	}

	i := 0
	for _, f := range en.TextFields() {
		*f = results[i].Text
		i++
	}
	for _, l := range en.TextLists() {
		translated := make([]string, len(*l))
		for j := range translated {
			translated[j] = results[i].Text
			i++
		}
		*l = translated
	}

	report := TranslateReport{Success: true, Message: fmt.Sprintf("translated %d fields", len(texts))}
	var firstErr string
	for _, r := range results {
		if !r.Success {
			report.Failed++
			if firstErr == "" {
				firstErr = r.Error
			}
		}
	}
	if report.Failed > 0 {
		report.Success = false
		report.Message = fmt.Sprintf("translation failed for %d of %d fields: %s", report.Failed, len(texts), firstErr)
	}

	pair.English = en
	return pair, report
}

// Save 校验中文必填字段后在同一事务中写入中英两行。
// 新建时两行共享新生成的 pair id；编辑时按 id 更新中文行，英文行由服务端
// 按 pair id（再按 display order）查找：找到则更新，找不到才插入。
// 请求中的英文 id 与之不符时返回 ErrCategoryMismatch。旧数据缺少 pair id 时在此补上。
func (s *Session) Save(ctx context.Context, pair Pair) (SaveResult, error) {
	if err := validatePair(pair); err != nil {
		return SaveResult{}, err
	}
	zh, en := pair.Chinese.Clone(), pair.English.Clone()
	creating := zh.Base().ID == ""

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if creating {
			pairID := uuid.NewString()
			zh.Base().PairID = pairID
			alignCounterpart(zh, en)
			en.Base().ID = ""
			if err := tx.CreateEntry(ctx, content.LanguageChinese, zh); err != nil {
				return err
			}
			return tx.CreateEntry(ctx, content.LanguageEnglish, en)
		}

		existing, lang, err := tx.GetEntry(ctx, pair.Category, zh.Base().ID)
		if err != nil {
			return err
		}
		if lang != content.LanguageChinese {
			return fmt.Errorf("%w: %s is %s", ErrNotChinese, zh.Base().ID, lang)
		}
		counterpart, err := tx.FindCounterpart(ctx, existing, content.LanguageEnglish)
		switch {
		case err == nil:
			if id := en.Base().ID; id != "" && id != counterpart.Base().ID {
				return fmt.Errorf("%w: %s is not the english row of %s", store.ErrCategoryMismatch, id, zh.Base().ID)
			}
			en.Base().ID = counterpart.Base().ID
		case errors.Is(err, store.ErrNotFound):
			if id := en.Base().ID; id != "" {
				return fmt.Errorf("%w: %s is not the english row of %s", store.ErrCategoryMismatch, id, zh.Base().ID)
			}
			counterpart = nil
		default:
			return err
		}

		zh.Base().PairID = existing.Base().PairID
		if zh.Base().PairID == "" {
			zh.Base().PairID = pairIDFor(counterpart)
		}
		alignCounterpart(zh, en)

		if err := tx.UpdateEntry(ctx, content.LanguageChinese, zh); err != nil {
			return err
		}
		if counterpart != nil {
			return tx.UpdateEntry(ctx, content.LanguageEnglish, en)
		}
		return tx.CreateEntry(ctx, content.LanguageEnglish, en)
	})
	if err != nil {
		s.logger.Error("save pair failed",
			slog.String("category", pair.Category.String()),
			slog.Any("error", err),
		)
		return SaveResult{}, err
	}

	action := "updated"
	if creating {
		action = "created"
	}
	s.logger.Info("pair saved",
		slog.String("category", pair.Category.String()),
		slog.String("pair_id", zh.Base().PairID),
		slog.String("action", action),
	)

	result := SaveResult{Pair: Pair{Category: pair.Category, Chinese: zh, English: en, Matched: true}}
	result.Listing = s.afterMutation(ctx, pair.Category, action)
	return result, nil
}

// 服务端找到的英文行已有 pair id 时沿用，否则生成新的。
func pairIDFor(counterpart content.Entry) string {
	if counterpart != nil && counterpart.Base().PairID != "" {
		return counterpart.Base().PairID
	}
	return uuid.NewString()
}

func alignCounterpart(zh, en content.Entry) {
	en.Base().PairID = zh.Base().PairID
	en.Base().DisplayOrder = zh.Base().DisplayOrder
}

func validatePair(pair Pair) error {
	if pair.Chinese == nil || pair.English == nil {
		return fmt.Errorf("%w: both rows are required", store.ErrCategoryMismatch)
	}
	if pair.Chinese.Category() != pair.Category || pair.English.Category() != pair.Category {
		return fmt.Errorf("%w: expected %s", store.ErrCategoryMismatch, pair.Category)
	}
	if pair.Chinese.Base().DisplayOrder < 0 {
		return &content.ValidationError{Category: pair.Category, Field: "displayOrder"}
	}
	return pair.Chinese.Validate()
}

// Delete 删除中文行及其英文对应行（先按 pair id，再按 display order），
// 其他英文行不受影响。confirmed 为 false 时不做任何操作。
func (s *Session) Delete(ctx context.Context, c content.Category, zhID string, confirmed bool) (*Listing, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	var counterpartID string
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		zh, lang, err := tx.GetEntry(ctx, c, zhID)
		if err != nil {
			return err
		}
		if lang != content.LanguageChinese {
			return fmt.Errorf("%w: %s is %s", ErrNotChinese, zhID, lang)
		}

		en, err := tx.FindCounterpart(ctx, zh, content.LanguageEnglish)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.DeleteEntry(ctx, c, zhID); err != nil {
			return err
		}
		if en == nil {
			return nil
		}
		counterpartID = en.Base().ID
		return tx.DeleteEntry(ctx, c, counterpartID)
	})
	if err != nil {
		s.logger.Error("delete pair failed",
			slog.String("category", c.String()),
			slog.String("id", zhID),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.Info("pair deleted",
		slog.String("category", c.String()),
		slog.String("id", zhID),
		slog.String("counterpart_id", counterpartID),
	)
	return s.afterMutation(ctx, c, "deleted"), nil
}

// afterMutation 刷新两种语言的列表并广播变更；两者失败都只记录日志。
func (s *Session) afterMutation(ctx context.Context, c content.Category, action string) *Listing {
	s.publish(ctx, c, action)

	listing, err := s.Load(ctx, c)
	if err != nil {
		s.logger.Warn("reload after mutation failed",
			slog.String("category", c.String()),
			slog.Any("error", err),
		)
		return nil
	}
	return &listing
}

func (s *Session) publish(ctx context.Context, c content.Category, action string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, notify.ContentUpdated(c, action)); err != nil {
		s.logger.Warn("publish content update failed",
			slog.String("category", c.String()),
			slog.Any("error", err),
		)
	}
}
