package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// EntryBase 是多行分类共有的结构字段。
// PairID 由同一条逻辑内容的中英两行共享，插入时生成，之后不可修改。
type EntryBase struct {
	ID           string `json:"id,omitempty"`
	PairID       string `json:"pairId,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
}

// Base 返回自身，便于通过 Entry 接口读写结构字段。
func (b *EntryBase) Base() *EntryBase { return b }

// Entry 是多行分类中的一条内容（某一种语言）。
//
// TextFields/TextLists 返回可翻译字段的指针，顺序固定，中英两条同类 Entry
// 的返回值按下标一一对应；其余字段（日期、链接、数值、排序）原样复制。
type Entry interface {
	Category() Category
	Base() *EntryBase
	Validate() error
	TextFields() []*string
	TextLists() []*[]string
	Clone() Entry
}

// ValidationError 表示保存前必填字段缺失。
type ValidationError struct {
	Category Category
	Field    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s is required", e.Category, e.Field)
}

func requireFields(c Category, fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			return &ValidationError{Category: c, Field: fields[i]}
		}
	}
	return nil
}

// NewEntry 返回指定多行分类的空 Entry。
func NewEntry(c Category) (Entry, error) {
	switch c {
	case CategorySkill:
		return &Skill{}, nil
	case CategoryExperience:
		return &Experience{}, nil
	case CategoryEducation:
		return &Education{}, nil
	case CategoryProject:
		return &Project{}, nil
	case CategoryThought:
		return &Thought{}, nil
	case CategoryActivity:
		return &Activity{}, nil
	case CategorySocial:
		return &Social{}, nil
	case CategoryRecommendation:
		return &Recommendation{}, nil
	default:
		return nil, fmt.Errorf("%s is not a multi-row category", c)
	}
}

// DecodeEntry 把 JSON 解码为分类 c 对应的 Entry；raw 为空时返回空 Entry。
func DecodeEntry(c Category, raw []byte) (Entry, error) {
	e, err := NewEntry(c)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return e, nil
	}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, fmt.Errorf("decode %s entry: %w", c, err)
	}
	return e, nil
}

// BlankText 清空 e 的全部可翻译字段，保留结构字段与原样字段。
func BlankText(e Entry) {
	for _, f := range e.TextFields() {
		*f = ""
	}
	for _, l := range e.TextLists() {
		*l = []string{}
	}
}

// Skill 是雷达图中的一项技能评分。
type Skill struct {
	EntryBase
	Subject  string `json:"subject"`
	Score    int    `json:"A"`
	FullMark int    `json:"fullMark"`
}

func (s *Skill) Category() Category     { return CategorySkill }
func (s *Skill) TextFields() []*string  { return []*string{&s.Subject} }
func (s *Skill) TextLists() []*[]string { return nil }
func (s *Skill) Clone() Entry           { c := *s; return &c }
func (s *Skill) Validate() error {
	if err := requireFields(CategorySkill, "subject", s.Subject); err != nil {
		return err
	}
	if s.Score < 0 || (s.FullMark > 0 && s.Score > s.FullMark) {
		return &ValidationError{Category: CategorySkill, Field: "A"}
	}
	return nil
}

// Experience 是一段工作经历。
type Experience struct {
	EntryBase
	Role         string   `json:"role"`
	Company      string   `json:"company"`
	Period       string   `json:"period"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

func (e *Experience) Category() Category { return CategoryExperience }
func (e *Experience) TextFields() []*string {
	return []*string{&e.Role, &e.Company, &e.Description}
}
func (e *Experience) TextLists() []*[]string { return []*[]string{&e.Achievements} }
func (e *Experience) Validate() error {
	return requireFields(CategoryExperience, "role", e.Role, "company", e.Company)
}
func (e *Experience) Clone() Entry {
	c := *e
	c.Achievements = slices.Clone(e.Achievements)
	return &c
}

// Education 是一段教育经历。
type Education struct {
	EntryBase
	School      string   `json:"school"`
	Degree      string   `json:"degree"`
	Major       string   `json:"major"`
	Period      string   `json:"period"`
	Description string   `json:"description"`
	Highlights  []string `json:"highlights"`
}

func (e *Education) Category() Category { return CategoryEducation }
func (e *Education) TextFields() []*string {
	return []*string{&e.School, &e.Degree, &e.Major, &e.Description}
}
func (e *Education) TextLists() []*[]string { return []*[]string{&e.Highlights} }
func (e *Education) Validate() error {
	return requireFields(CategoryEducation, "school", e.School, "degree", e.Degree)
}
func (e *Education) Clone() Entry {
	c := *e
	c.Highlights = slices.Clone(e.Highlights)
	return &c
}

// Project 是一个作品项目。TechStack 为技术名词，不参与翻译。
type Project struct {
	EntryBase
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TechStack   []string `json:"techStack"`
	Tags        []string `json:"tags"`
	Link        string   `json:"link"`
	Image       string   `json:"image"`
	Date        string   `json:"date"`
}

func (p *Project) Category() Category     { return CategoryProject }
func (p *Project) TextFields() []*string  { return []*string{&p.Title, &p.Description} }
func (p *Project) TextLists() []*[]string { return []*[]string{&p.Tags} }
func (p *Project) Validate() error {
	return requireFields(CategoryProject, "title", p.Title)
}
func (p *Project) Clone() Entry {
	c := *p
	c.TechStack = slices.Clone(p.TechStack)
	c.Tags = slices.Clone(p.Tags)
	return &c
}

// Thought 是一篇随笔。
type Thought struct {
	EntryBase
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Content string   `json:"content"`
	Date    string   `json:"date"`
	Tags    []string `json:"tags"`
}

func (t *Thought) Category() Category { return CategoryThought }
func (t *Thought) TextFields() []*string {
	return []*string{&t.Title, &t.Excerpt, &t.Content}
}
func (t *Thought) TextLists() []*[]string { return []*[]string{&t.Tags} }
func (t *Thought) Validate() error {
	return requireFields(CategoryThought, "title", t.Title, "content", t.Content)
}
func (t *Thought) Clone() Entry {
	c := *t
	c.Tags = slices.Clone(t.Tags)
	return &c
}

// Activity 是一次活动或演讲。
type Activity struct {
	EntryBase
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
}

func (a *Activity) Category() Category { return CategoryActivity }
func (a *Activity) TextFields() []*string {
	return []*string{&a.Title, &a.Description, &a.Location}
}
func (a *Activity) TextLists() []*[]string { return []*[]string{&a.Tags} }
func (a *Activity) Validate() error {
	return requireFields(CategoryActivity, "title", a.Title)
}
func (a *Activity) Clone() Entry {
	c := *a
	c.Tags = slices.Clone(a.Tags)
	return &c
}

// Social 是一个社交平台链接。
type Social struct {
	EntryBase
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
}

func (s *Social) Category() Category     { return CategorySocial }
func (s *Social) TextFields() []*string  { return []*string{&s.Platform} }
func (s *Social) TextLists() []*[]string { return nil }
func (s *Social) Clone() Entry           { c := *s; return &c }
func (s *Social) Validate() error {
	return requireFields(CategorySocial, "platform", s.Platform, "url", s.URL)
}

// Recommendation 是一条推荐语。
type Recommendation struct {
	EntryBase
	Name    string `json:"name"`
	Role    string `json:"role"`
	Company string `json:"company"`
	Content string `json:"content"`
	Avatar  string `json:"avatar"`
}

func (r *Recommendation) Category() Category { return CategoryRecommendation }
func (r *Recommendation) TextFields() []*string {
	return []*string{&r.Name, &r.Role, &r.Company, &r.Content}
}
func (r *Recommendation) TextLists() []*[]string { return nil }
func (r *Recommendation) Clone() Entry           { c := *r; return &c }
func (r *Recommendation) Validate() error {
	return requireFields(CategoryRecommendation, "name", r.Name, "content", r.Content)
}
