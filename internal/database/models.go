package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示后台管理员账号。
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:64"`
	PasswordHash string `gorm:"size:255"`
}

// EntryColumns 是多行分类表共有的列。
// 同一条逻辑内容的中英两行共享 PairID。
type EntryColumns struct {
	ID           string `gorm:"primaryKey;size:36"`
	PairID       string `gorm:"index;size:36"`
	Lang         string `gorm:"index;size:2;not null"`
	DisplayOrder int    `gorm:"index;not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Columns 返回公共列，供按分类泛化的读写逻辑使用。
func (c *EntryColumns) Columns() *EntryColumns { return c }

// SingletonColumns 是单行分类表共有的列，每种语言至多一行。
type SingletonColumns struct {
	ID        uint   `gorm:"primaryKey"`
	Lang      string `gorm:"uniqueIndex;size:2;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *SingletonColumns) Columns() *SingletonColumns { return c }

type PersonalInfo struct {
	SingletonColumns `gorm:"embedded"`
	Name             string `gorm:"size:128"`
	Title            string `gorm:"size:255"`
	Location         string `gorm:"size:255"`
	Email            string `gorm:"size:255"`
	Phone            string `gorm:"size:64"`
	Avatar           string `gorm:"size:512"`
	Bio              string `gorm:"type:text"`
	ResumeURL        string `gorm:"size:512"`
}

func (PersonalInfo) TableName() string { return "personal_info" }

type Navigation struct {
	SingletonColumns `gorm:"embedded"`
	Items            datatypes.JSON
}

func (Navigation) TableName() string { return "navigation" }

// Headers 以 JSON 保存 section key 到标题的映射。
type Headers struct {
	SingletonColumns `gorm:"embedded"`
	Sections         datatypes.JSON
}

func (Headers) TableName() string { return "headers" }

type Consultation struct {
	SingletonColumns `gorm:"embedded"`
	Title            string `gorm:"size:255"`
	Description      string `gorm:"type:text"`
	Price            string `gorm:"size:64"`
	Duration         string `gorm:"size:64"`
	CTALabel         string `gorm:"column:cta_label;size:128"`
	BookingURL       string `gorm:"column:booking_url;size:512"`
	Features         datatypes.JSONSlice[string]
}

func (Consultation) TableName() string { return "consultation" }

type PersonalTraits struct {
	SingletonColumns `gorm:"embedded"`
	Traits           datatypes.JSON
}

func (PersonalTraits) TableName() string { return "personal_traits" }

// Skill 对应雷达图中的一项评分，score/full_mark 在内容对象中为 A/fullMark。
type Skill struct {
	EntryColumns `gorm:"embedded"`
	Subject      string `gorm:"size:128"`
	Score        int
	FullMark     int
}

func (Skill) TableName() string { return "skills" }

type Experience struct {
	EntryColumns `gorm:"embedded"`
	Role         string `gorm:"size:255"`
	Company      string `gorm:"size:255"`
	Period       string `gorm:"size:64"`
	Description  string `gorm:"type:text"`
	Achievements datatypes.JSONSlice[string]
}

func (Experience) TableName() string { return "experience" }

type Education struct {
	EntryColumns `gorm:"embedded"`
	School       string `gorm:"size:255"`
	Degree       string `gorm:"size:255"`
	Major        string `gorm:"size:255"`
	Period       string `gorm:"size:64"`
	Description  string `gorm:"type:text"`
	Highlights   datatypes.JSONSlice[string]
}

func (Education) TableName() string { return "education" }

type Project struct {
	EntryColumns `gorm:"embedded"`
	Title        string `gorm:"size:255"`
	Description  string `gorm:"type:text"`
	TechStack    datatypes.JSONSlice[string]
	Tags         datatypes.JSONSlice[string]
	Link         string `gorm:"size:512"`
	Image        string `gorm:"size:512"`
	Date         string `gorm:"size:32"`
}

func (Project) TableName() string { return "projects" }

type Thought struct {
	EntryColumns `gorm:"embedded"`
	Title        string `gorm:"size:255"`
	Excerpt      string `gorm:"type:text"`
	Content      string `gorm:"type:text"`
	Date         string `gorm:"size:32"`
	Tags         datatypes.JSONSlice[string]
}

func (Thought) TableName() string { return "thoughts" }

type Activity struct {
	EntryColumns `gorm:"embedded"`
	Title        string `gorm:"size:255"`
	Description  string `gorm:"type:text"`
	Date         string `gorm:"size:32"`
	Location     string `gorm:"size:255"`
	Tags         datatypes.JSONSlice[string]
	Image        string `gorm:"size:512"`
}

func (Activity) TableName() string { return "activities" }

type Social struct {
	EntryColumns `gorm:"embedded"`
	Platform     string `gorm:"size:64"`
	URL          string `gorm:"column:url;size:512"`
	Icon         string `gorm:"size:64"`
}

func (Social) TableName() string { return "socials" }

type Recommendation struct {
	EntryColumns `gorm:"embedded"`
	Name         string `gorm:"size:128"`
	Role         string `gorm:"size:255"`
	Company      string `gorm:"size:255"`
	Content      string `gorm:"type:text"`
	Avatar       string `gorm:"size:512"`
}

func (Recommendation) TableName() string { return "recommendations" }

// Models 列出需要迁移的全部表。
func Models() []any {
	return []any{
		&User{},
		&PersonalInfo{},
		&Navigation{},
		&Headers{},
		&Consultation{},
		&PersonalTraits{},
		&Skill{},
		&Experience{},
		&Education{},
		&Project{},
		&Thought{},
		&Activity{},
		&Social{},
		&Recommendation{},
	}
}
