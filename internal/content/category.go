package content

import (
	"fmt"
	"strings"
)

// Category 标识一种内容分类，取值与内容对象中的字段名一致。
type Category string

const (
	CategoryPersonalInfo   Category = "personalInfo"
	CategoryNavigation     Category = "navigation"
	CategoryHeaders        Category = "headers"
	CategoryConsultation   Category = "consultation"
	CategoryPersonalTraits Category = "personalTraits"
	CategorySkill          Category = "skills"
	CategoryExperience     Category = "experience"
	CategoryEducation      Category = "education"
	CategoryProject        Category = "projects"
	CategoryThought        Category = "thoughts"
	CategoryActivity       Category = "activities"
	CategorySocial         Category = "socials"
	CategoryRecommendation Category = "recommendations"
)

// SingletonCategories 每种语言只有一行，按语言 upsert。
var SingletonCategories = []Category{
	CategoryPersonalInfo,
	CategoryNavigation,
	CategoryHeaders,
	CategoryConsultation,
	CategoryPersonalTraits,
}

// EntryCategories 每种语言有多行，按 displayOrder 排序与配对。
var EntryCategories = []Category{
	CategorySkill,
	CategoryExperience,
	CategoryEducation,
	CategoryProject,
	CategoryThought,
	CategoryActivity,
	CategorySocial,
	CategoryRecommendation,
}

// AllCategories 以固定顺序返回全部分类。
func AllCategories() []Category {
	all := make([]Category, 0, len(SingletonCategories)+len(EntryCategories))
	all = append(all, SingletonCategories...)
	all = append(all, EntryCategories...)
	return all
}

// ParseCategory 解析分类名，兼容 kebab/snake 写法（personal-info、personal_info）。
func ParseCategory(raw string) (Category, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(raw)))
	for _, c := range AllCategories() {
		if strings.ToLower(string(c)) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown content category %q", raw)
}

// IsSingleton reports whether c holds exactly one row per language.
func (c Category) IsSingleton() bool {
	for _, s := range SingletonCategories {
		if s == c {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }
