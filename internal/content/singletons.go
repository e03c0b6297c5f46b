package content

import (
	"encoding/json"
	"fmt"
)

// Singleton 是每种语言只有一行的分类内容。
type Singleton interface {
	Category() Category
	Validate() error
}

// NewSingleton 返回指定单行分类的空值。
func NewSingleton(c Category) (Singleton, error) {
	switch c {
	case CategoryPersonalInfo:
		return &PersonalInfo{}, nil
	case CategoryNavigation:
		return &Navigation{}, nil
	case CategoryHeaders:
		return &Headers{}, nil
	case CategoryConsultation:
		return &Consultation{}, nil
	case CategoryPersonalTraits:
		return &PersonalTraits{}, nil
	default:
		return nil, fmt.Errorf("%s is not a singleton category", c)
	}
}

// DecodeSingleton 把 JSON 解码为单行分类 c 对应的值。
func DecodeSingleton(c Category, raw []byte) (Singleton, error) {
	s, err := NewSingleton(c)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c, err)
	}
	return s, nil
}

// PersonalInfo 是站点主人的基本资料。
type PersonalInfo struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Location  string `json:"location"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio"`
	ResumeURL string `json:"resumeUrl"`
}

func (p *PersonalInfo) Category() Category { return CategoryPersonalInfo }
func (p *PersonalInfo) Validate() error {
	return requireFields(CategoryPersonalInfo, "name", p.Name)
}

// NavItem 是导航栏中的一个入口。
type NavItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Navigation 是导航栏文案。
type Navigation struct {
	Items []NavItem `json:"items"`
}

func (n *Navigation) Category() Category { return CategoryNavigation }
func (n *Navigation) Validate() error {
	for i, item := range n.Items {
		if item.Key == "" || item.Label == "" {
			return &ValidationError{Category: CategoryNavigation, Field: fmt.Sprintf("items[%d]", i)}
		}
	}
	return nil
}

// SectionHeader 是页面分区的标题与副标题。
type SectionHeader struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Headers 按分区 key 保存标题。
type Headers map[string]SectionHeader

func (h *Headers) Category() Category { return CategoryHeaders }
func (h *Headers) Validate() error {
	for key, header := range *h {
		if header.Title == "" {
			return &ValidationError{Category: CategoryHeaders, Field: key + ".title"}
		}
	}
	return nil
}

// Consultation 是咨询服务介绍。
type Consultation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Duration    string   `json:"duration"`
	CTALabel    string   `json:"ctaLabel"`
	BookingURL  string   `json:"bookingUrl"`
	Features    []string `json:"features"`
}

func (c *Consultation) Category() Category { return CategoryConsultation }
func (c *Consultation) Validate() error {
	return requireFields(CategoryConsultation, "title", c.Title)
}

// Trait 是一个个人特质标签。
type Trait struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// PersonalTraits 是个人特质列表。
type PersonalTraits struct {
	Traits []Trait `json:"traits"`
}

func (p *PersonalTraits) Category() Category { return CategoryPersonalTraits }
func (p *PersonalTraits) Validate() error {
	for i, t := range p.Traits {
		if t.Label == "" {
			return &ValidationError{Category: CategoryPersonalTraits, Field: fmt.Sprintf("traits[%d].label", i)}
		}
	}
	return nil
}
