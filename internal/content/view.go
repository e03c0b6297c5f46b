package content

import (
	"encoding/json"
	"fmt"
)

// View 是某种语言下全部分类聚合后的内容对象，由前端直接消费。
type View struct {
	Language        Language         `json:"language"`
	PersonalInfo    PersonalInfo     `json:"personalInfo"`
	Navigation      Navigation       `json:"navigation"`
	Headers         Headers          `json:"headers"`
	Consultation    Consultation     `json:"consultation"`
	PersonalTraits  PersonalTraits   `json:"personalTraits"`
	Skills          []Skill          `json:"skills"`
	Experience      []Experience     `json:"experience"`
	Education       []Education      `json:"education"`
	Projects        []Project        `json:"projects"`
	Thoughts        []Thought        `json:"thoughts"`
	Activities      []Activity       `json:"activities"`
	Socials         []Social         `json:"socials"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Clone 深拷贝 View。
func (v *View) Clone() *View {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("content: marshal view: %v", err))
	}
	var out View
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("content: unmarshal view: %v", err))
	}
	return &out
}

// Entries 以 Entry 形式返回多行分类的内容（元素为拷贝）。
func (v *View) Entries(c Category) []Entry {
	switch c {
	case CategorySkill:
		return toEntries(v.Skills)
	case CategoryExperience:
		return toEntries(v.Experience)
	case CategoryEducation:
		return toEntries(v.Education)
	case CategoryProject:
		return toEntries(v.Projects)
	case CategoryThought:
		return toEntries(v.Thoughts)
	case CategoryActivity:
		return toEntries(v.Activities)
	case CategorySocial:
		return toEntries(v.Socials)
	case CategoryRecommendation:
		return toEntries(v.Recommendations)
	default:
		return nil
	}
}

// SetEntries 用 entries 覆盖多行分类；类型不符的元素会被跳过。
func (v *View) SetEntries(c Category, entries []Entry) {
	switch c {
	case CategorySkill:
		v.Skills = fromEntries[Skill](entries)
	case CategoryExperience:
		v.Experience = fromEntries[Experience](entries)
	case CategoryEducation:
		v.Education = fromEntries[Education](entries)
	case CategoryProject:
		v.Projects = fromEntries[Project](entries)
	case CategoryThought:
		v.Thoughts = fromEntries[Thought](entries)
	case CategoryActivity:
		v.Activities = fromEntries[Activity](entries)
	case CategorySocial:
		v.Socials = fromEntries[Social](entries)
	case CategoryRecommendation:
		v.Recommendations = fromEntries[Recommendation](entries)
	}
}

// Singleton 返回单行分类的值（指向 View 内部字段）。
func (v *View) Singleton(c Category) Singleton {
	switch c {
	case CategoryPersonalInfo:
		return &v.PersonalInfo
	case CategoryNavigation:
		return &v.Navigation
	case CategoryHeaders:
		return &v.Headers
	case CategoryConsultation:
		return &v.Consultation
	case CategoryPersonalTraits:
		return &v.PersonalTraits
	default:
		return nil
	}
}

// SetSingleton 覆盖 s 所属的单行分类。
func (v *View) SetSingleton(s Singleton) {
	switch val := s.(type) {
	case *PersonalInfo:
		v.PersonalInfo = *val
	case *Navigation:
		v.Navigation = *val
	case *Headers:
		v.Headers = *val
	case *Consultation:
		v.Consultation = *val
	case *PersonalTraits:
		v.PersonalTraits = *val
	}
}

// Value 返回分类对应字段的值，用于序列化。
func (v *View) Value(c Category) any {
	if c.IsSingleton() {
		return v.Singleton(c)
	}
	switch c {
	case CategorySkill:
		return v.Skills
	case CategoryExperience:
		return v.Experience
	case CategoryEducation:
		return v.Education
	case CategoryProject:
		return v.Projects
	case CategoryThought:
		return v.Thoughts
	case CategoryActivity:
		return v.Activities
	case CategorySocial:
		return v.Socials
	case CategoryRecommendation:
		return v.Recommendations
	default:
		return nil
	}
}

// SetRaw 将 JSON 解码到分类对应字段；解码失败时 View 保持不变。
func (v *View) SetRaw(c Category, raw json.RawMessage) error {
	var target any
	switch c {
	case CategorySkill:
		target = &[]Skill{}
	case CategoryExperience:
		target = &[]Experience{}
	case CategoryEducation:
		target = &[]Education{}
	case CategoryProject:
		target = &[]Project{}
	case CategoryThought:
		target = &[]Thought{}
	case CategoryActivity:
		target = &[]Activity{}
	case CategorySocial:
		target = &[]Social{}
	case CategoryRecommendation:
		target = &[]Recommendation{}
	default:
		s, err := NewSingleton(c)
		if err != nil {
			return err
		}
		target = s
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s: %w", c, err)
	}

	switch t := target.(type) {
	case *[]Skill:
		v.Skills = *t
	case *[]Experience:
		v.Experience = *t
	case *[]Education:
		v.Education = *t
	case *[]Project:
		v.Projects = *t
	case *[]Thought:
		v.Thoughts = *t
	case *[]Activity:
		v.Activities = *t
	case *[]Social:
		v.Socials = *t
	case *[]Recommendation:
		v.Recommendations = *t
	case Singleton:
		v.SetSingleton(t)
	}
	return nil
}

func toEntries[T any, PT interface {
	*T
	Entry
}](items []T) []Entry {
	out := make([]Entry, 0, len(items))
	for i := range items {
		out = append(out, PT(&items[i]).Clone())
	}
	return out
}

func fromEntries[T any, PT interface {
	*T
	Entry
}](entries []Entry) []T {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if typed, ok := e.(PT); ok {
			out = append(out, *typed)
		}
	}
	return out
}
