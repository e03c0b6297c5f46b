package store

import (
	"encoding/json"
	"slices"

	"gorm.io/datatypes"

	"phPortfolio/internal/content"
	"phPortfolio/internal/database"
)

// 行与内容对象之间的显式映射，每个分类一对函数。
// 结构列（id、pair_id、lang、display_order）由表层统一处理。

func skillFromRow(r *database.Skill) content.Skill {
	return content.Skill{Subject: r.Subject, Score: r.Score, FullMark: r.FullMark}
}

func skillToRow(e *content.Skill, r *database.Skill) {
	r.Subject = e.Subject
	r.Score = e.Score
	r.FullMark = e.FullMark
}

func experienceFromRow(r *database.Experience) content.Experience {
	return content.Experience{
		Role:         r.Role,
		Company:      r.Company,
		Period:       r.Period,
		Description:  r.Description,
		Achievements: listFromColumn(r.Achievements),
	}
}

func experienceToRow(e *content.Experience, r *database.Experience) {
	r.Role = e.Role
	r.Company = e.Company
	r.Period = e.Period
	r.Description = e.Description
	r.Achievements = listToColumn(e.Achievements)
}

func educationFromRow(r *database.Education) content.Education {
	return content.Education{
		School:      r.School,
		Degree:      r.Degree,
		Major:       r.Major,
		Period:      r.Period,
		Description: r.Description,
		Highlights:  listFromColumn(r.Highlights),
	}
}

func educationToRow(e *content.Education, r *database.Education) {
	r.School = e.School
	r.Degree = e.Degree
	r.Major = e.Major
	r.Period = e.Period
	r.Description = e.Description
	r.Highlights = listToColumn(e.Highlights)
}

func projectFromRow(r *database.Project) content.Project {
	return content.Project{
		Title:       r.Title,
		Description: r.Description,
		TechStack:   listFromColumn(r.TechStack),
		Tags:        listFromColumn(r.Tags),
		Link:        r.Link,
		Image:       r.Image,
		Date:        r.Date,
	}
}

func projectToRow(e *content.Project, r *database.Project) {
	r.Title = e.Title
	r.Description = e.Description
	r.TechStack = listToColumn(e.TechStack)
	r.Tags = listToColumn(e.Tags)
	r.Link = e.Link
	r.Image = e.Image
	r.Date = e.Date
}

func thoughtFromRow(r *database.Thought) content.Thought {
	return content.Thought{
		Title:   r.Title,
		Excerpt: r.Excerpt,
		Content: r.Content,
		Date:    r.Date,
		Tags:    listFromColumn(r.Tags),
	}
}

func thoughtToRow(e *content.Thought, r *database.Thought) {
	r.Title = e.Title
	r.Excerpt = e.Excerpt
	r.Content = e.Content
	r.Date = e.Date
	r.Tags = listToColumn(e.Tags)
}

func activityFromRow(r *database.Activity) content.Activity {
	return content.Activity{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Location:    r.Location,
		Tags:        listFromColumn(r.Tags),
		Image:       r.Image,
	}
}

func activityToRow(e *content.Activity, r *database.Activity) {
	r.Title = e.Title
	r.Description = e.Description
	r.Date = e.Date
	r.Location = e.Location
	r.Tags = listToColumn(e.Tags)
	r.Image = e.Image
}

func socialFromRow(r *database.Social) content.Social {
	return content.Social{Platform: r.Platform, URL: r.URL, Icon: r.Icon}
}

func socialToRow(e *content.Social, r *database.Social) {
	r.Platform = e.Platform
	r.URL = e.URL
	r.Icon = e.Icon
}

func recommendationFromRow(r *database.Recommendation) content.Recommendation {
	return content.Recommendation{
		Name:    r.Name,
		Role:    r.Role,
		Company: r.Company,
		Content: r.Content,
		Avatar:  r.Avatar,
	}
}

func recommendationToRow(e *content.Recommendation, r *database.Recommendation) {
	r.Name = e.Name
	r.Role = e.Role
	r.Company = e.Company
	r.Content = e.Content
	r.Avatar = e.Avatar
}

func personalInfoFromRow(r *database.PersonalInfo) (content.PersonalInfo, error) {
	return content.PersonalInfo{
		Name:      r.Name,
		Title:     r.Title,
		Location:  r.Location,
		Email:     r.Email,
		Phone:     r.Phone,
		Avatar:    r.Avatar,
		Bio:       r.Bio,
		ResumeURL: r.ResumeURL,
	}, nil
}

func personalInfoToRow(v *content.PersonalInfo, r *database.PersonalInfo) error {
	r.Name = v.Name
	r.Title = v.Title
	r.Location = v.Location
	r.Email = v.Email
	r.Phone = v.Phone
	r.Avatar = v.Avatar
	r.Bio = v.Bio
	r.ResumeURL = v.ResumeURL
	return nil
}

func navigationFromRow(r *database.Navigation) (content.Navigation, error) {
	var items []content.NavItem
	if err := decodeColumn(r.Items, &items); err != nil {
		return content.Navigation{}, err
	}
	return content.Navigation{Items: items}, nil
}

func navigationToRow(v *content.Navigation, r *database.Navigation) (err error) {
	r.Items, err = encodeColumn(v.Items)
	return err
}

func headersFromRow(r *database.Headers) (content.Headers, error) {
	headers := content.Headers{}
	if err := decodeColumn(r.Sections, &headers); err != nil {
		return nil, err
	}
	return headers, nil
}

func headersToRow(v *content.Headers, r *database.Headers) (err error) {
	r.Sections, err = encodeColumn(*v)
	return err
}

func consultationFromRow(r *database.Consultation) (content.Consultation, error) {
	return content.Consultation{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Duration:    r.Duration,
		CTALabel:    r.CTALabel,
		BookingURL:  r.BookingURL,
		Features:    listFromColumn(r.Features),
	}, nil
}

func consultationToRow(v *content.Consultation, r *database.Consultation) error {
	r.Title = v.Title
	r.Description = v.Description
	r.Price = v.Price
	r.Duration = v.Duration
	r.CTALabel = v.CTALabel
	r.BookingURL = v.BookingURL
	r.Features = listToColumn(v.Features)
	return nil
}

func personalTraitsFromRow(r *database.PersonalTraits) (content.PersonalTraits, error) {
	var traits []content.Trait
	if err := decodeColumn(r.Traits, &traits); err != nil {
		return content.PersonalTraits{}, err
	}
	return content.PersonalTraits{Traits: traits}, nil
}

func personalTraitsToRow(v *content.PersonalTraits, r *database.PersonalTraits) (err error) {
	r.Traits, err = encodeColumn(v.Traits)
	return err
}

// 列表列为空时写入 []，避免数据库中出现 null。
func listToColumn(values []string) datatypes.JSONSlice[string] {
	if values == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](slices.Clone(values))
}

func listFromColumn(values datatypes.JSONSlice[string]) []string {
	if values == nil {
		return []string{}
	}
	return slices.Clone([]string(values))
}

func encodeColumn(v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func decodeColumn(column datatypes.JSON, target any) error {
	if len(column) == 0 {
		return nil
	}
	return json.Unmarshal(column, target)
}
