package model

import "gorm.io/gorm"

// RubricVersion 评分表版本 — 对应 rubric_versions
// 同一评分表（RubricName）的每次修订生成新版本，旧版本保持只读
type RubricVersion struct {
	RubricVersionID string `gorm:"type:uuid;primaryKey"                                              json:"rubric_version_id"`
	RubricName      string `gorm:"type:varchar(200);not null;uniqueIndex:uq_rubric_versions_name_version" json:"rubric_name"`
	Version         int    `gorm:"not null;uniqueIndex:uq_rubric_versions_name_version"              json:"version"`
	Description     string `gorm:"type:text"                                                         json:"description,omitempty"`
	BaseModel

	// 关联
	Sections []RubricSection `gorm:"foreignKey:RubricVersionID;references:RubricVersionID" json:"sections,omitempty"`
}

func (RubricVersion) TableName() string { return "rubric_versions" }

func (v *RubricVersion) BeforeCreate(*gorm.DB) error {
	ensureID(&v.RubricVersionID)
	return nil
}

// RubricSection 评分表分节 — 对应 rubric_sections
type RubricSection struct {
	SectionID       string `gorm:"type:uuid;primaryKey"        json:"section_id"`
	RubricVersionID string `gorm:"type:uuid;not null;index"    json:"rubric_version_id"`
	Title           string `gorm:"type:varchar(200);not null"  json:"title"`
	Position        int    `gorm:"not null"                    json:"position"`

	// 关联
	Criteria []Criterion `gorm:"foreignKey:SectionID;references:SectionID" json:"criteria,omitempty"`
}

func (RubricSection) TableName() string { return "rubric_sections" }

func (s *RubricSection) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SectionID)
	return nil
}

// Criterion 评分项 — 对应 criteria
// Weight = 0 的评分项仅用于展示，不参与综合得分
type Criterion struct {
	CriterionID string  `gorm:"type:uuid;primaryKey"       json:"criterion_id"`
	SectionID   string  `gorm:"type:uuid;not null;index"   json:"section_id"`
	Label       string  `gorm:"type:varchar(300);not null" json:"label"`
	Description string  `gorm:"type:text"                  json:"description,omitempty"`
	Weight      float64 `gorm:"not null"                   json:"weight"`
	Position    int     `gorm:"not null"                   json:"position"`
}

func (Criterion) TableName() string { return "criteria" }

func (c *Criterion) BeforeCreate(*gorm.DB) error {
	ensureID(&c.CriterionID)
	return nil
}

// AllCriteria 按分节顺序展开全部评分项
func (v *RubricVersion) AllCriteria() []Criterion {
	var all []Criterion
	for _, s := range v.Sections {
		all = append(all, s.Criteria...)
	}
	return all
}
