package model

type ReportSection struct {
	SectionID    uint64 `gorm:"column:section_id;primaryKey;autoIncrement"`
	VettingID    uint64 `gorm:"column:vetting_id;not null;uniqueIndex:idx_report_sections_vetting_type"`
	SectionType  string `gorm:"column:section_type;type:text;not null;uniqueIndex:idx_report_sections_vetting_type"`
	Status       string `gorm:"column:status;type:text;not null"`
	ReviewedData string `gorm:"column:reviewed_data;type:text;not null;default:''"`
	AIDraftData  string `gorm:"column:ai_draft_data;type:text;not null;default:''"`
	Notes        string `gorm:"column:notes;type:text;not null;default:''"`
	UpdatedAt    string `gorm:"column:updated_at;type:text;not null"`
}

func (ReportSection) TableName() string {
	return "report_sections"
}

type SectionAssignment struct {
	SectionID  uint64 `gorm:"column:section_id;primaryKey;autoIncrement:false"`
	MemberID   uint64 `gorm:"column:member_id;primaryKey;autoIncrement:false;index"`
	AssignedAt string `gorm:"column:assigned_at;type:text;not null"`
}

func (SectionAssignment) TableName() string {
	return "section_assignments"
}
