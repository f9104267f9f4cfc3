package model

type Vetting struct {
	VettingID         uint64  `gorm:"column:vetting_id;primaryKey;autoIncrement"`
	CandidateName     string  `gorm:"column:candidate_name;type:text;not null"`
	Office            string  `gorm:"column:office;type:text;not null"`
	District          string  `gorm:"column:district;type:text;not null;default:''"`
	State             string  `gorm:"column:state;type:text;not null;default:''"`
	Party             string  `gorm:"column:party;type:text;not null;default:''"`
	CommitteeID       *uint64 `gorm:"column:committee_id;index"`
	Stage             string  `gorm:"column:stage;type:text;not null;index"`
	KnownURLsJSON     string  `gorm:"column:known_urls_json;type:text;not null;default:'[]'"`
	InterviewDate     *string `gorm:"column:interview_date;type:text"`
	InterviewNotes    string  `gorm:"column:interview_notes;type:text;not null;default:''"`
	Recommendation    *string `gorm:"column:recommendation;type:text"`
	EndorsementResult *string `gorm:"column:endorsement_result;type:text"`
	CreatedAt         string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt         string  `gorm:"column:updated_at;type:text;not null"`
}

func (Vetting) TableName() string {
	return "vettings"
}
