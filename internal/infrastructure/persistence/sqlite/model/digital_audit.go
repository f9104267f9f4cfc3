package model

type DigitalAudit struct {
	AuditID             uint64  `gorm:"column:audit_id;primaryKey;autoIncrement"`
	VettingID           uint64  `gorm:"column:vetting_id;not null;index"`
	RunID               string  `gorm:"column:run_id;type:text;not null;uniqueIndex"`
	Status              string  `gorm:"column:status;type:text;not null;index"`
	Score               *int    `gorm:"column:score"`
	Grade               string  `gorm:"column:grade;type:text;not null;default:''"`
	BreakdownJSON       string  `gorm:"column:breakdown_json;type:text;not null;default:''"`
	RiskJSON            string  `gorm:"column:risk_json;type:text;not null;default:''"`
	OpponentResultsJSON string  `gorm:"column:opponent_results_json;type:text;not null;default:''"`
	DiscoveryLogJSON    string  `gorm:"column:discovery_log_json;type:text;not null;default:''"`
	ErrorMessage        *string `gorm:"column:error_message;type:text"`
	CreatedAt           string  `gorm:"column:created_at;type:text;not null"`
	StartedAt           *string `gorm:"column:started_at;type:text"`
	FinishedAt          *string `gorm:"column:finished_at;type:text"`
}

func (DigitalAudit) TableName() string {
	return "digital_audits"
}

type AuditPlatform struct {
	PlatformID      uint64  `gorm:"column:platform_id;primaryKey;autoIncrement"`
	AuditID         uint64  `gorm:"column:audit_id;not null;index"`
	EntityType      string  `gorm:"column:entity_type;type:text;not null"`
	EntityName      string  `gorm:"column:entity_name;type:text;not null"`
	URL             string  `gorm:"column:url;type:text;not null"`
	PlatformType    string  `gorm:"column:platform_type;type:text;not null"`
	PlatformName    string  `gorm:"column:platform_name;type:text;not null"`
	Category        string  `gorm:"column:category;type:text;not null"`
	Confidence      float64 `gorm:"column:confidence;not null"`
	ConfidenceLevel string  `gorm:"column:confidence_level;type:text;not null"`
	Presence        float64 `gorm:"column:presence;not null"`
	Consistency     float64 `gorm:"column:consistency;not null"`
	Quality         float64 `gorm:"column:quality;not null"`
	Accessibility   float64 `gorm:"column:accessibility;not null"`
	TotalScore      int     `gorm:"column:total_score;not null"`
	Grade           string  `gorm:"column:grade;type:text;not null"`
	HasContactInfo  bool    `gorm:"column:has_contact_info;not null;default:0"`
	HasEmail        bool    `gorm:"column:has_email;not null;default:0"`
	HasPhone        bool    `gorm:"column:has_phone;not null;default:0"`
	HasWebsite      bool    `gorm:"column:has_website;not null;default:0"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
}

func (AuditPlatform) TableName() string {
	return "audit_platforms"
}
