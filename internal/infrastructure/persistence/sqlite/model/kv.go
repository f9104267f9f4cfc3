package model

type KV struct {
	Key       string  `gorm:"column:key;type:text;primaryKey"`
	Value     string  `gorm:"column:value;type:text;not null"`
	ExpiresAt *string `gorm:"column:expires_at;type:text;index"`
	UpdatedAt string  `gorm:"column:updated_at;type:text;not null"`
}

func (KV) TableName() string {
	return "kv_cache"
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Committee{},
		&CommitteeMember{},
		&Vetting{},
		&ReportSection{},
		&SectionAssignment{},
		&Opponent{},
		&BoardVote{},
		&DigitalAudit{},
		&AuditPlatform{},
		&KV{},
	}
}
