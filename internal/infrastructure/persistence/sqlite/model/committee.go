package model

type Committee struct {
	CommitteeID uint64 `gorm:"column:committee_id;primaryKey;autoIncrement"`
	Name        string `gorm:"column:name;type:text;not null;uniqueIndex"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null"`
}

func (Committee) TableName() string {
	return "committees"
}

type CommitteeMember struct {
	MemberID    uint64 `gorm:"column:member_id;primaryKey;autoIncrement"`
	CommitteeID uint64 `gorm:"column:committee_id;not null;index"`
	Name        string `gorm:"column:name;type:text;not null"`
	Role        string `gorm:"column:role;type:text;not null"`
	Active      bool   `gorm:"column:active;not null"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null"`
}

func (CommitteeMember) TableName() string {
	return "committee_members"
}
