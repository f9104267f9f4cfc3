package model

type Opponent struct {
	OpponentID uint64 `gorm:"column:opponent_id;primaryKey;autoIncrement"`
	VettingID  uint64 `gorm:"column:vetting_id;not null;index"`
	Name       string `gorm:"column:name;type:text;not null"`
	Party      string `gorm:"column:party;type:text;not null;default:''"`
	Incumbent  bool   `gorm:"column:incumbent;not null;default:0"`
	Background string `gorm:"column:background;type:text;not null;default:''"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null"`
}

func (Opponent) TableName() string {
	return "opponents"
}

type BoardVote struct {
	VoteID    uint64 `gorm:"column:vote_id;primaryKey;autoIncrement"`
	VettingID uint64 `gorm:"column:vetting_id;not null;uniqueIndex:idx_board_votes_vetting_voter"`
	VoterID   uint64 `gorm:"column:voter_id;not null;uniqueIndex:idx_board_votes_vetting_voter"`
	Vote      string `gorm:"column:vote;type:text;not null"`
	Comment   string `gorm:"column:comment;type:text;not null;default:''"`
	CreatedAt string `gorm:"column:created_at;type:text;not null"`
}

func (BoardVote) TableName() string {
	return "board_votes"
}
