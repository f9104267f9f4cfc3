package vetting

import (
	"fmt"
	"strings"

	"candidatevet/internal/errs"
)

// Capabilities is resolved by the caller; this package only branches on it.
type Capabilities struct {
	IsChair        bool
	IsNational     bool
	IsBoardMember  bool
	IsActiveMember bool
	MemberID       uint64
}

func (c Capabilities) CanManageAssignments() bool {
	return c.IsChair || c.IsNational
}

func (c Capabilities) CanTransitionStage() bool {
	return c.IsChair || c.IsNational
}

func (c Capabilities) CanStartAudit() bool {
	return c.IsChair || c.IsNational
}

func (c Capabilities) CanRecommend() bool {
	return c.IsChair || c.IsNational
}

func (c Capabilities) CanCreateVetting() bool {
	return c.IsNational
}

func (c Capabilities) CanManageOpponents() bool {
	return c.IsChair || c.IsNational
}

func (c Capabilities) CanManageCommittees() bool {
	return c.IsNational
}

func (c Capabilities) CanVote() bool {
	return c.IsBoardMember
}

func (c Capabilities) CanFinalizeEndorsement() bool {
	return c.IsNational
}

// CanEditSection: chair and national edit anything; members only what they are assigned.
func (c Capabilities) CanEditSection(assignedMemberIDs []uint64) bool {
	if c.IsChair || c.IsNational {
		return true
	}
	if !c.IsActiveMember || c.MemberID == 0 {
		return false
	}
	for _, id := range assignedMemberIDs {
		if id == c.MemberID {
			return true
		}
	}
	return false
}

// ParseCapabilities reads a comma separated flag list such as "chair,member".
func ParseCapabilities(raw string, memberID uint64) (Capabilities, error) {
	caps := Capabilities{MemberID: memberID}
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
		case "chair":
			caps.IsChair = true
		case "national":
			caps.IsNational = true
		case "board":
			caps.IsBoardMember = true
		case "member":
			caps.IsActiveMember = true
		default:
			return Capabilities{}, fmt.Errorf("%w: unknown capability %q", errs.ErrValidation, part)
		}
	}
	return caps, nil
}

type CommitteeRole string

const (
	CommitteeRoleChair  CommitteeRole = "chair"
	CommitteeRoleMember CommitteeRole = "member"
)

func ParseCommitteeRole(raw string) (CommitteeRole, error) {
	switch candidate := CommitteeRole(strings.ToLower(strings.TrimSpace(raw))); candidate {
	case CommitteeRoleChair, CommitteeRoleMember:
		return candidate, nil
	case "":
		return CommitteeRoleMember, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCommitteeRole, raw)
	}
}
