package vetting

import (
	"context"
	"strings"

	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

func (s *Service) CreateCommittee(ctx context.Context, caps domainvetting.Capabilities, name string) (ports.Committee, error) {
	if err := s.check(ctx); err != nil {
		return ports.Committee{}, err
	}
	if !caps.CanManageCommittees() {
		return ports.Committee{}, permissionDenied("manage committees")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ports.Committee{}, errs.Validationf("committee name is required")
	}
	return s.repo.CreateCommittee(ctx, ports.Committee{Name: name, CreatedAt: s.nowString()})
}

func (s *Service) AddCommitteeMember(ctx context.Context, caps domainvetting.Capabilities, input AddCommitteeMemberInput) (ports.CommitteeMember, error) {
	if err := s.check(ctx); err != nil {
		return ports.CommitteeMember{}, err
	}
	if !caps.CanManageCommittees() {
		return ports.CommitteeMember{}, permissionDenied("manage committees")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ports.CommitteeMember{}, errs.Validationf("member name is required")
	}
	role, err := domainvetting.ParseCommitteeRole(input.Role)
	if err != nil {
		return ports.CommitteeMember{}, err
	}

	var created ports.CommitteeMember
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetCommittee(txCtx, input.CommitteeID); err != nil {
			return err
		}
		member, err := s.repo.CreateCommitteeMember(txCtx, ports.CommitteeMember{
			CommitteeID: input.CommitteeID,
			Name:        name,
			Role:        role,
			Active:      input.Active,
			CreatedAt:   s.nowString(),
		})
		if err != nil {
			return err
		}
		created = member
		return nil
	}); err != nil {
		return ports.CommitteeMember{}, err
	}
	return created, nil
}
