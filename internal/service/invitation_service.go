package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/models"
	"taskboard/internal/repository"
)

// InvitationService owns the share-invitation lifecycle:
// pending -> accepted or pending -> rejected, both terminal.
type InvitationService struct {
	shares   ShareRepository
	users    UserRepository
	resolver *AccessResolver
}

func NewInvitationService(shares ShareRepository, users UserRepository, resolver *AccessResolver) *InvitationService {
	return &InvitationService{shares: shares, users: users, resolver: resolver}
}

// CreateInvitation lets the task owner invite another user, found by
// handle, with the given permission. Duplicate pending invitations for
// the same task and target are allowed to coexist.
func (s *InvitationService) CreateInvitation(ctx context.Context, ownerID, taskID int64, targetHandle string, permission models.Permission) (*models.ShareInvitation, error) {
	if !permission.Valid() {
		return nil, NewValidationError("permission_level", "must be 'view' or 'edit'")
	}

	level, _, err := s.resolver.Resolve(ctx, ownerID, taskID)
	if err != nil {
		return nil, NewConflict("could not resolve access", err)
	}
	if level == models.AccessNone {
		return nil, NewNotFound("task", taskID)
	}
	if level != models.AccessOwner {
		return nil, NewForbidden("only the task owner can share tasks")
	}

	target, err := s.users.GetUserByUsername(ctx, targetHandle)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("user", targetHandle)
		}
		return nil, NewConflict("could not look up user", err)
	}
	if target.ID == ownerID {
		return nil, NewValidationError("share_with", "cannot share a task with yourself")
	}

	inv := &models.ShareInvitation{
		TaskID:     taskID,
		FromUserID: ownerID,
		ToUserID:   target.ID,
		Permission: permission,
	}
	if err := s.shares.CreateInvitation(ctx, inv); err != nil {
		return nil, NewConflict("could not create invitation", err)
	}

	logger.Info("Service: share invitation sent",
		zap.Int64("task_id", taskID),
		zap.Int64("from", ownerID),
		zap.Int64("to", target.ID),
		zap.String("permission", string(permission)))
	return inv, nil
}

// Respond resolves a pending invitation addressed to userID. Accepting
// creates the share grant and flips the status atomically; rejecting
// flips the status only. Responding to an invitation that is missing,
// addressed to someone else or already resolved reads as not found.
func (s *InvitationService) Respond(ctx context.Context, userID, invitationID int64, accept bool) (*models.ShareInvitation, error) {
	inv, err := s.shares.GetPendingInvitation(ctx, invitationID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("invitation", invitationID)
		}
		return nil, NewConflict("could not look up invitation", err)
	}

	if accept {
		err = s.shares.AcceptInvitation(ctx, inv)
	} else {
		err = s.shares.RejectInvitation(ctx, inv)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost a race with another response to the same invitation.
			return nil, NewNotFound("invitation", invitationID)
		}
		return nil, NewConflict("could not update invitation", err)
	}

	logger.Info("Service: invitation resolved",
		zap.Int64("invitation_id", inv.ID),
		zap.String("status", string(inv.Status)))
	return inv, nil
}

func (s *InvitationService) ListPending(ctx context.Context, userID int64) ([]*models.PendingInvitation, error) {
	invitations, err := s.shares.ListPendingInvitations(ctx, userID)
	if err != nil {
		return nil, NewConflict("could not list invitations", err)
	}
	return invitations, nil
}
