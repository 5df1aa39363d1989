package service

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/models"
	"taskboard/internal/repository"
)

// AccessResolver computes the effective permission of a user on a task
// from ownership and accepted shares. It is a pure read and is invoked
// fresh on every request; the share set can change between calls.
type AccessResolver struct {
	tasks  TaskRepository
	shares ShareRepository
}

func NewAccessResolver(tasks TaskRepository, shares ShareRepository) *AccessResolver {
	return &AccessResolver{tasks: tasks, shares: shares}
}

// Resolve returns AccessNone when the task does not exist or the user
// holds no accepted share on it; callers must not distinguish the two.
func (r *AccessResolver) Resolve(ctx context.Context, userID, taskID int64) (models.AccessLevel, *models.Task, error) {
	task, err := r.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.AccessNone, nil, nil
		}
		return models.AccessNone, nil, fmt.Errorf("resolving access: %w", err)
	}

	if task.UserID == userID {
		return models.AccessOwner, task, nil
	}

	share, err := r.shares.GetAcceptedShare(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.AccessNone, nil, nil
		}
		return models.AccessNone, nil, fmt.Errorf("resolving access: %w", err)
	}

	return models.AccessLevel(share.Permission), task, nil
}
