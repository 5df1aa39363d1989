package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/models"
	"taskboard/internal/repository"
)

// TaskService is the aggregate over tasks: every mutation authorizes
// through the access resolver before touching the store.
type TaskService struct {
	tasks    TaskRepository
	resolver *AccessResolver
}

func NewTaskService(tasks TaskRepository, resolver *AccessResolver) *TaskService {
	return &TaskService{tasks: tasks, resolver: resolver}
}

func (s *TaskService) CreateTask(ctx context.Context, userID int64, title, description, color, date, tm string) (*models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, NewValidationError("title", "must not be empty")
	}

	task := &models.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Color:       color,
		Date:        date,
		Time:        tm,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, NewConflict("could not create task", err)
	}

	logger.Info("Service: task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("user_id", userID),
		zap.Int("position", task.Position))
	return task, nil
}

// ListTasks returns the tasks the user owns plus those shared with them
// through accepted shares, pinned first then by position.
func (s *TaskService) ListTasks(ctx context.Context, userID int64) ([]*models.TaskView, error) {
	views, err := s.tasks.ListTasksForUser(ctx, userID)
	if err != nil {
		return nil, NewConflict("could not list tasks", err)
	}
	return views, nil
}

// UpdateTask applies content options to the task. Requires owner or
// edit access; pin, completion and position are not reachable from here.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID int64, options ...models.TaskOption) (*models.Task, error) {
	level, task, err := s.resolver.Resolve(ctx, userID, taskID)
	if err != nil {
		return nil, NewConflict("could not resolve access", err)
	}
	if level == models.AccessNone {
		return nil, NewNotFound("task", taskID)
	}
	if !level.CanEdit() {
		return nil, NewForbidden("no permission to edit this task")
	}

	for _, opt := range options {
		opt(task)
	}
	if strings.TrimSpace(task.Title) == "" {
		return nil, NewValidationError("title", "must not be empty")
	}

	if err := s.tasks.UpdateTaskContent(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound("task", taskID)
		}
		return nil, NewConflict("could not update task", err)
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID int64) error {
	if err := s.requireOwner(ctx, userID, taskID, "only the task owner can delete tasks"); err != nil {
		return err
	}

	if err := s.tasks.DeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("task", taskID)
		}
		return NewConflict("could not delete task", err)
	}

	logger.Info("Service: task deleted", zap.Int64("task_id", taskID), zap.Int64("user_id", userID))
	return nil
}

func (s *TaskService) TogglePin(ctx context.Context, userID, taskID int64) (bool, error) {
	if err := s.requireOwner(ctx, userID, taskID, "only the task owner can pin tasks"); err != nil {
		return false, err
	}

	pinned, err := s.tasks.TogglePin(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, NewNotFound("task", taskID)
		}
		return false, NewConflict("could not toggle pin", err)
	}
	return pinned, nil
}

func (s *TaskService) ToggleComplete(ctx context.Context, userID, taskID int64) (bool, error) {
	level, _, err := s.resolver.Resolve(ctx, userID, taskID)
	if err != nil {
		return false, NewConflict("could not resolve access", err)
	}
	if level == models.AccessNone {
		return false, NewNotFound("task", taskID)
	}
	if !level.CanEdit() {
		return false, NewForbidden("no permission to complete this task")
	}

	completed, err := s.tasks.ToggleComplete(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, NewNotFound("task", taskID)
		}
		return false, NewConflict("could not toggle completion", err)
	}
	return completed, nil
}

// MoveTask repositions a task within the caller's own list. Shared
// tasks cannot be repositioned by their viewers.
func (s *TaskService) MoveTask(ctx context.Context, userID, taskID int64, newPosition int) error {
	if err := s.requireOwner(ctx, userID, taskID, "only the task owner can reorder tasks"); err != nil {
		return err
	}

	if err := s.tasks.MoveTask(ctx, userID, taskID, newPosition); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound("task", taskID)
		}
		return NewConflict("could not move task", err)
	}
	return nil
}

func (s *TaskService) requireOwner(ctx context.Context, userID, taskID int64, denied string) error {
	level, _, err := s.resolver.Resolve(ctx, userID, taskID)
	if err != nil {
		return NewConflict("could not resolve access", err)
	}
	if level == models.AccessNone {
		return NewNotFound("task", taskID)
	}
	if level != models.AccessOwner {
		return NewForbidden(denied)
	}
	return nil
}
