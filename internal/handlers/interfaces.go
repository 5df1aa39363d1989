package handlers

import (
	"context"

	"taskboard/internal/models"
	"taskboard/internal/service"
)

type TaskService interface {
	CreateTask(ctx context.Context, userID int64, title, description, color, date, tm string) (*models.Task, error)
	ListTasks(ctx context.Context, userID int64) ([]*models.TaskView, error)
	UpdateTask(ctx context.Context, userID, taskID int64, options ...models.TaskOption) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID int64) error
	TogglePin(ctx context.Context, userID, taskID int64) (bool, error)
	ToggleComplete(ctx context.Context, userID, taskID int64) (bool, error)
	MoveTask(ctx context.Context, userID, taskID int64, newPosition int) error
}

type InvitationService interface {
	CreateInvitation(ctx context.Context, ownerID, taskID int64, targetHandle string, permission models.Permission) (*models.ShareInvitation, error)
	Respond(ctx context.Context, userID, invitationID int64, accept bool) (*models.ShareInvitation, error)
	ListPending(ctx context.Context, userID int64) ([]*models.PendingInvitation, error)
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string, rememberMe bool) (*service.LoginResult, error)
	UpdateProfile(ctx context.Context, userID int64, currentPassword, newPassword, newUsername string) error
}
