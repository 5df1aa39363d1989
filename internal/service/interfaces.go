package service

import (
	"context"
	"time"

	"taskboard/internal/models"
)

// TaskRepository is the store surface the task catalog needs. Position
// bookkeeping (append at max+1, shift on move, gap closing on delete)
// lives behind it, always transactional in the postgres implementation.
type TaskRepository interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)
	ListTasksForUser(ctx context.Context, userID int64) ([]*models.TaskView, error)
	UpdateTaskContent(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id int64) error
	TogglePin(ctx context.Context, id int64) (bool, error)
	ToggleComplete(ctx context.Context, id int64) (bool, error)
	MoveTask(ctx context.Context, ownerID, taskID int64, newPosition int) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64) error
	UpdateUser(ctx context.Context, u *models.User) error
}

type ShareRepository interface {
	GetAcceptedShare(ctx context.Context, taskID, userID int64) (*models.TaskShare, error)
	CreateInvitation(ctx context.Context, inv *models.ShareInvitation) error
	GetPendingInvitation(ctx context.Context, id, toUserID int64) (*models.ShareInvitation, error)
	AcceptInvitation(ctx context.Context, inv *models.ShareInvitation) error
	RejectInvitation(ctx context.Context, inv *models.ShareInvitation) error
	ListPendingInvitations(ctx context.Context, userID int64) ([]*models.PendingInvitation, error)
	DeleteResolvedInvitationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
