package dto

import (
	"time"

	"taskboard/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type UpdateProfileRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword,omitempty"`
	NewUsername     string `json:"newUsername,omitempty"`
}

type LoginResponse struct {
	UserID    int64  `json:"userId"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Date        *string `json:"date,omitempty"`
	Time        *string `json:"time,omitempty"`
}

// Options converts the set fields into task content options.
func (r *UpdateTaskRequest) Options() []models.TaskOption {
	options := []models.TaskOption{}
	if r.Title != nil {
		options = append(options, models.WithTitle(*r.Title))
	}
	if r.Description != nil {
		options = append(options, models.WithDescription(*r.Description))
	}
	if r.Color != nil {
		options = append(options, models.WithColor(*r.Color))
	}
	if r.Date != nil {
		options = append(options, models.WithDate(*r.Date))
	}
	if r.Time != nil {
		options = append(options, models.WithTime(*r.Time))
	}
	return options
}

type MoveTaskRequest struct {
	NewPosition int `json:"newPosition"`
}

type ShareTaskRequest struct {
	ShareWithUsername string `json:"shareWithUsername"`
	PermissionLevel   string `json:"permissionLevel"`
}

type RespondInvitationRequest struct {
	Accept bool `json:"accept"`
}

type TaskResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Position    int       `json:"position"`
	IsPinned    bool      `json:"is_pinned"`
	IsCompleted bool      `json:"is_completed"`
}

type TaskViewResponse struct {
	TaskResponse
	OwnerName   string `json:"owner_name"`
	AccessLevel string `json:"access_level"`
}

func FromTask(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Color:       t.Color,
		Date:        t.Date,
		Time:        t.Time,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Position:    t.Position,
		IsPinned:    t.IsPinned,
		IsCompleted: t.IsCompleted,
	}
}

func FromTaskViews(views []*models.TaskView) []TaskViewResponse {
	result := make([]TaskViewResponse, len(views))
	for i, v := range views {
		result[i] = TaskViewResponse{
			TaskResponse: FromTask(&v.Task),
			OwnerName:    v.OwnerName,
			AccessLevel:  string(v.AccessLevel),
		}
	}
	return result
}

type InvitationResponse struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"task_id"`
	FromUserID   int64     `json:"from_user_id"`
	ToUserID     int64     `json:"to_user_id"`
	Permission   string    `json:"permission_level"`
	CreatedAt    time.Time `json:"created_at"`
	Status       string    `json:"status"`
	TaskTitle    string    `json:"task_title,omitempty"`
	FromUsername string    `json:"from_username,omitempty"`
}

func FromInvitation(inv *models.ShareInvitation) InvitationResponse {
	return InvitationResponse{
		ID:         inv.ID,
		TaskID:     inv.TaskID,
		FromUserID: inv.FromUserID,
		ToUserID:   inv.ToUserID,
		Permission: string(inv.Permission),
		CreatedAt:  inv.CreatedAt,
		Status:     string(inv.Status),
	}
}

func FromPendingInvitations(invitations []*models.PendingInvitation) []InvitationResponse {
	result := make([]InvitationResponse, len(invitations))
	for i, inv := range invitations {
		r := FromInvitation(&inv.ShareInvitation)
		r.TaskTitle = inv.TaskTitle
		r.FromUsername = inv.FromUsername
		result[i] = r
	}
	return result
}
