package models

import "time"

// AccessLevel is the effective permission of a user on a task.
type AccessLevel string

const (
	AccessOwner AccessLevel = "owner"
	AccessEdit  AccessLevel = "edit"
	AccessView  AccessLevel = "view"
	AccessNone  AccessLevel = "none"
)

// CanEdit reports whether the level allows content mutation and
// completion toggling. Delete, pin and share stay owner-only.
func (a AccessLevel) CanEdit() bool {
	return a == AccessOwner || a == AccessEdit
}

// Permission is the level granted by a share or requested by an invitation.
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

type InvitationStatus string

const (
	StatusPending  InvitationStatus = "pending"
	StatusAccepted InvitationStatus = "accepted"
	StatusRejected InvitationStatus = "rejected"
)

type User struct {
	ID          int64      `json:"id" db:"id"`
	Username    string     `json:"username" db:"username"`
	Password    string     `json:"-" db:"password"`
	DisplayName string     `json:"display_name,omitempty" db:"display_name"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty" db:"last_login"`
}

type Task struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Color       string    `json:"color" db:"color"`
	// Date and Time are display strings chosen by the client,
	// stored verbatim.
	Date        string    `json:"date" db:"date"`
	Time        string    `json:"time" db:"time"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Position    int       `json:"position" db:"position"`
	IsPinned    bool      `json:"is_pinned" db:"is_pinned"`
	IsCompleted bool      `json:"is_completed" db:"is_completed"`
}

// TaskView is a task as seen by a particular user: the task itself,
// the handle of its owner and the viewer's effective access level.
type TaskView struct {
	Task
	OwnerName   string      `json:"owner_name"`
	AccessLevel AccessLevel `json:"access_level"`
}

type TaskShare struct {
	ID           int64      `json:"id" db:"id"`
	TaskID       int64      `json:"task_id" db:"task_id"`
	OwnerID      int64      `json:"owner_id" db:"owner_id"`
	SharedWithID int64      `json:"shared_with_id" db:"shared_with_id"`
	Permission   Permission `json:"permission_level" db:"permission_level"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	Accepted     bool       `json:"accepted" db:"accepted"`
}

type ShareInvitation struct {
	ID         int64            `json:"id" db:"id"`
	TaskID     int64            `json:"task_id" db:"task_id"`
	FromUserID int64            `json:"from_user_id" db:"from_user_id"`
	ToUserID   int64            `json:"to_user_id" db:"to_user_id"`
	Permission Permission       `json:"permission_level" db:"permission_level"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	Status     InvitationStatus `json:"status" db:"status"`
}

// PendingInvitation joins a pending invitation with the task title and
// inviter handle for display.
type PendingInvitation struct {
	ShareInvitation
	TaskTitle    string `json:"task_title"`
	FromUsername string `json:"from_username"`
}
