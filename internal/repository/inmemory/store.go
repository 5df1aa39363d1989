// Package inmemory implements the repository interfaces with plain maps
// behind a single mutex. It backs the service unit tests and mirrors the
// postgres semantics, including position bookkeeping and the atomic
// invitation accept (both writes happen under one lock).
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/repository"
)

type Store struct {
	mtx sync.RWMutex

	users       map[int64]*models.User
	tasks       map[int64]*models.Task
	shares      map[int64]*models.TaskShare
	invitations map[int64]*models.ShareInvitation

	nextUserID       int64
	nextTaskID       int64
	nextShareID      int64
	nextInvitationID int64
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int64]*models.User),
		tasks:       make(map[int64]*models.Task),
		shares:      make(map[int64]*models.TaskShare),
		invitations: make(map[int64]*models.ShareInvitation),
	}
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}

	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = time.Now()

	stored := *u
	s.users[u.ID] = &stored
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UpdateLastLogin(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range s.users {
		if id != u.ID && other.Username == u.Username {
			return repository.ErrDuplicate
		}
	}

	existing.Username = u.Username
	existing.Password = u.Password
	existing.DisplayName = u.DisplayName
	return nil
}

// --- tasks ---

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	maxPos := 0
	for _, existing := range s.tasks {
		if existing.UserID == t.UserID && existing.Position > maxPos {
			maxPos = existing.Position
		}
	}

	s.nextTaskID++
	t.ID = s.nextTaskID
	t.Position = maxPos + 1
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	stored := *t
	s.tasks[t.ID] = &stored
	return nil
}

func (s *Store) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *Store) ListTasksForUser(ctx context.Context, userID int64) ([]*models.TaskView, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	views := []*models.TaskView{}
	for _, t := range s.tasks {
		var level models.AccessLevel
		if t.UserID == userID {
			level = models.AccessOwner
		} else if share := s.findAcceptedShare(t.ID, userID); share != nil {
			level = models.AccessLevel(share.Permission)
		} else {
			continue
		}

		view := &models.TaskView{Task: *t, AccessLevel: level}
		if owner, ok := s.users[t.UserID]; ok {
			view.OwnerName = owner.Username
		}
		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		if views[i].IsPinned != views[j].IsPinned {
			return views[i].IsPinned
		}
		return views[i].Position < views[j].Position
	})
	return views, nil
}

func (s *Store) UpdateTaskContent(ctx context.Context, t *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.tasks[t.ID]
	if !ok {
		return repository.ErrNotFound
	}

	existing.Title = t.Title
	existing.Description = t.Description
	existing.Color = t.Color
	existing.Date = t.Date
	existing.Time = t.Time
	existing.UpdatedAt = time.Now()
	t.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	ownerID, position := t.UserID, t.Position
	delete(s.tasks, id)

	for _, other := range s.tasks {
		if other.UserID == ownerID && other.Position > position {
			other.Position--
		}
	}

	// Schema-level cascade in postgres; mirrored by hand here.
	for shareID, share := range s.shares {
		if share.TaskID == id {
			delete(s.shares, shareID)
		}
	}
	for invID, inv := range s.invitations {
		if inv.TaskID == id {
			delete(s.invitations, invID)
		}
	}
	return nil
}

func (s *Store) TogglePin(ctx context.Context, id int64) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	t.IsPinned = !t.IsPinned
	t.UpdatedAt = time.Now()
	return t.IsPinned, nil
}

func (s *Store) ToggleComplete(ctx context.Context, id int64) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	t.IsCompleted = !t.IsCompleted
	t.UpdatedAt = time.Now()
	return t.IsCompleted, nil
}

func (s *Store) MoveTask(ctx context.Context, ownerID, taskID int64, newPosition int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	moved, ok := s.tasks[taskID]
	if !ok || moved.UserID != ownerID {
		return repository.ErrNotFound
	}
	current := moved.Position

	count := 0
	for _, t := range s.tasks {
		if t.UserID == ownerID {
			count++
		}
	}

	if newPosition < 1 {
		newPosition = 1
	}
	if newPosition > count {
		newPosition = count
	}
	if newPosition == current {
		return nil
	}

	for _, t := range s.tasks {
		if t.UserID != ownerID || t.ID == taskID {
			continue
		}
		if newPosition > current {
			if t.Position > current && t.Position <= newPosition {
				t.Position--
			}
		} else {
			if t.Position >= newPosition && t.Position < current {
				t.Position++
			}
		}
	}

	moved.Position = newPosition
	moved.UpdatedAt = time.Now()
	return nil
}

func (s *Store) TaskPositions(ctx context.Context, ownerID int64) ([]int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	positions := []int{}
	for _, t := range s.tasks {
		if t.UserID == ownerID {
			positions = append(positions, t.Position)
		}
	}
	sort.Ints(positions)
	return positions, nil
}

// --- shares and invitations ---

func (s *Store) findAcceptedShare(taskID, userID int64) *models.TaskShare {
	for _, share := range s.shares {
		if share.TaskID == taskID && share.SharedWithID == userID && share.Accepted {
			return share
		}
	}
	return nil
}

func (s *Store) GetAcceptedShare(ctx context.Context, taskID, userID int64) (*models.TaskShare, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	share := s.findAcceptedShare(taskID, userID)
	if share == nil {
		return nil, repository.ErrNotFound
	}
	copied := *share
	return &copied, nil
}

func (s *Store) CreateInvitation(ctx context.Context, inv *models.ShareInvitation) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextInvitationID++
	inv.ID = s.nextInvitationID
	inv.CreatedAt = time.Now()
	inv.Status = models.StatusPending

	stored := *inv
	s.invitations[inv.ID] = &stored
	return nil
}

func (s *Store) GetPendingInvitation(ctx context.Context, id, toUserID int64) (*models.ShareInvitation, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	inv, ok := s.invitations[id]
	if !ok || inv.ToUserID != toUserID || inv.Status != models.StatusPending {
		return nil, repository.ErrNotFound
	}
	copied := *inv
	return &copied, nil
}

func (s *Store) AcceptInvitation(ctx context.Context, inv *models.ShareInvitation) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.invitations[inv.ID]
	if !ok || stored.Status != models.StatusPending {
		return repository.ErrNotFound
	}

	s.nextShareID++
	s.shares[s.nextShareID] = &models.TaskShare{
		ID:           s.nextShareID,
		TaskID:       stored.TaskID,
		OwnerID:      stored.FromUserID,
		SharedWithID: stored.ToUserID,
		Permission:   stored.Permission,
		CreatedAt:    time.Now(),
		Accepted:     true,
	}

	stored.Status = models.StatusAccepted
	inv.Status = models.StatusAccepted
	return nil
}

func (s *Store) RejectInvitation(ctx context.Context, inv *models.ShareInvitation) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.invitations[inv.ID]
	if !ok || stored.Status != models.StatusPending {
		return repository.ErrNotFound
	}

	stored.Status = models.StatusRejected
	inv.Status = models.StatusRejected
	return nil
}

func (s *Store) ListPendingInvitations(ctx context.Context, userID int64) ([]*models.PendingInvitation, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	invitations := []*models.PendingInvitation{}
	for _, inv := range s.invitations {
		if inv.ToUserID != userID || inv.Status != models.StatusPending {
			continue
		}
		view := &models.PendingInvitation{ShareInvitation: *inv}
		if t, ok := s.tasks[inv.TaskID]; ok {
			view.TaskTitle = t.Title
		}
		if from, ok := s.users[inv.FromUserID]; ok {
			view.FromUsername = from.Username
		}
		invitations = append(invitations, view)
	}

	sort.Slice(invitations, func(i, j int) bool {
		return invitations[i].ID < invitations[j].ID
	})
	return invitations, nil
}

func (s *Store) DeleteResolvedInvitationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var deleted int64
	for id, inv := range s.invitations {
		if inv.Status != models.StatusPending && inv.CreatedAt.Before(cutoff) {
			delete(s.invitations, id)
			deleted++
		}
	}
	return deleted, nil
}

// ShareCount reports the number of share rows for a task; used by tests
// asserting accept/reject side effects.
func (s *Store) ShareCount(taskID int64) int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	count := 0
	for _, share := range s.shares {
		if share.TaskID == taskID {
			count++
		}
	}
	return count
}
