package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/models"
	"taskboard/internal/repository"
)

// GetAcceptedShare returns the accepted share granting userID access to
// taskID, or ErrNotFound when none exists.
func (s *Storage) GetAcceptedShare(ctx context.Context, taskID, userID int64) (*models.TaskShare, error) {
	share := &models.TaskShare{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, task_id, owner_id, shared_with_id, permission_level, created_at, accepted
		 FROM task_shares
		 WHERE task_id = $1 AND shared_with_id = $2 AND accepted`,
		taskID, userID,
	).Scan(
		&share.ID, &share.TaskID, &share.OwnerID, &share.SharedWithID,
		&share.Permission, &share.CreatedAt, &share.Accepted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("getting share: %w", err)
	}
	return share, nil
}

func (s *Storage) CreateInvitation(ctx context.Context, inv *models.ShareInvitation) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO share_invitations (task_id, from_user_id, to_user_id, permission_level)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, status`,
		inv.TaskID, inv.FromUserID, inv.ToUserID, inv.Permission,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.Status)
	if err != nil {
		return fmt.Errorf("creating invitation: %w", err)
	}
	return nil
}

// GetPendingInvitation looks the invitation up by id, addressee and
// pending status in one query, so already-resolved invitations and
// invitations addressed to someone else both read as not found.
func (s *Storage) GetPendingInvitation(ctx context.Context, id, toUserID int64) (*models.ShareInvitation, error) {
	inv := &models.ShareInvitation{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, task_id, from_user_id, to_user_id, permission_level, created_at, status
		 FROM share_invitations
		 WHERE id = $1 AND to_user_id = $2 AND status = 'pending'`,
		id, toUserID,
	).Scan(
		&inv.ID, &inv.TaskID, &inv.FromUserID, &inv.ToUserID,
		&inv.Permission, &inv.CreatedAt, &inv.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("getting invitation: %w", err)
	}
	return inv, nil
}

// AcceptInvitation inserts the share grant and flips the invitation to
// accepted in a single transaction, so the invitation can never be
// observed accepted without its share or the other way around.
func (s *Storage) AcceptInvitation(ctx context.Context, inv *models.ShareInvitation) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO task_shares (task_id, owner_id, shared_with_id, permission_level, accepted)
			 VALUES ($1, $2, $3, $4, TRUE)`,
			inv.TaskID, inv.FromUserID, inv.ToUserID, inv.Permission,
		)
		if err != nil {
			return fmt.Errorf("creating share: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE share_invitations SET status = 'accepted'
			 WHERE id = $1 AND status = 'pending'`,
			inv.ID,
		)
		if err != nil {
			return fmt.Errorf("updating invitation status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// Resolved concurrently; roll the share back too.
			return repository.ErrNotFound
		}

		inv.Status = models.StatusAccepted
		return nil
	})
}

func (s *Storage) RejectInvitation(ctx context.Context, inv *models.ShareInvitation) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE share_invitations SET status = 'rejected'
		 WHERE id = $1 AND status = 'pending'`,
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("updating invitation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	inv.Status = models.StatusRejected
	return nil
}

func (s *Storage) ListPendingInvitations(ctx context.Context, userID int64) ([]*models.PendingInvitation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT si.id, si.task_id, si.from_user_id, si.to_user_id,
		        si.permission_level, si.created_at, si.status,
		        t.title AS task_title, u.username AS from_username
		 FROM share_invitations si
		 JOIN tasks t ON t.id = si.task_id
		 JOIN users u ON u.id = si.from_user_id
		 WHERE si.to_user_id = $1 AND si.status = 'pending'
		 ORDER BY si.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	defer rows.Close()

	invitations := []*models.PendingInvitation{}
	for rows.Next() {
		inv := &models.PendingInvitation{}
		err := rows.Scan(
			&inv.ID, &inv.TaskID, &inv.FromUserID, &inv.ToUserID,
			&inv.Permission, &inv.CreatedAt, &inv.Status,
			&inv.TaskTitle, &inv.FromUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning invitation row: %w", err)
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// DeleteResolvedInvitationsBefore prunes invitations that reached a
// terminal status before the cutoff. Pending invitations are kept.
func (s *Storage) DeleteResolvedInvitationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM share_invitations
		 WHERE status <> 'pending' AND created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning invitations: %w", err)
	}
	if tag.RowsAffected() > 0 {
		logger.Info("Repository: pruned resolved invitations", zap.Int64("count", tag.RowsAffected()))
	}
	return tag.RowsAffected(), nil
}
