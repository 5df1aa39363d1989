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

// CreateTask inserts the task at the end of the owner's list. The
// position read and the insert share one transaction so two concurrent
// appends for the same owner cannot compute the same slot.
func (s *Storage) CreateTask(ctx context.Context, t *models.Task) error {
	start := time.Now()

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var maxPos int
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(position), 0) FROM tasks WHERE user_id = $1`,
			t.UserID,
		).Scan(&maxPos)
		if err != nil {
			return fmt.Errorf("reading max position: %w", err)
		}

		t.Position = maxPos + 1
		return tx.QueryRow(ctx,
			`INSERT INTO tasks (user_id, title, description, color, date, time, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, created_at, updated_at, is_pinned, is_completed`,
			t.UserID, t.Title, t.Description, t.Color, t.Date, t.Time, t.Position,
		).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.IsPinned, &t.IsCompleted)
	})
	if err != nil {
		logger.Error("Repository: creating task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("creating task: %w", err)
	}

	if time.Since(start) > 50*time.Millisecond {
		logger.Warn("Repository: slow query", zap.String("op", "create_task"), zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	t := &models.Task{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, description, color, date, time,
		        created_at, updated_at, position, is_pinned, is_completed
		 FROM tasks
		 WHERE id = $1`,
		id,
	).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Color, &t.Date, &t.Time,
		&t.CreatedAt, &t.UpdatedAt, &t.Position, &t.IsPinned, &t.IsCompleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

// ListTasksForUser returns tasks owned by the user plus tasks shared
// with them through an accepted share, pinned first then by position.
func (s *Storage) ListTasksForUser(ctx context.Context, userID int64) ([]*models.TaskView, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx,
		`SELECT t.id, t.user_id, t.title, t.description, t.color, t.date, t.time,
		        t.created_at, t.updated_at, t.position, t.is_pinned, t.is_completed,
		        u.username AS owner_name,
		        CASE WHEN t.user_id = $1 THEN 'owner' ELSE ts.permission_level END AS access_level
		 FROM tasks t
		 JOIN users u ON u.id = t.user_id
		 LEFT JOIN task_shares ts ON ts.task_id = t.id AND ts.shared_with_id = $1
		 WHERE t.user_id = $1 OR (ts.shared_with_id = $1 AND ts.accepted)
		 ORDER BY t.is_pinned DESC, t.position ASC`,
		userID,
	)
	if err != nil {
		logger.Error("Repository: listing tasks", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	views := []*models.TaskView{}
	for rows.Next() {
		v := &models.TaskView{}
		err := rows.Scan(
			&v.ID, &v.UserID, &v.Title, &v.Description, &v.Color, &v.Date, &v.Time,
			&v.CreatedAt, &v.UpdatedAt, &v.Position, &v.IsPinned, &v.IsCompleted,
			&v.OwnerName, &v.AccessLevel,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}

	if time.Since(start) > 100*time.Millisecond {
		logger.Warn("Repository: slow query", zap.String("op", "list_tasks"), zap.Duration("ms", time.Since(start)))
	}
	return views, nil
}

// UpdateTaskContent persists the content fields only. Pin, completion
// and position are untouched.
func (s *Storage) UpdateTaskContent(ctx context.Context, t *models.Task) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, color = $3, date = $4, time = $5,
		     updated_at = now()
		 WHERE id = $6
		 RETURNING updated_at`,
		t.Title, t.Description, t.Color, t.Date, t.Time, t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

// DeleteTask removes the task and closes the position gap it leaves in
// the owner's list. Shares and invitations cascade at the schema level.
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		var ownerID int64
		var position int
		err := tx.QueryRow(ctx,
			`DELETE FROM tasks WHERE id = $1 RETURNING user_id, position`,
			id,
		).Scan(&ownerID, &position)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("deleting task: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE tasks SET position = position - 1
			 WHERE user_id = $1 AND position > $2`,
			ownerID, position,
		)
		if err != nil {
			return fmt.Errorf("closing position gap: %w", err)
		}
		return nil
	})
}

func (s *Storage) TogglePin(ctx context.Context, id int64) (bool, error) {
	var pinned bool
	err := s.pool.QueryRow(ctx,
		`UPDATE tasks SET is_pinned = NOT is_pinned, updated_at = now()
		 WHERE id = $1
		 RETURNING is_pinned`,
		id,
	).Scan(&pinned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, repository.ErrNotFound
		}
		return false, fmt.Errorf("toggling pin: %w", err)
	}
	return pinned, nil
}

func (s *Storage) ToggleComplete(ctx context.Context, id int64) (bool, error) {
	var completed bool
	err := s.pool.QueryRow(ctx,
		`UPDATE tasks SET is_completed = NOT is_completed, updated_at = now()
		 WHERE id = $1
		 RETURNING is_completed`,
		id,
	).Scan(&completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, repository.ErrNotFound
		}
		return false, fmt.Errorf("toggling completion: %w", err)
	}
	return completed, nil
}

// MoveTask moves the task to newPosition within its owner's list,
// shifting the tasks in between by one so positions stay a dense 1..N.
// Targets outside [1, N] are clamped. Everything runs in one
// transaction; a failure on any step leaves the list untouched.
func (s *Storage) MoveTask(ctx context.Context, ownerID, taskID int64, newPosition int) error {
	start := time.Now()

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx,
			`SELECT position FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			taskID, ownerID,
		).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("reading current position: %w", err)
		}

		var count int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM tasks WHERE user_id = $1`, ownerID,
		).Scan(&count); err != nil {
			return fmt.Errorf("counting tasks: %w", err)
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

		if newPosition > current {
			_, err = tx.Exec(ctx,
				`UPDATE tasks SET position = position - 1
				 WHERE user_id = $1 AND position > $2 AND position <= $3`,
				ownerID, current, newPosition,
			)
		} else {
			_, err = tx.Exec(ctx,
				`UPDATE tasks SET position = position + 1
				 WHERE user_id = $1 AND position >= $2 AND position < $3`,
				ownerID, newPosition, current,
			)
		}
		if err != nil {
			return fmt.Errorf("shifting positions: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE tasks SET position = $1, updated_at = now() WHERE id = $2`,
			newPosition, taskID,
		)
		if err != nil {
			return fmt.Errorf("setting new position: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error("Repository: moving task", err,
				zap.Int64("task_id", taskID),
				zap.Duration("ms", time.Since(start)))
		}
		return err
	}

	if time.Since(start) > 100*time.Millisecond {
		logger.Warn("Repository: slow query", zap.String("op", "move_task"), zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// TaskPositions returns the owner's positions in ascending order.
func (s *Storage) TaskPositions(ctx context.Context, ownerID int64) ([]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT position FROM tasks WHERE user_id = $1 ORDER BY position`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	defer rows.Close()

	positions := []int{}
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}
