package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
)

// TaskRepository implements persistence.TaskRepository on SQLite.
type TaskRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewTaskRepository creates a SQLite task repository.
func NewTaskRepository(pool *ConnectionPool) *TaskRepository {
	return &TaskRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const taskColumns = `id, project_id, name, assignee, trade_id, color,
	display_order, hour_start, hour_end, day_start, day_end,
	week_start, week_end, month_start, month_end, created_at, updated_at`

// CreateTask appends the task to the end of the project's list. The
// assigned display order is returned with the stored row.
func (r *TaskRepository) CreateTask(ctx context.Context, task persistence.Task) (persistence.Task, error) {
	if task.ID == "" || task.ProjectID == "" {
		return persistence.Task{}, persistence.ErrConstraintViolation
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(display_order) + 1, 0) FROM tasks WHERE project_id = ?`,
			task.ProjectID,
		).Scan(&task.DisplayOrder)
		if err != nil {
			return r.mapper.Map(err)
		}

		hourStart, hourEnd := packInterval(task.Schedule.Hour)
		dayStart, dayEnd := packInterval(task.Schedule.Day)
		weekStart, weekEnd := packInterval(task.Schedule.Week)
		monthStart, monthEnd := packInterval(task.Schedule.Month)

		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID,
			task.ProjectID,
			task.Name,
			task.Assignee,
			nullString(task.TradeID),
			nullString(task.Color),
			task.DisplayOrder,
			hourStart, hourEnd,
			dayStart, dayEnd,
			weekStart, weekEnd,
			monthStart, monthEnd,
			formatTime(task.CreatedAt),
			formatTime(task.UpdatedAt),
		)
		return r.mapper.Map(err)
	})
	if err != nil {
		return persistence.Task{}, err
	}
	return task, nil
}

// UpdateTask rewrites the task's fields and schedule. Display order is
// not touched; MoveTask owns ordering.
func (r *TaskRepository) UpdateTask(ctx context.Context, task persistence.Task) error {
	if task.ID == "" {
		return persistence.ErrNotFound
	}

	hourStart, hourEnd := packInterval(task.Schedule.Hour)
	dayStart, dayEnd := packInterval(task.Schedule.Day)
	weekStart, weekEnd := packInterval(task.Schedule.Week)
	monthStart, monthEnd := packInterval(task.Schedule.Month)

	result, err := r.helper.Exec(ctx, `
		UPDATE tasks
		SET name = ?, assignee = ?, trade_id = ?, color = ?,
			hour_start = ?, hour_end = ?, day_start = ?, day_end = ?,
			week_start = ?, week_end = ?, month_start = ?, month_end = ?,
			updated_at = ?
		WHERE id = ?`,
		task.Name,
		task.Assignee,
		nullString(task.TradeID),
		nullString(task.Color),
		hourStart, hourEnd,
		dayStart, dayEnd,
		weekStart, weekEnd,
		monthStart, monthEnd,
		formatTime(task.UpdatedAt),
		task.ID,
	)
	if err != nil {
		return r.mapper.Map(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetTask retrieves one task by ID.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	if id == "" {
		return persistence.Task{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		return persistence.Task{}, r.mapper.Map(err)
	}
	return task, nil
}

// ListTasks retrieves the project's tasks in display order.
func (r *TaskRepository) ListTasks(ctx context.Context, projectID string) ([]persistence.Task, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE project_id = ?
		ORDER BY display_order, id`, projectID)
	if err != nil {
		return nil, r.mapper.Map(err)
	}
	defer rows.Close()

	var tasks []persistence.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, r.mapper.Map(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.Map(err)
	}
	return tasks, nil
}

// DeleteTask removes the task and closes the display-order gap.
func (r *TaskRepository) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			var projectID string
			var order int
			err := tx.QueryRowContext(ctx,
				`SELECT project_id, display_order FROM tasks WHERE id = ?`, id,
			).Scan(&projectID, &order)
			if err != nil {
				return r.mapper.Map(err)
			}

			if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
				return r.mapper.Map(err)
			}
			_, err = tx.ExecContext(ctx, `
				UPDATE tasks SET display_order = display_order - 1
				WHERE project_id = ? AND display_order > ?`,
				projectID, order,
			)
			return r.mapper.Map(err)
		})
	})
}

// MoveTask places the task at the given position and resequences the
// project's list densely. Positions beyond the list clamp to its ends.
func (r *TaskRepository) MoveTask(ctx context.Context, projectID, taskID string, position int) error {
	if projectID == "" || taskID == "" {
		return persistence.ErrNotFound
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			rows, err := tx.QueryContext(ctx, `
				SELECT id FROM tasks
				WHERE project_id = ?
				ORDER BY display_order, id`, projectID)
			if err != nil {
				return r.mapper.Map(err)
			}
			ids := make([]string, 0, 16)
			for rows.Next() {
				var id string
				if err := rows.Scan(&id); err != nil {
					rows.Close()
					return r.mapper.Map(err)
				}
				ids = append(ids, id)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return r.mapper.Map(err)
			}
			rows.Close()

			current := -1
			for i, id := range ids {
				if id == taskID {
					current = i
					break
				}
			}
			if current == -1 {
				return persistence.ErrNotFound
			}

			if position < 0 {
				position = 0
			}
			if position > len(ids)-1 {
				position = len(ids) - 1
			}
			if position == current {
				return nil
			}

			moved := ids[current]
			ids = append(ids[:current], ids[current+1:]...)
			ids = append(ids[:position], append([]string{moved}, ids[position:]...)...)

			for i, id := range ids {
				if _, err := tx.ExecContext(ctx,
					`UPDATE tasks SET display_order = ? WHERE id = ? AND display_order <> ?`,
					i, id, i,
				); err != nil {
					return r.mapper.Map(err)
				}
			}
			return nil
		})
	})
}

// CountTasksByTrade reports how many tasks reference the trade.
func (r *TaskRepository) CountTasksByTrade(ctx context.Context, tradeID string) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE trade_id = ?`, tradeID,
	).Scan(&count)
	if err != nil {
		return 0, r.mapper.Map(err)
	}
	return count, nil
}

func scanTask(row rowScanner) (persistence.Task, error) {
	var (
		task                 persistence.Task
		tradeID, color       sql.NullString
		hourStart, hourEnd   sql.NullInt64
		dayStart, dayEnd     sql.NullInt64
		weekStart, weekEnd   sql.NullInt64
		monthStart, monthEnd sql.NullInt64
		createdAt, updatedAt string
	)
	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Name,
		&task.Assignee,
		&tradeID,
		&color,
		&task.DisplayOrder,
		&hourStart, &hourEnd,
		&dayStart, &dayEnd,
		&weekStart, &weekEnd,
		&monthStart, &monthEnd,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Task{}, err
	}

	task.TradeID = stringPtr(tradeID)
	task.Color = stringPtr(color)
	task.Schedule.Hour = unpackInterval(hourStart, hourEnd)
	task.Schedule.Day = unpackInterval(dayStart, dayEnd)
	task.Schedule.Week = unpackInterval(weekStart, weekEnd)
	task.Schedule.Month = unpackInterval(monthStart, monthEnd)

	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Task{}, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Task{}, err
	}
	return task, nil
}
