package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

// ProjectRepository implements persistence.ProjectRepository on SQLite.
type ProjectRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewProjectRepository creates a SQLite project repository.
func NewProjectRepository(pool *ConnectionPool) *ProjectRepository {
	return &ProjectRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const projectColumns = `id, owner_id, name, anchor_date, active_scale,
	hour_start, hour_end, window_day, window_week, window_month,
	skip_saturday, skip_sunday, skip_holiday, display_working_only,
	provisional, created_at, updated_at`

// CreateProject inserts a project and its override dates in one
// transaction.
func (r *ProjectRepository) CreateProject(ctx context.Context, project persistence.Project) error {
	if project.ID == "" || project.OwnerID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			project.ID,
			project.OwnerID,
			project.Name,
			formatDate(project.AnchorDate),
			project.ActiveScale.String(),
			project.HourWindow.StartHour,
			project.HourWindow.EndHour,
			project.DayWindow.Day,
			project.DayWindow.Week,
			project.DayWindow.Month,
			project.Workdays.SkipSaturday,
			project.Workdays.SkipSunday,
			project.Workdays.SkipHoliday,
			project.Workdays.DisplayOnlyWorkingDays,
			project.Provisional,
			formatTime(project.CreatedAt),
			formatTime(project.UpdatedAt),
		)
		if err != nil {
			return r.mapper.Map(err)
		}
		return r.insertOverrides(ctx, tx, project)
	})
}

// UpdateProject rewrites a project row and replaces its override dates.
func (r *ProjectRepository) UpdateProject(ctx context.Context, project persistence.Project) error {
	if project.ID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE projects
			SET name = ?, anchor_date = ?, active_scale = ?,
				hour_start = ?, hour_end = ?,
				window_day = ?, window_week = ?, window_month = ?,
				skip_saturday = ?, skip_sunday = ?, skip_holiday = ?,
				display_working_only = ?, provisional = ?, updated_at = ?
			WHERE id = ?`,
			project.Name,
			formatDate(project.AnchorDate),
			project.ActiveScale.String(),
			project.HourWindow.StartHour,
			project.HourWindow.EndHour,
			project.DayWindow.Day,
			project.DayWindow.Week,
			project.DayWindow.Month,
			project.Workdays.SkipSaturday,
			project.Workdays.SkipSunday,
			project.Workdays.SkipHoliday,
			project.Workdays.DisplayOnlyWorkingDays,
			project.Provisional,
			formatTime(project.UpdatedAt),
			project.ID,
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

		if _, err := tx.ExecContext(ctx, `DELETE FROM project_override_dates WHERE project_id = ?`, project.ID); err != nil {
			return r.mapper.Map(err)
		}
		return r.insertOverrides(ctx, tx, project)
	})
}

func (r *ProjectRepository) insertOverrides(ctx context.Context, tx *sql.Tx, project persistence.Project) error {
	for _, kind := range []struct {
		name string
		set  calendar.DateSet
	}{
		{"working", project.Workdays.WorkingOverrides},
		{"nonworking", project.Workdays.NonWorkingOverrides},
	} {
		for _, date := range kind.set.Values() {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO project_override_dates (project_id, date, kind) VALUES (?, ?, ?)`,
				project.ID, date, kind.name,
			)
			if err != nil {
				return r.mapper.Map(err)
			}
		}
	}
	return nil
}

// GetProject retrieves a project with its override dates.
func (r *ProjectRepository) GetProject(ctx context.Context, id string) (persistence.Project, error) {
	if id == "" {
		return persistence.Project{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := r.scanProject(row)
	if err != nil {
		return persistence.Project{}, r.mapper.Map(err)
	}
	if err := r.loadOverrides(ctx, &project); err != nil {
		return persistence.Project{}, err
	}
	return project, nil
}

// ListProjectsByOwner retrieves the owner's projects ordered by
// creation time.
func (r *ProjectRepository) ListProjectsByOwner(ctx context.Context, ownerID string) ([]persistence.Project, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE owner_id = ?
		ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, r.mapper.Map(err)
	}
	defer rows.Close()

	var projects []persistence.Project
	for rows.Next() {
		project, err := r.scanProject(rows)
		if err != nil {
			return nil, r.mapper.Map(err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.Map(err)
	}
	for i := range projects {
		if err := r.loadOverrides(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// DeleteProject removes a project; tasks and override dates cascade.
func (r *ProjectRepository) DeleteProject(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `DELETE FROM projects WHERE id = ?`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ProjectRepository) scanProject(row rowScanner) (persistence.Project, error) {
	var (
		project              persistence.Project
		anchor, scale        string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&anchor,
		&scale,
		&project.HourWindow.StartHour,
		&project.HourWindow.EndHour,
		&project.DayWindow.Day,
		&project.DayWindow.Week,
		&project.DayWindow.Month,
		&project.Workdays.SkipSaturday,
		&project.Workdays.SkipSunday,
		&project.Workdays.SkipHoliday,
		&project.Workdays.DisplayOnlyWorkingDays,
		&project.Provisional,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Project{}, err
	}

	if project.AnchorDate, err = parseDate(anchor); err != nil {
		return persistence.Project{}, err
	}
	if project.ActiveScale, err = timescale.ParseScale(scale); err != nil {
		return persistence.Project{}, err
	}
	if project.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Project{}, err
	}
	if project.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Project{}, err
	}
	return project, nil
}

func (r *ProjectRepository) loadOverrides(ctx context.Context, project *persistence.Project) error {
	rows, err := r.helper.Query(ctx,
		`SELECT date, kind FROM project_override_dates WHERE project_id = ? ORDER BY date`,
		project.ID)
	if err != nil {
		return r.mapper.Map(err)
	}
	defer rows.Close()

	working := calendar.DateSet{}
	nonWorking := calendar.DateSet{}
	for rows.Next() {
		var date, kind string
		if err := rows.Scan(&date, &kind); err != nil {
			return r.mapper.Map(err)
		}
		d, err := parseDate(date)
		if err != nil {
			return err
		}
		if kind == "working" {
			working.Add(d)
		} else {
			nonWorking.Add(d)
		}
	}
	if err := rows.Err(); err != nil {
		return r.mapper.Map(err)
	}

	if len(working) > 0 {
		project.Workdays.WorkingOverrides = working
	}
	if len(nonWorking) > 0 {
		project.Workdays.NonWorkingOverrides = nonWorking
	}
	return nil
}
