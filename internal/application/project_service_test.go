package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

type projectRepoStub struct {
	createErr error
	created   Project

	getProject Project
	getErr     error

	updateErr error
	updated   Project

	deleteErr error
	deletedID string

	list    []Project
	listErr error
}

func (r *projectRepoStub) CreateProject(ctx context.Context, project Project) (Project, error) {
	if r.createErr != nil {
		return Project{}, r.createErr
	}
	r.created = project
	return project, nil
}

func (r *projectRepoStub) GetProject(ctx context.Context, id string) (Project, error) {
	if r.getErr != nil {
		return Project{}, r.getErr
	}
	if r.getProject.ID == "" {
		return Project{}, ErrNotFound
	}
	return r.getProject, nil
}

func (r *projectRepoStub) UpdateProject(ctx context.Context, project Project) (Project, error) {
	if r.updateErr != nil {
		return Project{}, r.updateErr
	}
	r.updated = project
	return project, nil
}

func (r *projectRepoStub) DeleteProject(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

func (r *projectRepoStub) ListProjectsByOwner(ctx context.Context, ownerID string) ([]Project, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Project, len(r.list))
	copy(out, r.list)
	return out, nil
}

func TestProjectService_CreateProject(t *testing.T) {
	t.Run("requires an authenticated principal", func(t *testing.T) {
		svc := NewProjectService(nil, nil, nil)

		_, err := svc.CreateProject(context.Background(), CreateProjectParams{
			Input: ProjectInput{Name: "新築工事", AnchorDate: "2024-04-01"},
		})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewProjectService(nil, nil, nil)

		_, err := svc.CreateProject(context.Background(), CreateProjectParams{
			Principal: Principal{UserID: "user-1"},
			Input: ProjectInput{
				Name:        "  ",
				AnchorDate:  "04/01/2024",
				ActiveScale: "decade",
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"name", "anchor_date", "active_scale"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects names above the length limit", func(t *testing.T) {
		svc := NewProjectService(nil, nil, nil)

		_, err := svc.CreateProject(context.Background(), CreateProjectParams{
			Principal: Principal{UserID: "user-1"},
			Input: ProjectInput{
				Name:       strings.Repeat("工", maxProjectNameRunes+1),
				AnchorDate: "2024-04-01",
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Fatalf("expected name validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects invalid windows", func(t *testing.T) {
		svc := NewProjectService(nil, nil, nil)

		_, err := svc.CreateProject(context.Background(), CreateProjectParams{
			Principal: Principal{UserID: "user-1"},
			Input: ProjectInput{
				Name:       "新築工事",
				AnchorDate: "2024-04-01",
				HourWindow: timescale.HourWindow{StartHour: 18, EndHour: 8},
				DayWindow:  timescale.DayWindow{Day: 3, Week: 7, Month: 120},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["hour_window"]; !ok {
			t.Fatalf("expected hour_window validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["day_window"]; !ok {
			t.Fatalf("expected day_window validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects overlapping override date sets", func(t *testing.T) {
		svc := NewProjectService(nil, nil, nil)

		_, err := svc.CreateProject(context.Background(), CreateProjectParams{
			Principal: Principal{UserID: "user-1"},
			Input: ProjectInput{
				Name:            "新築工事",
				AnchorDate:      "2024-04-01",
				WorkingDates:    []string{"2024-05-01", "2024-05-02"},
				NonWorkingDates: []string{"2024-05-01"},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		msg, ok := vErr.FieldErrors["override_dates"]
		if !ok {
			t.Fatalf("expected override_dates validation error, got %v", vErr.FieldErrors)
		}
		if !strings.Contains(msg, "2024-05-01") {
			t.Fatalf("expected the conflicting date in the message, got %q", msg)
		}
	})

	t.Run("applies defaults and persists for the owner", func(t *testing.T) {
		repo := &projectRepoStub{}
		now := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)
		svc := NewProjectService(repo, func() string { return "project-1" }, func() time.Time { return now })

		created, err := svc.CreateProject(context.Background(), CreateProjectParams{
			Principal: Principal{UserID: "user-1"},
			Input: ProjectInput{
				Name:       "  本社ビル新築工事  ",
				AnchorDate: "2024-04-01",
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.created.ID != "project-1" || repo.created.OwnerID != "user-1" {
			t.Fatalf("identity not assigned: %+v", repo.created)
		}
		if repo.created.Name != "本社ビル新築工事" {
			t.Fatalf("expected name to be trimmed, got %q", repo.created.Name)
		}
		if calendar.FormatDate(repo.created.AnchorDate) != "2024-04-01" {
			t.Fatalf("anchor date = %v", repo.created.AnchorDate)
		}
		if repo.created.ActiveScale != timescale.ScaleDay {
			t.Fatalf("expected day as the default scale, got %v", repo.created.ActiveScale)
		}
		if repo.created.HourWindow != timescale.DefaultHourWindow {
			t.Fatalf("expected default hour window, got %+v", repo.created.HourWindow)
		}
		if repo.created.DayWindow != timescale.DefaultDayWindow {
			t.Fatalf("expected default day window, got %+v", repo.created.DayWindow)
		}
		if !repo.created.CreatedAt.Equal(now) || !repo.created.UpdatedAt.Equal(now) {
			t.Fatalf("expected timestamps from injected clock, got %+v", repo.created)
		}
		if created.ID != "project-1" {
			t.Fatalf("expected returned project to include generated ID, got %q", created.ID)
		}
	})

	t.Run("maps repository errors to sentinel failures", func(t *testing.T) {
		repo := &projectRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewProjectService(repo, nil, nil)

		_, err := svc.CreateProject(context.Background(), CreateProjectParams{
			Principal: Principal{UserID: "user-1"},
			Input:     ProjectInput{Name: "新築工事", AnchorDate: "2024-04-01"},
		})

		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestProjectService_UpdateProject(t *testing.T) {
	existingAnchor, _ := calendar.ParseDate("2024-04-01")
	existing := Project{
		ID:          "project-1",
		OwnerID:     "user-1",
		Name:        "本社ビル新築工事",
		AnchorDate:  existingAnchor,
		ActiveScale: timescale.ScaleDay,
		HourWindow:  timescale.DefaultHourWindow,
		DayWindow:   timescale.DefaultDayWindow,
		Workdays:    calendar.DefaultWorkdayRules(),
		CreatedAt:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("rejects principals other than the owner", func(t *testing.T) {
		repo := &projectRepoStub{getProject: existing}
		svc := NewProjectService(repo, nil, nil)

		_, err := svc.UpdateProject(context.Background(), UpdateProjectParams{
			Principal: Principal{UserID: "user-2"},
			ProjectID: "project-1",
			Input:     ProjectInput{Name: "改修工事", AnchorDate: "2024-05-01"},
		})

		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("propagates ErrNotFound when the project is missing", func(t *testing.T) {
		repo := &projectRepoStub{getErr: persistence.ErrNotFound}
		svc := NewProjectService(repo, nil, nil)

		_, err := svc.UpdateProject(context.Background(), UpdateProjectParams{
			Principal: Principal{UserID: "user-1"},
			ProjectID: "missing",
			Input:     ProjectInput{Name: "改修工事", AnchorDate: "2024-05-01"},
		})

		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rewrites attributes for the owner", func(t *testing.T) {
		repo := &projectRepoStub{getProject: existing}
		now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
		svc := NewProjectService(repo, nil, func() time.Time { return now })

		updated, err := svc.UpdateProject(context.Background(), UpdateProjectParams{
			Principal: Principal{UserID: "user-1"},
			ProjectID: "project-1",
			Input: ProjectInput{
				Name:            "本社ビル改修工事",
				AnchorDate:      "2024-05-07",
				ActiveScale:     "week",
				HourWindow:      timescale.HourWindow{StartHour: 7, EndHour: 19},
				DayWindow:       timescale.DayWindow{Day: 5, Week: 10, Month: 31},
				SkipSaturday:    true,
				SkipSunday:      true,
				SkipHoliday:     true,
				NonWorkingDates: []string{"2024-05-10"},
				Provisional:     true,
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.updated.Name != "本社ビル改修工事" {
			t.Fatalf("name = %q", repo.updated.Name)
		}
		if calendar.FormatDate(repo.updated.AnchorDate) != "2024-05-07" {
			t.Fatalf("anchor = %v", repo.updated.AnchorDate)
		}
		if repo.updated.ActiveScale != timescale.ScaleWeek {
			t.Fatalf("scale = %v", repo.updated.ActiveScale)
		}
		if repo.updated.HourWindow != (timescale.HourWindow{StartHour: 7, EndHour: 19}) {
			t.Fatalf("hour window = %+v", repo.updated.HourWindow)
		}
		if !repo.updated.Workdays.SkipSaturday {
			t.Fatalf("skip flags not applied: %+v", repo.updated.Workdays)
		}
		if nonWorking, _ := calendar.ParseDate("2024-05-10"); !repo.updated.Workdays.NonWorkingOverrides.Contains(nonWorking) {
			t.Fatalf("override set not applied: %+v", repo.updated.Workdays)
		}
		if !repo.updated.Provisional {
			t.Fatalf("provisional flag not applied")
		}
		if !repo.updated.UpdatedAt.Equal(now) {
			t.Fatalf("expected updated timestamp from injected clock, got %v", repo.updated.UpdatedAt)
		}
		if !repo.updated.CreatedAt.Equal(existing.CreatedAt) {
			t.Fatalf("created timestamp must not move")
		}
		if updated.ID != "project-1" {
			t.Fatalf("expected returned project to keep its ID, got %q", updated.ID)
		}
	})
}

func TestProjectService_ListProjects(t *testing.T) {
	t.Run("requires an authenticated principal", func(t *testing.T) {
		svc := NewProjectService(&projectRepoStub{}, nil, nil)

		_, err := svc.ListProjects(context.Background(), Principal{})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("orders projects by creation time then ID", func(t *testing.T) {
		base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		repo := &projectRepoStub{list: []Project{
			{ID: "project-b", OwnerID: "user-1", CreatedAt: base.Add(time.Hour)},
			{ID: "project-c", OwnerID: "user-1", CreatedAt: base},
			{ID: "project-a", OwnerID: "user-1", CreatedAt: base},
		}}
		svc := NewProjectService(repo, nil, nil)

		got, err := svc.ListProjects(context.Background(), Principal{UserID: "user-1"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 3 || got[0].ID != "project-a" || got[1].ID != "project-c" || got[2].ID != "project-b" {
			t.Fatalf("unexpected order: %+v", got)
		}
	})
}

func TestProjectService_DeleteProject(t *testing.T) {
	owned := Project{ID: "project-1", OwnerID: "user-1"}

	t.Run("rejects principals other than the owner", func(t *testing.T) {
		repo := &projectRepoStub{getProject: owned}
		svc := NewProjectService(repo, nil, nil)

		err := svc.DeleteProject(context.Background(), Principal{UserID: "user-2"}, "project-1")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if repo.deletedID != "" {
			t.Fatalf("repository must not be called, got delete of %q", repo.deletedID)
		}
	})

	t.Run("deletes for the owner", func(t *testing.T) {
		repo := &projectRepoStub{getProject: owned}
		svc := NewProjectService(repo, nil, nil)

		if err := svc.DeleteProject(context.Background(), Principal{UserID: "user-1"}, "project-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.deletedID != "project-1" {
			t.Fatalf("expected repository to receive project ID, got %q", repo.deletedID)
		}
	})
}

func TestMapProjectRepoError(t *testing.T) {
	unexpected := errors.New("boom")

	tests := map[string]struct {
		err      error
		expected error
	}{
		"nil":                   {err: nil, expected: nil},
		"application not found": {err: ErrNotFound, expected: ErrNotFound},
		"persistence not found": {err: persistence.ErrNotFound, expected: ErrNotFound},
		"duplicate":             {err: persistence.ErrDuplicate, expected: ErrAlreadyExists},
		"constraint":            {err: persistence.ErrConstraintViolation, expected: &ValidationError{}},
		"unexpected":            {err: unexpected, expected: unexpected},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result := mapProjectRepoError(tc.err)

			switch expected := tc.expected.(type) {
			case nil:
				if result != nil {
					t.Fatalf("expected nil, got %v", result)
				}
			case *ValidationError:
				if _, ok := result.(*ValidationError); !ok {
					t.Fatalf("expected ValidationError, got %T", result)
				}
			default:
				if !errors.Is(result, expected) {
					t.Fatalf("expected %v, got %v", expected, result)
				}
			}
		})
	}
}
