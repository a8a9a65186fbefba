package grade

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
)

var (
	// errors
	ErrPeriodNotFound = errors.New("grade period not found")
	ErrColumnNotFound = errors.New("grade column not found")
	ErrGradeNotFound  = errors.New("grade not found")
)

type (
	PeriodRepository interface {
		CreatePeriod(ctx context.Context, p Period) (Period, error)
		QueryAllPeriods(ctx context.Context) ([]Period, error)
		GetPeriodByID(ctx context.Context, id string) (Period, error)
		UpdatePeriod(ctx context.Context, p Period) (Period, error)
		DeletePeriod(ctx context.Context, id string) error
	}

	ColumnRepository interface {
		CreateColumn(ctx context.Context, col Column) (Column, error)
		QueryAllColumns(ctx context.Context) ([]Column, error)
		QueryColumnsByClass(ctx context.Context, classID string) ([]Column, error)
		GetColumnByID(ctx context.Context, id string) (Column, error)
		UpdateColumn(ctx context.Context, col Column) (Column, error)
		DeleteColumn(ctx context.Context, id string) error
	}

	GradeRepository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		QueryAllGrades(ctx context.Context) ([]Grade, error)
		QueryGradesByColumn(ctx context.Context, columnID string) ([]Grade, error)
		GetGrade(ctx context.Context, columnID, studentID string) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id string) error
	}

	Service struct {
		periods PeriodRepository
		columns ColumnRepository
		grades  GradeRepository
	}
)

func NewService(periods PeriodRepository, columns ColumnRepository, grades GradeRepository) *Service {
	return &Service{periods: periods, columns: columns, grades: grades}
}

// Periods

func (svc *Service) CreatePeriod(ctx context.Context, np NewPeriod) (Period, error) {
	p := Period{
		Name:      np.Name,
		StartDate: np.StartDate,
		EndDate:   np.EndDate,
		IsActive:  np.IsActive,
		CreatedAt: time.Now().UTC(),
	}
	return svc.periods.CreatePeriod(ctx, p)
}

func (svc *Service) QueryAllPeriods(ctx context.Context) ([]Period, error) {
	return svc.periods.QueryAllPeriods(ctx)
}

func (svc *Service) UpdatePeriod(ctx context.Context, id string, up UpdatePeriod) (Period, error) {
	p, err := svc.periods.GetPeriodByID(ctx, id)
	if err != nil {
		return Period{}, err
	}
	if up.Name != "" {
		p.Name = up.Name
	}
	if up.StartDate != nil {
		p.StartDate = *up.StartDate
	}
	if up.EndDate != nil {
		p.EndDate = *up.EndDate
	}
	if up.IsActive != nil {
		p.IsActive = *up.IsActive
	}
	return svc.periods.UpdatePeriod(ctx, p)
}

// DeletePeriod removes the period row only; columns keep their (now dangling)
// optional period reference.
func (svc *Service) DeletePeriod(ctx context.Context, id string) error {
	return svc.periods.DeletePeriod(ctx, id)
}

// Columns

func (svc *Service) CreateColumn(ctx context.Context, nc NewColumn) (Column, error) {
	col := Column{
		Name:        nc.Name,
		ClassID:     nc.ClassID,
		TeacherID:   nc.TeacherID,
		PeriodID:    nc.PeriodID,
		MaxScore:    nc.MaxScore,
		Weight:      nc.Weight,
		Description: nc.Description,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.columns.CreateColumn(ctx, col)
}

func (svc *Service) QueryAllColumns(ctx context.Context) ([]Column, error) {
	return svc.columns.QueryAllColumns(ctx)
}

func (svc *Service) QueryColumnsByClass(ctx context.Context, classID string) ([]Column, error) {
	return svc.columns.QueryColumnsByClass(ctx, classID)
}

func (svc *Service) UpdateColumn(ctx context.Context, id string, uc UpdateColumn) (Column, error) {
	col, err := svc.columns.GetColumnByID(ctx, id)
	if err != nil {
		return Column{}, err
	}
	if uc.Name != "" {
		col.Name = uc.Name
	}
	if uc.PeriodID != nil {
		col.PeriodID = *uc.PeriodID
	}
	if uc.MaxScore != nil {
		col.MaxScore = *uc.MaxScore
	}
	if uc.Weight != nil {
		col.Weight = *uc.Weight
	}
	if uc.Description != nil {
		col.Description = *uc.Description
	}
	return svc.columns.UpdateColumn(ctx, col)
}

// DeleteColumn deletes every grade referencing the column, then the column
// itself, returning the number of grades removed. Best-effort sequential;
// no rollback on a mid-sequence failure.
func (svc *Service) DeleteColumn(ctx context.Context, id string) (int, error) {
	grades, err := svc.grades.QueryGradesByColumn(ctx, id)
	if err != nil {
		return 0, err
	}
	var deleted int
	for _, g := range grades {
		if err := svc.grades.DeleteGrade(ctx, g.ID); err != nil {
			return deleted, pkgerrors.Wrapf(err, "deleting grade %s", g.ID)
		}
		deleted++
	}
	if err := svc.columns.DeleteColumn(ctx, id); err != nil {
		return deleted, pkgerrors.Wrap(err, "deleting column row")
	}
	return deleted, nil
}

// Grades

func (svc *Service) QueryAllGrades(ctx context.Context) ([]Grade, error) {
	return svc.grades.QueryAllGrades(ctx)
}

// UpsertGrade writes one cell of the grade table with find-or-create
// semantics keyed by (column, student).
func (svc *Service) UpsertGrade(ctx context.Context, ng NewGrade) (Grade, error) {
	if _, err := svc.columns.GetColumnByID(ctx, ng.ColumnID); err != nil {
		return Grade{}, err
	}
	now := time.Now().UTC()

	g, err := svc.grades.GetGrade(ctx, ng.ColumnID, ng.StudentID)
	if err != nil {
		if err != ErrGradeNotFound {
			return Grade{}, err
		}
		g = Grade{
			ColumnID:  ng.ColumnID,
			StudentID: ng.StudentID,
			Score:     ng.Score,
			Notes:     ng.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return svc.grades.CreateGrade(ctx, g)
	}
	g.Score = ng.Score
	g.Notes = ng.Notes
	g.UpdatedAt = now
	return svc.grades.UpdateGrade(ctx, g)
}

func (svc *Service) DeleteGrade(ctx context.Context, id string) error {
	return svc.grades.DeleteGrade(ctx, id)
}

// WeightedAverage computes a student's weighted average over the given
// columns on a base-10 scale. Each scored column contributes
// (score/maxScore)*weight; columns with no recorded score are excluded from
// both the numerator and the weight total, never treated as zero. With no
// scored columns the average is 0.
func WeightedAverage(studentID string, columns []Column, grades []Grade) float64 {
	var weightedSum, weightTotal float64
	for _, col := range columns {
		for _, g := range grades {
			if g.ColumnID != col.ID || g.StudentID != studentID {
				continue
			}
			if g.Score == nil {
				break
			}
			weightedSum += *g.Score / col.MaxScore * col.Weight
			weightTotal += col.Weight
			break
		}
	}
	if weightTotal > 0 {
		return weightedSum / weightTotal * 10
	}
	return 0
}

// StudentClassAverage computes one student's weighted average across the
// columns of one class, from the current store snapshot.
func (svc *Service) StudentClassAverage(ctx context.Context, studentID, classID string) (float64, error) {
	columns, err := svc.columns.QueryColumnsByClass(ctx, classID)
	if err != nil {
		return 0, err
	}
	grades, err := svc.grades.QueryAllGrades(ctx)
	if err != nil {
		return 0, err
	}
	return WeightedAverage(studentID, columns, grades), nil
}

// ClassAverages computes the weighted average of every listed student.
func (svc *Service) ClassAverages(ctx context.Context, classID string, studentIDs []string) ([]StudentAverage, error) {
	columns, err := svc.columns.QueryColumnsByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	grades, err := svc.grades.QueryAllGrades(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StudentAverage, 0, len(studentIDs))
	for _, sid := range studentIDs {
		out = append(out, StudentAverage{
			StudentID: sid,
			Average:   WeightedAverage(sid, columns, grades),
		})
	}
	return out, nil
}
