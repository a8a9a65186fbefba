package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/grade"
)

// Periods

type periodRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	StartDate core.Date `db:"start_date"`
	EndDate   core.Date `db:"end_date"`
	IsActive  bool      `db:"is_active"`
	CreatedAt null.Time `db:"created_at"`
}

func (r periodRow) toDomain() grade.Period {
	return grade.Period{
		ID:        r.ID,
		Name:      r.Name,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.Time,
	}
}

func periodFromDomain(p grade.Period) periodRow {
	return periodRow{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		IsActive:  p.IsActive,
		CreatedAt: null.NewTime(p.CreatedAt.UTC(), !p.CreatedAt.IsZero()),
	}
}

type periodRepository struct {
	db *sqlx.DB
}

var _ grade.PeriodRepository = (*periodRepository)(nil) // interface compliance check

func NewPeriodRepository(db *sqlx.DB) grade.PeriodRepository {
	return &periodRepository{db: db}
}

func (repo *periodRepository) CreatePeriod(ctx context.Context, p grade.Period) (grade.Period, error) {
	p.ID = core.GenerateID("GP")
	row := periodFromDomain(p)
	const q = `INSERT INTO grade_period (id, name, start_date, end_date, is_active, created_at)
	VALUES (:id, :name, :start_date, :end_date, :is_active, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return grade.Period{}, errors.Wrap(err, "inserting grade period")
	}
	return p, nil
}

func (repo *periodRepository) QueryAllPeriods(ctx context.Context) ([]grade.Period, error) {
	var rows []periodRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM grade_period ORDER BY start_date`); err != nil {
		return nil, errors.Wrap(err, "querying grade periods")
	}
	periods := make([]grade.Period, 0, len(rows))
	for _, r := range rows {
		periods = append(periods, r.toDomain())
	}
	return periods, nil
}

func (repo *periodRepository) GetPeriodByID(ctx context.Context, id string) (grade.Period, error) {
	var row periodRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM grade_period WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return grade.Period{}, grade.ErrPeriodNotFound
		}
		return grade.Period{}, errors.Wrap(err, "getting grade period")
	}
	return row.toDomain(), nil
}

func (repo *periodRepository) UpdatePeriod(ctx context.Context, p grade.Period) (grade.Period, error) {
	row := periodFromDomain(p)
	const q = `UPDATE grade_period SET
		name = :name, start_date = :start_date, end_date = :end_date, is_active = :is_active
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return grade.Period{}, errors.Wrap(err, "updating grade period")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return grade.Period{}, grade.ErrPeriodNotFound
	}
	return p, nil
}

func (repo *periodRepository) DeletePeriod(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM grade_period WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting grade period")
	}
	return nil
}

// Columns

type columnRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	ClassID     string      `db:"class_id"`
	TeacherID   null.String `db:"teacher_id"`
	PeriodID    null.String `db:"grade_period_id"`
	MaxScore    float64     `db:"max_score"`
	Weight      float64     `db:"weight"`
	Description null.String `db:"description"`
	CreatedAt   null.Time   `db:"created_at"`
}

func (r columnRow) toDomain() grade.Column {
	return grade.Column{
		ID:          r.ID,
		Name:        r.Name,
		ClassID:     r.ClassID,
		TeacherID:   r.TeacherID.String,
		PeriodID:    r.PeriodID.String,
		MaxScore:    r.MaxScore,
		Weight:      r.Weight,
		Description: r.Description.String,
		CreatedAt:   r.CreatedAt.Time,
	}
}

func columnFromDomain(col grade.Column) columnRow {
	return columnRow{
		ID:          col.ID,
		Name:        col.Name,
		ClassID:     col.ClassID,
		TeacherID:   null.NewString(col.TeacherID, col.TeacherID != ""),
		PeriodID:    null.NewString(col.PeriodID, col.PeriodID != ""),
		MaxScore:    col.MaxScore,
		Weight:      col.Weight,
		Description: null.NewString(col.Description, col.Description != ""),
		CreatedAt:   null.NewTime(col.CreatedAt.UTC(), !col.CreatedAt.IsZero()),
	}
}

type columnRepository struct {
	db *sqlx.DB
}

var _ grade.ColumnRepository = (*columnRepository)(nil) // interface compliance check

func NewColumnRepository(db *sqlx.DB) grade.ColumnRepository {
	return &columnRepository{db: db}
}

func (repo *columnRepository) CreateColumn(ctx context.Context, col grade.Column) (grade.Column, error) {
	col.ID = core.GenerateID("GC")
	row := columnFromDomain(col)
	const q = `INSERT INTO grade_column (id, name, class_id, teacher_id, grade_period_id, max_score, weight, description, created_at)
	VALUES (:id, :name, :class_id, :teacher_id, :grade_period_id, :max_score, :weight, :description, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return grade.Column{}, errors.Wrap(err, "inserting grade column")
	}
	return col, nil
}

func (repo *columnRepository) QueryAllColumns(ctx context.Context) ([]grade.Column, error) {
	var rows []columnRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM grade_column ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying grade columns")
	}
	cols := make([]grade.Column, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, r.toDomain())
	}
	return cols, nil
}

func (repo *columnRepository) QueryColumnsByClass(ctx context.Context, classID string) ([]grade.Column, error) {
	var rows []columnRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM grade_column WHERE class_id = $1 ORDER BY created_at`, classID); err != nil {
		return nil, errors.Wrap(err, "querying class grade columns")
	}
	cols := make([]grade.Column, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, r.toDomain())
	}
	return cols, nil
}

func (repo *columnRepository) GetColumnByID(ctx context.Context, id string) (grade.Column, error) {
	var row columnRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM grade_column WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return grade.Column{}, grade.ErrColumnNotFound
		}
		return grade.Column{}, errors.Wrap(err, "getting grade column")
	}
	return row.toDomain(), nil
}

func (repo *columnRepository) UpdateColumn(ctx context.Context, col grade.Column) (grade.Column, error) {
	row := columnFromDomain(col)
	const q = `UPDATE grade_column SET
		name = :name, grade_period_id = :grade_period_id, max_score = :max_score,
		weight = :weight, description = :description
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return grade.Column{}, errors.Wrap(err, "updating grade column")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return grade.Column{}, grade.ErrColumnNotFound
	}
	return col, nil
}

func (repo *columnRepository) DeleteColumn(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM grade_column WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting grade column")
	}
	return nil
}

// Grades

type gradeRow struct {
	ID        string       `db:"id"`
	ColumnID  string       `db:"grade_column_id"`
	StudentID string       `db:"student_id"`
	Score     null.Float64 `db:"score"`
	Notes     null.String  `db:"notes"`
	CreatedAt null.Time    `db:"created_at"`
	UpdatedAt null.Time    `db:"updated_at"`
}

func (r gradeRow) toDomain() grade.Grade {
	return grade.Grade{
		ID:        r.ID,
		ColumnID:  r.ColumnID,
		StudentID: r.StudentID,
		Score:     r.Score.Ptr(),
		Notes:     r.Notes.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func gradeFromDomain(g grade.Grade) gradeRow {
	return gradeRow{
		ID:        g.ID,
		ColumnID:  g.ColumnID,
		StudentID: g.StudentID,
		Score:     null.Float64FromPtr(g.Score),
		Notes:     null.NewString(g.Notes, g.Notes != ""),
		CreatedAt: null.NewTime(g.CreatedAt.UTC(), !g.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(g.UpdatedAt.UTC(), !g.UpdatedAt.IsZero()),
	}
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.GradeRepository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) grade.GradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	g.ID = core.GenerateID("GRD")
	row := gradeFromDomain(g)
	const q = `INSERT INTO grade (id, grade_column_id, student_id, score, notes, created_at, updated_at)
	VALUES (:id, :grade_column_id, :student_id, :score, :notes, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo *gradeRepository) QueryAllGrades(ctx context.Context) ([]grade.Grade, error) {
	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM grade`); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]grade.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, r.toDomain())
	}
	return grades, nil
}

func (repo *gradeRepository) QueryGradesByColumn(ctx context.Context, columnID string) ([]grade.Grade, error) {
	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM grade WHERE grade_column_id = $1`, columnID); err != nil {
		return nil, errors.Wrap(err, "querying column grades")
	}
	grades := make([]grade.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, r.toDomain())
	}
	return grades, nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, columnID, studentID string) (grade.Grade, error) {
	var row gradeRow
	const q = `SELECT * FROM grade WHERE grade_column_id = $1 AND student_id = $2 LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, q, columnID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return grade.Grade{}, grade.ErrGradeNotFound
		}
		return grade.Grade{}, errors.Wrap(err, "getting grade")
	}
	return row.toDomain(), nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	row := gradeFromDomain(g)
	const q = `UPDATE grade SET score = :score, notes = :notes, updated_at = :updated_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "updating grade")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return grade.Grade{}, grade.ErrGradeNotFound
	}
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM grade WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return nil
}
