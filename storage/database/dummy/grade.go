package dummydb

import (
	"context"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/grade"
)

// Periods

type periodRepository struct {
	db *periodTable
}

var _ grade.PeriodRepository = (*periodRepository)(nil) // interface compliance check

func NewPeriodRepository(db *DB) grade.PeriodRepository {
	return &periodRepository{db: db.period}
}

func (repo *periodRepository) CreatePeriod(_ context.Context, p grade.Period) (grade.Period, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = core.GenerateID("GP")
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *periodRepository) QueryAllPeriods(_ context.Context) ([]grade.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	periods := make([]grade.Period, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		periods = append(periods, *p)
	}
	return periods, nil
}

func (repo *periodRepository) GetPeriodByID(_ context.Context, id string) (grade.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return grade.Period{}, grade.ErrPeriodNotFound
}

func (repo *periodRepository) UpdatePeriod(_ context.Context, p grade.Period) (grade.Period, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[p.ID]; !ok {
		return grade.Period{}, grade.ErrPeriodNotFound
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *periodRepository) DeletePeriod(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

// Columns

type columnRepository struct {
	db *columnTable
}

var _ grade.ColumnRepository = (*columnRepository)(nil) // interface compliance check

func NewColumnRepository(db *DB) grade.ColumnRepository {
	return &columnRepository{db: db.column}
}

func (repo *columnRepository) CreateColumn(_ context.Context, col grade.Column) (grade.Column, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	col.ID = core.GenerateID("GC")
	repo.db.table[col.ID] = &col
	return col, nil
}

func (repo *columnRepository) QueryAllColumns(_ context.Context) ([]grade.Column, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cols := make([]grade.Column, 0, len(repo.db.table))
	for _, col := range repo.db.table {
		cols = append(cols, *col)
	}
	return cols, nil
}

func (repo *columnRepository) QueryColumnsByClass(_ context.Context, classID string) ([]grade.Column, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var cols []grade.Column
	for _, col := range repo.db.table {
		if col.ClassID == classID {
			cols = append(cols, *col)
		}
	}
	return cols, nil
}

func (repo *columnRepository) GetColumnByID(_ context.Context, id string) (grade.Column, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if col, ok := repo.db.table[id]; ok {
		return *col, nil
	}
	return grade.Column{}, grade.ErrColumnNotFound
}

func (repo *columnRepository) UpdateColumn(_ context.Context, col grade.Column) (grade.Column, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[col.ID]; !ok {
		return grade.Column{}, grade.ErrColumnNotFound
	}
	repo.db.table[col.ID] = &col
	return col, nil
}

func (repo *columnRepository) DeleteColumn(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

// Grades

type gradeRepository struct {
	db *gradeTable
}

var _ grade.GradeRepository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.GradeRepository {
	return &gradeRepository{db: db.grade}
}

func (repo *gradeRepository) CreateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g.ID = core.GenerateID("GRD")
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) QueryAllGrades(_ context.Context) ([]grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades := make([]grade.Grade, 0, len(repo.db.table))
	for _, g := range repo.db.table {
		grades = append(grades, *g)
	}
	return grades, nil
}

func (repo *gradeRepository) QueryGradesByColumn(_ context.Context, columnID string) ([]grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var grades []grade.Grade
	for _, g := range repo.db.table {
		if g.ColumnID == columnID {
			grades = append(grades, *g)
		}
	}
	return grades, nil
}

func (repo *gradeRepository) GetGrade(_ context.Context, columnID, studentID string) (grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, g := range repo.db.table {
		if g.ColumnID == columnID && g.StudentID == studentID {
			return *g, nil
		}
	}
	return grade.Grade{}, grade.ErrGradeNotFound
}

func (repo *gradeRepository) UpdateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[g.ID]; !ok {
		return grade.Grade{}, grade.ErrGradeNotFound
	}
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
