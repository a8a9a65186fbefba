package grade

import (
	"time"

	"github.com/htpham/tutorhub/core"
)

// Period is a named grading window (semester, month...). At most one is
// expected to be active at a time, but the store does not enforce it.
type Period struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate core.Date `json:"start_date"`
	EndDate   core.Date `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Column is one graded item of a class (a quiz, an exam...). Dependent on its
// Class; owns the Grade rows keyed by its id.
type Column struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ClassID     string    `json:"class_id"`
	TeacherID   string    `json:"teacher_id"`
	PeriodID    string    `json:"grade_period_id,omitempty"`
	MaxScore    float64   `json:"max_score"`
	Weight      float64   `json:"weight"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Grade is one student's score in one column. Upsert semantics keyed by
// (column, student); Score nil means entered-but-blank.
type Grade struct {
	ID        string    `json:"id"`
	ColumnID  string    `json:"grade_column_id"`
	StudentID string    `json:"student_id"`
	Score     *float64  `json:"score,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewPeriod struct {
	Name      string    `json:"name" validate:"required"`
	StartDate core.Date `json:"start_date" validate:"required"`
	EndDate   core.Date `json:"end_date" validate:"required"`
	IsActive  bool      `json:"is_active"`
}

func (np *NewPeriod) Validate() error {
	np.Name = core.CleanString(np.Name)
	return core.Validate.Struct(np)
}

type UpdatePeriod struct {
	Name      string     `json:"name"`
	StartDate *core.Date `json:"start_date"`
	EndDate   *core.Date `json:"end_date"`
	IsActive  *bool      `json:"is_active"`
}

func (up *UpdatePeriod) Validate() error {
	up.Name = core.CleanString(up.Name)
	return core.Validate.Struct(up)
}

type NewColumn struct {
	Name        string  `json:"name" validate:"required"`
	ClassID     string  `json:"class_id" validate:"required"`
	TeacherID   string  `json:"teacher_id" validate:"required"`
	PeriodID    string  `json:"grade_period_id"`
	MaxScore    float64 `json:"max_score" validate:"gt=0"`
	Weight      float64 `json:"weight" validate:"gt=0"`
	Description string  `json:"description"`
}

func (nc *NewColumn) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

type UpdateColumn struct {
	Name        string   `json:"name"`
	PeriodID    *string  `json:"grade_period_id"`
	MaxScore    *float64 `json:"max_score" validate:"omitempty,gt=0"`
	Weight      *float64 `json:"weight" validate:"omitempty,gt=0"`
	Description *string  `json:"description"`
}

func (uc *UpdateColumn) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	return core.Validate.Struct(uc)
}

// NewGrade is the upsert payload for a single cell of the grade table.
type NewGrade struct {
	ColumnID  string   `json:"grade_column_id" validate:"required"`
	StudentID string   `json:"student_id" validate:"required"`
	Score     *float64 `json:"score" validate:"omitempty,gte=0"`
	Notes     string   `json:"notes"`
}

func (ng *NewGrade) Validate() error {
	return core.Validate.Struct(ng)
}

// StudentAverage is one row of a class grade summary.
type StudentAverage struct {
	StudentID string  `json:"student_id"`
	Average   float64 `json:"average"`
}
