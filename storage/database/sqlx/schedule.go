package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/schedule"
)

// Schedules

type scheduleRow struct {
	ID          string      `db:"id"`
	ClassID     string      `db:"class_id"`
	TeacherID   null.String `db:"teacher_id"`
	SubjectID   null.String `db:"subject_id"`
	ClassroomID null.String `db:"classroom_id"`
	Date        core.Date   `db:"date"`
	TimeSlot    string      `db:"time_slot"`
	StartTime   null.String `db:"start_time"`
	EndTime     null.String `db:"end_time"`
	Status      string      `db:"status"`
}

func (r scheduleRow) toDomain() schedule.Schedule {
	return schedule.Schedule{
		ID:          r.ID,
		ClassID:     r.ClassID,
		TeacherID:   r.TeacherID.String,
		SubjectID:   r.SubjectID.String,
		ClassroomID: r.ClassroomID.String,
		Date:        r.Date,
		TimeSlot:    r.TimeSlot,
		StartTime:   r.StartTime.String,
		EndTime:     r.EndTime.String,
		Status:      r.Status,
	}
}

func scheduleFromDomain(sch schedule.Schedule) scheduleRow {
	return scheduleRow{
		ID:          sch.ID,
		ClassID:     sch.ClassID,
		TeacherID:   null.NewString(sch.TeacherID, sch.TeacherID != ""),
		SubjectID:   null.NewString(sch.SubjectID, sch.SubjectID != ""),
		ClassroomID: null.NewString(sch.ClassroomID, sch.ClassroomID != ""),
		Date:        sch.Date,
		TimeSlot:    sch.TimeSlot,
		StartTime:   null.NewString(sch.StartTime, sch.StartTime != ""),
		EndTime:     null.NewString(sch.EndTime, sch.EndTime != ""),
		Status:      sch.Status,
	}
}

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) CreateSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	sch.ID = core.GenerateID("SCH")
	row := scheduleFromDomain(sch)
	const q = `INSERT INTO schedule (id, class_id, teacher_id, subject_id, classroom_id, date, time_slot, start_time, end_time, status)
	VALUES (:id, :class_id, :teacher_id, :subject_id, :classroom_id, :date, :time_slot, :start_time, :end_time, :status)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "inserting schedule")
	}
	return sch, nil
}

func (repo *scheduleRepository) QueryAllSchedules(ctx context.Context) ([]schedule.Schedule, error) {
	var rows []scheduleRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM schedule ORDER BY date, time_slot`); err != nil {
		return nil, errors.Wrap(err, "querying schedules")
	}
	scheds := make([]schedule.Schedule, 0, len(rows))
	for _, r := range rows {
		scheds = append(scheds, r.toDomain())
	}
	return scheds, nil
}

func (repo *scheduleRepository) QuerySchedulesByClass(ctx context.Context, classID string) ([]schedule.Schedule, error) {
	var rows []scheduleRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM schedule WHERE class_id = $1 ORDER BY date, time_slot`, classID); err != nil {
		return nil, errors.Wrap(err, "querying class schedules")
	}
	scheds := make([]schedule.Schedule, 0, len(rows))
	for _, r := range rows {
		scheds = append(scheds, r.toDomain())
	}
	return scheds, nil
}

func (repo *scheduleRepository) GetScheduleByID(ctx context.Context, id string) (schedule.Schedule, error) {
	var row scheduleRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM schedule WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return schedule.Schedule{}, schedule.ErrNotFound
		}
		return schedule.Schedule{}, errors.Wrap(err, "getting schedule")
	}
	return row.toDomain(), nil
}

func (repo *scheduleRepository) UpdateSchedule(ctx context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	row := scheduleFromDomain(sch)
	const q = `UPDATE schedule SET
		class_id = :class_id, teacher_id = :teacher_id, subject_id = :subject_id,
		classroom_id = :classroom_id, date = :date, time_slot = :time_slot,
		start_time = :start_time, end_time = :end_time, status = :status
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return schedule.Schedule{}, errors.Wrap(err, "updating schedule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	return sch, nil
}

func (repo *scheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM schedule WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	return nil
}

// Attendance

type attendanceRow struct {
	ID         string    `db:"id"`
	ScheduleID string    `db:"schedule_id"`
	StudentID  string    `db:"student_id"`
	Status     string    `db:"status"`
	CheckedAt  null.Time `db:"checked_at"`
}

func (r attendanceRow) toDomain() schedule.Attendance {
	att := schedule.Attendance{
		ID:         r.ID,
		ScheduleID: r.ScheduleID,
		StudentID:  r.StudentID,
		Status:     r.Status,
	}
	if r.CheckedAt.Valid {
		t := r.CheckedAt.Time
		att.CheckedAt = &t
	}
	return att
}

func attendanceFromDomain(att schedule.Attendance) attendanceRow {
	row := attendanceRow{
		ID:         att.ID,
		ScheduleID: att.ScheduleID,
		StudentID:  att.StudentID,
		Status:     att.Status,
	}
	if att.CheckedAt != nil {
		row.CheckedAt = null.TimeFrom(att.CheckedAt.UTC())
	}
	return row
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ schedule.AttendanceRepository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) schedule.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att schedule.Attendance) (schedule.Attendance, error) {
	att.ID = core.GenerateID("ATT")
	row := attendanceFromDomain(att)
	const q = `INSERT INTO attendance (id, schedule_id, student_id, status, checked_at)
	VALUES (:id, :schedule_id, :student_id, :status, :checked_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return schedule.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return att, nil
}

func (repo *attendanceRepository) QueryAllAttendance(ctx context.Context) ([]schedule.Attendance, error) {
	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM attendance`); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	atts := make([]schedule.Attendance, 0, len(rows))
	for _, r := range rows {
		atts = append(atts, r.toDomain())
	}
	return atts, nil
}

func (repo *attendanceRepository) QueryAttendanceBySchedule(ctx context.Context, scheduleID string) ([]schedule.Attendance, error) {
	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM attendance WHERE schedule_id = $1`, scheduleID); err != nil {
		return nil, errors.Wrap(err, "querying schedule attendance")
	}
	atts := make([]schedule.Attendance, 0, len(rows))
	for _, r := range rows {
		atts = append(atts, r.toDomain())
	}
	return atts, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, scheduleID, studentID string) (schedule.Attendance, error) {
	var row attendanceRow
	const q = `SELECT * FROM attendance WHERE schedule_id = $1 AND student_id = $2 LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, q, scheduleID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return schedule.Attendance{}, schedule.ErrAttendanceNotFound
		}
		return schedule.Attendance{}, errors.Wrap(err, "getting attendance")
	}
	return row.toDomain(), nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, att schedule.Attendance) (schedule.Attendance, error) {
	row := attendanceFromDomain(att)
	const q = `UPDATE attendance SET status = :status, checked_at = :checked_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return schedule.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.Attendance{}, schedule.ErrAttendanceNotFound
	}
	return att, nil
}

func (repo *attendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	return nil
}
