package dummydb

import (
	"context"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/schedule"
)

// Schedules

type scheduleRepository struct {
	db *scheduleTable
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db.schedule}
}

func (repo *scheduleRepository) CreateSchedule(_ context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sch.ID = core.GenerateID("SCH")
	repo.db.table[sch.ID] = &sch
	return sch, nil
}

func (repo *scheduleRepository) QueryAllSchedules(_ context.Context) ([]schedule.Schedule, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	scheds := make([]schedule.Schedule, 0, len(repo.db.table))
	for _, sch := range repo.db.table {
		scheds = append(scheds, *sch)
	}
	return scheds, nil
}

func (repo *scheduleRepository) QuerySchedulesByClass(_ context.Context, classID string) ([]schedule.Schedule, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var scheds []schedule.Schedule
	for _, sch := range repo.db.table {
		if sch.ClassID == classID {
			scheds = append(scheds, *sch)
		}
	}
	return scheds, nil
}

func (repo *scheduleRepository) GetScheduleByID(_ context.Context, id string) (schedule.Schedule, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sch, ok := repo.db.table[id]; ok {
		return *sch, nil
	}
	return schedule.Schedule{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) UpdateSchedule(_ context.Context, sch schedule.Schedule) (schedule.Schedule, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[sch.ID]; !ok {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	repo.db.table[sch.ID] = &sch
	return sch, nil
}

func (repo *scheduleRepository) DeleteSchedule(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

// Attendance

type attendanceRepository struct {
	db *attendanceTable
}

var _ schedule.AttendanceRepository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) schedule.AttendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) CreateAttendance(_ context.Context, att schedule.Attendance) (schedule.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	att.ID = core.GenerateID("ATT")
	repo.db.table[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) QueryAllAttendance(_ context.Context) ([]schedule.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	atts := make([]schedule.Attendance, 0, len(repo.db.table))
	for _, att := range repo.db.table {
		atts = append(atts, *att)
	}
	return atts, nil
}

func (repo *attendanceRepository) QueryAttendanceBySchedule(_ context.Context, scheduleID string) ([]schedule.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var atts []schedule.Attendance
	for _, att := range repo.db.table {
		if att.ScheduleID == scheduleID {
			atts = append(atts, *att)
		}
	}
	return atts, nil
}

func (repo *attendanceRepository) GetAttendance(_ context.Context, scheduleID, studentID string) (schedule.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, att := range repo.db.table {
		if att.ScheduleID == scheduleID && att.StudentID == studentID {
			return *att, nil
		}
	}
	return schedule.Attendance{}, schedule.ErrAttendanceNotFound
}

func (repo *attendanceRepository) UpdateAttendance(_ context.Context, att schedule.Attendance) (schedule.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[att.ID]; !ok {
		return schedule.Attendance{}, schedule.ErrAttendanceNotFound
	}
	repo.db.table[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) DeleteAttendance(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
