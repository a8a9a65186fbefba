package schedule

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/htpham/tutorhub/core"
)

var (
	// errors
	ErrNotFound           = errors.New("schedule not found")
	ErrAttendanceNotFound = errors.New("attendance not found")
)

type (
	Repository interface {
		CreateSchedule(ctx context.Context, sch Schedule) (Schedule, error)
		QueryAllSchedules(ctx context.Context) ([]Schedule, error)
		QuerySchedulesByClass(ctx context.Context, classID string) ([]Schedule, error)
		GetScheduleByID(ctx context.Context, id string) (Schedule, error)
		UpdateSchedule(ctx context.Context, sch Schedule) (Schedule, error)
		DeleteSchedule(ctx context.Context, id string) error
	}

	AttendanceRepository interface {
		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		QueryAllAttendance(ctx context.Context) ([]Attendance, error)
		QueryAttendanceBySchedule(ctx context.Context, scheduleID string) ([]Attendance, error)
		GetAttendance(ctx context.Context, scheduleID, studentID string) (Attendance, error)
		UpdateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		DeleteAttendance(ctx context.Context, id string) error
	}

	Service struct {
		schedules  Repository
		attendance AttendanceRepository
	}
)

func NewService(schedules Repository, attendance AttendanceRepository) *Service {
	return &Service{schedules: schedules, attendance: attendance}
}

func (svc *Service) Create(ctx context.Context, ns NewSchedule) (Schedule, error) {
	status := ns.Status
	if status == "" {
		status = StatusScheduled
	}
	sch := Schedule{
		ClassID:     ns.ClassID,
		TeacherID:   ns.TeacherID,
		SubjectID:   ns.SubjectID,
		ClassroomID: ns.ClassroomID,
		Date:        ns.Date,
		TimeSlot:    ns.TimeSlot,
		StartTime:   ns.StartTime,
		EndTime:     ns.EndTime,
		Status:      status,
	}
	return svc.schedules.CreateSchedule(ctx, sch)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Schedule, error) {
	return svc.schedules.QueryAllSchedules(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Schedule, error) {
	return svc.schedules.GetScheduleByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSchedule) (Schedule, error) {
	sch, err := svc.schedules.GetScheduleByID(ctx, id)
	if err != nil {
		return Schedule{}, err
	}
	if us.ClassID != "" {
		sch.ClassID = us.ClassID
	}
	if us.TeacherID != "" {
		sch.TeacherID = us.TeacherID
	}
	if us.SubjectID != nil {
		sch.SubjectID = *us.SubjectID
	}
	if us.ClassroomID != nil {
		sch.ClassroomID = *us.ClassroomID
	}
	if us.Date != nil {
		sch.Date = *us.Date
	}
	if us.TimeSlot != "" {
		sch.TimeSlot = us.TimeSlot
	}
	if us.StartTime != "" {
		sch.StartTime = us.StartTime
	}
	if us.EndTime != "" {
		sch.EndTime = us.EndTime
	}
	if us.Status != "" {
		sch.Status = us.Status
	}
	return svc.schedules.UpdateSchedule(ctx, sch)
}

// Delete removes a schedule and every attendance row referencing it,
// returning the number of attendance rows removed. Sequential best-effort:
// a failure mid-sheet leaves the earlier deletions applied.
func (svc *Service) Delete(ctx context.Context, id string) (int, error) {
	atts, err := svc.attendance.QueryAttendanceBySchedule(ctx, id)
	if err != nil {
		return 0, err
	}
	var deleted int
	for _, att := range atts {
		if err := svc.attendance.DeleteAttendance(ctx, att.ID); err != nil {
			return deleted, pkgerrors.Wrapf(err, "deleting attendance %s", att.ID)
		}
		deleted++
	}
	if err := svc.schedules.DeleteSchedule(ctx, id); err != nil {
		return deleted, pkgerrors.Wrap(err, "deleting schedule row")
	}
	return deleted, nil
}

// DeleteByClass deletes every schedule of a class, cascading each schedule's
// attendance. Returns counts of deleted schedules and attendance rows. This
// is the entry point school.Service drives when a class is deleted.
func (svc *Service) DeleteByClass(ctx context.Context, classID string) (int, int, error) {
	scheds, err := svc.schedules.QuerySchedulesByClass(ctx, classID)
	if err != nil {
		return 0, 0, err
	}
	var nScheds, nAtts int
	for _, sch := range scheds {
		n, err := svc.Delete(ctx, sch.ID)
		nAtts += n
		if err != nil {
			return nScheds, nAtts, pkgerrors.Wrapf(err, "cascading schedule %s", sch.ID)
		}
		nScheds++
	}
	return nScheds, nAtts, nil
}

// WeekSchedules returns the schedules whose date falls in the 7-day window
// starting at weekStart, inclusive on both ends. Callers use it to probe a
// destination week for conflicts before a copy.
func (svc *Service) WeekSchedules(ctx context.Context, weekStart core.Date) ([]Schedule, error) {
	all, err := svc.schedules.QueryAllSchedules(ctx)
	if err != nil {
		return nil, err
	}
	var week []Schedule
	for _, sch := range all {
		offset := weekStart.DaysUntil(sch.Date)
		if offset >= 0 && offset < 7 {
			week = append(week, sch)
		}
	}
	return week, nil
}

// CopyWeek duplicates the source week's schedules into the target week,
// shifting each date by the whole-week offset and resetting status to
// scheduled. Source rows are never touched; the copy purely appends, so the
// caller owns destination-conflict handling.
func (svc *Service) CopyWeek(ctx context.Context, fromWeekStart, toWeekStart core.Date) ([]Schedule, error) {
	daysDiff := fromWeekStart.DaysUntil(toWeekStart)
	source, err := svc.WeekSchedules(ctx, fromWeekStart)
	if err != nil {
		return nil, err
	}

	copied := make([]Schedule, 0, len(source))
	for _, sch := range source {
		dup := Schedule{
			ClassID:     sch.ClassID,
			TeacherID:   sch.TeacherID,
			SubjectID:   sch.SubjectID,
			ClassroomID: sch.ClassroomID,
			Date:        sch.Date.AddDays(daysDiff),
			TimeSlot:    sch.TimeSlot,
			StartTime:   sch.StartTime,
			EndTime:     sch.EndTime,
			Status:      StatusScheduled, // completed/cancelled never carries over
		}
		created, err := svc.schedules.CreateSchedule(ctx, dup)
		if err != nil {
			return copied, pkgerrors.Wrapf(err, "copying schedule %s", sch.ID)
		}
		copied = append(copied, created)
	}
	return copied, nil
}

// DeleteWeek removes every schedule in the week starting at weekStart,
// cascading attendance. Used for explicit delete-then-copy overwrites.
func (svc *Service) DeleteWeek(ctx context.Context, weekStart core.Date) (int, error) {
	week, err := svc.WeekSchedules(ctx, weekStart)
	if err != nil {
		return 0, err
	}
	var deleted int
	for _, sch := range week {
		if _, err := svc.Delete(ctx, sch.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Attendance sheet

func (svc *Service) QueryAllAttendance(ctx context.Context) ([]Attendance, error) {
	return svc.attendance.QueryAllAttendance(ctx)
}

func (svc *Service) ScheduleAttendance(ctx context.Context, scheduleID string) ([]Attendance, error) {
	if _, err := svc.schedules.GetScheduleByID(ctx, scheduleID); err != nil {
		return nil, err
	}
	return svc.attendance.QueryAttendanceBySchedule(ctx, scheduleID)
}

// MarkAttendance records a student's status for a schedule with find-or-create
// semantics, keeping one row per (schedule, student) pair.
func (svc *Service) MarkAttendance(ctx context.Context, scheduleID string, sa SetAttendance) (Attendance, error) {
	if _, err := svc.schedules.GetScheduleByID(ctx, scheduleID); err != nil {
		return Attendance{}, err
	}
	now := time.Now().UTC()

	att, err := svc.attendance.GetAttendance(ctx, scheduleID, sa.StudentID)
	if err != nil {
		if err != ErrAttendanceNotFound {
			return Attendance{}, err
		}
		att = Attendance{
			ScheduleID: scheduleID,
			StudentID:  sa.StudentID,
			Status:     sa.Status,
			CheckedAt:  &now,
		}
		return svc.attendance.CreateAttendance(ctx, att)
	}
	att.Status = sa.Status
	att.CheckedAt = &now
	return svc.attendance.UpdateAttendance(ctx, att)
}

// ResetAttendance clears a schedule's whole sheet.
func (svc *Service) ResetAttendance(ctx context.Context, scheduleID string) (int, error) {
	atts, err := svc.attendance.QueryAttendanceBySchedule(ctx, scheduleID)
	if err != nil {
		return 0, err
	}
	var deleted int
	for _, att := range atts {
		if err := svc.attendance.DeleteAttendance(ctx, att.ID); err != nil {
			return deleted, pkgerrors.Wrapf(err, "deleting attendance %s", att.ID)
		}
		deleted++
	}
	return deleted, nil
}
