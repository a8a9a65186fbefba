package schedule

import (
	"time"

	"github.com/htpham/tutorhub/core"
)

// Time slots
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
)

// Schedule statuses
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Attendance statuses
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

// Schedule is a single teaching session of a class on a given date. It is
// dependent on its Class: deleting the class deletes its schedules.
type Schedule struct {
	ID          string    `json:"id"`
	ClassID     string    `json:"class_id"`
	TeacherID   string    `json:"teacher_id"`
	SubjectID   string    `json:"subject_id,omitempty"`
	ClassroomID string    `json:"classroom_id,omitempty"`
	Date        core.Date `json:"date"`
	TimeSlot    string    `json:"time_slot"`
	StartTime   string    `json:"start_time"` // "HH:MM"
	EndTime     string    `json:"end_time"`   // "HH:MM"
	Status      string    `json:"status"`
}

// Attendance is one student's check-in for one schedule. Intended cardinality
// is one row per (schedule, student) pair; the store does not enforce it, so
// writes go through find-or-create.
type Attendance struct {
	ID         string     `json:"id"`
	ScheduleID string     `json:"schedule_id"`
	StudentID  string     `json:"student_id"`
	Status     string     `json:"status"`
	CheckedAt  *time.Time `json:"checked_at,omitempty"` // UTC
}

type NewSchedule struct {
	ClassID     string    `json:"class_id" validate:"required"`
	TeacherID   string    `json:"teacher_id" validate:"required"`
	SubjectID   string    `json:"subject_id"`
	ClassroomID string    `json:"classroom_id"`
	Date        core.Date `json:"date" validate:"required"`
	TimeSlot    string    `json:"time_slot" validate:"required,oneof=morning afternoon evening"`
	StartTime   string    `json:"start_time" validate:"required"`
	EndTime     string    `json:"end_time" validate:"required"`
	Status      string    `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
}

func (ns *NewSchedule) Validate() error {
	return core.Validate.Struct(ns)
}

type UpdateSchedule struct {
	ClassID     string     `json:"class_id"`
	TeacherID   string     `json:"teacher_id"`
	SubjectID   *string    `json:"subject_id"`
	ClassroomID *string    `json:"classroom_id"`
	Date        *core.Date `json:"date"`
	TimeSlot    string     `json:"time_slot" validate:"omitempty,oneof=morning afternoon evening"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Status      string     `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
}

func (us *UpdateSchedule) Validate() error {
	return core.Validate.Struct(us)
}

// CopyWeekRequest asks for one week's schedules to be duplicated into another
// week. The copy primitive appends blindly; Overwrite tells the caller-side
// conflict handling to clear the destination week first.
type CopyWeekRequest struct {
	FromWeekStart core.Date `json:"from_week_start" validate:"required"`
	ToWeekStart   core.Date `json:"to_week_start" validate:"required"`
	Overwrite     bool      `json:"overwrite"`
}

func (r *CopyWeekRequest) Validate() error {
	return core.Validate.Struct(r)
}

type SetAttendance struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present absent late"`
}

func (sa *SetAttendance) Validate() error {
	return core.Validate.Struct(sa)
}
