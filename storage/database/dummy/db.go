// Package dummydb is an in-memory storage backend used in tests and for
// local development without a database.
package dummydb

import (
	"sync"

	"github.com/htpham/tutorhub/core/grade"
	"github.com/htpham/tutorhub/core/schedule"
	"github.com/htpham/tutorhub/core/school"
	"github.com/htpham/tutorhub/core/user"
)

type (
	DB struct {
		student    *studentTable
		class      *classTable
		classroom  *classroomTable
		subject    *subjectTable
		schedule   *scheduleTable
		attendance *attendanceTable
		period     *periodTable
		column     *columnTable
		grade      *gradeTable
		user       *userTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*school.Student
	}
	classTable struct {
		sync.RWMutex
		table map[string]*school.Class
	}
	classroomTable struct {
		sync.RWMutex
		table map[string]*school.Classroom
	}
	subjectTable struct {
		sync.RWMutex
		table map[string]*school.Subject
	}
	scheduleTable struct {
		sync.RWMutex
		table map[string]*schedule.Schedule
	}
	attendanceTable struct {
		sync.RWMutex
		table map[string]*schedule.Attendance
	}
	periodTable struct {
		sync.RWMutex
		table map[string]*grade.Period
	}
	columnTable struct {
		sync.RWMutex
		table map[string]*grade.Column
	}
	gradeTable struct {
		sync.RWMutex
		table map[string]*grade.Grade
	}
	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
)

func Open() (*DB, error) {
	db := &DB{
		student:    &studentTable{table: make(map[string]*school.Student)},
		class:      &classTable{table: make(map[string]*school.Class)},
		classroom:  &classroomTable{table: make(map[string]*school.Classroom)},
		subject:    &subjectTable{table: make(map[string]*school.Subject)},
		schedule:   &scheduleTable{table: make(map[string]*schedule.Schedule)},
		attendance: &attendanceTable{table: make(map[string]*schedule.Attendance)},
		period:     &periodTable{table: make(map[string]*grade.Period)},
		column:     &columnTable{table: make(map[string]*grade.Column)},
		grade:      &gradeTable{table: make(map[string]*grade.Grade)},
		user:       &userTable{table: make(map[string]*user.User)},
	}
	return db, nil
}
