// Package projection maintains an in-memory snapshot of every entity
// collection for cheap cross-entity reads. The snapshot is refreshed
// wholesale from the backing store and patched optimistically after writes.
package projection

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/grade"
	"github.com/htpham/tutorhub/core/schedule"
	"github.com/htpham/tutorhub/core/school"
)

type (
	// SchoolSource exposes the roster collections for bulk reads.
	SchoolSource interface {
		QueryAllStudents(ctx context.Context) ([]school.Student, error)
		QueryAllClasses(ctx context.Context) ([]school.Class, error)
		QueryAllClassrooms(ctx context.Context) ([]school.Classroom, error)
		QueryAllSubjects(ctx context.Context) ([]school.Subject, error)
	}

	// ScheduleSource exposes the schedule collections for bulk reads.
	ScheduleSource interface {
		QueryAll(ctx context.Context) ([]schedule.Schedule, error)
		QueryAllAttendance(ctx context.Context) ([]schedule.Attendance, error)
	}

	// GradeSource exposes the grade collections for bulk reads.
	GradeSource interface {
		QueryAllPeriods(ctx context.Context) ([]grade.Period, error)
		QueryAllColumns(ctx context.Context) ([]grade.Column, error)
		QueryAllGrades(ctx context.Context) ([]grade.Grade, error)
	}
)

// Snapshot is one immutable view of every collection. Maps are keyed by
// entity ID and never mutated after publication; patches copy-on-write.
type Snapshot struct {
	Students     map[string]school.Student
	Classes      map[string]school.Class
	Classrooms   map[string]school.Classroom
	Subjects     map[string]school.Subject
	Schedules    map[string]schedule.Schedule
	Attendance   map[string]schedule.Attendance
	GradePeriods map[string]grade.Period
	GradeColumns map[string]grade.Column
	Grades       map[string]grade.Grade
	FetchedAt    time.Time
}

type Store struct {
	schoolSrc   SchoolSource
	scheduleSrc ScheduleSource
	gradeSrc    GradeSource
	logger      core.Logger

	mu   sync.RWMutex
	snap *Snapshot
	err  error
}

func NewStore(schoolSrc SchoolSource, scheduleSrc ScheduleSource, gradeSrc GradeSource, logger core.Logger) *Store {
	return &Store{
		schoolSrc:   schoolSrc,
		scheduleSrc: scheduleSrc,
		gradeSrc:    gradeSrc,
		logger:      logger,
		snap:        &Snapshot{},
	}
}

// Current returns the latest published snapshot. Callers must treat it as
// read-only.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Err reports the error of the last failed Refresh, or nil after a
// successful one.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Refresh fetches every collection in parallel and swaps the snapshot
// wholesale. On any fetch failure the previous snapshot is kept and the
// failure is recorded.
func (s *Store) Refresh(ctx context.Context) error {
	next := &Snapshot{FetchedAt: time.Now().UTC()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		students, err := s.schoolSrc.QueryAllStudents(ctx)
		if err != nil {
			return pkgerrors.Wrap(err, "fetching students")
		}
		next.Students = make(map[string]school.Student, len(students))
		for _, st := range students {
			next.Students[st.ID] = st
		}
		return nil
	})
	g.Go(func() error {
		classes, err := s.schoolSrc.QueryAllClasses(ctx)
		if err != nil {
			return pkgerrors.Wrap(err, "fetching classes")
		}
		next.Classes = make(map[string]school.Class, len(classes))
		for _, cl := range classes {
			next.Classes[cl.ID] = cl
		}
		return nil
	})
	g.Go(func() error {
		rooms, err := s.schoolSrc.QueryAllClassrooms(ctx)
		if err != nil {
			return pkgerrors.Wrap(err, "fetching classrooms")
		}
		next.Classrooms = make(map[string]school.Classroom, len(rooms))
		for _, r := range rooms {
			next.Classrooms[r.ID] = r
		}
		return nil
	})
	g.Go(func() error {
		subjects, err := s.schoolSrc.QueryAllSubjects(ctx)
		if err != nil {
			return pkgerrors.Wrap(err, "fetching subjects")
		}
		next.Subjects = make(map[string]school.Subject, len(subjects))
		for _, sub := range subjects {
			next.Subjects[sub.ID] = sub
		}
		return nil
	})
	g.Go(func() error {
		scheds, err := s.scheduleSrc.QueryAll(ctx)
		if err != nil {
			return pkgerrors.Wrap(err, "fetching schedules")
		}
		next.Schedules = make(map[string]schedule.Schedule, len(scheds))
		for _, sch := range scheds {
			next.Schedules[sch.ID] = sch
		}
		return nil
	})
	g.Go(func() error {
		atts, err := s.scheduleSrc.QueryAllAttendance(ctx)
		if err != nil {
			return pkgerrors.Wrap(err, "fetching attendance")
		}
		next.Attendance = make(map[string]schedule.Attendance, len(atts))
		for _, att := range atts {
			next.Attendance[att.ID] = att
		}
		return nil
	})
	g.Go(func() error {
		periods, err := s.gradeSrc.QueryAllPeriods(ctx)
		if err != nil {
			return pkgerrors.Wrap(err, "fetching grade periods")
		}
		next.GradePeriods = make(map[string]grade.Period, len(periods))
		for _, p := range periods {
			next.GradePeriods[p.ID] = p
		}
		return nil
	})
	g.Go(func() error {
		cols, err := s.gradeSrc.QueryAllColumns(ctx)
		if err != nil {
			return pkgerrors.Wrap(err, "fetching grade columns")
		}
		next.GradeColumns = make(map[string]grade.Column, len(cols))
		for _, col := range cols {
			next.GradeColumns[col.ID] = col
		}
		return nil
	})
	g.Go(func() error {
		grades, err := s.gradeSrc.QueryAllGrades(ctx)
		if err != nil {
			return pkgerrors.Wrap(err, "fetching grades")
		}
		next.Grades = make(map[string]grade.Grade, len(grades))
		for _, gr := range grades {
			next.Grades[gr.ID] = gr
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.logger.Error("projection refresh failed", "error", err)
		return err
	}

	s.mu.Lock()
	s.snap = next
	s.err = nil
	s.mu.Unlock()
	return nil
}

// patch clones the current snapshot shallowly, applies fn to the copy of
// the touched maps and publishes the result.
func (s *Store) patch(fn func(next *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := *s.snap
	fn(&next)
	s.snap = &next
}

func cloneStudents(m map[string]school.Student) map[string]school.Student {
	out := make(map[string]school.Student, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneClasses(m map[string]school.Class) map[string]school.Class {
	out := make(map[string]school.Class, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneClassrooms(m map[string]school.Classroom) map[string]school.Classroom {
	out := make(map[string]school.Classroom, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSubjects(m map[string]school.Subject) map[string]school.Subject {
	out := make(map[string]school.Subject, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSchedules(m map[string]schedule.Schedule) map[string]schedule.Schedule {
	out := make(map[string]schedule.Schedule, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAttendance(m map[string]schedule.Attendance) map[string]schedule.Attendance {
	out := make(map[string]schedule.Attendance, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePeriods(m map[string]grade.Period) map[string]grade.Period {
	out := make(map[string]grade.Period, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneColumns(m map[string]grade.Column) map[string]grade.Column {
	out := make(map[string]grade.Column, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneGrades(m map[string]grade.Grade) map[string]grade.Grade {
	out := make(map[string]grade.Grade, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Optimistic patches. Each clones only the maps it touches.

func (s *Store) UpsertStudent(st school.Student) {
	s.patch(func(next *Snapshot) {
		next.Students = cloneStudents(next.Students)
		next.Students[st.ID] = st
	})
}

func (s *Store) DropStudent(id string) {
	s.patch(func(next *Snapshot) {
		next.Students = cloneStudents(next.Students)
		delete(next.Students, id)
	})
}

func (s *Store) UpsertClass(cl school.Class) {
	s.patch(func(next *Snapshot) {
		next.Classes = cloneClasses(next.Classes)
		next.Classes[cl.ID] = cl
	})
}

func (s *Store) DropClass(id string) {
	s.patch(func(next *Snapshot) {
		next.Classes = cloneClasses(next.Classes)
		delete(next.Classes, id)
	})
}

func (s *Store) UpsertClassroom(r school.Classroom) {
	s.patch(func(next *Snapshot) {
		next.Classrooms = cloneClassrooms(next.Classrooms)
		next.Classrooms[r.ID] = r
	})
}

func (s *Store) DropClassroom(id string) {
	s.patch(func(next *Snapshot) {
		next.Classrooms = cloneClassrooms(next.Classrooms)
		delete(next.Classrooms, id)
	})
}

func (s *Store) UpsertSubject(sub school.Subject) {
	s.patch(func(next *Snapshot) {
		next.Subjects = cloneSubjects(next.Subjects)
		next.Subjects[sub.ID] = sub
	})
}

func (s *Store) DropSubject(id string) {
	s.patch(func(next *Snapshot) {
		next.Subjects = cloneSubjects(next.Subjects)
		delete(next.Subjects, id)
	})
}

func (s *Store) UpsertSchedule(sch schedule.Schedule) {
	s.patch(func(next *Snapshot) {
		next.Schedules = cloneSchedules(next.Schedules)
		next.Schedules[sch.ID] = sch
	})
}

// DropSchedule removes the schedule and its attendance rows.
func (s *Store) DropSchedule(id string) {
	s.patch(func(next *Snapshot) {
		next.Schedules = cloneSchedules(next.Schedules)
		delete(next.Schedules, id)
		next.Attendance = cloneAttendance(next.Attendance)
		for attID, att := range next.Attendance {
			if att.ScheduleID == id {
				delete(next.Attendance, attID)
			}
		}
	})
}

func (s *Store) UpsertAttendance(att schedule.Attendance) {
	s.patch(func(next *Snapshot) {
		next.Attendance = cloneAttendance(next.Attendance)
		next.Attendance[att.ID] = att
	})
}

func (s *Store) DropAttendance(id string) {
	s.patch(func(next *Snapshot) {
		next.Attendance = cloneAttendance(next.Attendance)
		delete(next.Attendance, id)
	})
}

func (s *Store) UpsertGradePeriod(p grade.Period) {
	s.patch(func(next *Snapshot) {
		next.GradePeriods = clonePeriods(next.GradePeriods)
		next.GradePeriods[p.ID] = p
	})
}

func (s *Store) DropGradePeriod(id string) {
	s.patch(func(next *Snapshot) {
		next.GradePeriods = clonePeriods(next.GradePeriods)
		delete(next.GradePeriods, id)
	})
}

func (s *Store) UpsertGradeColumn(col grade.Column) {
	s.patch(func(next *Snapshot) {
		next.GradeColumns = cloneColumns(next.GradeColumns)
		next.GradeColumns[col.ID] = col
	})
}

// DropGradeColumn removes the column and its grades.
func (s *Store) DropGradeColumn(id string) {
	s.patch(func(next *Snapshot) {
		next.GradeColumns = cloneColumns(next.GradeColumns)
		delete(next.GradeColumns, id)
		next.Grades = cloneGrades(next.Grades)
		for grID, gr := range next.Grades {
			if gr.ColumnID == id {
				delete(next.Grades, grID)
			}
		}
	})
}

func (s *Store) UpsertGrade(gr grade.Grade) {
	s.patch(func(next *Snapshot) {
		next.Grades = cloneGrades(next.Grades)
		next.Grades[gr.ID] = gr
	})
}

func (s *Store) DropGrade(id string) {
	s.patch(func(next *Snapshot) {
		next.Grades = cloneGrades(next.Grades)
		delete(next.Grades, id)
	})
}

// DropStudentCascade removes a student and detaches them from any class roster.
func (s *Store) DropStudentCascade(id string) {
	s.patch(func(next *Snapshot) {
		next.Students = cloneStudents(next.Students)
		delete(next.Students, id)
		next.Classes = cloneClasses(next.Classes)
		for cid, cl := range next.Classes {
			if !cl.HasStudent(id) {
				continue
			}
			ids := make([]string, 0, len(cl.StudentIDs)-1)
			for _, sid := range cl.StudentIDs {
				if sid != id {
					ids = append(ids, sid)
				}
			}
			cl.StudentIDs = ids
			next.Classes[cid] = cl
		}
	})
}

// DropClassCascade removes a class along with its schedules and their
// attendance, and clears the class reference on its students.
func (s *Store) DropClassCascade(id string) {
	s.patch(func(next *Snapshot) {
		next.Classes = cloneClasses(next.Classes)
		delete(next.Classes, id)

		next.Students = cloneStudents(next.Students)
		for sid, st := range next.Students {
			if st.ClassID == id {
				st.ClassID = ""
				next.Students[sid] = st
			}
		}

		next.Schedules = cloneSchedules(next.Schedules)
		dropped := make(map[string]bool)
		for schID, sch := range next.Schedules {
			if sch.ClassID == id {
				dropped[schID] = true
				delete(next.Schedules, schID)
			}
		}
		next.Attendance = cloneAttendance(next.Attendance)
		for attID, att := range next.Attendance {
			if dropped[att.ScheduleID] {
				delete(next.Attendance, attID)
			}
		}
	})
}

// MoveStudentClass mirrors a class reassignment: the student points at the
// new class and the rosters on both sides are updated.
func (s *Store) MoveStudentClass(studentID, newClassID string) {
	s.patch(func(next *Snapshot) {
		next.Students = cloneStudents(next.Students)
		st, ok := next.Students[studentID]
		if !ok {
			return
		}
		st.ClassID = newClassID
		next.Students[studentID] = st

		next.Classes = cloneClasses(next.Classes)
		for cid, cl := range next.Classes {
			switch {
			case cid == newClassID && !cl.HasStudent(studentID):
				ids := make([]string, 0, len(cl.StudentIDs)+1)
				ids = append(ids, cl.StudentIDs...)
				cl.StudentIDs = append(ids, studentID)
				next.Classes[cid] = cl
			case cid != newClassID && cl.HasStudent(studentID):
				ids := make([]string, 0, len(cl.StudentIDs)-1)
				for _, sid := range cl.StudentIDs {
					if sid != studentID {
						ids = append(ids, sid)
					}
				}
				cl.StudentIDs = ids
				next.Classes[cid] = cl
			}
		}
	})
}
