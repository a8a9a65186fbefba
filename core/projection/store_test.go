package projection

import (
	"context"
	"errors"
	"testing"

	"github.com/htpham/tutorhub/core/grade"
	"github.com/htpham/tutorhub/core/schedule"
	"github.com/htpham/tutorhub/core/school"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fakeSources struct {
	students   []school.Student
	classes    []school.Class
	classrooms []school.Classroom
	subjects   []school.Subject
	schedules  []schedule.Schedule
	attendance []schedule.Attendance
	periods    []grade.Period
	columns    []grade.Column
	grades     []grade.Grade

	failGrades error
}

func (f *fakeSources) QueryAllStudents(context.Context) ([]school.Student, error) {
	return f.students, nil
}
func (f *fakeSources) QueryAllClasses(context.Context) ([]school.Class, error) {
	return f.classes, nil
}
func (f *fakeSources) QueryAllClassrooms(context.Context) ([]school.Classroom, error) {
	return f.classrooms, nil
}
func (f *fakeSources) QueryAllSubjects(context.Context) ([]school.Subject, error) {
	return f.subjects, nil
}
func (f *fakeSources) QueryAll(context.Context) ([]schedule.Schedule, error) {
	return f.schedules, nil
}
func (f *fakeSources) QueryAllAttendance(context.Context) ([]schedule.Attendance, error) {
	return f.attendance, nil
}
func (f *fakeSources) QueryAllPeriods(context.Context) ([]grade.Period, error) {
	return f.periods, nil
}
func (f *fakeSources) QueryAllColumns(context.Context) ([]grade.Column, error) {
	return f.columns, nil
}
func (f *fakeSources) QueryAllGrades(context.Context) ([]grade.Grade, error) {
	if f.failGrades != nil {
		return nil, f.failGrades
	}
	return f.grades, nil
}

func setup(t *testing.T) (*Store, *fakeSources) {
	t.Helper()
	src := &fakeSources{
		students: []school.Student{
			{ID: "ST1", Name: "An", ClassID: "CL1"},
			{ID: "ST2", Name: "Binh"},
		},
		classes: []school.Class{
			{ID: "CL1", Name: "Math 101", StudentIDs: []string{"ST1"}},
			{ID: "CL2", Name: "Lit 201"},
		},
		schedules: []schedule.Schedule{
			{ID: "SCH1", ClassID: "CL1"},
			{ID: "SCH2", ClassID: "CL2"},
		},
		attendance: []schedule.Attendance{
			{ID: "ATT1", ScheduleID: "SCH1", StudentID: "ST1"},
			{ID: "ATT2", ScheduleID: "SCH2", StudentID: "ST2"},
		},
		columns: []grade.Column{
			{ID: "GC1", ClassID: "CL1"},
		},
		grades: []grade.Grade{
			{ID: "GRD1", ColumnID: "GC1", StudentID: "ST1"},
			{ID: "GRD2", ColumnID: "GC2", StudentID: "ST1"},
		},
	}
	return NewStore(src, src, src, nopLogger{}), src
}

func TestStore_Refresh(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()

	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	snap := store.Current()
	if len(snap.Students) != 2 || len(snap.Classes) != 2 || len(snap.Schedules) != 2 {
		t.Errorf("unexpected snapshot sizes: %d students, %d classes, %d schedules",
			len(snap.Students), len(snap.Classes), len(snap.Schedules))
	}
	if snap.FetchedAt.IsZero() {
		t.Error("expected FetchedAt set")
	}
	if store.Err() != nil {
		t.Errorf("Err() = %v, want nil", store.Err())
	}
}

func TestStore_Refresh_failureKeepsSnapshot(t *testing.T) {
	store, src := setup(t)
	ctx := context.Background()

	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	before := store.Current()

	src.failGrades = errors.New("store unavailable")
	if err := store.Refresh(ctx); err == nil {
		t.Fatal("Refresh() expected an error")
	}
	if store.Current() != before {
		t.Error("expected previous snapshot kept on failed refresh")
	}
	if store.Err() == nil {
		t.Error("expected Err() set after failed refresh")
	}

	// a later successful refresh clears the error
	src.failGrades = nil
	if err := store.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if store.Err() != nil {
		t.Errorf("Err() = %v, want nil", store.Err())
	}
	if store.Current() == before {
		t.Error("expected a fresh snapshot after successful refresh")
	}
}

func TestStore_patchesAreCopyOnWrite(t *testing.T) {
	store, _ := setup(t)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	before := store.Current()

	store.UpsertStudent(school.Student{ID: "ST3", Name: "Chi"})

	if _, ok := before.Students["ST3"]; ok {
		t.Error("patch leaked into the previous snapshot")
	}
	after := store.Current()
	if _, ok := after.Students["ST3"]; !ok {
		t.Error("expected patched snapshot to contain the new student")
	}
	// untouched maps are shared, not copied
	if len(after.Classes) != len(before.Classes) {
		t.Error("unexpected class map change")
	}
}

func TestStore_DropSchedule_cascadesAttendance(t *testing.T) {
	store, _ := setup(t)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	store.DropSchedule("SCH1")

	snap := store.Current()
	if _, ok := snap.Schedules["SCH1"]; ok {
		t.Error("expected schedule dropped")
	}
	if _, ok := snap.Attendance["ATT1"]; ok {
		t.Error("expected schedule's attendance dropped")
	}
	if _, ok := snap.Attendance["ATT2"]; !ok {
		t.Error("expected other attendance kept")
	}
}

func TestStore_DropGradeColumn_cascadesGrades(t *testing.T) {
	store, _ := setup(t)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	store.DropGradeColumn("GC1")

	snap := store.Current()
	if _, ok := snap.GradeColumns["GC1"]; ok {
		t.Error("expected column dropped")
	}
	if _, ok := snap.Grades["GRD1"]; ok {
		t.Error("expected column's grade dropped")
	}
	if _, ok := snap.Grades["GRD2"]; !ok {
		t.Error("expected other grade kept")
	}
}

func TestStore_DropClassCascade(t *testing.T) {
	store, _ := setup(t)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	store.DropClassCascade("CL1")

	snap := store.Current()
	if _, ok := snap.Classes["CL1"]; ok {
		t.Error("expected class dropped")
	}
	if st := snap.Students["ST1"]; st.ClassID != "" {
		t.Errorf("student ClassID = %s, want cleared", st.ClassID)
	}
	if _, ok := snap.Schedules["SCH1"]; ok {
		t.Error("expected class's schedule dropped")
	}
	if _, ok := snap.Attendance["ATT1"]; ok {
		t.Error("expected cascaded attendance dropped")
	}
	if _, ok := snap.Schedules["SCH2"]; !ok {
		t.Error("expected other class's schedule kept")
	}
}

func TestStore_DropStudentCascade(t *testing.T) {
	store, _ := setup(t)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	store.DropStudentCascade("ST1")

	snap := store.Current()
	if _, ok := snap.Students["ST1"]; ok {
		t.Error("expected student dropped")
	}
	if snap.Classes["CL1"].HasStudent("ST1") {
		t.Error("expected student removed from roster")
	}
}

func TestStore_MoveStudentClass(t *testing.T) {
	store, _ := setup(t)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	store.MoveStudentClass("ST1", "CL2")

	snap := store.Current()
	if st := snap.Students["ST1"]; st.ClassID != "CL2" {
		t.Errorf("student ClassID = %s, want CL2", st.ClassID)
	}
	if snap.Classes["CL1"].HasStudent("ST1") {
		t.Error("expected student removed from old roster")
	}
	if !snap.Classes["CL2"].HasStudent("ST1") {
		t.Error("expected student added to new roster")
	}

	// moving an unknown student is a no-op
	store.MoveStudentClass("STmissing", "CL1")
	if _, ok := store.Current().Students["STmissing"]; ok {
		t.Error("unexpected phantom student")
	}
}
