package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/projection"
	"github.com/htpham/tutorhub/core/schedule"
	"github.com/htpham/tutorhub/core/school"
	"github.com/htpham/tutorhub/core/user"
)

type fakeSnapshotSource struct {
	snap *projection.Snapshot
}

func (s *fakeSnapshotSource) Current() *projection.Snapshot { return s.snap }

type fakeUserDirectory struct {
	users []user.User
}

func (d *fakeUserDirectory) QueryAll(context.Context) ([]user.User, error) {
	return d.users, nil
}

func noticeFixtures() (*fakeSnapshotSource, *fakeUserDirectory, core.Date) {
	day := core.NewDate(2026, time.March, 2) // a Monday
	snap := &projection.Snapshot{
		Classes: map[string]school.Class{
			"CL1": {ID: "CL1", Name: "Math 6A", SubjectID: "SU1", StudentIDs: []string{"ST1", "ST2"}},
			"CL2": {ID: "CL2", Name: "Literature 7B", StudentIDs: []string{"ST3"}},
		},
		Classrooms: map[string]school.Classroom{
			"RM1": {ID: "RM1", Name: "Room 101"},
		},
		Subjects: map[string]school.Subject{
			"SU1": {ID: "SU1", Name: "Mathematics"},
			"SU2": {ID: "SU2", Name: "Literature"},
		},
		Schedules: map[string]schedule.Schedule{
			"SC1": {
				ID: "SC1", ClassID: "CL1", TeacherID: "US1", ClassroomID: "RM1",
				Date: day, TimeSlot: schedule.SlotMorning, StartTime: "08:00", EndTime: "10:00",
			},
			"SC2": {
				ID: "SC2", ClassID: "CL2", TeacherID: "US2", SubjectID: "SU2",
				Date: day, TimeSlot: schedule.SlotAfternoon, StartTime: "14:00", EndTime: "16:00",
			},
			"SC3": { // other day, must not appear
				ID: "SC3", ClassID: "CL1", TeacherID: "US1",
				Date: day.AddDays(1), TimeSlot: schedule.SlotMorning, StartTime: "08:00", EndTime: "10:00",
			},
		},
	}
	users := &fakeUserDirectory{users: []user.User{
		{ID: "US1", Name: "Minh Tran", Role: user.RoleTeacher},
		{ID: "US2", Name: "Thu Le", Role: user.RoleTeacher},
	}}
	return &fakeSnapshotSource{snap: snap}, users, day
}

func TestService_DayNotice_formal(t *testing.T) {
	ctx := context.Background()
	snapSrc, users, day := noticeFixtures()
	svc := NewService(snapSrc, users)

	notice, err := svc.DayNotice(ctx, GenerateNotice{Date: day, Format: FormatFormal})
	if err != nil {
		t.Fatalf("DayNotice() error = %v", err)
	}
	if notice.Sessions != 2 {
		t.Errorf("Sessions = %d; want 2", notice.Sessions)
	}
	if notice.GeneratedAt.IsZero() {
		t.Error("GeneratedAt is zero")
	}

	for _, want := range []string{
		"CLASS SCHEDULE FOR MONDAY (Mar 2)",
		"MORNING:\n1. 08:00 - 10:00: Math 6A (Mathematics) - Minh Tran at Room 101",
		"AFTERNOON:\n1. 14:00 - 16:00: Literature 7B (Literature) - Thu Le",
		"• Sessions: 2",
		"• Classes: 2",
		"• Expected students: 3",
	} {
		if !strings.Contains(notice.Text, want) {
			t.Errorf("notice missing %q:\n%v", want, notice.Text)
		}
	}
	if n := strings.Count(notice.Text, "08:00 - 10:00"); n != 1 {
		t.Errorf("morning sessions rendered = %d; want 1 (another day leaked in):\n%v", n, notice.Text)
	}
}

func TestService_DayNotice_simple(t *testing.T) {
	ctx := context.Background()
	snapSrc, users, day := noticeFixtures()
	svc := NewService(snapSrc, users)

	notice, err := svc.DayNotice(ctx, GenerateNotice{Date: day, Format: FormatSimple})
	if err != nil {
		t.Fatalf("DayNotice() error = %v", err)
	}

	for _, want := range []string{
		"Dear parents,",
		"schedule for Monday (Mar 2)",
		"- Morning (08:00-10:00): Minh Tran teaches Mathematics",
		"- Afternoon (14:00-16:00): Thu Le teaches Literature",
	} {
		if !strings.Contains(notice.Text, want) {
			t.Errorf("notice missing %q:\n%v", want, notice.Text)
		}
	}
}

func TestService_DayNotice_teacherFilter(t *testing.T) {
	ctx := context.Background()
	snapSrc, users, day := noticeFixtures()
	svc := NewService(snapSrc, users)

	notice, err := svc.DayNotice(ctx, GenerateNotice{Date: day, Format: FormatFormal, TeacherID: "US2"})
	if err != nil {
		t.Fatalf("DayNotice() error = %v", err)
	}
	if notice.Sessions != 1 {
		t.Errorf("Sessions = %d; want 1", notice.Sessions)
	}
	if strings.Contains(notice.Text, "Minh Tran") {
		t.Errorf("notice includes another teacher's session:\n%v", notice.Text)
	}
}

func TestService_DayNotice_emptyDay(t *testing.T) {
	ctx := context.Background()
	snapSrc, users, day := noticeFixtures()
	svc := NewService(snapSrc, users)

	free := day.AddDays(5)
	notice, err := svc.DayNotice(ctx, GenerateNotice{Date: free, Format: FormatFormal})
	if err != nil {
		t.Fatalf("DayNotice() error = %v", err)
	}
	if notice.Sessions != 0 {
		t.Errorf("Sessions = %d; want 0", notice.Sessions)
	}
	if !strings.Contains(notice.Text, "No sessions are scheduled for this day.") {
		t.Errorf("unexpected empty-day text:\n%v", notice.Text)
	}

	notice, err = svc.DayNotice(ctx, GenerateNotice{Date: free, Format: FormatSimple})
	if err != nil {
		t.Fatalf("DayNotice() error = %v", err)
	}
	if !strings.Contains(notice.Text, "There are no classes today.") {
		t.Errorf("unexpected empty-day text:\n%v", notice.Text)
	}
}
