// Package notification turns one day's schedule into a plain-text
// announcement for parents and staff. The text is assembled from the
// projection snapshot, the same data the client has on screen.
package notification

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/projection"
	"github.com/htpham/tutorhub/core/schedule"
	"github.com/htpham/tutorhub/core/user"
)

type (
	// SnapshotSource hands out the latest projection snapshot.
	SnapshotSource interface {
		Current() *projection.Snapshot
	}

	// UserDirectory resolves teacher names for the announcement text.
	UserDirectory interface {
		QueryAll(ctx context.Context) ([]user.User, error)
	}

	Service struct {
		proj  SnapshotSource
		users UserDirectory
	}
)

func NewService(proj SnapshotSource, users UserDirectory) *Service {
	return &Service{proj: proj, users: users}
}

// DayNotice builds the announcement for the requested day. Sessions are
// grouped by time slot in day order and sorted by start time within a slot,
// so the same data always renders the same text.
func (svc *Service) DayNotice(ctx context.Context, gn GenerateNotice) (Notice, error) {
	snap := svc.proj.Current()

	users, err := svc.users.QueryAll(ctx)
	if err != nil {
		return Notice{}, pkgerrors.Wrap(err, "querying users")
	}
	teachers := make(map[string]user.User, len(users))
	for _, usr := range users {
		teachers[usr.ID] = usr
	}

	var sessions []schedule.Schedule
	for _, sch := range snap.Schedules {
		if gn.Date.DaysUntil(sch.Date) != 0 {
			continue
		}
		if gn.TeacherID != "" && sch.TeacherID != gn.TeacherID {
			continue
		}
		sessions = append(sessions, sch)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartTime != sessions[j].StartTime {
			return sessions[i].StartTime < sessions[j].StartTime
		}
		return sessions[i].ID < sessions[j].ID
	})

	r := noticeRenderer{snap: snap, teachers: teachers}
	var text string
	if gn.Format == FormatSimple {
		text = r.simple(gn.Date, sessions)
	} else {
		text = r.formal(gn.Date, sessions)
	}

	return Notice{
		Date:        gn.Date,
		Format:      gn.Format,
		Text:        text,
		Sessions:    len(sessions),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// slotOrder fixes the section order of a day notice.
var slotOrder = []string{schedule.SlotMorning, schedule.SlotAfternoon, schedule.SlotEvening}

var slotEmojis = map[string]string{
	schedule.SlotMorning:   "🌅",
	schedule.SlotAfternoon: "☀️",
	schedule.SlotEvening:   "🌆",
}

type noticeRenderer struct {
	snap     *projection.Snapshot
	teachers map[string]user.User
}

func (r noticeRenderer) formal(date core.Date, sessions []schedule.Schedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 CLASS SCHEDULE FOR %s (%s)\n\n",
		strings.ToUpper(date.Weekday().String()), date.Format("Jan 2"))

	if len(sessions) == 0 {
		b.WriteString("❌ No sessions are scheduled for this day.\n\n")
		b.WriteString("✨ Enjoy the day off!")
		return b.String()
	}

	for _, slot := range slotOrder {
		slotSessions := bySlot(sessions, slot)
		if len(slotSessions) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s %s:\n", slotEmoji(slot), strings.ToUpper(slot))
		for i, sch := range slotSessions {
			fmt.Fprintf(&b, "%d. %s - %s: %s", i+1, sch.StartTime, sch.EndTime, r.className(sch.ClassID))
			if name := r.subjectName(sch); name != "" {
				fmt.Fprintf(&b, " (%s)", name)
			}
			fmt.Fprintf(&b, " - %s", r.teacherName(sch.TeacherID))
			if name := r.classroomName(sch.ClassroomID); name != "" {
				fmt.Fprintf(&b, " at %s", name)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	classIDs := make(map[string]struct{})
	expected := 0
	for _, sch := range sessions {
		classIDs[sch.ClassID] = struct{}{}
		if cls, ok := r.snap.Classes[sch.ClassID]; ok {
			expected += len(cls.StudentIDs)
		}
	}
	b.WriteString("📊 SUMMARY:\n")
	fmt.Fprintf(&b, "• Sessions: %d\n", len(sessions))
	fmt.Fprintf(&b, "• Classes: %d\n", len(classIDs))
	fmt.Fprintf(&b, "• Expected students: %d\n\n", expected)
	b.WriteString("✨ Have a great day of teaching and learning!")
	return b.String()
}

func (r noticeRenderer) simple(date core.Date, sessions []schedule.Schedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear parents,\nHere is the schedule for %s (%s):\n\n",
		date.Weekday().String(), date.Format("Jan 2"))

	if len(sessions) == 0 {
		b.WriteString("There are no classes today.")
		return b.String()
	}

	for _, slot := range slotOrder {
		for _, sch := range bySlot(sessions, slot) {
			subject := r.subjectName(sch)
			if subject == "" {
				subject = r.className(sch.ClassID)
			}
			fmt.Fprintf(&b, "- %s (%s-%s): %s teaches %s\n",
				strings.Title(slot), sch.StartTime, sch.EndTime, r.teacherName(sch.TeacherID), subject)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r noticeRenderer) className(classID string) string {
	if cls, ok := r.snap.Classes[classID]; ok {
		return cls.Name
	}
	return "Unknown class"
}

// subjectName prefers the session's own subject over the class default.
func (r noticeRenderer) subjectName(sch schedule.Schedule) string {
	subjectID := sch.SubjectID
	if subjectID == "" {
		if cls, ok := r.snap.Classes[sch.ClassID]; ok {
			subjectID = cls.SubjectID
		}
	}
	if sub, ok := r.snap.Subjects[subjectID]; ok {
		return sub.Name
	}
	return ""
}

func (r noticeRenderer) classroomName(classroomID string) string {
	if room, ok := r.snap.Classrooms[classroomID]; ok {
		return room.Name
	}
	return ""
}

func (r noticeRenderer) teacherName(teacherID string) string {
	if usr, ok := r.teachers[teacherID]; ok {
		return usr.Name
	}
	return "Unassigned"
}

func bySlot(sessions []schedule.Schedule, slot string) []schedule.Schedule {
	var out []schedule.Schedule
	for _, sch := range sessions {
		if sch.TimeSlot == slot {
			out = append(out, sch)
		}
	}
	return out
}

func slotEmoji(slot string) string {
	if e, ok := slotEmojis[slot]; ok {
		return e
	}
	return "⏰"
}
