package school

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
)

var (
	// errors
	ErrStudentNotFound   = errors.New("student not found")
	ErrClassNotFound     = errors.New("class not found")
	ErrClassroomNotFound = errors.New("classroom not found")
	ErrSubjectNotFound   = errors.New("subject not found")
)

type (
	StudentRepository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		// DeleteStudent is idempotent: deleting a missing row is not an error.
		DeleteStudent(ctx context.Context, id string) error
	}

	ClassRepository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		QueryAllClasses(ctx context.Context) ([]Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error
	}

	ClassroomRepository interface {
		CreateClassroom(ctx context.Context, room Classroom) (Classroom, error)
		QueryAllClassrooms(ctx context.Context) ([]Classroom, error)
		GetClassroomByID(ctx context.Context, id string) (Classroom, error)
		UpdateClassroom(ctx context.Context, room Classroom) (Classroom, error)
		DeleteClassroom(ctx context.Context, id string) error
	}

	SubjectRepository interface {
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error
	}

	// ScheduleCascader deletes every schedule of a class together with the
	// schedules' attendance rows, returning how many of each were removed.
	// Implemented by schedule.Service; the store has no cascade support of
	// its own, so this is driven row by row from the client side.
	ScheduleCascader interface {
		DeleteByClass(ctx context.Context, classID string) (schedules, attendance int, err error)
	}

	Service struct {
		students   StudentRepository
		classes    ClassRepository
		classrooms ClassroomRepository
		subjects   SubjectRepository
		schedules  ScheduleCascader
	}
)

// CascadeResult reports what a class deletion removed, for user-facing
// confirmation messaging. On a partial failure it reflects the steps that
// were applied before the failing one; nothing is rolled back.
type CascadeResult struct {
	Schedules       int `json:"schedules"`
	Attendance      int `json:"attendance"`
	StudentsCleared int `json:"students_cleared"`
}

func NewService(
	students StudentRepository,
	classes ClassRepository,
	classrooms ClassroomRepository,
	subjects SubjectRepository,
	schedules ScheduleCascader,
) *Service {
	return &Service{
		students:   students,
		classes:    classes,
		classrooms: classrooms,
		subjects:   subjects,
		schedules:  schedules,
	}
}

// Students

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	status := ns.Status
	if status == "" {
		status = StudentActive
	}
	std := Student{
		Name:          ns.Name,
		BirthDate:     ns.BirthDate,
		Gender:        ns.Gender,
		ParentName:    ns.ParentName,
		MotherName:    ns.MotherName,
		ParentPhone:   ns.ParentPhone,
		ParentIDCard:  ns.ParentIDCard,
		ParentIDCard2: ns.ParentIDCard2,
		Status:        status,
		DriveLink:     ns.DriveLink,
		ClassID:       ns.ClassID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	std, err := svc.students.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}
	if std.ClassID != "" {
		if err := svc.addMembership(ctx, std.ClassID, std.ID); err != nil {
			return std, pkgerrors.Wrap(err, "adding new student to class roster")
		}
	}
	return std, nil
}

func (svc *Service) QueryAllStudents(ctx context.Context) ([]Student, error) {
	return svc.students.QueryAllStudents(ctx)
}

func (svc *Service) GetStudentByID(ctx context.Context, id string) (Student, error) {
	return svc.students.GetStudentByID(ctx, id)
}

// UpdateStudent applies us to the student. A changed ClassID is a membership
// move and runs the same roster updates as AssignStudentToClass.
func (svc *Service) UpdateStudent(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std, err := svc.students.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	if us.ClassID != nil && *us.ClassID != std.ClassID {
		if err := svc.moveMembership(ctx, std.ID, std.ClassID, *us.ClassID); err != nil {
			return Student{}, err
		}
		std.ClassID = *us.ClassID
	}

	if us.Name != "" {
		std.Name = us.Name
	}
	if us.BirthDate != nil {
		std.BirthDate = *us.BirthDate
	}
	if us.Gender != "" {
		std.Gender = us.Gender
	}
	if us.ParentName != "" {
		std.ParentName = us.ParentName
	}
	if us.MotherName != nil {
		std.MotherName = *us.MotherName
	}
	if us.ParentPhone != "" {
		std.ParentPhone = us.ParentPhone
	}
	if us.ParentIDCard != nil {
		std.ParentIDCard = *us.ParentIDCard
	}
	if us.ParentIDCard2 != nil {
		std.ParentIDCard2 = *us.ParentIDCard2
	}
	if us.Status != "" {
		std.Status = us.Status
	}
	if us.DriveLink != nil {
		std.DriveLink = *us.DriveLink
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.students.UpdateStudent(ctx, std)
}

// DeleteStudent removes the student's roster membership first, then the row.
// Deleting an already-deleted student is a no-op.
func (svc *Service) DeleteStudent(ctx context.Context, id string) error {
	std, err := svc.students.GetStudentByID(ctx, id)
	if err != nil {
		if err == ErrStudentNotFound {
			return nil
		}
		return err
	}
	if std.ClassID != "" {
		if err := svc.removeMembership(ctx, std.ClassID, id); err != nil {
			return pkgerrors.Wrap(err, "removing student from class roster")
		}
	}
	return svc.students.DeleteStudent(ctx, id)
}

// AssignStudentToClass moves a student between class rosters and updates the
// student's back-reference. Assigning the current class is a no-op. Both the
// roster sides and the scalar must be written; a failure part-way leaves the
// earlier writes applied and surfaces the failing step.
func (svc *Service) AssignStudentToClass(ctx context.Context, studentID, newClassID string) error {
	std, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return err
	}
	if std.ClassID == newClassID {
		return nil
	}
	if err := svc.moveMembership(ctx, studentID, std.ClassID, newClassID); err != nil {
		return err
	}
	std.ClassID = newClassID
	std.UpdatedAt = time.Now().UTC()
	_, err = svc.students.UpdateStudent(ctx, std)
	return pkgerrors.Wrap(err, "persisting student class reference")
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	maxStudents := nc.MaxStudents
	if maxStudents == 0 {
		maxStudents = 100
	}
	cls := Class{
		Name:        nc.Name,
		TeacherID:   nc.TeacherID,
		StudentIDs:  append([]string(nil), nc.StudentIDs...),
		MaxStudents: maxStudents,
		SubjectID:   nc.SubjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	cls, err := svc.classes.CreateClass(ctx, cls)
	if err != nil {
		return Class{}, err
	}
	for _, sid := range cls.StudentIDs {
		if err := svc.setStudentClass(ctx, sid, cls.ID); err != nil {
			return cls, pkgerrors.Wrapf(err, "setting class reference on student %s", sid)
		}
	}
	return cls, nil
}

func (svc *Service) QueryAllClasses(ctx context.Context) ([]Class, error) {
	return svc.classes.QueryAllClasses(ctx)
}

func (svc *Service) GetClassByID(ctx context.Context, id string) (Class, error) {
	return svc.classes.GetClassByID(ctx, id)
}

// UpdateClass applies uc to the class. When the roster changes, removed
// students get their class reference cleared and added students get it set,
// keeping the membership invariant on both sides.
func (svc *Service) UpdateClass(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	cls, err := svc.classes.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}

	var removed, added []string
	if uc.StudentIDs != nil {
		removed = diffIDs(cls.StudentIDs, *uc.StudentIDs)
		added = diffIDs(*uc.StudentIDs, cls.StudentIDs)
		cls.StudentIDs = append([]string(nil), (*uc.StudentIDs)...)
	}
	if uc.Name != "" {
		cls.Name = uc.Name
	}
	if uc.TeacherID != "" {
		cls.TeacherID = uc.TeacherID
	}
	if uc.MaxStudents != nil {
		cls.MaxStudents = *uc.MaxStudents
	}
	if uc.SubjectID != nil {
		cls.SubjectID = *uc.SubjectID
	}
	cls.UpdatedAt = time.Now().UTC()

	cls, err = svc.classes.UpdateClass(ctx, cls)
	if err != nil {
		return Class{}, err
	}
	for _, sid := range removed {
		if err := svc.setStudentClass(ctx, sid, ""); err != nil {
			return cls, pkgerrors.Wrapf(err, "clearing class reference on student %s", sid)
		}
	}
	for _, sid := range added {
		if err := svc.setStudentClass(ctx, sid, cls.ID); err != nil {
			return cls, pkgerrors.Wrapf(err, "setting class reference on student %s", sid)
		}
	}
	return cls, nil
}

// DeleteClass cascades: schedules (and their attendance) first, then the
// members' class references, then the class row itself. Counts of everything
// removed are returned for confirmation messaging. There is no transaction
// boundary across these steps; a failure stops the sequence where it is.
func (svc *Service) DeleteClass(ctx context.Context, id string) (CascadeResult, error) {
	var res CascadeResult
	cls, err := svc.classes.GetClassByID(ctx, id)
	if err != nil {
		if err == ErrClassNotFound {
			return res, nil
		}
		return res, err
	}

	if svc.schedules != nil {
		scheds, atts, err := svc.schedules.DeleteByClass(ctx, id)
		res.Schedules, res.Attendance = scheds, atts
		if err != nil {
			return res, pkgerrors.Wrap(err, "cascading class schedules")
		}
	}

	for _, sid := range cls.StudentIDs {
		if err := svc.setStudentClass(ctx, sid, ""); err != nil {
			return res, pkgerrors.Wrapf(err, "clearing class reference on student %s", sid)
		}
		res.StudentsCleared++
	}

	if err := svc.classes.DeleteClass(ctx, id); err != nil {
		return res, pkgerrors.Wrap(err, "deleting class row")
	}
	return res, nil
}

// Classrooms

func (svc *Service) CreateClassroom(ctx context.Context, nc NewClassroom) (Classroom, error) {
	now := time.Now().UTC()
	status := nc.Status
	if status == "" {
		status = ClassroomAvailable
	}
	room := Classroom{
		Name:        nc.Name,
		Capacity:    nc.Capacity,
		Location:    nc.Location,
		Equipment:   append([]string(nil), nc.Equipment...),
		Status:      status,
		Description: nc.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.classrooms.CreateClassroom(ctx, room)
}

func (svc *Service) QueryAllClassrooms(ctx context.Context) ([]Classroom, error) {
	return svc.classrooms.QueryAllClassrooms(ctx)
}

func (svc *Service) GetClassroomByID(ctx context.Context, id string) (Classroom, error) {
	return svc.classrooms.GetClassroomByID(ctx, id)
}

func (svc *Service) UpdateClassroom(ctx context.Context, id string, uc UpdateClassroom) (Classroom, error) {
	room, err := svc.classrooms.GetClassroomByID(ctx, id)
	if err != nil {
		return Classroom{}, err
	}
	if uc.Name != "" {
		room.Name = uc.Name
	}
	if uc.Capacity != nil {
		room.Capacity = *uc.Capacity
	}
	if uc.Location != nil {
		room.Location = *uc.Location
	}
	if uc.Equipment != nil {
		room.Equipment = append([]string(nil), (*uc.Equipment)...)
	}
	if uc.Status != "" {
		room.Status = uc.Status
	}
	if uc.Description != nil {
		room.Description = *uc.Description
	}
	room.UpdatedAt = time.Now().UTC()
	return svc.classrooms.UpdateClassroom(ctx, room)
}

func (svc *Service) DeleteClassroom(ctx context.Context, id string) error {
	return svc.classrooms.DeleteClassroom(ctx, id)
}

// Subjects

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	isActive := true
	if ns.IsActive != nil {
		isActive = *ns.IsActive
	}
	sub := Subject{
		Name:        ns.Name,
		Code:        ns.Code,
		Description: ns.Description,
		Color:       ns.Color,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.subjects.CreateSubject(ctx, sub)
}

func (svc *Service) QueryAllSubjects(ctx context.Context) ([]Subject, error) {
	return svc.subjects.QueryAllSubjects(ctx)
}

func (svc *Service) GetSubjectByID(ctx context.Context, id string) (Subject, error) {
	return svc.subjects.GetSubjectByID(ctx, id)
}

func (svc *Service) UpdateSubject(ctx context.Context, id string, us UpdateSubject) (Subject, error) {
	sub, err := svc.subjects.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	if us.Name != "" {
		sub.Name = us.Name
	}
	if us.Code != "" {
		sub.Code = us.Code
	}
	if us.Description != nil {
		sub.Description = *us.Description
	}
	if us.Color != "" {
		sub.Color = us.Color
	}
	if us.IsActive != nil {
		sub.IsActive = *us.IsActive
	}
	sub.UpdatedAt = time.Now().UTC()
	return svc.subjects.UpdateSubject(ctx, sub)
}

func (svc *Service) DeleteSubject(ctx context.Context, id string) error {
	return svc.subjects.DeleteSubject(ctx, id)
}

// membership helpers

// moveMembership updates the roster sides of a class change. A missing old or
// new class is tolerated as a roster no-op: the store may have lost the row
// to an external delete, and the student scalar is still worth writing.
func (svc *Service) moveMembership(ctx context.Context, studentID, oldClassID, newClassID string) error {
	if oldClassID != "" {
		if err := svc.removeMembership(ctx, oldClassID, studentID); err != nil {
			return pkgerrors.Wrap(err, "removing membership from old class")
		}
	}
	if newClassID != "" {
		if err := svc.addMembership(ctx, newClassID, studentID); err != nil {
			return pkgerrors.Wrap(err, "adding membership to new class")
		}
	}
	return nil
}

func (svc *Service) addMembership(ctx context.Context, classID, studentID string) error {
	cls, err := svc.classes.GetClassByID(ctx, classID)
	if err != nil {
		if err == ErrClassNotFound {
			return nil
		}
		return err
	}
	if cls.HasStudent(studentID) { // guard against duplicate insertion
		return nil
	}
	cls.StudentIDs = append(cls.StudentIDs, studentID)
	cls.UpdatedAt = time.Now().UTC()
	_, err = svc.classes.UpdateClass(ctx, cls)
	return err
}

func (svc *Service) removeMembership(ctx context.Context, classID, studentID string) error {
	cls, err := svc.classes.GetClassByID(ctx, classID)
	if err != nil {
		if err == ErrClassNotFound {
			return nil
		}
		return err
	}
	if !cls.HasStudent(studentID) { // removing a non-member is a no-op
		return nil
	}
	kept := make([]string, 0, len(cls.StudentIDs)-1)
	for _, sid := range cls.StudentIDs {
		if sid != studentID {
			kept = append(kept, sid)
		}
	}
	cls.StudentIDs = kept
	cls.UpdatedAt = time.Now().UTC()
	_, err = svc.classes.UpdateClass(ctx, cls)
	return err
}

// setStudentClass persists the scalar side only; roster updates are handled
// by the caller. A missing student is skipped (cascade races tolerated).
func (svc *Service) setStudentClass(ctx context.Context, studentID, classID string) error {
	std, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		if err == ErrStudentNotFound {
			return nil
		}
		return err
	}
	std.ClassID = classID
	std.UpdatedAt = time.Now().UTC()
	_, err = svc.students.UpdateStudent(ctx, std)
	return err
}

// diffIDs returns the ids present in a but not in b.
func diffIDs(a, b []string) []string {
	var out []string
	for _, id := range a {
		found := false
		for _, other := range b {
			if id == other {
				found = true
				break
			}
		}
		if !found {
			out = append(out, id)
		}
	}
	return out
}
