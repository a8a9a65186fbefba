package dummydb

import (
	"context"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/school"
)

// Students

type studentRepository struct {
	db *studentTable
}

var _ school.StudentRepository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) school.StudentRepository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CreateStudent(_ context.Context, std school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std.ID = core.GenerateID("ST")
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]school.Student, 0, len(repo.db.table))
	for _, std := range repo.db.table {
		students = append(students, *std)
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[std.ID]; !ok {
		return school.Student{}, school.ErrStudentNotFound
	}
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

// Classes

type classRepository struct {
	db *classTable
}

var _ school.ClassRepository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) school.ClassRepository {
	return &classRepository{db: db.class}
}

// copyClass detaches the member list so callers cannot mutate the stored row.
func copyClass(cls school.Class) school.Class {
	if cls.StudentIDs != nil {
		ids := make([]string, len(cls.StudentIDs))
		copy(ids, cls.StudentIDs)
		cls.StudentIDs = ids
	}
	return cls
}

func (repo *classRepository) CreateClass(_ context.Context, cls school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls.ID = core.GenerateID("CL")
	stored := copyClass(cls)
	repo.db.table[cls.ID] = &stored
	return cls, nil
}

func (repo *classRepository) QueryAllClasses(_ context.Context) ([]school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]school.Class, 0, len(repo.db.table))
	for _, cls := range repo.db.table {
		classes = append(classes, copyClass(*cls))
	}
	return classes, nil
}

func (repo *classRepository) GetClassByID(_ context.Context, id string) (school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.table[id]; ok {
		return copyClass(*cls), nil
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *classRepository) UpdateClass(_ context.Context, cls school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[cls.ID]; !ok {
		return school.Class{}, school.ErrClassNotFound
	}
	stored := copyClass(cls)
	repo.db.table[cls.ID] = &stored
	return cls, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

// Classrooms

type classroomRepository struct {
	db *classroomTable
}

var _ school.ClassroomRepository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) school.ClassroomRepository {
	return &classroomRepository{db: db.classroom}
}

func (repo *classroomRepository) CreateClassroom(_ context.Context, room school.Classroom) (school.Classroom, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	room.ID = core.GenerateID("CR")
	repo.db.table[room.ID] = &room
	return room, nil
}

func (repo *classroomRepository) QueryAllClassrooms(_ context.Context) ([]school.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rooms := make([]school.Classroom, 0, len(repo.db.table))
	for _, room := range repo.db.table {
		rooms = append(rooms, *room)
	}
	return rooms, nil
}

func (repo *classroomRepository) GetClassroomByID(_ context.Context, id string) (school.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if room, ok := repo.db.table[id]; ok {
		return *room, nil
	}
	return school.Classroom{}, school.ErrClassroomNotFound
}

func (repo *classroomRepository) UpdateClassroom(_ context.Context, room school.Classroom) (school.Classroom, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[room.ID]; !ok {
		return school.Classroom{}, school.ErrClassroomNotFound
	}
	repo.db.table[room.ID] = &room
	return room, nil
}

func (repo *classroomRepository) DeleteClassroom(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}

// Subjects

type subjectRepository struct {
	db *subjectTable
}

var _ school.SubjectRepository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) school.SubjectRepository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) CreateSubject(_ context.Context, sub school.Subject) (school.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub.ID = core.GenerateID("SUB")
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) QueryAllSubjects(_ context.Context) ([]school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]school.Subject, 0, len(repo.db.table))
	for _, sub := range repo.db.table {
		subjects = append(subjects, *sub)
	}
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(_ context.Context, id string) (school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return *sub, nil
	}
	return school.Subject{}, school.ErrSubjectNotFound
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, sub school.Subject) (school.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[sub.ID]; !ok {
		return school.Subject{}, school.ErrSubjectNotFound
	}
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) DeleteSubject(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
