// Package sqlxrepos implements the repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/school"
)

// Students

type studentRow struct {
	ID            string      `db:"id"`
	Name          string      `db:"name"`
	BirthDate     core.Date   `db:"birth_date"`
	Gender        null.String `db:"gender"`
	ParentName    null.String `db:"parent_name"`
	MotherName    null.String `db:"mother_name"`
	ParentPhone   null.String `db:"parent_phone"`
	ParentIDCard  null.String `db:"parent_id_card"`
	ParentIDCard2 null.String `db:"parent_id_card_2"`
	Status        string      `db:"status"`
	DriveLink     null.String `db:"drive_link"`
	ClassID       null.String `db:"class_id"`
	CreatedAt     null.Time   `db:"created_at"`
	UpdatedAt     null.Time   `db:"updated_at"`
}

func (r studentRow) toDomain() school.Student {
	return school.Student{
		ID:            r.ID,
		Name:          r.Name,
		BirthDate:     r.BirthDate,
		Gender:        r.Gender.String,
		ParentName:    r.ParentName.String,
		MotherName:    r.MotherName.String,
		ParentPhone:   r.ParentPhone.String,
		ParentIDCard:  r.ParentIDCard.String,
		ParentIDCard2: r.ParentIDCard2.String,
		Status:        r.Status,
		DriveLink:     r.DriveLink.String,
		ClassID:       r.ClassID.String,
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
}

func studentFromDomain(std school.Student) studentRow {
	return studentRow{
		ID:            std.ID,
		Name:          std.Name,
		BirthDate:     std.BirthDate,
		Gender:        null.NewString(std.Gender, std.Gender != ""),
		ParentName:    null.NewString(std.ParentName, std.ParentName != ""),
		MotherName:    null.NewString(std.MotherName, std.MotherName != ""),
		ParentPhone:   null.NewString(std.ParentPhone, std.ParentPhone != ""),
		ParentIDCard:  null.NewString(std.ParentIDCard, std.ParentIDCard != ""),
		ParentIDCard2: null.NewString(std.ParentIDCard2, std.ParentIDCard2 != ""),
		Status:        std.Status,
		DriveLink:     null.NewString(std.DriveLink, std.DriveLink != ""),
		ClassID:       null.NewString(std.ClassID, std.ClassID != ""),
		CreatedAt:     null.NewTime(std.CreatedAt.UTC(), !std.CreatedAt.IsZero()),
		UpdatedAt:     null.NewTime(std.UpdatedAt.UTC(), !std.UpdatedAt.IsZero()),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ school.StudentRepository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) school.StudentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	std.ID = core.GenerateID("ST")
	row := studentFromDomain(std)
	const q = `INSERT INTO student (
		id, name, birth_date, gender, parent_name, mother_name, parent_phone,
		parent_id_card, parent_id_card_2, status, drive_link, class_id, created_at, updated_at
	) VALUES (
		:id, :name, :birth_date, :gender, :parent_name, :mother_name, :parent_phone,
		:parent_id_card, :parent_id_card_2, :status, :drive_link, :class_id, :created_at, :updated_at
	)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return school.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]school.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM student ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]school.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toDomain())
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (school.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.Student{}, school.ErrStudentNotFound
		}
		return school.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toDomain(), nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	row := studentFromDomain(std)
	const q = `UPDATE student SET
		name = :name, birth_date = :birth_date, gender = :gender, parent_name = :parent_name,
		mother_name = :mother_name, parent_phone = :parent_phone, parent_id_card = :parent_id_card,
		parent_id_card_2 = :parent_id_card_2, status = :status, drive_link = :drive_link,
		class_id = :class_id, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Student{}, school.ErrStudentNotFound
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return nil
}

// Classes

type classRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	TeacherID   null.String    `db:"teacher_id"`
	StudentIDs  pq.StringArray `db:"student_ids"`
	MaxStudents int            `db:"max_students"`
	SubjectID   null.String    `db:"subject_id"`
	CreatedAt   null.Time      `db:"created_at"`
	UpdatedAt   null.Time      `db:"updated_at"`
}

func (r classRow) toDomain() school.Class {
	return school.Class{
		ID:          r.ID,
		Name:        r.Name,
		TeacherID:   r.TeacherID.String,
		StudentIDs:  r.StudentIDs,
		MaxStudents: r.MaxStudents,
		SubjectID:   r.SubjectID.String,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

func classFromDomain(cls school.Class) classRow {
	ids := cls.StudentIDs
	if ids == nil {
		ids = []string{}
	}
	return classRow{
		ID:          cls.ID,
		Name:        cls.Name,
		TeacherID:   null.NewString(cls.TeacherID, cls.TeacherID != ""),
		StudentIDs:  ids,
		MaxStudents: cls.MaxStudents,
		SubjectID:   null.NewString(cls.SubjectID, cls.SubjectID != ""),
		CreatedAt:   null.NewTime(cls.CreatedAt.UTC(), !cls.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(cls.UpdatedAt.UTC(), !cls.UpdatedAt.IsZero()),
	}
}

type classRepository struct {
	db *sqlx.DB
}

var _ school.ClassRepository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) school.ClassRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	cls.ID = core.GenerateID("CL")
	row := classFromDomain(cls)
	const q = `INSERT INTO class (id, name, teacher_id, student_ids, max_students, subject_id, created_at, updated_at)
	VALUES (:id, :name, :teacher_id, :student_ids, :max_students, :subject_id, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return school.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo *classRepository) QueryAllClasses(ctx context.Context) ([]school.Class, error) {
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM class ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]school.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.toDomain())
	}
	return classes, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id string) (school.Class, error) {
	var row classRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM class WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.Class{}, school.ErrClassNotFound
		}
		return school.Class{}, errors.Wrap(err, "getting class")
	}
	return row.toDomain(), nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	row := classFromDomain(cls)
	const q = `UPDATE class SET
		name = :name, teacher_id = :teacher_id, student_ids = :student_ids,
		max_students = :max_students, subject_id = :subject_id, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return school.Class{}, errors.Wrap(err, "updating class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Class{}, school.ErrClassNotFound
	}
	return cls, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM class WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return nil
}

// Classrooms

type classroomRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Capacity    int            `db:"capacity"`
	Location    null.String    `db:"location"`
	Equipment   pq.StringArray `db:"equipment"`
	Status      string         `db:"status"`
	Description null.String    `db:"description"`
	CreatedAt   null.Time      `db:"created_at"`
	UpdatedAt   null.Time      `db:"updated_at"`
}

func (r classroomRow) toDomain() school.Classroom {
	return school.Classroom{
		ID:          r.ID,
		Name:        r.Name,
		Capacity:    r.Capacity,
		Location:    r.Location.String,
		Equipment:   r.Equipment,
		Status:      r.Status,
		Description: r.Description.String,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

func classroomFromDomain(room school.Classroom) classroomRow {
	equip := room.Equipment
	if equip == nil {
		equip = []string{}
	}
	return classroomRow{
		ID:          room.ID,
		Name:        room.Name,
		Capacity:    room.Capacity,
		Location:    null.NewString(room.Location, room.Location != ""),
		Equipment:   equip,
		Status:      room.Status,
		Description: null.NewString(room.Description, room.Description != ""),
		CreatedAt:   null.NewTime(room.CreatedAt.UTC(), !room.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(room.UpdatedAt.UTC(), !room.UpdatedAt.IsZero()),
	}
}

type classroomRepository struct {
	db *sqlx.DB
}

var _ school.ClassroomRepository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *sqlx.DB) school.ClassroomRepository {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) CreateClassroom(ctx context.Context, room school.Classroom) (school.Classroom, error) {
	room.ID = core.GenerateID("CR")
	row := classroomFromDomain(room)
	const q = `INSERT INTO classroom (id, name, capacity, location, equipment, status, description, created_at, updated_at)
	VALUES (:id, :name, :capacity, :location, :equipment, :status, :description, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return school.Classroom{}, errors.Wrap(err, "inserting classroom")
	}
	return room, nil
}

func (repo *classroomRepository) QueryAllClassrooms(ctx context.Context) ([]school.Classroom, error) {
	var rows []classroomRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM classroom ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying classrooms")
	}
	rooms := make([]school.Classroom, 0, len(rows))
	for _, r := range rows {
		rooms = append(rooms, r.toDomain())
	}
	return rooms, nil
}

func (repo *classroomRepository) GetClassroomByID(ctx context.Context, id string) (school.Classroom, error) {
	var row classroomRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM classroom WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.Classroom{}, school.ErrClassroomNotFound
		}
		return school.Classroom{}, errors.Wrap(err, "getting classroom")
	}
	return row.toDomain(), nil
}

func (repo *classroomRepository) UpdateClassroom(ctx context.Context, room school.Classroom) (school.Classroom, error) {
	row := classroomFromDomain(room)
	const q = `UPDATE classroom SET
		name = :name, capacity = :capacity, location = :location, equipment = :equipment,
		status = :status, description = :description, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return school.Classroom{}, errors.Wrap(err, "updating classroom")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Classroom{}, school.ErrClassroomNotFound
	}
	return room, nil
}

func (repo *classroomRepository) DeleteClassroom(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM classroom WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting classroom")
	}
	return nil
}

// Subjects

type subjectRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Code        null.String `db:"code"`
	Description null.String `db:"description"`
	Color       null.String `db:"color"`
	IsActive    bool        `db:"is_active"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (r subjectRow) toDomain() school.Subject {
	return school.Subject{
		ID:          r.ID,
		Name:        r.Name,
		Code:        r.Code.String,
		Description: r.Description.String,
		Color:       r.Color.String,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

func subjectFromDomain(sub school.Subject) subjectRow {
	return subjectRow{
		ID:          sub.ID,
		Name:        sub.Name,
		Code:        null.NewString(sub.Code, sub.Code != ""),
		Description: null.NewString(sub.Description, sub.Description != ""),
		Color:       null.NewString(sub.Color, sub.Color != ""),
		IsActive:    sub.IsActive,
		CreatedAt:   null.NewTime(sub.CreatedAt.UTC(), !sub.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(sub.UpdatedAt.UTC(), !sub.UpdatedAt.IsZero()),
	}
}

type subjectRepository struct {
	db *sqlx.DB
}

var _ school.SubjectRepository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) school.SubjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	sub.ID = core.GenerateID("SUB")
	row := subjectFromDomain(sub)
	const q = `INSERT INTO subject (id, name, code, description, color, is_active, created_at, updated_at)
	VALUES (:id, :name, :code, :description, :color, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return school.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]school.Subject, error) {
	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM subject ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]school.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.toDomain())
	}
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id string) (school.Subject, error) {
	var row subjectRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM subject WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.Subject{}, school.ErrSubjectNotFound
		}
		return school.Subject{}, errors.Wrap(err, "getting subject")
	}
	return row.toDomain(), nil
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	row := subjectFromDomain(sub)
	const q = `UPDATE subject SET
		name = :name, code = :code, description = :description, color = :color,
		is_active = :is_active, updated_at = :updated_at
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return school.Subject{}, errors.Wrap(err, "updating subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Subject{}, school.ErrSubjectNotFound
	}
	return sub, nil
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM subject WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return nil
}
