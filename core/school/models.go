package school

import (
	"time"

	"github.com/htpham/tutorhub/core"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Student statuses
const (
	StudentActive   = "active"
	StudentInactive = "inactive"
)

// Classroom statuses
const (
	ClassroomAvailable   = "available"
	ClassroomOccupied    = "occupied"
	ClassroomMaintenance = "maintenance"
)

type Student struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BirthDate     core.Date `json:"birth_date"`
	Gender        string    `json:"gender"`
	ParentName    string    `json:"parent_name"`
	MotherName    string    `json:"mother_name,omitempty"`
	ParentPhone   string    `json:"parent_phone"`
	ParentIDCard  string    `json:"parent_id_card,omitempty"`
	ParentIDCard2 string    `json:"parent_id_card_2,omitempty"`
	Status        string    `json:"status"`
	DriveLink     string    `json:"drive_link,omitempty"`
	ClassID       string    `json:"class_id,omitempty"` // back-reference; empty = unassigned
	CreatedAt     time.Time `json:"created_at"`         // UTC
	UpdatedAt     time.Time `json:"updated_at"`         // UTC
}

type Class struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	TeacherID   string    `json:"teacher_id"`
	StudentIDs  []string  `json:"student_ids"`
	MaxStudents int       `json:"max_students"`
	SubjectID   string    `json:"subject_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasStudent reports membership of id in the class roster.
func (c Class) HasStudent(id string) bool {
	for _, sid := range c.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

type Classroom struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	Location    string    `json:"location"`
	Equipment   []string  `json:"equipment"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name          string    `json:"name" validate:"required"`
	BirthDate     core.Date `json:"birth_date"`
	Gender        string    `json:"gender" validate:"required,oneof=male female other"`
	ParentName    string    `json:"parent_name" validate:"required"`
	MotherName    string    `json:"mother_name"`
	ParentPhone   string    `json:"parent_phone" validate:"required"`
	ParentIDCard  string    `json:"parent_id_card"`
	ParentIDCard2 string    `json:"parent_id_card_2"`
	Status        string    `json:"status" validate:"omitempty,oneof=active inactive"`
	DriveLink     string    `json:"drive_link"`
	ClassID       string    `json:"class_id"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.ParentName = core.CleanString(ns.ParentName)
	ns.ParentPhone = core.CleanString(ns.ParentPhone)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. Nil pointers leave the corresponding field untouched; ClassID set
// to a different value routes through the membership move.
type UpdateStudent struct {
	Name          string     `json:"name"`
	BirthDate     *core.Date `json:"birth_date"`
	Gender        string     `json:"gender" validate:"omitempty,oneof=male female other"`
	ParentName    string     `json:"parent_name"`
	MotherName    *string    `json:"mother_name"`
	ParentPhone   string     `json:"parent_phone"`
	ParentIDCard  *string    `json:"parent_id_card"`
	ParentIDCard2 *string    `json:"parent_id_card_2"`
	Status        string     `json:"status" validate:"omitempty,oneof=active inactive"`
	DriveLink     *string    `json:"drive_link"`
	ClassID       *string    `json:"class_id"`
}

func (us *UpdateStudent) Validate() error {
	us.Name = core.CleanString(us.Name)
	return core.Validate.Struct(us)
}

// NewClass contains information needed to create a new Class. Initial members
// listed in StudentIDs get their class back-reference set on creation.
type NewClass struct {
	Name        string   `json:"name" validate:"required"`
	TeacherID   string   `json:"teacher_id" validate:"required"`
	StudentIDs  []string `json:"student_ids"`
	MaxStudents int      `json:"max_students" validate:"omitempty,gt=0"`
	SubjectID   string   `json:"subject_id"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

type UpdateClass struct {
	Name        string    `json:"name"`
	TeacherID   string    `json:"teacher_id"`
	StudentIDs  *[]string `json:"student_ids"`
	MaxStudents *int      `json:"max_students" validate:"omitempty,gt=0"`
	SubjectID   *string   `json:"subject_id"`
}

func (uc *UpdateClass) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	return core.Validate.Struct(uc)
}

type NewClassroom struct {
	Name        string   `json:"name" validate:"required"`
	Capacity    int      `json:"capacity" validate:"gt=0"`
	Location    string   `json:"location"`
	Equipment   []string `json:"equipment"`
	Status      string   `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
	Description string   `json:"description"`
}

func (nc *NewClassroom) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

type UpdateClassroom struct {
	Name        string    `json:"name"`
	Capacity    *int      `json:"capacity" validate:"omitempty,gt=0"`
	Location    *string   `json:"location"`
	Equipment   *[]string `json:"equipment"`
	Status      string    `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
	Description *string   `json:"description"`
}

func (uc *UpdateClassroom) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	return core.Validate.Struct(uc)
}

type NewSubject struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required,alphanum_"`
	Description string `json:"description"`
	Color       string `json:"color"`
	IsActive    *bool  `json:"is_active"`
}

func (ns *NewSubject) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code, true /* lower */)
	return core.Validate.Struct(ns)
}

type UpdateSubject struct {
	Name        string  `json:"name"`
	Code        string  `json:"code" validate:"omitempty,alphanum_"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
	IsActive    *bool   `json:"is_active"`
}

func (us *UpdateSubject) Validate() error {
	us.Name = core.CleanString(us.Name)
	us.Code = core.CleanString(us.Code, true /* lower */)
	return core.Validate.Struct(us)
}
