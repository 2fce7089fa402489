package models

import "time"

// Teacher represents an instructor record. MaxDay/MaxWeek/LeaveAvg are the
// faculty teaching-load bounds the scheduler reads; LeaveAvg is carried
// but not consumed by the scheduler.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	NIP       *string   `db:"nip" json:"nip,omitempty"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Expertise *string   `db:"expertise" json:"expertise,omitempty"`
	Active    bool      `db:"active" json:"active"`
	MaxDay    int       `db:"max_day" json:"max_day"`
	MaxWeek   int       `db:"max_week" json:"max_week"`
	LeaveAvg  float64   `db:"leave_avg" json:"leave_avg"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherSubject is the many-to-many qualification link read by the
// scheduler's Catalog but not enforced unless EnforceQualifiedFaculty is on.
type TeacherSubject struct {
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
