package entities

import "time"

// Статусы курса и записи на курс
const (
	CourseDraft      = "draft"
	CourseOpen       = "open"
	CourseInProgress = "in_progress"
	CourseCompleted  = "completed"
	CourseCancelled  = "cancelled"

	EnrollmentDraft      = "draft"
	EnrollmentEnrolled   = "enrolled"
	EnrollmentInProgress = "in_progress"
	EnrollmentCompleted  = "completed"
	EnrollmentCancelled  = "cancelled"
)

type Course struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	Description   *string   `json:"description"`
	DurationHours float64   `json:"duration_hours"`
	Price         float64   `json:"price"`
	InstructorID  *uint64   `json:"instructor_id"`
	State         string    `json:"state"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

type Student struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birth_date"`
	PartnerID *uint64    `json:"partner_id"`
	Notes     *string    `json:"notes"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

// Enrollment - запись студента на курс. Повторная активная запись
// на тот же курс запрещена.
type Enrollment struct {
	ID                uint64     `json:"id"`
	StudentID         uint64     `json:"student_id"`
	CourseID          uint64     `json:"course_id"`
	EnrollmentDate    time.Time  `json:"enrollment_date"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	State             string     `json:"state"`
	FinalGrade        *float64   `json:"final_grade"`
	Progress          float64    `json:"progress"`
	CertificateIssued bool       `json:"certificate_issued"`
	Notes             *string    `json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
}
