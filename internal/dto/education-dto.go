package dto

import "time"

type CreateCourseDTO struct {
	Name          string  `json:"name" validate:"required"`
	Code          string  `json:"code" validate:"required"`
	Description   *string `json:"description"`
	DurationHours float64 `json:"duration_hours" validate:"gt=0"`
	Price         float64 `json:"price" validate:"gte=0"`
	InstructorID  *uint64 `json:"instructor_id"`
}

type CreateStudentDTO struct {
	Name      string     `json:"name" validate:"required"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birth_date"`
	PartnerID *uint64    `json:"partner_id"`
	Notes     *string    `json:"notes"`
}

type CreateEnrollmentDTO struct {
	StudentID uint64     `json:"student_id" validate:"required"`
	CourseID  uint64     `json:"course_id" validate:"required"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Notes     *string    `json:"notes"`
}
