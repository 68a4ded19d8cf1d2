package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"window-crm/internal/entities"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/utils"
)

const (
	courseTable  = "courses"
	courseFields = "id, name, code, description, duration_hours, price, instructor_id, state, active, created_at"

	studentTable  = "students"
	studentFields = "id, name, email, phone, birth_date, partner_id, notes, active, created_at"

	enrollmentTable  = "enrollments"
	enrollmentFields = `id, student_id, course_id, enrollment_date, start_date, end_date, state,
		final_grade, progress, certificate_issued, notes, created_at`
)

type EducationRepositoryInterface interface {
	CreateCourse(ctx context.Context, c entities.Course) (uint64, error)
	FindCourse(ctx context.Context, id uint64) (*entities.Course, error)
	GetCourses(ctx context.Context, limit, offset uint64) ([]entities.Course, uint64, error)
	UpdateCourseState(ctx context.Context, id uint64, state string) error

	CreateStudent(ctx context.Context, s entities.Student) (uint64, error)
	FindStudent(ctx context.Context, id uint64) (*entities.Student, error)
	GetStudents(ctx context.Context, limit, offset uint64) ([]entities.Student, uint64, error)

	CreateEnrollment(ctx context.Context, e entities.Enrollment) (uint64, error)
	FindEnrollment(ctx context.Context, id uint64) (*entities.Enrollment, error)
	FindActiveEnrollment(ctx context.Context, studentID, courseID uint64) (*entities.Enrollment, error)
	UpdateEnrollmentState(ctx context.Context, id uint64, state string) error
	UpdateEnrollmentProgress(ctx context.Context, id uint64, progress float64, finalGrade *float64) error
}

type educationRepository struct{ storage *pgxpool.Pool }

func NewEducationRepository(storage *pgxpool.Pool) EducationRepositoryInterface {
	return &educationRepository{storage: storage}
}

func scanCourse(row pgx.Row) (*entities.Course, error) {
	var c entities.Course
	var description sql.NullString
	var instructorID sql.NullInt64
	err := row.Scan(&c.ID, &c.Name, &c.Code, &description, &c.DurationHours, &c.Price,
		&instructorID, &c.State, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	c.Description = utils.NullStringToPtr(description)
	c.InstructorID = utils.NullInt64ToPtr(instructorID)
	return &c, nil
}

func (r *educationRepository) CreateCourse(ctx context.Context, c entities.Course) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+courseTable+` (name, code, description, duration_hours, price, instructor_id, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		c.Name, c.Code, utils.PtrToNullString(c.Description), c.DurationHours, c.Price,
		utils.PtrToNullInt64(c.InstructorID), c.State,
	).Scan(&id)
	return id, err
}

func (r *educationRepository) FindCourse(ctx context.Context, id uint64) (*entities.Course, error) {
	return scanCourse(r.storage.QueryRow(ctx,
		"SELECT "+courseFields+" FROM "+courseTable+" WHERE id = $1 AND active = true", id))
}

func (r *educationRepository) GetCourses(ctx context.Context, limit, offset uint64) ([]entities.Course, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+courseTable+" WHERE active = true").Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Course{}, 0, nil
	}

	rows, err := r.storage.Query(ctx,
		"SELECT "+courseFields+" FROM "+courseTable+" WHERE active = true ORDER BY name LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses := make([]entities.Course, 0)
	for rows.Next() {
		var c entities.Course
		var description sql.NullString
		var instructorID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &description, &c.DurationHours, &c.Price,
			&instructorID, &c.State, &c.Active, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		c.Description = utils.NullStringToPtr(description)
		c.InstructorID = utils.NullInt64ToPtr(instructorID)
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

func (r *educationRepository) UpdateCourseState(ctx context.Context, id uint64, state string) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+courseTable+" SET state = $2 WHERE id = $1 AND active = true", id, state)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanStudent(row pgx.Row) (*entities.Student, error) {
	var s entities.Student
	var email, phone, notes sql.NullString
	var birthDate sql.NullTime
	var partnerID sql.NullInt64
	err := row.Scan(&s.ID, &s.Name, &email, &phone, &birthDate, &partnerID, &notes, &s.Active, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	s.Email = utils.NullStringToPtr(email)
	s.Phone = utils.NullStringToPtr(phone)
	s.BirthDate = utils.NullTimeToPtr(birthDate)
	s.PartnerID = utils.NullInt64ToPtr(partnerID)
	s.Notes = utils.NullStringToPtr(notes)
	return &s, nil
}

func (r *educationRepository) CreateStudent(ctx context.Context, s entities.Student) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+studentTable+` (name, email, phone, birth_date, partner_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		s.Name, utils.PtrToNullString(s.Email), utils.PtrToNullString(s.Phone),
		utils.PtrToNullTime(s.BirthDate), utils.PtrToNullInt64(s.PartnerID),
		utils.PtrToNullString(s.Notes),
	).Scan(&id)
	return id, err
}

func (r *educationRepository) FindStudent(ctx context.Context, id uint64) (*entities.Student, error) {
	return scanStudent(r.storage.QueryRow(ctx,
		"SELECT "+studentFields+" FROM "+studentTable+" WHERE id = $1 AND active = true", id))
}

func (r *educationRepository) GetStudents(ctx context.Context, limit, offset uint64) ([]entities.Student, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+studentTable+" WHERE active = true").Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Student{}, 0, nil
	}

	rows, err := r.storage.Query(ctx,
		"SELECT "+studentFields+" FROM "+studentTable+" WHERE active = true ORDER BY name LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students := make([]entities.Student, 0)
	for rows.Next() {
		var s entities.Student
		var email, phone, notes sql.NullString
		var birthDate sql.NullTime
		var partnerID sql.NullInt64
		if err := rows.Scan(&s.ID, &s.Name, &email, &phone, &birthDate, &partnerID, &notes,
			&s.Active, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		s.Email = utils.NullStringToPtr(email)
		s.Phone = utils.NullStringToPtr(phone)
		s.BirthDate = utils.NullTimeToPtr(birthDate)
		s.PartnerID = utils.NullInt64ToPtr(partnerID)
		s.Notes = utils.NullStringToPtr(notes)
		students = append(students, s)
	}
	return students, total, rows.Err()
}

func scanEnrollment(row pgx.Row) (*entities.Enrollment, error) {
	var e entities.Enrollment
	var startDate, endDate sql.NullTime
	var finalGrade sql.NullFloat64
	var notes sql.NullString
	err := row.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.EnrollmentDate, &startDate, &endDate,
		&e.State, &finalGrade, &e.Progress, &e.CertificateIssued, &notes, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	e.StartDate = utils.NullTimeToPtr(startDate)
	e.EndDate = utils.NullTimeToPtr(endDate)
	if finalGrade.Valid {
		e.FinalGrade = &finalGrade.Float64
	}
	e.Notes = utils.NullStringToPtr(notes)
	return &e, nil
}

func (r *educationRepository) CreateEnrollment(ctx context.Context, e entities.Enrollment) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO `+enrollmentTable+` (student_id, course_id, enrollment_date, start_date, state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		e.StudentID, e.CourseID, e.EnrollmentDate, utils.PtrToNullTime(e.StartDate), e.State,
	).Scan(&id)
	return id, err
}

func (r *educationRepository) FindEnrollment(ctx context.Context, id uint64) (*entities.Enrollment, error) {
	return scanEnrollment(r.storage.QueryRow(ctx,
		"SELECT "+enrollmentFields+" FROM "+enrollmentTable+" WHERE id = $1", id))
}

// FindActiveEnrollment ищет неотмененную запись студента на курс.
func (r *educationRepository) FindActiveEnrollment(ctx context.Context, studentID, courseID uint64) (*entities.Enrollment, error) {
	return scanEnrollment(r.storage.QueryRow(ctx, `
		SELECT `+enrollmentFields+` FROM `+enrollmentTable+`
		WHERE student_id = $1 AND course_id = $2 AND state <> $3
		ORDER BY id DESC LIMIT 1`,
		studentID, courseID, entities.EnrollmentCancelled))
}

func (r *educationRepository) UpdateEnrollmentState(ctx context.Context, id uint64, state string) error {
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+enrollmentTable+" SET state = $2 WHERE id = $1", id, state)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *educationRepository) UpdateEnrollmentProgress(ctx context.Context, id uint64, progress float64, finalGrade *float64) error {
	var grade sql.NullFloat64
	if finalGrade != nil {
		grade = sql.NullFloat64{Float64: *finalGrade, Valid: true}
	}
	tag, err := r.storage.Exec(ctx,
		"UPDATE "+enrollmentTable+" SET progress = $2, final_grade = COALESCE($3, final_grade) WHERE id = $1",
		id, progress, grade)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
