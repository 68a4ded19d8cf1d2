package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"window-crm/internal/dto"
	"window-crm/internal/entities"
	"window-crm/internal/repositories"
	apperrors "window-crm/pkg/errors"
)

// Переходы статусов записи на курс, только вперед.
var enrollmentOrder = map[string]int{
	entities.EnrollmentDraft:      0,
	entities.EnrollmentEnrolled:   1,
	entities.EnrollmentInProgress: 2,
	entities.EnrollmentCompleted:  3,
}

type EducationService struct {
	educationRepo repositories.EducationRepositoryInterface
	logger        *zap.Logger
}

func NewEducationService(educationRepo repositories.EducationRepositoryInterface, logger *zap.Logger) *EducationService {
	return &EducationService{educationRepo: educationRepo, logger: logger}
}

func (s *EducationService) CreateCourse(ctx context.Context, payload dto.CreateCourseDTO) (*entities.Course, error) {
	id, err := s.educationRepo.CreateCourse(ctx, entities.Course{
		Name:          payload.Name,
		Code:          payload.Code,
		Description:   payload.Description,
		DurationHours: payload.DurationHours,
		Price:         payload.Price,
		InstructorID:  payload.InstructorID,
		State:         entities.CourseDraft,
	})
	if err != nil {
		s.logger.Error("ошибка при создании курса", zap.Error(err))
		return nil, err
	}
	return s.educationRepo.FindCourse(ctx, id)
}

func (s *EducationService) FindCourse(ctx context.Context, id uint64) (*entities.Course, error) {
	return s.educationRepo.FindCourse(ctx, id)
}

func (s *EducationService) GetCourses(ctx context.Context, limit, offset uint64) ([]entities.Course, uint64, error) {
	return s.educationRepo.GetCourses(ctx, limit, offset)
}

// OpenCourse открывает набор на курс.
func (s *EducationService) OpenCourse(ctx context.Context, id uint64) (*entities.Course, error) {
	course, err := s.educationRepo.FindCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.State != entities.CourseDraft {
		return nil, apperrors.NewValidationError(
			"курс %s нельзя открыть из статуса %q", course.Code, course.State)
	}
	if err := s.educationRepo.UpdateCourseState(ctx, id, entities.CourseOpen); err != nil {
		return nil, err
	}
	return s.educationRepo.FindCourse(ctx, id)
}

func (s *EducationService) CreateStudent(ctx context.Context, payload dto.CreateStudentDTO) (*entities.Student, error) {
	id, err := s.educationRepo.CreateStudent(ctx, entities.Student{
		Name:      payload.Name,
		Email:     payload.Email,
		Phone:     payload.Phone,
		BirthDate: payload.BirthDate,
		PartnerID: payload.PartnerID,
		Notes:     payload.Notes,
	})
	if err != nil {
		s.logger.Error("ошибка при создании студента", zap.Error(err))
		return nil, err
	}
	return s.educationRepo.FindStudent(ctx, id)
}

func (s *EducationService) FindStudent(ctx context.Context, id uint64) (*entities.Student, error) {
	return s.educationRepo.FindStudent(ctx, id)
}

func (s *EducationService) GetStudents(ctx context.Context, limit, offset uint64) ([]entities.Student, uint64, error) {
	return s.educationRepo.GetStudents(ctx, limit, offset)
}

// Enroll записывает студента на курс. Повторная активная запись на тот же
// курс запрещена.
func (s *EducationService) Enroll(ctx context.Context, payload dto.CreateEnrollmentDTO) (*entities.Enrollment, error) {
	if payload.StartDate != nil && payload.EndDate != nil && payload.EndDate.Before(*payload.StartDate) {
		return nil, apperrors.NewValidationError("дата окончания курса раньше даты начала")
	}

	if _, err := s.educationRepo.FindStudent(ctx, payload.StudentID); err != nil {
		return nil, err
	}
	course, err := s.educationRepo.FindCourse(ctx, payload.CourseID)
	if err != nil {
		return nil, err
	}

	existing, err := s.educationRepo.FindActiveEnrollment(ctx, payload.StudentID, payload.CourseID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewValidationError(
			"студент уже записан на курс %s (запись №%d)", course.Code, existing.ID)
	}

	id, err := s.educationRepo.CreateEnrollment(ctx, entities.Enrollment{
		StudentID:      payload.StudentID,
		CourseID:       payload.CourseID,
		EnrollmentDate: time.Now(),
		StartDate:      payload.StartDate,
		State:          entities.EnrollmentEnrolled,
	})
	if err != nil {
		s.logger.Error("ошибка при записи на курс", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Студент записан на курс",
		zap.Uint64("studentID", payload.StudentID), zap.String("course", course.Code))
	return s.educationRepo.FindEnrollment(ctx, id)
}

// AdvanceEnrollment двигает запись на следующий статус цепочки.
func (s *EducationService) AdvanceEnrollment(ctx context.Context, id uint64, to string) (*entities.Enrollment, error) {
	e, err := s.educationRepo.FindEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.State == entities.EnrollmentCancelled {
		return nil, apperrors.NewValidationError("запись №%d отменена", id)
	}
	toOrder, ok := enrollmentOrder[to]
	if !ok || toOrder != enrollmentOrder[e.State]+1 {
		return nil, apperrors.NewValidationError(
			"переход записи %q → %q недопустим", e.State, to)
	}
	if err := s.educationRepo.UpdateEnrollmentState(ctx, id, to); err != nil {
		return nil, err
	}
	return s.educationRepo.FindEnrollment(ctx, id)
}

// CancelEnrollment отменяет запись из любого незавершенного статуса.
func (s *EducationService) CancelEnrollment(ctx context.Context, id uint64) (*entities.Enrollment, error) {
	e, err := s.educationRepo.FindEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.State == entities.EnrollmentCompleted || e.State == entities.EnrollmentCancelled {
		return nil, apperrors.NewValidationError("запись №%d уже закрыта", id)
	}
	if err := s.educationRepo.UpdateEnrollmentState(ctx, id, entities.EnrollmentCancelled); err != nil {
		return nil, err
	}
	return s.educationRepo.FindEnrollment(ctx, id)
}

// UpdateProgress обновляет прогресс прохождения курса.
func (s *EducationService) UpdateProgress(ctx context.Context, id uint64, progress float64, finalGrade *float64) (*entities.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return nil, apperrors.NewValidationError("прогресс должен быть в диапазоне 0-100")
	}
	if err := s.educationRepo.UpdateEnrollmentProgress(ctx, id, progress, finalGrade); err != nil {
		return nil, err
	}
	return s.educationRepo.FindEnrollment(ctx, id)
}
