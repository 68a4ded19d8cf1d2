package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"window-crm/internal/dto"
	"window-crm/internal/services"
	"window-crm/pkg/api"
)

type EducationController struct {
	educationService *services.EducationService
	logger           *zap.Logger
}

func NewEducationController(educationService *services.EducationService, logger *zap.Logger) *EducationController {
	return &EducationController{educationService: educationService, logger: logger}
}

func (c *EducationController) CreateCourse(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateCourseDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	course, err := c.educationService.CreateCourse(reqCtx, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Курс создан", course)
}

func (c *EducationController) GetCourses(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit, limitU, offsetU := parsePagination(ctx)

	courses, total, err := c.educationService.GetCourses(reqCtx, limitU, offsetU)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "Список курсов получен", courses, total, page, limit)
}

func (c *EducationController) FindCourse(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	course, err := c.educationService.FindCourse(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Курс найден", course)
}

func (c *EducationController) OpenCourse(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	course, err := c.educationService.OpenCourse(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Набор на курс открыт", course)
}

func (c *EducationController) CreateStudent(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateStudentDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	student, err := c.educationService.CreateStudent(reqCtx, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Студент создан", student)
}

func (c *EducationController) GetStudents(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit, limitU, offsetU := parsePagination(ctx)

	students, total, err := c.educationService.GetStudents(reqCtx, limitU, offsetU)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "Список студентов получен", students, total, page, limit)
}

func (c *EducationController) FindStudent(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	student, err := c.educationService.FindStudent(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Студент найден", student)
}

// Enroll записывает студента на курс.
func (c *EducationController) Enroll(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateEnrollmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	enrollment, err := c.educationService.Enroll(reqCtx, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Студент записан на курс", enrollment)
}

type advanceEnrollmentRequest struct {
	State string `json:"state" validate:"required,oneof=enrolled in_progress completed"`
}

func (c *EducationController) AdvanceEnrollment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	var payload advanceEnrollmentRequest
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	enrollment, err := c.educationService.AdvanceEnrollment(reqCtx, id, payload.State)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Статус записи обновлен", enrollment)
}

func (c *EducationController) CancelEnrollment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	enrollment, err := c.educationService.CancelEnrollment(reqCtx, id)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Запись отменена", enrollment)
}

type updateProgressRequest struct {
	Progress   float64  `json:"progress" validate:"gte=0,lte=100"`
	FinalGrade *float64 `json:"final_grade" validate:"omitempty,gte=0,lte=100"`
}

func (c *EducationController) UpdateProgress(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	var payload updateProgressRequest
	if err := ctx.Bind(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := ctx.Validate(&payload); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	enrollment, err := c.educationService.UpdateProgress(reqCtx, id, payload.Progress, payload.FinalGrade)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Прогресс обновлен", enrollment)
}
