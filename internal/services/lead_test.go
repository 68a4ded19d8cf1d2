package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"window-crm/internal/dto"
	"window-crm/internal/entities"
	"window-crm/pkg/eventbus"
	apperrors "window-crm/pkg/errors"
)

type leadFixture struct {
	svc             *LeadService
	leadRepo        *fakeLeadRepo
	stageRepo       *fakeStageRepo
	partnerRepo     *fakePartnerRepo
	measurementRepo *fakeMeasurementRepo
	taskRepo        *fakeTaskRepo
}

func newLeadServiceForTest() *leadFixture {
	f := &leadFixture{
		leadRepo:        newFakeLeadRepo(),
		stageRepo:       newFakeStageRepo(),
		partnerRepo:     newFakePartnerRepo(),
		measurementRepo: newFakeMeasurementRepo(),
		taskRepo:        newFakeTaskRepo(),
	}
	logger := zap.NewNop()
	f.svc = NewLeadService(f.leadRepo, f.stageRepo, f.partnerRepo, f.measurementRepo, f.taskRepo,
		eventbus.New(logger), logger)
	return f
}

func TestCreateLead_StartsAtNewStage(t *testing.T) {
	f := newLeadServiceForTest()
	ctx := context.Background()

	lead, err := f.svc.CreateLead(ctx, dto.CreateLeadDTO{Name: "Остекление балкона"})
	require.NoError(t, err)

	stage, err := f.stageRepo.FindByID(ctx, lead.StageID)
	require.NoError(t, err)
	assert.Equal(t, entities.StageNew, stage.Code)
	assert.Equal(t, entities.LeadWarm, lead.LeadTemperature, "температура по умолчанию warm")
}

func TestCreateMeasurement_HappyPath(t *testing.T) {
	f := newLeadServiceForTest()
	ctx := context.Background()

	partnerID, _ := f.partnerRepo.CreatePartner(ctx, entities.Partner{Name: "Иванов"})
	desired := time.Now().Add(48 * time.Hour)
	address := "пр. Рудаки, 12"
	leadID := f.leadRepo.add(entities.Lead{
		Name:               "Окна в квартиру",
		PartnerID:          &partnerID,
		StageID:            1,
		DesiredDateMeasure: &desired,
		Address:            &address,
	})

	m, err := f.svc.CreateMeasurement(ctx, leadID, 7, entities.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, entities.MeasureDraft, m.State)
	assert.Equal(t, address, m.Address)
	assert.Equal(t, uint64(7), m.MeasurerID)
	assert.True(t, m.DatePlanned.Equal(desired), "дата замера берется из пожелания клиента")

	// создана задача выезда, привязанная к замеру
	require.NotNil(t, m.TaskID)
	task, err := f.taskRepo.FindTask(ctx, *m.TaskID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskKindMeasurement, task.Kind)
	require.NotNil(t, task.MeasurementID)
	assert.Equal(t, m.ID, *task.MeasurementID)

	// лид ссылается на замер
	lead, err := f.leadRepo.FindLead(ctx, leadID)
	require.NoError(t, err)
	require.NotNil(t, lead.MeasurementID)
	assert.Equal(t, m.ID, *lead.MeasurementID)
}

func TestCreateMeasurement_Idempotent(t *testing.T) {
	f := newLeadServiceForTest()
	ctx := context.Background()

	partnerID, _ := f.partnerRepo.CreatePartner(ctx, entities.Partner{Name: "Иванов"})
	leadID := f.leadRepo.add(entities.Lead{Name: "Окна", PartnerID: &partnerID, StageID: 1})

	first, err := f.svc.CreateMeasurement(ctx, leadID, 7, entities.RoleManager)
	require.NoError(t, err)

	second, err := f.svc.CreateMeasurement(ctx, leadID, 7, entities.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "повторный вызов возвращает уже созданный замер")
	assert.Len(t, f.measurementRepo.items, 1)
	assert.Len(t, f.taskRepo.items, 1)
}

func TestCreateMeasurement_RequiresPartner(t *testing.T) {
	f := newLeadServiceForTest()
	ctx := context.Background()
	leadID := f.leadRepo.add(entities.Lead{Name: "Окна без контакта", StageID: 1})

	_, err := f.svc.CreateMeasurement(ctx, leadID, 7, entities.RoleManager)
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, 400, httpErr.Code)
}

func TestUpdateStage_CallCenterBoundary(t *testing.T) {
	f := newLeadServiceForTest()
	ctx := context.Background()

	partnerID, _ := f.partnerRepo.CreatePartner(ctx, entities.Partner{Name: "Иванов"})

	// лид на стадии "Новая заявка" оператору еще доступен
	earlyID := f.leadRepo.add(entities.Lead{Name: "Новый лид", PartnerID: &partnerID, StageID: 1})
	_, err := f.svc.UpdateStage(ctx, earlyID, dto.UpdateLeadStageDTO{StageCode: entities.StageMeasureAssigned}, entities.RoleCallCenter)
	require.NoError(t, err)

	// после назначения замера лид для оператора закрыт
	lateID := f.leadRepo.add(entities.Lead{Name: "Лид в работе", PartnerID: &partnerID, StageID: 2})
	_, err = f.svc.UpdateStage(ctx, lateID, dto.UpdateLeadStageDTO{StageCode: entities.StageNew}, entities.RoleCallCenter)
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, 403, httpErr.Code)

	// менеджеру тот же переход доступен
	_, err = f.svc.UpdateStage(ctx, lateID, dto.UpdateLeadStageDTO{StageCode: entities.StageNew}, entities.RoleManager)
	require.NoError(t, err)
}

func TestUpdateStage_UnknownStage(t *testing.T) {
	f := newLeadServiceForTest()
	ctx := context.Background()
	leadID := f.leadRepo.add(entities.Lead{Name: "Лид", StageID: 1})

	_, err := f.svc.UpdateStage(ctx, leadID, dto.UpdateLeadStageDTO{StageCode: "nonexistent"}, entities.RoleManager)
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, 400, httpErr.Code)
}

func TestDeleteLead_CallCenterForbidden(t *testing.T) {
	f := newLeadServiceForTest()
	ctx := context.Background()
	leadID := f.leadRepo.add(entities.Lead{Name: "Лид", StageID: 1})

	err := f.svc.DeleteLead(ctx, leadID, entities.RoleCallCenter)
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, 403, httpErr.Code)

	require.NoError(t, f.svc.DeleteLead(ctx, leadID, entities.RoleManager))
	_, err = f.leadRepo.FindLead(ctx, leadID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
