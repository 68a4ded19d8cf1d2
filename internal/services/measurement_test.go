package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"window-crm/internal/entities"
	"window-crm/pkg/eventbus"
	apperrors "window-crm/pkg/errors"
)

func newMeasurementServiceForTest() (*MeasurementService, *fakeMeasurementRepo, *fakeOrderRepo, *fakeLeadRepo) {
	measurementRepo := newFakeMeasurementRepo()
	orderRepo := newFakeOrderRepo()
	leadRepo := newFakeLeadRepo()
	logger := zap.NewNop()
	svc := NewMeasurementService(measurementRepo, orderRepo, leadRepo, eventbus.New(logger), logger)
	return svc, measurementRepo, orderRepo, leadRepo
}

func seedMeasurement(measurementRepo *fakeMeasurementRepo, leadRepo *fakeLeadRepo, state string) uint64 {
	partnerID := uint64(1)
	leadID := leadRepo.add(entities.Lead{Name: "Остекление квартиры", PartnerID: &partnerID, StageID: 2})
	return measurementRepo.add(entities.Measurement{
		Number:      "ZAM-00001",
		LeadID:      leadID,
		PartnerID:   &partnerID,
		DatePlanned: time.Now(),
		MeasurerID:  7,
		State:       state,
	})
}

func TestMeasurementTransitions(t *testing.T) {
	svc, measurementRepo, _, leadRepo := newMeasurementServiceForTest()
	ctx := context.Background()
	id := seedMeasurement(measurementRepo, leadRepo, entities.MeasureDraft)

	// из черновика нельзя сразу начать работы
	_, err := svc.Start(ctx, id)
	require.Error(t, err)
	assert.IsType(t, &apperrors.ValidationError{}, err)

	m, err := svc.Confirm(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.MeasurePlanned, m.State)

	m, err = svc.Start(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.MeasureInProgress, m.State)

	// повторное подтверждение из in_progress недопустимо
	_, err = svc.Confirm(ctx, id)
	require.Error(t, err)
}

func TestMeasurementComplete_RequiresDimensions(t *testing.T) {
	svc, measurementRepo, _, leadRepo := newMeasurementServiceForTest()
	ctx := context.Background()
	id := seedMeasurement(measurementRepo, leadRepo, entities.MeasureInProgress)

	_, err := svc.Complete(ctx, id)
	require.Error(t, err, "замер без размеров не должен завершаться")
	assert.IsType(t, &apperrors.ValidationError{}, err)

	width, height := 1450.0, 1600.0
	measurementRepo.items[id].Width = width
	measurementRepo.items[id].Height = height

	m, err := svc.Complete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.MeasureDone, m.State)
	require.NotNil(t, m.DateDone)
}

func TestMeasurementCancel(t *testing.T) {
	svc, measurementRepo, _, leadRepo := newMeasurementServiceForTest()
	ctx := context.Background()
	id := seedMeasurement(measurementRepo, leadRepo, entities.MeasurePlanned)

	m, err := svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.MeasureCancelled, m.State)

	// отмененный замер закрыт окончательно
	_, err = svc.Cancel(ctx, id)
	require.Error(t, err)
}

func TestCreateOffer_CopiesWindowSpecs(t *testing.T) {
	svc, measurementRepo, orderRepo, leadRepo := newMeasurementServiceForTest()
	ctx := context.Background()
	id := seedMeasurement(measurementRepo, leadRepo, entities.MeasureDone)

	profile := entities.ProfilePVC5
	glass := entities.GlassDouble
	m := measurementRepo.items[id]
	m.ProfileType = &profile
	m.GlassUnitType = &glass
	m.Width = 1450
	m.Height = 1600

	order, err := svc.CreateOffer(ctx, id)
	require.NoError(t, err)
	assert.True(t, order.IsWindowOrder)
	assert.Equal(t, entities.OrderDraft, order.State)
	require.NotNil(t, order.WindowProfileType)
	assert.Equal(t, profile, *order.WindowProfileType)
	assert.Equal(t, 1450.0, order.WindowWidth)
	assert.Equal(t, 1600.0, order.WindowHeight)

	// лид получает ссылку на договор ровно один раз
	lead, err := leadRepo.FindLead(ctx, m.LeadID)
	require.NoError(t, err)
	require.NotNil(t, lead.ContractID)
	assert.Equal(t, order.ID, *lead.ContractID)

	_ = orderRepo
}

func TestCreateOffer_Idempotent(t *testing.T) {
	svc, measurementRepo, orderRepo, leadRepo := newMeasurementServiceForTest()
	ctx := context.Background()
	id := seedMeasurement(measurementRepo, leadRepo, entities.MeasureDone)
	measurementRepo.items[id].Width = 1000
	measurementRepo.items[id].Height = 1000

	first, err := svc.CreateOffer(ctx, id)
	require.NoError(t, err)

	second, err := svc.CreateOffer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, orderRepo.created, "повторный вызов не должен создавать второй заказ")
}

func TestCreateOffer_OnlyFromDoneState(t *testing.T) {
	svc, measurementRepo, _, leadRepo := newMeasurementServiceForTest()
	ctx := context.Background()
	id := seedMeasurement(measurementRepo, leadRepo, entities.MeasureInProgress)

	_, err := svc.CreateOffer(ctx, id)
	require.Error(t, err)
	assert.IsType(t, &apperrors.ValidationError{}, err)
}

func TestCreateOffer_RequiresPartner(t *testing.T) {
	svc, measurementRepo, _, leadRepo := newMeasurementServiceForTest()
	ctx := context.Background()
	id := seedMeasurement(measurementRepo, leadRepo, entities.MeasureDone)
	measurementRepo.items[id].PartnerID = nil

	_, err := svc.CreateOffer(ctx, id)
	require.Error(t, err)
	httpErr, ok := err.(*apperrors.HttpError)
	require.True(t, ok)
	assert.Equal(t, 400, httpErr.Code)
}
