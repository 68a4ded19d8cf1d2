package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"window-crm/internal/dto"
	"window-crm/internal/entities"
	"window-crm/pkg/eventbus"
)

func newOrderServiceForTest() (*OrderService, *fakeOrderRepo, *fakeProductRepo, *fakeProductionRepo, *fakeLeadRepo) {
	orderRepo := newFakeOrderRepo()
	productRepo := newFakeProductRepo()
	productionRepo := newFakeProductionRepo()
	leadRepo := newFakeLeadRepo()
	logger := zap.NewNop()
	svc := NewOrderService(orderRepo, productRepo, productionRepo, leadRepo, eventbus.New(logger), logger)
	return svc, orderRepo, productRepo, productionRepo, leadRepo
}

func seedWindowOrder(orderRepo *fakeOrderRepo, leadRepo *fakeLeadRepo, state string) uint64 {
	partnerID := uint64(1)
	leadID := leadRepo.add(entities.Lead{Name: "Остекление", PartnerID: &partnerID, StageID: 5})
	profile := entities.ProfilePVC5
	glass := entities.GlassDouble
	return orderRepo.add(entities.Order{
		Number:              "SO-00001",
		PartnerID:           partnerID,
		LeadID:              &leadID,
		IsWindowOrder:       true,
		WindowProfileType:   &profile,
		WindowGlassUnitType: &glass,
		WindowWidth:         1450,
		WindowHeight:        1600,
		State:               state,
	})
}

func TestOrderConfirm_LaunchesProduction(t *testing.T) {
	svc, orderRepo, productRepo, productionRepo, leadRepo := newOrderServiceForTest()
	ctx := context.Background()
	id := seedWindowOrder(orderRepo, leadRepo, entities.OrderDraft)

	order, err := svc.Confirm(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderConfirmed, order.State)
	require.NotNil(t, order.ProductionID)

	production, err := productionRepo.FindProduction(ctx, *order.ProductionID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProductionConfirmed, production.State)
	assert.Equal(t, order.Number, production.Origin)
	assert.Equal(t, 1.0, production.Qty, "без позиций количество по умолчанию 1")
	require.NotNil(t, production.OrderID)
	assert.Equal(t, id, *production.OrderID)

	assert.Equal(t, 1, productRepo.inserts, "продукт создается по натуральному ключу один раз")

	// лид получает ссылку на производство
	lead, err := leadRepo.FindLead(ctx, *order.LeadID)
	require.NoError(t, err)
	require.NotNil(t, lead.ProductionID)
}

func TestOrderConfirm_Idempotent(t *testing.T) {
	svc, orderRepo, productRepo, productionRepo, leadRepo := newOrderServiceForTest()
	ctx := context.Background()
	id := seedWindowOrder(orderRepo, leadRepo, entities.OrderDraft)

	first, err := svc.Confirm(ctx, id)
	require.NoError(t, err)

	second, err := svc.Confirm(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, *first.ProductionID, *second.ProductionID)
	assert.Len(t, productionRepo.items, 1, "повторное подтверждение не плодит производственные заказы")
	assert.Equal(t, 1, productRepo.inserts)
}

func TestOrderConfirm_QtyFromLines(t *testing.T) {
	svc, orderRepo, productRepo, productionRepo, leadRepo := newOrderServiceForTest()
	ctx := context.Background()
	id := seedWindowOrder(orderRepo, leadRepo, entities.OrderDraft)

	// продукт заводится заранее, чтобы привязать к нему позиции заказа
	product, err := productRepo.GetOrInsertProduct(ctx,
		"Окно ПВХ 5-камерный / Двухкамерный", entities.ProfilePVC5, entities.GlassDouble)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.AddOrderLine(ctx, id, dto.CreateOrderLineDTO{
			ProductID:    &product.ID,
			Description:  "Окно кухня",
			Qty:          1,
			PriceUnit:    12000,
			WindowWidth:  1450,
			WindowHeight: 1600,
		})
		require.NoError(t, err)
	}

	order, err := svc.Confirm(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, order.ProductionID)

	production, err := productionRepo.FindProduction(ctx, *order.ProductionID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, production.Qty, "количество берется из позиций заказа")
}

func TestOrderConfirm_WindowOrderWithoutProfile(t *testing.T) {
	svc, orderRepo, _, productionRepo, _ := newOrderServiceForTest()
	ctx := context.Background()
	id := orderRepo.add(entities.Order{
		Number:        "SO-00002",
		PartnerID:     1,
		IsWindowOrder: true,
		State:         entities.OrderDraft,
	})

	order, err := svc.Confirm(ctx, id)
	require.NoError(t, err, "заказ без параметров профиля подтверждается, но производство не стартует")
	assert.Equal(t, entities.OrderConfirmed, order.State)
	assert.Nil(t, order.ProductionID)
	assert.Empty(t, productionRepo.items)
}

func TestOrderConfirm_FromCancelledFails(t *testing.T) {
	svc, orderRepo, _, _, leadRepo := newOrderServiceForTest()
	ctx := context.Background()
	id := seedWindowOrder(orderRepo, leadRepo, entities.OrderCancelled)

	_, err := svc.Confirm(ctx, id)
	require.Error(t, err)
}

func TestAddOrderLine_OnlyBeforeConfirmation(t *testing.T) {
	svc, orderRepo, _, _, leadRepo := newOrderServiceForTest()
	ctx := context.Background()
	id := seedWindowOrder(orderRepo, leadRepo, entities.OrderConfirmed)

	_, err := svc.AddOrderLine(ctx, id, dto.CreateOrderLineDTO{Description: "Окно", Qty: 1})
	require.Error(t, err, "в подтвержденный заказ позиции не добавляются")
}

func TestOrderSendAndCancel(t *testing.T) {
	svc, orderRepo, _, _, leadRepo := newOrderServiceForTest()
	ctx := context.Background()
	id := seedWindowOrder(orderRepo, leadRepo, entities.OrderDraft)

	order, err := svc.Send(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderSent, order.State)

	// повторная отправка недопустима
	_, err = svc.Send(ctx, id)
	require.Error(t, err)

	order, err = svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderCancelled, order.State)

	_, err = svc.Cancel(ctx, id)
	require.Error(t, err)
}
