package services

import (
	"context"
	"sync"
	"time"

	"window-crm/internal/dto"
	"window-crm/internal/entities"
	apperrors "window-crm/pkg/errors"
	"window-crm/pkg/telegram"
)

// Фейковые репозитории для юнит-тестов сервисов. Хранят данные в памяти
// и воспроизводят контракт настоящих реализаций: отсутствующая запись -
// это apperrors.ErrNotFound, ссылки выставляются только по одному разу.

type fakeMeasurementRepo struct {
	mu     sync.Mutex
	nextID uint64
	items  map[uint64]*entities.Measurement
}

func newFakeMeasurementRepo() *fakeMeasurementRepo {
	return &fakeMeasurementRepo{nextID: 1, items: map[uint64]*entities.Measurement{}}
}

func (r *fakeMeasurementRepo) add(m entities.Measurement) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	copied := m
	r.items[m.ID] = &copied
	return m.ID
}

func (r *fakeMeasurementRepo) CreateMeasurement(_ context.Context, m entities.Measurement) (uint64, error) {
	return r.add(m), nil
}

func (r *fakeMeasurementRepo) FindMeasurement(_ context.Context, id uint64) (*entities.Measurement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMeasurementRepo) GetMeasurements(_ context.Context, _, _ uint64) ([]entities.Measurement, uint64, error) {
	return nil, 0, nil
}

func (r *fakeMeasurementRepo) UpdateMeasurement(_ context.Context, id uint64, d dto.UpdateMeasurementDTO) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if d.Width != nil {
		m.Width = *d.Width
	}
	if d.Height != nil {
		m.Height = *d.Height
	}
	if d.Comments != nil {
		m.Comments = d.Comments
	}
	return nil
}

func (r *fakeMeasurementRepo) UpdateState(_ context.Context, id uint64, state string, dateDone *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.State = state
	if dateDone != nil {
		m.DateDone = dateDone
	}
	return nil
}

func (r *fakeMeasurementRepo) SetTask(_ context.Context, id, taskID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.items[id]; ok && m.TaskID == nil {
		m.TaskID = &taskID
	}
	return nil
}

func (r *fakeMeasurementRepo) SetOffer(_ context.Context, id, offerID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.items[id]; ok && m.OfferID == nil {
		m.OfferID = &offerID
	}
	return nil
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	nextID  uint64
	items   map[uint64]*entities.Order
	lines   map[uint64][]entities.OrderLine
	created int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, items: map[uint64]*entities.Order{}, lines: map[uint64][]entities.OrderLine{}}
}

func (r *fakeOrderRepo) add(o entities.Order) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.nextID++
	if o.Number == "" {
		o.Number = "SO-TEST"
	}
	copied := o
	r.items[o.ID] = &copied
	return o.ID
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, o entities.Order) (uint64, error) {
	r.mu.Lock()
	r.created++
	r.mu.Unlock()
	return r.add(o), nil
}

func (r *fakeOrderRepo) FindOrder(_ context.Context, id uint64) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) GetOrders(_ context.Context, _, _ uint64) ([]entities.Order, uint64, error) {
	return nil, 0, nil
}

func (r *fakeOrderRepo) UpdateState(_ context.Context, id uint64, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	o.State = state
	return nil
}

func (r *fakeOrderRepo) SetProduction(_ context.Context, id, productionID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.items[id]; ok && o.ProductionID == nil {
		o.ProductionID = &productionID
	}
	return nil
}

func (r *fakeOrderRepo) SetInstallationTask(_ context.Context, id, taskID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.items[id]; ok && o.InstallationTaskID == nil {
		o.InstallationTaskID = &taskID
	}
	return nil
}

func (r *fakeOrderRepo) ListByPartner(_ context.Context, partnerID uint64, limit uint64) ([]entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Order
	for _, o := range r.items {
		if o.PartnerID == partnerID && o.State != entities.OrderCancelled && uint64(len(out)) < limit {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) CreateOrderLine(_ context.Context, line entities.OrderLine) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line.ID = r.nextID
	r.nextID++
	r.lines[line.OrderID] = append(r.lines[line.OrderID], line)
	return line.ID, nil
}

func (r *fakeOrderRepo) GetOrderLines(_ context.Context, orderID uint64) ([]entities.OrderLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.OrderLine(nil), r.lines[orderID]...), nil
}

func (r *fakeOrderRepo) SumLineQty(_ context.Context, orderID, productID uint64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, line := range r.lines[orderID] {
		if line.ProductID != nil && *line.ProductID == productID {
			sum += line.Qty
		}
	}
	return sum, nil
}

type fakeLeadRepo struct {
	mu     sync.Mutex
	nextID uint64
	items  map[uint64]*entities.Lead
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{nextID: 1, items: map[uint64]*entities.Lead{}}
}

func (r *fakeLeadRepo) add(l entities.Lead) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = r.nextID
	r.nextID++
	l.Active = true
	copied := l
	r.items[l.ID] = &copied
	return l.ID
}

func (r *fakeLeadRepo) CreateLead(_ context.Context, l entities.Lead) (uint64, error) {
	return r.add(l), nil
}

func (r *fakeLeadRepo) FindLead(_ context.Context, id uint64) (*entities.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok || !l.Active {
		return nil, apperrors.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *fakeLeadRepo) GetLeads(_ context.Context, _, _ uint64) ([]entities.Lead, uint64, error) {
	return nil, 0, nil
}

func (r *fakeLeadRepo) FindLatestActiveByPartner(_ context.Context, partnerID uint64) (*entities.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *entities.Lead
	for _, l := range r.items {
		if l.Active && l.PartnerID != nil && *l.PartnerID == partnerID {
			if found == nil || l.ID > found.ID {
				found = l
			}
		}
	}
	if found == nil {
		return nil, apperrors.ErrNotFound
	}
	copied := *found
	return &copied, nil
}

func (r *fakeLeadRepo) UpdateStage(_ context.Context, id, stageID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	l.StageID = stageID
	return nil
}

func (r *fakeLeadRepo) SetLink(_ context.Context, id uint64, column string, value uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	set := func(dst **uint64) {
		if *dst == nil {
			v := value
			*dst = &v
		}
	}
	switch column {
	case "measurement_id":
		set(&l.MeasurementID)
	case "contract_id":
		set(&l.ContractID)
	case "production_id":
		set(&l.ProductionID)
	case "installation_task_id":
		set(&l.InstallationTaskID)
	case "telegram_user_id":
		set(&l.TelegramUserID)
	}
	return nil
}

func (r *fakeLeadRepo) DeleteLead(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	l.Active = false
	return nil
}

type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID uint64
	items  map[uint64]*entities.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{nextID: 1, items: map[uint64]*entities.Task{}}
}

func (r *fakeTaskRepo) add(t entities.Task) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	t.Active = true
	copied := t
	r.items[t.ID] = &copied
	return t.ID
}

func (r *fakeTaskRepo) CreateTask(_ context.Context, t entities.Task) (uint64, error) {
	return r.add(t), nil
}

func (r *fakeTaskRepo) FindTask(_ context.Context, id uint64) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok || !t.Active {
		return nil, apperrors.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTaskRepo) GetTasks(_ context.Context, _ string, _, _ uint64) ([]entities.Task, uint64, error) {
	return nil, 0, nil
}

func (r *fakeTaskRepo) UpdateInstallationState(_ context.Context, id uint64, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.InstallationState = &state
	return nil
}

func (r *fakeTaskRepo) SetDeliveryDate(_ context.Context, id uint64, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.DeliveryDate = &date
	return nil
}

type productKey struct{ profile, glass string }

type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   uint64
	products map[productKey]*entities.Product
	boms     map[uint64]*entities.Bom
	inserts  int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{nextID: 1, products: map[productKey]*entities.Product{}, boms: map[uint64]*entities.Bom{}}
}

func (r *fakeProductRepo) GetOrInsertProduct(_ context.Context, name, profileType, glassUnitType string) (*entities.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := productKey{profileType, glassUnitType}
	if p, ok := r.products[key]; ok {
		copied := *p
		return &copied, nil
	}
	r.inserts++
	p := &entities.Product{
		ID:              r.nextID,
		Name:            name,
		ProfileType:     profileType,
		GlassUnitType:   glassUnitType,
		IsWindowProduct: true,
		SaleOK:          true,
	}
	r.nextID++
	r.products[key] = p
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) GetOrInsertBom(_ context.Context, productID uint64) (*entities.Bom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.boms[productID]; ok {
		copied := *b
		return &copied, nil
	}
	b := &entities.Bom{ID: r.nextID, ProductID: productID, Qty: 1, BomType: "normal"}
	r.nextID++
	r.boms[productID] = b
	copied := *b
	return &copied, nil
}

func (r *fakeProductRepo) FindProduct(_ context.Context, id uint64) (*entities.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeProductionRepo struct {
	mu     sync.Mutex
	nextID uint64
	items  map[uint64]*entities.Production
}

func newFakeProductionRepo() *fakeProductionRepo {
	return &fakeProductionRepo{nextID: 1, items: map[uint64]*entities.Production{}}
}

func (r *fakeProductionRepo) CreateProduction(_ context.Context, p entities.Production) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	if p.Number == "" {
		p.Number = "MO-TEST"
	}
	copied := p
	r.items[p.ID] = &copied
	return p.ID, nil
}

func (r *fakeProductionRepo) FindProduction(_ context.Context, id uint64) (*entities.Production, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductionRepo) GetProductions(_ context.Context, _, _ uint64) ([]entities.Production, uint64, error) {
	return nil, 0, nil
}

func (r *fakeProductionRepo) UpdateState(_ context.Context, id uint64, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.State = state
	return nil
}

type fakeTicketRepo struct {
	mu     sync.Mutex
	nextID uint64
	items  map[uint64]*entities.ServiceTicket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{nextID: 1, items: map[uint64]*entities.ServiceTicket{}}
}

func (r *fakeTicketRepo) CreateTicket(_ context.Context, t entities.ServiceTicket) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	if t.Number == "" {
		t.Number = "SRV-TEST"
	}
	copied := t
	r.items[t.ID] = &copied
	return t.ID, nil
}

func (r *fakeTicketRepo) FindTicket(_ context.Context, id uint64) (*entities.ServiceTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTicketRepo) GetTickets(_ context.Context, _, _ uint64) ([]entities.ServiceTicket, uint64, error) {
	return nil, 0, nil
}

func (r *fakeTicketRepo) UpdateWarranty(_ context.Context, id uint64, installationDate *time.Time, warrantyStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.InstallationDate = installationDate
	t.WarrantyStatus = warrantyStatus
	return nil
}

func (r *fakeTicketRepo) UpdateState(_ context.Context, id uint64, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.State = state
	return nil
}

func (r *fakeTicketRepo) Assign(_ context.Context, id, userID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.AssignedUserID = &userID
	t.State = entities.TicketAssigned
	return nil
}

func (r *fakeTicketRepo) Resolve(_ context.Context, id uint64, resolution string, dateResolved time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.Resolution = &resolution
	t.DateResolved = &dateResolved
	t.State = entities.TicketResolved
	return nil
}

type fakeStageRepo struct {
	stages []entities.CrmStage
}

func newFakeStageRepo() *fakeStageRepo {
	return &fakeStageRepo{stages: []entities.CrmStage{
		{ID: 1, Code: entities.StageNew, Name: "Новая заявка", Sequence: 10},
		{ID: 2, Code: entities.StageMeasureAssigned, Name: "Назначен замер", Sequence: 20},
		{ID: 3, Code: entities.StageMeasureDone, Name: "Замер выполнен", Sequence: 30},
		{ID: 4, Code: entities.StageOfferSent, Name: "КП отправлено", Sequence: 40},
		{ID: 5, Code: entities.StageContract, Name: "Договор подписан", Sequence: 50},
		{ID: 6, Code: entities.StageProduction, Name: "В производстве", Sequence: 60},
		{ID: 7, Code: entities.StageReadyDelivery, Name: "Готово к доставке", Sequence: 70},
		{ID: 8, Code: entities.StageCompleted, Name: "Завершено", Sequence: 80},
	}}
}

func (r *fakeStageRepo) GetStages(_ context.Context) ([]entities.CrmStage, error) {
	return append([]entities.CrmStage(nil), r.stages...), nil
}

func (r *fakeStageRepo) FindByID(_ context.Context, id uint64) (*entities.CrmStage, error) {
	for _, s := range r.stages {
		if s.ID == id {
			copied := s
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeStageRepo) FindByCode(_ context.Context, code string) (*entities.CrmStage, error) {
	for _, s := range r.stages {
		if s.Code == code {
			copied := s
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakePartnerRepo struct {
	mu     sync.Mutex
	nextID uint64
	items  map[uint64]*entities.Partner
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{nextID: 1, items: map[uint64]*entities.Partner{}}
}

func (r *fakePartnerRepo) CreatePartner(_ context.Context, p entities.Partner) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	copied := p
	r.items[p.ID] = &copied
	return p.ID, nil
}

func (r *fakePartnerRepo) FindPartner(_ context.Context, id uint64) (*entities.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

type fakeTelegramRepo struct {
	mu       sync.Mutex
	nextID   uint64
	users    map[uint64]*entities.TelegramUser
	messages []entities.TelegramMessage
	config   *entities.TelegramBotConfig
}

func newFakeTelegramRepo() *fakeTelegramRepo {
	return &fakeTelegramRepo{
		nextID: 1,
		users:  map[uint64]*entities.TelegramUser{},
		config: &entities.TelegramBotConfig{ID: 1, BotName: "test_bot", WebhookSecret: "secret", Active: true},
	}
}

func (r *fakeTelegramRepo) FindUserByTelegramID(_ context.Context, telegramID int64) (*entities.TelegramUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramID == telegramID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeTelegramRepo) FindUserByID(_ context.Context, id uint64) (*entities.TelegramUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeTelegramRepo) CreateUser(_ context.Context, u entities.TelegramUser) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.TelegramID == u.TelegramID {
			return existing.ID, nil
		}
	}
	u.ID = r.nextID
	r.nextID++
	copied := u
	r.users[u.ID] = &copied
	return u.ID, nil
}

func (r *fakeTelegramRepo) UpdateChatID(_ context.Context, id uint64, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.ChatID = chatID
	}
	return nil
}

func (r *fakeTelegramRepo) MarkVerified(_ context.Context, id uint64, verifiedDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.IsVerified = true
	u.VerifiedDate = &verifiedDate
	return nil
}

func (r *fakeTelegramRepo) TouchLastMessage(_ context.Context, id uint64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastMessageDate = &at
	}
	return nil
}

func (r *fakeTelegramRepo) LogMessage(_ context.Context, m entities.TelegramMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	r.messages = append(r.messages, m)
	return nil
}

func (r *fakeTelegramRepo) GetMessages(_ context.Context, telegramUserID uint64, _, _ uint64) ([]entities.TelegramMessage, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.TelegramMessage
	for _, m := range r.messages {
		if m.TelegramUserID == telegramUserID {
			out = append(out, m)
		}
	}
	return out, uint64(len(out)), nil
}

func (r *fakeTelegramRepo) FindActiveConfig(_ context.Context) (*entities.TelegramBotConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *r.config
	return &copied, nil
}

func (r *fakeTelegramRepo) FindConfigBySecret(_ context.Context, secret string) (*entities.TelegramBotConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.config.WebhookSecret != secret {
		return nil, apperrors.ErrNotFound
	}
	copied := *r.config
	return &copied, nil
}

func (r *fakeTelegramRepo) EnsureConfig(_ context.Context, c entities.TelegramBotConfig) (*entities.TelegramBotConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.config.BotName == c.BotName {
		// секрет и курсор существующей конфигурации не трогаем
		r.config.BotToken = c.BotToken
		r.config.UseWebhook = c.UseWebhook
		r.config.Active = true
	} else {
		r.config = &entities.TelegramBotConfig{
			ID:            r.config.ID + 1,
			BotName:       c.BotName,
			BotToken:      c.BotToken,
			WebhookSecret: c.WebhookSecret,
			UseWebhook:    c.UseWebhook,
			Active:        true,
		}
	}
	copied := *r.config
	return &copied, nil
}

func (r *fakeTelegramRepo) UpdateLastUpdateID(_ context.Context, id uint64, lastUpdateID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// курсор двигается только вперед, как и в SQL-реализации
	if r.config.ID == id && r.config.LastUpdateID < lastUpdateID {
		r.config.LastUpdateID = lastUpdateID
	}
	return nil
}

type fakeCacheRepo struct {
	mu       sync.Mutex
	counters map[string]int64
	values   map[string]string
	failing  bool
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{counters: map[string]int64{}, values: map[string]string{}}
}

func (r *fakeCacheRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return "", apperrors.ErrNotFound
	}
	v, ok := r.values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (r *fakeCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := value.(string); ok {
		r.values[key] = s
	}
	if b, ok := value.([]byte); ok {
		r.values[key] = string(b)
	}
	return nil
}

func (r *fakeCacheRepo) Del(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		delete(r.values, k)
		delete(r.counters, k)
	}
	return nil
}

func (r *fakeCacheRepo) Incr(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return 0, apperrors.ErrNotFound
	}
	r.counters[key]++
	return r.counters[key], nil
}

func (r *fakeCacheRepo) Expire(_ context.Context, _ string, _ time.Duration) (bool, error) {
	return true, nil
}

// fakeTelegramClient записывает исходящие сообщения и отдает заранее
// подготовленные пачки обновлений.
type fakeTelegramClient struct {
	mu      sync.Mutex
	sent    []sentMessage
	updates []telegram.Update
	webhook string
}

type sentMessage struct {
	ChatID int64
	Text   string
}

func (c *fakeTelegramClient) SendMessage(_ context.Context, chatID int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (c *fakeTelegramClient) SendMessageEx(ctx context.Context, chatID int64, text string, _ ...telegram.MessageOption) error {
	return c.SendMessage(ctx, chatID, text)
}

func (c *fakeTelegramClient) GetUpdates(_ context.Context, offset int64, limit int) ([]telegram.Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []telegram.Update
	for _, upd := range c.updates {
		if upd.UpdateID >= offset && len(out) < limit {
			out = append(out, upd)
		}
	}
	return out, nil
}

func (c *fakeTelegramClient) SetWebhook(_ context.Context, webhookURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.webhook = webhookURL
	return nil
}

func (c *fakeTelegramClient) DeleteWebhook(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.webhook = ""
	return nil
}

func (c *fakeTelegramClient) lastMessage() *sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return nil
	}
	return &c.sent[len(c.sent)-1]
}
