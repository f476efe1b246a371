//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/Vahe555123/busines/internal/domain"
	"github.com/Vahe555123/busines/internal/domain/model"
	"github.com/Vahe555123/busines/internal/domain/ports/adapter"
	"github.com/Vahe555123/busines/internal/domain/ports/repository"
	"github.com/Vahe555123/busines/internal/usecase"
)

// =============================
// Repositories
// =============================

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu    sync.Mutex
	store map[string]*model.Payment

	SaveFunc                  func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	UpdateStatusIfPendingFunc func(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus) (bool, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindByIDForUser(ctx context.Context, tx repository.Tx, id, userID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindByExternalID(ctx context.Context, tx repository.Tx, externalID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.ExternalPaymentID == externalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) SetExternalID(ctx context.Context, tx repository.Tx, id, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.ExternalPaymentID = externalID
	return nil
}

func (m *MockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus) (bool, error) {
	if m.UpdateStatusIfPendingFunc != nil {
		return m.UpdateStatusIfPendingFunc(ctx, tx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock PurchaseRepository ----

type MockPurchaseRepo struct {
	mu    sync.Mutex
	store map[string]*model.Purchase

	SaveFunc func(ctx context.Context, tx repository.Tx, pu *model.Purchase) error
}

var _ repository.PurchaseRepository = (*MockPurchaseRepo)(nil)

func NewMockPurchaseRepo() *MockPurchaseRepo {
	return &MockPurchaseRepo{store: make(map[string]*model.Purchase)}
}

func (m *MockPurchaseRepo) Save(ctx context.Context, tx repository.Tx, pu *model.Purchase) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, pu)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Mirror the unique payment_id constraint.
	if pu.PaymentID != nil {
		for _, existing := range m.store {
			if existing.PaymentID != nil && *existing.PaymentID == *pu.PaymentID {
				return domain.ErrAlreadyExists
			}
		}
	}
	cp := *pu
	m.store[pu.ID] = &cp
	return nil
}

func (m *MockPurchaseRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pu := range m.store {
		if pu.PaymentID != nil && *pu.PaymentID == paymentID {
			cp := *pu
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPurchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Purchase
	for _, pu := range m.store {
		if pu.UserID == userID {
			cp := *pu
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPurchaseRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// ---- Mock PricingRepository ----

type MockPricingRepo struct {
	mu    sync.Mutex
	store map[string]*model.Pricing
}

var _ repository.PricingRepository = (*MockPricingRepo)(nil)

func NewMockPricingRepo() *MockPricingRepo {
	return &MockPricingRepo{store: make(map[string]*model.Pricing)}
}

func (m *MockPricingRepo) Save(ctx context.Context, tx repository.Tx, p *model.Pricing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPricingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Pricing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPricingRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Pricing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Pricing, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.Mutex
	store map[string]*model.User
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// ---- Mock ChatRepository ----

type MockChatRepo struct {
	mu            sync.Mutex
	conversations map[string]*model.Conversation
	messages      map[string][]*model.ChatMessage
}

var _ repository.ChatRepository = (*MockChatRepo)(nil)

func NewMockChatRepo() *MockChatRepo {
	return &MockChatRepo{
		conversations: make(map[string]*model.Conversation),
		messages:      make(map[string][]*model.ChatMessage),
	}
}

func (m *MockChatRepo) SaveConversation(ctx context.Context, tx repository.Tx, c *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.conversations[c.ID] = &cp
	return nil
}

func (m *MockChatRepo) FindConversationByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *model.Conversation
	for _, c := range m.conversations {
		if c.UserID != nil && *c.UserID == userID {
			if newest == nil || c.UpdatedAt.After(newest.UpdatedAt) {
				newest = c
			}
		}
	}
	if newest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *newest
	return &cp, nil
}

func (m *MockChatRepo) FindConversationBySession(ctx context.Context, tx repository.Tx, sessionID string) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *model.Conversation
	for _, c := range m.conversations {
		if c.UserID == nil && c.SessionID != nil && *c.SessionID == sessionID {
			if newest == nil || c.UpdatedAt.After(newest.UpdatedAt) {
				newest = c
			}
		}
	}
	if newest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *newest
	return &cp, nil
}

func (m *MockChatRepo) AdoptSession(ctx context.Context, tx repository.Tx, conversationID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[conversationID]
	if !ok || c.UserID != nil {
		return domain.ErrNotFound
	}
	c.UserID = &userID
	c.SessionID = nil
	c.UpdatedAt = time.Now()
	return nil
}

func (m *MockChatRepo) SaveMessage(ctx context.Context, tx repository.Tx, msg *model.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], &cp)
	return nil
}

func (m *MockChatRepo) ListMessages(ctx context.Context, tx repository.Tx, conversationID string) ([]*model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[conversationID]
	out := make([]*model.ChatMessage, len(msgs))
	for i, msg := range msgs {
		cp := *msg
		out[i] = &cp
	}
	return out, nil
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentGateway ----

type MockPaymentGateway struct {
	mu    sync.Mutex
	Calls []string // idempotence keys, in order

	Unconfigured       bool
	CreateCheckoutFunc func(ctx context.Context, amount int64, returnURL, description, idempotenceKey string) (adapter.Checkout, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) Configured() bool { return !m.Unconfigured }

func (m *MockPaymentGateway) CreateCheckout(ctx context.Context, amount int64, returnURL, description, idempotenceKey string) (adapter.Checkout, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, idempotenceKey)
	m.mu.Unlock()
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, amount, returnURL, description, idempotenceKey)
	}
	return adapter.Checkout{
		ExternalID:      "ext-" + idempotenceKey,
		Status:          "pending",
		ConfirmationURL: "https://pay.example/confirm/" + idempotenceKey,
	}, nil
}

// ---- Mock Mailer ----

type MockMailer struct {
	mu   sync.Mutex
	Sent []string // recipient addresses

	SendFunc func(ctx context.Context, to, userName, productTitle string, price int64) error
}

var _ adapter.Mailer = (*MockMailer)(nil)

func (m *MockMailer) SendPurchaseConfirmation(ctx context.Context, to, userName, productTitle string, price int64) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, to, userName, productTitle, price); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, to)
	return nil
}

func (m *MockMailer) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// ---- Mock OpsNotifier ----

type MockOpsNotifier struct {
	mu    sync.Mutex
	Notes []adapter.PurchaseNote

	NotifyFunc func(ctx context.Context, n adapter.PurchaseNote) error
}

var _ adapter.OpsNotifier = (*MockOpsNotifier)(nil)

func (m *MockOpsNotifier) NotifyPurchase(ctx context.Context, n adapter.PurchaseNote) error {
	if m.NotifyFunc != nil {
		if err := m.NotifyFunc(ctx, n); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notes = append(m.Notes, n)
	return nil
}

func (m *MockOpsNotifier) NoteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notes)
}

// ---- Mock Broadcaster ----

type broadcastEvent struct {
	UserID string
	Event  string
	Data   any
}

type MockBroadcaster struct {
	mu     sync.Mutex
	Events []broadcastEvent
}

var _ adapter.Broadcaster = (*MockBroadcaster)(nil)

func (m *MockBroadcaster) Publish(userID, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, broadcastEvent{UserID: userID, Event: event, Data: data})
}

func (m *MockBroadcaster) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

// ---- Mock AIServiceAdapter ----

type MockAI struct {
	mu    sync.Mutex
	Calls [][]adapter.Message

	ConfiguredVal bool
	ChatFunc      func(ctx context.Context, msgs []adapter.Message) (string, error)
}

var _ adapter.AIServiceAdapter = (*MockAI)(nil)

func (m *MockAI) Configured() bool { return m.ConfiguredVal }

func (m *MockAI) Chat(ctx context.Context, msgs []adapter.Message) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, msgs)
	m.mu.Unlock()
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, msgs)
	}
	return "Здравствуйте! Чем могу помочь?", nil
}

// ---- Mock NotificationUseCase ----

type MockNotifier struct {
	mu        sync.Mutex
	Completed []*model.Purchase
	Manual    []*model.Purchase
}

var _ usecase.NotificationUseCase = (*MockNotifier)(nil)

func (m *MockNotifier) PurchaseCompleted(ctx context.Context, user *model.User, purchase *model.Purchase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Completed = append(m.Completed, purchase)
}

func (m *MockNotifier) ManualPurchase(ctx context.Context, user *model.User, purchase *model.Purchase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Manual = append(m.Manual, purchase)
}

func (m *MockNotifier) CompletedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Completed)
}

// =============================
// Infrastructure
// =============================

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

// WithTx runs the function immediately without a real transaction. Assign
// WithTxFunc for tests that need to verify transactional behavior.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}
