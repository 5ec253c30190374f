package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hobbyist/models"

	"go.uber.org/zap"
)

type mockGateway struct {
	createIntentFunc func(ctx context.Context, amount float64, classID string, participants int) (*models.PaymentIntent, error)
	presentFunc      func(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentResult, error)
	creditOnlyFunc   func(ctx context.Context, amount float64, classID string, participants int) (*models.PaymentResult, error)
	confirmFunc      func(ctx context.Context, reference string) error

	mu        sync.Mutex
	confirmed []string
}

func (m *mockGateway) CreatePaymentIntent(ctx context.Context, amount float64, classID string, participants int) (*models.PaymentIntent, error) {
	if m.createIntentFunc != nil {
		return m.createIntentFunc(ctx, amount, classID, participants)
	}
	return &models.PaymentIntent{ID: "pi_test", ClientSecret: "secret", Amount: amount, Currency: "usd"}, nil
}

func (m *mockGateway) PresentPaymentUI(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentResult, error) {
	if m.presentFunc != nil {
		return m.presentFunc(ctx, intent)
	}
	return &models.PaymentResult{Success: true, PaymentIntentID: intent.ID}, nil
}

func (m *mockGateway) ProcessCreditOnlyPayment(ctx context.Context, amount float64, classID string, participants int) (*models.PaymentResult, error) {
	if m.creditOnlyFunc != nil {
		return m.creditOnlyFunc(ctx, amount, classID, participants)
	}
	return &models.PaymentResult{Success: true, Reference: "cr_test"}, nil
}

func (m *mockGateway) ConfirmPayment(ctx context.Context, reference string) error {
	m.mu.Lock()
	m.confirmed = append(m.confirmed, reference)
	m.mu.Unlock()
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, reference)
	}
	return nil
}

type mockLedger struct {
	availableFunc func(ctx context.Context, userID string) (int, error)
	useFunc       func(ctx context.Context, userID string, amount int, reason string) (bool, error)

	mu    sync.Mutex
	calls int
}

func (m *mockLedger) AvailableCredits(ctx context.Context, userID string) (int, error) {
	if m.availableFunc != nil {
		return m.availableFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockLedger) UseCredits(ctx context.Context, userID string, amount int, reason string) (bool, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.useFunc != nil {
		return m.useFunc(ctx, userID, amount, reason)
	}
	return true, nil
}

type mockStore struct {
	createFunc func(ctx context.Context, req models.BookingRequest) (*models.BookingRecord, error)

	mu       sync.Mutex
	requests []models.BookingRequest
}

func (m *mockStore) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingRecord, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &models.BookingRecord{BookingRequest: req, ID: "bk_1", ConfirmationCode: "AB1234"}, nil
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type mockCoupons struct {
	validateFunc func(ctx context.Context, code string) (*models.CouponCode, error)
}

func (m *mockCoupons) Validate(ctx context.Context, code string) (*models.CouponCode, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, code)
	}
	return nil, nil
}

// fixtureCoupons mirrors the promotional codes the app shipped with.
func fixtureCoupons() *mockCoupons {
	known := map[string]int{"SAVE20": 20, "FIRST10": 10, "STUDENT15": 15}
	return &mockCoupons{validateFunc: func(_ context.Context, code string) (*models.CouponCode, error) {
		pct, ok := known[code]
		if !ok {
			return nil, nil
		}
		return &models.CouponCode{Code: code, Percentage: pct, Active: true}, nil
	}}
}

type mockPublisher struct {
	mu     sync.Mutex
	events []models.BookingConfirmedEvent
	err    error
}

func (m *mockPublisher) PublishBookingConfirmed(_ context.Context, evt models.BookingConfirmedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return m.err
}

type mockClasses struct {
	class *models.ClassItem
	slots []models.TimeSlot
}

func (m *mockClasses) GetClass(_ context.Context, classID string) (*models.ClassItem, error) {
	if m.class == nil || m.class.ID != classID {
		return nil, nil
	}
	c := m.class.Clone()
	return &c, nil
}

func (m *mockClasses) GetTimeSlot(_ context.Context, classID, slotID string) (*models.TimeSlot, error) {
	for _, s := range m.slots {
		if s.ID == slotID && s.ClassID == classID {
			slot := s
			return &slot, nil
		}
	}
	return nil, nil
}

func (m *mockClasses) ListTimeSlots(_ context.Context, classID string, _ time.Time) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	for _, s := range m.slots {
		if s.ClassID == classID {
			out = append(out, s)
		}
	}
	return out, nil
}

// memorySessions is an in-memory SessionStore.
type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*models.BookingSession
	locks    map[string]string
	tokens   int
	saves    int
}

func newMemorySessions() *memorySessions {
	return &memorySessions{
		sessions: make(map[string]*models.BookingSession),
		locks:    make(map[string]string),
	}
}

func (m *memorySessions) Save(_ context.Context, s *models.BookingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	m.saves++
	return nil
}

func (m *memorySessions) Get(_ context.Context, id string) (*models.BookingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memorySessions) AcquireSessionLock(_ context.Context, id string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[id]; held {
		return "", false, nil
	}
	m.tokens++
	token := fmt.Sprintf("token-%d", m.tokens)
	m.locks[id] = token
	return token, true, nil
}

func (m *memorySessions) ReleaseSessionLock(_ context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[id] == token {
		delete(m.locks, id)
	}
	return nil
}

func (m *memorySessions) locked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, held := m.locks[id]
	return held
}

type recordingNotifier struct {
	mu        sync.Mutex
	snapshots []*models.BookingSession
}

func (n *recordingNotifier) SessionChanged(_ context.Context, s *models.BookingSession) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, s)
	return nil
}

func testClass() models.ClassItem {
	return models.ClassItem{
		ID:                 "class-pottery",
		Name:               "Wheel Pottery",
		BasePricePerPerson: 75,
		Equipment: []models.EquipmentItem{
			{ID: "apron", Name: "Apron", Price: 5},
			{ID: "tools", Name: "Tool kit", Price: 12.5},
		},
	}
}

func testSession() *models.BookingSession {
	return models.NewBookingSession("sess-1", "user-1", testClass(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func methodPtr(m models.PaymentMethod) *models.PaymentMethod { return &m }

// reviewSession returns a session ready to commit with the given payment method.
func reviewSession(method models.PaymentMethod) *models.BookingSession {
	s := testSession()
	slot := models.TimeSlot{ID: "slot-1", ClassID: s.Class.ID, Time: "10:00 AM", Date: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), Available: true, SpotsRemaining: 4}
	selectTimeSlot(s, slot)
	s.EmergencyContact = models.EmergencyContact{Name: "Sam", Phone: "555-0100"}
	selectPaymentMethod(s, method)
	s.AgreedToTerms = true
	s.CurrentStep = models.StepReviewBooking
	return s
}

func newTestSequencer(gw *mockGateway, store *mockStore, ledger *mockLedger, pub *mockPublisher) *BookingCommitSequencer {
	logger := zap.NewNop()
	return NewBookingCommitSequencer(NewPaymentOrchestrator(gw, logger), gw, store, ledger, pub, logger)
}
