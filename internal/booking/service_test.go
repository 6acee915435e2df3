package booking

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/inventory"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/payment"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

// fakeStore is an in-memory ReservationStore.
type fakeStore struct {
	mu        sync.Mutex
	nextID    uint64
	byID      map[uint64]model.Reservation
	insertErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, byID: map[uint64]model.Reservation{}}
}

func (f *fakeStore) Insert(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	res.ID = f.nextID
	f.nextID++
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	f.byID[res.ID] = *res
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &res, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, res := range f.byID {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, res := range f.byID {
		out = append(out, res)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id uint64, p model.ReservationPatch) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	res, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if p.CheckIn != nil {
		res.CheckIn = *p.CheckIn
	}
	if p.CheckOut != nil {
		res.CheckOut = *p.CheckOut
	}
	if p.Guests != nil {
		res.Guests = *p.Guests
	}
	if p.TotalPriceCents != nil {
		res.TotalPriceCents = *p.TotalPriceCents
	}
	if p.Status != nil {
		res.Status = *p.Status
	}
	if p.Note != nil {
		res.Note = p.Note
	}
	res.UpdatedAt = time.Now().UTC()
	f.byID[id] = res
	return &res, nil
}

// fakeGateway returns scripted charge and refund outcomes and counts
// calls.
type fakeGateway struct {
	mu          sync.Mutex
	chargeOK    bool
	refundOK    bool
	charges     int
	refunds     int
	refundedIDs []string
}

func (g *fakeGateway) Charge(_ context.Context, _ int64, _ uint64) payment.Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges++
	if g.chargeOK {
		return payment.Outcome{Success: true, PaymentID: "pay_test", Message: "ok"}
	}
	return payment.Outcome{Success: false, Message: "card declined"}
}

func (g *fakeGateway) Refund(_ context.Context, paymentID string) payment.Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds++
	g.refundedIDs = append(g.refundedIDs, paymentID)
	if g.refundOK {
		return payment.Outcome{Success: true, Message: "ok"}
	}
	return payment.Outcome{Success: false, Message: "refund rejected"}
}

// fakeInventory records availability pushes; err makes every call fail.
type fakeInventory struct {
	mu        sync.Mutex
	available bool
	err       error
	sets      []bool
}

func (i *fakeInventory) CheckAvailability(_ context.Context, roomID uint64) (inventory.RoomStatus, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return inventory.RoomStatus{}, i.err
	}
	return inventory.RoomStatus{RoomID: roomID, Available: i.available}, nil
}

func (i *fakeInventory) SetAvailability(_ context.Context, _ uint64, available bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return i.err
	}
	i.sets = append(i.sets, available)
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu        sync.Mutex
	confirmed []queue.ReservationEvent
	cancelled []queue.ReservationEvent
}

func (p *fakePublisher) ReservationConfirmed(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmed = append(p.confirmed, ev)
	return nil
}

func (p *fakePublisher) ReservationCancelled(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, ev)
	return nil
}

type fixture struct {
	store     *fakeStore
	gateway   *fakeGateway
	inventory *fakeInventory
	publisher *fakePublisher
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		store:     newFakeStore(),
		gateway:   &fakeGateway{chargeOK: true, refundOK: true},
		inventory: &fakeInventory{available: true},
		publisher: &fakePublisher{},
	}
	f.svc = NewService(f.store, f.gateway, f.inventory, f.publisher)
	return f
}

// Actors matching validInput's owner (user 3) and an administrator.
var (
	asOwner = Actor{UserID: 3}
	asAdmin = Actor{Admin: true}
)

func validInput() CreateInput {
	checkIn := time.Date(2026, 10, 1, 15, 0, 0, 0, time.UTC)
	return CreateInput{
		UserID:          3,
		RoomID:          12,
		CheckIn:         checkIn,
		CheckOut:        checkIn.AddDate(0, 0, 2),
		Guests:          2,
		TotalPriceCents: 40_000,
	}
}

func TestCreateSuccess(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, model.StatusConfirmed, res.Status)
	require.NotNil(t, res.PaymentRef)
	assert.Equal(t, "pay_test", *res.PaymentRef)
	assert.NotZero(t, res.ID)

	stored, err := f.store.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, stored.Status)

	assert.Equal(t, []bool{false}, f.inventory.sets, "room should be marked unavailable")
	require.Len(t, f.publisher.confirmed, 1)
	assert.Equal(t, res.ID, f.publisher.confirmed[0].ReservationID)
}

func TestCreateChargeDeclined(t *testing.T) {
	f := newFixture()
	f.gateway.chargeOK = false

	res, err := f.svc.Create(context.Background(), validInput())
	require.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Nil(t, res)

	all, _ := f.store.ListAll(context.Background())
	assert.Empty(t, all, "nothing may be persisted after a declined charge")
	assert.Empty(t, f.inventory.sets)
	assert.Empty(t, f.publisher.confirmed)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture()

	cases := map[string]func(*CreateInput){
		"missing user":   func(in *CreateInput) { in.UserID = 0 },
		"missing room":   func(in *CreateInput) { in.RoomID = 0 },
		"inverted dates": func(in *CreateInput) { in.CheckOut = in.CheckIn.AddDate(0, 0, -1) },
		"equal dates":    func(in *CreateInput) { in.CheckOut = in.CheckIn },
		"zero guests":    func(in *CreateInput) { in.Guests = 0 },
		"negative price": func(in *CreateInput) { in.TotalPriceCents = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := f.svc.Create(context.Background(), in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Zero(t, f.gateway.charges, "validation failures must not reach the gateway")
}

func TestCreateProceedsWhenInventoryUnreachable(t *testing.T) {
	f := newFixture()
	f.inventory.err = errors.New("connection refused")

	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, res.Status)
}

func TestCreateProceedsWhenRoomReportedUnavailable(t *testing.T) {
	f := newFixture()
	f.inventory.available = false

	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, res.Status)
}

func TestCreateRefundsWhenInsertFails(t *testing.T) {
	f := newFixture()
	f.store.insertErr = errors.New("deadlock")

	_, err := f.svc.Create(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, 1, f.gateway.refunds, "charge must be compensated when persistence fails")
	assert.Equal(t, []string{"pay_test"}, f.gateway.refundedIDs)
}

func TestGetNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Get(context.Background(), 99, asOwner)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCancelSuccess(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), res.ID, asOwner)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, 1, f.gateway.refunds)

	assert.Equal(t, []bool{false, true}, f.inventory.sets, "room should be released after cancel")
	require.Len(t, f.publisher.cancelled, 1)
	assert.Equal(t, res.ID, f.publisher.cancelled[0].ReservationID)
}

func TestCancelTwiceReturnsAlreadyCancelled(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), res.ID, asOwner)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), res.ID, asOwner)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, 1, f.gateway.refunds, "second cancel must not refund again")
}

func TestCancelNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Cancel(context.Background(), 404, asOwner)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.gateway.refunds)
}

func TestCancelRefundDeclinedLeavesReservationIntact(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	f.gateway.refundOK = false
	_, err = f.svc.Cancel(context.Background(), res.ID, asOwner)
	require.ErrorIs(t, err, ErrRefundDeclined)

	current, err := f.svc.Get(context.Background(), res.ID, asOwner)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, current.Status, "declined refund must not change state")

	// The failure is transient from the caller's point of view; a
	// later retry with a working gateway goes through.
	f.gateway.refundOK = true
	cancelled, err := f.svc.Cancel(context.Background(), res.ID, asOwner)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
}

func TestCancelWithoutPaymentRefSkipsRefund(t *testing.T) {
	f := newFixture()
	f.store.byID[5] = model.Reservation{
		ID: 5, UserID: 3, RoomID: 12, Guests: 1, Status: model.StatusConfirmed,
	}

	cancelled, err := f.svc.Cancel(context.Background(), 5, asOwner)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Zero(t, f.gateway.refunds)
}

func TestUpdateFields(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	guests := uint32(4)
	note := "late arrival"
	updated, err := f.svc.Update(context.Background(), res.ID, asOwner, UpdateInput{
		Guests: &guests,
		Note:   &note,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(4), updated.Guests)
	require.NotNil(t, updated.Note)
	assert.Equal(t, "late arrival", *updated.Note)
	assert.Equal(t, model.StatusConfirmed, updated.Status, "unrelated fields keep their values")
}

func TestUpdateRejectsDirectStatusEdit(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	status := model.StatusCancelled
	_, err = f.svc.Update(context.Background(), res.ID, asOwner, UpdateInput{Status: &status})
	require.ErrorIs(t, err, ErrValidation)

	current, _ := f.svc.Get(context.Background(), res.ID, asOwner)
	assert.Equal(t, model.StatusConfirmed, current.Status)
}

func TestUpdateCancelledReservationRejected(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), res.ID, asOwner)
	require.NoError(t, err)

	guests := uint32(3)
	_, err = f.svc.Update(context.Background(), res.ID, asOwner, UpdateInput{Guests: &guests})
	require.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestUpdateNotFound(t *testing.T) {
	f := newFixture()
	guests := uint32(3)
	_, err := f.svc.Update(context.Background(), 404, asOwner, UpdateInput{Guests: &guests})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestForeignReservationAccessForbidden(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	stranger := Actor{UserID: 99}

	_, err = f.svc.Get(context.Background(), res.ID, stranger)
	require.ErrorIs(t, err, ErrForbidden)

	guests := uint32(3)
	_, err = f.svc.Update(context.Background(), res.ID, stranger, UpdateInput{Guests: &guests})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Cancel(context.Background(), res.ID, stranger)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 0, f.gateway.refunds, "a foreign cancel must not reach the gateway")

	current, err := f.svc.Get(context.Background(), res.ID, asOwner)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, current.Status)
	assert.Equal(t, uint32(2), current.Guests)
}

func TestAdminMayAccessAnyReservation(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), res.ID, asAdmin)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	cancelled, err := f.svc.Cancel(context.Background(), res.ID, asAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
}

func TestListByUserReturnsOnlyOwnReservations(t *testing.T) {
	f := newFixture()

	mine := validInput()
	_, err := f.svc.Create(context.Background(), mine)
	require.NoError(t, err)

	other := validInput()
	other.UserID = 8
	_, err = f.svc.Create(context.Background(), other)
	require.NoError(t, err)

	list, err := f.svc.ListByUser(context.Background(), mine.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.UserID, list[0].UserID)

	all, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
