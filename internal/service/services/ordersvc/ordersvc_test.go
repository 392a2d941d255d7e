package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/memory"
	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/caller"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/orderevent"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/orderitem"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/payment"
)

var (
	alice = caller.Caller{ID: "alice", Role: caller.RoleUser}
	bob   = caller.Caller{ID: "bob", Role: caller.RoleUser}
	admin = caller.Caller{ID: "root", Role: caller.RoleAdmin}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// sequenceRandom returns values in order and repeats the last one when exhausted.
type sequenceRandom struct {
	mu     sync.Mutex
	values []int
	next   int
}

func (r *sequenceRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := min(r.next, len(r.values)-1)
	r.next++

	return r.values[i] % n
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}

	return out
}

type fixture struct {
	svc   *OrderService
	store *memory.Store
	clock *fakeClock
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()

	store := memory.NewStore()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	opts = append([]Option{
		WithMemoryStore(store),
		WithClock(clk),
		WithIdempotencyStore(memory.NewIdempotencyStore(time.Hour)),
	}, opts...)

	return fixture{svc: MustNewOrderService(opts...), store: store, clock: clk}
}

func scenarioAInput() CreateOrderInput {
	return CreateOrderInput{
		Items: []orderitem.OrderItem{
			{ProductRef: "kurta-01", Quantity: 2, UnitPrice: decimal.NewFromInt(500), Size: "M"},
		},
		ShippingAddress: order.ShippingAddress{
			FullName:   "Alice",
			Address:    "221 Linking Rd",
			City:       "Mumbai",
			PostalCode: "400050",
			Country:    "IN",
		},
		PaymentMethod: "PayPal",
		Prices: order.PriceBreakdown{
			ItemsPrice:    decimal.NewFromInt(1000),
			TaxPrice:      decimal.NewFromInt(180),
			ShippingPrice: decimal.Zero,
			TotalPrice:    decimal.NewFromInt(1180),
		},
	}
}

func (f fixture) create(t *testing.T, c caller.Caller) *order.Order {
	t.Helper()

	o, err := f.svc.CreateOrder(context.Background(), c, scenarioAInput())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	return o
}

func (f fixture) events(t *testing.T) []orderevent.Event {
	t.Helper()

	var out []orderevent.Event
	for _, msg := range f.store.Messages() {
		var ev orderevent.Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			t.Fatalf("outbox payload is not an order event: %v", err)
		}
		out = append(out, ev)
	}

	return out
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)

	o := f.create(t, alice)

	if o.Status != order.StatusPending || o.IsPaid || o.IsDelivered {
		t.Errorf("unexpected new order state %s paid=%v delivered=%v", o.Status, o.IsPaid, o.IsDelivered)
	}
	if o.UserRef != "alice" || o.ID == "" || o.Version != 1 {
		t.Errorf("unexpected identity fields %+v", o)
	}

	stored, err := f.svc.FindByID(context.Background(), alice, o.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !stored.TotalPrice.Equal(decimal.NewFromInt(1180)) {
		t.Errorf("stored total = %s", stored.TotalPrice)
	}

	events := f.events(t)
	if len(events) != 1 || events[0].Type != orderevent.TypeCreated || events[0].OrderID != o.ID {
		t.Fatalf("outbox events = %+v", events)
	}
	if msg := f.store.Messages()[0]; msg.RoutingKey != defaultQueue || msg.MaxRetries != defaultOutboxRetries {
		t.Errorf("outbox message routing = %q retries = %d", msg.RoutingKey, msg.MaxRetries)
	}
}

func TestCreateOrderRejects(t *testing.T) {
	f := newFixture(t)

	in := scenarioAInput()
	in.Items = nil
	if _, err := f.svc.CreateOrder(context.Background(), alice, in); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("CreateOrder() with no items error = %v, want ErrValidation", err)
	}

	if _, err := f.svc.CreateOrder(context.Background(), caller.Caller{}, scenarioAInput()); !errors.Is(err, errs.ErrAuthorization) {
		t.Errorf("anonymous CreateOrder() error = %v, want ErrAuthorization", err)
	}

	if n := len(f.store.Messages()); n != 0 {
		t.Errorf("rejected creations left %d outbox messages", n)
	}
}

// flakyIdempotencyStore fails the first rememberFailures Remember calls.
type flakyIdempotencyStore struct {
	*memory.IdempotencyStore
	rememberFailures int
	rememberCalls    int
}

func (s *flakyIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	s.rememberCalls++
	if s.rememberCalls <= s.rememberFailures {
		return errors.New("redis: connection refused")
	}

	return s.IdempotencyStore.Remember(ctx, scope, key, value)
}

func TestCreateOrderReleasesKeyWhenRememberFails(t *testing.T) {
	idem := &flakyIdempotencyStore{IdempotencyStore: memory.NewIdempotencyStore(time.Hour), rememberFailures: 100}
	f := newFixture(t, WithIdempotencyStore(idem))
	ctx := context.Background()
	in := scenarioAInput()
	in.IdempotencyKey = "checkout-7"

	if _, err := f.svc.CreateOrder(ctx, alice, in); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if idem.rememberCalls != rememberRetries+1 {
		t.Errorf("Remember called %d times, want %d", idem.rememberCalls, rememberRetries+1)
	}

	if _, err := f.svc.CreateOrder(ctx, alice, in); err != nil {
		t.Errorf("retry with the same key error = %v, want the key released", err)
	}
}

func TestCreateOrderRetriesRemember(t *testing.T) {
	idem := &flakyIdempotencyStore{IdempotencyStore: memory.NewIdempotencyStore(time.Hour), rememberFailures: 1}
	f := newFixture(t, WithIdempotencyStore(idem))
	ctx := context.Background()
	in := scenarioAInput()
	in.IdempotencyKey = "checkout-8"

	first, err := f.svc.CreateOrder(ctx, alice, in)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	second, err := f.svc.CreateOrder(ctx, alice, in)
	if err != nil {
		t.Fatalf("replayed CreateOrder() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("replay created %s, want %s", second.ID, first.ID)
	}
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := scenarioAInput()
	in.IdempotencyKey = "checkout-42"

	first, err := f.svc.CreateOrder(ctx, alice, in)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	second, err := f.svc.CreateOrder(ctx, alice, in)
	if err != nil {
		t.Fatalf("replayed CreateOrder() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("replay created a new order %s, want %s", second.ID, first.ID)
	}

	other, err := f.svc.CreateOrder(ctx, bob, in)
	if err != nil {
		t.Fatalf("CreateOrder() for another user error = %v", err)
	}
	if other.ID == first.ID {
		t.Error("idempotency keys leak across users")
	}

	all, _ := f.svc.FindAll(ctx, admin, order.QueryOrdersModel{})
	if len(all) != 2 {
		t.Errorf("stored orders = %d, want 2", len(all))
	}
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, alice)
	f.clock.Advance(time.Minute)

	paid, err := f.svc.ConfirmPayment(ctx, alice, o.ID, 0, payment.Result{
		ExternalID: "px1", Status: "COMPLETED", UpdateTime: "2026-03-01T10:01:00Z", PayerEmail: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}
	if !paid.IsPaid || paid.PaidAt == nil || paid.PaymentAttempts != 1 {
		t.Errorf("unexpected paid order %+v", paid)
	}
	if paid.Version != 2 {
		t.Errorf("Version = %d, want 2", paid.Version)
	}

	events := f.events(t)
	if last := events[len(events)-1]; last.Type != orderevent.TypePaid || last.OrderVersion != 2 || last.ActorID != "alice" {
		t.Errorf("last event = %+v", last)
	}
}

func TestConfirmPaymentAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, alice)

	_, err := f.svc.ConfirmPayment(ctx, bob, o.ID, 0, payment.Result{ExternalID: "px1"})
	if !errors.Is(err, errs.ErrAuthorization) {
		t.Fatalf("ConfirmPayment() by another user error = %v, want ErrAuthorization", err)
	}
	if _, err := f.svc.ConfirmPayment(ctx, admin, o.ID, 0, payment.Result{ExternalID: "px1"}); err != nil {
		t.Fatalf("ConfirmPayment() by admin error = %v", err)
	}
	if _, err := f.svc.ConfirmPayment(ctx, alice, "missing", 0, payment.Result{ExternalID: "px1"}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("ConfirmPayment() of missing order error = %v, want ErrNotFound", err)
	}
}

func TestStaleVersionIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, alice)

	if _, err := f.svc.ConfirmPayment(ctx, alice, o.ID, o.Version, payment.Result{ExternalID: "px1"}); err != nil {
		t.Fatalf("first ConfirmPayment() error = %v", err)
	}
	_, err := f.svc.ConfirmPayment(ctx, alice, o.ID, o.Version, payment.Result{ExternalID: "px2"})
	if !errors.Is(err, errs.ErrConcurrentModification) {
		t.Fatalf("second ConfirmPayment() error = %v, want ErrConcurrentModification", err)
	}

	got, _ := f.svc.FindByID(ctx, alice, o.ID)
	if got.PaymentAttempts != 1 || got.PaymentResult.ExternalID != "px1" {
		t.Errorf("stale write was applied: attempts = %d result = %s", got.PaymentAttempts, got.PaymentResult.ExternalID)
	}
}

func TestConcurrentPaymentsLoseNoUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, alice)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ConfirmPayment(ctx, alice, o.ID, 0, payment.Result{ExternalID: "px" + string(rune('a'+i))})
			switch {
			case err == nil:
				mu.Lock()
				successes++
				mu.Unlock()
			case !errors.Is(err, errs.ErrConcurrentModification):
				t.Errorf("ConfirmPayment() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := f.svc.FindByID(ctx, alice, o.ID)
	if got.PaymentAttempts != successes {
		t.Errorf("PaymentAttempts = %d, successful calls = %d", got.PaymentAttempts, successes)
	}
	if got.Version != int64(1+successes) {
		t.Errorf("Version = %d, want %d", got.Version, 1+successes)
	}
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t, WithRandomSource(&sequenceRandom{values: []int{7}}))
	ctx := context.Background()
	o := f.create(t, alice)

	if _, err := f.svc.SetStatus(ctx, alice, o.ID, 0, order.StatusProcessing); !errors.Is(err, errs.ErrAuthorization) {
		t.Fatalf("SetStatus() by owner error = %v, want ErrAuthorization", err)
	}
	if _, err := f.svc.SetStatus(ctx, admin, o.ID, 0, order.StatusShipped); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("Pending -> Shipped error = %v, want ErrValidation", err)
	}

	if _, err := f.svc.SetStatus(ctx, admin, o.ID, 0, order.StatusProcessing); err != nil {
		t.Fatalf("SetStatus(Processing) error = %v", err)
	}
	shipped, err := f.svc.SetStatus(ctx, admin, o.ID, 0, order.StatusShipped)
	if err != nil {
		t.Fatalf("SetStatus(Shipped) error = %v", err)
	}
	if shipped.TrackingNumber == "" {
		t.Error("shipping did not assign a tracking number")
	}

	delivered, err := f.svc.SetStatus(ctx, admin, o.ID, 0, order.StatusDelivered)
	if err != nil {
		t.Fatalf("SetStatus(Delivered) error = %v", err)
	}
	if !delivered.IsDelivered {
		t.Error("Delivered status without delivery flag")
	}

	var types []orderevent.Type
	for _, ev := range f.events(t) {
		types = append(types, ev.Type)
	}
	if len(types) != 4 || types[1] != orderevent.TypeStatusChanged || types[3] != orderevent.TypeStatusChanged {
		t.Errorf("event types = %v", types)
	}
}

func TestConfirmDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, alice)

	if _, err := f.svc.ConfirmDelivery(ctx, alice, o.ID, 0); !errors.Is(err, errs.ErrAuthorization) {
		t.Fatalf("ConfirmDelivery() by owner error = %v, want ErrAuthorization", err)
	}
	got, err := f.svc.ConfirmDelivery(ctx, admin, o.ID, 0)
	if err != nil {
		t.Fatalf("ConfirmDelivery() error = %v", err)
	}
	if !got.IsDelivered || got.DeliveredAt == nil {
		t.Errorf("order not delivered: %+v", got)
	}
}

func TestAssignTrackingNumberRetriesCollisions(t *testing.T) {
	// First order takes the all-ones number, the second draws it again once
	// and then moves on to all-twos.
	values := append(append(repeat(1, 6), repeat(1, 6)...), repeat(2, 6)...)
	f := newFixture(t, WithRandomSource(&sequenceRandom{values: values}))
	ctx := context.Background()
	a := f.create(t, alice)
	b := f.create(t, bob)

	first, err := f.svc.AssignTrackingNumber(ctx, admin, a.ID, 0, "Delhivery", nil)
	if err != nil {
		t.Fatalf("AssignTrackingNumber(a) error = %v", err)
	}
	second, err := f.svc.AssignTrackingNumber(ctx, admin, b.ID, 0, "", nil)
	if err != nil {
		t.Fatalf("AssignTrackingNumber(b) error = %v", err)
	}

	if first.TrackingNumber == second.TrackingNumber {
		t.Fatalf("both orders got %s", first.TrackingNumber)
	}
	if suffix := second.TrackingNumber[len(second.TrackingNumber)-6:]; suffix != "222222" {
		t.Errorf("second number suffix = %q, want 222222", suffix)
	}
	if first.Carrier != "Delhivery" {
		t.Errorf("Carrier = %q", first.Carrier)
	}
}

func TestAssignTrackingNumberGivesUp(t *testing.T) {
	f := newFixture(t, WithRandomSource(&sequenceRandom{values: []int{1}}), WithTrackingAttempts(3))
	ctx := context.Background()
	a := f.create(t, alice)
	b := f.create(t, bob)

	if _, err := f.svc.AssignTrackingNumber(ctx, admin, a.ID, 0, "", nil); err != nil {
		t.Fatalf("AssignTrackingNumber(a) error = %v", err)
	}
	_, err := f.svc.AssignTrackingNumber(ctx, admin, b.ID, 0, "", nil)
	if !errors.Is(err, errs.ErrDuplicateKey) {
		t.Fatalf("AssignTrackingNumber(b) error = %v, want ErrDuplicateKey", err)
	}

	got, _ := f.svc.FindByID(ctx, admin, b.ID)
	if got.TrackingNumber != "" || got.Version != 1 {
		t.Errorf("failed assignment left changes: number = %q version = %d", got.TrackingNumber, got.Version)
	}
}

func TestAssignTrackingNumberTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, alice)

	if _, err := f.svc.AssignTrackingNumber(ctx, admin, o.ID, 0, "", nil); err != nil {
		t.Fatalf("AssignTrackingNumber() error = %v", err)
	}
	if _, err := f.svc.AssignTrackingNumber(ctx, admin, o.ID, 0, "", nil); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("second AssignTrackingNumber() error = %v, want ErrValidation", err)
	}
}

func TestAddTrackingEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, alice)

	if _, err := f.svc.AddTrackingEvent(ctx, admin, o.ID, 0, "Shipped", "Mumbai", ""); err != nil {
		t.Fatalf("AddTrackingEvent() error = %v", err)
	}
	f.clock.Advance(time.Hour)
	got, err := f.svc.AddTrackingEvent(ctx, admin, o.ID, 0, "Delivered", "Delhi", "")
	if err != nil {
		t.Fatalf("AddTrackingEvent() error = %v", err)
	}

	events := got.TrackingHistory.Events()
	if len(events) != 2 || events[0].Location != "Mumbai" || events[1].Location != "Delhi" {
		t.Fatalf("tracking history = %+v", events)
	}
	if events[1].Timestamp.Before(events[0].Timestamp) {
		t.Error("tracking timestamps go backwards")
	}

	if _, err := f.svc.AddTrackingEvent(ctx, admin, o.ID, 0, "", "Pune", ""); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("AddTrackingEvent() without status error = %v, want ErrValidation", err)
	}
}

func TestRefunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, alice)

	_, err := f.svc.RecordRefund(ctx, admin, o.ID, 0, decimal.NewFromInt(2000), "rf1", "", "")
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("RecordRefund(2000) error = %v, want ErrValidation", err)
	}
	if _, err := f.svc.MarkRefundProcessed(ctx, admin, o.ID, 0); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("MarkRefundProcessed() without refund error = %v, want ErrValidation", err)
	}

	if _, err := f.svc.RecordRefund(ctx, admin, o.ID, 0, decimal.NewFromInt(500), "rf1", "Approved", "size"); err != nil {
		t.Fatalf("RecordRefund(500) error = %v", err)
	}
	got, err := f.svc.MarkRefundProcessed(ctx, admin, o.ID, 0)
	if err != nil {
		t.Fatalf("MarkRefundProcessed() error = %v", err)
	}
	if !got.Refund.Processed() || got.Refund.ExternalID != "rf1" {
		t.Errorf("refund = %+v", got.Refund)
	}
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, alice)

	if err := f.svc.DeleteOrder(ctx, alice, o.ID); !errors.Is(err, errs.ErrAuthorization) {
		t.Fatalf("DeleteOrder() by owner error = %v, want ErrAuthorization", err)
	}
	if err := f.svc.DeleteOrder(ctx, admin, o.ID); err != nil {
		t.Fatalf("DeleteOrder() error = %v", err)
	}
	if _, err := f.svc.FindByID(ctx, admin, o.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("FindByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := f.svc.DeleteOrder(ctx, admin, o.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("second DeleteOrder() error = %v, want ErrNotFound", err)
	}

	events := f.events(t)
	if last := events[len(events)-1]; last.Type != orderevent.TypeDeleted || last.OrderID != o.ID {
		t.Errorf("last event = %+v", last)
	}
}

func TestFindByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.create(t, alice)

	if _, err := f.svc.FindByID(ctx, bob, o.ID); !errors.Is(err, errs.ErrAuthorization) {
		t.Errorf("FindByID() by another user error = %v, want ErrAuthorization", err)
	}
	if _, err := f.svc.FindByID(ctx, admin, o.ID); err != nil {
		t.Errorf("FindByID() by admin error = %v", err)
	}
	if _, err := f.svc.FindByID(ctx, caller.Caller{}, o.ID); !errors.Is(err, errs.ErrAuthorization) {
		t.Errorf("anonymous FindByID() error = %v, want ErrAuthorization", err)
	}
}

func TestFindByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ids []string
	for range 3 {
		ids = append(ids, f.create(t, alice).ID)
		f.clock.Advance(time.Minute)
	}
	f.create(t, bob)

	mine, err := f.svc.FindByUser(ctx, alice, "alice", order.Page{})
	if err != nil {
		t.Fatalf("FindByUser() error = %v", err)
	}
	if len(mine) != 3 || mine[0].ID != ids[2] {
		t.Errorf("FindByUser() returned %d orders, first %s", len(mine), mine[0].ID)
	}

	page, _ := f.svc.FindByUser(ctx, alice, "alice", order.Page{Page: 2, PageSize: 2})
	if len(page) != 1 || page[0].ID != ids[0] {
		t.Errorf("second page = %+v", page)
	}

	if _, err := f.svc.FindByUser(ctx, bob, "alice", order.Page{}); !errors.Is(err, errs.ErrAuthorization) {
		t.Errorf("FindByUser() for another user error = %v, want ErrAuthorization", err)
	}
	if got, err := f.svc.FindByUser(ctx, admin, "alice", order.Page{}); err != nil || len(got) != 3 {
		t.Errorf("admin FindByUser() = %d orders, %v", len(got), err)
	}
}

func TestFindAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, alice)
	f.create(t, bob)
	if _, err := f.svc.ConfirmPayment(ctx, alice, a.ID, 0, payment.Result{ExternalID: "px1"}); err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}

	if _, err := f.svc.FindAll(ctx, alice, order.QueryOrdersModel{}); !errors.Is(err, errs.ErrAuthorization) {
		t.Errorf("FindAll() by user error = %v, want ErrAuthorization", err)
	}
	if _, err := f.svc.FindAll(ctx, admin, order.QueryOrdersModel{Statuses: []order.Status{"Lost"}}); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("FindAll() with unknown status error = %v, want ErrValidation", err)
	}
	if _, err := f.svc.FindAll(ctx, admin, order.QueryOrdersModel{Limit: -1}); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("FindAll() with negative limit error = %v, want ErrValidation", err)
	}

	paid := true
	got, err := f.svc.FindAll(ctx, admin, order.QueryOrdersModel{IsPaid: &paid})
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("paid orders = %+v", got)
	}
}

func TestMustNewOrderServicePanicsWithoutStorage(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNewOrderService() without storage did not panic")
		}
	}()

	MustNewOrderService()
}
