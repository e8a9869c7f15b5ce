package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/lwittmann/schulungen/internal/model"
	"github.com/lwittmann/schulungen/internal/repository"
)

// memStore is an in-memory Store used to exercise the ledger's state
// machine without a database.  InTx snapshots the booking table and
// restores it when the callback fails, mirroring transaction rollback.
type memStore struct {
	mu         sync.Mutex
	customers  map[uint64]model.Customer
	templates  map[uint64]model.CourseTemplate
	executions map[uint64]model.Execution
	bookings   map[uint64]model.Booking
	nextID     uint64
	seq        int
	frozenTime *time.Time // when set, every insert gets this created_at
}

func newMemStore() *memStore {
	return &memStore{
		customers:  make(map[uint64]model.Customer),
		templates:  make(map[uint64]model.CourseTemplate),
		executions: make(map[uint64]model.Execution),
		bookings:   make(map[uint64]model.Booking),
	}
}

func (s *memStore) InTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[uint64]model.Booking, len(s.bookings))
	for id, b := range s.bookings {
		snapshot[id] = b
	}
	if err := fn(&memTx{store: s}); err != nil {
		s.bookings = snapshot
		return err
	}
	return nil
}

type memTx struct{ store *memStore }

func (t *memTx) CustomerByID(_ context.Context, id uint64) (*model.Customer, error) {
	c, ok := t.store.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (t *memTx) ExecutionForUpdate(_ context.Context, id uint64) (*model.Execution, error) {
	e, ok := t.store.executions[id]
	if !ok {
		return nil, repository.ErrExecutionNotFound
	}
	return &e, nil
}

func (t *memTx) TemplateByID(_ context.Context, id uint64) (*model.CourseTemplate, error) {
	tm, ok := t.store.templates[id]
	if !ok {
		return nil, repository.ErrTemplateNotFound
	}
	return &tm, nil
}

func (t *memTx) BookingForUpdate(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := t.store.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (t *memTx) HasLiveBooking(_ context.Context, customerID, executionID uint64) (bool, error) {
	for _, b := range t.store.bookings {
		if b.CustomerID == customerID && b.ExecutionID == executionID && b.Status.Live() {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CountBooked(_ context.Context, executionID uint64) (int, error) {
	n := 0
	for _, b := range t.store.bookings {
		if b.ExecutionID == executionID && b.Status == model.BookingGebucht {
			n++
		}
	}
	return n, nil
}

func (t *memTx) OldestWaitlisted(_ context.Context, executionID uint64) (*model.Booking, error) {
	var candidates []model.Booking
	for _, b := range t.store.bookings {
		if b.ExecutionID == executionID && b.Status == model.BookingWarteliste {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})
	head := candidates[0]
	return &head, nil
}

func (t *memTx) InsertBooking(_ context.Context, b *model.Booking) error {
	t.store.nextID++
	t.store.seq++
	b.ID = t.store.nextID
	if t.store.frozenTime != nil {
		b.CreatedAt = *t.store.frozenTime
	} else {
		b.CreatedAt = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(t.store.seq) * time.Second)
	}
	t.store.bookings[b.ID] = *b
	return nil
}

func (t *memTx) UpdateBooking(_ context.Context, b *model.Booking) error {
	if _, ok := t.store.bookings[b.ID]; !ok {
		return repository.ErrBookingNotFound
	}
	t.store.bookings[b.ID] = *b
	return nil
}

// recordingEvents captures audit actions.
type recordingEvents struct {
	mu      sync.Mutex
	actions []string
}

func (e *recordingEvents) LogEvent(_ context.Context, _, action, _, _ string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions = append(e.actions, action)
	return nil
}

// failingNotifier always errors; the ledger must swallow it.
type failingNotifier struct{ called chan string }

func (n *failingNotifier) Send(_ context.Context, templateKey string, _ model.Booking) error {
	select {
	case n.called <- templateKey:
	default:
	}
	return errors.New("smtp relay down")
}

func fixedNow(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 10, 0, 0, 0, time.UTC) }
}

// seed creates a customer, a template with the given capacity/window
// and one GEPLANT execution, returning the execution id.
func seed(s *memStore, maxSeats, windowDays int, start time.Time) uint64 {
	for id := uint64(1); id <= 5; id++ {
		s.customers[id] = model.Customer{ID: id, Email: fmt.Sprintf("c%d@example.org", id), IsActive: true}
	}
	s.templates[1] = model.CourseTemplate{
		ID: 1, Title: "Go Grundlagen", PriceCents: 49900,
		MaxSeats: maxSeats, CancellationWindowDays: windowDays, IsActive: true,
	}
	s.executions[1] = model.Execution{
		ID: 1, TemplateID: 1, StartDate: start, Status: model.ExecutionGeplant,
	}
	return 1
}

func TestBookConfirmsWhileSeatsFree(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 2, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, &recordingEvents{}, nil, fixedNow(2024, time.May, 1))

	out, err := ledger.Book(context.Background(), 1, execID, "window seat please")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if out.Waitlisted {
		t.Error("first booking should not be waitlisted")
	}
	if out.Booking.Status != model.BookingGebucht {
		t.Errorf("status %s, want GEBUCHT", out.Booking.Status)
	}
	if out.Booking.PriceCents != 49900 {
		t.Errorf("price snapshot %d, want base price 49900", out.Booking.PriceCents)
	}
	if out.Booking.Notes != "window seat please" {
		t.Errorf("notes %q not carried", out.Booking.Notes)
	}
}

func TestBookSnapshotsPromoPrice(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 2, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	promo := uint32(39900)
	from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tmpl := store.templates[1]
	tmpl.PromoPriceCents = &promo
	tmpl.PromoFrom = &from
	tmpl.PromoUntil = &until
	store.templates[1] = tmpl

	// Booking on the inclusive end of the promo window.
	ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))
	out, err := ledger.Book(context.Background(), 1, execID, "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if out.Booking.PriceCents != 39900 {
		t.Errorf("price snapshot %d, want promo price 39900", out.Booking.PriceCents)
	}

	// One day later the promo has lapsed; a second customer pays base
	// price, while the first booking's snapshot is untouched.
	ledger2 := NewLedger(store, nil, nil, fixedNow(2024, time.May, 2))
	out2, err := ledger2.Book(context.Background(), 2, execID, "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if out2.Booking.PriceCents != 49900 {
		t.Errorf("price snapshot %d, want base price 49900", out2.Booking.PriceCents)
	}
	if got := store.bookings[out.Booking.ID].PriceCents; got != 39900 {
		t.Errorf("earlier snapshot mutated to %d", got)
	}
}

func TestBookWaitlistsWhenFull(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))

	first, err := ledger.Book(context.Background(), 1, execID, "")
	if err != nil {
		t.Fatalf("Book A: %v", err)
	}
	if first.Booking.Status != model.BookingGebucht {
		t.Fatalf("A status %s, want GEBUCHT", first.Booking.Status)
	}
	second, err := ledger.Book(context.Background(), 2, execID, "")
	if err != nil {
		t.Fatalf("Book B: %v", err)
	}
	if !second.Waitlisted || second.Booking.Status != model.BookingWarteliste {
		t.Errorf("B should be waitlisted, got %s", second.Booking.Status)
	}

	// Capacity invariant: never more GEBUCHT than max seats.
	booked := 0
	for _, b := range store.bookings {
		if b.Status == model.BookingGebucht {
			booked++
		}
	}
	if booked > 1 {
		t.Errorf("%d seats booked for capacity 1", booked)
	}
}

func TestBookRejectsDuplicateLiveBooking(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))

	out, err := ledger.Book(context.Background(), 1, execID, "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := ledger.Book(context.Background(), 1, execID, ""); !errors.Is(err, repository.ErrDuplicateBooking) {
		t.Errorf("second Book err = %v, want ErrDuplicateBooking", err)
	}
	// A waitlisted booking also blocks re-booking.
	if _, err := ledger.Book(context.Background(), 2, execID, ""); err != nil {
		t.Fatalf("Book B: %v", err)
	}
	if _, err := ledger.Book(context.Background(), 2, execID, ""); !errors.Is(err, repository.ErrDuplicateBooking) {
		t.Errorf("waitlisted duplicate err = %v, want ErrDuplicateBooking", err)
	}
	// After cancelling, the customer may book again.
	if _, err := ledger.Cancel(context.Background(), out.Booking.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := ledger.Book(context.Background(), 1, execID, ""); err != nil {
		t.Errorf("re-book after cancel: %v", err)
	}
}

func TestBookRequiresBookableExecution(t *testing.T) {
	for _, status := range []model.ExecutionStatus{model.ExecutionAbgesagt, model.ExecutionAbgeschlossen} {
		store := newMemStore()
		execID := seed(store, 3, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		e := store.executions[execID]
		e.Status = status
		store.executions[execID] = e
		ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))

		_, err := ledger.Book(context.Background(), 1, execID, "")
		if !errors.Is(err, repository.ErrInvalidState) {
			t.Errorf("booking %s execution err = %v, want ErrInvalidState", status, err)
		}
		if len(store.bookings) != 0 {
			t.Errorf("booking row created against %s execution", status)
		}
	}
}

func TestBookUnknownReferences(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 3, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))

	if _, err := ledger.Book(context.Background(), 99, execID, ""); !errors.Is(err, repository.ErrCustomerNotFound) {
		t.Errorf("unknown customer err = %v, want ErrCustomerNotFound", err)
	}
	if _, err := ledger.Book(context.Background(), 1, 99, ""); !errors.Is(err, repository.ErrExecutionNotFound) {
		t.Errorf("unknown execution err = %v, want ErrExecutionNotFound", err)
	}
}

func TestCancelPromotesOldestWaitlisted(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	events := &recordingEvents{}
	ledger := NewLedger(store, events, nil, fixedNow(2024, time.May, 1))

	a, _ := ledger.Book(context.Background(), 1, execID, "")
	b, _ := ledger.Book(context.Background(), 2, execID, "")
	c, _ := ledger.Book(context.Background(), 3, execID, "")
	if b.Booking.Status != model.BookingWarteliste || c.Booking.Status != model.BookingWarteliste {
		t.Fatal("expected B and C on the waitlist")
	}

	out, err := ledger.Cancel(context.Background(), a.Booking.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if out.Booking.Status != model.BookingStorniert {
		t.Errorf("cancelled booking status %s", out.Booking.Status)
	}
	if out.Booking.CancelledAt == nil {
		t.Error("cancellation timestamp not stamped")
	}
	if out.Promoted == nil {
		t.Fatal("expected a promotion")
	}
	if out.Promoted.ID != b.Booking.ID {
		t.Errorf("promoted booking %d, want the earlier-created %d (FIFO)", out.Promoted.ID, b.Booking.ID)
	}
	if store.bookings[c.Booking.ID].Status != model.BookingWarteliste {
		t.Error("later waitlist entry should stay waitlisted")
	}

	// Cancelling the promoted booking finds C next; cancelling C then
	// finds an empty waitlist.
	out2, err := ledger.Cancel(context.Background(), b.Booking.ID)
	if err != nil {
		t.Fatalf("Cancel B: %v", err)
	}
	if out2.Promoted == nil || out2.Promoted.ID != c.Booking.ID {
		t.Fatal("expected C promoted next")
	}
	out3, err := ledger.Cancel(context.Background(), c.Booking.ID)
	if err != nil {
		t.Fatalf("Cancel C: %v", err)
	}
	if out3.Promoted != nil {
		t.Errorf("promotion from an empty waitlist: %+v", out3.Promoted)
	}
}

func TestCancelWaitlistedDoesNotPromote(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))

	ledger.Book(context.Background(), 1, execID, "")
	b, _ := ledger.Book(context.Background(), 2, execID, "")
	c, _ := ledger.Book(context.Background(), 3, execID, "")

	// B never held a seat, so no seat is vacated and C stays put.
	out, err := ledger.Cancel(context.Background(), b.Booking.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if out.Promoted != nil {
		t.Errorf("cancelling a waitlist entry promoted %d", out.Promoted.ID)
	}
	if store.bookings[c.Booking.ID].Status != model.BookingWarteliste {
		t.Error("C should remain waitlisted")
	}
}

func TestCancelAlreadyCancelled(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))

	out, _ := ledger.Book(context.Background(), 1, execID, "")
	if _, err := ledger.Cancel(context.Background(), out.Booking.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := ledger.Cancel(context.Background(), out.Booking.ID); !errors.Is(err, repository.ErrAlreadyCancelled) {
		t.Errorf("second Cancel err = %v, want ErrAlreadyCancelled", err)
	}
	if _, err := ledger.Cancel(context.Background(), 999); !errors.Is(err, repository.ErrBookingNotFound) {
		t.Errorf("unknown booking err = %v, want ErrBookingNotFound", err)
	}
}

func TestCancelDeadlineClassification(t *testing.T) {
	// Window of 7 days before a 2024-03-10 start puts the cutoff on
	// 2024-03-03 (inclusive).
	cases := []struct {
		day  int
		want bool
	}{
		{1, true},
		{3, true},
		{5, false},
	}
	for _, tc := range cases {
		store := newMemStore()
		execID := seed(store, 2, 7, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
		ledger := NewLedger(store, nil, nil, fixedNow(2024, time.March, tc.day))
		out, _ := ledger.Book(context.Background(), 1, execID, "")
		res, err := ledger.Cancel(context.Background(), out.Booking.ID)
		if err != nil {
			t.Fatalf("Cancel on day %d: %v", tc.day, err)
		}
		if res.WithinDeadline != tc.want {
			t.Errorf("cancel on 2024-03-%02d: withinDeadline=%t, want %t", tc.day, res.WithinDeadline, tc.want)
		}
		// The classification never blocks the cancellation itself.
		if res.Booking.Status != model.BookingStorniert {
			t.Errorf("cancel on day %d did not cancel", tc.day)
		}
	}
}

func TestPromoteManual(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))

	a, _ := ledger.Book(context.Background(), 1, execID, "")
	b, _ := ledger.Book(context.Background(), 2, execID, "")

	// Full execution: manual promotion must re-check capacity.
	if _, err := ledger.Promote(context.Background(), b.Booking.ID); !errors.Is(err, repository.ErrNoSeatsAvailable) {
		t.Errorf("Promote on full execution err = %v, want ErrNoSeatsAvailable", err)
	}
	// Promoting a seat-holder is not a promotion.
	if _, err := ledger.Promote(context.Background(), a.Booking.ID); !errors.Is(err, repository.ErrNotWaitlisted) {
		t.Errorf("Promote of GEBUCHT err = %v, want ErrNotWaitlisted", err)
	}

	// Raise capacity; now the manual promotion succeeds.
	tmpl := store.templates[1]
	tmpl.MaxSeats = 2
	store.templates[1] = tmpl
	out, err := ledger.Promote(context.Background(), b.Booking.ID)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if out.Booking.Status != model.BookingGebucht {
		t.Errorf("promoted status %s", out.Booking.Status)
	}
	// A promoted booking cannot be promoted again.
	if _, err := ledger.Promote(context.Background(), b.Booking.ID); !errors.Is(err, repository.ErrNotWaitlisted) {
		t.Errorf("re-Promote err = %v, want ErrNotWaitlisted", err)
	}
}

func TestWaitlistTieBrokenByID(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))

	a, _ := ledger.Book(context.Background(), 1, execID, "")
	// Force identical creation timestamps for the waitlist entries.
	frozen := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store.frozenTime = &frozen
	b, _ := ledger.Book(context.Background(), 2, execID, "")
	ledger.Book(context.Background(), 3, execID, "")

	out, err := ledger.Cancel(context.Background(), a.Booking.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if out.Promoted == nil || out.Promoted.ID != b.Booking.ID {
		t.Errorf("tie not broken by ascending id: promoted %+v", out.Promoted)
	}
}

func TestNotifierFailureDoesNotFailTransition(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	notifier := &failingNotifier{called: make(chan string, 4)}
	ledger := NewLedger(store, nil, notifier, fixedNow(2024, time.May, 1))

	out, err := ledger.Book(context.Background(), 1, execID, "")
	if err != nil {
		t.Fatalf("Book must not fail on a broken notifier: %v", err)
	}
	select {
	case key := <-notifier.called:
		if key != TemplateBookingConfirmed {
			t.Errorf("template key %q, want %q", key, TemplateBookingConfirmed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was never invoked")
	}
	// The booking is durable regardless of the notifier outcome.
	if store.bookings[out.Booking.ID].Status != model.BookingGebucht {
		t.Error("booking not committed")
	}
}

func TestEventLogRecordsTransitions(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	events := &recordingEvents{}
	ledger := NewLedger(store, events, nil, fixedNow(2024, time.May, 1))

	a, _ := ledger.Book(context.Background(), 1, execID, "")
	ledger.Book(context.Background(), 2, execID, "")
	ledger.Cancel(context.Background(), a.Booking.ID)

	want := []string{"booking.created", "booking.waitlisted", "booking.cancelled", "booking.promoted"}
	events.mu.Lock()
	defer events.mu.Unlock()
	if len(events.actions) != len(want) {
		t.Fatalf("actions %v, want %v", events.actions, want)
	}
	for i, action := range want {
		if events.actions[i] != action {
			t.Errorf("action[%d] = %s, want %s", i, events.actions[i], action)
		}
	}
}

func TestFailedTransitionLeavesNoPartialState(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))

	ledger.Book(context.Background(), 1, execID, "")
	before := len(store.bookings)
	if _, err := ledger.Book(context.Background(), 1, execID, ""); err == nil {
		t.Fatal("expected duplicate rejection")
	}
	if len(store.bookings) != before {
		t.Errorf("rolled-back transaction left %d bookings, want %d", len(store.bookings), before)
	}
}

func TestConcurrentBookingsNeverOverbook(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 1, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, &recordingEvents{}, nil, fixedNow(2024, time.May, 1))

	// Five customers race for the single seat.  The seat decision runs
	// inside the store transaction, so exactly one may land GEBUCHT no
	// matter how the goroutines interleave.
	const racers = 5
	outs := make([]*BookingOutcome, racers)
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outs[i], errs[i] = ledger.Book(context.Background(), uint64(i+1), execID, "")
		}(i)
	}
	wg.Wait()

	booked, waitlisted := 0, 0
	for i := 0; i < racers; i++ {
		if errs[i] != nil {
			t.Fatalf("Book %d: %v", i+1, errs[i])
		}
		if outs[i].Waitlisted {
			waitlisted++
		} else {
			booked++
		}
	}
	if booked != 1 || waitlisted != racers-1 {
		t.Errorf("got %d GEBUCHT / %d WARTELISTE, want 1 / %d", booked, waitlisted, racers-1)
	}
	stored := 0
	for _, b := range store.bookings {
		if b.Status == model.BookingGebucht {
			stored++
		}
	}
	if stored != 1 {
		t.Errorf("store holds %d GEBUCHT bookings, want 1", stored)
	}
}

func TestConcurrentCancelsPromoteWaitlistInOrder(t *testing.T) {
	store := newMemStore()
	execID := seed(store, 2, 7, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	ledger := NewLedger(store, nil, nil, fixedNow(2024, time.May, 1))

	// 1 and 2 hold the seats; 3 and 4 wait in that order.
	var ids []uint64
	for c := uint64(1); c <= 4; c++ {
		out, err := ledger.Book(context.Background(), c, execID, "")
		if err != nil {
			t.Fatalf("Book %d: %v", c, err)
		}
		ids = append(ids, out.Booking.ID)
	}

	var wg sync.WaitGroup
	cancelErrs := make([]error, 2)
	for i, id := range []uint64{ids[0], ids[1]} {
		wg.Add(1)
		go func(i int, id uint64) {
			defer wg.Done()
			_, cancelErrs[i] = ledger.Cancel(context.Background(), id)
		}(i, id)
	}
	wg.Wait()

	for i, err := range cancelErrs {
		if err != nil {
			t.Fatalf("Cancel %d: %v", i, err)
		}
	}
	// Both freed seats must go to the waitlist, nobody skipped.
	if got := store.bookings[ids[2]].Status; got != model.BookingGebucht {
		t.Errorf("oldest waitlist entry is %s, want GEBUCHT", got)
	}
	if got := store.bookings[ids[3]].Status; got != model.BookingGebucht {
		t.Errorf("second waitlist entry is %s, want GEBUCHT", got)
	}
	for _, b := range store.bookings {
		if b.Status == model.BookingWarteliste {
			t.Errorf("booking %d still WARTELISTE after both cancels", b.ID)
		}
	}
}
