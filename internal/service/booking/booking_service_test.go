package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/kafka"
	"github.com/Domenick1991/classbooking/internal/repository"
	"github.com/Domenick1991/classbooking/internal/repository/memory"
	"github.com/Domenick1991/classbooking/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateWeekOf(ctx context.Context, t time.Time) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var london = func() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		panic(err)
	}
	return loc
}()

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 10, day, hour, minute, 0, 0, london)
}

type fixture struct {
	store   *memory.Store
	clock   *clock
	service *BookingService
}

func newFixture(t *testing.T, opts ...BookingServiceOption) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), clock: &clock{now: at(20, 9, 0)}}
	opts = append([]BookingServiceOption{WithClock(f.clock.Now)}, opts...)
	f.service = NewBookingService(f.store, f.store.Bookings(), window.DefaultPolicy(), opts...)
	return f
}

// addClass stores a 60 minute class and returns its id.
func (f *fixture) addClass(t *testing.T, start time.Time, capacity int) string {
	t.Helper()
	c := &domain.ClassInstance{
		ID:         domain.ClassID("tpl", start),
		TemplateID: "tpl",
		Title:      "HYROX",
		Timezone:   "Europe/London",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Capacity:   capacity,
		Status:     domain.ClassStatusScheduled,
	}
	created, err := f.store.Classes().CreateIfAbsent(context.Background(), c)
	require.NoError(t, err)
	require.True(t, created)
	return c.ID
}

func (f *fixture) class(t *testing.T, id string) *domain.ClassInstance {
	t.Helper()
	c, err := f.store.Classes().GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (f *fixture) booking(t *testing.T, classID, userID string) *domain.Booking {
	t.Helper()
	var b *domain.Booking
	err := f.store.InTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		var err error
		b, err = tx.GetBooking(ctx, domain.BookingID(classID, userID))
		return err
	})
	require.NoError(t, err)
	return b
}

func TestBookingService_MondayEveningScenario(t *testing.T) {
	f := newFixture(t)
	classID := f.addClass(t, at(26, 18, 0), 2)
	ctx := context.Background()

	_, err := f.service.Book(ctx, "u1", BookInput{ClassID: classID})
	require.NoError(t, err)
	_, err = f.service.Book(ctx, "u2", BookInput{ClassID: classID})
	require.NoError(t, err)
	assert.Equal(t, 2, f.class(t, classID).BookedCount)

	_, err = f.service.Book(ctx, "u3", BookInput{ClassID: classID})
	assert.ErrorIs(t, err, domain.ErrClassFull)

	_, err = f.service.Cancel(ctx, "u1", classID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.class(t, classID).BookedCount)

	_, err = f.service.Book(ctx, "u4", BookInput{ClassID: classID})
	require.NoError(t, err)
	assert.Equal(t, 2, f.class(t, classID).BookedCount)
}

func TestBookingService_ConcurrentBookingsNeverExceedCapacity(t *testing.T) {
	f := newFixture(t)
	const capacity, members = 5, 40
	classID := f.addClass(t, at(26, 18, 0), capacity)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		ok     int
		full   int
		others []error
	)
	for i := 0; i < members; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.Book(context.Background(), fmt.Sprintf("user%d", i), BookInput{ClassID: classID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrClassFull):
				full++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, capacity, ok)
	assert.Equal(t, members-capacity, full)

	active, err := f.store.Bookings().ListActiveByClass(context.Background(), classID)
	require.NoError(t, err)
	assert.Len(t, active, capacity)
	assert.Equal(t, len(active), f.class(t, classID).BookedCount)
}

func TestBookingService_ConcurrentBookAndCancelKeepLedgerExact(t *testing.T) {
	f := newFixture(t)
	classID := f.addClass(t, at(26, 18, 0), 3)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, _ = f.service.Book(ctx, user, BookInput{ClassID: classID})
				_, _ = f.service.Cancel(ctx, user, classID)
			}
			_, _ = f.service.Book(ctx, user, BookInput{ClassID: classID})
		}(fmt.Sprintf("user%d", i))
	}
	wg.Wait()

	active, err := f.store.Bookings().ListActiveByClass(ctx, classID)
	require.NoError(t, err)
	c := f.class(t, classID)
	assert.LessOrEqual(t, c.BookedCount, c.Capacity)
	assert.Equal(t, len(active), c.BookedCount)
}

func TestBookingService_RebookReusesRecord(t *testing.T) {
	f := newFixture(t)
	classID := f.addClass(t, at(26, 18, 0), 4)
	ctx := context.Background()

	_, err := f.service.Book(ctx, "u1", BookInput{ClassID: classID})
	require.NoError(t, err)
	_, err = f.service.Cancel(ctx, "u1", classID)
	require.NoError(t, err)
	cancelled := f.booking(t, classID, "u1")
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	f.clock.Set(at(21, 10, 0))
	rebooked, err := f.service.Book(ctx, "u1", BookInput{ClassID: classID})
	require.NoError(t, err)

	assert.Equal(t, classID+"_u1", rebooked.ID)
	stored := f.booking(t, classID, "u1")
	assert.Equal(t, domain.BookingStatusBooked, stored.Status)
	assert.Nil(t, stored.CancelledAt)
	assert.True(t, stored.CreatedAt.Equal(at(21, 10, 0)))

	active, err := f.store.Bookings().ListActiveByClass(ctx, classID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, 1, f.class(t, classID).BookedCount)
}

func TestBookingService_AlreadyBooked(t *testing.T) {
	f := newFixture(t)
	classID := f.addClass(t, at(26, 18, 0), 4)

	_, err := f.service.Book(context.Background(), "u1", BookInput{ClassID: classID})
	require.NoError(t, err)
	_, err = f.service.Book(context.Background(), "u1", BookInput{ClassID: classID})
	assert.ErrorIs(t, err, domain.ErrAlreadyBooked)
	assert.Equal(t, 1, f.class(t, classID).BookedCount)
}

func TestBookingService_BookFailures(t *testing.T) {
	testCases := []struct {
		name     string
		now      time.Time
		start    time.Time
		capacity int
		expected error
	}{
		{name: "evening class after 15:00 cutoff", now: at(26, 15, 0), start: at(26, 18, 0), capacity: 10, expected: domain.ErrBookingClosed},
		{name: "morning class after 20:30 the day before", now: at(25, 20, 31), start: at(26, 6, 0), capacity: 10, expected: domain.ErrBookingClosed},
		{name: "other class inside two hour lead", now: at(26, 10, 1), start: at(26, 12, 0), capacity: 10, expected: domain.ErrBookingClosed},
		{name: "class started", now: at(26, 18, 5), start: at(26, 18, 0), capacity: 10, expected: domain.ErrBookingClosed},
		{name: "closed wins over bad capacity", now: at(26, 16, 0), start: at(26, 18, 0), capacity: 0, expected: domain.ErrBookingClosed},
		{name: "no capacity", now: at(20, 9, 0), start: at(26, 18, 0), capacity: 0, expected: domain.ErrInvalidCapacity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			classID := f.addClass(t, tc.start, tc.capacity)
			f.clock.Set(tc.now)

			_, err := f.service.Book(context.Background(), "u1", BookInput{ClassID: classID})
			assert.ErrorIs(t, err, tc.expected)
			assert.Equal(t, 0, f.class(t, classID).BookedCount)
		})
	}
}

func TestBookingService_BookMissingOrCancelledClass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Book(ctx, "u1", BookInput{ClassID: "nope_2026-10-26_1800"})
	assert.ErrorIs(t, err, domain.ErrClassNotFound)

	start := at(27, 18, 0)
	cancelled := &domain.ClassInstance{
		ID: domain.ClassID("tpl", start), TemplateID: "tpl", Timezone: "Europe/London",
		StartTime: start, EndTime: start.Add(time.Hour), Capacity: 5, Status: domain.ClassStatusCancelled,
	}
	_, err = f.store.Classes().CreateIfAbsent(ctx, cancelled)
	require.NoError(t, err)
	_, err = f.service.Book(ctx, "u1", BookInput{ClassID: cancelled.ID})
	assert.ErrorIs(t, err, domain.ErrClassCancelled)
}

func TestBookingService_BookValidatesInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), "", BookInput{ClassID: "c"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.service.Book(context.Background(), "u1", BookInput{})
	require.Error(t, err)
	assert.Equal(t, "INVALID_ARGUMENT", domain.AsError(err).Reason)

	_, err = f.service.Book(context.Background(), "bad_user", BookInput{ClassID: "c"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_ARGUMENT", domain.AsError(err).Reason)
}

func TestBookingService_UserName(t *testing.T) {
	f := newFixture(t)
	classID := f.addClass(t, at(26, 18, 0), 5)
	ctx := context.Background()
	require.NoError(t, f.store.Profiles().Upsert(ctx, &domain.Profile{ID: "u1", Name: "Ana Lopez", Role: domain.RoleUser}))

	b, err := f.service.Book(ctx, "u1", BookInput{ClassID: classID, UserName: "spoofed"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", b.UserName)

	b, err = f.service.Book(ctx, "u2", BookInput{ClassID: classID, UserName: "  Ben  "})
	require.NoError(t, err)
	assert.Equal(t, "Ben", b.UserName)

	b, err = f.service.Book(ctx, "u3", BookInput{ClassID: classID})
	require.NoError(t, err)
	assert.Equal(t, "Member", b.UserName)
}

func TestBookingService_CancelRules(t *testing.T) {
	f := newFixture(t)
	classID := f.addClass(t, at(26, 18, 0), 5)
	ctx := context.Background()

	_, err := f.service.Cancel(ctx, "u1", classID)
	assert.ErrorIs(t, err, domain.ErrNoActiveBooking)
	_, err = f.service.Cancel(ctx, "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNoActiveBooking)

	_, err = f.service.Book(ctx, "u1", BookInput{ClassID: classID})
	require.NoError(t, err)
	_, err = f.service.Book(ctx, "u2", BookInput{ClassID: classID})
	require.NoError(t, err)

	// Past the 15:00 cutoff but before the start.
	f.clock.Set(at(26, 17, 0))
	_, err = f.service.Cancel(ctx, "u1", classID)
	require.NoError(t, err)
	_, err = f.service.Cancel(ctx, "u1", classID)
	assert.ErrorIs(t, err, domain.ErrNoActiveBooking)

	f.clock.Set(at(26, 18, 0))
	_, err = f.service.Cancel(ctx, "u2", classID)
	assert.ErrorIs(t, err, domain.ErrClassStarted)
	assert.Equal(t, 1, f.class(t, classID).BookedCount)
}

func TestBookingService_CancelFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	classID := f.addClass(t, at(26, 18, 0), 5)
	ctx := context.Background()

	// An active booking the ledger never counted.
	err := f.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.SaveBooking(ctx, &domain.Booking{
			ID:      domain.BookingID(classID, "u1"),
			ClassID: classID,
			UserID:  "u1",
			Status:  domain.BookingStatusBooked,
		})
	})
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, "u1", classID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.class(t, classID).BookedCount)
	assert.Equal(t, domain.BookingStatusCancelled, f.booking(t, classID, "u1").Status)
}

func TestBookingService_SideEffectsAfterCommit(t *testing.T) {
	cache := &MockCache{}
	producer := &MockProducer{}
	f := newFixture(t, WithCache(cache), WithProducer(producer, "booking-events"), WithNotificationsTopic("booking-notifications"))
	start := at(26, 18, 0)
	classID := f.addClass(t, start, 1)
	ctx := context.Background()

	isBooked := mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBooked && e.UserID == "u1" && e.ClassTitle == "HYROX" && e.ClassStart.Equal(start)
	})
	cache.On("InvalidateWeekOf", ctx, mock.MatchedBy(func(ts time.Time) bool { return ts.Equal(start) })).Return(errors.New("redis down")).Once()
	producer.On("Publish", ctx, "booking-events", classID+"_u1", isBooked).Return(errors.New("broker down")).Once()
	producer.On("Publish", ctx, "booking-notifications", classID+"_u1", isBooked).Return(nil).Once()

	_, err := f.service.Book(ctx, "u1", BookInput{ClassID: classID})
	require.NoError(t, err)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)

	// A rejected booking has no side effects.
	_, err = f.service.Book(ctx, "u2", BookInput{ClassID: classID})
	assert.ErrorIs(t, err, domain.ErrClassFull)
	cache.AssertNumberOfCalls(t, "InvalidateWeekOf", 1)
	producer.AssertNumberOfCalls(t, "Publish", 2)
}

func TestBookingService_ExpiredContextIsTransient(t *testing.T) {
	f := newFixture(t)
	classID := f.addClass(t, at(26, 18, 0), 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.service.Book(ctx, "u1", BookInput{ClassID: classID})
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, 0, f.class(t, classID).BookedCount)
}

func TestBookingService_ListMine(t *testing.T) {
	f := newFixture(t)
	first := f.addClass(t, at(26, 18, 0), 5)
	second := f.addClass(t, at(27, 18, 0), 5)
	ctx := context.Background()

	for _, id := range []string{first, second} {
		_, err := f.service.Book(ctx, "u1", BookInput{ClassID: id})
		require.NoError(t, err)
	}
	_, err := f.service.Cancel(ctx, "u1", second)
	require.NoError(t, err)

	mine, err := f.service.ListMine(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first, mine[0].ClassID)

	_, err = f.service.ListMine(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
