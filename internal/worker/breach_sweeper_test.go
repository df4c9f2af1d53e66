package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nebuladesk/helpdesk/internal/domain"
	"github.com/nebuladesk/helpdesk/internal/events"
	"github.com/nebuladesk/helpdesk/internal/observability"
)

// fakeSweepStore mimics the overdue query and conditional update against an
// in-memory ticket set.
type fakeSweepStore struct {
	mu          sync.Mutex
	tickets     map[string]*domain.Ticket
	listErr     error
	markErrFor  map[string]error
	listCalls   int
	onList      func()
	markedOrder []string
}

func newFakeSweepStore(tickets ...*domain.Ticket) *fakeSweepStore {
	store := &fakeSweepStore{
		tickets:    make(map[string]*domain.Ticket),
		markErrFor: make(map[string]error),
	}
	for _, t := range tickets {
		store.tickets[t.ID] = t
	}
	return store
}

func (f *fakeSweepStore) ListOverdue(_ context.Context, now time.Time, cursor string, limit int) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.onList != nil {
		f.onList()
	}
	if f.listErr != nil {
		return nil, f.listErr
	}

	var ids []string
	for id, t := range f.tickets {
		if t.SLABreached || domain.IsTerminal(t.Status) || t.SLADueDate == nil {
			continue
		}
		if !t.SLADueDate.Before(now) {
			continue
		}
		if cursor != "" && id <= cursor {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	result := make([]domain.Ticket, 0, len(ids))
	for _, id := range ids {
		result = append(result, *f.tickets[id])
	}
	return result, nil
}

func (f *fakeSweepStore) MarkBreached(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.markErrFor[id]; err != nil {
		return false, err
	}
	t, ok := f.tickets[id]
	if !ok || t.SLABreached || domain.IsTerminal(t.Status) {
		return false, nil
	}
	t.SLABreached = true
	f.markedOrder = append(f.markedOrder, id)
	return true, nil
}

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	acquires int
	releases int
	denied   bool
	err      error
}

func (f *fakeLocker) AcquireLock(_ context.Context, _ string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquires++
	if f.err != nil {
		return false, f.err
	}
	if f.denied || f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLocker) ReleaseLock(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
	f.held = false
	return nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (r *recordingDispatcher) published() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event{}, r.events...)
}

func overdueTicket(orgID string) *domain.Ticket {
	due := time.Now().Add(-time.Hour)
	return &domain.Ticket{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Status:         domain.TicketStatusOpen,
		Priority:       domain.TicketPriorityHigh,
		SLADueDate:     &due,
	}
}

func newTestSweeper(store *fakeSweepStore, dispatcher events.Dispatcher, locker Locker, batchSize int) *BreachSweeper {
	return NewBreachSweeper(SweeperOptions{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Metrics:    observability.NewMetrics(),
		Locker:     locker,
		BatchSize:  batchSize,
		LockTTL:    time.Minute,
	})
}

func TestRunOnceMarksOverdueTickets(t *testing.T) {
	orgID := uuid.NewString()
	a := overdueTicket(orgID)
	b := overdueTicket(orgID)

	future := time.Now().Add(time.Hour)
	notDue := &domain.Ticket{ID: uuid.NewString(), OrganizationID: orgID, Status: domain.TicketStatusOpen, SLADueDate: &future}
	pastButClosed := overdueTicket(orgID)
	pastButClosed.Status = domain.TicketStatusClosed
	noDeadline := &domain.Ticket{ID: uuid.NewString(), OrganizationID: orgID, Status: domain.TicketStatusOpen}

	store := newFakeSweepStore(a, b, notDue, pastButClosed, noDeadline)
	dispatcher := &recordingDispatcher{}
	sweeper := newTestSweeper(store, dispatcher, nil, 100)

	result, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Errors)

	assert.True(t, store.tickets[a.ID].SLABreached)
	assert.True(t, store.tickets[b.ID].SLABreached)
	assert.False(t, store.tickets[notDue.ID].SLABreached)
	assert.False(t, store.tickets[pastButClosed.ID].SLABreached)
	assert.False(t, store.tickets[noDeadline.ID].SLABreached)

	published := dispatcher.published()
	require.Len(t, published, 2)
	for _, event := range published {
		assert.Equal(t, events.EventTicketSLABreached, event.Type)
		payload, ok := event.Payload.(events.TicketSLABreachedPayload)
		require.True(t, ok)
		assert.Equal(t, orgID, payload.OrganizationID)
		assert.Equal(t, "sweep", payload.DetectedBy)
	}
}

func TestRunOnceIdempotent(t *testing.T) {
	store := newFakeSweepStore(overdueTicket(uuid.NewString()), overdueTicket(uuid.NewString()))
	dispatcher := &recordingDispatcher{}
	sweeper := newTestSweeper(store, dispatcher, nil, 100)

	first, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Processed)

	second, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Len(t, dispatcher.published(), 2)
}

func TestRunOncePaginatesInBatches(t *testing.T) {
	var tickets []*domain.Ticket
	for i := 0; i < 7; i++ {
		tickets = append(tickets, overdueTicket(uuid.NewString()))
	}
	store := newFakeSweepStore(tickets...)
	sweeper := newTestSweeper(store, &recordingDispatcher{}, nil, 3)

	result, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, result.Processed)
	// 3 + 3 + 1; the short final batch ends the loop.
	assert.Equal(t, 3, store.listCalls)
}

func TestRunOnceSkipsRowConcurrentlyResolved(t *testing.T) {
	ticket := overdueTicket(uuid.NewString())
	store := newFakeSweepStore(ticket)
	// Ticket resolves between the list read and the conditional update.
	store.onList = func() {
		store.tickets[ticket.ID].Status = domain.TicketStatusResolved
	}
	dispatcher := &recordingDispatcher{}
	sweeper := newTestSweeper(store, dispatcher, nil, 100)

	result, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, result.Errors)
	assert.Empty(t, dispatcher.published())
	assert.False(t, store.tickets[ticket.ID].SLABreached)
}

func TestRunOnceRowErrorDoesNotAbortSweep(t *testing.T) {
	good := overdueTicket(uuid.NewString())
	bad := overdueTicket(uuid.NewString())
	store := newFakeSweepStore(good, bad)
	store.markErrFor[bad.ID] = errors.New("deadlock detected")
	sweeper := newTestSweeper(store, &recordingDispatcher{}, nil, 100)

	result, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Errors)
	assert.True(t, store.tickets[good.ID].SLABreached)
}

func TestRunOnceListErrorAborts(t *testing.T) {
	store := newFakeSweepStore(overdueTicket(uuid.NewString()))
	store.listErr = errors.New("connection refused")
	sweeper := newTestSweeper(store, &recordingDispatcher{}, nil, 100)

	_, err := sweeper.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestRunOnceStopsBetweenBatchesOnCancel(t *testing.T) {
	var tickets []*domain.Ticket
	for i := 0; i < 6; i++ {
		tickets = append(tickets, overdueTicket(uuid.NewString()))
	}
	store := newFakeSweepStore(tickets...)

	ctx, cancel := context.WithCancel(context.Background())
	store.onList = func() {
		if store.listCalls == 1 {
			cancel()
		}
	}
	sweeper := newTestSweeper(store, &recordingDispatcher{}, nil, 3)

	result, err := sweeper.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	// The first batch commits before cancellation is observed.
	assert.Equal(t, 3, result.Processed)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	store := newFakeSweepStore(overdueTicket(uuid.NewString()))
	locker := &fakeLocker{denied: true}
	sweeper := newTestSweeper(store, &recordingDispatcher{}, locker, 100)

	result, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, store.listCalls)
}

func TestRunOnceProceedsWhenLockServiceDown(t *testing.T) {
	ticket := overdueTicket(uuid.NewString())
	store := newFakeSweepStore(ticket)
	locker := &fakeLocker{err: errors.New("redis unavailable")}
	sweeper := newTestSweeper(store, &recordingDispatcher{}, locker, 100)

	result, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, locker.releases)
}

func TestRunOnceReleasesLock(t *testing.T) {
	store := newFakeSweepStore(overdueTicket(uuid.NewString()))
	locker := &fakeLocker{}
	sweeper := newTestSweeper(store, &recordingDispatcher{}, locker, 100)

	_, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, locker.acquires)
	assert.Equal(t, 1, locker.releases)
}
