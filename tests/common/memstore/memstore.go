//go:build unit

// Package memstore is an in-memory unit of work for use case tests.
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"rental-orchestrator/internal/domain/booking"
	"rental-orchestrator/internal/domain/job"
	"rental-orchestrator/internal/domain/ledger"
	"rental-orchestrator/internal/pkg/errs"
	"rental-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

// Op names accepted by FailOn.
const (
	OpFindBooking   = "bookings.find"
	OpUpdateStatus  = "bookings.update_status"
	OpUpdateHold    = "bookings.update_hold"
	OpUpdateBalance = "bookings.update_balance"
	OpSchedule      = "jobs.schedule"
	OpClaim         = "jobs.claim"
	OpReclaim       = "jobs.reclaim"
	OpComplete      = "jobs.complete"
	OpRetry         = "jobs.retry"
	OpFail          = "jobs.fail"
	OpCancelPending = "jobs.cancel_pending"
	OpListLedger    = "ledger.list"
	OpAppendRelease = "ledger.append_release"
)

type state struct {
	bookings  map[uuid.UUID]booking.Booking
	contacts  map[uuid.UUID]booking.Contact
	insurance map[uuid.UUID][]booking.InsuranceDocument
	jobs      map[uuid.UUID]job.Job
	entries   []ledger.Entry
	releases  []ledger.HoldRelease
}

func (s *state) clone() *state {
	c := &state{
		bookings:  make(map[uuid.UUID]booking.Booking, len(s.bookings)),
		contacts:  make(map[uuid.UUID]booking.Contact, len(s.contacts)),
		insurance: make(map[uuid.UUID][]booking.InsuranceDocument, len(s.insurance)),
		jobs:      make(map[uuid.UUID]job.Job, len(s.jobs)),
		entries:   slices.Clone(s.entries),
		releases:  slices.Clone(s.releases),
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.contacts {
		c.contacts[k] = v
	}
	for k, v := range s.insurance {
		c.insurance[k] = slices.Clone(v)
	}
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	return c
}

// Store implements shared.UnitOfWork over maps. Within restores the whole
// pre-transaction snapshot when fn fails, including writes made concurrently
// outside the transaction.
type Store struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	st       *state
	failures map[string]error
	claims   int
}

var _ shared.UnitOfWork = (*Store)(nil)

func New() *Store {
	return &Store{
		st: &state{
			bookings:  map[uuid.UUID]booking.Booking{},
			contacts:  map[uuid.UUID]booking.Contact{},
			insurance: map[uuid.UUID][]booking.InsuranceDocument{},
			jobs:      map[uuid.UUID]job.Job{},
		},
		failures: map[string]error{},
	}
}

// FailOn makes every later call of op return err. A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) injected(op string) error {
	return s.failures[op]
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Jobs() shared.JobStore         { return (*jobStore)(s) }
func (s *Store) Bookings() shared.BookingStore { return (*bookingStore)(s) }
func (s *Store) Ledger() shared.LedgerStore    { return (*ledgerStore)(s) }

// Seeding and inspection helpers

func (s *Store) PutBooking(b *booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.bookings[b.ID] = *b
}

func (s *Store) PutContact(bookingID uuid.UUID, c booking.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.contacts[bookingID] = c
}

func (s *Store) PutInsurance(customerID uuid.UUID, docs ...booking.InsuranceDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.insurance[customerID] = append(s.st.insurance[customerID], docs...)
}

func (s *Store) PutJob(j *job.Job) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	s.st.jobs[j.ID] = *j
	return j.ID
}

func (s *Store) PutEntry(e ledger.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	s.st.entries = append(s.st.entries, e)
}

func (s *Store) Booking(id uuid.UUID) booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.bookings[id]
}

func (s *Store) Job(id uuid.UUID) job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.jobs[id]
}

// JobsFor returns the booking's jobs of type t (all types when t is empty) ordered by run time.
func (s *Store) JobsFor(bookingID uuid.UUID, t job.Type) []job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []job.Job
	for _, j := range s.st.jobs {
		if j.BookingID == bookingID && (t == "" || j.Type == t) {
			out = append(out, j)
		}
	}
	sortJobs(out)
	return out
}

func (s *Store) HoldReleases() []ledger.HoldRelease {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.releases)
}

// SuccessfulClaims counts claims that moved a job to processing.
func (s *Store) SuccessfulClaims() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims
}

func sortJobs(js []job.Job) {
	sort.SliceStable(js, func(a, b int) bool {
		if js[a].RunAt.Equal(js[b].RunAt) {
			return js[a].CreatedAt.Before(js[b].CreatedAt)
		}
		return js[a].RunAt.Before(js[b].RunAt)
	})
}

type jobStore Store

func (s *jobStore) Schedule(_ context.Context, j *job.Job) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := (*Store)(s).injected(OpSchedule); err != nil {
		return uuid.Nil, false, err
	}
	for _, existing := range s.st.jobs {
		if !existing.Status.IsActive() {
			continue
		}
		if existing.IdempotencyKey == j.IdempotencyKey {
			return uuid.Nil, false, nil
		}
		if j.Type == job.TypePlaceHold && existing.Type == job.TypePlaceHold && existing.BookingID == j.BookingID {
			return uuid.Nil, false, nil
		}
	}

	stored := *j
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	s.st.jobs[stored.ID] = stored
	return stored.ID, true, nil
}

func (s *jobStore) FetchDue(_ context.Context, now time.Time, limit int) ([]*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []job.Job
	for _, j := range s.st.jobs {
		if j.IsDue(now) {
			due = append(due, j)
		}
	}
	sortJobs(due)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	out := make([]*job.Job, len(due))
	for i := range due {
		out[i] = &due[i]
	}
	return out, nil
}

func (s *jobStore) Claim(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := (*Store)(s).injected(OpClaim); err != nil {
		return false, err
	}
	j, ok := s.st.jobs[id]
	if !ok || j.Status != job.StatusPending {
		return false, nil
	}
	j.Status = job.StatusProcessing
	j.UpdatedAt = now
	s.st.jobs[id] = j
	s.claims++
	return true, nil
}

func (s *jobStore) ReclaimStale(_ context.Context, staleBefore, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := (*Store)(s).injected(OpReclaim); err != nil {
		return 0, err
	}
	var n int64
	for id, j := range s.st.jobs {
		if j.Status != job.StatusProcessing || !j.UpdatedAt.Before(staleBefore) {
			continue
		}
		msg := "claim expired before an outcome was recorded"
		j.Status = job.StatusPending
		j.RunAt = now
		j.RetryCount++
		j.ErrorMessage = &msg
		j.UpdatedAt = now
		s.st.jobs[id] = j
		n++
	}
	return n, nil
}

func (s *jobStore) update(op string, id uuid.UUID, mutate func(j *job.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := (*Store)(s).injected(op); err != nil {
		return err
	}
	j, ok := s.st.jobs[id]
	if !ok {
		return errs.ErrJobNotFound
	}
	mutate(&j)
	s.st.jobs[id] = j
	return nil
}

func (s *jobStore) Complete(_ context.Context, id uuid.UUID, outcome job.Outcome, now time.Time) error {
	return s.update(OpComplete, id, func(j *job.Job) {
		j.Status = job.StatusCompleted
		j.CompletedAt = &now
		j.UpdatedAt = now
		if outcome.Note != "" {
			note := outcome.Note
			j.ResultNote = &note
		}
	})
}

func (s *jobStore) Retry(_ context.Context, id uuid.UUID, retryCount int, runAt time.Time, errMsg string, now time.Time) error {
	return s.update(OpRetry, id, func(j *job.Job) {
		j.Status = job.StatusPending
		j.RetryCount = retryCount
		j.RunAt = runAt
		j.ErrorMessage = &errMsg
		j.UpdatedAt = now
	})
}

func (s *jobStore) Fail(_ context.Context, id uuid.UUID, retryCount int, errMsg string, now time.Time) error {
	return s.update(OpFail, id, func(j *job.Job) {
		j.Status = job.StatusFailed
		j.RetryCount = retryCount
		j.ErrorMessage = &errMsg
		j.UpdatedAt = now
	})
}

func (s *jobStore) CancelPending(_ context.Context, bookingID uuid.UUID, now time.Time, types ...job.Type) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := (*Store)(s).injected(OpCancelPending); err != nil {
		return 0, err
	}
	var n int64
	for id, j := range s.st.jobs {
		if j.BookingID != bookingID || j.Status != job.StatusPending {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, j.Type) {
			continue
		}
		j.Status = job.StatusCanceled
		j.UpdatedAt = now
		s.st.jobs[id] = j
		n++
	}
	return n, nil
}

func (s *jobStore) FindActive(_ context.Context, bookingID uuid.UUID, t job.Type) ([]*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*job.Job
	for _, j := range s.st.jobs {
		if j.BookingID == bookingID && j.Type == t && j.Status.IsActive() {
			j := j
			out = append(out, &j)
		}
	}
	return out, nil
}

func (s *jobStore) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]*job.Job, error) {
	list := (*Store)(s).JobsFor(bookingID, "")
	out := make([]*job.Job, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out, nil
}

type bookingStore Store

func (s *bookingStore) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := (*Store)(s).injected(OpFindBooking); err != nil {
		return nil, err
	}
	b, ok := s.st.bookings[id]
	if !ok {
		return nil, errs.ErrBookingNotFound
	}
	return &b, nil
}

func (s *bookingStore) update(op string, id uuid.UUID, mutate func(b *booking.Booking)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := (*Store)(s).injected(op); err != nil {
		return err
	}
	b, ok := s.st.bookings[id]
	if !ok {
		return errs.ErrBookingNotFound
	}
	mutate(&b)
	s.st.bookings[id] = b
	return nil
}

func (s *bookingStore) UpdateStatus(_ context.Context, id uuid.UUID, status booking.Status) error {
	return s.update(OpUpdateStatus, id, func(b *booking.Booking) { b.Status = status })
}

func (s *bookingStore) UpdateHold(_ context.Context, id uuid.UUID, status booking.Status, intentID *string) error {
	return s.update(OpUpdateHold, id, func(b *booking.Booking) {
		b.Status = status
		if intentID == nil {
			b.SecurityHoldIntentID = nil
			return
		}
		v := *intentID
		b.SecurityHoldIntentID = &v
	})
}

func (s *bookingStore) UpdateBalance(_ context.Context, id uuid.UUID, balanceCents int64) error {
	return s.update(OpUpdateBalance, id, func(b *booking.Booking) { b.BalanceCents = balanceCents })
}

func (s *bookingStore) FindContact(_ context.Context, bookingID uuid.UUID) (*booking.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.contacts[bookingID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *bookingStore) ListInsuranceDocuments(_ context.Context, customerID uuid.UUID) ([]booking.InsuranceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.insurance[customerID]), nil
}

type ledgerStore Store

func (s *ledgerStore) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := (*Store)(s).injected(OpListLedger); err != nil {
		return nil, err
	}
	var out []ledger.Entry
	for _, e := range s.st.entries {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *ledgerStore) AppendHoldRelease(_ context.Context, rec ledger.HoldRelease) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := (*Store)(s).injected(OpAppendRelease); err != nil {
		return err
	}
	s.st.releases = append(s.st.releases, rec)
	return nil
}

func (s *ledgerStore) UpdatePaymentStatus(_ context.Context, source ledger.Source, paymentID uuid.UUID, status ledger.Status) (uuid.UUID, ledger.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.st.entries {
		if e.ID == paymentID && e.Source == source {
			prev := e.Status
			s.st.entries[i].Status = status
			return e.BookingID, prev, nil
		}
	}
	return uuid.Nil, "", errs.ErrPaymentNotFound
}
