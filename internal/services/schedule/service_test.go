package schedule

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/testutil"
	"github.com/thenoetrevino/sitebook/internal/workdays"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type recordingPublisher struct {
	mu   sync.Mutex
	sent []events.Event
}

func (r *recordingPublisher) Connect(context.Context) error { return nil }
func (r *recordingPublisher) Subscribe(int) error           { return nil }
func (r *recordingPublisher) Close() error                  { return nil }
func (r *recordingPublisher) Listen(context.Context) (<-chan events.Event, error) {
	ch := make(chan events.Event)
	close(ch)
	return ch, nil
}
func (r *recordingPublisher) SendEvent(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, e)
	return nil
}

type countingRecorder struct {
	outcomes []string
}

func (c *countingRecorder) ObserveSchedule(kind, resolution string) {
	c.outcomes = append(c.outcomes, kind+"/"+resolution)
}

type fixture struct {
	db    *sql.DB
	store *database.Store
	svc   Service
	org   int
	pub   *recordingPublisher
}

// setup builds a scheduler whose "today" is 2026-10-01, before every test date
func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := database.NewStore(db)
	pub := &recordingPublisher{}

	opts = append([]Option{WithClock(func() time.Time {
		return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	})}, opts...)

	return &fixture{
		db:    db,
		store: store,
		svc:   NewService(store, workdays.Default(), pub, opts...),
		org:   testutil.CreateTestOrganization(t, db, "Builders"),
		pub:   pub,
	}
}

// project creates a client with a scheduled project and returns the project id
func (f *fixture) project(t *testing.T, name, start, end string) int {
	t.Helper()
	_, pid := testutil.CreateTestClient(t, f.db, f.org, name)
	if start != "" || end != "" {
		testutil.SetProjectDates(t, f.db, pid, start, end, "", "")
	}
	return pid
}

func (f *fixture) get(t *testing.T, id int) *models.Project {
	t.Helper()
	p, err := f.store.Projects.GetByID(context.Background(), f.org, id)
	require.NoError(t, err)
	return p
}

func (f *fixture) request(t *testing.T, id int, start, end string) Request {
	t.Helper()
	return Request{OrganizationID: f.org, ProjectID: id, Primary: testutil.Range(t, start, end)}
}

// ============================================================================
// COMMIT WITHOUT CONFLICTS
// ============================================================================

func TestSchedule_NoConflictCommits(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	f.project(t, "Cohen", "2026-10-04", "2026-10-08")
	b := f.project(t, "Levi", "", "")

	res, err := f.svc.Schedule(ctx, f.request(t, b, "2026-10-11", "2026-10-15"), ResolveNone)
	require.NoError(t, err)

	assert.Equal(t, KindNone, res.Kind)
	assert.Empty(t, res.Moved)
	assert.False(t, res.StatusChanged)
	assert.Equal(t, testutil.Range(t, "2026-10-11", "2026-10-15"), res.Project.Primary)
	assert.Nil(t, res.Project.Secondary)

	require.Len(t, f.pub.sent, 1)
	assert.Equal(t, f.org, f.pub.sent[0].OrganizationID)
	assert.Equal(t, "project", f.pub.sent[0].Entity)
	assert.Equal(t, b, f.pub.sent[0].EntityID)
}

func TestSchedule_AdjacentRangesDoNotConflict(t *testing.T) {
	t.Parallel()
	f := setup(t)

	f.project(t, "Cohen", "2026-10-04", "2026-10-08")
	b := f.project(t, "Levi", "", "")

	plan, err := f.svc.Check(context.Background(), f.request(t, b, "2026-10-09", "2026-10-12"))
	require.NoError(t, err)
	assert.False(t, plan.HasConflict())
	assert.Equal(t, KindNone, plan.Kind)
}

func TestSchedule_IncompletePrimarySkipsCheck(t *testing.T) {
	t.Parallel()
	f := setup(t)

	f.project(t, "Cohen", "2026-10-18", "2026-10-22")
	b := f.project(t, "Levi", "", "")

	req := Request{OrganizationID: f.org, ProjectID: b, Primary: models.DateRange{Start: testutil.Date(t, "2026-10-20")}}
	res, err := f.svc.Schedule(context.Background(), req, ResolveNone)
	require.NoError(t, err)

	assert.Equal(t, KindNone, res.Kind)
	assert.Equal(t, testutil.Date(t, "2026-10-20"), res.Project.Primary.Start)
	assert.True(t, res.Project.Primary.End.IsZero())
}

func TestSchedule_OtherOrganizationsAreInvisible(t *testing.T) {
	t.Parallel()
	f := setup(t)

	other := testutil.CreateTestOrganization(t, f.db, "Rivals")
	_, foreign := testutil.CreateTestClient(t, f.db, other, "Mizrahi")
	testutil.SetProjectDates(t, f.db, foreign, "2026-10-18", "2026-10-22", "", "")

	b := f.project(t, "Levi", "", "")
	res, err := f.svc.Schedule(context.Background(), f.request(t, b, "2026-10-20", "2026-10-21"), ResolveNone)
	require.NoError(t, err)
	assert.Equal(t, KindNone, res.Kind)

	_, err = f.svc.Schedule(context.Background(),
		Request{OrganizationID: f.org, ProjectID: foreign, Primary: testutil.Range(t, "2026-11-01", "2026-11-02")}, ResolveNone)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// ============================================================================
// CONFLICTS
// ============================================================================

func TestSchedule_ConflictWithoutResolutionWritesNothing(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	a := f.project(t, "Cohen", "2026-10-18", "2026-10-22")
	b := f.project(t, "Levi", "2026-11-01", "2026-11-03")

	_, err := f.svc.Schedule(ctx, f.request(t, b, "2026-10-20", "2026-10-21"), ResolveNone)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, KindSplit, conflict.Plan.Kind)
	require.Len(t, conflict.Plan.Conflicts, 1)
	assert.Equal(t, a, conflict.Plan.Conflicts[0].ID)
	assert.Equal(t, "Cohen", conflict.Plan.Conflicts[0].ClientName)

	assert.Equal(t, testutil.Range(t, "2026-11-01", "2026-11-03"), f.get(t, b).Primary)
	assert.Equal(t, testutil.Range(t, "2026-10-18", "2026-10-22"), f.get(t, a).Primary)
	assert.Empty(t, f.pub.sent)
}

func TestCheck_OrdersConflictsAndClassifiesOnFirst(t *testing.T) {
	t.Parallel()
	f := setup(t)

	late := f.project(t, "Late", "2026-10-21", "2026-10-29")
	early := f.project(t, "Early", "2026-10-15", "2026-10-25")
	b := f.project(t, "Levi", "", "")

	plan, err := f.svc.Check(context.Background(), f.request(t, b, "2026-10-19", "2026-10-22"))
	require.NoError(t, err)

	require.Len(t, plan.Conflicts, 2)
	assert.Equal(t, early, plan.Conflicts[0].ID)
	assert.Equal(t, late, plan.Conflicts[1].ID)
	// Inside "Early", so split, even though it only partly overlaps "Late"
	assert.Equal(t, KindSplit, plan.Kind)
	require.NotNil(t, plan.Split)
	assert.Equal(t, early, plan.Split.ProjectID)
	assert.Equal(t, 4, plan.ShiftDays)
}

func TestSchedule_SplitExample(t *testing.T) {
	t.Parallel()
	f := setup(t)
	cal := workdays.Default()

	a := f.project(t, "Cohen", "2026-10-18", "2026-10-22")
	b := f.project(t, "Levi", "", "")

	res, err := f.svc.Schedule(context.Background(), f.request(t, b, "2026-10-20", "2026-10-21"), ResolveSplit)
	require.NoError(t, err)
	assert.Equal(t, KindSplit, res.Kind)
	assert.Equal(t, ResolveSplit, res.Resolution)
	require.Len(t, res.Moved, 1)

	victim := f.get(t, a)
	assert.Equal(t, testutil.Range(t, "2026-10-18", "2026-10-19"), victim.Primary)
	require.NotNil(t, victim.Secondary)
	assert.Equal(t, testutil.Range(t, "2026-10-22", "2026-10-26"), *victim.Secondary)
	assert.Equal(t, 5, cal.RangeDuration(victim.Primary)+cal.RangeDuration(*victim.Secondary))

	assert.Equal(t, testutil.Range(t, "2026-10-20", "2026-10-21"), f.get(t, b).Primary)
}

func TestSchedule_SplitRejectedForShiftConflict(t *testing.T) {
	t.Parallel()
	f := setup(t)

	a := f.project(t, "Cohen", "2026-10-18", "2026-10-22")
	b := f.project(t, "Levi", "", "")

	_, err := f.svc.Schedule(context.Background(), f.request(t, b, "2026-10-18", "2026-10-19"), ResolveSplit)
	assert.ErrorIs(t, err, ErrSplitNotApplicable)
	assert.Equal(t, testutil.Range(t, "2026-10-18", "2026-10-22"), f.get(t, a).Primary)
	assert.True(t, f.get(t, b).Primary.IsEmpty())
}

func TestSchedule_Shift(t *testing.T) {
	t.Parallel()
	f := setup(t)
	cal := workdays.Default()
	ctx := context.Background()

	before := f.project(t, "Before", "2026-10-11", "2026-10-19")
	a := f.project(t, "Cohen", "2026-10-18", "2026-10-22")
	c := f.project(t, "Dayan", "2026-10-25", "2026-10-27")
	testutil.SetProjectDates(t, f.db, c, "2026-10-25", "2026-10-27", "2026-11-01", "2026-11-02")
	b := f.project(t, "Levi", "", "")

	res, err := f.svc.Schedule(ctx, f.request(t, b, "2026-10-18", "2026-10-19"), ResolveShift)
	require.NoError(t, err)
	assert.Equal(t, KindShift, res.Kind)
	assert.Len(t, res.Moved, 2)

	// Shift is the candidate's two working days
	movedA := f.get(t, a)
	assert.Equal(t, testutil.Range(t, "2026-10-20", "2026-10-26"), movedA.Primary)
	assert.Equal(t, 5, cal.RangeDuration(movedA.Primary))

	movedC := f.get(t, c)
	assert.Equal(t, testutil.Range(t, "2026-10-27", "2026-10-29"), movedC.Primary)
	require.NotNil(t, movedC.Secondary)
	assert.Equal(t, testutil.Range(t, "2026-11-03", "2026-11-04"), *movedC.Secondary)

	// Starts before the candidate, so it stays even though it overlaps
	assert.Equal(t, testutil.Range(t, "2026-10-11", "2026-10-19"), f.get(t, before).Primary)

	assert.Equal(t, testutil.Range(t, "2026-10-18", "2026-10-19"), f.get(t, b).Primary)
}

func TestSchedule_ShiftMovesByCandidateLength(t *testing.T) {
	t.Parallel()
	f := setup(t)
	cal := workdays.Default()

	starts := map[int]models.DateRange{}
	for i, r := range [][2]string{
		{"2026-11-01", "2026-11-05"},
		{"2026-11-08", "2026-11-18"},
		{"2026-12-06", "2026-12-06"},
	} {
		id := f.project(t, string(rune('A'+i)), r[0], r[1])
		starts[id] = testutil.Range(t, r[0], r[1])
	}
	b := f.project(t, "Levi", "", "")

	req := f.request(t, b, "2026-11-01", "2026-11-09")
	shift := cal.RangeDuration(req.Primary)
	_, err := f.svc.Schedule(context.Background(), req, ResolveShift)
	require.NoError(t, err)

	for id, old := range starts {
		moved := f.get(t, id)
		assert.Equal(t, cal.RangeDuration(old), cal.RangeDuration(moved.Primary), "project %d keeps its length", id)
		assert.Equal(t, shift, cal.Between(old.Start, moved.Primary.Start), "project %d moves by the candidate length", id)
	}
}

func TestSchedule_IgnoreKeepsOverlap(t *testing.T) {
	t.Parallel()
	f := setup(t)

	a := f.project(t, "Cohen", "2026-10-18", "2026-10-22")
	b := f.project(t, "Levi", "", "")

	res, err := f.svc.Schedule(context.Background(), f.request(t, b, "2026-10-20", "2026-10-21"), ResolveIgnore)
	require.NoError(t, err)
	assert.Empty(t, res.Moved)

	pa, pb := f.get(t, a), f.get(t, b)
	assert.Equal(t, testutil.Range(t, "2026-10-18", "2026-10-22"), pa.Primary)
	assert.Nil(t, pa.Secondary)
	assert.True(t, pa.Primary.Overlaps(pb.Primary))
}

func TestSchedule_ReschedulingItselfIsNotAConflict(t *testing.T) {
	t.Parallel()
	f := setup(t)

	a := f.project(t, "Cohen", "2026-10-18", "2026-10-22")
	res, err := f.svc.Schedule(context.Background(), f.request(t, a, "2026-10-19", "2026-10-25"), ResolveNone)
	require.NoError(t, err)
	assert.Equal(t, KindNone, res.Kind)
}

// ============================================================================
// SECONDARY RANGE AND STATUS
// ============================================================================

func TestSchedule_SecondaryRangeSavedAndCleared(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	b := f.project(t, "Levi", "", "")
	req := f.request(t, b, "2026-11-01", "2026-11-03")
	second := testutil.Range(t, "2026-11-15", "2026-11-16")
	req.Secondary = &second

	res, err := f.svc.Schedule(ctx, req, ResolveNone)
	require.NoError(t, err)
	require.NotNil(t, res.Project.Secondary)
	assert.Equal(t, second, *res.Project.Secondary)

	req.Secondary = nil
	res, err = f.svc.Schedule(ctx, req, ResolveNone)
	require.NoError(t, err)
	assert.Nil(t, res.Project.Secondary)
}

func TestSchedule_StartedWorkMovesClientInProgress(t *testing.T) {
	t.Parallel()
	f := setup(t, WithClock(func() time.Time {
		return time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	}))
	ctx := context.Background()

	clientID, pid := testutil.CreateTestClient(t, f.db, f.org, "Levi")
	testutil.SetClientStatus(t, f.db, clientID, models.StatusSigned)

	res, err := f.svc.Schedule(ctx, f.request(t, pid, "2026-10-19", "2026-10-22"), ResolveNone)
	require.NoError(t, err)
	assert.True(t, res.StatusChanged)

	c, err := f.store.Clients.GetByID(ctx, f.org, clientID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, c.Status)
}

func TestSchedule_FutureWorkKeepsStatus(t *testing.T) {
	t.Parallel()
	f := setup(t, WithClock(func() time.Time {
		return time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	}))
	ctx := context.Background()

	clientID, pid := testutil.CreateTestClient(t, f.db, f.org, "Levi")
	testutil.SetClientStatus(t, f.db, clientID, models.StatusSigned)

	res, err := f.svc.Schedule(ctx, f.request(t, pid, "2026-10-21", "2026-10-22"), ResolveNone)
	require.NoError(t, err)
	assert.False(t, res.StatusChanged)

	c, err := f.store.Clients.GetByID(ctx, f.org, clientID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSigned, c.Status)
}

func TestSchedule_CompletedClientStaysCompleted(t *testing.T) {
	t.Parallel()
	f := setup(t, WithClock(func() time.Time {
		return time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	}))
	ctx := context.Background()

	clientID, pid := testutil.CreateTestClient(t, f.db, f.org, "Levi")
	testutil.SetClientStatus(t, f.db, clientID, models.StatusCompleted)

	res, err := f.svc.Schedule(ctx, f.request(t, pid, "2026-10-01", "2026-10-05"), ResolveNone)
	require.NoError(t, err)
	assert.False(t, res.StatusChanged)

	c, err := f.store.Clients.GetByID(ctx, f.org, clientID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, c.Status)
}

func TestSchedule_RecorderSeesOutcome(t *testing.T) {
	t.Parallel()
	rec := &countingRecorder{}
	f := setup(t, WithRecorder(rec))

	f.project(t, "Cohen", "2026-10-18", "2026-10-22")
	b := f.project(t, "Levi", "", "")

	_, err := f.svc.Schedule(context.Background(), f.request(t, b, "2026-10-20", "2026-10-21"), ResolveIgnore)
	require.NoError(t, err)
	assert.Equal(t, []string{"split/ignore"}, rec.outcomes)
}

// ============================================================================
// VALIDATION
// ============================================================================

func TestSchedule_Validation(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()
	b := f.project(t, "Levi", "", "")

	tests := []struct {
		name string
		req  Request
		res  Resolution
		want error
	}{
		{
			name: "invalid project id",
			req:  Request{OrganizationID: f.org},
			want: ErrInvalidProjectID,
		},
		{
			name: "end before start",
			req:  f.request(t, b, "2026-10-22", "2026-10-18"),
			want: ErrInvalidRange,
		},
		{
			name: "partial secondary",
			req: Request{OrganizationID: f.org, ProjectID: b, Primary: testutil.Range(t, "2026-10-18", "2026-10-19"),
				Secondary: &models.DateRange{Start: testutil.Date(t, "2026-10-25")}},
			want: ErrPartialSecondary,
		},
		{
			name: "secondary end before start",
			req: Request{OrganizationID: f.org, ProjectID: b, Primary: testutil.Range(t, "2026-10-18", "2026-10-19"),
				Secondary: &models.DateRange{Start: testutil.Date(t, "2026-10-26"), End: testutil.Date(t, "2026-10-25")}},
			want: ErrInvalidRange,
		},
		{
			name: "unknown resolution",
			req:  f.request(t, b, "2026-10-18", "2026-10-19"),
			res:  Resolution("merge"),
			want: ErrUnknownResolution,
		},
		{
			name: "missing project",
			req:  f.request(t, 9999, "2026-10-18", "2026-10-19"),
			want: ErrProjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Schedule(ctx, tt.req, tt.res)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSchedule_EmptySecondaryIsDropped(t *testing.T) {
	t.Parallel()
	f := setup(t)
	b := f.project(t, "Levi", "", "")

	req := f.request(t, b, "2026-10-18", "2026-10-19")
	req.Secondary = &models.DateRange{}
	res, err := f.svc.Schedule(context.Background(), req, ResolveNone)
	require.NoError(t, err)
	assert.Nil(t, res.Project.Secondary)
}

func TestSchedule_BroadcastsThroughDaemon(t *testing.T) {
	_, socket := testutil.SetupTestDaemon(t)
	listener := testutil.SetupTestClient(t, socket, 0)
	publisher := testutil.SetupTestClient(t, socket, 0)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	received, err := listener.Listen(ctx)
	require.NoError(t, err)

	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Builders")
	_, pid := testutil.CreateTestClient(t, db, org, "Levi")
	svc := NewService(database.NewStore(db), workdays.Default(), publisher, WithClock(func() time.Time {
		return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	}))

	req := Request{OrganizationID: org, ProjectID: pid, Primary: testutil.Range(t, "2026-10-11", "2026-10-15")}
	_, err = svc.Schedule(context.Background(), req, ResolveNone)
	require.NoError(t, err)

	got := testutil.WaitForEvent(t, received, 3*time.Second)
	assert.Equal(t, events.EventDatabaseChanged, got.Type)
	assert.Equal(t, org, got.OrganizationID)
	assert.Positive(t, got.SequenceID)
}
