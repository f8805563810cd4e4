package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/orgvault/orgvault/internal/common"
	"github.com/orgvault/orgvault/internal/logging"
	"github.com/orgvault/orgvault/internal/models"
	"github.com/orgvault/orgvault/internal/repositories/archive"
	"github.com/orgvault/orgvault/internal/repositories/repomanager"
	"github.com/orgvault/orgvault/internal/snapshot"
)

var testDBSeq atomic.Int64

// testClock hands out strictly increasing timestamps so listing order is
// deterministic.
type testClock struct {
	base time.Time
	n    atomic.Int64
}

func (c *testClock) Now() time.Time {
	return c.base.Add(time.Duration(c.n.Add(1)) * time.Second)
}

type testEnv struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	service *ArchiveService
	clock   *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	repos := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, repos.RunMigrations(context.Background(), db))

	clock := &testClock{base: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	service := NewArchiveService(db, repos, DefaultRegistry(repos), clock.Now, logger)

	return &testEnv{db: db, repos: repos, service: service, clock: clock}
}

func (e *testEnv) createNote(t *testing.T, userID, id, title string) *models.Note {
	t.Helper()
	n := &models.Note{
		ID: id, UserID: userID, Title: title, Body: "body of " + title,
		Tags:      []string{"test"},
		CreatedAt: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.repos.Notes(e.db).Create(context.Background(), n))
	return n
}

func (e *testEnv) createCategory(t *testing.T, userID, id, name string) {
	t.Helper()
	require.NoError(t, e.repos.Categories(e.db).Create(context.Background(), &models.Category{
		ID: id, UserID: userID, Name: name,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func (e *testEnv) createTransaction(t *testing.T, userID, id, categoryID string) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		ID: id, UserID: userID, Amount: 1999, Currency: "EUR",
		Direction: models.DirectionExpense, CategoryID: categoryID, Note: "groceries",
		OccurredAt: time.Date(2024, 1, 5, 18, 30, 0, 0, time.UTC),
		CreatedAt:  time.Date(2024, 1, 5, 18, 31, 0, 0, time.UTC),
	}
	require.NoError(t, e.repos.Transactions(e.db).Create(context.Background(), tx))
	return tx
}

func (e *testEnv) createGoal(t *testing.T, userID, id, name string) *models.Goal {
	t.Helper()
	g := &models.Goal{
		ID: id, UserID: userID, Name: name, TargetAmount: 100000, SavedAmount: 500,
		Currency:  "USD",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.repos.Goals(e.db).Create(context.Background(), g))
	return g
}

func TestArchiveRestore_Inverse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	original := env.createNote(t, "u1", "n1", "Plan")

	entryID, err := env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	require.NoError(t, err)
	require.NotEmpty(t, entryID)

	// live row must be gone while archived
	_, err = env.repos.Notes(env.db).LoadLive(ctx, "u1", "n1")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	result, err := env.service.Restore(ctx, "u1", entryID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.KindNote, result.Kind)
	assert.Equal(t, "n1", result.OriginalID)
	assert.Empty(t, result.Warnings)

	// restored record is observably identical, original identifier included
	restored, err := env.repos.Notes(env.db).LoadLive(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, original, restored)

	// and the archive entry is consumed
	_, err = env.service.GetDetail(ctx, "u1", entryID)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestArchiveRestore_TaskAndBudget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createCategory(t, "u1", "c1", "Chores")

	due := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	task := &models.Task{
		ID: "t1", UserID: "u1", Title: "Mow lawn", Details: "back yard",
		CategoryID: "c1", Done: false, Priority: 2, DueDate: &due,
		CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, env.repos.Tasks(env.db).Create(ctx, task))

	budget := &models.Budget{
		ID: "b1", UserID: "u1", Name: "Food", CategoryID: "c1",
		LimitAmount: 30000, Currency: "EUR",
		PeriodStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
		CreatedAt:   time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, env.repos.Budgets(env.db).Create(ctx, budget))

	taskEntry, err := env.service.Archive(ctx, "u1", snapshot.KindTask, "t1")
	require.NoError(t, err)
	budgetEntry, err := env.service.Archive(ctx, "u1", snapshot.KindBudget, "b1")
	require.NoError(t, err)

	// the category still exists, so neither restore warns
	taskRes, err := env.service.Restore(ctx, "u1", taskEntry)
	require.NoError(t, err)
	assert.Empty(t, taskRes.Warnings)

	budgetRes, err := env.service.Restore(ctx, "u1", budgetEntry)
	require.NoError(t, err)
	assert.Empty(t, budgetRes.Warnings)

	gotTask, err := env.repos.Tasks(env.db).LoadLive(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, task, gotTask)

	gotBudget, err := env.repos.Budgets(env.db).LoadLive(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, budget, gotBudget)
}

func TestArchive_MissingRecord(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Archive(context.Background(), "u1", snapshot.KindNote, "ghost")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestArchive_UnknownKind(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Archive(context.Background(), "u1", snapshot.Kind("calendar"), "x")
	assert.True(t, errors.Is(err, common.ErrorUnknownKind))
}

func TestArchive_TwiceInSequenceIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createNote(t, "u1", "n1", "Plan")

	_, err := env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	require.NoError(t, err)

	// the live row is gone, but a replayed archive must report the record
	// as already archived, not as missing
	_, err = env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	assert.True(t, errors.Is(err, common.ErrorConflict))
	assert.False(t, errors.Is(err, common.ErrorNotFound))
}

func TestArchive_ConflictWhenEntryAlreadyExists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createNote(t, "u1", "n1", "Plan")
	_, err := env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	require.NoError(t, err)

	// the user re-creates a record under the same identifier; archiving it
	// again must hit the uniqueness guarantee, not produce a second entry
	env.createNote(t, "u1", "n1", "Plan v2")
	_, err = env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	assert.True(t, errors.Is(err, common.ErrorConflict))

	// the failed attempt rolled back completely: the new live row survives
	live, err := env.repos.Notes(env.db).LoadLive(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, "Plan v2", live.(*models.Note).Title)
}

func TestArchive_ConcurrentAttemptsOneWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createNote(t, "u1", "n1", "Plan")

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, common.ErrorConflict) || errors.Is(err, common.ErrorNotFound):
			lost++
		default:
			t.Fatalf("unexpected loser error: %v", err)
		}
	}
	require.Equal(t, 1, won, "exactly one of two simultaneous attempts must succeed")
	require.Equal(t, 1, lost)

	listing, err := env.service.ListArchived(ctx, "u1", archive.ListFilter{}, archive.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, listing.TotalCount, "the race must not produce duplicate entries")
}

func TestRestore_ConcurrentAttemptsOneWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createNote(t, "u1", "n1", "Plan")
	entryID, err := env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.Restore(ctx, "u1", entryID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, common.ErrorNotFound):
			lost++
		default:
			t.Fatalf("unexpected loser error: %v", err)
		}
	}
	require.Equal(t, 1, won, "exactly one restore must win")
	require.Equal(t, 1, lost, "the loser must observe not-found after the winner consumes the entry")

	// exactly one live row came back
	_, err = env.repos.Notes(env.db).LoadLive(ctx, "u1", "n1")
	require.NoError(t, err)
}

func TestRestore_DanglingReferenceWarning(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createCategory(t, "u1", "c1", "Food")
	env.createTransaction(t, "u1", "tx1", "c1")

	entryID, err := env.service.Archive(ctx, "u1", snapshot.KindTransaction, "tx1")
	require.NoError(t, err)

	require.NoError(t, env.repos.Categories(env.db).Delete(ctx, "u1", "c1"))

	result, err := env.service.Restore(ctx, "u1", entryID)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "c1", result.Warnings[0].ReferenceID)

	// the reference is preserved verbatim, not nulled out
	restored, err := env.repos.Transactions(env.db).LoadLive(ctx, "u1", "tx1")
	require.NoError(t, err)
	assert.Equal(t, "c1", restored.(*models.Transaction).CategoryID)
}

func TestRestore_ConflictRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createNote(t, "u1", "n1", "Plan")
	entryID, err := env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	require.NoError(t, err)

	// an unrelated record now occupies the identifier slot
	env.createNote(t, "u1", "n1", "Occupier")

	_, err = env.service.Restore(ctx, "u1", entryID)
	assert.True(t, errors.Is(err, common.ErrorConflict))

	// rollback: the entry is still restorable once the slot frees up
	_, err = env.service.GetDetail(ctx, "u1", entryID)
	require.NoError(t, err)

	require.NoError(t, env.repos.Notes(env.db).RemoveLive(ctx, "u1", "n1"))
	_, err = env.service.Restore(ctx, "u1", entryID)
	require.NoError(t, err)
}

func TestRestore_MalformedPayload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bad := &models.ArchiveEntry{
		ID: "e-bad", UserID: "u1", Kind: "note", OriginalID: "n9",
		Payload:    []byte(`{"id":`),
		ArchivedAt: env.clock.Now(),
	}
	require.NoError(t, env.repos.Archive(env.db).Insert(ctx, bad))

	_, err := env.service.Restore(ctx, "u1", "e-bad")
	assert.True(t, errors.Is(err, common.ErrorMalformedPayload))

	// a corrupt entry must not take the listing down with it
	listing, err := env.service.ListArchived(ctx, "u1", archive.ListFilter{}, archive.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, "(unreadable entry)", listing.Entries[0].Summary)
}

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createNote(t, "owner-a", "n1", "Private")
	entryID, err := env.service.Archive(ctx, "owner-a", snapshot.KindNote, "n1")
	require.NoError(t, err)

	_, err = env.service.GetDetail(ctx, "owner-b", entryID)
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	_, err = env.service.Restore(ctx, "owner-b", entryID)
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	err = env.service.PermanentDelete(ctx, "owner-b", entryID)
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	// owner A is unaffected
	_, err = env.service.GetDetail(ctx, "owner-a", entryID)
	require.NoError(t, err)
}

func TestPermanentDelete_Terminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createGoal(t, "u1", "g1", "Car")
	entryID, err := env.service.Archive(ctx, "u1", snapshot.KindGoal, "g1")
	require.NoError(t, err)

	require.NoError(t, env.service.PermanentDelete(ctx, "u1", entryID))

	_, err = env.service.GetDetail(ctx, "u1", entryID)
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	_, err = env.service.Restore(ctx, "u1", entryID)
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	// no trace in the live table either
	_, err = env.repos.Goals(env.db).LoadLive(ctx, "u1", "g1")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	listing, err := env.service.ListArchived(ctx, "u1", archive.ListFilter{}, archive.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, listing.TotalCount)
}

func TestGetDetail_FullPayload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	original := env.createNote(t, "u1", "n1", "Plan")
	entryID, err := env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	require.NoError(t, err)

	detail, err := env.service.GetDetail(ctx, "u1", entryID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.KindNote, detail.Kind)
	assert.Equal(t, "n1", detail.OriginalID)
	assert.Equal(t, original, detail.Record)
}

func TestListArchived_PaginationAcrossKinds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 25 records across 3 kinds, archived in a known order
	var wantIDs []string
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("r%02d", i)
		var kind snapshot.Kind
		switch i % 3 {
		case 0:
			env.createNote(t, "u1", id, "Note "+id)
			kind = snapshot.KindNote
		case 1:
			env.createTransaction(t, "u1", id, "")
			kind = snapshot.KindTransaction
		case 2:
			env.createGoal(t, "u1", id, "Goal "+id)
			kind = snapshot.KindGoal
		}
		entryID, err := env.service.Archive(ctx, "u1", kind, id)
		require.NoError(t, err)
		wantIDs = append(wantIDs, entryID)
	}

	// newest first: reverse the creation order
	for i, j := 0, len(wantIDs)-1; i < j; i, j = i+1, j-1 {
		wantIDs[i], wantIDs[j] = wantIDs[j], wantIDs[i]
	}

	var gotIDs []string
	for page := 0; page < 3; page++ {
		listing, err := env.service.ListArchived(ctx, "u1", archive.ListFilter{},
			archive.Page{Limit: 10, Offset: page * 10})
		require.NoError(t, err)
		assert.Equal(t, 25, listing.TotalCount)
		for _, e := range listing.Entries {
			gotIDs = append(gotIDs, e.ID)
			assert.NotEmpty(t, e.Summary)
		}
	}

	assert.Equal(t, wantIDs, gotIDs, "page concatenation must reproduce all entries newest-first, no dups or omissions")
}

func TestListArchived_KindAndTextFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createNote(t, "u1", "n1", "Grocery plan")
	env.createNote(t, "u1", "n2", "Holiday ideas")
	env.createGoal(t, "u1", "g1", "Car")
	for _, v := range []struct {
		kind snapshot.Kind
		id   string
	}{{snapshot.KindNote, "n1"}, {snapshot.KindNote, "n2"}, {snapshot.KindGoal, "g1"}} {
		_, err := env.service.Archive(ctx, "u1", v.kind, v.id)
		require.NoError(t, err)
	}

	byKind, err := env.service.ListArchived(ctx, "u1", archive.ListFilter{Kind: "goal"}, archive.Page{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, byKind.TotalCount)
	assert.Equal(t, snapshot.KindGoal, byKind.Entries[0].Kind)

	byText, err := env.service.ListArchived(ctx, "u1", archive.ListFilter{Text: "grocery"}, archive.Page{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, byText.TotalCount)
	assert.Equal(t, "Grocery plan", byText.Entries[0].Summary)
}

func TestListArchived_TextMatchesSummaryNotPayload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// summary: "expense 19.99 EUR: groceries"
	env.createTransaction(t, "u1", "tx1", "")
	// summary: "Plans"; the distinctive word lives only in the body
	n := &models.Note{
		ID: "n1", UserID: "u1", Title: "Plans", Body: "remember the zebra enclosure",
		CreatedAt: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, env.repos.Notes(env.db).Create(ctx, n))

	_, err := env.service.Archive(ctx, "u1", snapshot.KindTransaction, "tx1")
	require.NoError(t, err)
	_, err = env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	require.NoError(t, err)

	// the rendered amount matches even though the payload stores minor units
	byAmount, err := env.service.ListArchived(ctx, "u1", archive.ListFilter{Text: "19.99"}, archive.Page{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, byAmount.TotalCount)
	assert.Equal(t, snapshot.KindTransaction, byAmount.Entries[0].Kind)

	// body text absent from the summary must not match
	byBody, err := env.service.ListArchived(ctx, "u1", archive.ListFilter{Text: "zebra"}, archive.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, byBody.TotalCount)
}

func TestArchiveRestore_PreservesEmptyTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	original := &models.Note{
		ID: "n1", UserID: "u1", Title: "Untagged", Body: "x",
		Tags:      []string{},
		CreatedAt: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, env.repos.Notes(env.db).Create(ctx, original))

	entryID, err := env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	require.NoError(t, err)
	_, err = env.service.Restore(ctx, "u1", entryID)
	require.NoError(t, err)

	restored, err := env.repos.Notes(env.db).LoadLive(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, original, restored, "an empty tag slice must not collapse to nil")
}

func TestListArchived_DateRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createNote(t, "u1", "n1", "Early")
	env.createNote(t, "u1", "n2", "Late")
	_, err := env.service.Archive(ctx, "u1", snapshot.KindNote, "n1")
	require.NoError(t, err)
	firstArchived := env.clock.base.Add(time.Duration(env.clock.n.Load()) * time.Second)
	_, err = env.service.Archive(ctx, "u1", snapshot.KindNote, "n2")
	require.NoError(t, err)

	from := firstArchived.Add(time.Millisecond)
	listing, err := env.service.ListArchived(ctx, "u1", archive.ListFilter{From: &from}, archive.Page{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, listing.TotalCount)
	assert.Equal(t, "Late", listing.Entries[0].Summary)
}
