package digest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adikusuma/duitbot/internal/budget"
	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/service"
	"github.com/adikusuma/duitbot/internal/testutil"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  map[string]string
	fail  map[string]bool
	calls int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		sent: make(map[string]string),
		fail: make(map[string]bool),
	}
}

func (n *recordingNotifier) Send(_ context.Context, externalID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.fail[externalID] {
		return errors.New("transport down")
	}
	n.sent[externalID] = message
	return nil
}

type pinningNotifier struct {
	recordingNotifier
	refs map[string]string
}

func (n *pinningNotifier) SendWithRef(ctx context.Context, externalID, message string) (string, error) {
	if err := n.Send(ctx, externalID, message); err != nil {
		return "", err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	ref := "msg-" + externalID
	n.refs[externalID] = ref
	return ref, nil
}

func setupComposer(t *testing.T) (*Composer, service.Storage, *recordingNotifier) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	notifier := newRecordingNotifier()
	composer := NewComposer(db, budget.NewManager(db, nil), notifier, nil)
	return composer, db, notifier
}

func addExpense(t *testing.T, db service.Storage, userID int64, amount float64, cat model.Category, date time.Time) {
	t.Helper()
	_, err := db.AppendTransaction(context.Background(), model.Transaction{
		UserID:      userID,
		Amount:      amount,
		Category:    cat,
		Description: "test",
		Type:        model.TypeExpense,
		Date:        date,
	})
	require.NoError(t, err)
}

func TestCompose(t *testing.T) {
	ctx := context.Background()

	t.Run("quiet day yields empty digest", func(t *testing.T) {
		composer, db, _ := setupComposer(t)
		user, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)

		msg, err := composer.Compose(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, msg)
	})

	t.Run("breakdown sorted by amount with top-category status", func(t *testing.T) {
		composer, db, _ := setupComposer(t)
		user, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)

		now := time.Now()
		addExpense(t, db, user.ID, 30_000, model.CategoryMakanan, now)
		addExpense(t, db, user.ID, 80_000, model.CategoryBelanja, now)

		require.NoError(t, db.UpsertBudgetLimit(ctx, user.ID, model.CategoryBelanja, 100_000, int(now.Month()), now.Year()))
		require.NoError(t, db.CommitUsage(ctx, user.ID, model.CategoryBelanja, 80_000, int(now.Month()), now.Year()))

		msg, err := composer.Compose(ctx, user.ID)
		require.NoError(t, err)
		assert.Contains(t, msg, "DAILY DIGEST")
		assert.Contains(t, msg, "Total Hari Ini: Rp110.000")
		assert.Contains(t, msg, "Belanja: Rp80.000")
		assert.Contains(t, msg, "Makanan: Rp30.000")
		// 80% of the Belanja budget is used, so the digest carries the warning.
		assert.Contains(t, msg, "💡")
		assert.Contains(t, msg, "WARNING")
		assert.Less(t, strings.Index(msg, "Belanja: Rp80.000"), strings.Index(msg, "Makanan: Rp30.000"))
	})

	t.Run("trend compares against trailing week", func(t *testing.T) {
		composer, db, _ := setupComposer(t)
		user, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)

		now := time.Now()
		addExpense(t, db, user.ID, 10_000, model.CategoryMakanan, now.AddDate(0, 0, -3))
		addExpense(t, db, user.ID, 100_000, model.CategoryBelanja, now)

		msg, err := composer.Compose(ctx, user.ID)
		require.NoError(t, err)
		assert.Contains(t, msg, "Di atas rata-rata")
	})
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("sends only to users with spending today", func(t *testing.T) {
		composer, db, notifier := setupComposer(t)
		active, err := db.GetOrCreateUser(ctx, "ext-active", "budi")
		require.NoError(t, err)
		_, err = db.GetOrCreateUser(ctx, "ext-quiet", "sari")
		require.NoError(t, err)

		addExpense(t, db, active.ID, 50_000, model.CategoryMakanan, time.Now())

		require.NoError(t, composer.Broadcast(ctx))

		assert.Contains(t, notifier.sent["ext-active"], "DAILY DIGEST")
		_, quietGotOne := notifier.sent["ext-quiet"]
		assert.False(t, quietGotOne)
	})

	t.Run("one failed send does not abort the rest", func(t *testing.T) {
		composer, db, notifier := setupComposer(t)
		first, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)
		second, err := db.GetOrCreateUser(ctx, "ext-2", "sari")
		require.NoError(t, err)

		addExpense(t, db, first.ID, 50_000, model.CategoryMakanan, time.Now())
		addExpense(t, db, second.ID, 70_000, model.CategoryMakanan, time.Now())
		notifier.fail["ext-1"] = true

		require.NoError(t, composer.Broadcast(ctx))
		assert.Contains(t, notifier.sent["ext-2"], "DAILY DIGEST")
	})

	t.Run("ref-returning transport updates the pinned dashboard", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		notifier := &pinningNotifier{
			recordingNotifier: recordingNotifier{
				sent: make(map[string]string),
				fail: make(map[string]bool),
			},
			refs: make(map[string]string),
		}
		composer := NewComposer(db, budget.NewManager(db, nil), notifier, nil)

		user, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)
		addExpense(t, db, user.ID, 50_000, model.CategoryMakanan, time.Now())

		require.NoError(t, composer.Broadcast(ctx))

		assert.Contains(t, notifier.sent["ext-1"], "DAILY DIGEST")
		updated, err := db.GetUser(ctx, "ext-1")
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "msg-ext-1", updated.PinnedMessageRef)
	})
}
