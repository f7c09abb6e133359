// Package digest composes and delivers the nightly spending summary.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adikusuma/duitbot/internal/budget"
	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/service"
)

// broadcastConcurrency bounds parallel sends so the transport is not
// flooded when the user base grows.
const broadcastConcurrency = 8

// Composer builds and broadcasts daily digests.
type Composer struct {
	store    service.Storage
	budgets  *budget.Manager
	notifier service.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewComposer creates a digest composer.
func NewComposer(store service.Storage, budgets *budget.Manager, notifier service.Notifier, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		store:    store,
		budgets:  budgets,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Compose builds the digest for one user for the day containing now.
// It returns an empty string when the user spent nothing today, which
// callers treat as "skip this user".
func (c *Composer) Compose(ctx context.Context, userID int64) (string, error) {
	now := c.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	expenseType := model.TypeExpense
	todays, err := c.store.ListTransactions(ctx, userID, service.TransactionFilter{
		StartDate: &dayStart,
		EndDate:   &dayEnd,
		Type:      &expenseType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to load today's transactions: %w", err)
	}
	if len(todays) == 0 {
		return "", nil
	}

	var total float64
	byCategory := make(map[model.Category]float64)
	for _, t := range todays {
		total += t.Amount
		byCategory[t.Category] += t.Amount
	}
	if total == 0 {
		return "", nil
	}

	type catTotal struct {
		category model.Category
		amount   float64
	}
	breakdown := make([]catTotal, 0, len(byCategory))
	for cat, amt := range byCategory {
		breakdown = append(breakdown, catTotal{cat, amt})
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].amount > breakdown[j].amount })

	trend, err := c.trendLine(ctx, userID, now, total)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("🌙 *DAILY DIGEST*\n\n")
	fmt.Fprintf(&b, "💰 Total Hari Ini: Rp%s\n", budget.FormatRupiah(total))
	if trend != "" {
		b.WriteString(trend + "\n")
	}
	b.WriteString("\n📂 Breakdown:\n")
	for _, ct := range breakdown {
		fmt.Fprintf(&b, "- %s: Rp%s\n", ct.category, budget.FormatRupiah(ct.amount))
	}

	status, err := c.budgets.Status(ctx, userID, breakdown[0].category)
	if err != nil {
		return "", fmt.Errorf("failed to check budget status: %w", err)
	}
	if status != "" {
		b.WriteString("\n💡 " + status)
	}

	return b.String(), nil
}

// trendLine compares today's total against the trailing 7-day daily
// average. No history means no trend line.
func (c *Composer) trendLine(ctx context.Context, userID int64, now time.Time, todayTotal float64) (string, error) {
	weekStart := now.AddDate(0, 0, -7)
	expenseType := model.TypeExpense
	window, err := c.store.ListTransactions(ctx, userID, service.TransactionFilter{
		StartDate: &weekStart,
		Type:      &expenseType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to load trailing window: %w", err)
	}
	if len(window) == 0 {
		return "", nil
	}

	var weekTotal float64
	for _, t := range window {
		weekTotal += t.Amount
	}
	if todayTotal > weekTotal/7 {
		return "📈 Di atas rata-rata", nil
	}
	return "📉 Di bawah rata-rata", nil
}

// Broadcast composes and sends the digest to every known user. Send
// failures are logged per user and never abort the rest of the run.
func (c *Composer) Broadcast(ctx context.Context) error {
	users, err := c.store.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(broadcastConcurrency)

	for _, user := range users {
		user := user
		g.Go(func() error {
			msg, err := c.Compose(gctx, user.ID)
			if err != nil {
				c.logger.Error("Failed to compose digest",
					"user_id", user.ID, "error", err)
				return nil
			}
			if msg == "" {
				return nil
			}
			if err := c.deliver(gctx, user, msg); err != nil {
				c.logger.Error("Failed to send digest",
					"user_id", user.ID, "error", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// deliver sends one digest. When the transport returns a message
// reference, it becomes the user's new pinned dashboard ref.
func (c *Composer) deliver(ctx context.Context, user model.User, msg string) error {
	rn, ok := c.notifier.(service.RefNotifier)
	if !ok {
		return c.notifier.Send(ctx, user.ExternalID, msg)
	}

	ref, err := rn.SendWithRef(ctx, user.ExternalID, msg)
	if err != nil {
		return err
	}
	if err := c.store.SetPinnedMessageRef(ctx, user.ID, ref); err != nil {
		c.logger.Warn("Failed to record pinned dashboard ref",
			"user_id", user.ID, "error", err)
	}
	return nil
}
