package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/adikusuma/duitbot/internal/budget"
	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/nlp"
	"github.com/adikusuma/duitbot/internal/service"
)

const helpText = "🚀 FINBOT - COMMAND CENTER\n\n" +
	"💸 PENCATATAN\n" +
	"- Langsung ketik: kopi 25rb atau gaji 10jt\n" +
	"- /undo: Batal transaksi terakhir\n" +
	"- /hapus [ID]: Hapus transaksi spesifik\n\n" +
	"🎯 SAVING GOALS\n" +
	"- /target [Nama] [Nominal]: Buat target baru\n" +
	"- /nabung [ID] [Nominal]: Tambah tabungan ke target\n" +
	"- /list_target: Lihat semua target menabung\n\n" +
	"📊 LAPORAN\n" +
	"- /history: Riwayat transaksi bulan ini\n" +
	"- /laporan: Rekap pemasukan dan pengeluaran\n" +
	"- /insight: Analisis cerdas pola pengeluaran 🧠\n\n" +
	"⚙️ PENGATURAN\n" +
	"- /setgaji [Nominal]: Atur pendapatan bulanan\n" +
	"- /setbudget [Kategori] [Nominal]: Atur limit budget"

// handleCommand dispatches a slash command. Unknown commands get the
// help text rather than an error.
func (e *Engine) handleCommand(ctx context.Context, logger *slog.Logger, user *model.User, text string) (Reply, error) {
	fields := strings.Fields(text)
	command := strings.ToLower(fields[0])
	args := fields[1:]

	logger.Debug("command received", "command", command, "args", len(args))

	switch command {
	case "/start":
		return Reply{Text: fmt.Sprintf(
			"👋 Halo %s!\n\n"+
				"Selamat datang di FinBot, asisten keuangan kamu. "+
				"Aku bisa bantu catat pengeluaran, pantau budget, dan kasih analisa biar kamu makin hemat!\n\n"+
				"Cara mulai:\n"+
				"1. Ketik: makan 20rb (catat cepat)\n"+
				"2. Ketik: /setgaji 5jt (atur budget bulanan)\n"+
				"3. Ketik: /help (semua perintah)",
			user.Username)}, nil

	case "/help":
		return Reply{Text: helpText}, nil

	case "/setgaji":
		return e.setIncome(ctx, user.ID, args)

	case "/setbudget":
		return e.setBudget(ctx, user.ID, args)

	case "/undo":
		return e.undo(ctx, user.ID)

	case "/hapus":
		return e.deleteTransaction(ctx, user.ID, args)

	case "/target":
		return e.addSavingTarget(ctx, user.ID, args)

	case "/nabung":
		return e.addSavings(ctx, user.ID, args)

	case "/list_target":
		return e.listSavingTargets(ctx, user.ID)

	case "/history":
		return e.history(ctx, user.ID)

	case "/laporan", "/report":
		return e.report(ctx, user.ID, budget.PeriodMonthly)

	case "/insight":
		return e.insight(ctx, logger, user.ID)

	default:
		return Reply{Text: helpText}, nil
	}
}

// setIncome records the monthly income and replies with the 50/20/10/20
// allocation summary.
func (e *Engine) setIncome(ctx context.Context, userID int64, args []string) (Reply, error) {
	if len(args) == 0 {
		return Reply{Text: "Cara pakai: /setgaji [Nominal]\nContoh: /setgaji 5000000 atau /setgaji 5jt"}, nil
	}
	amount := parseAmountArg(args[0])
	if amount <= 0 {
		return Reply{Text: "Format nominal salah. Gunakan angka saja."}, nil
	}

	now := e.now()
	if err := e.store.UpsertMonthlyIncome(ctx, userID, amount, int(now.Month()), now.Year()); err != nil {
		return Reply{}, fmt.Errorf("failed to store income: %w", err)
	}

	summary, _ := budget.Recommend(amount)
	return Reply{Text: fmt.Sprintf(
		"✅ Pendapatan bulanan berhasil diatur ke Rp%s. Semangat mengelola uangnya! 💪\n\n%s",
		budget.FormatRupiah(amount), summary)}, nil
}

func (e *Engine) setBudget(ctx context.Context, userID int64, args []string) (Reply, error) {
	if len(args) < 2 {
		return Reply{Text: "Cara pakai: /setbudget [Kategori] [Nominal]\nContoh: /setbudget Makanan 1000000"}, nil
	}
	category, ok := model.ParseCategory(args[0])
	if !ok {
		return Reply{Text: fmt.Sprintf("Kategori tidak dikenal. Pilihan: %s", categoryChoices())}, nil
	}
	amount := parseAmountArg(args[1])
	if amount <= 0 {
		return Reply{Text: "Format nominal salah. Gunakan angka saja."}, nil
	}

	if err := e.budgets.SetLimit(ctx, userID, category, amount); err != nil {
		return Reply{}, fmt.Errorf("failed to set budget: %w", err)
	}
	return Reply{Text: fmt.Sprintf("✅ Budget %s berhasil diatur ke Rp %s per bulan.",
		category, budget.FormatRupiah(amount))}, nil
}

func (e *Engine) undo(ctx context.Context, userID int64) (Reply, error) {
	undone, err := e.budgets.Undo(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to undo: %w", err)
	}
	if undone == nil {
		return Reply{Text: "❌ Tidak ada transaksi yang bisa dibatalkan."}, nil
	}
	return Reply{Text: "✅ Transaksi terakhir berhasil dibatalkan!"}, nil
}

func (e *Engine) deleteTransaction(ctx context.Context, userID int64, args []string) (Reply, error) {
	if len(args) == 0 {
		return Reply{Text: "Gunakan /hapus [ID]\nCek ID di /history"}, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return Reply{Text: "ID harus berupa angka."}, nil
	}

	deleted, err := e.budgets.Delete(ctx, userID, id)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to delete transaction: %w", err)
	}
	if !deleted {
		return Reply{Text: fmt.Sprintf("❌ Transaksi #%d tidak ditemukan atau bukan milikmu.", id)}, nil
	}
	return Reply{Text: fmt.Sprintf("✅ Transaksi #%d berhasil dihapus.", id)}, nil
}

func (e *Engine) addSavingTarget(ctx context.Context, userID int64, args []string) (Reply, error) {
	if len(args) < 2 {
		return Reply{Text: "Cara pakai: /target [Nama Barang] [Nominal]\nContoh: /target Laptop 10000000"}, nil
	}
	name := strings.Join(args[:len(args)-1], " ")
	amount := parseAmountArg(args[len(args)-1])
	if amount <= 0 {
		return Reply{Text: "Format nominal salah. Gunakan angka saja."}, nil
	}

	if _, err := e.store.AddSavingGoal(ctx, userID, name, amount); err != nil {
		return Reply{}, fmt.Errorf("failed to add saving goal: %w", err)
	}
	return Reply{Text: fmt.Sprintf("✅ Target %s sebesar Rp%s berhasil dibuat! Ayo menabung! 🚀",
		name, budget.FormatRupiah(amount))}, nil
}

func (e *Engine) addSavings(ctx context.Context, userID int64, args []string) (Reply, error) {
	if len(args) < 2 {
		return Reply{Text: "Cara pakai: /nabung [ID_Target] [Nominal]\nCek ID di /list_target"}, nil
	}
	goalID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return Reply{Text: "Format ID atau nominal salah."}, nil
	}
	amount := parseAmountArg(args[1])
	if amount <= 0 {
		return Reply{Text: "Format ID atau nominal salah."}, nil
	}

	goal, err := e.store.AddToSavingGoal(ctx, userID, goalID, amount)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to add savings: %w", err)
	}
	if goal == nil {
		return Reply{Text: "❌ Target tidak ditemukan."}, nil
	}

	progress := goal.Progress() * 100
	text := fmt.Sprintf("💰 Tabungan Ditambah!\n\nTarget: %s\nProgres: Rp%s / Rp%s (%.1f%%)\n",
		goal.Name, budget.FormatRupiah(goal.Current), budget.FormatRupiah(goal.Target), progress)
	if progress >= 100 {
		text += "\n🎉 SELAMAT! Target kamu sudah tercapai! Silakan beli barang impianmu!"
	} else {
		text += fmt.Sprintf("🔥 Sedikit lagi! Butuh Rp%s lagi.", budget.FormatRupiah(goal.Target-goal.Current))
	}
	return Reply{Text: text}, nil
}

func (e *Engine) listSavingTargets(ctx context.Context, userID int64) (Reply, error) {
	goals, err := e.store.GetSavingGoals(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to list saving goals: %w", err)
	}
	if len(goals) == 0 {
		return Reply{Text: "Kamu belum punya target menabung. Buat dengan /target"}, nil
	}

	var b strings.Builder
	b.WriteString("🎯 DAFTAR TARGET MENABUNG\n\n")
	for _, goal := range goals {
		progress := goal.Progress() * 100
		status := "⏳"
		if progress >= 100 {
			status = "✅"
		}
		fmt.Fprintf(&b, "%s #%d | %s\n   Rp%s / Rp%s (%.1f%%)\n",
			status, goal.ID, goal.Name,
			budget.FormatRupiah(goal.Current), budget.FormatRupiah(goal.Target), progress)
	}
	return Reply{Text: b.String()}, nil
}

// history lists this month's transactions, newest first, capped at 15.
func (e *Engine) history(ctx context.Context, userID int64) (Reply, error) {
	now := e.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	txns, err := e.store.ListTransactions(ctx, userID, service.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
		Limit:     15,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to load history: %w", err)
	}
	if len(txns) == 0 {
		return Reply{Text: "Belum ada riwayat transaksi bulan ini."}, nil
	}

	var b strings.Builder
	b.WriteString("📜 RIWAYAT TRANSAKSI BULAN INI\n\n")
	for _, t := range txns {
		icon := "🔻"
		if t.Type == model.TypeIncome {
			icon = "🔹"
		}
		fmt.Fprintf(&b, "%s #%d | %s | %s | Rp%s\n%s\n",
			icon, t.ID, t.Date.Format("02/01"), t.Category,
			budget.FormatRupiah(t.Amount), t.Description)
	}
	return Reply{Text: b.String()}, nil
}

// insight runs local pattern analysis, asks the oracle for prose, and
// surfaces the raw analysis when the oracle is down.
func (e *Engine) insight(ctx context.Context, logger *slog.Logger, userID int64) (Reply, error) {
	raw, err := e.analyzer.AnalyzePatterns(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to analyze patterns: %w", err)
	}
	if raw == "" {
		return Reply{Text: "Belum ada transaksi bulan ini untuk dianalisis. Yuk mulai catat!"}, nil
	}

	text := raw
	if e.oracle != nil {
		if prose, oracleErr := e.oracle.GenerateInsight(ctx, raw); oracleErr == nil && prose != "" {
			text = prose
		} else {
			logger.Debug("oracle insight unavailable", "error", oracleErr)
		}
	}

	score, err := e.analyzer.HealthScore(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to compute health score: %w", err)
	}

	return Reply{Text: fmt.Sprintf("🤖 FINBOT AI ADVISOR\n\n%s\n\n💪 Skor Kesehatan Finansial: %d/100", text, score)}, nil
}

// parseAmountArg parses a command amount argument, accepting both plain
// numbers and suffixed shorthand like 50rb or 1.5jt.
func parseAmountArg(arg string) float64 {
	if amount := nlp.ExtractAmount(arg); amount > 0 {
		return amount
	}
	if val, err := strconv.ParseFloat(strings.TrimSpace(arg), 64); err == nil && val > 0 {
		return val
	}
	return 0
}
