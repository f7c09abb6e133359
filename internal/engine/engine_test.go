package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adikusuma/duitbot/internal/analysis"
	"github.com/adikusuma/duitbot/internal/budget"
	"github.com/adikusuma/duitbot/internal/conversation"
	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/nlp"
	"github.com/adikusuma/duitbot/internal/rules"
	"github.com/adikusuma/duitbot/internal/service"
	"github.com/adikusuma/duitbot/internal/testutil"
)

type stubReceiptReader struct {
	text string
	err  error
}

func (r *stubReceiptReader) ReadText(context.Context, string) (string, error) {
	return r.text, r.err
}

type stubChatOracle struct {
	chatReply string
	chatErr   error
}

func (o *stubChatOracle) ParseTransaction(context.Context, string) (*model.OracleCandidate, error) {
	return &model.OracleCandidate{IsTransaction: false}, nil
}

func (o *stubChatOracle) GenerateInsight(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func (o *stubChatOracle) Chat(context.Context, string) (string, error) {
	return o.chatReply, o.chatErr
}

func setupEngine(t *testing.T) (*Engine, service.Storage) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	eng := New(Deps{
		Store:    db,
		Sessions: conversation.NewManager(),
		Intents:  nlp.NewIntentClassifier(nil, nil),
		Rules:    rules.NewEngine(nil),
		Budgets:  budget.NewManager(db, nil),
		Analyzer: analysis.NewAnalyzer(db, nil),
	})
	return eng, db
}

func buttonActions(r Reply) []string {
	actions := make([]string, 0, len(r.Buttons))
	for _, b := range r.Buttons {
		actions = append(actions, b.Action)
	}
	return actions
}

func TestProcessText_TransactionFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("amount message proposes a transaction", func(t *testing.T) {
		eng, _ := setupEngine(t)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "makan siang 50rb")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Rp50.000")
		assert.Contains(t, reply.Text, "Makanan")
		assert.Contains(t, reply.Text, "Simpan transaksi ini?")
		assert.Equal(t, []string{"tx_confirm", "tx_edit", "tx_ignore"}, buttonActions(reply))
	})

	t.Run("confirm commits to the ledger and updates usage exactly", func(t *testing.T) {
		eng, db := setupEngine(t)
		user, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)

		now := time.Now()
		month, year := int(now.Month()), now.Year()
		require.NoError(t, db.UpsertBudgetLimit(ctx, user.ID, model.CategoryMakanan, 1_000_000, month, year))
		require.NoError(t, db.CommitUsage(ctx, user.ID, model.CategoryMakanan, 200_000, month, year))

		_, err = eng.ProcessText(ctx, "ext-1", "budi", "makan 50rb")
		require.NoError(t, err)

		reply, err := eng.ProcessButton(ctx, "ext-1", "budi", "tx_confirm")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "✅ Tersimpan: Rp50.000 · Makanan")
		// 25% used, well under the warning threshold.
		assert.NotContains(t, reply.Text, "WARNING")
		assert.NotContains(t, reply.Text, "LIMIT")

		entry, err := db.GetBudgetEntry(ctx, user.ID, model.CategoryMakanan, month, year)
		require.NoError(t, err)
		assert.InDelta(t, 250_000, entry.Usage, 0.001)

		last, err := db.GetLastTransaction(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.InDelta(t, 50_000, last.Amount, 0.001)
		assert.Equal(t, model.CategoryMakanan, last.Category)
	})

	t.Run("boros rule tags an expensive meal", func(t *testing.T) {
		eng, db := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "makan steak 120rb")
		require.NoError(t, err)
		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "tx_confirm")
		require.NoError(t, err)

		user, err := db.GetUser(ctx, "ext-1")
		require.NoError(t, err)
		last, err := db.GetLastTransaction(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Contains(t, last.Description, "boros")
	})

	t.Run("income message proposes an income transaction", func(t *testing.T) {
		eng, db := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "gaji 10jt")
		require.NoError(t, err)
		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "tx_confirm")
		require.NoError(t, err)

		user, err := db.GetUser(ctx, "ext-1")
		require.NoError(t, err)
		last, err := db.GetLastTransaction(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, model.TypeIncome, last.Type)
		assert.InDelta(t, 10_000_000, last.Amount, 0.001)
	})

	t.Run("ignore discards the proposal", func(t *testing.T) {
		eng, db := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "kopi 25rb")
		require.NoError(t, err)
		reply, err := eng.ProcessButton(ctx, "ext-1", "budi", "tx_ignore")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "diabaikan")

		user, err := db.GetUser(ctx, "ext-1")
		require.NoError(t, err)
		last, err := db.GetLastTransaction(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, last)
	})

	t.Run("confirm without a proposal is rejected gently", func(t *testing.T) {
		eng, _ := setupEngine(t)

		reply, err := eng.ProcessButton(ctx, "ext-1", "budi", "tx_confirm")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Tidak ada transaksi")
	})

	t.Run("new proposal replaces the pending one", func(t *testing.T) {
		eng, db := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "kopi 25rb")
		require.NoError(t, err)
		_, err = eng.ProcessText(ctx, "ext-1", "budi", "bensin 100rb")
		require.NoError(t, err)
		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "tx_confirm")
		require.NoError(t, err)

		user, err := db.GetUser(ctx, "ext-1")
		require.NoError(t, err)
		last, err := db.GetLastTransaction(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.InDelta(t, 100_000, last.Amount, 0.001)
		assert.Equal(t, model.CategoryTransportasi, last.Category)
	})
}

func TestProcessText_EditFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("edit amount accepts suffixed input", func(t *testing.T) {
		eng, db := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "makan 50rb")
		require.NoError(t, err)
		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "edit_amount")
		require.NoError(t, err)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "75rb")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Nominal diubah ke: Rp75.000")

		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "tx_confirm")
		require.NoError(t, err)

		user, err := db.GetUser(ctx, "ext-1")
		require.NoError(t, err)
		last, err := db.GetLastTransaction(ctx, user.ID)
		require.NoError(t, err)
		assert.InDelta(t, 75_000, last.Amount, 0.001)
	})

	t.Run("invalid amount keeps the edit state", func(t *testing.T) {
		eng, _ := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "makan 50rb")
		require.NoError(t, err)
		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "edit_amount")
		require.NoError(t, err)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "banyak banget")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Format nominal salah")

		// Still waiting for the amount: a valid retry goes through.
		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "60rb")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Nominal diubah ke: Rp60.000")
	})

	t.Run("cancel keyword abandons the edit and keeps the proposal", func(t *testing.T) {
		eng, _ := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "makan 50rb")
		require.NoError(t, err)
		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "edit_amount")
		require.NoError(t, err)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "batal")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Edit dibatalkan")
		assert.Contains(t, reply.Text, "Rp50.000")
	})

	t.Run("category edit accepts free text the classifier resolves", func(t *testing.T) {
		eng, _ := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "makan 50rb")
		require.NoError(t, err)
		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "edit_category")
		require.NoError(t, err)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "listrik bulanan")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Kategori diubah ke: Tagihan")
	})

	t.Run("unknown category text lists only the real categories", func(t *testing.T) {
		eng, _ := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "makan 50rb")
		require.NoError(t, err)
		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "edit_category")
		require.NoError(t, err)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "zzz")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Kategori tidak dikenal")
		assert.Contains(t, reply.Text, "Tagihan")
		assert.NotContains(t, reply.Text, "Lain-lain")

		// A literal label still works even when no keyword matches.
		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "investasi")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Kategori diubah ke: Investasi")
	})

	t.Run("category picked from buttons", func(t *testing.T) {
		eng, db := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "beli pulsa 50rb")
		require.NoError(t, err)

		reply, err := eng.ProcessButton(ctx, "ext-1", "budi", "edit_category")
		require.NoError(t, err)
		assert.Contains(t, buttonActions(reply), "set_cat_Tagihan")

		reply, err = eng.ProcessButton(ctx, "ext-1", "budi", "set_cat_Tagihan")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Kategori diubah ke: Tagihan")

		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "tx_confirm")
		require.NoError(t, err)

		user, err := db.GetUser(ctx, "ext-1")
		require.NoError(t, err)
		last, err := db.GetLastTransaction(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, model.CategoryTagihan, last.Category)
	})

	t.Run("edit date applies a parsed date", func(t *testing.T) {
		eng, db := setupEngine(t)

		_, err := eng.ProcessText(ctx, "ext-1", "budi", "makan 50rb")
		require.NoError(t, err)
		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "edit_date")
		require.NoError(t, err)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "bukan tanggal")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Format tanggal salah")

		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "15/03/2026")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Tanggal diubah ke: 15-03-2026")

		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "tx_confirm")
		require.NoError(t, err)

		user, err := db.GetUser(ctx, "ext-1")
		require.NoError(t, err)
		last, err := db.GetLastTransaction(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 2026, last.Date.Year())
		assert.Equal(t, time.March, last.Date.Month())
		assert.Equal(t, 15, last.Date.Day())
	})
}

func TestProcessText_Intents(t *testing.T) {
	ctx := context.Background()

	t.Run("greeting", func(t *testing.T) {
		eng, _ := setupEngine(t)
		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "halo")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Halo budi")
	})

	t.Run("budget question answers with status", func(t *testing.T) {
		eng, db := setupEngine(t)
		user, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)
		now := time.Now()
		require.NoError(t, db.UpsertBudgetLimit(ctx, user.ID, model.CategoryMakanan, 1_000_000, int(now.Month()), now.Year()))

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "sisa budget berapa?")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Makanan")
	})

	t.Run("report request", func(t *testing.T) {
		eng, _ := setupEngine(t)
		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "laporan dong")
		require.NoError(t, err)
		assert.NotEmpty(t, reply.Text)
		assert.Contains(t, buttonActions(reply), "report_7days")
	})

	t.Run("unknown text without oracle falls back to apology", func(t *testing.T) {
		eng, _ := setupEngine(t)
		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "hmm gimana ya")
		require.NoError(t, err)
		assert.Equal(t, fallbackReply, reply.Text)
	})

	t.Run("unknown text with oracle gets a chat reply", func(t *testing.T) {
		eng, _ := setupEngine(t)
		eng.oracle = &stubChatOracle{chatReply: "Santai aja, aku bantu catat!"}

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "hmm gimana ya")
		require.NoError(t, err)
		assert.Equal(t, "Santai aja, aku bantu catat!", reply.Text)
	})

	t.Run("oracle chat failure degrades to apology", func(t *testing.T) {
		eng, _ := setupEngine(t)
		eng.oracle = &stubChatOracle{chatErr: errors.New("down")}

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "hmm gimana ya")
		require.NoError(t, err)
		assert.Equal(t, fallbackReply, reply.Text)
	})
}

func TestProcessReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("readable receipt proposes a transaction", func(t *testing.T) {
		eng, db := setupEngine(t)
		eng.receipts = &stubReceiptReader{text: "INDOMARET\n15/03/2026\nSusu 12.000\nTOTAL 20.500"}

		reply, err := eng.ProcessReceipt(ctx, "ext-1", "budi", "photo-1")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Data Struk Berhasil Dibaca")
		assert.Contains(t, reply.Text, "Rp20.500")
		assert.Contains(t, reply.Text, "INDOMARET")
		assert.Equal(t, []string{"tx_confirm", "tx_edit", "tx_ignore"}, buttonActions(reply))

		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "tx_confirm")
		require.NoError(t, err)

		user, err := db.GetUser(ctx, "ext-1")
		require.NoError(t, err)
		last, err := db.GetLastTransaction(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.InDelta(t, 20_500, last.Amount, 0.001)
		// An unclassifiable merchant becomes shopping, not the catch-all.
		assert.Equal(t, model.CategoryBelanja, last.Category)
	})

	t.Run("unreadable total asks for manual entry", func(t *testing.T) {
		eng, _ := setupEngine(t)
		eng.receipts = &stubReceiptReader{text: "struk buram"}

		reply, err := eng.ProcessReceipt(ctx, "ext-1", "budi", "photo-1")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "nggak nemu total")
	})

	t.Run("reader failure apologizes", func(t *testing.T) {
		eng, _ := setupEngine(t)
		eng.receipts = &stubReceiptReader{err: errors.New("boom")}

		reply, err := eng.ProcessReceipt(ctx, "ext-1", "budi", "photo-1")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "kesalahan saat memproses gambar")
	})

	t.Run("no reader configured", func(t *testing.T) {
		eng, _ := setupEngine(t)

		reply, err := eng.ProcessReceipt(ctx, "ext-1", "budi", "photo-1")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "dinonaktifkan")
	})
}

func TestCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("setgaji stores income and recommends allocation", func(t *testing.T) {
		eng, db := setupEngine(t)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "/setgaji 10jt")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Rp10.000.000")
		assert.Contains(t, reply.Text, "Pokok: Rp5.000.000")
		assert.Contains(t, reply.Text, "Tabungan: Rp2.000.000")
		assert.Contains(t, reply.Text, "Investasi: Rp1.000.000")
		assert.Contains(t, reply.Text, "Fleksibel: Rp2.000.000")

		user, err := db.GetUser(ctx, "ext-1")
		require.NoError(t, err)
		income, err := db.GetLatestIncome(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, income)
		assert.InDelta(t, 10_000_000, income.Amount, 0.001)
	})

	t.Run("setbudget validates the category", func(t *testing.T) {
		eng, _ := setupEngine(t)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "/setbudget Jajan 500rb")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Kategori tidak dikenal")

		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "/setbudget Makanan 1jt")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "✅ Budget Makanan")
	})

	t.Run("undo reverses the last transaction", func(t *testing.T) {
		eng, db := setupEngine(t)
		user, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)

		now := time.Now()
		require.NoError(t, db.UpsertBudgetLimit(ctx, user.ID, model.CategoryMakanan, 1_000_000, int(now.Month()), now.Year()))

		_, err = eng.ProcessText(ctx, "ext-1", "budi", "makan 50rb")
		require.NoError(t, err)
		_, err = eng.ProcessButton(ctx, "ext-1", "budi", "tx_confirm")
		require.NoError(t, err)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "/undo")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "berhasil dibatalkan")

		entry, err := db.GetBudgetEntry(ctx, user.ID, model.CategoryMakanan, int(now.Month()), now.Year())
		require.NoError(t, err)
		assert.InDelta(t, 0, entry.Usage, 0.001)

		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "/undo")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Tidak ada transaksi")
	})

	t.Run("hapus deletes by id", func(t *testing.T) {
		eng, db := setupEngine(t)
		user, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)
		id, err := db.AppendTransaction(ctx, model.Transaction{
			UserID: user.ID, Amount: 10_000, Category: model.CategoryMakanan,
			Description: "kopi", Type: model.TypeExpense, Date: time.Now(),
		})
		require.NoError(t, err)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "/hapus abc")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "ID harus berupa angka")

		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "/hapus 999")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "tidak ditemukan")

		reply, err = eng.ProcessText(ctx, "ext-1", "budi", fmt.Sprintf("/hapus %d", id))
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "berhasil dihapus")
	})

	t.Run("saving goal lifecycle", func(t *testing.T) {
		eng, _ := setupEngine(t)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "/target Laptop Baru 10jt")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Target Laptop Baru")

		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "/list_target")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Laptop Baru")
		assert.Contains(t, reply.Text, "⏳")

		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "/nabung 1 4jt")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Tabungan Ditambah")
		assert.Contains(t, reply.Text, "40.0%")

		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "/nabung 1 6jt")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "SELAMAT")

		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "/nabung 99 1jt")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "tidak ditemukan")
	})

	t.Run("history lists this month", func(t *testing.T) {
		eng, db := setupEngine(t)
		user, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "/history")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Belum ada riwayat")

		_, err = db.AppendTransaction(ctx, model.Transaction{
			UserID: user.ID, Amount: 25_000, Category: model.CategoryMakanan,
			Description: "kopi", Type: model.TypeExpense, Date: time.Now(),
		})
		require.NoError(t, err)

		reply, err = eng.ProcessText(ctx, "ext-1", "budi", "/history")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "RIWAYAT")
		assert.Contains(t, reply.Text, "Rp25.000")
	})

	t.Run("insight without data invites the user", func(t *testing.T) {
		eng, _ := setupEngine(t)
		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "/insight")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "Belum ada transaksi")
	})

	t.Run("insight falls back to raw analysis without oracle", func(t *testing.T) {
		eng, db := setupEngine(t)
		user, err := db.GetOrCreateUser(ctx, "ext-1", "budi")
		require.NoError(t, err)
		_, err = db.AppendTransaction(ctx, model.Transaction{
			UserID: user.ID, Amount: 50_000, Category: model.CategoryMakanan,
			Description: "makan", Type: model.TypeExpense, Date: time.Now(),
		})
		require.NoError(t, err)

		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "/insight")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "FINBOT AI ADVISOR")
		assert.Contains(t, reply.Text, "Hari Boros")
		assert.Contains(t, reply.Text, "Skor Kesehatan Finansial: 50/100")
	})

	t.Run("unknown command shows help", func(t *testing.T) {
		eng, _ := setupEngine(t)
		reply, err := eng.ProcessText(ctx, "ext-1", "budi", "/ngawur")
		require.NoError(t, err)
		assert.Contains(t, reply.Text, "COMMAND CENTER")
	})
}
