// Package engine routes one user turn through intent classification,
// the conversation state machine, rule tagging and the ledger. It is
// transport-agnostic: the caller renders the returned Reply however the
// channel allows.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adikusuma/duitbot/internal/analysis"
	"github.com/adikusuma/duitbot/internal/budget"
	"github.com/adikusuma/duitbot/internal/common"
	"github.com/adikusuma/duitbot/internal/conversation"
	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/nlp"
	"github.com/adikusuma/duitbot/internal/ocr"
	"github.com/adikusuma/duitbot/internal/rules"
	"github.com/adikusuma/duitbot/internal/service"
)

// Button is a suggested action the transport can render alongside a
// reply. Action comes back verbatim through ProcessButton.
type Button struct {
	Label  string
	Action string
}

// Reply is the outcome of one processed turn.
type Reply struct {
	Text    string
	Buttons []Button
}

// Button actions.
const (
	actionConfirm      = "tx_confirm"
	actionEdit         = "tx_edit"
	actionIgnore       = "tx_ignore"
	actionEditAmount   = "edit_amount"
	actionEditCategory = "edit_category"
	actionEditDate     = "edit_date"
	actionCancelEdit   = "cancel"
	actionSetCategory  = "set_cat_" // prefix, suffixed with the category label
	actionReport       = "report_"  // prefix, suffixed with the period
)

const fallbackReply = "Aku nggak paham maksudnya. Coba ketik 'makan 50rb' atau cek /help. 🤔"

// Deps are the collaborators an Engine is assembled from. Oracle and
// Receipts may be nil; the engine then degrades to static replies for
// the turns that would need them.
type Deps struct {
	Store    service.Storage
	Sessions *conversation.Manager
	Intents  *nlp.IntentClassifier
	Rules    *rules.Engine
	Budgets  *budget.Manager
	Analyzer *analysis.Analyzer
	Oracle   service.Oracle
	Receipts service.ReceiptReader
	Logger   *slog.Logger
}

// Engine processes user turns. All state lives in the injected
// collaborators; the engine itself is stateless and safe for concurrent
// use across users.
type Engine struct {
	store    service.Storage
	sessions *conversation.Manager
	intents  *nlp.IntentClassifier
	rules    *rules.Engine
	budgets  *budget.Manager
	analyzer *analysis.Analyzer
	oracle   service.Oracle
	receipts service.ReceiptReader
	logger   *slog.Logger
	now      func() time.Time
}

// New assembles an engine from its collaborators.
func New(deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    deps.Store,
		sessions: deps.Sessions,
		intents:  deps.Intents,
		rules:    deps.Rules,
		budgets:  deps.Budgets,
		analyzer: deps.Analyzer,
		oracle:   deps.Oracle,
		receipts: deps.Receipts,
		logger:   logger,
		now:      time.Now,
	}
}

// ProcessText handles one text message from a user.
func (e *Engine) ProcessText(ctx context.Context, externalID, username, text string) (Reply, error) {
	logger := e.turnLogger(externalID)
	user, err := e.store.GetOrCreateUser(ctx, externalID, username)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		return e.handleCommand(ctx, logger, user, text)
	}

	var reply Reply
	err = e.sessions.Do(user.ID, func(s *conversation.Session) error {
		result := e.intents.Classify(ctx, text, s.State())
		logger.Debug("intent classified",
			"intent", result.Intent,
			"confidence", result.Confidence,
			"state", s.State().String())

		var turnErr error
		switch result.Intent {
		case nlp.IntentEditInProgress:
			reply = e.applyEdit(s, text)
		case nlp.IntentCancel:
			reply, turnErr = e.cancelEdit(s)
		case nlp.IntentAddTransaction:
			reply, turnErr = e.propose(s, text, result)
		case nlp.IntentCheckBudget:
			reply, turnErr = e.budgetOverview(ctx, user.ID)
		case nlp.IntentQuerySummary:
			reply, turnErr = e.report(ctx, user.ID, budget.PeriodMonthly)
		case nlp.IntentHelp:
			reply = Reply{Text: helpText}
		case nlp.IntentGreeting:
			reply = Reply{Text: fmt.Sprintf("Halo %s! Ada yang bisa dibantu? 😊", username)}
		default:
			reply = e.chitchat(ctx, logger, text)
		}
		return turnErr
	})
	if err != nil {
		return Reply{}, err
	}
	return reply, nil
}

// ProcessButton handles a pressed button action.
func (e *Engine) ProcessButton(ctx context.Context, externalID, username, action string) (Reply, error) {
	logger := e.turnLogger(externalID)
	user, err := e.store.GetOrCreateUser(ctx, externalID, username)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	if period, ok := strings.CutPrefix(action, actionReport); ok {
		return e.report(ctx, user.ID, budget.Period(period))
	}

	var reply Reply
	err = e.sessions.Do(user.ID, func(s *conversation.Session) error {
		var turnErr error
		switch {
		case action == actionConfirm:
			reply, turnErr = e.confirm(ctx, logger, user.ID, s)
		case action == actionEdit:
			reply = Reply{
				Text: "Pilih bagian yang ingin diubah:",
				Buttons: []Button{
					{Label: "Nominal", Action: actionEditAmount},
					{Label: "Kategori", Action: actionEditCategory},
					{Label: "Tanggal", Action: actionEditDate},
					{Label: "Abaikan", Action: actionIgnore},
				},
			}
		case action == actionEditAmount:
			reply = e.beginEdit(s, conversation.FieldAmount, "Ketik nominal baru (contoh: 50rb atau 50000):")
		case action == actionEditCategory:
			reply = e.beginCategoryEdit(s)
		case action == actionEditDate:
			reply = e.beginEdit(s, conversation.FieldDate, "Ketik tanggal baru (contoh: 15-03-2026):")
		case action == actionCancelEdit:
			reply, turnErr = e.cancelEdit(s)
		case action == actionIgnore:
			if err := s.Ignore(); err != nil {
				reply = Reply{Text: "Tidak ada transaksi aktif."}
				return nil
			}
			reply = Reply{Text: "Transaksi diabaikan. Ada lagi yang mau dicatat?"}
		case strings.HasPrefix(action, actionSetCategory):
			reply = e.setCategory(s, strings.TrimPrefix(action, actionSetCategory))
		default:
			reply = Reply{Text: "Aksi tidak dikenal."}
		}
		return turnErr
	})
	if err != nil {
		return Reply{}, err
	}
	return reply, nil
}

// ProcessReceipt handles a receipt image reference from a user.
func (e *Engine) ProcessReceipt(ctx context.Context, externalID, username, imageRef string) (Reply, error) {
	logger := e.turnLogger(externalID)
	user, err := e.store.GetOrCreateUser(ctx, externalID, username)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	if e.receipts == nil {
		return Reply{Text: "Maaf, fitur baca struk (OCR) sedang dinonaktifkan. Kamu bisa catat manual ya!"}, nil
	}

	rawText, err := e.receipts.ReadText(ctx, imageRef)
	if err != nil {
		logger.Error("receipt OCR failed", "error", err)
		return Reply{Text: "Terjadi kesalahan saat memproses gambar. Coba pastikan foto struk terlihat jelas."}, nil
	}

	receipt := ocr.ParseReceiptText(rawText)
	if receipt.Amount <= 0 {
		return Reply{Text: "Maaf, aku nggak nemu total harganya. Bisa coba foto lagi atau ketik manual?"}, nil
	}

	merchant := receipt.Merchant
	if merchant == "" {
		merchant = "Struk Belanja"
	}
	category := nlp.Classify(merchant)
	if category == model.CategoryLainLain {
		category = model.CategoryBelanja
	}

	pending := model.PendingTransaction{
		Amount:   receipt.Amount,
		Category: category,
		Merchant: merchant,
		Date:     receipt.Date,
		Type:     model.TypeExpense,
	}

	var reply Reply
	err = e.sessions.Do(user.ID, func(s *conversation.Session) error {
		if err := s.Propose(pending); err != nil {
			return err
		}
		date := receipt.Date
		if date.IsZero() {
			date = e.now()
		}
		reply = Reply{
			Text: fmt.Sprintf(
				"📝 Data Struk Berhasil Dibaca\n\n"+
					"💰 Nominal: Rp%s\n"+
					"📂 Kategori: %s\n"+
					"🏪 Toko: %s\n"+
					"📅 Tanggal: %s\n\n"+
					"Apakah data di atas sudah benar?",
				budget.FormatRupiah(receipt.Amount), category, merchant, date.Format("02-01-2006")),
			Buttons: proposalButtons(),
		}
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	return reply, nil
}

// propose installs a transaction candidate built from the message, or
// from the oracle's parse when the local pipeline found nothing.
func (e *Engine) propose(s *conversation.Session, text string, result nlp.IntentResult) (Reply, error) {
	var pending model.PendingTransaction
	if result.Candidate != nil {
		cat, _ := model.ParseCategory(result.Candidate.Category)
		pending = model.PendingTransaction{
			Amount:     result.Candidate.Amount,
			Category:   cat,
			Merchant:   result.Candidate.Description,
			Type:       model.TransactionType(result.Candidate.Type),
			Confidence: result.Confidence,
		}
	} else {
		category := nlp.Classify(text)
		pending = model.PendingTransaction{
			Amount:     nlp.ExtractAmount(text),
			Category:   category,
			Merchant:   nlp.ExtractMerchant(text),
			Type:       nlp.TransactionType(category),
			Confidence: result.Confidence,
		}
	}

	if err := s.Propose(pending); err != nil {
		return Reply{}, fmt.Errorf("failed to propose candidate: %w", err)
	}

	p, _ := s.Pending()
	return Reply{
		Text:    fmt.Sprintf("%s\n\nSimpan transaksi ini?", summarize(p)),
		Buttons: proposalButtons(),
	}, nil
}

// confirm commits the pending candidate: rules tag it, the ledger
// stores it, the budget alert rides along in the reply.
func (e *Engine) confirm(ctx context.Context, logger *slog.Logger, userID int64, s *conversation.Session) (Reply, error) {
	p, err := s.Confirm()
	if err != nil {
		if errors.Is(err, common.ErrInvalidTransition) {
			return Reply{Text: "Tidak ada transaksi yang menunggu konfirmasi."}, nil
		}
		return Reply{}, err
	}

	date := p.Date
	if date.IsZero() {
		date = e.now()
	}

	description := p.Merchant
	if description == "" {
		description = nlp.DefaultMerchant
	}
	if p.Type == model.TypeExpense {
		tags := e.rules.Evaluate(rules.Context{
			Category: p.Category,
			Amount:   p.Amount,
			Hour:     date.Hour(),
		})
		if len(tags) > 0 {
			description += fmt.Sprintf(" (%s)", strings.Join(tags, ", "))
		}
	}

	alert, err := e.budgets.Commit(ctx, model.Transaction{
		UserID:      userID,
		Amount:      p.Amount,
		Category:    p.Category,
		Description: description,
		Type:        p.Type,
		Date:        date,
	})
	if err != nil {
		return Reply{}, common.NewUserError("Gagal menyimpan transaksi. Coba lagi ya.",
			fmt.Errorf("failed to commit transaction: %w", err))
	}

	logger.Info("transaction saved",
		"amount", p.Amount,
		"category", p.Category,
		"type", p.Type)

	text := fmt.Sprintf("✅ Tersimpan: Rp%s · %s", budget.FormatRupiah(p.Amount), p.Category)
	if alert != "" {
		text += "\n\n" + alert
	} else {
		text += "\n\nMau catat transaksi lain atau cek laporan?"
	}
	return Reply{Text: text}, nil
}

// applyEdit routes edit-state input through the field validator.
// Rejected input keeps the session in the same edit state.
func (e *Engine) applyEdit(s *conversation.Session, text string) Reply {
	switch s.State() {
	case model.StateEditingAmount:
		amount := nlp.ExtractAmount(text)
		if amount <= 0 {
			return Reply{Text: "Format nominal salah. Masukkan angka saja."}
		}
		if err := s.ApplyAmount(amount); err != nil {
			return Reply{Text: "Format nominal salah. Masukkan angka saja."}
		}
		p, _ := s.Pending()
		return Reply{
			Text:    fmt.Sprintf("Nominal diubah ke: Rp%s\n\n%s", budget.FormatRupiah(amount), summarize(p)),
			Buttons: confirmButtons(),
		}

	case model.StateEditingCategory:
		category, ok := resolveCategory(text)
		if !ok {
			return Reply{Text: fmt.Sprintf("Kategori tidak dikenal. Pilihan: %s", categoryChoices())}
		}
		if err := s.ApplyCategory(category); err != nil {
			return Reply{Text: fmt.Sprintf("Kategori tidak dikenal. Pilihan: %s", categoryChoices())}
		}
		p, _ := s.Pending()
		return Reply{
			Text:    fmt.Sprintf("Kategori diubah ke: %s\n\n%s", category, summarize(p)),
			Buttons: confirmButtons(),
		}

	case model.StateEditingDate:
		date, ok := parseDate(text)
		if !ok {
			return Reply{Text: "Format tanggal salah. Pakai DD-MM-YYYY, contoh: 15-03-2026."}
		}
		if err := s.ApplyDate(date); err != nil {
			return Reply{Text: "Format tanggal salah. Pakai DD-MM-YYYY, contoh: 15-03-2026."}
		}
		p, _ := s.Pending()
		return Reply{
			Text:    fmt.Sprintf("Tanggal diubah ke: %s\n\n%s", date.Format("02-01-2006"), summarize(p)),
			Buttons: confirmButtons(),
		}
	}
	return Reply{Text: fallbackReply}
}

func (e *Engine) beginEdit(s *conversation.Session, field conversation.Field, prompt string) Reply {
	if err := s.BeginEdit(field); err != nil {
		return Reply{Text: "Tidak ada transaksi yang menunggu konfirmasi."}
	}
	return Reply{Text: prompt}
}

func (e *Engine) beginCategoryEdit(s *conversation.Session) Reply {
	if err := s.BeginEdit(conversation.FieldCategory); err != nil {
		return Reply{Text: "Tidak ada transaksi yang menunggu konfirmasi."}
	}
	buttons := make([]Button, 0, len(model.Categories())+1)
	for _, cat := range model.Categories() {
		buttons = append(buttons, Button{Label: string(cat), Action: actionSetCategory + string(cat)})
	}
	buttons = append(buttons, Button{Label: "Batal", Action: actionCancelEdit})
	return Reply{Text: "Pilih kategori baru:", Buttons: buttons}
}

// setCategory applies a category picked from buttons. The picker works
// from either the category edit state or directly from a proposal.
func (e *Engine) setCategory(s *conversation.Session, label string) Reply {
	category, ok := model.ParseCategory(label)
	if !ok {
		return Reply{Text: fmt.Sprintf("Kategori tidak dikenal. Pilihan: %s", categoryChoices())}
	}
	if err := s.ApplyCategory(category); err != nil {
		return Reply{Text: "Tidak ada transaksi yang menunggu konfirmasi."}
	}
	p, _ := s.Pending()
	return Reply{
		Text:    fmt.Sprintf("Kategori diubah ke: %s\n\n%s", category, summarize(p)),
		Buttons: confirmButtons(),
	}
}

func (e *Engine) cancelEdit(s *conversation.Session) (Reply, error) {
	if err := s.CancelEdit(); err != nil {
		if errors.Is(err, common.ErrInvalidTransition) {
			return Reply{Text: "Tidak ada edit yang sedang berjalan."}, nil
		}
		return Reply{}, err
	}
	p, _ := s.Pending()
	return Reply{
		Text:    fmt.Sprintf("Edit dibatalkan.\n\n%s", summarize(p)),
		Buttons: proposalButtons(),
	}, nil
}

// budgetOverview answers a budget question with the detailed status plus
// any burn-rate pacing warnings.
func (e *Engine) budgetOverview(ctx context.Context, userID int64) (Reply, error) {
	status, err := e.budgets.DetailedStatus(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to load budget status: %w", err)
	}

	var warnings []string
	for _, cat := range model.Categories() {
		pace, err := e.budgets.BurnRate(ctx, userID, cat)
		if err != nil {
			return Reply{}, fmt.Errorf("failed to compute burn rate: %w", err)
		}
		if pace != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", cat, pace))
		}
	}
	if len(warnings) > 0 {
		status += "\n\n" + strings.Join(warnings, "\n")
	}
	return Reply{Text: status}, nil
}

func (e *Engine) report(ctx context.Context, userID int64, period budget.Period) (Reply, error) {
	text, err := e.budgets.Report(ctx, userID, period)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to build report: %w", err)
	}
	return Reply{
		Text: text,
		Buttons: []Button{
			{Label: "7 Hari", Action: actionReport + string(budget.Period7Days)},
			{Label: "30 Hari", Action: actionReport + string(budget.Period30Days)},
		},
	}, nil
}

// chitchat routes unrecognized messages to the oracle, falling back to a
// static apology when the oracle is missing or down.
func (e *Engine) chitchat(ctx context.Context, logger *slog.Logger, text string) Reply {
	if e.oracle == nil {
		return Reply{Text: fallbackReply}
	}
	answer, err := e.oracle.Chat(ctx, text)
	if err != nil || answer == "" {
		logger.Debug("oracle chat unavailable", "error", err)
		return Reply{Text: fallbackReply}
	}
	return Reply{Text: answer}
}

func (e *Engine) turnLogger(externalID string) *slog.Logger {
	return e.logger.With("trace_id", uuid.NewString(), "user", externalID)
}

func summarize(p model.PendingTransaction) string {
	text := fmt.Sprintf("Rp%s · %s", budget.FormatRupiah(p.Amount), p.Category)
	if p.Merchant != "" && p.Merchant != nlp.DefaultMerchant {
		text += fmt.Sprintf("\n🏪 %s", p.Merchant)
	}
	return text
}

func proposalButtons() []Button {
	return []Button{
		{Label: "✓ Simpan", Action: actionConfirm},
		{Label: "✎ Edit", Action: actionEdit},
		{Label: "✕ Abaikan", Action: actionIgnore},
	}
}

func confirmButtons() []Button {
	return []Button{
		{Label: "✓ Simpan", Action: actionConfirm},
		{Label: "✎ Edit Lagi", Action: actionEdit},
	}
}

// resolveCategory turns free-text edit input into a category. The keyword
// classifier runs first, so "listrik bulanan" lands on Tagihan; a literal
// label match covers the rest, including an explicit Lain-lain.
func resolveCategory(text string) (model.Category, bool) {
	if cat := nlp.Classify(text); cat != model.CategoryLainLain {
		return cat, true
	}
	return model.ParseCategory(strings.TrimSpace(text))
}

// categoryChoices lists the categories worth offering in prompts. The
// Lain-lain sentinel stays out: it means "nothing matched", not a choice.
func categoryChoices() string {
	labels := make([]string, 0, len(model.Categories())-1)
	for _, cat := range model.Categories() {
		if cat == model.CategoryLainLain {
			continue
		}
		labels = append(labels, string(cat))
	}
	return strings.Join(labels, ", ")
}

// parseDate accepts DD-MM-YYYY and YYYY-MM-DD, with slashes tolerated.
func parseDate(text string) (time.Time, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), "/", "-")
	for _, layout := range []string{"02-01-2006", "2006-01-02"} {
		if date, err := time.Parse(layout, cleaned); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}
