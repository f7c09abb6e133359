package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adikusuma/duitbot/internal/common"
	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/service"
)

// Oracle implements service.Oracle on top of a provider client, adding
// rate limiting and retries. It is created through New from a Config.
type Oracle struct {
	client    Client
	limiter   *rateLimiter
	logger    *slog.Logger
	retryOpts service.RetryOptions
}

// New creates an oracle for the configured provider.
func New(cfg Config, logger *slog.Logger) (*Oracle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
	}

	return &Oracle{
		client:    client,
		limiter:   newRateLimiter(cfg.RateLimit),
		logger:    logger,
		retryOpts: retryOpts,
	}, nil
}

// ParseTransaction asks the provider to extract a transaction candidate
// from free text. Text that is not a transaction comes back with
// IsTransaction false rather than an error.
func (o *Oracle) ParseTransaction(ctx context.Context, text string) (*model.OracleCandidate, error) {
	prompt := buildParsePrompt(text)

	var resp CandidateResponse
	err := common.WithRetry(ctx, func() error {
		if err := o.limiter.wait(ctx); err != nil {
			return err
		}
		var callErr error
		resp, callErr = o.client.ParseTransaction(ctx, prompt)
		return callErr
	}, o.retryOpts)
	if err != nil {
		o.logger.Warn("Oracle parse failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrOracleUnavailable, err)
	}

	candidate := &model.OracleCandidate{
		Amount:        resp.Amount,
		Category:      resp.Category,
		Description:   resp.Description,
		Type:          resp.Type,
		IsTransaction: resp.IsTransaction,
	}

	// The provider may invent a category label. Fold anything
	// unrecognized back to the catch-all so downstream code only ever
	// sees known categories.
	if candidate.IsTransaction {
		if cat, ok := model.ParseCategory(candidate.Category); ok {
			candidate.Category = string(cat)
		} else {
			candidate.Category = string(model.CategoryLainLain)
		}
		if candidate.Type != string(model.TypeIncome) {
			candidate.Type = string(model.TypeExpense)
		}
	}

	return candidate, nil
}

// GenerateInsight turns raw spending analysis into a short prose insight.
func (o *Oracle) GenerateInsight(ctx context.Context, analysis string) (string, error) {
	prompt := fmt.Sprintf(`Kamu adalah FinBot, asisten keuangan pribadi yang santai dan jujur ala Gen-Z Indonesia.
Berikut data analisis pengeluaran user:

%s

Buat maksimal 3 kalimat insight yang actionable. Jangan menghakimi, tapi jujur. Pakai bahasa santai.`, analysis)

	return o.generate(ctx, prompt)
}

// Chat produces a prose reply to a non-transaction message.
func (o *Oracle) Chat(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Kamu adalah FinBot, asisten keuangan pribadi berbahasa Indonesia.
User bilang: %q

Balas singkat dan ramah, maksimal 2 kalimat. Kalau relevan, ingatkan user bahwa kamu bisa mencatat transaksi dari chat biasa seperti "makan siang 30rb".`, text)

	return o.generate(ctx, prompt)
}

func (o *Oracle) generate(ctx context.Context, prompt string) (string, error) {
	var result string
	err := common.WithRetry(ctx, func() error {
		if err := o.limiter.wait(ctx); err != nil {
			return err
		}
		var callErr error
		result, callErr = o.client.Generate(ctx, prompt)
		return callErr
	}, o.retryOpts)
	if err != nil {
		o.logger.Warn("Oracle generation failed", "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrOracleUnavailable, err)
	}
	return strings.TrimSpace(result), nil
}

// Close releases the oracle's background resources.
func (o *Oracle) Close() {
	o.limiter.Close()
}

// buildParsePrompt builds the extraction prompt for a user message.
func buildParsePrompt(text string) string {
	categories := model.Categories()
	labels := make([]string, len(categories))
	for i, c := range categories {
		labels[i] = string(c)
	}

	return fmt.Sprintf(`Ekstrak informasi transaksi dari pesan berikut.

Pesan: %q

Jawab HANYA dengan objek JSON persis dalam format ini:
{"amount": <angka dalam rupiah>, "category": <salah satu dari: %s>, "description": <deskripsi singkat>, "type": <"expense" atau "income">, "is_transaction": <true atau false>}

Aturan:
- "50rb" atau "50k" berarti 50000, "1.5jt" berarti 1500000.
- Kalau pesan bukan transaksi keuangan, set is_transaction ke false dan amount ke 0.
- Gaji atau pemasukan lain bertipe "income", sisanya "expense".

Contoh: "beli sate 50rb" menjadi {"amount": 50000, "category": "Makanan", "description": "Sate", "type": "expense", "is_transaction": true}`,
		text, strings.Join(labels, ", "))
}
