package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/markdavidb/loan-manager-bot/internal/config"
	"github.com/markdavidb/loan-manager-bot/internal/ledger"
	"github.com/markdavidb/loan-manager-bot/internal/repo"
	"github.com/markdavidb/loan-manager-bot/internal/security"
)

const (
	btnNewLoan      = "New Loan"
	btnSearchLoans  = "Search Loans"
	btnViewAllLoans = "View All Loans"
	btnCancel       = "❌ Cancel"
)

const unauthorizedNotice = "⚠️ You are not authorized to use this bot.\n" +
	"Please use /auth [password] to get access."

type Handler struct {
	api *tgbotapi.BotAPI
	cfg config.Config

	ledger *ledger.Service
	access *repo.Access
	bans   *repo.Bans
	guard  *security.Guard

	sessions *sessions
}

func NewHandler(api *tgbotapi.BotAPI, cfg config.Config, svc *ledger.Service,
	access *repo.Access, bans *repo.Bans, guard *security.Guard) *Handler {
	return &Handler{
		api:      api,
		cfg:      cfg,
		ledger:   svc,
		access:   access,
		bans:     bans,
		guard:    guard,
		sessions: newSessions(),
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		h.handleCallback(ctx, upd.CallbackQuery)
		return
	}

	if upd.Message == nil {
		return
	}

	msg := upd.Message
	if !msg.Chat.IsPrivate() {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch {
	case strings.HasPrefix(text, "/start"):
		h.handleStart(ctx, chatID, userID)
		return
	case strings.HasPrefix(text, "/auth"):
		h.handleAuth(ctx, chatID, userID, text)
		return
	}

	// Everything past this point is a gated action.
	if !h.access.IsAuthorized(ctx, userID) {
		h.reply(chatID, unauthorizedNotice)
		return
	}

	switch {
	case strings.HasPrefix(text, "/ban"):
		h.handleBan(ctx, chatID, userID, text)
		return
	case strings.HasPrefix(text, "/unban"):
		h.handleUnban(ctx, chatID, userID, text)
		return
	case strings.HasPrefix(text, "/listbanned"):
		h.handleListBanned(ctx, chatID, userID)
		return
	case strings.HasPrefix(text, "/search"):
		h.replyWithInline(chatID, "Select how you would like to search loans:", searchFiltersKeyboard())
		return
	}

	switch text {
	case btnCancel:
		h.sessions.clear(chatID)
		h.replyWithMarkup(chatID, "Operation cancelled.", mainKeyboard())
		return
	case btnNewLoan:
		h.startNewLoan(chatID)
		return
	case btnSearchLoans:
		h.replyWithInline(chatID, "Select how you would like to search loans:", searchFiltersKeyboard())
		return
	case btnViewAllLoans:
		h.viewAllLoans(ctx, chatID)
		return
	}

	h.continueFlow(ctx, chatID, text)
}

func (h *Handler) handleStart(ctx context.Context, chatID, userID int64) {
	if h.access.IsAuthorized(ctx, userID) {
		h.replyWithMarkup(chatID,
			"Welcome to Loan Manager Bot!\nUse the buttons below to manage loans:",
			mainKeyboard())
		return
	}
	h.reply(chatID, "Welcome! You are not authorized to use this bot.\n"+
		"Please use /auth [password] to get access.")
}

// handleAuth is the password gate. The whole attempt runs through the
// guard pipeline so failed tries count toward the rate limit, and a
// correct password resets any accumulated violations.
func (h *Handler) handleAuth(ctx context.Context, chatID, userID int64, text string) {
	verdict := h.guard.Gate(ctx, userID, func(ctx context.Context) bool {
		if h.access.IsAuthorized(ctx, userID) {
			h.reply(chatID, "You are already authorized!")
			return true
		}

		parts := strings.Fields(text)
		if len(parts) < 2 {
			h.reply(chatID, "Please provide a password: /auth [password]")
			return false
		}

		if !security.CheckPassword(parts[1], h.cfg.PasswordHash) {
			h.reply(chatID, "❌ Invalid password. Please try again.")
			return false
		}

		if !h.access.Authorize(ctx, userID) {
			h.reply(chatID, "There was an error authorizing you. Please try again.")
			return false
		}

		h.replyWithMarkup(chatID,
			"✅ You have been authorized!\nUse the buttons below to manage loans:",
			mainKeyboard())
		return true
	})

	h.notifyDenied(chatID, verdict)
}

func (h *Handler) notifyDenied(chatID int64, v security.Verdict) {
	switch {
	case v.Decision == security.DeniedBanned:
		h.reply(chatID, "❌ You have been banned from using this bot due to multiple violations.")
	case v.Decision == security.DeniedRateLimited && v.JustBanned:
		h.reply(chatID, "❌ You have been banned from using this bot due to multiple rate limit violations.")
	case v.Decision == security.DeniedRateLimited:
		h.reply(chatID, fmt.Sprintf(
			"⚠️ Too many attempts. Please try again in %d minutes.\n"+
				"Warning: Multiple violations will result in a ban.\n"+
				"Violations: %d/2",
			int(v.RetryAfter.Minutes()), v.Violations))
	}
}

func (h *Handler) viewAllLoans(ctx context.Context, chatID int64) {
	loans, err := h.ledger.ListActiveLoans(ctx)
	if err != nil {
		h.reply(chatID, "❌ Could not load loans. Please try again.")
		return
	}
	if len(loans) == 0 {
		h.replyWithMarkup(chatID, "No active loans found.", mainKeyboard())
		return
	}

	h.replyWithInline(chatID,
		fmt.Sprintf("📊 Total Active Loans: %d\n\nSelect a loan to manage:", len(loans)),
		loansListKeyboard(loans, 0))
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = h.api.Send(msg)
}

func (h *Handler) replyWithMarkup(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	_, _ = h.api.Send(msg)
}

func (h *Handler) replyWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	_, _ = h.api.Send(msg)
}
