package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
	"github.com/markdavidb/loan-manager-bot/internal/ledger"
)

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.Message == nil {
		return
	}
	chatID := q.Message.Chat.ID

	if !h.access.IsAuthorized(ctx, q.From.ID) {
		h.answer(q.ID, "Not authorized")
		h.reply(chatID, unauthorizedNotice)
		return
	}

	data := q.Data
	switch {
	case strings.HasPrefix(data, "freq_"):
		h.pickFrequency(chatID, q, strings.TrimPrefix(data, "freq_"))

	case data == "confirm_loan":
		h.confirmLoan(ctx, chatID, q)

	case data == "cancel_loan":
		h.edit(chatID, q.Message.MessageID, "Loan creation cancelled.")
		h.replyWithMarkup(chatID, "What would you like to do next?", mainKeyboard())
		h.sessions.clear(chatID)
		h.answer(q.ID, "")

	case strings.HasPrefix(data, "view_loan_"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "view_loan_"), 10, 64)
		h.showLoan(ctx, chatID, q, id)

	case strings.HasPrefix(data, "increase_"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "increase_"), 10, 64)
		h.adjustLoan(ctx, chatID, q, id, +1)

	case strings.HasPrefix(data, "decrease_"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "decrease_"), 10, 64)
		h.adjustLoan(ctx, chatID, q, id, -1)

	case data == "back_to_loans":
		h.backToLoans(ctx, chatID, q)

	case data == "page_info":
		h.answer(q.ID, "")

	case strings.HasPrefix(data, "page_"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "page_"))
		h.showLoansPage(ctx, chatID, q, page)

	case data == "search_name":
		sess := h.sessions.get(chatID)
		sess.State = stateSearchName
		h.edit(chatID, q.Message.MessageID, "Please enter the name to search for:")
		h.replyWithMarkup(chatID, "Type the name or press Cancel:", cancelKeyboard())
		h.answer(q.ID, "")

	case data == "cancel_search":
		h.sessions.clear(chatID)
		h.edit(chatID, q.Message.MessageID, "Search cancelled.")
		h.replyWithMarkup(chatID, "What would you like to do?", mainKeyboard())
		h.answer(q.ID, "")
	}
}

func (h *Handler) pickFrequency(chatID int64, q *tgbotapi.CallbackQuery, freq string) {
	f := domain.Frequency(freq)
	if !f.Valid() {
		h.answer(q.ID, "")
		return
	}

	sess := h.sessions.get(chatID)
	sess.Draft.Frequency = f
	sess.State = stateLoanPayments

	_, _ = h.api.Request(tgbotapi.NewDeleteMessage(chatID, q.Message.MessageID))
	h.replyWithMarkup(chatID,
		"You selected "+freq+" payments.\nPlease enter the number of payments:",
		cancelKeyboard())
	h.answer(q.ID, "")
}

func (h *Handler) confirmLoan(ctx context.Context, chatID int64, q *tgbotapi.CallbackQuery) {
	sess := h.sessions.get(chatID)
	draft := sess.Draft
	h.sessions.clear(chatID)

	borrowerID, err := h.ledger.CreateBorrower(ctx, draft.Name, nil)
	if err == nil {
		var loanID int64
		loanID, err = h.ledger.CreateLoan(ctx, ledger.CreateLoanInput{
			BorrowerID:       borrowerID,
			TotalAmount:      draft.Amount,
			Frequency:        draft.Frequency,
			NumberOfPayments: draft.Payments,
			PaymentAmount:    draft.PaymentAmount,
		})
		if err == nil {
			h.edit(chatID, q.Message.MessageID,
				"✅ Loan has been successfully created!\n\n"+
					"Loan ID: "+strconv.FormatInt(loanID, 10)+"\n"+
					"Borrower ID: "+strconv.FormatInt(borrowerID, 10))
			h.replyWithMarkup(chatID, "What would you like to do next?", mainKeyboard())
			h.answer(q.ID, "")
			return
		}
	}

	h.replyWithMarkup(chatID,
		"❌ There was an error creating the loan. Please try again.",
		mainKeyboard())
	h.answer(q.ID, "")
}

func (h *Handler) showLoan(ctx context.Context, chatID int64, q *tgbotapi.CallbackQuery, loanID int64) {
	view, err := h.ledger.GetLoanDetails(ctx, loanID)
	if err != nil {
		h.answer(q.ID, "Loan not found!")
		h.edit(chatID, q.Message.MessageID, "Loan not found. Please try again.")
		return
	}

	h.editWithInline(chatID, q.Message.MessageID, formatLoanDetails(view), loanDetailsKeyboard(loanID))
	h.answer(q.ID, "")
}

func (h *Handler) adjustLoan(ctx context.Context, chatID int64, q *tgbotapi.CallbackQuery, loanID int64, delta int) {
	view, err := h.ledger.AdjustPaymentCount(ctx, loanID, delta)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.answer(q.ID, "Loan not found!")
		} else {
			h.answer(q.ID, "Failed to update payments")
		}
		return
	}
	if view == nil {
		h.answer(q.ID, "Failed to update payments")
		return
	}

	h.editWithInline(chatID, q.Message.MessageID, formatLoanDetails(view), loanDetailsKeyboard(loanID))
	if delta > 0 {
		h.answer(q.ID, "Added a payment")
	} else {
		h.answer(q.ID, "Removed a payment")
	}
}

func (h *Handler) backToLoans(ctx context.Context, chatID int64, q *tgbotapi.CallbackQuery) {
	loans, err := h.ledger.ListActiveLoans(ctx)
	if err != nil {
		h.answer(q.ID, "")
		h.reply(chatID, "❌ Could not load loans. Please try again.")
		return
	}
	if len(loans) == 0 {
		h.edit(chatID, q.Message.MessageID, "No active loans found.")
		h.answer(q.ID, "")
		return
	}

	h.editWithInline(chatID, q.Message.MessageID,
		"Select a loan to manage:", loansListKeyboard(loans, 0))
	h.answer(q.ID, "")
}

func (h *Handler) showLoansPage(ctx context.Context, chatID int64, q *tgbotapi.CallbackQuery, page int) {
	loans, err := h.ledger.ListActiveLoans(ctx)
	if err != nil || len(loans) == 0 {
		h.edit(chatID, q.Message.MessageID, "No active loans found.")
		h.answer(q.ID, "")
		return
	}

	h.editWithInline(chatID, q.Message.MessageID,
		"📊 Total Active Loans: "+strconv.Itoa(len(loans))+"\n\nSelect a loan to manage:",
		loansListKeyboard(loans, page))
	h.answer(q.ID, "")
}

func (h *Handler) answer(callbackID, text string) {
	_, _ = h.api.Request(tgbotapi.NewCallback(callbackID, text))
}

func (h *Handler) edit(chatID int64, messageID int, text string) {
	_, _ = h.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func (h *Handler) editWithInline(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = &kb
	_, _ = h.api.Send(edit)
}
