package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/markdavidb/loan-manager-bot/internal/ledger"
)

func (h *Handler) startNewLoan(chatID int64) {
	sess := h.sessions.get(chatID)
	sess.State = stateLoanName
	sess.Draft = loanDraft{}
	h.replyWithMarkup(chatID, "Please enter the person's name:", cancelKeyboard())
}

// continueFlow advances whichever multi-step conversation this chat is
// in. Unrecognized input outside a flow is ignored.
func (h *Handler) continueFlow(ctx context.Context, chatID int64, text string) {
	sess := h.sessions.get(chatID)

	switch sess.State {
	case stateLoanName:
		sess.Draft.Name = text
		sess.State = stateLoanAmount
		h.replyWithMarkup(chatID, "Please enter the loan amount:", cancelKeyboard())

	case stateLoanAmount:
		amount, err := strconv.ParseFloat(text, 64)
		if err != nil {
			h.reply(chatID, "Please enter a valid number.")
			return
		}
		if amount <= 0 {
			h.reply(chatID, "Please enter a valid positive number.")
			return
		}
		sess.Draft.Amount = amount
		h.replyWithInline(chatID, "Choose payment frequency:", frequencyKeyboard())

	case stateLoanPayments:
		n, err := strconv.Atoi(text)
		if err != nil {
			h.reply(chatID, "Please enter a valid number.")
			return
		}
		if n <= 0 {
			h.reply(chatID, "Please enter a valid positive number.")
			return
		}
		sess.Draft.Payments = n
		sess.Draft.PaymentAmount = ledger.PaymentAmountFor(sess.Draft.Amount, n)
		sess.State = stateLoanConfirm

		summary := fmt.Sprintf(
			"Loan Summary:\n"+
				"Name: %s\n"+
				"Total Amount: %s\n"+
				"Frequency: %s\n"+
				"Number of Payments: %d\n"+
				"Payment Amount: %s\n\n"+
				"Would you like to confirm this loan?",
			sess.Draft.Name,
			formatMoney(sess.Draft.Amount),
			sess.Draft.Frequency,
			n,
			formatMoney(sess.Draft.PaymentAmount),
		)
		h.replyWithInline(chatID, summary, confirmKeyboard())

	case stateSearchName:
		h.runNameSearch(ctx, chatID, text)
	}
}

func (h *Handler) runNameSearch(ctx context.Context, chatID int64, fragment string) {
	loans, err := h.ledger.SearchLoansByBorrowerName(ctx, fragment)
	if err != nil {
		h.reply(chatID, "❌ Search failed. Please try again.")
		return
	}

	if len(loans) == 0 {
		h.replyWithMarkup(chatID, fmt.Sprintf(
			"No loans found with name '%s'.\n\nPlease try another name or press Cancel:",
			fragment), cancelKeyboard())
		return
	}

	h.replyWithMarkup(chatID,
		fmt.Sprintf("Found %d loan(s) matching '%s':", len(loans), fragment),
		mainKeyboard())
	h.replyWithInline(chatID, "Select a loan to view details:", loansListKeyboard(loans, 0))
	h.sessions.clear(chatID)
}
