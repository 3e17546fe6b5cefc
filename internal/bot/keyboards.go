package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
)

const loansPerPage = 5

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnNewLoan),
			tgbotapi.NewKeyboardButton(btnSearchLoans),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnViewAllLoans),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func frequencyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Weekly", "freq_weekly"),
			tgbotapi.NewInlineKeyboardButtonData("Monthly", "freq_monthly"),
		),
	)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", "confirm_loan"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel_loan"),
		),
	)
}

func loanDetailsKeyboard(loanID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖ Remove Payment", fmt.Sprintf("decrease_%d", loanID)),
			tgbotapi.NewInlineKeyboardButtonData("➕ Add Payment", fmt.Sprintf("increase_%d", loanID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back to Loans", "back_to_loans"),
		),
	)
}

func searchFiltersKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Search by Name", "search_name"),
		),
	)
}

// loansPage slices loans down to the given page. Pages are fixed at
// loansPerPage entries; page numbers are clamped into range.
func loansPage(loans []domain.LoanView, page int) (pageLoans []domain.LoanView, clamped, totalPages int) {
	totalPages = (len(loans) + loansPerPage - 1) / loansPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}
	start := page * loansPerPage
	end := start + loansPerPage
	if end > len(loans) {
		end = len(loans)
	}
	return loans[start:end], page, totalPages
}

func loansListKeyboard(loans []domain.LoanView, page int) tgbotapi.InlineKeyboardMarkup {
	pageLoans, page, totalPages := loansPage(loans, page)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range pageLoans {
		label := fmt.Sprintf("%s - %s", l.BorrowerName, formatMoney(l.RemainingAmount))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("view_loan_%d", l.ID)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Previous", fmt.Sprintf("page_%d", page-1)))
	}
	if page < totalPages-1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", fmt.Sprintf("page_%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("Page %d of %d", page+1, totalPages), "page_info"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
