package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

func (h *Handler) handleBan(ctx context.Context, chatID, userID int64, text string) {
	if !h.access.IsAdmin(ctx, userID) {
		h.reply(chatID, "❌ Only authorized users can use this command.")
		return
	}

	parts := strings.SplitN(text, " ", 3)
	if len(parts) < 2 {
		h.reply(chatID, "Usage: /ban user_id [reason]")
		return
	}

	target, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		h.reply(chatID, "Invalid user ID format.")
		return
	}

	reason := "Banned by admin"
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		reason = strings.TrimSpace(parts[2])
	}

	// Authorized identities cannot be banned.
	if h.access.IsAdmin(ctx, target) {
		h.reply(chatID, "❌ Cannot ban authorized users.")
		return
	}

	ok, err := h.bans.Ban(ctx, target, reason)
	if err != nil {
		h.reply(chatID, "❌ Error banning user. Please try again.")
		return
	}
	if ok {
		h.reply(chatID, fmt.Sprintf("User %d has been banned.", target))
	} else {
		h.reply(chatID, fmt.Sprintf("User %d is already banned.", target))
	}
}

func (h *Handler) handleUnban(ctx context.Context, chatID, userID int64, text string) {
	if !h.access.IsAdmin(ctx, userID) {
		h.reply(chatID, "❌ Only authorized users can use this command.")
		return
	}

	parts := strings.Fields(text)
	if len(parts) < 2 {
		h.reply(chatID, "Usage: /unban user_id")
		return
	}

	target, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		h.reply(chatID, "Usage: /unban user_id")
		return
	}

	ok, err := h.bans.Unban(ctx, target)
	if err != nil {
		h.reply(chatID, "❌ Error unbanning user. Please try again.")
		return
	}
	if ok {
		h.reply(chatID, fmt.Sprintf("User %d has been unbanned.", target))
	} else {
		h.reply(chatID, fmt.Sprintf("User %d is not banned.", target))
	}
}

func (h *Handler) handleListBanned(ctx context.Context, chatID, userID int64) {
	if !h.access.IsAdmin(ctx, userID) {
		h.reply(chatID, "❌ Only authorized users can use this command.")
		return
	}

	banned, err := h.bans.ListBanned(ctx)
	if err != nil {
		h.reply(chatID, "❌ Could not load banned users.")
		return
	}
	if len(banned) == 0 {
		h.reply(chatID, "No banned users.")
		return
	}

	var b strings.Builder
	b.WriteString("Banned Users:\n\n")
	for _, u := range banned {
		b.WriteString(fmt.Sprintf("ID: %d\n", u.TelegramID))
		b.WriteString(fmt.Sprintf("Banned at: %s\n", u.BannedAt.Format("2006-01-02 15:04")))
		b.WriteString(fmt.Sprintf("Reason: %s\n\n", u.Reason))
	}
	h.reply(chatID, b.String())
}
