package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/centromex/request-relay-bot/internal/db"
	"github.com/centromex/request-relay-bot/internal/format"
	"github.com/centromex/request-relay-bot/internal/models"
	"github.com/centromex/request-relay-bot/internal/parser"
	"github.com/centromex/request-relay-bot/internal/settings"
)

const (
	msgOwnerOnly         = "❌ Owner only."
	msgOwnerOnlyAction   = "❌ Only the owner can perform this action."
	msgInvalidPayload    = "⚠️ Invalid action payload."
	msgSetDeadlineUsage  = "Usage: /setdeadline <hours>"
	msgHoursNotInteger   = "Hours must be an integer."
	msgHoursOutOfRange   = "Choose a value between 1 and 168 hours."
	msgDeadlineUpdatedTo = "✅ Deadline updated. New ETA: "
)

func (b *Bot) handleStart(ctx context.Context, ev Event) {
	b.reply(ev, format.Welcome(b.settings.ETA(b.now())))
}

func (b *Bot) handleHelp(ctx context.Context, ev Event) {
	b.reply(ev, format.Help(b.settings.ETA(b.now())))
}

func (b *Bot) handleSetDeadline(ctx context.Context, ev Event) {
	if !b.isOwner(ev.Sender.ID) {
		b.logger.Info("rejected setdeadline from non-owner", "user_id", ev.Sender.ID)
		b.reply(ev, msgOwnerOnly)
		return
	}

	eta, err := b.settings.SetDeadlineHours(ev.Args, b.now())
	switch {
	case errors.Is(err, settings.ErrMissingHours):
		b.reply(ev, msgSetDeadlineUsage)
		return
	case errors.Is(err, settings.ErrHoursNotInteger):
		b.reply(ev, msgHoursNotInteger)
		return
	case errors.Is(err, settings.ErrHoursOutOfRange):
		b.reply(ev, msgHoursOutOfRange)
		return
	}

	hours := b.settings.DeadlineHours()
	b.metrics.SetDeadlineHours(hours)
	b.logger.Info("deadline updated", "hours", hours, "user_id", ev.Sender.ID)
	b.reply(ev, msgDeadlineUpdatedTo+eta)
}

// handleRequest acknowledges a request to its sender and forwards it to the
// admin chat. Text without the request marker is ignored.
func (b *Bot) handleRequest(ctx context.Context, ev Event) {
	if !parser.IsRequest(ev.Text) {
		return
	}
	b.metrics.RequestReceived()

	now := b.now().UTC()
	hours := b.settings.DeadlineHours()
	req := models.Request{
		ID:         uuid.NewString(),
		Requester:  ev.Sender,
		Fields:     parser.Extract(parser.StripMarker(ev.Text)),
		RawText:    ev.Text,
		ReceivedAt: now,
		Deadline:   now.Add(time.Duration(hours) * time.Hour),
		Status:     models.StatusPending,
	}
	logger := b.logger.With("request_id", req.ID, "user_id", req.Requester.ID)

	if err := b.sendMessage("ack", ev.ChatID, format.UserAck(req.Fields, format.ETA(hours, now))); err != nil {
		logger.Error("error acknowledging request", "error", err, "kind", kindOf(err))
	}

	notice := tgbotapi.NewMessage(b.adminChat, format.AdminNotice(req, hours))
	notice.ReplyMarkup = adminKeyboard(req.Requester.ID)
	notice.DisableWebPagePreview = true

	sent, err := b.send("forward", notice)
	if err != nil {
		b.metrics.AdminForward("failed")
		switch kindOf(err) {
		case FailureForbidden:
			logger.Error("admin chat unauthorized or bot blocked", "error", err, "admin_chat", b.adminChat)
		case FailureTimeout:
			logger.Error("telegram API timeout when sending to admin chat", "error", err)
		default:
			logger.Error("telegram error while sending to admin chat", "error", err, "kind", kindOf(err))
		}
		return
	}
	b.metrics.AdminForward("sent")

	req.AdminChatID = b.adminChat
	if sent.Chat != nil {
		req.AdminChatID = sent.Chat.ID
	}
	req.AdminMessageID = sent.MessageID
	if err := b.ledger.CreateRequest(ctx, req); err != nil {
		logger.Error("error recording request", "error", err)
		return
	}
	logger.Info("request forwarded", "admin_message_id", req.AdminMessageID, "complete", req.Fields.Complete())
}

// handleDecision applies an admin button press: owner check, payload check,
// one-time ledger transition, then the requester notice and the admin
// message edit.
func (b *Bot) handleDecision(ctx context.Context, ev Event) {
	b.answerCallback(ev)

	if !b.isOwner(ev.Sender.ID) {
		b.logger.Info("rejected decision from non-owner", "user_id", ev.Sender.ID)
		b.metrics.Decision("unknown", "unauthorized")
		b.reply(ev, msgOwnerOnlyAction)
		return
	}

	payload, err := models.ParseActionPayload(ev.Payload)
	if err != nil {
		b.logger.Warn("invalid action payload", "payload", ev.Payload, "error", err)
		b.metrics.Decision("unknown", "invalid")
		b.reply(ev, msgInvalidPayload)
		return
	}

	now := b.now().UTC()
	logger := b.logger.With("action", payload.Action, "target_user_id", payload.TargetUserID, "admin_message_id", ev.MessageID)

	req, err := b.ledger.Decide(ctx, ev.ChatID, ev.MessageID, payload.Action.Status(), ev.Sender.ID, now)
	switch {
	case errors.Is(err, db.ErrAlreadyDecided):
		status := models.RequestStatus("decided")
		if req != nil {
			status = req.Status
		}
		logger.Info("request already decided", "status", status)
		b.metrics.Decision(string(payload.Action), "duplicate")
		b.reply(ev, format.AlreadyDecided(status))
		return
	case errors.Is(err, db.ErrNotFound):
		// notices sent before a restart are not in the ledger
		logger.Warn("decision for request unknown to ledger")
	case err != nil:
		logger.Error("error recording decision", "error", err)
	case req.Requester.ID != payload.TargetUserID:
		logger.Warn("payload user does not match ledger requester", "requester_id", req.Requester.ID)
	default:
		logger = logger.With("request_id", req.ID)
	}

	b.metrics.Decision(string(payload.Action), "applied")
	b.notifyRequester(payload, logger)
	b.updateAdminMessage(ev, payload.Action, now, logger)
	logger.Info("decision applied", "actor_id", ev.Sender.ID)
}

func (b *Bot) notifyRequester(payload models.ActionPayload, logger *slog.Logger) {
	err := b.sendMessage("notify", payload.TargetUserID, format.UserDecisionNotice(payload.Action))
	if err == nil {
		return
	}
	if kindOf(err) == FailureForbidden {
		logger.Info("could not notify user, bot blocked or never started", "error", err)
		return
	}
	logger.Error("could not notify user", "error", err, "kind", kindOf(err))
}

// updateAdminMessage edits the notice in place and falls back to a reply when
// the message cannot be edited.
func (b *Bot) updateAdminMessage(ev Event, action models.Action, at time.Time, logger *slog.Logger) {
	actor := ev.Sender
	edit := tgbotapi.NewEditMessageText(ev.ChatID, ev.MessageID, format.DecisionEdit(ev.Text, action, actor, at))
	_, err := b.send("edit", edit)
	if err == nil {
		return
	}
	logger.Warn("could not edit admin message, replying instead", "error", err, "kind", kindOf(err))

	if err := b.sendMessage("reply", ev.ChatID, format.DecisionLine(action, actor, at)); err != nil {
		logger.Error("could not post decision", "error", err, "kind", kindOf(err))
	}
}
