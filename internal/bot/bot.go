package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/centromex/request-relay-bot/internal/metrics"
	"github.com/centromex/request-relay-bot/internal/models"
	"github.com/centromex/request-relay-bot/internal/settings"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Ledger tracks which admin notices have been decided.
type Ledger interface {
	CreateRequest(ctx context.Context, req models.Request) error
	Decide(ctx context.Context, chatID int64, messageID int, status models.RequestStatus, actorID int64, at time.Time) (*models.Request, error)
}

type Bot struct {
	api         API
	ledger      Ledger
	settings    *settings.Settings
	metrics     *metrics.Metrics
	logger      *slog.Logger
	ownerID     int64
	adminChat   int64 // Telegram chat ID that receives new requests
	pollTimeout int
	commands    map[string]handlerFunc
	now         func() time.Time
}

type Config struct {
	Token       string
	OwnerID     int64
	AdminChatID int64
	PollTimeout int
	Debug       bool
}

func New(cfg Config, ledger Ledger, st *settings.Settings, m *metrics.Metrics, logger *slog.Logger) (*Bot, error) {
	if err := tgbotapi.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug)); err != nil {
		return nil, fmt.Errorf("failed to set telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = cfg.Debug

	logger.Info("authorized on account", "username", api.Self.UserName)

	return newBot(api, cfg, ledger, st, m, logger), nil
}

func newBot(api API, cfg Config, ledger Ledger, st *settings.Settings, m *metrics.Metrics, logger *slog.Logger) *Bot {
	pollTimeout := cfg.PollTimeout
	if pollTimeout < 1 {
		pollTimeout = 60
	}
	b := &Bot{
		api:         api,
		ledger:      ledger,
		settings:    st,
		metrics:     m,
		logger:      logger,
		ownerID:     cfg.OwnerID,
		adminChat:   cfg.AdminChatID,
		pollTimeout: pollTimeout,
		now:         time.Now,
	}
	b.commands = b.routes()
	m.SetDeadlineHours(st.DeadlineHours())
	return b
}

// Run long-polls for updates and handles them one at a time until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("bot initialized", "admin_chat", b.adminChat, "owner", b.ownerID)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate routes a single update to its handler.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	ev, ok := eventFromUpdate(update)
	if !ok {
		return
	}
	b.dispatch(ctx, ev)
}

func (b *Bot) isOwner(userID int64) bool {
	return userID == b.ownerID
}

// send delivers c and classifies any failure.
func (b *Bot) send(op string, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, err := b.api.Send(c)
	if err != nil {
		sendErr := classify(op, err)
		b.metrics.TransportError(op, string(sendErr.Kind))
		return msg, sendErr
	}
	return msg, nil
}

func (b *Bot) sendMessage(op string, chatID int64, text string) error {
	_, err := b.send(op, tgbotapi.NewMessage(chatID, text))
	return err
}

// reply answers in the chat an event came from; failures are only logged.
func (b *Bot) reply(ev Event, text string) {
	if err := b.sendMessage("reply", ev.ChatID, text); err != nil {
		b.logger.Error("error sending reply", "error", err, "chat_id", ev.ChatID, "kind", kindOf(err))
	}
}

func (b *Bot) answerCallback(ev Event) {
	if ev.CallbackID == "" {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(ev.CallbackID, "")); err != nil {
		sendErr := classify("answer", err)
		b.metrics.TransportError("answer", string(sendErr.Kind))
		b.logger.Warn("error answering callback", "error", sendErr, "callback_id", ev.CallbackID)
	}
}

func adminKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	done := models.ActionPayload{Action: models.ActionDone, TargetUserID: userID}
	reject := models.ActionPayload{Action: models.ActionReject, TargetUserID: userID}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Mark done", done.Encode()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", reject.Encode()),
		),
	)
}
