package telegram

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/alejandrodnm/journalbot/internal/adapters/notify"
	"github.com/alejandrodnm/journalbot/internal/application/intake"
	"github.com/alejandrodnm/journalbot/internal/domain"
	"github.com/alejandrodnm/journalbot/internal/ports"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const (
	// Telegram permite ~30 mensajes/s por bot; por defecto usamos 25.
	defaultSendRatePerSec = 25
	defaultPollTimeout    = 60
	defaultRecentLimit    = 10

	mainMenuText = "Main Menu"
	cancelLabel  = "✖ Cancel"
)

// api es el subconjunto de *tgbotapi.BotAPI que usa el adapter.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// EventSink recibe los eventos del flujo (intake.Dispatcher).
type EventSink interface {
	Submit(ctx context.Context, ev intake.Event) error
}

// Config controla el long polling y el envío.
type Config struct {
	PollTimeoutSeconds int
	SendRatePerSec     float64
	RecentLimit        int
	Debug              bool
}

// Bot implementa ports.Messenger y ports.MainMenu sobre la Bot API de Telegram.
type Bot struct {
	api     api
	cfg     Config
	limiter *rate.Limiter
	history ports.TradeHistory
}

// New autentica el bot con el token dado.
func New(token string, cfg Config, history ports.TradeHistory) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram.New: authorize: %w", err)
	}
	botAPI.Debug = cfg.Debug
	slog.Info("telegram: authorized", "username", botAPI.Self.UserName)
	return newBot(botAPI, cfg, history), nil
}

func newBot(a api, cfg Config, history ports.TradeHistory) *Bot {
	if cfg.PollTimeoutSeconds <= 0 {
		cfg.PollTimeoutSeconds = defaultPollTimeout
	}
	if cfg.SendRatePerSec <= 0 {
		cfg.SendRatePerSec = defaultSendRatePerSec
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = defaultRecentLimit
	}
	burst := max(1, int(cfg.SendRatePerSec))
	return &Bot{
		api:     a,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.SendRatePerSec), burst),
		history: history,
	}
}

// Run hace long polling hasta que ctx se cancele o el canal de updates se cierre.
func (b *Bot) Run(ctx context.Context, sink EventSink) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	slog.Info("telegram: polling updates", "timeout", u.Timeout)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("telegram: stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.route(ctx, sink, upd)
		}
	}
}

// route traduce un update y lo despacha al flujo o lo atiende directamente.
func (b *Bot) route(ctx context.Context, sink EventSink, upd tgbotapi.Update) {
	if cb := upd.CallbackQuery; cb != nil {
		// Quitar el spinner del botón en el cliente
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			slog.Warn("telegram: answer callback failed", "err", err)
		}
	}

	act, ev := classify(upd)
	var err error
	switch act {
	case actionEvent:
		err = sink.Submit(ctx, ev)
	case actionMenu:
		err = b.ShowMainMenu(ctx, ev.ChatID)
	case actionRecent:
		err = b.SendRecent(ctx, ev.ChatID, ev.Data)
	case actionLookup:
		err = b.SendTrade(ctx, ev.ChatID, ev.Data)
	default:
		slog.Debug("telegram: ignored update", "update_id", upd.UpdateID)
		return
	}
	if err != nil {
		slog.Error("telegram: update failed",
			"update_id", upd.UpdateID,
			"chat_id", ev.ChatID,
			"err", err,
		)
	}
}

// SendOptions envía text con un botón inline por fila y un botón final
// para abandonar el alta.
func (b *Bot) SendOptions(ctx context.Context, chatID int64, text string, options []domain.Option, replyTo int) error {
	opts := make([]domain.Option, 0, len(options)+1)
	opts = append(opts, options...)
	opts = append(opts, domain.Option{Label: cancelLabel, Data: callbackCancel})
	return b.sendKeyboard(ctx, chatID, text, opts, replyTo)
}

// SendText envía un mensaje de texto plano.
func (b *Bot) SendText(ctx context.Context, chatID int64, text string, replyTo int) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	return b.send(ctx, msg)
}

// ShowMainMenu muestra el menú principal.
func (b *Bot) ShowMainMenu(ctx context.Context, chatID int64) error {
	return b.sendKeyboard(ctx, chatID, mainMenuText, []domain.Option{
		{Label: "➕ New Trade", Data: callbackNewTrade},
		{Label: "📒 Recent Trades", Data: callbackRecentTrades},
	}, 0)
}

// SendRecent envía los últimos trades del chat como tabla monoespaciada.
// Con ticker != "" solo los de ese ticker.
func (b *Bot) SendRecent(ctx context.Context, chatID int64, ticker string) error {
	var (
		trades []domain.Trade
		err    error
	)
	if ticker == "" {
		trades, err = b.history.RecentTrades(ctx, chatID, b.cfg.RecentLimit)
	} else {
		trades, err = b.history.TradesByTicker(ctx, chatID, ticker, b.cfg.RecentLimit)
	}
	if err != nil {
		return fmt.Errorf("telegram.SendRecent: %w", err)
	}
	if len(trades) == 0 {
		if ticker != "" {
			return b.SendText(ctx, chatID, notify.NoTradesForText(ticker), 0)
		}
		return b.SendText(ctx, chatID, notify.NoTradesText, 0)
	}
	return b.sendTable(ctx, chatID, trades, notify.SummaryLine(domain.Summarize(trades)))
}

// SendTrade envía un trade buscado por id (o prefijo) seguido de su captura.
func (b *Bot) SendTrade(ctx context.Context, chatID int64, id string) error {
	if id == "" {
		return b.SendText(ctx, chatID, notify.TradeUsageText, 0)
	}

	t, err := b.history.GetTrade(ctx, chatID, id)
	if err != nil {
		if text, ok := notify.LookupFailureText(id, err); ok {
			return b.SendText(ctx, chatID, text, 0)
		}
		return fmt.Errorf("telegram.SendTrade: %w", err)
	}

	if err := b.sendTable(ctx, chatID, []domain.Trade{t}, "ID: "+t.ID); err != nil {
		return err
	}
	if t.PhotoRef == "" {
		return nil
	}
	return b.send(ctx, tgbotapi.NewPhoto(chatID, tgbotapi.FileID(t.PhotoRef)))
}

func (b *Bot) sendKeyboard(ctx context.Context, chatID int64, text string, options []domain.Option, replyTo int) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options))
	for _, o := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Data)))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	if len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	return b.send(ctx, msg)
}

// sendTable envía trades como tabla <pre> con una línea de pie.
func (b *Bot) sendTable(ctx context.Context, chatID int64, trades []domain.Trade, footer string) error {
	var buf bytes.Buffer
	notify.RenderTrades(&buf, trades)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("<pre>%s</pre>\n%s",
		html.EscapeString(buf.String()),
		html.EscapeString(footer),
	))
	msg.ParseMode = tgbotapi.ModeHTML
	return b.send(ctx, msg)
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram.send: rate limiter: %w", err)
	}
	if _, err := b.api.Send(c); err != nil {
		return fmt.Errorf("telegram.send: %w", err)
	}
	return nil
}
