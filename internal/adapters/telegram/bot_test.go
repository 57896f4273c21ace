package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/alejandrodnm/journalbot/internal/application/intake"
	"github.com/alejandrodnm/journalbot/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	stopped  bool
	sendErr  error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) messages(t *testing.T) []tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tgbotapi.MessageConfig, 0, len(f.sent))
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeAPI) photos() []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

type fakeHistory struct {
	trades []domain.Trade
	err    error
	chatID int64
	ticker string
	id     string
}

func (h *fakeHistory) RecentTrades(_ context.Context, chatID int64, _ int) ([]domain.Trade, error) {
	h.chatID = chatID
	return h.trades, h.err
}

func (h *fakeHistory) TradesByTicker(_ context.Context, chatID int64, ticker string, _ int) ([]domain.Trade, error) {
	h.chatID = chatID
	h.ticker = ticker
	var out []domain.Trade
	for _, t := range h.trades {
		if t.Ticker == ticker {
			out = append(out, t)
		}
	}
	return out, h.err
}

func (h *fakeHistory) GetTrade(_ context.Context, chatID int64, id string) (domain.Trade, error) {
	h.chatID = chatID
	h.id = id
	if h.err != nil {
		return domain.Trade{}, h.err
	}
	for _, t := range h.trades {
		if strings.HasPrefix(t.ID, id) {
			return t, nil
		}
	}
	return domain.Trade{}, fmt.Errorf("fake: %w", domain.ErrTradeNotFound)
}

type recordingSink struct {
	events []intake.Event
}

func (s *recordingSink) Submit(_ context.Context, ev intake.Event) error {
	s.events = append(s.events, ev)
	return nil
}

// --- tests ---

func TestBot_SendOptionsBuildsKeyboard(t *testing.T) {
	fa := newFakeAPI()
	b := newBot(fa, Config{}, &fakeHistory{})

	err := b.SendOptions(context.Background(), 42, "Trading Setup?", []domain.Option{
		{Label: "DHL", Data: "DHL"},
		{Label: "Close NYSE", Data: "Close_NYSE"},
	}, 9)
	require.NoError(t, err)

	msgs := fa.messages(t)
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "Trading Setup?", msg.Text)
	assert.Equal(t, 9, msg.ReplyToMessageID)

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 3, "un botón por fila más cancelar")
	assert.Equal(t, "Close NYSE", kb.InlineKeyboard[1][0].Text)
	require.NotNil(t, kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "Close_NYSE", *kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, callbackCancel, *kb.InlineKeyboard[2][0].CallbackData)
}

func TestBot_SendTextPlain(t *testing.T) {
	fa := newFakeAPI()
	b := newBot(fa, Config{}, &fakeHistory{})

	require.NoError(t, b.SendText(context.Background(), 3, "What was PnL?", 0))
	msgs := fa.messages(t)
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].ReplyMarkup)
	assert.Equal(t, 0, msgs[0].ReplyToMessageID)
}

func TestBot_SendErrorWrapped(t *testing.T) {
	fa := newFakeAPI()
	fa.sendErr = errors.New("Forbidden: bot was blocked by the user")
	b := newBot(fa, Config{}, &fakeHistory{})

	err := b.SendText(context.Background(), 3, "hi", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.send")
}

func TestBot_SendRespectsCancelledContext(t *testing.T) {
	fa := newFakeAPI()
	b := newBot(fa, Config{SendRatePerSec: 1}, &fakeHistory{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, b.SendText(ctx, 1, "first", 0)) // consume el burst
	cancel()

	err := b.SendText(ctx, 1, "second", 0)
	require.Error(t, err)
	assert.Len(t, fa.messages(t), 1)
}

func TestBot_ShowMainMenu(t *testing.T) {
	fa := newFakeAPI()
	b := newBot(fa, Config{}, &fakeHistory{})

	require.NoError(t, b.ShowMainMenu(context.Background(), 8))
	msgs := fa.messages(t)
	require.Len(t, msgs, 1)
	kb := msgs[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.Len(t, kb.InlineKeyboard, 2, "el menú no ofrece cancelar")
	assert.Equal(t, callbackNewTrade, *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, callbackRecentTrades, *kb.InlineKeyboard[1][0].CallbackData)
}

func TestBot_SendRecent(t *testing.T) {
	fa := newFakeAPI()
	h := &fakeHistory{trades: []domain.Trade{{
		ID: "abcdef0123", Ticker: "ES", Outcome: domain.OutcomeWin, Side: domain.SideShort,
		Strategy: domain.StrategyFF, RiskReward: "1:2", PnL: "75", Date: "2024-05-02", Time: "10:00",
	}}}
	b := newBot(fa, Config{}, h)

	require.NoError(t, b.SendRecent(context.Background(), 12, ""))
	assert.Equal(t, int64(12), h.chatID)

	msgs := fa.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, tgbotapi.ModeHTML, msgs[0].ParseMode)
	assert.Contains(t, msgs[0].Text, "<pre>")
	assert.Contains(t, msgs[0].Text, "ES")
	assert.Contains(t, msgs[0].Text, "1 trades | W:1 L:0")
}

func TestBot_SendRecentEmpty(t *testing.T) {
	fa := newFakeAPI()
	b := newBot(fa, Config{}, &fakeHistory{})

	require.NoError(t, b.SendRecent(context.Background(), 12, ""))
	assert.Equal(t, "No trades recorded yet.", fa.messages(t)[0].Text)
}

func esTrade() domain.Trade {
	return domain.Trade{
		ID: "abcdef01-2345-4678-9abc-def012345678", Ticker: "ES", Outcome: domain.OutcomeWin,
		Side: domain.SideShort, Strategy: domain.StrategyFF, RiskReward: "1:2", PnL: "75",
		Date: "2024-05-02", Time: "10:00", PhotoRef: "AgACAgQ",
	}
}

func TestBot_SendRecentByTicker(t *testing.T) {
	fa := newFakeAPI()
	h := &fakeHistory{trades: []domain.Trade{esTrade()}}
	b := newBot(fa, Config{}, h)

	require.NoError(t, b.SendRecent(context.Background(), 12, "ES"))
	require.NoError(t, b.SendRecent(context.Background(), 12, "NQ"))

	msgs := fa.messages(t)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Text, "ES")
	assert.Equal(t, "No trades recorded for NQ yet.", msgs[1].Text)
	assert.Equal(t, "NQ", h.ticker)
}

func TestBot_SendTrade(t *testing.T) {
	fa := newFakeAPI()
	h := &fakeHistory{trades: []domain.Trade{esTrade()}}
	b := newBot(fa, Config{}, h)

	require.NoError(t, b.SendTrade(context.Background(), 12, "abcdef01"))
	assert.Equal(t, int64(12), h.chatID)

	msgs := fa.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, tgbotapi.ModeHTML, msgs[0].ParseMode)
	assert.Contains(t, msgs[0].Text, "ID: abcdef01-2345-4678-9abc-def012345678")

	photos := fa.photos()
	require.Len(t, photos, 1)
	assert.Equal(t, int64(12), photos[0].ChatID)
	assert.Equal(t, tgbotapi.FileID("AgACAgQ"), photos[0].File)
}

func TestBot_SendTradeNotFoundAndUsage(t *testing.T) {
	fa := newFakeAPI()
	b := newBot(fa, Config{}, &fakeHistory{})

	require.NoError(t, b.SendTrade(context.Background(), 12, "deadbeef"))
	require.NoError(t, b.SendTrade(context.Background(), 12, ""))

	msgs := fa.messages(t)
	require.Len(t, msgs, 2)
	assert.Equal(t, `No trade found with id "deadbeef".`, msgs[0].Text)
	assert.Contains(t, msgs[1].Text, "Usage: /trade")
	assert.Empty(t, fa.photos())
}

func TestBot_SendTradeStorageError(t *testing.T) {
	fa := newFakeAPI()
	b := newBot(fa, Config{}, &fakeHistory{err: errors.New("database is locked")})

	err := b.SendTrade(context.Background(), 12, "abcdef01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.SendTrade")
	assert.Empty(t, fa.messages(t))
}

func TestBot_RunRoutesUpdates(t *testing.T) {
	fa := newFakeAPI()
	b := newBot(fa, Config{}, &fakeHistory{})
	sink := &recordingSink{}

	fa.updates <- tgbotapi.Update{UpdateID: 1, Message: commandMessage(1, "/start")}
	fa.updates <- callback(1, callbackNewTrade)
	fa.updates <- callback(1, "AAPL")
	fa.updates <- tgbotapi.Update{UpdateID: 4, Message: &tgbotapi.Message{MessageID: 2, Chat: &tgbotapi.Chat{ID: 1}, Text: "2:1"}}
	close(fa.updates)

	require.NoError(t, b.Run(context.Background(), sink))

	// /start lo atiende el bot; el resto va al flujo en orden
	require.Len(t, sink.events, 3)
	assert.Equal(t, intake.EventStart, sink.events[0].Kind)
	assert.Equal(t, intake.EventChoice, sink.events[1].Kind)
	assert.Equal(t, "AAPL", sink.events[1].Data)
	assert.Equal(t, intake.EventText, sink.events[2].Kind)

	assert.Equal(t, mainMenuText, fa.messages(t)[0].Text)
	assert.Len(t, fa.requests, 2, "cada callback se responde")
}

func TestBot_RunStopsOnContextCancel(t *testing.T) {
	fa := newFakeAPI()
	b := newBot(fa, Config{}, &fakeHistory{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, b.Run(ctx, &recordingSink{}))
	assert.True(t, fa.stopped)
}
