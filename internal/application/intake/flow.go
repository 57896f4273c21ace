package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alejandrodnm/journalbot/internal/domain"
	"github.com/alejandrodnm/journalbot/internal/ports"
)

var (
	// ErrNoTickers se devuelve cuando el catálogo de tickers está vacío.
	ErrNoTickers = errors.New("no tickers configured")
	// ErrSaveFailed envuelve un fallo del storage al guardar el trade.
	ErrSaveFailed = errors.New("trade could not be saved")
)

// session es el estado de una conversación en curso.
type session struct {
	state   State
	draft   domain.Draft
	tickers []string // tickers ofrecidos al inicio
	last    prompt   // último prompt enviado, para re-preguntar
}

// Flow es el controlador de la conversación de alta de trades.
//
// Handle no debe llamarse en paralelo para el mismo chat: el Dispatcher
// garantiza el orden por chat. Chats distintos sí pueden ir en paralelo.
type Flow struct {
	store ports.TradeStore
	msg   ports.Messenger
	menu  ports.MainMenu

	mu       sync.Mutex
	sessions map[int64]*session
}

// NewFlow crea el flujo con sus colaboradores inyectados.
func NewFlow(store ports.TradeStore, msg ports.Messenger, menu ports.MainMenu) *Flow {
	return &Flow{
		store:    store,
		msg:      msg,
		menu:     menu,
		sessions: make(map[int64]*session),
	}
}

// Handle aplica un evento a la sesión de su chat.
func (f *Flow) Handle(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case EventStart:
		return f.Start(ctx, ev.ChatID, ev.MessageID)
	case EventCancel:
		return f.Cancel(ctx, ev.ChatID)
	}

	s := f.session(ev.ChatID)
	if s == nil {
		slog.Debug("intake: event without session", "chat_id", ev.ChatID, "kind", ev.Kind)
		return nil
	}

	st, ok := transitions[s.state]
	if !ok {
		f.drop(ev.ChatID)
		return nil
	}

	input := ev.Data
	if ev.Kind == EventText {
		input = strings.TrimSpace(input)
	}
	if ev.Kind != st.accepts || input == "" {
		slog.Debug("intake: unexpected event, re-prompting",
			"chat_id", ev.ChatID,
			"state", s.state,
			"kind", ev.Kind,
		)
		return f.send(ctx, ev, s.last)
	}

	if err := st.apply(s, input); err != nil {
		slog.Debug("intake: invalid input", "chat_id", ev.ChatID, "state", s.state, "err", err)
		if st.retry == "" {
			return f.send(ctx, ev, s.last)
		}
		return f.send(ctx, ev, prompt{text: st.retry})
	}

	if st.persist {
		return f.save(ctx, ev, s)
	}

	slog.Debug("intake: transition", "chat_id", ev.ChatID, "from", s.state, "to", st.next)
	s.state = st.next
	s.last = st.prompt
	return f.send(ctx, ev, st.prompt)
}

// Start abre (o reinicia) la sesión del chat y ofrece los tickers.
func (f *Flow) Start(ctx context.Context, chatID int64, replyTo int) error {
	f.drop(chatID)

	tickers, err := f.store.GetAllTickers(ctx)
	if err != nil {
		if sendErr := f.msg.SendText(ctx, chatID, textTickersFailed, 0); sendErr != nil {
			slog.Warn("intake: could not notify ticker failure", "chat_id", chatID, "err", sendErr)
		}
		return fmt.Errorf("intake.Start: get tickers: %w", err)
	}
	if len(tickers) == 0 {
		if err := f.msg.SendText(ctx, chatID, textNoTickers, 0); err != nil {
			return fmt.Errorf("intake.Start: send: %w", err)
		}
		return fmt.Errorf("intake.Start: %w", ErrNoTickers)
	}

	s := &session{
		state:   AwaitOutcome,
		tickers: tickers,
		last:    tickerPrompt(tickers),
	}
	f.mu.Lock()
	f.sessions[chatID] = s
	f.mu.Unlock()

	slog.Debug("intake: session started", "chat_id", chatID, "tickers", len(tickers))
	return f.send(ctx, Event{ChatID: chatID, MessageID: replyTo}, s.last)
}

// Cancel descarta el borrador en curso y vuelve al menú principal.
func (f *Flow) Cancel(ctx context.Context, chatID int64) error {
	if f.drop(chatID) {
		slog.Debug("intake: session cancelled", "chat_id", chatID)
		if err := f.msg.SendText(ctx, chatID, textCancelled, 0); err != nil {
			return fmt.Errorf("intake.Cancel: send: %w", err)
		}
	}
	if err := f.menu.ShowMainMenu(ctx, chatID); err != nil {
		return fmt.Errorf("intake.Cancel: main menu: %w", err)
	}
	return nil
}

// State devuelve el estado de la sesión del chat, si existe.
func (f *Flow) State(chatID int64) (State, bool) {
	s := f.session(chatID)
	if s == nil {
		return Terminal, false
	}
	return s.state, true
}

// Draft devuelve una copia del borrador en curso del chat.
func (f *Flow) Draft(chatID int64) (domain.Draft, bool) {
	s := f.session(chatID)
	if s == nil {
		return domain.Draft{}, false
	}
	return s.draft, true
}

// save persiste el trade completo. Tanto en éxito como en fallo la sesión termina.
func (f *Flow) save(ctx context.Context, ev Event, s *session) error {
	f.drop(ev.ChatID)
	s.state = Terminal

	trade, err := s.draft.Complete(ev.ChatID)
	if err != nil {
		f.notifySaveFailed(ctx, ev)
		return fmt.Errorf("intake.save: %w", err)
	}

	id, err := f.store.SaveTrade(ctx, trade)
	if err != nil {
		f.notifySaveFailed(ctx, ev)
		return fmt.Errorf("intake.save: %w: %w", ErrSaveFailed, err)
	}

	slog.Info("trade recorded",
		"chat_id", ev.ChatID,
		"trade_id", id,
		"ticker", trade.Ticker,
		"outcome", trade.Outcome,
	)

	if err := f.send(ctx, ev, prompt{text: fmt.Sprintf(textRecorded, id), reply: true}); err != nil {
		return err
	}
	if err := f.menu.ShowMainMenu(ctx, ev.ChatID); err != nil {
		return fmt.Errorf("intake.save: main menu: %w", err)
	}
	return nil
}

func (f *Flow) notifySaveFailed(ctx context.Context, ev Event) {
	if err := f.msg.SendText(ctx, ev.ChatID, textSaveFailed, ev.MessageID); err != nil {
		slog.Warn("intake: could not notify save failure", "chat_id", ev.ChatID, "err", err)
	}
}

// send envía el prompt siempre al chat que originó el evento.
func (f *Flow) send(ctx context.Context, ev Event, p prompt) error {
	replyTo := 0
	if p.reply {
		replyTo = ev.MessageID
	}

	var err error
	if len(p.options) > 0 {
		err = f.msg.SendOptions(ctx, ev.ChatID, p.text, p.options, replyTo)
	} else {
		err = f.msg.SendText(ctx, ev.ChatID, p.text, replyTo)
	}
	if err != nil {
		return fmt.Errorf("intake.send: chat %d: %w", ev.ChatID, err)
	}
	return nil
}

func (f *Flow) session(chatID int64) *session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[chatID]
}

// drop elimina la sesión del chat; devuelve true si existía.
func (f *Flow) drop(chatID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[chatID]
	delete(f.sessions, chatID)
	return ok
}
