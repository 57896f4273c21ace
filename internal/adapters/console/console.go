// Package console es un transporte de terminal para usar el bot sin Telegram.
//
// Las opciones se eligen por número o por nombre; "photo <ref>" simula la
// subida de la captura. Las líneas de texto se traducen a opciones en
// Resolve, dentro del worker que procesa el chat, así la elección se compara
// siempre con el prompt que el flujo ya envió.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/alejandrodnm/journalbot/internal/adapters/notify"
	"github.com/alejandrodnm/journalbot/internal/application/intake"
	"github.com/alejandrodnm/journalbot/internal/domain"
	"github.com/alejandrodnm/journalbot/internal/ports"
)

// ChatID es el id de sesión fijo de la consola.
const ChatID int64 = 1

const recentLimit = 10

const menuText = "Main Menu: /new (new trade) | /trades [ticker] (recent trades) | /trade <id> | /cancel | /quit"

// EventSink recibe los eventos del flujo.
type EventSink interface {
	Submit(ctx context.Context, ev intake.Event) error
}

// Console implementa ports.Messenger y ports.MainMenu sobre stdin/stdout.
type Console struct {
	in      io.Reader
	out     io.Writer
	history ports.TradeHistory

	mu      sync.Mutex
	options []domain.Option // opciones del último prompt
	seq     int             // ids de mensaje simulados
}

// New crea el transporte de consola.
func New(in io.Reader, out io.Writer, history ports.TradeHistory) *Console {
	return &Console{in: in, out: out, history: history}
}

// Resolve envuelve h: /menu, /trades y /trade se responden aquí, y un texto que
// coincide con una opción del último prompt se entrega como EventChoice con
// su payload.
func (c *Console) Resolve(h intake.Handler) intake.Handler {
	return intake.HandlerFunc(func(ctx context.Context, ev intake.Event) error {
		if ev.Kind == intake.EventText {
			if handled, err := c.query(ctx, ev.Data); handled {
				return err
			}
			if data, ok := c.matchOption(ev.Data); ok {
				ev.Kind = intake.EventChoice
				ev.Data = data
			}
		}
		return h.Handle(ctx, ev)
	})
}

// SendOptions imprime el prompt con las opciones numeradas.
func (c *Console) SendOptions(_ context.Context, _ int64, text string, options []domain.Option, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.options = options
	fmt.Fprintf(c.out, "bot> %s\n", text)
	for i, o := range options {
		fmt.Fprintf(c.out, "  [%d] %s\n", i+1, o.Label)
	}
	return nil
}

// SendText imprime un mensaje del bot.
func (c *Console) SendText(_ context.Context, _ int64, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.options = nil
	fmt.Fprintf(c.out, "bot> %s\n", text)
	return nil
}

// ShowMainMenu imprime los comandos disponibles.
func (c *Console) ShowMainMenu(_ context.Context, _ int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.options = nil
	fmt.Fprintf(c.out, "bot> %s\n", menuText)
	return nil
}

// Run lee líneas hasta EOF, /quit o la cancelación de ctx.
func (c *Console) Run(ctx context.Context, sink EventSink) error {
	lines := make(chan string)
	errCh := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		errCh <- sc.Err()
		close(lines)
	}()

	if err := c.ShowMainMenu(ctx, ChatID); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-errCh; err != nil {
					return fmt.Errorf("console.Run: read input: %w", err)
				}
				return nil
			}
			quit, err := c.handleLine(ctx, sink, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func (c *Console) handleLine(ctx context.Context, sink EventSink, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	ev := intake.Event{ChatID: ChatID, MessageID: c.nextSeq()}
	switch {
	case line == "/quit":
		return true, nil
	case line == "/new":
		ev.Kind = intake.EventStart
	case line == "/cancel":
		ev.Kind = intake.EventCancel
	case line == "photo" || strings.HasPrefix(line, "photo "):
		ev.Kind = intake.EventPhoto
		ev.Data = strings.TrimSpace(strings.TrimPrefix(line, "photo"))
		if ev.Data == "" {
			ev.Data = fmt.Sprintf("console-photo-%d", ev.MessageID)
		}
	default:
		ev.Kind = intake.EventText
		ev.Data = line
	}
	return false, sink.Submit(ctx, ev)
}

// matchOption resuelve la línea contra las opciones pendientes: número, label o payload.
func (c *Console) matchOption(line string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.options) == 0 {
		return "", false
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(c.options) {
		return c.options[n-1].Data, true
	}
	for _, o := range c.options {
		if strings.EqualFold(line, o.Label) || strings.EqualFold(line, o.Data) {
			return o.Data, true
		}
	}
	return "", false
}

// query atiende las consultas al journal; false si line no es una.
func (c *Console) query(ctx context.Context, line string) (bool, error) {
	switch {
	case line == "/menu":
		c.say(menuText)
		return true, nil
	case line == "/trades" || strings.HasPrefix(line, "/trades "):
		return true, c.printRecent(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/trades")))
	case line == "/trade" || strings.HasPrefix(line, "/trade "):
		return true, c.printTrade(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/trade")))
	default:
		return false, nil
	}
}

func (c *Console) printRecent(ctx context.Context, ticker string) error {
	var (
		trades []domain.Trade
		err    error
	)
	if ticker == "" {
		trades, err = c.history.RecentTrades(ctx, ChatID, recentLimit)
	} else {
		ticker = strings.ToUpper(ticker)
		trades, err = c.history.TradesByTicker(ctx, ChatID, ticker, recentLimit)
	}
	if err != nil {
		return fmt.Errorf("console.printRecent: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(trades) == 0 && ticker != "" {
		fmt.Fprintf(c.out, "bot> %s\n", notify.NoTradesForText(ticker))
		return nil
	}
	notify.NewConsoleWriter(c.out).PrintTrades(trades)
	return nil
}

func (c *Console) printTrade(ctx context.Context, id string) error {
	if id == "" {
		c.say(notify.TradeUsageText)
		return nil
	}
	t, err := c.history.GetTrade(ctx, ChatID, id)
	if err != nil {
		if text, ok := notify.LookupFailureText(id, err); ok {
			c.say(text)
			return nil
		}
		return fmt.Errorf("console.printTrade: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	notify.NewConsoleWriter(c.out).PrintTrade(t)
	return nil
}

// say imprime un aviso sin tocar las opciones pendientes del flujo.
func (c *Console) say(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "bot> %s\n", text)
}

func (c *Console) nextSeq() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}
