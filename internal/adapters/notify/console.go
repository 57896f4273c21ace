package notify

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alejandrodnm/journalbot/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Textos compartidos por los transportes para las consultas del journal.
const (
	NoTradesText   = "No trades recorded yet."
	TradeUsageText = "Usage: /trade <id> (at least 8 characters of the id)."
)

// Console imprime el journal por consola.
type Console struct {
	out io.Writer
}

// NewConsole crea un Console que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un Console sobre w (tests, buffers).
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// PrintTrades imprime la tabla de trades seguida del resumen.
func (c *Console) PrintTrades(trades []domain.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(c.out, NoTradesText)
		return
	}
	RenderTrades(c.out, trades)
	fmt.Fprintln(c.out, SummaryLine(domain.Summarize(trades)))
}

// RenderTrades escribe los trades como tabla en w.
func RenderTrades(w io.Writer, trades []domain.Trade) {
	table := tablewriter.NewWriter(w)
	table.Header("Date", "Time", "Ticker", "W/L", "Side", "Setup", "R:R", "PnL", "ID")

	for _, t := range trades {
		table.Append(
			t.Date,
			t.Time,
			t.Ticker,
			string(t.Outcome),
			string(t.Side),
			t.Strategy.Label(),
			t.RiskReward,
			t.PnL,
			shortID(t.ID),
		)
	}
	table.Render()
}

// SummaryLine resume el conjunto en una línea.
func SummaryLine(s domain.JournalSummary) string {
	line := fmt.Sprintf("%d trades | W:%d L:%d | win rate %.1f%% | PnL %.2f",
		s.Total, s.Wins, s.Losses, s.WinRate(), s.PnL)
	if s.Unparsed > 0 {
		line += fmt.Sprintf(" (%d non-numeric)", s.Unparsed)
	}
	return line
}

// shortID recorta el UUID a sus primeros 8 caracteres para la tabla.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// PrintTrade imprime un trade con su id completo.
func (c *Console) PrintTrade(t domain.Trade) {
	RenderTrades(c.out, []domain.Trade{t})
	fmt.Fprintln(c.out, TradeCaption(t))
}

// TradeCaption identifica el trade por id completo y, si hay, la captura.
func TradeCaption(t domain.Trade) string {
	line := "ID: " + t.ID
	if t.PhotoRef != "" {
		line += " | photo: " + t.PhotoRef
	}
	return line
}

// NoTradesForText es el aviso de /trades <ticker> sin resultados.
func NoTradesForText(ticker string) string {
	return fmt.Sprintf("No trades recorded for %s yet.", ticker)
}

// LookupFailureText traduce los errores esperables de una búsqueda por id.
// Devuelve false si err no es uno de ellos.
func LookupFailureText(id string, err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrAmbiguousTradeID):
		return fmt.Sprintf("More than one trade matches %q. Please send more characters of the id.", id), true
	case errors.Is(err, domain.ErrTradeNotFound):
		return fmt.Sprintf("No trade found with id %q.", id), true
	default:
		return "", false
	}
}
