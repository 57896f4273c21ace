package notify_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/alejandrodnm/journalbot/internal/adapters/notify"
	"github.com/alejandrodnm/journalbot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func makeTrade(ticker string, outcome domain.Outcome, pnl string) domain.Trade {
	return domain.Trade{
		ID:         "3f2c9a1e-8b7d-4c6a-9e5f-1a2b3c4d5e6f",
		Ticker:     ticker,
		Outcome:    outcome,
		Side:       domain.SideShort,
		Strategy:   domain.StrategyCloseNYSE,
		RiskReward: "3:1",
		PnL:        pnl,
		Date:       "2024-05-01",
		Time:       "15:59",
	}
}

func TestConsole_PrintTrades(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintTrades([]domain.Trade{
		makeTrade("NQ", domain.OutcomeWin, "300"),
		makeTrade("ES", domain.OutcomeLoss, "-100"),
	})

	out := buf.String()
	assert.Contains(t, out, "NQ")
	assert.Contains(t, out, "ES")
	assert.Contains(t, out, "Close NYSE")
	assert.Contains(t, out, "3f2c9a1e")
	assert.NotContains(t, out, "8b7d-4c6a", "el id se recorta")
	assert.Contains(t, out, "2 trades | W:1 L:1 | win rate 50.0% | PnL 200.00")
}

func TestConsole_PrintTrades_Empty(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf).PrintTrades(nil)
	assert.Contains(t, buf.String(), "No trades recorded yet.")
}

func TestSummaryLine_NonNumeric(t *testing.T) {
	line := notify.SummaryLine(domain.Summarize([]domain.Trade{makeTrade("NQ", domain.OutcomeWin, "1R")}))
	assert.Contains(t, line, "(1 non-numeric)")
}

func TestConsole_PrintTradeShowsFullID(t *testing.T) {
	var buf bytes.Buffer
	tr := makeTrade("NQ", domain.OutcomeWin, "300")
	tr.PhotoRef = "AgACAgQ"
	notify.NewConsoleWriter(&buf).PrintTrade(tr)

	out := buf.String()
	assert.Contains(t, out, "ID: 3f2c9a1e-8b7d-4c6a-9e5f-1a2b3c4d5e6f")
	assert.Contains(t, out, "photo: AgACAgQ")
}

func TestLookupFailureText(t *testing.T) {
	text, ok := notify.LookupFailureText("abcdef01", fmt.Errorf("storage.GetTrade: %w", domain.ErrTradeNotFound))
	assert.True(t, ok)
	assert.Equal(t, `No trade found with id "abcdef01".`, text)

	text, ok = notify.LookupFailureText("abcdef01", domain.ErrAmbiguousTradeID)
	assert.True(t, ok)
	assert.Contains(t, text, "More than one trade")

	_, ok = notify.LookupFailureText("abcdef01", assert.AnError)
	assert.False(t, ok)
}
