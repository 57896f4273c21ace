package intake

import "github.com/alejandrodnm/journalbot/internal/domain"

// prompt es un mensaje saliente. reply indica si se envía como respuesta al
// mensaje del usuario.
type prompt struct {
	text    string
	options []domain.Option
	reply   bool
}

const (
	textChooseTicker  = "Please Choose Ticker's Name."
	textInvalidDate   = "Invalid date format. Please enter the date in YYYY-MM-DD format."
	textInvalidTime   = "Invalid time format. Please enter the time in HH:MM format."
	textRecorded      = "Trade recorded successfully. The Trade ID is %s."
	textSaveFailed    = "Sorry, the trade could not be saved. Please try again later."
	textNoTickers     = "No tickers are configured yet. Please add tickers and try again."
	textTickersFailed = "Sorry, the ticker list is not available right now. Please try again later."
	textCancelled     = "Trade entry cancelled."
)

var (
	outcomePrompt = prompt{
		text:    "Trade Status? (WIN/LOSS).",
		options: enumOptions(domain.Outcomes(), func(o domain.Outcome) string { return string(o) }),
	}
	sidePrompt = prompt{
		text:    "Position Side? (Long/Short)",
		options: enumOptions(domain.Sides(), func(s domain.Side) string { return string(s) }),
	}
	strategyPrompt = prompt{
		text:    "Trading Setup?",
		options: enumOptions(domain.Strategies(), domain.Strategy.Label),
	}
	riskRewardPrompt = prompt{text: "What is Risk:Reward Ratio?", reply: true}
	pnlPrompt        = prompt{text: "What was PnL?", reply: true}
	datePrompt       = prompt{text: "Please enter the date of the trade (YYYY-MM-DD):"}
	timePrompt       = prompt{text: "What time was the trade? (HH:MM)"}
	photoPrompt      = prompt{text: "Please Send a Picture of Your Trade.", reply: true}
)

func tickerPrompt(tickers []string) prompt {
	return prompt{text: textChooseTicker, options: domain.OptionsFrom(tickers)}
}

func enumOptions[T ~string](values []T, label func(T) string) []domain.Option {
	opts := make([]domain.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, domain.Option{Label: label(v), Data: string(v)})
	}
	return opts
}
