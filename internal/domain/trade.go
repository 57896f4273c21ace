package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Outcome es el resultado del trade.
type Outcome string

const (
	OutcomeWin  Outcome = "Win"
	OutcomeLoss Outcome = "Loss"
)

// Side es la dirección de la posición.
type Side string

const (
	SideLong  Side = "Long"
	SideShort Side = "Short"
)

// Strategy es el setup con el que se tomó el trade.
type Strategy string

const (
	StrategyDHL       Strategy = "DHL" // high/low del día anterior
	StrategyCloseNYSE Strategy = "Close_NYSE"
	StrategyMTR       Strategy = "MTR"
	StrategyFF        Strategy = "FF"
)

// Label devuelve el texto que se muestra en el botón.
func (s Strategy) Label() string {
	if s == StrategyCloseNYSE {
		return "Close NYSE"
	}
	return string(s)
}

// Outcomes, Sides y Strategies devuelven los valores en el orden en que se ofrecen.
func Outcomes() []Outcome { return []Outcome{OutcomeWin, OutcomeLoss} }
func Sides() []Side { return []Side{SideLong, SideShort} }
func Strategies() []Strategy {
	return []Strategy{StrategyDHL, StrategyCloseNYSE, StrategyMTR, StrategyFF}
}

// ParseOutcome convierte el payload de un botón en Outcome.
func ParseOutcome(s string) (Outcome, bool) {
	for _, o := range Outcomes() {
		if string(o) == s {
			return o, true
		}
	}
	return "", false
}

// ParseSide convierte el payload de un botón en Side.
func ParseSide(s string) (Side, bool) {
	for _, v := range Sides() {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// ParseStrategy convierte el payload de un botón en Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	for _, v := range Strategies() {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Trade es un registro del journal ya persistido.
type Trade struct {
	ID         string
	ChatID     int64
	Ticker     string
	Outcome    Outcome
	Side       Side
	Strategy   Strategy
	RiskReward string // texto libre, p.ej. "2:1"
	PnL        string // texto libre
	Date       string // YYYY-MM-DD
	Time       string // HH:MM
	PhotoRef   string // file id de la captura
	CreatedAt  time.Time
}

// ErrIncompleteDraft se devuelve cuando se intenta guardar un borrador al que le faltan campos.
var ErrIncompleteDraft = errors.New("incomplete trade draft")

// Draft is the trade being collected during a conversation.
// Empty fields have not been answered yet.
type Draft struct {
	Ticker     string
	Outcome    Outcome
	Side       Side
	Strategy   Strategy
	RiskReward string
	PnL        string
	Date       string
	Time       string
	PhotoRef   string
}

// Missing devuelve los nombres de los campos sin completar, en orden de captura.
func (d Draft) Missing() []string {
	fields := []struct {
		name string
		set  bool
	}{
		{"ticker", d.Ticker != ""},
		{"outcome", d.Outcome != ""},
		{"side", d.Side != ""},
		{"strategy", d.Strategy != ""},
		{"risk_reward", d.RiskReward != ""},
		{"pnl", d.PnL != ""},
		{"date", d.Date != ""},
		{"time", d.Time != ""},
		{"photo", d.PhotoRef != ""},
	}
	var missing []string
	for _, f := range fields {
		if !f.set {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Complete convierte el borrador en un Trade listo para persistir.
// ID y CreatedAt los asigna el storage.
func (d Draft) Complete(chatID int64) (Trade, error) {
	if missing := d.Missing(); len(missing) > 0 {
		return Trade{}, fmt.Errorf("%w: missing %s", ErrIncompleteDraft, strings.Join(missing, ", "))
	}
	return Trade{
		ChatID:     chatID,
		Ticker:     d.Ticker,
		Outcome:    d.Outcome,
		Side:       d.Side,
		Strategy:   d.Strategy,
		RiskReward: d.RiskReward,
		PnL:        d.PnL,
		Date:       d.Date,
		Time:       d.Time,
		PhotoRef:   d.PhotoRef,
	}, nil
}

var (
	// ErrTradeNotFound se devuelve cuando ningún trade coincide con el id.
	ErrTradeNotFound = errors.New("trade not found")
	// ErrAmbiguousTradeID se devuelve cuando un prefijo de id coincide con varios trades.
	ErrAmbiguousTradeID = errors.New("trade id prefix matches more than one trade")
)

// MinTradeIDPrefix es la longitud mínima de un prefijo de id para buscar un trade.
const MinTradeIDPrefix = 8
