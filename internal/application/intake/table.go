package intake

import (
	"errors"
	"slices"

	"github.com/alejandrodnm/journalbot/internal/domain"
)

// errUnknownChoice indica un payload que no está entre las opciones ofrecidas
// (botón viejo de otro mensaje). Se vuelve a mostrar el prompt actual.
var errUnknownChoice = errors.New("unknown choice")

// step es una fila de la tabla de transiciones.
type step struct {
	accepts EventKind
	apply   func(s *session, input string) error // guarda el campo o devuelve error de validación
	prompt  prompt                               // se envía tras apply exitoso
	next    State
	retry   string // texto si apply falla; vacío = repetir el último prompt
	persist bool   // último paso: guardar el trade
}

// transitions es la tabla completa del flujo a partir de AwaitOutcome.
// Start no figura porque necesita leer los tickers del storage (ver Flow.Start).
var transitions = map[State]step{
	AwaitOutcome:    {accepts: EventChoice, apply: setTicker, prompt: outcomePrompt, next: AwaitSide},
	AwaitSide:       {accepts: EventChoice, apply: setOutcome, prompt: sidePrompt, next: AwaitStrategy},
	AwaitStrategy:   {accepts: EventChoice, apply: setSide, prompt: strategyPrompt, next: AwaitRiskReward},
	AwaitRiskReward: {accepts: EventChoice, apply: setStrategy, prompt: riskRewardPrompt, next: AwaitPnl},
	AwaitPnl:        {accepts: EventText, apply: setRiskReward, prompt: pnlPrompt, next: AwaitDate},
	AwaitDate:       {accepts: EventText, apply: setPnL, prompt: datePrompt, next: AwaitTime},
	AwaitTime:       {accepts: EventText, apply: setDate, prompt: timePrompt, next: AwaitPhoto, retry: textInvalidDate},
	AwaitPhoto:      {accepts: EventText, apply: setTime, prompt: photoPrompt, next: Save, retry: textInvalidTime},
	Save:            {accepts: EventPhoto, apply: setPhoto, next: Terminal, persist: true},
}

func setTicker(s *session, in string) error {
	if !slices.Contains(s.tickers, in) {
		return errUnknownChoice
	}
	s.draft.Ticker = in
	return nil
}

func setOutcome(s *session, in string) error {
	o, ok := domain.ParseOutcome(in)
	if !ok {
		return errUnknownChoice
	}
	s.draft.Outcome = o
	return nil
}

func setSide(s *session, in string) error {
	v, ok := domain.ParseSide(in)
	if !ok {
		return errUnknownChoice
	}
	s.draft.Side = v
	return nil
}

func setStrategy(s *session, in string) error {
	v, ok := domain.ParseStrategy(in)
	if !ok {
		return errUnknownChoice
	}
	s.draft.Strategy = v
	return nil
}

func setRiskReward(s *session, in string) error {
	s.draft.RiskReward = in
	return nil
}

func setPnL(s *session, in string) error {
	s.draft.PnL = in
	return nil
}

func setDate(s *session, in string) error {
	if err := domain.ValidateDate(in); err != nil {
		return err
	}
	s.draft.Date = in
	return nil
}

func setTime(s *session, in string) error {
	if err := domain.ValidateTime(in); err != nil {
		return err
	}
	s.draft.Time = in
	return nil
}

func setPhoto(s *session, in string) error {
	s.draft.PhotoRef = in
	return nil
}
