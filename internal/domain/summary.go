package domain

import (
	"math"
	"strconv"
	"strings"
)

// JournalSummary agrega un conjunto de trades.
type JournalSummary struct {
	Total    int
	Wins     int
	Losses   int
	PnL      float64 // suma de los PnL numéricos
	Unparsed int     // trades cuyo PnL no es un número
}

// WinRate devuelve el porcentaje de trades ganadores (0–100).
func (s JournalSummary) WinRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Total) * 100
}

// Summarize calcula el resumen. El PnL es texto libre: se aceptan "150",
// "-42.5", "+10" y "$150"; el resto cuenta como Unparsed.
func Summarize(trades []Trade) JournalSummary {
	var s JournalSummary
	for _, t := range trades {
		s.Total++
		switch t.Outcome {
		case OutcomeWin:
			s.Wins++
		case OutcomeLoss:
			s.Losses++
		}
		if v, ok := parsePnL(t.PnL); ok {
			s.PnL += v
		} else {
			s.Unparsed++
		}
	}
	return s
}

func parsePnL(raw string) (float64, bool) {
	v := strings.TrimSpace(raw)
	neg := strings.HasPrefix(v, "-")
	v = strings.TrimLeft(v, "+-")
	v = strings.TrimPrefix(v, "$")
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	// ParseFloat acepta "NaN" e "Inf": no son importes.
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}
