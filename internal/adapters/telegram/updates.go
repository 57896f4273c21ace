package telegram

import (
	"strings"

	"github.com/alejandrodnm/journalbot/internal/application/intake"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackNewTrade     = "new_trade"
	callbackRecentTrades = "recent_trades"
	callbackCancel       = "cancel"
)

type action int

const (
	actionIgnore action = iota
	actionEvent         // evento para el flujo
	actionMenu          // mostrar menú principal
	actionRecent        // listar trades recientes; Data = ticker opcional
	actionLookup        // mostrar un trade; Data = id o prefijo
)

// classify traduce un update de Telegram a una acción del bot.
func classify(upd tgbotapi.Update) (action, intake.Event) {
	if cb := upd.CallbackQuery; cb != nil {
		if cb.Message == nil || cb.Message.Chat == nil {
			return actionIgnore, intake.Event{}
		}
		ev := intake.Event{ChatID: cb.Message.Chat.ID, MessageID: cb.Message.MessageID}
		switch cb.Data {
		case callbackNewTrade:
			ev.Kind = intake.EventStart
		case callbackCancel:
			ev.Kind = intake.EventCancel
		case callbackRecentTrades:
			return actionRecent, ev
		default:
			ev.Kind = intake.EventChoice
			ev.Data = cb.Data
		}
		return actionEvent, ev
	}

	m := upd.Message
	if m == nil || m.Chat == nil {
		return actionIgnore, intake.Event{}
	}
	ev := intake.Event{ChatID: m.Chat.ID, MessageID: m.MessageID}

	if m.IsCommand() {
		switch m.Command() {
		case "start", "menu":
			return actionMenu, ev
		case "new":
			ev.Kind = intake.EventStart
		case "cancel":
			ev.Kind = intake.EventCancel
		case "trades":
			ev.Data = strings.ToUpper(strings.TrimSpace(m.CommandArguments()))
			return actionRecent, ev
		case "trade":
			ev.Data = strings.TrimSpace(m.CommandArguments())
			return actionLookup, ev
		default:
			return actionIgnore, ev
		}
		return actionEvent, ev
	}

	switch {
	case len(m.Photo) > 0:
		// Telegram manda varias resoluciones; la última es la más grande.
		ev.Kind = intake.EventPhoto
		ev.Data = m.Photo[len(m.Photo)-1].FileID
	case m.Text != "":
		ev.Kind = intake.EventText
		ev.Data = m.Text
	default:
		return actionIgnore, ev
	}
	return actionEvent, ev
}
