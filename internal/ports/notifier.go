package ports

import (
	"context"

	"github.com/alejandrodnm/journalbot/internal/domain"
)

// Messenger envía mensajes a un chat a través del transporte (Telegram, consola).
type Messenger interface {
	// SendOptions envía text con un botón por opción.
	// replyTo es el id del mensaje al que se responde (0 = ninguno).
	SendOptions(ctx context.Context, chatID int64, text string, options []domain.Option, replyTo int) error

	// SendText envía un mensaje de texto plano.
	SendText(ctx context.Context, chatID int64, text string, replyTo int) error
}

// MainMenu devuelve al usuario al menú principal.
type MainMenu interface {
	ShowMainMenu(ctx context.Context, chatID int64) error
}
