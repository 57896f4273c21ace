package ports

import (
	"context"

	"github.com/alejandrodnm/journalbot/internal/domain"
)

// TradeStore es lo que el flujo de alta necesita del journal.
type TradeStore interface {
	// GetAllTickers devuelve los tickers seleccionables, en orden de presentación.
	GetAllTickers(ctx context.Context) ([]string, error)

	// SaveTrade persiste el trade completo y devuelve el id generado.
	SaveTrade(ctx context.Context, trade domain.Trade) (string, error)
}

// TradeHistory lee trades ya registrados.
type TradeHistory interface {
	// RecentTrades devuelve los últimos trades de un chat, más recientes primero.
	// chatID 0 devuelve los de todos los chats.
	RecentTrades(ctx context.Context, chatID int64, limit int) ([]domain.Trade, error)

	// TradesByTicker es RecentTrades filtrado por ticker.
	TradesByTicker(ctx context.Context, chatID int64, ticker string, limit int) ([]domain.Trade, error)

	// GetTrade busca un trade del chat por id o prefijo de id.
	// Devuelve domain.ErrTradeNotFound o domain.ErrAmbiguousTradeID.
	GetTrade(ctx context.Context, chatID int64, id string) (domain.Trade, error)
}

// TickerStore mantiene el catálogo de tickers.
type TickerStore interface {
	// SeedTickers inserta los tickers que falten, conservando el orden dado.
	SeedTickers(ctx context.Context, tickers []string) error
}

// Storage agrupa todo lo que implementa el adapter SQLite.
type Storage interface {
	TradeStore
	TradeHistory
	TickerStore

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
