package storage

// sqlite.go — journal de trades sobre SQLite.
//
//   - `tickers`: catálogo ordenado que se ofrece al empezar el alta.
//   - `trades`: un registro por trade completado. Solo se inserta, nunca se edita.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/journalbot/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tickers (
    symbol   TEXT PRIMARY KEY,
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
    id          TEXT PRIMARY KEY,
    chat_id     INTEGER NOT NULL,
    ticker      TEXT NOT NULL,
    outcome     TEXT NOT NULL,
    side        TEXT NOT NULL,
    strategy    TEXT NOT NULL,
    risk_reward TEXT NOT NULL,
    pnl         TEXT NOT NULL,
    trade_date  TEXT NOT NULL,
    trade_time  TEXT NOT NULL,
    photo_ref   TEXT NOT NULL,
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_chat    ON trades(chat_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_ticker  ON trades(ticker);
`

// createdAtLayout tiene ancho fijo para que el orden de texto sea el cronológico.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const defaultRecentLimit = 10

// ErrTradeNotFound se devuelve cuando el id no existe.
var ErrTradeNotFound = domain.ErrTradeNotFound

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// GetAllTickers devuelve los tickers en el orden en que se sembraron.
func (s *SQLiteStorage) GetAllTickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol FROM tickers ORDER BY position, symbol`)
	if err != nil {
		return nil, fmt.Errorf("storage.GetAllTickers: query: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("storage.GetAllTickers: scan row: %w", err)
		}
		tickers = append(tickers, sym)
	}
	return tickers, rows.Err()
}

// SeedTickers inserta los tickers que no existan, a continuación de los existentes.
// Los símbolos se normalizan a mayúsculas; los vacíos se ignoran.
func (s *SQLiteStorage) SeedTickers(ctx context.Context, tickers []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SeedTickers: begin tx: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM tickers`).Scan(&next); err != nil {
		return fmt.Errorf("storage.SeedTickers: max position: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tickers (symbol, position) VALUES (?, ?) ON CONFLICT(symbol) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("storage.SeedTickers: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range tickers {
		sym := strings.ToUpper(strings.TrimSpace(t))
		if sym == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, sym, next)
		if err != nil {
			return fmt.Errorf("storage.SeedTickers: insert %s: %w", sym, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			next++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SeedTickers: commit: %w", err)
	}
	return nil
}

// SaveTrade inserta el trade con un id nuevo y devuelve ese id.
func (s *SQLiteStorage) SaveTrade(ctx context.Context, t domain.Trade) (string, error) {
	id := uuid.New().String()
	createdAt := time.Now().UTC()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO trades
			(id, chat_id, ticker, outcome, side, strategy, risk_reward, pnl,
			 trade_date, trade_time, photo_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		t.ChatID,
		t.Ticker,
		string(t.Outcome),
		string(t.Side),
		string(t.Strategy),
		t.RiskReward,
		t.PnL,
		t.Date,
		t.Time,
		t.PhotoRef,
		createdAt.Format(createdAtLayout),
	); err != nil {
		return "", fmt.Errorf("storage.SaveTrade: insert: %w", err)
	}
	return id, nil
}

// GetTrade busca un trade por id completo o por un prefijo de al menos
// domain.MinTradeIDPrefix caracteres (la tabla muestra solo los 8 primeros).
// chatID 0 busca en todos los chats.
func (s *SQLiteStorage) GetTrade(ctx context.Context, chatID int64, id string) (domain.Trade, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if len(id) < domain.MinTradeIDPrefix {
		return domain.Trade{}, fmt.Errorf("storage.GetTrade: %q too short: %w", id, domain.ErrTradeNotFound)
	}

	trades, err := s.listTrades(ctx, "storage.GetTrade",
		`(? = 0 OR chat_id = ?) AND substr(id, 1, length(?)) = ?`, 2,
		chatID, chatID, id, id)
	if err != nil {
		return domain.Trade{}, err
	}
	switch len(trades) {
	case 0:
		return domain.Trade{}, fmt.Errorf("storage.GetTrade: %q: %w", id, domain.ErrTradeNotFound)
	case 1:
		return trades[0], nil
	default:
		return domain.Trade{}, fmt.Errorf("storage.GetTrade: %q: %w", id, domain.ErrAmbiguousTradeID)
	}
}

// RecentTrades devuelve los últimos trades, más recientes primero.
// chatID 0 devuelve los de todos los chats.
func (s *SQLiteStorage) RecentTrades(ctx context.Context, chatID int64, limit int) ([]domain.Trade, error) {
	return s.listTrades(ctx, "storage.RecentTrades",
		`? = 0 OR chat_id = ?`, limit,
		chatID, chatID)
}

// TradesByTicker es RecentTrades filtrado por ticker (sin distinguir mayúsculas).
func (s *SQLiteStorage) TradesByTicker(ctx context.Context, chatID int64, ticker string, limit int) ([]domain.Trade, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	return s.listTrades(ctx, "storage.TradesByTicker",
		`(? = 0 OR chat_id = ?) AND ticker = ?`, limit,
		chatID, chatID, ticker)
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// listTrades ejecuta un SELECT de trades con el filtro dado, más recientes primero.
func (s *SQLiteStorage) listTrades(ctx context.Context, op, where string, limit int, args ...any) ([]domain.Trade, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE `+where+`
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return trades, nil
}

const tradeColumns = `id, chat_id, ticker, outcome, side, strategy, risk_reward, pnl,
	trade_date, trade_time, photo_ref, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(r rowScanner) (domain.Trade, error) {
	var t domain.Trade
	var outcome, side, strategy, createdAt string
	if err := r.Scan(
		&t.ID,
		&t.ChatID,
		&t.Ticker,
		&outcome,
		&side,
		&strategy,
		&t.RiskReward,
		&t.PnL,
		&t.Date,
		&t.Time,
		&t.PhotoRef,
		&createdAt,
	); err != nil {
		return domain.Trade{}, err
	}
	t.Outcome = domain.Outcome(outcome)
	t.Side = domain.Side(side)
	t.Strategy = domain.Strategy(strategy)
	ts, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	t.CreatedAt = ts
	return t, nil
}
