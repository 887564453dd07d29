package sqlite

import (
	"context"
	"fmt"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
)

// TradeRepository implements persistence.TradeRepository on SQLite.
type TradeRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTradeRepository creates a SQLite trade repository.
func NewTradeRepository(pool *ConnectionPool) *TradeRepository {
	return &TradeRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const tradeColumns = `id, name, color, display_order, created_at, updated_at`

// CreateTrade inserts a trade master entry.
func (r *TradeRepository) CreateTrade(ctx context.Context, trade persistence.Trade) error {
	if trade.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		trade.ID,
		trade.Name,
		trade.Color,
		trade.DisplayOrder,
		formatTime(trade.CreatedAt),
		formatTime(trade.UpdatedAt),
	)
	return r.mapper.Map(err)
}

// UpdateTrade rewrites a trade master entry.
func (r *TradeRepository) UpdateTrade(ctx context.Context, trade persistence.Trade) error {
	if trade.ID == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `
		UPDATE trades
		SET name = ?, color = ?, display_order = ?, updated_at = ?
		WHERE id = ?`,
		trade.Name,
		trade.Color,
		trade.DisplayOrder,
		formatTime(trade.UpdatedAt),
		trade.ID,
	)
	if err != nil {
		return r.mapper.Map(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetTrade retrieves one trade by ID.
func (r *TradeRepository) GetTrade(ctx context.Context, id string) (persistence.Trade, error) {
	if id == "" {
		return persistence.Trade{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	trade, err := scanTrade(row)
	if err != nil {
		return persistence.Trade{}, r.mapper.Map(err)
	}
	return trade, nil
}

// ListTrades retrieves all trades in display order.
func (r *TradeRepository) ListTrades(ctx context.Context) ([]persistence.Trade, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+tradeColumns+` FROM trades
		ORDER BY display_order, name`)
	if err != nil {
		return nil, r.mapper.Map(err)
	}
	defer rows.Close()

	var trades []persistence.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, r.mapper.Map(err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.Map(err)
	}
	return trades, nil
}

// DeleteTrade removes a trade master entry. Tasks referencing it keep
// the repository from deleting via the foreign key.
func (r *TradeRepository) DeleteTrade(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return r.mapper.Map(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanTrade(row rowScanner) (persistence.Trade, error) {
	var (
		trade                persistence.Trade
		createdAt, updatedAt string
	)
	err := row.Scan(
		&trade.ID,
		&trade.Name,
		&trade.Color,
		&trade.DisplayOrder,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Trade{}, err
	}
	if trade.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Trade{}, err
	}
	if trade.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Trade{}, err
	}
	return trade, nil
}
