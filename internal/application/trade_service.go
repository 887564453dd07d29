package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
)

const maxTradeNameRunes = 60

// TradeRepository captures the persistence operations needed by the service.
type TradeRepository interface {
	CreateTrade(ctx context.Context, trade Trade) (Trade, error)
	GetTrade(ctx context.Context, id string) (Trade, error)
	UpdateTrade(ctx context.Context, trade Trade) (Trade, error)
	DeleteTrade(ctx context.Context, id string) error
	ListTrades(ctx context.Context) ([]Trade, error)
}

// TradeUsage reports how many tasks reference a trade.
type TradeUsage interface {
	CountTasksByTrade(ctx context.Context, tradeID string) (int, error)
}

// TradeService orchestrates the shared trade master list. Every signed-in
// user may manage it.
type TradeService struct {
	trades      TradeRepository
	usage       TradeUsage
	idGenerator func() string
	now         func() time.Time
}

// NewTradeService wires dependencies for the trade master list.
func NewTradeService(trades TradeRepository, usage TradeUsage, idGenerator func() string, now func() time.Time) *TradeService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TradeService{trades: trades, usage: usage, idGenerator: idGenerator, now: now}
}

// CreateTrade validates input and persists a new trade master entry.
func (s *TradeService) CreateTrade(ctx context.Context, params CreateTradeParams) (Trade, error) {
	if s == nil {
		return Trade{}, fmt.Errorf("TradeService is nil")
	}
	if params.Principal.UserID == "" {
		return Trade{}, ErrUnauthorized
	}

	input := normalizeTradeInput(params.Input)
	vErr := validateTradeInput(input)
	if vErr.HasErrors() {
		return Trade{}, vErr
	}

	trade := Trade{
		ID:           s.idGenerator(),
		Name:         input.Name,
		Color:        input.Color,
		DisplayOrder: input.DisplayOrder,
		CreatedAt:    s.now(),
	}
	trade.UpdatedAt = trade.CreatedAt

	if s.trades == nil {
		return trade, nil
	}

	persisted, err := s.trades.CreateTrade(ctx, trade)
	if err != nil {
		return Trade{}, mapTradeRepoError(err)
	}
	return persisted, nil
}

// UpdateTrade validates input and rewrites an existing trade master entry.
func (s *TradeService) UpdateTrade(ctx context.Context, params UpdateTradeParams) (Trade, error) {
	if s == nil {
		return Trade{}, fmt.Errorf("TradeService is nil")
	}
	if params.Principal.UserID == "" {
		return Trade{}, ErrUnauthorized
	}
	if s.trades == nil {
		return Trade{}, fmt.Errorf("trade repository not configured")
	}

	existing, err := s.trades.GetTrade(ctx, params.TradeID)
	if err != nil {
		return Trade{}, mapTradeRepoError(err)
	}

	input := normalizeTradeInput(params.Input)
	vErr := validateTradeInput(input)
	if vErr.HasErrors() {
		return Trade{}, vErr
	}

	updated := existing
	updated.Name = input.Name
	updated.Color = input.Color
	updated.DisplayOrder = input.DisplayOrder
	updated.UpdatedAt = s.now()

	persisted, err := s.trades.UpdateTrade(ctx, updated)
	if err != nil {
		return Trade{}, mapTradeRepoError(err)
	}
	return persisted, nil
}

// DeleteTrade removes a trade master entry unless tasks still reference it.
func (s *TradeService) DeleteTrade(ctx context.Context, principal Principal, tradeID string) error {
	if s == nil {
		return fmt.Errorf("TradeService is nil")
	}
	if principal.UserID == "" {
		return ErrUnauthorized
	}
	if s.trades == nil {
		return fmt.Errorf("trade repository not configured")
	}

	if s.usage != nil {
		count, err := s.usage.CountTasksByTrade(ctx, tradeID)
		if err != nil {
			return mapTradeRepoError(err)
		}
		if count > 0 {
			return ErrTradeInUse
		}
	}

	if err := s.trades.DeleteTrade(ctx, tradeID); err != nil {
		return mapTradeRepoError(err)
	}
	return nil
}

// ListTrades returns the trade master list in display order.
func (s *TradeService) ListTrades(ctx context.Context, principal Principal) ([]Trade, error) {
	if s == nil {
		return nil, fmt.Errorf("TradeService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	if s.trades == nil {
		return nil, nil
	}

	trades, err := s.trades.ListTrades(ctx)
	if err != nil {
		return nil, mapTradeRepoError(err)
	}

	ordered := make([]Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].DisplayOrder == ordered[j].DisplayOrder {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})
	return ordered, nil
}

func normalizeTradeInput(input TradeInput) TradeInput {
	return TradeInput{
		Name:         strings.TrimSpace(input.Name),
		Color:        strings.TrimSpace(input.Color),
		DisplayOrder: input.DisplayOrder,
	}
}

func validateTradeInput(input TradeInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	} else if utf8.RuneCountInString(input.Name) > maxTradeNameRunes {
		vErr.add("name", fmt.Sprintf("name must be at most %d characters", maxTradeNameRunes))
	}

	if input.Color == "" {
		vErr.add("color", "color is required")
	} else if !colorPattern.MatchString(input.Color) {
		vErr.add("color", "color must be formatted as #RRGGBB")
	}

	if input.DisplayOrder < 0 {
		vErr.add("display_order", "display order must not be negative")
	}

	return vErr
}

func mapTradeRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		return ErrTradeInUse
	}
	return err
}
