// Package credit meters document generation against a user's subscription plan.
package credit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ndavault/internal/config"
	"ndavault/internal/repository"
)

var (
	ErrCreditsExhausted = errors.New("contract credits exhausted")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidCost      = errors.New("cost must be positive")
)

// Mode tells how a reservation was granted and therefore how to undo it.
type Mode int

const (
	// ModeUnlimited grants without touching the balance.
	ModeUnlimited Mode = iota + 1
	// ModeLimited debited the balance and must be refunded on failure.
	ModeLimited
)

func (m Mode) String() string {
	switch m {
	case ModeUnlimited:
		return "unlimited"
	case ModeLimited:
		return "limited"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Reservation is the effect of a granted Reserve call.
type Reservation struct {
	UserID    string
	Tier      string
	Cost      int
	Mode      Mode
	Remaining int
}

// Ledger reserves and refunds credits. The balance is only changed through the
// repository's conditional decrement and its increment.
type Ledger struct {
	users         repository.UserRepository
	unlimitedTier string
	meteredTier   string
	logger        *slog.Logger
}

// NewLedger builds a Ledger for the configured plan tiers.
func NewLedger(users repository.UserRepository, cfg config.CreditConfig, logger *slog.Logger) *Ledger {
	return &Ledger{
		users:         users,
		unlimitedTier: cfg.UnlimitedTier,
		meteredTier:   cfg.MeteredTier,
		logger:        logger.With(slog.String("component", "credit_ledger")),
	}
}

// Reserve grants cost credits to userID.
// Unlimited-tier users are granted without a balance change. Metered-tier users
// are debited atomically when their balance is at least cost. Everyone else,
// and metered users short on credits, get ErrCreditsExhausted.
func (l *Ledger) Reserve(ctx context.Context, userID string, cost int) (Reservation, error) {
	if cost <= 0 {
		return Reservation{}, ErrInvalidCost
	}

	u, err := l.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Reservation{}, ErrUserNotFound
		}
		return Reservation{}, fmt.Errorf("load user: %w", err)
	}

	switch u.PlanTier {
	case l.unlimitedTier:
		return Reservation{UserID: userID, Tier: u.PlanTier, Cost: cost, Mode: ModeUnlimited}, nil
	case l.meteredTier:
		remaining, ok, err := l.users.DecrementCredits(ctx, userID, l.meteredTier, cost)
		if err != nil {
			return Reservation{}, fmt.Errorf("reserve credits: %w", err)
		}
		if !ok {
			l.logger.InfoContext(ctx, "credit reservation denied",
				slog.String("user_id", userID),
				slog.Int("cost", cost),
			)
			return Reservation{}, ErrCreditsExhausted
		}
		return Reservation{UserID: userID, Tier: l.meteredTier, Cost: cost, Mode: ModeLimited, Remaining: remaining}, nil
	default:
		return Reservation{}, ErrCreditsExhausted
	}
}

// Rollback refunds a reservation. It must be called at most once per
// reservation; calling it twice refunds twice.
func (l *Ledger) Rollback(ctx context.Context, r Reservation) error {
	switch r.Mode {
	case ModeUnlimited:
		return nil
	case ModeLimited:
		if err := l.users.IncrementCredits(ctx, r.UserID, r.Tier, r.Cost); err != nil {
			return fmt.Errorf("rollback credits: %w", err)
		}
		l.logger.InfoContext(ctx, "credit reservation rolled back",
			slog.String("user_id", r.UserID),
			slog.Int("cost", r.Cost),
		)
		return nil
	default:
		return fmt.Errorf("rollback credits: unknown reservation mode %s", r.Mode)
	}
}
