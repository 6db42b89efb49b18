package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"playbook/internal/domain/role"
	"playbook/internal/domain/seat"
)

// GenerateAccessCodesInput requests a batch of codes.
type GenerateAccessCodesInput struct {
	ActorID string
	Count   int
}

// AccessCodeDeps holds dependencies for seat and code administration.
type AccessCodeDeps struct {
	Roles RoleStore
	Seats SeatStore
	Now   func() time.Time
}

// ExecuteGenerateAccessCodes creates Count new unclaimed codes.
// PRE: ActorID holds the admin role
// POST: role.ErrAccessDenied with nothing written for other callers
func ExecuteGenerateAccessCodes(ctx context.Context, input GenerateAccessCodesInput, deps AccessCodeDeps) ([]seat.AccessCode, error) {
	if err := RequireRole(ctx, deps.Roles, input.ActorID, role.RoleAdmin); err != nil {
		return nil, err
	}
	codes, err := seat.GenerateBatch(input.Count, deps.Now())
	if err != nil {
		return nil, err
	}
	if err := deps.Seats.InsertCodes(ctx, codes); err != nil {
		return nil, fmt.Errorf("store codes: %w", err)
	}
	slog.Info("admin_event", "event", "codes_generated", "actor", input.ActorID, "count", len(codes))
	return codes, nil
}

// SetSeatTotalInput changes the seat pool.
type SetSeatTotalInput struct {
	ActorID string
	Total   int
}

// ExecuteSetSeatTotal resizes the seat pool.
// PRE: ActorID holds the admin role
// POST: seat.ErrInvalidTotal if Total is below the claimed count
func ExecuteSetSeatTotal(ctx context.Context, input SetSeatTotalInput, deps AccessCodeDeps) error {
	if err := RequireRole(ctx, deps.Roles, input.ActorID, role.RoleAdmin); err != nil {
		return err
	}
	if err := deps.Seats.SetTotal(ctx, input.Total); err != nil {
		return err
	}
	slog.Info("admin_event", "event", "seats_resized", "actor", input.ActorID, "total", input.Total)
	return nil
}
