package projections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playbook/internal/domain/certificate"
	"playbook/internal/domain/profile"
)

// ErrCertificateLocked is returned before the post survey is complete.
var ErrCertificateLocked = errors.New("finish every exercise and the closing pulse to unlock your certificate")

// GetCertificateDeps holds dependencies for the certificate projection.
type GetCertificateDeps struct {
	Profiles ProfileReader
	Accounts AccountReader
	Now      func() time.Time
}

// QueryGetCertificate builds certificate content for a finished participant.
// PRE: none
// POST: ErrCertificateLocked unless status is modules_complete
func QueryGetCertificate(ctx context.Context, userID string, deps GetCertificateDeps) (certificate.Content, error) {
	p, err := deps.Profiles.Get(ctx, userID)
	if err != nil {
		return certificate.Content{}, fmt.Errorf("load profile: %w", err)
	}
	if p.Status != profile.StatusModulesComplete {
		return certificate.Content{}, ErrCertificateLocked
	}
	acct, err := deps.Accounts.GetByID(ctx, userID)
	if err != nil {
		return certificate.Content{}, fmt.Errorf("load account: %w", err)
	}
	name := certificate.DisplayName(p.FirstName, p.LastName, acct.Email)
	return certificate.New(name, deps.Now())
}
