package seat

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
)

// DefaultTotalSeats is the seat pool size when none is configured.
const DefaultTotalSeats = 500

// Access code shape.
const (
	CodeLength   = 8
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	MaxBatchSize = 1000
)

// Domain errors
var (
	ErrCodeInvalid    = errors.New("Code invalid or already claimed.")
	ErrNoSeats        = errors.New("all seats have been claimed")
	ErrInvalidTotal   = errors.New("total seats cannot be less than claimed seats")
	ErrInvalidBatch   = errors.New("batch size must be between 1 and 1000")
	ErrEmptyCode      = errors.New("access code is required")
	ErrAlreadyClaimed = errors.New("access code is already claimed")
)

// Inventory is the single seat counter for the activation.
type Inventory struct {
	TotalSeats   int
	ClaimedSeats int
}

// Validate checks the counter is consistent.
// PRE: Inventory is populated
// POST: Returns nil if 0 <= claimed <= total
func (i Inventory) Validate() error {
	if i.TotalSeats < 0 || i.ClaimedSeats < 0 || i.ClaimedSeats > i.TotalSeats {
		return ErrInvalidTotal
	}
	return nil
}

// Remaining returns how many seats are still open.
func (i Inventory) Remaining() int {
	if r := i.TotalSeats - i.ClaimedSeats; r > 0 {
		return r
	}
	return 0
}

// AccessCode is a single-use registration code.
type AccessCode struct {
	Code      string
	Claimed   bool
	ClaimedBy string
	ClaimedAt time.Time
	CreatedAt time.Time
}

// Claim marks the code as used by userID.
// PRE: code is unclaimed
// POST: Claimed is true, ClaimedBy and ClaimedAt set
func (c *AccessCode) Claim(userID string, now time.Time) error {
	if c.Claimed {
		return ErrAlreadyClaimed
	}
	c.Claimed = true
	c.ClaimedBy = userID
	c.ClaimedAt = now
	return nil
}

// NormalizeCode upper-cases and trims a user-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GenerateCode returns a random code from an alphabet without look-alike characters.
// POST: len(code) == CodeLength
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// GenerateBatch returns n distinct codes.
// PRE: 1 <= n <= MaxBatchSize
// POST: Returns n unique unclaimed codes stamped with now
func GenerateBatch(n int, now time.Time) ([]AccessCode, error) {
	if n < 1 || n > MaxBatchSize {
		return nil, ErrInvalidBatch
	}
	seen := make(map[string]bool, n)
	codes := make([]AccessCode, 0, n)
	for len(codes) < n {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, AccessCode{Code: code, CreatedAt: now})
	}
	return codes, nil
}
