package orchestrators

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"playbook/internal/adapters/identity"
	"playbook/internal/domain/account"
	"playbook/internal/domain/email"
	"playbook/internal/domain/exercise"
	"playbook/internal/domain/outbox"
	"playbook/internal/domain/profile"
	"playbook/internal/domain/role"
	"playbook/internal/domain/seat"
	"playbook/internal/domain/survey"
)

var testTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testNow() time.Time { return testTime }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
}

// --- profiles ---

type mockProfiles struct {
	mu       sync.Mutex
	profiles map[string]profile.Profile
	getErr   error
	addErr   error
}

func newMockProfiles(ps ...profile.Profile) *mockProfiles {
	m := &mockProfiles{profiles: make(map[string]profile.Profile)}
	for _, p := range ps {
		m.profiles[p.UserID] = p
	}
	return m
}

func (m *mockProfiles) Get(_ context.Context, userID string) (profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return profile.Profile{}, m.getErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	p.ModulesCompleted = append([]string(nil), p.ModulesCompleted...)
	return p, nil
}

func (m *mockProfiles) Create(_ context.Context, p profile.Profile) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.UserID]; ok {
		return false, nil
	}
	m.profiles[p.UserID] = p
	return true, nil
}

func (m *mockProfiles) FillNames(_ context.Context, userID, first, last string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[userID]
	if p.FirstName == "" {
		p.FirstName = first
	}
	if p.LastName == "" {
		p.LastName = last
	}
	m.profiles[userID] = p
	return nil
}

func (m *mockProfiles) AddCompleted(_ context.Context, userID, key string, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return false, m.addErr
	}
	p := m.profiles[userID]
	if p.HasCompleted(key) {
		return false, nil
	}
	p.ModulesCompleted = append(p.ModulesCompleted, key)
	m.profiles[userID] = p
	return true, nil
}

// --- submissions ---

// mockSubmissions records the completion with each submission, keeping
// neither when either write fails.
type mockSubmissions struct {
	saved    []exercise.Submission
	err      error
	profiles *mockProfiles
}

func (m *mockSubmissions) Save(ctx context.Context, sub exercise.Submission) error {
	if m.err != nil {
		return m.err
	}
	if m.profiles != nil {
		if _, err := m.profiles.AddCompleted(ctx, sub.UserID, sub.Exercise, sub.CreatedAt); err != nil {
			return err
		}
	}
	m.saved = append(m.saved, sub)
	return nil
}

// --- surveys ---

type mockSurveys struct {
	profiles *mockProfiles
	taken    map[string]bool
	err      error
}

func (m *mockSurveys) Submit(_ context.Context, r survey.Response) error {
	if m.err != nil {
		return m.err
	}
	key := r.UserID + "/" + r.Type
	if m.taken[key] {
		return survey.ErrAlreadySubmitted
	}
	from, to, _ := survey.Transition(r.Type)
	m.profiles.mu.Lock()
	defer m.profiles.mu.Unlock()
	p := m.profiles.profiles[r.UserID]
	if p.Status != from {
		return profile.ErrInvalidTransition
	}
	p.Status = to
	m.profiles.profiles[r.UserID] = p
	m.taken[key] = true
	return nil
}

// --- mail and outbox ---

type mockMailer struct {
	sent []email.Message
	err  error
}

func (m *mockMailer) Send(_ context.Context, msg email.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "msg-1", nil
}

type mockOutbox struct {
	entries map[string]outbox.Entry
}

func newMockOutbox(es ...outbox.Entry) *mockOutbox {
	m := &mockOutbox{entries: make(map[string]outbox.Entry)}
	for _, e := range es {
		m.entries[e.ID] = e
	}
	return m
}

func (m *mockOutbox) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, outbox.ErrNotFound
	}
	return e, nil
}

func (m *mockOutbox) Save(_ context.Context, e outbox.Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutbox) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- seats and roles ---

type mockSeats struct {
	inv      seat.Inventory
	codes    map[string]seat.AccessCode
	calls    int
	accounts *mockAccounts
	profiles *mockProfiles
}

func newMockSeats(total int, codes ...string) *mockSeats {
	m := &mockSeats{
		inv:      seat.Inventory{TotalSeats: total},
		codes:    make(map[string]seat.AccessCode),
		accounts: newMockAccounts(),
		profiles: newMockProfiles(),
	}
	for _, c := range codes {
		m.codes[c] = seat.AccessCode{Code: c}
	}
	return m
}

func (m *mockSeats) ClaimSeat(context.Context) (bool, error) {
	m.calls++
	if m.inv.ClaimedSeats >= m.inv.TotalSeats {
		return false, nil
	}
	m.inv.ClaimedSeats++
	return true, nil
}

func (m *mockSeats) SetTotal(_ context.Context, total int) error {
	m.calls++
	if total < m.inv.ClaimedSeats {
		return seat.ErrInvalidTotal
	}
	m.inv.TotalSeats = total
	return nil
}

func (m *mockSeats) InsertCodes(_ context.Context, codes []seat.AccessCode) error {
	m.calls++
	for _, c := range codes {
		m.codes[c.Code] = c
	}
	return nil
}

func (m *mockSeats) GetCode(_ context.Context, code string) (seat.AccessCode, error) {
	c, ok := m.codes[code]
	if !ok {
		return seat.AccessCode{}, errors.New("not found")
	}
	return c, nil
}

func (m *mockSeats) Register(ctx context.Context, acct account.Account, p profile.Profile, code string, now time.Time) error {
	if _, err := m.accounts.GetByEmail(ctx, acct.Email); err == nil {
		return account.ErrEmailTaken
	}
	c, ok := m.codes[code]
	if !ok || c.Claimed {
		return seat.ErrCodeInvalid
	}
	if m.inv.ClaimedSeats >= m.inv.TotalSeats {
		return seat.ErrNoSeats
	}
	_ = c.Claim(acct.ID, now)
	m.codes[code] = c
	m.inv.ClaimedSeats++
	m.accounts.byID[acct.ID] = acct
	p.AccessCodeUsed = code
	_, err := m.profiles.Create(ctx, p)
	return err
}

type mockRoles struct {
	grants map[string]bool
	checks int
}

func newMockRoles(adminIDs ...string) *mockRoles {
	m := &mockRoles{grants: make(map[string]bool)}
	for _, id := range adminIDs {
		m.grants[id+"/"+role.RoleAdmin] = true
	}
	return m
}

func (m *mockRoles) HasRole(_ context.Context, userID, r string) (bool, error) {
	m.checks++
	return m.grants[userID+"/"+r], nil
}

func (m *mockRoles) Grant(_ context.Context, g role.Grant) error {
	m.grants[g.UserID+"/"+g.Role] = true
	return nil
}

func (m *mockRoles) Revoke(_ context.Context, userID, r string) error {
	delete(m.grants, userID+"/"+r)
	return nil
}

// --- identity ---

type mockAccounts struct {
	byID map[string]account.Account
}

func newMockAccounts(as ...account.Account) *mockAccounts {
	m := &mockAccounts{byID: make(map[string]account.Account)}
	for _, a := range as {
		m.byID[a.ID] = a
	}
	return m
}

func (m *mockAccounts) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

func (m *mockAccounts) GetByEmail(_ context.Context, addr string) (account.Account, error) {
	for _, a := range m.byID {
		if a.Email == account.NormalizeEmail(addr) {
			return a, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

type mockIdentity struct {
	issued   []string
	issueErr error
	accounts *mockAccounts
}

func (m *mockIdentity) IssuePasswordless(_ context.Context, addr, first, last string) (identity.Grant, error) {
	if m.issueErr != nil {
		return identity.Grant{}, m.issueErr
	}
	m.issued = append(m.issued, addr+"|"+first+"|"+last)
	return identity.Grant{Token: "token", AccountID: "acct-" + addr}, nil
}

func (m *mockIdentity) NewPasswordAccount(addr, _, first, last string) (account.Account, error) {
	a := account.Account{ID: "acct-" + addr, Email: account.NormalizeEmail(addr), FirstName: first, LastName: last}
	if err := a.Validate(); err != nil {
		return account.Account{}, err
	}
	return a, nil
}

func (m *mockIdentity) SignIn(ctx context.Context, addr, password string) (account.Account, error) {
	a, err := m.accounts.GetByEmail(ctx, addr)
	if err != nil || password != "correct horse battery" {
		return account.Account{}, account.ErrWrongPassword
	}
	return a, nil
}
