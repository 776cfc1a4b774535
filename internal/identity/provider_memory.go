package identity

import (
	"context"
	"sync"

	"passgate/pkg/email"
)

// InMemoryProvider keeps accounts in process, keyed by normalized email.
type InMemoryProvider struct {
	mu      sync.RWMutex
	policy  policy
	byEmail map[string]*account
}

func NewInMemory(opts ...Option) *InMemoryProvider {
	return &InMemoryProvider{
		policy:  newPolicy(opts),
		byEmail: make(map[string]*account),
	}
}

func (p *InMemoryProvider) CreateAccount(_ context.Context, req AccountRequest) (*Account, error) {
	acct, err := p.policy.build(req)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.byEmail[acct.Email]; exists {
		return nil, ErrEmailTaken
	}
	p.byEmail[acct.Email] = acct
	out := acct.Account
	return &out, nil
}

// Authenticate returns the account when the password matches. Only tests
// sign in; registration never authenticates.
func (p *InMemoryProvider) Authenticate(_ context.Context, addr, password string) (*Account, bool) {
	p.mu.RLock()
	acct, ok := p.byEmail[email.Normalize(addr)]
	p.mu.RUnlock()
	if !ok || !VerifyPassword(acct.passwordHash, password) {
		return nil, false
	}
	out := acct.Account
	return &out, true
}

func (p *InMemoryProvider) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byEmail)
}
