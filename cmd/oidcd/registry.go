package main

import (
	"fmt"
	"sync"

	"github.com/oidcd/oidcd/internal/account"
)

// memoryRegistry is the process's loaded account set, grounded on dex's
// storage/memory backend reduced to exactly what internal/lifetime.Sweep
// and the CLI commands need: named lookup and removal, nothing else (no
// storage.Storage's clients/connectors/refresh-token surface applies here).
type memoryRegistry struct {
	mu       sync.Mutex
	accounts map[string]*account.Account
}

func newMemoryRegistry(accounts []*account.Account) *memoryRegistry {
	r := &memoryRegistry{accounts: make(map[string]*account.Account, len(accounts))}
	for _, a := range accounts {
		r.accounts[a.Name] = a
	}
	return r
}

func (r *memoryRegistry) Accounts() []*account.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*account.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out
}

func (r *memoryRegistry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, name)
}

func (r *memoryRegistry) Get(name string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[name]
	if !ok {
		return nil, fmt.Errorf("no such account %q", name)
	}
	return a, nil
}
