// Package store provides account.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/accrual-engine/account"
	"github.com/warp/accrual-engine/accrual"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	summaries    map[string]account.Summary
	accountOrder []string
	transactions map[string][]accrual.Transaction
	payments     map[string][]account.Payment
	statements   map[string][]account.Statement
	agreements   map[string]accrual.Agreement
	recordIDs    map[string]bool
}

func NewMemory() *Memory {
	return &Memory{
		summaries:    make(map[string]account.Summary),
		transactions: make(map[string][]accrual.Transaction),
		payments:     make(map[string][]account.Payment),
		statements:   make(map[string][]account.Statement),
		agreements:   make(map[string]accrual.Agreement),
		recordIDs:    make(map[string]bool),
	}
}

func (m *Memory) Accounts(_ context.Context) ([]account.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]account.Summary, 0, len(m.accountOrder))
	for _, id := range m.accountOrder {
		out = append(out, m.summaries[id])
	}
	return out, nil
}

func (m *Memory) Summary(_ context.Context, accountID string) (account.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.summaries[accountID]
	if !ok {
		return account.Summary{}, account.ErrAccountNotFound
	}
	return s, nil
}

func (m *Memory) Transactions(_ context.Context, accountID string) ([]accrual.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.summaries[accountID]; !ok {
		return nil, account.ErrAccountNotFound
	}
	out := make([]accrual.Transaction, len(m.transactions[accountID]))
	copy(out, m.transactions[accountID])
	return out, nil
}

func (m *Memory) AppendTransactions(_ context.Context, accountID string, txs []accrual.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.summaries[accountID]; !ok {
		return account.ErrAccountNotFound
	}
	// Check all IDs first so the batch is all-or-nothing. A batch can
	// also collide with itself, so track IDs seen within it.
	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if tx.ID == "" {
			continue
		}
		if m.recordIDs["tx:"+tx.ID] || seen[tx.ID] {
			return account.ErrDuplicateRecord
		}
		seen[tx.ID] = true
	}
	for _, tx := range txs {
		m.transactions[accountID] = append(m.transactions[accountID], tx)
		if tx.ID != "" {
			m.recordIDs["tx:"+tx.ID] = true
		}
	}
	return nil
}

func (m *Memory) Payments(_ context.Context, accountID string) ([]account.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.summaries[accountID]; !ok {
		return nil, account.ErrAccountNotFound
	}
	out := make([]account.Payment, len(m.payments[accountID]))
	copy(out, m.payments[accountID])
	return out, nil
}

func (m *Memory) AppendPayments(_ context.Context, accountID string, payments []account.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.summaries[accountID]; !ok {
		return account.ErrAccountNotFound
	}
	seen := make(map[string]bool, len(payments))
	for _, p := range payments {
		if p.ID == "" {
			continue
		}
		if m.recordIDs["pay:"+p.ID] || seen[p.ID] {
			return account.ErrDuplicateRecord
		}
		seen[p.ID] = true
	}
	for _, p := range payments {
		m.payments[accountID] = append(m.payments[accountID], p)
		if p.ID != "" {
			m.recordIDs["pay:"+p.ID] = true
		}
	}
	return nil
}

func (m *Memory) Statements(_ context.Context, accountID string) ([]account.Statement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.summaries[accountID]; !ok {
		return nil, account.ErrAccountNotFound
	}
	out := make([]account.Statement, len(m.statements[accountID]))
	copy(out, m.statements[accountID])
	return out, nil
}

func (m *Memory) Agreement(_ context.Context, accountID string) (accrual.Agreement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.summaries[accountID]; !ok {
		return accrual.Agreement{}, account.ErrAccountNotFound
	}
	if a, ok := m.agreements[accountID]; ok {
		return a.Normalize(), nil
	}
	return accrual.Agreement{}.Normalize(), nil
}

func (m *Memory) PutAgreement(_ context.Context, accountID string, agreement accrual.Agreement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.summaries[accountID]; !ok {
		return account.ErrAccountNotFound
	}
	m.agreements[accountID] = agreement
	return nil
}

func (m *Memory) PutAccount(_ context.Context, summary account.Summary, statements []account.Statement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.summaries[summary.AccountID]; !ok {
		m.accountOrder = append(m.accountOrder, summary.AccountID)
	}
	m.summaries[summary.AccountID] = summary
	m.statements[summary.AccountID] = append([]account.Statement(nil), statements...)
	return nil
}

// Reset drops everything. Scenario loading uses this; production stores
// have no equivalent.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = make(map[string]account.Summary)
	m.accountOrder = nil
	m.transactions = make(map[string][]accrual.Transaction)
	m.payments = make(map[string][]account.Payment)
	m.statements = make(map[string][]account.Statement)
	m.agreements = make(map[string]accrual.Agreement)
	m.recordIDs = make(map[string]bool)
}
