package mockidp

// Snapshot is a read-only view of service state for tests and tooling.
type Snapshot struct {
	Language      string
	RecoveryEmail string
	Proofs        []string
	Transactions  map[string]string
}

// Inspect returns a copy of the service state.
func (s *Server) Inspect() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := make(map[string]string, len(s.transactions))
	for id, tx := range s.transactions {
		txs[id] = tx.status
	}
	return Snapshot{
		Language:      s.language,
		RecoveryEmail: s.recoveryEmail,
		Proofs:        append([]string(nil), s.proofs...),
		Transactions:  txs,
	}
}
