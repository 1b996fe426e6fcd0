package ledger

// SeedBalance is a test helper that sets a wallet balance (in milli-sats)
// when using the in-memory ledger.
func SeedBalance(l Ledger, walletID string, msat int64) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if w, ok := mem.wallets[walletID]; ok {
			w.BalanceMsat = msat
		}
	}
}

// RecordEntry appends a raw entry to a wallet of the in-memory ledger, for
// tests that need entries the zap flow never produces (missing metadata,
// foreign tags).
func RecordEntry(l Ledger, e Entry) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.entries[e.WalletID] = append(mem.entries[e.WalletID], e)
	}
}
