// Property-based tests for the append-only ledger balance chain.
package service

import (
	"testing"

	"pgregory.net/rapid"
)

// ledgerEntry mirrors one immutable wallet_txn row in the simulation.
type ledgerEntry struct {
	amount       int64
	balanceAfter int64
}

// simulateAppend mirrors WalletRepository.Append: read the latest
// balance, write balance + amount.
func simulateAppend(chain []ledgerEntry, amount int64) []ledgerEntry {
	balance := int64(0)
	if len(chain) > 0 {
		balance = chain[len(chain)-1].balanceAfter
	}
	return append(chain, ledgerEntry{amount: amount, balanceAfter: balance + amount})
}

// TestLedgerChainProperty checks that for any sequence of appends the
// final balance equals the sum of all amounts and every entry links to
// its predecessor.
func TestLedgerChainProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		amounts := rapid.SliceOfN(rapid.Int64Range(-100000, 100000), 1, 50).Draw(t, "amounts")

		var chain []ledgerEntry
		for _, a := range amounts {
			chain = simulateAppend(chain, a)
		}

		// Final balance is the sum of all amounts
		var sum int64
		for _, a := range amounts {
			sum += a
		}
		if chain[len(chain)-1].balanceAfter != sum {
			t.Fatalf("final balance mismatch: expected %d, got %d",
				sum, chain[len(chain)-1].balanceAfter)
		}

		// Every entry is the previous balance plus its own amount
		prev := int64(0)
		for i, e := range chain {
			if e.balanceAfter != prev+e.amount {
				t.Fatalf("broken chain at entry %d: prev=%d, amount=%d, balanceAfter=%d",
					i, prev, e.amount, e.balanceAfter)
			}
			prev = e.balanceAfter
		}

		// Appends never rewrite history
		if len(chain) != len(amounts) {
			t.Fatalf("expected %d entries, got %d", len(amounts), len(chain))
		}
	})
}
