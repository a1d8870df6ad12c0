package ledger

// Balance is the outcome of reconciling a booking total against its ledger.
type Balance struct {
	TotalCents     int64
	CollectedCents int64
	BalanceCents   int64
	// Capped is set when the computed balance exceeded the total and was clamped.
	Capped bool
}

// Reconcile computes max(total - collected, 0), never above total.
func Reconcile(totalCents int64, entries []Entry) Balance {
	var collected int64
	for _, e := range entries {
		if e.Counts() {
			collected += e.NetCents()
		}
	}

	b := Balance{TotalCents: totalCents, CollectedCents: collected}
	remaining := totalCents - collected
	switch {
	case remaining < 0:
		b.BalanceCents = 0
	case remaining > totalCents:
		b.BalanceCents = totalCents
		b.Capped = true
	default:
		b.BalanceCents = remaining
	}
	return b
}
