// Package ledger derives running party balances from two append-only event
// streams: billing documents on one side, payments on the other. Balances
// are pure sums, so the fold is order-independent by construction.
package ledger

import (
	"sort"
	"strings"
)

// partyKey collapses names differing only in case into one party. The
// phone number is compared verbatim: "555" and "+91555" stay two parties.
func partyKey(name, phone string) string {
	return strings.ToLower(name) + "-" + phone
}

// ComputeParties folds documents and payments into one balance row per
// (name, phone) pair. Parties seen only in payments or only in documents
// are valid; the missing side stays zero. Rows come back ordered by most
// recent activity first.
func ComputeParties(documents, payments []Event) []PartyBalance {
	byKey := make(map[string]*PartyBalance)
	var order []string

	fold := func(events []Event, billed bool) {
		for _, ev := range events {
			key := partyKey(ev.PartyName, ev.PhoneNumber)
			pb, ok := byKey[key]
			if !ok {
				pb = &PartyBalance{Name: ev.PartyName, PhoneNumber: ev.PhoneNumber}
				byKey[key] = pb
				order = append(order, key)
			}
			if billed {
				pb.TotalBilled += ev.Amount
			} else {
				pb.TotalPaid += ev.Amount
			}
			pb.Balance = pb.TotalBilled - pb.TotalPaid
			if ev.Date.After(pb.LastTransactionDate) {
				pb.LastTransactionDate = ev.Date
			}
		}
	}
	fold(documents, true)
	fold(payments, false)

	out := make([]PartyBalance, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastTransactionDate.After(out[j].LastTransactionDate)
	})
	return out
}

// BalanceFor returns a single party's balance, 0 when the party has no
// events at all.
func BalanceFor(documents, payments []Event, name, phone string) float64 {
	key := partyKey(name, phone)
	for _, pb := range ComputeParties(documents, payments) {
		if partyKey(pb.Name, pb.PhoneNumber) == key {
			return pb.Balance
		}
	}
	return 0
}
