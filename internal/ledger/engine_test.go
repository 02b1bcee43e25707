package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2025, time.March, n, 0, 0, 0, 0, time.UTC)
}

func TestComputePartiesBalances(t *testing.T) {
	documents := []Event{
		{PartyName: "Alice", PhoneNumber: "555", Amount: 1000, Date: day(1)},
	}
	payments := []Event{
		{PartyName: "Alice", PhoneNumber: "555", Amount: 400, Date: day(2)},
	}

	parties := ComputeParties(documents, payments)
	require.Len(t, parties, 1)
	assert.Equal(t, "Alice", parties[0].Name)
	assert.InDelta(t, 1000.0, parties[0].TotalBilled, 1e-9)
	assert.InDelta(t, 400.0, parties[0].TotalPaid, 1e-9)
	assert.InDelta(t, 600.0, parties[0].Balance, 1e-9)
	assert.True(t, parties[0].LastTransactionDate.Equal(day(2)))
}

func TestComputePartiesMergesCaseInsensitiveNames(t *testing.T) {
	documents := []Event{
		{PartyName: "bob", PhoneNumber: "777", Amount: 200, Date: day(1)},
		{PartyName: "Bob", PhoneNumber: "777", Amount: 300, Date: day(3)},
	}

	parties := ComputeParties(documents, nil)
	require.Len(t, parties, 1)
	// First occurrence wins for display.
	assert.Equal(t, "bob", parties[0].Name)
	assert.InDelta(t, 500.0, parties[0].TotalBilled, 1e-9)
	assert.True(t, parties[0].LastTransactionDate.Equal(day(3)))
}

func TestComputePartiesKeepsDistinctPhones(t *testing.T) {
	documents := []Event{
		{PartyName: "Cara", PhoneNumber: "555", Amount: 100, Date: day(1)},
		{PartyName: "Cara", PhoneNumber: "+91555", Amount: 100, Date: day(1)},
	}

	parties := ComputeParties(documents, nil)
	assert.Len(t, parties, 2)
}

func TestComputePartiesPaymentsOnlyParty(t *testing.T) {
	payments := []Event{
		{PartyName: "Dev", PhoneNumber: "888", Amount: 250, Date: day(5)},
	}

	parties := ComputeParties(nil, payments)
	require.Len(t, parties, 1)
	assert.InDelta(t, 0.0, parties[0].TotalBilled, 1e-9)
	assert.InDelta(t, -250.0, parties[0].Balance, 1e-9)
}

func TestComputePartiesSortedByRecentActivity(t *testing.T) {
	documents := []Event{
		{PartyName: "Old", PhoneNumber: "1", Amount: 10, Date: day(1)},
		{PartyName: "New", PhoneNumber: "2", Amount: 10, Date: day(9)},
		{PartyName: "Mid", PhoneNumber: "3", Amount: 10, Date: day(5)},
	}

	parties := ComputeParties(documents, nil)
	require.Len(t, parties, 3)
	assert.Equal(t, "New", parties[0].Name)
	assert.Equal(t, "Mid", parties[1].Name)
	assert.Equal(t, "Old", parties[2].Name)
}

func TestComputePartiesOrderIndependent(t *testing.T) {
	documents := []Event{
		{PartyName: "Alice", PhoneNumber: "555", Amount: 100, Date: day(1)},
		{PartyName: "Alice", PhoneNumber: "555", Amount: 250, Date: day(2)},
		{PartyName: "bob", PhoneNumber: "777", Amount: 900, Date: day(3)},
	}
	payments := []Event{
		{PartyName: "alice", PhoneNumber: "555", Amount: 50, Date: day(4)},
		{PartyName: "Bob", PhoneNumber: "777", Amount: 400, Date: day(5)},
		{PartyName: "Bob", PhoneNumber: "777", Amount: 100, Date: day(6)},
	}

	want := map[string]float64{}
	for _, pb := range ComputeParties(documents, payments) {
		want[partyKey(pb.Name, pb.PhoneNumber)] = pb.Balance
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		d := append([]Event(nil), documents...)
		p := append([]Event(nil), payments...)
		rng.Shuffle(len(d), func(a, b int) { d[a], d[b] = d[b], d[a] })
		rng.Shuffle(len(p), func(a, b int) { p[a], p[b] = p[b], p[a] })

		got := map[string]float64{}
		for _, pb := range ComputeParties(d, p) {
			got[partyKey(pb.Name, pb.PhoneNumber)] = pb.Balance
		}
		assert.InDeltaMapValues(t, want, got, 1e-9)
	}
}

func TestBalanceFor(t *testing.T) {
	documents := []Event{
		{PartyName: "Alice", PhoneNumber: "555", Amount: 1000, Date: day(1)},
	}
	payments := []Event{
		{PartyName: "ALICE", PhoneNumber: "555", Amount: 400, Date: day(2)},
	}

	assert.InDelta(t, 600.0, BalanceFor(documents, payments, "alice", "555"), 1e-9)
	assert.Zero(t, BalanceFor(documents, payments, "alice", "556"))
	assert.Zero(t, BalanceFor(documents, payments, "nobody", "555"))
}
