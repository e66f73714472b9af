package limits

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/model"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func usage(id, code string, usedOut, balance int64) model.UsageRecord {
	return model.UsageRecord{
		Card: model.Card{
			ID:       id,
			Masked:   "****" + id,
			Bank:     code,
			Currency: "CUP",
			Balance:  d(balance),
		},
		UsedOut: d(usedOut),
		Balance: d(balance),
	}
}

func testPolicy() model.LimitPolicy {
	return model.NewLimitPolicy(d(120000), nil, []string{"BPA"}, []string{"MITRANSFER"})
}

func wantDec(t *testing.T, field string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Fatalf("%s = %s, want %d", field, got, want)
	}
}

func TestClassify_StatusAndCapacities(t *testing.T) {
	rows := []model.UsageRecord{
		usage("1", "BANDEC", 121000, -500),
		usage("2", "BPA", 130000, 2000),
		usage("3", "MITRANSFER", 50000, 20000),
	}

	res := Classify(rows, testPolicy())
	if len(res.Cards) != 3 {
		t.Fatalf("len(Cards) = %d, want 3", len(res.Cards))
	}

	bandec, bpa, wallet := res.Cards[0], res.Cards[1], res.Cards[2]

	if bandec.Status != model.StatusBlocked {
		t.Fatalf("BANDEC status = %s, want BLOCKED", bandec.Status)
	}
	wantDec(t, "BANDEC remaining", bandec.Remaining, 0)
	wantDec(t, "BANDEC deposit cap", bandec.DepositCap, 0)

	if bpa.Status != model.StatusExtendable {
		t.Fatalf("BPA status = %s, want EXTENDABLE", bpa.Status)
	}
	wantDec(t, "BPA remaining", bpa.Remaining, 0)
	wantDec(t, "BPA deposit cap", bpa.DepositCap, 0)

	if wallet.Status != model.StatusOK || !wallet.IsWallet {
		t.Fatalf("wallet status = %s, IsWallet = %v, want OK/true", wallet.Status, wallet.IsWallet)
	}
	wantDec(t, "wallet remaining", wallet.Remaining, 70000)
	wantDec(t, "wallet deposit cap", wallet.DepositCap, 50000)

	if res.Totals.Blocked != 1 || res.Totals.Extendable != 1 {
		t.Fatalf("totals blocked/extendable = %d/%d, want 1/1", res.Totals.Blocked, res.Totals.Extendable)
	}
	wantDec(t, "total remaining", res.Totals.Remaining, 70000)
}

func TestClassify_PreservesInputOrder(t *testing.T) {
	rows := []model.UsageRecord{
		usage("a", "OTRO", 0, 0),
		usage("b", "BANDEC", 0, 0),
		usage("c", "BPA", 0, 0),
	}
	res := Classify(rows, testPolicy())
	ids := []string{res.Cards[0].Card.ID, res.Cards[1].Card.ID, res.Cards[2].Card.ID}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
}

func TestClassify_OverrideCap(t *testing.T) {
	policy := model.NewLimitPolicy(d(120000), map[string]decimal.Decimal{"Banco Metropolitano": d(200000)}, nil, nil)
	c := ClassifyCard(usage("1", "METRO", 150000, 10000), policy)

	if c.Status != model.StatusOK {
		t.Fatalf("status = %s, want OK", c.Status)
	}
	wantDec(t, "cap", c.Cap, 200000)
	wantDec(t, "remaining", c.Remaining, 50000)
	wantDec(t, "deposit cap", c.DepositCap, 40000)
}

func TestClassify_ExactlyAtCapIsNotOK(t *testing.T) {
	c := ClassifyCard(usage("1", "BANDEC", 120000, 0), testPolicy())
	if c.Status != model.StatusBlocked {
		t.Fatalf("status = %s, want BLOCKED", c.Status)
	}
}

func TestClassify_Empty(t *testing.T) {
	res := Classify(nil, testPolicy())
	if len(res.Cards) != 0 {
		t.Fatalf("len(Cards) = %d, want 0", len(res.Cards))
	}
	wantDec(t, "total remaining", res.Totals.Remaining, 0)
}

func TestSortByPreference(t *testing.T) {
	cards := Classify([]model.UsageRecord{
		usage("1", "OTRO", 0, 0),
		usage("2", "MITRANSFER", 0, 0),
		usage("3", "BANDEC", 0, 0),
	}, testPolicy()).Cards

	sorted := SortByPreference(cards, []string{"BANDEC", "MITRANSFER"})

	banks := make([]string, len(sorted))
	for i, c := range sorted {
		banks[i] = c.Bank()
	}
	if want := []string{"BANDEC", "MITRANSFER", "OTRO"}; !reflect.DeepEqual(banks, want) {
		t.Fatalf("banks = %v, want %v", banks, want)
	}
	if cards[0].Bank() != "OTRO" {
		t.Fatalf("input slice reordered: first bank = %s", cards[0].Bank())
	}
}

func TestSortByPreference_StableWithinBankAndUnlisted(t *testing.T) {
	cards := Classify([]model.UsageRecord{
		usage("x1", "ZETA", 0, 0),
		usage("b1", "BPA", 0, 0),
		usage("x2", "ALFA", 0, 0),
		usage("b2", "BPA", 0, 0),
		usage("m1", "METRO", 0, 0),
	}, testPolicy()).Cards

	sorted := SortByPreference(cards, []string{"metro", "Banco Popular de Ahorro"})

	ids := make([]string, len(sorted))
	for i, c := range sorted {
		ids[i] = c.Card.ID
	}
	if want := []string{"m1", "b1", "b2", "x1", "x2"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
}
