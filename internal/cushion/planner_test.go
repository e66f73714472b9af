package cushion

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func params() Params {
	return Params{
		CushionTarget:  d("50000"),
		SellRate:       d("320"),
		SellFeePct:     decimal.Zero,
		FXMarginPct:    decimal.Zero,
		MinSaleForeign: d("20"),
		MinKeepForeign: d("100"),
	}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Fatalf("%s = %s, want %s", field, got, want)
	}
}

func mustPlan(t *testing.T, in Input, p Params) model.CushionPlan {
	t.Helper()
	plan, err := Plan(in, p)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	return plan
}

func TestPlan_NoShortfall(t *testing.T) {
	plan := mustPlan(t, Input{Assets: d("100000"), Liabilities: d("20000"), ForeignAvailable: d("300")}, params())

	assertDec(t, "80000", plan.Net, "Net")
	assertDec(t, "0", plan.Shortfall, "Shortfall")
	assertDec(t, "30000", plan.DisposableSurplus, "DisposableSurplus")
	if !plan.SaleNow.IsZero() || !plan.SaleTarget.IsZero() {
		t.Fatalf("sales = %+v / %+v, want none", plan.SaleNow, plan.SaleTarget)
	}
	assertDec(t, "0", plan.RemainingUnallocated, "RemainingUnallocated")
	assertDec(t, "80000", plan.ProjectedNet, "ProjectedNet")
}

func TestPlan_ShortfallCoveredNow(t *testing.T) {
	plan := mustPlan(t, Input{Assets: d("30000"), Liabilities: d("-10000"), ForeignAvailable: d("500")}, params())

	assertDec(t, "10000", plan.Liabilities, "Liabilities")
	assertDec(t, "20000", plan.Net, "Net")
	assertDec(t, "30000", plan.Shortfall, "Shortfall")
	assertDec(t, "94", plan.SaleTarget.Foreign, "SaleTarget.Foreign")
	assertDec(t, "30080", plan.SaleTarget.LocalIn, "SaleTarget.LocalIn")
	assertDec(t, "94", plan.SaleNow.Foreign, "SaleNow.Foreign")
	assertDec(t, "30080", plan.SaleNow.LocalIn, "SaleNow.LocalIn")
	assertDec(t, "0", plan.RemainingUnallocated, "RemainingUnallocated")
	assertDec(t, "50080", plan.ProjectedNet, "ProjectedNet")
	assertDec(t, "0", plan.ProjectedExposure, "ProjectedExposure")
}

func TestPlan_SaleNowBoundedByKeepFloor(t *testing.T) {
	plan := mustPlan(t, Input{Assets: d("30000"), Liabilities: d("10000"), ForeignAvailable: d("150.75")}, params())

	assertDec(t, "94", plan.SaleTarget.Foreign, "SaleTarget.Foreign")
	assertDec(t, "50", plan.SaleNow.Foreign, "SaleNow.Foreign")
	assertDec(t, "16000", plan.SaleNow.LocalIn, "SaleNow.LocalIn")
	assertDec(t, "14000", plan.RemainingUnallocated, "RemainingUnallocated")
}

func TestPlan_SaleNowBelowMinimumIsDropped(t *testing.T) {
	plan := mustPlan(t, Input{Assets: d("30000"), Liabilities: d("10000"), ForeignAvailable: d("110")}, params())

	if !plan.SaleNow.IsZero() {
		t.Fatalf("SaleNow = %+v, want none", plan.SaleNow)
	}
	assertDec(t, "0", plan.SaleNow.LocalIn, "SaleNow.LocalIn")
	assertDec(t, "30000", plan.RemainingUnallocated, "RemainingUnallocated")
	if plan.SaleTarget.IsZero() {
		t.Fatal("SaleTarget is empty, want a sale")
	}
}

func TestPlan_NothingHeldNothingSoldNow(t *testing.T) {
	plan := mustPlan(t, Input{Assets: d("30000"), Liabilities: d("10000")}, params())

	if !plan.SaleNow.IsZero() {
		t.Fatalf("SaleNow = %+v, want none", plan.SaleNow)
	}
	assertDec(t, "94", plan.SaleTarget.Foreign, "SaleTarget.Foreign")
}

func TestPlan_MinimumSaleRaisesTarget(t *testing.T) {
	p := params()
	p.CushionTarget = d("21000")
	plan := mustPlan(t, Input{Assets: d("30000"), Liabilities: d("10000"), ForeignAvailable: d("1000")}, p)

	assertDec(t, "1000", plan.Shortfall, "Shortfall")
	assertDec(t, "20", plan.SaleTarget.Foreign, "SaleTarget.Foreign")
	assertDec(t, "6400", plan.SaleTarget.LocalIn, "SaleTarget.LocalIn")
	assertDec(t, "20", plan.SaleNow.Foreign, "SaleNow.Foreign")
}

func TestPlan_NegativeExposure(t *testing.T) {
	p := params()
	p.CushionTarget = decimal.Zero
	plan := mustPlan(t, Input{Assets: decimal.Zero, Liabilities: d("50000")}, p)

	assertDec(t, "-50000", plan.Net, "Net")
	assertDec(t, "50000", plan.Shortfall, "Shortfall")
	assertDec(t, "-50000", plan.ProjectedNet, "ProjectedNet")
	assertDec(t, "50000", plan.ProjectedExposure, "ProjectedExposure")
}

func TestNetSellRate_FeeAndMargin(t *testing.T) {
	assertDec(t, "320", NetSellRate(d("320"), decimal.Zero, decimal.Zero), "no adjustments")
	assertDec(t, "313.6", NetSellRate(d("320"), d("2"), decimal.Zero), "fee only")
	assertDec(t, "316.8", NetSellRate(d("320"), decimal.Zero, d("1")), "margin only")
	assertDec(t, "310.464", NetSellRate(d("320"), d("2"), d("1")), "fee and margin")
}

func TestPlan_UsesNetRate(t *testing.T) {
	p := params()
	p.SellFeePct = d("2")
	p.FXMarginPct = d("1")
	p.CushionTarget = d("51046")
	plan := mustPlan(t, Input{Assets: d("30000"), Liabilities: d("10000"), ForeignAvailable: d("1000")}, p)

	assertDec(t, "310.464", plan.NetSellRate, "NetSellRate")
	assertDec(t, "31046", plan.Shortfall, "Shortfall")
	assertDec(t, "100", plan.SaleTarget.Foreign, "SaleTarget.Foreign")
	assertDec(t, "31046", plan.SaleTarget.LocalIn, "SaleTarget.LocalIn")
	assertDec(t, "0", plan.RemainingUnallocated, "RemainingUnallocated")
}

func TestForeignNeeded(t *testing.T) {
	assertDec(t, "4", ForeignNeeded(d("10"), d("3")), "10 at 3")
	assertDec(t, "100", ForeignNeeded(d("32000"), d("320")), "exact")
	assertDec(t, "0", ForeignNeeded(decimal.Zero, d("320")), "zero")
	assertDec(t, "0", ForeignNeeded(d("10"), decimal.Zero), "zero rate")
}

func TestPlan_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero sell rate", func(p *Params) { p.SellRate = decimal.Zero }},
		{"negative sell rate", func(p *Params) { p.SellRate = d("-1") }},
		{"fee of 100%", func(p *Params) { p.SellFeePct = d("100") }},
		{"negative margin", func(p *Params) { p.FXMarginPct = d("-0.5") }},
		{"negative target", func(p *Params) { p.CushionTarget = d("-1") }},
		{"negative keep floor", func(p *Params) { p.MinKeepForeign = d("-1") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params()
			tt.mutate(&p)
			_, err := Plan(Input{Assets: d("1")}, p)
			if !errors.Is(err, model.ErrInvalidConfiguration) {
				t.Fatalf("Plan() error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}
