package limits

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashplan/internal/model"
)

var bankOrder = []string{"BANDEC", "MITRANSFER", "METRO", "BPA"}

func distributionCards() []model.ClassifiedCard {
	return Classify([]model.UsageRecord{
		usage("1", "BANDEC", 100000, 0),
		usage("2", "MITRANSFER", 60000, 0),
		usage("3", "BPA", 120000, 0),
	}, testPolicy()).Cards
}

func wantAssignments(t *testing.T, plan model.DistributionPlan, n int) {
	t.Helper()
	if len(plan.Assignments) != n {
		t.Fatalf("len(Assignments) = %d, want %d: %+v", len(plan.Assignments), n, plan.Assignments)
	}
}

func TestDistribute_NowUsesCapacityThenOverflow(t *testing.T) {
	plan := Distribute(d(100000), distributionCards(), bankOrder, model.ModeNow)
	wantAssignments(t, plan, 2)

	first := plan.Assignments[0]
	if first.Bank != "BANDEC" || first.Step != model.StepCapacity {
		t.Fatalf("first = %s/%s, want BANDEC/capacity", first.Bank, first.Step)
	}
	wantDec(t, "first amount", first.Amount, 20000)
	wantDec(t, "first capacity before", first.CapacityBefore, 20000)
	wantDec(t, "first capacity after", first.CapacityAfter, 0)

	second := plan.Assignments[1]
	if second.Bank != "BPA" || second.Step != model.StepOverflow || second.Status != model.StatusExtendable {
		t.Fatalf("second = %s/%s/%s, want BPA/overflow/EXTENDABLE", second.Bank, second.Step, second.Status)
	}
	wantDec(t, "second amount", second.Amount, 80000)

	wantDec(t, "leftover", plan.Leftover, 0)
	wantDec(t, "total assigned", plan.TotalAssigned, 100000)
	if !plan.Reconciles() {
		t.Fatal("plan does not reconcile")
	}
}

func TestDistribute_NowNeverUsesWallet(t *testing.T) {
	cards := Classify([]model.UsageRecord{
		usage("1", "BANDEC", 110000, 0),
		usage("2", "MITRANSFER", 0, 0),
	}, testPolicy()).Cards

	plan := Distribute(d(50000), cards, bankOrder, model.ModeNow)
	wantAssignments(t, plan, 1)

	if plan.Assignments[0].Bank != "BANDEC" {
		t.Fatalf("bank = %s, want BANDEC", plan.Assignments[0].Bank)
	}
	wantDec(t, "leftover", plan.Leftover, 40000)
	if !plan.Reconciles() {
		t.Fatal("plan does not reconcile")
	}
}

func TestDistribute_TargetParksRemainderInWallet(t *testing.T) {
	cards := Classify([]model.UsageRecord{
		usage("1", "BANDEC", 110000, 0),
		usage("2", "MITRANSFER", 0, 0),
	}, testPolicy()).Cards

	plan := Distribute(d(50000), cards, bankOrder, model.ModeTarget)
	wantAssignments(t, plan, 2)

	wallet := plan.Assignments[1]
	if wallet.Bank != "MITRANSFER" || wallet.Step != model.StepWallet {
		t.Fatalf("second = %s/%s, want MITRANSFER/wallet", wallet.Bank, wallet.Step)
	}
	wantDec(t, "wallet amount", wallet.Amount, 40000)
	wantDec(t, "leftover", plan.Leftover, 0)
}

func TestDistribute_TargetPrefersExtendableOverWallet(t *testing.T) {
	plan := Distribute(d(100000), distributionCards(), bankOrder, model.ModeTarget)
	wantAssignments(t, plan, 2)

	if plan.Assignments[1].Bank != "BPA" {
		t.Fatalf("second bank = %s, want BPA", plan.Assignments[1].Bank)
	}
	wantDec(t, "leftover", plan.Leftover, 0)
}

func TestDistribute_NoDestinationLeavesLeftover(t *testing.T) {
	cards := Classify([]model.UsageRecord{
		usage("1", "BANDEC", 125000, 0),
		usage("2", "METRO", 130000, 0),
	}, testPolicy()).Cards

	plan := Distribute(d(30000), cards, bankOrder, model.ModeTarget)
	wantAssignments(t, plan, 0)
	wantDec(t, "leftover", plan.Leftover, 30000)
	wantDec(t, "total assigned", plan.TotalAssigned, 0)
}

func TestDistribute_NonPositiveAmount(t *testing.T) {
	plan := Distribute(decimal.Zero, distributionCards(), bankOrder, model.ModeNow)
	wantAssignments(t, plan, 0)
	if !plan.Reconciles() {
		t.Fatal("zero plan does not reconcile")
	}

	plan = Distribute(d(-10), distributionCards(), bankOrder, model.ModeNow)
	wantAssignments(t, plan, 0)
	wantDec(t, "leftover", plan.Leftover, -10)
	if !plan.Reconciles() {
		t.Fatal("negative plan does not reconcile")
	}
}

func TestDistribute_StopsWhenNeedIsMet(t *testing.T) {
	cards := Classify([]model.UsageRecord{
		usage("1", "BANDEC", 0, 0),
		usage("2", "METRO", 0, 0),
	}, testPolicy()).Cards

	plan := Distribute(d(5000), cards, bankOrder, model.ModeNow)
	wantAssignments(t, plan, 1)
	wantDec(t, "capacity after", plan.Assignments[0].CapacityAfter, 115000)
}

func TestDistribute_Invariants(t *testing.T) {
	f := gofakeit.New(7)
	banks := []string{"BANDEC", "BPA", "METRO", "MITRANSFER", "OTRO"}
	policy := testPolicy()

	for i := 0; i < 500; i++ {
		n := f.IntRange(0, 8)
		rows := make([]model.UsageRecord, 0, n)
		for j := 0; j < n; j++ {
			rows = append(rows, usage(
				f.DigitN(4),
				banks[f.IntRange(0, len(banks)-1)],
				int64(f.IntRange(0, 160000)),
				int64(f.IntRange(-20000, 80000)),
			))
		}
		cards := Classify(rows, policy).Cards
		amount := d(int64(f.IntRange(0, 400000)))
		mode := model.ModeNow
		if f.Bool() {
			mode = model.ModeTarget
		}

		plan := Distribute(amount, cards, bankOrder, mode)

		if !plan.TotalAssigned.Add(plan.Leftover).Equal(amount) {
			t.Fatalf("assigned %s + leftover %s != %s", plan.TotalAssigned, plan.Leftover, amount)
		}
		if !plan.Reconciles() {
			t.Fatalf("plan for %s does not reconcile", amount)
		}
		for _, a := range plan.Assignments {
			if a.Status == model.StatusBlocked {
				t.Fatalf("assigned %s to blocked card %s", a.Amount, a.CardID)
			}
			if !a.Amount.IsPositive() {
				t.Fatalf("non-positive assignment %s", a.Amount)
			}
			if mode == model.ModeNow && a.Step == model.StepWallet {
				t.Fatalf("NOW plan used wallet %s", a.CardID)
			}
		}
	}
}
