package profitability

import (
	"errors"
	"math"
	"testing"

	"github.com/Simplici0/plantecon/internal/econ"
)

func nearlyEqual(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestNPVUniform(t *testing.T) {
	r, err := NPVUniform(200000, 0.12, 10, 1_000_000)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	factor := (1 - math.Pow(1.12, -10)) / 0.12
	nearlyEqual(t, "pw factor", r.PWFactor, factor, 1e-12)
	nearlyEqual(t, "npv", r.NPV, 200000*factor-1_000_000, 1e-6)
	nearlyEqual(t, "npv approx", r.NPV, 130044.61, 0.01)
}

func TestNPVUniformZeroRate(t *testing.T) {
	r, err := NPVUniform(1000, 0, 5, 3000)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "npv", r.NPV, 2000, 1e-9)
}

func TestNPVScheduleMatchesUniform(t *testing.T) {
	flows := make([]float64, 10)
	for i := range flows {
		flows[i] = 200000
	}
	sched, err := NPVSchedule(flows, 0.12, 1_000_000)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	uni, _ := NPVUniform(200000, 0.12, 10, 1_000_000)
	nearlyEqual(t, "npv", sched.NPV, uni.NPV, 1e-6)
	nearlyEqual(t, "year 1 pv", sched.PresentValues[0], 200000/1.12, 1e-9)
}

func TestNPVRejects(t *testing.T) {
	if _, err := NPVUniform(100, -1, 5, 100); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for rate -100%%, got %v", err)
	}
	if _, err := NPVUniform(100, 0.1, 0, 100); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for zero life, got %v", err)
	}
	if _, err := NPVSchedule(nil, 0.1, 100); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for empty schedule, got %v", err)
	}
}

func TestIRRUniformSelfConsistent(t *testing.T) {
	cases := []struct {
		cash, invest float64
		life         int
	}{
		{200000, 1_000_000, 10},
		{1000, 3000, 5},
		{50, 1000, 30},
		{5000, 1000, 3},
		{100, 1000, 5},
	}
	for _, tc := range cases {
		irr, err := IRRUniform(tc.cash, tc.life, tc.invest)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		rate, ok := irr.Float()
		if !ok {
			t.Fatalf("IRR(%v, %d, %v) undefined: %s", tc.cash, tc.life, tc.invest, irr.Reason)
		}
		npv, err := NPVUniform(tc.cash, rate, tc.life, tc.invest)
		if err != nil {
			t.Fatalf("npv at irr: %v", err)
		}
		if math.Abs(npv.NPV) > 1e-4 {
			t.Fatalf("npv at irr %v = %v", rate, npv.NPV)
		}
	}
}

func TestIRRUniformKnownValue(t *testing.T) {
	irr, _ := IRRUniform(200000, 10, 1_000_000)
	rate, ok := irr.Float()
	if !ok {
		t.Fatalf("expected defined IRR")
	}
	nearlyEqual(t, "irr", rate, 0.15098, 1e-4)
}

func TestIRRUndefined(t *testing.T) {
	for _, cash := range []float64{0, -500} {
		irr, err := IRRUniform(cash, 10, 1000)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if irr.State != econ.StateUndefined {
			t.Fatalf("cash flow %v: expected undefined IRR, got %+v", cash, irr)
		}
	}
}

func TestIRRSchedule(t *testing.T) {
	irr, err := IRRSchedule([]float64{110}, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rate, ok := irr.Float()
	if !ok {
		t.Fatalf("expected defined IRR")
	}
	nearlyEqual(t, "single period irr", rate, 0.10, 1e-9)

	flows := []float64{60, 60}
	irr, _ = IRRSchedule(flows, 100)
	rate, ok = irr.Float()
	if !ok {
		t.Fatalf("expected defined IRR")
	}
	npv, _ := NPVSchedule(flows, rate, 100)
	if math.Abs(npv.NPV) > 1e-4 {
		t.Fatalf("npv at irr = %v", npv.NPV)
	}
}

func TestROI(t *testing.T) {
	nearlyEqual(t, "roi", ROI(200000, 1_000_000), 20, 1e-12)
	if got := ROI(500, 0); got != 0 {
		t.Fatalf("ROI with zero investment = %v, want 0", got)
	}
}

func TestPaybackPeriod(t *testing.T) {
	m, err := PaybackPeriod(1_000_000, 200000)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	years, ok := m.Float()
	if !ok || years != 5 {
		t.Fatalf("payback = %+v, want 5 years", m)
	}

	m, _ = PaybackPeriod(1000, 0)
	if m.State != econ.StateInfinite {
		t.Fatalf("zero cash flow payback = %+v, want infinite", m)
	}
	m, _ = PaybackPeriod(1000, -10)
	if m.State != econ.StateUndefined {
		t.Fatalf("negative cash flow payback = %+v, want undefined", m)
	}
}

func TestCashFlowTable(t *testing.T) {
	p := Project{InitialInvestment: 1000, AnnualCashFlow: 400, DiscountRate: 0.1, Life: 3}
	rows, err := CashFlowTable(p, econ.DefaultTableOptions)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].CashFlow != -1000 || rows[0].DiscountFactor != 1 {
		t.Fatalf("unexpected year-0 row %+v", rows[0])
	}
	nearlyEqual(t, "cumulative cash", rows[3].CumulativeCashFlow, 200, 1e-9)
	npv, _ := NPVUniform(400, 0.1, 3, 1000)
	nearlyEqual(t, "cumulative pv", rows[3].CumulativePresentValue, npv.NPV, 1e-9)

	rows, _ = CashFlowTable(p, econ.TableOptions{IncludeYearZero: false})
	if len(rows) != 3 || rows[0].Year != 1 {
		t.Fatalf("expected rows from year 1, got %+v", rows)
	}
	nearlyEqual(t, "cumulative after year 1", rows[0].CumulativeCashFlow, -600, 1e-9)
}

func TestSummarize(t *testing.T) {
	p := Project{InitialInvestment: 1_000_000, AnnualCashFlow: 200000, DiscountRate: 0.12, Life: 10}
	s, err := Summarize(p, DefaultPolicy, econ.DefaultTableOptions)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.NPVDecision != Accept || s.IRRDecision != Accept || s.PaybackDecision != Accept {
		t.Fatalf("expected all accept, got npv=%s irr=%s payback=%s", s.NPVDecision, s.IRRDecision, s.PaybackDecision)
	}
	nearlyEqual(t, "roi", s.ROIPercent, 20, 1e-9)
	nearlyEqual(t, "net profit", s.NetProfit, 1_000_000, 1e-9)
	if len(s.Defaults) != 1 || s.Defaults[0].Parameter != "irr_hurdle" {
		t.Fatalf("expected irr hurdle default, got %+v", s.Defaults)
	}
	irr, _ := s.IRR.Float()
	pct, _ := s.IRRPercent.Float()
	nearlyEqual(t, "irr percent", pct, irr*100, 1e-9)
}

func TestSummarizePolicyOverrides(t *testing.T) {
	p := Project{InitialInvestment: 1_000_000, AnnualCashFlow: 200000, DiscountRate: 0.12, Life: 10}
	policy := DecisionPolicy{NPVThreshold: 200000, IRRHurdle: econ.Some(0.2), PaybackFraction: 0.4}
	s, err := Summarize(p, policy, econ.DefaultTableOptions)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.NPVDecision != Reject || s.IRRDecision != Reject || s.PaybackDecision != Reject {
		t.Fatalf("expected all reject, got npv=%s irr=%s payback=%s", s.NPVDecision, s.IRRDecision, s.PaybackDecision)
	}
	if len(s.Defaults) != 0 {
		t.Fatalf("expected no defaults, got %+v", s.Defaults)
	}
}

func TestSummarizeZeroCashFlow(t *testing.T) {
	p := Project{InitialInvestment: 1000, AnnualCashFlow: 0, DiscountRate: 0.1, Life: 5}
	s, err := Summarize(p, DefaultPolicy, econ.DefaultTableOptions)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Payback.State != econ.StateInfinite || s.IRR.State != econ.StateUndefined {
		t.Fatalf("unexpected payback %+v irr %+v", s.Payback, s.IRR)
	}
	if s.IRRPercent.State != econ.StateUndefined {
		t.Fatalf("irr percent should stay undefined, got %+v", s.IRRPercent)
	}
	if s.PaybackDecision != Reject || s.IRRDecision != Reject {
		t.Fatalf("expected rejects, got irr=%s payback=%s", s.IRRDecision, s.PaybackDecision)
	}
}
