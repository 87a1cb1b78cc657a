package tvm

import (
	"errors"
	"math"
	"testing"

	"github.com/Simplici0/plantecon/internal/econ"
)

func nearlyEqual(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v (tol %v)", name, got, want, tol)
	}
}

func TestSimpleInterest(t *testing.T) {
	res, err := SimpleInterest(100000, 0.1, 5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "interest", res.Interest, 50000, 1e-9)
	nearlyEqual(t, "total", res.TotalAmount, 150000, 1e-9)
}

func TestCompoundInterest(t *testing.T) {
	res, err := CompoundInterest(1000, 0.1, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "futureValue", res.FutureValue, 1210, 1e-9)
	nearlyEqual(t, "interest", res.Interest, 210, 1e-9)
}

func TestPresentWorthRoundTrip(t *testing.T) {
	for _, p := range []float64{1, 250, 100000, 7.5e6} {
		for _, r := range []float64{0, 0.01, 0.08, 0.35, 1.5} {
			for _, n := range []int{1, 2, 10, 40} {
				ci, err := CompoundInterest(p, r, n)
				if err != nil {
					t.Fatalf("compound(%v,%v,%v): %v", p, r, n, err)
				}
				back, err := PresentWorth(ci.FutureValue, r, n)
				if err != nil {
					t.Fatalf("present worth: %v", err)
				}
				if !econ.NearlyEqual(back, p) {
					t.Fatalf("round trip P=%v r=%v n=%v gave %v", p, r, n, back)
				}
			}
		}
	}
}

func TestAnnuityZeroRate(t *testing.T) {
	for _, n := range []int{1, 5, 30} {
		pw, err := AnnuityPresentWorth(1200, 0, n)
		if err != nil {
			t.Fatalf("pw: %v", err)
		}
		fw, err := AnnuityFutureWorth(1200, 0, n)
		if err != nil {
			t.Fatalf("fw: %v", err)
		}
		nearlyEqual(t, "pw", pw, 1200*float64(n), 1e-9)
		nearlyEqual(t, "fw", fw, 1200*float64(n), 1e-9)
	}
}

func TestAnnuityFactors(t *testing.T) {
	pa, err := PresentWorthFactor(0.12, 10)
	if err != nil {
		t.Fatalf("P/A: %v", err)
	}
	want := (math.Pow(1.12, 10) - 1) / (0.12 * math.Pow(1.12, 10))
	nearlyEqual(t, "P/A", pa, want, 1e-12)
	nearlyEqual(t, "P/A literal", pa, 5.650223, 1e-6)

	fa, err := FutureWorthFactor(0.1, 3)
	if err != nil {
		t.Fatalf("F/A: %v", err)
	}
	nearlyEqual(t, "F/A", fa, 3.31, 1e-12)
}

func TestDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		fn   func() error
	}{
		{"negative principal", func() error { _, err := SimpleInterest(-1, 0.1, 1); return err }},
		{"zero periods", func() error { _, err := CompoundInterest(100, 0.1, 0); return err }},
		{"rate at -100%", func() error { _, err := PresentWorth(100, -1, 3); return err }},
		{"negative periods annuity", func() error { _, err := AnnuityPresentWorth(100, 0.1, -2); return err }},
		{"rate below -100% annuity", func() error { _, err := AnnuityFutureWorth(100, -1.5, 2); return err }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fn()
			if !errors.Is(err, econ.ErrDomain) {
				t.Fatalf("expected domain error, got %v", err)
			}
		})
	}
}

func TestGrowthTable(t *testing.T) {
	rows, err := GrowthTable(ModeCompound, 1000, 0.1, 3)
	if err != nil {
		t.Fatalf("growth table: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].Value != 1000 || rows[0].InterestEarned != 0 {
		t.Fatalf("unexpected year-0 row %+v", rows[0])
	}
	nearlyEqual(t, "year 3 value", rows[3].Value, 1331, 1e-9)
	nearlyEqual(t, "year 3 interest", rows[3].InterestEarned, 331, 1e-9)

	annuity, err := GrowthTable(ModeAnnuity, 100, 0, 4)
	if err != nil {
		t.Fatalf("annuity table: %v", err)
	}
	if annuity[0].Value != 0 || annuity[4].Value != 400 {
		t.Fatalf("unexpected annuity table %+v", annuity)
	}

	if _, err := GrowthTable(Mode("linear"), 1, 0.1, 1); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for unknown mode, got %v", err)
	}
}
