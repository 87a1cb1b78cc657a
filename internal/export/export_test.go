package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/plantecon/internal/breakeven"
	"github.com/Simplici0/plantecon/internal/depreciation"
	"github.com/Simplici0/plantecon/internal/econ"
)

func TestWorkbookWritesSheetsInOrder(t *testing.T) {
	sched, err := depreciation.StraightLine(depreciation.Asset{Cost: 1000, Salvage: 100, Life: 3}, depreciation.DefaultConfig)
	if err != nil {
		t.Fatalf("straight line: %v", err)
	}
	sens, err := breakeven.Sensitivity(breakeven.Base{FixedCosts: 1000, Price: 20, VariableCost: 5, Volume: 100}, nil)
	if err != nil {
		t.Fatalf("sensitivity: %v", err)
	}

	var buf bytes.Buffer
	err = Write(&buf,
		DepreciationSheet("Schedule", sched.Table),
		SensitivitySheet("Sensitivity", sens),
		SummarySheet("Summary", econ.Inputs{"cost": 1000}, map[string]string{"method": "straight_line"}),
	)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) != 3 || names[0] != "Schedule" || names[2] != "Summary" {
		t.Fatalf("unexpected sheets %v", names)
	}

	rows, err := f.GetRows("Schedule")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header plus 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Year" || rows[4][3] != "100" {
		t.Fatalf("unexpected content %v", rows)
	}

	sensRows, _ := f.GetRows("Sensitivity")
	if len(sensRows) != 1+4*5 {
		t.Fatalf("expected 21 sensitivity rows, got %d", len(sensRows))
	}

	summary, _ := f.GetRows("Summary")
	if summary[1][0] != "cost" || summary[2][1] != "straight_line" {
		t.Fatalf("unexpected summary %v", summary)
	}
}

func TestWorkbookRejectsBadSheetNames(t *testing.T) {
	cases := [][]Sheet{
		nil,
		{{Name: ""}},
		{{Name: "a/b"}},
		{{Name: "This name is far too long for a worksheet"}},
		{{Name: "Data"}, {Name: "data"}},
	}
	for _, sheets := range cases {
		if _, err := Workbook(sheets...); err == nil {
			t.Fatalf("expected error for %+v", sheets)
		}
	}
}

func TestMetricCell(t *testing.T) {
	if got := metricCell(econ.Defined(2.5)); got != 2.5 {
		t.Fatalf("defined metric = %v", got)
	}
	if got := metricCell(econ.Infinite("never")); got != "infinite" {
		t.Fatalf("infinite metric = %v", got)
	}
}
