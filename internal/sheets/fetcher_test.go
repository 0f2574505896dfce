package sheets

import "testing"

func TestRowFromValues_FullRow(t *testing.T) {
	values := make([]interface{}, 17)
	for i := range values {
		values[i] = ""
	}
	values[colName] = " Иванова Анна "
	values[colObject] = "Склад Север"
	values[colRecruiter] = "Петров"
	values[colStartDate] = "15.03.2025"

	row := rowFromValues("Март", 7, values)

	if row.SheetName != "Март" || row.RowNumber != 7 {
		t.Errorf("row identity = (%q, %d), want (Март, 7)", row.SheetName, row.RowNumber)
	}
	if row.Name != "Иванова Анна" {
		t.Errorf("Name = %q, want trimmed %q", row.Name, "Иванова Анна")
	}
	if row.Object != "Склад Север" {
		t.Errorf("Object = %q", row.Object)
	}
	if row.Recruiter != "Петров" {
		t.Errorf("Recruiter = %q", row.Recruiter)
	}
	if row.DateText != "15.03.2025" {
		t.Errorf("DateText = %q", row.DateText)
	}
}

// Sheets omits trailing empty cells; short rows must read as empty cells.
func TestRowFromValues_ShortRow(t *testing.T) {
	row := rowFromValues("Лист1", 2, []interface{}{"Сидоров"})

	if row.Name != "Сидоров" {
		t.Errorf("Name = %q, want Сидоров", row.Name)
	}
	if row.Object != "" || row.Recruiter != "" || row.DateText != "" {
		t.Errorf("missing columns should be empty, got %+v", row)
	}
}

func TestRowFromValues_NonStringCell(t *testing.T) {
	values := make([]interface{}, 17)
	for i := range values {
		values[i] = ""
	}
	values[colName] = "Кто-то"
	values[colStartDate] = 45721.0 // numeric cell instead of text

	row := rowFromValues("Лист1", 3, values)
	if row.DateText != "" {
		t.Errorf("DateText = %q, want empty for non-string cell", row.DateText)
	}
}
