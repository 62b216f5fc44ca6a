package domain

import "testing"

func TestIndexFieldsByCode(t *testing.T) {
	idx := IndexFieldsByCode([]FormField{
		{ID: 1, Code: "Amount", FieldType: FieldTypeNumber},
		{ID: 2, Code: " name ", FieldType: FieldTypeText},
		{ID: 3, Code: "GONE", FieldType: FieldTypeText, IsDeleted: true},
	})
	if len(idx) != 2 {
		t.Fatalf("index size = %d, want 2 with the deleted field dropped", len(idx))
	}
	if f, ok := idx["AMOUNT"]; !ok || f.ID != 1 {
		t.Fatalf("AMOUNT lookup = %+v, %v", f, ok)
	}
	if f, ok := idx["NAME"]; !ok || f.ID != 2 {
		t.Fatalf("NAME lookup = %+v, %v; codes should be trimmed and upper-cased", f, ok)
	}
	if _, ok := idx["GONE"]; ok {
		t.Fatal("deleted field is reachable through the index")
	}
}

func TestFormFieldIsCalculated(t *testing.T) {
	if (FormField{Expression: ""}).IsCalculated() {
		t.Error("empty expression reported as calculated")
	}
	if (FormField{Expression: "   "}).IsCalculated() {
		t.Error("blank expression reported as calculated")
	}
	if !(FormField{Expression: "A+B"}).IsCalculated() {
		t.Error("expression-bearing field not reported as calculated")
	}
}

func TestFormatDocumentNumber(t *testing.T) {
	cases := []struct {
		code string
		n    int
		want string
	}{
		{"INV", 1, "INV-000001"},
		{"INV", 42, "INV-000042"},
		{" ORD ", 999999, "ORD-999999"},
		{"PO", 1000000, "PO-1000000"},
	}
	for _, tc := range cases {
		if got := FormatDocumentNumber(tc.code, tc.n); got != tc.want {
			t.Errorf("FormatDocumentNumber(%q, %d) = %q, want %q", tc.code, tc.n, got, tc.want)
		}
	}
}

func TestSubmissionValidate(t *testing.T) {
	valid := Submission{FormID: 1, DocumentTypeID: 1, DocumentNumber: "INV-000001", Status: StatusDraft}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}

	invalid := []Submission{
		{DocumentTypeID: 1, DocumentNumber: "X", Status: StatusDraft},
		{FormID: 1, DocumentNumber: "X", Status: StatusDraft},
		{FormID: 1, DocumentTypeID: 1, Status: StatusDraft},
		{FormID: 1, DocumentTypeID: 1, DocumentNumber: "X", Status: "Approved"},
	}
	for i, s := range invalid {
		if err := s.Validate(); err == nil {
			t.Errorf("case %d: invalid submission accepted", i)
		}
	}
}
