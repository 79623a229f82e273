package ai

import "testing"

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUnmarshalFlexibleStandard(t *testing.T) {
	var out sample
	if err := UnmarshalFlexible(`{"name": "a", "count": 2}`, &out); err != nil {
		t.Fatalf("standard json: %v", err)
	}
	if out.Name != "a" || out.Count != 2 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexibleDoubleEncoded(t *testing.T) {
	var out sample
	if err := UnmarshalFlexible(`"{\"name\": \"b\", \"count\": 1}"`, &out); err != nil {
		t.Fatalf("double-encoded json: %v", err)
	}
	if out.Name != "b" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexibleRepairsMalformed(t *testing.T) {
	var out sample
	if err := UnmarshalFlexible(`{name: "c", count: 3,}`, &out); err != nil {
		t.Fatalf("malformed json: %v", err)
	}
	if out.Name != "c" || out.Count != 3 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexibleDuplicateBrace(t *testing.T) {
	var out sample
	if err := UnmarshalFlexible(`{ {"name": "d", "count": 4}`, &out); err != nil {
		t.Fatalf("duplicate brace: %v", err)
	}
	if out.Name != "d" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestStripDuplicateLeadingBrace(t *testing.T) {
	if got := stripDuplicateLeadingBrace(`{ {"a": 1}`); got != `{"a": 1}` {
		t.Fatalf("unexpected strip result: %q", got)
	}
	if got := stripDuplicateLeadingBrace(`{"a": 1}`); got != `{"a": 1}` {
		t.Fatalf("single brace must be untouched, got %q", got)
	}
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(&CardSuggestions{})
	if schema == nil {
		t.Fatalf("expected a schema")
	}
}
