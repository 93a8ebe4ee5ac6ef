package ai

import (
	"testing"
)

type schemaTarget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUnmarshalFlexible_ValidJSON(t *testing.T) {
	var out schemaTarget
	err := UnmarshalFlexible(`{"name": "test", "count": 3}`, &out)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Name != "test" || out.Count != 3 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexible_DoubleEncoded(t *testing.T) {
	var out schemaTarget
	err := UnmarshalFlexible(`"{\"name\": \"wrapped\", \"count\": 1}"`, &out)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Name != "wrapped" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexible_Malformed(t *testing.T) {
	var out schemaTarget
	err := UnmarshalFlexible(`{name: "repaired", count: 2,}`, &out)
	if err != nil {
		t.Fatalf("expected repair to succeed, got %v", err)
	}
	if out.Name != "repaired" || out.Count != 2 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexible_DuplicateLeadingBrace(t *testing.T) {
	var out schemaTarget
	err := UnmarshalFlexible(`{ {"name": "double", "count": 4}`, &out)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Name != "double" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	var out schemaTarget
	err := UnmarshalFlexible(`not json at all [[[`, &out)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestGenerateSchema_NonNil(t *testing.T) {
	schema := GenerateSchema(schemaTarget{})
	if schema == nil {
		t.Fatal("expected schema, got nil")
	}
	ptrSchema := GenerateSchema(&schemaTarget{})
	if ptrSchema == nil {
		t.Fatal("expected schema for pointer type, got nil")
	}
}
