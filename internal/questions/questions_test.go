package questions_test

import (
	"os"
	"path/filepath"
	"testing"

	"group-planner/internal/questions"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := questions.Default()
	if catalog.Len() != 10 {
		t.Fatalf("expected 10 canonical questions, got %d", catalog.Len())
	}

	first, ok := catalog.Next(0)
	if !ok || first.ID != "q1" {
		t.Fatalf("expected q1 first, got %+v ok=%t", first, ok)
	}
	last, ok := catalog.Next(9)
	if !ok || last.ID != "q10" {
		t.Fatalf("expected q10 last, got %+v ok=%t", last, ok)
	}
	if _, ok := catalog.Next(10); ok {
		t.Fatal("expected exhaustion past the last question")
	}
	if _, ok := catalog.Next(-1); ok {
		t.Fatal("expected no question for negative count")
	}

	q, ok := catalog.ByID("q5")
	if !ok || q.Text == "" {
		t.Fatalf("expected q5 lookup to succeed, got %+v ok=%t", q, ok)
	}
	if _, ok := catalog.ByID("q99"); ok {
		t.Fatal("expected unknown id lookup to fail")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	catalog := questions.Default()
	all := catalog.All()
	all[0].Text = "mutated"

	fresh, _ := catalog.Next(0)
	if fresh.Text == "mutated" {
		t.Fatal("expected All to return a copy")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	doc := `questions:
  - id: a1
    text: "Indoors or outdoors?"
  - id: a2
    text: "Morning or evening?"
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	catalog, err := questions.LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", catalog.Len())
	}
	q, ok := catalog.ByID("a2")
	if !ok || q.Text != "Morning or evening?" {
		t.Fatalf("expected a2 lookup, got %+v ok=%t", q, ok)
	}
}

func TestLoadFileRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty list", "questions: []\n"},
		{"missing id", "questions:\n  - text: \"Where?\"\n"},
		{"missing text", "questions:\n  - id: a1\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "questions.yaml")
			if err := os.WriteFile(path, []byte(tc.doc), 0644); err != nil {
				t.Fatalf("write file: %v", err)
			}
			if _, err := questions.LoadFile(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := questions.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
