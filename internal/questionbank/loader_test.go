package questionbank

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

const testPackYAML = `category: selector
name: Extra Selectors
questions:
  - id: extra-sel-1
    title: Universal
    difficulty: easy
    prompt: Select every element
    options: ["*", "all", "%"]
    solution: "*"
    explanation: The universal selector matches everything.
  - id: extra-sel-2
    title: Sibling
    difficulty: hard
    points: 30
    prompt: Select every p after an h2
    solution: h2 ~ p
    explanation: The ~ combinator selects following siblings.
`

func writePack(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestBuiltin(t *testing.T) {
	questions, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}

	counts := make(map[domain.Category]int)
	for _, q := range questions {
		counts[q.Category]++
	}

	want := map[domain.Category]int{
		domain.CategoryFixBug:      9,
		domain.CategoryFlexbox:     9,
		domain.CategorySelector:    9,
		domain.CategoryHTMLBuilder: 9,
		domain.CategoryMixed:       6,
	}
	for c, n := range want {
		if counts[c] != n {
			t.Errorf("builtin %s questions = %d, want %d", c, counts[c], n)
		}
	}
}

func TestBuiltin_MixedQuestionsHaveKind(t *testing.T) {
	questions, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	for _, q := range questions {
		if q.Category == domain.CategoryMixed && q.Kind == "" {
			t.Errorf("mixed question %s has no kind", q.ID)
		}
	}
}

func TestBuiltin_PreservesCodeLayout(t *testing.T) {
	questions, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	bank, err := New(questions)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	q, err := bank.Lookup("bug-easy-1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	want := "function greetUser(name) {\n    console.log(\"Hello, \" + name)\n    return \"Welcome!\"\n}"
	if q.Code != want {
		t.Errorf("Code = %q, want %q", q.Code, want)
	}
	if q.Points != 10 {
		t.Errorf("Points = %d, want 10", q.Points)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "extra.yaml", testPackYAML)
	writePack(t, dir, "notes.txt", "ignored")

	questions, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("len(questions) = %d, want 2", len(questions))
	}

	q := questions[0]
	if q.ID != "extra-sel-1" {
		t.Errorf("ID = %q, want extra-sel-1", q.ID)
	}
	if q.Category != domain.CategorySelector {
		t.Errorf("Category = %q, want selector", q.Category)
	}
	if len(q.Options) != 3 {
		t.Errorf("len(Options) = %d, want 3", len(q.Options))
	}
	if q.BasePoints() != domain.DefaultPoints {
		t.Errorf("BasePoints() = %d, want %d", q.BasePoints(), domain.DefaultPoints)
	}
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("LoadDir() error = %v, want ErrConfiguration", err)
	}
}

func TestParsePack_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed yaml", "category: [fix-bug"},
		{"unknown category", "category: sql\nquestions: []\n"},
		{"missing solution", "category: fix-bug\nquestions:\n  - id: a\n    difficulty: easy\n"},
		{"missing id", "category: fix-bug\nquestions:\n  - difficulty: easy\n    solution: x\n"},
		{"bad difficulty", "category: fix-bug\nquestions:\n  - id: a\n    difficulty: brutal\n    solution: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePack([]byte(tt.yaml))
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("ParsePack() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestNewBuiltin_ExtraDir(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "extra.yaml", testPackYAML)

	bank, err := NewBuiltin(dir)
	if err != nil {
		t.Fatalf("NewBuiltin() error = %v", err)
	}
	if bank.Len() != 44 {
		t.Errorf("Len() = %d, want 44", bank.Len())
	}
	if _, err := bank.Lookup("extra-sel-2"); err != nil {
		t.Errorf("Lookup(extra-sel-2) error = %v", err)
	}
}

func TestNewBuiltin_DuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "dup.yaml", "category: fix-bug\nquestions:\n  - id: bug-easy-1\n    difficulty: easy\n    solution: x\n")

	_, err := NewBuiltin(dir)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("NewBuiltin() error = %v, want ErrConfiguration", err)
	}
}
