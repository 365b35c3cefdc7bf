package questionbank

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/felixgeelhaar/learnhub/internal/domain"
	"github.com/felixgeelhaar/learnhub/internal/validator"
)

func newTestBank(t *testing.T) *Bank {
	t.Helper()
	bank, err := NewBuiltin("", WithRand(rand.New(rand.NewPCG(1, 2))))
	if err != nil {
		t.Fatalf("NewBuiltin() error = %v", err)
	}
	return bank
}

func TestBank_RandomMatchesTier(t *testing.T) {
	bank := newTestBank(t)

	for _, c := range bank.Categories() {
		for _, d := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
			for i := 0; i < 10; i++ {
				q, err := bank.Random(c, d)
				if err != nil {
					t.Fatalf("Random(%s, %s) error = %v", c, d, err)
				}
				if q.Category != c {
					t.Errorf("Random(%s, %s) category = %s", c, d, q.Category)
				}
				if q.Difficulty != d {
					t.Errorf("Random(%s, %s) difficulty = %s", c, d, q.Difficulty)
				}
			}
		}
	}
}

func TestBank_RandomFallsBackToCategory(t *testing.T) {
	bank, err := New([]*domain.Question{
		{ID: "a", Category: domain.CategoryFlexbox, Difficulty: domain.DifficultyEasy, Solution: "x"},
		{ID: "b", Category: domain.CategoryFlexbox, Difficulty: domain.DifficultyEasy, Solution: "y"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	q, err := bank.Random(domain.CategoryFlexbox, domain.DifficultyHard)
	if err != nil {
		t.Fatalf("Random() error = %v", err)
	}
	if q.Category != domain.CategoryFlexbox {
		t.Errorf("Random() category = %s, want flexbox", q.Category)
	}
}

func TestBank_RandomErrors(t *testing.T) {
	bank, err := New([]*domain.Question{
		{ID: "a", Category: domain.CategoryFlexbox, Difficulty: domain.DifficultyEasy, Solution: "x"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := bank.Random("sql", domain.DifficultyEasy); !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("Random(sql) error = %v, want ErrUnknownCategory", err)
	}
	if _, err := bank.Random(domain.CategorySelector, domain.DifficultyEasy); !errors.Is(err, domain.ErrNoQuestions) {
		t.Errorf("Random(selector) error = %v, want ErrNoQuestions", err)
	}
}

func TestBank_RandomExcluding(t *testing.T) {
	bank := newTestBank(t)
	asked := make(map[string]struct{})

	for i := 0; i < 3; i++ {
		q, exhausted, err := bank.RandomExcluding(domain.CategoryFixBug, domain.DifficultyEasy, asked)
		if err != nil {
			t.Fatalf("RandomExcluding() error = %v", err)
		}
		if exhausted {
			t.Fatalf("pick %d reported exhausted", i)
		}
		if _, seen := asked[q.ID]; seen {
			t.Fatalf("pick %d repeated %s", i, q.ID)
		}
		asked[q.ID] = struct{}{}
	}

	_, exhausted, err := bank.RandomExcluding(domain.CategoryFixBug, domain.DifficultyEasy, asked)
	if err != nil {
		t.Fatalf("RandomExcluding() error = %v", err)
	}
	if !exhausted {
		t.Error("fourth pick from a three question tier should report exhausted")
	}
}

func TestBank_LookupAndQuestionsOf(t *testing.T) {
	bank := newTestBank(t)

	if _, err := bank.Lookup("missing"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Errorf("Lookup(missing) error = %v, want ErrQuestionNotFound", err)
	}

	qs := bank.QuestionsOf(domain.CategorySelector)
	if len(qs) != 9 {
		t.Fatalf("len(QuestionsOf(selector)) = %d, want 9", len(qs))
	}
	if qs[0].ID != "sel-easy-1" {
		t.Errorf("first selector question = %s, want sel-easy-1", qs[0].ID)
	}

	qs[0] = nil
	if bank.QuestionsOf(domain.CategorySelector)[0] == nil {
		t.Error("QuestionsOf() must return a copy")
	}
}

func TestBank_Stats(t *testing.T) {
	bank := newTestBank(t)

	stats := bank.Stats()
	if len(stats) != 5 {
		t.Fatalf("len(Stats()) = %d, want 5", len(stats))
	}
	for _, cs := range stats {
		if cs.Category == domain.CategoryMixed {
			if cs.ByTier[domain.DifficultyEasy] != 3 || cs.ByTier[domain.DifficultyMedium] != 2 || cs.ByTier[domain.DifficultyHard] != 1 {
				t.Errorf("mixed tiers = %v, want 3/2/1", cs.ByTier)
			}
			continue
		}
		for _, d := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
			if cs.ByTier[d] != 3 {
				t.Errorf("%s %s = %d, want 3", cs.Category, d, cs.ByTier[d])
			}
		}
	}
}

func TestBank_ForDay(t *testing.T) {
	bank := newTestBank(t)

	a, err := bank.ForDay("2024-03-01")
	if err != nil {
		t.Fatalf("ForDay() error = %v", err)
	}
	b, _ := bank.ForDay("2024-03-01")
	if a.ID != b.ID {
		t.Errorf("ForDay() not stable: %s vs %s", a.ID, b.ID)
	}

	empty, _ := New(nil)
	if _, err := empty.ForDay("2024-03-01"); !errors.Is(err, domain.ErrNoQuestions) {
		t.Errorf("ForDay() on empty bank error = %v, want ErrNoQuestions", err)
	}
}

// Every shipped solution must grade as correct against itself.
func TestBuiltin_SolutionsValidateAgainstThemselves(t *testing.T) {
	bank := newTestBank(t)
	engine := validator.New(validator.Options{})

	for _, c := range bank.Categories() {
		for _, q := range bank.QuestionsOf(c) {
			ok, err := engine.ValidateQuestion(q, q.Solution)
			if err != nil {
				t.Fatalf("ValidateQuestion(%s) error = %v", q.ID, err)
			}
			if !ok {
				t.Errorf("solution of %s does not validate", q.ID)
			}
		}
	}
}
