package questionbank

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sync"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// Bank is a read-only question catalog indexed by category and ID.
// It is safe for concurrent use.
type Bank struct {
	byCategory map[domain.Category][]*domain.Question
	byID       map[string]*domain.Question

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Bank
type Option func(*Bank)

// WithRand makes selection deterministic
func WithRand(rng *rand.Rand) Option {
	return func(b *Bank) { b.rng = rng }
}

// New builds a bank. Duplicate IDs and invalid questions are
// configuration errors.
func New(questions []*domain.Question, opts ...Option) (*Bank, error) {
	b := &Bank{
		byCategory: make(map[domain.Category][]*domain.Question),
		byID:       make(map[string]*domain.Question, len(questions)),
	}
	for _, opt := range opts {
		opt(b)
	}

	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %s", domain.ErrConfiguration, q.ID)
		}
		b.byID[q.ID] = q
		b.byCategory[q.Category] = append(b.byCategory[q.Category], q)
	}
	return b, nil
}

// NewBuiltin builds a bank from the embedded packs plus any packs in dir
func NewBuiltin(dir string, opts ...Option) (*Bank, error) {
	questions, err := Builtin()
	if err != nil {
		return nil, fmt.Errorf("load builtin questions: %w", err)
	}
	if dir != "" {
		extra, err := LoadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("load questions from %s: %w", dir, err)
		}
		questions = append(questions, extra...)
	}
	return New(questions, opts...)
}

// QuestionsOf returns the questions of a category in catalog order
func (b *Bank) QuestionsOf(category domain.Category) []*domain.Question {
	qs := b.byCategory[category]
	out := make([]*domain.Question, len(qs))
	copy(out, qs)
	return out
}

// Lookup returns a question by ID
func (b *Bank) Lookup(id string) (*domain.Question, error) {
	q, ok := b.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, id)
	}
	return q, nil
}

// Categories returns the categories that have questions, in display order
func (b *Bank) Categories() []domain.Category {
	var out []domain.Category
	for _, c := range domain.Categories() {
		if len(b.byCategory[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of questions in the bank
func (b *Bank) Len() int {
	return len(b.byID)
}

// CategoryStats counts questions per tier
type CategoryStats struct {
	Category domain.Category
	Total    int
	ByTier   map[domain.Difficulty]int
}

// Stats returns per-category counts in display order
func (b *Bank) Stats() []CategoryStats {
	var out []CategoryStats
	for _, c := range b.Categories() {
		cs := CategoryStats{Category: c, ByTier: make(map[domain.Difficulty]int)}
		for _, q := range b.byCategory[c] {
			cs.Total++
			cs.ByTier[q.Difficulty]++
		}
		out = append(out, cs)
	}
	return out
}

// Random picks uniformly among the category's questions of the given tier,
// falling back to the whole category when the tier has none.
func (b *Bank) Random(category domain.Category, difficulty domain.Difficulty) (*domain.Question, error) {
	q, _, err := b.RandomExcluding(category, difficulty, nil)
	return q, err
}

// RandomExcluding is Random but skips IDs in asked. When every candidate
// was already asked it picks from the full pool and reports exhausted.
func (b *Bank) RandomExcluding(category domain.Category, difficulty domain.Difficulty, asked map[string]struct{}) (q *domain.Question, exhausted bool, err error) {
	pool, err := b.pool(category, difficulty)
	if err != nil {
		return nil, false, err
	}

	fresh := pool
	if len(asked) > 0 {
		fresh = make([]*domain.Question, 0, len(pool))
		for _, q := range pool {
			if _, seen := asked[q.ID]; !seen {
				fresh = append(fresh, q)
			}
		}
	}
	if len(fresh) == 0 {
		return pool[b.intN(len(pool))], true, nil
	}
	return fresh[b.intN(len(fresh))], false, nil
}

func (b *Bank) pool(category domain.Category, difficulty domain.Difficulty) ([]*domain.Question, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	all := b.byCategory[category]
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: category %s", domain.ErrNoQuestions, category)
	}

	var tier []*domain.Question
	for _, q := range all {
		if q.Difficulty == difficulty {
			tier = append(tier, q)
		}
	}
	if len(tier) == 0 {
		return all, nil
	}
	return tier, nil
}

func (b *Bank) intN(n int) int {
	if b.rng == nil {
		return rand.IntN(n)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.IntN(n)
}

// ForDay deterministically picks one question for a calendar day, so every
// learner sees the same daily challenge.
func (b *Bank) ForDay(day string) (*domain.Question, error) {
	var all []*domain.Question
	for _, c := range b.Categories() {
		all = append(all, b.byCategory[c]...)
	}
	if len(all) == 0 {
		return nil, domain.ErrNoQuestions
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(day))
	return all[int(h.Sum32()%uint32(len(all)))], nil
}
