package questionbank

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/felixgeelhaar/learnhub/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed packs/*.yaml
var builtinPacks embed.FS

// PackFile represents the YAML structure for a question pack
type PackFile struct {
	Category    string         `yaml:"category"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Questions   []QuestionFile `yaml:"questions"`
}

// QuestionFile represents the YAML structure for a single question
type QuestionFile struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Kind        string   `yaml:"kind"`
	Difficulty  string   `yaml:"difficulty"`
	Points      int      `yaml:"points"`
	Prompt      string   `yaml:"prompt"`
	Code        string   `yaml:"code"`
	Expected    string   `yaml:"expected"`
	Markup      string   `yaml:"markup"`
	Template    string   `yaml:"template"`
	Options     []string `yaml:"options"`
	Solution    string   `yaml:"solution"`
	Explanation string   `yaml:"explanation"`
}

// Loader reads question packs from a filesystem
type Loader struct {
	fsys fs.FS
	dir  string
}

// NewLoader creates a loader rooted at dir within fsys
func NewLoader(fsys fs.FS, dir string) *Loader {
	return &Loader{fsys: fsys, dir: dir}
}

// LoadDir loads every *.yaml pack in a directory on disk
func LoadDir(dir string) ([]*domain.Question, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: questions directory: %v", domain.ErrConfiguration, err)
	}
	return NewLoader(os.DirFS(dir), ".").LoadAll()
}

// Builtin loads the question packs compiled into the binary
func Builtin() ([]*domain.Question, error) {
	return NewLoader(builtinPacks, "packs").LoadAll()
}

// LoadAll loads every pack in the loader's directory, sorted by file name
func (l *Loader) LoadAll() ([]*domain.Question, error) {
	entries, err := fs.ReadDir(l.fsys, l.dir)
	if err != nil {
		return nil, fmt.Errorf("read packs directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := path.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var questions []*domain.Question
	for _, name := range names {
		qs, err := l.LoadPack(name)
		if err != nil {
			return nil, fmt.Errorf("load pack %s: %w", name, err)
		}
		questions = append(questions, qs...)
	}
	return questions, nil
}

// LoadPack loads and validates a single pack file
func (l *Loader) LoadPack(name string) ([]*domain.Question, error) {
	data, err := fs.ReadFile(l.fsys, path.Join(l.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read pack file: %w", err)
	}
	return ParsePack(data)
}

// ParsePack decodes pack YAML into validated questions
func ParsePack(data []byte) ([]*domain.Question, error) {
	var pack PackFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("%w: parse pack file: %v", domain.ErrConfiguration, err)
	}

	category, err := domain.ParseCategory(pack.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	questions := make([]*domain.Question, 0, len(pack.Questions))
	var errs []error
	for i, qf := range pack.Questions {
		q, err := qf.toDomain(category)
		if err != nil {
			errs = append(errs, fmt.Errorf("question %d: %w", i, err))
			continue
		}
		questions = append(questions, q)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return questions, nil
}

func (qf QuestionFile) toDomain(category domain.Category) (*domain.Question, error) {
	q := &domain.Question{
		ID:          strings.TrimSpace(qf.ID),
		Category:    category,
		Kind:        domain.Category(strings.ToLower(strings.TrimSpace(qf.Kind))),
		Difficulty:  domain.Difficulty(strings.ToLower(strings.TrimSpace(qf.Difficulty))),
		Title:       qf.Title,
		Prompt:      qf.Prompt,
		Code:        qf.Code,
		Markup:      qf.Markup,
		Template:    qf.Template,
		Options:     qf.Options,
		Expected:    qf.Expected,
		Solution:    qf.Solution,
		Explanation: qf.Explanation,
		Points:      qf.Points,
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}
