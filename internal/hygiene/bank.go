package hygiene

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/nao1215/idguard/internal/model"
)

//go:embed questionnaire.json
var embeddedBank []byte

// Category is one named group of questions.
type Category struct {
	Name      string           `json:"category"`
	Questions []model.Question `json:"questions"`
}

// Bank is an ordered, validated set of questionnaire categories.
type Bank struct {
	categories []Category
	byID       map[string]questionRef
}

type questionRef struct {
	category string
	question model.Question
}

// NewBank validates categories and builds a Bank from them.
// Categories without questions are kept so the questionnaire order stays
// stable, but a bank whose categories are all empty is rejected.
func NewBank(categories []Category) (*Bank, error) {
	b := &Bank{byID: make(map[string]questionRef)}
	total := 0
	for _, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("%w: category without a name", ErrInvalidBank)
		}
		for _, q := range c.Questions {
			if err := checkQuestion(q); err != nil {
				return nil, err
			}
			if prev, dup := b.byID[q.ID]; dup {
				return nil, fmt.Errorf("%w: question %q appears in %s and %s", ErrInvalidBank, q.ID, prev.category, c.Name)
			}
			b.byID[q.ID] = questionRef{category: c.Name, question: q}
			total++
		}
		b.categories = append(b.categories, Category{Name: c.Name, Questions: slices.Clone(c.Questions)})
	}
	if total == 0 {
		return nil, ErrEmptyBank
	}
	return b, nil
}

func checkQuestion(q model.Question) error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: question without an id", ErrInvalidBank)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("%w: question %q has no options", ErrInvalidBank, q.ID)
	}
	for _, o := range q.Options {
		if o.Value < model.MinAnswerValue || o.Value > model.MaxAnswerValue {
			return fmt.Errorf("%w: question %q has option value %d outside %d-%d",
				ErrInvalidBank, q.ID, o.Value, model.MinAnswerValue, model.MaxAnswerValue)
		}
	}
	return nil
}

// DefaultBank returns the embedded question bank restricted to categories,
// in that order. An empty categories list keeps every embedded category.
func DefaultBank(categories []string) (*Bank, error) {
	return LoadBank(bytes.NewReader(embeddedBank), categories)
}

// LoadBank decodes a JSON object mapping category names to question lists.
// Only the named categories are kept, in the given order; categories absent
// from the document are empty. With no names, all categories are kept in
// alphabetical order.
func LoadBank(r io.Reader, categories []string) (*Bank, error) {
	var raw map[string][]model.Question
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBank, err)
	}
	if len(categories) == 0 {
		for name := range raw {
			categories = append(categories, name)
		}
		slices.Sort(categories)
	}
	out := make([]Category, 0, len(categories))
	for _, name := range categories {
		out = append(out, Category{Name: name, Questions: raw[name]})
	}
	return NewBank(out)
}

// LoadBankFile is LoadBank reading from path.
func LoadBankFile(path string, categories []string) (*Bank, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user's own config
	if err != nil {
		return nil, fmt.Errorf("failed to open question bank: %w", err)
	}
	defer f.Close() //nolint:errcheck

	return LoadBank(f, categories)
}

// Categories returns the categories in questionnaire order.
func (b *Bank) Categories() []Category {
	return slices.Clone(b.categories)
}

// Question looks up a question by id and returns it with its category.
func (b *Bank) Question(id string) (model.Question, string, bool) {
	ref, ok := b.byID[id]
	return ref.question, ref.category, ok
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.byID)
}
