package ui

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/nao1215/idguard/internal/hygiene"
)

// Asker shows questions to the user.
type Asker interface {
	// Section starts a new group of questions.
	Section(title string)

	// Select shows prompt with options and returns the index of the chosen option.
	Select(prompt string, options []string) (int, error)
}

// PTermAsker asks through pterm's interactive select.
type PTermAsker struct{}

// Section prints a section header.
func (PTermAsker) Section(title string) {
	pterm.DefaultSection.Println(title)
}

// Select shows an arrow-key selection list.
func (PTermAsker) Select(prompt string, options []string) (int, error) {
	chosen, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithMaxHeight(len(options)).
		Show(prompt)
	if err != nil {
		return 0, err
	}
	for i, o := range options {
		if o == chosen {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unexpected selection %q", chosen)
}

// AskQuestionnaire walks through every question of categories and returns
// the chosen answer value per question id.
func AskQuestionnaire(asker Asker, categories []hygiene.Category) (map[string]int, error) {
	answers := make(map[string]int)
	for _, c := range categories {
		if len(c.Questions) == 0 {
			continue
		}
		asker.Section(hygiene.DisplayName(c.Name))
		for _, q := range c.Questions {
			labels := make([]string, len(q.Options))
			for i, o := range q.Options {
				labels[i] = o.Text
			}
			i, err := asker.Select(q.Question, labels)
			if err != nil {
				return nil, fmt.Errorf("question %s: %w", q.ID, err)
			}
			if i < 0 || i >= len(q.Options) {
				return nil, fmt.Errorf("question %s: option %d out of range", q.ID, i)
			}
			answers[q.ID] = q.Options[i].Value
		}
	}
	return answers, nil
}
