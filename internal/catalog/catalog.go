package catalog

import (
	"fmt"
	"strings"
)

// QuestionType discriminates how a question is answered and scored.
type QuestionType string

const (
	// TypeMultipleChoice scores by option position: option k earns k+1 points.
	TypeMultipleChoice QuestionType = "multiple_choice"
	// TypeDeclaration is an agree/antithesis pair scored all-or-nothing.
	TypeDeclaration QuestionType = "declaration"
	// TypeInput collects free text and is never scored.
	TypeInput QuestionType = "input"
)

// AntithesisMarker is the canonical negation option of a declaration question.
// Selecting it earns zero points; any other listed option earns full weight.
const AntithesisMarker = "I do not agree with this statement."

// Section labels used by the built-in questionnaire. Profile criteria and
// report copy reference these by name.
const (
	SectionFaith         = "Your Faith Life"
	SectionCommunication = "Communication & Conflict"
	SectionMoney         = "Money & Stewardship"
	SectionFamily        = "Family & Parenting"
	SectionIntimacy      = "Intimacy & Affection"
	SectionRoles         = "Roles & Expectations"
	SectionCharacter     = "Character & Emotional Health"
)

// Question is an immutable catalog entry.
type Question struct {
	ID         int          `json:"id"`
	Section    string       `json:"section"`
	Subsection string       `json:"subsection,omitempty"`
	Type       QuestionType `json:"type"`
	Text       string       `json:"text"`
	Options    []string     `json:"options,omitempty"`
	Weight     int          `json:"weight"`
}

// Scored reports whether the question contributes points.
func (q *Question) Scored() bool { return q.Type != TypeInput }

// OptionIndex returns the position of option within q.Options, or -1.
// Matching is exact after trimming surrounding whitespace.
func (q *Question) OptionIndex(option string) int {
	want := strings.TrimSpace(option)
	for i, o := range q.Options {
		if strings.TrimSpace(o) == want {
			return i
		}
	}
	return -1
}

// Catalog is a versioned, ordered question set. It is built once at startup
// and never mutated afterwards.
type Catalog struct {
	version   int
	questions []*Question
	byID      map[int]*Question
	sections  []string
}

// New validates the question list and builds lookup structures.
// Question order is significant: section order and tie-breaking follow it.
func New(version int, questions []*Question) (*Catalog, error) {
	if version <= 0 {
		return nil, fmt.Errorf("catalog version must be positive, got %d", version)
	}
	c := &Catalog{version: version, byID: make(map[int]*Question, len(questions))}
	seenSection := map[string]bool{}
	for _, q := range questions {
		if q.ID <= 0 {
			return nil, fmt.Errorf("question %q: id must be positive", q.Text)
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		}
		if q.Section == "" {
			return nil, fmt.Errorf("question %d: section is required", q.ID)
		}
		switch q.Type {
		case TypeMultipleChoice:
			if len(q.Options) == 0 {
				return nil, fmt.Errorf("question %d: multiple choice requires options", q.ID)
			}
			if q.Weight < len(q.Options) {
				return nil, fmt.Errorf("question %d: weight %d below option count %d", q.ID, q.Weight, len(q.Options))
			}
		case TypeDeclaration:
			if len(q.Options) != 2 {
				return nil, fmt.Errorf("question %d: declaration requires exactly two options", q.ID)
			}
			if q.OptionIndex(AntithesisMarker) < 0 {
				return nil, fmt.Errorf("question %d: declaration missing antithesis option", q.ID)
			}
		case TypeInput:
			// unscored; weight ignored
		default:
			return nil, fmt.Errorf("question %d: unknown type %q", q.ID, q.Type)
		}
		if q.Scored() && q.Weight <= 0 {
			return nil, fmt.Errorf("question %d: weight must be positive", q.ID)
		}
		c.byID[q.ID] = q
		c.questions = append(c.questions, q)
		if !seenSection[q.Section] {
			seenSection[q.Section] = true
			c.sections = append(c.sections, q.Section)
		}
	}
	return c, nil
}

// Version identifies the active catalog revision. Stored score results carry
// it so recalculation can detect stale results.
func (c *Catalog) Version() int { return c.version }

// Question looks up a catalog entry by id, or nil.
func (c *Catalog) Question(id int) *Question { return c.byID[id] }

// Questions returns the catalog in declaration order.
func (c *Catalog) Questions() []*Question {
	return append([]*Question(nil), c.questions...)
}

// Sections lists section names in catalog order.
func (c *Catalog) Sections() []string {
	return append([]string(nil), c.sections...)
}

// SectionIndex returns the catalog position of a section name, used as the
// deterministic tie-break when ranking sections. Unknown sections sort last.
func (c *Catalog) SectionIndex(name string) int {
	for i, s := range c.sections {
		if s == name {
			return i
		}
	}
	return len(c.sections)
}

// PossibleBySection sums the weights of scored questions per section.
// Sections holding only input questions are omitted.
func (c *Catalog) PossibleBySection() map[string]int {
	out := map[string]int{}
	for _, q := range c.questions {
		if q.Scored() {
			out[q.Section] += q.Weight
		}
	}
	return out
}

// TotalPossible is the maximum obtainable point total across the catalog.
func (c *Catalog) TotalPossible() int {
	total := 0
	for _, q := range c.questions {
		if q.Scored() {
			total += q.Weight
		}
	}
	return total
}

// ScoredCount is the number of scored questions in the catalog.
func (c *Catalog) ScoredCount() int {
	n := 0
	for _, q := range c.questions {
		if q.Scored() {
			n++
		}
	}
	return n
}
