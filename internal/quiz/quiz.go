// Package quiz serves a small guessing game: the player reads a code
// snippet and decides whether it was AI-generated. The question bank
// is embedded so the binary stays self-contained.
package quiz

import (
	_ "embed"
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var questionsYAML []byte

// Question is one quiz item. The AI flag and explanation are withheld
// from API responses until the answer is graded.
type Question struct {
	ID          int    `yaml:"id" json:"id"`
	Language    string `yaml:"language" json:"language"`
	Snippet     string `yaml:"snippet" json:"snippet"`
	AI          bool   `yaml:"ai" json:"-"`
	Explanation string `yaml:"explanation" json:"-"`
}

// Answer is one graded response.
type Answer struct {
	QuestionID  int    `json:"questionId"`
	Correct     bool   `json:"correct"`
	AI          bool   `json:"ai"`
	Explanation string `json:"explanation"`
}

// Bank holds the loaded question set.
type Bank struct {
	questions []Question
	byID      map[int]Question
}

// Load parses the embedded question bank.
func Load() (*Bank, error) {
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(questionsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse quiz bank: %w", err)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("quiz bank is empty")
	}

	byID := make(map[int]Question, len(doc.Questions))
	for _, q := range doc.Questions {
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate quiz question id %d", q.ID)
		}
		byID[q.ID] = q
	}

	return &Bank{questions: doc.Questions, byID: byID}, nil
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Pick returns up to n distinct questions in random order.
func (b *Bank) Pick(n int) []Question {
	if n <= 0 || n > len(b.questions) {
		n = len(b.questions)
	}
	perm := rand.Perm(len(b.questions))
	out := make([]Question, 0, n)
	for _, i := range perm[:n] {
		out = append(out, b.questions[i])
	}
	return out
}

// Grade checks a guess against the bank.
func (b *Bank) Grade(questionID int, guessedAI bool) (*Answer, error) {
	q, ok := b.byID[questionID]
	if !ok {
		return nil, fmt.Errorf("unknown quiz question id %d", questionID)
	}
	return &Answer{
		QuestionID:  q.ID,
		Correct:     guessedAI == q.AI,
		AI:          q.AI,
		Explanation: q.Explanation,
	}, nil
}
