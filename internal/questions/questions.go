// Package questions holds the fixed, ordered list of canonical preference
// questions asked of every participant before any dynamic follow-up.
package questions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Question is one canonical preference question with a stable id.
type Question struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// Catalog is an ordered, immutable question list.
type Catalog struct {
	list []Question
}

var defaults = []Question{
	{ID: "q1", Text: "What days of the week generally work best for you?"},
	{ID: "q2", Text: "What time of day do you prefer for activities?"},
	{ID: "q3", Text: "What types of activities do you enjoy most?"},
	{ID: "q4", Text: "Do you have any location preferences or restrictions?"},
	{ID: "q5", Text: "Are there any dietary restrictions or preferences I should know about?"},
	{ID: "q6", Text: "Do you have any mobility or accessibility needs?"},
	{ID: "q7", Text: "Are you bringing children, and if so, what are their ages?"},
	{ID: "q8", Text: "What's your comfort level with different types of transportation?"},
	{ID: "q9", Text: "Are there any budget considerations I should be aware of?"},
	{ID: "q10", Text: "What's most important to you for this event (e.g., socializing, specific activity, etc.)?"},
}

// Default returns the built-in catalog of ten canonical questions.
func Default() *Catalog {
	return &Catalog{list: defaults}
}

// LoadFile reads a catalog from a YAML file. The file replaces the built-in
// list entirely; an empty list is rejected.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse questions file: %w", err)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("questions file %s contains no questions", path)
	}
	for i, q := range doc.Questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d has no id", i+1)
		}
		if q.Text == "" {
			return nil, fmt.Errorf("question %s has no text", q.ID)
		}
	}
	return &Catalog{list: doc.Questions}, nil
}

// All returns the questions in order.
func (c *Catalog) All() []Question {
	out := make([]Question, len(c.list))
	copy(out, c.list)
	return out
}

// ByID looks up a question by its id.
func (c *Catalog) ByID(id string) (Question, bool) {
	for _, q := range c.list {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Next returns the first unanswered canonical question given how many have
// been answered so far. ok is false once the list is exhausted.
func (c *Catalog) Next(answered int) (Question, bool) {
	if answered < 0 || answered >= len(c.list) {
		return Question{}, false
	}
	return c.list[answered], true
}

// Len reports the number of canonical questions.
func (c *Catalog) Len() int { return len(c.list) }
