package quiz

import (
	"encoding/json"
	"fmt"
	"os"

	"quizclash/internal/model"
)

// Catalog holds the static question bank, loaded once at process start and
// read-only afterwards. It is constructed explicitly and injected wherever
// question pools are needed.
type Catalog struct {
	subjects []model.Subject
	pools    map[string][]model.Question // subjectID/topicID -> pool
}

// LoadCatalog reads the bank from a JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	var subjects []model.Subject
	if err := json.Unmarshal(data, &subjects); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	return NewCatalog(subjects), nil
}

// NewCatalog builds a catalog from in-memory subjects.
func NewCatalog(subjects []model.Subject) *Catalog {
	c := &Catalog{
		subjects: subjects,
		pools:    make(map[string][]model.Question),
	}
	for _, s := range subjects {
		for _, t := range s.Topics {
			c.pools[poolKey(s.ID, t.ID)] = t.Questions
		}
	}
	return c
}

func poolKey(subjectID, topicID string) string {
	return subjectID + "/" + topicID
}

// Subjects returns the full bank, for clients loading it at startup.
func (c *Catalog) Subjects() []model.Subject {
	return c.subjects
}

// Pool returns the ordered question pool for a subject/topic, or nil when the
// pair is unknown.
func (c *Catalog) Pool(subjectID, topicID string) []model.Question {
	return c.pools[poolKey(subjectID, topicID)]
}

// HasTopic reports whether the subject/topic pair exists in the bank.
func (c *Catalog) HasTopic(subjectID, topicID string) bool {
	_, ok := c.pools[poolKey(subjectID, topicID)]
	return ok
}

// QuestionCount is the total number of questions across the bank.
func (c *Catalog) QuestionCount() int {
	n := 0
	for _, pool := range c.pools {
		n += len(pool)
	}
	return n
}
