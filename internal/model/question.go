package model

// Question is one multiple-choice item from the static bank. Question content
// is never stored in a room: every client derives the same sequence from the
// room seed and settings.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answerIndex"`
	Notes       string   `json:"notes,omitempty"`
}

// Topic groups questions under a subject.
type Topic struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Subject is the top level of the question bank.
type Subject struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Topics []Topic `json:"topics"`
}
