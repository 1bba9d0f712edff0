// Package quiz implements the quiz attempt engine: quiz registration,
// attempt scoring with normalized answer comparison, and attempt history.
package quiz

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeFillBlank   QuestionType = "fill-blank"
	QuestionTypeShortAnswer QuestionType = "short-answer"
	QuestionTypeTrueFalse   QuestionType = "true-false"
)

// Question is a single quiz question. Options is only populated for
// multiple-choice questions.
type Question struct {
	UID           string       `json:"uid"`
	Type          QuestionType `json:"type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	Explanation   string       `json:"explanation,omitempty"`
	Difficulty    string       `json:"difficulty,omitempty"`
	Topic         string       `json:"topic,omitempty"`
}

// Quiz is a registered quiz. TimeLimit is in seconds, 0 means unlimited.
type Quiz struct {
	UID       string      `json:"uid"`
	Title     string      `json:"title"`
	Topic     string      `json:"topic"`
	Questions []*Question `json:"questions"`
	TimeLimit int         `json:"timeLimit,omitempty"`
	CreatedAt int64       `json:"createdAt"`
}

// QuestionResult is the per-question verdict inside an attempt.
type QuestionResult struct {
	QuestionUID   string `json:"questionUid"`
	Correct       bool   `json:"correct"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
}

// Attempt is one scored submission against a quiz. Score counts correct
// answers; TotalQuestions is the question count at submission time.
// TimeTaken is informational and never affects the score.
type Attempt struct {
	UID             string            `json:"uid"`
	QuizUID         string            `json:"quizUid"`
	Answers         map[string]string `json:"answers"`
	Score           int               `json:"score"`
	TotalQuestions  int               `json:"totalQuestions"`
	QuestionResults []*QuestionResult `json:"questionResults"`
	TimeTaken       int               `json:"timeTaken"`
	CompletedAt     int64             `json:"completedAt"`
}

// Percentage returns the attempt score as a percentage of its question count.
func (a *Attempt) Percentage() float64 {
	if a.TotalQuestions == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.TotalQuestions) * 100
}

func (q *Question) clone() *Question {
	c := *q
	if q.Options != nil {
		c.Options = append([]string{}, q.Options...)
	}
	return &c
}

func (q *Quiz) clone() *Quiz {
	c := *q
	c.Questions = make([]*Question, 0, len(q.Questions))
	for _, question := range q.Questions {
		c.Questions = append(c.Questions, question.clone())
	}
	return &c
}

func (a *Attempt) clone() *Attempt {
	c := *a
	c.Answers = make(map[string]string, len(a.Answers))
	for k, v := range a.Answers {
		c.Answers[k] = v
	}
	c.QuestionResults = make([]*QuestionResult, 0, len(a.QuestionResults))
	for _, result := range a.QuestionResults {
		r := *result
		c.QuestionResults = append(c.QuestionResults, &r)
	}
	return &c
}
