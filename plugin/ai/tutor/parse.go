package tutor

import (
	"regexp"
	"strings"
)

// GeneratedQuestion is one parsed MCQ from the model's raw output.
type GeneratedQuestion struct {
	Question      string
	Options       []string
	CorrectAnswer string
}

// GeneratedCard is one parsed flashcard from the model's raw output.
type GeneratedCard struct {
	Front string
	Back  string
}

var (
	questionRE = regexp.MustCompile(`^\d+[.)]\s*(.+)$`)
	optionRE   = regexp.MustCompile(`^([A-D])[.)]\s*(.+)$`)
	answerRE   = regexp.MustCompile(`(?i)^answer:\s*([A-D])\b`)
)

// parseQuizText extracts MCQs from the numbered-list format the quiz prompt
// requests. Malformed blocks (missing options or answer) are dropped rather
// than failing the whole batch; models occasionally garble one question.
func parseQuizText(raw string) []*GeneratedQuestion {
	var questions []*GeneratedQuestion
	var current *GeneratedQuestion
	options := map[string]string{}

	flush := func() {
		if current == nil {
			return
		}
		if len(options) >= 2 && current.CorrectAnswer != "" {
			for _, letter := range []string{"A", "B", "C", "D"} {
				if option, ok := options[letter]; ok {
					current.Options = append(current.Options, option)
				}
			}
			if answer, ok := options[current.CorrectAnswer]; ok {
				current.CorrectAnswer = answer
				questions = append(questions, current)
			}
		}
		current = nil
		options = map[string]string{}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(stripMarkdownBold(line))
		if line == "" {
			continue
		}
		if m := questionRE.FindStringSubmatch(line); m != nil {
			flush()
			current = &GeneratedQuestion{Question: strings.TrimSpace(m[1])}
			continue
		}
		if current == nil {
			continue
		}
		if m := optionRE.FindStringSubmatch(line); m != nil {
			options[m[1]] = strings.TrimSpace(m[2])
			continue
		}
		if m := answerRE.FindStringSubmatch(line); m != nil {
			current.CorrectAnswer = strings.ToUpper(m[1])
		}
	}
	flush()
	return questions
}

// parseFlashcardText extracts FRONT/BACK pairs from ---separated blocks.
// A BACK continues across lines until the next separator or FRONT.
func parseFlashcardText(raw string) []*GeneratedCard {
	var cards []*GeneratedCard
	for _, block := range strings.Split(raw, "---") {
		var front string
		var back []string
		inBack := false
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(stripMarkdownBold(line))
			switch {
			case strings.HasPrefix(strings.ToUpper(line), "FRONT:"):
				front = strings.TrimSpace(line[len("FRONT:"):])
				inBack = false
			case strings.HasPrefix(strings.ToUpper(line), "BACK:"):
				back = append(back, strings.TrimSpace(line[len("BACK:"):]))
				inBack = true
			case inBack && line != "":
				back = append(back, line)
			}
		}
		if front != "" && len(back) > 0 {
			cards = append(cards, &GeneratedCard{
				Front: front,
				Back:  strings.Join(back, "\n"),
			})
		}
	}
	return cards
}

func stripMarkdownBold(s string) string {
	return strings.ReplaceAll(s, "**", "")
}
