package tutor

import (
	"fmt"
	"strings"
)

// The tutor is a study-focused assistant: it answers educational questions
// fully and declines everything else.
const baseInstruction = `You are StudyWithMe, an AI educational tutor and study companion. You are strictly dedicated to education, learning, programming, and knowledge acquisition.

ALLOWED TOPICS (answer these fully):
- Programming and computer science (all languages, algorithms, data structures, OS, networking, databases)
- Mathematics, science, and engineering concepts
- History, geography, language learning, and grammar
- Business and economics concepts, academic literature and writing
- Study techniques, exam preparation, and research methodologies
- General educational knowledge and trivia

FORBIDDEN TOPICS (politely refuse):
- Entertainment for its own sake (movies, music, celebrities, gaming)
- Personal relationship advice, political opinions or debates
- Harmful, illegal, or unethical content
- Medical or legal advice (recommend professionals instead)
- Off-topic chatting unrelated to learning

When refusing, respond: "I'm StudyWithMe, your dedicated study companion! I focus exclusively on educational topics like programming, math, science, and general knowledge. Let's get back to learning - what would you like to study?"

RESPONSE RULES:
1. Never truncate answers; give complete explanations.
2. Start with a direct answer, then explain the concept, then give examples.
3. For coding questions provide complete working code with example usage.
4. Use markdown formatting: bold key terms, bullet lists, code blocks.
5. Be comprehensive but stay on topic.`

const learningAddon = `MODE: INTERACTIVE LEARNING
Explain concepts fully and completely, provide detailed examples, answer
every part of the question, and make sure the student understands.`

const assignmentAddon = `MODE: ASSIGNMENT HELP
Do not give direct answers to homework problems. Guide the student to
discover the answer themselves: use Socratic questioning, provide hints,
explain underlying principles, and break the problem into smaller steps.
The goal is academic integrity - help them learn, not cheat.`

// buildSystemInstruction assembles the system prompt for a depth and mode.
func buildSystemInstruction(depth DepthLevel, mode TaskMode) string {
	var b strings.Builder
	b.WriteString(baseInstruction)
	b.WriteString("\n\n")
	if mode == ModeAssignment {
		b.WriteString(assignmentAddon)
	} else {
		b.WriteString(learningAddon)
	}
	if addon, ok := depthAddons[depth]; ok {
		b.WriteString("\n\nDEPTH: ")
		b.WriteString(strings.ToUpper(string(depth)))
		b.WriteString("\n")
		b.WriteString(addon)
	}
	return b.String()
}

// formatUserMessage prefixes the student question with optional context.
func formatUserMessage(message, context string) string {
	if context != "" {
		return fmt.Sprintf("Context: %s\n\nStudent Question: %s", context, message)
	}
	return message
}

// quizPrompt asks for MCQ questions in the exact line format the parser
// expects.
func quizPrompt(topic string, questionCount int, difficulty string) string {
	return fmt.Sprintf(`Generate a quiz about %q with exactly %d multiple choice questions at %s difficulty level.

IMPORTANT: Format each question EXACTLY like this:

1. [Question text here]?
A) [Option A]
B) [Option B]
C) [Option C]
D) [Option D]
Answer: [A, B, C, or D]

Generate exactly %d questions about %q now. Make questions educational and appropriate for %s difficulty:`,
		topic, questionCount, difficulty, questionCount, topic, difficulty)
}

// flashcardPrompt asks for FRONT/BACK card pairs separated by ---.
func flashcardPrompt(topic string, count int) string {
	return fmt.Sprintf(`Create %d flashcards about %q.

Format each flashcard EXACTLY like this:

FRONT: [Question or term to memorize]
BACK: [Answer or definition]

---

Generate %d flashcards about %q now:`, count, topic, count, topic)
}
