package tutor

// DepthLevel controls how deep an explanation goes.
type DepthLevel string

const (
	// DepthCore covers the essentials: definitions, the core idea, one example.
	DepthCore DepthLevel = "core"
	// DepthApplied adds practice: worked examples, common pitfalls, exercises.
	DepthApplied DepthLevel = "applied"
	// DepthMastery goes deep: edge cases, theory, connections to related topics.
	DepthMastery DepthLevel = "mastery"
)

// Valid reports whether d is a known depth level.
func (d DepthLevel) Valid() bool {
	switch d {
	case DepthCore, DepthApplied, DepthMastery:
		return true
	}
	return false
}

// TaskMode selects between open teaching and assignment guidance.
type TaskMode string

const (
	// ModeLearning answers fully and completely.
	ModeLearning TaskMode = "learning"
	// ModeAssignment guides without giving away answers.
	ModeAssignment TaskMode = "assignment"
)

// Valid reports whether m is a known task mode.
func (m TaskMode) Valid() bool {
	return m == ModeLearning || m == ModeAssignment
}

var depthAddons = map[DepthLevel]string{
	DepthCore: `Keep explanations focused on the essentials. Define the concept,
explain the core idea in plain language, and give one clear example. Avoid
tangents and advanced edge cases.`,
	DepthApplied: `Focus on application. After a brief recap of the concept, work
through practical examples step by step, point out common mistakes, and end
with a short exercise the student can try.`,
	DepthMastery: `Teach for mastery. Cover the underlying theory, edge cases and
performance characteristics, and connect the topic to related concepts the
student should explore next.`,
}
