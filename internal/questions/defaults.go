package questions

import (
	"math/rand"

	"peerprep/interview/internal/config"
	"peerprep/interview/internal/models"
)

// defaultPool is the fixed fallback set used whenever generation is
// unavailable. Copied and shuffled per call; never mutated.
var defaultPool = []models.Question{
	{Text: "Tell me about a project you are proud of and your role in it.", Difficulty: config.DifficultyEasy, Category: "general"},
	{Text: "How do you approach breaking down a vague requirement into work you can start?", Difficulty: config.DifficultyEasy, Category: "general"},
	{Text: "Describe a time you disagreed with a teammate on a technical choice. How did it resolve?", Difficulty: config.DifficultyMedium, Category: "general"},
	{Text: "Explain a system you designed end to end. What would you change today?", Difficulty: config.DifficultyMedium, Category: "systems"},
	{Text: "How do you decide what to test, and what not to?", Difficulty: config.DifficultyMedium, Category: "general"},
	{Text: "Walk through how you debugged the most confusing production incident you have seen.", Difficulty: config.DifficultyHard, Category: "operations"},
	{Text: "Design a service that must keep working while one of its dependencies is down.", Difficulty: config.DifficultyHard, Category: "systems"},
}

// DefaultQuestions returns a shuffled copy of the fallback pool. The shuffle
// is a pure function of the seed; callers pass a fresh seed per request.
func DefaultQuestions(seed int64) []models.Question {
	shuffled := make([]models.Question, len(defaultPool))
	copy(shuffled, defaultPool)

	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
