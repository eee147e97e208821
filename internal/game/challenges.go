package game

import (
	"math/rand"

	"dareroom/internal/model"
)

var quizPool = []model.QuizPayload{
	{
		Prompt:      "Which planet has the most moons?",
		Options:     []string{"Earth", "Saturn", "Mars", "Venus"},
		AnswerIndex: 1,
	},
	{
		Prompt:      "What is the loudest animal on Earth?",
		Options:     []string{"Lion", "Howler monkey", "Sperm whale", "Elephant"},
		AnswerIndex: 2,
	},
	{
		Prompt:      "Which of these is NOT a real pasta shape?",
		Options:     []string{"Strozzapreti", "Vermicelli", "Gramigna", "Spaghettoni grandi"},
		AnswerIndex: 3,
	},
	{
		Prompt:      "How many hearts does an octopus have?",
		Options:     []string{"One", "Two", "Three", "Eight"},
		AnswerIndex: 2,
	},
	{
		Prompt:      "Which country invented karaoke?",
		Options:     []string{"South Korea", "Japan", "Philippines", "China"},
		AnswerIndex: 1,
	},
}

// newChallenge builds a random challenge with its typed payload.
func newChallenge(rng *rand.Rand) model.Challenge {
	switch rng.Intn(3) {
	case 0:
		quiz := quizPool[rng.Intn(len(quizPool))]
		return model.Challenge{Type: model.ChallengeQuiz, Quiz: &quiz}
	case 1:
		return model.Challenge{Type: model.ChallengeTapRace, TapRace: &model.TapRacePayload{DurationSec: 10}}
	default:
		return model.Challenge{Type: model.ChallengeMemoryMatch, MemoryMatch: &model.MemoryMatchPayload{Pairs: 8}}
	}
}

// suddenDeathChallenge is the fixed micro-contest for tied losers.
func suddenDeathChallenge() model.Challenge {
	return model.Challenge{Type: model.ChallengeTapRace, TapRace: &model.TapRacePayload{DurationSec: 5}}
}
