package dare

import "math/rand"

// fallbackPool is used whenever the text provider fails. Kept generic so
// any loser name works without templating.
var fallbackPool = []string{
	"Speak in a terrible pirate accent until your next turn.",
	"Do your best impression of another player until someone guesses who.",
	"Sing the chorus of the last song you listened to.",
	"Let the group pick a new nickname for you for the rest of the game.",
	"Do ten jumping jacks while narrating them like a sports commentator.",
	"Tell the group your most embarrassing autocorrect fail.",
	"Balance something on your head until the next round starts.",
	"Compliment every player in the room in rhyme.",
	"Show the group the fifth photo in your camera roll and explain it.",
	"Talk like a royal addressing their subjects until your next turn.",
}

// Fallback picks a dare uniformly from the local pool.
func Fallback(rng *rand.Rand) string {
	return fallbackPool[rng.Intn(len(fallbackPool))]
}
