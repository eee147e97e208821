package game

import (
	"math/rand"
	"sort"

	"dareroom/internal/model"
)

// worstScorers returns all player ids tied at the worst value given the
// polarity flag. Only players present in results are considered; absent
// players abstained and cannot lose the round.
func worstScorers(results map[string]int, higherIsBetter bool) []string {
	if len(results) == 0 {
		return nil
	}

	worst := 0
	first := true
	for _, score := range results {
		if first || isWorse(score, worst, higherIsBetter) {
			worst = score
			first = false
		}
	}

	var losers []string
	for id, score := range results {
		if score == worst {
			losers = append(losers, id)
		}
	}
	sort.Strings(losers)
	return losers
}

func isWorse(a, b int, higherIsBetter bool) bool {
	if higherIsBetter {
		return a < b
	}
	return a > b
}

// losingTeam computes each team's mean score and returns the team with
// the worse mean. Empty teams are excluded; an exact tie of means is
// broken by a uniform random choice.
func losingTeam(scores map[model.Team][]int, higherIsBetter bool, rng *rand.Rand) model.Team {
	type teamMean struct {
		team model.Team
		mean float64
	}

	var means []teamMean
	for team, vals := range scores {
		if len(vals) == 0 {
			continue
		}
		sum := 0
		for _, v := range vals {
			sum += v
		}
		means = append(means, teamMean{team: team, mean: float64(sum) / float64(len(vals))})
	}
	if len(means) == 0 {
		return model.TeamNone
	}
	sort.Slice(means, func(i, j int) bool { return means[i].team < means[j].team })
	if len(means) == 1 {
		return means[0].team
	}

	a, b := means[0], means[1]
	if a.mean == b.mean {
		return means[rng.Intn(2)].team
	}
	if higherIsBetter == (a.mean < b.mean) {
		return a.team
	}
	return b.team
}

// topVoted tallies votes (voter -> choice) and returns the most-voted
// choices, ties included. Callers break residual ties with the session rng.
func topVoted(votes map[string]string) []string {
	if len(votes) == 0 {
		return nil
	}

	tally := make(map[string]int)
	for _, choice := range votes {
		tally[choice]++
	}

	best := 0
	for _, n := range tally {
		if n > best {
			best = n
		}
	}

	var top []string
	for choice, n := range tally {
		if n == best {
			top = append(top, choice)
		}
	}
	sort.Strings(top)
	return top
}

// pickOne returns a uniform random element of ids.
func pickOne(ids []string, rng *rand.Rand) string {
	return ids[rng.Intn(len(ids))]
}
