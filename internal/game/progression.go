package game

import (
	"fmt"
	"math"

	"dareroom/internal/model"
)

// levelRewards maps a reached level to the unlock granted when crossing
// it. Grants are idempotent: a profile that already owns the id never
// receives it again.
var levelRewards = map[int]string{
	2:  "avatar:shades",
	3:  "frame:neon",
	4:  "badge:party_animal",
	5:  "avatar:crown",
	7:  "frame:gold",
	10: "title:dare_legend",
}

// partyAnimalLevel gates the level-bound badge; it has no stat thresholds.
const partyAnimalLevel = 4

// badgeDef ties a badge to the stat that drives its tiers
type badgeDef struct {
	stat       string
	thresholds []int
}

var badgeDefs = map[string]badgeDef{
	"dare_survivor": {stat: "daresCompleted", thresholds: []int{1, 10, 50}},
	"champion":      {stat: "wins", thresholds: []int{1, 5, 25}},
}

// XPForLevel returns the cumulative XP required to reach level. Level 1
// (and below) costs nothing; above that the curve is floor(100*(n-1)^1.5).
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return int(math.Floor(100 * math.Pow(float64(level-1), 1.5)))
}

// LevelInfo resolves a total XP amount into the player's level, progress
// within the level, and the width of the current level band.
func LevelInfo(totalXP int) (level, xpInLevel, xpToNext int) {
	level = 1
	for XPForLevel(level+1) <= totalXP {
		level++
	}
	xpInLevel = totalXP - XPForLevel(level)
	xpToNext = XPForLevel(level+1) - XPForLevel(level)
	return level, xpInLevel, xpToNext
}

// ApplyXP adds XP to a profile and grants any level rewards crossed.
// Returns whether the player leveled up, the new level, and the unlock
// ids granted by this application (already-owned ids are skipped).
func ApplyXP(profile *model.PlayerProfile, amount int) (leveledUp bool, newLevel int, granted []string) {
	before, _, _ := LevelInfo(profile.TotalXP)
	profile.TotalXP += amount
	after, _, _ := LevelInfo(profile.TotalXP)

	if after <= before {
		return false, after, nil
	}

	for lvl := before + 1; lvl <= after; lvl++ {
		reward, ok := levelRewards[lvl]
		if !ok {
			continue
		}
		if profile.HasUnlock(reward) {
			continue
		}
		profile.Unlocks = append(profile.Unlocks, reward)
		granted = append(granted, reward)
	}

	if after >= partyAnimalLevel && profile.BadgeTiers["party_animal"] < 1 {
		if profile.BadgeTiers == nil {
			profile.BadgeTiers = make(map[string]int)
		}
		profile.BadgeTiers["party_animal"] = 1
	}

	return true, after, granted
}

// BadgeTierFor returns the highest tier of badgeID whose stat threshold
// statValue meets. The level-gated badge is binary: tier 1 once the
// profile's level reaches the gate, regardless of statValue.
func BadgeTierFor(profile *model.PlayerProfile, badgeID string, statValue int) int {
	if badgeID == "party_animal" {
		level, _, _ := LevelInfo(profile.TotalXP)
		if level >= partyAnimalLevel {
			return 1
		}
		return 0
	}

	def, ok := badgeDefs[badgeID]
	if !ok {
		return 0
	}
	tier := 0
	for i, th := range def.thresholds {
		if statValue >= th {
			tier = i + 1
		}
	}
	return tier
}

// refreshBadge recomputes a stat-driven badge tier and records it on the
// profile. Returns the unlock id when the tier increased, or "".
func refreshBadge(profile *model.PlayerProfile, badgeID string, statValue int) string {
	tier := BadgeTierFor(profile, badgeID, statValue)
	if tier <= profile.BadgeTiers[badgeID] {
		return ""
	}
	if profile.BadgeTiers == nil {
		profile.BadgeTiers = make(map[string]int)
	}
	profile.BadgeTiers[badgeID] = tier
	return fmt.Sprintf("badge:%s:%d", badgeID, tier)
}
