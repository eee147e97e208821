package model

// PowerUpType identifies a consumable power-up. Players hold a multiset
// of these and spend one instance per use.
type PowerUpType string

const (
	PowerUpSkipDare     PowerUpType = "SKIP_DARE"
	PowerUpExtraTime    PowerUpType = "EXTRA_TIME"
	PowerUpSwapCategory PowerUpType = "SWAP_CATEGORY"
)

// KnownPowerUp reports whether t is a recognized power-up type.
func KnownPowerUp(t PowerUpType) bool {
	switch t {
	case PowerUpSkipDare, PowerUpExtraTime, PowerUpSwapCategory:
		return true
	}
	return false
}
