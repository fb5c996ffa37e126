package tower

import (
	"github.com/nstehr/colony/colony-core/model"
)

// PowerAt scales a tower's optimal power by range: full power up to the
// optimal range, the falloff floor from the falloff range on, and a linear
// ramp between.
func PowerAt(rng int, optimal float64) float64 {
	switch {
	case rng <= model.TowerOptimalRange:
		return optimal
	case rng >= model.TowerFalloffRange:
		return optimal * (1 - model.TowerFalloff)
	}
	frac := float64(rng-model.TowerOptimalRange) / float64(model.TowerFalloffRange-model.TowerOptimalRange)
	return optimal * (1 - model.TowerFalloff*frac)
}

// DamagePerTick is what one shot from a tower at from does to target after
// its tough boosts.
func DamagePerTick(from model.Position, target *model.Agent) float64 {
	return PowerAt(from.RangeTo(target.Pos), model.TowerPowerAttack) * target.DefenceFactor()
}

func MeleeHealPerTick(a *model.Agent) float64 {
	return a.Power(model.Heal, model.HealPower, model.BoostHeal)
}

func RangedHealPerTick(a *model.Agent) float64 {
	return a.Power(model.Heal, model.RangedHealPower, model.BoostRangedHeal)
}

// IncomingHeal sums what the hostiles around target can heal it for in one
// tick: melee heal from within one tile, ranged heal from two or three.
func IncomingHeal(target *model.Agent, hostiles []*model.Agent) float64 {
	total := 0.0
	for _, h := range hostiles {
		switch r := target.Pos.RangeTo(h.Pos); {
		case r <= 1:
			total += MeleeHealPerTick(h)
		case r <= model.RangedHealRange:
			total += RangedHealPerTick(h)
		}
	}
	return total
}
