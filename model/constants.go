package model

// Body part kinds.
type PartKind string

const (
	Move         PartKind = "move"
	Work         PartKind = "work"
	Carry        PartKind = "carry"
	Attack       PartKind = "attack"
	RangedAttack PartKind = "ranged_attack"
	Heal         PartKind = "heal"
	Tough        PartKind = "tough"
	Claim        PartKind = "claim"
)

// PartCost is the spawn energy cost of each body part.
var PartCost = map[PartKind]int{
	Move:         50,
	Work:         100,
	Attack:       80,
	Carry:        50,
	Heal:         250,
	RangedAttack: 150,
	Tough:        10,
	Claim:        600,
}

// Resource kinds. Only energy matters to the decision code; everything else
// is hauled to storage.
type Resource string

const Energy Resource = "energy"

// Game constants the decision code depends on.
const (
	MaxBodySize      = 50
	SpawnTimePerPart = 3
	SpawnEnergyStart = 300
	CarryCapacity    = 50
	AgentLifeTime    = 1500

	HarvestPower    = 2
	BuildPower      = 5
	RepairPower     = 100
	UpgradePower    = 1
	HealPower       = 12
	RangedHealPower = 4

	TowerCapacity      = 1000
	TowerEnergyCost    = 10
	TowerPowerAttack   = 600
	TowerPowerHeal     = 400
	TowerPowerRepair   = 800
	TowerOptimalRange  = 5
	TowerFalloffRange  = 20
	TowerFalloff       = 0.75
	UpgradeRange       = 3
	BuildRange         = 3
	RepairRange        = 3
	RangedHealRange    = 3
	InteractRange      = 1
	ControllerMaxLevel = 8
)

// Boost method names, as keys into Boosts.
const (
	BoostHeal       = "heal"
	BoostRangedHeal = "rangedHeal"
	BoostDamage     = "damage"
	BoostAttack     = "attack"
	BoostHarvest    = "harvest"
	BoostBuild      = "build"
	BoostRepair     = "repair"
	BoostUpgrade    = "upgradeController"
	BoostCapacity   = "capacity"
	BoostFatigue    = "fatigue"
)

// Boosts maps part kind → compound → method → multiplier.
var Boosts = map[PartKind]map[string]map[string]float64{
	Work: {
		"UO":    {BoostHarvest: 3},
		"UHO2":  {BoostHarvest: 5},
		"XUHO2": {BoostHarvest: 7},
		"LH":    {BoostBuild: 1.5, BoostRepair: 1.5},
		"LH2O":  {BoostBuild: 1.8, BoostRepair: 1.8},
		"XLH2O": {BoostBuild: 2, BoostRepair: 2},
		"GH":    {BoostUpgrade: 1.5},
		"GH2O":  {BoostUpgrade: 1.8},
		"XGH2O": {BoostUpgrade: 2},
	},
	Attack: {
		"UH":    {BoostAttack: 2},
		"UH2O":  {BoostAttack: 3},
		"XUH2O": {BoostAttack: 4},
	},
	Heal: {
		"LO":    {BoostHeal: 2, BoostRangedHeal: 2},
		"LHO2":  {BoostHeal: 3, BoostRangedHeal: 3},
		"XLHO2": {BoostHeal: 4, BoostRangedHeal: 4},
	},
	Carry: {
		"KH":    {BoostCapacity: 2},
		"KH2O":  {BoostCapacity: 3},
		"XKH2O": {BoostCapacity: 4},
	},
	Move: {
		"ZO":    {BoostFatigue: 2},
		"ZHO2":  {BoostFatigue: 3},
		"XZHO2": {BoostFatigue: 4},
	},
	Tough: {
		"GO":    {BoostDamage: .7},
		"GHO2":  {BoostDamage: .5},
		"XGHO2": {BoostDamage: .3},
	},
}

// BoostFactor returns the multiplier a boost compound applies to method,
// or 1 when the compound does not affect it.
func BoostFactor(kind PartKind, boost, method string) float64 {
	if boost == "" {
		return 1
	}
	if f, ok := Boosts[kind][boost][method]; ok {
		return f
	}
	return 1
}

// BodyCost sums the spawn cost of a body plan.
func BodyCost(body []PartKind) int {
	total := 0
	for _, p := range body {
		total += PartCost[p]
	}
	return total
}
