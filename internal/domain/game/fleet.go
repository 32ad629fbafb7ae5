package game

import (
	"sort"
	"time"

	"github.com/andrescamacho/solarion-go/pkg/utils"
)

// Fleet maps unit ids to quantities. Garrisons use the same shape.
type Fleet map[int64]int64

// Clone returns a copy without zero entries
func (f Fleet) Clone() Fleet {
	out := make(Fleet, len(f))
	for id, qty := range f {
		if qty > 0 {
			out[id] = qty
		}
	}
	return out
}

// Total returns the number of units in the fleet
func (f Fleet) Total() int64 {
	var total int64
	for _, qty := range f {
		total += qty
	}
	return total
}

// IsEmpty reports whether the fleet holds no units
func (f Fleet) IsEmpty() bool {
	return f.Total() <= 0
}

// UnitIDs returns the unit ids in ascending order
func (f Fleet) UnitIDs() []int64 {
	ids := make([]int64, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AttackPower sums quantity times unit attack
func (f Fleet) AttackPower(units map[int64]*Unit) int64 {
	return f.sum(units, func(u *Unit) int64 { return u.Attack })
}

// DefensePower sums quantity times unit defense
func (f Fleet) DefensePower(units map[int64]*Unit) int64 {
	return f.sum(units, func(u *Unit) int64 { return u.Defense })
}

// CarryCapacity sums quantity times unit capacity
func (f Fleet) CarryCapacity(units map[int64]*Unit) int64 {
	return f.sum(units, func(u *Unit) int64 { return u.Capacity })
}

// SlowestSpeed returns the speed of the slowest unit in the fleet
func (f Fleet) SlowestSpeed(units map[int64]*Unit) int64 {
	var slowest int64
	for id, qty := range f {
		u, ok := units[id]
		if !ok || qty <= 0 {
			continue
		}
		if slowest == 0 || u.Speed < slowest {
			slowest = u.Speed
		}
	}
	return slowest
}

func (f Fleet) sum(units map[int64]*Unit, stat func(*Unit) int64) int64 {
	var total int64
	for id, qty := range f {
		u, ok := units[id]
		if !ok || qty <= 0 {
			continue
		}
		total += qty * stat(u)
	}
	return total
}

// TravelDuration returns how long a fleet moving at speed (distance per
// hour) needs to cover distance. Never shorter than minimum.
func TravelDuration(distance float64, speed int64, minimum time.Duration) time.Duration {
	if speed <= 0 {
		return minimum
	}
	d := time.Duration(distance / float64(speed) * float64(time.Hour))
	if d < minimum {
		return minimum
	}
	return d.Truncate(time.Second)
}

// BattleResult describes the outcome of an attack on a garrison
type BattleResult struct {
	AttackerWon       bool
	AttackerSurvivors Fleet
	DefenderLosses    Fleet
}

// ResolveBattle pits attackers against a defending garrison.
//
// The side with more power wins; ties go to the defender. The loser is wiped
// out and the winner loses floor(qty * weaker / stronger) of each unit type.
// An undefended planet costs the attacker nothing, even one without attack
// power such as a freighter raid.
func ResolveBattle(attackers, defenders Fleet, units map[int64]*Unit) BattleResult {
	attack := attackers.AttackPower(units)
	defense := defenders.DefensePower(units)

	if defense == 0 {
		return BattleResult{
			AttackerWon:       true,
			AttackerSurvivors: attackers.Clone(),
			DefenderLosses:    defenders.Clone(),
		}
	}

	if attack > defense {
		survivors := make(Fleet, len(attackers))
		for id, qty := range attackers {
			lost := utils.Min64(qty, qty*defense/attack)
			if qty-lost > 0 {
				survivors[id] = qty - lost
			}
		}
		return BattleResult{
			AttackerWon:       true,
			AttackerSurvivors: survivors,
			DefenderLosses:    defenders.Clone(),
		}
	}

	losses := make(Fleet, len(defenders))
	if defense > 0 {
		for id, qty := range defenders {
			lost := utils.Min64(qty, qty*attack/defense)
			if lost > 0 {
				losses[id] = lost
			}
		}
	}
	return BattleResult{
		AttackerWon:       false,
		AttackerSurvivors: Fleet{},
		DefenderLosses:    losses,
	}
}
