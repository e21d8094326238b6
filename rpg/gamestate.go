package rpg

import (
	"maps"
	"slices"
)

// Default character stats, all starting at 10.
var DefaultStats = []string{"Strength", "Dexterity", "Intelligence", "Wisdom", "Constitution", "Charisma"}

// Default factions, all starting at 0.
var DefaultFactions = []string{"Kingdom", "Rebels", "Merchants"}

// GameState is the player context that conditions read and actions mutate.
// It is passed to TriggerEvent as the game context. Not safe for concurrent
// use.
type GameState struct {
	Level       int             `json:"level"`
	SkillPoints int             `json:"skill_points"`
	Stats       map[string]int  `json:"stats"`
	Inventory   []string        `json:"inventory"`
	Flags       map[string]bool `json:"flags"`
	Reputation  map[string]int  `json:"reputation"`
}

// NewGameState returns a level 1 character with default stats and neutral
// reputation.
func NewGameState() *GameState {
	gs := &GameState{
		Level:      1,
		Stats:      make(map[string]int, len(DefaultStats)),
		Inventory:  []string{},
		Flags:      map[string]bool{},
		Reputation: make(map[string]int, len(DefaultFactions)),
	}
	for _, s := range DefaultStats {
		gs.Stats[s] = 10
	}
	for _, f := range DefaultFactions {
		gs.Reputation[f] = 0
	}
	return gs
}

func (gs *GameState) HasItem(item string) bool {
	return slices.Contains(gs.Inventory, item)
}

// CountItem returns how many copies of item are carried.
func (gs *GameState) CountItem(item string) int {
	n := 0
	for _, it := range gs.Inventory {
		if it == item {
			n++
		}
	}
	return n
}

// HasStat reports whether stat exists and is at least min.
func (gs *GameState) HasStat(stat string, min int) bool {
	v, ok := gs.Stats[stat]
	return ok && v >= min
}

func (gs *GameState) IsFlagSet(flag string) bool {
	return gs.Flags[flag]
}

// HasReputation reports whether faction is known and at least min.
func (gs *GameState) HasReputation(faction string, min int) bool {
	v, ok := gs.Reputation[faction]
	return ok && v >= min
}

func (gs *GameState) AddItem(item string) {
	gs.Inventory = append(gs.Inventory, item)
}

// RemoveItem drops one copy of item. It reports false if none was carried.
func (gs *GameState) RemoveItem(item string) bool {
	i := slices.Index(gs.Inventory, item)
	if i < 0 {
		return false
	}
	gs.Inventory = slices.Delete(gs.Inventory, i, i+1)
	return true
}

func (gs *GameState) SetFlag(flag string, value bool) {
	if gs.Flags == nil {
		gs.Flags = map[string]bool{}
	}
	gs.Flags[flag] = value
}

// ModifyStat adds delta to stat, creating it at delta if unknown.
func (gs *GameState) ModifyStat(stat string, delta int) {
	if gs.Stats == nil {
		gs.Stats = map[string]int{}
	}
	gs.Stats[stat] += delta
}

// ModifyReputation adds delta to faction, creating it at delta if unknown.
func (gs *GameState) ModifyReputation(faction string, delta int) {
	if gs.Reputation == nil {
		gs.Reputation = map[string]int{}
	}
	gs.Reputation[faction] += delta
}

// Clone returns a deep copy.
func (gs *GameState) Clone() *GameState {
	c := *gs
	c.Stats = maps.Clone(gs.Stats)
	c.Inventory = slices.Clone(gs.Inventory)
	c.Flags = maps.Clone(gs.Flags)
	c.Reputation = maps.Clone(gs.Reputation)
	return &c
}
