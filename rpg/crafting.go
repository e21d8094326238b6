package rpg

import (
	"strings"

	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
)

const (
	CraftingAvailable  = "Available"
	RecipeUndiscovered = "Undiscovered"
	RecipeDiscovered   = "Discovered"

	EventDiscoverRecipe = "DiscoverRecipe"

	TypeCraftingSystem = "CraftingSystem"
	TypeRecipe         = "Recipe"
)

// CraftingAutomaton holds crafting systems under the root and recipes
// beneath them. A recipe may hang off another recipe it builds on.
type CraftingAutomaton struct {
	*automata.Automaton
}

func NewCraftingAutomaton(opts ...automata.Option) *CraftingAutomaton {
	return &CraftingAutomaton{Automaton: automata.New(opts...)}
}

func (c *CraftingAutomaton) CreateCraftingSystem(name string) (uuid.UUID, error) {
	return underRoot(c.Automaton, name, TypeCraftingSystem, CraftingAvailable, nil)
}

// AddRecipe adds an Undiscovered recipe under parentID. Ingredients may
// repeat; each copy must be present to craft.
func (c *CraftingAutomaton) AddRecipe(parentID uuid.UUID, name string, required []string, result string) (uuid.UUID, error) {
	id, err := addTyped(c.Automaton, name, parentID, TypeRecipe, RecipeUndiscovered, map[string]string{
		MetaResult:        result,
		MetaRequiredItems: strings.Join(required, listSep),
	})
	if err != nil {
		return uuid.Nil, err
	}
	ensureRules(c.Automaton, automata.NewTransition(RecipeUndiscovered, RecipeDiscovered, EventDiscoverRecipe))
	return id, nil
}

func (c *CraftingAutomaton) DiscoverRecipe(recipeID uuid.UUID, gameCtx any) bool {
	return c.TriggerEvent(recipeID, EventDiscoverRecipe, gameCtx)
}

func (c *CraftingAutomaton) DiscoveredRecipes() []automata.Node {
	return c.FindNodesByState(RecipeDiscovered)
}

// RequiredItems returns the recipe's ingredients, one entry per copy.
func (c *CraftingAutomaton) RequiredItems(recipeID uuid.UUID) []string {
	n, ok := c.GetNode(recipeID)
	if !ok {
		return nil
	}
	return splitList(n.Meta(MetaRequiredItems))
}

// CanCraftRecipe reports whether the recipe is discovered and items holds
// every ingredient, counting repeats.
func (c *CraftingAutomaton) CanCraftRecipe(recipeID uuid.UUID, items []string) bool {
	n, ok := c.GetNode(recipeID)
	if !ok || n.State != RecipeDiscovered {
		return false
	}

	have := make(map[string]int, len(items))
	for _, it := range items {
		have[it]++
	}
	for _, need := range splitList(n.Meta(MetaRequiredItems)) {
		if have[need] == 0 {
			return false
		}
		have[need]--
	}
	return true
}

// Craft consumes the ingredients from gs and adds the result.
func (c *CraftingAutomaton) Craft(recipeID uuid.UUID, gs *GameState) bool {
	if !c.CanCraftRecipe(recipeID, gs.Inventory) {
		return false
	}
	n, _ := c.GetNode(recipeID)
	for _, it := range splitList(n.Meta(MetaRequiredItems)) {
		gs.RemoveItem(it)
	}
	gs.AddItem(n.Meta(MetaResult))
	return true
}
