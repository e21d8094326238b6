package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/automata"
	"github.com/meikuraledutech/automata/memory"
	"github.com/meikuraledutech/automata/postgres"
	"github.com/meikuraledutech/automata/rpg"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Saves go to Postgres when DATABASE_URL is set, memory otherwise.
	var store automata.Store = memory.NewStore()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		pg := postgres.New(pool)
		if err := pg.CreateSchema(ctx); err != nil {
			log.Fatalf("schema: %v", err)
		}
		store = pg
	}

	m := rpg.NewManager(logger)
	gs := rpg.NewGameState()

	// ── Quests ────────────────────────────────────────────────────────
	q := m.Quests
	_, _ = q.CreateQuest("Defend the Village", "The village is under threat and needs your help to prepare defenses.")
	repair := must(q.CreateQuest("Repair the Walls", "The village walls are damaged and need repair."))
	_, _ = q.CreateQuest("Train Militia", "The villagers need training to defend themselves.")
	_, _ = q.CreateQuest("Gather Supplies", "Gather food and materials to sustain the village.")
	lumber := must(q.AddObjective(repair, "Find Lumber", "Collect 10 pieces of lumber from the forest."))
	palisade := must(q.AddObjective(repair, "Reinforce Palisade", "Use the lumber to reinforce the village palisade."))

	fmt.Println("=== QUEST DEMO ===")
	q.AcceptQuest(repair, gs)
	fmt.Printf("accepted quest: %s\n", name(q.Automaton, repair))
	q.CompleteObjective(lumber, gs)
	fmt.Printf("completed objective: %s\n", name(q.Automaton, lumber))
	q.CompleteObjective(palisade, gs)
	fmt.Printf("completed objective: %s\n", name(q.Automaton, palisade))
	fmt.Printf("quest complete: %v\n", q.IsQuestComplete(repair))

	// ── Dialogue ──────────────────────────────────────────────────────
	d := m.Dialogue
	elder := must(d.CreateDialogueTree("Village Elder"))
	greeting, _ := d.Greeting(elder)
	danger := must(d.AddDialogueNode(greeting.NodeID,
		"Our village is in danger. Bandits have been spotted nearby and we fear an attack. Will you help us?",
		"Tell me about the danger"))
	help := must(d.AddDialogueNode(danger,
		"We need to repair our walls, train our people, and gather supplies. Can you help with any of these tasks?",
		"I'll help with all of them"))
	reward := must(d.AddDialogueNode(greeting.NodeID,
		"You've done so much for our village. Please take this ancient family heirloom as a token of our gratitude.",
		"Thank you for this honor"))
	_ = d.SetDialogueCondition(reward, "HasReputation:Village:20")

	fmt.Println("\n=== DIALOGUE DEMO ===")
	fmt.Printf("Elder: %s\n", greeting.Meta(rpg.MetaText))
	printOptions(d, greeting.NodeID, gs)
	d.SelectDialogue(danger, gs)
	d.SelectDialogue(help, gs)
	fmt.Printf("Elder: %s\n", meta(d.Automaton, help, rpg.MetaText))

	gs.ModifyReputation("Village", 25)
	fmt.Printf("village reputation increased to %d\n", gs.Reputation["Village"])
	d.ResetDialogue(help, gs)
	printOptions(d, greeting.NodeID, gs)

	// ── Skills ────────────────────────────────────────────────────────
	s := m.Skills
	warrior := must(s.CreateSkillTree("Warrior"))
	basic := must(s.AddSkill(warrior, "Basic Combat", 1, "Fundamentals of combat techniques"))
	sword := must(s.AddSkill(basic, "Sword Mastery", 2, "Advanced sword techniques"))
	shield := must(s.AddSkill(basic, "Shield Mastery", 2, "Advanced shield techniques"))
	_, _ = s.AddSkill(sword, "Whirlwind", 3, "Spin attack that hits all nearby enemies")
	_, _ = s.AddSkill(shield, "Shield Bash", 3, "Stun an enemy with your shield")

	fmt.Println("\n=== SKILL TREE DEMO ===")
	gs.SkillPoints = 10
	for _, id := range []uuid.UUID{basic, sword, shield} {
		cost, _ := s.Cost(id)
		if s.UnlockSkill(id, gs.SkillPoints, gs) {
			gs.SkillPoints -= cost
			fmt.Printf("unlocked %s, %d skill points remaining\n", name(s.Automaton, id), gs.SkillPoints)
		}
	}
	for _, n := range s.AvailableSkills(gs.SkillPoints) {
		fmt.Printf("available next: %s (%s points)\n", n.Name, n.Meta(rpg.MetaPointsRequired))
	}

	// ── Crafting ──────────────────────────────────────────────────────
	c := m.Crafting
	smithing := must(c.CreateCraftingSystem("Blacksmithing"))
	ironSword := must(c.AddRecipe(smithing, "Iron Sword", []string{"Iron Ingot", "Wooden Handle"}, "Iron Sword"))
	steelSword := must(c.AddRecipe(ironSword, "Steel Sword", []string{"Steel Ingot", "Leather Grip", "Iron Sword"}, "Steel Sword"))

	fmt.Println("\n=== CRAFTING DEMO ===")
	for _, it := range []string{"Iron Ingot", "Iron Ingot", "Wooden Handle", "Steel Ingot", "Leather Grip"} {
		gs.AddItem(it)
	}
	c.DiscoverRecipe(ironSword, gs)
	c.DiscoverRecipe(steelSword, gs)
	fmt.Printf("can craft Steel Sword: %v\n", c.CanCraftRecipe(steelSword, gs.Inventory))
	c.Craft(ironSword, gs)
	c.Craft(steelSword, gs)
	fmt.Println("final state:")
	printJSON(gs)

	// ── Save / load ───────────────────────────────────────────────────
	if err := m.Save(ctx, store, "village"); err != nil {
		log.Fatalf("save: %v", err)
	}
	restored := rpg.NewManager(logger)
	if err := restored.Load(ctx, store, "village"); err != nil {
		log.Fatalf("load: %v", err)
	}
	fmt.Printf("\nrestored quest nodes: %d, completed: %v\n",
		restored.Quests.Len(), restored.Quests.IsQuestComplete(repair))

	slots, err := rpg.ListSaves(ctx, store)
	if err != nil {
		log.Fatalf("list saves: %v", err)
	}
	fmt.Println("saves:")
	printJSON(slots)
}

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func mustNode(a *automata.Automaton, id uuid.UUID) automata.Node {
	n, ok := a.GetNode(id)
	if !ok {
		log.Fatalf("node %s not found", id)
	}
	return n
}

func name(a *automata.Automaton, id uuid.UUID) string {
	return mustNode(a, id).Name
}

func meta(a *automata.Automaton, id uuid.UUID, key string) string {
	return mustNode(a, id).Meta(key)
}

func printOptions(d *rpg.DialogueAutomaton, at uuid.UUID, gs *rpg.GameState) {
	fmt.Println("available responses:")
	for _, o := range d.AvailableDialogueOptions(at, gs) {
		fmt.Printf("- %s\n", o.Meta(rpg.MetaPlayerResponse))
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
