package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
	"github.com/meikuraledutech/automata/httpapi"
	"github.com/meikuraledutech/automata/memory"
	"github.com/meikuraledutech/automata/rpg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	app     *fiber.App
	manager *rpg.Manager
	state   *rpg.GameState
	store   *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		manager: rpg.NewManager(nil),
		state:   rpg.NewGameState(),
		store:   memory.NewStore(),
	}
	srv, err := httpapi.New(f.manager, f.state, f.store)
	require.NoError(t, err)
	f.app = srv.App()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestGetAutomaton(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/automata/quest", nil)
	require.Equal(t, http.StatusOK, status)
	doc := decode[automata.Document](t, body)
	assert.Equal(t, f.manager.Quests.RootID(), doc.RootNodeID)
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, "QuestSystem", doc.Nodes[0].Name)

	status, body = f.do(t, http.MethodGet, "/automata/weather", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "unknown subsystem")
}

func TestNodes_CRUD(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/automata/quest/nodes", map[string]any{
		"name":     "Repair the Walls",
		"state":    "Available",
		"metadata": map[string]string{"Type": "Quest"},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	quest := decode[automata.Node](t, body)
	assert.Equal(t, f.manager.Quests.RootID(), quest.ParentID)
	assert.Equal(t, "Available", quest.State)

	status, body = f.do(t, http.MethodPost, "/automata/quest/nodes", map[string]any{
		"name":      "Find Lumber",
		"parent_id": quest.NodeID.String(),
	})
	require.Equal(t, http.StatusCreated, status)
	obj := decode[automata.Node](t, body)
	assert.Equal(t, automata.StateInactive, obj.State)

	status, body = f.do(t, http.MethodGet, "/automata/quest/nodes/"+quest.NodeID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uuid.UUID{obj.NodeID}, decode[automata.Node](t, body).ChildrenIDs)

	status, body = f.do(t, http.MethodGet, "/automata/quest/nodes/"+quest.NodeID.String()+"/children", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]automata.Node](t, body), 1)

	status, body = f.do(t, http.MethodGet, "/automata/quest/nodes/"+obj.NodeID.String()+"/parent", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, quest.NodeID, decode[automata.Node](t, body).NodeID)

	status, _ = f.do(t, http.MethodGet, "/automata/quest/nodes/"+f.manager.Quests.RootID().String()+"/parent", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = f.do(t, http.MethodGet, "/automata/quest/nodes?state=Available", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]automata.Node](t, body), 1)
	status, body = f.do(t, http.MethodGet, "/automata/quest/nodes", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]automata.Node](t, body), 3)

	status, _ = f.do(t, http.MethodDelete, "/automata/quest/nodes/"+quest.NodeID.String(), nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, 1, f.manager.Quests.Len())
}

func TestNodes_Errors(t *testing.T) {
	f := newFixture(t)
	root := f.manager.Quests.RootID().String()

	status, _ := f.do(t, http.MethodGet, "/automata/quest/nodes/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodGet, "/automata/quest/nodes/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodPost, "/automata/quest/nodes", map[string]any{"name": "X", "parent_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodPost, "/automata/quest/nodes", map[string]any{"parent_id": root})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodDelete, "/automata/quest/nodes/"+root, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = f.do(t, http.MethodGet, "/automata/quest/nodes/"+uuid.NewString()+"/children", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPatchMetadata(t *testing.T) {
	f := newFixture(t)
	id, _ := f.manager.Quests.CreateQuest("Train Militia", "old")

	status, body := f.do(t, http.MethodPatch, "/automata/quest/nodes/"+id.String()+"/metadata", map[string]string{
		"Description": "new",
		"Status":      "",
		"Giver":       "Captain",
	})
	require.Equal(t, http.StatusOK, status)
	n := decode[automata.Node](t, body)
	assert.Equal(t, map[string]string{"Type": "Quest", "Description": "new", "Giver": "Captain"}, n.Metadata)
}

func TestTriggerEvent(t *testing.T) {
	f := newFixture(t)
	quest, _ := f.manager.Quests.CreateQuest("Repair the Walls", "")
	path := "/automata/quest/nodes/" + quest.String() + "/events"

	status, body := f.do(t, http.MethodPost, path, map[string]string{"event": "AcceptQuest"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, rpg.QuestActive, stateOf(t, f.manager.Quests.Automaton, quest))

	status, _ = f.do(t, http.MethodPost, path, map[string]string{"event": "AcceptQuest"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = f.do(t, http.MethodPost, path, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodPost, "/automata/quest/nodes/"+uuid.NewString()+"/events", map[string]string{"event": "AcceptQuest"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodPost, path, map[string]string{"event": "Dance"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `automata_events_total{applied="true",event="AcceptQuest",subsystem="quest"} 1`)
	assert.Contains(t, string(body), `automata_events_total{applied="false",event="AcceptQuest",subsystem="quest"} 1`)
	assert.Contains(t, string(body), `automata_events_total{applied="false",event="unknown",subsystem="quest"} 1`)
	assert.NotContains(t, string(body), "Dance")
}

func TestTriggerEvent_MetricLabelsBounded(t *testing.T) {
	f := newFixture(t)
	quest, _ := f.manager.Quests.CreateQuest("Repair the Walls", "")
	path := "/automata/quest/nodes/" + quest.String() + "/events"

	for i := range 200 {
		status, _ := f.do(t, http.MethodPost, path, map[string]string{"event": fmt.Sprintf("junk-%d", i)})
		require.Equal(t, http.StatusConflict, status)
	}

	status, body := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	var series []string
	for _, line := range strings.Split(string(body), "\n") {
		if strings.HasPrefix(line, "automata_events_total{") {
			series = append(series, line)
		}
	}
	assert.Equal(t, []string{`automata_events_total{applied="false",event="unknown",subsystem="quest"} 200`}, series)
}

func TestNew_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	manager := rpg.NewManager(nil)
	store := memory.NewStore()

	first, err := httpapi.New(manager, nil, store, httpapi.WithRegistry(reg))
	require.NoError(t, err)
	second, err := httpapi.New(manager, nil, store, httpapi.WithRegistry(reg))
	require.NoError(t, err)

	quest, _ := manager.Quests.CreateQuest("Repair the Walls", "")
	body := []byte(`{"event":"AcceptQuest"}`)
	for _, srv := range []*httpapi.Server{first, second} {
		req := httptest.NewRequest(http.MethodPost, "/automata/quest/nodes/"+quest.String()+"/events", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := srv.App().Test(req)
		require.NoError(t, err)
		resp.Body.Close()
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	var series int
	for _, mf := range families {
		if mf.GetName() == "automata_events_total" {
			series += len(mf.GetMetric())
		}
	}
	assert.Equal(t, 2, series, "applied and rejected series on one shared counter")
}

func TestTriggerEvent_UsesGameState(t *testing.T) {
	f := newFixture(t)
	sys, _ := f.manager.Crafting.CreateCraftingSystem("Blacksmithing")

	gated := automata.NewTransition(rpg.RecipeUndiscovered, rpg.RecipeDiscovered, rpg.EventDiscoverRecipe)
	gated.Conditions = []string{"HasStat:Blacksmithing:5"}
	gated.Actions = []string{"GiveExperience:150"}
	status, _ := f.do(t, http.MethodPost, "/automata/crafting/transitions", gated)
	require.Equal(t, http.StatusCreated, status)

	// the gated rule precedes the plain one registered by AddRecipe
	steel, _ := f.manager.Crafting.AddRecipe(sys, "Steel Sword", []string{"Steel Ingot"}, "Steel Sword")
	path := "/automata/crafting/nodes/" + steel.String() + "/events"

	next := rpg.NewGameState()
	next.ModifyStat("Blacksmithing", 10)
	status, _ = f.do(t, http.MethodPut, "/state", next)
	require.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodPost, path, map[string]string{"event": rpg.EventDiscoverRecipe})
	require.Equal(t, http.StatusOK, status)

	status, body := f.do(t, http.MethodGet, "/state", nil)
	require.Equal(t, http.StatusOK, status)
	gs := decode[rpg.GameState](t, body)
	assert.Equal(t, 2, gs.Level)
	assert.Equal(t, 2, f.state.Level)
}

func TestAddTransition_Validation(t *testing.T) {
	f := newFixture(t)
	status, _ := f.do(t, http.MethodPost, "/automata/skill/transitions", map[string]string{"FromState": "A", "ToState": "B"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Empty(t, f.manager.Skills.Transitions())
}

func TestPathExists(t *testing.T) {
	f := newFixture(t)
	tree, _ := f.manager.Skills.CreateSkillTree("Warrior")
	skill, _ := f.manager.Skills.AddSkill(tree, "Basic Combat", 1, "")
	root := f.manager.Skills.RootID()

	status, body := f.do(t, http.MethodGet, "/automata/skill/path?from="+skill.String()+"&to="+root.String(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"exists":true}`, string(body))

	status, body = f.do(t, http.MethodGet, "/automata/skill/path?from="+skill.String()+"&to="+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"exists":false}`, string(body))

	status, _ = f.do(t, http.MethodGet, "/automata/skill/path?from=x&to="+root.String(), nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSaves(t *testing.T) {
	f := newFixture(t)
	quest, _ := f.manager.Quests.CreateQuest("Gather Supplies", "")

	status, _ := f.do(t, http.MethodPost, "/saves/slot1", nil)
	require.Equal(t, http.StatusCreated, status)

	status, body := f.do(t, http.MethodGet, "/saves", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"slot1"}, decode[[]string](t, body))

	require.True(t, f.manager.Quests.AcceptQuest(quest, f.state))

	status, _ = f.do(t, http.MethodPost, "/saves/slot1/load", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, rpg.QuestAvailable, stateOf(t, f.manager.Quests.Automaton, quest))

	status, _ = f.do(t, http.MethodPost, "/saves/missing/load", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodDelete, "/saves/slot1", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, body = f.do(t, http.MethodGet, "/saves", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]string](t, body))

	status, body = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `automata_save_operations_total{op="load",result="error"} 1`)
}

func stateOf(t *testing.T, a *automata.Automaton, id uuid.UUID) string {
	t.Helper()
	n, ok := a.GetNode(id)
	require.True(t, ok)
	return n.State
}
