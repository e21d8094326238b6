package httpapi

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/meikuraledutech/automata"
	"github.com/meikuraledutech/automata/rpg"
	"go.uber.org/zap"
)

type addNodeRequest struct {
	Name     string            `json:"name"`
	ParentID string            `json:"parent_id"`
	State    string            `json:"state"`
	Metadata map[string]string `json:"metadata"`
}

type eventRequest struct {
	Event string `json:"event"`
}

func (s *Server) getAutomaton(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.subsystem(c)
	if err != nil {
		return err
	}
	return c.JSON(a.Snapshot())
}

// addNode creates a node under parent_id, or under the root when omitted.
func (s *Server) addNode(c fiber.Ctx) error {
	var req addNodeRequest
	if err := c.Bind().JSON(&req); err != nil || req.Name == "" {
		return errInvalidBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.subsystem(c)
	if err != nil {
		return err
	}
	parent := a.RootID()
	if req.ParentID != "" {
		if parent, err = parseID(req.ParentID); err != nil {
			return err
		}
	}

	id, err := a.AddNode(req.Name, parent)
	if err != nil {
		return err
	}
	n, _ := a.NodeMutable(id)
	if req.State != "" {
		n.State = req.State
	}
	for k, v := range req.Metadata {
		n.Metadata[k] = v
	}
	node, _ := a.GetNode(id)
	return c.Status(fiber.StatusCreated).JSON(node)
}

// listNodes returns every node, or those in ?state= when given.
func (s *Server) listNodes(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.subsystem(c)
	if err != nil {
		return err
	}
	if state := c.Query("state"); state != "" {
		return c.JSON(a.FindNodesByState(state))
	}
	return c.JSON(a.Nodes())
}

// node resolves :sub and :id. The caller holds s.mu.
func (s *Server) node(c fiber.Ctx) (*automata.Automaton, uuid.UUID, error) {
	a, err := s.subsystem(c)
	if err != nil {
		return nil, uuid.Nil, err
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return nil, uuid.Nil, err
	}
	return a, id, nil
}

func (s *Server) getNode(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, id, err := s.node(c)
	if err != nil {
		return err
	}
	n, ok := a.GetNode(id)
	if !ok {
		return automata.ErrNodeNotFound
	}
	return c.JSON(n)
}

func (s *Server) removeNode(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, id, err := s.node(c)
	if err != nil {
		return err
	}
	if err := a.RemoveNode(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) getChildren(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, id, err := s.node(c)
	if err != nil {
		return err
	}
	if _, ok := a.GetNode(id); !ok {
		return automata.ErrNodeNotFound
	}
	return c.JSON(a.GetChildren(id))
}

func (s *Server) getParent(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, id, err := s.node(c)
	if err != nil {
		return err
	}
	p, ok := a.GetParent(id)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "node has no parent")
	}
	return c.JSON(p)
}

// patchMetadata merges the body into the node's metadata. An empty value
// deletes the key.
func (s *Server) patchMetadata(c fiber.Ctx) error {
	var patch map[string]string
	if err := c.Bind().JSON(&patch); err != nil {
		return errInvalidBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, id, err := s.node(c)
	if err != nil {
		return err
	}
	n, ok := a.NodeMutable(id)
	if !ok {
		return automata.ErrNodeNotFound
	}
	for k, v := range patch {
		if v == "" {
			delete(n.Metadata, k)
			continue
		}
		n.Metadata[k] = v
	}
	node, _ := a.GetNode(id)
	return c.JSON(node)
}

// triggerEvent dispatches the event against the shared game state. A
// dispatch that applies no rule is a 409.
func (s *Server) triggerEvent(c fiber.Ctx) error {
	var req eventRequest
	if err := c.Bind().JSON(&req); err != nil || req.Event == "" {
		return errInvalidBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, id, err := s.node(c)
	if err != nil {
		return err
	}
	if _, ok := a.GetNode(id); !ok {
		return automata.ErrNodeNotFound
	}

	applied := a.TriggerEvent(id, req.Event, s.state)
	s.metrics.event(c.Params("sub"), eventLabel(a, req.Event), applied)
	n, _ := a.GetNode(id)
	if !applied {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "no transition applied",
			"node":  n,
		})
	}
	return c.JSON(fiber.Map{"node": n, "state": s.state})
}

func (s *Server) addTransition(c fiber.Ctx) error {
	var t automata.Transition
	if err := c.Bind().JSON(&t); err != nil || t.FromState == "" || t.ToState == "" || t.TriggerEvent == "" {
		return errInvalidBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.subsystem(c)
	if err != nil {
		return err
	}
	a.AddTransition(t)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transitions": len(a.Transitions())})
}

func (s *Server) pathExists(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.subsystem(c)
	if err != nil {
		return err
	}
	from, err := parseID(c.Query("from"))
	if err != nil {
		return err
	}
	to, err := parseID(c.Query("to"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"exists": a.PathExists(from, to)})
}

func (s *Server) listSaves(c fiber.Ctx) error {
	slots, err := rpg.ListSaves(c.Context(), s.store)
	if err != nil {
		return err
	}
	return c.JSON(slots)
}

func (s *Server) save(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := c.Params("slot")
	err := s.manager.Save(c.Context(), s.store, slot)
	s.metrics.save("save", err)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"slot": slot})
}

func (s *Server) load(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := c.Params("slot")
	err := s.manager.Load(c.Context(), s.store, slot)
	s.metrics.save("load", err)
	if err != nil {
		s.log.Warn("load failed", zap.String("slot", slot), zap.Error(err))
		return err
	}
	return c.JSON(fiber.Map{"slot": slot})
}

func (s *Server) deleteSave(c fiber.Ctx) error {
	err := rpg.DeleteSave(c.Context(), s.store, c.Params("slot"))
	s.metrics.save("delete", err)
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) getState(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(s.state)
}

// putState replaces the game state wholesale.
func (s *Server) putState(c fiber.Ctx) error {
	next := rpg.NewGameState()
	if err := c.Bind().JSON(next); err != nil {
		return errInvalidBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	*s.state = *next
	return c.JSON(s.state)
}

// eventLabel returns event when some rule of a reacts to it.
func eventLabel(a *automata.Automaton, event string) string {
	for _, t := range a.Transitions() {
		if t.TriggerEvent == event {
			return event
		}
	}
	return unknownEvent
}
