// Package rpg builds quest, dialogue, skill-tree and crafting systems on top
// of the automata engine and evaluates their "Type:Param:Value" instructions
// against a GameState.
package rpg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedInstruction = errors.New("rpg: malformed instruction")

// Instruction is a parsed condition or action string such as
// "HasStat:Strength:12". Empty segments are dropped while parsing.
type Instruction struct {
	Type   string
	Params []string
}

// ParseInstruction splits s on ':' and requires a type and at least one
// parameter.
func ParseInstruction(s string) (Instruction, error) {
	var parts []string
	for _, p := range strings.Split(s, ":") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return Instruction{}, fmt.Errorf("%w: %q", ErrMalformedInstruction, s)
	}
	return Instruction{Type: parts[0], Params: parts[1:]}, nil
}

// Arity is the number of parameters after the type.
func (in Instruction) Arity() int {
	return len(in.Params)
}

// Param returns parameter i, or "" when absent.
func (in Instruction) Param(i int) string {
	if i < 0 || i >= len(in.Params) {
		return ""
	}
	return in.Params[i]
}

// Int returns parameter i as an integer. Anything unparsable is 0.
func (in Instruction) Int(i int) int {
	return atoi(in.Param(i))
}

// Bool returns parameter i as a boolean. "true", "yes" and "on" are true in
// any case, as is any non-zero integer.
func (in Instruction) Bool(i int) bool {
	s := strings.TrimSpace(in.Param(i))
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	}
	return atoi(s) != 0
}

func (in Instruction) String() string {
	return strings.Join(append([]string{in.Type}, in.Params...), ":")
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
