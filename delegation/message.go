package delegation

import (
	"encoding/json"
	"regexp"
	"sort"
)

// Message is the ephemeral structured call handed from a manager to a named
// specialist. Exactly these three keys exist on the wire; no additional keys
// are permitted.
type Message struct {
	Coworker string `json:"coworker"`
	Task     string `json:"task"`
	Context  string `json:"context"`
}

const (
	keyCoworker = "coworker"
	keyTask     = "task"
	keyContext  = "context"
)

var roleName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Encode builds a Message after validating the coworker identifier.
func Encode(coworker, task, context string) (Message, error) {
	if coworker == "" {
		return Message{}, newProtocolError(InvalidRole, "coworker must not be empty")
	}
	if !roleName.MatchString(coworker) {
		return Message{}, newProtocolError(InvalidRole, "coworker %q is not a valid role identifier", coworker)
	}
	return Message{Coworker: coworker, Task: task, Context: context}, nil
}

// Marshal serializes the message to its canonical wire form.
func (m Message) Marshal() ([]byte, error) { return json.Marshal(m) }

// Decode parses raw bytes into a Message, enforcing the closed schema:
// the payload must be a JSON object with exactly the keys coworker, task and
// context, each string-valued. Anything else fails with SchemaViolation;
// extra keys are never silently stripped.
func Decode(raw []byte) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Message{}, newProtocolError(SchemaViolation, "payload is not a JSON object: %v", err)
	}
	if err := checkKeys(keysOf(fields)); err != nil {
		return Message{}, err
	}
	var m Message
	for key, val := range fields {
		var s string
		if err := json.Unmarshal(val, &s); err != nil {
			return Message{}, newProtocolError(SchemaViolation, "value for %q is not a string", key)
		}
		switch key {
		case keyCoworker:
			m.Coworker = s
		case keyTask:
			m.Task = s
		case keyContext:
			m.Context = s
		}
	}
	return validated(m)
}

// DecodeMap validates an already-parsed mapping, e.g. planner output that
// arrives as a generic map instead of raw bytes. The same closed-schema
// rules apply.
func DecodeMap(raw map[string]any) (Message, error) {
	if raw == nil {
		return Message{}, newProtocolError(SchemaViolation, "payload is not a mapping")
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	if err := checkKeys(keys); err != nil {
		return Message{}, err
	}
	var m Message
	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			return Message{}, newProtocolError(SchemaViolation, "value for %q is not a string", key)
		}
		switch key {
		case keyCoworker:
			m.Coworker = s
		case keyTask:
			m.Task = s
		case keyContext:
			m.Context = s
		}
	}
	return validated(m)
}

func keysOf(fields map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	return keys
}

// checkKeys enforces that keys is exactly {coworker, task, context}.
func checkKeys(keys []string) error {
	recognized := map[string]bool{keyCoworker: false, keyTask: false, keyContext: false}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := recognized[k]; !ok {
			return newProtocolError(SchemaViolation, "unrecognized key %q", k)
		}
		recognized[k] = true
	}
	for _, k := range []string{keyCoworker, keyTask, keyContext} {
		if !recognized[k] {
			return newProtocolError(SchemaViolation, "missing required key %q", k)
		}
	}
	return nil
}

func validated(m Message) (Message, error) {
	if m.Coworker == "" {
		return Message{}, newProtocolError(InvalidRole, "coworker must not be empty")
	}
	return m, nil
}
