package specialist

import (
	"context"
	"fmt"

	"github.com/hupe1980/crewmesh/model"
)

// Capability is the single operation a specialist exposes: consume a task
// description and a context string, produce a result payload.
type Capability interface {
	Execute(ctx context.Context, task, taskContext string) (string, error)
}

// CapabilityFunc adapts a plain function to the Capability interface.
type CapabilityFunc func(ctx context.Context, task, taskContext string) (string, error)

// Execute implements Capability.
func (f CapabilityFunc) Execute(ctx context.Context, task, taskContext string) (string, error) {
	return f(ctx, task, taskContext)
}

// ModelCapability backs a specialist with an LLM. The role instructions
// become the system prompt; task and context are rendered into a single user
// prompt. The final (non-partial) response text is the result.
type ModelCapability struct {
	model        model.Model
	instructions string
}

// NewModelCapability wraps a model.Model as a Capability.
func NewModelCapability(m model.Model, instructions string) *ModelCapability {
	return &ModelCapability{model: m, instructions: instructions}
}

// Execute implements Capability by draining a single generation.
func (c *ModelCapability) Execute(ctx context.Context, task, taskContext string) (string, error) {
	req := model.Request{
		Instructions: c.instructions,
		Prompt:       renderPrompt(task, taskContext),
	}

	respCh, errCh := c.model.Generate(ctx, req)

	var final string
	for resp := range respCh {
		if !resp.Partial {
			final = resp.Text
		}
	}
	if err := <-errCh; err != nil {
		return "", err
	}
	if final == "" {
		return "", fmt.Errorf("model %s returned no content", c.model.Info().Name)
	}

	return final, nil
}

func renderPrompt(task, taskContext string) string {
	if taskContext == "" {
		return fmt.Sprintf("Task:\n%s", task)
	}
	return fmt.Sprintf("Task:\n%s\n\nContext:\n%s", task, taskContext)
}
