// Package delegation implements the structured-call protocol used to hand
// work from a manager to a named specialist and back.
//
// The wire shape is a closed three-key mapping: coworker, task, context. The
// codec exists because upstream LLM planning output is unreliable: planners
// attempt to add extraneous keys (name, description, args_schema) or emit a
// bare string instead of a structured message. Decode rejects those
// deterministically rather than silently coercing, since silent coercion
// causes role-resolution failures downstream.
package delegation
