package llm

import "context"

// Noop is the fallback client used when no provider is configured. It returns
// an empty JSON object, so extraction degrades to the raw query instead of
// failing the pipeline.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Chat(_ context.Context, _, _ string) (string, error) {
	return "{}", nil
}
