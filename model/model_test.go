package model

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, respCh <-chan Response, errCh <-chan error) ([]Response, error) {
	t.Helper()
	var out []Response
	for resp := range respCh {
		out = append(out, resp)
	}
	return out, <-errCh
}

func TestMockModel_Generate(t *testing.T) {
	m := NewMockModel("mock")
	m.AddResponse("hello", "world")

	respCh, errCh := m.Generate(context.Background(), Request{Prompt: "hello"})
	responses, err := drain(t, respCh, errCh)
	require.NoError(t, err)

	require.Len(t, responses, 1)
	assert.False(t, responses[0].Partial)
	assert.Equal(t, "world", responses[0].Text)
	assert.Equal(t, "stop", responses[0].FinishReason)
}

func TestMockModel_Generate_Streaming(t *testing.T) {
	m := NewMockModel("mock")
	m.AddResponse("hello", "abc")

	respCh, errCh := m.Generate(context.Background(), Request{Prompt: "hello", Stream: true})
	responses, err := drain(t, respCh, errCh)
	require.NoError(t, err)

	var sb strings.Builder
	for _, resp := range responses[:len(responses)-1] {
		assert.True(t, resp.Partial)
		sb.WriteString(resp.Text)
	}
	assert.Equal(t, "abc", sb.String(), "partials concatenate to the full text")

	final := responses[len(responses)-1]
	assert.False(t, final.Partial)
	assert.Equal(t, "abc", final.Text)
}

func TestMockModel_Generate_Failure(t *testing.T) {
	m := NewMockModel("mock")
	cause := errors.New("boom")
	m.AddFailure("hello", cause)

	respCh, errCh := m.Generate(context.Background(), Request{Prompt: "hello"})
	responses, err := drain(t, respCh, errCh)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, responses)
}

func TestMockModel_Info(t *testing.T) {
	m := NewMockModel("mock-1")
	assert.Equal(t, Info{Name: "mock-1", Provider: "mock"}, m.Info())
}
