package specialist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crewmesh/model"
)

func TestModelCapability_Execute(t *testing.T) {
	m := model.NewMockModel("test-model")
	m.AddResponse("Task:\nanalyze\n\nContext:\ncategory=review", "analysis result")

	cap := NewModelCapability(m, "You are an analyst.")

	result, err := cap.Execute(context.Background(), "analyze", "category=review")
	require.NoError(t, err)
	assert.Equal(t, "analysis result", result)
}

func TestModelCapability_Execute_NoContext(t *testing.T) {
	m := model.NewMockModel("test-model")
	m.AddResponse("Task:\nanalyze", "bare result")

	cap := NewModelCapability(m, "")

	result, err := cap.Execute(context.Background(), "analyze", "")
	require.NoError(t, err)
	assert.Equal(t, "bare result", result)
}

func TestModelCapability_Execute_ModelFailure(t *testing.T) {
	m := model.NewMockModel("test-model")
	cause := errors.New("rate limited")
	m.AddFailure("Task:\nanalyze", cause)

	cap := NewModelCapability(m, "")

	_, err := cap.Execute(context.Background(), "analyze", "")
	assert.ErrorIs(t, err, cause)
}
