package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crewmesh/core"
	"github.com/hupe1980/crewmesh/internal/testutil"
	"github.com/hupe1980/crewmesh/manager"
	"github.com/hupe1980/crewmesh/specialist"
	"github.com/hupe1980/crewmesh/store"
)

func newDocumentFixture(t *testing.T, registerFns map[string]specialist.Capability) (*ProductDocumentFlow, *store.InMemoryDocumentStore) {
	t.Helper()

	pool := specialist.NewPool()
	for role, cap := range registerFns {
		require.NoError(t, pool.Register(role, cap))
	}

	mgr := manager.New(pool, func(o *manager.Options) {
		o.RetryBackoff = 0
	})
	documents := store.NewInMemoryDocumentStore()

	return NewProductDocumentFlow(mgr, documents), documents
}

func TestProductDocumentFlow_Run_Completes(t *testing.T) {
	flow, documents := newDocumentFixture(t, map[string]specialist.Capability{
		RoleMarketAnalyst:      testutil.NewScriptedCapability("market analysis"),
		RoleAudienceResearcher: testutil.NewScriptedCapability("audience profile"),
		RoleBrandStrategist:    testutil.NewScriptedCapability("# Aurora Mug Strategy\n\ndocument body"),
	})

	doc, err := flow.Run(context.Background(), ProductDocumentGoal{
		ProductName:    "Aurora Mug",
		BrandName:      "Aurora",
		TargetAudience: "commuters",
		Tags:           []string{"launch"},
	})
	require.NoError(t, err)

	assert.Equal(t, core.ProductDocumentStatusCompleted, doc.Status)
	assert.Equal(t, "# Aurora Mug Strategy\n\ndocument body", doc.DocumentContent)
	assert.Equal(t, "Aurora Mug Strategy", doc.Summary)
	assert.Equal(t, "Aurora", doc.BrandName)
	require.NotNil(t, doc.CompletedAt)

	stored, err := documents.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ProductDocumentStatusCompleted, stored.Status)
}

func TestProductDocumentFlow_Run_RequiresProductName(t *testing.T) {
	flow, _ := newDocumentFixture(t, nil)

	_, err := flow.Run(context.Background(), ProductDocumentGoal{})
	assert.ErrorContains(t, err, "product name")
}

func TestProductDocumentFlow_Run_FailedStepTransitionsToFailed(t *testing.T) {
	// One of two parallel research steps fails after exhausting all retries.
	broken := testutil.NewFailingCapability("", -1, errors.New("upstream unavailable"))
	flow, documents := newDocumentFixture(t, map[string]specialist.Capability{
		RoleMarketAnalyst:      testutil.NewScriptedCapability("market analysis"),
		RoleAudienceResearcher: broken,
		RoleBrandStrategist:    testutil.NewScriptedCapability("# Doc"),
	})

	doc, err := flow.Run(context.Background(), ProductDocumentGoal{ProductName: "Aurora Mug"})

	var orchErr *manager.OrchestrationError
	require.ErrorAs(t, err, &orchErr)
	assert.Equal(t, manager.StepFailed, orchErr.Code)
	assert.Equal(t, RoleAudienceResearcher, orchErr.Role)
	assert.Equal(t, 3, broken.Calls(), "agent failures are retried before the flow gives up")

	require.NotNil(t, doc, "failed flows still return the artifact")
	assert.Equal(t, core.ProductDocumentStatusFailed, doc.Status)
	assert.Contains(t, doc.FailureReason, RoleAudienceResearcher)
	assert.Nil(t, doc.CompletedAt, "CompletedAt stays unset on failure")

	stored, getErr := documents.Get(context.Background(), doc.ID)
	require.NoError(t, getErr)
	assert.Equal(t, core.ProductDocumentStatusFailed, stored.Status)
}

func TestProductDocumentFlow_Run_MissingDocumentKey(t *testing.T) {
	flow, documents := newDocumentFixture(t, map[string]specialist.Capability{
		RoleMarketAnalyst: testutil.NewScriptedCapability("analysis"),
	})
	flow.planner = func(goal ProductDocumentGoal) manager.Plan {
		return manager.Plan{
			Name:   "keyless",
			Stages: []manager.Stage{{{Role: RoleMarketAnalyst, Task: "analyze"}}},
		}
	}

	doc, err := flow.Run(context.Background(), ProductDocumentGoal{ProductName: "p"})

	var orchErr *manager.OrchestrationError
	require.ErrorAs(t, err, &orchErr)
	assert.Equal(t, manager.PartialAggregation, orchErr.Code)

	require.NotNil(t, doc)
	assert.Equal(t, core.ProductDocumentStatusFailed, doc.Status)

	stored, getErr := documents.Get(context.Background(), doc.ID)
	require.NoError(t, getErr)
	assert.Equal(t, core.ProductDocumentStatusFailed, stored.Status)
}

func TestProductDocumentFlow_Run_CreatedBeforeDelegation(t *testing.T) {
	documents := store.NewInMemoryDocumentStore()

	var midFlight *core.ProductDocument
	pool := specialist.NewPool()
	require.NoError(t, pool.RegisterFunc(RoleBrandStrategist, func(ctx context.Context, _, _ string) (string, error) {
		// Observe the store while the delegation is still running.
		list, err := documents.ListByUser(ctx, core.DefaultUserID, 0)
		if err != nil || len(list) != 1 {
			return "", errors.New("document not visible during processing")
		}
		midFlight = list[0]
		return "# Doc", nil
	}))

	mgr := manager.New(pool, func(o *manager.Options) { o.RetryBackoff = 0 })
	flow := NewProductDocumentFlow(mgr, documents, func(o *ProductDocumentFlowOptions) {
		o.Planner = func(goal ProductDocumentGoal) manager.Plan {
			return manager.Plan{
				Name:   "single",
				Stages: []manager.Stage{{{Key: ResultDocument, Role: RoleBrandStrategist, Task: "compose"}}},
			}
		}
	})

	doc, err := flow.Run(context.Background(), ProductDocumentGoal{ProductName: "p"})
	require.NoError(t, err)

	require.NotNil(t, midFlight)
	assert.Equal(t, core.ProductDocumentStatusProcessing, midFlight.Status, "document is visible as processing while specialists run")
	assert.Equal(t, core.ProductDocumentStatusCompleted, doc.Status)
}
