package crewmesh

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crewmesh/config"
	"github.com/hupe1980/crewmesh/core"
	"github.com/hupe1980/crewmesh/flow"
	"github.com/hupe1980/crewmesh/internal/testutil"
)

func registerContentCrew(t *testing.T, crew *Crew) {
	t.Helper()
	require.NoError(t, crew.RegisterSpecialist(flow.RoleMarketAnalyst, testutil.NewScriptedCapability("analysis")))
	require.NoError(t, crew.RegisterSpecialist(flow.RolePersonaManager, testutil.NewScriptedCapability("persona")))
	require.NoError(t, crew.RegisterSpecialist(flow.RoleContentCreator, testutil.NewScriptedCapability("# Draft Title\n\nbody")))
	require.NoError(t, crew.RegisterSpecialist(flow.RoleComplianceReviewer, testutil.NewScriptedCapability("ok")))
}

func TestCrew_GenerateContent(t *testing.T) {
	crew := New(func(o *Options) {
		o.RetryBackoff = 0
	})
	registerContentCrew(t, crew)

	content, err := crew.GenerateContent(context.Background(), flow.ContentGoal{AccountID: "acct-1"})
	require.NoError(t, err)
	assert.Equal(t, "Draft Title", content.Title)

	stored, err := crew.Contents().Get(context.Background(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ContentStatusDraft, stored.Status)
}

func TestCrew_BuildProductDocument(t *testing.T) {
	crew := New(func(o *Options) {
		o.RetryBackoff = 0
	})
	require.NoError(t, crew.RegisterSpecialist(flow.RoleMarketAnalyst, testutil.NewScriptedCapability("analysis")))
	require.NoError(t, crew.RegisterSpecialist(flow.RoleAudienceResearcher, testutil.NewScriptedCapability("audience")))
	require.NoError(t, crew.RegisterSpecialist(flow.RoleBrandStrategist, testutil.NewScriptedCapability("# Strategy\n\ndoc")))

	doc, err := crew.BuildProductDocument(context.Background(), flow.ProductDocumentGoal{ProductName: "Mug"})
	require.NoError(t, err)
	assert.Equal(t, core.ProductDocumentStatusCompleted, doc.Status)
	assert.Equal(t, "Strategy", doc.Summary)
}

func TestCrew_Roles(t *testing.T) {
	crew := New()
	require.NoError(t, crew.RegisterSpecialistFunc("b_role", func(context.Context, string, string) (string, error) { return "", nil }))
	require.NoError(t, crew.RegisterSpecialistFunc("a_role", func(context.Context, string, string) (string, error) { return "", nil }))

	assert.Equal(t, []string{"a_role", "b_role"}, crew.Roles())
}

func TestNewFromConfig_SqliteBacked(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "crewmesh.db")
	cfg.Delegation.RetryBackoff = 0
	cfg.Delegation.InvocationTimeout = time.Minute

	crew, err := NewFromConfig(cfg)
	require.NoError(t, err)
	registerContentCrew(t, crew)

	content, err := crew.GenerateContent(context.Background(), flow.ContentGoal{AccountID: "acct-1"})
	require.NoError(t, err)

	stored, err := crew.Contents().Get(context.Background(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, content.ID, stored.ID)
}

func TestNewFromConfig_NilUsesDefaults(t *testing.T) {
	crew, err := NewFromConfig(nil)
	require.NoError(t, err)
	assert.NotNil(t, crew.Contents())
	assert.NotNil(t, crew.Documents())
}
