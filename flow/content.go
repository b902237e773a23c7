package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/crewmesh/core"
	"github.com/hupe1980/crewmesh/logging"
	"github.com/hupe1980/crewmesh/manager"
)

// ContentGoal describes a content-generation request.
type ContentGoal struct {
	// AccountID references the external account the content is produced for.
	AccountID string
	// Category of the content (review, tutorial, recommendation, ...).
	Category string
	// Platform the content targets; defaults to core.DefaultPlatform.
	Platform string
	// Requirements is the natural-language brief.
	Requirements string
	// Keywords seed the content tags.
	Keywords []string
}

func (g ContentGoal) platform() string {
	if g.Platform == "" {
		return core.DefaultPlatform
	}
	return g.Platform
}

func (g ContentGoal) context() string {
	parts := []string{fmt.Sprintf("account=%s", g.AccountID), fmt.Sprintf("platform=%s", g.platform())}
	if g.Category != "" {
		parts = append(parts, fmt.Sprintf("category=%s", g.Category))
	}
	if g.Requirements != "" {
		parts = append(parts, fmt.Sprintf("requirements=%s", g.Requirements))
	}
	if len(g.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("keywords=%s", strings.Join(g.Keywords, ",")))
	}
	return strings.Join(parts, "; ")
}

// ContentFlowOptions holds dependency overrides passed to NewContentFlow().
type ContentFlowOptions struct {
	// Planner overrides the default decomposition. The plan must bind the
	// ResultDraft key to the step producing the content body.
	Planner func(goal ContentGoal) manager.Plan
	// Logger receives flow diagnostics.
	Logger logging.Logger
}

// ContentFlow drives a content-generation goal to a persisted draft Content.
// The artifact is created only after every delegation succeeds, so failures
// leave no persisted content behind.
type ContentFlow struct {
	manager  *manager.Manager
	contents core.ContentStore
	planner  func(goal ContentGoal) manager.Plan
	logger   logging.Logger
}

// NewContentFlow constructs a ContentFlow with optional overrides.
func NewContentFlow(mgr *manager.Manager, contents core.ContentStore, optFns ...func(o *ContentFlowOptions)) *ContentFlow {
	opts := ContentFlowOptions{
		Planner: DefaultContentPlan,
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Planner == nil {
		opts.Planner = DefaultContentPlan
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &ContentFlow{manager: mgr, contents: contents, planner: opts.Planner, logger: opts.Logger}
}

// DefaultContentPlan is the built-in decomposition: market analysis and
// persona brief in parallel, then content creation consuming both, then a
// compliance review of the draft.
func DefaultContentPlan(goal ContentGoal) manager.Plan {
	goalContext := goal.context()

	return manager.Plan{
		Name: "content_generation",
		Stages: []manager.Stage{
			{
				{
					Role:    RoleMarketAnalyst,
					Task:    "Analyze trending topics and competitor strategies for the target category.",
					Context: goalContext,
				},
				{
					Role:    RolePersonaManager,
					Task:    "Summarize the account persona, tone of voice and audience expectations.",
					Context: goalContext,
				},
			},
			{
				{
					Key:  ResultDraft,
					Role: RoleContentCreator,
					Task: "Write a publishable post draft matching the persona, grounded in the market analysis. Start with a markdown heading usable as the title.",
					BuildContext: func(r *manager.Results) string {
						analysis, _ := r.Get(RoleMarketAnalyst)
						persona, _ := r.Get(RolePersonaManager)
						return fmt.Sprintf("%s\n\nMarket analysis:\n%s\n\nPersona brief:\n%s", goalContext, analysis, persona)
					},
				},
			},
			{
				{
					Role: RoleComplianceReviewer,
					Task: "Review the draft for platform compliance and flag required changes.",
					BuildContext: func(r *manager.Results) string {
						draft, _ := r.Get(ResultDraft)
						return draft
					},
				},
			},
		},
	}
}

// Run executes the flow and returns the created draft content. On any step
// failure the orchestration error is returned and nothing is persisted.
func (f *ContentFlow) Run(ctx context.Context, goal ContentGoal) (*core.Content, error) {
	if goal.AccountID == "" {
		return nil, fmt.Errorf("content goal requires an account id")
	}

	start := time.Now()
	plan := f.planner(goal)

	results, reports, err := f.manager.Run(ctx, plan)
	f.logFlow(plan, reports, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	draft, ok := results.Get(ResultDraft)
	if !ok || draft == "" {
		return nil, manager.NewPartialAggregation(fmt.Errorf("plan %q produced no %q result", plan.Name, ResultDraft))
	}

	content := core.NewContent(TitleFromMarkdown(draft), goal.AccountID)
	content.Body = draft
	content.Category = goal.Category
	content.Platform = goal.platform()
	if len(goal.Keywords) > 0 {
		content.Tags = append([]string(nil), goal.Keywords...)
	}

	if err := f.contents.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("persist content draft: %w", err)
	}

	f.logger.Info("flow.content.created", "content_id", content.ID, "account_id", content.AccountID)

	return content, nil
}

func (f *ContentFlow) logFlow(plan manager.Plan, reports []manager.StepReport, dur time.Duration, err error) {
	if fl, ok := f.logger.(logging.FlowLogger); ok {
		fl.LogFlowExecution(plan.Name, len(reports), dur, err == nil, err)
		return
	}
	if err != nil {
		f.logger.Warn("flow.content.failed", "plan", plan.Name, "steps", len(reports), "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	f.logger.Info("flow.content.completed", "plan", plan.Name, "steps", len(reports), "duration_ms", dur.Milliseconds())
}
