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

// ProductDocumentGoal describes a product document request.
type ProductDocumentGoal struct {
	// ProductName identifies the product the document is built for.
	ProductName string
	// BrandName, ProductCategory, PriceRange and TargetAudience seed the
	// document metadata and the delegation context.
	BrandName       string
	ProductCategory string
	PriceRange      string
	TargetAudience  string
	// Requirements is the natural-language brief.
	Requirements string
	// UserID owns the document; defaults to core.DefaultUserID.
	UserID string
	// Tags seed the document tags.
	Tags []string
}

func (g ProductDocumentGoal) context() string {
	parts := []string{fmt.Sprintf("product=%s", g.ProductName)}
	if g.BrandName != "" {
		parts = append(parts, fmt.Sprintf("brand=%s", g.BrandName))
	}
	if g.ProductCategory != "" {
		parts = append(parts, fmt.Sprintf("category=%s", g.ProductCategory))
	}
	if g.PriceRange != "" {
		parts = append(parts, fmt.Sprintf("price_range=%s", g.PriceRange))
	}
	if g.TargetAudience != "" {
		parts = append(parts, fmt.Sprintf("target_audience=%s", g.TargetAudience))
	}
	if g.Requirements != "" {
		parts = append(parts, fmt.Sprintf("requirements=%s", g.Requirements))
	}
	return strings.Join(parts, "; ")
}

// ProductDocumentFlowOptions holds dependency overrides.
type ProductDocumentFlowOptions struct {
	// Planner overrides the default decomposition. The plan must bind the
	// ResultDocument key to the step producing the document content.
	Planner func(goal ProductDocumentGoal) manager.Plan
	// Logger receives flow diagnostics.
	Logger logging.Logger
}

// ProductDocumentFlow drives a product document goal through its state
// machine: the document is created in processing before any delegation runs,
// then transitioned to completed or failed once all steps have joined.
type ProductDocumentFlow struct {
	manager   *manager.Manager
	documents core.ProductDocumentStore
	planner   func(goal ProductDocumentGoal) manager.Plan
	logger    logging.Logger
}

// NewProductDocumentFlow constructs a ProductDocumentFlow with optional overrides.
func NewProductDocumentFlow(mgr *manager.Manager, documents core.ProductDocumentStore, optFns ...func(o *ProductDocumentFlowOptions)) *ProductDocumentFlow {
	opts := ProductDocumentFlowOptions{
		Planner: DefaultProductDocumentPlan,
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Planner == nil {
		opts.Planner = DefaultProductDocumentPlan
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &ProductDocumentFlow{manager: mgr, documents: documents, planner: opts.Planner, logger: opts.Logger}
}

// DefaultProductDocumentPlan is the built-in decomposition: market analysis
// and audience research in parallel, then the brand strategist composes the
// penetration document from both.
func DefaultProductDocumentPlan(goal ProductDocumentGoal) manager.Plan {
	goalContext := goal.context()

	return manager.Plan{
		Name: "product_document",
		Stages: []manager.Stage{
			{
				{
					Role:    RoleMarketAnalyst,
					Task:    "Analyze the market position, competitors and selling points for the product.",
					Context: goalContext,
				},
				{
					Role:    RoleAudienceResearcher,
					Task:    "Profile the target audience: needs, objections and buying triggers.",
					Context: goalContext,
				},
			},
			{
				{
					Key:  ResultDocument,
					Role: RoleBrandStrategist,
					Task: "Compose the full product penetration document covering positioning, audience fit and messaging.",
					BuildContext: func(r *manager.Results) string {
						analysis, _ := r.Get(RoleMarketAnalyst)
						audience, _ := r.Get(RoleAudienceResearcher)
						return fmt.Sprintf("%s\n\nMarket analysis:\n%s\n\nAudience research:\n%s", goalContext, analysis, audience)
					},
				},
			},
		},
	}
}

// Run executes the flow. The document is persisted in processing before the
// first delegation; on success it is returned completed. On failure the
// document is transitioned to failed and returned alongside the
// orchestration error so callers can still identify the artifact.
func (f *ProductDocumentFlow) Run(ctx context.Context, goal ProductDocumentGoal) (*core.ProductDocument, error) {
	if goal.ProductName == "" {
		return nil, fmt.Errorf("product document goal requires a product name")
	}

	doc := core.NewProductDocument(goal.ProductName, goal.UserID)
	doc.BrandName = goal.BrandName
	doc.ProductCategory = goal.ProductCategory
	doc.PriceRange = goal.PriceRange
	doc.TargetAudience = goal.TargetAudience
	if len(goal.Tags) > 0 {
		doc.Tags = append([]string(nil), goal.Tags...)
	}

	if err := f.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist product document: %w", err)
	}

	start := time.Now()
	plan := f.planner(goal)

	results, reports, err := f.manager.Run(ctx, plan)
	if err != nil {
		f.logFlow(plan, len(reports), time.Since(start), err)
		return f.fail(ctx, doc.ID, err)
	}

	docContent, ok := results.Get(ResultDocument)
	if !ok || docContent == "" {
		aggErr := manager.NewPartialAggregation(fmt.Errorf("plan %q produced no %q result", plan.Name, ResultDocument))
		return f.fail(ctx, doc.ID, aggErr)
	}

	completed, err := f.documents.Transition(ctx, doc.ID, core.ProductDocumentTransition{
		Status:          core.ProductDocumentStatusCompleted,
		DocumentContent: docContent,
		Metadata: core.CompletionMetadata{
			Summary:        TitleFromMarkdown(docContent),
			Tags:           goal.Tags,
			BrandName:      goal.BrandName,
			TargetAudience: goal.TargetAudience,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("complete product document %s: %w", doc.ID, err)
	}

	f.logTransition(completed.ID, core.ProductDocumentStatusProcessing, completed.Status)
	f.logFlow(plan, len(reports), time.Since(start), nil)

	return completed, nil
}

// fail transitions the document to failed, preserving the original
// orchestration error as the caller-visible failure.
func (f *ProductDocumentFlow) fail(ctx context.Context, id string, cause error) (*core.ProductDocument, error) {
	failed, terr := f.documents.Transition(ctx, id, core.ProductDocumentTransition{
		Status: core.ProductDocumentStatusFailed,
		Reason: cause.Error(),
	})
	if terr != nil {
		f.logger.Error("flow.product_document.fail_transition", "document_id", id, "error", terr.Error())
		return nil, cause
	}
	f.logTransition(failed.ID, core.ProductDocumentStatusProcessing, failed.Status)
	return failed, cause
}

func (f *ProductDocumentFlow) logFlow(plan manager.Plan, steps int, dur time.Duration, err error) {
	if fl, ok := f.logger.(logging.FlowLogger); ok {
		fl.LogFlowExecution(plan.Name, steps, dur, err == nil, err)
		return
	}
	if err != nil {
		f.logger.Warn("flow.product_document.failed", "plan", plan.Name, "steps", steps, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	f.logger.Info("flow.product_document.completed", "plan", plan.Name, "steps", steps, "duration_ms", dur.Milliseconds())
}

func (f *ProductDocumentFlow) logTransition(id string, from, to core.ProductDocumentStatus) {
	if sl, ok := f.logger.(logging.StateTransitionLogger); ok {
		sl.LogStateTransition("product_document", id, string(from), string(to))
	}
}
