// Package crewmesh provides a high-level façade over the manager, specialist
// pool and flow drivers, enabling rapid construction of delegation-based
// content pipelines. Most applications interact with this package by:
//  1. Creating a Crew via New() (optionally overriding the default in-memory stores)
//  2. Registering one or more specialists under their role names
//  3. Running a flow (GenerateContent, BuildProductDocument)
//
// The façade delegates orchestration to manager.Manager while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply the sqlite stores and
// a structured logger.
package crewmesh

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/crewmesh/config"
	"github.com/hupe1980/crewmesh/core"
	"github.com/hupe1980/crewmesh/flow"
	"github.com/hupe1980/crewmesh/logging"
	"github.com/hupe1980/crewmesh/manager"
	"github.com/hupe1980/crewmesh/specialist"
	"github.com/hupe1980/crewmesh/store"
	"github.com/hupe1980/crewmesh/store/sqlite"
)

// Options configures the Crew instance.
type Options struct {
	// InvocationTimeout bounds a single specialist invocation.
	InvocationTimeout time.Duration

	// MaxAttempts caps invocation attempts per delegation step.
	MaxAttempts int

	// RetryBackoff is the base delay between retry attempts.
	RetryBackoff time.Duration

	// MaxParallel limits concurrent delegations within a plan stage.
	MaxParallel int

	// Stores (default to in-memory implementations if not provided).
	ContentStore  core.ContentStore
	DocumentStore core.ProductDocumentStore

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Crew is the high-level façade aggregating the specialist pool, manager and
// flow drivers.
type Crew struct {
	opts    Options
	pool    *specialist.Pool
	manager *manager.Manager

	contentFlow  *flow.ContentFlow
	documentFlow *flow.ProductDocumentFlow
}

// New creates a new Crew instance with optional overrides. Any unset store is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Crew {
	opts := Options{
		InvocationTimeout: 2 * time.Minute,
		MaxAttempts:       3,
		RetryBackoff:      200 * time.Millisecond,
		MaxParallel:       4,
		ContentStore:      store.NewInMemoryContentStore(),
		DocumentStore:     store.NewInMemoryDocumentStore(),
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	pool := specialist.NewPool(func(o *specialist.Options) {
		o.InvocationTimeout = opts.InvocationTimeout
		o.Logger = opts.Logger
	})

	mgr := manager.New(pool, func(o *manager.Options) {
		o.MaxAttempts = opts.MaxAttempts
		o.RetryBackoff = opts.RetryBackoff
		o.MaxParallel = opts.MaxParallel
		o.Logger = opts.Logger
	})

	return &Crew{
		opts:    opts,
		pool:    pool,
		manager: mgr,
		contentFlow: flow.NewContentFlow(mgr, opts.ContentStore, func(o *flow.ContentFlowOptions) {
			o.Logger = opts.Logger
		}),
		documentFlow: flow.NewProductDocumentFlow(mgr, opts.DocumentStore, func(o *flow.ProductDocumentFlowOptions) {
			o.Logger = opts.Logger
		}),
	}
}

// NewFromConfig creates a Crew from a loaded configuration: sqlite stores
// when a storage path is set, in-memory stores otherwise, and a structured
// logger per the logging section.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*Crew, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.Logging.Level),
		Format:    cfg.Logging.Format,
		Component: "crewmesh",
	})

	var contents core.ContentStore
	var documents core.ProductDocumentStore
	if cfg.Storage.Path != "" {
		db, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		contents = db.Contents()
		documents = db.Documents()
	} else {
		contents = store.NewInMemoryContentStore()
		documents = store.NewInMemoryDocumentStore()
	}

	fns := append([]func(o *Options){func(o *Options) {
		o.InvocationTimeout = cfg.Delegation.InvocationTimeout
		o.MaxAttempts = cfg.Delegation.MaxAttempts
		o.RetryBackoff = cfg.Delegation.RetryBackoff
		o.MaxParallel = cfg.Delegation.MaxParallel
		o.ContentStore = contents
		o.DocumentStore = documents
		o.Logger = logger
	}}, optFns...)

	return New(fns...), nil
}

// RegisterSpecialist adds a specialist capability under the given role name.
func (c *Crew) RegisterSpecialist(role string, cap specialist.Capability) error {
	return c.pool.Register(role, cap)
}

// RegisterSpecialistFunc adds a function-backed specialist.
func (c *Crew) RegisterSpecialistFunc(role string, fn specialist.CapabilityFunc) error {
	return c.pool.RegisterFunc(role, fn)
}

// Roles returns the registered specialist role names in sorted order.
func (c *Crew) Roles() []string { return c.pool.Roles() }

// Manager exposes the underlying manager for custom plans.
func (c *Crew) Manager() *manager.Manager { return c.manager }

// Contents exposes the content store.
func (c *Crew) Contents() core.ContentStore { return c.opts.ContentStore }

// Documents exposes the product document store.
func (c *Crew) Documents() core.ProductDocumentStore { return c.opts.DocumentStore }

// GenerateContent runs the content flow and returns the persisted draft.
func (c *Crew) GenerateContent(ctx context.Context, goal flow.ContentGoal) (*core.Content, error) {
	return c.contentFlow.Run(ctx, goal)
}

// BuildProductDocument runs the product document flow. On failure the
// returned document (if non-nil) is in the failed state alongside the error.
func (c *Crew) BuildProductDocument(ctx context.Context, goal flow.ProductDocumentGoal) (*core.ProductDocument, error) {
	return c.documentFlow.Run(ctx, goal)
}
