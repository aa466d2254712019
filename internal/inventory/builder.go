package inventory

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"yaani/internal/common"
	"yaani/internal/ctxlog"
	"yaani/internal/expr"
	"yaani/internal/subimport"
)

// DefaultWorkers bounds per-record evaluation when no option is given.
const DefaultWorkers = 8

// ErrNoRelatedFetcher is returned when an import declares sub-imports but
// the Builder has nothing to load them with.
var ErrNoRelatedFetcher = errors.New("sub-imports declared but no related fetcher configured")

// ErrReservedGroup reports a group named like the inventory's _meta key.
var ErrReservedGroup = errors.New("group name is reserved")

// Fetcher loads the records of one NetBox endpoint. The filter is passed
// through verbatim.
type Fetcher interface {
	Fetch(ctx context.Context, app, typ, filter string) ([]Record, error)
}

// Option configures a Builder.
type Option func(*Builder)

// WithWorkers bounds how many records are evaluated at once.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.workers = max(n, 1)
	}
}

// WithRelatedFetcher sets the fetcher used for sub-imports.
func WithRelatedFetcher(f subimport.RelatedFetcher) Option {
	return func(b *Builder) {
		b.related = f
	}
}

// Builder runs a Plan against a Fetcher.
type Builder struct {
	fetcher Fetcher
	related subimport.RelatedFetcher
	workers int
}

// NewBuilder returns a Builder. When f also implements
// subimport.RelatedFetcher it serves sub-imports too.
func NewBuilder(f Fetcher, opts ...Option) *Builder {
	b := &Builder{fetcher: f, workers: DefaultWorkers}

	if rf, ok := f.(subimport.RelatedFetcher); ok {
		b.related = rf
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build runs every import of the plan in declaration order, then applies
// group variables and the group hierarchy.
func (b *Builder) Build(ctx context.Context, plan *Plan) (*Inventory, error) {
	logger := ctxlog.FromContext(ctx)

	imports := plan.Imports
	if common.IsEmpty(imports) {
		logger.Debug("no import statements, importing all devices")

		imports = []Import{DefaultImport()}
	}

	inv := New()

	for i := range imports {
		if err := b.runImport(ctx, inv, &imports[i]); err != nil {
			return nil, err
		}
	}

	inv.applyGroupVars(plan.GroupVars)
	inv.applyHierarchy(plan.Hierarchy)

	return inv, nil
}

// Host builds the inventory and returns the variables of one host, empty
// when the host is unknown.
func (b *Builder) Host(ctx context.Context, plan *Plan, name string) (HostVarsMap, error) {
	inv, err := b.Build(ctx, plan)
	if err != nil {
		return nil, err
	}

	if vars, ok := inv.HostVars[name]; ok {
		return vars, nil
	}

	return HostVarsMap{}, nil
}

type warning struct {
	field string
	err   error
}

// recordResult is what one record contributes to the inventory.
type recordResult struct {
	host        string
	memberships []Membership
	vars        HostVarsMap
	warnings    []warning
	// dropped names the condition that filtered the record out.
	dropped string
}

func (b *Builder) runImport(ctx context.Context, inv *Inventory, imp *Import) error {
	logger := ctxlog.FromContext(ctx).With("import", imp.Name)

	records, err := b.fetcher.Fetch(ctx, imp.App, imp.Type, imp.Filter)
	if err != nil {
		return fmt.Errorf("import %s: %w", imp.Name, err)
	}

	logger.Debug("fetched records", "endpoint", imp.App+"/"+imp.Type, "count", len(records))

	resolver := imp.SubImports
	if resolver != nil && len(resolver.Specs()) > 0 {
		if b.related == nil {
			return fmt.Errorf("import %s: %w", imp.Name, ErrNoRelatedFetcher)
		}

		resolver, err = resolver.Prefetch(ctx, b.related)
		if err != nil {
			return fmt.Errorf("import %s: %w", imp.Name, err)
		}
	}

	results := make([]recordResult, len(records))

	var g errgroup.Group

	g.SetLimit(b.workers)

	for i, rec := range records {
		g.Go(func() error {
			results[i] = evaluateRecord(imp, resolver, rec)
			return nil
		})
	}

	_ = g.Wait()

	for i := range results {
		res := &results[i]

		for _, w := range res.warnings {
			logger.Warn("evaluation failed", "host", res.host, "field", w.field, "error", w.err)
		}

		if res.dropped != "" {
			logger.Debug("record filtered out", "host", res.host, "condition", res.dropped)
			continue
		}

		if res.host == "" {
			continue
		}

		for _, m := range res.memberships {
			inv.AddMembership(m)
		}

		inv.MergeHostVars(res.host, res.vars)
	}

	return nil
}

func evaluateRecord(imp *Import, resolver *subimport.Resolver, rec Record) recordResult {
	var res recordResult

	composed := rec

	if resolver != nil {
		var errs []error

		composed, errs = resolver.Resolve(rec)
		res.warn("sub_import", errs...)
	}

	if !res.check("pre_condition", imp.PreCondition, composed) {
		return res
	}

	host, err := identify(imp, composed)
	if err != nil {
		res.warn("index", err)
		return res
	}

	res.host = host

	memberships, errs := GroupBy(composed, host, imp.GroupBy, imp.GroupPrefix)
	res.warn("group_by", errs...)

	for _, m := range append(memberships, Membership{Group: imp.Name, Host: host}) {
		if m.Group == MetaKey {
			res.warn("group_by", fmt.Errorf("%w: %s", ErrReservedGroup, m.Group))
			continue
		}

		res.memberships = append(res.memberships, m)
	}

	vars, errs := AssembleHostVars(composed, imp.HostVars)
	res.warn("host_vars", errs...)
	res.vars = vars

	res.check("post_condition", imp.PostCondition, map[string]any(vars))

	return res
}

// check evaluates an optional condition and reports whether the record
// passes it. A failing evaluation is a warning and drops the record.
func (r *recordResult) check(field string, cond *expr.Expression, v any) bool {
	if cond == nil {
		return true
	}

	out, err := cond.Evaluate(v)
	if err != nil {
		r.warn(field, err)
	}

	if err != nil || !expr.Truthy(out) {
		r.dropped = field
		return false
	}

	return true
}

func (r *recordResult) warn(field string, errs ...error) {
	for _, err := range errs {
		r.warnings = append(r.warnings, warning{field: field, err: err})
	}
}

// identify returns the host identifier: the index value, or <type>_<id>
// when the index is absent or empty.
func identify(imp *Import, rec Record) (string, error) {
	v, err := imp.index().Evaluate(rec)
	if err == nil && v != nil {
		if s := expr.Stringify(v); s != "" {
			return s, nil
		}
	}

	if id, ok := rec["id"]; ok && id != nil {
		return imp.Type + "_" + expr.Stringify(id), nil
	}

	if err != nil {
		return "", fmt.Errorf("record skipped: %w", err)
	}

	return "", errors.New("record skipped: no identifier and no id")
}
