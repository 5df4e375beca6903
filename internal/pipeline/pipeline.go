// Package pipeline runs a reconciliation end to end from raw dataset text:
// parse, resolve mappings, validate, normalize, reconcile and aggregate.
//
// All state is carried by the Request and the returned Preparation and
// result; a Pipeline may serve any number of runs.
package pipeline

import (
	"errors"
	"fmt"

	"fjacquet/mpr-recon/internal/aggregate"
	"fjacquet/mpr-recon/internal/dateutils"
	"fjacquet/mpr-recon/internal/logging"
	"fjacquet/mpr-recon/internal/mapping"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/normalizer"
	"fjacquet/mpr-recon/internal/reconciler"
	"fjacquet/mpr-recon/internal/reconerror"
	"fjacquet/mpr-recon/internal/tabular"
)

// Stage names reported to Request.Progress.
const (
	StageParse     = "parse"
	StageMap       = "map"
	StageNormalize = "normalize"
	StageReconcile = "reconcile"
	StageAggregate = "aggregate"
)

// Stages lists every stage in execution order.
var Stages = []string{StageParse, StageMap, StageNormalize, StageReconcile, StageAggregate}

// DefaultPreviewRows is the number of rows kept for mapping previews.
const DefaultPreviewRows = 5

// Input is one dataset handed to the pipeline. When Table is set it is used
// as is and Text is ignored.
type Input struct {
	Role  models.Role
	Name  string
	Text  string
	Table *tabular.Table
}

// Request describes one run.
type Request struct {
	Inputs []Input
	// Profiles are saved mappings; a profile entry only applies when its
	// column exists in the dataset.
	Profiles map[models.Role]mapping.FieldMapping
	// Overrides are manual corrections applied last and unconditionally.
	Overrides map[models.Role]mapping.FieldMapping
	// Window restricts the records reconciled. The zero value admits all.
	Window dateutils.DateRange
	// Progress, when set, is called as each stage starts.
	Progress func(stage string)
}

// Dataset is the prepared view of one input.
type Dataset struct {
	Role     models.Role
	Name     string
	Columns  []string
	Rows     int
	Preview  []tabular.RawRow
	Mapping  mapping.FieldMapping
	Complete bool
	Missing  []models.Field
	Issues   []normalizer.DataIssue

	table *tabular.Table
}

// Preparation is what a mapping UI needs: parsed columns, preview rows and
// the resolved mapping for every supplied dataset.
type Preparation struct {
	Datasets map[models.Role]*Dataset
}

// Dataset returns the prepared dataset for role, or nil.
func (p *Preparation) Dataset(role models.Role) *Dataset {
	if p == nil {
		return nil
	}
	return p.Datasets[role]
}

// Ready reports whether every prepared dataset has a complete mapping.
func (p *Preparation) Ready() bool {
	for _, ds := range p.Datasets {
		if !ds.Complete {
			return false
		}
	}
	return true
}

// Config tunes parsing and previews.
type Config struct {
	Delimiter   rune
	PreviewRows int
}

// Pipeline wires the parser, resolver, normalizer, engine and aggregator.
type Pipeline struct {
	cfg        Config
	engine     *reconciler.Engine
	aggregator *aggregate.Aggregator
	logger     logging.Logger
}

// New creates a Pipeline. Zero Config values fall back to defaults.
func New(cfg Config, engine *reconciler.Engine, aggregator *aggregate.Aggregator, logger logging.Logger) *Pipeline {
	if cfg.Delimiter == 0 {
		cfg.Delimiter = tabular.DefaultDelimiter
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = DefaultPreviewRows
	}
	return &Pipeline{
		cfg:        cfg,
		engine:     engine,
		aggregator: aggregator,
		logger:     logging.Component(logger, "pipeline"),
	}
}

// Prepare parses every input and resolves its mapping without reconciling.
func (p *Pipeline) Prepare(req Request) (*Preparation, error) {
	if err := checkDuplicates(req.Inputs); err != nil {
		return nil, err
	}

	report(req, StageParse)
	prep := &Preparation{Datasets: make(map[models.Role]*Dataset, len(req.Inputs))}
	for _, in := range req.Inputs {
		table, err := p.parse(in)
		if err != nil {
			return nil, err
		}
		prep.Datasets[in.Role] = &Dataset{
			Role:    in.Role,
			Name:    in.Name,
			Columns: table.Columns,
			Rows:    table.Len(),
			Preview: table.Preview(p.cfg.PreviewRows),
			table:   table,
		}
		p.logger.Info("Dataset parsed",
			logging.F(logging.FieldRole, in.Role),
			logging.F(logging.FieldDataset, in.Name),
			logging.F(logging.FieldCount, table.Len()),
			logging.F("columns", len(table.Columns)))
	}

	report(req, StageMap)
	for _, role := range models.Roles {
		ds, ok := prep.Datasets[role]
		if !ok {
			continue
		}
		schema := mapping.SchemaFor(role)
		ds.Mapping = p.resolve(ds, schema, req.Profiles[role], req.Overrides[role])
		ds.Missing = mapping.Missing(ds.Mapping, schema)
		ds.Complete = len(ds.Missing) == 0

		for _, f := range ds.Mapping.Mapped() {
			p.logger.Debug("Field mapped",
				logging.F(logging.FieldRole, role),
				logging.F(logging.FieldField, f),
				logging.F(logging.FieldColumn, ds.Mapping.Column(f)))
		}
	}

	return prep, nil
}

// Run executes a full reconciliation. The Preparation is returned whenever
// parsing succeeded, so callers can show mappings alongside a mapping error.
func (p *Pipeline) Run(req Request) (*models.ReconciliationResult, *Preparation, error) {
	if err := checkMandatory(req.Inputs); err != nil {
		return nil, nil, err
	}

	prep, err := p.Prepare(req)
	if err != nil {
		return nil, nil, err
	}

	for _, role := range models.Roles {
		ds := prep.Dataset(role)
		if ds == nil {
			continue
		}
		if err := mapping.Validate(ds.Mapping, mapping.SchemaFor(role), ds.Name); err != nil {
			return nil, prep, err
		}
	}

	report(req, StageNormalize)
	records := make(map[models.Role][]models.CanonicalRecord, len(prep.Datasets))
	for _, role := range models.Roles {
		ds := prep.Dataset(role)
		if ds == nil {
			continue
		}
		recs, issues := normalizer.NormalizeWithIssues(ds.table.Rows, ds.Mapping, role)
		ds.Issues = issues
		for _, issue := range issues {
			p.logger.Warn("Data quality issue",
				logging.F(logging.FieldRole, issue.Role),
				logging.F(logging.FieldRow, issue.Row),
				logging.F(logging.FieldField, issue.Field),
				logging.F(logging.FieldValue, issue.Value),
				logging.F(logging.FieldReason, issue.Reason))
		}
		records[role] = p.applyWindow(recs, req.Window, role)
	}

	report(req, StageReconcile)
	outcome, err := p.engine.Reconcile(records[models.RoleMPR], records[models.RoleInternal], records[models.RoleBank])
	if err != nil {
		return nil, prep, err
	}

	report(req, StageAggregate)
	result := p.aggregator.Aggregate(aggregate.Input{
		Outcome:  outcome,
		MPR:      records[models.RoleMPR],
		Internal: records[models.RoleInternal],
		Bank:     records[models.RoleBank],
	})

	return result, prep, nil
}

func (p *Pipeline) parse(in Input) (*tabular.Table, error) {
	if in.Table != nil {
		return in.Table, nil
	}
	table, err := tabular.ParseWithDelimiter(in.Text, p.cfg.Delimiter)
	if err != nil {
		var parseErr *reconerror.ParseError
		if errors.As(err, &parseErr) {
			parseErr.Role = string(in.Role)
			parseErr.Source = in.Name
			return nil, parseErr
		}
		return nil, &reconerror.ParseError{Role: string(in.Role), Source: in.Name, Reason: "cannot read dataset", Err: err}
	}
	return table, nil
}

// resolve layers the heuristic mapping, the saved profile and the manual
// overrides, in that order.
func (p *Pipeline) resolve(ds *Dataset, schema mapping.FieldSchema, profile, overrides mapping.FieldMapping) mapping.FieldMapping {
	m := mapping.Resolve(ds.Columns, schema)

	for field, column := range profile {
		if column == "" || !ds.table.HasColumn(column) {
			if column != "" {
				p.logger.Debug("Profile column not present in dataset",
					logging.F(logging.FieldRole, ds.Role),
					logging.F(logging.FieldField, field),
					logging.F(logging.FieldColumn, column))
			}
			continue
		}
		m = m.With(field, column)
	}

	for field, column := range overrides {
		m = m.With(field, column)
	}
	return m
}

// applyWindow drops records outside w. Records without a parsed timestamp
// are dropped whenever a window is active.
func (p *Pipeline) applyWindow(recs []models.CanonicalRecord, w dateutils.DateRange, role models.Role) []models.CanonicalRecord {
	if w.IsZero() {
		return recs
	}
	kept := make([]models.CanonicalRecord, 0, len(recs))
	for _, rec := range recs {
		if w.Contains(rec.Time) {
			kept = append(kept, rec)
		}
	}
	if dropped := len(recs) - len(kept); dropped > 0 {
		p.logger.Info("Records outside date window excluded",
			logging.F(logging.FieldRole, role),
			logging.F(logging.FieldCount, dropped),
			logging.F("window", w.String()))
	}
	return kept
}

func checkMandatory(inputs []Input) error {
	present := make(map[models.Role]bool, len(inputs))
	for _, in := range inputs {
		present[in.Role] = true
	}
	for _, role := range []models.Role{models.RoleMPR, models.RoleInternal} {
		if !present[role] {
			return &reconerror.ReconciliationError{Role: string(role), Reason: "is missing"}
		}
	}
	return nil
}

func checkDuplicates(inputs []Input) error {
	seen := make(map[models.Role]bool, len(inputs))
	for _, in := range inputs {
		if _, err := models.ParseRole(string(in.Role)); err != nil {
			return &reconerror.ReconciliationError{Reason: err.Error()}
		}
		if seen[in.Role] {
			return &reconerror.ReconciliationError{Role: string(in.Role), Reason: fmt.Sprintf("supplied more than once (%s)", in.Name)}
		}
		seen[in.Role] = true
	}
	return nil
}

func report(req Request, stage string) {
	if req.Progress != nil {
		req.Progress(stage)
	}
}
