// Package reconcile handles the reconcile command
package reconcile

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/mpr-recon/cmd/common"
	"fjacquet/mpr-recon/cmd/root"
	"fjacquet/mpr-recon/internal/container"
	"fjacquet/mpr-recon/internal/dateutils"
	"fjacquet/mpr-recon/internal/logging"
	"fjacquet/mpr-recon/internal/mapping"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/pipeline"
	"fjacquet/mpr-recon/internal/reconciler"
	"fjacquet/mpr-recon/internal/reconerror"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Options are the reconcile command's flag values.
type Options struct {
	Files     map[models.Role]string
	Profiles  map[models.Role]string
	Maps      []string
	From      string
	To        string
	Status    string
	Source    string
	Limit     int
	Output    string
	Format    string
	OneToOne  bool
	Tolerance string
	Progress  bool
}

var flags Options

var (
	mprFile, internalFile, bankFile          string
	mprProfile, internalProfile, bankProfile string
)

// Cmd represents the reconcile command
var Cmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile an MPR report against internal and bank records",
	Long: `Reconcile a payment gateway MPR report against internal transaction
records and, optionally, a bank statement. Inputs may be CSV or XLSX files.
Column mappings are proposed automatically, refined with saved profiles and
--map overrides, and must be complete before reconciliation runs.`,
	Example: `  mpr-recon reconcile --mpr mpr.csv --internal internal.csv --bank bank.xlsx
  mpr-recon reconcile --mpr mpr.csv --internal ledger.csv --map internal.transaction_id="Order No"
  mpr-recon reconcile --mpr mpr.csv --internal internal.csv --status anomaly -o result.json`,
	RunE: reconcileFunc,
}

func init() {
	f := Cmd.Flags()
	f.StringVar(&mprFile, "mpr", "", "MPR report file (required)")
	f.StringVar(&internalFile, "internal", "", "Internal records file (required)")
	f.StringVar(&bankFile, "bank", "", "Bank statement file (optional)")
	f.StringVar(&mprProfile, "profile-mpr", "", "Saved mapping profile for the MPR file")
	f.StringVar(&internalProfile, "profile-internal", "", "Saved mapping profile for the internal file")
	f.StringVar(&bankProfile, "profile-bank", "", "Saved mapping profile for the bank file")
	f.StringArrayVar(&flags.Maps, "map", nil, "Mapping override role.field=Column (repeatable)")
	f.StringVar(&flags.From, "from", "", "Only reconcile records on or after this date")
	f.StringVar(&flags.To, "to", "", "Only reconcile records on or before this date")
	f.StringVar(&flags.Status, "status", "", "Show only transactions with this status")
	f.StringVar(&flags.Source, "source", "", "Show only transactions from this source (mpr, internal, bank)")
	f.IntVar(&flags.Limit, "limit", 50, "Maximum transactions to display (0 for all)")
	f.StringVarP(&flags.Output, "output", "o", "", "Write the full result to this file")
	f.StringVarP(&flags.Format, "format", "f", "", "Output format: json, yaml or csv (default from config)")
	f.BoolVar(&flags.OneToOne, "one-to-one", false, "Let each counterpart record match at most once")
	f.StringVar(&flags.Tolerance, "tolerance", "", "Amount tolerance (default from config)")
	f.BoolVar(&flags.Progress, "progress", true, "Show a progress bar")
	_ = Cmd.MarkFlagRequired("mpr")
	_ = Cmd.MarkFlagRequired("internal")
}

func reconcileFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	opts := flags
	opts.Files = map[models.Role]string{models.RoleMPR: mprFile, models.RoleInternal: internalFile, models.RoleBank: bankFile}
	opts.Profiles = map[models.Role]string{models.RoleMPR: mprProfile, models.RoleInternal: internalProfile, models.RoleBank: bankProfile}
	if !cmd.Flags().Changed("one-to-one") {
		opts.OneToOne = c.GetConfig().Recon.OneToOne
	}

	return Run(c, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Run executes one reconciliation with the container's collaborators and
// prints the outcome to out. Progress goes to errOut.
func Run(c *container.Container, opts Options, out, errOut io.Writer) error {
	logger := c.GetLogger()

	req, err := buildRequest(c, opts)
	if err != nil {
		return err
	}

	filter, err := buildFilter(opts)
	if err != nil {
		return err
	}

	p, err := selectPipeline(c, opts)
	if err != nil {
		return err
	}

	var progress *common.StageProgress
	if opts.Progress {
		progress = common.NewStageProgress(errOut)
		req.Progress = progress.Stage
	}

	result, prep, err := p.Run(req)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		var incomplete *reconerror.MappingIncompleteError
		if errors.As(err, &incomplete) && prep != nil {
			common.PrintIncomplete(out, prep)
			fmt.Fprintln(out, common.SubtleStyle.Render("Use --map role.field=Column or --profile-<role> to complete the mapping."))
		}
		return err
	}

	for _, role := range models.Roles {
		if ds := prep.Dataset(role); ds != nil && len(ds.Issues) > 0 {
			fmt.Fprintln(out, common.FormatWarning(fmt.Sprintf("%s: %d data quality issue(s), amounts defaulted to 0", role.Label(), len(ds.Issues))))
		}
	}

	common.PrintSummary(out, result)
	fmt.Fprintln(out)
	common.PrintTransactions(out, result.Filter(filter))
	fmt.Fprintln(out)
	common.PrintAnomalies(out, result.Anomalies)

	if opts.Output == "" {
		return nil
	}

	format := opts.Format
	if format == "" {
		format = c.GetConfig().Output.Format
	}
	data, err := c.GetGenerator().Generate(result, strings.ToLower(format))
	if err != nil {
		return err
	}
	if err := c.GetGenerator().WriteFile(opts.Output, data); err != nil {
		return err
	}
	fmt.Fprintln(out, common.FormatSuccess("Result written to "+opts.Output))
	logger.Debug("Reconcile command completed", logging.F(logging.FieldOutputFile, opts.Output))
	return nil
}

func buildRequest(c *container.Container, opts Options) (pipeline.Request, error) {
	var req pipeline.Request

	for _, role := range models.Roles {
		path := opts.Files[role]
		if path == "" {
			continue
		}
		in, err := c.GetLoader().Load(role, path)
		if err != nil {
			return req, err
		}
		req.Inputs = append(req.Inputs, in)
	}

	req.Profiles = make(map[models.Role]mapping.FieldMapping)
	for _, role := range models.Roles {
		name := opts.Profiles[role]
		if name == "" {
			continue
		}
		profile, err := c.GetStore().Get(name)
		if err != nil {
			return req, err
		}
		if profile.Role != role {
			return req, fmt.Errorf("profile %q is for %s data, not %s", profile.Name, profile.Role, role)
		}
		m, err := profile.FieldMapping()
		if err != nil {
			return req, err
		}
		req.Profiles[role] = m
	}

	overrides, err := common.ParseOverrides(opts.Maps)
	if err != nil {
		return req, err
	}
	req.Overrides = overrides

	window, err := dateutils.ParseDateRange(opts.From, opts.To)
	if err != nil {
		return req, err
	}
	req.Window = window

	return req, nil
}

func buildFilter(opts Options) (models.ResultFilter, error) {
	f := models.ResultFilter{Limit: opts.Limit}
	if opts.Status != "" {
		s, ok := models.ParseStatus(opts.Status)
		if !ok {
			return f, fmt.Errorf("unknown status %q", opts.Status)
		}
		f.Status = s
	}
	if opts.Source != "" {
		r, err := models.ParseRole(opts.Source)
		if err != nil {
			return f, err
		}
		f.Source = r
	}
	return f, nil
}

func selectPipeline(c *container.Container, opts Options) (*pipeline.Pipeline, error) {
	current := c.GetEngine().Options()
	wanted := current
	wanted.OneToOne = opts.OneToOne
	if opts.Tolerance != "" {
		tol, err := decimal.NewFromString(opts.Tolerance)
		if err != nil || !tol.IsPositive() {
			return nil, fmt.Errorf("tolerance must be a positive decimal, got %q", opts.Tolerance)
		}
		wanted.Tolerance = tol
	}
	if wanted.OneToOne == current.OneToOne && wanted.Tolerance.Equal(current.Tolerance) {
		return c.GetPipeline(), nil
	}
	return c.PipelineWith(reconciler.Options{Tolerance: wanted.Tolerance, OneToOne: wanted.OneToOne}), nil
}
