// Package mapping handles column mapping inspection commands
package mapping

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/mpr-recon/cmd/common"
	"fjacquet/mpr-recon/cmd/root"
	"fjacquet/mpr-recon/internal/container"
	fieldmapping "fjacquet/mpr-recon/internal/mapping"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/pipeline"
	"fjacquet/mpr-recon/internal/store"

	"github.com/spf13/cobra"
)

// DetectOptions are the detect command's flag values.
type DetectOptions struct {
	Role    string
	Input   string
	Rows    int
	Profile string
	Maps    []string
	Save    string
}

var detectFlags DetectOptions

// Cmd represents the mapping command
var Cmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect how dataset columns map onto canonical fields",
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Propose a column mapping for a dataset file",
	Long: `Parse a dataset file, propose a mapping from its columns to the
canonical fields of the given role and show completeness and preview rows.
The resulting mapping can be saved as a profile with --save.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Detect(c, detectFlags, cmd.OutOrStdout())
	},
}

var schemaRole string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List the canonical fields of a dataset role",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := models.ParseRole(schemaRole)
		if err != nil {
			return err
		}
		PrintSchema(cmd.OutOrStdout(), role)
		return nil
	},
}

func init() {
	f := detectCmd.Flags()
	f.StringVarP(&detectFlags.Role, "role", "r", "", "Dataset role: mpr, internal or bank (required)")
	f.StringVarP(&detectFlags.Input, "input", "i", "", "Dataset file (required)")
	f.IntVar(&detectFlags.Rows, "rows", 0, "Preview rows to show (default from config)")
	f.StringVarP(&detectFlags.Profile, "profile", "p", "", "Apply a saved mapping profile")
	f.StringArrayVar(&detectFlags.Maps, "map", nil, "Mapping override role.field=Column (repeatable)")
	f.StringVar(&detectFlags.Save, "save", "", "Save the resulting mapping as a profile with this name")
	_ = detectCmd.MarkFlagRequired("role")
	_ = detectCmd.MarkFlagRequired("input")

	schemaCmd.Flags().StringVarP(&schemaRole, "role", "r", "", "Dataset role: mpr, internal or bank (required)")
	_ = schemaCmd.MarkFlagRequired("role")

	Cmd.AddCommand(detectCmd)
	Cmd.AddCommand(schemaCmd)
}

// Detect loads one dataset, resolves its mapping and prints it.
func Detect(c *container.Container, opts DetectOptions, out io.Writer) error {
	role, err := models.ParseRole(opts.Role)
	if err != nil {
		return err
	}

	in, err := c.GetLoader().Load(role, opts.Input)
	if err != nil {
		return err
	}

	req := pipeline.Request{Inputs: []pipeline.Input{in}}
	if opts.Profile != "" {
		profile, err := c.GetStore().Get(opts.Profile)
		if err != nil {
			return err
		}
		if profile.Role != role {
			return fmt.Errorf("profile %q is for %s data, not %s", profile.Name, profile.Role, role)
		}
		m, err := profile.FieldMapping()
		if err != nil {
			return err
		}
		req.Profiles = map[models.Role]fieldmapping.FieldMapping{role: m}
	}
	overrides, err := common.ParseOverrides(opts.Maps)
	if err != nil {
		return err
	}
	req.Overrides = overrides

	prep, err := c.GetPipeline().Prepare(req)
	if err != nil {
		return err
	}

	ds := prep.Dataset(role)
	if opts.Rows > 0 && opts.Rows < len(ds.Preview) {
		ds.Preview = ds.Preview[:opts.Rows]
	}
	common.PrintDataset(out, ds)

	if opts.Save == "" {
		return nil
	}
	profile := store.Profile{
		Name:        opts.Save,
		Role:        role,
		Description: "Detected from " + ds.Name,
		Mapping:     make(map[string]string),
	}
	for _, f := range ds.Mapping.Mapped() {
		profile.Mapping[string(f)] = ds.Mapping.Column(f)
	}
	if err := c.GetStore().Save(profile); err != nil {
		return err
	}
	fmt.Fprintln(out, common.FormatSuccess(fmt.Sprintf("Saved profile %q", opts.Save)))
	return nil
}

// PrintSchema writes the canonical fields of role with their synonyms.
func PrintSchema(w io.Writer, role models.Role) {
	fmt.Fprintln(w, common.TitleStyle.Render(role.Label()+" fields"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "FIELD\tREQUIRED\tMATCHES\tDESCRIPTION")
	for _, spec := range fieldmapping.SchemaFor(role).Fields {
		required := "no"
		if spec.Required {
			required = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", spec.Field, required,
			strings.Join(fieldmapping.Synonyms(spec.Field), ", "), spec.Description)
	}
}
