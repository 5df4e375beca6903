// Package profile handles saved mapping profile commands
package profile

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"fjacquet/mpr-recon/cmd/common"
	"fjacquet/mpr-recon/cmd/root"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the profile command
var Cmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved column mapping profiles",
	Long: `List, show, save and delete named column mappings. A profile maps the
canonical fields of one dataset role onto the column names of a specific
gateway, ledger or bank export.`,
}

var (
	saveRole        string
	saveDescription string
	saveMaps        []string
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository()
			if err != nil {
				return err
			}
			return List(repo, cmd.OutOrStdout())
		},
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository()
			if err != nil {
				return err
			}
			return Show(repo, args[0], cmd.OutOrStdout())
		},
	}

	saveCmd := &cobra.Command{
		Use:     "save NAME",
		Short:   "Create or replace a profile",
		Example: `  mpr-recon profile save razorpay --role mpr --map transaction_id="Payment ID" --map utr=RRN`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository()
			if err != nil {
				return err
			}
			return Save(repo, args[0], saveRole, saveDescription, saveMaps, cmd.OutOrStdout())
		},
	}
	saveCmd.Flags().StringVarP(&saveRole, "role", "r", "", "Dataset role: mpr, internal or bank (required)")
	saveCmd.Flags().StringVarP(&saveDescription, "description", "d", "", "Free-form description")
	saveCmd.Flags().StringArrayVar(&saveMaps, "map", nil, "Field mapping field=Column (repeatable)")
	_ = saveCmd.MarkFlagRequired("role")

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository()
			if err != nil {
				return err
			}
			if err := repo.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), common.FormatSuccess(fmt.Sprintf("Deleted profile %q", args[0])))
			return nil
		},
	}

	Cmd.AddCommand(listCmd, showCmd, saveCmd, deleteCmd)
}

func repository() (store.ProfileRepository, error) {
	c, err := root.GetContainer()
	if err != nil {
		return nil, err
	}
	return c.GetStore(), nil
}

// List writes a table of all saved profiles.
func List(repo store.ProfileRepository, out io.Writer) error {
	profiles, err := repo.Load()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	if len(profiles) == 0 {
		fmt.Fprintln(out, common.SubtleStyle.Render("No profiles found. Use 'mpr-recon profile save' to create one."))
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		common.HeaderStyle.Render("NAME"),
		common.HeaderStyle.Render("ROLE"),
		common.HeaderStyle.Render("FIELDS"),
		common.HeaderStyle.Render("DESCRIPTION"))
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Name, p.Role, len(p.Mapping), p.Description)
	}
	return nil
}

// Show writes one profile's mapping.
func Show(repo store.ProfileRepository, name string, out io.Writer) error {
	p, err := repo.Get(name)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, common.TitleStyle.Render(fmt.Sprintf("%s (%s)", p.Name, p.Role)))
	if p.Description != "" {
		fmt.Fprintln(out, p.Description)
	}

	fields := make([]string, 0, len(p.Mapping))
	for f := range p.Mapping {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "FIELD\tCOLUMN")
	for _, f := range fields {
		fmt.Fprintf(tw, "%s\t%s\n", f, p.Mapping[f])
	}
	return nil
}

// Save parses field=Column pairs and stores them under name.
func Save(repo store.ProfileRepository, name, role, description string, maps []string, out io.Writer) error {
	r, err := models.ParseRole(role)
	if err != nil {
		return err
	}
	if len(maps) == 0 {
		return fmt.Errorf("at least one --map field=Column is required")
	}

	p := store.Profile{
		Name:        name,
		Role:        r,
		Description: description,
		Mapping:     make(map[string]string, len(maps)),
	}
	for _, m := range maps {
		field, column, ok := strings.Cut(m, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return fmt.Errorf("invalid mapping %q: expected field=Column", m)
		}
		p.Mapping[strings.ToLower(strings.TrimSpace(field))] = strings.TrimSpace(column)
	}

	if err := repo.Save(p); err != nil {
		return err
	}
	fmt.Fprintln(out, common.FormatSuccess(fmt.Sprintf("Saved profile %q", name)))
	return nil
}
