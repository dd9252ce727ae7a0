package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSectionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sections",
		Aliases: []string{"section"},
		Short:   "Manage storage sections",
		Long: `Manage the sections items are stored in.

Sections are referenced by id or by name; names match ignoring case.

Examples:
  wardrobe sections add "Drawer 1"
  wardrobe sections rename "Drawer 1" "Top Drawer"
  wardrobe sections rm "Top Drawer"`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List sections with their item counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tITEMS")
				for _, s := range a.inv.Sections() {
					fmt.Fprintf(w, "%s\t%s\t%s\n", s.Section.ID, s.Section.Name, s.Label())
				}
				if err := w.Flush(); err != nil {
					return err
				}
				if orphans := a.inv.Orphans(); len(orphans) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "\n%d item(s) reference a missing section; run `wardrobe sections repair <section>`\n", len(orphans))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a section",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.inv.CreateSection(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added section %q (%s)\n", s.Name, s.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename <section> <new-name>",
			Short: "Rename a section and move its items along",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.section(args[0])
				if err != nil {
					return err
				}
				renamed, err := a.inv.RenameSection(cmd.Context(), s.ID, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q\n", s.Name, renamed.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:     "rm <section>",
			Aliases: []string{"delete"},
			Short:   "Delete an empty section",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.section(args[0])
				if err != nil {
					return err
				}
				if err := a.inv.DeleteSection(cmd.Context(), s.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted section %q\n", s.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "repair <section> [item-id...]",
			Short: "Move items that reference a missing section into this one",
			Long: `Move items whose location matches no section into the given section.

Items end up like this when a rename could not update every item. With no
item ids every such item is moved.`,
			Args: cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.section(args[0])
				if err != nil {
					return err
				}
				n, err := a.inv.AdoptOrphans(cmd.Context(), s.ID, args[1:]...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %d item(s) to %q\n", n, s.Name)
				return nil
			},
		},
	)
	return cmd
}
