package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	"github.com/smartwardrobe/wardrobe-server/internal/inventory"
)

func newListCmd(a *app) *cobra.Command {
	var category, section, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally filtered",
		Long: `List items. A section filter overrides the category filter.

Examples:
  wardrobe list
  wardrobe list --category favorites
  wardrobe list --section Closet --search wool`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := inventory.NewView()
			if category != "" {
				if err := view.SelectCategory(category); err != nil {
					return err
				}
			}
			if section != "" {
				s, err := a.section(section)
				if err != nil {
					return err
				}
				view.SelectSection(s.ID)
			}
			view.SetSearch(search)

			items := view.Visible(a.inv.Snapshot())
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No items match.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tCOLOR\tCATEGORY\tLOCATION\tFAV")
			for _, it := range items {
				fav := ""
				if it.IsFavorite() {
					fav = "★"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Type, it.Color, it.Category, it.Location, fav)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "tab: all-items, workwear, partywear, casual or favorites")
	cmd.Flags().StringVarP(&section, "section", "s", "", "section id or name")
	cmd.Flags().StringVarP(&search, "search", "q", "", "case-insensitive text matched against name, type, color and tags")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, tab := range domain.Tabs {
				fmt.Fprintf(w, "%s\t%s\n", tab.ID, tab.Name)
			}
			return w.Flush()
		},
	}
}
