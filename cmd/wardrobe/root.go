package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/smartwardrobe/wardrobe-server/internal/di"
	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
	"github.com/smartwardrobe/wardrobe-server/internal/inventory"
)

// app carries what every command needs once the inventory is loaded.
type app struct {
	injector *do.RootScope
	inv      *inventory.Inventory

	serverURL string
	logLevel  string
	envFile   string
}

// offline commands never contact the record service.
var offline = map[string]bool{
	"help":       true,
	"completion": true,
	"categories": true,
	"wardrobe":   true,
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "wardrobe",
		Short: "Manage a Smart Wardrobe inventory",
		Long: `wardrobe is a command-line client for the Smart Wardrobe record service.

It keeps sections (drawers, closets, shelves) and the items stored in them,
and filters items by category, section and free-text search.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if offline[cmd.Name()] {
				return nil
			}
			return a.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.serverURL, "server-url", "", "record service URL (default from WARDROBE_SERVER_URL)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "path to .env file")

	root.AddCommand(
		newSectionsCmd(a),
		newItemsCmd(a),
		newListCmd(a),
		newCategoriesCmd(),
		newImportCmd(a),
	)
	return root, a
}

// configArgs turns the persistent flags into config.Load arguments.
func (a *app) configArgs() []string {
	args := []string{"--env-file", a.envFile}
	if a.serverURL != "" {
		args = append(args, "--server-url", a.serverURL)
	}
	if a.logLevel != "" {
		args = append(args, "--log-level", a.logLevel)
	}
	return args
}

func (a *app) open(ctx context.Context) error {
	a.injector = di.NewClientContainer(a.configArgs())

	inv, err := do.Invoke[*inventory.Inventory](a.injector)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := inv.Load(ctx); err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}
	a.inv = inv
	return nil
}

func (a *app) close() {
	if a.injector != nil {
		a.injector.Shutdown()
	}
}

// section finds a section by id or by name, ignoring case.
func (a *app) section(ref string) (domain.Section, error) {
	if s, ok := a.inv.Section(ref); ok {
		return s, nil
	}
	for _, sum := range a.inv.Sections() {
		if domain.SameSectionName(sum.Section.Name, ref) {
			return sum.Section, nil
		}
	}
	return domain.Section{}, domainerrors.NotFoundf("no section %q", ref)
}

// run executes the CLI with args, writing results to out.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	root, a := newRootCmd()
	defer a.close()

	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

// describe renders an error for the terminal, including domain details.
func describe(err error) string {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) || domainErr.Details == nil {
		return err.Error()
	}
	switch d := domainErr.Details.(type) {
	case map[string]string:
		parts := make([]string, 0, len(d))
		for k, v := range d {
			parts = append(parts, k+": "+v)
		}
		return err.Error() + " (" + strings.Join(parts, "; ") + ")"
	case []string:
		return err.Error() + " (" + strings.Join(d, ", ") + ")"
	default:
		return err.Error()
	}
}
