package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
)

// importFile is the YAML layout accepted by `wardrobe import`.
type importFile struct {
	Sections []string     `yaml:"sections"`
	Items    []importItem `yaml:"items"`
}

type importItem struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Color    string   `yaml:"color"`
	Style    string   `yaml:"style"`
	Location string   `yaml:"location"`
	Category string   `yaml:"category"`
	ImageURL string   `yaml:"image_url"`
	Image    string   `yaml:"image"` // path relative to the YAML file
	Tags     []string `yaml:"tags"`
	Favorite bool     `yaml:"favorite"`
}

func (it importItem) draft() domain.ItemDraft {
	tags := it.Tags
	if it.Favorite {
		tags = append(tags, domain.FavoriteTag)
	}
	return domain.ItemDraft{
		Name:     it.Name,
		Type:     it.Type,
		Color:    it.Color,
		Style:    it.Style,
		Location: it.Location,
		Category: domain.Category(it.Category),
		ImageURL: it.ImageURL,
		Tags:     tags,
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create sections and items from a YAML file",
		Long: `Create sections and items described in a YAML file.

Sections that already exist are skipped. Every item is attempted; the
command fails if any of them could not be created.

  sections:
    - Drawer 1
    - Closet
  items:
    - name: Blue Tee
      location: Drawer 1
      category: casual
      image: photos/tee.jpg
      favorite: true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var file importFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			dir := filepath.Dir(path)

			var created, skipped int
			for _, name := range file.Sections {
				if _, err := a.section(name); err == nil {
					skipped++
					continue
				}
				if _, err := a.inv.CreateSection(ctx, name); err != nil {
					return fmt.Errorf("section %q: %w", name, err)
				}
				created++
			}
			fmt.Fprintf(out, "Sections: %d created, %d already present\n", created, skipped)

			var failures []error
			added := 0
			for _, it := range file.Items {
				imagePath := it.Image
				if imagePath != "" && !filepath.IsAbs(imagePath) {
					imagePath = filepath.Join(dir, imagePath)
				}
				image, err := readImage(imagePath)
				if err != nil {
					failures = append(failures, fmt.Errorf("item %q: %w", it.Name, err))
					continue
				}
				if _, err := a.inv.CreateItem(ctx, it.draft(), image); err != nil {
					failures = append(failures, fmt.Errorf("item %q: %w", it.Name, err))
					continue
				}
				added++
			}
			fmt.Fprintf(out, "Items: %d created, %d failed\n", added, len(failures))
			return errors.Join(failures...)
		},
	}
}
