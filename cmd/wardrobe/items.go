package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
)

// itemFlags are shared by add and edit.
type itemFlags struct {
	name     string
	itemType string
	color    string
	style    string
	location string
	category string
	image    string
	imageURL string
	tags     []string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.itemType, "type", "", "garment type, e.g. Shirt")
	cmd.Flags().StringVar(&f.color, "color", "", "color")
	cmd.Flags().StringVar(&f.style, "style", "", "style")
	cmd.Flags().StringVarP(&f.location, "location", "l", "", "section the item is stored in")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "workwear, partywear or casual")
	cmd.Flags().StringVar(&f.image, "image", "", "path to an image file to upload")
	cmd.Flags().StringVar(&f.imageURL, "image-url", "", "URL of an already hosted image")
	cmd.Flags().StringSliceVarP(&f.tags, "tag", "t", nil, "tag (repeatable)")
}

// readImage loads an image file for upload.
func readImage(path string) (*images.File, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &images.File{Name: filepath.Base(path), Data: data}, nil
}

func printItem(cmd *cobra.Command, verb string, it domain.Item) {
	fav := ""
	if it.IsFavorite() {
		fav = " ★"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %q (%s) in %s [%s]%s\n", verb, it.Name, it.ID, it.Location, it.Category, fav)
}

func newItemsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage wardrobe items",
		Long: `Add, edit and remove items, and mark favorites.

Examples:
  wardrobe items add "Blue Tee" -l "Drawer 1" -c casual --image tee.jpg
  wardrobe items edit itm_abc123 -l Closet
  wardrobe items fav itm_abc123`,
	}

	cmd.AddCommand(
		newItemAddCmd(a),
		newItemEditCmd(a),
		&cobra.Command{
			Use:     "rm <item-id>",
			Aliases: []string{"delete"},
			Short:   "Delete an item",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.inv.DeleteItem(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %s\n", args[0])
				return nil
			},
		},
		newFavoriteCmd(a, "fav", "Mark an item as a favorite", true),
		newFavoriteCmd(a, "unfav", "Remove an item from favorites", false),
		&cobra.Command{
			Use:   "toggle <item-id>",
			Short: "Flip an item's favorite mark",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				it, err := a.inv.ToggleFavorite(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printItem(cmd, "Updated", it)
				return nil
			},
		},
	)
	return cmd
}

func newItemAddCmd(a *app) *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := readImage(f.image)
			if err != nil {
				return err
			}
			it, err := a.inv.CreateItem(cmd.Context(), domain.ItemDraft{
				Name:     args[0],
				Type:     f.itemType,
				Color:    f.color,
				Style:    f.style,
				Location: f.location,
				Category: domain.Category(f.category),
				ImageURL: f.imageURL,
				Tags:     f.tags,
			}, image)
			if err != nil {
				return err
			}
			printItem(cmd, "Added", it)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newItemEditCmd(a *app) *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Change an item; only the given flags are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.ItemPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &f.name
			}
			if flags.Changed("type") {
				patch.Type = &f.itemType
			}
			if flags.Changed("color") {
				patch.Color = &f.color
			}
			if flags.Changed("style") {
				patch.Style = &f.style
			}
			if flags.Changed("location") {
				patch.Location = &f.location
			}
			if flags.Changed("category") {
				c := domain.Category(f.category)
				patch.Category = &c
			}
			if flags.Changed("image-url") {
				patch.ImageURL = &f.imageURL
			}
			if flags.Changed("tag") {
				patch.Tags = &f.tags
			}

			image, err := readImage(f.image)
			if err != nil {
				return err
			}
			it, err := a.inv.UpdateItem(cmd.Context(), args[0], patch, image)
			if err != nil {
				return err
			}
			printItem(cmd, "Updated", it)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.name, "name", "", "new name")
	return cmd
}

func newFavoriteCmd(a *app, use, short string, favorite bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <item-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.inv.SetFavorite(cmd.Context(), args[0], favorite)
			if err != nil {
				return err
			}
			printItem(cmd, "Updated", it)
			return nil
		},
	}
}
