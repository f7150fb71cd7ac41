package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/todonotes/internal/model"
	"github.com/idilsaglam/todonotes/internal/records"
	"github.com/idilsaglam/todonotes/internal/tui"
	"github.com/idilsaglam/todonotes/internal/ui"
)

// ValidFormats defines the allowed output formats for ls.
var ValidFormats = []string{"text", "json", "yaml"}

func newAddCommand(opts *RootOptions) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new item (title can be multiple words)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("add: empty title")
			}
			s, closeFn, err := opts.openStore(cmd.Context(), opts.logger(cmd))
			if err != nil {
				return err
			}
			defer closeFn()

			it, err := s.Add(cmd.Context(), title, message, opts.now())
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "added "+it.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "item message")
	return cmd
}

func newListCommand(opts *RootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(format) {
				return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
			}
			s, closeFn, err := opts.openStore(cmd.Context(), opts.logger(cmd))
			if err != nil {
				return err
			}
			defer closeFn()
			return writeItems(cmd.OutOrStdout(), s.Items(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json|yaml)")
	return cmd
}

func newEditCommand(opts *RootOptions) *cobra.Command {
	var title, message string
	cmd := &cobra.Command{
		Use:   "edit <id|index>",
		Short: "Change the title and/or message of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("message") {
				return fmt.Errorf("edit: nothing to change, pass --title and/or --message")
			}
			s, closeFn, err := opts.openStore(cmd.Context(), opts.logger(cmd))
			if err != nil {
				return err
			}
			defer closeFn()

			it, err := resolveItem(s.Items(), args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				it.Title = strings.TrimSpace(title)
			}
			if cmd.Flags().Changed("message") {
				it.Message = message
			}
			if err := s.Update(cmd.Context(), it.ID, it.Title, it.Message, opts.now()); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "updated "+it.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&message, "message", "m", "", "new message")
	return cmd
}

func newRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|index>",
		Aliases: []string{"delete"},
		Short:   "Remove an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := opts.openStore(cmd.Context(), opts.logger(cmd))
			if err != nil {
				return err
			}
			defer closeFn()

			it, err := resolveItem(s.Items(), args[0])
			if err != nil {
				return err
			}
			if err := s.Delete(cmd.Context(), it.ID); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "removed "+it.ID)
			return nil
		},
	}
}

func newUICommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Browse and edit items interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// the alt screen owns the terminal; failures show in the status line
			logger := opts.logger(cmd)
			logger.SetOutput(io.Discard)

			s, closeFn, err := opts.openStore(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeFn()
			return tui.Run(cmd.Context(), s, opts.now)
		},
	}
}

// resolveItem finds an item by exact id, falling back to a 1-based index.
func resolveItem(items []model.Item, arg string) (model.Item, error) {
	for _, it := range items {
		if it.ID == arg {
			return it, nil
		}
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return model.Item{}, fmt.Errorf("%s: %w", arg, records.ErrNotFound)
	}
	if n < 1 || n > len(items) {
		return model.Item{}, fmt.Errorf("index out of range: have %d, got %d", len(items), n)
	}
	return items[n-1], nil
}

func writeItems(w io.Writer, items []model.Item, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(items)
	}

	lines := []string{
		fmt.Sprintf("%s  %s %d", ui.TitleStyle.Render("ToDo"), ui.AccentStyle.Render("Total"), len(items)),
		"",
	}
	lines = append(lines, ui.ItemLines(items)...)
	lines = append(lines, "", ui.MutedStyle.Render("Tip: add with `todo add \"Buy milk\" -m \"2%, 1 gallon\"`"))
	ui.Panel(w, lines)
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
