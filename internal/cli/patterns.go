package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pagexpress/internal/dashboard"
	"pagexpress/internal/editor"
	"pagexpress/internal/export"
	"pagexpress/internal/pattern"
)

func (a *App) listCommand() *cobra.Command {
	var (
		page   int
		limit  int
		search string
		sort   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List component patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			coord := dashboard.NewCoordinator(c)
			if limit > 0 {
				coord.ItemsPerPage = limit
			}
			if sort != "" {
				coord.Sort = sort
			}

			// 1. Первая страница (с фильтром, если задан)
			if search != "" {
				err = coord.SearchFor(ctx, search)
			} else {
				err = coord.Fetch(ctx)
			}
			if err != nil {
				return err
			}
			// 2. Нужная страница; вне диапазона остаёмся на первой
			if page > 1 {
				if err := coord.ChangePage(ctx, page); err != nil {
					return err
				}
				if coord.CurrentPage != page {
					color.New(color.FgYellow).Fprintf(a.out, "Page %d is out of range, showing page %d\n", page, coord.CurrentPage)
				}
			}

			if len(coord.Items) == 0 {
				fmt.Fprintln(a.out, "No component patterns found")
				return nil
			}
			t := newTable("ID", "NAME", "LABEL", "FIELDS", "FIELDSETS", "UPDATED")
			for _, p := range coord.Items {
				t.add(p.ID, p.Name, p.Label,
					strconv.Itoa(len(p.Fields)), strconv.Itoa(len(p.Fieldset)),
					formatTime(p.UpdatedAt))
			}
			t.render(a.out)
			color.New(color.FgHiBlack).Fprintf(a.out, "Page %d of %d\n", coord.CurrentPage, coord.TotalPages)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", dashboard.DefaultItemsPerPage, "Items per page")
	cmd.Flags().StringVar(&search, "search", "", "Filter by name or label")
	cmd.Flags().StringVar(&sort, "sort", dashboard.DefaultSort, "Sort field, '-' prefix for descending")
	return cmd
}

func (a *App) showCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a component pattern as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			var doc any
			if raw {
				doc, err = c.Get(commandContext(cmd), args[0])
			} else {
				doc, err = c.GetNormalized(commandContext(cmd), args[0])
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Stored form with unresolved references")
	return cmd
}

func (a *App) exportCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Download a component pattern as <name>.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			name, err := c.Export(commandContext(cmd), args[0], &buf)
			if err != nil {
				return err
			}
			if name == "" || filepath.Base(name) != name {
				name = export.FileName(args[0])
			}
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			color.New(color.FgGreen).Fprintf(a.out, "Exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "Target directory")
	return cmd
}

func (a *App) createCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a component pattern from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readPattern(file)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			s := dashboard.NewSession(c)
			_ = s.Edit(replaceWith(doc))
			id, err := s.Create(commandContext(cmd))
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.out, "Created %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "componentData JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *App) updateCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a component pattern with the contents of a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readPattern(file)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			// текущая версия нужна для If-Match
			s := dashboard.NewSession(c)
			if err := s.FetchSingle(ctx, args[0]); err != nil {
				return err
			}
			_ = s.Edit(replaceWith(doc))
			if err := s.Save(ctx, args[0]); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.out, "Saved %s (version %d)\n", s.ID, s.Version)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "componentData JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *App) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a component pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			removed, err := dashboard.NewCoordinator(c).Remove(commandContext(cmd), args[0], a.confirmer())
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(a.out, "Cancelled")
				return nil
			}
			color.New(color.FgGreen).Fprintln(a.out, "Component has been removed")
			return nil
		},
	}
}

func (a *App) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Show field types and option definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			s := dashboard.NewSession(c)
			if err := s.LoadFieldsData(commandContext(cmd)); err != nil {
				return err
			}
			t := newTable("FIELD TYPE", "TYPE", "DESCRIPTION")
			for _, ft := range s.FieldTypes() {
				t.add(ft.ID, ft.Type, ft.Description)
			}
			t.render(a.out)
			fmt.Fprintln(a.out)

			t = newTable("DEFINITION", "NAME", "VALUES")
			for _, d := range s.Definitions() {
				t.add(d.ID, d.Name, strconv.Itoa(len(d.Values)))
			}
			t.render(a.out)
			return nil
		},
	}
}

func readPattern(path string) (pattern.ComponentPattern, error) {
	var doc pattern.ComponentPattern
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// replaceWith заменяет содержимое редактора документом из файла.
func replaceWith(doc pattern.ComponentPattern) func(editor.Aggregate) (editor.Aggregate, error) {
	return func(editor.Aggregate) (editor.Aggregate, error) {
		agg := editor.LoadSingle(doc)
		agg.Dirty = true
		return agg, nil
	}
}
