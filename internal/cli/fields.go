package cli

import (
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pagexpress/internal/dashboard"
	"pagexpress/internal/editor"
)

// fieldAttrs: атрибуты нового поля из флагов.
type fieldAttrs struct {
	name, label, fieldType, definition string
	required                           bool
}

func (f *fieldAttrs) bind(cmd *cobra.Command, prefix string) {
	cmd.Flags().StringVar(&f.name, prefix+"name", "", "Field name (camelCase)")
	cmd.Flags().StringVar(&f.label, prefix+"label", "", "Field label")
	cmd.Flags().StringVar(&f.fieldType, prefix+"type", "", "Field type id (default: the text type)")
	cmd.Flags().StringVar(&f.definition, prefix+"definition", "", "Definition id for options")
	cmd.Flags().BoolVar(&f.required, prefix+"required", false, "Field is required")
}

// values: пары атрибут/значение в порядке применения; пустые пропускаются.
func (f fieldAttrs) values() [][2]any {
	out := [][2]any{{"name", f.name}, {"label", f.label}}
	if f.fieldType != "" {
		out = append(out, [2]any{"fieldTypeId", f.fieldType})
	}
	if f.definition != "" {
		out = append(out, [2]any{"definedOptionsId", f.definition})
	}
	if f.required {
		out = append(out, [2]any{"required", true})
	}
	return out
}

// editPattern: справочники, документ, правка, сохранение.
func (a *App) editPattern(cmd *cobra.Command, id string, edit func(s *dashboard.Session) error) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	s := dashboard.NewSession(c)
	if err := s.LoadFieldsData(ctx); err != nil {
		return err
	}
	if err := s.FetchSingle(ctx, id); err != nil {
		return err
	}
	if err := edit(s); err != nil {
		return err
	}
	if !s.Dirty() {
		return nil
	}
	if err := s.Save(ctx, id); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "Saved %s (version %d)\n", s.ID, s.Version)
	return nil
}

func (a *App) fieldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Edit fields of a component pattern",
	}
	cmd.AddCommand(a.fieldAddCommand(), a.fieldRemoveCommand(), a.fieldMoveCommand())
	return cmd
}

func (a *App) fieldAddCommand() *cobra.Command {
	var (
		attrs    fieldAttrs
		fieldset int
	)
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Append a field (to a fieldset with --fieldset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.editPattern(cmd, args[0], func(s *dashboard.Session) error {
				if fieldset < 0 {
					s.AddField()
					idx := len(s.Pattern.Fields) - 1
					for _, kv := range attrs.values() {
						if err := s.Edit(func(p editor.Aggregate) (editor.Aggregate, error) {
							return p.UpdateField(idx, kv[0].(string), kv[1])
						}); err != nil {
							return err
						}
					}
					return nil
				}
				if err := s.AddFieldsetField(fieldset); err != nil {
					return err
				}
				idx := len(s.Pattern.Fieldset[fieldset].Fields) - 1
				for _, kv := range attrs.values() {
					if err := s.Edit(func(p editor.Aggregate) (editor.Aggregate, error) {
						return p.UpdateFieldsetFieldValue(fieldset, idx, kv[0].(string), kv[1])
					}); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	attrs.bind(cmd, "")
	cmd.Flags().IntVar(&fieldset, "fieldset", -1, "Fieldset index")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

func (a *App) fieldRemoveCommand() *cobra.Command {
	var fieldset int
	cmd := &cobra.Command{
		Use:   "remove <id> <index>",
		Short: "Remove a field by index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			return a.editPattern(cmd, args[0], func(s *dashboard.Session) error {
				return s.Edit(func(p editor.Aggregate) (editor.Aggregate, error) {
					if fieldset < 0 {
						return p.RemoveField(idx)
					}
					return p.RemoveFieldsetField(fieldset, idx)
				})
			})
		},
	}
	cmd.Flags().IntVar(&fieldset, "fieldset", -1, "Fieldset index")
	return cmd
}

func (a *App) fieldMoveCommand() *cobra.Command {
	var fieldset int
	cmd := &cobra.Command{
		Use:   "move <id> <from> <to>",
		Short: "Move a field to another position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return err
			}
			drop := editor.DropResult{RemovedIndex: from, AddedIndex: to}
			return a.editPattern(cmd, args[0], func(s *dashboard.Session) error {
				return s.Edit(func(p editor.Aggregate) (editor.Aggregate, error) {
					if fieldset < 0 {
						return p.ReorderFields(drop)
					}
					return p.ReorderFieldsetFields(fieldset, drop)
				})
			})
		},
	}
	cmd.Flags().IntVar(&fieldset, "fieldset", -1, "Fieldset index")
	return cmd
}

func (a *App) fieldsetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fieldset",
		Short: "Edit fieldsets of a component pattern",
	}
	cmd.AddCommand(a.fieldsetAddCommand(), a.fieldsetRemoveCommand())
	return cmd
}

func (a *App) fieldsetAddCommand() *cobra.Command {
	var (
		name, label string
		field       fieldAttrs
	)
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Append a fieldset with its first field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.editPattern(cmd, args[0], func(s *dashboard.Session) error {
				s.AddFieldset()
				set := len(s.Pattern.Fieldset) - 1
				return s.Edit(func(p editor.Aggregate) (editor.Aggregate, error) {
					var err error
					if p, err = p.UpdateFieldsetField(set, "name", name); err != nil {
						return p, err
					}
					if p, err = p.UpdateFieldsetField(set, "label", label); err != nil {
						return p, err
					}
					for _, kv := range field.values() {
						if p, err = p.UpdateFieldsetFieldValue(set, 0, kv[0].(string), kv[1]); err != nil {
							return p, err
						}
					}
					return p, nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Fieldset name")
	cmd.Flags().StringVar(&label, "label", "", "Fieldset label")
	field.bind(cmd, "field-")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("label")
	_ = cmd.MarkFlagRequired("field-name")
	_ = cmd.MarkFlagRequired("field-label")
	return cmd
}

func (a *App) fieldsetRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id> <index>",
		Short: "Remove a fieldset by index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			return a.editPattern(cmd, args[0], func(s *dashboard.Session) error {
				return s.Edit(func(p editor.Aggregate) (editor.Aggregate, error) {
					return p.RemoveFieldset(idx)
				})
			})
		},
	}
}
