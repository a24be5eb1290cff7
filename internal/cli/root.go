// Package cli — команды pagexctl (список, просмотр, экспорт и правка
// component patterns через HTTP API).
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pagexpress/internal/client"
	"pagexpress/internal/dashboard"
)

const DefaultAPI = "http://localhost:8080"

// App хранит общее для команд состояние.
type App struct {
	v       *viper.Viper
	out     io.Writer
	confirm dashboard.Confirmer
}

func NewApp(out io.Writer) *App {
	return &App{v: viper.New(), out: out}
}

// NewRootCommand: корневая команда с выводом в stdout.
func NewRootCommand() *cobra.Command {
	return NewApp(os.Stdout).Command()
}

func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "pagexctl",
		Short: "Manage pagexpress component patterns",
		Long: color.CyanString(`pagexctl: console dashboard for pagexpress.

Lists, inspects, exports and edits component patterns through the
pagexpress HTTP API.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.v.GetBool("noColor") {
				color.NoColor = true
			}
		},
	}

	pf := root.PersistentFlags()
	pf.String("api", DefaultAPI, "pagexpress server address")
	pf.Bool("no-color", false, "Disable colored output")
	pf.Bool("yes", false, "Do not ask for confirmation")
	pf.Duration("timeout", client.DefaultTimeout, "Request timeout")
	_ = a.v.BindPFlag("api", pf.Lookup("api"))
	_ = a.v.BindPFlag("noColor", pf.Lookup("no-color"))
	_ = a.v.BindPFlag("yes", pf.Lookup("yes"))
	_ = a.v.BindPFlag("timeout", pf.Lookup("timeout"))
	_ = a.v.BindEnv("api", "PAGEX_API")
	_ = a.v.BindEnv("noColor", "NO_COLOR")

	root.AddCommand(a.listCommand())
	root.AddCommand(a.showCommand())
	root.AddCommand(a.exportCommand())
	root.AddCommand(a.createCommand())
	root.AddCommand(a.updateCommand())
	root.AddCommand(a.deleteCommand())
	root.AddCommand(a.typesCommand())
	root.AddCommand(a.fieldCommand())
	root.AddCommand(a.fieldsetCommand())
	return root
}

// Execute запускает pagexctl и печатает ошибку красным.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

func (a *App) client() (*client.Client, error) {
	return client.New(client.Config{
		BaseURL: a.v.GetString("api"),
		Timeout: a.v.GetDuration("timeout"),
	})
}

func (a *App) confirmer() dashboard.Confirmer {
	if a.v.GetBool("yes") {
		return dashboard.ConfirmFunc(func(string) (bool, error) { return true, nil })
	}
	if a.confirm != nil {
		return a.confirm
	}
	return surveyConfirm{}
}

type surveyConfirm struct{}

func (surveyConfirm) Confirm(message string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{Message: message, Default: false}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
