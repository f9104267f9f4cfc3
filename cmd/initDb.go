package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"candidatevet/internal/bootstrap"
	"candidatevet/internal/errs"
)

var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create or upgrade the vetting database schema",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ services) error {
		tables, err := app.InitSchema(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintf(out, "schema ready at %s\n", app.Config.Database.DSN); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		if _, err := fmt.Fprintf(out, "tables: %s\n", strings.Join(tables, ", ")); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initDbCmd)
}
