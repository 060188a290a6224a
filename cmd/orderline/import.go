package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
)

func newImportCmd(c *cli) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store a restaurant menu from a YAML, JSON or HTML file",
		Example: `  orderline import menu.yaml --db menus.db
  orderline import menu.html --key +15550100 --postgres-dsn postgres://localhost/orderline`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.persistent() {
				return fmt.Errorf("%w: import needs --db or --postgres-dsn", internalerr.ErrStoreUnavailable)
			}

			m, err := loadMenuFile(args[0], key)
			if err != nil {
				return fmt.Errorf("load menu: %w", err)
			}
			if m.Key == "" {
				return fmt.Errorf("%w: set --key or key: in %s", internalerr.ErrInvalidInput, args[0])
			}

			engine, cleanup, err := c.buildEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := engine.UpdateMenu(cmd.Context(), m); err != nil {
				return err
			}

			n := len(m.Items())
			c.log().Info("imported menu", "key", m.Key, "version", m.Version, "items", n)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items for %s\n", n, m.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "restaurant key, overrides the file's key")
	return cmd
}
