package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/cognicore/orderline/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the order parsing HTTP API",
		Long: `Serve exposes order parsing, menu storage and cache invalidation over HTTP.
Without --db or --postgres-dsn menus are kept in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := c.buildEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			gin.SetMode(gin.ReleaseMode)
			if c.logger != nil {
				c.logger.LogStartup("orderline-server")
			}
			var opts []server.Option
			if origins := c.v.GetStringSlice("cors-origin"); len(origins) > 0 {
				opts = append(opts, server.WithCORS(origins...))
			}
			return server.New(engine, c.log(), opts...).Run(cmd.Context(), c.v.GetString("addr"))
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().StringSlice("cors-origin", nil, "allow browser requests from this origin, repeatable")
	_ = c.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	_ = c.v.BindPFlag("cors-origin", cmd.Flags().Lookup("cors-origin"))
	return cmd
}
