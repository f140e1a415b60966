package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/api"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var flags outlineFlags
	var addr, snapshot string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve families, outlines and exports over HTTP",
		Long: `Serve families, outlines and exports over HTTP.

Routes:
  GET /healthz
  GET /v1/families
  GET /v1/families/{id}/folder
  GET /v1/families/{id}/outline
  GET /v1/families/{id}/export/{format}

Requests carrying an X-Kintree-Viewer header only see the families that
member belongs to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg().Server.Addr
			}
			return c.runServe(cmd.Context(), source{snapshot: snapshot}, &flags, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", `listen address (default from config, ":8080")`)
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "serve families from this JSON/TOML snapshot")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, src source, flags *outlineFlags, addr string) error {
	logger := loggerFromContext(ctx)
	runner, err := c.newRunner(ctx, src, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := api.NewServer(runner, c.options(flags, ""), logger)
	printInfo("Serving on %s", StyleValue.Render(addr))
	if src.snapshot != "" {
		printKeyValue("snapshot", src.snapshot)
	} else {
		printKeyValue("store", c.cfg().Store.Kind)
	}
	printKeyValue("cache", c.cfg().Cache.Kind)
	printNextStep("Try", "curl http://"+displayAddr(addr)+"/v1/families")
	return srv.ListenAndServe(ctx, addr)
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
