package cli

import (
	"github.com/spf13/cobra"

	"github.com/adamwoolhether/fetch/internal/echo"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr            string
		tlsCert, tlsKey string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local echo server to fetch against",
		Long: `serve answers every request with a JSON description of what it received,
and GET /status/{code} with the given status. It stops on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []echo.Option{echo.WithHost(addr), echo.WithLogger(a.logger)}
			if tlsCert != "" || tlsKey != "" {
				opts = append(opts, echo.WithTLS(tlsCert, tlsKey))
			}

			return echo.New(opts...).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", echo.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&tlsCert, "tls-cert", "", "TLS certificate file")
	cmd.Flags().StringVar(&tlsKey, "tls-key", "", "TLS key file")

	return cmd
}
