package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/p-blackswan/protodocs/internal/generate"
)

func newGenerateCmd(c *cli) *cobra.Command {
	var (
		out     string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write every page to a static directory tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = c.cfg.OutputDir
			}
			if workers < 1 {
				workers = c.cfg.GenerateWorkers
			}

			a, err := wireApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()

			g := generate.New(a.docs, generate.Config{
				OutputDir: out,
				Root:      c.cfg.ProtocolRoot,
				Workers:   workers,
			}, c.logger)

			res, err := g.Run(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pages to %s in %s\n", res.Pages, out, res.Duration.Round(time.Millisecond))
			return err
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output directory (default OUTPUT_DIR)")
	cmd.Flags().IntVar(&workers, "workers", 0, "pages rendered in parallel (default GENERATE_WORKERS)")
	return cmd
}
