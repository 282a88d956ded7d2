package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/avatarstudio/internal/gemini"
	"github.com/cristianadrielbraun/avatarstudio/internal/palette"
	"github.com/cristianadrielbraun/avatarstudio/internal/server"
)

func (a *App) newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the configured key can reach",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := gemini.New(cmd.Context(), a.cfg.Gemini, gemini.WithLogger(a.log))
			if err != nil {
				return err
			}
			list, err := client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			var pretty bytes.Buffer
			if json.Indent(&pretty, list.Body, "", "  ") != nil {
				pretty.Reset()
				pretty.Write(list.Body)
			}
			fmt.Fprintln(a.stdout, pretty.String())
			return nil
		},
	}
}

func (a *App) newBackgroundsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backgrounds",
		Short: "List the background options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCSS")
			for _, bg := range palette.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", bg.ID, bg.Name, bg.CSS())
			}
			return tw.Flush()
		},
	}
}

func (a *App) newServeCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the avatar studio web app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Port = port
			}
			return server.Run(cmd.Context(), a.cfg, a.log)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT or 8080)")
	return cmd
}
