package cli

import (
	"fmt"
	"strings"

	"github.com/sceneforge/engine/internal/component"
	"github.com/sceneforge/engine/internal/template"
	"github.com/sceneforge/engine/internal/world"
	"github.com/spf13/cobra"
)

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List entity templates and their components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load()
			if err != nil {
				return err
			}
			w := world.New(nil, log)
			defer w.Close()
			w.RegisterComponents(component.All()...)

			tm := template.NewManager(w, log)
			if cfg.Templates.File != "" {
				if _, err := tm.LoadFile(cfg.Templates.File); err != nil {
					return err
				}
			}
			for _, name := range tm.Names() {
				t, _ := tm.Get(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, strings.Join(t.Components(), ", "))
			}
			return nil
		},
	}
}
