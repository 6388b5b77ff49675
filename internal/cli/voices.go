package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) voicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List installed voices and the one the game would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			svc := newService(cfg, loggerFromContext(cmd.Context()))
			voices, chosen, err := svc.Voices(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(voices) == 0 {
				printWarning(out, "No voices installed")
				return nil
			}
			fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("%d voices", len(voices))))
			for _, v := range voices {
				mark := " "
				name := StyleValue.Render(v.Name)
				if v == chosen {
					mark = StyleSuccess.Render(iconChosen)
					name = StyleHighlight.Render(v.Name)
				}
				fmt.Fprintf(out, "%s %-28s %s\n", mark, name, StyleDim.Render(v.Language))
			}
			if chosen.Name == "" {
				printWarning(out, "No Spanish voice found; the system default will be used")
			} else {
				printInfo(out, "Using %s (%s)", chosen.Name, chosen.Language)
			}
			return nil
		},
	}
}
