package cli

import (
	"github.com/spf13/cobra"

	"BuddyStudio/internal/ui"
)

func (c *CLI) studioCommand() *cobra.Command {
	var buddy, target, gender, out string

	cmd := &cobra.Command{
		Use:   "studio",
		Short: "Open the drawing game",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if buddy != "" {
				cfg.Studio.Buddy = buddy
			}
			if target != "" {
				cfg.Studio.Target = target
			}
			if gender != "" {
				cfg.Studio.Gender = gender
			}
			if out != "" {
				cfg.Studio.OutputDir = out
			}

			logger := loggerFromContext(cmd.Context())
			svc := newService(cfg, logger)
			logger.Info("opening studio", "buddy", cfg.Studio.Buddy, "target", cfg.Studio.Target)
			ui.RunStudio(cfg, svc, logger)
			svc.Cancel()
			svc.Wait()
			return nil
		},
	}

	cmd.Flags().StringVar(&buddy, "buddy", "", "buddy character, used in file names")
	cmd.Flags().StringVar(&target, "target", "", "what the child is asked to draw")
	cmd.Flags().StringVar(&gender, "gender", "", "grammatical gender of the target (m, f, mp, fp)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "directory for saved artwork")
	return cmd
}
