package cli

import (
	"time"

	"github.com/spf13/cobra"

	"BuddyStudio/internal/tone"
)

// toneGap separates effects played in sequence.
const toneGap = 150 * time.Millisecond

func (c *CLI) toneCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "tone NAME...",
		Short: "Play sound effects",
		Long:  `Play one or more sound effects in order: correct, incorrect, complete, pop, drag, drop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list || len(args) == 0 {
				for _, e := range tone.Effects {
					printKeyValue(out, e.String(), effectLength(e).Round(time.Millisecond).String())
				}
				return nil
			}

			effects := make([]tone.Effect, 0, len(args))
			for _, name := range args {
				e, err := tone.ParseEffect(name)
				if err != nil {
					return err
				}
				effects = append(effects, e)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			svc := newService(cfg, loggerFromContext(cmd.Context()))
			svc.Unlock()
			for _, e := range effects {
				svc.Play(e)
				// Players drain in the background; hold on until this one is done.
				select {
				case <-time.After(effectLength(e) + toneGap):
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				}
				printSuccess(out, "%s", e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "list effects and their lengths")
	return cmd
}

func effectLength(e tone.Effect) time.Duration {
	return time.Duration(tone.PlanFor(e).Duration() * float64(time.Second))
}
