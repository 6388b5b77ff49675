package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"BuddyStudio/internal/feedback"
)

func (c *CLI) sayCommand() *cobra.Command {
	var pitch, rate float64

	cmd := &cobra.Command{
		Use:   "say TEXT...",
		Short: "Speak text with the game voice",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			svc := newService(cfg, loggerFromContext(cmd.Context()))
			svc.Unlock()

			var opts []feedback.SpeakOption
			if pitch > 0 {
				opts = append(opts, feedback.WithPitch(pitch))
			}
			if rate > 0 {
				opts = append(opts, feedback.WithRate(rate))
			}
			svc.Speak(strings.Join(args, " "), opts...)

			// Cut the voice off on Ctrl-C.
			done := make(chan struct{})
			go func() {
				svc.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-cmd.Context().Done():
				svc.Cancel()
				<-done
				return cmd.Context().Err()
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&pitch, "pitch", 0, "relative pitch (default from config)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "relative rate (default from config)")
	return cmd
}
