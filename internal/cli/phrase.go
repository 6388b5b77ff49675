package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"BuddyStudio/internal/feedback"
)

func (c *CLI) phraseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phrase",
		Short: "Print game phrases",
	}
	cmd.AddCommand(c.phraseInstructionCommand())
	cmd.AddCommand(c.phraseEncourageCommand())
	return cmd
}

func (c *CLI) phraseInstructionCommand() *cobra.Command {
	var game, gender string
	var speak bool

	cmd := &cobra.Command{
		Use:   "instruction TARGET",
		Short: "Print an instruction for a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := feedback.ParseGender(gender)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			svc := newService(cfg, loggerFromContext(cmd.Context()))
			text := svc.InstructionContext(cmd.Context(), feedback.GameType(game), args[0], g)
			fmt.Fprintln(cmd.OutOrStdout(), text)
			if speak {
				svc.Unlock()
				svc.Speak(text)
				svc.Wait()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", string(feedback.Shapes), "game type (contar, shapes, sizes, colores, patrones, dibujar, ...)")
	cmd.Flags().StringVar(&gender, "gender", string(feedback.Masculine), "grammatical gender of the target (m, f, mp, fp)")
	cmd.Flags().BoolVar(&speak, "speak", false, "also say it")
	return cmd
}

func (c *CLI) phraseEncourageCommand() *cobra.Command {
	var buddy string
	var speak bool

	cmd := &cobra.Command{
		Use:   "encourage",
		Short: "Print an encouragement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			svc := newService(cfg, loggerFromContext(cmd.Context()))
			text := svc.Encouragement(buddy, "")
			fmt.Fprintln(cmd.OutOrStdout(), text)
			if speak {
				svc.Unlock()
				svc.Speak(text)
				svc.Wait()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&buddy, "buddy", "", "buddy character")
	cmd.Flags().BoolVar(&speak, "speak", false, "also say it")
	return cmd
}
