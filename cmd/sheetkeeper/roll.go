package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/sheetkeeper/internal/application/handlers"
	"github.com/ersonp/sheetkeeper/internal/domain/dice"
)

func newRollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roll NOTATION [NOTATION...]",
		Short: "Roll dice, e.g. 2d6+3 or d20",
		Long: fmt.Sprintf(`Rolls dice written as [COUNT]dFACES[+/-MODIFIER].

COUNT defaults to 1 and must be %d-%d; FACES must be %d-%d.`,
			dice.MinCount, dice.MaxCount, dice.MinFaces, dice.MaxFaces),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Rolling needs no database.
			roller, err := dice.NewSeededRoller()
			if err != nil {
				return fmt.Errorf("creating dice roller: %w", err)
			}

			results, err := handlers.NewDiceHandler(roller).Handle(args...)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Println(renderRoll(r))
			}
			return nil
		},
	}
}
