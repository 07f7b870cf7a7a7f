package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
)

func newEffectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "effect",
		Aliases: []string{"status"},
		Short:   "Manage timed status effects",
	}

	cmd.AddCommand(
		newEffectApplyCmd(),
		newEffectListCmd(),
		newEffectTickCmd(),
		newEffectDispelCmd(),
	)

	return cmd
}

func newEffectApplyCmd() *cobra.Command {
	var caster string

	cmd := &cobra.Command{
		Use:   "apply " + identityUsage + " EFFECT TURNS",
		Short: "Apply an effect lasting TURNS turns",
		Long:  "Applies a new effect instance. Applying the same effect again stacks a second instance.",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			duration, err := strconv.Atoi(args[4])
			if err != nil {
				return fmt.Errorf("invalid duration %q: must be an integer", args[4])
			}

			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				if caster == "" {
					caster = d.Owner
				}
				effect, err := d.Effects.HandleApply(ctx, identityArgs(d.Owner, args), args[3], duration, caster)
				if err != nil {
					return fmt.Errorf("applying effect: %w", err)
				}
				fmt.Printf("%s is now %s for %d turn(s)\n", args[2], valueStyle.Render(effect.Name), effect.Duration)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&caster, "caster", "c", "", "Who applied the effect (default: owner)")

	return cmd
}

func newEffectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list " + identityUsage,
		Short: "Show active effects",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				effects, err := d.Effects.HandleList(ctx, identityArgs(d.Owner, args))
				if err != nil {
					return fmt.Errorf("listing effects: %w", err)
				}
				fmt.Println(renderEffects(args[2], effects))
				return nil
			})
		},
	}
}

func newEffectTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick SYSTEM CAMPAIGN NAME [NAME...]",
		Short: "Advance one turn for one or more characters",
		Long:  "Counts down every effect on each named character by one turn and reports what expired.",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				identities := make([]entities.Identity, 0, len(args)-2)
				for _, name := range args[2:] {
					identities = append(identities, identityArgs(d.Owner, []string{args[0], args[1], name}))
				}

				results, err := d.Effects.HandleTick(ctx, identities...)
				for _, r := range results {
					fmt.Println(renderExpired(r.Identity.Name, r.Expired))
				}
				if err != nil {
					return fmt.Errorf("advancing effects: %w", err)
				}
				return nil
			})
		},
	}
}

func newEffectDispelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispel " + identityUsage + " EFFECT",
		Short: "Remove every stack of an effect",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				removed, err := d.Effects.HandleDispel(ctx, identityArgs(d.Owner, args), args[3])
				if err != nil {
					return fmt.Errorf("dispelling effect: %w", err)
				}
				if removed == 0 {
					fmt.Println(helpStyle.Render(fmt.Sprintf("%s is not affected by %s.", args[2], args[3])))
					return nil
				}
				fmt.Printf("Removed %d instance(s) of %s from %s\n", removed, args[3], args[2])
				return nil
			})
		},
	}
}
