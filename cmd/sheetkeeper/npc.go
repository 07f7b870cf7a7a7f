package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/sheetkeeper/internal/domain/services"
)

func newNPCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "npc",
		Short: "Manage non-player characters",
	}

	cmd.AddCommand(
		newNPCSaveCmd(),
		newNPCViewCmd(),
		newNPCListCmd(),
		newNPCDeleteCmd(),
		newNPCGenerateCmd(),
	)

	return cmd
}

func newNPCSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save NAME [STAT=VALUE...]",
		Short: "Save an NPC, replacing any NPC with the same name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				npc, err := d.NPCs.HandleSave(ctx, d.Owner, args[0], args[1:])
				if err != nil {
					return fmt.Errorf("saving npc: %w", err)
				}
				fmt.Println(renderNPC(npc))
				return nil
			})
		},
	}
}

func newNPCViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view NAME",
		Short: "Show an NPC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				npc, err := d.NPCs.HandleView(ctx, d.Owner, args[0])
				if err != nil {
					return fmt.Errorf("viewing npc: %w", err)
				}
				fmt.Println(renderNPC(npc))
				return nil
			})
		},
	}
}

func newNPCListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your NPCs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				npcs, err := d.NPCs.HandleList(ctx, d.Owner)
				if err != nil {
					return fmt.Errorf("listing npcs: %w", err)
				}
				fmt.Println(renderNPCs(npcs))
				return nil
			})
		},
	}
}

func newNPCDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an NPC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				if err := d.NPCs.HandleDelete(ctx, d.Owner, args[0]); err != nil {
					return fmt.Errorf("deleting npc: %w", err)
				}
				fmt.Printf("Deleted NPC: %s\n", args[0])
				return nil
			})
		},
	}
}

func newNPCGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate NAME [DESCRIPTION...]",
		Short: "Generate and save an NPC stat block with OpenAI",
		Long:  "Asks the configured model for a stat block. Requires OPENAI_API_KEY or llm.api_key in config.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				fmt.Println(helpStyle.Render("Generating " + args[0] + "..."))

				npc, err := d.NPCs.HandleGenerate(ctx, d.Owner, args[0], strings.Join(args[1:], " "))
				if errors.Is(err, services.ErrGeneratorUnavailable) {
					return err
				}
				if err != nil {
					return fmt.Errorf("generating npc: %w", err)
				}
				fmt.Println(renderNPC(npc))
				return nil
			})
		},
	}
}
