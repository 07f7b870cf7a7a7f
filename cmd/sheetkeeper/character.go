package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/sheetkeeper/internal/application/handlers"
	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/infrastructure/config"
)

const identityUsage = "SYSTEM CAMPAIGN NAME"

// identityArgs builds an identity from the first three positional args.
func identityArgs(owner string, args []string) entities.Identity {
	return entities.Identity{
		OwnerID:  owner,
		System:   args[0],
		Campaign: args[1],
		Name:     args[2],
	}
}

func newCharacterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "character",
		Aliases: []string{"char", "sheet"},
		Short:   "Manage character sheets",
	}

	cmd.AddCommand(
		newCharacterCreateCmd(),
		newCharacterListCmd(),
		newCharacterViewCmd(),
		newCharacterEditCmd(),
		newCharacterModifyCmd(),
		newCharacterDeleteCmd(),
		newCharacterHistoryCmd(),
	)

	return cmd
}

func newCharacterCreateCmd() *cobra.Command {
	var prompt bool

	cmd := &cobra.Command{
		Use:   "create " + identityUsage + " [ATTRIBUTE=VALUE...]",
		Short: "Create a character sheet",
		Long: `Creates a character sheet in a configured system.

Attributes are given as ATTRIBUTE=VALUE pairs. With --prompt, every template
attribute of the system that was not given is asked for on stdin; blank
answers leave the attribute off the sheet.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCharacterCreate(cmd, args, prompt)
		},
	}

	cmd.Flags().BoolVarP(&prompt, "prompt", "p", false, "Ask for missing template attributes")

	return cmd
}

func runCharacterCreate(cmd *cobra.Command, args []string, prompt bool) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		template, err := d.Systems.Get(args[0])
		if err != nil {
			return err
		}

		attrs, err := parseAttributes(args[3:])
		if err != nil {
			return err
		}

		if prompt {
			attrs, err = promptAttributes(cmd.InOrStdin(), cmd.OutOrStdout(), template, attrs)
			if err != nil {
				return err
			}
		}

		character, err := d.Characters.HandleCreate(ctx, identityArgs(d.Owner, args), attrs)
		if errors.Is(err, entities.ErrDuplicateCharacter) {
			return fmt.Errorf("a sheet named %q already exists in %s / %s", args[2], args[0], args[1])
		}
		if err != nil {
			return fmt.Errorf("creating character: %w", err)
		}

		fmt.Println(goodStyle.Render(fmt.Sprintf("Created sheet for %s", character.Name)))
		if missing := missingAttributes(template, attrs); len(missing) > 0 {
			fmt.Println(helpStyle.Render("Not set: " + strings.Join(missing, ", ")))
		}
		return nil
	})
}

// parseAttributes reads ATTRIBUTE=VALUE pairs.
func parseAttributes(pairs []string) ([]entities.Attribute, error) {
	attrs := make([]entities.Attribute, 0, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid attribute %q (expected ATTRIBUTE=VALUE)", pair)
		}
		attrs = append(attrs, entities.Attribute{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return attrs, nil
}

// promptAttributes asks for each template attribute not already in attrs.
func promptAttributes(in io.Reader, out io.Writer, template *config.SystemEntry, attrs []entities.Attribute) ([]entities.Attribute, error) {
	reader := bufio.NewReader(in)
	for _, name := range missingAttributes(template, attrs) {
		fmt.Fprintf(out, "%s: ", name)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		if value := strings.TrimSpace(line); value != "" {
			attrs = append(attrs, entities.Attribute{Name: name, Value: value})
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}
	return attrs, nil
}

// missingAttributes returns the template attributes absent from attrs, in template order.
func missingAttributes(template *config.SystemEntry, attrs []entities.Attribute) []string {
	have := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		have[entities.NormalizeName(a.Name)] = true
	}

	var missing []string
	for _, name := range template.Attributes {
		if !have[entities.NormalizeName(name)] {
			missing = append(missing, name)
		}
	}
	return missing
}

func newCharacterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list SYSTEM",
		Short: "List your sheets in a system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				characters, err := d.Characters.HandleList(ctx, d.Owner, args[0])
				if err != nil {
					return fmt.Errorf("listing characters: %w", err)
				}
				fmt.Println(renderCharacters(args[0], characters))
				return nil
			})
		},
	}
}

func newCharacterViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view " + identityUsage,
		Short: "Show a character sheet",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				sheet, err := d.Characters.HandleView(ctx, identityArgs(d.Owner, args))
				if err != nil {
					return fmt.Errorf("viewing character: %w", err)
				}
				fmt.Println(renderSheet(sheet))
				return nil
			})
		},
	}
}

func newCharacterEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit " + identityUsage + " ATTRIBUTE VALUE",
		Short: "Replace an attribute value",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				if err := d.Characters.HandleEdit(ctx, identityArgs(d.Owner, args), args[3], args[4]); err != nil {
					return fmt.Errorf("editing character: %w", err)
				}
				fmt.Printf("%s of %s set to %s\n", displayName(args[3]), args[2], valueStyle.Render(args[4]))
				return nil
			})
		},
	}
}

func newCharacterModifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modify " + identityUsage + " ATTRIBUTE DELTA",
		Short: "Add a signed amount to a numeric attribute",
		Long:  "Adds DELTA to a numeric attribute, e.g. 'modify tormenta20 camp1 Aria PV -15'.",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[4])
			if err != nil {
				return fmt.Errorf("invalid delta %q: must be an integer", args[4])
			}

			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				adj, err := d.Characters.HandleModify(ctx, identityArgs(d.Owner, args), args[3], delta)
				if err != nil {
					return fmt.Errorf("modifying character: %w", err)
				}
				fmt.Printf("%s %s: %d -> %s\n", args[2], displayName(args[3]), adj.Old, valueStyle.Render(strconv.Itoa(adj.New)))
				return nil
			})
		},
	}

	// Negative deltas follow the positional args and must not parse as flags.
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func newCharacterDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete " + identityUsage,
		Short: "Delete a sheet with its inventory, effects and history",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				if !force && !confirmAction(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete the sheet of %s?", args[2])) {
					fmt.Println("Cancelled.")
					return nil
				}
				if err := d.Characters.HandleDelete(ctx, identityArgs(d.Owner, args)); err != nil {
					return fmt.Errorf("deleting character: %w", err)
				}
				fmt.Printf("Deleted sheet: %s\n", args[2])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func newCharacterHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history " + identityUsage,
		Short: "Show recent changes to a sheet",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				entries, err := d.Characters.HandleHistory(ctx, identityArgs(d.Owner, args), limit)
				if err != nil {
					return fmt.Errorf("reading history: %w", err)
				}
				fmt.Println(renderHistory(args[2], entries))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", handlers.DefaultHistoryLimit, "Maximum number of entries to show")

	return cmd
}

// confirmAction asks a yes/no question; anything but y or yes is no.
func confirmAction(in io.Reader, out io.Writer, prompt string) bool {
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, _ := reader.ReadString('\n') // Error ignored: EOF/error treated as "no"
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
