package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/infrastructure/config"
)

func newSystemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "systems",
		Short: "Manage rule-system sheet templates",
		RunE:  runSystemsList,
	}

	cmd.AddCommand(
		newSystemsListCmd(),
		newSystemsAddCmd(),
		newSystemsRemoveCmd(),
	)

	return cmd
}

func newSystemsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all systems",
		RunE:  runSystemsList,
	}
}

func runSystemsList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	systems, err := config.LoadSystems(cwd)
	if err != nil {
		return fmt.Errorf("loading systems: %w", err)
	}

	if len(systems.Systems) == 0 {
		fmt.Println("No systems configured.")
		fmt.Println("Use 'sheetkeeper systems add NAME -a ATTR,ATTR' to add one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tATTRIBUTES\tDESCRIPTION")
	for _, name := range systems.Names() {
		entry := systems.Systems[name]
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, strings.Join(entry.Attributes, ", "), entry.Description)
	}
	return w.Flush()
}

func newSystemsAddCmd() *cobra.Command {
	var (
		attributes  []string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add or replace a system template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystemsAdd(args[0], attributes, description)
		},
	}

	cmd.Flags().StringSliceVarP(&attributes, "attributes", "a", nil, "Comma-separated attribute names, in sheet order")
	cmd.Flags().StringVarP(&description, "description", "d", "", "System description")
	_ = cmd.MarkFlagRequired("attributes")

	return cmd
}

func runSystemsAdd(name string, attributes []string, description string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	attrs := cleanAttributeNames(attributes)
	if len(attrs) == 0 {
		return fmt.Errorf("system %q needs at least one attribute", name)
	}

	systems, err := config.LoadSystems(cwd)
	if err != nil {
		return fmt.Errorf("loading systems: %w", err)
	}

	replaced := systems.Exists(name)
	systems.Add(name, config.SystemEntry{Attributes: attrs, Description: description})

	if err := systems.Save(cwd); err != nil {
		return fmt.Errorf("saving systems: %w", err)
	}

	if replaced {
		fmt.Printf("Updated system %q\n", name)
	} else {
		fmt.Printf("Added system %q\n", name)
	}
	return nil
}

func newSystemsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a system template",
		Long:  "Removes the template only. Existing sheets in the system are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystemsRemove(args[0])
		},
	}
}

func runSystemsRemove(name string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	systems, err := config.LoadSystems(cwd)
	if err != nil {
		return fmt.Errorf("loading systems: %w", err)
	}

	if !systems.Exists(name) {
		return fmt.Errorf("system %q not found", name)
	}
	systems.Remove(name)

	if err := systems.Save(cwd); err != nil {
		return fmt.Errorf("saving systems: %w", err)
	}

	fmt.Printf("Removed system %q\n", name)
	return nil
}

// cleanAttributeNames trims names and drops blanks and case-insensitive repeats.
func cleanAttributeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := entities.NormalizeName(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, name)
	}
	return cleaned
}
