package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/sheetkeeper/internal/domain/entities"
)

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

const shellHelp = `Commands:
  initiative add NAME VALUE [PLAYER]     add a combatant with a fixed value
  initiative roll NAME [MODIFIER] [PLAYER] roll 1d20+MODIFIER and add
  initiative next                        advance to the next turn
  initiative view                        show the order
  initiative remove NAME                 drop a combatant
  initiative clear                       end combat
  roll NOTATION...                       roll dice
  tick SYSTEM CAMPAIGN NAME...           count down effects one turn
  modify SYSTEM CAMPAIGN NAME ATTR DELTA change a numeric attribute
  help                                   show this help
  quit                                   leave the shell
Quote names that contain spaces: initiative add "Capitão Orc" 14`

func newPlayCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start an interactive table session",
		Long:  "Opens a shell that keeps the initiative order in memory for the rest of the session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				sh := &shell{deps: d, session: session, out: cmd.OutOrStdout()}
				return sh.run(ctx, cmd.InOrStdin())
			})
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", DefaultSession, "Session ID for the initiative order")

	return cmd
}

// shell is the interactive play loop. Its initiative order lives only as
// long as the process.
type shell struct {
	deps    *Deps
	session string
	out     io.Writer
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, titleStyle.Render("sheetkeeper - session "+s.session))
	fmt.Fprintln(s.out, helpStyle.Render("Type 'help' for commands."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		err := s.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, badStyle.Render("error: ")+err.Error())
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// exec runs one shell line.
func (s *shell) exec(ctx context.Context, line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "quit", "exit":
		return errQuit
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
		return nil
	case "initiative", "init":
		return s.initiative(args[1:])
	case "roll", "r":
		return s.roll(args[1:])
	case "tick":
		return s.tick(ctx, args[1:])
	case "modify":
		return s.modify(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q (try 'help')", args[0])
	}
}

func (s *shell) initiative(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: initiative add|roll|next|view|remove|clear")
	}

	h := s.deps.Initiative
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 3 || len(args) > 4 {
			return errors.New("usage: initiative add NAME VALUE [PLAYER]")
		}
		value, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid initiative %q: must be an integer", args[2])
		}
		c, err := h.HandleAdd(s.session, args[1], value, optionalArg(args, 3))
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s joins at %d\n", c.Name, c.Initiative)

	case "roll":
		if len(args) < 2 || len(args) > 4 {
			return errors.New("usage: initiative roll NAME [MODIFIER] [PLAYER]")
		}
		modifier := 0
		if m := optionalArg(args, 2); m != "" {
			var err error
			if modifier, err = strconv.Atoi(m); err != nil {
				return fmt.Errorf("invalid modifier %q: must be an integer", m)
			}
		}
		c, result, err := h.HandleRoll(s.session, args[1], modifier, optionalArg(args, 3))
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s rolls %s and joins at %d\n", c.Name, result, c.Initiative)

	case "next":
		turn, err := h.HandleNext(s.session)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, renderTurn(turn))

	case "view":
		order, err := h.HandleView(s.session)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, renderOrder(order))

	case "remove":
		if len(args) != 2 {
			return errors.New("usage: initiative remove NAME")
		}
		if err := h.HandleRemove(s.session, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s leaves combat\n", args[1])

	case "clear":
		if h.HandleClear(s.session) {
			fmt.Fprintln(s.out, "Combat ended.")
		} else {
			fmt.Fprintln(s.out, helpStyle.Render("No combat in progress."))
		}

	default:
		return fmt.Errorf("unknown initiative command %q", args[0])
	}
	return nil
}

func (s *shell) roll(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: roll NOTATION...")
	}
	results, err := s.deps.Dice.Handle(args...)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintln(s.out, renderRoll(r))
	}
	return nil
}

func (s *shell) tick(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: tick SYSTEM CAMPAIGN NAME...")
	}

	identities := make([]entities.Identity, 0, len(args)-2)
	for _, name := range args[2:] {
		identities = append(identities, identityArgs(s.deps.Owner, []string{args[0], args[1], name}))
	}

	results, err := s.deps.Effects.HandleTick(ctx, identities...)
	for _, r := range results {
		fmt.Fprintln(s.out, renderExpired(r.Identity.Name, r.Expired))
	}
	return err
}

func (s *shell) modify(ctx context.Context, args []string) error {
	if len(args) != 5 {
		return errors.New("usage: modify SYSTEM CAMPAIGN NAME ATTR DELTA")
	}
	delta, err := strconv.Atoi(args[4])
	if err != nil {
		return fmt.Errorf("invalid delta %q: must be an integer", args[4])
	}

	adj, err := s.deps.Characters.HandleModify(ctx, identityArgs(s.deps.Owner, args), args[3], delta)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s %s: %d -> %d\n", args[2], displayName(args[3]), adj.Old, adj.New)
	return nil
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

// splitArgs splits a line on whitespace, keeping double-quoted runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t'):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}

	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}
