package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/njchilds90/termwise"
	"github.com/njchilds90/termwise/pkg/ports"
	"github.com/spf13/cobra"
)

var errQuit = errors.New("quit")

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a session in an interactive prompt",
	Long: `Generates a new session, or resumes one with --session, and opens a
prompt. Type help for the command list. The session is saved after every
successful command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		sess, err := loadOrCreate(ctx, cmd, store)
		if err != nil {
			return err
		}
		p := &player{sess: sess, eng: newEngine(), store: store, out: cmd.OutOrStdout()}
		return p.run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Int("vars", 2, "Number of unknowns in a generated game (1-4)")
	playCmd.Flags().Uint64("seed", 0, "Generator seed (0 picks one at random)")
	playCmd.Flags().String("session", "", "Resume a stored session")
}

func loadOrCreate(ctx context.Context, cmd *cobra.Command, store ports.SessionStore) (*termwise.Session, error) {
	if id, _ := cmd.Flags().GetString("session"); id != "" {
		sess, err := store.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", id, err)
		}
		return sess, nil
	}
	sess, err := termwise.NewGame(newRand(cfg.Game.Seed), cfg.Game.Variables)
	if err != nil {
		return nil, err
	}
	if err := store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// player runs REPL commands against one session.
type player struct {
	sess  *termwise.Session
	eng   *termwise.Engine
	store ports.SessionStore
	out   io.Writer
}

func (p *player) run(ctx context.Context) error {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".termwise_history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "termwise> ",
		HistoryFile:     historyFile,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(p.out, "termwise session %s\n", p.sess.ID)
	_, _ = fmt.Fprintln(p.out, "Type help for commands, quit to exit")
	_, _ = fmt.Fprintln(p.out)
	renderSession(p.out, p.sess.View())

	return p.loop(ctx, rl.Readline)
}

// loop executes lines from readLine until quit, end of input or a read
// failure. Command errors are printed and the loop goes on.
func (p *player) loop(ctx context.Context, readLine func() (string, error)) error {
	for {
		line, err := readLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		err = p.exec(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			_, _ = fmt.Fprintln(p.out, errorStyle.Render("Error: "+err.Error()))
		}
	}
}

func completer() *readline.PrefixCompleter {
	names := []string{"list", "add", "sub", "mul", "div", "flip", "combine+", "combine-",
		"subst", "dist", "move", "terms", "new", "del", "save", "help", "quit"}
	items := make([]readline.PrefixCompleterInterface, len(names))
	for i, name := range names {
		items[i] = readline.PcItem(name)
	}
	return readline.NewPrefixCompleter(items...)
}

// exec runs one command line. Equation commands are translated to the
// session tool calls; a failed call leaves the session as it was.
func (p *player) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(strings.TrimPrefix(fields[0], "."))
	args := fields[1:]

	switch name {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		printHelp(p.out)
		return nil
	case "save":
		if err := p.store.Save(ctx, p.sess); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(p.out, hintStyle.Render("saved "+p.sess.ID))
		return nil
	}

	req, err := parseCommand(name, args, line)
	if err != nil {
		return err
	}
	resp := p.sess.HandleToolCall(p.eng, req)
	if resp.Error != "" {
		return errors.New(resp.Error)
	}

	switch v := resp.Result.(type) {
	case termwise.SessionView:
		renderSession(p.out, v)
	case termwise.EquationView:
		renderEquation(p.out, v)
		if p.sess.Won() {
			_, _ = fmt.Fprintln(p.out, wonStyle.Render("All variables found!"))
		}
	case []termwise.TermView:
		renderTerms(p.out, v)
	default:
		_, _ = fmt.Fprintln(p.out, resp.String)
	}

	if spec, ok := termwise.LookupTool(req.Tool); ok && spec.Mutates {
		if err := p.store.Save(ctx, p.sess); err != nil {
			slog.Warn("Auto-save failed", "session", p.sess.ID, "error", err)
			return fmt.Errorf("auto-save failed: %w", err)
		}
	}
	return nil
}

func parseCommand(name string, args []string, line string) (termwise.ToolRequest, error) {
	req := func(tool string, params map[string]any) (termwise.ToolRequest, error) {
		return termwise.ToolRequest{Tool: tool, Params: params}, nil
	}
	usage := func(u string) (termwise.ToolRequest, error) {
		return termwise.ToolRequest{}, fmt.Errorf("usage: %s", u)
	}
	ints := func(n int) ([]int, error) {
		if len(args) < n {
			return nil, fmt.Errorf("expected %d equation numbers", n)
		}
		out := make([]int, n)
		for i := range n {
			v, err := strconv.Atoi(args[i])
			if err != nil {
				return nil, fmt.Errorf("not a number: %q", args[i])
			}
			out[i] = v
		}
		return out, nil
	}

	switch name {
	case "list", "ls":
		return req("list_equations", nil)

	case "add", "sub", "mul", "div":
		if len(args) < 2 {
			return usage(name + " <eq> <term>")
		}
		n, err := ints(1)
		if err != nil {
			return termwise.ToolRequest{}, err
		}
		return req("apply_term", map[string]any{"eq": n[0], "op": name, "term": strings.Join(args[1:], " ")})

	case "flip", "terms", "del":
		n, err := ints(1)
		if err != nil {
			return usage(name + " <eq>")
		}
		tool := map[string]string{"flip": "flip", "terms": "list_terms", "del": "delete_equation"}[name]
		return req(tool, map[string]any{"eq": n[0]})

	case "combine+", "combine-":
		n, err := ints(2)
		if err != nil {
			return usage(name + " <a> <b>")
		}
		op := "add"
		if name == "combine-" {
			op = "sub"
		}
		return req("combine", map[string]any{"a": n[0], "b": n[1], "op": op})

	case "subst":
		n, err := ints(2)
		if err != nil {
			return usage("subst <solved> <target>")
		}
		return req("substitute", map[string]any{"source": n[0], "target": n[1]})

	case "dist":
		n, err := ints(2)
		if err != nil {
			return usage("dist <eq> <tag>")
		}
		return req("distribute", map[string]any{"eq": n[0], "tag": n[1]})

	case "move":
		if len(args) < 3 {
			return usage("move <eq> <side:idx> <side:idx> [merge]")
		}
		n, err := ints(1)
		if err != nil {
			return termwise.ToolRequest{}, err
		}
		fromSide, fromIdx, err := parseSlot(args[1])
		if err != nil {
			return termwise.ToolRequest{}, err
		}
		toSide, toIdx, err := parseSlot(args[2])
		if err != nil {
			return termwise.ToolRequest{}, err
		}
		params := map[string]any{
			"eq":        n[0],
			"from_side": fromSide, "from_index": fromIdx,
			"to_side": toSide, "to_index": toIdx,
		}
		if len(args) > 3 {
			params["action"] = args[3]
		}
		return req("move_term", params)

	case "new":
		_, text, _ := strings.Cut(strings.TrimSpace(line), " ")
		if text = strings.TrimSpace(text); text == "" {
			return usage("new <lhs = rhs>")
		}
		return req("add_equation", map[string]any{"equation": text})
	}
	return termwise.ToolRequest{}, fmt.Errorf("unknown command %q, type help", name)
}

// parseSlot reads "lhs:2" into a side name and index.
func parseSlot(s string) (string, int, error) {
	side, idx, ok := strings.Cut(s, ":")
	if !ok {
		return "", 0, fmt.Errorf("expected side:index, got %q", s)
	}
	n, err := strconv.Atoi(idx)
	if err != nil {
		return "", 0, fmt.Errorf("bad term index in %q", s)
	}
	return side, n, nil
}

func printHelp(w io.Writer) {
	_, _ = fmt.Fprint(w, `Commands:
  list                               show equations, distribute tags and found variables
  add|sub|mul|div <eq> <term>        apply a term to both sides (e.g. sub 1 3x)
  flip <eq>                          swap sides
  combine+|combine- <a> <b>          add or subtract two equations into a new one
  subst <solved> <target>            substitute an isolated variable into another equation
  dist <eq> <tag>                    distribute at a tag shown by list
  move <eq> <side:idx> <side:idx> [merge]
                                     drag a term, e.g. move 1 lhs:2 rhs:1
  terms <eq>                         number the terms of an equation
  new <lhs = rhs>                    add an equation
  del <eq>                           delete an equation
  save                               save the session
  help                               show this help
  quit                               exit
`)
}
