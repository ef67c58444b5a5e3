package main

import (
	"fmt"

	"github.com/njchilds90/termwise"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [equation...]",
	Short: "Create and store a session",
	Long: `Generates a system with --vars unknowns, or starts a custom game from the
given equations, e.g. termwise new "2x + y = 4" "x - y = -1". Prints the
session id for play --session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		var sess *termwise.Session
		if len(args) > 0 {
			sess, err = termwise.NewCustom(newEngine(), args)
		} else {
			sess, err = termwise.NewGame(newRand(cfg.Game.Seed), cfg.Game.Variables)
		}
		if err != nil {
			return err
		}
		if err := store.Save(cmd.Context(), sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), sess.ID)
		renderSession(cmd.OutOrStdout(), sess.View())
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Print the equations of a stored session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		sess, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if latex, _ := cmd.Flags().GetBool("latex"); latex {
			for _, eq := range sess.Equations {
				fmt.Fprintf(cmd.OutOrStdout(), "(%d) %s\n", eq.ID, termwise.RenderTagged(eq))
			}
			return nil
		}
		renderSession(cmd.OutOrStdout(), sess.View())
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored session ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		ids, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <session>...",
	Short: "Delete stored sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", id, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd, showCmd, sessionsCmd, rmCmd)

	newCmd.Flags().Int("vars", 2, "Number of unknowns (1-4)")
	newCmd.Flags().Uint64("seed", 0, "Generator seed (0 picks one at random)")
	showCmd.Flags().Bool("latex", false, "Print tagged LaTeX instead of a table")
}
