package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/sessions"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List, inspect and delete saved sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: withSessionStore(func(ctx context.Context, out io.Writer, store sessions.Store, _ []string) error {
		return listSessions(ctx, out, store, sessionsLimit)
	}),
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a session's messages and run state",
	Args:  cobra.ExactArgs(1),
	RunE: withSessionStore(func(ctx context.Context, out io.Writer, store sessions.Store, args []string) error {
		return showSession(ctx, out, store, args[0])
	}),
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and everything stored with it",
	Args:  cobra.ExactArgs(1),
	RunE: withSessionStore(func(ctx context.Context, out io.Writer, store sessions.Store, args []string) error {
		return deleteSession(ctx, out, store, args[0])
	}),
}

var sessionsLimit int

func init() {
	sessionsListCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum sessions to list")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

type sessionFunc func(ctx context.Context, out io.Writer, store sessions.Store, args []string) error

func withSessionStore(fn sessionFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore(appConfig)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return fn(cmd.Context(), cmd.OutOrStdout(), store, args)
	}
}

func listSessions(ctx context.Context, out io.Writer, store sessions.Store, limit int) error {
	list, err := store.ListSessions(ctx, "", "", limit)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, sessions.FormatTable(list))
	return nil
}

func showSession(ctx context.Context, out io.Writer, store sessions.Store, id string) error {
	session, err := store.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return &sessions.NotFoundError{ID: id}
	}
	messages, err := store.ListMessages(ctx, id)
	if err != nil {
		return err
	}
	state, err := store.ListState(ctx, id, "")
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Session: %s\nUser:    %s\nCreated: %s\nUpdated: %s\n",
		session.ID, session.UserID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.UpdatedAt.Format("2006-01-02 15:04:05"))

	_, _ = fmt.Fprintf(out, "\nMessages (%d):\n", len(messages))
	for _, m := range messages {
		_, _ = fmt.Fprintf(out, "[%s] %s\n", m.Role, preview(m.Content, 200))
	}

	_, _ = fmt.Fprintf(out, "\nState (%d):\n", len(state))
	for _, e := range state {
		_, _ = fmt.Fprintf(out, "%s  %-20s %d chars\n", e.RunID, e.Key, len(e.Value))
	}
	return nil
}

func deleteSession(ctx context.Context, out io.Writer, store sessions.Store, id string) error {
	if err := store.DeleteSession(ctx, id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Deleted session %s\n", id)
	return nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
