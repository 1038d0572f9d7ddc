package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmc/internal/model"
)

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and keep the session for later commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdin := cmd.InOrStdin()
			in := bufio.NewReader(stdin)
			out := cmd.OutOrStdout()

			var creds model.Credentials
			if len(args) == 1 {
				creds.Username = args[0]
			} else {
				u, err := prompt(in, out, "Username: ")
				if err != nil {
					return err
				}
				creds.Username = u
			}

			creds.Password = password
			if !cmd.Flags().Changed("password") {
				p, err := promptPassword(in, stdin, out)
				if err != nil {
					return err
				}
				creds.Password = p
			}

			return withEnv(flags, func(e *env) error {
				session, err := e.store.Login(cmd.Context(), creds).Unwrap()
				if err != nil {
					return fmt.Errorf("log in: %w", err)
				}
				fmt.Fprintf(out, "Logged in as %s\n", session.Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted if omitted)")
	return cmd
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				if _, err := e.store.Logout(cmd.Context()).Unwrap(); err != nil {
					return fmt.Errorf("log out: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(flags, func(e *env) error {
				st := e.store.Session(cmd.Context())
				if st.Err != nil {
					return fmt.Errorf("server unreachable: %w", st.Err)
				}
				if !st.LoggedIn() {
					fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), st.Session.Username)
				return nil
			})
		},
	}
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Swapped in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// promptPassword reads the password without echo when stdin is a terminal.
// Piped input falls back to reading a line.
func promptPassword(in *bufio.Reader, stdin io.Reader, out io.Writer) (string, error) {
	f, ok := stdin.(interface{ Fd() uintptr })
	if !ok || !isTerminal(f.Fd()) {
		return prompt(in, out, "Password: ")
	}

	fmt.Fprint(out, "Password: ")
	secret, err := readPassword(f.Fd())
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

// requireSession fails with a hint when there is no session.
func requireSession(cmd *cobra.Command, e *env) error {
	st := e.store.Session(cmd.Context())
	if st.Err != nil {
		return fmt.Errorf("server unreachable: %w", st.Err)
	}
	if !st.LoggedIn() {
		return errNotLoggedIn
	}
	return nil
}
