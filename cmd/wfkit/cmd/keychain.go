package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wfkit/internal/keychain"
	"github.com/Aman-CERP/wfkit/internal/output"
)

func newKeychainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keychain",
		Short: "Manage the workflow's Keychain passwords",
		Long: `Read and write generic passwords in the user's login Keychain.

Passwords are stored under the workflow's bundle id as the service name.`,
		Example: `  wfkit keychain set api-token        # reads the password from stdin
  wfkit keychain get api-token
  wfkit keychain delete api-token`,
	}

	cmd.AddCommand(newKeychainGetCmd())
	cmd.AddCommand(newKeychainSetCmd())
	cmd.AddCommand(newKeychainDeleteCmd())

	return cmd
}

func newKeychainGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <account>",
		Short: "Print a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			password, err := wf.Keychain().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), password)
			return err
		},
	}
}

func newKeychainSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <account> [password]",
		Short: "Save a password",
		Long: `Save a password. Without a password argument the first line of stdin
is used, which keeps the password out of the shell history.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			password := ""
			if len(args) == 2 {
				password = args[1]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("no password on stdin")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			kc := wf.Keychain()
			if err := kc.Save(cmd.Context(), args[0], password); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("Saved password for %s (service %s)", args[0], kc.Service())
			return nil
		},
	}
}

func newKeychainDeleteCmd() *cobra.Command {
	var ignoreMissing bool

	cmd := &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			wf, err := openWorkflow(cmd)
			if err != nil {
				return err
			}
			defer wf.Close()

			err = wf.Keychain().Delete(cmd.Context(), args[0])
			if errors.Is(err, keychain.ErrPasswordNotFound) && ignoreMissing {
				out.Warningf("No password for %s", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			out.Successf("Deleted password for %s", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&ignoreMissing, "ignore-missing", false, "Do not fail when there is no such password")

	return cmd
}
