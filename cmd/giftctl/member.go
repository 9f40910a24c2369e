package main

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/giftflow/giftflow-api/internal/app/admin"
	"github.com/giftflow/giftflow-api/internal/domain"
	platformclock "github.com/giftflow/giftflow-api/internal/platform/clock"
	"github.com/giftflow/giftflow-api/internal/platform/config"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

func newMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage members in the configured store",
	}
	cmd.AddCommand(newMemberAddCmd())
	return cmd
}

func newMemberAddCmd() *cobra.Command {
	var (
		username    string
		displayName string
		email       string
		isAdmin     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a member, prompting for their password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			store, cleanup, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			// The CLI acts with operator privileges.
			svc := admin.NewService(ledgerstore.NewHandle(store), platformclock.NewSystemClock())
			m, err := svc.CreateMember(cmd.Context(), domain.Identity{Admin: true}, admin.CreateMemberInput{
				Username:    username,
				DisplayName: displayName,
				Email:       email,
				Password:    password,
				Admin:       isAdmin,
			})
			if err != nil {
				return err
			}
			cmd.Printf("created member %d (%s)\n", m.ID, m.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login name, unique across members")
	cmd.Flags().StringVar(&displayName, "display-name", "", "name shown to other members")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "grant admin privileges")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("display-name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimSpace(string(raw))
	if pw == "" {
		return "", fmt.Errorf("password must be non-empty")
	}
	return pw, nil
}
