package main

import (
	"fmt"
	"time"

	"github.com/loomhq/loom/pkg/apikey"
	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/storage"
	"github.com/loomhq/loom/pkg/types"
	"github.com/spf13/cobra"
)

// Local admin commands operating directly on the data directory. They
// are meant for bootstrap and operations, not for live servers holding
// the database open.

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
}

var apikeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		userID, _ := cmd.Flags().GetString("user")
		workspaceID, _ := cmd.Flags().GetString("workspace")
		name, _ := cmd.Flags().GetString("name")

		plaintext, key, err := apikey.NewService(store).Generate(userID, workspaceID, name)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}

		fmt.Printf("API key created: %s\n", key.ID)
		fmt.Printf("  Name: %s\n", key.Name)
		fmt.Printf("  Key:  %s\n", plaintext)
		fmt.Println("Store the key now; it cannot be shown again.")
		return nil
	},
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's API keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		userID, _ := cmd.Flags().GetString("user")
		keys, err := apikey.NewService(store).ListByUser(userID)
		if err != nil {
			return err
		}

		if len(keys) == 0 {
			fmt.Println("No API keys")
			return nil
		}
		for _, key := range keys {
			lastUsed := "never"
			if key.LastUsedAt != nil {
				lastUsed = key.LastUsedAt.Format(time.RFC3339)
			}
			fmt.Printf("%s  %-20s created %s  last used %s\n",
				key.ID, key.Name, key.CreatedAt.Format(time.RFC3339), lastUsed)
		}
		return nil
	},
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke an API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		userID, _ := cmd.Flags().GetString("user")
		keyID, _ := cmd.Flags().GetString("id")

		if err := apikey.NewService(store).Revoke(keyID, userID); err != nil {
			return err
		}
		fmt.Printf("API key revoked: %s\n", keyID)
		return nil
	},
}

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage workspace membership records",
}

var memberAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a user's workspace membership",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		userID, _ := cmd.Flags().GetString("user")
		workspaceID, _ := cmd.Flags().GetString("workspace")
		if userID == "" || workspaceID == "" {
			return fmt.Errorf("--user and --workspace are required")
		}

		err = store.PutMembership(&types.Membership{
			UserID:      userID,
			WorkspaceID: workspaceID,
			AddedAt:     time.Now(),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Membership recorded: %s in %s\n", userID, workspaceID)
		return nil
	},
}

func openStore(cmd *cobra.Command) (storage.Store, error) {
	log.Init(log.Config{Level: log.WarnLevel})
	dataDir, _ := cmd.Flags().GetString("data-dir")
	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func init() {
	for _, c := range []*cobra.Command{apikeyGenerateCmd, apikeyListCmd, apikeyRevokeCmd, memberAddCmd} {
		c.Flags().String("data-dir", "./data", "Data directory")
	}

	apikeyGenerateCmd.Flags().String("user", "", "Owning user id")
	apikeyGenerateCmd.Flags().String("workspace", "", "Bound workspace id")
	apikeyGenerateCmd.Flags().String("name", "", "Key name")
	_ = apikeyGenerateCmd.MarkFlagRequired("user")
	_ = apikeyGenerateCmd.MarkFlagRequired("workspace")
	_ = apikeyGenerateCmd.MarkFlagRequired("name")

	apikeyListCmd.Flags().String("user", "", "Owning user id")
	_ = apikeyListCmd.MarkFlagRequired("user")

	apikeyRevokeCmd.Flags().String("user", "", "Owning user id")
	apikeyRevokeCmd.Flags().String("id", "", "Key id")
	_ = apikeyRevokeCmd.MarkFlagRequired("user")
	_ = apikeyRevokeCmd.MarkFlagRequired("id")

	memberAddCmd.Flags().String("user", "", "User id")
	memberAddCmd.Flags().String("workspace", "", "Workspace id")

	apikeyCmd.AddCommand(apikeyGenerateCmd)
	apikeyCmd.AddCommand(apikeyListCmd)
	apikeyCmd.AddCommand(apikeyRevokeCmd)
	memberCmd.AddCommand(memberAddCmd)
}
