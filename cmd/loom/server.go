package main

import (
	"fmt"

	"github.com/loomhq/loom/pkg/api"
	"github.com/loomhq/loom/pkg/apikey"
	"github.com/loomhq/loom/pkg/auth"
	"github.com/loomhq/loom/pkg/config"
	"github.com/loomhq/loom/pkg/dispatcher"
	"github.com/loomhq/loom/pkg/events"
	"github.com/loomhq/loom/pkg/gateway"
	"github.com/loomhq/loom/pkg/handlers"
	"github.com/loomhq/loom/pkg/hub"
	"github.com/loomhq/loom/pkg/kv"
	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/permission"
	"github.com/loomhq/loom/pkg/schema"
	"github.com/loomhq/loom/pkg/session"
	"github.com/loomhq/loom/pkg/storage"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the bridge server",
	Long: `Run the Loom bridge server: the JSON-RPC endpoint, the realtime
websocket gateway, public manifests and the credential service.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().String("config", "", "YAML config file")
	serverCmd.Flags().String("listen-addr", "", "HTTP listen address (overrides config)")
	serverCmd.Flags().String("data-dir", "", "Data directory (overrides config)")
	serverCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	serverCmd.Flags().Bool("log-json", false, "Log JSON instead of console output")
}

func runServer(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("listen-addr"); v != "" {
		cfg.ListenAddr = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetBool("log-json"); v {
		cfg.LogJSON = true
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	// Credential layer and the dual auth chain: session tokens first,
	// API keys second.
	keys := apikey.NewService(store)
	directory := auth.NewStoreDirectory(store)
	chain := auth.NewChain(
		auth.NewSessionStrategy(auth.NewHMACVerifier(cfg.SessionSecret)),
		auth.NewAPIKeyStrategy(keys, directory),
	)

	// Realtime side: hub, broadcaster, websocket gateway.
	h := hub.New()
	broadcaster := events.NewBroadcaster(h)
	gw := gateway.New(chain, h, broadcaster)

	// RPC side: permission gate, dispatcher, built-in handlers.
	checker := permission.NewMemberChecker(directory, cfg.AdminUsers)
	gate := permission.NewGate(checker)
	disp := dispatcher.New(gate)

	kvStore := kv.NewMemoryStore()
	defer kvStore.Close()
	contexts := session.NewContextStore(kvStore)

	disp.Register("apikey", handlers.NewAPIKeyHandlers(keys).Table())
	disp.Register("context", handlers.NewContextHandlers(contexts).Table())

	server := api.NewServer(api.Config{
		Dispatcher:         disp,
		Chain:              chain,
		Catalog:            schema.NewCatalog(),
		Keys:               keys,
		Store:              store,
		Contexts:           contexts,
		Gateway:            gw,
		RegistrationSecret: cfg.RegistrationSecret,
		Version:            Version,
	})

	logger := log.WithComponent("server")
	logger.Info().
		Str("data_dir", cfg.DataDir).
		Msg("starting loom bridge")

	return server.Start(cfg.ListenAddr)
}
