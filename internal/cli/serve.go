package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/logging"
	"github.com/filedrop/filedrop/internal/server"
	"github.com/filedrop/filedrop/internal/storage"
)

func newServeCmd() *cobra.Command {
	var serverConfig string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the filedrop server",
		Long: `Run the HTTP server that accepts uploads and serves the file list,
downloads and deletions.

Settings are read from a YAML file (--server-config) and FILEDROP_*
environment variables, e.g. FILEDROP_STORAGE_BACKEND=s3.

Storage backends: local (default), minio, s3, azure.

Examples:
  filedrop serve
  filedrop serve --server-config filedrop.yaml
  FILEDROP_SERVER_ADDR=:9000 filedrop serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig(serverConfig)
			if err != nil {
				return err
			}

			log := logging.NewLogger("server")
			level := logging.ParseLevel(cfg.Log.Level)
			if verbose || debug {
				level = zerolog.DebugLevel
			}
			logging.SetGlobalLevel(level)

			ctx := GetContext()
			store, err := storage.New(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			log.Info().Str("backend", cfg.Storage.Backend).Int64("max_size", cfg.Upload.MaxSize).Msg("storage ready")

			return server.New(cfg, store, log).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&serverConfig, "server-config", "", "Server configuration file (YAML)")
	return cmd
}
