package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/filedepot/storage-access-backend/common"
	"github.com/filedepot/storage-access-backend/httpserver"
	"github.com/filedepot/storage-access-backend/interfaces"
	"github.com/filedepot/storage-access-backend/metrics"
	"github.com/filedepot/storage-access-backend/storage"
)

var flags []cli.Flag = []cli.Flag{
	&cli.StringFlag{
		Name:    "listen-addr",
		Value:   "127.0.0.1:8080",
		Usage:   "address to listen on for the files API",
		EnvVars: []string{"LISTEN_ADDR"},
	},
	&cli.StringFlag{
		Name:    "metrics-addr",
		Value:   "127.0.0.1:8090",
		Usage:   "address to listen on for Prometheus metrics (empty to disable)",
		EnvVars: []string{"METRICS_ADDR"},
	},
	&cli.Float64SliceFlag{
		Name:    "metrics-buckets",
		Usage:   "latency histogram buckets in seconds",
		EnvVars: []string{"METRICS_BUCKETS"},
	},
	&cli.StringFlag{
		Name:    "storage-type",
		Value:   "local",
		Usage:   "storage backend: local, s3, azure-blob, oss, gcs, cos, oci, obs, baidu-obs, volcengine-tos, supabase, ipfs, vault (unknown values fall back to local)",
		EnvVars: []string{"STORAGE_TYPE"},
	},
	&cli.StringFlag{
		Name:    "local-dir",
		Value:   "storage",
		Usage:   "base directory for the local backend",
		EnvVars: []string{"STORAGE_LOCAL_PATH"},
	},
	&cli.StringFlag{
		Name:    "s3-bucket",
		Usage:   "bucket name for the s3 backend and s3-compatible backends",
		EnvVars: []string{"S3_BUCKET_NAME"},
	},
	&cli.StringFlag{
		Name:    "s3-prefix",
		Usage:   "key prefix within the bucket",
		EnvVars: []string{"S3_PREFIX"},
	},
	&cli.StringFlag{
		Name:    "s3-region",
		Usage:   "bucket region",
		EnvVars: []string{"S3_REGION"},
	},
	&cli.StringFlag{
		Name:    "s3-endpoint",
		Usage:   "custom endpoint, required for oci and optional elsewhere",
		EnvVars: []string{"S3_ENDPOINT"},
	},
	&cli.StringFlag{
		Name:    "s3-access-key",
		Usage:   "static access key (falls back to the SDK credential chain)",
		EnvVars: []string{"S3_ACCESS_KEY"},
	},
	&cli.StringFlag{
		Name:    "s3-secret-key",
		Usage:   "static secret key",
		EnvVars: []string{"S3_SECRET_KEY"},
	},
	&cli.BoolFlag{
		Name:    "s3-force-path-style",
		Usage:   "use path-style addressing (needed for some compatible stores)",
		EnvVars: []string{"S3_FORCE_PATH_STYLE"},
	},
	&cli.StringFlag{
		Name:    "azure-account",
		Usage:   "storage account name for the azure-blob backend",
		EnvVars: []string{"AZURE_BLOB_ACCOUNT_NAME"},
	},
	&cli.StringFlag{
		Name:    "azure-container",
		Usage:   "container name for the azure-blob backend",
		EnvVars: []string{"AZURE_BLOB_CONTAINER_NAME"},
	},
	&cli.StringFlag{
		Name:    "azure-sas-token",
		Usage:   "SAS token scoped to the container",
		EnvVars: []string{"AZURE_BLOB_SAS_TOKEN"},
	},
	&cli.StringFlag{
		Name:    "azure-endpoint",
		Usage:   "custom blob service endpoint",
		EnvVars: []string{"AZURE_BLOB_ENDPOINT"},
	},
	&cli.StringFlag{
		Name:    "supabase-url",
		Usage:   "project URL for the supabase backend",
		EnvVars: []string{"SUPABASE_URL"},
	},
	&cli.StringFlag{
		Name:    "supabase-bucket",
		Usage:   "bucket name for the supabase backend",
		EnvVars: []string{"SUPABASE_BUCKET_NAME"},
	},
	&cli.StringFlag{
		Name:    "supabase-api-key",
		Usage:   "service-role API key for the supabase backend",
		EnvVars: []string{"SUPABASE_API_KEY"},
	},
	&cli.StringFlag{
		Name:    "ipfs-addr",
		Value:   "localhost:5001",
		Usage:   "IPFS API address for the ipfs backend",
		EnvVars: []string{"IPFS_ADDR"},
	},
	&cli.StringFlag{
		Name:    "ipfs-root",
		Value:   "/storage",
		Usage:   "MFS root directory for the ipfs backend",
		EnvVars: []string{"IPFS_ROOT"},
	},
	&cli.DurationFlag{
		Name:    "ipfs-timeout",
		Value:   30 * time.Second,
		Usage:   "request timeout for the ipfs backend",
		EnvVars: []string{"IPFS_TIMEOUT"},
	},
	&cli.StringFlag{
		Name:    "vault-addr",
		Usage:   "server address for the vault backend",
		EnvVars: []string{"VAULT_ADDR"},
	},
	&cli.StringFlag{
		Name:    "vault-token",
		Usage:   "authentication token for the vault backend",
		EnvVars: []string{"VAULT_TOKEN"},
	},
	&cli.StringFlag{
		Name:    "vault-mount",
		Value:   "secret",
		Usage:   "KV v2 mount path",
		EnvVars: []string{"VAULT_MOUNT"},
	},
	&cli.StringFlag{
		Name:    "vault-path",
		Value:   "files",
		Usage:   "path prefix within the mount",
		EnvVars: []string{"VAULT_PATH"},
	},
	&cli.BoolFlag{
		Name:  "log-json",
		Value: false,
		Usage: "log in JSON format",
	},
	&cli.BoolFlag{
		Name:  "log-debug",
		Value: false,
		Usage: "log debug messages",
	},
	&cli.BoolFlag{
		Name:  "log-uid",
		Value: false,
		Usage: "generate a uuid and add to all log messages",
	},
	&cli.StringFlag{
		Name:  "log-service",
		Value: common.PackageName,
		Usage: "add 'service' tag to logs",
	},
	&cli.BoolFlag{
		Name:  "pprof",
		Value: false,
		Usage: "enable pprof debug endpoint",
	},
	&cli.Int64Flag{
		Name:  "drain-seconds",
		Value: 45,
		Usage: "seconds to wait in drain HTTP request",
	},
}

func main() {
	app := &cli.App{
		Name:  "storage-server",
		Usage: "Serve the uniform file-storage API over a configured backend",
		Flags: flags,
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String("listen-addr")
			metricsAddr := cCtx.String("metrics-addr")
			logJSON := cCtx.Bool("log-json")
			logDebug := cCtx.Bool("log-debug")
			logUID := cCtx.Bool("log-uid")
			logService := cCtx.String("log-service")
			enablePprof := cCtx.Bool("pprof")
			drainDuration := time.Duration(cCtx.Int64("drain-seconds")) * time.Second

			logger := common.SetupLogger(&common.LoggingOpts{
				Debug:   logDebug,
				JSON:    logJSON,
				Service: logService,
				Version: common.Version,
			})

			if logUID {
				id := uuid.Must(uuid.NewRandom())
				logger = logger.With("uid", id.String())
			}

			storageCfg := &storage.Config{
				Backend: interfaces.BackendType(cCtx.String("storage-type")),
				Local: storage.LocalConfig{
					BaseDir: cCtx.String("local-dir"),
				},
				S3: storage.S3Config{
					Bucket:         cCtx.String("s3-bucket"),
					Prefix:         cCtx.String("s3-prefix"),
					Region:         cCtx.String("s3-region"),
					Endpoint:       cCtx.String("s3-endpoint"),
					AccessKey:      cCtx.String("s3-access-key"),
					SecretKey:      cCtx.String("s3-secret-key"),
					ForcePathStyle: cCtx.Bool("s3-force-path-style"),
				},
				Azure: storage.AzureBlobConfig{
					AccountName: cCtx.String("azure-account"),
					Container:   cCtx.String("azure-container"),
					SASToken:    cCtx.String("azure-sas-token"),
					Endpoint:    cCtx.String("azure-endpoint"),
				},
				Supabase: storage.SupabaseConfig{
					URL:    cCtx.String("supabase-url"),
					Bucket: cCtx.String("supabase-bucket"),
					APIKey: cCtx.String("supabase-api-key"),
				},
				IPFS: storage.IPFSConfig{
					Addr:    cCtx.String("ipfs-addr"),
					Root:    cCtx.String("ipfs-root"),
					Timeout: cCtx.Duration("ipfs-timeout"),
				},
				Vault: storage.VaultConfig{
					Address:   cCtx.String("vault-addr"),
					Token:     cCtx.String("vault-token"),
					MountPath: cCtx.String("vault-mount"),
					DataPath:  cCtx.String("vault-path"),
				},
			}

			// Metrics are optional; without a listen address the facade
			// runs with latency reporting disabled.
			var metricsSrv *metrics.MetricsServer
			var latency *metrics.OperationLatency
			if metricsAddr != "" {
				var err error
				metricsSrv, err = metrics.New(common.PackageName, metricsAddr)
				if err != nil {
					logger.Error("Failed to create metrics server", "err", err)
					return err
				}
				latency, err = metrics.NewOperationLatency(cCtx.Float64Slice("metrics-buckets"), metricsSrv.Registry())
				if err != nil {
					logger.Error("Failed to register latency histogram", "err", err)
					return err
				}
			}

			// Initialize the storage facade before any traffic is served.
			store := storage.New(logger, latency)
			if err := store.Init(context.Background(), storageCfg); err != nil {
				logger.Error("Failed to initialize storage", "err", err)
				return err
			}

			cfg := &httpserver.HTTPServerConfig{
				ListenAddr:               listenAddr,
				MetricsAddr:              metricsAddr,
				Log:                      logger,
				EnablePprof:              enablePprof,
				DrainDuration:            drainDuration,
				GracefulShutdownDuration: 30 * time.Second,
				ReadTimeout:              60 * time.Second,
				WriteTimeout:             30 * time.Second,
			}

			srv, err := httpserver.New(cfg, httpserver.NewHandler(store, logger), metricsSrv)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			srv.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit

			logger.Info("Shutting down")
			srv.Shutdown()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
