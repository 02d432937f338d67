// Command factcheck-node runs a standalone confidential scoring node.
//
// The node hosts the scoring ledger, the public HTTP API, the admin control
// surface, and an in-process decryption oracle that decrypts requested
// scores and delivers them back through the callback endpoint with an
// attestation proof.
//
// # Usage
//
//	go run ./cmd/factcheck-node --owner=0xabc... --admin-token=admin:secret
//
// Event persistence is enabled by pointing the node at PostgreSQL:
//
//	go run ./cmd/factcheck-node --owner=0xabc... --postgres-host=localhost --postgres-db=factcheck
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/haroldubarric0/AI-FactCheck-Fhe/api/httpserver"
	cmdcommon "github.com/haroldubarric0/AI-FactCheck-Fhe/cmd/common"
	factcheck "github.com/haroldubarric0/AI-FactCheck-Fhe/common"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/fhe"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/metrics"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/oracle"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/protocol"
	"github.com/haroldubarric0/AI-FactCheck-Fhe/services"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "HTTP listen address")
		metricsAddr = flag.String("metrics-addr", ":8090", "Metrics listen address (empty disables)")
		enablePprof = flag.Bool("pprof", false, "Enable pprof debug endpoints")
		adminToken  = flag.String("admin-token", "", "Basic auth token for /admin routes (user:pass)")

		ownerHex       = flag.String("owner", "", "Ledger owner address (hex, required)")
		cooldown       = flag.Uint64("cooldown", protocol.DefaultCooldownSeconds, "Per-address cooldown in seconds (0 disables)")
		openBatch      = flag.Bool("open-batch", true, "Open the first batch at startup")
		encryptGateway = flag.Bool("encrypt-gateway", true, "Expose the demo encryption endpoint")

		oracleKey       = flag.String("oracle-key", "factcheck-demo-oracle", "HMAC key shared with the oracle")
		oracleInterval  = flag.Duration("oracle-interval", 2*time.Second, "Pending decryption delivery interval")
		useTDX          = flag.Bool("tdx", false, "Use TDX attestation for oracle proofs")
		remoteTDXURL    = flag.String("tdx-url", "", "Remote TDX attestation service URL")
		measurementsURL = flag.String("measurements-url", "", "URL for allowed oracle measurements")

		pgHost = flag.String("postgres-host", "", "PostgreSQL host (empty keeps events in memory)")
		pgPort = flag.Int("postgres-port", 5432, "PostgreSQL port")
		pgUser = flag.String("postgres-user", "factcheck", "PostgreSQL user")
		pgPass = flag.String("postgres-password", "", "PostgreSQL password")
		pgDB   = flag.String("postgres-db", "factcheck", "PostgreSQL database")
		pgSSL  = flag.String("postgres-sslmode", "", "PostgreSQL sslmode (default disable)")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", factcheck.PackageName)

	if !gethcommon.IsHexAddress(*ownerHex) {
		fmt.Fprintln(os.Stderr, "Error: --owner must be a hex address")
		os.Exit(1)
	}
	owner := gethcommon.HexToAddress(*ownerHex)

	if err := run(log, &nodeOptions{
		addr:            *addr,
		metricsAddr:     *metricsAddr,
		enablePprof:     *enablePprof,
		adminToken:      *adminToken,
		owner:           owner,
		cooldown:        *cooldown,
		openBatch:       *openBatch,
		encryptGateway:  *encryptGateway,
		oracleKey:       *oracleKey,
		oracleInterval:  *oracleInterval,
		useTDX:          *useTDX,
		remoteTDXURL:    *remoteTDXURL,
		measurementsURL: *measurementsURL,
		pgHost:          *pgHost,
		pgPort:          *pgPort,
		pgUser:          *pgUser,
		pgPass:          *pgPass,
		pgDB:            *pgDB,
		pgSSL:           *pgSSL,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type nodeOptions struct {
	addr        string
	metricsAddr string
	enablePprof bool
	adminToken  string

	owner          gethcommon.Address
	cooldown       uint64
	openBatch      bool
	encryptGateway bool

	oracleKey       string
	oracleInterval  time.Duration
	useTDX          bool
	remoteTDXURL    string
	measurementsURL string

	pgHost string
	pgPort int
	pgUser string
	pgPass string
	pgDB   string
	pgSSL  string
}

func run(log *slog.Logger, opts *nodeOptions) error {
	scheme, err := fhe.NewMockScheme()
	if err != nil {
		return fmt.Errorf("creating scheme: %w", err)
	}

	attester := cmdcommon.NewAttestationProvider(opts.useTDX, opts.remoteTDXURL, opts.oracleKey)
	orc := oracle.NewInMemoryOracle(scheme, attester)
	verifier := &oracle.Verifier{
		Provider:     attester,
		Measurements: cmdcommon.NewMeasurementSource(opts.measurementsURL),
	}

	var store services.EventStore
	if opts.pgHost != "" {
		pgStore, err := services.NewPostgresEventStore(&services.PostgresConfig{
			Host:     opts.pgHost,
			Port:     opts.pgPort,
			User:     opts.pgUser,
			Password: opts.pgPass,
			Database: opts.pgDB,
			SSLMode:  opts.pgSSL,
		})
		if err != nil {
			return fmt.Errorf("connecting event store: %w", err)
		}
		defer pgStore.Close()
		store = pgStore
		log.Info("event persistence enabled", "host", opts.pgHost, "database", opts.pgDB)
	} else {
		store = services.NewMemoryEventStore()
	}

	cfg := protocol.DefaultConfig()
	cfg.CooldownSeconds = opts.cooldown

	ledger, err := protocol.NewLedger(opts.owner, cfg, scheme, orc, verifier,
		protocol.WithEventSink(protocol.MultiSink{
			&protocol.SlogSink{Log: log},
			&services.StoreSink{Store: store, Log: log},
		}))
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	orc.RegisterCallback(ledger.OnDecryptionResult)

	if opts.openBatch {
		if err := ledger.OpenBatch(opts.owner); err != nil {
			return fmt.Errorf("opening first batch: %w", err)
		}
	}

	nodeCfg := &services.NodeConfig{
		AdminToken: opts.adminToken,
		Events:     store,
		Log:        log,
	}
	if opts.encryptGateway {
		nodeCfg.Encryptor = scheme
	}
	node := services.NewNodeService(nodeCfg, ledger)

	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:  opts.addr,
		MetricsAddr: opts.metricsAddr,
		EnablePprof: opts.enablePprof,
		Log:         log,
	}, node)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	if m := srv.Metrics(); m != nil {
		nodeCfg.Metrics = metrics.NewNodeMetrics(factcheck.PackageName, m.Registry())
	}

	log.Info("node starting",
		"addr", opts.addr,
		"owner", opts.owner,
		"instance_id", ledger.InstanceID(),
		"attestation", attester.AttestationType())
	if opts.adminToken == "" {
		log.Warn("no admin token configured, /admin routes are unprotected")
	}

	srv.RunInBackground()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deliverLoop(ctx, orc, opts.oracleInterval, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	cancel()
	srv.Shutdown()
	return nil
}

// deliverLoop periodically hands pending decryption results back to the
// ledger through the oracle callback.
func deliverLoop(ctx context.Context, orc *oracle.InMemoryOracle, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if len(orc.PendingRequests()) == 0 {
				continue
			}
			if err := orc.DeliverPending(); err != nil {
				log.Error("delivering decryption results", "err", err)
			}
		}
	}
}
