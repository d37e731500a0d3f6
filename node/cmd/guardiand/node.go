// Package guardiand is the guardian node's command-line entrypoint: flag
// parsing, logging setup, and wiring the aggregator, verifier, admin
// surface, and query HTTP server together into one running process.
package guardiand

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vaanet/guardian-core/node/pkg/adminrpc"
	"github.com/vaanet/guardian-core/node/pkg/common"
	"github.com/vaanet/guardian-core/node/pkg/db"
	"github.com/vaanet/guardian-core/node/pkg/logging"
	"github.com/vaanet/guardian-core/node/pkg/p2pkey"
	"github.com/vaanet/guardian-core/node/pkg/processor"
	"github.com/vaanet/guardian-core/node/pkg/query"
	"github.com/vaanet/guardian-core/node/pkg/supervisor"
	"github.com/vaanet/guardian-core/node/pkg/verifier"
	"github.com/vaanet/guardian-core/sdk/vaa"
)

var (
	dataDir         *string
	guardianKeyPath *string
	nodeKeyPath     *string

	listenAddr *string
	statusAddr *string

	logLevel      *string
	unsafeDevMode *bool
)

func init() {
	dataDir = NodeCmd.Flags().String("dataDir", "", "Data directory")
	guardianKeyPath = NodeCmd.Flags().String("guardianKey", "", "Path to guardian key (required)")
	nodeKeyPath = NodeCmd.Flags().String("nodeKey", "", "Path to node identity key (will be generated if it doesn't exist)")

	listenAddr = NodeCmd.Flags().String("listenAddr", "[::]:7071", "Listen address for the signed-VAA query HTTP interface")
	statusAddr = NodeCmd.Flags().String("statusAddr", "[::]:6060", "Listen address for the status/metrics server (disabled if blank)")

	logLevel = NodeCmd.Flags().String("logLevel", "info", "Logging level (debug, info, warn, error, dpanic, panic, fatal)")
	unsafeDevMode = NodeCmd.Flags().Bool("unsafeDevMode", false, "Launch node in unsafe, deterministic devnet mode with a single-guardian set")
}

// NodeCmd runs the guardian node.
var NodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Run the guardiand node",
	Run:   runNode,
}

func runNode(cmd *cobra.Command, args []string) {
	logger, err := logging.New(*unsafeDevMode)
	if err != nil {
		fmt.Println("failed to construct logger:", err)
		os.Exit(1)
	}

	lvl, err := zap.ParseAtomicLevel(*logLevel)
	if err != nil {
		logger.Fatal("invalid --logLevel", zap.String("logLevel", *logLevel))
	}
	logger = logger.WithOptions(zap.IncreaseLevel(lvl.Level()))

	if *dataDir == "" {
		logger.Fatal("Please specify --dataDir")
	}
	if *guardianKeyPath == "" {
		logger.Fatal("Please specify --guardianKey")
	}
	if *nodeKeyPath == "" && !*unsafeDevMode {
		logger.Fatal("Please specify --nodeKey")
	}

	gk, err := common.LoadGuardianKey(*guardianKeyPath, *unsafeDevMode)
	if err != nil {
		logger.Fatal("failed to load guardian key", zap.Error(err))
	}
	guardianAddr := ethcrypto.PubkeyToAddress(gk.PublicKey)
	logger.Info("loaded guardian key", zap.String("address", guardianAddr.String()))

	if *nodeKeyPath != "" {
		if _, err := p2pkey.Load(*nodeKeyPath); err != nil {
			logger.Fatal("failed to load node identity key", zap.Error(err))
		}
	}

	database, err := db.Open(*dataDir)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	database.SetLogger(logger)
	defer database.Close()

	registry := verifier.NewRegistry()
	if *unsafeDevMode {
		if err := registry.Install(&common.GuardianSet{
			Index:        0,
			Keys:         []ethcommon.Address{guardianAddr},
			CreationTime: time.Now(),
		}); err != nil {
			logger.Fatal("failed to install devnet guardian set", zap.Error(err))
		}
	} else if gs, err := database.GetGuardianSet(0); err == nil && gs != nil {
		if err := registry.Install(gs); err != nil {
			logger.Fatal("failed to restore persisted guardian set", zap.Error(err))
		}
	}

	bridge := verifier.NewBridge(registry, verifier.NewMemoryReplayStore())

	currentSetIndex := func() uint32 {
		if gs, ok := registry.Current(); ok {
			return gs.Index
		}
		return 0
	}
	quorum := func() int {
		if gs, ok := registry.Current(); ok {
			return gs.Quorum()
		}
		return common.Quorum(1)
	}

	agg := processor.New(logger.Named("aggregator"), currentSetIndex, quorum)

	admin := adminrpc.New(logger.Named("adminrpc"), gk, currentSetIndex)
	_ = admin // exposed for operator tooling to call directly in-process; no gRPC transport in this deployment

	rootCtx, rootCtxCancel := context.WithCancel(context.Background())
	defer rootCtxCancel()

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGTERM, syscall.SIGINT)
	supervisor.Run(supervisor.WithLogger(rootCtx, logger), "sigterm_watcher", func(ctx context.Context) error {
		select {
		case <-sigterm:
			logger.Info("received shutdown signal")
			rootCtxCancel()
		case <-ctx.Done():
		}
		return nil
	})

	handler := &query.Handler{Aggregator: agg, Store: storeAdapter{database}}
	httpSrv := &http.Server{Addr: *listenAddr, Handler: handler.Router()}
	supervisor.Run(supervisor.WithLogger(rootCtx, logger), "query_http", func(ctx context.Context) error {
		logger.Info("starting signed-VAA query server", zap.String("addr", *listenAddr))
		errC := make(chan error, 1)
		go func() { errC <- httpSrv.ListenAndServe() }()
		select {
		case <-ctx.Done():
			return httpSrv.Close()
		case err := <-errC:
			return err
		}
	})

	if *statusAddr != "" {
		statusSrv := &http.Server{Addr: *statusAddr, Handler: statusMux(bridge)}
		supervisor.Run(supervisor.WithLogger(rootCtx, logger), "status_server", func(ctx context.Context) error {
			logger.Info("starting status server", zap.String("addr", *statusAddr))
			errC := make(chan error, 1)
			go func() { errC <- statusSrv.ListenAndServe() }()
			select {
			case <-ctx.Done():
				return statusSrv.Close()
			case err := <-errC:
				return err
			}
		})
	}

	<-rootCtx.Done()
	logger.Info("root context cancelled, exiting")
}

// statusMux serves the operator-facing status endpoints: Prometheus metrics,
// a readiness probe backed by the chain-watcher registry, and the bridge's
// current paused state.
func statusMux(bridge *verifier.Bridge) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !common.AllReady() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if bridge.Paused {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("paused"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// storeAdapter satisfies query.Store over the badger-backed database, which
// is keyed by the (chain, emitter, sequence) VAAID rather than query's three
// positional arguments.
type storeAdapter struct {
	db *db.Database
}

func (s storeAdapter) GetSignedVAA(chain vaa.ChainID, emitter vaa.Address, sequence uint64) (*vaa.VAA, bool, error) {
	v, err := s.db.GetSignedVAA(db.VAAID{EmitterChain: chain, EmitterAddress: emitter, Sequence: sequence})
	if err != nil {
		return nil, false, err
	}
	return v, v != nil, nil
}
