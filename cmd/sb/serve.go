package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alfredjeanlab/switchboard/internal/auth"
	"github.com/alfredjeanlab/switchboard/internal/catalog"
	"github.com/alfredjeanlab/switchboard/internal/client"
	"github.com/alfredjeanlab/switchboard/internal/config"
	"github.com/alfredjeanlab/switchboard/internal/events"
	"github.com/alfredjeanlab/switchboard/internal/identity"
	"github.com/alfredjeanlab/switchboard/internal/orchestrator"
	"github.com/alfredjeanlab/switchboard/internal/registry"
	"github.com/alfredjeanlab/switchboard/internal/server"
	"github.com/alfredjeanlab/switchboard/internal/store/postgres"
	rostersync "github.com/alfredjeanlab/switchboard/internal/sync"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:       "serve <identity|registry|interaction>",
	Short:     "Run one of the services",
	GroupID:   "system",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(config.Identity), string(config.Registry), string(config.Interaction)},
	// Servers configure themselves from the environment, not from profiles.
	PersistentPreRunE: skipClients,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := config.Service(strings.ToLower(args[0]))
		cfg, err := config.Load(svc)
		if err != nil {
			return err
		}
		logger := cfg.NewLogger()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, cfg, logger); err != nil {
			logger.Error("service failed", "err", err)
			return err
		}
		logger.Info("shutdown complete")
		return nil
	},
}

// closer collects shutdown steps, run in reverse order.
type closer struct {
	logger *slog.Logger
	steps  []func()
}

func (c *closer) add(name string, fn func() error) {
	c.steps = append(c.steps, func() {
		if err := fn(); err != nil {
			c.logger.Error("error closing "+name, "err", err)
		}
	})
}

func (c *closer) run() {
	for i := len(c.steps) - 1; i >= 0; i-- {
		c.steps[i]()
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	cl := &closer{logger: logger}
	defer cl.run()

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	cl.add("publisher", publisher.Close)

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	var svc service
	switch cfg.Service {
	case config.Identity:
		svc, err = identityService(ctx, cfg, verifier, cl, logger)
	case config.Registry:
		svc, err = registryService(ctx, cfg, publisher, verifier, cl, logger)
	case config.Interaction:
		svc, err = interactionService(ctx, cfg, publisher, verifier, cl, logger)
	default:
		err = fmt.Errorf("unknown service %q", cfg.Service)
	}
	if err != nil {
		return err
	}

	if cfg.GRPCAddr != "" {
		if err := startGRPC(ctx, cfg, svc, cl, logger); err != nil {
			return err
		}
	}

	logger.Info("switchboard service started", "http_addr", cfg.HTTPAddr, "grpc_addr", cfg.GRPCAddr)
	return server.Run(ctx, cfg.HTTPAddr, svc.Handler(), cfg.ShutdownTimeout, logger)
}

// service is one of the three HTTP servers.
type service interface {
	Handler() http.Handler
	server.Readiness
}

// startGRPC serves grpc.health.v1 on cfg.GRPCAddr, tracking svc's readiness.
func startGRPC(ctx context.Context, cfg *config.Config, svc service, cl *closer, logger *slog.Logger) error {
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}
	gs := server.NewGRPCServer(string(cfg.Service), svc, logger)

	watchCtx, cancel := context.WithCancel(ctx)
	go gs.Watch(watchCtx, cfg.GRPCHealthEvery)
	go func() {
		if err := gs.Serve(lis); err != nil {
			logger.Error("gRPC server error", "err", err)
		}
	}()
	cl.add("gRPC server", func() error {
		cancel()
		gs.Stop()
		return nil
	})
	return nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Info("events disabled (SWITCHBOARD_NATS_URL not set)")
		return events.NoopPublisher{}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL, "switchboard-"+string(cfg.Service))
	if err != nil {
		return nil, err
	}
	logger.Info("events enabled", "nats_url", cfg.NATSURL)
	return pub, nil
}

func identityService(ctx context.Context, cfg *config.Config, verifier auth.TokenVerifier, cl *closer, logger *slog.Logger) (service, error) {
	users, err := postgres.NewUserStore(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	cl.add("user store", users.Close)

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)
	svc := identity.New(users, issuer, verifier, logger)

	if cfg.BootstrapAdmin != "" && cfg.BootstrapPassword != "" {
		if err := svc.EnsureAdmin(ctx, cfg.BootstrapAdmin, cfg.BootstrapPassword); err != nil {
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}
	return server.NewIdentityServer(svc, verifier, logger), nil
}

func registryService(ctx context.Context, cfg *config.Config, pub events.Publisher, verifier auth.TokenVerifier, cl *closer, logger *slog.Logger) (service, error) {
	agents, err := postgres.NewAgentStore(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	cl.add("agent store", agents.Close)

	svc := registry.New(agents, pub, client.NewIdentityHTTPClient(cfg.IdentityURL), logger)

	if sched := newSyncScheduler(ctx, cfg.Sync, svc, logger); sched != nil {
		sched.Start()
		logger.Info("sync scheduler started", "interval", cfg.Sync.Interval)
		cl.add("sync scheduler", func() error { sched.Stop(); return nil })
	}
	return server.NewRegistryServer(svc, verifier, logger), nil
}

// newSyncScheduler returns nil when no destination is configured. A
// destination that fails to initialize is logged and skipped.
func newSyncScheduler(ctx context.Context, sc config.Sync, agents rostersync.Lister, logger *slog.Logger) *rostersync.Scheduler {
	if !sc.Enabled() {
		return nil
	}
	var dests []rostersync.Destination
	if sc.S3Bucket != "" {
		d, err := rostersync.NewS3Destination(ctx, sc.S3Bucket, sc.S3Key, sc.S3Region, sc.S3Endpoint)
		if err != nil {
			logger.Error("failed to create S3 sync destination", "err", err)
		} else {
			dests = append(dests, d)
			logger.Info("sync S3 destination enabled", "bucket", sc.S3Bucket, "key", sc.S3Key)
		}
	}
	if sc.GitRepo != "" {
		dests = append(dests, rostersync.NewGitDestination(sc.GitRepo, sc.GitFile, sc.GitBranch))
		logger.Info("sync git destination enabled", "repo", sc.GitRepo, "file", sc.GitFile)
	}
	if len(dests) == 0 {
		return nil
	}
	return rostersync.NewScheduler(agents, dests, sc.Interval, logger)
}

func interactionService(ctx context.Context, cfg *config.Config, pub events.Publisher, verifier auth.TokenVerifier, cl *closer, logger *slog.Logger) (service, error) {
	skills, err := postgres.NewSkillStore(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	cl.add("skill store", skills.Close)

	cat := catalog.New(skills, pub, logger)
	if err := cat.Seed(ctx); err != nil {
		return nil, fmt.Errorf("seed skills: %w", err)
	}

	idClient := client.NewIdentityHTTPClient(cfg.IdentityURL)
	regClient := client.NewRegistryHTTPClient(cfg.RegistryURL)

	orch := orchestrator.New(orchestrator.Deps{
		Identity: idClient,
		Catalog:  cat,
		Registry: regClient,
		Probes: map[string]orchestrator.Probe{
			"database": cat.Ready,
			"identity": liveProbe(idClient),
			"registry": liveProbe(regClient),
		},
		Logger: logger,
	})
	return server.NewInteractionServer(orch, cat, verifier, logger), nil
}

type healthChecker interface {
	Health(ctx context.Context, probe string) (*client.HealthStatus, error)
}

// liveProbe reports a peer service as up when its liveness probe answers.
func liveProbe(c healthChecker) orchestrator.Probe {
	return func(ctx context.Context) error {
		hs, err := c.Health(ctx, client.ProbeLive)
		if err != nil {
			return err
		}
		if hs.Status != client.ProbeLive {
			return errors.New("status " + hs.Status)
		}
		return nil
	}
}
