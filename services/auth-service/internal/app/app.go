// Package app assembles the auth service and owns its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/handler"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/worker"
	"github.com/vasapolrittideah/tunehub-api/shared/auth"
	"github.com/vasapolrittideah/tunehub-api/shared/discovery"
	"github.com/vasapolrittideah/tunehub-api/shared/mailer"
	"github.com/vasapolrittideah/tunehub-api/shared/utilities"
	"github.com/vasapolrittideah/tunehub-api/shared/validator"
)

// App holds every long-lived dependency of the auth service.
type App struct {
	cfg    *config.AuthServiceConfig
	logger *zerolog.Logger

	mongoClient *mongo.Client
	store       handler.HealthChecker
	router      http.Handler
	sweeper     *worker.ResetTokenSweeper
}

const (
	storeHealthInterval = 10 * time.Second
	storeHealthTimeout  = 2 * time.Second
)

// servingReporter receives the store reachability verdict.
type servingReporter interface {
	SetServing(serving bool)
}

// New connects the store and wires repositories, use cases and HTTP routes.
func New(ctx context.Context, cfg *config.AuthServiceConfig, logger *zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	userRepo, err := a.newUserRepository(ctx)
	if err != nil {
		return nil, err
	}
	a.store = userRepo

	v, err := validator.New()
	if err != nil {
		a.disconnect()
		return nil, fmt.Errorf("create validator: %w", err)
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.SessionSecret, cfg.Token.Issuer, cfg.Token.Issuer)

	authUsecase := usecase.NewAuthUsecase(userRepo, jwtAuth, cfg.Token)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		userRepo,
		a.newResetMailer(),
		cfg.FrontendURL,
		cfg.Token.PasswordResetExpiresIn,
		logger,
	)

	a.router = handler.NewRouter(handler.RouterParams{
		Handler:        handler.NewAuthHTTPHandler(authUsecase, passwordResetUsecase, v, userRepo),
		Sessions:       jwtAuth,
		Logger:         logger,
		RoutePrefix:    cfg.RoutePrefix,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	if cfg.ResetSweepSchedule != "" {
		a.sweeper, err = worker.NewResetTokenSweeper(cfg.ResetSweepSchedule, userRepo, logger)
		if err != nil {
			a.disconnect()
			return nil, err
		}
	}

	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP until ctx is canceled or the listener fails, then shuts
// everything down in reverse order of startup.
func (a *App) Run(ctx context.Context) error {
	defer a.disconnect()

	lis, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.HTTPAddr, err)
	}

	server := &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		a.logger.Info().Str("addr", lis.Addr().String()).Msg("auth service listening")
		if err := server.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var healthServer *utilities.HealthServer
	if a.cfg.GRPCHealthAddr != "" {
		healthLis, err := net.Listen("tcp", a.cfg.GRPCHealthAddr)
		if err != nil {
			a.shutdownHTTP(server)
			return fmt.Errorf("listen on %s: %w", a.cfg.GRPCHealthAddr, err)
		}

		healthServer = utilities.NewHealthServer(a.logger)
		go func() {
			if err := healthServer.Serve(healthLis); err != nil {
				errCh <- fmt.Errorf("grpc health server: %w", err)
			}
		}()
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	watchDone := make(chan struct{})
	if healthServer != nil {
		go func() {
			defer close(watchDone)
			a.watchStoreHealth(watchCtx, healthServer)
		}()
	} else {
		close(watchDone)
	}

	registry, serviceID := a.register()

	if a.sweeper != nil {
		a.sweeper.Start()
	}

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down auth service")
		err = nil
	case err = <-errCh:
		a.logger.Error().Err(err).Msg("auth service stopped unexpectedly")
	}

	if registry != nil {
		if derr := registry.Deregister(serviceID); derr != nil {
			a.logger.Warn().Err(derr).Msg("failed to deregister from consul")
		}
	}
	stopWatch()
	<-watchDone
	if healthServer != nil {
		healthServer.Stop()
	}
	a.shutdownHTTP(server)
	if a.sweeper != nil {
		a.sweeper.Stop()
	}

	return err
}

// watchStoreHealth mirrors store reachability into the gRPC health status
// until ctx is done.
func (a *App) watchStoreHealth(ctx context.Context, reporter servingReporter) {
	ticker := time.NewTicker(storeHealthInterval)
	defer ticker.Stop()

	for {
		a.reportStoreHealth(ctx, reporter)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *App) reportStoreHealth(ctx context.Context, reporter servingReporter) {
	pingCtx, cancel := context.WithTimeout(ctx, storeHealthTimeout)
	defer cancel()

	err := a.store.Ping(pingCtx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("store unreachable, reporting NOT_SERVING")
	}
	reporter.SetServing(err == nil)
}

func (a *App) newUserRepository(ctx context.Context) (repository.UserRepository, error) {
	switch a.cfg.StorageDriver {
	case config.StorageDriverMemory:
		a.logger.Warn().Msg("using in-memory user store; data is lost on restart")
		return repository.NewUserMemoryRepository(), nil
	default:
		client, err := repository.ConnectMongo(ctx, a.cfg.Mongo.URI, a.cfg.Mongo.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		a.mongoClient = client

		return repository.NewUserMongoRepository(ctx, a.logger, client.Database(a.cfg.Mongo.Database)), nil
	}
}

func (a *App) newResetMailer() usecase.ResetMailer {
	switch a.cfg.MailerDriver {
	case config.MailerDriverLog:
		a.logger.Warn().Msg("password reset links are logged instead of emailed")
		return mailer.NewLogMailer(a.logger)
	default:
		return mailer.NewMailer(a.logger)
	}
}

// register announces the instance to Consul when an agent is configured.
// Failure is logged and the service keeps running unregistered.
func (a *App) register() (*discovery.ConsulRegistry, string) {
	d := a.cfg.Discovery
	if d.Address == "" {
		return nil, ""
	}

	registry, err := discovery.NewConsulRegistry(d.Address, a.logger)
	if err != nil {
		a.logger.Warn().Err(err).Msg("consul registration skipped")
		return nil, ""
	}

	serviceID := d.ServiceID
	if serviceID == "" {
		serviceID = fmt.Sprintf("%s-%s", d.ServiceName, uuid.NewString())
	}

	reg := discovery.Registration{
		ID:       serviceID,
		Name:     d.ServiceName,
		HTTPAddr: advertiseAddr(d.ServiceHost, a.cfg.HTTPAddr),
		Tags:     []string{"http", "auth"},
	}
	if a.cfg.GRPCHealthAddr != "" {
		reg.GRPCHealthAddr = advertiseAddr(d.ServiceHost, a.cfg.GRPCHealthAddr)
	}

	if err := registry.Register(reg); err != nil {
		a.logger.Warn().Err(err).Msg("consul registration failed")
		return nil, ""
	}

	return registry, serviceID
}

func (a *App) shutdownHTTP(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("http server forced to shutdown")
	}
}

func (a *App) disconnect() {
	if a.mongoClient == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.mongoClient.Disconnect(ctx); err != nil {
		a.logger.Error().Err(err).Msg("failed to disconnect from mongo")
	}
	a.mongoClient = nil
}

// advertiseAddr replaces the host of a listen address such as ":8080" with
// host, when one is given.
func advertiseAddr(host, listenAddr string) string {
	if host == "" {
		return listenAddr
	}

	_, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return listenAddr
	}

	return net.JoinHostPort(host, port)
}
