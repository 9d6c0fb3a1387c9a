// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/infra/config"
	"github.com/qcteam/teamcal/internal/infra/gcal"
	"github.com/qcteam/teamcal/internal/infra/gitstore"
	"github.com/qcteam/teamcal/internal/infra/identity"
	"github.com/qcteam/teamcal/internal/infra/localstore"
	"github.com/qcteam/teamcal/internal/infra/logging"
	"github.com/qcteam/teamcal/internal/infra/sqlstore"
	"github.com/qcteam/teamcal/internal/maintenance"
	"github.com/qcteam/teamcal/internal/repository"
	"github.com/qcteam/teamcal/internal/usecase"
)

const logCategory = "app"

// DefaultReadyTimeout bounds the wait for the first realtime update.
const DefaultReadyTimeout = 10 * time.Second

// Config holds the application paths.
type Config struct {
	DataDir   string // Root of all local state
	StorePath string // Path to the local task store
}

// newConfig derives the paths under dataDir.
func newConfig(dataDir string) Config {
	return Config{
		DataDir:   dataDir,
		StorePath: domain.LocalStorePath(dataDir),
	}
}

// LocalStore is the local fallback: task blob plus preferences.
type LocalStore interface {
	domain.LocalStore
	domain.Preferences
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Remote        domain.RemoteStore // nil in a local-only session
	Local         LocalStore
	Identity      domain.IdentityProvider
	Clock         domain.Clock
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	Logger        domain.Logger

	// Pointer fields
	Repo      *repository.Repository
	Scheduler *maintenance.Scheduler
	AppConfig *domain.Config
	closers   []func() error

	// Configuration
	Config       Config
	ReadyTimeout time.Duration
}

// New creates a Container for dataDir (empty means the default data directory).
// A remote store that cannot be opened is logged and the session runs locally.
func New(dataDir string) (*Container, error) {
	if dataDir == "" {
		dir, err := config.DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}
	cfg := newConfig(dataDir)

	configLoader := config.NewLoader(dataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(dataDir, logging.ParseLevel(appConfig.Log.Level))

	local := localstore.New(cfg.StorePath)
	if err := local.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize local store: %w", err)
	}

	remote, closer, err := openRemote(appConfig.Remote, dataDir, logger)
	switch {
	case errors.Is(err, domain.ErrUnknownRemoteDriver):
		_ = logger.Close()
		return nil, err
	case err != nil:
		logger.Warn("", logCategory, fmt.Sprintf("remote store unavailable, running locally: %v", err))
		remote = nil
	}

	ident := identity.New(appConfig.Identity, identity.Options{Logger: logger})

	c := NewWithDeps(cfg, appConfig, remote, local, ident, domain.RealClock{}, logger)
	c.ConfigLoader = configLoader
	c.ConfigManager = config.NewManager(dataDir)
	if closer != nil {
		c.closers = append(c.closers, closer)
	}
	c.closers = append(c.closers, logger.Close)
	return c, nil
}

// openRemote opens the remote store selected by cfg.Driver.
// It returns a nil store for the "none" driver.
func openRemote(cfg domain.RemoteConfig, dataDir string, logger domain.Logger) (domain.RemoteStore, func() error, error) {
	switch cfg.Driver {
	case "", domain.RemoteDriverNone:
		return nil, nil, nil
	case domain.RemoteDriverGit:
		if cfg.Repo == "" {
			return nil, nil, fmt.Errorf("[remote] repo is required for the git driver")
		}
		store, err := gitstore.New(cfg.Repo, cfg.Namespace, gitstore.Options{
			Logger:        logger,
			EncryptionKey: cfg.EncryptionKey,
			SealCacheDir:  filepath.Join(dataDir, "cache"),
			PollInterval:  cfg.PollInterval,
			Fetch:         cfg.Fetch,
			Push:          cfg.Push,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case domain.RemoteDriverPostgres, domain.RemoteDriverMySQL, domain.RemoteDriverSQLite:
		db, err := sqlstore.Open(cfg.Driver, cfg.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		store := sqlstore.New(db, cfg.PollInterval)
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownRemoteDriver, cfg.Driver)
	}
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, remote domain.RemoteStore, local LocalStore, ident domain.IdentityProvider, clock domain.Clock, logger domain.Logger) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	repo := repository.New(repository.Options{
		Remote: remote,
		Local:  local,
		Clock:  clock,
		Logger: logger,
	})
	return &Container{
		Remote:       remote,
		Local:        local,
		Identity:     ident,
		Clock:        clock,
		Logger:       logger,
		Repo:         repo,
		Scheduler:    maintenance.New(repo, local, clock, logger),
		AppConfig:    appConfig,
		Config:       cfg,
		ReadyTimeout: DefaultReadyTimeout,
	}
}

// BootstrapResult describes how the session started.
type BootstrapResult struct {
	Identity domain.Identity
	Backend  repository.Backend
	Report   maintenance.Report
}

// Bootstrap runs the startup sequence: resolve identity, open the realtime
// feed, wait for its first update, load the local store if the session is
// local, then run maintenance once. Maintenance failures are logged only.
func (c *Container) Bootstrap(ctx context.Context) (*BootstrapResult, error) {
	var id domain.Identity
	if c.Identity != nil {
		id = c.Identity.EnsureIdentity(ctx)
	}
	if !id.IsZero() {
		c.Repo.SetActor(id.UID)
	}

	c.Repo.Subscribe(ctx)

	timer := time.NewTimer(c.ReadyTimeout)
	defer timer.Stop()
	select {
	case <-c.Repo.Ready():
	case <-timer.C:
		c.Logger.Warn("", logCategory, fmt.Sprintf("no realtime update within %s, continuing with local data", c.ReadyTimeout))
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := c.Repo.Load(ctx); err != nil {
		return nil, err
	}

	report, err := c.Scheduler.RunAll(ctx)
	if err != nil {
		c.Logger.Warn("", logCategory, fmt.Sprintf("startup maintenance: %v", err))
	}

	return &BootstrapResult{
		Identity: id,
		Backend:  c.Repo.Backend(),
		Report:   report,
	}, nil
}

// StartMaintenance re-runs maintenance on the configured interval.
func (c *Container) StartMaintenance(ctx context.Context) (stop func()) {
	return c.Scheduler.Start(ctx, c.AppConfig.Maintenance.Interval)
}

// Close stops the feed and releases stores and log files.
func (c *Container) Close() error {
	c.Repo.Close()
	var errs []error
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UseCase factory methods

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Repo, c.Clock, uuid.NewString)
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() *usecase.EditTask {
	return usecase.NewEditTask(c.Repo, c.Clock, uuid.NewString)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Repo)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Repo)
}

// ChangeStatusUseCase returns a new ChangeStatus use case.
func (c *Container) ChangeStatusUseCase() *usecase.ChangeStatus {
	return usecase.NewChangeStatus(c.Repo)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Repo)
}

// ResolveConfirmationUseCase returns a new ResolveConfirmation use case.
func (c *Container) ResolveConfirmationUseCase() *usecase.ResolveConfirmation {
	return usecase.NewResolveConfirmation(c.Repo)
}

// DailyViewUseCase returns a new DailyView use case.
func (c *Container) DailyViewUseCase() *usecase.DailyView {
	return usecase.NewDailyView(c.Repo, c.Clock)
}

// CalendarMonthUseCase returns a new CalendarMonth use case.
func (c *Container) CalendarMonthUseCase() *usecase.CalendarMonth {
	return usecase.NewCalendarMonth(c.Repo, c.Clock)
}

// DoneReportUseCase returns a new DoneReport use case.
func (c *Container) DoneReportUseCase() *usecase.DoneReport {
	return usecase.NewDoneReport(c.Repo, c.Clock)
}

// WeeklyCleanupUseCase returns a new WeeklyCleanup use case.
func (c *Container) WeeklyCleanupUseCase() *usecase.WeeklyCleanup {
	return usecase.NewWeeklyCleanup(c.Local)
}

// RunMaintenanceUseCase returns a new RunMaintenance use case.
func (c *Container) RunMaintenanceUseCase() *usecase.RunMaintenance {
	return usecase.NewRunMaintenance(c.Scheduler)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ExportCalendarUseCase returns a new ExportCalendar use case backed by Google Calendar.
func (c *Container) ExportCalendarUseCase(ctx context.Context) (*usecase.ExportCalendar, error) {
	srv, err := gcal.NewService(ctx, c.AppConfig.Calendar)
	if err != nil {
		return nil, err
	}
	exporter := gcal.NewExporter(srv, c.AppConfig.Calendar.CalendarID, c.Logger)
	return usecase.NewExportCalendar(c.Repo, exporter), nil
}
