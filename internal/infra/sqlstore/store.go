// Package sqlstore provides a GORM-backed implementation of domain.RemoteStore
// for PostgreSQL, MySQL and SQLite.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/infra/watch"
)

const serverTimeName = "server-time"

// Store implements domain.RemoteStore on a SQL database.
type Store struct {
	db     *gorm.DB
	poller *watch.Poller
	newID  func() string
}

// Open connects to the database for driver ("postgres", "mysql" or "sqlite").
func Open(driver, dsn string, log domain.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case domain.RemoteDriverPostgres:
		dialector = postgres.Open(dsn)
	case domain.RemoteDriverMySQL:
		dialector = mysql.Open(dsn)
	case domain.RemoteDriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRemoteDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// New creates a Store on an open connection.
func New(db *gorm.DB, pollInterval time.Duration) *Store {
	s := &Store{
		db:    db,
		newID: uuid.NewString,
	}
	s.poller = watch.New(s.List, pollInterval)
	return s
}

// Migrate creates or updates the schema.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&taskRow{}, &metaRow{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// List returns every task ordered by (date, createdAt).
func (s *Store) List(ctx context.Context) ([]*domain.Task, error) {
	var rows []taskRow
	if err := s.db.WithContext(ctx).Order("date ASC, created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Get returns a task by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Task, error) {
	var row taskRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return row.toTask()
}

// Create inserts a task with a fresh UUID and database timestamps.
// A done task without doneAt gets the database time.
func (s *Store) Create(ctx context.Context, task *domain.Task) (string, error) {
	values, err := columns(task)
	if err != nil {
		return "", err
	}
	id := s.newID()
	values["id"] = id
	values["created_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	values["updated_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	switch {
	case !task.Status.IsDone():
		values["done_at"] = nil
	case task.DoneAt == nil:
		values["done_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	}

	if err := s.db.WithContext(ctx).Model(&taskRow{}).Create(values).Error; err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	s.poller.Trigger()
	return id, nil
}

// Update applies a partial update inside a transaction and refreshes updatedAt.
func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row taskRow
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTaskNotFound
			}
			return fmt.Errorf("get task: %w", err)
		}
		task, err := row.toTask()
		if err != nil {
			return err
		}

		// A zero now marks a doneAt the database must fill in.
		patch.ApplyTo(task, time.Time{})
		values, err := columns(task)
		if err != nil {
			return err
		}
		if task.DoneAt != nil && task.DoneAt.IsZero() {
			values["done_at"] = gorm.Expr("CURRENT_TIMESTAMP")
		}
		values["updated_at"] = gorm.Expr("CURRENT_TIMESTAMP")

		if err := tx.Model(&taskRow{}).Where("id = ?", id).Updates(values).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.poller.Trigger()
	return nil
}

// Delete removes a task. Deleting a missing task is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&taskRow{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.poller.Trigger()
	return nil
}

// Subscribe opens a polling feed over the tasks table.
func (s *Store) Subscribe(ctx context.Context, handler domain.SnapshotHandler) (domain.Subscription, error) {
	return s.poller.Subscribe(ctx, handler)
}

// ServerNow stamps the metadata row with the database clock and reads it back.
func (s *Store) ServerNow(ctx context.Context) (time.Time, error) {
	db := s.db.WithContext(ctx)

	res := db.Model(&metaRow{}).Where("name = ?", serverTimeName).
		Update("stamped_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if res.Error != nil {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrServerClockUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		err := db.Model(&metaRow{}).Create(map[string]any{
			"name":       serverTimeName,
			"stamped_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
		if err != nil {
			// Lost an insert race or MySQL reported an unchanged row; the read below decides.
			s.db.Logger.Warn(ctx, "stamp server time: %v", err)
		}
	}

	var row metaRow
	if err := db.Where("name = ?", serverTimeName).First(&row).Error; err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrServerClockUnavailable, err)
	}
	return row.StampedAt, nil
}

// Ensure Store implements RemoteStore.
var _ domain.RemoteStore = (*Store)(nil)
