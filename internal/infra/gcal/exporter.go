// Package gcal exports tasks to Google Calendar as all-day events.
package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/qcteam/teamcal/internal/domain"
)

const logCategory = "export"

// NewService builds an authenticated Calendar service from an OAuth client
// file and a previously saved token.
func NewService(ctx context.Context, cfg domain.CalendarConfig) (*calendar.Service, error) {
	if cfg.Credentials == "" || cfg.Token == "" {
		return nil, fmt.Errorf("calendar export needs [calendar] credentials and token")
	}
	b, err := os.ReadFile(expandHome(cfg.Credentials))
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", cfg.Credentials, err)
	}
	oauthCfg, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	tok, err := tokenFromFile(expandHome(cfg.Token))
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}
	return srv, nil
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer func() { _ = f.Close() }()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", path, err)
	}
	return tok, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Result counts what an export did.
type Result struct {
	Created   int
	Updated   int
	Unchanged int
	Failed    int
}

// Exporter writes tasks into one calendar.
type Exporter struct {
	srv        *calendar.Service
	log        domain.Logger
	calendarID string
}

// NewExporter creates an Exporter.
func NewExporter(srv *calendar.Service, calendarID string, log domain.Logger) *Exporter {
	if calendarID == "" {
		calendarID = domain.DefaultCalendarID
	}
	if log == nil {
		log = domain.NopLogger{}
	}
	return &Exporter{srv: srv, calendarID: calendarID, log: log}
}

// Export upserts every task. A failing task is logged and counted, and the
// rest are still exported; the joined errors are returned.
func (e *Exporter) Export(ctx context.Context, tasks []*domain.Task) (Result, error) {
	var res Result
	var errs []error
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		outcome, err := e.Upsert(ctx, t)
		if err != nil {
			res.Failed++
			errs = append(errs, err)
			e.log.Warn(t.ID, logCategory, fmt.Sprintf("export failed: %v", err))
			continue
		}
		switch outcome {
		case OutcomeCreated:
			res.Created++
		case OutcomeUpdated:
			res.Updated++
		default:
			res.Unchanged++
		}
	}
	e.log.Info("", logCategory, fmt.Sprintf("exported to %s: %d created, %d updated, %d unchanged, %d failed",
		e.calendarID, res.Created, res.Updated, res.Unchanged, res.Failed))
	return res, errors.Join(errs...)
}

// Outcome is what Upsert did with one task.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

// Upsert creates the task's event, or patches the existing one when it differs.
func (e *Exporter) Upsert(ctx context.Context, t *domain.Task) (Outcome, error) {
	target, err := EventFromTask(t)
	if err != nil {
		return OutcomeUnchanged, err
	}

	existing, err := e.findEvent(ctx, t.ID)
	if err != nil {
		return OutcomeUnchanged, fmt.Errorf("search event for task %s: %w", t.ID, err)
	}

	if existing == nil {
		if _, err := e.srv.Events.Insert(e.calendarID, target).Context(ctx).Do(); err != nil {
			return OutcomeUnchanged, fmt.Errorf("insert event for task %s: %w", t.ID, err)
		}
		return OutcomeCreated, nil
	}

	patch := eventPatch(existing, target)
	if patch == nil {
		return OutcomeUnchanged, nil
	}
	if _, err := e.srv.Events.Patch(e.calendarID, existing.Id, patch).Context(ctx).Do(); err != nil {
		return OutcomeUnchanged, fmt.Errorf("patch event for task %s: %w", t.ID, err)
	}
	return OutcomeUpdated, nil
}

// findEvent looks up the event tagged with the task id.
func (e *Exporter) findEvent(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := e.srv.Events.List(e.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", PropertyKey, taskID)).
		ShowDeleted(false).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) == 0 {
		return nil, nil
	}
	return events.Items[0], nil
}
