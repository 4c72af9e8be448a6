package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gridstate/load-logger/src/loadlogger/data"
	"github.com/gridstate/load-logger/src/loadlogger/metrics"
	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
	"github.com/gridstate/load-logger/src/loadlogger/types"
	"github.com/gridstate/load-logger/src/loadlogger/upstream"
)

// Alert after this many consecutive runs fail before reaching the
// per-cooperative loop. The counter is process-local; a restart resets it,
// which is fine because a restart means an operator already looked.
const failureAlertThreshold = 3

// Rollup regions (MO Region, OK Region, system total) have no substations.
// This is a business-domain constant, not derived from upstream data.
var aggregateAreas = map[uint32]bool{18: true, 19: true, 20: true}

// ErrRunInProgress is returned when a trigger fires while a run is already
// executing. The second trigger is dropped, never queued.
var ErrRunInProgress = errors.New("an import run is already in progress")

// Alerter is the notification surface the importer needs. Satisfied by
// *notify.Notifier.
type Alerter interface {
	SendFailureAlert(message string) error
	SendRecoveryNotice() error
}

// Client is the upstream API surface the importer consumes. Satisfied by
// *upstream.Client; tests substitute fakes.
type Client interface {
	CheckConnectivity(ctx context.Context) bool
	CheckInternet(ctx context.Context) bool
	Cooperatives(ctx context.Context) ([]upstream.Cooperative, error)
	AreaGrid(ctx context.Context, areaID uint32) (*upstream.AreaGridResponse, error)
	AreaSubstations(ctx context.Context, areaID uint32) (*upstream.AreaLoadTableResponse, error)
}

// Result is the outcome of one import run.
type Result struct {
	Success             bool    `json:"success"`
	LoadImported        int     `json:"load_imported"`
	LoadSkipped         int     `json:"load_skipped"`
	SubstationsImported int     `json:"substations_imported"`
	SubstationsSkipped  int     `json:"substations_skipped"`
	Error               string  `json:"error,omitempty"`
	DurationSeconds     float64 `json:"duration_seconds"`
}

// Importer runs one full fetch-normalize-dedupe-persist cycle at a time.
// Scheduled and manual triggers share one instance, so the run mutex is the
// system-wide single-flight guard.
type Importer struct {
	db       *gorm.DB
	client   Client
	notifier Alerter
	metrics  *metrics.Metrics
	rdb      *redis.Client

	runMu sync.Mutex
	// consecutive pre-loop failures; only touched while runMu is held
	failures int
}

func New(db *gorm.DB, client Client, notifier Alerter) *Importer {
	return &Importer{db: db, client: client, notifier: notifier}
}

func (imp *Importer) SetMetrics(m *metrics.Metrics) { imp.metrics = m }

func (imp *Importer) SetRedis(rdb *redis.Client) { imp.rdb = rdb }

// Run executes one import cycle. A completed run always returns a nil error
// with the outcome in Result, failures included; a non-nil error means the
// run never started (already in flight, or the audit row could not be
// written).
func (imp *Importer) Run(ctx context.Context) (Result, error) {
	if !imp.runMu.TryLock() {
		return Result{}, ErrRunInProgress
	}
	defer imp.runMu.Unlock()

	start := timeutil.Now()
	entry := types.ImportLog{
		RunID:     uuid.NewString(),
		StartedAt: start,
		Status:    types.ImportRunning,
	}
	// Committed before any fetching so a crash mid-run still leaves an
	// observable "stuck running" record.
	if err := imp.db.Create(&entry).Error; err != nil {
		return Result{}, fmt.Errorf("create import log: %w", err)
	}

	var res Result
	runErr := imp.runCycle(ctx, &res)
	if runErr != nil {
		res.Error = runErr.Error()
		imp.failures++
		log.Printf("importer: run %s failed: %v", entry.RunID, runErr)
		if imp.failures >= failureAlertThreshold {
			msg := fmt.Sprintf("Import has failed %d consecutive times. Latest error: %v", imp.failures, runErr)
			if err := imp.notifier.SendFailureAlert(msg); err != nil {
				log.Printf("importer: failure alert not sent: %v", err)
			}
		}
	} else {
		res.Success = true
		if imp.failures >= failureAlertThreshold {
			if err := imp.notifier.SendRecoveryNotice(); err != nil {
				log.Printf("importer: recovery notice not sent: %v", err)
			}
		}
		imp.failures = 0
	}

	end := timeutil.Now()
	res.DurationSeconds = end.Sub(start).Seconds()
	imp.finalize(ctx, &entry, res, end)

	log.Printf("importer: run %s completed: success=%v load=%d+/%d- subs=%d+/%d- in %.2fs",
		entry.RunID, res.Success,
		res.LoadImported, res.LoadSkipped,
		res.SubstationsImported, res.SubstationsSkipped,
		res.DurationSeconds)
	return res, nil
}

// runCycle is the pre-loop gate plus the per-cooperative loop. Only errors
// returned from here mark the whole run failed.
func (imp *Importer) runCycle(ctx context.Context, res *Result) error {
	if !imp.client.CheckConnectivity(ctx) {
		// Distinguish a vendor outage from a local one; operators need to
		// know whether to escalate upstream or check their own network.
		if imp.client.CheckInternet(ctx) {
			return errors.New("upstream API is unreachable (internet is up)")
		}
		return errors.New("no internet connection")
	}

	if err := imp.syncCooperatives(ctx); err != nil {
		return fmt.Errorf("cooperative sync: %w", err)
	}

	var coops []types.Cooperative
	if err := imp.db.Find(&coops).Error; err != nil {
		return fmt.Errorf("list cooperatives: %w", err)
	}

	// One shared mark per poll cycle; the substation endpoint carries no
	// timestamp of its own.
	snapshotTime := timeutil.FloorToFiveMinutes(timeutil.Now())

	for _, coop := range coops {
		if err := imp.importArea(ctx, coop, snapshotTime, res); err != nil {
			// Isolated: one cooperative's hiccup never blocks the rest.
			log.Printf("importer: area %s (%d): %v", coop.Name, coop.ID, err)
		}
	}
	return nil
}

func (imp *Importer) syncCooperatives(ctx context.Context) error {
	coops, err := imp.client.Cooperatives(ctx)
	if err != nil {
		return err
	}

	for _, c := range coops {
		row := types.Cooperative{
			ID:           c.ID,
			Name:         c.Name,
			Abbreviation: c.Abrev,
			IsAggregate:  aggregateAreas[c.ID],
		}
		err := imp.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "abbreviation", "is_aggregate", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (imp *Importer) importArea(ctx context.Context, coop types.Cooperative, snapshotTime time.Time, res *Result) error {
	imported, skipped, err := imp.importLoadData(ctx, coop.ID)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	res.LoadImported += imported
	res.LoadSkipped += skipped

	// Aggregate rollups have no substation table.
	if coop.IsAggregate {
		return nil
	}

	imported, skipped, err = imp.importSubstations(ctx, coop.ID, snapshotTime)
	if err != nil {
		return fmt.Errorf("substations: %w", err)
	}
	res.SubstationsImported += imported
	res.SubstationsSkipped += skipped
	return nil
}

func (imp *Importer) importLoadData(ctx context.Context, areaID uint32) (int, int, error) {
	grid, err := imp.client.AreaGrid(ctx, areaID)
	if err != nil {
		return 0, 0, err
	}

	var imported, skipped int
	for _, p := range upstream.ExtractActual(grid) {
		row := types.LoadData{AreaID: areaID, Timestamp: p.Timestamp, LoadKW: p.KW}
		tx := imp.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "area_id"}, {Name: "timestamp"}},
			DoNothing: true,
		}).Create(&row)
		if tx.Error != nil {
			return imported, skipped, tx.Error
		}
		if tx.RowsAffected > 0 {
			imported++
		} else {
			skipped++
		}
	}
	return imported, skipped, nil
}

func (imp *Importer) importSubstations(ctx context.Context, areaID uint32, snapshotTime time.Time) (int, int, error) {
	table, err := imp.client.AreaSubstations(ctx, areaID)
	if err != nil {
		return 0, 0, err
	}

	var imported, skipped int
	for _, sub := range table.AreaLoadData {
		row := types.SubstationSnapshot{
			AreaID:         areaID,
			SnapshotTime:   snapshotTime,
			SubstationName: sub.Name,
			KW:             sub.KW,
			KVar:           sub.KVar,
			PF:             sub.PF,
			Quality:        sub.Quality,
			QualityNow:     sub.QualityNow,
		}
		tx := imp.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "area_id"}, {Name: "snapshot_time"}, {Name: "substation_name"}},
			DoNothing: true,
		}).Create(&row)
		if tx.Error != nil {
			return imported, skipped, tx.Error
		}
		if tx.RowsAffected > 0 {
			imported++
		} else {
			skipped++
		}
	}
	return imported, skipped, nil
}

// finalize writes the terminal status into the run's audit row and feeds
// metrics and the event stream. Best effort past the DB update: the run
// result stands regardless.
func (imp *Importer) finalize(ctx context.Context, entry *types.ImportLog, res Result, end time.Time) {
	status := types.ImportFailed
	if res.Success {
		status = types.ImportSuccess
	}

	updates := map[string]interface{}{
		"completed_at":         end,
		"status":               status,
		"load_imported":        res.LoadImported,
		"load_skipped":         res.LoadSkipped,
		"substations_imported": res.SubstationsImported,
		"substations_skipped":  res.SubstationsSkipped,
		"error_message":        res.Error,
		"duration_seconds":     res.DurationSeconds,
	}
	if err := imp.db.Model(entry).Updates(updates).Error; err != nil {
		log.Printf("importer: finalize run %s: %v", entry.RunID, err)
	}

	if imp.metrics != nil {
		imp.metrics.ObserveRun(status, res.LoadImported, res.LoadSkipped,
			res.SubstationsImported, res.SubstationsSkipped, res.DurationSeconds)
		imp.metrics.SetFailureStreak(imp.failures)
		if res.Success {
			imp.metrics.MarkSuccess(float64(end.Unix()))
		}
	}

	if imp.rdb != nil {
		event := map[string]interface{}{
			"run_id":               entry.RunID,
			"success":              res.Success,
			"load_imported":        res.LoadImported,
			"load_skipped":         res.LoadSkipped,
			"substations_imported": res.SubstationsImported,
			"substations_skipped":  res.SubstationsSkipped,
			"duration_seconds":     res.DurationSeconds,
			"error":                res.Error,
		}
		if err := data.PublishImportEvent(ctx, imp.rdb, event); err != nil {
			log.Printf("importer: publish import event: %v", err)
		}
	}
}
