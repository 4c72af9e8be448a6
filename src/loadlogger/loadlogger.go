// File: src/loadlogger/loadlogger.go

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridstate/load-logger/src/loadlogger/config"
	"github.com/gridstate/load-logger/src/loadlogger/data"
	"github.com/gridstate/load-logger/src/loadlogger/importer"
	"github.com/gridstate/load-logger/src/loadlogger/metrics"
	"github.com/gridstate/load-logger/src/loadlogger/notify"
	"github.com/gridstate/load-logger/src/loadlogger/scheduler"
	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
	"github.com/gridstate/load-logger/src/loadlogger/upstream"
	"github.com/gridstate/load-logger/src/loadlogger/webserver"
)

func main() {
	cfg := config.Load()
	timeutil.SetZone(cfg.Timezone)

	db := data.MustMySQL(cfg.MySQLDSN)
	if err := data.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	settings := data.NewSettings(db)

	debug := strings.EqualFold(settings.Get("log_level"), "DEBUG")
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	notifier := notify.New(settings, cfg)

	client := upstream.NewClient(cfg.UpstreamBaseURL, 30*time.Second)
	client.SetDebug(debug)

	imp := importer.New(db, client, notifier)
	imp.SetMetrics(m)
	if cfg.RedisURL != "" {
		imp.SetRedis(data.MustRedis(cfg.RedisURL))
	}

	// One synchronous import before the scheduler starts so the data is
	// fresh the moment the API comes up.
	log.Printf("running initial import")
	if res, err := imp.Run(context.Background()); err != nil {
		log.Printf("initial import did not start: %v", err)
	} else if !res.Success {
		log.Printf("initial import failed: %s", res.Error)
	}

	sched := scheduler.New(imp, settings)
	sched.Start()

	router := webserver.New(cfg, db, settings, sched, notifier, m)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Load Logger listening on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	sched.Stop()
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
	log.Printf("Load Logger stopped")
}
