package data

import (
	"log"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
	"github.com/gridstate/load-logger/src/loadlogger/types"
)

// MustMySQL opens a gorm DB or exits. The DSN gets parseTime and the
// canonical timezone forced on so DATETIME columns round-trip as wall-clock
// values in that zone.
func MustMySQL(dsn string) *gorm.DB {
	dsn = ensureParam(dsn, "parseTime", "true")
	dsn = ensureParam(dsn, "loc", url.QueryEscape(timeutil.Zone.String()))
	if !strings.Contains(dsn, "charset=") {
		dsn = ensureParam(dsn, "charset", "utf8mb4")
	}

	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Cooperative{},
		&types.LoadData{},
		&types.SubstationSnapshot{},
		&types.ImportLog{},
		&types.Setting{},
	)
}
