package jobs

import (
	"fmt"
	"log"
	"os"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	checkoutRepo "cardbase.GO/model/repository/checkout"
	"cardbase.GO/service/notify"
	orderService "cardbase.GO/service/order"
)

// RunOrderExpiration sweeps overdue PENDING_PAYMENT orders on the given
// connection. Also called once at startup so a restart never leaves orders
// stuck past their deadline.
func RunOrderExpiration(db *gorm.DB) (int, error) {
	repo, err := checkoutRepo.NewCheckoutRepository(db)
	if err != nil {
		return 0, err
	}
	return orderService.RunExpirationSweep(repo, notify.NewFromEnv())
}

// OrderExpirationJob is the scheduled entry point. It opens its own
// connection: cron jobs run detached from any request lifecycle.
func OrderExpirationJob(args ...string) {
	db, err := openDB()
	if err != nil {
		log.Printf("[cron] order expiration: db open failed: %v", err)
		return
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	expired, err := RunOrderExpiration(db)
	if err != nil {
		log.Printf("[cron] order expiration failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("[cron] order expiration: cancelled %d order(s)", expired)
	}
}

// openDB mirrors the app connection settings without importing config
// (config owns the job table and would cycle back here).
func openDB() (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if os.Getenv("DB_DRIVER") == "sqlite" {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "cardbase.db"
		}
		return gorm.Open(sqlite.Open(path), cfg)
	}

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		user := os.Getenv("MYSQL_USER")
		pass := os.Getenv("MYSQL_PASS")
		host := os.Getenv("MYSQL_HOST")
		port := os.Getenv("MYSQL_PORT")
		name := os.Getenv("MYSQL_DB")
		if port == "" {
			port = "3306"
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local", user, pass, host, port, name)
	}
	return gorm.Open(mysql.Open(dsn), cfg)
}
