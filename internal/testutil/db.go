package testutil

import (
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qs3c/bill_reminder_server/internal/model"
)

func open(t *testing.T, dialector gorm.Dialector) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Subscription{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// SetupTestDB SQLite 内存库；每个连接是独立的库，所以只开一个连接
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := open(t, sqlite.Open("file::memory:"))
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db
}

// SetupTestDBWithPostgres 需要 TEST_DATABASE_DSN，未设置时跳过
func SetupTestDBWithPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db := open(t, postgres.Open(dsn))
	t.Cleanup(func() {
		// 提醒记录测试会留下数据，按依赖顺序清掉
		db.Exec("DELETE FROM subscriptions")
		db.Exec("DELETE FROM users")
	})
	return db
}

func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("cleanup: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("cleanup: close test database: %v", err)
	}
}
