package database

import (
	"fmt"
	"time"

	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const memoryDSN = ":memory:"

// InitDB 按 driver 打开数据库连接
func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	gl := logger.NewGormLogger(logger.L(), time.Duration(cfg.SlowThresholdMs)*time.Millisecond).LogMode(level)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gl,
		// 统一存 UTC，sqlite 按字符串比较时间
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == util.DriverSQLite && cfg.Path == memoryDSN {
		// 内存库每个连接都是独立的数据库
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	logger.L().Info("Database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case util.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case util.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case util.DriverSQLite:
		return sqlite.Open(cfg.Path), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Migrate 创建或更新表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.InterviewSession{},
		&model.FeedbackRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.L().Info("Database migration completed")
	return nil
}

// OpenMemory 打开一个已迁移的 sqlite 内存库，供测试和本地试用
func OpenMemory() (*gorm.DB, error) {
	db, err := InitDB(&config.DatabaseConfig{Driver: util.DriverSQLite, Path: memoryDSN}, false)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
