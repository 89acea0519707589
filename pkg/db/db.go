package db

import (
	"errors"
	"fmt"
	"time"

	"filmmate/config"
	"filmmate/internal/model"
	"filmmate/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

// InitDB 初始化全局数据库连接
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	// 保存全局数据库实例
	DB = db

	return db, nil
}

// Open 按配置建立连接，不修改全局实例（测试与命令行工具使用）
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	// 配置GORM
	gormConfig := &gorm.Config{
		Logger: newGormLogger(logger.Named("gorm"), cfg.LogSQL),

		// 禁用默认事务（提高性能），需要原子性的写操作显式使用事务
		SkipDefaultTransaction: true,

		// 准备语句（提高性能）
		PrepareStmt: true,

		// 唯一约束冲突统一转换为 gorm.ErrDuplicatedKey
		TranslateError: true,

		// 命名策略
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true, // 使用单数表名
		},
	}

	// 连接数据库
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	// 获取底层的sql.DB对象
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库实例失败: %w", err)
	}

	// 配置连接池
	if cfg.Driver == "sqlite" {
		// sqlite 只允许单连接写入；内存库在连接关闭后即丢失
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)  // 最大空闲连接数
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)  // 最大打开连接数
		sqlDB.SetConnMaxLifetime(time.Hour) // 连接最大生命周期
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	return db, nil
}

// dialectorFor 根据驱动类型构建 DSN
func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Username,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Database,
			cfg.Charset,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.Port,
			cfg.Username,
			cfg.Password,
			cfg.Database,
			sslMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		path := cfg.Database
		if path == "" {
			path = "filmmate.db"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// newGormLogger SQL日志写入zap；未找到记录属于正常分支，不输出
func newGormLogger(zl *zap.Logger, logSQL bool) gormlogger.Interface {
	level, zapLevel := gormlogger.Warn, zapcore.WarnLevel
	if logSQL {
		level, zapLevel = gormlogger.Info, zapcore.InfoLevel // 开发阶段显示SQL日志
	}
	std, err := zap.NewStdLogAt(zl, zapLevel)
	if err != nil {
		std = zap.NewStdLog(zl)
	}
	return gormlogger.New(std, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return DB
}

// CloseDB 关闭数据库连接
func CloseDB() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return fmt.Errorf("获取数据库实例失败: %w", err)
		}
		return sqlDB.Close()
	}
	return nil
}

// HealthCheck 数据库健康检查
func HealthCheck() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("获取数据库实例失败: %w", err)
	}

	return sqlDB.Ping()
}

// AutoMigrate 自动迁移全部业务表
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 自定义片单关联表（带加入时间），需在迁移前注册
	if err := db.SetupJoinTable(&model.List{}, "Movies", &model.ListMovie{}); err != nil {
		return fmt.Errorf("注册片单关联表失败: %w", err)
	}

	return db.AutoMigrate(model.All()...)
}

// IsDuplicateKey 是否为唯一约束冲突
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound 是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
