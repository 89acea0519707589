package main

import (
	"fmt"
	"os"

	"filmmate/config"
	"filmmate/internal/repository"
	"filmmate/internal/service"
	dbPkg "filmmate/pkg/db"
	"filmmate/pkg/logger"
	"filmmate/pkg/redis"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "filmmate-admin",
		Short:         "FilmMate 运维命令",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "配置文件路径")

	root.AddCommand(newMigrateCmd(), newRecalcCmd(), newResetCmd())
	return root
}

// loadConfig 读取配置并初始化日志
func loadConfig() *config.Config {
	cfg := config.LoadConfigFrom(configPath)
	logger.InitLogger(cfg.Log)
	return cfg
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return gdb, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或更新表结构",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			gdb, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer dbPkg.CloseDB()

			if err := dbPkg.AutoMigrate(gdb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
			return nil
		},
	}
}

func newRecalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalc-ratings",
		Short: "按全部影评重算每部电影的平均分",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			gdb, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer dbPkg.CloseDB()

			// 重算后需要让目录缓存失效
			if cfg.Redis.Enabled {
				if err := redis.InitRedis(cfg.Redis); err == nil {
					defer redis.Close()
				}
			}

			out := cmd.OutOrStdout()
			reviews := service.NewReviewService(repository.NewStore(gdb))
			count, err := reviews.RecalculateAll(cmd.Context(), func(movieID uint, rating float64) {
				fmt.Fprintf(out, "movie %d: %.1f\n", movieID, rating)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "recalculated %d movies\n", count)
			return nil
		},
	}
}
