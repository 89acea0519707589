package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"filmmate/config"
	dbPkg "filmmate/pkg/db"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// resetTables 清空顺序：先子表后父表
var resetTables = []string{
	"list_movie",
	"movie_genre",
	"review",
	"watched_movie",
	"friend_request",
	"friendship",
	"list",
	"movie",
	"genre",
	"user",
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "清空全部业务数据（保留表结构）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Database: %s (%s)\n", cfg.Database.Database, cfg.Database.Driver)
			if !yes && !confirm(cmd.InOrStdin(), out) {
				fmt.Fprintln(out, "Operation cancelled")
				return nil
			}

			if cfg.Database.Driver == "" || cfg.Database.Driver == "mysql" {
				return resetMySQL(cfg.Database, out)
			}
			gdb, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer dbPkg.CloseDB()
			return resetGeneric(gdb, out)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "跳过确认")
	return cmd
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprintf(out, "\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", resetTables)
	fmt.Fprint(out, "Type 'YES' to confirm: ")
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line) == "YES"
}

// resetMySQL 直接使用 mysql 驱动，关闭外键检查并重置自增ID
func resetMySQL(cfg config.DatabaseConfig, out io.Writer) error {
	dsn := mysql.NewConfig()
	dsn.User = cfg.Username
	dsn.Passwd = cfg.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dsn.DBName = cfg.Database
	dsn.ParseTime = true
	if cfg.Charset != "" {
		dsn.Params = map[string]string{"charset": cfg.Charset}
	}
	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	// 外键检查是会话级设置，必须在同一连接上执行
	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=0"); err != nil {
		return err
	}
	defer func() { _, _ = conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=1") }()

	for _, table := range resetTables {
		fmt.Fprintf(out, "Clearing table %s... ", table)
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("DELETE FROM `%s`", table)); err != nil {
			fmt.Fprintf(out, "Failed: %v\n", err)
			continue
		}
		fmt.Fprintln(out, "Success")
	}
	for _, table := range resetTables {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("ALTER TABLE `%s` AUTO_INCREMENT = 1", table)); err != nil {
			fmt.Fprintf(out, "Resetting %s auto-increment failed: %v\n", table, err)
		}
	}
	fmt.Fprintln(out, "\nDatabase reset completed, auto-increment IDs reset to 1")
	return nil
}

// resetGeneric 其他驱动只清空数据
func resetGeneric(gdb *gorm.DB, out io.Writer) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		for _, table := range resetTables {
			fmt.Fprintf(out, "Clearing table %s... ", table)
			if err := tx.Exec("DELETE FROM " + tx.Statement.Quote(table)).Error; err != nil {
				fmt.Fprintf(out, "Failed: %v\n", err)
				return err
			}
			fmt.Fprintln(out, "Success")
		}
		fmt.Fprintln(out, "\nDatabase reset completed, table structure preserved")
		return nil
	})
}
