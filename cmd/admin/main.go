package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbHost     string
	dbPort     int
	dbName     string
	dbUser     string
	dbPassword string
	dbSSLMode  string
)

var rootCmd = &cobra.Command{
	Use:   "phportfolio-admin",
	Short: "作品集内容库的运维命令",
	Long: `管理远程内容库：创建后台账号、迁移表结构、用静态内容初始化空分类。

数据库参数默认读取 DATABASE_HOST、DATABASE_PORT、POSTGRES_DB、POSTGRES_USER、
POSTGRES_PASSWORD、DATABASE_SSLMODE，可用同名 flag 覆盖。`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbHost, "db-host", "", "数据库 Host（默认读 DATABASE_HOST）")
	flags.IntVar(&dbPort, "db-port", 0, "数据库 Port（默认读 DATABASE_PORT）")
	flags.StringVar(&dbName, "db-name", "", "数据库名（默认读 POSTGRES_DB）")
	flags.StringVar(&dbUser, "db-user", "", "数据库用户（默认读 POSTGRES_USER）")
	flags.StringVar(&dbPassword, "db-password", "", "数据库密码（默认读 POSTGRES_PASSWORD）")
	flags.StringVar(&dbSSLMode, "db-sslmode", "", "数据库 SSLMODE（默认读 DATABASE_SSLMODE）")

	rootCmd.AddCommand(createUserCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
