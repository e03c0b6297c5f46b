package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"phPortfolio/internal/auth"
	"phPortfolio/internal/config"
	"phPortfolio/internal/content"
	"phPortfolio/internal/database"
	"phPortfolio/internal/notify"
	"phPortfolio/internal/store"
)

var createUsername string

var createUserCmd = &cobra.Command{
	Use:     "create-user",
	Short:   "创建后台编辑账号并输出一次性随机密码",
	Example: `  phportfolio-admin create-user --username editor`,
	RunE:    runCreateUser,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或更新全部内容表",
	RunE:  runMigrate,
}

var seedNotify bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "用静态内容填充仍为空的分类与语言",
	Long: `对每个（分类, 语言）检查远程库，只写入完全为空的组合，已有数据不会被覆盖。
同一 displayOrder 的中英两行共享 pair id。`,
	RunE: runSeed,
}

func init() {
	createUserCmd.Flags().StringVar(&createUsername, "username", "", "后台用户名（必填）")
	_ = createUserCmd.MarkFlagRequired("username")
	seedCmd.Flags().BoolVar(&seedNotify, "notify", true, "初始化后通过 Redis 通知在线页面刷新")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	overrideDatabase(&cfg.Database)
	return cfg, nil
}

func overrideDatabase(db *config.DatabaseConfig) {
	if strings.TrimSpace(dbHost) != "" {
		db.Host = dbHost
	}
	if dbPort > 0 {
		db.Port = dbPort
	}
	if strings.TrimSpace(dbName) != "" {
		db.Name = dbName
	}
	if strings.TrimSpace(dbUser) != "" {
		db.User = dbUser
	}
	if dbPassword != "" {
		db.Password = dbPassword
	}
	if strings.TrimSpace(dbSSLMode) != "" {
		db.SSLMode = dbSSLMode
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*gorm.DB, *store.Store, error) {
	db, err := database.InitDatabase(cfg.Database)
	if errors.Is(err, database.ErrNotConfigured) {
		return nil, nil, errors.New("database host and password are required (DATABASE_HOST, POSTGRES_PASSWORD)")
	}
	if err != nil {
		return nil, nil, err
	}
	st := store.New(db)
	if err := st.AutoMigrate(ctx); err != nil {
		return nil, nil, err
	}
	return db, st, nil
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	username := strings.ToLower(strings.TrimSpace(createUsername))
	if username == "" {
		return errors.New("missing required flag: --username")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, _, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	var existing database.User
	switch err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error; {
	case err == nil:
		return fmt.Errorf("user %q already exists", username)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return fmt.Errorf("query user: %w", err)
	}

	password, err := auth.GeneratePassword(18)
	if err != nil {
		return err
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(&database.User{Username: username, PasswordHash: hashed}).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "已创建后台账号：\n")
	fmt.Fprintf(out, "用户名: %s\n", username)
	fmt.Fprintf(out, "初始密码: %s\n", password)
	fmt.Fprintf(out, "提示：该密码仅显示一次，请妥善保存。\n")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, _, err := openStore(cmd.Context(), cfg); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "content tables migrated")
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	_, st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	report, err := st.Seed(ctx, content.DefaultBundle())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(report.Seeded) == 0 {
		fmt.Fprintln(out, "nothing to seed, every category already has content")
		return nil
	}
	for _, seeded := range report.Seeded {
		fmt.Fprintf(out, "seeded %s\n", seeded)
	}

	if seedNotify {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		defer rdb.Close()
		event := notify.Event{Type: notify.EventContentUpdated, Action: "seeded"}
		if err := notify.NewPublisher(rdb).Publish(ctx, event); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: notify failed: %v\n", err)
		}
	}
	return nil
}
