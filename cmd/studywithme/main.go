package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/studywithme/studywithme/internal/profile"
	"github.com/studywithme/studywithme/internal/version"
	"github.com/studywithme/studywithme/server"
	"github.com/studywithme/studywithme/store"
	"github.com/studywithme/studywithme/store/db"
)

const greetingBanner = `StudyWithMe %s - your AI study companion
`

var rootCmd = &cobra.Command{
	Use:   "studywithme",
	Short: "An AI-powered tutoring backend with spaced repetition and quizzes",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Data:        viper.GetString("data"),
			Driver:      viper.GetString("driver"),
			DSN:         viper.GetString("dsn"),
			Version:     version.GetCurrentVersion(viper.GetString("mode")),
			AIEnabled:   viper.GetBool("ai-enabled"),
			AIAPIKey:    viper.GetString("ai-api-key"),
			AIBaseURL:   viper.GetString("ai-base-url"),
			AIChatModel: viper.GetString("ai-chat-model"),
		}
		if err := instanceProfile.Validate(); err != nil {
			return err
		}

		initLogger(instanceProfile)

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}
		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		fmt.Printf(greetingBanner, instanceProfile.Version)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.Start(ctx)
		})
		g.Go(func() error {
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigs:
				slog.Info("received signal, shutting down", "signal", sig)
			case <-ctx.Done():
			}
			s.Shutdown(context.Background())
			cancel()
			return nil
		})
		return g.Wait()
	},
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().Bool("ai-enabled", false, "enable the AI tutor")
	rootCmd.PersistentFlags().String("ai-api-key", "", "API key for the LLM provider")
	rootCmd.PersistentFlags().String("ai-base-url", "", "base URL of an OpenAI-compatible LLM provider")
	rootCmd.PersistentFlags().String("ai-chat-model", "", "chat model to use for tutoring")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("studywithme")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func initLogger(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
