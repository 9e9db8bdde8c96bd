package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yungbote/coursehub-backend/internal/data/db"
	"github.com/yungbote/coursehub-backend/internal/platform/envutil"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "coursehubctl",
		Short:         "Operational commands for the CourseHub backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "optional YAML config file")
	pf.String("log-mode", envutil.String("LOG_MODE", "development"), "logger mode (development, production)")
	pf.String("postgres-host", envutil.String("POSTGRES_HOST", "localhost"), "Postgres host")
	pf.String("postgres-port", envutil.String("POSTGRES_PORT", "5432"), "Postgres port")
	pf.String("postgres-user", envutil.String("POSTGRES_USER", "postgres"), "Postgres user")
	pf.String("postgres-password", envutil.String("POSTGRES_PASSWORD", ""), "Postgres password")
	pf.String("postgres-name", envutil.String("POSTGRES_NAME", "coursehub"), "Postgres database")
	pf.String("postgres-sslmode", envutil.String("POSTGRES_SSLMODE", "disable"), "Postgres sslmode")

	root.AddCommand(migrateCmd(v))
	root.AddCommand(seedCmd(v))
	root.AddCommand(createAdminCmd(v))
	return root
}

// initConfig layers flags over COURSEHUB_* env vars over the optional config file.
func initConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("COURSEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	for _, fs := range []*pflag.FlagSet{cmd.PersistentFlags(), cmd.InheritedFlags(), cmd.Flags()} {
		if err := v.BindPFlags(fs); err != nil {
			return err
		}
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}

func postgresConfig(v *viper.Viper) db.PostgresConfig {
	return db.PostgresConfig{
		Host:     v.GetString("postgres-host"),
		Port:     v.GetString("postgres-port"),
		User:     v.GetString("postgres-user"),
		Password: v.GetString("postgres-password"),
		Name:     v.GetString("postgres-name"),
		SSLMode:  v.GetString("postgres-sslmode"),
	}
}

func openPostgres(v *viper.Viper) (*logger.Logger, *db.PostgresService, error) {
	log, err := logger.New(v.GetString("log-mode"))
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	pg, err := db.NewPostgresService(log, postgresConfig(v))
	if err != nil {
		return nil, nil, err
	}
	return log, pg, nil
}
