package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/odoocli/internal/config"
	"github.com/username/odoocli/internal/mailer"
	"github.com/username/odoocli/internal/odoo"
	"github.com/username/odoocli/internal/report"
	"github.com/username/odoocli/internal/runner"
	"github.com/username/odoocli/internal/worktime"
)

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
)

func main() {
	var flags reportFlags

	rootCmd := &cobra.Command{
		Use:           "odoocli",
		Short:         "Informes de asistencia de Odoo",
		Long:          "Reconcile Odoo attendance against the working calendar, public holidays and vacations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsConfig(cmd) {
				logger = zap.NewNop()
				return nil
			}
			if err := config.LoadDotEnv(); err != nil {
				return err
			}

			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				initLogger("warn")
				return userError("Error en el archivo de configuración", err)
			}

			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger(cfg.Log.Level) // Fallback to console
					logger.Warn("Failed to open log file", zap.String("file", cfg.Log.File), zap.Error(err))
				}
			} else {
				initLogger(cfg.Log.Level)
			}
			logger = logger.With(zap.String("run_id", uuid.NewString()))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer logger.Sync() //nolint:errcheck
			return runSingle(&flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default "+config.DefaultConfigName+")")
	flags.register(rootCmd)

	rootCmd.AddCommand(bulkCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSingle(flags *reportFlags) error {
	req, err := flags.request(time.Now())
	if err != nil {
		return err
	}

	session, err := connect(flags.user)
	if err != nil {
		return err
	}

	opts, err := reporterOptions(req)
	if err != nil {
		return err
	}

	login := session.AsSelf()
	rep := runner.New(login, worktime.NewEngine(login, time.Now, logger), opts)
	return explain(rep.Run(req))
}

// connect authenticates against Odoo with the resolved credentials
func connect(flagUser string) (*odoo.Session, error) {
	creds, err := config.ResolveCredentials(flagUser, os.Getenv, config.NewTerminalPrompter())
	if err != nil {
		return nil, err
	}

	client, err := odoo.NewClient(cfg.Server.ServerURL(), cfg.Server.Database, logger)
	if err != nil {
		return nil, err
	}

	session, err := client.Authenticate(creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, odoo.ErrAuthFailed) {
			return nil, userError("Error en el Login", err)
		}
		return nil, err
	}
	return session, nil
}

// reporterOptions builds the reporter options; mail delivery is set up only for mailed reports
func reporterOptions(req runner.Request) (runner.Options, error) {
	opts := runner.Options{Out: os.Stdout, Logger: logger}
	if req.Mode != runner.ModeSend {
		return opts, nil
	}

	m, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		return opts, userError("Error en el archivo de configuración", err)
	}
	opts.Sender = m

	opts.Templates.Subject, err = report.LoadTemplate(cfg.Mail.SubjectTemplate, report.DefaultSubjectTemplate)
	if err != nil {
		return opts, err
	}
	opts.Templates.Body, err = report.LoadTemplate(cfg.Mail.BodyTemplate, report.DefaultBodyTemplate)
	if err != nil {
		return opts, err
	}
	return opts, nil
}

func userError(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// explain turns well-known failures into the messages shown to the user
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, odoo.ErrUnknownUser):
		return userError("El usuario no existe", err)
	}
	return err
}

func initLogger(level string) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.Level = zap.NewAtomicLevelAt(parseLevel(level))

	var err error
	logger, err = zapConfig.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

// needsConfig reports whether cmd talks to Odoo; help and shell completion do not
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	if info, err := os.Stat(filepath.Dir(logFile)); err != nil {
		return nil, fmt.Errorf("failed to open log directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("log directory %s is not a directory", filepath.Dir(logFile))
	}

	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		parseLevel(level),
	)

	return zap.New(core), nil
}

func parseLevel(level string) zapcore.Level {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return zapcore.WarnLevel
	}
	return zapLevel
}
