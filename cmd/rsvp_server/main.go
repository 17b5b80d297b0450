package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"github.com/joho/godotenv"

	"github.com/rsvp-sheets/rsvp/internal/config"
	"github.com/rsvp-sheets/rsvp/internal/sheets"
	"github.com/rsvp-sheets/rsvp/pkg/log"
)

var (
	gitRevision = "unknown"
	gitBranch   = "unknown"
)

type App struct {
	config   *config.AppConfig
	logger   *slog.Logger
	appender sheets.Appender
	loc      *time.Location
	now      func() time.Time
}

func NewApp(cfg *config.AppConfig, appender sheets.Appender, loc *time.Location) *App {
	return &App{
		config:   cfg,
		logger:   slog.Default().With(slog.String("logger", "rsvp")),
		appender: appender,
		loc:      loc,
		now:      time.Now,
	}
}

func (app *App) target() sheets.Target {
	return sheets.Target{SpreadsheetID: app.config.SpreadsheetID(), Sheet: app.config.SheetName()}
}

func (app *App) Run() error {
	api := NewRsvpAPI(app)

	go func() {
		app.logger.Info("listening " + app.config.ListenAddr())

		if err := api.Listen(app.config.ListenAddr()); err != nil {
			app.logger.Error("api listener failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	if addr := app.config.MetricsAddr(); addr != "" {
		go func() {
			app.logger.Info("metrics at " + addr)

			if err := log.NewMetricsAPI().Listen(addr); err != nil {
				app.logger.Error("metrics listener failed", slog.Any("error", err))
			}
		}()
	}

	if err := app.config.CheckSheets(); err != nil {
		app.logger.Warn(err.Error() + ", submissions will fail")
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	app.logger.Info("exiting...")

	return api.ShutdownWithTimeout(time.Second * 5)
}

func main() {
	parser := argparse.NewParser("rsvp_server", "appends RSVP form submissions to a Google spreadsheet")
	conf := parser.String("c", "config", &argparse.Options{Help: "name of config file", Default: "rsvp_server.yml"})
	debug := parser.Flag("d", "debug", &argparse.Options{Help: "debug logging"})
	envFile := parser.String("e", "env", &argparse.Options{Help: "dotenv file", Default: ".env"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	log.Setup(*debug)

	if err := godotenv.Load(*envFile); err != nil {
		slog.Debug("no dotenv file loaded: " + err.Error())
	}

	slog.Info(fmt.Sprintf("version %s:%s", gitBranch, gitRevision))

	cfg := config.NewAppConfig()
	cfg.Load(*conf)

	if err := cfg.LoadEnv(); err != nil {
		slog.Error("error reading environment", slog.Any("error", err))
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout()}
	app := NewApp(cfg, sheets.New(cfg.ServiceAccount(), client, slog.Default()), loc)

	if err := app.Run(); err != nil {
		slog.Error("shutdown", slog.Any("error", err))
	}
}
