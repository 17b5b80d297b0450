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
	"github.com/rsvp-sheets/rsvp/pkg/log"
)

type App struct {
	config    *config.AppConfig
	logger    *slog.Logger
	forwarder Forwarder
}

func NewApp(cfg *config.AppConfig, fwd Forwarder) *App {
	return &App{
		config:    cfg,
		logger:    slog.Default().With(slog.String("logger", "proxy")),
		forwarder: fwd,
	}
}

func (app *App) Run() error {
	api := NewProxyAPI(app)

	go func() {
		app.logger.Info(fmt.Sprintf("Proxy running on http://localhost%s", app.config.ListenAddr()))

		if err := api.Listen(app.config.ListenAddr()); err != nil {
			app.logger.Error("listener failed", slog.Any("error", err))
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

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	app.logger.Info("exiting...")

	return api.ShutdownWithTimeout(time.Second * 5)
}

func main() {
	parser := argparse.NewParser("rsvp_proxy", "relays browser form posts to the Apps Script endpoint")
	conf := parser.String("c", "config", &argparse.Options{Help: "name of config file", Default: "rsvp_proxy.yml"})
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

	cfg := config.NewAppConfig()
	_ = cfg.Set("port", "3000")
	cfg.Load(*conf)

	if err := cfg.LoadEnv(); err != nil {
		slog.Error("error reading environment", slog.Any("error", err))
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout()}
	app := NewApp(cfg, NewHTTPForwarder(client, slog.Default()))

	if err := app.Run(); err != nil {
		slog.Error("shutdown", slog.Any("error", err))
	}
}
