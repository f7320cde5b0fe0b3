// @title           Research Agent API
// @version         1.0
// @description     Answers questions about uploaded documents. Every request runs in its own session which is removed once the answer is sent.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/ResearchAgent/internal/bootstrap"
	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/handlers"
	"github.com/akolanti/ResearchAgent/internal/server"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

var listenAddr string

func main() {
	settings, err := config.Load()
	if err != nil {
		println("could not load configuration:", err.Error())
		os.Exit(1)
	}

	logger_i.Init(logger_i.Options{Level: settings.LogLevel, Format: settings.LogFormat, FilePath: settings.LogFile})
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", settings.ListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	app, err := bootstrap.Build(serviceContext, settings, bootstrap.Components{})
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		return
	}

	handlers.InitResearchHandler(app.Service, app.Reports)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.CreateServer(listenAddr)
	go server.ShutDownHandler(shutdownParams)

	<-stopExecution
	logger.Info("Server stopped")
}
