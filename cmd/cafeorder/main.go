package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/talkincode/cafeorder/config"
	"github.com/talkincode/cafeorder/internal/api"
	"github.com/talkincode/cafeorder/internal/app"
	"github.com/talkincode/cafeorder/internal/filestore"
	"github.com/talkincode/cafeorder/internal/webserver"
)

var (
	configFile = flag.String("c", "cafeorder.yml", "config file")
	initDb     = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showVer    = flag.Bool("v", false, "show version")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("cafeorder", version)
		return
	}

	cfg := config.LoadConfig(*configFile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	fstore, err := filestore.New(cfg.Web.UploadDir)
	if err != nil {
		zap.S().Fatalf("failed to initialize file store: %v", err)
	}

	webserver.Init(cfg, application.DB(), application.OrderService(), fstore)
	api.Register()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	application.StartBackgroundJobs(ctx)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		zap.L().Info("shutting down")
		cancel()
		_ = webserver.Instance().Echo().Close()
	}()

	if err := webserver.Listen(); err != nil {
		zap.S().Errorf("web server stopped: %v", err)
	}
}
