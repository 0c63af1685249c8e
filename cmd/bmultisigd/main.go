package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Librechain/bmultisig/internal/config"
	"github.com/Librechain/bmultisig/internal/core/application"
	"github.com/Librechain/bmultisig/internal/core/ports"
	dbbadger "github.com/Librechain/bmultisig/internal/infrastructure/storage/db/badger"
	"github.com/Librechain/bmultisig/internal/infrastructure/storage/db/inmemory"
	"github.com/Librechain/bmultisig/internal/interfaces"
	http_interface "github.com/Librechain/bmultisig/internal/interfaces/http"
	"github.com/Librechain/bmultisig/pkg/profiler"
	log "github.com/sirupsen/logrus"
)

var (
	// Build info.
	version string
	commit  string
	date    string

	// Config from env vars.
	dbType        = config.GetString(config.DatabaseTypeKey)
	logLevel      = config.GetInt(config.LogLevelKey)
	datadir       = config.GetDatadir()
	port          = config.GetInt(config.PortKey)
	profilerPort  = config.GetInt(config.ProfilerPortKey)
	noProfiler    = config.GetBool(config.NoProfilerKey)
	network       = config.GetNetwork()
	dbDir         = filepath.Join(datadir, config.DbLocation)
	profilerDir   = filepath.Join(datadir, config.ProfilerLocation)
	statsInterval = time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second
)

func main() {
	log.SetLevel(log.Level(logLevel))

	if profilerEnabled := !noProfiler; profilerEnabled {
		profilerSvc, err := profiler.NewService(profiler.ServiceOpts{
			Port:          profilerPort,
			StatsInterval: statsInterval,
			Datadir:       profilerDir,
		})
		if err != nil {
			log.WithError(err).Fatal("profiler: error while starting")
		}

		profilerSvc.Start()
		defer func() {
			profilerSvc.Stop()
		}()
	}

	log.Infof("version: %s", version)
	log.Infof("commit: %s", commit)
	log.Infof("date: %s", date)

	repoManager, err := newRepoManager()
	if err != nil {
		log.WithError(err).Fatal("repository: error while initializing")
	}
	defer repoManager.Close()

	walletSvc := application.NewWalletService(repoManager, network.Name)

	serviceManager, err := interfaces.NewHTTPServiceManager(
		http_interface.ServiceConfig{
			Port:          port,
			WalletService: walletSvc,
		},
	)
	if err != nil {
		log.WithError(err).Fatal("service: error while initializing")
	}
	defer func() {
		serviceManager.Service.Stop()
	}()

	if err := serviceManager.Service.Start(); err != nil {
		log.WithError(err).Fatal("service: error while starting")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
}

func newRepoManager() (ports.RepoManager, error) {
	switch dbType {
	case "badger":
		return dbbadger.NewRepoManager(dbDir, log.New())
	default:
		return inmemory.NewRepoManager(), nil
	}
}
