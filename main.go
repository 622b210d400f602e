package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jinzhu/configor"
	log "github.com/sirupsen/logrus"
)

func main() {
	configFilePath := flag.String("configfile", "", "Configuration File Path")
	dryRun := flag.Bool("dryrun", false, "Log planned uploads and deletes without touching the bucket")
	flag.Parse()

	if *configFilePath == "" {
		log.Fatal("Required flag -configfile not set")
	}

	var appConfig AppConfig
	configErr := configor.Load(&appConfig, *configFilePath)
	if configErr != nil {
		log.Fatal(fmt.Sprintf("Config load error: %s", configErr))
	}
	if *dryRun {
		appConfig.Sync.DryRun = true
	}
	appConfig.InitRuntime()

	log.Info("Loaded config:")
	for _, line := range appConfig.ConfigStringArray() {
		log.Info(line)
	}

	client, clientErr := appConfig.ClientFromConfig()
	if clientErr != nil {
		log.Fatal(fmt.Sprintf("Client setup error: %s", clientErr))
	}

	var notifier Notifier
	if appConfig.Notify.Topic != "" {
		var notifierErr error
		notifier, notifierErr = NewSNSNotifier(appConfig)
		if notifierErr != nil {
			log.Fatal(fmt.Sprintf("Notifier setup error: %s", notifierErr))
		}
	}

	lock := &sync.Mutex{}
	if appConfig.Sync.Interval > 0 {
		scheduler := gocron.NewScheduler(time.UTC)
		_, jobErr := scheduler.Every(appConfig.Sync.Interval).Minutes().Do(func() {
			if _, syncErr := doSync(client, appConfig.Sync, notifier, lock); syncErr != nil {
				log.Error(fmt.Sprintf("Sync error: %s", syncErr))
			}
		})
		if jobErr != nil {
			log.Fatal(fmt.Sprintf("Scheduler error: %s", jobErr))
		}
		log.Info(fmt.Sprintf("Starting scheduler, syncing every %d minutes", appConfig.Sync.Interval))
		scheduler.StartBlocking()
		return
	}

	if _, syncErr := doSync(client, appConfig.Sync, notifier, lock); syncErr != nil {
		log.Error(fmt.Sprintf("Sync error: %s", syncErr))
		os.Exit(1)
	}
}
