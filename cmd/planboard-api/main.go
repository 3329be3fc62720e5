// Copyright 2024 The planboard authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"github.com/united-manufacturing-hub/umh-utils/logger"

	"github.com/open-planboard/planboard/cmd/planboard-api/database"
	"github.com/open-planboard/planboard/cmd/planboard-api/v1/services"
	"github.com/open-planboard/planboard/internal"
	"go.uber.org/zap"
)

var buildtime string

func main() {
	// Initialize zap logging
	logLevel, _ := env.GetAsString("LOGGING_LEVEL", false, "PRODUCTION")
	log := logger.New(logLevel)
	defer func(logger *zap.SugaredLogger) {
		err := logger.Sync()
		if err != nil {
			panic(err)
		}
	}(log)

	zap.S().Infof("This is planboard-api build date: %s", buildtime)

	internal.Initfgtrace()

	// Prometheus
	metricsPath := "/metrics"
	metricsPort := ":2112"
	zap.S().Debugf("Setting up metrics %s %v", metricsPath, metricsPort)

	http.Handle(metricsPath, promhttp.Handler())
	go func() {
		/* #nosec G114 */
		err := http.ListenAndServe(metricsPort, nil)
		if err != nil {
			zap.S().Errorf("Error starting metrics: %s", err)
		}
	}()

	zap.S().Debugf("Setting up healthcheck")

	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000000))

	// Postgres
	PQHost, _ := env.GetAsString("POSTGRES_HOST", false, "db")
	PQPort, _ := env.GetAsInt("POSTGRES_PORT", false, 5432)
	PQUser, err := env.GetAsString("POSTGRES_USER", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	PQPassword, err := env.GetAsString("POSTGRES_PASSWORD", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	PQDBName, err := env.GetAsString("POSTGRES_DATABASE", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}

	// Redis, backing the tiered cache and the change feed
	redisURI, _ := env.GetAsString("REDIS_URI", false, "redis:6379")
	redisPassword, _ := env.GetAsString("REDIS_PASSWORD", false, "")
	redisDB, _ := env.GetAsInt("REDIS_DB", false, 0)
	dryRun, _ := env.GetAsString("DRY_RUN", false, "")

	internal.InitCache(redisURI, redisPassword, redisDB, dryRun)
	internal.StartChangeFeedSubscriber()

	gs := internal.NewGracefulShutdown(func() error {
		database.Shutdown()
		return nil
	})

	database.Connect(PQUser, PQPassword, PQDBName, PQHost, PQPort, database.GracefulShutdownChannel)

	health.AddReadinessCheck("database", func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return database.DBConnPool.Ping(pingCtx)
	})
	health.AddReadinessCheck("shutdown", func() error {
		if gs.ShuttingDown() {
			return errors.New("shutting down")
		}
		return nil
	})
	go func() {
		/* #nosec G114 */
		err := http.ListenAndServe("0.0.0.0:8086", health)
		if err != nil {
			zap.S().Errorf("Error starting healthcheck: %s", err)
		}
	}()

	services.Setup()

	// Loading up user accounts
	accounts := gin.Accounts{}

	zap.S().Debugf("Loading accounts from environment..")

	for i := 1; i <= 100; i++ {
		tempUser, _ := env.GetAsString("PLANNER_NAME_"+strconv.Itoa(i), false, "")
		tempPassword, _ := env.GetAsString("PLANNER_PASSWORD_"+strconv.Itoa(i), false, "")
		if tempUser != "" && tempPassword != "" {
			zap.S().Infof("Added account for %s", tempUser)
			accounts[tempUser] = tempPassword
		}
	}

	// also add admin access
	RESTUser, err := env.GetAsString("PLANBOARD_USER", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	RESTPassword, err := env.GetAsString("PLANBOARD_PASSWORD", true, "")
	if err != nil {
		zap.S().Fatal(err)
	}
	accounts[RESTUser] = RESTPassword

	version, _ := env.GetAsString("VERSION", false, "1")

	zap.S().Debugf("Starting REST API..")

	go SetupRestAPI(accounts, version)

	gs.Wait()
}
