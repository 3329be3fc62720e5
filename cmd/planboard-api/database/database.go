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

package database

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/omeid/pgerror"
	"github.com/open-planboard/planboard/internal"
	"go.uber.org/zap"
)

var (
	DBConnPool              *pgxpool.Pool
	GracefulShutdownChannel = make(chan os.Signal, 1)
)

// Connect sets up the connection pool and stores the handler in a global
// variable in database.go
func Connect(PQUser string, PQPassword string, PWDBName string, PQHost string, PQPort int, gracefulShutdownChannel chan os.Signal) {
	GracefulShutdownChannel = gracefulShutdownChannel

	psqlInfo := fmt.Sprintf(
		"host=%s port=%d user=%s "+"password=%s dbname=%s sslmode=require",
		PQHost,
		PQPort,
		PQUser,
		PQPassword,
		PWDBName)
	var err error

	parseConfig, err := pgxpool.ParseConfig(psqlInfo)
	if err != nil {
		zap.S().Fatalf("Failed to parse config: %s", err)
	}

	parseConfig.MinConns = int32(runtime.NumCPU())
	if parseConfig.MinConns < 4 {
		parseConfig.MinConns = 4
	}
	parseConfig.MaxConnIdleTime = 5 * time.Minute
	parseConfig.MaxConnLifetime = 10 * time.Minute

	connCtx, conncnc := context.WithTimeout(context.Background(), 5*time.Second)
	defer conncnc()
	DBConnPool, err = pgxpool.NewWithConfig(connCtx, parseConfig)
	if err != nil {
		zap.S().Fatalf("Failed to open database: %s", err)
	}
	go pingDB()
}

func pingDB() {
	for {
		err := DBConnPool.Ping(context.Background())
		if err != nil {
			zap.S().Errorf("Failed to ping database: %s", err)
		}
		time.Sleep(5 * time.Second)
	}
}

// Shutdown closes all database connections
func Shutdown() {
	DBConnPool.Close()
}

// ErrorHandling logs and handles postgresql errors
func ErrorHandling(sqlStatement string, err error, isCritical bool) {
	stackTrace := make([]byte, 1024*8)
	written := runtime.Stack(stackTrace, true)
	if e := pgerror.ConnectionException(err); e != nil {
		zap.S().Errorw(
			"PostgreSQL failed: ConnectionException",
			"error", err,
			"sqlStatement", sqlStatement,
			"stackTrace", string(stackTrace[:written]),
		)

		isCritical = true
	} else {
		zap.S().Errorw(
			"PostgreSQL failed.",
			"error", err,
			"sqlStatement", sqlStatement,
			"stackTrace", string(stackTrace[:written]),
		)
	}

	if isCritical {
		signal.Notify(GracefulShutdownChannel, syscall.SIGTERM)
	}
}

func Query(sql string, args ...any) (pgx.Rows, error) {
	return queryRepeatable(sql, 0, args...)
}

func QueryRow(sql string, args ...any) pgx.Row {
	return DBConnPool.QueryRow(context.Background(), sql, args...)
}

func Exec(sql string, args ...any) (pgconn.CommandTag, error) {
	return execRepeatable(sql, 0, args...)
}

func queryRepeatable(sql string, count int64, args ...any) (pgx.Rows, error) {
	rows, err := DBConnPool.Query(context.Background(), sql, args...)
	if err != nil {
		if count > 10 {
			return nil, err
		}
		// Check if err is a connection error
		if pgerror.ConnectionException(err) != nil {
			zap.S().Debugf("Failed to connect to database: %s [retrying]", err)
			internal.SleepBackedOff(count, 100*time.Millisecond, 10*time.Second)
			return queryRepeatable(sql, count+1, args...)
		}
		return nil, err
	}
	return rows, nil
}

func execRepeatable(sql string, count int64, args ...any) (pgconn.CommandTag, error) {
	tag, err := DBConnPool.Exec(context.Background(), sql, args...)
	if err != nil {
		if count > 10 {
			return tag, err
		}
		if pgerror.ConnectionException(err) != nil {
			zap.S().Debugf("Failed to connect to database: %s [retrying]", err)
			internal.SleepBackedOff(count, 100*time.Millisecond, 10*time.Second)
			return execRepeatable(sql, count+1, args...)
		}
		return tag, err
	}
	return tag, nil
}
