/*
 * Copyright (c) 2025, Brokkr Project (https://github.com/brokkr-id).
 *
 * Brokkr Project licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package main is the entry point for starting the Brokkr server.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/brokkr-id/brokkr/internal/system/config"
	"github.com/brokkr-id/brokkr/internal/system/log"
)

func main() {
	logger := log.GetLogger()

	brokkrHome := getBrokkrHome(logger)

	cfg := initBrokkrConfigurations(logger, brokkrHome)
	if cfg == nil {
		logger.Fatal("Failed to initialize configurations")
	}

	mux := initMultiplexer(logger)
	if mux == nil {
		logger.Fatal("Failed to initialize multiplexer")
	}

	if cfg.Server.HTTPOnly {
		logger.Info("TLS is not enabled, starting server without TLS")
		startHTTPServer(logger, cfg, mux)
	} else {
		startTLSServer(logger, cfg, mux, brokkrHome)
	}
}

// getBrokkrHome retrieves and returns the Brokkr home directory.
func getBrokkrHome(logger *log.Logger) string {
	projectHome := ""
	projectHomeFlag := flag.String("brokkrHome", "", "Path to Brokkr home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		logger.Info("Using brokkrHome from command line argument", log.String("brokkrHome", *projectHomeFlag))
		projectHome = *projectHomeFlag
	} else {
		// Fall back to the current working directory.
		dir, dirErr := os.Getwd()
		if dirErr != nil {
			logger.Fatal("Failed to get current working directory", log.Error(dirErr))
		}
		projectHome = dir
	}

	return projectHome
}

// initBrokkrConfigurations loads the deployment configuration and initializes
// the runtime singleton.
func initBrokkrConfigurations(logger *log.Logger, brokkrHome string) *config.Config {
	configFilePath := path.Join(brokkrHome, "repository/conf/deployment.yaml")
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		logger.Fatal("Failed to load configurations", log.Error(err))
	}

	if err := config.InitializeBrokkrRuntime(brokkrHome, cfg); err != nil {
		logger.Fatal("Failed to initialize brokkr runtime", log.Error(err))
	}

	return cfg
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer(logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	if err := registerServices(mux); err != nil {
		logger.Fatal("Failed to register the services", log.Error(err))
	}

	return mux
}

// startTLSServer starts the HTTPS server using the configured certificate pair.
func startTLSServer(logger *log.Logger, cfg *config.Config, mux *http.ServeMux, brokkrHome string) {
	server, serverAddr := createHTTPServer(logger, cfg, mux)

	certFile := path.Join(brokkrHome, cfg.Security.CertFile)
	keyFile := path.Join(brokkrHome, cfg.Security.KeyFile)

	logger.Info("Brokkr server started (HTTPS)...", log.String("address", serverAddr))

	if err := server.ListenAndServeTLS(certFile, keyFile); err != nil {
		logger.Fatal("Failed to serve requests", log.Error(err))
	}
}

// startHTTPServer starts the HTTP server without TLS.
func startHTTPServer(logger *log.Logger, cfg *config.Config, mux *http.ServeMux) {
	server, serverAddr := createHTTPServer(logger, cfg, mux)

	logger.Info("Brokkr server started (HTTP)...", log.String("address", serverAddr))

	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Failed to serve HTTP requests", log.Error(err))
	}
}

// createHTTPServer creates and configures an HTTP server with common settings.
func createHTTPServer(logger *log.Logger, cfg *config.Config, mux *http.ServeMux) (*http.Server, string) {
	wrappedMux := log.AccessLogHandler(logger, mux)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)

	server := &http.Server{
		Addr:              serverAddr,
		Handler:           wrappedMux,
		ReadHeaderTimeout: 10 * time.Second, // Mitigate Slowloris attacks
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return server, serverAddr
}
