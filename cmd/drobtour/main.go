// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

//go:build linux

// Package main implements the drobtour guided tour service.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ghaith435/DrobSaudia-sub001/internal/config"
	"github.com/ghaith435/DrobSaudia-sub001/internal/logger"
	"github.com/ghaith435/DrobSaudia-sub001/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT,
		os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.NewLogger(slog.LevelError, os.Stderr)

	// Read config
	confRead := false
	confPath := flag.String("config", "", "path to the config file")
	tourID := flag.String("tour", "", "tour to start right away")
	flag.Parse()

	// Read default config
	conf, err := config.New()
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	// If config file was specified, read it
	if *confPath != "" {
		file := filepath.Base(*confPath)
		path := filepath.Dir(*confPath)
		conf, err = config.NewFromFile(path, file)
		if err != nil {
			log.Error("failed to load config from file", logger.Err(err))
			os.Exit(1)
		}
		confRead = true
	}

	// Check if we have a config file in the default location
	if path, file := findConfigFile(); !confRead && (path != "" && file != "") {
		conf, err = config.NewFromFile(path, file)
		if err != nil {
			log.Error("failed to load config from file", logger.Err(err))
			os.Exit(1)
		}
	}

	log = logger.NewLogger(conf.LogLevel, os.Stderr)

	// Initialize the service
	serv, err := service.New(conf, log)
	if err != nil {
		log.Error("failed to initialize drobtour service", logger.Err(err))
		os.Exit(1)
	}

	// Start the service loop
	log.Info("starting drobtour service", slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date))
	if err = serv.Run(ctx, *tourID); err != nil {
		log.Error("failed to run drobtour service", logger.Err(err))
	}
	log.Info("shutting down drobtour service")
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "drobtour", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
