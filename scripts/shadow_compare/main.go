// Command shadow_compare replays read requests against this API and the legacy offers service and reports
// responses that disagree.
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080/api/v1", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "Legacy API base URL")
	flag.StringVar(&targetsPath, "targets", "", "Path to JSON targets file; built-in offer targets when empty")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	logr, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logr.Sync() //nolint:errcheck

	targets, err := loadTargets(targetsPath)
	if err != nil {
		logr.Fatal("failed to load targets", zap.Error(err))
	}

	client := &http.Client{Timeout: timeout}
	var breaking, optional int
	for _, t := range targets {
		comp := compareTarget(client, goBase, legacyBase, t)
		report(logr, comp)
		switch {
		case comp.breaking():
			breaking++
		case comp.Error != nil || !comp.StatusMatch || !comp.BodyMatch:
			optional++
		}
	}

	logr.Info("shadow compare finished", zap.Int("breaking", breaking), zap.Int("optional", optional))
	if breaking > 0 {
		os.Exit(1)
	}
}

func report(logr *zap.Logger, res comparison) {
	fields := []zap.Field{
		zap.String("method", res.Target.Method),
		zap.String("path", res.Target.Path),
		zap.Bool("critical", res.Target.Critical),
		zap.Int("go_status", res.GoStatus),
		zap.Int("legacy_status", res.LegacyStatus),
		zap.Duration("go_duration", res.DurationGo),
		zap.Duration("legacy_duration", res.DurationLegacy),
	}
	switch {
	case res.Error != nil:
		logr.Error("comparison failed", append(fields, zap.Error(res.Error))...)
	case !res.StatusMatch || !res.BodyMatch:
		logr.Warn("responses differ", append(fields, zap.Bool("status_match", res.StatusMatch), zap.Bool("body_match", res.BodyMatch))...)
	default:
		logr.Info("responses match", fields...)
	}
}
