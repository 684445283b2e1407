package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupLogger(t *testing.T) {
	previousFormatter := log.StandardLogger().Formatter
	previousLevel := log.GetLevel()
	defer func() {
		log.SetFormatter(previousFormatter)
		log.SetLevel(previousLevel)
	}()

	setupLogger()

	formatter, ok := log.StandardLogger().Formatter.(*log.TextFormatter)
	if !ok {
		t.Fatalf("expected TextFormatter, got %T", log.StandardLogger().Formatter)
	}
	if !formatter.FullTimestamp {
		t.Error("expected FullTimestamp to be enabled")
	}
	if log.GetLevel() != log.InfoLevel {
		t.Errorf("expected info level, got %s", log.GetLevel())
	}
}
