package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInitLoggerConfiguresShared(t *testing.T) {
	l := InitLogger(logrus.DebugLevel, "json")
	if l != GetLogger() {
		t.Fatal("InitLogger should configure the shared logger")
	}
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want JSON", l.Formatter)
	}

	InitLogger(logrus.InfoLevel, "text")
	if _, ok := l.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("formatter = %T, want text", l.Formatter)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("warn") != logrus.WarnLevel {
		t.Error("warn should parse")
	}
	if ParseLevel("loud") != logrus.InfoLevel {
		t.Error("unknown levels fall back to info")
	}
}
