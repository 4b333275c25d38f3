package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for in, expected := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", in, err)
		}
		if got != expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", in, got, expected)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Errorf("expected error for invalid level")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	if err := Init("info", &buf); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Init("warn", nil)

	log := logger.GetLogger("store")
	log.Debugf("hidden %d", 1)
	log.Infof("visible %d", 2)
	log.Warningf("warned")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "INFO  | store    | visible 2") {
		t.Errorf("expected formatted info line, got %q", out)
	}
	if !strings.Contains(out, "WARN  | store    | warned") {
		t.Errorf("expected formatted warning line, got %q", out)
	}

	if err := Init("loud", &buf); err == nil {
		t.Errorf("expected error for invalid level")
	}
}
