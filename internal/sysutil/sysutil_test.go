package sysutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetLogLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	for in, want := range map[string]zerolog.Level{
		"trace":     zerolog.TraceLevel,
		" Debug ":   zerolog.DebugLevel,
		"":          zerolog.InfoLevel,
		"WARNING":   zerolog.WarnLevel,
		"warn":      zerolog.WarnLevel,
		"error":     zerolog.ErrorLevel,
		"disabled":  zerolog.Disabled,
		"verbose!!": zerolog.InfoLevel,
	} {
		if got := SetLogLevel(in); got != want {
			t.Fatalf("SetLogLevel(%q) = %v, want %v", in, got, want)
		}
		if zerolog.GlobalLevel() != want {
			t.Fatalf("SetLogLevel(%q) left global level at %v", in, zerolog.GlobalLevel())
		}
	}
}

func TestConfigureLogger_JSONAndPretty(t *testing.T) {
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	ConfigureLogger(&buf, "info", false, "issue-digest", "v1.0.0")
	log.Info().Int64("issue_id", 7).Msg("hello")
	log.Debug().Msg("hidden")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["service"] != "issue-digest" || line["version"] != "v1.0.0" || line["message"] != "hello" {
		t.Fatalf("unexpected fields: %v", line)
	}
	if _, ok := line["time"]; !ok {
		t.Fatalf("missing timestamp: %v", line)
	}

	buf.Reset()
	ConfigureLogger(&buf, "debug", true, "issue-digest", "dev")
	log.Debug().Msg("pretty")
	if out := buf.String(); strings.HasPrefix(out, "{") || !strings.Contains(out, "pretty") {
		t.Fatalf("expected console output, got %q", out)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{" ", "\t"}, ""},
		{[]string{"", " v2 ", "v3"}, " v2 "},
		{[]string{"dev", "v1"}, "dev"},
	}
	for _, tc := range cases {
		if got := FirstNonEmpty(tc.in...); got != tc.want {
			t.Fatalf("FirstNonEmpty(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
