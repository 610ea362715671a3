package sysutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	cases := map[string]struct {
		in   string
		want zerolog.Level
	}{
		"debug":        {in: "debug", want: zerolog.DebugLevel},
		"info":         {in: "info", want: zerolog.InfoLevel},
		"warn":         {in: "warn", want: zerolog.WarnLevel},
		"warning":      {in: "warning", want: zerolog.WarnLevel},
		"error":        {in: "error", want: zerolog.ErrorLevel},
		"fatal":        {in: "fatal", want: zerolog.FatalLevel},
		"panic":        {in: "panic", want: zerolog.PanicLevel},
		"mixed case":   {in: "  DeBuG ", want: zerolog.DebugLevel},
		"empty string": {in: "", want: zerolog.InfoLevel},
		"unknown":      {in: "verbose", want: zerolog.InfoLevel},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			SetLogLevel(tc.in)
			if got := zerolog.GlobalLevel(); got != tc.want {
				t.Fatalf("SetLogLevel(%q): global level = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSetupLoggingTo_JSONByDefault(t *testing.T) {
	orig := log.Logger
	t.Cleanup(func() {
		log.Logger = orig
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	var buf bytes.Buffer
	SetupLoggingTo(&buf, "debug", false)

	log.Debug().Str("component", "boot").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"component":"boot"`) {
		t.Fatalf("expected JSON output, got %q", out)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("global level = %v, want debug", zerolog.GlobalLevel())
	}
}

func TestSetupLoggingTo_PrettyConsole(t *testing.T) {
	orig := log.Logger
	t.Cleanup(func() {
		log.Logger = orig
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	var buf bytes.Buffer
	SetupLoggingTo(&buf, "info", true)

	log.Info().Msg("pretty please")

	out := buf.String()
	if strings.Contains(out, `"message"`) {
		t.Fatalf("expected console output, got JSON: %q", out)
	}
	if !strings.Contains(out, "pretty please") {
		t.Fatalf("expected message in console output, got %q", out)
	}
}
