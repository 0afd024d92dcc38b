package utils

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		secrets []string
		want    string
	}{
		{"single", "GET /x?access_token=abc123 failed", []string{"abc123"}, "GET /x?access_token=[REDACTED] failed"},
		{"repeated", "abc abc", []string{"abc"}, "[REDACTED] [REDACTED]"},
		{"empty secret ignored", "nothing here", []string{""}, "nothing here"},
		{"several", "a=one b=two", []string{"one", "two"}, "a=[REDACTED] b=[REDACTED]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Redact(tc.in, tc.secrets...); got != tc.want {
				t.Fatalf("Redact(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	if got := MaskToken(""); got != "" {
		t.Fatalf("expected empty mask, got %q", got)
	}
	if got := MaskToken("EAABsecretvalue"); got != "EAAB…(15)" {
		t.Fatalf("unexpected mask: %q", got)
	}
	if got := MaskToken("ab"); got != "ab…(2)" {
		t.Fatalf("unexpected mask: %q", got)
	}
}

func TestSetLogLevel(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	SetLogLevel("DEBUG")
	if Log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", Log.GetLevel())
	}
	SetLogLevel("warn")
	if Log.GetLevel() != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %v", Log.GetLevel())
	}
}
