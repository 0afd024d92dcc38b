package utils

import (
	"path/filepath"
	"testing"
)

func TestDBLockRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "runs.sqlite")

	l, err := NewDBLock(dbPath)
	if err != nil {
		t.Fatalf("NewDBLock: %v", err)
	}
	if err := l.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if filepath.Base(l.path) != "runs.sqlite.lock" {
		t.Fatalf("unexpected lock path %s", l.path)
	}
}

func TestGetAbsDBPathDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p, err := GetAbsDBPath("")
	if err != nil {
		t.Fatalf("GetAbsDBPath: %v", err)
	}
	if filepath.Base(p) != "metascope.sqlite" {
		t.Fatalf("unexpected default path %s", p)
	}
}
