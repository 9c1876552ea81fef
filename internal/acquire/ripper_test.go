package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// writeScript writes an executable shell script standing in for the ripper.
// It receives "-d <device> <track> <dest>".
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-ripper")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestCommandRipperSuccess(t *testing.T) {
	r := &CommandRipper{Command: writeScript(t, `printf 'RIFF%s' "$3" > "$4"`), Device: "/dev/fake", Timeout: 5 * time.Second}
	dest := filepath.Join(t.TempDir(), "track_03.wav")
	if err := r.Rip(context.Background(), 3, dest); err != nil {
		t.Fatalf("Rip: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "RIFF3" {
		t.Fatalf("unexpected output %q", data)
	}
}

func TestCommandRipperDeviceBusy(t *testing.T) {
	r := &CommandRipper{Command: writeScript(t, `echo "Device or resource busy" >&2; exit 1`), Device: "/dev/fake"}
	err := r.Rip(context.Background(), 1, filepath.Join(t.TempDir(), "track_01.wav"))
	if !errors.Is(err, ErrDeviceBusy) {
		t.Fatalf("expected ErrDeviceBusy, got %v", err)
	}
	var ae *Error
	if !errors.As(err, &ae) || ae.Track != 1 || ae.Kind != KindDeviceBusy {
		t.Fatalf("unexpected error %#v", err)
	}
}

func TestCommandRipperEmptyOutputFails(t *testing.T) {
	r := &CommandRipper{Command: writeScript(t, `: > "$4"`), Device: "/dev/fake"}
	dest := filepath.Join(t.TempDir(), "track_02.wav")
	err := r.Rip(context.Background(), 2, dest)
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatal("expected empty output to be removed")
	}
}

func TestCommandRipperTimeout(t *testing.T) {
	r := &CommandRipper{
		Command:   writeScript(t, `printf 'partial' > "$4"; exec sleep 30`),
		Device:    "/dev/fake",
		Timeout:   200 * time.Millisecond,
		KillGrace: 200 * time.Millisecond,
	}
	dest := filepath.Join(t.TempDir(), "track_05.wav")

	start := time.Now()
	err := r.Rip(context.Background(), 5, dest)
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("timeout took %v, expected it to be bounded", elapsed)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind != KindTimeout {
		t.Fatalf("expected timeout kind, got %#v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatal("expected partial output to be removed")
	}
}

func TestCommandRipperCancelled(t *testing.T) {
	r := &CommandRipper{Command: writeScript(t, `exec sleep 30`), KillGrace: 100 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	err := r.Rip(ctx, 1, filepath.Join(t.TempDir(), "track_01.wav"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatal("cancellation must not be reported as a timeout")
	}
}

func TestCommandRipperMissingCommand(t *testing.T) {
	r := &CommandRipper{Command: filepath.Join(t.TempDir(), "no-such-ripper")}
	err := r.Rip(context.Background(), 1, filepath.Join(t.TempDir(), "track_01.wav"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClassifyOutput(t *testing.T) {
	tests := []struct {
		out  string
		want Kind
	}{
		{"Device or resource busy", KindDeviceBusy},
		{"Unable to open disc.  Is there an audio CD in the drive?", KindNotFound},
		{"No medium found", KindNotFound},
		{"read error at sector 1234", KindFailed},
	}
	for _, tc := range tests {
		if got := classifyOutput(tc.out); got != tc.want {
			t.Fatalf("classifyOutput(%q) = %v, want %v", tc.out, got, tc.want)
		}
	}
}
