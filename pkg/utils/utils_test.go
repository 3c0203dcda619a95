package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{-5, "0 B"},
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{10 * MB, "10 MiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"10MiB", 10 * MB, false},
		{"1 KiB", KB, false},
		{"1KB", 1000, false},
		{"2048", 2048, false},
		{"", 0, true},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCopyAndHashMatchesHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	content := strings.Repeat("codeclean ", 1000)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, sum, err := CopyAndHash(&buf, strings.NewReader(content))
	if err != nil {
		t.Fatalf("CopyAndHash: %v", err)
	}
	if n != int64(len(content)) || buf.String() != content {
		t.Fatalf("copied %d bytes, want %d", n, len(content))
	}

	fileSum, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if sum != fileSum {
		t.Errorf("hash mismatch: %s vs %s", sum, fileSum)
	}
}
