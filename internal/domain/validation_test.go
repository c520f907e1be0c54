package domain

import (
	"errors"
	"math"
	"testing"
)

func TestValidateThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		wantErr   bool
	}{
		{name: "zero", threshold: 0, wantErr: false},
		{name: "default", threshold: 0.85, wantErr: false},
		{name: "one", threshold: 1, wantErr: false},
		{name: "above one matches nothing", threshold: 1.01, wantErr: false},
		{name: "negative", threshold: -0.1, wantErr: true},
		{name: "nan", threshold: math.NaN(), wantErr: true},
		{name: "inf", threshold: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThreshold(tt.threshold)
			if tt.wantErr && err == nil {
				t.Error("ValidateThreshold() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateThreshold() unexpected error: %v", err)
			}
			if err != nil && !errors.Is(err, ErrConfig) {
				t.Errorf("ValidateThreshold() error should be a config error, got %v", err)
			}
		})
	}
}

func TestValidateColumnName(t *testing.T) {
	if err := ValidateColumnName("--id-column", "id"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateColumnName("--id-column", "  "); !errors.Is(err, ErrConfig) {
		t.Errorf("expected config error for blank column, got %v", err)
	}
}

func TestValidateLogLevel(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"WARN", false},
		{"error", false},
		{"verbose", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := ValidateLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"table", "json", "yaml"} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) unexpected error: %v", f, err)
		}
	}
	if err := ValidateFormat("xml"); err == nil {
		t.Error("ValidateFormat(xml) expected error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "config", err: ConfigErrorf("bad"), want: 2},
		{name: "schema", err: SchemaErrorf("c.csv", "missing column %q", "id"), want: 3},
		{name: "not found", err: NotFound("c.csv", errors.New("no such file")), want: 4},
		{name: "io", err: IOError("out.csv", errors.New("disk full")), want: 5},
		{name: "other", err: errors.New("boom"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := IOError("out.csv", cause)

	if !errors.Is(err, ErrIO) {
		t.Error("expected errors.Is(err, ErrIO)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is(err, cause)")
	}
	if got := err.Error(); got != "io error: out.csv: permission denied" {
		t.Errorf("unexpected message: %q", got)
	}
}
