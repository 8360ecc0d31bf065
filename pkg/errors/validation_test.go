package errors

import (
	"strings"
	"testing"
)

func TestValidateOutputRoot(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{name: "absolute path", dir: "/tmp/docs", wantErr: false},
		{name: "empty", dir: "", wantErr: true},
		{name: "relative path", dir: "docs/api", wantErr: true},
		{name: "dot relative", dir: "./docs", wantErr: true},
		{name: "null byte", dir: "/tmp/\x00docs", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputRoot(tt.dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputRoot(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSymbolName(t *testing.T) {
	tests := []struct {
		name    string
		symbol  string
		wantErr bool
	}{
		{name: "simple", symbol: "wandb", wantErr: false},
		{name: "dotted", symbol: "wandb.sdk.wandb_run.Run", wantErr: false},
		{name: "private segment", symbol: "wandb._internal.helper", wantErr: false},
		{name: "varargs marker", symbol: "*args", wantErr: false},
		{name: "kwargs marker", symbol: "**kwargs", wantErr: false},
		{name: "empty", symbol: "", wantErr: true},
		{name: "path separator", symbol: "wandb/sdk", wantErr: true},
		{name: "trailing dot", symbol: "wandb.", wantErr: true},
		{name: "leading digit", symbol: "1wandb", wantErr: true},
		{name: "control character", symbol: "wandb\x01", wantErr: true},
		{name: "too long", symbol: strings.Repeat("a", 513), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSymbolName(tt.symbol)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSymbolName(%q) error = %v, wantErr %v", tt.symbol, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSnapshotPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "json file", path: "api.json", wantErr: false},
		{name: "uppercase extension", path: "API.JSON", wantErr: false},
		{name: "empty", path: "", wantErr: true},
		{name: "wrong extension", path: "api.yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSnapshotPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSnapshotPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURLPrefix(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https", url: "https://github.com/wandb/wandb/blob/main/", wantErr: false},
		{name: "http", url: "http://example.com/src/", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "file scheme", url: "file:///etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURLPrefix(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURLPrefix(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
