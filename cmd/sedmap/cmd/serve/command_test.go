package serve

import (
	"context"
	"testing"
	"time"

	"github.com/agentstation/sedmap/internal/appcontext"
	"github.com/agentstation/sedmap/internal/cmd/cmdtest"
	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
)

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"8080", 8080, false},
		{"1", 1, false},
		{"65535", 65535, false},
		{"0", 0, true},
		{"65536", 0, true},
		{"http", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePort(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePort(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parsePort(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfigFromFlags(t *testing.T) {
	t.Setenv(EnvPort, "")
	t.Setenv(EnvHost, "")

	cmd := NewCommand(&appcontext.Mock{})
	if err := cmd.ParseFlags([]string{"--port", "9000", "--cors-origins", "https://a.example,https://b.example", "--prefix", "/sed"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	cfg, err := configFromFlags(cmd)
	if err != nil {
		t.Fatalf("configFromFlags: %v", err)
	}
	if cfg.Port != 9000 || cfg.Host != "localhost" || cfg.PathPrefix != "/sed" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !cfg.CORSEnabled || len(cfg.CORSOrigins) != 2 {
		t.Errorf("cors-origins should enable CORS, got %+v", cfg)
	}
	if !cfg.MetricsEnabled {
		t.Error("metrics should default on")
	}
}

func TestConfigFromFlags_Environment(t *testing.T) {
	t.Setenv(EnvPort, "9100")
	t.Setenv(EnvHost, "0.0.0.0")

	cmd := NewCommand(&appcontext.Mock{})
	cfg, err := configFromFlags(cmd)
	if err != nil {
		t.Fatalf("configFromFlags: %v", err)
	}
	if cfg.Port != 9100 || cfg.Host != "0.0.0.0" {
		t.Errorf("environment not applied: %s", cfg.Addr())
	}

	cmd = NewCommand(&appcontext.Mock{})
	if err := cmd.ParseFlags([]string{"--port", "9200"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	cfg, err = configFromFlags(cmd)
	if err != nil {
		t.Fatalf("configFromFlags: %v", err)
	}
	if cfg.Port != 9200 {
		t.Errorf("flag should win over environment, got %d", cfg.Port)
	}

	t.Setenv(EnvPort, "http")
	if _, err := configFromFlags(NewCommand(&appcontext.Mock{})); !errors.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestServe_CatalogError(t *testing.T) {
	app := &appcontext.Mock{
		CatalogFunc: func(context.Context) (catalogs.Catalog, error) {
			return nil, errors.NewNotFoundError("file", "SIMPLE.sqlite")
		},
	}
	_, err := cmdtest.Run(t, NewCommand(app), "--port", "0")
	if !errors.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Setenv(EnvPort, "")
	t.Setenv(EnvHost, "")

	cmd := NewCommand(cmdtest.App(t, "json"))
	cmd.SetArgs([]string{"--host", "127.0.0.1", "--port", "0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
