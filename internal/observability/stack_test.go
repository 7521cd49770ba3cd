package observability

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/riskibarqy/volleyball-bot/internal/config"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
)

func TestStart_AllDisabled(t *testing.T) {
	tests := map[string]config.Config{
		"nothing enabled":         {ServiceName: "volleyball-bot", AppEnv: config.EnvDev},
		"uptrace without dsn":     {UptraceEnabled: true, ServiceName: "volleyball-bot"},
		"uptrace dsn but toggled": {UptraceDSN: "https://token@uptrace.example.com/1"},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			stack, err := Start(context.Background(), cfg, logging.NewNop())
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			if got := stack.Enabled(); len(got) != 0 {
				t.Fatalf("expected no exporters, got %v", got)
			}
			if err := stack.Shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
		})
	}
}

func TestStart_PprofServesAndStops(t *testing.T) {
	stack, err := Start(context.Background(), config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := stack.Enabled(); len(got) != 1 || got[0] != "pprof" {
		t.Fatalf("expected pprof only, got %v", got)
	}

	resp, err := http.Get("http://" + stack.pprofAddr + "/debug/pprof/")
	if err != nil {
		t.Fatalf("get pprof index: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from pprof index, got %d", resp.StatusCode)
	}

	if err := stack.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := stack.Enabled(); len(got) != 0 {
		t.Fatalf("expected no exporters after shutdown, got %v", got)
	}
}

func TestStart_PprofPortTaken(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	if _, err := Start(context.Background(), config.Config{PprofEnabled: true, PprofAddr: ln.Addr().String()}, logging.NewNop()); err == nil {
		t.Fatalf("expected bind error")
	}
}

func TestShutdown_NilStack(t *testing.T) {
	var s *Stack
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil stack shutdown: %v", err)
	}
}
