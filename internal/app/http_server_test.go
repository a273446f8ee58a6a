package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/version"
)

func TestStartMetricsServer_Endpoints(t *testing.T) {
	logger := log.WithField("test", "http")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	srv := startMetricsServer(ctx, addr, logger, healthHandler)
	if srv == nil {
		t.Fatal("startMetricsServer should not return nil")
	}

	waitForServer(t, addr)

	expected := map[string]int{
		"/metrics": http.StatusOK,
		"/healthz": http.StatusOK,
		"/livez":   http.StatusOK,
		"/readyz":  http.StatusOK,
	}
	for path, status := range expected {
		resp, err := http.Get("http://" + addr + path)
		if err != nil {
			t.Fatalf("failed to get %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != status {
			t.Errorf("%s returned status %d, expected %d", path, resp.StatusCode, status)
		}
		if len(body) == 0 {
			t.Errorf("%s returned empty body", path)
		}
	}
}

func TestStartMetricsServer_ReadinessFollowsCheckers(t *testing.T) {
	logger := log.WithField("test", "http-readyz")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", healthcheck.NewFuncChecker("storage", func(context.Context) error {
		return errors.New("connection refused")
	}))
	startMetricsServer(ctx, addr, logger, healthHandler)
	waitForServer(t, addr)

	for _, path := range []string{"/readyz", "/healthz"} {
		resp, err := http.Get("http://" + addr + path)
		if err != nil {
			t.Fatalf("failed to get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, resp.StatusCode)
		}
	}

	resp, err := http.Get("http://" + addr + "/livez")
	if err != nil {
		t.Fatalf("failed to get /livez: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/livez must stay 200 while dependencies are down, got %d", resp.StatusCode)
	}
}

func TestStartMetricsServer_Shutdown(t *testing.T) {
	logger := log.WithField("test", "http-shutdown")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())

	startMetricsServer(ctx, addr, logger, healthcheck.NewHandler(version.GetVersion()))
	waitForServer(t, addr)

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := http.Get("http://" + addr + "/livez"); err != nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("server should be stopped after context cancellation")
}

func TestShutdownHTTP_NilServer(_ *testing.T) {
	shutdownHTTP(nil, time.Second, log.WithField("test", "http-nil"))
}

func TestStopGRPC_NilServer(_ *testing.T) {
	stopGRPC(nil, time.Second, log.WithField("test", "grpc-nil"))
}

// findFreePort находит свободный порт для тестов
func findFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

// waitForServer ждёт, пока addr начнёт принимать соединения.
func waitForServer(t *testing.T, addr string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server at %s did not start", addr)
}
