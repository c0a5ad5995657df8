package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) Config {
	t.Helper()
	// Grab a free port, then hand it to run.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	cfg := defaultConfig()
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = port
	cfg.GPIO.Driver = "fake"
	return cfg
}

func TestRun_ClaimFailureStopsBeforeListening(t *testing.T) {
	cfg := testConfig(t)
	d := newFakeDriver()
	d.FailClaim(cfg.GPIO.Pins.Pump, errors.New("no gpio"))

	errc := make(chan error, 1)
	go func() { errc <- run(context.Background(), cfg, d) }()

	select {
	case err := <-errc:
		var ierr *HardwareInitError
		if !errors.As(err, &ierr) {
			t.Fatalf("run error = %v, want *HardwareInitError", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after a claim failure")
	}

	if conn, err := net.Dial("tcp", cfg.HTTP.Addr()); err == nil {
		conn.Close()
		t.Error("listener accepted a connection after failed startup")
	}
}

func TestServe_ListenerFailureReturns(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ln.Close()

	pc, _ := newTestController(t)
	srv := NewServer(defaultConfig().HTTP, pc, brokenPage{})

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(context.Background(), ln) }()
	select {
	case err := <-errc:
		if err == nil {
			t.Error("Serve on a closed listener returned nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return on a closed listener")
	}
}

func TestRun_ServesAndReleasesPinsOnShutdown(t *testing.T) {
	cfg := testConfig(t)
	d := newFakeDriver()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- run(ctx, cfg, d) }()

	url := "http://" + cfg.HTTP.Addr() + "/turn_on_light"
	var (
		resp *http.Response
		err  error
	)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "Освещение включено!" {
		t.Fatalf("GET /turn_on_light = %d %q", resp.StatusCode, body)
	}
	if level, _ := d.PinLevel(cfg.GPIO.Pins.Light); level != High {
		t.Errorf("light pin = %s, want HIGH", level)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	for _, pin := range []int{cfg.GPIO.Pins.Pump, cfg.GPIO.Pins.Light} {
		if _, claimed := d.PinLevel(pin); claimed {
			t.Errorf("pin %d still claimed after shutdown", pin)
		}
	}
}
