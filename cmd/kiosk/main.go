package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hackgods/gym-member-schedule/internal/api"
	"github.com/hackgods/gym-member-schedule/internal/auth"
	"github.com/hackgods/gym-member-schedule/internal/checkin"
	"github.com/hackgods/gym-member-schedule/internal/config"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

// kiosk runs the QR scanner against the API for one logged-in member. Lines
// typed on stdin are submitted as manual check-ins.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel).With("cmd", "kiosk")

	baseURL := strings.TrimRight(getEnv("KIOSK_API_BASE_URL", "http://localhost:"+cfg.HTTPPort), "/")
	email := getEnv("KIOSK_EMAIL", "john.garcia@example.com")
	password := getEnv("DEMO_PASSWORD", "password123")
	code := getEnv("KIOSK_QR_CODE", "GYM_LOCATION_001")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &client{baseURL: baseURL, http: &http.Client{Timeout: 10 * time.Second}}
	if err := c.login(rootCtx, email, password); err != nil {
		logger.Error("login failed", "email", email, "error", err)
		os.Exit(1)
	}
	logger.Info("kiosk ready", "member", email, "api", baseURL)

	source := checkin.NewSimulatedSource(code, 0.01, uint64(time.Now().UnixNano()))
	scanner := checkin.NewScanner(source, c.checkIn, checkin.ScannerOptions{
		OnStatus: func(u checkin.StatusUpdate) {
			fmt.Printf("[%s] %s\n", u.Status, u.Message)
		},
	}, logger)

	go func() {
		in := bufio.NewScanner(os.Stdin)
		for in.Scan() {
			if line := strings.TrimSpace(in.Text()); line != "" && !scanner.Manual(line) {
				fmt.Println("a check-in is already queued")
			}
		}
	}()

	if err := scanner.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scanner stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("kiosk shut down")
}

type client struct {
	baseURL string
	http    *http.Client
	token   string
}

func (c *client) login(ctx context.Context, email, password string) error {
	var res auth.LoginResult
	status, err := c.post(ctx, "/api/auth/login", api.LoginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("login returned %d", status)
	}
	c.token = res.Token
	return nil
}

func (c *client) checkIn(ctx context.Context, code string) error {
	var res api.ErrorResponse
	status, err := c.post(ctx, "/api/check-in", api.CheckInRequest{QRCode: code}, &res)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("check-in returned %d: %s", status, res.Details)
	}
	return nil
}

func (c *client) post(ctx context.Context, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s response: %w", path, err)
	}
	return resp.StatusCode, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
