package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hackgods/gym-member-schedule/internal/api"
	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/internal/auth"
	"github.com/hackgods/gym-member-schedule/internal/config"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	PageRatio    float64
	DayRatio     float64
	CheckInRatio float64
	Emails       []string
	Password     string
	QRCode       string
	DaysToShow   int
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Login      OperationMetrics
	PageWindow OperationMetrics
	DayList    OperationMetrics
	CheckIn    OperationMetrics
}

// member is one simulated browser session.
type member struct {
	token  string
	start  appointment.Date
	offset int
}

type Simulator struct {
	config  SimConfig
	client  *http.Client
	logger  *logging.Logger
	metrics Metrics
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		logging.Default().Error("failed to load base config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(baseCfg.LogLevel).With("cmd", "simulate")

	cfg := loadConfig(baseCfg)
	if err := validateConfig(cfg); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger.Info("simulator starting",
		"duration", cfg.Duration,
		"workers", cfg.Workers,
		"page", cfg.PageRatio,
		"day", cfg.DayRatio,
		"checkin", cfg.CheckInRatio,
	)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig(base config.Config) SimConfig {
	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:"+base.HTTPPort), "/"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		PageRatio:    getFloat("SIM_PAGE_RATIO", 0.6),
		DayRatio:     getFloat("SIM_DAY_RATIO", 0.35),
		CheckInRatio: getFloat("SIM_CHECKIN_RATIO", 0.05),
		Emails:       strings.Split(getEnv("SIM_EMAILS", "john.garcia@example.com,maria.lopez@example.com"), ","),
		Password:     getEnv("DEMO_PASSWORD", "password123"),
		QRCode:       getEnv("SIM_QR_CODE", "GYM_LOCATION_001"),
		DaysToShow:   base.DaysToShow,
	}

	// Normalize ratios
	total := cfg.PageRatio + cfg.DayRatio + cfg.CheckInRatio
	if total > 0 {
		cfg.PageRatio /= total
		cfg.DayRatio /= total
		cfg.CheckInRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if len(cfg.Emails) == 0 || strings.TrimSpace(cfg.Emails[0]) == "" {
		return fmt.Errorf("SIM_EMAILS must list at least one member")
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info("simulation complete")
}

// worker logs in once and then behaves like a member on the schedule page:
// paging windows forward and back, reloading single days and now and then
// scanning in.
func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(workerID)))

	email := strings.TrimSpace(s.config.Emails[workerID%len(s.config.Emails)])
	token, ok := s.doLogin(ctx, email)
	if !ok {
		s.logger.Warn("worker could not log in", "worker", workerID, "email", email)
		return
	}
	m := &member{token: token, start: appointment.DateOf(time.Now())}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r := rng.Float64()
		switch {
		case r < s.config.PageRatio:
			s.doPage(ctx, m, rng)
		case r < s.config.PageRatio+s.config.DayRatio:
			s.doDayList(ctx, m, rng)
		default:
			s.doCheckIn(ctx, m)
		}
	}
}

func (s *Simulator) doLogin(ctx context.Context, email string) (string, bool) {
	body, _ := json.Marshal(api.LoginRequest{Email: email, Password: s.config.Password})

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.metrics.Login.Record(latency, false, false)
		return "", false
	}
	defer resp.Body.Close()

	var res auth.LoginResult
	ok := resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&res) == nil && res.Token != ""
	s.metrics.Login.Record(latency, ok, false)
	return res.Token, ok
}

// doPage moves the member's window one page forward or back, never more
// than four pages away from today.
func (s *Simulator) doPage(ctx context.Context, m *member, rng *rand.Rand) {
	step := s.config.DaysToShow
	if rng.IntN(2) == 0 {
		step = -step
	}
	if next := m.offset + step; next > 4*s.config.DaysToShow || next < -4*s.config.DaysToShow {
		step = -step
	}
	m.offset += step

	q := url.Values{}
	q.Set("start", m.start.Key())
	q.Set("offset", strconv.Itoa(m.offset))

	status, latency := s.get(ctx, m, "/api/schedule?"+q.Encode())
	s.metrics.PageWindow.Record(latency, status == http.StatusOK, false)
}

func (s *Simulator) doDayList(ctx context.Context, m *member, rng *rand.Rand) {
	day := m.start.AddDays(m.offset + rng.IntN(s.config.DaysToShow))
	status, latency := s.get(ctx, m, "/api/appointments?date="+day.Key())
	s.metrics.DayList.Record(latency, status == http.StatusOK, false)
}

func (s *Simulator) doCheckIn(ctx context.Context, m *member) {
	body, _ := json.Marshal(api.CheckInRequest{QRCode: s.config.QRCode})

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/api/check-in", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.token)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success, conflict := false, false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
		// repeat scans inside the cooldown are expected
		conflict = resp.StatusCode == http.StatusConflict
	}
	s.metrics.CheckIn.Record(latency, success, conflict)
}

func (s *Simulator) get(ctx context.Context, m *member, path string) (int, time.Duration) {
	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+path, nil)
	req.Header.Set("Authorization", "Bearer "+m.token)

	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, latency
	}
	defer resp.Body.Close()
	return resp.StatusCode, latency
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Login", &s.metrics.Login)
	printOperationReport("Schedule window", &s.metrics.PageWindow)
	printOperationReport("Day list", &s.metrics.DayList)
	printOperationReport("Check-in", &s.metrics.CheckIn)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
