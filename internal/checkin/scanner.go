package checkin

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

type ScanStatus string

const (
	ScanReady      ScanStatus = "ready"
	ScanProcessing ScanStatus = "processing"
	ScanSuccess    ScanStatus = "success"
	ScanError      ScanStatus = "error"
)

const (
	MessageReady      = "Scan QR code to check in"
	MessageProcessing = "Processing check-in..."
	MessageSuccess    = "Successfully checked in!"
	MessageFailed     = "Check-in failed. Please try again."
)

type StatusUpdate struct {
	Status  ScanStatus
	Message string
	Code    string
	Err     error
}

// FrameSource yields a decoded QR code when one is in view.
type FrameSource interface {
	Next(ctx context.Context) (code string, ok bool, err error)
}

// SimulatedSource stands in for a camera: each frame detects Code with the
// given probability.
type SimulatedSource struct {
	Code        string
	Probability float64
	rng         *rand.Rand
}

func NewSimulatedSource(code string, probability float64, seed uint64) *SimulatedSource {
	return &SimulatedSource{
		Code:        code,
		Probability: probability,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *SimulatedSource) Next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s.rng.Float64() < s.Probability {
		return s.Code, true, nil
	}
	return "", false, nil
}

// Submit performs the check-in for a scanned code.
type Submit func(ctx context.Context, code string) error

type Sleeper func(ctx context.Context, d time.Duration) error

type ScannerOptions struct {
	Interval     time.Duration // frame poll interval, 500ms
	SuccessPause time.Duration // pause after a successful check-in, 3s
	FailurePause time.Duration // pause after a failed check-in, 2s
	OnStatus     func(StatusUpdate)
	Sleep        Sleeper
}

// Scanner polls a FrameSource and submits detected codes. Scanning stops
// while a code is processed and resumes after a pause.
type Scanner struct {
	source FrameSource
	submit Submit
	opts   ScannerOptions
	manual chan string
	logger *logging.Logger
}

func NewScanner(source FrameSource, submit Submit, opts ScannerOptions, logger *logging.Logger) *Scanner {
	if opts.Interval <= 0 {
		opts.Interval = 500 * time.Millisecond
	}
	if opts.SuccessPause <= 0 {
		opts.SuccessPause = 3 * time.Second
	}
	if opts.FailurePause <= 0 {
		opts.FailurePause = 2 * time.Second
	}
	if opts.OnStatus == nil {
		opts.OnStatus = func(StatusUpdate) {}
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scanner{
		source: source,
		submit: submit,
		opts:   opts,
		manual: make(chan string, 1),
		logger: logger.With("component", "scanner"),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Manual queues a typed-in code. It returns false for an empty code or when
// one is already waiting.
func (s *Scanner) Manual(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	select {
	case s.manual <- code:
		return true
	default:
		return false
	}
}

// Run scans until ctx is done.
func (s *Scanner) Run(ctx context.Context) error {
	s.opts.OnStatus(StatusUpdate{Status: ScanReady, Message: MessageReady})

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case code := <-s.manual:
			if err := s.process(ctx, code); err != nil {
				return err
			}
		case <-ticker.C:
			code, ok, err := s.source.Next(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("frame read failed", "error", err)
				continue
			}
			if !ok {
				continue
			}
			if err := s.process(ctx, code); err != nil {
				return err
			}
		}
	}
}

// process returns an error only when ctx ends during the pause.
func (s *Scanner) process(ctx context.Context, code string) error {
	s.opts.OnStatus(StatusUpdate{Status: ScanProcessing, Message: MessageProcessing, Code: code})

	pause := s.opts.SuccessPause
	if err := s.submit(ctx, code); err != nil {
		s.logger.Warn("check-in failed", "code", code, "error", err)
		s.opts.OnStatus(StatusUpdate{Status: ScanError, Message: MessageFailed, Code: code, Err: err})
		pause = s.opts.FailurePause
	} else {
		s.opts.OnStatus(StatusUpdate{Status: ScanSuccess, Message: MessageSuccess, Code: code})
	}

	if err := s.opts.Sleep(ctx, pause); err != nil {
		return err
	}
	s.opts.OnStatus(StatusUpdate{Status: ScanReady, Message: MessageReady})
	return nil
}
