package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/gym-member-schedule/internal/appointment"
	"github.com/hackgods/gym-member-schedule/internal/config"
	"github.com/hackgods/gym-member-schedule/internal/db"
	"github.com/hackgods/gym-member-schedule/internal/schedule"
	"github.com/hackgods/gym-member-schedule/pkg/logging"
)

const help = `commands:
  n             next window
  p             previous window
  t             back to today
  g YYYY-MM-DD  jump to a day
  s YYYY-MM-DD HOUR  open one of your appointments
  c             close details
  r             reload
  q             quit`

// memberSession is the fixed identity of the terminal client.
type memberSession struct {
	id int64
}

func (s memberSession) IsAuthenticated() bool { return s.id != 0 }
func (s memberSession) MemberID() int64       { return s.id }

type printNavigator struct {
	out io.Writer
}

func (n printNavigator) Redirect(path string) {
	fmt.Fprintf(n.out, "not signed in, please log in at %s\n", path)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}
	// the terminal is the UI; keep logs to warnings and above
	logger := logging.NewWithWriter(os.Stderr, "warn").With("cmd", "schedule")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pgPool *pgxpool.Pool
	if cfg.DataSource == config.DataSourcePostgres {
		pgCtx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolOptions{ApplicationName: "schedule-cli"}, logger)
		cancel()
		if err != nil {
			logger.Error("postgres connection error", "error", err)
			os.Exit(1)
		}
		defer pgPool.Close()
	}

	svc := appointment.NewService(newRepository(cfg, pgPool), nil, cfg, nil, logger)
	page := schedule.NewPage(svc, newTextRenderer(os.Stdout), printNavigator{out: os.Stdout},
		memberSession{id: cfg.CurrentMemberID}, schedule.OptionsFromConfig(cfg), logger)

	if err := page.Init(rootCtx); err != nil {
		if errors.Is(err, schedule.ErrAuthRequired) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
	}
	fmt.Println(help)

	today := page.Window().Start
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		quit, err := dispatch(rootCtx, page, today, in.Text())
		if err != nil {
			fmt.Println(err)
		}
		if quit || rootCtx.Err() != nil {
			return
		}
	}
}

// dispatch runs one command line against the page.
func dispatch(ctx context.Context, page *schedule.Page, today appointment.Date, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "q", "quit":
		return true, nil
	case "n", "next":
		return false, page.Next(ctx)
	case "p", "prev":
		return false, page.Prev(ctx)
	case "t", "today":
		return false, page.GoTo(ctx, today)
	case "r", "reload":
		return false, page.LoadAppointments(ctx)
	case "c", "close":
		page.CloseModal()
		return false, nil
	case "g", "goto":
		if len(fields) != 2 {
			return false, errors.New("usage: g YYYY-MM-DD")
		}
		day, err := appointment.ParseDate(fields[1])
		if err != nil {
			return false, err
		}
		return false, page.GoTo(ctx, day)
	case "s", "show":
		if len(fields) != 3 {
			return false, errors.New("usage: s YYYY-MM-DD HOUR")
		}
		day, err := appointment.ParseDate(fields[1])
		if err != nil {
			return false, err
		}
		hour, err := strconv.Atoi(fields[2])
		if err != nil {
			return false, fmt.Errorf("invalid hour %q", fields[2])
		}
		_, err = page.SelectSlot(day, hour)
		return false, err
	case "h", "help", "?":
		fmt.Println(help)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q, type h for help", fields[0])
	}
}

func newRepository(cfg config.Config, pgPool *pgxpool.Pool) appointment.Repository {
	switch cfg.DataSource {
	case config.DataSourcePostgres:
		return appointment.NewPgRepository(pgPool, cfg.Location)
	case config.DataSourceRemote:
		return appointment.NewHTTPRepository(cfg.RemoteBaseURL, cfg.RemoteToken, cfg.Location)
	default:
		return appointment.NewMemoryRepository(appointment.MockAppointments(cfg.Location), cfg.SimulatedLatency)
	}
}
