package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lull/audio"
	"lull/doctor"
	"lull/engine"
	"lull/hotkey"
	"lull/log"
	"lull/shutdown"
	"lull/store"
)

var version = "dev"

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var shutdownOnce sync.Once

type app struct {
	eng   *engine.Engine
	ctx   audio.Context
	st    *store.Store
	timer *focusTimer
}

func (a *app) gracefulShutdown() {
	shutdownOnce.Do(func() {
		if a.timer != nil && a.timer.Completed() > 0 {
			log.SessionEnd(a.timer.Completed())
		}
		if a.eng != nil {
			a.eng.Close()
		}
		if a.ctx != nil {
			a.ctx.Close()
		}
		if a.st != nil {
			a.st.Close()
		}
		log.Close()
	})
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}
}

func run() {
	workFlag := flag.Duration("work", defaultWorkMinutes*time.Minute, "Work block length (e.g., 25m)")
	breakFlag := flag.Duration("break", defaultBreakMinutes*time.Minute, "Break length (e.g., 5m)")
	dbPathFlag := flag.String("dbpath", "", "Database file path (default: OS-specific location)")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location, use ./ for current dir)")
	noSoundFlag := flag.Bool("nosound", false, "Run without a sound device (silent fake backend)")
	noChimeFlag := flag.Bool("nochime", false, "Disable session-boundary chimes")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("lull %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(*dbPathFlag))
	}

	if *workFlag <= 0 || *breakFlag <= 0 {
		fmt.Println("Error: -work and -break must be positive durations")
		os.Exit(1)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	dbPath := *dbPathFlag
	if dbPath == "" {
		dbPath, err = store.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to resolve database path: %v\n", err)
			os.Exit(1)
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Errorf("database init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	var ctx audio.Context
	if *noSoundFlag || *testFlag {
		ctx = audio.NewFakeContext()
	} else {
		ctx, err = audio.NewContext()
		if err != nil {
			log.Errorf("audio context init error: %v", err)
			fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run with -nosound to use lull without audio.")
			os.Exit(1)
		}
	}

	vols := newVolumeTable(st)
	eng := engine.New(ctx, vols)
	if *noChimeFlag || *testFlag {
		eng.DisableChimes()
	}

	timer := newFocusTimer(*workFlag, *breakFlag)
	a := &app{eng: eng, ctx: ctx, st: st, timer: timer}
	defer a.gracefulShutdown()

	log.SessionStart(workFlag.Minutes(), breakFlag.Minutes())

	if *testFlag {
		runTestMode(eng, vols, timer)
		return
	}

	tuiMu.Lock()
	tuiProgram = NewTUIProgram(eng, st, vols, timer)
	p := tuiProgram
	tuiMu.Unlock()

	// Global pause/resume chord. Registration failure degrades to
	// in-TUI controls only.
	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Warnf("hotkey register error: %v", err)
	} else {
		defer hk.Unregister()
		go func() {
			for range hk.Toggled() {
				p.Send(HotkeyToggleMsg{})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		a.gracefulShutdown()
		os.Exit(1)
	}
}
