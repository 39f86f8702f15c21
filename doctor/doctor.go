// Package doctor runs interactive environment checks: global hotkey,
// audible playback, and the database file.
package doctor

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"lull/audio"
	"lull/engine"
	"lull/hotkey"
	"lull/store"
)

// Run executes the checks and returns an exit code (0=all pass, 1=any fail).
func Run(dbPath string) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("lull doctor - interactive system diagnostics")
	fmt.Println("============================================")
	reportTerminal()

	allPass := true

	if !checkHotkey() {
		allPass = false
	}
	if !checkPlayback() {
		allPass = false
	}
	if !checkDatabase(dbPath) {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See details above.")
	}

	if allPass {
		return 0
	}
	return 1
}

func reportTerminal() {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fmt.Println("  note: stdout is not a terminal; the TUI will not run here")
		return
	}
	if w, h, err := term.GetSize(fd); err == nil {
		fmt.Printf("  terminal: %dx%d\n", w, h)
	}
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[1/3] Hotkey detection")

	if info, err := hotkey.Diagnose(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	} else {
		fmt.Println("  " + info)
	}

	fmt.Println("Press Ctrl+Shift+Space...")

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Toggled():
		fmt.Println("  PASS: hotkey detected")
		// The chord may leave the terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkPlayback() bool {
	fmt.Println()
	fmt.Println("[2/3] Audio playback")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer ctx.Close()

	eng := engine.New(ctx, nil)
	defer eng.Close()

	fmt.Println("  Playing rain for 3 seconds...")
	if _, err := eng.Toggle(engine.Rain); err != nil {
		fmt.Printf("  FAIL: playback: %v\n", err)
		return false
	}
	time.Sleep(3 * time.Second)
	eng.StopAll()

	resetTerminal()
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("  Did you hear rain? [y/n]: ")
	confirm, _ := reader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))
	if confirm != "y" && confirm != "yes" {
		fmt.Println("  FAIL: playback not confirmed")
		return false
	}
	fmt.Println("  PASS: playback verified by user")
	return true
}

func checkDatabase(dbPath string) bool {
	fmt.Println()
	fmt.Println("[3/3] Database")

	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultPath()
		if err != nil {
			fmt.Printf("  FAIL: cannot resolve database path: %v\n", err)
			return false
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		fmt.Printf("  FAIL: cannot open %s: %v\n", dbPath, err)
		return false
	}
	defer st.Close()

	if _, err := st.Note(); err != nil {
		fmt.Printf("  FAIL: cannot read note: %v\n", err)
		return false
	}

	fmt.Printf("  PASS: %s opened and migrated\n", dbPath)
	return true
}
