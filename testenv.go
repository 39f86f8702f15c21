package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"lull/engine"
	"lull/log"
)

// runTestMode drives the engine headlessly from stdin, one command per
// line, so integration scripts can exercise the sound state machine
// without a terminal or a sound card. Replies go to stdout: OK, ERR
// with a reason, or STATUS lines.
//
//	TOGGLE <channel>     flip a channel (rain|alpha|theta|beta|gamma)
//	VOLUME <channel> <n> set volume percent
//	PAUSE                pause all sounds, remembering the last one
//	RESUME               resume the remembered channel
//	STOPALL              stop everything and forget
//	STATUS               print one line per channel plus the memory slot
//	TICK <seconds>       advance the focus timer
//	START                start a work block
//	SLEEP <ms>           wait
//	QUIT                 exit
func runTestMode(eng *engine.Engine, vols *volumeTable, timer *focusTimer) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "TOGGLE":
			if len(fields) != 2 {
				fmt.Println("ERR usage: TOGGLE <channel>")
				continue
			}
			ch, ok := engine.ParseChannel(fields[1])
			if !ok {
				fmt.Println("ERR unknown channel " + fields[1])
				continue
			}
			playing, err := eng.Toggle(ch)
			if err != nil {
				fmt.Println("ERR " + err.Error())
				continue
			}
			fmt.Printf("OK %s playing=%v\n", ch, playing)

		case "VOLUME":
			if len(fields) != 3 {
				fmt.Println("ERR usage: VOLUME <channel> <percent>")
				continue
			}
			ch, ok := engine.ParseChannel(fields[1])
			if !ok {
				fmt.Println("ERR unknown channel " + fields[1])
				continue
			}
			v, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println("ERR bad percent " + fields[2])
				continue
			}
			vols.Set(ch, v)
			eng.SetVolume(ch, vols.Volume(ch))
			fmt.Printf("OK %s volume=%d\n", ch, vols.Volume(ch))

		case "PAUSE":
			eng.PauseAll()
			fmt.Println("OK paused")

		case "RESUME":
			resumed, err := eng.ResumeLast()
			if err != nil {
				fmt.Println("ERR " + err.Error())
				continue
			}
			fmt.Printf("OK resumed=%v\n", resumed)

		case "STOPALL":
			eng.StopAll()
			fmt.Println("OK stopped")

		case "STATUS":
			for _, ch := range engine.AllChannels() {
				fmt.Printf("STATUS %s playing=%v volume=%d\n", ch, eng.Playing(ch), vols.Volume(ch))
			}
			fmt.Printf("STATUS timer phase=%s remaining=%s completed=%d\n",
				timer.Phase(), timer.Remaining(), timer.Completed())

		case "START":
			timer.StartWork()
			fmt.Println("OK work started")

		case "TICK":
			if len(fields) != 2 {
				fmt.Println("ERR usage: TICK <seconds>")
				continue
			}
			secs, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("ERR bad seconds " + fields[1])
				continue
			}
			ev := timer.Tick(time.Duration(secs) * time.Second)
			fmt.Printf("OK phase=%s event=%d\n", timer.Phase(), ev)

		case "SLEEP":
			if len(fields) == 2 {
				if ms, err := strconv.Atoi(fields[1]); err == nil {
					time.Sleep(time.Duration(ms) * time.Millisecond)
				}
			}

		case "QUIT":
			log.SessionEnd(timer.Completed())
			return

		default:
			fmt.Println("ERR unknown command " + fields[0])
		}
	}
}
