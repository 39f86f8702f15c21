package main

import (
	"fmt"
	"strings"
	"time"

	cb "github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lull/engine"
	"lull/log"
	"lull/store"
)

// TUI message types
type HotkeyToggleMsg struct{}
type tickMsg time.Time

type tuiFocus int

const (
	focusBoard tuiFocus = iota
	focusNotes
)

const (
	boardWidth    = 38
	autosaveDelay = 2 * time.Second
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	workStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	breakStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("120")).Bold(true)
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	streakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	quoteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	playingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	stoppedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	barDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpBoldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	notesTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	savedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

type tuiModel struct {
	eng   *engine.Engine
	st    *store.Store
	vols  *volumeTable
	timer *focusTimer

	focus  tuiFocus
	cursor int
	notes  textarea.Model

	width, height int
	streak        int
	today         int
	quoteIdx      int
	quote         string
	status        string
	errLine       string

	noteDirty bool
	lastEdit  time.Time
	savedFlag bool
}

func newTUIModel(eng *engine.Engine, st *store.Store, vols *volumeTable, timer *focusTimer) tuiModel {
	ta := textarea.New()
	ta.Placeholder = "jot something down..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Blur()

	m := tuiModel{
		eng:      eng,
		st:       st,
		vols:     vols,
		timer:    timer,
		notes:    ta,
		quoteIdx: quoteSeed(time.Now()),
	}
	m.quote = quoteAt(m.quoteIdx)

	if st != nil {
		if body, err := st.Note(); err == nil {
			m.notes.SetValue(body)
		} else {
			m.errLine = err.Error()
		}
		m.refreshStreak()
	}
	return m
}

func NewTUIProgram(eng *engine.Engine, st *store.Store, vols *volumeTable, timer *focusTimer) *tea.Program {
	return tea.NewProgram(newTUIModel(eng, st, vols, timer), tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m *tuiModel) refreshStreak() {
	if m.st == nil {
		return
	}
	if streak, err := m.st.Streak(time.Now()); err == nil {
		m.streak = streak
	}
	if today, err := m.st.SessionsOn(time.Now()); err == nil {
		m.today = today
	}
}

func (m *tuiModel) saveNote() {
	if m.st == nil || !m.noteDirty {
		return
	}
	if err := m.st.SaveNote(m.notes.Value()); err != nil {
		m.errLine = err.Error()
		return
	}
	m.noteDirty = false
	m.savedFlag = true
}

func (m *tuiModel) toggleChannel(ch engine.Channel) {
	playing, err := m.eng.Toggle(ch)
	if err != nil {
		m.errLine = "sound: " + err.Error()
		return
	}
	m.errLine = ""
	action := "stop"
	if playing {
		action = "start"
	}
	log.Sound(ch.String(), action, m.vols.Volume(ch))
}

// toggleSoundPause is shared by the space key and the global hotkey.
func (m *tuiModel) toggleSoundPause() {
	for _, ch := range engine.AllChannels() {
		if m.eng.Playing(ch) {
			m.eng.PauseAll()
			m.status = "sounds paused"
			log.Info("sounds_paused")
			return
		}
	}
	resumed, err := m.eng.ResumeLast()
	if err != nil {
		m.errLine = "sound: " + err.Error()
		return
	}
	if resumed {
		m.status = ""
		log.Info("sounds_resumed")
	}
}

func (m *tuiModel) adjustVolume(ch engine.Channel, delta int) {
	v := m.vols.Volume(ch) + delta
	m.vols.Set(ch, v)
	m.eng.SetVolume(ch, m.vols.Volume(ch))
}

func (m *tuiModel) handleTimerEvent(ev timerEvent) {
	switch ev {
	case eventWorkDone:
		m.eng.Chime()
		// The break is quiet time; the chime outlives the stop because
		// it is not a channel.
		m.eng.StopAll()
		log.TimerDone("work", m.timer.work)
		log.SessionHistory(fmt.Sprintf("work %.0f min done", m.timer.work.Minutes()))
		if m.st != nil {
			if err := m.st.CompleteSession(time.Now()); err != nil {
				m.errLine = err.Error()
			}
		}
		m.refreshStreak()
		m.status = "break time"
	case eventBreakDone:
		m.eng.Chime()
		log.TimerDone("break", m.timer.rest)
		log.SessionHistory(fmt.Sprintf("break %.0f min done", m.timer.rest.Minutes()))
		m.status = "session over"
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.notes.SetWidth(m.notesWidth() - 2)
		m.notes.SetHeight(m.height - 6)

	case tickMsg:
		m.handleTimerEvent(m.timer.Tick(time.Second))
		if m.noteDirty && time.Since(m.lastEdit) >= autosaveDelay {
			m.saveNote()
		}
		return m, tuiTick()

	case HotkeyToggleMsg:
		m.toggleSoundPause()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.saveNote()
			return m, tea.Quit
		case "ctrl+y":
			if err := cb.WriteAll(m.notes.Value()); err != nil {
				m.errLine = "clipboard: " + err.Error()
			} else {
				m.status = "note copied"
			}
			return m, nil
		}

		if m.focus == focusNotes {
			switch msg.String() {
			case "esc":
				m.focus = focusBoard
				m.notes.Blur()
				m.saveNote()
				return m, nil
			default:
				var cmd tea.Cmd
				before := m.notes.Value()
				m.notes, cmd = m.notes.Update(msg)
				if m.notes.Value() != before {
					m.noteDirty = true
					m.savedFlag = false
					m.lastEdit = time.Now()
				}
				return m, cmd
			}
		}

		switch msg.String() {
		case "q":
			m.saveNote()
			return m, tea.Quit
		case "tab":
			m.focus = focusNotes
			return m, m.notes.Focus()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(engine.AllChannels())-1 {
				m.cursor++
			}
		case "left", "h":
			m.adjustVolume(engine.Channel(m.cursor), -5)
		case "right", "l":
			m.adjustVolume(engine.Channel(m.cursor), +5)
		case "enter":
			m.toggleChannel(engine.Channel(m.cursor))
		case "1", "2", "3", "4", "5":
			m.toggleChannel(engine.Channel(int(msg.String()[0] - '1')))
		case " ":
			m.toggleSoundPause()
		case "m":
			m.eng.StopAll()
			m.status = "sounds stopped"
			log.Info("sounds_stopped")
		case "s":
			if m.timer.Phase() == phaseIdle {
				m.timer.StartWork()
				m.quoteIdx++
				m.quote = quoteAt(m.quoteIdx)
				log.TimerStart("work", m.timer.work.Minutes())
				m.status = ""
			}
		case "p":
			if m.timer.Phase() != phaseIdle {
				m.timer.TogglePause()
				// The session clock and the sounds pause together:
				// freezing the timer parks the sounds, unfreezing
				// brings back the remembered channel.
				if m.timer.Paused() {
					m.eng.PauseAll()
				} else if _, err := m.eng.ResumeLast(); err != nil {
					m.errLine = "sound: " + err.Error()
				}
			}
		case "x":
			m.handleTimerEvent(m.timer.Skip())
		case "esc":
			m.timer.Stop()
			m.eng.StopAll()
			m.status = ""
		}
	}
	return m, nil
}

func (m tuiModel) notesWidth() int {
	w := m.width - boardWidth - 1
	if w < 20 {
		w = 20
	}
	return w
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var left []string
	left = append(left, titleStyle.Render("lull")+helpStyle.Render(" "+version))
	left = append(left, "")
	left = append(left, m.timerLine())
	left = append(left, m.streakLine())
	if m.quote != "" {
		left = append(left, "")
		left = append(left, wrapStyled(m.quote, boardWidth-2, quoteStyle)...)
	}
	left = append(left, "")
	left = append(left, m.boardLines()...)
	left = append(left, "")
	if m.errLine != "" {
		left = append(left, errStyle.Render(m.errLine))
	} else if m.status != "" {
		left = append(left, statusStyle.Render(m.status))
	} else {
		left = append(left, "")
	}
	left = append(left, "")
	left = append(left, m.helpLines()...)

	leftPanel := lipgloss.NewStyle().
		Width(boardWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(strings.Join(left, "\n"))

	rightPanel := lipgloss.NewStyle().
		Width(m.notesWidth()).
		Height(m.height).
		PaddingLeft(1).
		Render(m.notesView())

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
}

func (m tuiModel) timerLine() string {
	remaining := m.timer.Remaining().Round(time.Second)
	mins := int(remaining.Minutes())
	secs := int(remaining.Seconds()) % 60
	clock := fmt.Sprintf("%02d:%02d", mins, secs)

	switch m.timer.Phase() {
	case phaseWork:
		line := workStyle.Render("● work " + clock)
		if m.timer.Paused() {
			line += idleStyle.Render(" (paused)")
		}
		return line
	case phaseBreak:
		line := breakStyle.Render("● break " + clock)
		if m.timer.Paused() {
			line += idleStyle.Render(" (paused)")
		}
		return line
	}
	return idleStyle.Render("○ idle - press s to focus")
}

func (m tuiModel) streakLine() string {
	if m.streak == 0 && m.today == 0 {
		return idleStyle.Render("no streak yet")
	}
	return streakStyle.Render(fmt.Sprintf("%d-day streak", m.streak)) +
		statusStyle.Render(fmt.Sprintf(" · %d today", m.today))
}

func (m tuiModel) boardLines() []string {
	lines := make([]string, 0, len(engine.AllChannels()))
	for i, ch := range engine.AllChannels() {
		marker := "  "
		if m.focus == focusBoard && i == m.cursor {
			marker = cursorStyle.Render("▶ ")
		}

		var indicator, name string
		if m.eng.Playing(ch) {
			indicator = playingStyle.Render("●")
			name = playingStyle.Render(fmt.Sprintf("%-6s", ch.String()))
		} else {
			indicator = stoppedStyle.Render("○")
			name = stoppedStyle.Render(fmt.Sprintf("%-6s", ch.String()))
		}

		vol := m.vols.Volume(ch)
		filled := vol / 10
		bar := barStyle.Render(strings.Repeat("█", filled)) +
			barDimStyle.Render(strings.Repeat("░", 10-filled))

		lines = append(lines, fmt.Sprintf("%s%s %d %s %s %3d", marker, indicator, i+1, name, bar, vol))
	}
	return lines
}

func (m tuiModel) helpLines() []string {
	if m.focus == focusNotes {
		return []string{
			helpBoldStyle.Render("esc") + helpStyle.Render(" board  ") +
				helpBoldStyle.Render("ctrl+y") + helpStyle.Render(" copy note"),
		}
	}
	return []string{
		helpBoldStyle.Render("1-5/enter") + helpStyle.Render(" sound  ") +
			helpBoldStyle.Render("←/→") + helpStyle.Render(" volume"),
		helpBoldStyle.Render("space") + helpStyle.Render(" pause sounds  ") +
			helpBoldStyle.Render("m") + helpStyle.Render(" stop all"),
		helpBoldStyle.Render("s") + helpStyle.Render(" start  ") +
			helpBoldStyle.Render("p") + helpStyle.Render(" pause  ") +
			helpBoldStyle.Render("x") + helpStyle.Render(" skip  ") +
			helpBoldStyle.Render("tab") + helpStyle.Render(" notes"),
		helpBoldStyle.Render("ctrl+shift+space") + helpStyle.Render(" global pause"),
	}
}

func (m tuiModel) notesView() string {
	title := notesTitle.Render("Notes")
	if m.savedFlag {
		title += " " + savedStyle.Render("[✓ saved]")
	} else if m.noteDirty {
		title += " " + statusStyle.Render("[...]")
	}
	return title + "\n\n" + m.notes.View()
}

func wrapStyled(text string, width int, style lipgloss.Style) []string {
	var out []string
	for _, line := range wrapText(text, width) {
		out = append(out, style.Render(line))
	}
	return out
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	runes := []rune(text)
	var lines []string
	for len(runes) > width {
		// Find last space within width
		splitAt := width
		for i := width; i > 0; i-- {
			if runes[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, string(runes[:splitAt]))
		runes = runes[splitAt:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return lines
}
