// Package ui is the terminal reader: it shows the rendered document, acts as
// the page's viewport and forwards narration keys to the controller.
package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/narrate/internal/cache"
	"github.com/dgnsrekt/narrate/internal/document"
	"github.com/dgnsrekt/narrate/internal/dom"
	"github.com/dgnsrekt/narrate/tts"
	"github.com/fsnotify/fsnotify"
	te "github.com/muesli/termenv"
	"golang.org/x/net/html"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	statusBarHeight      = 1
	ellipsis             = "…"
)

// Deps are the collaborators the reader drives.
type Deps struct {
	Page       *document.Page
	Controller *tts.Controller
	Controls   *Controls
	// Cache, when set, is reported in the status bar.
	Cache *cache.Cache
}

// NewProgram returns a new Tea program reading the page in deps.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	log.Debug("Starting narrate", "path", cfg.Path, "mouse", cfg.EnableMouse)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, deps), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	statusMessageTimeoutMsg struct{}
	reloadMsg               struct{}
	documentMsg             struct{ root *html.Node }
)

// actionMsg reports the outcome of a controller call made off the UI
// goroutine.
type actionMsg struct {
	action string
	err    error
}

type highlightMsg struct {
	ok  bool
	err error
}

type readerState int

const (
	readerStateBrowse readerState = iota
	readerStateStatusMessage
)

type statusMessage struct {
	message string
	isError bool
}

type model struct {
	cfg    Config
	deps   Deps
	styles *styleSet
	screen *screen
	layout *layout

	viewport viewport.Model
	width    int
	height   int
	ready    bool
	showHelp bool

	state              readerState
	statusMessage      statusMessage
	statusMessageTimer *time.Timer

	// Narration status as last reported by the controller.
	narration tts.StateType
	index     int
	total     int

	watcher *fsnotify.Watcher
}

func newModel(cfg Config, deps Deps) model {
	m := model{
		cfg:      cfg,
		deps:     deps,
		styles:   newStyleSet(cfg.HighlightColor),
		screen:   &screen{},
		viewport: viewport.New(0, 0),
	}
	deps.Page.Lock()
	deps.Page.SetViewport(m.screen)
	deps.Page.Unlock()
	if deps.Controls != nil {
		deps.Controller.SetSettingsSource(deps.Controls)
		deps.Controller.OnVoiceListChanged(deps.Controls.SetVoices)
	}
	if cfg.WatchFile && cfg.Path != "" {
		m.initWatcher()
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.deps.Controller.WaitForMessage(), m.refreshVoices}
	if m.watcher != nil {
		cmds = append(cmds, m.watchFile)
	}
	return tea.Batch(cmds...)
}

func (m model) refreshVoices() tea.Msg {
	m.deps.Controller.RefreshVoices()
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.setSize()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.unwatchFile()
			return m, m.quit
		case "?":
			m.toggleHelp()
			return m, nil
		case "home", "g":
			m.viewport.GotoTop()
			m.syncScreen()
			return m, nil
		case "end", "G":
			m.viewport.GotoBottom()
			m.syncScreen()
			return m, nil
		case " ", "s":
			return m, m.start
		case "p":
			return m, m.call("pause", m.deps.Controller.PauseSession)
		case "r":
			return m, m.call("resume", m.deps.Controller.ResumeSession)
		case "x":
			return m, m.call("stop", m.deps.Controller.StopSession)
		case "h":
			return m, m.highlightFirst
		case "v":
			return m, m.cycleVoice()
		case "+", "=":
			return m, m.changeRate(rateStep)
		case "-":
			return m, m.changeRate(-rateStep)
		case "y":
			return m, m.copyCurrent()
		}

	case tts.StateChangedMsg:
		m.narration, m.index, m.total = msg.To, msg.Index, msg.Total
		m.refresh()
		return m, m.deps.Controller.WaitForMessage()

	case tts.UnitChangedMsg:
		m.index, m.total = msg.Index, msg.Total
		m.refresh()
		return m, m.deps.Controller.WaitForMessage()

	case tts.BoundaryMsg:
		return m, m.deps.Controller.WaitForMessage()

	case tts.NoticeMsg:
		cmds = append(cmds, m.showStatusMessage(statusMessage{noticeText(msg.Err), false}))
		cmds = append(cmds, m.deps.Controller.WaitForMessage())
		return m, tea.Batch(cmds...)

	case tts.NarrationErrorMsg:
		text := fmt.Sprintf("Skipped part %d: %v", msg.Index+1, msg.Err)
		cmds = append(cmds, m.showStatusMessage(statusMessage{text, true}))
		cmds = append(cmds, m.deps.Controller.WaitForMessage())
		return m, tea.Batch(cmds...)

	case tts.VoicesChangedMsg:
		if m.deps.Controls != nil {
			m.deps.Controls.SetVoices(msg.Voices)
		}
		return m, m.deps.Controller.WaitForMessage()

	case actionMsg:
		m.refresh()
		if msg.err != nil && !errors.Is(msg.err, tts.ErrNoContent) {
			log.Debug("narration action failed", "action", msg.action, "error", msg.err)
			return m, m.showStatusMessage(statusMessage{"Cannot " + msg.action + " now", true})
		}
		return m, nil

	case highlightMsg:
		m.refresh()
		switch {
		case msg.err != nil:
			return m, m.showStatusMessage(statusMessage{noticeText(msg.err), true})
		case !msg.ok:
			return m, m.showStatusMessage(statusMessage{"Nothing to highlight", true})
		}
		return m, m.showStatusMessage(statusMessage{"Highlighted the first part", false})

	case reloadMsg:
		return m, loadDocument(m.cfg.Path)

	case documentMsg:
		m.deps.Page.Lock()
		m.deps.Page.Replace(msg.root)
		m.deps.Page.Unlock()
		m.refresh()
		cmds = append(cmds, m.showStatusMessage(statusMessage{"Reloaded", false}))
		if m.watcher != nil {
			cmds = append(cmds, m.watchFile)
		}
		return m, tea.Batch(cmds...)

	case errMsg:
		log.Error("reader error", "error", msg.err)
		return m, m.showStatusMessage(statusMessage{msg.Error(), true})

	case statusMessageTimeoutMsg:
		m.state = readerStateBrowse
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	m.syncScreen()
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *model) setSize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(0, m.height-statusBarHeight)
	if m.showHelp {
		m.viewport.Height = max(0, m.viewport.Height-strings.Count(m.helpView(), "\n")-1)
	}
}

func (m *model) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize()
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
	m.syncScreen()
}

func (m model) renderWidth() int {
	w := m.width
	if m.cfg.Width > 0 && int(m.cfg.Width) < w {
		w = int(m.cfg.Width)
	}
	return w
}

// refresh redraws the document and applies a scroll the page asked for.
func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.deps.Page.Lock()
	m.layout = render(m.deps.Page.ContentRoot(), m.renderWidth(), m.styles)
	m.deps.Page.Unlock()

	m.viewport.SetContent(strings.Join(m.layout.lines, "\n"))
	if n, fraction, ok := m.screen.take(); ok {
		if sp, ok := m.layout.spanOf(n); ok {
			m.viewport.SetYOffset(offsetFor(sp, fraction, m.viewport.Height))
		}
	}
	m.syncScreen()
}

func (m *model) syncScreen() {
	m.screen.update(m.layout, m.viewport.YOffset, m.viewport.Height)
}

func (m *model) showStatusMessage(msg statusMessage) tea.Cmd {
	m.state = readerStateStatusMessage
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

// COMMANDS

func (m model) call(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{action: action, err: fn()}
	}
}

func (m model) start() tea.Msg {
	m.deps.Page.Lock()
	root := m.deps.Page.ContentRoot()
	m.deps.Page.Unlock()
	return actionMsg{action: "start", err: m.deps.Controller.StartSession(root)}
}

func (m model) highlightFirst() tea.Msg {
	ok, err := m.deps.Controller.HighlightUnit(0)
	return highlightMsg{ok: ok, err: err}
}

func (m model) quit() tea.Msg {
	if err := m.deps.Controller.StopSession(); err != nil {
		log.Debug("stop on quit", "error", err)
	}
	return tea.Quit()
}

func (m *model) cycleVoice() tea.Cmd {
	if m.deps.Controls == nil {
		return nil
	}
	v, ok := m.deps.Controls.NextVoice()
	if !ok {
		return m.showStatusMessage(statusMessage{"No voices available", true})
	}
	return m.showStatusMessage(statusMessage{"Voice: " + voiceLabel(v) + " (next start)", false})
}

func (m *model) changeRate(delta float64) tea.Cmd {
	if m.deps.Controls == nil {
		return nil
	}
	r := m.deps.Controls.AdjustRate(delta)
	return m.showStatusMessage(statusMessage{fmt.Sprintf("Rate: %.1fx (next start)", r), false})
}

func (m *model) copyCurrent() tea.Cmd {
	item, ok := m.deps.Controller.Current()
	if !ok {
		return m.showStatusMessage(statusMessage{"Nothing is being read", true})
	}
	m.deps.Page.Lock()
	text := itemText(item)
	m.deps.Page.Unlock()

	// Copy using OSC 52
	te.Copy(text)
	// Copy using native system clipboard
	_ = clipboard.WriteAll(text)
	return m.showStatusMessage(statusMessage{"Copied part " + fmt.Sprint(item.Index+1), false})
}

// itemText returns the on-page text of a queue item. The page lock must be
// held.
func itemText(item tts.QueueItem) string {
	u := item.Unit
	var parts []string
	switch {
	case len(u.FragmentRefs) > 0:
		for _, n := range u.FragmentRefs {
			parts = append(parts, dom.TextContent(n))
		}
	case u.PrimaryRef != nil:
		parts = append(parts, dom.TextContent(u.PrimaryRef))
	default:
		parts = append(parts, dom.TextContent(u.SourceNode))
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

func noticeText(err error) string {
	switch {
	case errors.Is(err, tts.ErrNoContent):
		return "Nothing to read"
	case errors.Is(err, tts.ErrInvalidUnitIndex):
		return "No such part"
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}

func voiceLabel(v tts.Voice) string {
	if v.Name != "" {
		return v.Name
	}
	return v.ID
}

func loadDocument(path string) tea.Cmd {
	return func() tea.Msg {
		src, err := os.ReadFile(path)
		if err != nil {
			return errMsg{err}
		}
		root, err := document.Render(src)
		if err != nil {
			return errMsg{err}
		}
		return documentMsg{root: root}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// WATCHER

func (m *model) initWatcher() {
	var err error
	m.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
	}
}

func (m model) watchFile() tea.Msg {
	dir := m.localDir()

	if err := m.watcher.Add(dir); err != nil {
		log.Error("error adding dir to fsnotify watcher", "error", err)
		return nil
	}

	log.Info("fsnotify watching dir", "dir", dir)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != m.localPath() {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			return reloadMsg{}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

func (m *model) unwatchFile() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Close(); err != nil {
		log.Error("fsnotify fail to close watcher", "error", err)
		return
	}
	log.Debug("fsnotify watcher closed", "dir", m.localDir())
}

func (m model) localPath() string {
	if p, err := filepath.Abs(m.cfg.Path); err == nil {
		return p
	}
	return m.cfg.Path
}

func (m model) localDir() string {
	return filepath.Dir(m.localPath())
}
