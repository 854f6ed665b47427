package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wxveio/wxve-chat/chat"
	"github.com/wxveio/wxve-chat/client"
	"github.com/wxveio/wxve-chat/config"
	"github.com/wxveio/wxve-chat/logger"
	"github.com/wxveio/wxve-chat/markdown"
	"github.com/wxveio/wxve-chat/model"
	"github.com/wxveio/wxve-chat/msg"
	"github.com/wxveio/wxve-chat/style"
)

// ProgramReady hands the running program to the model so the stream pump
// can Send events into it.
type ProgramReady struct{ Program *tea.Program }

// Options configures a Model.
type Options struct {
	Client *client.Client
	Config config.Config
	// ProfileDir receives theme changes; empty disables persistence.
	ProfileDir string
	Version    string
	// Clipboard writes text to the system clipboard; nil uses the default.
	Clipboard func(string) error
}

// Model is the root bubbletea model: a single chat session rendered as a
// scrolling transcript above an input line.
type Model struct {
	banner   model.BannerModel
	chat     model.ChatModel
	input    model.InputModel
	activity model.ActivityModel
	status   model.StatusModel
	toasts   model.ToastsModel
	palette  model.PaletteModel

	session *chat.Session
	client  *client.Client
	stream  *client.Stream
	program *tea.Program
	// pulling is fixed when a stream opens: true means the model re-issues
	// NextCmd after every event, false means ListenCmd owns the stream.
	pulling bool

	cfg        config.Config
	profileDir string
	clipboard  func(string) error
	keys       KeyMap

	width       int
	height      int
	confirmQuit bool
	turnStart   time.Time
	log         *logger.Entry
}

// New builds the root model.
func New(opts Options) Model {
	if !applyTheme(opts.Config.Theme) {
		applyTheme(config.Default().Theme)
	}

	input := model.NewInput()
	input.SetCommands(commandNames())
	input.Focus()

	status := model.NewStatus(opts.Client.Endpoint)
	status.SetTheme(opts.Config.Theme)

	m := Model{
		banner:     model.NewBanner(opts.Version, opts.Client.Endpoint),
		chat:       model.NewChat(80, 20),
		input:      input,
		activity:   model.NewActivity(),
		status:     status,
		toasts:     model.NewToasts(),
		palette:    model.NewPalette(),
		session:    chat.NewSession(),
		client:     opts.Client,
		cfg:        opts.Config,
		profileDir: opts.ProfileDir,
		clipboard:  opts.Clipboard,
		keys:       DefaultKeyMap(),
		width:      80,
		height:     24,
		log:        logger.Named("tui"),
	}
	m.chat.SetWrap(opts.Config.WordWrap)
	if m.clipboard == nil {
		m.clipboard = writeClipboard
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.input.Init(), m.activity.Init(), tea.WindowSize(), tickCmd())
}

func (m Model) Update(rawMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := rawMsg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.banner.SetWidth(v.Width)
		m.input.SetWidth(v.Width)
		m.status.SetWidth(v.Width)
		m.activity.SetWidth(v.Width - 4)
		m.layout()
		return m, nil

	case ProgramReady:
		m.program = v.Program
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(v)

	case model.PaletteExecuteMsg:
		return m.submitInput(v.Command)

	case model.PaletteDismissMsg:
		return m, nil

	// -- Stream lifecycle --

	case client.SSEOpenedEvent:
		return m.handleOpened(v)

	case client.TextEvent, client.ChartEvent, client.ToolStartEvent, client.ToolEndEvent:
		return m.handleEvent(rawMsg.(client.Event))

	case client.DoneEvent, client.ErrorEvent:
		m.session.Apply(rawMsg.(client.Event))
		return m.finishTurn()

	case client.SSEClosedEvent:
		if v.Dropped > 0 {
			m.log.WithField("dropped", v.Dropped).Debug("stream ended with dropped frames")
		}
		m.session.EndOfStream()
		return m.finishTurn()

	case client.SSEDisconnectedEvent:
		m.session.Fail(v.Err.Error())
		return m.finishTurn()

	// -- Command results --

	case msg.ExportResult:
		if v.Err != nil {
			m.chat.AddError("Export failed: " + v.Err.Error())
			return m, nil
		}
		m.addToast("Exported to "+v.Path, model.ToastInfo)
		return m, nil

	case msg.CopyResult:
		if v.Err != nil {
			m.addToast("Copy failed: "+v.Err.Error(), model.ToastError)
			return m, nil
		}
		m.addToast("Copied last reply", model.ToastInfo)
		return m, nil

	case msg.ThemeSaved:
		if v.Err != nil {
			m.log.WithError(v.Err).Warn("theme not saved")
			m.addToast("Theme not saved: "+v.Err.Error(), model.ToastWarning)
		}
		return m, nil

	// -- Timers --

	case msg.TickMsg:
		before := m.toasts.Len()
		m.toasts.Tick()
		if m.toasts.Len() != before {
			m.layout()
		}
		if m.session.Loading() {
			m.chat.SetProcessingView(m.activity.View())
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.activity, cmd = m.activity.Update(v)
		if m.session.Loading() {
			m.chat.SetProcessingView(m.activity.View())
		}
		return m, cmd
	}

	// Cursor blink and other input-owned messages.
	updated, cmd := m.input.Update(rawMsg)
	if inp, ok := updated.(model.InputModel); ok {
		m.input = inp
	}
	return m, cmd
}

func (m Model) View() string {
	if m.palette.IsActive() {
		return m.palette.View()
	}
	sections := []string{m.banner.View(), m.chat.View()}
	if t := m.toasts.View(m.width); t != "" {
		sections = append(sections, t)
	}
	sections = append(sections, m.status.View(), style.Rule(m.width), m.input.View())
	if m.confirmQuit {
		sections = append(sections, style.Hint.Render("  Press Ctrl+C again to quit, or any key to cancel."))
	}
	return strings.Join(sections, "\n")
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.palette.IsActive() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(k)
		return m, cmd
	}
	if m.confirmQuit {
		if key.Matches(k, m.keys.Cancel) {
			return m.quit()
		}
		m.confirmQuit = false
		return m, nil
	}

	switch {
	case key.Matches(k, m.keys.Escape), key.Matches(k, m.keys.ClearInput):
		m.input.Reset()
		return m, nil
	case key.Matches(k, m.keys.Cancel):
		if m.input.Value() == "" {
			m.confirmQuit = true
			return m, nil
		}
		m.input.Reset()
		return m, nil
	case key.Matches(k, m.keys.QuitEOF):
		if m.input.Value() == "" {
			return m.quit()
		}
	case key.Matches(k, m.keys.Submit):
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		if m.session.Loading() && !isCommand(text) {
			// A reply is streaming; keep the draft.
			return m, nil
		}
		m.input.Submit(text)
		return m.submitInput(text)
	case key.Matches(k, m.keys.Help):
		m.chat.AddNotice(helpText())
		return m, nil
	case key.Matches(k, m.keys.Palette):
		return m, m.palette.Open(paletteItems(), m.width, m.height)
	case key.Matches(k, m.keys.ToggleTheme):
		return m.setTheme("")
	case key.Matches(k, m.keys.CopyLast):
		return m.copyLast()
	case key.Matches(k, m.keys.ScrollTop):
		m.chat.ScrollToTop()
		return m, nil
	case key.Matches(k, m.keys.ScrollBottom):
		m.chat.ScrollToBottom()
		return m, nil
	case key.Matches(k, m.keys.PageUp), key.Matches(k, m.keys.PageDown):
		updated, cmd := m.chat.Update(k)
		if c, ok := updated.(model.ChatModel); ok {
			m.chat = c
		}
		return m, cmd
	}

	updated, cmd := m.input.Update(k)
	if inp, ok := updated.(model.InputModel); ok {
		m.input = inp
	}
	return m, cmd
}

// startTurn submits text to the session and issues the request. A rejected
// submission has no effect.
func (m Model) startTurn(text string) (Model, tea.Cmd) {
	req, err := m.session.Submit(text)
	if err != nil {
		m.log.WithError(err).Debug("submission rejected")
		return m, nil
	}
	m.turnStart = time.Now()
	m.activity.Start()
	m.syncSession()
	m.chat.ScrollToBottom()
	return m, m.client.ChatCmd(req)
}

func (m Model) handleOpened(v client.SSEOpenedEvent) (Model, tea.Cmd) {
	if m.session.Turn().Phase != chat.PhaseSending {
		v.Stream.Close()
		return m, nil
	}
	m.stream = v.Stream
	m.pulling = m.program == nil
	m.session.Opened()
	m.activity.SetStreaming()
	m.syncSession()
	return m, m.listen()
}

func (m Model) handleEvent(ev client.Event) (Model, tea.Cmd) {
	m.session.Apply(ev)
	switch e := ev.(type) {
	case client.ToolStartEvent:
		m.activity, _ = m.activity.Update(msg.ToolCallStart{Name: e.Name, At: time.Now()})
	case client.ToolEndEvent:
		m.activity, _ = m.activity.Update(msg.ToolCallEnd{Name: e.Name, At: time.Now()})
	}
	m.syncSession()
	if m.pulling && m.stream != nil && m.session.Loading() {
		return m, m.stream.NextCmd()
	}
	return m, nil
}

// finishTurn runs after the session left the loading phases. The stream
// pump has already closed the body.
func (m Model) finishTurn() (Model, tea.Cmd) {
	m.stream = nil
	m.pulling = false
	m.activity.Stop()
	if !m.turnStart.IsZero() {
		m.status.SetLastTurn(time.Since(m.turnStart))
	}
	m.chat.ClearProcessingView()
	m.syncSession()
	return m, nil
}

// listen starts the stream pump: pushed through the program when one is
// attached, pulled one event per command otherwise.
func (m Model) listen() tea.Cmd {
	if m.pulling {
		return m.stream.NextCmd()
	}
	return m.stream.ListenCmd(m.program)
}

// syncSession copies session state into the views.
func (m *Model) syncSession() {
	snap := m.session.Snapshot()
	m.chat.SyncMessages(snap.Messages)
	if snap.Loading {
		m.chat.SetInFlight(snap.Text, snap.Charts, m.activity.View())
	}
	m.status.SetPhase(snap.Phase.String())
	m.status.SetMessageCount(len(snap.Messages))
}

func (m Model) quit() (Model, tea.Cmd) {
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
		m.pulling = false
	}
	return m, tea.Quit
}

func (m *Model) addToast(text string, level model.ToastLevel) {
	m.toasts.Add(text, level)
	m.layout()
}

func (m *Model) layout() {
	m.chat.SetSize(m.width, m.chatHeight())
}

// chatHeight is what remains after header, toasts, status, rule and input.
func (m Model) chatHeight() int {
	h := m.height - 4 - m.toasts.Len()
	if m.confirmQuit {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return msg.TickMsg{} })
}

// applyTheme switches styles and markdown rendering to name.
func applyTheme(name string) bool {
	if !style.SetTheme(name) {
		return false
	}
	markdown.SetStyle(markdown.GlamourStyle(name))
	return true
}
