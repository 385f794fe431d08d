package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jwulff/voicememo/internal/audiostore"
	"github.com/jwulff/voicememo/internal/export"
	"github.com/jwulff/voicememo/internal/logging"
	"github.com/jwulff/voicememo/internal/memo"
	"github.com/jwulff/voicememo/internal/recorder"
	"github.com/jwulff/voicememo/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// PanelFocus tracks which panel has keyboard focus.
type PanelFocus int

const (
	FocusList PanelFocus = iota
	FocusChat
)

const defaultRequestTimeout = 60 * time.Second

// Recorder captures one take at a time.
type Recorder interface {
	Start(ctx context.Context) (<-chan recorder.Event, error)
	Stop() (recorder.Take, error)
}

// Finalizer turns a finished take into a stored recording.
type Finalizer interface {
	Finalize(ctx context.Context, t recorder.Take) (memo.Recording, error)
}

// BlobGetter loads recorded audio.
type BlobGetter interface {
	Get(ctx context.Context, handle string) (audiostore.Blob, error)
}

// Assistant transcribes audio and answers questions about a recording.
type Assistant interface {
	Transcribe(ctx context.Context, filename string, wav []byte) (string, error)
	Reply(ctx context.Context, rec memo.Recording) (memo.ChatMessage, error)
}

// Exporter writes a recording to disk.
type Exporter interface {
	Export(ctx context.Context, rec memo.Recording) (export.Result, error)
}

// Deps are the collaborators the TUI drives. Store is the only state the
// model mutates; everything else runs inside tea.Cmds.
type Deps struct {
	Store          *store.Store
	Recorder       Recorder
	Factory        Finalizer
	Blobs          BlobGetter
	Assistant      Assistant
	Exporter       Exporter
	Logger         *slog.Logger
	Ctx            context.Context
	ChatModel      string
	RequestTimeout time.Duration
}

// Model is the root bubbletea model for the voicememo TUI.
type Model struct {
	// Collaborators
	store     *store.Store
	rec       Recorder
	factory   Finalizer
	blobs     BlobGetter
	assistant Assistant
	exporter  Exporter
	logger    *slog.Logger
	ctx       context.Context
	chatModel string
	timeout   time.Duration

	// Set when the credential check failed; the model then only renders the
	// configuration error.
	configErr error

	// Recording state
	recording bool
	starting  bool
	stopping  bool
	events    <-chan recorder.Event
	micLevel  float32
	elapsed   time.Duration

	// In-flight AI requests keyed by recording ID
	transcribing map[string]bool
	replying     map[string]bool

	// UI state
	focusedPanel PanelFocus
	input        string
	width        int
	height       int

	// Errors
	errorMessage   string
	errorTransient bool

	// Status
	statusText string

	now func() time.Time
}

// New creates a Model wired to deps.
func New(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	ctx := deps.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	st := deps.Store
	if st == nil {
		st = store.New()
	}

	return Model{
		store:        st,
		rec:          deps.Recorder,
		factory:      deps.Factory,
		blobs:        deps.Blobs,
		assistant:    deps.Assistant,
		exporter:     deps.Exporter,
		logger:       logger,
		ctx:          ctx,
		chatModel:    deps.ChatModel,
		timeout:      timeout,
		transcribing: make(map[string]bool),
		replying:     make(map[string]bool),
		focusedPanel: FocusList,
		now:          time.Now,
	}
}

// Init has nothing to start; recording begins on the first key press.
func (m Model) Init() tea.Cmd {
	return nil
}

// startRecordingCmd opens the microphone for a new take.
func startRecordingCmd(ctx context.Context, rec Recorder) tea.Cmd {
	return func() tea.Msg {
		events, err := rec.Start(ctx)
		if err != nil {
			return RecordingStartErrorMsg{Err: err}
		}
		return RecordingStartedMsg{Events: events}
	}
}

// readEventCmd reads the next event of a take.
func readEventCmd(events <-chan recorder.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return recorderClosedMsg{events: events}
		}
		return RecorderEventMsg{Event: ev, events: events}
	}
}

// stopRecordingCmd ends the take and turns it into a recording. A stop error
// is only fatal when nothing was captured.
func stopRecordingCmd(ctx context.Context, rec Recorder, factory Finalizer, logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		take, err := rec.Stop()
		if err != nil {
			if len(take.PCM) == 0 {
				return RecordingFailedMsg{Err: err}
			}
			logger.Warn("recorder stopped with error", "error", err)
		}
		r, err := factory.Finalize(ctx, take)
		if err != nil {
			return RecordingFailedMsg{Err: err}
		}
		return RecordingCapturedMsg{Recording: r}
	}
}

// transcribeCmd sends a recording's audio to the assistant.
func transcribeCmd(ctx context.Context, timeout time.Duration, blobs BlobGetter, ai Assistant, rec memo.Recording) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		blob, err := blobs.Get(ctx, rec.AudioHandle)
		if err != nil {
			return TranscriptFailedMsg{ID: rec.ID, Err: err}
		}
		text, err := ai.Transcribe(ctx, rec.ID+".wav", blob.Data)
		if err != nil {
			return TranscriptFailedMsg{ID: rec.ID, Err: err}
		}
		return TranscriptReadyMsg{ID: rec.ID, Text: text}
	}
}

// replyCmd asks the assistant to answer the last message of rec's history.
func replyCmd(ctx context.Context, timeout time.Duration, ai Assistant, rec memo.Recording) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		msg, err := ai.Reply(ctx, rec)
		if err != nil {
			return ChatFailedMsg{ID: rec.ID, Err: err}
		}
		return ChatReplyMsg{ID: rec.ID, Message: msg}
	}
}

// exportCmd writes rec to disk.
func exportCmd(ctx context.Context, exp Exporter, rec memo.Recording) tea.Cmd {
	return func() tea.Msg {
		res, err := exp.Export(ctx, rec)
		if err != nil {
			return ExportFailedMsg{Err: err}
		}
		return ExportDoneMsg{Result: res}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.configErr != nil {
		return m.updateConfigError(msg)
	}

	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RecordingStartedMsg:
		m.starting = false
		m.recording = true
		m.stopping = false
		m.events = msg.Events
		m.micLevel = 0
		m.elapsed = 0
		m.statusText = "Recording"
		m.logger.Info("recording started")
		return m, readEventCmd(msg.Events)

	case RecordingStartErrorMsg:
		m.starting = false
		m.statusText = ""
		return m, m.showError("start recording", msg.Err)

	case RecorderEventMsg:
		if msg.events == m.events {
			m.handleEvent(msg.Event)
		}
		// Keep draining the channel the event came from, even a stale one.
		return m, readEventCmd(msg.events)

	case recorderClosedMsg:
		if msg.events != m.events {
			return m, nil
		}
		m.events = nil
		if m.recording && !m.stopping {
			// The source ended without a stop request; keep what was captured.
			m.stopping = true
			m.statusText = "Saving recording..."
			return m, stopRecordingCmd(m.ctx, m.rec, m.factory, m.logger)
		}
		return m, nil

	case RecordingCapturedMsg:
		m.resetRecording()
		r := msg.Recording
		m.store.AddRecording(r)
		m.transcribing[r.ID] = true
		m.logger.Info("recording added", "id", r.ID, "name", r.Name, "duration_s", r.DurationSeconds)
		return m, transcribeCmd(m.ctx, m.timeout, m.blobs, m.assistant, r)

	case RecordingFailedMsg:
		m.resetRecording()
		if errors.Is(msg.Err, recorder.ErrEmptyTake) {
			return m, m.showNotice("Nothing was recorded")
		}
		return m, m.showError("save recording", msg.Err)

	case TranscriptReadyMsg:
		delete(m.transcribing, msg.ID)
		m.store.UpdateTranscript(msg.ID, msg.Text)
		m.logger.Info("transcript ready", "id", msg.ID, "chars", len(msg.Text))
		return m, nil

	case TranscriptFailedMsg:
		delete(m.transcribing, msg.ID)
		return m, m.showError("transcription failed", msg.Err)

	case ChatReplyMsg:
		delete(m.replying, msg.ID)
		cur, ok := m.store.Recording(msg.ID)
		if !ok {
			return m, nil
		}
		history := append(slices.Clone(cur.ChatHistory), msg.Message)
		m.store.UpdateChatHistory(msg.ID, history)
		return m, nil

	case ChatFailedMsg:
		delete(m.replying, msg.ID)
		return m, m.showError("assistant", msg.Err)

	case ExportDoneMsg:
		m.statusText = "Exported to " + msg.Result.Dir
		m.logger.Info("recording exported", "dir", msg.Result.Dir)
		return m, nil

	case ExportFailedMsg:
		m.statusText = ""
		return m, m.showError("export", msg.Err)

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil
	}

	return m, nil
}

// handleEvent applies a recorder event to the status bar state.
func (m *Model) handleEvent(ev recorder.Event) {
	switch ev.Kind {
	case recorder.EventLevel:
		m.micLevel = ev.Level
		m.elapsed = ev.Elapsed
	case recorder.EventStopped:
		m.micLevel = 0
		m.elapsed = ev.Elapsed
	}
}

func (m *Model) resetRecording() {
	m.recording = false
	m.starting = false
	m.stopping = false
	m.events = nil
	m.micLevel = 0
	m.statusText = ""
}

// showError logs err and shows it in the error bar until it times out.
func (m *Model) showError(action string, err error) tea.Cmd {
	m.logger.Error(action, "error", err)
	m.errorMessage = fmt.Sprintf("%s: %v", action, err)
	m.errorTransient = true
	return clearTransientErrorCmd()
}

// showNotice shows a short message in the error bar without logging it.
func (m *Model) showNotice(text string) tea.Cmd {
	m.errorMessage = text
	m.errorTransient = true
	return clearTransientErrorCmd()
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		return m, tea.Quit
	}
	if m.focusedPanel == FocusChat {
		return m.handleChatKey(msg)
	}

	key := msg.String()
	if msg.Type == tea.KeySpace {
		key = KeySpace
	}

	switch key {
	case KeyQuit, KeyQuitUpper:
		return m, tea.Quit

	case KeySpace:
		return m.toggleRecording()

	case KeyTab, KeyEnter:
		m.focusedPanel = FocusChat
		return m, nil

	case KeyJ, KeyDown:
		m.moveSelection(1)
		return m, nil

	case KeyK, KeyUp:
		m.moveSelection(-1)
		return m, nil

	case KeyExport:
		return m.exportSelection()
	}

	return m, nil
}

// handleChatKey edits and sends the chat input.
func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyTab, KeyEsc:
		m.focusedPanel = FocusList
		return m, nil

	case KeyEnter:
		return m.sendChat()

	case KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.rec == nil || m.starting || m.stopping {
		return m, nil
	}
	if m.recording {
		m.stopping = true
		m.statusText = "Saving recording..."
		return m, stopRecordingCmd(m.ctx, m.rec, m.factory, m.logger)
	}
	m.starting = true
	m.errorMessage = ""
	m.errorTransient = false
	return m, startRecordingCmd(m.ctx, m.rec)
}

// moveSelection selects the recording delta rows away from the current one.
// With nothing selected it selects the first row.
func (m *Model) moveSelection(delta int) {
	recs := m.store.AllRecordings()
	if len(recs) == 0 {
		return
	}
	next := 0
	if idx := selectedIndex(m.store, recs); idx >= 0 {
		next = min(max(idx+delta, 0), len(recs)-1)
	}
	m.store.SelectRecording(recs[next].ID)
}

func (m Model) sendChat() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input)
	if text == "" {
		return m, nil
	}
	sel, ok := m.store.CurrentSelection()
	if !ok {
		return m, m.showNotice("Select a recording first")
	}
	if sel.Transcript.IsPending() {
		return m, m.showNotice("The transcript is not ready yet")
	}
	if m.replying[sel.ID] {
		return m, m.showNotice("Still waiting for the last reply")
	}
	if m.assistant == nil {
		return m, nil
	}

	history := append(slices.Clone(sel.ChatHistory), memo.NewChatMessage(memo.SenderUser, text, m.now()))
	m.store.UpdateChatHistory(sel.ID, history)
	m.input = ""
	m.replying[sel.ID] = true

	updated, _ := m.store.Recording(sel.ID)
	return m, replyCmd(m.ctx, m.timeout, m.assistant, updated)
}

func (m Model) exportSelection() (tea.Model, tea.Cmd) {
	sel, ok := m.store.CurrentSelection()
	if !ok || m.exporter == nil {
		return m, nil
	}
	m.statusText = "Exporting..."
	return m, exportCmd(m.ctx, m.exporter, sel)
}

// selectedIndex returns the row of the current selection in recs, or -1.
func selectedIndex(st *store.Store, recs []memo.Recording) int {
	sel, ok := st.CurrentSelection()
	if !ok {
		return -1
	}
	return slices.IndexFunc(recs, func(r memo.Recording) bool { return r.ID == sel.ID })
}

// busy reports whether an AI request is in flight.
func (m Model) busy() bool {
	return len(m.transcribing) > 0 || len(m.replying) > 0
}
