package components

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/browser"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/remotepath"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/transfer"
)

const (
	panelLocal = iota
	panelRemote
)

const logHeight = 6

// Panel is one side of the split view.
type Panel struct {
	Path         string
	Entries      []ssh.Entry
	SelectedIdx  int
	ScrollOffset int
	Marked       map[string]bool
}

// SetEntries replaces the listing. Cursor and marks survive a refresh of the
// same directory and are reset when the directory changes.
func (p *Panel) SetEntries(path string, entries []ssh.Entry) {
	if path != p.Path {
		p.SelectedIdx = 0
		p.ScrollOffset = 0
		p.Marked = nil
	}
	p.Path = path
	p.Entries = entries
	if p.SelectedIdx >= len(entries) {
		p.SelectedIdx = max(0, len(entries)-1)
	}
	for name := range p.Marked {
		if !hasEntry(entries, name) {
			delete(p.Marked, name)
		}
	}
}

func hasEntry(entries []ssh.Entry, name string) bool {
	for _, e := range entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Selected returns the entry under the cursor.
func (p *Panel) Selected() (ssh.Entry, bool) {
	if p.SelectedIdx < 0 || p.SelectedIdx >= len(p.Entries) {
		return ssh.Entry{}, false
	}
	return p.Entries[p.SelectedIdx], true
}

// ToggleMark marks or unmarks the file under the cursor. Directories are
// transferred as folders and cannot be marked.
func (p *Panel) ToggleMark() {
	e, ok := p.Selected()
	if !ok || e.IsDir {
		return
	}
	if p.Marked == nil {
		p.Marked = make(map[string]bool)
	}
	if p.Marked[e.Name] {
		delete(p.Marked, e.Name)
	} else {
		p.Marked[e.Name] = true
	}
}

// FileSelection returns the marked file names in listing order, or the file
// under the cursor when nothing is marked.
func (p *Panel) FileSelection() []string {
	var names []string
	for _, e := range p.Entries {
		if p.Marked[e.Name] && !e.IsDir {
			names = append(names, e.Name)
		}
	}
	if len(names) > 0 {
		return names
	}
	if e, ok := p.Selected(); ok && !e.IsDir {
		return []string{e.Name}
	}
	return nil
}

// FolderSelection returns the directory under the cursor.
func (p *Panel) FolderSelection() (string, bool) {
	e, ok := p.Selected()
	if !ok || !e.IsDir {
		return "", false
	}
	return e.Name, true
}

func (p *Panel) move(delta int) {
	next := p.SelectedIdx + delta
	if next < 0 {
		next = 0
	}
	if next > len(p.Entries)-1 {
		next = max(0, len(p.Entries)-1)
	}
	p.SelectedIdx = next
}

// InputMode is the prompt currently shown in the status bar.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeMkdir
	ModeChangeDir
)

// LocalListMsg carries a fresh local listing.
type LocalListMsg struct {
	Path    string
	Entries []ssh.Entry
	Err     error
}

// RemoteListMsg reports that the remote directory model was reloaded.
type RemoteListMsg struct {
	Path string
	Err  error
}

// JobEventMsg wraps one event from the dispatcher.
type JobEventMsg struct {
	Event transfer.Event
}

// MkdirMsg reports a remote directory creation.
type MkdirMsg struct {
	Path string
	Err  error
}

// ClipboardMsg reports a copy to the system clipboard.
type ClipboardMsg struct {
	Text string
	Err  error
}

// DisconnectedMsg is sent once the session has been closed on request.
type DisconnectedMsg struct{}

// TransferManager is the split local/remote browser that submits transfer
// jobs and shows their progress.
type TransferManager struct {
	session    *ssh.Session
	dispatcher *transfer.Dispatcher
	remoteDir  *browser.Directory
	settings   config.Settings
	logger     zerolog.Logger
	title      string

	localPanel  Panel
	remotePanel Panel
	activePanel int

	inputMode InputMode
	input     textinput.Model

	extractRemote bool
	extractLocal  bool

	status     string
	statusKind string // "", "success" or "error"
	percent    int

	log     *ActivityLog
	logView viewport.Model
	bar     progress.Model

	width  int
	height int

	connected     bool
	disconnecting bool
	// disconnectAfterJob defers the disconnect until the cancelled job has
	// reported its result.
	disconnectAfterJob bool
}

// NewTransferManager creates the view for a connected session, starting in
// remoteStart on the remote side and settings.LocalDir locally.
func NewTransferManager(session *ssh.Session, dispatcher *transfer.Dispatcher, settings config.Settings, logger zerolog.Logger, title, remoteStart string) *TransferManager {
	localStart := settings.LocalDir
	if localStart == "" {
		localStart, _ = os.Getwd()
	}

	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 4096

	t := &TransferManager{
		session:       session,
		dispatcher:    dispatcher,
		remoteDir:     browser.NewDirectory(remoteStart),
		settings:      settings,
		logger:        logger.With().Str("component", "ui").Logger(),
		title:         title,
		localPanel:    Panel{Path: localStart},
		remotePanel:   Panel{Path: remotepath.Normalize(remoteStart)},
		activePanel:   panelLocal,
		input:         input,
		extractRemote: settings.ExtractRemote,
		extractLocal:  settings.ExtractLocal,
		status:        "Connected",
		connected:     true,
		log:           NewActivityLog(),
		logView:       viewport.New(80, logHeight),
		bar:           progress.New(progress.WithDefaultGradient()),
	}
	t.addLog("Connected to %s", title)
	return t
}

// Init lists both sides.
func (t *TransferManager) Init() tea.Cmd {
	return tea.Batch(listLocal(t.localPanel.Path), t.changeRemoteDir(t.remotePanel.Path))
}

func (t *TransferManager) addLog(format string, args ...any) {
	t.log.Add(format, args...)
	t.logView.SetContent(t.log.String())
	t.logView.GotoBottom()
}

func (t *TransferManager) setStatus(kind, format string, args ...any) {
	t.status = fmt.Sprintf(format, args...)
	t.statusKind = kind
}

// SetConnected applies a connectivity change of the session. Transfers and
// remote changes are refused while disconnected.
func (t *TransferManager) SetConnected(connected bool) {
	if t.connected == connected {
		return
	}
	t.connected = connected
	if connected {
		t.addLog("Reconnected")
		t.setStatus("success", "Connected")
		return
	}
	t.addLog("Connection closed")
	if !t.disconnecting {
		t.setStatus("error", "Disconnected")
	}
}

// Connected reports the last known connectivity.
func (t *TransferManager) Connected() bool {
	return t.connected
}

// Disconnecting reports whether a disconnect was requested from this view.
func (t *TransferManager) Disconnecting() bool {
	return t.disconnecting
}

// Log returns the activity log.
func (t *TransferManager) Log() *ActivityLog {
	return t.log
}

func (t *TransferManager) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.logView.Width = width
	t.logView.Height = logHeight
	t.bar.Width = max(width/3, 10)
}

// Update handles messages
func (t *TransferManager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.SetSize(msg.Width, msg.Height)
		return t, nil

	case LocalListMsg:
		if msg.Err != nil {
			t.addLog("Failed to list local directory %s: %v", msg.Path, msg.Err)
			t.setStatus("error", "Failed to list %s", msg.Path)
			return t, nil
		}
		t.localPanel.SetEntries(msg.Path, msg.Entries)
		return t, nil

	case RemoteListMsg:
		if msg.Err != nil {
			t.addLog("Failed to list remote directory %s: %v", msg.Path, msg.Err)
			t.setStatus("error", "Failed to list %s", msg.Path)
			return t, nil
		}
		t.remotePanel.SetEntries(t.remoteDir.Path(), t.remoteDir.Entries())
		return t, nil

	case JobEventMsg:
		return t, t.handleEvent(msg.Event)

	case MkdirMsg:
		if msg.Err != nil {
			t.addLog("Failed to create %s: %v", msg.Path, msg.Err)
			t.setStatus("error", "Failed to create %s", msg.Path)
			return t, nil
		}
		t.addLog("Created %s", msg.Path)
		t.setStatus("success", "Created %s", msg.Path)
		return t, t.changeRemoteDir(t.remotePanel.Path)

	case ClipboardMsg:
		if msg.Err != nil {
			t.addLog("Failed to copy to clipboard: %v", msg.Err)
			return t, nil
		}
		t.addLog("Copied %s", msg.Text)
		return t, nil

	case tea.KeyMsg:
		if t.inputMode != ModeNormal {
			return t.handleInputMode(msg)
		}
		return t.handleKey(msg)
	}

	return t, nil
}

// handleEvent applies one dispatcher event. A finished upload refreshes the
// remote side, a finished download the local side.
func (t *TransferManager) handleEvent(ev transfer.Event) tea.Cmd {
	switch ev.Type {
	case transfer.EventProgress:
		t.percent = ev.Percent

	case transfer.EventStatus:
		t.setStatus("", "%s", ev.Status)
		t.addLog("%s", ev.Status)

	case transfer.EventFinished:
		res := ev.Result
		if res == nil {
			return nil
		}
		switch {
		case res.OK:
			t.percent = 100
			t.setStatus("success", "%s", res.Message)
			t.addLog("%s (%s in %s)", res.Message, humanize.IBytes(uint64(res.Bytes)), res.Duration.Round(time.Millisecond))
		default:
			t.setStatus("error", "%s", res.Message)
			t.addLog("%s", res.Message)
		}
		if t.disconnectAfterJob {
			t.disconnectAfterJob = false
			return t.disconnect()
		}
		if ev.Kind.Upload() {
			t.localPanel.Marked = nil
			return t.changeRemoteDir(t.remotePanel.Path)
		}
		t.remotePanel.Marked = nil
		return listLocal(t.localPanel.Path)
	}
	return nil
}

func (t *TransferManager) activePanelRef() *Panel {
	if t.activePanel == panelLocal {
		return &t.localPanel
	}
	return &t.remotePanel
}

// handleKey handles keyboard input
func (t *TransferManager) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if t.disconnecting {
		return t, nil
	}

	switch msg.String() {
	case "u", "U", "d", "D", "m":
		if !t.connected {
			t.addLog("Not connected")
			return t, nil
		}
	}

	switch msg.String() {
	case "tab":
		t.activePanel = 1 - t.activePanel
		return t, nil

	case "up", "k":
		t.activePanelRef().move(-1)
		return t, nil

	case "down", "j":
		t.activePanelRef().move(1)
		return t, nil

	case "pgup":
		t.activePanelRef().move(-10)
		return t, nil

	case "pgdown":
		t.activePanelRef().move(10)
		return t, nil

	case " ":
		t.activePanelRef().ToggleMark()
		t.activePanelRef().move(1)
		return t, nil

	case "enter":
		return t, t.enterDirectory()

	case "backspace", "h":
		return t, t.goUpDirectory()

	case "ctrl+r":
		return t, tea.Batch(listLocal(t.localPanel.Path), t.changeRemoteDir(t.remotePanel.Path))

	case "u":
		return t, t.uploadSelection(t.settings.FolderMode)

	case "U":
		return t, t.uploadFolder()

	case "d":
		return t, t.downloadSelection(t.settings.FolderMode)

	case "D":
		return t, t.downloadFolder()

	case "e":
		t.extractRemote = !t.extractRemote
		t.extractLocal = t.extractRemote
		if t.extractRemote {
			t.addLog("Folder archives will be extracted")
		} else {
			t.addLog("Folder archives will be kept as .tar.gz")
		}
		return t, nil

	case "m":
		return t, t.prompt(ModeMkdir, "")

	case "g":
		return t, t.prompt(ModeChangeDir, t.activePanelRef().Path)

	case "c":
		if t.dispatcher.Cancel() {
			t.addLog("Cancelling...")
			t.setStatus("", "Cancelling...")
		} else {
			t.addLog("No transfer is running")
		}
		return t, nil

	case "y":
		return t, copyToClipboard(t.copyTarget())

	case "x":
		t.disconnecting = true
		t.setStatus("", "Disconnecting...")
		if t.dispatcher.Cancel() {
			t.disconnectAfterJob = true
			t.addLog("Cancelling the running transfer before disconnecting")
			return t, nil
		}
		return t, t.disconnect()
	}

	return t, nil
}

func (t *TransferManager) disconnect() tea.Cmd {
	session := t.session
	return func() tea.Msg {
		session.Disconnect()
		return DisconnectedMsg{}
	}
}

// copyTarget is the remote path of the selected entry, or of the current
// remote directory when the local side is active.
func (t *TransferManager) copyTarget() string {
	if t.activePanel == panelRemote {
		if e, ok := t.remotePanel.Selected(); ok {
			return remotepath.Join(t.remotePanel.Path, e.Name)
		}
	}
	return t.remotePanel.Path
}

func (t *TransferManager) prompt(mode InputMode, value string) tea.Cmd {
	t.inputMode = mode
	t.input.SetValue(value)
	t.input.CursorEnd()
	return t.input.Focus()
}

func (t *TransferManager) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		t.inputMode = ModeNormal
		t.input.Blur()
		return t, nil

	case "enter":
		value := strings.TrimSpace(t.input.Value())
		mode := t.inputMode
		t.inputMode = ModeNormal
		t.input.Blur()
		if value == "" {
			return t, nil
		}
		if mode == ModeMkdir {
			return t, t.makeRemoteDir(t.resolveRemote(value))
		}
		if t.activePanel == panelRemote {
			return t, t.changeRemoteDir(t.resolveRemote(value))
		}
		return t, listLocal(t.resolveLocal(value))
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

func (t *TransferManager) resolveRemote(p string) string {
	if strings.HasPrefix(p, "/") {
		return remotepath.Normalize(p)
	}
	return remotepath.Join(t.remotePanel.Path, p)
}

func (t *TransferManager) resolveLocal(p string) string {
	p = config.ExpandPath(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(t.localPanel.Path, p)
	}
	return filepath.Clean(p)
}

func (t *TransferManager) enterDirectory() tea.Cmd {
	if t.activePanel == panelLocal {
		name, ok := t.localPanel.FolderSelection()
		if !ok {
			return nil
		}
		return listLocal(filepath.Join(t.localPanel.Path, name))
	}

	e, ok := t.remotePanel.Selected()
	if !ok {
		return nil
	}
	// Enter on a file is a no-op.
	target, err := t.remoteDir.Descend(e.Name)
	if err != nil {
		return nil
	}
	return t.changeRemoteDir(target)
}

func (t *TransferManager) goUpDirectory() tea.Cmd {
	if t.activePanel == panelLocal {
		parent := filepath.Dir(t.localPanel.Path)
		if parent == t.localPanel.Path {
			return nil
		}
		return listLocal(parent)
	}
	if t.remotePanel.Path == remotepath.Root {
		return nil
	}
	return t.changeRemoteDir(t.remoteDir.Up())
}

// uploadSelection uploads the marked local files. With folderMode a
// highlighted directory is uploaded as a folder when nothing is marked.
func (t *TransferManager) uploadSelection(folderMode bool) tea.Cmd {
	if folderMode && len(t.localPanel.Marked) == 0 {
		if _, ok := t.localPanel.FolderSelection(); ok {
			return t.uploadFolder()
		}
	}
	names := t.localPanel.FileSelection()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(t.localPanel.Path, name)
	}
	return t.submit(transfer.NewUploadFiles(paths, t.remotePanel.Path))
}

func (t *TransferManager) uploadFolder() tea.Cmd {
	var folder string
	if name, ok := t.localPanel.FolderSelection(); ok {
		folder = filepath.Join(t.localPanel.Path, name)
	}
	return t.submit(transfer.NewUploadFolder(folder, t.remotePanel.Path, t.extractRemote))
}

func (t *TransferManager) downloadSelection(folderMode bool) tea.Cmd {
	if folderMode && len(t.remotePanel.Marked) == 0 {
		if _, ok := t.remotePanel.FolderSelection(); ok {
			return t.downloadFolder()
		}
	}
	names := t.remotePanel.FileSelection()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = remotepath.Join(t.remotePanel.Path, name)
	}
	return t.submit(transfer.NewDownloadFiles(paths, t.localPanel.Path))
}

func (t *TransferManager) downloadFolder() tea.Cmd {
	var folder string
	if name, ok := t.remotePanel.FolderSelection(); ok {
		folder = remotepath.Join(t.remotePanel.Path, name)
	}
	return t.submit(transfer.NewDownloadFolder(folder, t.localPanel.Path, t.extractLocal))
}

// submit validates job and hands it to the dispatcher. Selection problems
// are reported without starting a job.
func (t *TransferManager) submit(job transfer.Job) tea.Cmd {
	if t.dispatcher.Busy() {
		t.addLog("A transfer is already running, press c to cancel it")
		return nil
	}
	if err := job.Validate(); err != nil {
		t.addLog("%v", err)
		t.setStatus("error", "%v", err)
		return nil
	}
	if err := t.dispatcher.Submit(job); err != nil {
		t.addLog("Failed to start transfer: %v", err)
		t.setStatus("error", "Failed to start transfer")
		return nil
	}
	t.percent = 0
	t.setStatus("", "Starting %s...", strings.ReplaceAll(job.Kind.String(), "_", " "))
	t.logger.Info().Str("job", job.ID.String()).Str("kind", job.Kind.String()).Int("sources", len(job.Sources)).Msg("job submitted from ui")
	return nil
}

func (t *TransferManager) changeRemoteDir(path string) tea.Cmd {
	dir, session, timeout := t.remoteDir, t.session, t.settings.CommandTimeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return RemoteListMsg{Path: path, Err: dir.ChangeDir(ctx, session, path)}
	}
}

func (t *TransferManager) makeRemoteDir(path string) tea.Cmd {
	session, timeout := t.session, t.settings.CommandTimeout
	return func() tea.Msg {
		return MkdirMsg{Path: path, Err: session.MakeDir(context.Background(), path, timeout)}
	}
}

func listLocal(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := browser.ListLocal(path)
		return LocalListMsg{Path: path, Entries: entries, Err: err}
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardMsg{Text: text, Err: clipboard.WriteAll(text)}
	}
}

// View renders the component
func (t *TransferManager) View() string {
	header := headerBarStyle.Width(t.width).Render(t.title)

	// header, progress line, log border + log, status bar
	reserved := 1 + 1 + logHeight + 1 + 1
	content := t.renderPanels(max(t.height-reserved, 6))

	progressLine := lipgloss.JoinHorizontal(lipgloss.Center, t.bar.ViewAs(float64(t.percent)/100), "  ", t.renderStatus())
	logBox := logBoxStyle.Width(t.width).Render(t.logView.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, content, progressLine, logBox, t.renderFooter())
}

func (t *TransferManager) renderStatus() string {
	switch t.statusKind {
	case "success":
		return successTextStyle.Render(t.status)
	case "error":
		return errorTextStyle.Render(t.status)
	default:
		return mutedTextStyle.Render(t.status)
	}
}

func (t *TransferManager) renderFooter() string {
	var text string
	switch t.inputMode {
	case ModeMkdir:
		text = "New remote directory: " + t.input.View()
	case ModeChangeDir:
		text = "Go to: " + t.input.View()
	default:
		extract := "on"
		if !t.extractRemote {
			extract = "off"
		}
		text = fmt.Sprintf("u/d files  U/D folder  space mark  m mkdir  g goto  c cancel  y copy path  e extract [%s]  x disconnect", extract)
	}
	return statusBarStyle.Width(t.width).Render(text)
}

func (t *TransferManager) renderPanels(availableHeight int) string {
	panelWidth := max((t.width/2)-2, 20)
	// borders and the title line
	rows := max(availableHeight-3, 1)

	render := func(title string, p *Panel, active bool) string {
		style := panelStyle
		if active {
			style = activePanelStyle
		}
		body := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Width(panelWidth-2).Bold(true).Render(truncate(title, panelWidth-2)),
			renderRows(p, rows, panelWidth-2),
		)
		return style.Width(panelWidth).Height(availableHeight - 2).Render(body)
	}

	local := render("Local: "+t.localPanel.Path, &t.localPanel, t.activePanel == panelLocal)
	remote := render("Remote: "+t.remotePanel.Path, &t.remotePanel, t.activePanel == panelRemote)
	return lipgloss.JoinHorizontal(lipgloss.Top, local, remote)
}

// renderRows renders the visible part of a panel, keeping the cursor in view.
func renderRows(p *Panel, maxRows, width int) string {
	if len(p.Entries) == 0 {
		return mutedTextStyle.Render("  (empty directory)")
	}

	if p.SelectedIdx < p.ScrollOffset {
		p.ScrollOffset = p.SelectedIdx
	}
	if p.SelectedIdx >= p.ScrollOffset+maxRows {
		p.ScrollOffset = p.SelectedIdx - maxRows + 1
	}

	// [mark 2][name ?][sp 1][type 4][sp 1][size 10][sp 1][mtime 16]
	nameWidth := max(width-35, 8)
	typeStyle := lipgloss.NewStyle().Width(4).Foreground(colorInactive)
	sizeStyle := lipgloss.NewStyle().Width(10).Align(lipgloss.Right).Foreground(colorSubText)
	dateStyle := lipgloss.NewStyle().Width(16).Align(lipgloss.Right).Foreground(colorInactive)

	end := min(p.ScrollOffset+maxRows, len(p.Entries))
	lines := make([]string, 0, end-p.ScrollOffset)
	for i := p.ScrollOffset; i < end; i++ {
		e := p.Entries[i]
		kind, size, mtime := EntryColumns(e)

		mark := "  "
		nameStyle := lipgloss.NewStyle().Width(nameWidth)
		switch {
		case p.Marked[e.Name]:
			mark = "* "
			nameStyle = markedStyle.Width(nameWidth)
		case e.IsDir:
			nameStyle = dirStyle.Width(nameWidth)
		}

		line := lipgloss.JoinHorizontal(lipgloss.Bottom,
			mark,
			nameStyle.Render(truncate(e.Name, nameWidth)), " ",
			typeStyle.Render(kind), " ",
			sizeStyle.Render(size), " ",
			dateStyle.Render(mtime),
		)
		if i == p.SelectedIdx {
			line = selectedRowStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// EntryColumns formats the type, size and modification time columns of a
// listing row. Directories have no size; an unknown mtime is left blank.
func EntryColumns(e ssh.Entry) (kind, size, mtime string) {
	switch {
	case e.IsDir:
		kind = "dir"
	case e.FileMode()&os.ModeSymlink != 0:
		kind = "link"
	default:
		kind = "file"
	}
	if !e.IsDir {
		size = humanize.IBytes(uint64(e.Size))
	}
	if !e.ModTime.IsZero() {
		mtime = e.ModTime.Format("2006-01-02 15:04")
	}
	return kind, size, mtime
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
