package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stegsift/stegsift/internal/engine"
	"github.com/stegsift/stegsift/internal/preview"
	"github.com/stegsift/stegsift/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)

	okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// hit pairs one flag with the file result it came from.
type hit struct {
	res  *engine.Result
	flag types.FlagHit
}

type statusMsg string

type resultsMsg []*engine.Result

// Model represents the main state of the TUI application.
type Model struct {
	table          table.Model
	viewport       viewport.Model
	spinner        spinner.Model
	results        []*engine.Result
	hits           []hit
	filtered       []int // indices into hits after search (nil = no filter)
	quitting       bool
	ready          bool // Indicates if terminal dimensions are known
	scanning       bool // True when rescan is in progress
	hasScannedOnce bool
	height         int
	width          int
	statusMessage  string
	rescanFunc     func() ([]*engine.Result, error)
	showEmpty      bool
	showHelp       bool

	// Search state
	searchMode  bool
	searchInput textinput.Model
	searchQuery string
}

func flattenHits(results []*engine.Result) []hit {
	var hits []hit
	for _, r := range results {
		for _, f := range r.Flags {
			hits = append(hits, hit{res: r, flag: f})
		}
	}
	return hits
}

// NewModel initializes a new TUI model.
func NewModel(results []*engine.Result, rescanFunc func() ([]*engine.Result, error)) Model {
	hits := flattenHits(results)

	columns := []table.Column{
		{Title: "Pattern", Width: 12},
		{Title: "Source", Width: 18},
		{Title: "File", Width: 32},
		{Title: "Match", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Align(lipgloss.Left)

	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)

	s.Cell = lipgloss.NewStyle().
		Padding(0, 1)

	t.SetStyles(s)

	// Line spinner avoids Braille characters that render poorly on some terminals
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	ti := textinput.New()
	ti.Placeholder = "Search file, source, or match..."
	ti.CharLimit = 100
	ti.Width = 50
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	m := Model{
		table:          t,
		spinner:        sp,
		results:        results,
		hits:           hits,
		rescanFunc:     rescanFunc,
		showEmpty:      len(hits) == 0,
		hasScannedOnce: true,
		searchInput:    ti,
	}
	m.rebuildTableRows()

	if m.showEmpty {
		m.statusMessage = "q: quit | r: rescan"
	} else {
		m.statusMessage = "q: quit | ?: help | j/k: navigate | /: search | c: copy flag | r: rescan"
	}

	return m
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) rescan() tea.Cmd {
	return func() tea.Msg {
		if m.rescanFunc == nil {
			return statusMsg("Rescan not available")
		}
		results, err := m.rescanFunc()
		if err != nil {
			return statusMsg(fmt.Sprintf("Scan error: %v", err))
		}
		return resultsMsg(results)
	}
}

func (m *Model) applyFilter() {
	if m.searchQuery == "" {
		m.filtered = nil
		m.rebuildTableRows()
		return
	}
	query := strings.ToLower(m.searchQuery)
	var indices []int
	for i, h := range m.hits {
		if strings.Contains(strings.ToLower(h.res.Path), query) ||
			strings.Contains(strings.ToLower(h.flag.Source), query) ||
			strings.Contains(strings.ToLower(h.flag.Match), query) {
			indices = append(indices, i)
		}
	}
	m.filtered = indices
	m.rebuildTableRows()
}

func (m *Model) displayHits() []hit {
	if m.filtered == nil {
		return m.hits
	}
	out := make([]hit, len(m.filtered))
	for i, idx := range m.filtered {
		out[i] = m.hits[idx]
	}
	return out
}

func (m *Model) rebuildTableRows() {
	display := m.displayHits()
	rows := make([]table.Row, len(display))
	for i, h := range display {
		rows[i] = table.Row{
			h.flag.Pattern,
			h.flag.Source,
			h.res.Path,
			preview.Printable([]byte(h.flag.Match)),
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
	m.updateViewportContent()
}

func (m *Model) selectedHit() *hit {
	display := m.displayHits()
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(display) {
		return nil
	}
	return &display[idx]
}

// artifactBytes resolves the bytes the hit's source was scanned from, for
// the hexdump pane. Falls back to the match itself.
func artifactBytes(h *hit) []byte {
	for key, st := range h.res.Streams {
		if key.Locator() == h.flag.Source {
			return st.Data
		}
	}
	if p := h.res.Payload; p != nil && strings.HasPrefix(h.flag.Source, "carved:") {
		name := strings.TrimPrefix(h.flag.Source, "carved:")
		for _, e := range p.Entries {
			if e.Name == name {
				return e.Data
			}
		}
		return p.Data
	}
	// Several text chunks can share a kind, and the locator only names the
	// kind. Pick the chunk whose keyword or text actually carries the match
	// at the hit's offset; the first kind match is the fallback.
	var fallback []byte
	for _, tc := range h.res.TextChunks {
		if string(tc.Kind) != h.flag.Source {
			continue
		}
		if fallback == nil {
			fallback = []byte(tc.Text)
		}
		if matchesAt(tc.Keyword, h.flag) {
			return []byte(tc.Keyword)
		}
		if matchesAt(tc.Text, h.flag) {
			return []byte(tc.Text)
		}
	}
	if fallback != nil {
		return fallback
	}
	return []byte(h.flag.Match)
}

// matchesAt reports whether the hit's matched bytes sit at its offset in s.
func matchesAt(s string, f types.FlagHit) bool {
	end := f.Offset + len(f.Match)
	return f.Offset >= 0 && end <= len(s) && s[f.Offset:end] == f.Match
}

// previewWindow slices a bounded region of b around the hit's offset.
func previewWindow(b []byte, offset int) []byte {
	const window = 256
	start := offset - 64
	if start < 0 {
		start = 0
	}
	if start > len(b) {
		start = 0
	}
	end := start + window
	if end > len(b) {
		end = len(b)
	}
	return b[start:end]
}

func highlightHexdump(dump string) string {
	lexer := lexers.Get("hexdump")
	if lexer == nil {
		return dump
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return dump
	}

	iterator, err := lexer.Tokenise(nil, dump)
	if err != nil {
		return dump
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return dump
	}
	return buf.String()
}

func (m *Model) updateViewportContent() {
	h := m.selectedHit()
	if h == nil {
		m.viewport.SetContent("No flag selected")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File:    %s\n", h.res.Path)
	fmt.Fprintf(&b, "Source:  %s\n", h.flag.Source)
	fmt.Fprintf(&b, "Pattern: %s\n", h.flag.Pattern)
	fmt.Fprintf(&b, "Offset:  %d\n", h.flag.Offset)
	fmt.Fprintf(&b, "Match:   %s\n\n", matchStyle.Render(preview.Printable([]byte(h.flag.Match))))

	raw := previewWindow(artifactBytes(h), h.flag.Offset)
	b.WriteString(highlightHexdump(preview.HexDump(raw, len(raw))))

	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

func (m Model) copyFlagToClipboard() tea.Cmd {
	h := m.selectedHit()
	if h == nil {
		return func() tea.Msg { return statusMsg("No flag selected") }
	}
	if err := clipboard.WriteAll(h.flag.Match); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg(fmt.Sprintf("Copied: %s", h.flag.Match)) }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		tableHeight := m.height/2 - 6
		if tableHeight < 4 {
			tableHeight = 4
		}
		m.table.SetHeight(tableHeight)
		m.table.SetWidth(m.width - 4)
		m.viewport = viewport.New(m.width-4, m.height-tableHeight-8)
		m.ready = true
		m.updateViewportContent()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.statusMessage = string(msg)
		return m, nil

	case resultsMsg:
		m.scanning = false
		m.results = msg
		m.hits = flattenHits(msg)
		m.showEmpty = len(m.hits) == 0
		m.searchQuery = ""
		m.filtered = nil
		m.rebuildTableRows()
		m.statusMessage = fmt.Sprintf("Rescan complete: %d flags", len(m.hits))
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			switch msg.String() {
			case "enter":
				m.searchMode = false
				m.searchQuery = m.searchInput.Value()
				m.applyFilter()
				return m, nil
			case "esc":
				m.searchMode = false
				m.searchInput.SetValue("")
				return m, nil
			default:
				var cmd tea.Cmd
				m.searchInput, cmd = m.searchInput.Update(msg)
				return m, cmd
			}
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "esc":
			if m.showHelp {
				m.showHelp = false
				return m, nil
			}
			if m.searchQuery != "" {
				m.searchQuery = ""
				m.applyFilter()
				return m, nil
			}
		case "/":
			m.searchMode = true
			m.searchInput.SetValue("")
			return m, m.searchInput.Focus()
		case "c":
			return m, m.copyFlagToClipboard()
		case "r":
			if !m.scanning {
				m.scanning = true
				return m, tea.Batch(m.spinner.Tick, m.rescan())
			}
			return m, nil
		}
	}

	var tableCmd tea.Cmd
	m.table, tableCmd = m.table.Update(msg)
	cmds = append(cmds, tableCmd)
	m.updateViewportContent()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

const helpText = `Keys

  j/k, up/down   move selection
  /              search file, source, or match
  esc            clear search / close help
  c              copy flag to clipboard
  r              rescan
  ?              toggle this help
  q              quit`

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	if m.scanning {
		msgContent := fmt.Sprintf("%s  Rescanning...\n\nPlease wait", m.spinner.View())
		popupBox := popupStyle.
			Width(55).
			Align(lipgloss.Center).
			Render(msgContent)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupBox)
	}

	if m.showHelp {
		popupBox := popupStyle.Render(helpText)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupBox)
	}

	title := titleStyle.Render("stegsift")

	var statsContent string
	if len(m.hits) == 0 {
		statsContent = okStyle.Render("[OK] No flags found")
	} else if m.filtered != nil {
		statsContent = fmt.Sprintf("Showing: %d/%d flags  |  Files: %d  [search:'%s']",
			len(m.filtered), len(m.hits), len(m.results), m.searchQuery)
	} else {
		statsContent = fmt.Sprintf("Flags: %-4d  |  Files: %d", len(m.hits), len(m.results))
	}

	var body string
	if m.showEmpty {
		body = emptyTextStyle.Width(m.width).Render("\nNothing hidden here, or nothing matched.\nPress r to rescan.\n")
	} else {
		body = tableBorderStyle.Render(m.table.View()) + "\n" +
			detailPaneBorderStyle.Render(m.viewport.View())
	}

	var searchBar string
	if m.searchMode {
		searchBar = m.searchInput.View() + "\n"
	}

	status := statusStyle.Width(m.width).Render(" " + m.statusMessage)

	return title + "\n" + statsContent + "\n" + body + "\n" + searchBar + status
}
