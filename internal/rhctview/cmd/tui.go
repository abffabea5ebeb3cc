package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/log"

	"rhctview/internal/acpi"
	"rhctview/internal/config"
	"rhctview/internal/rhct"
	"rhctview/internal/rhctview/styles"
)

type viewMode int

const (
	viewNodes viewMode = iota
	viewDetail
	viewReport
)

// headerIndex is the list index of the table header entry.
const headerIndex = -1

type nodeItem struct {
	index   int // node index, or headerIndex
	offset  int
	name    string
	known   bool
	summary string
}

func (i nodeItem) FilterValue() string {
	return i.name + " " + i.summary
}

// Custom item delegate for the node list
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(nodeItem)
	if !ok {
		return
	}

	indicator := " "
	offsetStyle := styles.Offset
	if index == m.Index() {
		indicator = ">"
		offsetStyle = styles.SelectedOffset
	}
	nameStyle := styles.NodeName
	if !i.known {
		nameStyle = styles.UnknownNode
	}

	fmt.Fprintf(w, " %s  %s  %s  %s",
		indicator,
		offsetStyle.Render(fmt.Sprintf("%04X", i.offset)),
		nameStyle.Render(fmt.Sprintf("%-18s", i.name)),
		i.summary)
}

// nodeSummary is the one-line description shown next to a node in the list.
func nodeSummary(n rhct.Node) string {
	switch b := n.Body.(type) {
	case *rhct.IsaString:
		return b.Value
	case *rhct.CmoExtension:
		return fmt.Sprintf("cbom=%d cbop=%d cboz=%d", b.CbomBlockSize, b.CbopBlockSize, b.CbozBlockSize)
	case *rhct.Mmu:
		return b.Type.String()
	case *rhct.HartInfo:
		return fmt.Sprintf("uid %d, %d offset(s)", b.AcpiProcessorUID, b.OffsetsNumber)
	case *rhct.Unknown:
		return fmt.Sprintf("type 0x%X, %d bytes", uint16(n.Type), len(b.Raw))
	}
	return ""
}

// Message types
type tableLoadedMsg struct {
	result      *decodeResult
	diagnostics string
	err         error
}

// loadTableCmd decodes the table off the UI goroutine. Diagnostics are
// captured instead of written to the terminal the TUI owns.
func loadTableCmd(cfg config.Config, level log.Level) tea.Cmd {
	return func() tea.Msg {
		var diag bytes.Buffer
		lg := log.New(&diag)
		lg.SetLevel(level)

		res, err := decodeFile(cfg.TablePath, decodeOptions{VerifyChecksum: cfg.VerifyChecksum}, lg)
		return tableLoadedMsg{result: res, diagnostics: diag.String(), err: err}
	}
}

type model struct {
	nodes       list.Model
	detail      viewport.Model
	reportView  viewport.Model
	spinner     spinner.Model
	mode        viewMode
	cfg         config.Config
	logLevel    log.Level
	result      *decodeResult
	diagnostics string
	err         error
	loading     bool
	showOffsets bool
	width       int
	height      int
}

func NewModel(cfg config.Config, logLevel log.Level) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(22)

	rvp := viewport.New()
	rvp.SetWidth(80)
	rvp.SetHeight(22)

	nodes := list.New([]list.Item{}, itemDelegate{}, 80, 22)
	nodes.SetShowStatusBar(false)
	nodes.SetFilteringEnabled(true)
	nodes.SetShowHelp(false)
	nodes.Title = "RHCT"
	nodes.Styles.Title = styles.ListTitle

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	return model{
		nodes:       nodes,
		detail:      vp,
		reportView:  rvp,
		spinner:     s,
		mode:        viewNodes,
		cfg:         cfg,
		logLevel:    logLevel,
		loading:     true,
		showOffsets: cfg.ShowOffsets,
		width:       80,
		height:      24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		loadTableCmd(m.cfg, m.logLevel),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tableLoadedMsg:
		m.loading = false
		m.result = msg.result
		m.diagnostics = msg.diagnostics
		m.err = msg.err
		m.updateNodes()
		m.updateDetail()
		m.updateReport()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.nodes.SetWidth(msg.Width)
			m.nodes.SetHeight(msg.Height - 2)
			m.detail.SetWidth(msg.Width)
			m.detail.SetHeight(msg.Height - 2)
			m.reportView.SetWidth(msg.Width)
			m.reportView.SetHeight(msg.Height - 2)
			m.updateDetail()
			m.updateReport()
		}

	case tea.KeyMsg:
		// Let the list have every key but quit while it is filtering.
		if m.mode == viewNodes && m.nodes.FilterState() == list.Filtering {
			if k := msg.String(); k == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}
		if next, cmd, handled := m.handleKey(msg.String()); handled {
			return next, cmd
		}
	}

	switch m.mode {
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case viewReport:
		m.reportView, cmd = m.reportView.Update(msg)
	default:
		m.nodes, cmd = m.nodes.Update(msg)
	}
	return m, cmd
}

// handleKey applies a navigation key. It reports false for keys the active
// view should handle itself.
func (m model) handleKey(key string) (model, tea.Cmd, bool) {
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit, true
	case "esc", "n":
		m.mode = viewNodes
		return m, nil, true
	case "r":
		if m.result != nil {
			m.mode = viewReport
		}
		return m, nil, true
	case "o":
		m.showOffsets = !m.showOffsets
		m.updateDetail()
		return m, nil, true
	case "enter":
		if m.mode == viewNodes && m.result != nil {
			m.updateDetail()
			m.mode = viewDetail
		}
		return m, nil, true
	case "tab":
		if m.result != nil {
			m.mode = (m.mode + 1) % 3
			if m.mode == viewDetail {
				m.updateDetail()
			}
		}
		return m, nil, true
	case "shift+tab":
		if m.result != nil {
			m.mode = (m.mode + 2) % 3
			if m.mode == viewDetail {
				m.updateDetail()
			}
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m model) View() string {
	var content string
	switch {
	case m.loading:
		content = fmt.Sprintf("\n  %s Decoding %s...", m.spinner.View(), m.cfg.TablePath)
	case m.result == nil:
		content = "\n  " + styles.ErrorText.Render(fmt.Sprintf("Failed to load table: %v", m.err))
	case m.mode == viewDetail:
		content = m.detail.View()
	case m.mode == viewReport:
		content = m.reportView.View()
	default:
		content = m.nodes.View()
	}

	var menu string
	switch {
	case m.result == nil:
		menu = " Q: quit "
	case m.mode == viewDetail:
		menu = " Esc: nodes • O: offsets • R: report • Tab: cycle • Q: quit "
	case m.mode == viewReport:
		menu = " N: nodes • Tab: cycle • Q: quit "
	default:
		menu = " Enter: fields • /: filter • R: report • Tab: cycle • Q: quit "
	}

	return content + "\n" + styles.MenuBar.Width(m.width).Render(menu)
}

func (m *model) updateNodes() {
	if m.result == nil || m.result.Table == nil {
		return
	}
	tbl := m.result.Table

	items := make([]list.Item, 0, len(tbl.Nodes)+1)
	items = append(items, nodeItem{
		index:   headerIndex,
		name:    "Table Header",
		known:   true,
		summary: fmt.Sprintf("%s rev %d, %d node(s)", tbl.Header.OEMTableID, tbl.Header.Revision, tbl.Header.NodeCount),
	})
	for i, n := range tbl.Nodes {
		items = append(items, nodeItem{
			index:   i,
			offset:  n.Offset,
			name:    n.Type.String(),
			known:   n.Type.Known(),
			summary: nodeSummary(n),
		})
	}
	m.nodes.SetItems(items)

	title := fmt.Sprintf("RHCT (%d nodes, %d error(s))", len(tbl.Nodes), m.result.Errors)
	m.nodes.Title = title
}

// selected returns the list entry under the cursor.
func (m *model) selected() (nodeItem, bool) {
	it, ok := m.nodes.SelectedItem().(nodeItem)
	return it, ok
}

// updateDetail renders the traced fields of the selected entry.
func (m *model) updateDetail() {
	if m.result == nil {
		return
	}
	it, ok := m.selected()
	if !ok {
		m.detail.SetContent("")
		return
	}

	section := it.index + 1
	if section >= len(m.result.Sections) {
		m.detail.SetContent("No trace recorded for this entry.")
		return
	}

	var sb strings.Builder
	s := m.result.Sections[section]
	sb.WriteString(acpi.FormatLine(acpi.Line{Name: s.Name, Section: true}, m.showOffsets, true))
	sb.WriteString("\n")
	for _, l := range s.Lines {
		l.Indent -= s.Indent
		sb.WriteString(acpi.FormatLine(l, m.showOffsets, true))
		sb.WriteString("\n")
	}

	if it.index != headerIndex {
		n := m.result.Table.Nodes[it.index]
		if hart, ok := n.Body.(*rhct.HartInfo); ok && len(hart.Offsets) > 0 {
			sb.WriteString("\nReferenced nodes:\n")
			for _, off := range hart.Offsets {
				sb.WriteString(fmt.Sprintf("  0x%04X  %s\n", off, m.nodeNameAt(int(off))))
			}
		}
	}

	m.detail.SetContent(strings.TrimSuffix(sb.String(), "\n"))
	m.detail.GotoTop()
}

// nodeNameAt names the node starting at offset, if any.
func (m *model) nodeNameAt(offset int) string {
	for _, n := range m.result.Table.Nodes {
		if n.Offset == offset {
			return n.Type.String()
		}
	}
	return styles.ErrorText.Render("no node at this offset")
}

func (m *model) updateReport() {
	if m.result == nil {
		return
	}
	md := m.result.report().Markdown()
	if m.diagnostics != "" {
		md += "\n## Diagnostics\n\n```\n" + strings.TrimSuffix(m.diagnostics, "\n") + "\n```\n"
	}

	width := m.width
	if width == 0 {
		width = 80
	}
	m.reportView.SetContent(styles.RenderMarkdown(md, width-2))
}
