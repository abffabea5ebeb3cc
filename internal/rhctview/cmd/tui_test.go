package cmd

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/log"

	"rhctview/internal/acpi"
	"rhctview/internal/config"
	"rhctview/internal/rhct"
	"rhctview/internal/ui/colorize"
)

func loadedModel(t *testing.T, data []byte) model {
	t.Helper()
	raw, err := acpi.NewTable("fixture.dat", data)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	var diag bytes.Buffer
	res := decodeRaw(raw, decodeOptions{VerifyChecksum: true}, log.New(&diag))

	cfg := config.Default()
	cfg.TablePath = "fixture.dat"
	m := NewModel(cfg, log.InfoLevel)
	next, _ := m.Update(tableLoadedMsg{result: res, diagnostics: diag.String()})
	return next.(model)
}

func plainDetail(m model) string {
	return colorize.StripANSI(m.detail.View())
}

func TestModelLoadsNodes(t *testing.T) {
	m := loadedModel(t, fixtureTable(nil))

	if m.loading {
		t.Fatal("still loading after tableLoadedMsg")
	}
	items := m.nodes.Items()
	if len(items) != 5 {
		t.Fatalf("got %d list items, want header + 4 nodes", len(items))
	}
	want := []string{"Table Header", "ISA String Node", "CMO Extension Node", "MMU Node", "Hart Info Node"}
	for i, it := range items {
		if name := it.(nodeItem).name; name != want[i] {
			t.Errorf("item %d = %q, want %q", i, name, want[i])
		}
	}
	if m.nodes.Title != "RHCT (4 nodes, 0 error(s))" {
		t.Errorf("title = %q", m.nodes.Title)
	}
	if !strings.Contains(m.View(), "Enter: fields") {
		t.Errorf("menu missing from view")
	}
}

func TestModelNavigation(t *testing.T) {
	m := loadedModel(t, fixtureTable(nil))

	m, _, handled := m.handleKey("enter")
	if !handled || m.mode != viewDetail {
		t.Fatalf("enter: mode = %v", m.mode)
	}
	detail := plainDetail(m)
	if !strings.Contains(detail, "RHCT") || !strings.Contains(detail, "Time Base Frequency") {
		t.Errorf("header detail:\n%s", detail)
	}

	m, _, _ = m.handleKey("tab")
	if m.mode != viewReport {
		t.Errorf("tab from detail: mode = %v", m.mode)
	}
	m, _, _ = m.handleKey("tab")
	if m.mode != viewNodes {
		t.Errorf("tab from report: mode = %v", m.mode)
	}
	m, _, _ = m.handleKey("shift+tab")
	if m.mode != viewReport {
		t.Errorf("shift+tab from nodes: mode = %v", m.mode)
	}
	m, _, _ = m.handleKey("esc")
	if m.mode != viewNodes {
		t.Errorf("esc: mode = %v", m.mode)
	}

	if _, cmd, _ := m.handleKey("q"); cmd == nil {
		t.Error("q did not return a command")
	}
	if _, _, handled := m.handleKey("j"); handled {
		t.Error("list keys must fall through to the list")
	}
}

func TestModelHartInfoDetail(t *testing.T) {
	m := loadedModel(t, fixtureTable(nil))
	m.nodes.Select(4)
	m, _, _ = m.handleKey("enter")

	detail := plainDetail(m)
	for _, want := range []string{"Hart Info Node", "ACPI Processor UID", "Referenced nodes:", "0x0038  ISA String Node", "0x005C  MMU Node"} {
		if !strings.Contains(detail, want) {
			t.Errorf("detail missing %q:\n%s", want, detail)
		}
	}

	m, _, _ = m.handleKey("o")
	if !m.showOffsets || !strings.Contains(plainDetail(m), "[0008:4]") {
		t.Errorf("offsets not shown after o:\n%s", plainDetail(m))
	}
}

func TestModelAbortedTable(t *testing.T) {
	m := loadedModel(t, fixtureTable(zeroMMULength))

	if got := len(m.nodes.Items()); got != 3 {
		t.Fatalf("got %d items, want header + 2 nodes", got)
	}
	if m.nodes.Title != "RHCT (2 nodes, 1 error(s))" {
		t.Errorf("title = %q", m.nodes.Title)
	}
	if !strings.Contains(m.diagnostics, "Invalid RHCT node length") {
		t.Errorf("diagnostics = %q", m.diagnostics)
	}
	// Tall enough to show the whole report.
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 400})
	m = next.(model)
	report := colorize.StripANSI(m.reportView.View())
	if !strings.Contains(report, "Diagnostics") {
		t.Errorf("report view missing diagnostics:\n%s", report)
	}
}

func TestModelLoadFailure(t *testing.T) {
	m := NewModel(config.Default(), log.InfoLevel)
	next, _ := m.Update(tableLoadedMsg{err: acpi.ErrShortTable})
	m = next.(model)

	if !strings.Contains(colorize.StripANSI(m.View()), "Failed to load table") {
		t.Errorf("view = %q", m.View())
	}
	if m, _, _ = m.handleKey("enter"); m.mode != viewNodes {
		t.Error("enter switched views without a table")
	}
}

func TestModelWindowSize(t *testing.T) {
	m := loadedModel(t, fixtureTable(nil))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(model)
	if m.width != 120 || m.height != 40 {
		t.Fatalf("size = %dx%d", m.width, m.height)
	}
	if m.detail.Height() != 38 {
		t.Errorf("detail height = %d, want 38", m.detail.Height())
	}
}

func TestNodeSummary(t *testing.T) {
	tests := []struct {
		node rhct.Node
		want string
	}{
		{rhct.Node{Body: &rhct.IsaString{Value: "rv64gc"}}, "rv64gc"},
		{rhct.Node{Body: &rhct.CmoExtension{CbomBlockSize: 6, CbopBlockSize: 6, CbozBlockSize: 7}}, "cbom=6 cbop=6 cboz=7"},
		{rhct.Node{Body: &rhct.Mmu{Type: rhct.Sv57}}, "Sv57"},
		{rhct.Node{Body: &rhct.HartInfo{AcpiProcessorUID: 3, OffsetsNumber: 2}}, "uid 3, 2 offset(s)"},
		{rhct.Node{NodeHeader: rhct.NodeHeader{Type: 9}, Body: &rhct.Unknown{Raw: make([]byte, 8)}}, "type 0x9, 8 bytes"},
	}
	for _, tt := range tests {
		if got := nodeSummary(tt.node); got != tt.want {
			t.Errorf("nodeSummary = %q, want %q", got, tt.want)
		}
	}
}
