package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stegsift/stegsift/internal/bitplane"
	"github.com/stegsift/stegsift/internal/engine"
	"github.com/stegsift/stegsift/internal/types"
)

func sampleResults() []*engine.Result {
	return []*engine.Result{
		{
			Path: "a.png",
			Flags: []types.FlagHit{
				{Source: "tEXt", Pattern: "flag_brace", Match: "flag{one}", Offset: 3},
				{Source: "R/bit0/msb", Pattern: "flag_brace", Match: "flag{two}", Offset: 0},
			},
			TextChunks: []types.TextChunkRecord{{Kind: types.TextPlain, Keyword: "k", Text: "xx flag{one}"}},
			Streams: map[bitplane.PlaneKey]*bitplane.Stream{
				{Channel: "R", Bit: 0, Order: bitplane.OrderMSB}: {Data: []byte("flag{two} trailing")},
			},
		},
		{
			Path:  "b.png",
			Flags: []types.FlagHit{{Source: "carved:loot.txt", Pattern: "htb", Match: "HTB{three}", Offset: 0}},
			Payload: &types.CarvedPayload{
				Origin:  "after-iend",
				Data:    []byte("zipdata"),
				Entries: []types.ArchiveEntry{{Name: "loot.txt", Data: []byte("HTB{three}")}},
			},
		},
	}
}

func TestNewModel_BuildsRows(t *testing.T) {
	m := NewModel(sampleResults(), nil)
	if len(m.hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(m.hits))
	}
	if len(m.table.Rows()) != 3 {
		t.Fatalf("expected 3 table rows, got %d", len(m.table.Rows()))
	}
	if m.showEmpty {
		t.Fatal("showEmpty should be false with hits present")
	}
}

func TestNewModel_Empty(t *testing.T) {
	m := NewModel(nil, nil)
	if !m.showEmpty {
		t.Fatal("expected showEmpty for no results")
	}
}

func TestApplyFilter(t *testing.T) {
	m := NewModel(sampleResults(), nil)
	m.searchQuery = "htb"
	m.applyFilter()
	if len(m.filtered) != 1 {
		t.Fatalf("expected 1 filtered hit, got %d", len(m.filtered))
	}
	if len(m.table.Rows()) != 1 {
		t.Fatalf("expected 1 table row after filter, got %d", len(m.table.Rows()))
	}

	m.searchQuery = ""
	m.applyFilter()
	if m.filtered != nil {
		t.Fatal("expected filter cleared")
	}
	if len(m.table.Rows()) != 3 {
		t.Fatalf("expected all rows restored, got %d", len(m.table.Rows()))
	}
}

func TestArtifactBytes_Resolution(t *testing.T) {
	results := sampleResults()
	m := NewModel(results, nil)

	// stream hit resolves to stream bytes
	var streamHit, carveHit, textHit *hit
	for i := range m.hits {
		switch m.hits[i].flag.Source {
		case "R/bit0/msb":
			streamHit = &m.hits[i]
		case "carved:loot.txt":
			carveHit = &m.hits[i]
		case "tEXt":
			textHit = &m.hits[i]
		}
	}
	if got := string(artifactBytes(streamHit)); got != "flag{two} trailing" {
		t.Fatalf("stream bytes: %q", got)
	}
	if got := string(artifactBytes(carveHit)); got != "HTB{three}" {
		t.Fatalf("entry bytes: %q", got)
	}
	if got := string(artifactBytes(textHit)); got != "xx flag{one}" {
		t.Fatalf("text bytes: %q", got)
	}
}

func TestArtifactBytes_MultipleTextChunks(t *testing.T) {
	res := &engine.Result{
		Path: "c.png",
		Flags: []types.FlagHit{
			{Source: "tEXt", Pattern: "flag_brace", Match: "flag{second}", Offset: 6},
			{Source: "tEXt", Pattern: "flag_brace", Match: "flag{kw}", Offset: 0},
		},
		TextChunks: []types.TextChunkRecord{
			{Kind: types.TextPlain, Keyword: "comment", Text: "nothing here"},
			{Kind: types.TextPlain, Keyword: "note", Text: "see:  flag{second} end"},
			{Kind: types.TextPlain, Keyword: "flag{kw}", Text: "plain"},
		},
	}
	m := NewModel([]*engine.Result{res}, nil)
	if got := string(artifactBytes(&m.hits[0])); got != "see:  flag{second} end" {
		t.Fatalf("wrong chunk resolved: %q", got)
	}
	if got := string(artifactBytes(&m.hits[1])); got != "flag{kw}" {
		t.Fatalf("keyword hit resolved to %q", got)
	}
}

func TestPreviewWindow(t *testing.T) {
	b := make([]byte, 1000)
	if got := previewWindow(b, 0); len(got) != 256 {
		t.Fatalf("window at start: %d", len(got))
	}
	if got := previewWindow(b, 990); len(got) == 0 {
		t.Fatal("window near end must not be empty")
	}
	if got := previewWindow([]byte("tiny"), 0); len(got) != 4 {
		t.Fatalf("small buffer: %d", len(got))
	}
}

func TestUpdate_ResultsMsg(t *testing.T) {
	m := NewModel(sampleResults(), nil)
	updated, _ := m.Update(resultsMsg(nil))
	m2 := updated.(Model)
	if !m2.showEmpty {
		t.Fatal("expected empty state after rescan with no results")
	}
	if m2.scanning {
		t.Fatal("scanning flag should clear")
	}
}

func TestUpdate_StatusMsg(t *testing.T) {
	m := NewModel(nil, nil)
	updated, _ := m.Update(statusMsg("hello"))
	if updated.(Model).statusMessage != "hello" {
		t.Fatal("status message not applied")
	}
}

func TestUpdate_Quit(t *testing.T) {
	m := NewModel(nil, nil)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !updated.(Model).quitting {
		t.Fatal("expected quitting")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestUpdate_SearchMode(t *testing.T) {
	m := NewModel(sampleResults(), nil)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m2 := updated.(Model)
	if !m2.searchMode {
		t.Fatal("expected search mode")
	}
	updated, _ = m2.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if updated.(Model).searchMode {
		t.Fatal("esc should leave search mode")
	}
}

func TestRescanWithoutFunc(t *testing.T) {
	m := NewModel(nil, nil)
	cmd := m.rescan()
	msg := cmd()
	if s, ok := msg.(statusMsg); !ok || s != "Rescan not available" {
		t.Fatalf("unexpected msg: %#v", msg)
	}
}

func TestRescanDeliversResults(t *testing.T) {
	want := sampleResults()
	m := NewModel(nil, func() ([]*engine.Result, error) { return want, nil })
	msg := m.rescan()()
	got, ok := msg.(resultsMsg)
	if !ok {
		t.Fatalf("unexpected msg: %#v", msg)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
}
