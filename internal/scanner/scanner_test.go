// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// Unit tests for the scanner.

package scanner

import (
	"strings"
	"testing"

	"github.com/gmofishsauce/logisim/internal/names"
)

func mustScan(t *testing.T, src string) (*Scanner, *names.Table) {
	t.Helper()
	tbl := names.New()
	sc, err := New(strings.NewReader(src), tbl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sc, tbl
}

func TestKeywordsAndNames(t *testing.T) {
	sc, tbl := mustScan(t, "DEVICES g1 : AND 2 ;")

	sym := sc.Next()
	if sym.Kind != KEYWORD || sym.ID != names.DEVICES {
		t.Fatalf("expected DEVICES keyword, got %+v", sym)
	}

	sym = sc.Next()
	if sym.Kind != NAME {
		t.Fatalf("expected NAME, got %+v", sym)
	}
	if s, _ := tbl.Resolve(sym.ID); s != "g1" {
		t.Fatalf("expected name g1, got %q", s)
	}

	if sc.Next().Kind != COLON {
		t.Fatalf("expected COLON")
	}
	if k := sc.Next(); k.Kind != KEYWORD || k.ID != names.AND {
		t.Fatalf("expected AND keyword, got %+v", k)
	}
	if n := sc.Next(); n.Kind != NUMBER || n.Number != PlainInt || n.Int != 2 {
		t.Fatalf("expected plain int 2, got %+v", n)
	}
	if sc.Next().Kind != SEMICOLON {
		t.Fatalf("expected SEMICOLON")
	}
	if sc.Next().Kind != EOF {
		t.Fatalf("expected EOF")
	}
}

func TestSwitchBitContext(t *testing.T) {
	tests := []struct {
		src     string
		wantInt int
	}{
		{"SWITCH 0", 0},
		{"SWITCH 1", 1},
		{"SWITCH 2", 2},
		{"SWITCH 23", 2}, // multi-digit -> sentinel "not a bit"
	}
	for _, tt := range tests {
		sc, _ := mustScan(t, tt.src)
		if sc.Next().Kind != KEYWORD {
			t.Fatalf("%q: expected SWITCH keyword", tt.src)
		}
		n := sc.Next()
		if n.Kind != NUMBER || n.Number != SwitchBit || n.Int != tt.wantInt {
			t.Fatalf("%q: got %+v, want SwitchBit %d", tt.src, n, tt.wantInt)
		}
	}
}

func TestSiggenWaveformContext(t *testing.T) {
	sc, _ := mustScan(t, "SIGGEN 0011")
	if sc.Next().Kind != KEYWORD {
		t.Fatalf("expected SIGGEN keyword")
	}
	n := sc.Next()
	if n.Kind != NUMBER || n.Number != Waveform || n.Raw != "0011" {
		t.Fatalf("got %+v, want Waveform \"0011\"", n)
	}
}

func TestCommentsAndPunctuation(t *testing.T) {
	src := "a > b # trailing comment\n/* block\ncomment */ c.d, e:f;"
	sc, tbl := mustScan(t, src)

	want := []Kind{NAME, ARROW, NAME, NAME, DOT, NAME, COMMA, NAME, COLON, NAME, SEMICOLON, EOF}
	var gotNames []string
	for _, k := range want {
		sym := sc.Next()
		if sym.Kind != k {
			t.Fatalf("got kind %v, want %v (sym=%+v)", sym.Kind, k, sym)
		}
		if sym.Kind == NAME {
			s, _ := tbl.Resolve(sym.ID)
			gotNames = append(gotNames, s)
		}
	}
	wantNames := []string{"a", "b", "c", "d", "e", "f"}
	if strings.Join(gotNames, ",") != strings.Join(wantNames, ",") {
		t.Fatalf("got names %v, want %v", gotNames, wantNames)
	}
}

func TestUnterminatedBlockCommentYieldsEOF(t *testing.T) {
	sc, _ := mustScan(t, "DEVICES /* never closed")
	if sc.Next().Kind != KEYWORD {
		t.Fatalf("expected DEVICES keyword first")
	}
	if sc.Next().Kind != EOF {
		t.Fatalf("expected EOF after unterminated comment")
	}
}

func TestBareSlashIsInvalidAndSkipped(t *testing.T) {
	sc, _ := mustScan(t, "a / b")
	first := sc.Next()
	if first.Kind != NAME {
		t.Fatalf("expected NAME a, got %+v", first)
	}
	second := sc.Next()
	if second.Kind != NAME {
		t.Fatalf("expected NAME b after skipped bare slash, got %+v", second)
	}
}

func TestTabWidthFourColumns(t *testing.T) {
	sc, _ := mustScan(t, "\ta")
	sym := sc.Next()
	if sym.Column != 5 {
		t.Fatalf("expected column 5 after one tab, got %d", sym.Column)
	}
}

func TestLineNumberAdvancesOnNewline(t *testing.T) {
	sc, _ := mustScan(t, "a\nb")
	first := sc.Next()
	if first.Line != 1 {
		t.Fatalf("expected line 1, got %d", first.Line)
	}
	second := sc.Next()
	if second.Line != 2 || second.Column != 1 {
		t.Fatalf("expected line 2 column 1, got line=%d column=%d", second.Line, second.Column)
	}
}

func TestFormatErrorPointsAtFirstCharacter(t *testing.T) {
	sc, _ := mustScan(t, "DEVICES D2:DTYPE 3,")
	for {
		sym := sc.Next()
		if sym.Kind == NUMBER {
			out := sc.FormatError(sym)
			lines := strings.Split(out, "\n")
			if len(lines) != 2 {
				t.Fatalf("expected 2 lines in formatted error, got %d: %q", len(lines), out)
			}
			if lines[0] != "DEVICES D2:DTYPE 3," {
				t.Fatalf("unexpected source line echoed: %q", lines[0])
			}
			caretCol := strings.Index(lines[1], "^")
			if caretCol != sym.Column-1 {
				t.Fatalf("caret at column %d, want %d", caretCol, sym.Column-1)
			}
			return
		}
		if sym.Kind == EOF {
			t.Fatalf("did not find NUMBER symbol")
		}
	}
}
