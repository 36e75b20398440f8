package csvline

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func TestReader_SkipsHeaderAndBlankLines(t *testing.T) {
	input := "id,name\r\n1,a\r\n\r\n   \n2,b\n"
	r := NewReader(strings.NewReader(input))

	var got []string
	var lines []int
	for r.Next() {
		got = append(got, r.Text())
		lines = append(lines, r.Line())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(got, []string{"1,a", "2,b"}) {
		t.Errorf("lines = %q", got)
	}
	if !reflect.DeepEqual(lines, []int{2, 5}) {
		t.Errorf("line numbers = %v", lines)
	}
}

func TestReader_HeaderOnly(t *testing.T) {
	r := NewReader(strings.NewReader("id,name\n"))
	if r.Next() {
		t.Fatalf("unexpected line %q", r.Text())
	}
}

func TestReader_Empty(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	if r.Next() {
		t.Fatal("expected no lines")
	}
}

func TestSplitQuoted(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"simple", `"a","b","c"`, []string{"a", "b", "c"}},
		{"comma in field", `"Stade, annexe","44000","Nantes"`, []string{"Stade, annexe", "44000", "Nantes"}},
		{"empty fields", `"a","","c"`, []string{"a", "", "c"}},
		{"bracketed coordinates", `"x","[-1.5, 47.2]"`, []string{"x", "[-1.5, 47.2]"}},
		{"single field", `"only"`, []string{"only"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SplitQuoted(tc.line); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SplitQuoted(%q) = %q, want %q", tc.line, got, tc.want)
			}
		})
	}
}

func TestSplitPlain(t *testing.T) {
	got := SplitPlain("a,b,,d")
	if !reflect.DeepEqual(got, []string{"a", "b", "", "d"}) {
		t.Errorf("SplitPlain = %q", got)
	}
}

func TestField(t *testing.T) {
	fields := []string{" a ", "b"}
	if Field(fields, 0) != "a" {
		t.Errorf("Field(0) = %q", Field(fields, 0))
	}
	if Field(fields, 5) != "" {
		t.Errorf("Field(5) = %q", Field(fields, 5))
	}
}

func TestReader_OverlongLineIsReportedAndSkipped(t *testing.T) {
	long := strings.Repeat("x", 2*MaxLineSize)
	input := "header\nfirst\n" + long + "\nlast\n"
	r := NewReader(strings.NewReader(input))

	type got struct {
		line    int
		text    string
		tooLong bool
	}
	var lines []got
	for r.Next() {
		lines = append(lines, got{r.Line(), r.Text(), r.TooLong()})
	}
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []got{{2, "first", false}, {3, "", true}, {4, "last", false}}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %+v, want %+v", lines, want)
	}
}

func TestReader_OverlongLastLineWithoutNewline(t *testing.T) {
	r := NewReader(strings.NewReader("header\n" + strings.Repeat("y", MaxLineSize+10)))
	if !r.Next() || !r.TooLong() {
		t.Fatal("expected an overlong line")
	}
	if r.Next() {
		t.Fatalf("unexpected line %q", r.Text())
	}
}

func TestReader_LineAtLimitIsKept(t *testing.T) {
	line := strings.Repeat("z", MaxLineSize)
	r := NewReader(strings.NewReader("header\r\n" + line + "\r\n"))
	if !r.Next() {
		t.Fatal("expected a line")
	}
	if r.TooLong() || r.Text() != line {
		t.Errorf("tooLong = %v, len(text) = %d", r.TooLong(), len(r.Text()))
	}
}

func TestReader_LastLineWithoutNewline(t *testing.T) {
	r := NewReader(strings.NewReader("header\nonly"))
	if !r.Next() || r.Text() != "only" {
		t.Fatalf("text = %q", r.Text())
	}
	if r.Next() {
		t.Fatal("expected EOF")
	}
}

func TestReader_ReadError(t *testing.T) {
	boom := errors.New("boom")
	r := NewReader(iotest.ErrReader(boom))
	if r.Next() {
		t.Fatal("expected no lines")
	}
	if !errors.Is(r.Err(), boom) {
		t.Errorf("Err() = %v, want %v", r.Err(), boom)
	}
}

func TestSplitMixed(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"all quoted", `"a","b, c","d"`, []string{"a", "b, c", "d"}},
		{"bare numeric tail", `"44026","NANTES",-1.5534,47.2172`, []string{"44026", "NANTES", "-1.5534", "47.2172"}},
		{"bare only", `a,b,,d`, []string{"a", "b", "", "d"}},
		{"doubled quote", `"say ""hi""",x`, []string{`say "hi"`, "x"}},
		{"empty", ``, []string{""}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SplitMixed(tc.line); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SplitMixed(%q) = %q, want %q", tc.line, got, tc.want)
			}
		})
	}
}
