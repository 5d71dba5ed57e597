package extractor

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const mixedExport = `[1/1/24, 10:00:00 AM] Alice: hey there
[1/1/24, 10:00:05 AM] Bob: hi!
[1/1/24, 10:01:00 AM] Alice: how was the trip? 😄
this line continues the previous message
1/2/24, 09:15 - Bob: omw
1/2/24, 09:16 - Alice:   running late
1/2/24, 09:17 - Messages and calls are end-to-end encrypted.
garbage without any separator
`

func TestExtract_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		target string
		want   []string
	}{
		{"ios line", "[1/1/24, 10:00:00 AM] Alice: hey there", "alice", []string{"hey there"}},
		{"android line", "10:00 - Bob: omw", "Bob", []string{"omw"}},
		{"mixed export keeps file order", mixedExport, "Alice", []string{"hey there", "how was the trip? 😄", "running late"}},
		{"other participant", mixedExport, "bob", []string{"hi!", "omw"}},
		{"body with colons kept whole", "[1/1/24, 10:00:00 AM] Alice: meet at 10:30: ok?", "Alice", []string{"meet at 10:30: ok?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw, tt.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestExtract_NotFound(t *testing.T) {
	_, err := Extract(mixedExport, "Charlie")
	if err == nil {
		t.Fatal("expected error for unknown participant")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %T", err)
	}
	if nf.Target != "Charlie" {
		t.Errorf("expected target Charlie, got %q", nf.Target)
	}
}

func TestExtract_EmptyInputs(t *testing.T) {
	if _, err := Extract("", "Alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty transcript: expected ErrNotFound, got %v", err)
	}
	for _, name := range []string{"", "   ", "!!!"} {
		_, err := Extract(mixedExport, name)
		var nf *NotFoundError
		if !errors.Is(err, ErrNotFound) || !errors.As(err, &nf) {
			t.Errorf("target %q: expected *NotFoundError, got %v", name, err)
		}
	}
}

func TestExtract_SymbolOnlyNames(t *testing.T) {
	raw := "[1/1/24, 10:00:00 AM] ❤️: miss you\n10:00 - Bob: omw\n10:01 - ❤️: same"

	for _, target := range []string{"❤️", "!!!", ""} {
		got, err := Extract(raw, target)
		if err != nil {
			t.Fatalf("target %q: unexpected error: %v", target, err)
		}
		if want := []string{"miss you", "same"}; !reflect.DeepEqual(got, want) {
			t.Errorf("target %q: expected %q, got %q", target, want, got)
		}
	}

	if want := []string{"❤️", "Bob"}; !reflect.DeepEqual(Senders(raw), want) {
		t.Errorf("expected senders %q, got %q", want, Senders(raw))
	}
}

func TestExtract_Deterministic(t *testing.T) {
	first, err := Extract(mixedExport, "Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Extract(mixedExport, "Alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %q vs %q", i, again, first)
		}
	}
}

func TestExtract_NameNormalization(t *testing.T) {
	raw := "[1/1/24, 10:00:00 AM] John Doe: first\n1/1/24, 10:05 - john.doe: second"

	a, err := Extract(raw, "John Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Extract(raw, "john doe!!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected same result, got %q and %q", a, b)
	}
	if want := []string{"first", "second"}; !reflect.DeepEqual(a, want) {
		t.Errorf("expected %q, got %q", want, a)
	}
}

func TestExtract_LineEndings(t *testing.T) {
	tests := []struct {
		name string
		sep  string
	}{
		{"lf", "\n"},
		{"crlf", "\r\n"},
		{"cr", "\r"},
		{"line separator", "\u2028"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := strings.Join([]string{
				"[1/1/24, 10:00:00 AM] Alice: one",
				"[1/1/24, 10:00:01 AM] Alice: two",
			}, tt.sep)
			got, err := Extract(raw, "Alice")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := []string{"one", "two"}; !reflect.DeepEqual(got, want) {
				t.Errorf("expected %q, got %q", want, got)
			}
		})
	}
}

func TestExtract_SkipsBlankBodies(t *testing.T) {
	raw := "[1/1/24, 10:00:00 AM] Alice:    \n[1/1/24, 10:00:01 AM] Alice: real"
	got, err := Extract(raw, "Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"real"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John Doe", "johndoe"},
		{"john doe!!", "johndoe"},
		{"O'Brien-Smith", "obriensmith"},
		{"user_42", "user_42"},
		{"José 🎉", "josé"},
		{"Мария", "мария"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeName(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := NormalizeName(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestParseLines_FirstPatternWins(t *testing.T) {
	// Matches both patterns; the ios pattern is tried first.
	raw := "[1/1/24, 10:00 - x] Alice: hi - Bob: there"
	lines := ParseLines(raw)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Pattern != "ios" {
		t.Errorf("expected ios pattern, got %q", lines[0].Pattern)
	}
	if lines[0].Sender != "Alice" {
		t.Errorf("expected sender Alice, got %q", lines[0].Sender)
	}
}

func TestParseLines_DropsContinuations(t *testing.T) {
	lines := ParseLines(mixedExport)
	for _, l := range lines {
		if strings.Contains(l.Body, "continues the previous") {
			t.Errorf("continuation line should be dropped, got %+v", l)
		}
	}
	if len(lines) != 5 {
		t.Errorf("expected 5 recognized lines, got %d", len(lines))
	}
}

func TestNew_CustomPatternAppended(t *testing.T) {
	telegram := NewPattern("telegram", `^\d{2}\.\d{2}\.\d{4} \d{2}:\d{2} ([^:]+): (.*)`)
	ext := New(append(DefaultPatterns, telegram)...)

	raw := "05.03.2024 18:22 Alice: привет\n10:00 - Alice: omw"
	got, err := ext.Extract(raw, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"привет", "omw"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}

	if _, err := Extract("05.03.2024 18:22 Alice: привет", "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("default extractor should not know the custom format, got %v", err)
	}
}

func TestSenders(t *testing.T) {
	got := Senders(mixedExport + "1/3/24, 08:00 - alice: dup\n")
	want := []string{"Alice", "Bob"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReadTranscript(t *testing.T) {
	got, err := ReadTranscript(strings.NewReader("\ufeff10:00 - Bob: omw"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10:00 - Bob: omw" {
		t.Errorf("expected BOM stripped, got %q", got)
	}

	_, err = ReadTranscript(strings.NewReader("10:00 - Bob: \xff\xfe"))
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
}
