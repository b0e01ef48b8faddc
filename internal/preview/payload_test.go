package preview

import (
	"strings"
	"testing"
)

func TestEncode_EscapesControlCharacters(t *testing.T) {
	in := "He said \"hi\" and 'bye'\\\r\nnext line\t</script><b>&"
	got := Encode(in)

	if strings.ContainsAny(got[1:len(got)-1], "\n\r<>") {
		t.Errorf("payload contains raw control or markup characters: %s", got)
	}
	if strings.Contains(got, "</script>") {
		t.Error("payload can close a script element")
	}
	if !strings.HasPrefix(got, `"`) || !strings.HasSuffix(got, `"`) {
		t.Errorf("payload is not a string literal: %s", got)
	}
	for _, want := range []string{`\"hi\"`, `\\`, `\n`, `\t`, `\u003c`, `\u0026`} {
		if !strings.Contains(got, want) {
			t.Errorf("payload %s missing %s", got, want)
		}
	}
}

func TestEncode_LineSeparators(t *testing.T) {
	got := Encode("a\u2028b\u2029c")
	if !strings.Contains(got, `\u2028`) || !strings.Contains(got, `\u2029`) {
		t.Errorf("line separators not escaped: %s", got)
	}
}

func TestDecode_RestoresTextWithoutCarriageReturns(t *testing.T) {
	in := "# Title\r\n\n- [ ] \"todo\" \\ <tag>\n"
	got, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := strings.ReplaceAll(in, "\r", "")
	if got != want {
		t.Errorf("Decode = %q, want %q", got, want)
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	if _, err := Decode("updateContent('x')"); err == nil {
		t.Error("expected error for non-literal payload")
	}
}

func TestScript(t *testing.T) {
	if got := Script(Encode("a'b")); got != `updateContent("a'b");` {
		t.Errorf("Script = %s", got)
	}
}
