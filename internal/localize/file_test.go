package localize

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Localizable.strings")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestProcessSortsEntries(t *testing.T) {
	path := writeFile(t, "\"b\" = \"B\";\n\"a\" = \"A\";")

	f, err := Process(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "\"a\" = \"A\";\n\"b\" = \"B\";", readFile(t, path))
	assert.True(t, f.Changed)
	require.Len(t, f.Rows, 2)
	assert.Equal(t, "a", f.Rows[0].Key)
	assert.Equal(t, 1, f.Rows[0].Number)
	assert.Equal(t, 2, f.Rows[0].Line)
	assert.Equal(t, path, f.Rows[0].Path)
	assert.Equal(t, "b", f.Rows[1].Key)
	assert.Equal(t, 2, f.Rows[1].Number)
	assert.Equal(t, 1, f.Rows[1].Line)
}

func TestProcessDropsBlankLines(t *testing.T) {
	path := writeFile(t, "\"z\" = \"Z\";\n\n   \n\"m\" = \"M\";\n")

	_, err := Process(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "\"m\" = \"M\";\n\"z\" = \"Z\";", readFile(t, path))
}

func TestProcessHandlesCRLFAndBOM(t *testing.T) {
	path := writeFile(t, "\xEF\xBB\xBF\"b\" = \"B\";\r\n\"a\" = \"A\";\r\n")

	f, err := Process(path, Options{})
	require.NoError(t, err)
	assert.True(t, f.Changed)
	assert.Equal(t, "\"a\" = \"A\";\n\"b\" = \"B\";", readFile(t, path))
}

func TestProcessIsIdempotent(t *testing.T) {
	input := strings.Join([]string{
		`"welcome" = "Welcome, %@!";`,
		``,
		`"Zebra" = "Capital sorts first";`,
		`"apple" = "Apple";`,
		`"quote" = "say \"hi\"";`,
		`"welcome" = "duplicate kept";`,
	}, "\n")
	path := writeFile(t, input)

	first, err := Process(path, Options{})
	require.NoError(t, err)
	assert.True(t, first.Changed)
	once := readFile(t, path)

	second, err := Process(path, Options{})
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, once, readFile(t, path))
	assert.Equal(t, first.Content, second.Content)
}

func TestProcessOrdinalSortAndCardinality(t *testing.T) {
	input := strings.Join([]string{
		`"é" = "e acute";`,
		`"b" = "b";`,
		`"B" = "B";`,
		`"a.b" = "dot";`,
		`"a" = "a";`,
		`"_" = "underscore";`,
		`"10" = "ten";`,
		`"2" = "two";`,
	}, "\n")
	path := writeFile(t, input)

	f, err := Process(path, Options{})
	require.NoError(t, err)

	require.Len(t, f.Rows, 8)
	for i := 1; i < len(f.Rows); i++ {
		assert.LessOrEqual(t, f.Rows[i-1].Key, f.Rows[i].Key)
	}
	keys := make([]string, len(f.Rows))
	for i, r := range f.Rows {
		keys[i] = r.Key
	}
	assert.Equal(t, []string{"10", "2", "B", "_", "a", "a.b", "b", "é"}, keys)
}

func TestProcessPreservesDuplicatesInSourceOrder(t *testing.T) {
	path := writeFile(t, "\"k\" = \"second\";\n\"a\" = \"A\";\n\"k\" = \"first\";")

	f, err := Process(path, Options{Duplicates: DuplicatesPreserve})
	require.NoError(t, err)
	require.Len(t, f.Rows, 3)
	assert.Equal(t, "\"a\" = \"A\";\n\"k\" = \"second\";\n\"k\" = \"first\";", readFile(t, path))
}

func TestProcessRejectsDuplicates(t *testing.T) {
	input := "\"k\" = \"1\";\n\"a\" = \"A\";\n\"k\" = \"2\";\n\"k\" = \"3\";"
	path := writeFile(t, input)

	_, err := Process(path, Options{Duplicates: DuplicatesReject})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	var fe *FileError
	require.True(t, errors.As(err, &fe))
	require.Len(t, fe.Diagnostics, 2)
	assert.Equal(t, 3, fe.Diagnostics[0].Line)
	assert.Contains(t, fe.Diagnostics[0].Message, "first defined on line 1")
	assert.Equal(t, 4, fe.Diagnostics[1].Line)

	assert.Equal(t, input, readFile(t, path), "file must not be rewritten")
}

func TestProcessReportsCardinalityError(t *testing.T) {
	input := "\"a\" = \"A\"; \"c\" = \"C\";\n\"b\" = \"B\";"
	path := writeFile(t, input)

	_, err := Process(path, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileParseFailed))

	diags := DiagnosticsOf(path, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 1, diags[0].Line)
	assert.Contains(t, diags[0].Message, "exactly one key and one value")
	assert.Equal(t, input, readFile(t, path))
}

func TestProcessKeepsFileWithUnterminatedSecondPair(t *testing.T) {
	input := "\"a\" = \"A\"; \"c\" = \"C\"\n\"b\" = \"B\";"
	path := writeFile(t, input)

	_, err := Process(path, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileParseFailed))

	diags := DiagnosticsOf(path, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 1, diags[0].Line)
	assert.Contains(t, diags[0].Message, "exactly one key and one value")
	assert.Equal(t, input, readFile(t, path), "no entry may be dropped by a rewrite")
}

func TestProcessReportsMissingValue(t *testing.T) {
	path := writeFile(t, "\"x\";\n")

	_, err := Process(path, Options{})
	require.Error(t, err)

	diags := DiagnosticsOf(path, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 1, diags[0].Line)
	assert.Contains(t, diags[0].Message, "no value found")
	assert.Equal(t, path+":1: error: line malformed: no value found", diags[0].String())
}

func TestProcessReportsEveryMalformedLine(t *testing.T) {
	input := strings.Join([]string{
		`"ok" = "fine";`,
		`"x";`,
		`= "no key";`,
		``,
		`"a" = "A"; "b" = "B";`,
		`"also ok" = "fine";`,
		`garbage`,
	}, "\n")
	path := writeFile(t, input)

	_, err := Process(path, Options{})
	require.Error(t, err)

	diags := DiagnosticsOf(path, err)
	require.Len(t, diags, 4)
	lines := []int{diags[0].Line, diags[1].Line, diags[2].Line, diags[3].Line}
	assert.Equal(t, []int{2, 3, 5, 7}, lines)
	assert.Equal(t, input, readFile(t, path))
}

func TestProcessRejectsEmptyResult(t *testing.T) {
	for _, input := range []string{"", "\n\n  \n"} {
		path := writeFile(t, input)

		_, err := Process(path, Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyResult))
		assert.Equal(t, input, readFile(t, path))
	}
}

func TestProcessDryRunDoesNotWrite(t *testing.T) {
	input := "\"b\" = \"B\";\n\"a\" = \"A\";"
	path := writeFile(t, input)

	f, err := Process(path, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, f.Changed)
	assert.Equal(t, "\"a\" = \"A\";\n\"b\" = \"B\";", f.Content)
	assert.Equal(t, input, readFile(t, path))
}

func TestProcessMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.strings")

	_, err := Process(path, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, IsDiagnostic(err))

	diags := DiagnosticsOf(path, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 1, diags[0].Line)
}

func TestLoadCollectsRows(t *testing.T) {
	path := writeFile(t, "\"b\" = \"B\";\n\n\"a\" = \"A\";")

	rows, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Key: "b", Value: "B", Path: path, Line: 1}, rows[0])
	assert.Equal(t, Row{Key: "a", Value: "A", Path: path, Line: 3}, rows[1])
}

func TestSerialize(t *testing.T) {
	out, err := Serialize([]Row{{Key: "a", Value: "A"}, {Key: "b", Value: "B"}})
	require.NoError(t, err)
	assert.Equal(t, "\"a\" = \"A\";\n\"b\" = \"B\";", out)

	_, err = Serialize(nil)
	assert.True(t, errors.Is(err, ErrEmptyResult))
}

func TestParseDuplicatePolicy(t *testing.T) {
	p, err := ParseDuplicatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DuplicatesPreserve, p)

	p, err = ParseDuplicatePolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, DuplicatesReject, p)

	_, err = ParseDuplicatePolicy("merge")
	assert.Error(t, err)
}

func TestFileErrorMessage(t *testing.T) {
	err := &FileError{
		Path:        "en.strings",
		Err:         ErrFileParseFailed,
		Diagnostics: []Diagnostic{{Path: "en.strings", Line: 4, Message: "no key found"}},
	}
	assert.Equal(t, "en.strings: file parse failed (line 4: no key found)", err.Error())

	err.Diagnostics = append(err.Diagnostics, Diagnostic{Line: 5})
	assert.Equal(t, "en.strings: file parse failed (2 problems)", err.Error())
}
