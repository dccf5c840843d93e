package groundtruth

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<utf dtd_version="utf-1.0" audio_filename="EDI_20071128-1000" language="english">
<conversation_trans audio_filename="EDI_20071128-1000" language="english" version="1">
<turn speaker="EDI_1" spkrType="male" startTime="10.5" endTime="12.25" channel="1" dialect="native">
we<contraction e_form="[we=>we]['re=>are]">'re <fragment> go
</turn>
<turn speaker="EDI_2" spkrType="female" startTime="13.0" endTime="15.125" channel="1" dialect="native">
<b_unclear>mumble<e_unclear> right
</turn>
<turn speaker="EDI_1" spkrType="male" startTime="16" endTime="18.0019" channel="2" dialect="nonnative">
ok
</turn>
</conversation_trans>
</utf>
`

func stringsReader(s string) io.Reader { return strings.NewReader(s) }

func TestParseReader(t *testing.T) {
	turns, err := ParseReader(stringsReader(sampleDoc))
	require.NoError(t, err)
	require.Len(t, turns, 3)

	assert.Equal(t, Turn{
		Start: 10.5, End: 12.25, Speaker: "EDI_1", SpkrType: "male", Channel: "1", Dialect: "native",
	}, turns[0])
	assert.Equal(t, "EDI_2", turns[1].Speaker)
	assert.Equal(t, "female", turns[1].SpkrType)
	assert.Equal(t, "nonnative", turns[2].Dialect)

	assert.Equal(t, int64(16000), turns[2].StartMs())
	assert.Equal(t, int64(18001), turns[2].EndMs())
	assert.Equal(t, int64(2001), turns[2].DurationMs())
}

func TestParseReader_Latin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<utf><conversation_trans>" +
		"<turn speaker=\"Ren\xe9\" spkrType=\"male\" startTime=\"1\" endTime=\"2\" channel=\"1\" dialect=\"native\">caf\xe9</turn>" +
		"</conversation_trans></utf>"

	turns, err := ParseReader(stringsReader(doc))
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "René", turns[0].Speaker)
}

func TestParseReader_OptionalAttributes(t *testing.T) {
	doc := `<utf><conversation_trans><turn speaker="A" spkrType="male" startTime="1" endTime="2"/></conversation_trans></utf>`
	turns, err := ParseReader(stringsReader(doc))
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Empty(t, turns[0].Channel)
	assert.Empty(t, turns[0].Dialect)
}

func TestParseReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing speaker", `<utf><conversation_trans><turn spkrType="male" startTime="1" endTime="2"/></conversation_trans></utf>`},
		{"bad time", `<utf><conversation_trans><turn speaker="A" spkrType="male" startTime="x" endTime="2"/></conversation_trans></utf>`},
		{"no conversation", `<utf><turn speaker="A" spkrType="male" startTime="1" endTime="2"/></utf>`},
		{"conversation not under root", `<utf><wrap><conversation_trans></conversation_trans></wrap></utf>`},
		{"unrepairable", `<utf><conversation_trans><turn speaker="A" spkrType="male" startTime="1" endTime="2"><laugh></turn></conversation_trans></utf>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReader(stringsReader(tt.doc))
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want ParseError, got %v", err)
		})
	}
}

func TestParseReader_NoTurns(t *testing.T) {
	turns, err := ParseReader(stringsReader(`<utf><conversation_trans/></utf>`))
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestParse_File(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.utf")
	require.NoError(t, os.WriteFile(good, []byte(sampleDoc), 0o644))
	turns, err := Parse(good)
	require.NoError(t, err)
	assert.Len(t, turns, 3)

	bad := filepath.Join(dir, "bad.utf")
	require.NoError(t, os.WriteFile(bad, []byte("<utf>"), 0o644))
	_, err = Parse(bad)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, bad, pe.Path)
	assert.Contains(t, pe.Error(), bad)

	_, err = Parse(filepath.Join(dir, "missing.utf"))
	require.Error(t, err)
	assert.False(t, errors.As(err, &pe))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
