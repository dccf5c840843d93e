package groundtruth

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	rootElement = "conversation_trans"
	turnElement = "turn"
)

// ParseError reports a ground truth file that could not be read into turns.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return "ground truth: " + e.Err.Error()
	}
	return fmt.Sprintf("ground truth %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads the annotation file at path and returns its turns in document
// order.
func Parse(path string) ([]Turn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	turns, err := ParseReader(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, err
	}
	return turns, nil
}

// ParseReader repairs and parses an annotation document.
func ParseReader(r io.Reader) ([]Turn, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(strings.NewReader(Repair(string(raw))))
	dec.CharsetReader = charset.NewReaderLabel

	var (
		turns    []Turn
		depth    int
		convAt   = -1
		foundRun bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			if !foundRun && depth == 2 && el.Name.Local == rootElement {
				convAt = depth
				foundRun = true
				continue
			}
			if convAt > 0 && el.Name.Local == turnElement {
				t, err := turnFromAttrs(el.Attr)
				if err != nil {
					return nil, &ParseError{Err: fmt.Errorf("turn %d: %w", len(turns), err)}
				}
				turns = append(turns, t)
			}
		case xml.EndElement:
			if depth == convAt {
				convAt = -1
			}
			depth--
		}
	}

	if !foundRun {
		return nil, &ParseError{Err: fmt.Errorf("no <%s> element under the document root", rootElement)}
	}
	return turns, nil
}

func turnFromAttrs(attrs []xml.Attr) (Turn, error) {
	vals := make(map[string]string, len(attrs))
	for _, a := range attrs {
		vals[a.Name.Local] = a.Value
	}

	for _, req := range []string{"startTime", "endTime", "speaker", "spkrType"} {
		if _, ok := vals[req]; !ok {
			return Turn{}, fmt.Errorf("missing attribute %q", req)
		}
	}

	start, err := strconv.ParseFloat(strings.TrimSpace(vals["startTime"]), 64)
	if err != nil {
		return Turn{}, fmt.Errorf("startTime: %w", err)
	}
	end, err := strconv.ParseFloat(strings.TrimSpace(vals["endTime"]), 64)
	if err != nil {
		return Turn{}, fmt.Errorf("endTime: %w", err)
	}

	return Turn{
		Start:    start,
		End:      end,
		Speaker:  vals["speaker"],
		SpkrType: vals["spkrType"],
		Channel:  vals["channel"],
		Dialect:  vals["dialect"],
	}, nil
}
