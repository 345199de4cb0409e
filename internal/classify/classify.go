package classify

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"

	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/probe"
)

// Classifier maps a raw response to an outcome.
// Implementations must be deterministic and safe for concurrent use.
type Classifier interface {
	Classify(raw probe.RawResponse, d model.EndpointDescriptor) model.ProbeOutcome
}

// Func adapts a plain function to the Classifier interface.
type Func func(raw probe.RawResponse, d model.EndpointDescriptor) model.ProbeOutcome

// Classify implements Classifier.
func (f Func) Classify(raw probe.RawResponse, d model.EndpointDescriptor) model.ProbeOutcome {
	return f(raw, d)
}

// Heuristic is the default absence-marker classifier.
type Heuristic struct{}

// Default returns the default classifier.
func Default() Classifier {
	return Heuristic{}
}

// Classify implements Classifier.
//
// Rules, in order:
//  1. A transport failure becomes Error with the failure's kind; the body is not inspected.
//  2. A status the endpoint does not accept becomes NotFound "HTTP <code>".
//  3. A body containing the absence marker (case-insensitive) becomes NotFound "marker matched".
//  4. Anything else is Found, with the page title when one is present.
func (Heuristic) Classify(raw probe.RawResponse, d model.EndpointDescriptor) model.ProbeOutcome {
	if raw.Err != nil {
		return model.NewError(raw.Err.Kind, raw.URL, raw.Err.Error())
	}

	if !d.Accepts(raw.StatusCode) {
		return model.NewStatusNotFound(raw.URL, raw.StatusCode)
	}

	if ContainsFold(raw.Body, d.AbsenceMarker) {
		return model.NewNotFound(raw.URL, raw.StatusCode, model.ReasonMarkerMatched)
	}

	return model.NewFound(
		raw.URL,
		raw.StatusCode,
		raw.Elapsed.Milliseconds(),
		raw.ContentLength,
		ExtractTitle(raw.Body),
	)
}

// ContainsFold reports whether marker occurs in body under Unicode case folding.
// An empty marker never matches.
func ContainsFold(body []byte, marker string) bool {
	if marker == "" {
		return false
	}
	folder := cases.Fold()
	return strings.Contains(folder.String(string(body)), folder.String(marker))
}

// ExtractTitle returns the trimmed text of the first <title> element,
// or an empty string if there is none.
func ExtractTitle(body []byte) string {
	z := html.NewTokenizer(bytes.NewReader(body))
	inTitle := false
	var sb strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Title {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				sb.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inTitle && atom.Lookup(name) == atom.Title {
				return strings.Join(strings.Fields(sb.String()), " ")
			}
		}
	}
}
