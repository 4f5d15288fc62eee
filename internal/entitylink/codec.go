package entitylink

import (
	"errors"
	"fmt"
	"strings"
)

// maxSegments bounds the positional split of a link body: entityType,
// entityFQN, fieldName, arrayFieldName, arrayFieldValue. The last segment
// absorbs any further '/' characters, so an FQN-like trailing value keeps its
// dots and slashes are never ambiguous.
const maxSegments = 5

// Parse parses text that must contain exactly one well-formed entity link.
// A fallback display suffix ("|...") is stripped from the input before
// matching, exactly as stored links are written: everything from the first
// '|' to the end is dropped and the closing '>' re-appended.
//
// Parse returns ErrNoLink when no link is found and ErrMultipleLinks when
// more than one independent link occurs in the input. Call sites that parse a
// single stored reference treat multiplicity as a caller bug, not as user
// input to tolerate.
func Parse(text string) (EntityLink, error) {
	if i := strings.IndexByte(text, '|'); i >= 0 {
		text = text[:i] + string(closeToken)
	}

	links, err := ExtractAll(text)
	if err != nil {
		return EntityLink{}, err
	}
	switch len(links) {
	case 0:
		return EntityLink{}, fmt.Errorf("%w in %q", ErrNoLink, text)
	case 1:
		return links[0], nil
	default:
		return EntityLink{}, fmt.Errorf("%w in %q", ErrMultipleLinks, text)
	}
}

// ExtractAll scans free-form text left to right and returns every
// non-overlapping well-formed entity link, in order of occurrence. Text
// without links yields an empty result and no error; malformed candidates
// (unbalanced delimiters, empty segments) are simply not matched.
//
// The only error path is a matched token that violates segment-order
// invariants. The positional split makes that structurally unreachable; it is
// kept as a defensive check for hand-built strings.
func ExtractAll(text string) ([]EntityLink, error) {
	var links []EntityLink

	pos := 0
	for {
		rel := strings.Index(text[pos:], openToken)
		if rel < 0 {
			break
		}
		start := pos + rel

		bodyStart := start + len(openToken)
		closeRel := strings.IndexByte(text[bodyStart:], byte(closeToken))
		if closeRel < 0 {
			// No closing delimiter anywhere after this opener, so no
			// later opener can be closed either.
			break
		}
		body := text[bodyStart : bodyStart+closeRel]

		link, ok, err := parseBody(body)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Not a match. Advance past the opener only: the failed
			// span may itself contain a valid link (e.g. a stray '<'
			// right before a well-formed one).
			pos = start + 1
			continue
		}

		links = append(links, link)
		pos = bodyStart + closeRel + 1
	}

	return links, nil
}

// ReplaceAll rewrites every well-formed entity link occurrence in text using
// repl, which receives the parsed link and the raw fallback display text, ""
// when the occurrence carries none. Text outside link tokens is copied
// unchanged, as are malformed candidates. Used by presentation layers that
// must not leak raw link tokens to users.
func ReplaceAll(text string, repl func(link EntityLink, fallback string) string) string {
	var b strings.Builder
	b.Grow(len(text))

	pos := 0
	for {
		rel := strings.Index(text[pos:], openToken)
		if rel < 0 {
			break
		}
		start := pos + rel

		bodyStart := start + len(openToken)
		closeRel := strings.IndexByte(text[bodyStart:], byte(closeToken))
		if closeRel < 0 {
			break
		}
		body := text[bodyStart : bodyStart+closeRel]

		link, ok, err := parseBody(body)
		if err != nil || !ok {
			b.WriteString(text[pos : start+1])
			pos = start + 1
			continue
		}

		fallback := ""
		if i := strings.IndexByte(body, '|'); i >= 0 {
			fallback = body[i+1:]
		}

		b.WriteString(text[pos:start])
		b.WriteString(repl(link, fallback))
		pos = bodyStart + closeRel + 1
	}

	b.WriteString(text[pos:])
	return b.String()
}

// parseBody splits the text between the delimiters into positional segments
// and assembles the link. ok is false when the body is not a valid link body;
// err is reserved for segment-order violations surfaced by New.
func parseBody(body string) (EntityLink, bool, error) {
	// A '<' inside the body means the opener we matched was not the real
	// opener of this close delimiter.
	if strings.IndexByte(body, '<') >= 0 {
		return EntityLink{}, false, nil
	}

	// Per-token fallback display text: discard everything from the first
	// '|' onward before splitting.
	if i := strings.IndexByte(body, '|'); i >= 0 {
		body = body[:i]
	}

	segs := strings.SplitN(body, "/", maxSegments)

	// Trailing empty tokens are absent segments, not empty strings.
	for len(segs) > 0 && segs[len(segs)-1] == "" {
		segs = segs[:len(segs)-1]
	}
	if len(segs) < 2 {
		return EntityLink{}, false, nil
	}
	for _, seg := range segs {
		if seg == "" {
			return EntityLink{}, false, nil
		}
	}

	padded := make([]string, maxSegments)
	copy(padded, segs)

	link, err := New(padded[0], padded[1], padded[2], padded[3], padded[4])
	if err != nil {
		// Positional assignment fills segments left to right, so New can
		// only report out-of-order segments for hand-built inputs. Any
		// other rejection just means this candidate is not a link.
		if errors.Is(err, ErrSegmentOrder) {
			return EntityLink{}, false, err
		}
		return EntityLink{}, false, nil
	}
	return link, true, nil
}
