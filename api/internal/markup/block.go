package markup

import (
	"fmt"
	"strings"
)

type Kind int

const (
	Heading Kind = iota + 1
	Paragraph
	OrderedList
	UnorderedList
)

func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case Paragraph:
		return "paragraph"
	case OrderedList:
		return "ordered_list"
	case UnorderedList:
		return "unordered_list"
	default:
		return "unknown"
	}
}

// MarshalText lets blocks travel as JSON with readable kinds.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for _, c := range []Kind{Heading, Paragraph, OrderedList, UnorderedList} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("markup: unknown block kind %q", b)
}

type Style uint8

const (
	Bold Style = 1 << iota
	Italic
)

func (s Style) Has(f Style) bool { return s&f != 0 }

// Span is a run of text with uniform emphasis.
type Span struct {
	Text  string `json:"text"`
	Style Style  `json:"style,omitempty"`
}

// Inline is a unit of text split into emphasis spans.
type Inline []Span

// Text drops emphasis and returns the plain content.
func (in Inline) Text() string {
	var b strings.Builder
	for _, s := range in {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Block is one presentation-free unit of formatted output.
// Heading uses Level and Text, Paragraph uses Text and Summary,
// the list kinds use Items.
type Block struct {
	Kind    Kind     `json:"kind"`
	Level   int      `json:"level,omitempty"`
	Text    Inline   `json:"text,omitempty"`
	Summary bool     `json:"summary,omitempty"`
	Items   []Inline `json:"items,omitempty"`
}
