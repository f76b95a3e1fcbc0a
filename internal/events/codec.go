package events

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the closed set of messages carried on the event bus. Every kind has
// exactly one 4-byte prefix; Prefix and kindForPrefix must stay mirror images.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindItemRated

	kindCount
)

const (
	prefixLen = 4
	separator = ' '
)

func (k Kind) Prefix() string {
	switch k {
	case KindInvalid:
		return "erro"
	case KindItemRated:
		return "movr"
	default:
		return KindInvalid.Prefix()
	}
}

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindItemRated:
		return "item_rated"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func kindForPrefix(prefix []byte) (Kind, bool) {
	switch string(prefix) {
	case "erro":
		return KindInvalid, true
	case "movr":
		return KindItemRated, true
	default:
		return KindInvalid, false
	}
}

// ItemRated is emitted after a rating commits. Field order is part of the
// wire contract.
type ItemRated struct {
	SubjectID int64    `json:"subject_id"`
	ItemID    int64    `json:"item_id"`
	Genres    []string `json:"genres"`
	Tags      []string `json:"tags"`
	Rating    int      `json:"rating"`
}

// Event carries exactly one payload, selected by Kind: Rated for
// KindItemRated, Raw for KindInvalid.
type Event struct {
	Kind  Kind
	Rated *ItemRated
	Raw   []byte
}

func NewItemRated(p ItemRated) Event {
	if p.Genres == nil {
		p.Genres = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return Event{Kind: KindItemRated, Rated: &p}
}

func NewInvalid(raw []byte) Event {
	return Event{Kind: KindInvalid, Raw: append([]byte(nil), raw...)}
}

// Encode renders prefix, separator and payload as one message.
func Encode(e Event) ([]byte, error) {
	var payload []byte
	switch e.Kind {
	case KindItemRated:
		if e.Rated == nil {
			return nil, fmt.Errorf("encode %s: missing payload", e.Kind)
		}
		p := *e.Rated
		if p.Genres == nil {
			p.Genres = []string{}
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", e.Kind, err)
		}
		payload = raw
	case KindInvalid:
		payload = e.Raw
	default:
		return nil, fmt.Errorf("encode: unknown kind %d", uint8(e.Kind))
	}

	out := make([]byte, 0, prefixLen+1+len(payload))
	out = append(out, e.Kind.Prefix()...)
	out = append(out, separator)
	out = append(out, payload...)
	return out, nil
}

// Decode never fails. Anything that is not a well-formed message of a known
// kind comes back as KindInvalid holding the original bytes.
func Decode(msg []byte) Event {
	if len(msg) < prefixLen+1 || msg[prefixLen] != separator {
		return NewInvalid(msg)
	}
	kind, ok := kindForPrefix(msg[:prefixLen])
	if !ok {
		return NewInvalid(msg)
	}
	payload := msg[prefixLen+1:]

	switch kind {
	case KindItemRated:
		var p ItemRated
		dec := json.NewDecoder(bytes.NewReader(payload))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil || dec.More() {
			return NewInvalid(msg)
		}
		return NewItemRated(p)
	default:
		return NewInvalid(payload)
	}
}
