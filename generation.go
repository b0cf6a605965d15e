package llmcache

import (
	"github.com/unkn0wn-root/llmcache/codec"
)

// Generation is one completion returned by a model call.
// Message is set for chat models only.
type Generation struct {
	Text    string       `json:"text" msgpack:"text" cbor:"text"`
	Message *ChatMessage `json:"message,omitempty" msgpack:"message,omitempty" cbor:"message,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role" msgpack:"role" cbor:"role"`
	Content string `json:"content" msgpack:"content" cbor:"content"`
	Name    string `json:"name,omitempty" msgpack:"name,omitempty" cbor:"name,omitempty"`
}

// StoredGeneration is the storable form of a Generation.
type StoredGeneration struct {
	Text    string             `json:"text" msgpack:"text" cbor:"text"`
	Message *StoredChatMessage `json:"message,omitempty" msgpack:"message,omitempty" cbor:"message,omitempty"`
}

type StoredChatMessage struct {
	Type string            `json:"type" msgpack:"type" cbor:"type"`
	Data StoredMessageData `json:"data" msgpack:"data" cbor:"data"`
}

type StoredMessageData struct {
	Content string `json:"content" msgpack:"content" cbor:"content"`
	Role    string `json:"role,omitempty" msgpack:"role,omitempty" cbor:"role,omitempty"`
	Name    string `json:"name,omitempty" msgpack:"name,omitempty" cbor:"name,omitempty"`
}

// message types used in StoredChatMessage.Type
var roleToType = map[string]string{
	"user":      "human",
	"assistant": "ai",
	"system":    "system",
	"tool":      "tool",
}

var typeToRole = map[string]string{
	"human":  "user",
	"ai":     "assistant",
	"system": "system",
	"tool":   "tool",
}

// SerializeGeneration converts g into its storable form.
func SerializeGeneration(g Generation) StoredGeneration {
	out := StoredGeneration{Text: g.Text}
	if g.Message == nil {
		return out
	}
	typ, ok := roleToType[g.Message.Role]
	if !ok {
		typ = "chat"
	}
	out.Message = &StoredChatMessage{
		Type: typ,
		Data: StoredMessageData{
			Content: g.Message.Content,
			Role:    g.Message.Role,
			Name:    g.Message.Name,
		},
	}
	return out
}

// DeserializeStoredGeneration is the inverse of SerializeGeneration.
func DeserializeStoredGeneration(s StoredGeneration) Generation {
	out := Generation{Text: s.Text}
	if s.Message == nil {
		return out
	}
	role := s.Message.Data.Role
	if role == "" {
		role = typeToRole[s.Message.Type]
	}
	out.Message = &ChatMessage{
		Role:    role,
		Content: s.Message.Data.Content,
		Name:    s.Message.Data.Name,
	}
	return out
}

// GenerationsCodec stores []Generation through their storable form using Inner
// for the byte encoding.
type GenerationsCodec struct {
	Inner codec.Codec[[]StoredGeneration]
}

var _ codec.Codec[[]Generation] = GenerationsCodec{}

func (c GenerationsCodec) Encode(gens []Generation) ([]byte, error) {
	stored := make([]StoredGeneration, len(gens))
	for i, g := range gens {
		stored[i] = SerializeGeneration(g)
	}
	return c.Inner.Encode(stored)
}

func (c GenerationsCodec) Decode(b []byte) ([]Generation, error) {
	stored, err := c.Inner.Decode(b)
	if err != nil {
		return nil, err
	}
	gens := make([]Generation, len(stored))
	for i, s := range stored {
		gens[i] = DeserializeStoredGeneration(s)
	}
	return gens, nil
}
