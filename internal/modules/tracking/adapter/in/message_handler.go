package in

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	trackingin "scormtrack/internal/modules/tracking/port/in"
)

const inboundSchemaURL = "urn:scormtrack:inbound-message"

const inboundSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"type": "string", "minLength": 1}
  },
  "if": {
    "properties": {"type": {"const": "scorm-navigate-to-slide"}}
  },
  "then": {
    "required": ["cmid", "slide"],
    "properties": {
      "cmid": {"type": ["string", "integer"]},
      "slide": {
        "oneOf": [
          {"type": "integer", "minimum": 1},
          {"type": "string", "pattern": "^[0-9]+$"}
        ]
      }
    }
  }
}`

// MessageHandler validates inbound host messages before they reach the
// engine.
type MessageHandler struct {
	usecase trackingin.Usecase
	schema  *jsonschema.Schema
}

func NewMessageHandler(usecase trackingin.Usecase) (*MessageHandler, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(inboundSchema))
	if err != nil {
		return nil, fmt.Errorf("parse inbound schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(inboundSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add inbound schema: %w", err)
	}
	schema, err := compiler.Compile(inboundSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile inbound schema: %w", err)
	}
	return &MessageHandler{usecase: usecase, schema: schema}, nil
}

func (h *MessageHandler) Validate(raw []byte) error {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := h.schema.Validate(instance); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	return nil
}

func (h *MessageHandler) Handle(ctx context.Context, raw []byte) error {
	if err := h.Validate(raw); err != nil {
		return err
	}
	return h.usecase.HandleMessage(ctx, raw)
}
