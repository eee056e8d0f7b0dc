// Package textgen is the boundary to the external text-generation service.
package textgen

import (
	"context"
	"errors"
	"strings"
)

// Role marks who authored a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one entry of a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// FieldType is the JSON type of a structured-output field.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
)

// Field is one required property of a structured response.
type Field struct {
	Name string
	Type FieldType
}

// Request is a single generation call. A non-empty Schema asks for a JSON
// object holding exactly those fields.
type Request struct {
	Model             string
	SystemInstruction string
	Turns             []Turn
	Schema            []Field
}

// Generator produces text for a Request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrUnavailable is returned when no generation backend is configured.
var ErrUnavailable = errors.New("textgen: no generation backend configured")

// Unavailable fails every call with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}

// Prompt wraps text as a single user turn.
func Prompt(text string) []Turn {
	return []Turn{{Role: RoleUser, Text: text}}
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// CleanJSON strips markdown code fences models sometimes wrap JSON in.
func CleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
