package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"mooderia/internal/models"
	"mooderia/internal/observability"
	"mooderia/internal/scheduler"
	"mooderia/internal/textgen"
	"mooderia/internal/zodiac"
)

// Persona names a chat assistant.
type Persona string

const (
	Psychiatrist  Persona = "psychiatrist"
	Nutritionist  Persona = "nutritionist"
	StudyGuide    Persona = "study-guide"
	FortuneTeller Persona = "fortune-teller"
)

// Personas lists the chat assistants.
var Personas = []Persona{Psychiatrist, Nutritionist, StudyGuide, FortuneTeller}

// ChatRole is the author of a buffer entry.
type ChatRole string

const (
	ChatUser      ChatRole = "user"
	ChatAssistant ChatRole = "assistant"
)

// ChatEntry is one line of a persona conversation.
type ChatEntry struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

const busyLine = "The city communication lines are busy. Please try again in a moment."

type personaProfile struct {
	instruction string
	fast        bool
	// prompt, when set, makes the persona single-shot: only the latest
	// question is sent, formatted through prompt.
	prompt     string
	emptyReply string
	failReply  string
}

var personaProfiles = map[Persona]personaProfile{
	Psychiatrist: {
		instruction: "You are Dr. Philippe Pinel, a compassionate and expert psychiatrist in the city of Mooderia. You provide helpful advice for mental well-being while maintaining a professional yet friendly tone.",
		emptyReply:  "I am here for you.",
		failReply:   busyLine,
	},
	Nutritionist: {
		instruction: "You are Dr. Antoine Lavoisier, a professional nutritionist in Mooderia. You guide users on meal plans and wellness.",
		emptyReply:  "Eat well, live well.",
		failReply:   busyLine,
	},
	StudyGuide: {
		instruction: "You are Sir Clark, an inspiring and energetic educator in Mooderia. You help students with study methods and motivate them to achieve excellence.",
		emptyReply:  "Believe in yourself!",
		failReply:   busyLine,
	},
	FortuneTeller: {
		instruction: "You are a mystical fortune teller. Your answers are short, poetic, and slightly mysterious.",
		fast:        true,
		prompt:      "Predict the answer to this question in a mystical way: %s",
		emptyReply:  "The stars are silent right now...",
		failReply:   "A cloud obscures my vision.",
	},
}

// ParsePersona resolves a persona name.
func ParsePersona(raw string) (Persona, error) {
	p := Persona(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := personaProfiles[p]; !ok {
		return "", models.NewValidationError(fmt.Sprintf("Unknown persona %q", raw))
	}
	return p, nil
}

const (
	horoscopeInstruction = "You are an expert astrologer. Provide a 3-sentence horoscope that is encouraging and insightful."
	horoscopePrompt      = "Provide a daily horoscope for %s today."
	horoscopeEmpty       = "Consulting stars..."
	horoscopeFailed      = "A mercury retrograde has blocked the transmission."

	planetaryInstruction = "You are a cosmic astrologer providing deep, personalized insights based on planetary aspects. Provide plain text only."
	planetaryPrompt      = "Explain how current planetary movements affect the mood of a %s today."
	planetaryEmpty       = "Consulting planetary movements..."
	planetaryFailed      = "The planetary alignment is currently obscured."

	compatibilityPrompt = "Predict love compatibility between %s and %s. Return only a JSON object with 'percentage' and 'reason'."
)

// Fallback compatibility result.
const (
	FallbackPercentage = 75
	FallbackReason     = "The stars suggest a strong bond, despite minor friction in the outer orbits."
)

// HoroscopeStore caches one reading per sign per day.
type HoroscopeStore interface {
	Get(ctx context.Context, sign, date string) (string, bool, error)
	Put(ctx context.Context, sign, date, text string) error
}

// Reading is a single-shot astrology answer.
type Reading struct {
	Sign     string `json:"sign"`
	Text     string `json:"text"`
	Cached   bool   `json:"cached"`
	Fallback bool   `json:"fallback"`
}

// Compatibility is a love-match prediction.
type Compatibility struct {
	Sign1      string  `json:"sign1"`
	Sign2      string  `json:"sign2"`
	Percentage float64 `json:"percentage"`
	Reason     string  `json:"reason"`
	Fallback   bool    `json:"fallback"`
}

// PersonaService fronts the text generator for the chat personas and the
// zodiac features. Generator failures never surface; each feature answers
// with a fixed line instead.
type PersonaService struct {
	gen        textgen.Generator
	horoscopes HoroscopeStore
	clock      scheduler.Clock
	chatModel  string
	fastModel  string

	mu        sync.Mutex
	buffers   map[Persona][]ChatEntry
	planetary map[string]Reading
	compat    *Compatibility
}

func NewPersonaService(gen textgen.Generator, horoscopes HoroscopeStore, clock scheduler.Clock, chatModel, fastModel string) *PersonaService {
	return &PersonaService{
		gen:        gen,
		horoscopes: horoscopes,
		clock:      clock,
		chatModel:  chatModel,
		fastModel:  fastModel,
		buffers:    make(map[Persona][]ChatEntry),
		planetary:  make(map[string]Reading),
	}
}

// Ask appends text to the persona buffer, asks the generator and appends
// the answer. The buffer lock is not held during the round trip, so answers
// land in arrival order.
func (s *PersonaService) Ask(ctx context.Context, persona Persona, text string) (string, error) {
	profile, ok := personaProfiles[persona]
	if !ok {
		return "", models.NewValidationError(fmt.Sprintf("Unknown persona %q", persona))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", models.NewValidationError("Message is required")
	}

	s.mu.Lock()
	s.buffers[persona] = append(s.buffers[persona], ChatEntry{Role: ChatUser, Text: text})
	history := slices.Clone(s.buffers[persona])
	s.mu.Unlock()

	req := textgen.Request{
		Model:             s.model(profile.fast),
		SystemInstruction: profile.instruction,
	}
	if profile.prompt != "" {
		req.Turns = textgen.Prompt(fmt.Sprintf(profile.prompt, text))
	} else {
		req.Turns = toTurns(history)
	}

	reply, _ := s.generate(ctx, string(persona), req, profile.emptyReply, profile.failReply)

	s.mu.Lock()
	s.buffers[persona] = append(s.buffers[persona], ChatEntry{Role: ChatAssistant, Text: reply})
	s.mu.Unlock()
	return reply, nil
}

// History returns a copy of the persona buffer.
func (s *PersonaService) History(persona Persona) []ChatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.buffers[persona])
	if out == nil {
		out = []ChatEntry{}
	}
	return out
}

// ResetConversations forgets every buffer and last result.
func (s *PersonaService) ResetConversations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers = make(map[Persona][]ChatEntry)
	s.planetary = make(map[string]Reading)
	s.compat = nil
}

// Horoscope returns today's reading for sign, asking the generator at most
// once per sign per day. Empty or failed answers are not cached.
func (s *PersonaService) Horoscope(ctx context.Context, sign string) (Reading, error) {
	zs, ok := zodiac.Lookup(sign)
	if !ok {
		return Reading{}, unknownSign(sign)
	}
	today := Today(s.clock)

	if s.horoscopes != nil {
		text, hit, err := s.horoscopes.Get(ctx, zs.Name, today)
		if err != nil {
			slog.WarnContext(ctx, "Horoscope cache read failed", slog.String("sign", zs.Name), slog.String("error", err.Error()))
		}
		if hit {
			return Reading{Sign: zs.Name, Text: text, Cached: true}, nil
		}
	}

	text, outcome := s.generate(ctx, "horoscope", textgen.Request{
		Model:             s.fastModel,
		SystemInstruction: horoscopeInstruction,
		Turns:             textgen.Prompt(fmt.Sprintf(horoscopePrompt, zs.Name)),
	}, horoscopeEmpty, horoscopeFailed)

	if outcome == outcomeOK && s.horoscopes != nil {
		if err := s.horoscopes.Put(ctx, zs.Name, today, text); err != nil {
			slog.WarnContext(ctx, "Horoscope cache write failed", slog.String("sign", zs.Name), slog.String("error", err.Error()))
		}
	}
	return Reading{Sign: zs.Name, Text: text, Fallback: outcome == outcomeFailed}, nil
}

// PlanetaryInsight asks how today's planets affect sign and remembers the
// answer as the last result for that sign.
func (s *PersonaService) PlanetaryInsight(ctx context.Context, sign string) (Reading, error) {
	zs, ok := zodiac.Lookup(sign)
	if !ok {
		return Reading{}, unknownSign(sign)
	}
	text, outcome := s.generate(ctx, "planetary", textgen.Request{
		Model:             s.fastModel,
		SystemInstruction: planetaryInstruction,
		Turns:             textgen.Prompt(fmt.Sprintf(planetaryPrompt, zs.Name)),
	}, planetaryEmpty, planetaryFailed)

	r := Reading{Sign: zs.Name, Text: text, Fallback: outcome == outcomeFailed}
	s.mu.Lock()
	s.planetary[zs.Name] = r
	s.mu.Unlock()
	return r, nil
}

// LastPlanetaryInsight returns the last answer for sign, if any.
func (s *PersonaService) LastPlanetaryInsight(sign string) (Reading, bool) {
	zs, ok := zodiac.Lookup(sign)
	if !ok {
		return Reading{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.planetary[zs.Name]
	return r, ok
}

// Compatibility predicts a love match between two signs.
func (s *PersonaService) Compatibility(ctx context.Context, sign1, sign2 string) (Compatibility, error) {
	a, ok := zodiac.Lookup(sign1)
	if !ok {
		return Compatibility{}, unknownSign(sign1)
	}
	b, ok := zodiac.Lookup(sign2)
	if !ok {
		return Compatibility{}, unknownSign(sign2)
	}

	result := Compatibility{Sign1: a.Name, Sign2: b.Name}
	raw, outcome := s.generate(ctx, "compatibility", textgen.Request{
		Model: s.fastModel,
		Turns: textgen.Prompt(fmt.Sprintf(compatibilityPrompt, a.Name, b.Name)),
		Schema: []textgen.Field{
			{Name: "percentage", Type: textgen.FieldNumber},
			{Name: "reason", Type: textgen.FieldString},
		},
	}, "", "")

	parsed := false
	if outcome == outcomeOK {
		result.Percentage, result.Reason, parsed = ParseCompatibility(raw)
		if !parsed {
			observability.PersonaRequests.WithLabelValues("compatibility", "malformed").Inc()
		}
	}
	if !parsed {
		result.Percentage = FallbackPercentage
		result.Reason = FallbackReason
		result.Fallback = true
	}

	s.mu.Lock()
	c := result
	s.compat = &c
	s.mu.Unlock()
	return result, nil
}

// CompatibilityByBirthday resolves both birthdays to signs first.
func (s *PersonaService) CompatibilityByBirthday(ctx context.Context, month1, day1, month2, day2 int) (Compatibility, error) {
	return s.Compatibility(ctx, zodiac.FromDate(month1, day1), zodiac.FromDate(month2, day2))
}

// LastCompatibility returns the most recent prediction, if any.
func (s *PersonaService) LastCompatibility() (Compatibility, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.compat == nil {
		return Compatibility{}, false
	}
	return *s.compat, true
}

// ParseCompatibility reads {percentage, reason} from a generator answer,
// tolerating code fences. Both fields are required; the percentage is
// clamped to 0..100.
func ParseCompatibility(raw string) (float64, string, bool) {
	var payload struct {
		Percentage *float64 `json:"percentage"`
		Reason     *string  `json:"reason"`
	}
	if err := json.Unmarshal([]byte(textgen.CleanJSON(raw)), &payload); err != nil {
		return 0, "", false
	}
	if payload.Percentage == nil || payload.Reason == nil || strings.TrimSpace(*payload.Reason) == "" {
		return 0, "", false
	}
	return min(max(*payload.Percentage, 0), 100), *payload.Reason, true
}

const (
	outcomeOK     = "ok"
	outcomeEmpty  = "empty"
	outcomeFailed = "fallback"
)

// generate performs one traced round trip. It returns emptyReply for a
// blank answer and failReply on error, with the matching outcome.
func (s *PersonaService) generate(ctx context.Context, label string, req textgen.Request, emptyReply, failReply string) (string, string) {
	span, ctx := observability.NewSpan(ctx, "persona."+label)
	defer span.End()
	span.AddAttributes(
		attribute.String("persona", label),
		attribute.String("model", req.Model),
		attribute.Int("turns", len(req.Turns)),
	)

	start := time.Now()
	text, err := s.gen.Generate(ctx, req)
	observability.PersonaLatency.WithLabelValues(label).Observe(time.Since(start).Seconds())

	outcome := outcomeOK
	switch {
	case err != nil:
		span.SetError(err)
		slog.WarnContext(ctx, "Text generation failed",
			slog.String("persona", label),
			slog.String("error", err.Error()),
		)
		text, outcome = failReply, outcomeFailed
	case strings.TrimSpace(text) == "":
		text, outcome = emptyReply, outcomeEmpty
	}
	observability.PersonaRequests.WithLabelValues(label, outcome).Inc()
	return text, outcome
}

func (s *PersonaService) model(fast bool) string {
	if fast {
		return s.fastModel
	}
	return s.chatModel
}

func toTurns(history []ChatEntry) []textgen.Turn {
	turns := make([]textgen.Turn, 0, len(history))
	for _, e := range history {
		role := textgen.RoleUser
		if e.Role == ChatAssistant {
			role = textgen.RoleModel
		}
		turns = append(turns, textgen.Turn{Role: role, Text: e.Text})
	}
	return turns
}

func unknownSign(sign string) error {
	return models.NewValidationError(fmt.Sprintf("Unknown zodiac sign %q", sign))
}
