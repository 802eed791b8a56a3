// Package advisor answers free-text beauty and styling questions through the
// Gemini API. It is independent of the booking engine.
package advisor

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/julianstephens/salonlux/internal/logger"
)

// Fixed replies for the cases where no model answer is available.
const (
	MsgMissingKey = "A chave de API não foi configurada. Por favor, configure a variável de ambiente API_KEY para usar o consultor."
	MsgFailure    = "Houve um erro ao processar sua solicitação. Tente novamente mais tarde."
	MsgEmpty      = "Desculpe, não consegui gerar uma resposta no momento."
)

// SystemInstruction sets the persona for every conversation.
const SystemInstruction = `Você é um Consultor de Estilo e Cabeleireiro Sênior da 'SalonLux'.
Seu tom é profissional, amigável e sofisticado.
Responda a perguntas sobre cortes de cabelo, coloração, tratamentos e tendências de moda.
Se o usuário perguntar sobre agendamento, oriente-o a usar o calendário de agendamento do salonlux.
Mantenha as respostas concisas (máximo de 3 parágrafos) e úteis.`

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one prior message in the conversation.
type Turn struct {
	Role Role
	Text string
}

// Generator produces a model reply for query given the prior turns.
type Generator interface {
	Generate(ctx context.Context, system string, history []Turn, query string) (string, error)
}

// Advisor wraps a Generator with the fixed fallback replies.
type Advisor struct {
	gen    Generator
	closer func() error
}

// New creates an advisor backed by Gemini. An empty apiKey yields an advisor
// that always answers MsgMissingKey.
func New(ctx context.Context, apiKey, model string) (*Advisor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return &Advisor{}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Gemini client")
	}
	return &Advisor{
		gen:    &geminiGenerator{client: client, model: model},
		closer: client.Close,
	}, nil
}

// NewWithGenerator creates an advisor around gen. A nil gen behaves like a
// missing API key.
func NewWithGenerator(gen Generator) *Advisor {
	return &Advisor{gen: gen}
}

// Configured reports whether a model backend is available.
func (a *Advisor) Configured() bool {
	return a.gen != nil
}

// Ask returns the model's answer or one of the fixed replies. It never fails.
func (a *Advisor) Ask(ctx context.Context, query string, history []Turn) string {
	if a.gen == nil {
		return MsgMissingKey
	}

	answer, err := a.gen.Generate(ctx, SystemInstruction, history, query)
	if err != nil {
		logger.Error("Advisor request failed", "error", err)
		return MsgFailure
	}
	if strings.TrimSpace(answer) == "" {
		return MsgEmpty
	}
	return answer
}

func (a *Advisor) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

// Conversation accumulates turns across calls to Send.
type Conversation struct {
	advisor *Advisor
	history []Turn
}

func NewConversation(a *Advisor) *Conversation {
	return &Conversation{advisor: a}
}

// Send asks query with the accumulated history and records both turns.
func (c *Conversation) Send(ctx context.Context, query string) string {
	answer := c.advisor.Ask(ctx, query, c.history)
	c.history = append(c.history, Turn{Role: RoleUser, Text: query}, Turn{Role: RoleModel, Text: answer})
	return answer
}

// History returns a copy of the recorded turns.
func (c *Conversation) History() []Turn {
	out := make([]Turn, len(c.history))
	copy(out, c.history)
	return out
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) Generate(ctx context.Context, system string, history []Turn, query string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	chat := model.StartChat()
	for _, turn := range history {
		chat.History = append(chat.History, &genai.Content{
			Role:  string(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(query))
	if err != nil {
		return "", errors.Wrap(err, "gemini generate error")
	}
	return responseText(resp), nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
