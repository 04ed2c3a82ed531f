package gpt

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"rubkoff/assistant/config"
	"rubkoff/assistant/internal/matching"
)

// FallbackMessage is returned to the client when the narrative
// generator is unavailable. Recommendations themselves are computed
// locally and never depend on it.
const FallbackMessage = "Извините, не удалось подобрать дом. Попробуйте позже."

const (
	maxRetries     = 3
	requestTimeout = 30 * time.Second
)

// Generator produces a human-readable narrative for a ranked set of
// houses.
type Generator interface {
	Narrative(ctx context.Context, prefs matching.Preferences, candidates []matching.Candidate) (string, error)
}

// Client generates narratives through the OpenAI chat completions
// API, rate limited so bursts of survey completions do not trip the
// account quota.
type Client struct {
	api     *openai.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
	config  *config.OpenAIConfig
}

func NewClient(cfg *config.OpenAIConfig, logger *logrus.Logger) *Client {
	return &Client{
		api:     openai.NewClient(cfg.APIKey),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger,
		config:  cfg,
	}
}

// Narrative asks the model to pick three houses out of the ranked
// candidates and explain the choice. The scores are already computed;
// the model only writes the explanation.
func (c *Client) Narrative(ctx context.Context, prefs matching.Preferences, candidates []matching.Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("no candidates to describe")
	}

	request := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(candidates),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt(prefs),
			},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: float32(c.config.Temperature),
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		resp, err = c.api.CreateChatCompletion(attemptCtx, request)
		cancel()

		if err == nil && len(resp.Choices) > 0 {
			return resp.Choices[0].Message.Content, nil
		}
		if err == nil {
			err = fmt.Errorf("chat completion returned no choices")
		}

		c.logger.WithError(err).WithField("attempt", attempt).Warn("OpenAI chat completion failed")

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	return "", fmt.Errorf("chat completion after %d attempts: %w", maxRetries, err)
}

func systemPrompt(candidates []matching.Candidate) string {
	var b strings.Builder
	b.WriteString("Ты - эксперт по подбору загородных домов. Я уже рассчитал баллы соответствия для каждого дома (от 0 до 1, где 1 - идеальное совпадение).\n\n")
	b.WriteString("Твоя задача - выбрать ТОП-3 дома из предложенных и объяснить клиенту, почему именно они подходят.\n\n")
	b.WriteString("Дома по баллам соответствия:\n\n")

	for i, cand := range candidates {
		h := cand.House
		fmt.Fprintf(&b, "%d. %s (Балл соответствия: %.2f)\n", i+1, h.Name, cand.Score)
		fmt.Fprintf(&b, "   Цена: %.1f млн\n", h.Price)
		fmt.Fprintf(&b, "   Площадь: %.0f м²\n", h.Area)
		if h.Floors != nil {
			fmt.Fprintf(&b, "   Этажи: %.0f\n", *h.Floors)
		}
		if h.Bedrooms != nil {
			fmt.Fprintf(&b, "   Комнаты: %d\n", *h.Bedrooms)
		}
		if h.Bathrooms != nil {
			fmt.Fprintf(&b, "   Санузлы: %d\n", *h.Bathrooms)
		}
		if h.Material != "" {
			fmt.Fprintf(&b, "   Материал: %s\n", h.Material)
		}
		if h.Garage != "" {
			fmt.Fprintf(&b, "   Гараж: %s\n", h.Garage)
		}
		if h.Style != "" {
			fmt.Fprintf(&b, "   Стиль: %s\n", h.Style)
		}
		b.WriteString("\n")
	}

	b.WriteString(`ВАЖНО: Выбери ТОЛЬКО 3 дома из этого списка. Учитывай баллы соответствия, но также обрати внимание на баланс цена/качество.

Ответ должен быть в следующем формате:

🏡 <b>Вариант 1: [Название дома]</b>
💰 Цена: [цена]
📐 Площадь: [площадь] | 🏠 Этажей: [этажи]
🚪 Комнат: [комнаты] | 🚿 Санузлов: [санузлы]

<i>Почему этот вариант:</i>
[Короткое объяснение в 2-3 предложениях, почему этот дом подходит клиенту. Упомяни конкретные совпадения с запросом]

[Аналогично для варианта 2 и 3]

Будь конкретным и объясняй выбор на основе реальных параметров.
`)
	return b.String()
}

func userPrompt(prefs matching.Preferences) string {
	get := func(key, fallback string) string {
		if v := prefs.Get(key); v != "" {
			return v
		}
		return fallback
	}

	return fmt.Sprintf(`Подбери 3 лучших варианта дома для клиента со следующими предпочтениями:

Бюджет: %s
Площадь: %s
Этажи: %s
Комнаты: %s
Санузлы: %s
Материал: %s
Гараж: %s
Стиль: %s

Баллы соответствия уже рассчитаны. Выбери 3 лучших варианта и объясни почему.
`,
		get(matching.CriterionBudget, "не указан"),
		get(matching.CriterionArea, "не указана"),
		get(matching.CriterionFloors, "не важно"),
		get(matching.CriterionRooms, "не важно"),
		get(matching.CriterionBathrooms, "не важно"),
		get(matching.CriterionMaterial, "не важно"),
		get(matching.CriterionGarage, "не важно"),
		get(matching.CriterionStyle, "не важно"),
	)
}

// MockGenerator writes a canned narrative without calling the API.
// With a fixed seed the output is reproducible, which keeps demo
// environments and tests deterministic.
type MockGenerator struct {
	rng *rand.Rand
}

func NewMockGenerator(seed int64) *MockGenerator {
	return &MockGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (m *MockGenerator) Narrative(_ context.Context, _ matching.Preferences, candidates []matching.Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("no candidates to describe")
	}

	n := len(candidates)
	if n > 3 {
		n = 3
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		cand := candidates[i]
		h := cand.House
		fmt.Fprintf(&b, "🏡 <b>Вариант %d: %s</b>\n", i+1, h.Name)
		fmt.Fprintf(&b, "💰 Цена: %.1f млн\n", h.Price)
		fmt.Fprintf(&b, "📐 Площадь: %.0f м²\n\n", h.Area)

		reasons := cand.Reasons
		if len(reasons) == 0 {
			reasons = matching.MockReasons(m.rng, 2)
		}
		b.WriteString("<i>Почему этот вариант:</i>\n")
		b.WriteString(strings.Join(reasons, ". "))
		b.WriteString(".\n\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
