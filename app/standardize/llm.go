package standardize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const systemPrompt = `You are a data cleaning assistant. Standardize degree program and university names.

Rules:
- Input provides a single string under key "program" that may contain both program and university.
- Split into (program name, university name).
- Trim extra spaces and commas.
- Expand obvious abbreviations (e.g., "McG" -> "McGill University", "UBC" -> "University of British Columbia").
- Use Title Case for program; use official capitalization for university names (e.g., "University of X").
- Ensure correct spelling (e.g., "McGill", not "McGiill").
- If university cannot be inferred, return "Unknown".

Return JSON ONLY with keys:
  standardized_program, standardized_university`

// Worked examples sent ahead of every input so small models answer in the
// expected JSON shape.
var fewShots = []struct {
	input      string
	program    string
	university string
}{
	{"Information Studies, McGill University", "Information Studies", "McGill University"},
	{"Information, McG", "Information Studies", "McGill University"},
	{"Mathematics, University Of British Columbia", "Mathematics", "University of British Columbia"},
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*?\}`)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat completions endpoint with a
// few-shot prompt to resolve an ambiguous program string.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ Resolver = (*Client)(nil)

func NewClient(endpoint string, model string, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *Client) Resolve(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    c.buildMessages(text),
		Temperature: 0,
		MaxTokens:   128,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Result{}, fmt.Errorf("model error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("failed to decode model response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, fmt.Errorf("model returned no choices")
	}

	return parseReply(parsed.Choices[0].Message.Content)
}

func (c *Client) buildMessages(text string) []chatMessage {
	messages := []chatMessage{{Role: "system", Content: systemPrompt}}

	for _, shot := range fewShots {
		messages = append(messages,
			chatMessage{Role: "user", Content: encodeInput(shot.input)},
			chatMessage{Role: "assistant", Content: encodeOutput(shot.program, shot.university)})
	}

	return append(messages, chatMessage{Role: "user", Content: encodeInput(text)})
}

func encodeInput(text string) string {
	encoded, _ := json.Marshal(map[string]string{"program": text})
	return string(encoded)
}

func encodeOutput(program string, university string) string {
	encoded, _ := json.Marshal(map[string]string{
		"standardized_program":    program,
		"standardized_university": university,
	})
	return string(encoded)
}

// parseReply extracts the first JSON object from the model reply. Replies
// that carry no conforming object are an explicit resolution failure.
func parseReply(content string) (Result, error) {
	candidate := jsonObjectRe.FindString(content)
	if candidate == "" {
		candidate = content
	}

	var fields struct {
		Program    string `json:"standardized_program"`
		University string `json:"standardized_university"`
	}
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return Result{}, fmt.Errorf("failed to parse model reply: %w", err)
	}

	return Result{
		Program:    strings.TrimSpace(fields.Program),
		University: strings.TrimSpace(fields.University),
	}, nil
}
