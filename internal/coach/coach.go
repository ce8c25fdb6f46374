// Package coach talks to an OpenAI-compatible chat completions API for the
// coaching feature. It has no bearing on the streak/XP engine.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"xenoxy/internal/models"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	model          = "gpt-4o-mini"
)

type Message struct {
	Role    string `json:"role"` // system, user or assistant
	Content string `json:"content"`
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Send forwards the ordered message list and returns the generated text.
func (c *Client) Send(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API error: %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// SystemPrompt builds the coach persona from the user's profile and active
// habits.
func SystemPrompt(u *models.User, habits []models.HabitWithStats) string {
	purpose := "Not yet discovered"
	if u.CurrentPurpose != nil && *u.CurrentPurpose != "" {
		purpose = *u.CurrentPurpose
	}

	habitList := make([]string, 0, len(habits))
	for _, h := range habits {
		habitList = append(habitList, fmt.Sprintf("%s (%d XP)", h.Name, h.XPReward))
	}

	return fmt.Sprintf(`You are Xenoxy Coach, an AI life coach specializing in habit formation, purpose discovery, and personal accountability.

User Profile:
- Level: %d
- Total XP: %d
- Current Purpose: %s

Active Habits: %s

Your role is to:
1. Help users discover and refine their life purpose through thoughtful questions
2. Provide motivation and accountability for habit completion
3. Offer personalized advice based on their progress and challenges
4. Celebrate achievements and help overcome setbacks

Be encouraging, insightful, and focus on helping them understand their deeper 'why' behind their habits. Ask meaningful questions that lead to self-discovery.`,
		u.Level, u.TotalXP, purpose, strings.Join(habitList, ", "))
}
