// Package openai provides an NPCGenerator implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/sheetkeeper/internal/infrastructure/config"
)

const statBlockPrompt = `You write stat blocks for tabletop RPG non-player characters.

Given an NPC name and an optional description, return a single JSON object
whose keys are stat names and whose values are numbers or short strings.
Always include "pv" (hit points) and "ca" (armor class). Add whatever other
stats, attacks or traits suit the description.

Return ONLY a valid JSON object, no other text.

Example:
Input: "Goblin - a sneaky scout"
Output: {"pv": 7, "ca": 15, "ataque": "adaga +4 (1d4+2)", "furtividade": 6}`

// Client implements the NPCGenerator interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI NPC generator.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// GenerateStats asks the model for a stat block for the named NPC.
func (c *Client) GenerateStats(ctx context.Context, name, prompt string) (map[string]any, error) {
	input := name
	if strings.TrimSpace(prompt) != "" {
		input = name + " - " + prompt
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: statBlockPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: input,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)

	var stats map[string]any
	if err := json.Unmarshal([]byte(content), &stats); err != nil {
		return nil, fmt.Errorf("parsing stats JSON: %w (response: %s)", err, content)
	}

	for key, value := range stats {
		stats[key] = normalizeStat(value)
	}
	return stats, nil
}

// normalizeStat turns whole JSON numbers into ints so "pv": 7 reads back as 7.
func normalizeStat(value any) any {
	v, ok := value.(float64)
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return value
	}
	return int(v)
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
