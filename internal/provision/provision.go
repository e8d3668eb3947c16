// Package provision supplies the secret material for a round, either
// from a generative model or from a built-in word table. Its one
// operation is total: any internal failure is absorbed and replaced by
// the fallback, so callers never see an error.
package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Alvington/ImposterGame/internal/game"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
)

// Generator calls the Gemini generateContent endpoint. A zero API key
// means fallback-only operation.
type Generator struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
	Logf    func(string, ...any)
}

func NewGenerator(apiKey, model string, logf func(string, ...any)) *Generator {
	if model == "" {
		model = DefaultModel
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Generator{
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: 30 * time.Second},
		Logf:   logf,
	}
}

// GameData produces the round's secret material. It never fails: a
// missing key, a remote error, or a malformed response all degrade to
// the category fallback.
func (g *Generator) GameData(ctx context.Context, category string, difficulty game.Difficulty, strategy game.Strategy, customItems []game.CustomItem) game.GameData {
	if g.APIKey == "" {
		g.Logf("GEN: no api key, using fallback for %q", category)
		return fallbackFor(category, strategy)
	}

	data, err := g.generate(ctx, category, difficulty, strategy, customItems)
	if err != nil {
		g.Logf("GEN: %v, using fallback for %q", err, category)
		return fallbackFor(category, strategy)
	}
	return data
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *Generator) generate(ctx context.Context, category string, difficulty game.Difficulty, strategy game.Strategy, customItems []game.CustomItem) (game.GameData, error) {
	prompt, err := buildPrompt(category, difficulty, strategy, customItems)
	if err != nil {
		return game.GameData{}, err
	}

	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      1.0,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return game.GameData{}, err
	}

	base := g.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", base, g.Model, g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return game.GameData{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return game.GameData{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return game.GameData{}, fmt.Errorf("generate: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return game.GameData{}, err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return game.GameData{}, err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return game.GameData{}, fmt.Errorf("generate: empty response")
	}

	var data game.GameData
	if err := json.Unmarshal([]byte(parsed.Candidates[0].Content.Parts[0].Text), &data); err != nil {
		return game.GameData{}, err
	}
	if data.Word == "" {
		return game.GameData{}, fmt.Errorf("generate: response without word")
	}

	data.Strategy = strategy
	data.Sources = nil
	return data, nil
}

func buildPrompt(category string, difficulty game.Difficulty, strategy game.Strategy, customItems []game.CustomItem) (string, error) {
	if len(customItems) > 0 {
		items, err := json.Marshal(customItems)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Category: %s. Data: %s. Strategy: %s. Pick one item. JSON output only.", category, items, strategy), nil
	}

	return fmt.Sprintf(`Role: Imposter Game Engine.
Category: %q | Difficulty: %q | Mode: %q
Requirements:
- If HINT: Provide "word" and a cryptic "hint" (< 8 words).
- If WRONG_WORD: Provide "word" and a similar "imposterWord".
- If BLIND: Provide only "word".
Return valid JSON only.`, category, difficulty, strategy), nil
}
