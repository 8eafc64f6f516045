package advisor

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const systemPrompt = `You are an options trading analyst. You receive a ` +
	`multi-timeframe technical summary for a stock, and optionally candlestick ` +
	`and indicator charts. Respond with a single JSON object describing your ` +
	`recommendation: "type" is one of call, put, no_action; when type is call ` +
	`or put include an "action" object with strike_price, option_type and, if ` +
	`relevant, target_price, price_type, expiration_date and expiration_reason; ` +
	`optionally include "confidence" (0-100); always include "reasoning". ` +
	`Do not include any text outside the JSON object.`

const userPromptText = `Symbol: {{.Symbol}}

Technical summary across timeframes:
{{.Summary}}

Provide your recommendation as a single JSON object.`

var userPrompt = template.Must(template.New("advise").Parse(userPromptText))

func buildUserPrompt(symbol, summary string) (string, error) {
	var buf bytes.Buffer
	err := userPrompt.Execute(&buf, struct {
		Symbol  string
		Summary string
	}{Symbol: symbol, Summary: summary})
	if err != nil {
		return "", fmt.Errorf("render advise prompt: %w", err)
	}
	return buf.String(), nil
}

// PromptTemplate wraps a text/template loaded from disk with an optional
// function map. It lets deployments override the built-in prompts without a
// rebuild.
type PromptTemplate struct {
	path string
	tmpl *template.Template
	hash string
}

// NewPromptTemplate parses the template at path using the provided template functions.
func NewPromptTemplate(path string, funcs template.FuncMap) (*PromptTemplate, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("prompt template path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template %q: %w", path, err)
	}

	name := filepath.Base(path)
	tmpl := template.New(name).Option("missingkey=error")
	if len(funcs) > 0 {
		tmpl = tmpl.Funcs(funcs)
	}
	if _, err := tmpl.Parse(string(data)); err != nil {
		return nil, fmt.Errorf("parse prompt template %q: %w", path, err)
	}
	return &PromptTemplate{
		path: path,
		tmpl: tmpl,
		hash: computeDigest(data),
	}, nil
}

// Render executes the template with the provided data.
func (t *PromptTemplate) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.path, err)
	}
	return buf.String(), nil
}

// Digest returns the sha256 hash of the template content.
func (t *PromptTemplate) Digest() string {
	return t.hash
}

func computeDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
