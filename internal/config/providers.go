package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Provider kinds.
const (
	KindOpenAI = "openai" // OpenAI-compatible chat completions
	KindDeepL  = "deepl"  // DeepL-compatible /v2/translate
)

// Provider roles.
const (
	RoleSummary     = "summary"
	RoleTranslation = "translation"
)

// ProviderConfig is one AI provider with its credentials and models.
// Order in the list is the provider priority order.
type ProviderConfig struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Endpoint string   `yaml:"endpoint,omitempty"`
	Keys     []string `yaml:"keys"`
	Models   []string `yaml:"models,omitempty"`
	Roles    []string `yaml:"roles"`
}

// HasRole reports whether the provider serves role.
func (p ProviderConfig) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ProvidersFile models the YAML file referenced by PROVIDERS_FILE.
type ProvidersFile struct {
	Version   int              `yaml:"version"`
	Providers []ProviderConfig `yaml:"providers"`
}

//go:embed providers.schema.json
var providersSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// LoadProviders reads, validates and returns the providers file at path.
// Keys may reference environment variables as ${NAME}.
func LoadProviders(path string) ([]ProviderConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}
	return ParseProviders(raw)
}

// ParseProviders validates YAML against the embedded schema and decodes it.
func ParseProviders(raw []byte) ([]ProviderConfig, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("providers file is empty")
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse providers YAML: %w", err)
	}
	value, err := toJSONValue(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize providers YAML: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("providers file invalid: %w", err)
	}

	var file ProvidersFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode providers YAML: %w", err)
	}

	seen := make(map[string]bool, len(file.Providers))
	for i := range file.Providers {
		p := &file.Providers[i]
		if seen[p.Name] {
			return nil, fmt.Errorf("provider %q defined twice", p.Name)
		}
		seen[p.Name] = true
		for k, key := range p.Keys {
			p.Keys[k] = strings.TrimSpace(os.ExpandEnv(key))
		}
		p.Keys = compact(p.Keys)
		if len(p.Keys) == 0 {
			return nil, fmt.Errorf("provider %q: all keys are empty after expansion", p.Name)
		}
	}
	return file.Providers, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("providers.schema.json", strings.NewReader(providersSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, err := compiler.Compile("providers.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		compiledSchema = schema
	})
	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, errors.New("schema not initialized")
	}
	return compiledSchema, nil
}

// toJSONValue converts a decoded YAML document into the shape produced by
// encoding/json, which is what the schema validator expects.
func toJSONValue(doc any) (any, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// providersFromEnv builds the provider list from the *_API_KEYS variables.
// Priority order: OpenAI, OpenRouter, DeepL.
func providersFromEnv() []ProviderConfig {
	var out []ProviderConfig
	if keys := splitCSV(getenv("OPENAI_API_KEYS", "")); len(keys) > 0 {
		out = append(out, ProviderConfig{
			Name:     "openai",
			Kind:     KindOpenAI,
			Endpoint: getenv("OPENAI_ENDPOINT", "https://api.openai.com/v1"),
			Keys:     keys,
			Models:   splitCSV(getenv("OPENAI_MODELS", "gpt-4o-mini")),
			Roles:    []string{RoleSummary, RoleTranslation},
		})
	}
	if keys := splitCSV(getenv("OPENROUTER_API_KEYS", "")); len(keys) > 0 {
		out = append(out, ProviderConfig{
			Name:     "openrouter",
			Kind:     KindOpenAI,
			Endpoint: getenv("OPENROUTER_ENDPOINT", "https://openrouter.ai/api/v1"),
			Keys:     keys,
			Models:   splitCSV(getenv("OPENROUTER_MODELS", "deepseek/deepseek-r1:free")),
			Roles:    []string{RoleSummary, RoleTranslation},
		})
	}
	if keys := splitCSV(getenv("DEEPL_API_KEYS", "")); len(keys) > 0 {
		out = append(out, ProviderConfig{
			Name:     "deepl",
			Kind:     KindDeepL,
			Endpoint: getenv("DEEPL_ENDPOINT", ""),
			Keys:     keys,
			Roles:    []string{RoleTranslation},
		})
	}
	return out
}
