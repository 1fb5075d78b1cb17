// Package secrets resolves the LLM API key from config, the environment or
// a mounted secret file.
package secrets

import (
	"os"
	"strings"

	"recipebox/internal/config"
)

// Provider looks up the API key for the configured LLM provider.
type Provider struct {
	configured string
	envVar     string
	lookupEnv  func(string) (string, bool)
	readFile   func(string) ([]byte, error)
}

var envVars = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"google":    "GOOGLE_API_KEY",
}

func NewProvider(cfg *config.Config) *Provider {
	var configured string
	switch cfg.LLM.Provider {
	case "openai":
		configured = cfg.LLM.OpenAI.APIKey
	case "google":
		configured = cfg.LLM.Google.APIKey
	default:
		configured = cfg.LLM.Anthropic.APIKey
	}
	envVar, ok := envVars[cfg.LLM.Provider]
	if !ok {
		envVar = envVars["anthropic"]
	}
	return &Provider{
		configured: configured,
		envVar:     envVar,
		lookupEnv:  os.LookupEnv,
		readFile:   os.ReadFile,
	}
}

// APIKey returns the key from config, then $VAR, then the file named by
// $VAR_FILE. The second result is false when none is set.
func (p *Provider) APIKey() (string, bool) {
	if k := strings.TrimSpace(p.configured); k != "" {
		return k, true
	}
	if v, ok := p.lookupEnv(p.envVar); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if path, ok := p.lookupEnv(p.envVar + "_FILE"); ok && path != "" {
		if b, err := p.readFile(path); err == nil {
			if k := strings.TrimSpace(string(b)); k != "" {
				return k, true
			}
		}
	}
	return "", false
}
