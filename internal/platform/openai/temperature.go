package openai

import (
	"strings"
	"time"
)

type noTempRules struct {
	models   map[string]bool
	prefixes []string
}

// parseNoTempModelRules reads OPENAI_NO_TEMPERATURE_MODELS: a comma-separated list where a
// trailing "*" means prefix match, e.g. "o1-*, o3-*, gpt-5".
func parseNoTempModelRules(raw string) noTempRules {
	rules := noTempRules{models: map[string]bool{}}
	for _, part := range strings.Split(raw, ",") {
		s := normalizeModelKey(part)
		if s == "" {
			continue
		}
		if strings.HasSuffix(s, "*") {
			p := strings.TrimSpace(strings.TrimRight(strings.TrimSuffix(s, "*"), "-_./:"))
			if p != "" {
				rules.prefixes = append(rules.prefixes, p)
			}
			continue
		}
		rules.models[s] = true
	}
	return rules
}

func normalizeModelKey(m string) string {
	return strings.ToLower(strings.TrimSpace(m))
}

func (c *client) modelIsNoTemp(model string) bool {
	m := normalizeModelKey(model)
	if m == "" {
		return false
	}
	if c.noTemp.models[m] {
		return true
	}
	for _, p := range c.noTemp.prefixes {
		if strings.HasPrefix(m, p) {
			return true
		}
	}

	c.noTempMu.RLock()
	ts, ok := c.noTempSeen[m]
	ttl := c.noTempTTL
	c.noTempMu.RUnlock()
	if !ok {
		return false
	}
	return ttl <= 0 || time.Since(ts) < ttl
}

func (c *client) noteNoTempModel(model string) {
	m := normalizeModelKey(model)
	if m == "" {
		return
	}
	c.noTempMu.Lock()
	c.noTempSeen[m] = time.Now().UTC()
	c.noTempMu.Unlock()
	c.log.Warn("model rejected temperature, omitting it from now on", "model", m)
}
