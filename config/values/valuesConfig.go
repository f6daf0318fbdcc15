package values

import "time"

// ScraperValues carries the tuning knobs handed to the fetch engine at
// construction. Nothing in here is process-global state.
type ScraperValues struct {
	Engine               string   `yaml:"engine"`
	UserAgents           []string `yaml:"user-agents"`
	MinDelaySeconds      float64  `yaml:"min-delay-seconds"`
	MaxDelaySeconds      float64  `yaml:"max-delay-seconds"`
	DetailTimeoutSeconds int      `yaml:"detail-timeout-seconds"`
	RequestsPerMinute    int      `yaml:"requests-per-minute"`
	Headless             bool     `yaml:"headless"`
}

func Default() ScraperValues {
	return ScraperValues{
		Engine: "mock",
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Edge/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		MinDelaySeconds:      3,
		MaxDelaySeconds:      7,
		DetailTimeoutSeconds: 80,
		RequestsPerMinute:    12,
		Headless:             true,
	}
}

func (v ScraperValues) DetailTimeout() time.Duration {
	if v.DetailTimeoutSeconds <= 0 {
		return 80 * time.Second
	}
	return time.Duration(v.DetailTimeoutSeconds) * time.Second
}
