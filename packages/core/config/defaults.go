package config

const (
	// DefaultTimeoutMs is the per-request timeout in milliseconds.
	DefaultTimeoutMs = 30000
	// DefaultMaxRedirects caps redirect chains.
	DefaultMaxRedirects = 10
	// DefaultOutput is the formatter used when none is configured.
	DefaultOutput = "console"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultEnvironment: "dev",
		Timeout:            DefaultTimeoutMs,
		FollowRedirects:    BoolPtr(true),
		MaxRedirects:       DefaultMaxRedirects,
		ValidateSSL:        BoolPtr(true),
		Output:             DefaultOutput,
		Bail:               BoolPtr(false),
		Verbose:            BoolPtr(false),
		NoColor:            BoolPtr(false),
		SuppressErrors:     BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	d := DefaultConfig()
	return c.DefaultEnvironment == d.DefaultEnvironment &&
		len(c.Environments) == 0 &&
		c.Timeout == d.Timeout &&
		c.GetFollowRedirects() == d.GetFollowRedirects() &&
		c.MaxRedirects == d.MaxRedirects &&
		c.GetValidateSSL() == d.GetValidateSSL() &&
		c.Proxy == d.Proxy &&
		len(c.Headers) == 0 &&
		c.RateLimit == d.RateLimit &&
		c.Output == d.Output &&
		c.OutputFile == d.OutputFile &&
		c.EnvFile == d.EnvFile &&
		c.GetBail() == d.GetBail() &&
		c.GetVerbose() == d.GetVerbose() &&
		c.GetNoColor() == d.GetNoColor() &&
		c.GetSuppressErrors() == d.GetSuppressErrors()
}
