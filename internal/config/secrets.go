package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields
// replaced by the redaction placeholder "***". Use this when logging or
// printing the active configuration so secrets are never accidentally
// exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	redact(&out.Wallet.PrivateKey)
	redact(&out.Wallet.KeyPassword)
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
