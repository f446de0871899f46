package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DefaultQuota is the number of classifications a seeded account starts with.
const DefaultQuota = 10

// SeedAccount is one entry of the seed secrets file.
type SeedAccount struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Uses     int    `yaml:"uses_available"`
	Active   *bool  `yaml:"active"`
}

// IsActive reports the configured active flag, defaulting to true.
func (s SeedAccount) IsActive() bool {
	return s.Active == nil || *s.Active
}

type seedFile struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadSeedAccounts reads the seed secrets file at path. Entries without a
// quota get defaultQuota.
func LoadSeedAccounts(path string, defaultQuota int) ([]SeedAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeedAccounts(data, defaultQuota)
}

// ParseSeedAccounts decodes the YAML seed document and validates each entry.
// References of the form ${VAR} inside a username or password are replaced
// with the environment value after decoding, so the value is taken verbatim.
// Any other '$' is kept as written.
func ParseSeedAccounts(data []byte, defaultQuota int) ([]SeedAccount, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Accounts))
	for i := range f.Accounts {
		acc := &f.Accounts[i]
		var err error
		if acc.Username, err = expandEnvRefs(acc.Username); err != nil {
			return nil, fmt.Errorf("seed account %d: username: %w", i, err)
		}
		if acc.Password, err = expandEnvRefs(acc.Password); err != nil {
			return nil, fmt.Errorf("seed account %q: password: %w", acc.Username, err)
		}
		if acc.Username == "" {
			return nil, fmt.Errorf("seed account %d: username is required", i)
		}
		if acc.Password == "" {
			return nil, fmt.Errorf("seed account %q: password is required", acc.Username)
		}
		if _, dup := seen[acc.Username]; dup {
			return nil, fmt.Errorf("seed account %q: duplicate username", acc.Username)
		}
		seen[acc.Username] = struct{}{}
		if acc.Uses < 0 {
			return nil, fmt.Errorf("seed account %q: uses_available must not be negative", acc.Username)
		}
		if acc.Uses == 0 {
			acc.Uses = defaultQuota
		}
	}
	return f.Accounts, nil
}

// expandEnvRefs replaces ${VAR} references with their environment values.
// An unset variable is an error rather than an empty credential.
func expandEnvRefs(value string) (string, error) {
	var missing string
	out := envRef.ReplaceAllStringFunc(value, func(ref string) string {
		name := envRef.FindStringSubmatch(ref)[1]
		v, ok := os.LookupEnv(name)
		if !ok && missing == "" {
			missing = name
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("environment variable %s is not set", missing)
	}
	return out, nil
}
