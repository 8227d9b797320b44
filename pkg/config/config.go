// Package config reads store-scoped settings from a TOML file.
//
// Settings are addressed by slash-separated paths ("payment/free/active")
// and resolved store → website → default, so a store only lists the values
// it overrides:
//
//	[default]
//	"payment/free/active" = "1"
//
//	[websites.eu]
//	"payment/free/order_status" = "pending"
//
//	[stores.de]
//	website = "eu"
//	[stores.de.values]
//	"payment/free/active" = "0"
//
//	[order_statuses]
//	new = ["pending"]
//
// A missing file is an empty configuration, which callers treat as
// "everything disabled".
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/storekit/pkg/errors"
)

// DefaultScope is the scope code of the global configuration.
const DefaultScope = "default"

type storeSection struct {
	Website string         `toml:"website"`
	Values  map[string]any `toml:"values"`
}

type rawFile struct {
	Default       map[string]any            `toml:"default"`
	Websites      map[string]map[string]any `toml:"websites"`
	Stores        map[string]storeSection   `toml:"stores"`
	OrderStatuses map[string][]string       `toml:"order_statuses"`
}

type scope struct {
	website string
	values  map[string]string
}

type file struct {
	Default       map[string]string
	Websites      map[string]map[string]string
	Stores        map[string]scope
	OrderStatuses map[string][]string
}

// Store holds the parsed configuration. It is immutable after Load and
// safe for concurrent reads.
type Store struct {
	f file
}

// Load reads the configuration file at path. A missing file yields an empty Store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Store{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML configuration data and validates every setting path.
// Scalar values of any TOML type are accepted and kept in string form.
func Parse(data []byte) (*Store, error) {
	var raw rawFile
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}

	f := file{
		Websites:      make(map[string]map[string]string, len(raw.Websites)),
		Stores:        make(map[string]scope, len(raw.Stores)),
		OrderStatuses: raw.OrderStatuses,
	}

	var err error
	if f.Default, err = normalize(raw.Default); err != nil {
		return nil, err
	}
	for code, values := range raw.Websites {
		if f.Websites[code], err = normalize(values); err != nil {
			return nil, err
		}
	}
	for code, sec := range raw.Stores {
		if sec.Website != "" {
			if _, ok := raw.Websites[sec.Website]; !ok {
				return nil, errors.New(errors.ErrCodeInvalidConfig, "store %q references unknown website %q", code, sec.Website)
			}
		}
		values, err := normalize(sec.Values)
		if err != nil {
			return nil, err
		}
		f.Stores[code] = scope{website: sec.Website, values: values}
	}

	return &Store{f: f}, nil
}

func normalize(values map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for path, v := range values {
		if err := errors.ValidateConfigPath(path); err != nil {
			return nil, err
		}
		switch v := v.(type) {
		case string:
			out[path] = v
		case bool, int64, float64:
			out[path] = fmt.Sprint(v)
		default:
			return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unsupported value type %T", path, v)
		}
	}
	return out, nil
}

// Value resolves path for the given store code. An empty code or
// [DefaultScope] reads the default scope only.
func (s *Store) Value(path, store string) (string, bool) {
	if store != "" && store != DefaultScope {
		if sec, ok := s.f.Stores[store]; ok {
			if v, ok := sec.values[path]; ok {
				return v, true
			}
			if v, ok := s.f.Websites[sec.website][path]; ok {
				return v, true
			}
		}
	}
	v, ok := s.f.Default[path]
	return v, ok
}

// Scope returns a view of the store bound to one store code.
func (s *Store) Scope(store string) Scoped {
	return Scoped{store: s, code: store}
}

// Stores returns the configured store codes.
func (s *Store) Stores() []string {
	codes := make([]string, 0, len(s.f.Stores))
	for code := range s.f.Stores {
		codes = append(codes, code)
	}
	return codes
}

// OrderStatuses returns the configured state → statuses mapping, or nil
// when the file does not define one.
func (s *Store) OrderStatuses() map[string][]string {
	return s.f.OrderStatuses
}

// Scoped is a [Store] bound to a single store code.
type Scoped struct {
	store *Store
	code  string
}

// Code returns the store code of the scope.
func (s Scoped) Code() string { return s.code }

// Value resolves path within the scope.
func (s Scoped) Value(path string) (string, bool) {
	if s.store == nil {
		return "", false
	}
	return s.store.Value(path, s.code)
}

// Flag reads path as a boolean. Absent or unrecognized values are false.
func (s Scoped) Flag(path string) bool {
	v, ok := s.Value(path)
	return ok && ParseFlag(v)
}

// Int reads path as an integer. Absent values yield def.
func (s Scoped) Int(path string, def int) (int, error) {
	v, ok := s.Value(path)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s: not an integer: %q", path, v)
	}
	return n, nil
}

// ParseFlag interprets the usual truthy spellings: 1, true, yes, on.
func ParseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func (s Scoped) String() string {
	return fmt.Sprintf("scope(%s)", s.code)
}
