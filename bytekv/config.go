package bytekv

import (
	"fmt"
	"strconv"
	"strings"
)

// Config is the parsed form of the storage configuration string of spec
// §6.1: semicolon-separated key=value pairs. Recognized keys are promoted
// to named fields; everything else is preserved verbatim for downstream
// drivers, matching "unknown keys are preserved for downstream drivers".
type Config struct {
	Path      string // storage root, opaque to the core
	Metadata  string // comma-separated "<name> <type>" column definitions
	Acl       bool   // enables the ACL family
	Cache     string // KV driver hint, passthrough
	StatsProc string // name of the statistics processor to use, optional

	Extra map[string]string
}

// ParseConfig parses a storage configuration string as described in spec §6.1.
func ParseConfig(s string) (Config, error) {
	cfg := Config{Extra: make(map[string]string)}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		key := strings.TrimSpace(kv[0])
		val := ""
		if len(kv) == 2 {
			val = strings.TrimSpace(kv[1])
		}
		switch key {
		case "path":
			cfg.Path = val
		case "metadata":
			cfg.Metadata = val
		case "acl":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return Config{}, Wrap(ErrProtocol, "invalid acl value %q: %v", val, err)
			}
			cfg.Acl = b
		case "cache":
			cfg.Cache = val
		case "statsproc":
			cfg.StatsProc = val
		default:
			cfg.Extra[key] = val
		}
	}
	return cfg, nil
}

// String renders the Config back to its wire form (used in logs/errors).
func (c Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "path=%s", c.Path)
	if c.Metadata != "" {
		fmt.Fprintf(&b, ";metadata=%s", c.Metadata)
	}
	if c.Acl {
		b.WriteString(";acl=true")
	}
	if c.Cache != "" {
		fmt.Fprintf(&b, ";cache=%s", c.Cache)
	}
	if c.StatsProc != "" {
		fmt.Fprintf(&b, ";statsproc=%s", c.StatsProc)
	}
	for k, v := range c.Extra {
		fmt.Fprintf(&b, ";%s=%s", k, v)
	}
	return b.String()
}

// MetadataColumn is one entry of the "metadata" config field: a name and a
// numeric storage type drawn from {i8,u8,i16,u16,i32,u32,f16,f32}.
type MetadataColumn struct {
	Name string
	Type string
}

// ParseMetadataColumns splits the "metadata" config value ("doclen u16,score f32")
// into its ordered column list, pinned for the lifetime of the storage (spec §3.5).
func ParseMetadataColumns(s string) ([]MetadataColumn, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var cols []MetadataColumn
	for _, entry := range strings.Split(s, ",") {
		fields := strings.Fields(strings.TrimSpace(entry))
		if len(fields) != 2 {
			return nil, Wrap(ErrProtocol, "invalid metadata column definition %q", entry)
		}
		if !validColumnType(fields[1]) {
			return nil, Wrap(ErrProtocol, "unknown metadata column type %q", fields[1])
		}
		cols = append(cols, MetadataColumn{Name: fields[0], Type: fields[1]})
	}
	return cols, nil
}

func validColumnType(t string) bool {
	switch t {
	case "i8", "u8", "i16", "u16", "i32", "u32", "f16", "f32":
		return true
	default:
		return false
	}
}
