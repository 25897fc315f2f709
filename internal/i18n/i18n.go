package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

const DefaultLanguage = "en"

//go:embed locales/*.toml
var localeFiles embed.FS

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Params fills the {name} placeholders of a message.
type Params map[string]any

// Catalog holds messages per language. Lookups fall back to the default language and then to
// the key itself, so a missing translation never breaks a reply.
type Catalog struct {
	fallback string
	messages map[string]map[string]string
}

// Load reads the catalogs embedded in the binary.
func Load(fallback string) (*Catalog, error) {
	sub, err := fs.Sub(localeFiles, "locales")
	if err != nil {
		return nil, fmt.Errorf("open embedded locales: %w", err)
	}
	return LoadFS(sub, fallback)
}

// LoadFS reads every <lang>.toml file at the root of fsys.
func LoadFS(fsys fs.FS, fallback string) (*Catalog, error) {
	if fallback == "" {
		fallback = DefaultLanguage
	}
	files, err := fs.Glob(fsys, "*.toml")
	if err != nil {
		return nil, fmt.Errorf("list locale files: %w", err)
	}
	c := &Catalog{fallback: fallback, messages: map[string]map[string]string{}}
	for _, name := range files {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", name, err)
		}
		msgs := map[string]string{}
		if _, err := toml.Decode(string(b), &msgs); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", name, err)
		}
		c.messages[strings.TrimSuffix(path.Base(name), ".toml")] = msgs
	}
	if _, ok := c.messages[fallback]; !ok {
		return nil, fmt.Errorf("fallback language %q has no catalog", fallback)
	}
	return c, nil
}

func (c *Catalog) Supports(lang string) bool {
	_, ok := c.messages[lang]
	return ok
}

func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.messages))
	for lang := range c.messages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// T renders key in lang with params substituted. Unknown placeholders are left as written.
func (c *Catalog) T(lang, key string, params Params) string {
	msg, ok := c.messages[lang][key]
	if !ok {
		msg, ok = c.messages[c.fallback][key]
	}
	if !ok {
		return key
	}
	if len(params) == 0 {
		return msg
	}
	return placeholderPattern.ReplaceAllStringFunc(msg, func(m string) string {
		v, ok := params[m[1:len(m)-1]]
		if !ok {
			return m
		}
		return formatValue(v)
	})
}

// FormatNumber renders v with at most two decimals and no trailing zeros.
func FormatNumber(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return FormatNumber(x)
	case float32:
		return FormatNumber(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case decimal.Decimal:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
