package upgrade

import (
	"io"

	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A Config holds the settings of a Builder.
type Config struct {
	logger    Logger
	loglevel  int
	maxRepeat int
	generator Generator
	// owner name -> facet name, as understood by schema.Model.FacetByName
	preferred map[string]string
}

// DefaultMaxRepeat caps the number of occurrences generated for a
// repeatable element that has no original content.
const DefaultMaxRepeat = 3

// DefaultOptions are applied by NewBuilder before any caller options.
var DefaultOptions = []Option{
	MaxRepeat(DefaultMaxRepeat),
}

func (cfg *Config) errorf(format string, v ...interface{}) {
	if cfg.logger != nil {
		cfg.logger.Printf(format, v...)
	}
}
func (cfg *Config) logf(format string, v ...interface{}) {
	if cfg.logger != nil && cfg.loglevel > 0 {
		cfg.logger.Printf(format, v...)
	}
}
func (cfg *Config) debugf(format string, v ...interface{}) {
	if cfg.logger != nil && cfg.loglevel > 3 {
		cfg.logger.Printf(format, v...)
	}
}

// An Option is used to customize a Config.
type Option func(*Config) Option

// The Option method is used to configure an existing configuration.
// The return value of the Option method can be used to revert the
// final option to its previous setting.
func (cfg *Config) Option(opts ...Option) (previous Option) {
	for _, opt := range opts {
		previous = opt(cfg)
	}
	return previous
}

// Types implementing the Logger interface can receive debug
// information from the reconciliation process. The Logger interface
// is implemented by *log.Logger and *logrus.Logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// LogOutput specifies an optional Logger for warnings and debug
// information.
func LogOutput(l Logger) Option {
	return func(cfg *Config) Option {
		prev := cfg.logger
		cfg.logger = l
		return LogOutput(prev)
	}
}

// LogLevel sets the verbosity of messages sent to the log configured
// with the LogOutput option. The level parameter should be a positive
// integer between 1 and 5, with 5 providing the greatest verbosity.
func LogLevel(level int) Option {
	return func(cfg *Config) Option {
		prev := cfg.loglevel
		cfg.loglevel = level
		return LogLevel(prev)
	}
}

// MaxRepeat caps the number of occurrences of a repeatable element
// generated when there is no original content for it. Values below 1
// are treated as 1.
func MaxRepeat(n int) Option {
	return func(cfg *Config) Option {
		prev := cfg.maxRepeat
		if n < 1 {
			n = 1
		}
		cfg.maxRepeat = n
		return MaxRepeat(prev)
	}
}

// A Generator synthesizes the text of a leaf field for which there is
// no original content. The context is the entity whose instance holds
// the field.
type Generator interface {
	Generate(f *schema.Field, context *schema.Entity) string
}

// The GeneratorFunc type is an adapter to allow the use of ordinary
// functions as a Generator.
type GeneratorFunc func(f *schema.Field, context *schema.Entity) string

// Generate calls fn(f, context).
func (fn GeneratorFunc) Generate(f *schema.Field, context *schema.Entity) string {
	return fn(f, context)
}

// ValueGenerator sets the example value generator.
func ValueGenerator(g Generator) Option {
	return func(cfg *Config) Option {
		prev := cfg.generator
		cfg.generator = g
		return ValueGenerator(prev)
	}
}

// PreferFacet selects the facet generated for instances of the owner
// (business, core or choice object) when no original content decides
// between its facets. The facet is named by facet type (Detail) or, for
// contextual facets, by label.
func PreferFacet(owner, facet string) Option {
	return func(cfg *Config) Option {
		prev, ok := cfg.preferred[owner]
		if cfg.preferred == nil {
			cfg.preferred = make(map[string]string)
		}
		if facet == "" {
			delete(cfg.preferred, owner)
		} else {
			cfg.preferred[owner] = facet
		}
		if !ok {
			return PreferFacet(owner, "")
		}
		return PreferFacet(owner, prev)
	}
}

// PreferredFacets replaces all preferred facets set with PreferFacet.
func PreferredFacets(m map[string]string) Option {
	return func(cfg *Config) Option {
		prev := cfg.preferred
		cfg.preferred = make(map[string]string, len(m))
		for k, v := range m {
			cfg.preferred[k] = v
		}
		return PreferredFacets(prev)
	}
}

// settings file format read by LoadConfig
type configDoc struct {
	MaxRepeat       int               `yaml:"maxRepeat"`
	PreferredFacets map[string]string `yaml:"preferredFacets"`
	LogLevel        int               `yaml:"logLevel"`
}

// LoadConfig reads builder settings from a YAML document such as
//
//	maxRepeat: 2
//	preferredFacets:
//	  Profile: Detail
//	logLevel: 4
//
// and returns the corresponding options. Absent keys yield no option.
func LoadConfig(r io.Reader) ([]Option, error) {
	var doc configDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode settings")
	}
	var opts []Option
	if doc.MaxRepeat != 0 {
		if doc.MaxRepeat < 0 {
			return nil, errors.Errorf("maxRepeat must be at least 1, got %d", doc.MaxRepeat)
		}
		opts = append(opts, MaxRepeat(doc.MaxRepeat))
	}
	if len(doc.PreferredFacets) > 0 {
		opts = append(opts, PreferredFacets(doc.PreferredFacets))
	}
	if doc.LogLevel != 0 {
		opts = append(opts, LogLevel(doc.LogLevel))
	}
	return opts, nil
}
