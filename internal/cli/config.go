package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
	"github.com/joeshaw/envdecode"
	"golang.org/x/mod/semver"

	"github.com/toyz/defn/internal/decorators"
	"github.com/toyz/defn/internal/errors"
	"github.com/toyz/defn/internal/generator"
	"github.com/toyz/defn/internal/policy"
	"github.com/toyz/defn/internal/synth"
	"github.com/toyz/defn/internal/templates"
	"github.com/toyz/defn/internal/utils"
)

// DefaultConfigFile is looked up in the working directory when --config is not given
const DefaultConfigFile = "defn.yaml"

// SupportedConfigMajor is the only config major version this build reads
const SupportedConfigMajor = "v1"

// Config holds the project configuration read from defn.yaml
type Config struct {
	// Version of the configuration format, e.g. "v1" or "1.2"
	Version string `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Configuration format version (major must be 1)"`

	// MixedTemplates decides what happens when templated and non-templated
	// overloads could compete for the same call
	MixedTemplates string `yaml:"mixed_templates,omitempty" json:"mixed_templates,omitempty" jsonschema:"enum=allow,enum=warn,enum=error,default=warn"`

	// HeaderSuffix replaces the .defn extension of generated headers
	HeaderSuffix string `yaml:"header_suffix,omitempty" json:"header_suffix,omitempty" jsonschema:"default=.defn.hpp"`

	// OutputDir collects every generated header in one directory
	OutputDir string `yaml:"output_dir,omitempty" json:"output_dir,omitempty" jsonschema:"description=Directory receiving all generated headers"`

	// Includes are added to every generated header after <utility>
	Includes []string `yaml:"includes,omitempty" json:"includes,omitempty" jsonschema:"description=Headers included by every generated header"`

	// SupportHeader is the include path of the built-in decorator header
	SupportHeader string `yaml:"support_header,omitempty" json:"support_header,omitempty" jsonschema:"default=defn/support.hpp"`

	// Decorators are registered next to the built-ins for every file
	Decorators []DecoratorConfig `yaml:"decorators,omitempty" json:"decorators,omitempty"`

	// Policies must hold for every generated entity
	Policies []policy.Rule `yaml:"policies,omitempty" json:"policies,omitempty"`
}

// DecoratorConfig declares a project-wide decorator
type DecoratorConfig struct {
	Name       string `yaml:"name" json:"name" jsonschema:"required,description=Name the decorator is applied with"`
	Expression string `yaml:"expression" json:"expression" jsonschema:"required,description=C++ expression called with the decorated callable"`
	Kind       string `yaml:"kind,omitempty" json:"kind,omitempty" jsonschema:"enum=preserve,enum=nothrow,enum=variadic,enum=receivers,default=preserve"`
}

// envConfig holds the DEFN_* environment overrides
type envConfig struct {
	MixedTemplates string   `env:"DEFN_MIXED_TEMPLATES"`
	HeaderSuffix   string   `env:"DEFN_HEADER_SUFFIX"`
	OutputDir      string   `env:"DEFN_OUTPUT_DIR"`
	SupportHeader  string   `env:"DEFN_SUPPORT_HEADER"`
	Includes       []string `env:"DEFN_INCLUDES"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() Config {
	return Config{
		Version:        SupportedConfigMajor,
		MixedTemplates: string(synth.MixedTemplatesWarn),
		HeaderSuffix:   generator.DefaultHeaderSuffix,
		SupportHeader:  "defn/support.hpp",
	}
}

// LoadConfig reads the configuration at path and applies environment
// overrides. A missing file is an error only when required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.unmarshal(path, data); err != nil {
			return Config{}, err
		}
	case os.IsNotExist(err) && !required:
	default:
		return Config{}, errors.WrapFileSystemError("read", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) unmarshal(path string, data []byte) error {
	if err := yaml.UnmarshalWithOptions(data, c, yaml.DisallowUnknownField()); err != nil {
		return errors.WrapConfigurationError(path, "parse", err).
			WithContext("detail", yaml.FormatError(err, false, true)).
			WithSuggestion("Run 'defn schema' for the list of supported keys")
	}
	return nil
}

// applyEnv overrides fields with DEFN_* environment variables
func (c *Config) applyEnv() error {
	var env envConfig
	if err := envdecode.Decode(&env); err != nil {
		if stderrors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return errors.WrapConfigurationError("environment", "decode", err)
	}

	if env.MixedTemplates != "" {
		c.MixedTemplates = env.MixedTemplates
	}
	if env.HeaderSuffix != "" {
		c.HeaderSuffix = env.HeaderSuffix
	}
	if env.OutputDir != "" {
		c.OutputDir = env.OutputDir
	}
	if env.SupportHeader != "" {
		c.SupportHeader = env.SupportHeader
	}
	if len(env.Includes) > 0 {
		c.Includes = env.Includes
	}
	return nil
}

// Validate checks every field and reports all problems at once
func (c *Config) Validate() error {
	errs := errors.NewMultipleErrors()
	invalid := func(field string, err error) {
		errs.Add(errors.Wrap(errors.ConfigurationErrorCode, err.Error(), err).WithContext("field", field))
	}

	errs.AddError(checkVersion(c.Version))

	modes := []string{string(synth.MixedTemplatesAllow), string(synth.MixedTemplatesWarn), string(synth.MixedTemplatesError)}
	if c.MixedTemplates != "" {
		if err := utils.IsOneOf("mixed_templates", modes...)(c.MixedTemplates); err != nil {
			invalid("mixed_templates", err)
		}
	}

	if c.HeaderSuffix != "" {
		if err := utils.HasPrefix("header_suffix", ".")(c.HeaderSuffix); err != nil {
			invalid("header_suffix", err)
		}
	}

	if err := utils.ValidateEach("includes", utils.NotEmpty("include"))(c.Includes); err != nil {
		invalid("includes", err)
	}

	names := utils.NewValidatorChain(utils.NotEmpty("name"), utils.IsCppIdentifier("name"))
	seen := make(map[string]bool)
	for i, d := range c.Decorators {
		field := fmt.Sprintf("decorators[%d]", i)
		if err := names.Validate(d.Name); err != nil {
			invalid(field+".name", err)
		}
		if err := utils.NotEmpty("expression")(d.Expression); err != nil {
			invalid(field+".expression", err)
		}
		if d.Kind != "" {
			if _, err := decorators.ParseKind(d.Kind); err != nil {
				errs.AddError(err)
			}
		}
		if seen[d.Name] {
			invalid(field+".name", fmt.Errorf("decorator '%s' is declared twice", d.Name))
		}
		seen[d.Name] = true
	}

	for i, r := range c.Policies {
		if err := utils.NotEmpty("name")(r.Name); err != nil {
			invalid(fmt.Sprintf("policies[%d].name", i), err)
		}
	}

	return errs.ErrOrNil()
}

// checkVersion accepts "1", "1.2", "v1.2.3" and rejects other majors
func checkVersion(version string) error {
	if version == "" {
		return nil
	}

	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return errors.Newf(errors.ConfigurationErrorCode, "invalid config version '%s'", version).
			WithContext("field", "version").
			WithSuggestion("Use a semantic version such as 'v1'")
	}
	if semver.Major(v) != SupportedConfigMajor {
		return errors.Newf(errors.ConfigurationErrorCode, "config version %s is not supported", semver.Canonical(v)).
			WithContext("field", "version").
			WithSuggestion(fmt.Sprintf("This defn reads %s configuration files", SupportedConfigMajor))
	}
	return nil
}

// Registry returns the built-in decorators extended with the configured ones
func (c *Config) Registry() (decorators.Registry, error) {
	registry := decorators.NewBuiltinRegistry()
	errs := errors.NewMultipleErrors()

	for _, dc := range c.Decorators {
		kind := decorators.KindPreserve
		if dc.Kind != "" {
			k, err := decorators.ParseKind(dc.Kind)
			if err != nil {
				errs.AddError(err)
				continue
			}
			kind = k
		}

		d, err := decorators.New(dc.Name, dc.Expression, kind)
		if err != nil {
			errs.AddError(err)
			continue
		}
		if err := registry.Register(d); err != nil {
			errs.AddError(err)
		}
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return registry, nil
}

// GeneratorOptions converts the configuration into generator options
func (c *Config) GeneratorOptions() (generator.Options, error) {
	options := generator.Options{
		Synth:        synth.Options{MixedTemplates: synth.MixedTemplatePolicy(c.MixedTemplates)},
		Render:       templates.Options{Includes: c.Includes, SupportInclude: c.SupportHeader},
		HeaderSuffix: c.HeaderSuffix,
		OutputDir:    c.OutputDir,
	}

	if len(c.Policies) > 0 {
		set, err := policy.Compile(c.Policies)
		if err != nil {
			return generator.Options{}, err
		}
		options.Policies = set
	}
	return options, nil
}

// Schema returns the JSON schema of the configuration file
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(&Config{})
	s.Title = "defn configuration"
	s.Description = "Configuration read from " + DefaultConfigFile

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.WrapConfigurationError("schema", "marshal", err)
	}
	return data, nil
}
