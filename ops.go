package tex2yaml

// Op is one extraction step of a parse config. Kind selects the
// operation; the remaining fields parameterize it and are populated
// from the config's YAML.
type Op struct {
	Name string `yaml:"name"`
	Kind string `yaml:"operation"`

	// set_literal
	Value      any    `yaml:"value,omitempty"`
	OutputPath string `yaml:"output_path,omitempty"`

	// extract_environment
	EnvName       string   `yaml:"env_name,omitempty"`
	NumParams     int      `yaml:"num_params,omitempty"`
	NumOptional   int      `yaml:"num_optional_params,omitempty"`
	ParamPaths    []string `yaml:"param_paths,omitempty"`
	OptionalPaths []string `yaml:"optional_param_paths,omitempty"`
	OutputContext string   `yaml:"output_context,omitempty"`

	// split
	SourcePath    string   `yaml:"source_path,omitempty"`
	Source        string   `yaml:"source,omitempty"`
	Delimiter     string   `yaml:"delimiter,omitempty"`
	KeepDelimiter bool     `yaml:"keep_delimiter,omitempty"`
	OutputPaths   []string `yaml:"output_paths,omitempty"`

	// parse_items
	MarkerPattern string `yaml:"marker_pattern,omitempty"`

	// recursive_parse
	EnvPattern string `yaml:"env_pattern,omitempty"`
	ConfigName string `yaml:"config_name,omitempty"`

	// extract_braced_after_pattern
	Pattern string `yaml:"pattern,omitempty"`

	// extract_regex
	Regex      string            `yaml:"regex,omitempty"`
	GroupPaths map[string]string `yaml:"group_paths,omitempty"`
	Optional   bool              `yaml:"optional,omitempty"`
}

// Operation kinds understood by the engine.
const (
	OpSetLiteral     = "set_literal"
	OpExtractEnv     = "extract_environment"
	OpSplit          = "split"
	OpParseItems     = "parse_items"
	OpRecursiveParse = "recursive_parse"
	OpExtractBraced  = "extract_braced_after_pattern"
	OpExtractRegex   = "extract_regex"
	OpPlaintext      = "to_plaintext"
)

// ParseConfig drives the extraction of one content type.
type ParseConfig struct {
	Type       string `yaml:"type"`
	Operations []Op   `yaml:"operations"`
}

// envNamePlaceholder in an env_name field is substituted with the
// actual environment name during recursive parsing, so one config can
// serve a family of environments.
const envNamePlaceholder = "{{{ENVIRONMENT_NAME}}}"
