package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/kulaginds/inflate"
)

const (
	EnvVarPrefix = "RTGZ"

	DefaultConfigFile = "rtgz.toml"
	DefaultWindowBits = 9
	DefaultLevel      = 6
	DefaultFormat     = FormatRaw
	DefaultMaxSize    = 256 << 20

	MinLevel   = -2
	MaxLevel   = 9
	MinMaxSize = 1
)

// Decompression input formats.
const (
	FormatRaw  = "raw"
	FormatGzip = "gzip"
	FormatZlib = "zlib"
)

var (
	// VERSION gets set during build
	VERSION = "0.0.0"

	// ErrInvalidWindowBits marks a window size outside what the decoder
	// supports, so callers can report it apart from other usage errors.
	ErrInvalidWindowBits = errors.New("invalid window size")

	validFormats = map[string]struct{}{
		FormatRaw:  {},
		FormatGzip: {},
		FormatZlib: {},
	}
)

type Config struct {
	CLI  *CLI
	TOML *TOML
}

type TOML struct {
	Defaults *TOMLDefaults `toml:"defaults"`
}

// TOMLDefaults replaces the built-in flag defaults. Flags and environment
// variables still take precedence.
type TOMLDefaults struct {
	WindowBits int    `toml:"window_bits"`
	Level      *int   `toml:"level"`
	Format     string `toml:"format"`
	MaxSize    int64  `toml:"max_size"`
	Verbose    bool   `toml:"verbose"`
}

type CLI struct {
	Compress   bool   `kong:"help='Compress input to raw deflate',short='c',xor='mode'"`
	Decompress bool   `kong:"help='Decompress input',short='d',xor='mode'"`
	Input      string `kong:"help='Input file (default stdin)',short='i'"`
	Output     string `kong:"help='Output file (default stdout)',short='o'"`
	WindowBits int    `kong:"help='Window size in bits (9-15)',short='w',default='${window_bits}'"`
	Level      int    `kong:"help='Compression level (-2 to 9)',short='l',default='${level}'"`
	Format     string `kong:"help='Format of compressed input',enum='raw,gzip,zlib',default='${format}'"`
	MaxSize    int64  `kong:"help='Largest zlib output to allocate for',default='${max_size}'"`
	Verbose    bool   `kong:"help='Report sizes and ratio when done',short='v',default='${verbose}'"`
	ConfigFile string `kong:"help='Path to an optional TOML defaults file',default='${config_file}'"`

	Debug   bool             `kong:"help='Enable debug output'"`
	Version kong.VersionFlag `help:"Show version and exit" env:"-"`
}

func NewConfig() (*Config, error) {
	// Attempt to load .env
	_ = godotenv.Load(".env")

	return Parse(os.Args[1:])
}

// Parse reads the TOML defaults file and then the command line in args.
func Parse(args []string, options ...kong.Option) (*Config, error) {
	configFile, explicit := findConfigFile(args)

	tomlConfig, err := readTOML(configFile, explicit)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	cli, err := readCLIArgs(args, configFile, tomlConfig.Defaults, options...)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing CLI args")
	}

	return &Config{
		CLI:  cli,
		TOML: tomlConfig,
	}, nil
}

// findConfigFile looks for the config file path before kong runs, since the
// file supplies kong's defaults.
func findConfigFile(args []string) (string, bool) {
	for i, arg := range args {
		if arg == "--" {
			break
		}

		if path, ok := strings.CutPrefix(arg, "--config-file="); ok {
			return path, true
		}

		if arg == "--config-file" && i+1 < len(args) {
			return args[i+1], true
		}
	}

	if path := os.Getenv(EnvVarPrefix + "_CONFIG_FILE"); path != "" {
		return path, true
	}

	return DefaultConfigFile, false
}

func readTOML(file string, required bool) (*TOML, error) {
	tomlConfig := &TOML{}

	// Attempt to load file
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, tomlConfig); err != nil {
			return nil, errors.Wrap(err, "error parsing TOML config")
		}
	case os.IsNotExist(err) && !required:
	default:
		return nil, errors.Wrap(err, "error reading file")
	}

	// Set defaults
	if err := setTOMLDefaults(tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error setting TOML defaults")
	}

	// Validate loaded config
	if err := validateTOML(tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error validating TOML config")
	}

	return tomlConfig, nil
}

func setTOMLDefaults(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	if t.Defaults == nil {
		t.Defaults = &TOMLDefaults{}
	}

	if t.Defaults.WindowBits == 0 {
		t.Defaults.WindowBits = DefaultWindowBits
	}

	if t.Defaults.Level == nil {
		level := DefaultLevel
		t.Defaults.Level = &level
	}

	if t.Defaults.Format == "" {
		t.Defaults.Format = DefaultFormat
	}

	if t.Defaults.MaxSize == 0 {
		t.Defaults.MaxSize = DefaultMaxSize
	}

	return nil
}

func validateTOML(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	d := t.Defaults
	if d == nil {
		return errors.New("defaults cannot be empty")
	}

	if err := validateWindowBits(d.WindowBits); err != nil {
		return errors.Wrap(err, "defaults.window_bits")
	}

	if *d.Level < MinLevel || *d.Level > MaxLevel {
		return errors.Errorf("defaults.level must be between %d and %d", MinLevel, MaxLevel)
	}

	if _, ok := validFormats[d.Format]; !ok {
		return errors.Errorf("defaults.format %s is invalid", d.Format)
	}

	if d.MaxSize < MinMaxSize {
		return errors.Errorf("defaults.max_size must be at least %d", MinMaxSize)
	}

	return nil
}

func readCLIArgs(args []string, configFile string, d *TOMLDefaults, options ...kong.Option) (*CLI, error) {
	cli := &CLI{}

	options = append([]kong.Option{
		kong.Name("rtgz"),
		kong.Description("Compresses and decompresses raw deflate data (gzip/zlib) with a limited window size"),
		kong.UsageOnError(),
		kong.DefaultEnvars(EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"version":     VERSION,
			"config_file": configFile,
			"window_bits": strconv.Itoa(d.WindowBits),
			"level":       strconv.Itoa(*d.Level),
			"format":      d.Format,
			"max_size":    strconv.FormatInt(d.MaxSize, 10),
			"verbose":     strconv.FormatBool(d.Verbose),
		},
	}, options...)

	parser, err := kong.New(cli, options...)
	if err != nil {
		return nil, errors.Wrap(err, "error building parser")
	}

	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}

	if err := validateCLIArgs(cli); err != nil {
		return nil, errors.Wrap(err, "error validating args")
	}

	return cli, nil
}

func validateCLIArgs(cli *CLI) error {
	if cli == nil {
		return errors.New("config cannot be nil")
	}

	if !cli.Compress && !cli.Decompress {
		return errors.New("need either --compress or --decompress")
	}

	if err := validateWindowBits(cli.WindowBits); err != nil {
		return err
	}

	if cli.Level < MinLevel || cli.Level > MaxLevel {
		return errors.Errorf("level must be between %d and %d", MinLevel, MaxLevel)
	}

	if cli.MaxSize < MinMaxSize {
		return errors.Errorf("max-size must be at least %d", MinMaxSize)
	}

	return nil
}

func validateWindowBits(bits int) error {
	if bits < inflate.MinWindowBits || bits > inflate.MaxWindowBits {
		return errors.Wrapf(ErrInvalidWindowBits, "%d is not between %d and %d", bits, inflate.MinWindowBits, inflate.MaxWindowBits)
	}

	return nil
}
