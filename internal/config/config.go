// Package config resolves what to patch: the document directory, the
// document names, and the patch itself.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/agent-patch/internal/patch"
	"github.com/calvinalkan/agent-patch/internal/preset"
)

// FileName is the default project config file name.
const FileName = ".agentpatch.json"

// BlockSourceBuiltin and BlockSourceInline are the non-file values of
// [Sources.Block].
const (
	BlockSourceBuiltin = "builtin"
	BlockSourceInline  = "inline"
)

// Config holds all configuration options.
type Config struct {
	Dir       string
	Documents []string
	Anchor    string
	Marker    string
	Block     string

	// Resolved paths (computed)
	EffectiveCwd string // Absolute working directory (from -C flag or os.Getwd)
	DirAbs       string // Absolute path to the documents directory

	// Sources tracks where settings came from (for diagnostics)
	Sources Sources
}

// Sources tracks which files the config was loaded from.
type Sources struct {
	File  string // Path to the config file if loaded, empty otherwise
	Block string // BlockSourceBuiltin, BlockSourceInline, or the block file path
}

// Patch returns the configured patch.
func (c Config) Patch() patch.Patch {
	return patch.Patch{Anchor: c.Anchor, Marker: c.Marker, Block: c.Block}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Dir:       preset.Dir,
		Documents: preset.Documents(),
		Anchor:    preset.Anchor,
		Marker:    preset.Marker,
		Block:     preset.Block(),
		Sources:   Sources{Block: BlockSourceBuiltin},
	}
}

// Overrides holds values given on the command line. Nil fields are unset.
type Overrides struct {
	Dir       *string
	Anchor    *string
	Marker    *string
	BlockFile *string
	Documents []string
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string // -c/--config flag value
	Overrides       Overrides
}

// fileConfig is the on-disk shape. Pointers distinguish "unset" from
// "explicitly empty".
type fileConfig struct {
	Dir       *string   `json:"dir"        yaml:"dir"`
	Documents *[]string `json:"documents"  yaml:"documents"`
	Anchor    *string   `json:"anchor"     yaml:"anchor"`
	Marker    *string   `json:"marker"     yaml:"marker"`
	Block     *string   `json:"block"      yaml:"block"`
	BlockFile *string   `json:"block_file" yaml:"block_file"`
}

// Load loads configuration with the following precedence (highest wins):
// 1. Built-in preset
// 2. Project config file at default location (.agentpatch.json, if exists)
// 3. Explicit config file via ConfigPath (replaces 2; must exist)
// 4. CLI overrides.
//
// Config files are JSONC unless the explicit file ends in .yaml or .yml.
// Relative dir and block_file paths resolve against the working directory.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := Default()

	fileCfg, path, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.File = path

	cfg, err = mergeFile(cfg, fileCfg, workDir)
	if err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	cfg, err = mergeOverrides(cfg, input.Overrides, workDir)
	if err != nil {
		return Config{}, err
	}

	err = Validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir
	cfg.DirAbs = resolve(workDir, cfg.Dir)

	return cfg, nil
}

// Validate checks a merged config.
func Validate(cfg Config) error {
	if cfg.Dir == "" {
		return ErrDirEmpty
	}

	if len(cfg.Documents) == 0 {
		return ErrNoDocuments
	}

	seen := make(map[string]bool, len(cfg.Documents))

	for _, name := range cfg.Documents {
		switch {
		case strings.TrimSpace(name) == "":
			return ErrDocumentNameEmpty
		case filepath.IsAbs(name):
			return fmt.Errorf("%w: %s", ErrDocumentAbsolute, name)
		case seen[name]:
			return fmt.Errorf("%w: %s", ErrDocumentDuplicate, name)
		}

		seen[name] = true
	}

	return cfg.Patch().Validate()
}

// loadProjectConfig loads the project config file (.agentpatch.json) or an
// explicit config file. Returns the file config, the path if loaded, and any
// error.
func loadProjectConfig(workDir, configPath string) (fileConfig, string, error) {
	if configPath == "" {
		cfgFile := filepath.Join(workDir, FileName)

		data, err := os.ReadFile(cfgFile)
		if err != nil {
			if os.IsNotExist(err) {
				return fileConfig{}, "", nil
			}

			return fileConfig{}, "", fmt.Errorf("%w: %s: %w", ErrConfigFileRead, cfgFile, err)
		}

		fc, err := parseJSONC(data)
		if err != nil {
			return fileConfig{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, err)
		}

		return fc, cfgFile, nil
	}

	cfgFile := resolve(workDir, configPath)

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}

		return fileConfig{}, "", fmt.Errorf("%w: %s: %w", ErrConfigFileRead, cfgFile, err)
	}

	var fc fileConfig

	switch strings.ToLower(filepath.Ext(cfgFile)) {
	case ".yaml", ".yml":
		fc, err = parseYAML(data)
	default:
		fc, err = parseJSONC(data)
	}

	if err != nil {
		return fileConfig{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, err)
	}

	return fc, cfgFile, nil
}

func parseJSONC(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var fc fileConfig

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	err = dec.Decode(&fc)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return fc, nil
}

func parseYAML(data []byte) (fileConfig, error) {
	var fc fileConfig

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(&fc)
	if err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, fmt.Errorf("invalid YAML: %w", err)
	}

	return fc, nil
}

func mergeFile(base Config, fc fileConfig, workDir string) (Config, error) {
	if fc.Block != nil && fc.BlockFile != nil {
		return Config{}, ErrBlockConflict
	}

	if fc.Dir != nil {
		if *fc.Dir == "" {
			return Config{}, ErrDirEmpty
		}

		base.Dir = *fc.Dir
	}

	if fc.Documents != nil {
		base.Documents = *fc.Documents
	}

	if fc.Anchor != nil {
		base.Anchor = *fc.Anchor
	}

	if fc.Marker != nil {
		base.Marker = *fc.Marker
	}

	if fc.Block != nil {
		base.Block = *fc.Block
		base.Sources.Block = BlockSourceInline
	}

	if fc.BlockFile != nil {
		return withBlockFile(base, workDir, *fc.BlockFile)
	}

	return base, nil
}

func mergeOverrides(base Config, o Overrides, workDir string) (Config, error) {
	if o.Dir != nil {
		base.Dir = *o.Dir
	}

	if len(o.Documents) > 0 {
		base.Documents = o.Documents
	}

	if o.Anchor != nil {
		base.Anchor = *o.Anchor
	}

	if o.Marker != nil {
		base.Marker = *o.Marker
	}

	if o.BlockFile != nil {
		return withBlockFile(base, workDir, *o.BlockFile)
	}

	return base, nil
}

func withBlockFile(base Config, workDir, blockFile string) (Config, error) {
	if blockFile == "" {
		return Config{}, fmt.Errorf("%w: empty path", ErrBlockFileRead)
	}

	path := resolve(workDir, blockFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrBlockFileRead, err)
	}

	base.Block = string(data)
	base.Sources.Block = path

	return base, nil
}

func resolve(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}
