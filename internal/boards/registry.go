// Package boards maps logical board identifiers to compilation targets and
// platform families. Registries are immutable after load; the resolver is
// safe for concurrent use.
package boards

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed boards.yaml
var defaultRegistryYAML []byte

var (
	// ErrUnsupportedBoard is returned when a board identifier is absent
	// from every registry.
	ErrUnsupportedBoard = errors.New("unsupported board")

	// ErrAmbiguousBoard is returned at load time when a board identifier
	// appears in more than one platform registry.
	ErrAmbiguousBoard = errors.New("board registered in multiple platforms")
)

// Platform describes one embedded platform family.
type Platform struct {
	// Name is the platform token passed to the external tool
	// (e.g. "zephyr", "arduino").
	Name string

	// RequiresBoardOption is set for families whose project generator
	// needs an explicit board name beyond the target already embedded in
	// the package archive. Adding a new family with this behavior is a
	// data change, not a logic change.
	RequiresBoardOption bool
}

// BoardOption returns the project option selecting a board for this
// platform, e.g. "zephyr_board=qemu_x86".
func (p Platform) BoardOption(board string) string {
	return fmt.Sprintf("%s_board=%s", p.Name, board)
}

// Registry holds the boards of a single platform family.
type Registry struct {
	Platform Platform
	// models maps board identifier to its target-model token.
	models map[string]string
}

// registryFile is the on-disk registry schema.
type registryFile struct {
	Platforms []platformEntry `yaml:"platforms" validate:"required,min=1,dive"`
}

type platformEntry struct {
	Name                string            `yaml:"name" validate:"required"`
	RequiresBoardOption bool              `yaml:"requires_board_option"`
	Boards              map[string]string `yaml:"boards" validate:"required,min=1,dive,keys,required,endkeys,required"`
}

// DefaultRegistries returns the registries embedded in the binary.
func DefaultRegistries() ([]Registry, error) {
	return parseRegistries(defaultRegistryYAML)
}

// LoadRegistries reads a registry file, replacing the embedded defaults.
func LoadRegistries(path string) ([]Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading board registry: %w", err)
	}
	regs, err := parseRegistries(data)
	if err != nil {
		return nil, fmt.Errorf("board registry %s: %w", path, err)
	}
	return regs, nil
}

func parseRegistries(data []byte) ([]Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding board registry: %w", err)
	}

	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid board registry: %w", err)
	}

	seen := make(map[string]string) // board -> platform that registered it
	seenPlatforms := make(map[string]bool)
	regs := make([]Registry, 0, len(file.Platforms))
	for _, entry := range file.Platforms {
		if seenPlatforms[entry.Name] {
			return nil, fmt.Errorf("platform %q listed twice", entry.Name)
		}
		seenPlatforms[entry.Name] = true

		models := make(map[string]string, len(entry.Boards))
		for board, model := range entry.Boards {
			if owner, dup := seen[board]; dup {
				return nil, fmt.Errorf("%w: %q in both %q and %q", ErrAmbiguousBoard, board, owner, entry.Name)
			}
			seen[board] = entry.Name
			models[board] = model
		}

		regs = append(regs, Registry{
			Platform: Platform{
				Name:                entry.Name,
				RequiresBoardOption: entry.RequiresBoardOption,
			},
			models: models,
		})
	}
	return regs, nil
}

// Board is one registry entry, used for listings.
type Board struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Model    string `json:"model"`
}

// List returns every registered board, grouped by registry order and
// sorted by name within each platform.
func List(regs []Registry) []Board {
	var out []Board
	for _, r := range regs {
		names := make([]string, 0, len(r.models))
		for b := range r.models {
			names = append(names, b)
		}
		sort.Strings(names)
		for _, b := range names {
			out = append(out, Board{Name: b, Platform: r.Platform.Name, Model: r.models[b]})
		}
	}
	return out
}
