// Package loader turns raw scenario documents into a normalized domain.LoadResult.
//
// A document is either a single scenario or a mission pack
// ({"mode": "mission-pack", "games": [...]}) and may be wrapped in {"gameData": ...}.
// JSON and YAML are accepted; legacy field names are mapped to their current names.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/acheron/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format selects the document syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ModeMissionPack is the envelope mode of a mission pack.
const ModeMissionPack = "mission-pack"

// aliases maps legacy keys to current keys, per object kind.
var (
	scenarioAliases = map[string]string{
		"startQuestionId": "startNodeId",
		"questions":       "nodes",
	}
	choiceAliases = map[string]string{
		"option":         "label",
		"nextQuestionId": "targetNodeId",
	}
)

// FormatFromPath infers the format from the file extension. Unknown extensions are JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// LoadFile reads and normalizes the document at path.
func LoadFile(path string) (domain.LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.LoadResult{}, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data, FormatFromPath(path))
}

// Parse decodes data in the given format and normalizes it.
func Parse(data []byte, format Format) (domain.LoadResult, error) {
	var raw map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return domain.LoadResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidScenario, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return domain.LoadResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidScenario, err)
		}
	}
	return Normalize(raw)
}

// Normalize discriminates the envelope and decodes every playable scenario.
// Packs drop games without a start node or node list and fail with
// domain.ErrEmptyPack when none remain; a single scenario missing either is
// rejected with domain.ErrInvalidScenario.
func Normalize(raw map[string]any) (domain.LoadResult, error) {
	if raw == nil {
		return domain.LoadResult{}, fmt.Errorf("%w: empty document", domain.ErrInvalidScenario)
	}
	if inner, ok := raw["gameData"].(map[string]any); ok {
		raw = inner
	}

	if games, ok := raw["games"].([]any); ok {
		return normalizePack(raw, games)
	}
	if mode, _ := raw["mode"].(string); mode == ModeMissionPack {
		return domain.LoadResult{}, domain.ErrEmptyPack
	}

	rename(raw, scenarioAliases)
	if !playable(raw) {
		return domain.LoadResult{}, fmt.Errorf("%w: missing startNodeId or nodes", domain.ErrInvalidScenario)
	}
	s, err := decodeScenario(raw)
	if err != nil {
		return domain.LoadResult{}, err
	}
	return domain.LoadResult{
		Active:          s,
		All:             []*domain.Scenario{s},
		PackTitle:       s.Title,
		PackDescription: s.Description,
	}, nil
}

func normalizePack(raw map[string]any, games []any) (domain.LoadResult, error) {
	var all []*domain.Scenario
	for i, g := range games {
		game, ok := g.(map[string]any)
		if !ok {
			continue
		}
		rename(game, scenarioAliases)
		if !playable(game) {
			continue
		}
		s, err := decodeScenario(game)
		if err != nil {
			return domain.LoadResult{}, fmt.Errorf("game %d: %w", i, err)
		}
		all = append(all, s)
	}
	if len(all) == 0 {
		return domain.LoadResult{}, domain.ErrEmptyPack
	}

	title, _ := raw["title"].(string)
	desc, _ := raw["description"].(string)
	return domain.LoadResult{
		Active:          all[0],
		All:             all,
		IsPack:          true,
		PackTitle:       title,
		PackDescription: desc,
	}, nil
}

func playable(m map[string]any) bool {
	start, _ := m["startNodeId"].(string)
	_, hasNodes := m["nodes"].([]any)
	return start != "" && hasNodes
}

func decodeScenario(m map[string]any) (*domain.Scenario, error) {
	if nodes, ok := m["nodes"].([]any); ok {
		for _, n := range nodes {
			node, ok := n.(map[string]any)
			if !ok {
				continue
			}
			choices, _ := node["choices"].([]any)
			for _, c := range choices {
				if choice, ok := c.(map[string]any); ok {
					rename(choice, choiceAliases)
				}
			}
		}
	}

	var s domain.Scenario
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScenario, err)
	}
	return &s, nil
}

// rename moves legacy keys to their current name unless the current name is already set.
func rename(m map[string]any, aliases map[string]string) {
	for legacy, current := range aliases {
		v, ok := m[legacy]
		if !ok {
			continue
		}
		if _, exists := m[current]; !exists {
			m[current] = v
		}
		delete(m, legacy)
	}
}
