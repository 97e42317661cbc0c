// Package resources holds the static crisis-intervention resource catalog
// and the deterministic per-level resource mapping. No AI calls here: the
// mapping must work even when every other stage has degraded.
package resources

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/luminahealth/lumina-go/internal/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Resource names used in per-level recommendations. These strings are part
// of the persisted record format; do not reword casually.
const (
	Lifeline     = "988 Suicide & Crisis Lifeline"
	TextLine     = "Crisis Text Line"
	Emergency    = "Emergency Services"
	Emergency911 = "911 Emergency Services"
)

// Catalog is the full crisis-resource catalog served by the static endpoint.
type Catalog struct {
	ImmediateHelp         map[string]map[string]string `yaml:"immediate_help" json:"immediate_help"`
	MentalHealthResources map[string]map[string]string `yaml:"mental_health_resources" json:"mental_health_resources"`
	Note                  string                       `yaml:"note" json:"note"`
}

var catalog Catalog

func init() {
	if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
		panic(fmt.Sprintf("resources: bad embedded catalog: %v", err))
	}
}

// Load returns the embedded catalog.
func Load() Catalog {
	return catalog
}

// ForLevel maps a crisis level to its recommended resource set.
// The mapping is deterministic and matches the Python service exactly:
// level 5 leads with emergency services, level 4 leads with the lifeline,
// level 3 omits emergency services, and levels 1-2 recommend nothing.
func ForLevel(level models.CrisisLevel) []string {
	switch {
	case level >= models.LevelImminent:
		return []string{Emergency911, Lifeline, TextLine}
	case level >= models.LevelHigh:
		return []string{Lifeline, TextLine, Emergency}
	case level >= models.LevelModerate:
		return []string{Lifeline, TextLine}
	default:
		return []string{}
	}
}
