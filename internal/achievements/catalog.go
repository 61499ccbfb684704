package achievements

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/studyhall/internal/store"
)

// Definition is a catalog entry before it is stored.
type Definition struct {
	Name        string
	Description string
	Rarity      Rarity
	Condition   Condition
	Icon        string
	Repeatable  bool
}

// Type returns the type implied by the condition.
func (d Definition) Type() Type { return d.Condition.Type() }

func (d Definition) row(order int) (store.AchievementRow, error) {
	cond, err := EncodeCondition(d.Condition)
	if err != nil {
		return store.AchievementRow{}, err
	}
	return store.AchievementRow{
		Name:        d.Name,
		Description: d.Description,
		Type:        string(d.Type()),
		Rarity:      string(d.Rarity),
		Condition:   cond,
		Icon:        d.Icon,
		Repeatable:  d.Repeatable,
		SortOrder:   order,
	}, nil
}

func rows(defs []Definition) ([]store.AchievementRow, error) {
	out := make([]store.AchievementRow, 0, len(defs))
	for i, d := range defs {
		r, err := d.row(i)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func quantity(name string, n int, r Rarity, icon string) Definition {
	desc := fmt.Sprintf("Complete %d questions in total", n)
	if n == 1 {
		desc = "Complete your first question"
	}
	return Definition{Name: name, Description: desc, Rarity: r, Condition: QuantityCondition{n}, Icon: icon}
}

func streak(name string, n int, r Rarity, icon string) Definition {
	return Definition{
		Name: name, Description: fmt.Sprintf("Study %d days in a row", n),
		Rarity: r, Condition: StreakCondition{n}, Icon: icon, Repeatable: true,
	}
}

func speed(name string, n int, r Rarity, icon string) Definition {
	return Definition{
		Name: name, Description: fmt.Sprintf("Submit at least %d questions at once", n),
		Rarity: r, Condition: SpeedCondition{n}, Icon: icon, Repeatable: true,
	}
}

func versatile(name string, n int, r Rarity, icon string) Definition {
	return Definition{
		Name: name, Description: fmt.Sprintf("Reach %d questions in every subject", n),
		Rarity: r, Condition: VersatileCondition{n}, Icon: icon,
	}
}

// Presets returns the built-in catalog.
func Presets() []Definition {
	return []Definition{
		quantity("Daybreak", 1, RarityBronze, "🌱"),
		quantity("True Intent", 10, RarityBronze, "🎯"),
		quantity("First Bloom", 50, RarityBronze, "📚"),
		quantity("Tempered Steel", 100, RaritySilver, "⭐"),
		quantity("Riding the Wind", 200, RaritySilver, "🎈"),
		quantity("Trailblazer", 300, RaritySilver, "⚔️"),
		quantity("Lone Ranger", 500, RarityGold, "🛡️"),
		quantity("Sword to the Sky", 700, RarityGold, "🌟"),
		quantity("Thousand Breaker", 1000, RarityGold, "🔥"),
		quantity("Summit", 1500, RarityGold, "🚀"),
		quantity("Pure Flame", 2000, RarityDiamond, "💫"),
		quantity("Timeless", 2500, RarityDiamond, "🏅"),
		quantity("Above the Crowd", 3000, RarityDiamond, "💪"),
		quantity("Lion's Gaze", 4000, RarityDiamond, "🦁"),
		quantity("Sweeping Army", 5000, RarityDiamond, "👊"),
		quantity("Peerless", 6000, RarityDiamond, "🦸"),
		quantity("Evergreen", 7000, RarityLegend, "⚡"),
		quantity("World Maker", 8000, RarityLegend, "🌠"),
		quantity("Moon Reacher", 9000, RarityLegend, "✨"),
		quantity("All Paths as One", 10000, RarityLegend, "💎"),

		streak("Seven Day Pact", 7, RaritySilver, "🌟"),
		streak("Spark to Prairie Fire", 14, RaritySilver, "🔥"),
		streak("Sun and Moon", 30, RarityGold, "🏆"),
		streak("Spring to Autumn", 60, RarityGold, "⚔️"),
		streak("Hundred Day Foundation", 100, RarityDiamond, "👑"),
		streak("Above the Clouds", 150, RarityDiamond, "🛡️"),
		streak("Butterfly", 200, RarityDiamond, "💎"),
		streak("Phoenix", 300, RarityLegend, "🌠"),
		streak("Legend of the Year", 365, RarityLegend, "⭐"),

		speed("Squall", 20, RarityBronze, "⚡"),
		speed("Wind Walker", 30, RarityBronze, "🌪️"),
		speed("Lightning Run", 50, RaritySilver, "🚀"),
		speed("Thunderclap", 100, RarityGold, "💨"),

		versatile("Well Rounded", 10, RarityBronze, "🧭"),
		versatile("Polymath", 50, RaritySilver, "🎓"),
		versatile("Renaissance", 100, RarityGold, "🌈"),
	}
}

const catalogSchemaURL = "schema://achievement-catalog.json"

const catalogSchemaJSON = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["name", "type", "rarity", "condition"],
    "additionalProperties": false,
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "description": {"type": "string"},
      "type": {"enum": ["QUANTITY", "STREAK", "SPEED", "VERSATILE"]},
      "rarity": {"enum": ["BRONZE", "SILVER", "GOLD", "DIAMOND", "LEGEND"]},
      "icon": {"type": "string"},
      "repeatable": {"type": "boolean"},
      "condition": {
        "type": "object",
        "minProperties": 1,
        "maxProperties": 1,
        "additionalProperties": {"type": "integer", "minimum": 1}
      }
    }
  }
}`

var (
	catalogSchemaOnce sync.Once
	catalogSchema     *jsonschema.Schema
	catalogSchemaErr  error
)

func compiledCatalogSchema() (*jsonschema.Schema, error) {
	catalogSchemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(catalogSchemaJSON), &doc); err != nil {
			catalogSchemaErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(catalogSchemaURL, doc); err != nil {
			catalogSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		catalogSchema, catalogSchemaErr = c.Compile(catalogSchemaURL)
	})
	return catalogSchema, catalogSchemaErr
}

type catalogEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        Type            `json:"type"`
	Rarity      Rarity          `json:"rarity"`
	Icon        string          `json:"icon"`
	Repeatable  bool            `json:"repeatable"`
	Condition   json.RawMessage `json:"condition"`
}

// ParseCatalog validates data against the catalog schema and decodes it
// into definitions.
func ParseCatalog(data []byte) ([]Definition, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := compiledCatalogSchema()
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}

	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	defs := make([]Definition, 0, len(entries))
	for i, e := range entries {
		if seen[e.Name] {
			return nil, fmt.Errorf("entry %d: duplicate name %q", i, e.Name)
		}
		seen[e.Name] = true

		cond, err := DecodeCondition(e.Type, e.Condition)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.Name, err)
		}
		icon := e.Icon
		if icon == "" {
			icon = e.Rarity.Icon()
		}
		defs = append(defs, Definition{
			Name:        e.Name,
			Description: e.Description,
			Rarity:      e.Rarity,
			Condition:   cond,
			Icon:        icon,
			Repeatable:  e.Repeatable,
		})
	}
	return defs, nil
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}
