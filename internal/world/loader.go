package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlRegionFile is the top-level YAML structure for region files.
type yamlRegionFile struct {
	Region yamlRegion `yaml:"region"`
}

// yamlRegion is the YAML representation of a region.
type yamlRegion struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	StartScene  string        `yaml:"start_scene"`
	TrophyScene string        `yaml:"trophy_scene"`
	Scenes      []yamlScene   `yaml:"scenes"`
	Items       []yamlItem    `yaml:"items"`
	Monsters    []yamlMonster `yaml:"monsters"`
}

// yamlScene is the YAML representation of a scene.
type yamlScene struct {
	ID               string     `yaml:"id"`
	Title            string     `yaml:"title"`
	Description      string     `yaml:"description"`
	Atmosphere       []string   `yaml:"atmosphere"`
	Lighting         string     `yaml:"lighting"`
	Exits            []yamlExit `yaml:"exits"`
	Items            []string   `yaml:"items"`
	Monsters         []string   `yaml:"monsters"`
	FirstVisitPoints int        `yaml:"first_visit_points"`
}

// yamlExit is the YAML representation of an exit.
type yamlExit struct {
	Direction      string `yaml:"direction"`
	Target         string `yaml:"target"`
	Blocked        bool   `yaml:"blocked"`
	BlockedMessage string `yaml:"blocked_message"`
}

// yamlItem is the YAML representation of an item.
type yamlItem struct {
	ID            string          `yaml:"id"`
	Name          string          `yaml:"name"`
	Aliases       []string        `yaml:"aliases"`
	Description   string          `yaml:"description"`
	ExamineText   string          `yaml:"examine_text"`
	Portable      bool            `yaml:"portable"`
	Visible       *bool           `yaml:"visible"`
	Weight        int             `yaml:"weight"`
	Size          int             `yaml:"size"`
	Type          string          `yaml:"type"`
	InitialState  map[string]bool `yaml:"initial_state"`
	TakePoints    int             `yaml:"take_points"`
	DepositPoints int             `yaml:"deposit_points"`
}

// yamlMonster is the YAML representation of a monster.
type yamlMonster struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Scene       string `yaml:"scene"`
	State       string `yaml:"state"`
}

// LoadRegionFromFile reads and validates a single region YAML file.
//
// Precondition: path must point to a valid YAML region file.
// Postcondition: Returns a validated Region or a non-nil error.
func LoadRegionFromFile(path string) (*Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading region file %s: %w", path, err)
	}
	region, err := LoadRegionFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading region from %s: %w", filepath.Base(path), err)
	}
	return region, nil
}

// LoadRegionFromBytes parses and validates a region from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the region schema.
// Postcondition: Returns a validated Region or a non-nil error.
func LoadRegionFromBytes(data []byte) (*Region, error) {
	var file yamlRegionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing region YAML: %w", err)
	}

	region := convertYAMLRegion(file.Region)
	if err := region.Validate(); err != nil {
		return nil, fmt.Errorf("validating region: %w", err)
	}

	return region, nil
}

// LoadRegionsFromDir loads all YAML files in a directory as regions.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated regions or the first error encountered.
func LoadRegionsFromDir(dir string) ([]*Region, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading world directory %s: %w", dir, err)
	}

	var regions []*Region
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		region, err := LoadRegionFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}

	if len(regions) == 0 {
		return nil, fmt.Errorf("no region files found in %s", dir)
	}

	return regions, nil
}

// convertYAMLRegion converts the parsed YAML structures into domain types.
func convertYAMLRegion(yr yamlRegion) *Region {
	region := &Region{
		ID:          yr.ID,
		Name:        yr.Name,
		StartScene:  yr.StartScene,
		TrophyScene: yr.TrophyScene,
		Scenes:      make(map[string]*Scene, len(yr.Scenes)),
		Items:       make(map[string]*Item, len(yr.Items)),
		Monsters:    make(map[string]*Monster, len(yr.Monsters)),
	}

	for _, yi := range yr.Items {
		item := &Item{
			ID:            yi.ID,
			Name:          yi.Name,
			Aliases:       yi.Aliases,
			Description:   strings.TrimSpace(yi.Description),
			ExamineText:   strings.TrimSpace(yi.ExamineText),
			Portable:      yi.Portable,
			Visible:       true,
			Weight:        yi.Weight,
			Size:          yi.Size,
			Type:          ItemType(yi.Type),
			InitialState:  yi.InitialState,
			TakePoints:    yi.TakePoints,
			DepositPoints: yi.DepositPoints,
		}
		if yi.Visible != nil {
			item.Visible = *yi.Visible
		}
		if item.ExamineText == "" {
			item.ExamineText = fmt.Sprintf("There is nothing special about the %s.", item.Name)
		}
		if item.InitialState == nil {
			item.InitialState = make(map[string]bool)
		}
		region.Items[item.ID] = item
		region.itemOrder = append(region.itemOrder, item.ID)
	}

	for _, ym := range yr.Monsters {
		region.Monsters[ym.ID] = &Monster{
			ID:          ym.ID,
			Name:        ym.Name,
			Description: strings.TrimSpace(ym.Description),
			Scene:       ym.Scene,
			State:       MonsterState(ym.State),
		}
	}

	for _, ys := range yr.Scenes {
		lighting := Lighting(ys.Lighting)
		if lighting == "" {
			lighting = LightingDaylight
		}
		scene := &Scene{
			ID:               ys.ID,
			RegionID:         yr.ID,
			Title:            ys.Title,
			Description:      strings.TrimSpace(ys.Description),
			Atmosphere:       ys.Atmosphere,
			Lighting:         lighting,
			Items:            ys.Items,
			Monsters:         ys.Monsters,
			FirstVisitPoints: ys.FirstVisitPoints,
		}
		for _, ye := range ys.Exits {
			scene.Exits = append(scene.Exits, Exit{
				Direction:      Direction(ye.Direction),
				TargetScene:    ye.Target,
				Blocked:        ye.Blocked,
				BlockedMessage: ye.BlockedMessage,
			})
		}
		// Record each contained item's start scene.
		for _, itemID := range ys.Items {
			if item, ok := region.Items[itemID]; ok {
				item.StartScene = scene.ID
			}
		}
		region.Scenes[scene.ID] = scene
		region.sceneOrder = append(region.sceneOrder, scene.ID)
	}

	return region
}
