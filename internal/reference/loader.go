package reference

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pagexpress/internal/pattern"

	"gopkg.in/yaml.v3"
)

const (
	KindFieldTypes  = "fieldTypes"
	KindDefinitions = "definitions"
)

// catalogFile — один YAML-файл справочника: kind определяет, что лежит в items.
type catalogFile struct {
	Kind  string    `yaml:"kind"`
	Items yaml.Node `yaml:"items"`
}

// LoadRegistry читает все *.yaml / *.yml из dir и собирает Registry.
// Файлы без kind пропускаются; дубли id — ошибка.
func LoadRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	// стабильный порядок справочников
	sort.Strings(names)

	var (
		fieldTypes  []pattern.FieldType
		definitions []pattern.Definition
	)
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var cf catalogFile
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		switch cf.Kind {
		case KindFieldTypes:
			var items []pattern.FieldType
			if err := cf.Items.Decode(&items); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			fieldTypes = append(fieldTypes, items...)
		case KindDefinitions:
			var items []pattern.Definition
			if err := cf.Items.Decode(&items); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			definitions = append(definitions, items...)
		case "":
			continue
		default:
			return nil, fmt.Errorf("%s: unknown catalog kind %q", path, cf.Kind)
		}
	}

	if err := checkUniqueIDs(fieldTypes, definitions); err != nil {
		return nil, err
	}
	return NewRegistry(fieldTypes, definitions), nil
}

func checkUniqueIDs(fieldTypes []pattern.FieldType, definitions []pattern.Definition) error {
	seen := make(map[string]struct{}, len(fieldTypes))
	for _, ft := range fieldTypes {
		if strings.TrimSpace(ft.ID) == "" {
			return fmt.Errorf("field type %q has empty id", ft.Type)
		}
		if _, dup := seen[ft.ID]; dup {
			return fmt.Errorf("duplicate field type id %q", ft.ID)
		}
		seen[ft.ID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(definitions))
	for _, d := range definitions {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("definition %q has empty id", d.Name)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("duplicate definition id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}
