package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/temirov/depfetch/internal/jsonorder"
)

// Format identifies the syntax of a manifest file.
type Format string

// Supported manifest formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

const (
	yamlExtensionConstant             = ".yaml"
	ymlExtensionConstant              = ".yml"
	tomlExtensionConstant             = ".toml"
	mapstructureTagNameConstant       = "mapstructure"
	notFoundTemplateConstant          = "%w: %s"
	malformedTemplateConstant         = "%w %s: %w"
	dependencyErrorTemplateConstant   = "dependency %q: %w"
	unsupportedFormatTemplateConstant = "unsupported manifest format %q"
	readErrorTemplateConstant         = "failed to read manifest %s: %w"
)

// DetectFormat chooses a format from the manifest file extension. Unknown extensions are read as JSON.
func DetectFormat(manifestPath string) Format {
	switch strings.ToLower(filepath.Ext(manifestPath)) {
	case yamlExtensionConstant, ymlExtensionConstant:
		return FormatYAML
	case tomlExtensionConstant:
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Load reads and parses the manifest at manifestPath.
func Load(manifestPath string) (Manifest, error) {
	content, readError := os.ReadFile(manifestPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return Manifest{}, fmt.Errorf(notFoundTemplateConstant, ErrManifestNotFound, manifestPath)
		}
		return Manifest{}, fmt.Errorf(readErrorTemplateConstant, manifestPath, readError)
	}
	return Parse(content, DetectFormat(manifestPath), manifestPath)
}

// Parse decodes manifest content in the given format. manifestPath is recorded on the result and used in errors.
func Parse(content []byte, format Format, manifestPath string) (Manifest, error) {
	var entries []rawEntry
	var parseError error

	switch format {
	case FormatJSON:
		entries, parseError = jsonEntries(content)
	case FormatYAML:
		entries, parseError = yamlEntries(content)
	case FormatTOML:
		entries, parseError = tomlEntries(content)
	default:
		parseError = fmt.Errorf(unsupportedFormatTemplateConstant, format)
	}
	if parseError != nil {
		return Manifest{}, fmt.Errorf(malformedTemplateConstant, ErrMalformedManifest, manifestPath, parseError)
	}

	dependencies, buildError := buildDependencies(entries)
	if buildError != nil {
		return Manifest{}, fmt.Errorf(malformedTemplateConstant, ErrMalformedManifest, manifestPath, buildError)
	}

	return Manifest{Path: manifestPath, Dependencies: dependencies}, nil
}

type rawEntry struct {
	name       string
	descriptor any
}

func buildDependencies(entries []rawEntry) ([]Dependency, error) {
	dependencies := make([]Dependency, 0, len(entries))
	seenNames := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if nameError := ValidateName(entry.name); nameError != nil {
			return nil, fmt.Errorf(dependencyErrorTemplateConstant, entry.name, nameError)
		}
		if _, duplicate := seenNames[entry.name]; duplicate {
			return nil, fmt.Errorf(dependencyErrorTemplateConstant, entry.name, ErrDuplicateDependency)
		}
		seenNames[entry.name] = struct{}{}

		descriptorFields, isMapping := entry.descriptor.(map[string]any)
		if !isMapping {
			return nil, fmt.Errorf(dependencyErrorTemplateConstant, entry.name, ErrDependenciesFieldNotMapping)
		}

		dependency := Dependency{Name: entry.name}
		decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          mapstructureTagNameConstant,
			WeaklyTypedInput: true,
			Result:           &dependency,
		})
		if decoderError != nil {
			return nil, decoderError
		}
		if decodeError := decoder.Decode(descriptorFields); decodeError != nil {
			return nil, fmt.Errorf(dependencyErrorTemplateConstant, entry.name, decodeError)
		}
		dependency.Name = entry.name
		dependency.URL = strings.TrimSpace(dependency.URL)
		if len(dependency.URL) == 0 {
			return nil, fmt.Errorf(dependencyErrorTemplateConstant, entry.name, ErrDependencyURLMissing)
		}

		dependencies = append(dependencies, dependency)
	}

	return dependencies, nil
}

func jsonEntries(content []byte) ([]rawEntry, error) {
	document, decodeError := jsonorder.Decode(content)
	if decodeError != nil {
		return nil, decodeError
	}

	dependenciesValue, found := document.Lookup(dependenciesFieldNameConstant)
	if !found {
		return nil, ErrDependenciesFieldMissing
	}

	dependenciesObject, objectError := jsonorder.DecodeRaw(dependenciesValue)
	if objectError != nil {
		return nil, ErrDependenciesFieldNotMapping
	}

	entries := make([]rawEntry, 0, len(dependenciesObject))
	for _, member := range dependenciesObject {
		var descriptor any
		if unmarshalError := json.Unmarshal(member.Value, &descriptor); unmarshalError != nil {
			return nil, fmt.Errorf(dependencyErrorTemplateConstant, member.Key, unmarshalError)
		}
		entries = append(entries, rawEntry{name: member.Key, descriptor: descriptor})
	}
	return entries, nil
}

func yamlEntries(content []byte) ([]rawEntry, error) {
	var document yaml.Node
	if unmarshalError := yaml.Unmarshal(content, &document); unmarshalError != nil {
		return nil, unmarshalError
	}
	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 || document.Content[0].Kind != yaml.MappingNode {
		return nil, ErrDependenciesFieldMissing
	}

	root := document.Content[0]
	var dependenciesNode *yaml.Node
	for pairIndex := 0; pairIndex+1 < len(root.Content); pairIndex += 2 {
		if root.Content[pairIndex].Value == dependenciesFieldNameConstant {
			dependenciesNode = root.Content[pairIndex+1]
			break
		}
	}
	if dependenciesNode == nil {
		return nil, ErrDependenciesFieldMissing
	}
	if dependenciesNode.Kind != yaml.MappingNode {
		return nil, ErrDependenciesFieldNotMapping
	}

	entries := make([]rawEntry, 0, len(dependenciesNode.Content)/2)
	for pairIndex := 0; pairIndex+1 < len(dependenciesNode.Content); pairIndex += 2 {
		name := dependenciesNode.Content[pairIndex].Value
		var descriptor any
		if dependenciesNode.Content[pairIndex+1].Kind == yaml.MappingNode {
			var descriptorFields map[string]any
			if decodeError := dependenciesNode.Content[pairIndex+1].Decode(&descriptorFields); decodeError != nil {
				return nil, fmt.Errorf(dependencyErrorTemplateConstant, name, decodeError)
			}
			descriptor = descriptorFields
		}
		entries = append(entries, rawEntry{name: name, descriptor: descriptor})
	}
	return entries, nil
}

func tomlEntries(content []byte) ([]rawEntry, error) {
	var document map[string]any
	metadata, decodeError := toml.Decode(string(content), &document)
	if decodeError != nil {
		return nil, decodeError
	}

	dependenciesValue, found := document[dependenciesFieldNameConstant]
	if !found {
		return nil, ErrDependenciesFieldMissing
	}
	dependenciesTable, isTable := dependenciesValue.(map[string]any)
	if !isTable {
		return nil, ErrDependenciesFieldNotMapping
	}

	orderedNames := make([]string, 0, len(dependenciesTable))
	placedNames := make(map[string]struct{}, len(dependenciesTable))
	for _, key := range metadata.Keys() {
		if len(key) != 2 || key[0] != dependenciesFieldNameConstant {
			continue
		}
		if _, placed := placedNames[key[1]]; placed {
			continue
		}
		if _, present := dependenciesTable[key[1]]; !present {
			continue
		}
		placedNames[key[1]] = struct{}{}
		orderedNames = append(orderedNames, key[1])
	}

	var remainingNames []string
	for name := range dependenciesTable {
		if _, placed := placedNames[name]; !placed {
			remainingNames = append(remainingNames, name)
		}
	}
	sort.Strings(remainingNames)
	orderedNames = append(orderedNames, remainingNames...)

	entries := make([]rawEntry, 0, len(orderedNames))
	for _, name := range orderedNames {
		entries = append(entries, rawEntry{name: name, descriptor: dependenciesTable[name]})
	}
	return entries, nil
}
