package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves message keys from an embedded locale file. A missing
// key comes back as the key itself, so a typo surfaces in chat instead of
// vanishing.
type Translator struct {
	translations map[string]string
	rulesText    string
}

// NewTranslator loads locales/<lang>.yaml plus the group rules footer from
// locales/rules-<lang>.txt. It accepts any fs.FS so tests can feed a MapFS
// instead of the embedded tree.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := filepath.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}

	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}

	rulesPath := filepath.Join("locales", fmt.Sprintf("rules-%s.txt", langCode))
	rulesBytes, err := fs.ReadFile(fsys, rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", rulesPath, err)
	}

	return &Translator{
		translations: translations,
		rulesText:    string(rulesBytes),
	}, nil
}

func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Rules returns the free-form group rules shown at the end of /help.
func (t *Translator) Rules() string {
	return t.rulesText
}
