package pkgsmith

import (
	"fmt"
	"log"
	"regexp"
	"sort"

	"github.com/cloudfoundry/jibber_jabber"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

const DefaultLanguage string = "en"

// Translator maps message keys to localized user-facing strings. The
// catalogs live as yaml files in the resource payload, one per language.
type Translator struct {
	language    string
	langStrings map[string]StringMap
	variables   StringMap
}

// TranslatorNew returns a Translator without any variable lookup.
func TranslatorNew() *Translator {
	return TranslatorVarNew(StringMap{})
}

// TranslatorVarNew returns a Translator with a variable lookup. It scans for
// any yaml files inside the languages folder of the resource payload and
// starts out in the system locale's language, falling back to the default.
func TranslatorVarNew(variables StringMap) *Translator {
	languageFiles := MustGetResourceFiltered("languages", regexp.MustCompile(`\.ya?ml$`))
	languages := make(map[string]StringMap)
	for filename, content := range languageFiles {
		languageTag := regexp.MustCompile(`.*/([^/]+)\.ya?ml`).ReplaceAllString(filename, "$1")
		langStrings := make(StringMap)
		err := yaml.Unmarshal([]byte(content), langStrings)
		if err != nil {
			log.Printf("Unable to parse language file %s\n", filename)
			continue
		}
		languages[languageTag] = langStrings
	}
	return translatorFromCatalogs(languages, variables)
}

// translatorFromCatalogs builds a Translator from already-parsed catalogs.
func translatorFromCatalogs(languages map[string]StringMap, variables StringMap) *Translator {
	t := Translator{
		langStrings: languages,
		variables:   variables,
	}
	err := t.SetLanguage(t.getLocale())
	if err != nil {
		err = t.SetLanguage(DefaultLanguage)
		if err != nil {
			return nil
		}
	}
	return &t
}

// Get returns the localized string for a given message key, with template
// variables expanded against the translator's variable map.
func (t *Translator) Get(key string) string {
	str := t.getRaw(key, t.language)
	variables := make(StringMap)
	for name, value := range t.variables {
		expanded, err := ExpandVariables(value, t.langStrings[t.language])
		if err != nil {
			expanded = value
		}
		variables[name] = expanded
	}
	expanded, err := ExpandVariables(str, variables)
	if err != nil {
		return str
	}
	return expanded
}

// SetVariable adds or replaces one variable in the translator's lookup.
func (t *Translator) SetVariable(key, value string) {
	t.variables[key] = value
}

// GetLanguage returns the identifier (e.g. "en") for the current language.
func (t *Translator) GetLanguage() string { return t.language }

// GetLanguages returns the identifiers of all available languages, default
// language first, the rest sorted alphabetically.
func (t *Translator) GetLanguages() (languages []string) {
	hasDefault := false
	for lang := range t.langStrings {
		if lang != DefaultLanguage {
			languages = append(languages, lang)
		} else {
			hasDefault = true
		}
	}
	sort.Strings(languages)
	if hasDefault {
		languages = append([]string{DefaultLanguage}, languages...)
	}
	return languages
}

// SetLanguage given a language code string (e.g.: "en"), sets the
// translator's language.
func (t *Translator) SetLanguage(language string) error {
	if _, ok := t.langStrings[language]; !ok {
		return fmt.Errorf("no language '%s'", language)
	}
	t.language = language
	return nil
}

// getLocale returns the current system locale matched against the available
// catalog languages, as a language code string (e.g.: "en").
func (t *Translator) getLocale() string {
	languageTags := []language.Tag{language.Raw.Make(DefaultLanguage)}
	for languageTag := range t.langStrings {
		if languageTag != DefaultLanguage && languageTag != "" {
			languageTags = append(languageTags, language.Raw.Make(languageTag))
		}
	}
	locale, _ := jibber_jabber.DetectIETF()
	match, _, _ := language.NewMatcher(languageTags).Match(language.Make(locale))
	return match.String()
}

// getRaw returns a localized string for a given message key in a given
// language, without template expansion. If the language doesn't have
// strings available, then the default language is tried. If that fails as
// well, an empty string is returned.
func (t *Translator) getRaw(key, language string) string {
	if langStrings, ok := t.langStrings[language]; ok {
		if value, ok := langStrings[key]; ok {
			return value
		}
	}
	if langStrings, ok := t.langStrings[DefaultLanguage]; ok {
		if value, ok := langStrings[key]; ok {
			return value
		}
	}
	return ""
}
