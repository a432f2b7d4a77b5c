package model

import (
	"golang.org/x/text/language"
)

// AppSettings is the single user configuration object.
type AppSettings struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURI string `json:"avatarUri,omitempty"`
	Language  string `json:"language"`
	DarkMode  bool   `json:"darkMode"`
}

// SettingsPatch holds a partial settings update. Nil fields are left alone.
type SettingsPatch struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	AvatarURI *string `json:"avatarUri,omitempty"`
	Language  *string `json:"language,omitempty"`
	DarkMode  *bool   `json:"darkMode,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.AvatarURI == nil &&
		p.Language == nil && p.DarkMode == nil
}

// Apply returns s with every non-nil field of p copied over it.
func (s AppSettings) Apply(p SettingsPatch) AppSettings {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.AvatarURI != nil {
		s.AvatarURI = *p.AvatarURI
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	return s
}

// DefaultSettings returns the settings used on first run and after a reset.
func DefaultSettings() AppSettings {
	return AppSettings{
		Name:     "Matěj Frantík",
		Email:    "matej.frantic@email.cz",
		Language: "cs",
		DarkMode: false,
	}
}

// Language is a supported UI locale.
type Language struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Flag  string `json:"flag"`
}

// Languages lists the supported locales; the first entry is the fallback.
var Languages = []Language{
	{Code: "cs", Label: "Čeština", Flag: "🇨🇿"},
	{Code: "en", Label: "English", Flag: "🇬🇧"},
	{Code: "es", Label: "Español", Flag: "🇪🇸"},
}

// NormalizeLanguage maps a BCP 47 tag such as "cs-CZ" or "EN" to a
// supported language code. ok is false for malformed or unsupported tags.
func NormalizeLanguage(tag string) (code string, ok bool) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	base, _ := t.Base()
	for _, l := range Languages {
		if base.String() == l.Code {
			return l.Code, true
		}
	}
	return "", false
}

// CurrentLanguage returns the entry for code, falling back to the first
// supported language.
func CurrentLanguage(code string) Language {
	for _, l := range Languages {
		if l.Code == code {
			return l
		}
	}
	return Languages[0]
}
