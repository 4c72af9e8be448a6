package data

import (
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/gridstate/load-logger/src/loadlogger/types"
)

// Setting value types.
const (
	TypeInt    = "int"
	TypeString = "string"
	TypeBool   = "bool"
)

// SettingDef declares one runtime-configurable key. Anything not in this
// table cannot be overridden from the API; in particular API_KEY and
// SMTP_PASSWORD stay env-only on purpose.
type SettingDef struct {
	Key         string
	Description string
	Type        string
	Default     string
	Editable    bool
}

var ConfigurableSettings = []SettingDef{
	{Key: "poll_interval_minutes", Description: "How often to poll the upstream API (minutes)", Type: TypeInt, Default: "5", Editable: true},
	{Key: "log_level", Description: "Logging verbosity (DEBUG, INFO, WARNING, ERROR)", Type: TypeString, Default: "INFO", Editable: true},
	{Key: "smtp_host", Description: "SMTP server for email notifications", Type: TypeString, Default: "", Editable: true},
	{Key: "smtp_port", Description: "SMTP server port", Type: TypeInt, Default: "587", Editable: true},
	{Key: "smtp_user", Description: "SMTP username/email", Type: TypeString, Default: "", Editable: true},
	{Key: "smtp_from", Description: "From address for notification emails", Type: TypeString, Default: "", Editable: true},
	{Key: "notification_email", Description: "Destination address for failure notifications", Type: TypeString, Default: "", Editable: true},
}

var settingDefs = func() map[string]SettingDef {
	m := make(map[string]SettingDef, len(ConfigurableSettings))
	for _, d := range ConfigurableSettings {
		m[d.Key] = d
	}
	return m
}()

// Settings resolves configuration through override row -> environment ->
// compiled default. Reads are not cached: overrides written through Set are
// visible to the very next Get.
type Settings struct {
	db *gorm.DB
}

func NewSettings(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

// SettingValue is one resolved setting as reported by the settings API.
type SettingValue struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Source      string `json:"source"`
	Type        string `json:"type"`
	Default     string `json:"default"`
	Description string `json:"description"`
}

func (s *Settings) fromOverride(key string) (string, bool) {
	var st types.Setting
	err := s.db.First(&st, "`key` = ?", key).Error
	if err != nil || st.Value == nil {
		return "", false
	}
	return *st.Value, true
}

func fromEnv(key string) (string, bool) {
	return os.LookupEnv(strings.ToUpper(key))
}

func fromDefault(key string) (string, bool) {
	def, ok := settingDefs[key]
	if !ok {
		return "", false
	}
	return def.Default, true
}

// Get resolves a setting. The resolver order is the contract: persisted
// override, then environment, then compiled default.
func (s *Settings) Get(key string) string {
	for _, resolve := range []func(string) (string, bool){s.fromOverride, fromEnv, fromDefault} {
		if v, ok := resolve(key); ok {
			return v
		}
	}
	return ""
}

// GetInt resolves an integer setting, falling back to the compiled default
// when the resolved value does not parse.
func (s *Settings) GetInt(key string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s.Get(key))); err == nil {
		return n
	}
	def, _ := fromDefault(key)
	n, _ := strconv.Atoi(def)
	return n
}

// GetBool resolves a boolean setting.
func (s *Settings) GetBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(s.Get(key))) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func validType(def SettingDef, value string) bool {
	switch def.Type {
	case TypeInt:
		_, err := strconv.Atoi(strings.TrimSpace(value))
		return err == nil
	case TypeBool:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "false", "1", "0", "yes", "no":
			return true
		}
		return false
	}
	return true
}

// Set writes a persisted override. Unknown keys, non-editable keys and
// type-invalid values are rejected with a false return, never an error the
// caller has to unwrap.
func (s *Settings) Set(key, value string) bool {
	def, ok := settingDefs[key]
	if !ok {
		log.Printf("settings: refusing to set unknown key %q", key)
		return false
	}
	if !def.Editable {
		log.Printf("settings: refusing to set non-editable key %q", key)
		return false
	}
	if !validType(def, value) {
		log.Printf("settings: value %q is not a valid %s for %q", value, def.Type, key)
		return false
	}

	var st types.Setting
	err := s.db.First(&st, "`key` = ?", key).Error
	switch {
	case err == nil:
		st.Value = &value
		err = s.db.Save(&st).Error
	case err == gorm.ErrRecordNotFound:
		st = types.Setting{Key: key, Value: &value, Description: def.Description}
		err = s.db.Create(&st).Error
	}
	if err != nil {
		log.Printf("settings: set %s: %v", key, err)
		return false
	}
	log.Printf("settings: %s = %s", key, value)
	return true
}

// Reset deletes the override row so the environment/default tiers apply
// again. Resetting a key that has no override is fine.
func (s *Settings) Reset(key string) bool {
	if _, ok := settingDefs[key]; !ok {
		return false
	}
	if err := s.db.Delete(&types.Setting{}, "`key` = ?", key).Error; err != nil {
		log.Printf("settings: reset %s: %v", key, err)
		return false
	}
	return true
}

// All reports every configurable setting with its resolved value and which
// tier supplied it.
func (s *Settings) All() []SettingValue {
	out := make([]SettingValue, 0, len(ConfigurableSettings))
	for _, def := range ConfigurableSettings {
		sv := SettingValue{
			Key:         def.Key,
			Type:        def.Type,
			Default:     def.Default,
			Description: def.Description,
		}
		if v, ok := s.fromOverride(def.Key); ok {
			sv.Value, sv.Source = v, "override"
		} else if v, ok := fromEnv(def.Key); ok {
			sv.Value, sv.Source = v, "environment"
		} else {
			sv.Value, sv.Source = def.Default, "default"
		}
		out = append(out, sv)
	}
	return out
}
