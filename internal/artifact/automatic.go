// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"fmt"
	"regexp"

	"gopkg.in/ini.v1"
)

// AutomaticSetting is a key of /etc/dnf/automatic.conf and the value to force.
type AutomaticSetting struct {
	Key   string
	Value string
}

// AutomaticConf holds the dnf-automatic settings kioskprov manages.
type AutomaticConf struct {
	ApplyUpdates bool
	UpgradeType  string
}

const automaticSection = "commands"

// AutomaticSettings returns the settings forced into dnf-automatic's config.
func AutomaticSettings(upgradeType string) []AutomaticSetting {
	return []AutomaticSetting{
		{Key: "apply_updates", Value: "yes"},
		{Key: "upgrade_type", Value: upgradeType},
	}
}

// RewriteAutomaticConf replaces every line assigning one of the settings'
// keys with "key = value". Keys that have no line are returned in missing
// and are not added; dnf-automatic ships every key in its default file.
func RewriteAutomaticConf(content string, settings []AutomaticSetting) (out string, missing []string) {
	out = content
	for _, s := range settings {
		re := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(s.Key) + `[ \t]*=.*$`)
		if !re.MatchString(out) {
			missing = append(missing, s.Key)
			continue
		}
		out = re.ReplaceAllLiteralString(out, s.Key+" = "+s.Value)
	}
	return out, missing
}

// ReadAutomaticConf parses the [commands] section of a dnf-automatic config.
func ReadAutomaticConf(data []byte) (AutomaticConf, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return AutomaticConf{}, fmt.Errorf("parse dnf-automatic config: %w", err)
	}

	sec := f.Section(automaticSection)
	return AutomaticConf{
		ApplyUpdates: sec.Key("apply_updates").MustBool(false),
		UpgradeType:  sec.Key("upgrade_type").MustString("default"),
	}, nil
}
