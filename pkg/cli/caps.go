package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadCaps reads a capabilities file into the alwaysMatch map. YAML keys map
// straight onto W3C capability names, e.g.:
//
//	platformName: Android
//	appium:automationName: UiAutomator2
//	appium:deviceName: emulator-5554
func loadCaps(path string) (map[string]interface{}, error) {
	if path == "" {
		return nil, fmt.Errorf("capabilities file required (--caps)")
	}
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided caps file
	if err != nil {
		return nil, fmt.Errorf("read caps: %w", err)
	}
	var caps map[string]interface{}
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return nil, fmt.Errorf("parse caps: %w", err)
	}
	if len(caps) == 0 {
		return nil, fmt.Errorf("caps file %s is empty", path)
	}
	return caps, nil
}
