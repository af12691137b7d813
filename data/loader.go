package data

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var envReferencePattern = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

// LoadFile reads a JSON or YAML file and parses it into target.
//
// References of the form ${NAME} are replaced with the value of the environment variable NAME
// before parsing, so that credentials can be kept out of checked-in run files. The lookup
// function is normally os.LookupEnv; unknown names expand to an empty string. A bare $NAME is
// left as it is.
func LoadFile(path string, lookupEnv func(string) (string, bool), target interface{}) error {
	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}
	if lookupEnv != nil {
		raw = envReferencePattern.ReplaceAllFunc(raw, func(ref []byte) []byte {
			value, _ := lookupEnv(string(ref[2 : len(ref)-1]))
			return []byte(value)
		})
	}
	if err := ParseJSONOrYAML(raw, target); err != nil {
		return fmt.Errorf("error parsing %q: %w", filepath.Base(path), err)
	}
	return nil
}
