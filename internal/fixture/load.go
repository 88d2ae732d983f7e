package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadData reads a YAML fixture file. Sections left out of the file keep the
// default seed values, so a file can override just the menu without restating
// users and franchises.
func LoadData(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read fixture file: %w", err)
	}
	var file Data
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Data{}, fmt.Errorf("parse fixture file %s: %w", path, err)
	}
	merged := DefaultData()
	if len(file.Users) > 0 {
		merged.Users = file.Users
	}
	if len(file.Menu) > 0 {
		merged.Menu = file.Menu
	}
	if len(file.Franchises) > 0 {
		merged.Franchises = file.Franchises
	}
	return merged, nil
}

// LoadFile replaces the backend's data with the contents of a fixture file.
// On error the current data is left untouched.
func (b *Backend) LoadFile(path string) error {
	d, err := LoadData(path)
	if err != nil {
		return err
	}
	b.SetData(d)
	return nil
}
