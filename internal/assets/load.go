package assets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Assets []Entry `yaml:"assets"`
}

// LoadFile reads a YAML asset list:
//
//	assets:
//	  - sid: 1
//	    symbol: EQUITY1
//	    start_date: 2016-03-01
//	    end_date: 2016-03-31
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assets file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML asset list.
func Parse(data []byte) (*Memory, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse assets yaml: %w", err)
	}
	return NewMemory(f.Assets)
}
