package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type SeedCategory struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
	Icon string `yaml:"icon"`
}

type Seed struct {
	Categories []SeedCategory `yaml:"categories"`
}

// 讀取初始資料檔
func LoadSeed(filename string) (Seed, error) {
	var seed Seed

	data, err := os.ReadFile(filename)
	if err != nil {
		return seed, fmt.Errorf("failed to read seed file: %w", err)
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, category := range seed.Categories {
		if category.Name == "" {
			return seed, fmt.Errorf("seed category %d has no name", i+1)
		}
	}

	return seed, nil
}
