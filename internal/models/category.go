package models

// CategoryConfig represents one category in the taxonomy YAML file:
// a name plus the illustrative keywords that steer the AI classifier.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CategoriesConfig represents the structure of the taxonomy YAML file.
type CategoriesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}
