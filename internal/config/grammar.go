package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/tevslin/emailai/internal/core/mailpage"
)

// LoadGrammar reads a header grammar from path. The format follows the file
// extension (yaml, json or toml). An empty path yields the default grammar.
//
// A file only needs the keys it overrides; missing keys keep their default.
func LoadGrammar(path string) (*mailpage.Grammar, error) {
	if path == "" {
		return mailpage.DefaultGrammar(), nil
	}

	v := viper.New()
	def := mailpage.DefaultSpec()
	v.SetDefault("fields", def.Fields)
	v.SetDefault("mandatory", def.Mandatory)
	v.SetDefault("lists", def.Lists)
	v.SetDefault("date_field", def.DateField)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read grammar file %s: %w", path, err)
	}

	var spec mailpage.GrammarSpec
	if err := v.Unmarshal(&spec); err != nil {
		return nil, fmt.Errorf("decode grammar file %s: %w", path, err)
	}

	g, err := mailpage.NewGrammar(spec)
	if err != nil {
		return nil, fmt.Errorf("grammar file %s: %w", path, err)
	}
	return g, nil
}
