package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/vocabdrill/internal/catalog"
	"github.com/verte-zerg/vocabdrill/internal/config"
	"github.com/verte-zerg/vocabdrill/internal/logging"
	"github.com/verte-zerg/vocabdrill/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template must be valid toml: %v", err)
	}
	if cfg.Practice.Words != nil || cfg.Log.Level != nil {
		t.Fatalf("template values must be commented out: %+v", cfg)
	}

	uncommented := strings.ReplaceAll(defaultConfigTemplate(), "# words", "words")
	cfg = config.FileConfig{}
	if _, err := toml.Decode(uncommented, &cfg); err != nil {
		t.Fatalf("uncommented template must decode: %v", err)
	}
	if cfg.Practice.Words == nil || *cfg.Practice.Words != defaultWords {
		t.Fatalf("expected words=%d, got %+v", defaultWords, cfg.Practice.Words)
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	var target string
	var words int
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&target, "filter", "all", "")
	cmd.Flags().IntVar(&words, "words", 20, "")
	if err := cmd.Flags().Parse([]string{"--words", "7"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	fromFile := "C"
	fileWords := 30
	applyStringConfig(cmd, "filter", &target, &fromFile)
	applyIntConfig(cmd, "words", &words, &fileWords)
	if target != "C" {
		t.Fatalf("expected config value, got %q", target)
	}
	if words != 7 {
		t.Fatalf("flag must win over config, got %d", words)
	}

	applyStringEnv(cmd, "filter", &target, "random")
	applyStringEnv(cmd, "filter", &target, "")
	applyIntEnv(cmd, "words", &words, 12)
	if target != "random" || words != 7 {
		t.Fatalf("unexpected values %q %d", target, words)
	}
}

func TestValidateSettings(t *testing.T) {
	valid := settings{
		practice: model.Config{WordsFile: "words.tsv", Words: 5},
		dbPath:   "vocabdrill.db",
		log:      logging.Options{Level: "info", Format: "text"},
	}
	if err := validateSettings(valid); err != nil {
		t.Fatalf("expected valid settings, got %v", err)
	}

	cases := []struct {
		name string
		edit func(*settings)
		want string
	}{
		{name: "words", edit: func(s *settings) { s.practice.Words = 0 }, want: "--words"},
		{name: "file", edit: func(s *settings) { s.practice.WordsFile = " " }, want: "--file"},
		{name: "db", edit: func(s *settings) { s.dbPath = "" }, want: "--db"},
		{name: "log", edit: func(s *settings) { s.log.Format = "xml" }, want: "format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid
			tc.edit(&s)
			err := validateSettings(s)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWordsLoadErrorGuidance(t *testing.T) {
	err := wordsLoadError("/tmp/words.tsv", catalog.ErrSourceMalformed)
	if !strings.Contains(err.Error(), "tab-separated header") {
		t.Fatalf("expected header guidance, got %v", err)
	}
	err = wordsLoadError("/tmp/words.tsv", errors.Join(catalog.ErrSourceUnavailable, errors.New("missing")))
	if !strings.Contains(err.Error(), "/tmp/words.tsv") || !strings.Contains(err.Error(), "VOCABDRILL_FILE") {
		t.Fatalf("expected path guidance, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"":      false,
		"yes":   true,
	}
	for input, want := range cases {
		got, err := confirm(strings.NewReader(input), "")
		if err != nil {
			t.Fatalf("confirm(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("confirm(%q) = %v, want %v", input, got, want)
		}
	}
}
