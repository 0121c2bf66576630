package chat

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// catalogPathEnv points at a YAML file that replaces the embedded catalog.
const catalogPathEnv = "CHAT_CATALOG_YAML"

//go:embed catalog.yaml
var catalogFS embed.FS

type Replies struct {
	Inappropriate []string `yaml:"inappropriate"`
	OffTopic      []string `yaml:"off_topic"`
	FreshStart    []string `yaml:"fresh_start"`
}

// Catalog holds the word lists used by the classifier and the canned replies.
type Catalog struct {
	Version            int      `yaml:"version"`
	Denylist           []string `yaml:"denylist"`
	FollowUpIndicators []string `yaml:"follow_up_indicators"`
	PersonalQuestions  []string `yaml:"personal_questions"`
	CasualConversation []string `yaml:"casual_conversation"`
	OtherSubjects      []string `yaml:"other_subjects"`
	Replies            Replies  `yaml:"replies"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog loads the catalog once, from CHAT_CATALOG_YAML when set and
// from the embedded copy otherwise.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		data, err := readCatalog()
		if err != nil {
			defaultErr = err
			return
		}
		defaultCatalog, defaultErr = ParseCatalog(data)
	})
	return defaultCatalog, defaultErr
}

func readCatalog() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(catalogPathEnv)); path != "" {
		return os.ReadFile(path)
	}
	return catalogFS.ReadFile("catalog.yaml")
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse chat catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Denylist) == 0 {
		return errors.New("chat catalog: denylist is empty")
	}
	for name, set := range map[string][]string{
		"inappropriate": c.Replies.Inappropriate,
		"off_topic":     c.Replies.OffTopic,
		"fresh_start":   c.Replies.FreshStart,
	} {
		if len(set) == 0 {
			return fmt.Errorf("chat catalog: no %s replies", name)
		}
		for i, msg := range set {
			if !strings.Contains(msg, "{subject}") {
				return fmt.Errorf("chat catalog: %s reply %d does not mention {subject}", name, i)
			}
		}
	}
	return nil
}
