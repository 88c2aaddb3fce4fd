package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/inboxpilot/docsort/internal/enum"
)

// ClassificationRule maps a subject keyword to a document type. Rule order
// is the tie-break: the first matching keyword wins.
type ClassificationRule struct {
	Keyword string `yaml:"keyword"`
	Type    string `yaml:"type"`
}

// Rules is the filing policy: the ordered keyword table and the mapping from
// document type to destination subdirectory.
type Rules struct {
	Rules   []ClassificationRule `yaml:"rules"`
	Folders map[string]string    `yaml:"folders"`
}

// DefaultRules returns the built-in policy used when no rules file is
// configured.
func DefaultRules() *Rules {
	return &Rules{
		Rules: []ClassificationRule{
			{Keyword: "Invoice", Type: enum.DocumentInvoices.String()},
			{Keyword: "Bill", Type: enum.DocumentInvoices.String()},
			{Keyword: "Resume", Type: enum.DocumentResumes.String()},
			{Keyword: "CV", Type: enum.DocumentResumes.String()},
			{Keyword: "Report", Type: enum.DocumentReports.String()},
			{Keyword: "Analysis", Type: enum.DocumentReports.String()},
		},
		Folders: map[string]string{
			enum.DocumentInvoices.String(): "Invoices",
			enum.DocumentResumes.String():  "Resumes",
			enum.DocumentReports.String():  "Reports",
			enum.DocumentOthers.String():   "Others",
		},
	}
}

// LoadRules reads and validates the policy from a YAML file. An empty path
// returns the built-in defaults.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read rules file %s", path)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, errors.Wrapf(err, "failed to parse rules file %s", path)
	}

	if err := rules.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid rules file %s", path)
	}

	return &rules, nil
}

// Validate rejects policies the pipeline cannot operate on. Invalid policy
// is a fatal setup error, nothing downstream is attempted.
func (r *Rules) Validate() error {
	if len(r.Rules) == 0 {
		return errors.New("rule table is empty")
	}
	if len(r.Folders) == 0 {
		return errors.New("folder mapping is empty")
	}
	if _, ok := r.Folders[enum.DocumentOthers.String()]; !ok {
		return errors.Errorf("folder mapping must include the %s fallback", enum.DocumentOthers)
	}
	for i, rule := range r.Rules {
		if rule.Keyword == "" {
			return errors.Errorf("rule %d has an empty keyword", i)
		}
		if rule.Type == "" {
			return errors.Errorf("rule %q has an empty type", rule.Keyword)
		}
		if _, ok := r.Folders[rule.Type]; !ok {
			return errors.Errorf("rule %q maps to type %q which has no folder", rule.Keyword, rule.Type)
		}
	}
	return nil
}

// Keywords returns the keywords in rule order, used as the subject prefilter
// when fetching messages.
func (r *Rules) Keywords() []string {
	keywords := make([]string, 0, len(r.Rules))
	for _, rule := range r.Rules {
		keywords = append(keywords, rule.Keyword)
	}
	return keywords
}

// DestinationTree resolves the folder mapping against the download base
// directory into absolute per-type destinations.
func (r *Rules) DestinationTree(baseDir string) map[enum.DocumentType]string {
	tree := make(map[enum.DocumentType]string, len(r.Folders))
	for docType, folder := range r.Folders {
		if filepath.IsAbs(folder) {
			tree[enum.DocumentType(docType)] = folder
		} else {
			tree[enum.DocumentType(docType)] = filepath.Join(baseDir, folder)
		}
	}
	return tree
}
