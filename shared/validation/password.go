package validation

import (
	"bufio"
	"bytes"
	"compress/gzip"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/agnivade/levenshtein"
)

// commonPasswords holds about 16,000 frequently breached passwords, gzipped,
// lower-case, one per line.
//
//go:embed common_passwords.txt.gz
var commonPasswords []byte

var attributeSplitter = regexp.MustCompile(`\W+`)

// PasswordPolicyConfig enumerates the password-strength rules.
type PasswordPolicyConfig struct {
	MinLength     int     `yaml:"min_length"`
	MaxSimilarity float64 `yaml:"max_similarity"`
	RejectNumeric bool    `yaml:"reject_numeric"`
	RejectCommon  bool    `yaml:"reject_common"`
	// CommonListFile extends the built-in common password list, one per line.
	// Gzipped files, such as Django's common-passwords.txt.gz, are accepted.
	CommonListFile string `yaml:"common_list_file"`
}

func DefaultPasswordPolicyConfig() PasswordPolicyConfig {
	return PasswordPolicyConfig{
		MinLength:     8,
		MaxSimilarity: 0.7,
		RejectNumeric: true,
		RejectCommon:  true,
	}
}

// UserAttribute is a named account value the password must not resemble.
type UserAttribute struct {
	Name  string
	Value string
}

type PasswordPolicy struct {
	cfg    PasswordPolicyConfig
	common map[string]struct{}
}

func NewPasswordPolicy(cfg PasswordPolicyConfig) (*PasswordPolicy, error) {
	p := &PasswordPolicy{cfg: cfg, common: map[string]struct{}{}}
	if cfg.RejectCommon {
		if err := p.loadCommon(commonPasswords); err != nil {
			return nil, fmt.Errorf("failed to load built-in common password list: %w", err)
		}
		if cfg.CommonListFile != "" {
			data, err := os.ReadFile(cfg.CommonListFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read common password list: %w", err)
			}
			if err := p.loadCommon(data); err != nil {
				return nil, fmt.Errorf("failed to load common password list %s: %w", cfg.CommonListFile, err)
			}
		}
	}
	return p, nil
}

// loadCommon adds one password per line of data, which may be gzipped.
func (p *PasswordPolicy) loadCommon(data []byte) error {
	var r io.Reader = bytes.NewReader(data)
	if len(data) > 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer zr.Close()
		r = zr
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p.common[line] = struct{}{}
	}
	return sc.Err()
}

// Validate returns every rule the password breaks, keyed under "password".
func (p *PasswordPolicy) Validate(password string, attrs ...UserAttribute) *errs.ValidationError {
	v := errs.NewValidationError()
	if password == "" {
		v.Add(FieldPassword, Required.Message)
		return v
	}
	if n := len([]rune(password)); n < p.cfg.MinLength {
		v.Add(FieldPassword, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.cfg.MinLength))
	}
	if p.cfg.MaxSimilarity > 0 {
		for _, a := range attrs {
			if p.tooSimilar(password, a.Value) {
				v.Add(FieldPassword, fmt.Sprintf("The password is too similar to the %s.", strings.ReplaceAll(a.Name, "_", " ")))
				break
			}
		}
	}
	if p.cfg.RejectCommon && p.IsCommon(password) {
		v.Add(FieldPassword, "This password is too common.")
	}
	if p.cfg.RejectNumeric && isNumeric(password) {
		v.Add(FieldPassword, "This password is entirely numeric.")
	}
	return v
}

func (p *PasswordPolicy) IsCommon(password string) bool {
	_, ok := p.common[strings.ToLower(strings.TrimSpace(password))]
	return ok
}

// tooSimilar compares the password with the whole attribute value and with
// each of its word parts, so "alice" is caught inside "alice.smith@x.com".
func (p *PasswordPolicy) tooSimilar(password, value string) bool {
	if value == "" {
		return false
	}
	pw := strings.ToLower(password)
	parts := append([]string{value}, attributeSplitter.Split(value, -1)...)
	for _, part := range parts {
		part = strings.ToLower(part)
		if part == "" {
			continue
		}
		if similarity(pw, part) >= p.cfg.MaxSimilarity {
			return true
		}
	}
	return false
}

// similarity is 1 - normalized edit distance, in [0, 1].
func similarity(a, b string) float64 {
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
