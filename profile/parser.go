package profile

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set is a collection of profiles loaded from a file.
type Set struct {
	Profiles []Profile `yaml:"profiles"`
}

// Parse parses a profile file from the given path.
//
// Example file:
//
//	profiles:
//	  - name: CY15B104Q
//	    capacity: 0x80000
//	    address_bits: 19
//	  - name: FM25V20A-custom
//	    capacity: 0x40000
//	    address_bits: 18
//	    device_id: 7F7F7F7F7F7FC22508
func Parse(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses a profile file from any io.Reader.
func ParseReader(r io.Reader) (*Set, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Set
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty file")
		}
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}

	if len(s.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles found in file")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every profile and rejects duplicate names.
func (s *Set) Validate() error {
	seen := make(map[string]bool, len(s.Profiles))
	for i := range s.Profiles {
		p := &s.Profiles[i]
		if err := p.Validate(); err != nil {
			return fmt.Errorf("profile %d: %w", i, err)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return fmt.Errorf("profile %d: duplicate name %q", i, p.Name)
		}
		seen[key] = true
	}
	return nil
}

// Lookup returns the profile with the given name from s, falling back to
// the built-in profiles. s may be nil.
func (s *Set) Lookup(name string) (Profile, error) {
	if s != nil {
		for _, p := range s.Profiles {
			if strings.EqualFold(p.Name, name) {
				return p, nil
			}
		}
	}
	if p, ok := Lookup(name); ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("unknown profile %q", name)
}

// HexBytes is a byte slice that marshals to YAML as a hex string. Spaces
// and colons between bytes are accepted when decoding.
type HexBytes []byte

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *HexBytes) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	s = strings.NewReplacer(" ", "", ":", "", "0x", "", "0X", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid hex bytes: %w", node.Line, err)
	}
	*h = b
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (h HexBytes) MarshalYAML() (interface{}, error) {
	return strings.ToUpper(hex.EncodeToString(h)), nil
}
