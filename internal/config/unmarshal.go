package config

import (
	"encoding/json"
	"fmt"

	"github.com/dgellow/mailfold/internal/emailutil"
)

// UnmarshalJSON resolves env references in the find section
func (f *FindConfig) UnmarshalJSON(data []byte) error {
	type rawFind struct {
		DefaultDomain json.RawMessage `json:"defaultDomain,omitempty"`
	}

	var raw rawFind
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.DefaultDomain != nil {
		parsed, err := ParseConfigValue(raw.DefaultDomain)
		if err != nil {
			return fmt.Errorf("parsing defaultDomain: %w", err)
		}
		f.DefaultDomain = emailutil.Normalize(parsed.value)
	}

	return nil
}

// UnmarshalJSON resolves env references in the server section
func (s *ServerConfig) UnmarshalJSON(data []byte) error {
	type rawServer struct {
		Name      string          `json:"name,omitempty"`
		Transport TransportType   `json:"transport,omitempty"`
		Addr      json.RawMessage `json:"addr,omitempty"`
	}

	var raw rawServer
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Name = raw.Name
	s.Transport = raw.Transport

	if raw.Addr != nil {
		parsed, err := ParseConfigValue(raw.Addr)
		if err != nil {
			return fmt.Errorf("parsing addr: %w", err)
		}
		s.Addr = parsed.value
	}

	return nil
}
