package types

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// SecretString holds a credential such as the L2 password. It redacts itself
// when printed or marshaled so config dumps and logs never carry it.
type SecretString struct {
	value string
}

func NewSecretString(value string) SecretString {
	return SecretString{value: value}
}

func (s SecretString) Value() string {
	return s.value
}

func (s SecretString) IsEmpty() bool {
	return s.value == ""
}

func (s SecretString) String() string {
	if s.value == "" {
		return ""
	}
	return "[REDACTED]"
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SecretString) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.value)
}

func (s *SecretString) UnmarshalYAML(node *yaml.Node) error {
	return node.Decode(&s.value)
}
