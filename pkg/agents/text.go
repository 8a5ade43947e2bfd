package agents

import (
	"encoding/json"
	"fmt"
)

// Text renders a payload for moderation and evaluation prompts.
func Text(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprint(payload)
	}

	return string(data)
}
