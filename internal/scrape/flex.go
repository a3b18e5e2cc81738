package scrape

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexInt decodes counters that arrive as numbers, numeric strings ("1,234",
// "12.5K", "3M subscribers") or null. Unparseable values decode as zero.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		n, _ := ParseCount(s)
		*f = FlexInt(n)
	case 't', 'f', '{', '[':
		*f = 0
	default:
		v, err := strconv.ParseFloat(string(data), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			*f = 0
			return nil
		}
		*f = FlexInt(int64(v))
	}
	return nil
}

// Int64 returns the decoded value.
func (f FlexInt) Int64() int64 { return int64(f) }

// ParseCount reads a human formatted count. It accepts thousands separators
// and K/M/B suffixes and ignores trailing words.
func ParseCount(value string) (int64, bool) {
	s := strings.TrimSpace(strings.ToLower(value))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0, false
	}
	number, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	rest := strings.TrimSpace(s[end:])
	multiplier := 1.0
	if rest != "" {
		switch rest[0] {
		case 'k':
			multiplier = 1e3
		case 'm':
			multiplier = 1e6
		case 'b':
			multiplier = 1e9
		}
	}
	return int64(math.Round(number * multiplier)), true
}

// FlexBool decodes booleans that arrive as true/false, 0/1 or strings.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch strings.ToLower(strings.Trim(string(data), `"`)) {
	case "true", "1", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

// FlexStrings decodes a list of strings or of objects carrying a "url" field.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	*f = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		if len(data) > 0 && data[0] == '"' {
			var s string
			if err := json.Unmarshal(data, &s); err == nil && strings.TrimSpace(s) != "" {
				*f = FlexStrings{strings.TrimSpace(s)}
			}
		}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make(FlexStrings, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj struct {
			URL     string `json:"url"`
			LynxURL string `json:"lynx_url"`
		}
		if err := json.Unmarshal(item, &obj); err == nil {
			if u := strings.TrimSpace(obj.URL); u != "" {
				out = append(out, u)
			} else if u := strings.TrimSpace(obj.LynxURL); u != "" {
				out = append(out, u)
			}
		}
	}
	*f = out
	return nil
}

// FlexString decodes a string, or a number rendered as text.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = ""
			return nil
		}
		*f = FlexString(s)
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		*f = ""
		return nil
	}
	*f = FlexString(string(data))
	return nil
}
