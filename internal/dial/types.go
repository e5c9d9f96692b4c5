package dial

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Role is the logical metric a dial displays.
type Role int

const (
	RoleCPU Role = iota
	RoleGPU
	RoleMemory
	RoleNetwork
)

// Roles lists every role in canonical order. Ticks and resets walk roles in
// this order.
var Roles = []Role{RoleCPU, RoleGPU, RoleMemory, RoleNetwork}

// String returns the role's canonical upper-case name.
func (r Role) String() string {
	switch r {
	case RoleCPU:
		return "CPU"
	case RoleGPU:
		return "GPU"
	case RoleMemory:
		return "MEMORY"
	case RoleNetwork:
		return "NETWORK"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole accepts a role name case-insensitively, plus the short forms
// "mem" and "net" used by CLI flags.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CPU":
		return RoleCPU, nil
	case "GPU":
		return RoleGPU, nil
	case "MEMORY", "MEM":
		return RoleMemory, nil
	case "NETWORK", "NET":
		return RoleNetwork, nil
	default:
		return 0, fmt.Errorf("unknown dial %q (want one of CPU, GPU, MEMORY, NETWORK)", s)
	}
}

// Names binds each role to the display name of its dial on the server.
type Names map[Role]string

// DefaultNames binds every role to its canonical name.
func DefaultNames() Names {
	names := make(Names, len(Roles))
	for _, r := range Roles {
		names[r] = r.String()
	}
	return names
}

// Backlight is a dial's RGB backlight, each channel 0-100.
type Backlight struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// Dial is one entry of the server's dial listing.
type Dial struct {
	Name      string    `json:"dial_name"`
	UID       string    `json:"uid"`
	Value     Value     `json:"value"`
	Backlight Backlight `json:"backlight"`
	ImageFile string    `json:"image_file"`
}

// Value is a dial position. The server reports it either as a number or
// as a numeric string, so both decode.
type Value int

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*v = 0
			return nil
		}
		data = []byte(s)
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid dial value %s: %w", data, err)
	}
	*v = Value(f)
	return nil
}
