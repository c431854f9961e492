package xcode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	iosMarker       = "iOS"
	iosVersionMark  = "iOS-"
	legacyAvailable = "(available)"
)

// Device is a simulator entry from `simctl list devices --json`.
type Device struct {
	Name      string
	UDID      string
	State     string
	Available bool
}

// Runtime groups the devices installed for one simulator runtime.
type Runtime struct {
	ID      string // e.g. com.apple.CoreSimulator.SimRuntime.iOS-18-3-1
	Devices []Device
}

// IsIOS reports whether the runtime identifier names an iOS runtime.
func (r Runtime) IsIOS() bool {
	return strings.Contains(r.ID, iosMarker)
}

// Version derives the dotted OS version from the runtime identifier:
// com.apple.CoreSimulator.SimRuntime.iOS-18-3-1 -> 18.3.1
func (r Runtime) Version() string {
	v := r.ID
	if i := strings.LastIndex(v, iosVersionMark); i >= 0 {
		v = v[i+len(iosVersionMark):]
	}
	return strings.ReplaceAll(v, "-", ".")
}

// Inventory is the simulator inventory in the order simctl reported it.
type Inventory []Runtime

// Criteria narrows destination selection. Empty fields are unconstrained.
type Criteria struct {
	DeviceName string
	OSVersion  string
}

func (c Criteria) String() string {
	var parts []string
	if c.DeviceName != "" {
		parts = append(parts, "name="+c.DeviceName)
	}
	if c.OSVersion != "" {
		parts = append(parts, "OS="+c.OSVersion)
	}
	return strings.Join(parts, ", ")
}

// NoMatchingSimulatorError is returned when criteria were given but no
// available simulator satisfies them.
type NoMatchingSimulatorError struct {
	Criteria Criteria
}

func (e *NoMatchingSimulatorError) Error() string {
	return fmt.Sprintf("No available simulator found matching criteria: %s", e.Criteria)
}

var errMalformedInventory = errors.New("simctl output has no devices object")

// FormatDestination renders an xcodebuild -destination value.
func FormatDestination(name, version string) string {
	return fmt.Sprintf("platform=iOS Simulator,name=%s,OS=%s", name, version)
}

// ListDevices queries the simulator inventory.
func (c *Client) ListDevices(ctx context.Context) (Inventory, error) {
	res, err := c.query(ctx, "", xcrunBin, "simctl", "list", "devices", "--json")
	if err != nil {
		return nil, fmt.Errorf("listing simulators: %w", err)
	}
	if !res.Succeeded() {
		return nil, fmt.Errorf("listing simulators: simctl exited with code %d: %s",
			res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return ParseInventory([]byte(res.Stdout))
}

// ResolveDestination builds the destination for the given criteria. When both
// fields are set they are trusted as-is and no inventory query is made. When
// neither is set the first available iOS simulator is used, and an empty
// string is returned if there is none.
func (c *Client) ResolveDestination(ctx context.Context, criteria Criteria) (string, error) {
	if criteria.DeviceName != "" && criteria.OSVersion != "" {
		return FormatDestination(criteria.DeviceName, criteria.OSVersion), nil
	}

	inv, err := c.ListDevices(ctx)
	if err != nil {
		return "", err
	}

	dest, err := SelectDestination(inv, criteria)
	if err != nil {
		return "", err
	}
	if dest == "" {
		c.logger.Warn("no available iOS simulator found, passing empty destination")
	}
	return dest, nil
}

// SelectDestination scans the inventory for the first available iOS device
// that satisfies whichever criteria are set.
func SelectDestination(inv Inventory, criteria Criteria) (string, error) {
	constrained := criteria.DeviceName != "" || criteria.OSVersion != ""

	for _, rt := range inv {
		if !rt.IsIOS() {
			continue
		}
		version := rt.Version()
		if criteria.OSVersion != "" && version != criteria.OSVersion {
			continue
		}
		for _, d := range rt.Devices {
			if !d.Available {
				continue
			}
			if criteria.DeviceName != "" && d.Name != criteria.DeviceName {
				continue
			}
			return FormatDestination(d.Name, version), nil
		}
	}

	if constrained {
		return "", &NoMatchingSimulatorError{Criteria: criteria}
	}
	return "", nil
}

// ParseInventory decodes `simctl list devices --json` output. Runtimes keep
// their document order, which a Go map would lose.
func ParseInventory(data []byte) (Inventory, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing simctl output: invalid JSON")
	}
	devices := gjson.GetBytes(data, "devices")
	if !devices.IsObject() {
		return nil, errMalformedInventory
	}

	var inv Inventory
	devices.ForEach(func(key, value gjson.Result) bool {
		rt := Runtime{ID: key.String()}
		value.ForEach(func(_, d gjson.Result) bool {
			rt.Devices = append(rt.Devices, parseDevice(d))
			return true
		})
		inv = append(inv, rt)
		return true
	})
	return inv, nil
}

func parseDevice(d gjson.Result) Device {
	dev := Device{
		Name:  d.Get("name").String(),
		UDID:  d.Get("udid").String(),
		State: d.Get("state").String(),
	}
	// Xcode 10 and earlier report availability as a string.
	if avail := d.Get("isAvailable"); avail.Exists() {
		dev.Available = avail.Bool()
	} else {
		dev.Available = d.Get("availability").String() == legacyAvailable
	}
	return dev
}
