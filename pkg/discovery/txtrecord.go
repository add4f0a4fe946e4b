package discovery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Service constants.
const (
	// ServiceType is the DNS-SD service type for monitoring servers.
	ServiceType = "_iomon._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort is the default listen port for the metrics endpoint.
	DefaultPort = 9464

	// MaxInstanceNameLen is the DNS-SD instance name limit.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyName      = "sn" // server name
	TXTKeyEngineID  = "id" // engine instance UUID
	TXTKeyVersion   = "vn" // engine version, major.minor
	TXTKeyItemCount = "ic" // number of wired items
)

// Discovery errors.
var (
	ErrMissingRequired     = errors.New("missing required TXT record")
	ErrInvalidTXTRecord    = errors.New("invalid TXT record")
	ErrInstanceNameInvalid = errors.New("invalid instance name")
)

// ServiceInfo describes one advertised monitoring server.
type ServiceInfo struct {
	// Name is the human-readable server name.
	Name string

	// EngineID is the engine instance identifier.
	EngineID string

	// Version is the engine version as "major.minor".
	Version string

	// ItemCount is the number of wired items at advertise time.
	ItemCount int

	// Port is the listen port (0 selects DefaultPort).
	Port uint16
}

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeServiceTXT creates TXT records for a monitoring server.
func EncodeServiceTXT(info *ServiceInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyName] = info.Name
	txt[TXTKeyEngineID] = info.EngineID
	txt[TXTKeyVersion] = info.Version

	if info.ItemCount > 0 {
		txt[TXTKeyItemCount] = strconv.Itoa(info.ItemCount)
	}

	return txt
}

// DecodeServiceTXT parses TXT records from a discovered monitoring server.
func DecodeServiceTXT(txt TXTRecordMap) (*ServiceInfo, error) {
	info := &ServiceInfo{}

	var ok bool
	info.Name, ok = txt[TXTKeyName]
	if !ok || info.Name == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyName)
	}

	info.EngineID, ok = txt[TXTKeyEngineID]
	if !ok || info.EngineID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyEngineID)
	}

	info.Version, ok = txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}

	if icStr, ok := txt[TXTKeyItemCount]; ok {
		ic, err := strconv.Atoi(icStr)
		if err != nil || ic < 0 {
			return nil, fmt.Errorf("%w: invalid item count %q", ErrInvalidTXTRecord, icStr)
		}
		info.ItemCount = ic
	}

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, the format mDNS libraries expect.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameInvalid)
	}
	if len(name) > MaxInstanceNameLen {
		return fmt.Errorf("%w: longer than %d bytes", ErrInstanceNameInvalid, MaxInstanceNameLen)
	}
	return nil
}
