package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeScannerTXT creates TXT records for an eSCL service.
func EncodeScannerTXT(info *ScannerInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyVersion] = "1"
	txt[TXTKeyResourcePath] = info.ResourcePath
	if info.Version != "" {
		txt[TXTKeyVersionESCL] = info.Version
	}
	if info.Model != "" {
		txt[TXTKeyModel] = info.Model
	}
	if info.UUID != "" {
		txt[TXTKeyUUID] = info.UUID
	}
	if len(info.ColorSpaces) > 0 {
		txt[TXTKeyColorSpaces] = strings.Join(info.ColorSpaces, ",")
	}
	if len(info.InputSources) > 0 {
		txt[TXTKeyInputSources] = strings.Join(info.InputSources, ",")
	}
	if len(info.Formats) > 0 {
		txt[TXTKeyFormats] = strings.Join(info.Formats, ",")
	}
	if info.Duplex {
		txt[TXTKeyDuplex] = "T"
	}
	if info.AdminURL != "" {
		txt[TXTKeyAdminURL] = info.AdminURL
	}
	if info.Note != "" {
		txt[TXTKeyNote] = info.Note
	}

	return txt
}

// DecodeScannerTXT parses TXT records of an eSCL service. Keys are matched
// case-insensitively. Only rs is required, and an empty rs is valid
// (eSCL at the server root is rare but allowed).
func DecodeScannerTXT(txt TXTRecordMap) (*ScannerInfo, error) {
	lower := make(map[string]string, len(txt))
	for k, v := range txt {
		lower[strings.ToLower(k)] = v
	}

	rs, ok := lower[strings.ToLower(TXTKeyResourcePath)]
	if !ok {
		rs = DefaultResourcePath
	}
	if strings.ContainsAny(rs, " ?#") {
		return nil, fmt.Errorf("%w: invalid resource path %q", ErrInvalidTXTRecord, rs)
	}

	info := &ScannerInfo{
		Version:      lower[TXTKeyVersionESCL],
		Model:        lower[TXTKeyModel],
		ResourcePath: strings.Trim(rs, "/"),
		UUID:         lower[strings.ToLower(TXTKeyUUID)],
		ColorSpaces:  parseList(lower[TXTKeyColorSpaces]),
		InputSources: parseList(lower[TXTKeyInputSources]),
		Formats:      parseList(lower[TXTKeyFormats]),
		Duplex:       parseBool(lower[TXTKeyDuplex]),
		AdminURL:     lower[TXTKeyAdminURL],
		Note:         lower[TXTKeyNote],
	}
	return info, nil
}

// parseList parses a comma-separated list, lowercasing entries.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "t", "true", "1", "yes":
		return true
	}
	return false
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, sorted by key.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
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
