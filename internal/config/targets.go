package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rvielma/cultivar/pkg/domain"
)

// ParseAddress parses a "sequence-id:message-id" pair. A bare integer is
// allowed when defaultSequence is non-empty.
func ParseAddress(raw, defaultSequence string) (domain.NodeAddress, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.NodeAddress{}, fmt.Errorf("empty target address")
	}

	i := strings.LastIndex(raw, ":")
	if i < 0 {
		if defaultSequence == "" {
			return domain.NodeAddress{}, fmt.Errorf("target %q: missing sequence-id", raw)
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			return domain.NodeAddress{}, fmt.Errorf("target %q: message-id must be an integer", raw)
		}
		return domain.NodeAddress{Sequence: defaultSequence, ID: id}, nil
	}

	sequence := strings.TrimSpace(raw[:i])
	idPart := strings.TrimSpace(raw[i+1:])
	if sequence == "" {
		return domain.NodeAddress{}, fmt.Errorf("target %q: missing sequence-id", raw)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return domain.NodeAddress{}, fmt.Errorf("target %q: message-id must be an integer", raw)
	}
	return domain.NodeAddress{Sequence: sequence, ID: id}, nil
}

// LoadTargets reads a newline-delimited list of "sequence-id:message-id"
// entries. Blank lines and #-comments are ignored.
func LoadTargets(path string) ([]domain.NodeAddress, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	return ParseTargets(string(data))
}

// ParseTargets parses target list text.
func ParseTargets(text string) ([]domain.NodeAddress, error) {
	var out []domain.NodeAddress
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addr, err := ParseAddress(line, "")
		if err != nil {
			return nil, fmt.Errorf("targets line %d: %w", lineNo+1, err)
		}
		out = append(out, addr)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("targets list is empty")
	}
	return out, nil
}
